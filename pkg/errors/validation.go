package errors

import (
	"math"
	"strings"
	"unicode"
)

// MaxLabelLength bounds activity labels so they stay readable in diagrams.
const MaxLabelLength = 128

// ValidateLabel validates an activity label.
//
// The validation rules are:
//   - No empty or whitespace-only labels
//   - No control characters (newlines would break DOT labels and tables)
//   - Maximum length of MaxLabelLength characters
func ValidateLabel(label string) error {
	if strings.TrimSpace(label) == "" {
		return New(ErrCodeInvalidActivity, "activity label must not be empty")
	}

	if len([]rune(label)) > MaxLabelLength {
		return New(ErrCodeInvalidActivity, "activity label too long (max %d characters)", MaxLabelLength)
	}

	for _, r := range label {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidActivity, "activity label contains invalid control characters")
		}
	}

	return nil
}

// ValidateDuration validates the duration of a user-added activity.
// Durations must be finite and strictly positive.
func ValidateDuration(d float64) error {
	if math.IsNaN(d) || math.IsInf(d, 0) {
		return New(ErrCodeInvalidActivity, "activity duration must be a number")
	}
	if d <= 0 {
		return New(ErrCodeInvalidActivity, "activity duration must be positive, got %g", d)
	}
	return nil
}
