package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	errs "github.com/matzehuels/critpath/pkg/errors"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorRed    = lipgloss.Color("167") // Soft red - errors, critical activities
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Styles
// =============================================================================

var (
	StyleTitle     = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	StyleDim       = lipgloss.NewStyle().Foreground(colorDim)
	StyleValue     = lipgloss.NewStyle().Foreground(colorWhite)
	StyleNumber    = lipgloss.NewStyle().Foreground(colorCyan)
	StyleCritical  = lipgloss.NewStyle().Foreground(colorRed).Bold(true)
	StyleWarning   = lipgloss.NewStyle().Foreground(colorYellow)
	styleHeader    = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	styleIconOK    = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError = lipgloss.NewStyle().Foreground(colorRed)
	styleIconInfo  = lipgloss.NewStyle().Foreground(colorGray)
	styleCached    = lipgloss.NewStyle().Foreground(colorGreen)
	styleComputed  = lipgloss.NewStyle().Foreground(colorGray)
)

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconInfo    = "›"
	iconArrow   = "→"
	iconCached  = "cached"
	iconFresh   = "fresh"
)

// =============================================================================
// Status Output
// =============================================================================

func printSuccess(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, styleIconOK.Render(iconSuccess)+" "+fmt.Sprintf(format, args...))
}

func printInfo(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, styleIconInfo.Render(iconInfo)+" "+fmt.Sprintf(format, args...))
}

func printDetail(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, "  "+StyleDim.Render(fmt.Sprintf(format, args...)))
}

func printFile(w io.Writer, path string) {
	fmt.Fprintln(w, "  "+StyleDim.Render(iconArrow)+" "+StyleValue.Render(path))
}

func printKeyValue(w io.Writer, key, value string) {
	keyStyle := lipgloss.NewStyle().Foreground(colorGray).Width(18)
	fmt.Fprintln(w, keyStyle.Render(key)+" "+StyleValue.Render(value))
}

// printStats prints network statistics on a single line.
func printStats(w io.Writer, activities, edges int, cached bool) {
	parts := []string{
		fmt.Sprintf("%d activities", activities),
		fmt.Sprintf("%d edges", edges),
	}
	status, statusStyle := iconFresh, styleComputed
	if cached {
		status, statusStyle = iconCached, styleCached
	}

	line := "  "
	for i, part := range parts {
		if i > 0 {
			line += StyleDim.Render(" · ")
		}
		line += StyleDim.Render(part)
	}
	line += StyleDim.Render(" · ") + statusStyle.Render(status)
	fmt.Fprintln(w, line)
}

// PrintError writes err to w the way commands report failures: the
// user-facing message first, the error code dimmed.
func PrintError(w io.Writer, err error) {
	msg := errs.UserMessage(err)
	line := styleIconError.Render(iconError) + " " + msg
	if code := errs.GetCode(err); code != "" {
		line += " " + StyleDim.Render("["+string(code)+"]")
	}
	fmt.Fprintln(w, line)
}

// =============================================================================
// Formatting
// =============================================================================

// num formats schedule values without trailing zeros.
func num(f float64) string { return strconv.FormatFloat(f, 'g', -1, 64) }

// joinPath renders a critical path as "Start → A → Finish".
func joinPath(labels []string) string {
	return strings.Join(labels, " "+iconArrow+" ")
}
