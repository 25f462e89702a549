// Package pipeline runs the calculate → draw → render sequence shared by the
// CLI and the HTTP API.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Calculate: run the critical path method and commit the results
//  2. Draw: convert the network into Graphviz DOT source
//  3. Render: produce the requested output formats (DOT, SVG, PNG, JSON)
//
// Rendered SVG and PNG artifacts are cached by the hash of their DOT source,
// so redrawing an unchanged network skips Graphviz.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, logger)
//	result, err := runner.Execute(ctx, n, pipeline.Options{
//	    Title:     "Relaunch",
//	    Formats:   []string{"svg"},
//	    Calculate: true,
//	})
//	if err != nil {
//	    return err
//	}
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/critpath/pkg/cpm"
	errs "github.com/matzehuels/critpath/pkg/errors"
	"github.com/matzehuels/critpath/pkg/project"
)

// Format constants for output formats.
const (
	FormatDOT  = "dot"
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatJSON = "json"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatDOT:  true,
	FormatSVG:  true,
	FormatPNG:  true,
	FormatJSON: true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options configures a pipeline run.
type Options struct {
	// Title captions the diagram and names the JSON view.
	Title string `json:"title,omitempty"`
	// Formats lists the artifacts to produce. Defaults to svg.
	Formats []string `json:"formats,omitempty"`
	// Detailed adds ids and earliest finish to node labels.
	Detailed bool `json:"detailed,omitempty"`
	// Calculate runs the critical path method first. When false the
	// network is drawn with whatever schedule it already carries.
	Calculate bool `json:"calculate,omitempty"`
	// Refresh bypasses cached artifacts.
	Refresh bool `json:"refresh,omitempty"`

	// Logger receives progress lines. Defaults to the runner's logger.
	Logger *log.Logger `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Calculation is set when Options.Calculate was true.
	Calculation *cpm.Result
	// View is the network after the calculation stage.
	View project.NetworkView
	// DOT is the Graphviz source of the diagram.
	DOT string
	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte
	// Stats contains timing and size information.
	Stats Stats
	// CacheInfo tracks which formats came from the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Activities    int
	Edges         int
	CalculateTime time.Duration
	RenderTime    time.Duration
}

// CacheInfo tracks cache use during rendering.
type CacheInfo struct {
	Hits   []string
	Misses []string
}

// AllHit reports whether every cacheable artifact came from the cache.
func (c CacheInfo) AllHit() bool { return len(c.Hits) > 0 && len(c.Misses) == 0 }

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errs.New(errs.ErrCodeInvalidFormat, "invalid format: %q (must be one of: dot, svg, png, json)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ParseFormats splits a comma-separated list such as "svg,json".
func ParseFormats(s string) ([]string, error) {
	var out []string
	for _, f := range strings.Split(s, ",") {
		f = strings.ToLower(strings.TrimSpace(f))
		if f == "" {
			continue
		}
		out = append(out, f)
	}
	if err := ValidateFormats(out); err != nil {
		return nil, err
	}
	return out, nil
}

// ValidateAndSetDefaults checks the formats and fills in defaults.
func (o *Options) ValidateAndSetDefaults() error {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return fmt.Errorf("invalid options: %w", err)
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}
