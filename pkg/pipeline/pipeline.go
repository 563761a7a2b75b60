// Package pipeline runs tree builds, imports and renders with caching.
//
// The CLI and the HTTP API both go through a [Runner], so caching, logging
// and observability hooks behave the same for every entry point.
//
// # Stages
//
//  1. Build: reconstruct a tree from pairs with the chosen strategy and
//     export it as element records
//  2. Import: rebuild a tree from element records
//  3. Render: draw a tree as DOT source or SVG
//
// Build and Render results are cached; Import is cheap enough not to be.
//
// # Usage
//
//	runner := pipeline.NewRunner(c, logger)
//	res, err := runner.Build(ctx, ps, pipeline.Options{Strategy: "direct"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(res.Leaves)
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	errs "github.com/matzehuels/pairtree/pkg/errors"
	"github.com/matzehuels/pairtree/pkg/pairs"
	"github.com/matzehuels/pairtree/pkg/tree"
	"github.com/matzehuels/pairtree/pkg/treeio"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultStrategy is the reconstruction strategy used when none is given.
	DefaultStrategy = string(pairs.StrategyClosure)

	// DefaultIDs is the id function used when none is given.
	DefaultIDs = IDsValue
)

// Id function names.
const (
	IDsValue = "value" // each value is its own id
	IDsUUID  = "uuid"  // name-based UUID per value
)

// Render formats.
const (
	FormatSVG = "svg"
	FormatDOT = "dot"
)

// ValidIDs is the set of supported id function names.
var ValidIDs = map[string]bool{
	IDsValue: true,
	IDsUUID:  true,
}

// ValidFormats is the set of supported render formats.
var ValidFormats = map[string]bool{
	FormatSVG: true,
	FormatDOT: true,
}

// =============================================================================
// Options
// =============================================================================

// Options configures a build or import.
type Options struct {
	Strategy string `json:"strategy,omitempty"`
	IDs      string `json:"ids,omitempty"`
	// Refresh skips cache reads; results are still written.
	Refresh bool `json:"refresh,omitempty"`

	Logger *log.Logger `json:"-"`
}

// RenderOptions configures a render.
type RenderOptions struct {
	Format   string `json:"format,omitempty"`
	Detailed bool   `json:"detailed,omitempty"`
}

// Result is the outcome of a build or import.
type Result struct {
	// Tree is the reconstructed tree.
	Tree *tree.Node[string]

	// Elements are the exported records of Tree, in pre-order.
	Elements []treeio.Element[string, string]

	// Leaves are the bottom-level successors of the root.
	Leaves []string

	// IDs names the id function Elements use for parent ids.
	IDs string

	// CacheHit reports whether the result came from the cache.
	CacheHit bool

	Stats Stats
}

// Stats contains execution statistics.
type Stats struct {
	PairCount int
	NodeCount int
	Duration  time.Duration
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateStrategy checks that a strategy name is supported.
func ValidateStrategy(s string) error {
	_, err := pairs.ParseStrategy(s)
	return err
}

// ValidateIDs checks that an id function name is supported.
func ValidateIDs(ids string) error {
	if !ValidIDs[ids] {
		return errs.New(errs.ErrCodeInvalidInput, "invalid ids: %q (must be one of: value, uuid)", ids)
	}
	return nil
}

// ValidateFormat checks that a render format is supported.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errs.New(errs.ErrCodeInvalidInput, "invalid format: %q (must be one of: svg, dot)", format)
	}
	return nil
}

// IDFunc returns the id function registered under name. Unknown names fall
// back to the value itself.
func IDFunc(name string) func(string) string {
	if name == IDsUUID {
		return treeio.UUID()
	}
	return treeio.Identity[string]()
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults fills in defaults and checks every field.
// It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.Strategy == "" {
		o.Strategy = DefaultStrategy
	}
	if o.IDs == "" {
		o.IDs = DefaultIDs
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if err := ValidateStrategy(o.Strategy); err != nil {
		return err
	}
	return ValidateIDs(o.IDs)
}

// ValidateAndSetDefaults fills in defaults and checks every field.
func (o *RenderOptions) ValidateAndSetDefaults() error {
	if o.Format == "" {
		o.Format = FormatSVG
	}
	return ValidateFormat(o.Format)
}
