// Package markdown turns composed page regions into GitHub-flavored
// markdown text.
package markdown

import (
	"math"
	"sort"
	"strings"

	"github.com/tsawler/pagemd/content"
)

// HeaderConfig holds configuration for header identification.
type HeaderConfig struct {
	// BodyLimit is the lower bound for the body font size. Font sizes at or
	// below the limit never become headers even when rare. Default: 12.
	BodyLimit float64

	// MaxLevels caps the number of header levels. Default: 6, the markdown
	// maximum.
	MaxLevels int
}

// DefaultHeaderConfig returns sensible default configuration.
func DefaultHeaderConfig() HeaderConfig {
	return HeaderConfig{
		BodyLimit: 12,
		MaxLevels: 6,
	}
}

// HeaderIdentifier maps font sizes to markdown header levels. It is fitted
// once over the document's pages: the dominant font size (by character
// count) is the body text, and every larger size becomes a header level,
// largest first. Fitting across the whole document keeps levels consistent
// between pages.
type HeaderIdentifier struct {
	config HeaderConfig
	levels map[int]int
}

// NewHeaderIdentifier creates an identifier with default configuration.
// Before Fit runs, no size maps to a header.
func NewHeaderIdentifier() *HeaderIdentifier {
	return NewHeaderIdentifierWithConfig(DefaultHeaderConfig())
}

// NewHeaderIdentifierWithConfig creates an identifier with custom configuration.
func NewHeaderIdentifierWithConfig(config HeaderConfig) *HeaderIdentifier {
	return &HeaderIdentifier{config: config, levels: make(map[int]int)}
}

// Fit derives the size-to-level mapping from the given pages.
func (h *HeaderIdentifier) Fit(pages []*content.Page) {
	counts := make(map[int]int)
	for _, page := range pages {
		if page == nil {
			continue
		}
		for _, span := range page.Spans {
			size := int(math.Round(span.FontSize))
			counts[size] += len(strings.TrimSpace(span.Text))
		}
	}

	// The size carrying the most characters is the body size. The body
	// limit never drops below the configured floor, so tiny print runs do
	// not push real body text into header territory.
	bodyLimit := int(math.Round(h.config.BodyLimit))
	bestSize, bestCount := 0, -1
	for size, n := range counts {
		if n > bestCount || (n == bestCount && size > bestSize) {
			bestSize, bestCount = size, n
		}
	}
	if bestCount > 0 && bestSize > bodyLimit {
		bodyLimit = bestSize
	}

	var larger []int
	for size := range counts {
		if size > bodyLimit {
			larger = append(larger, size)
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(larger)))

	h.levels = make(map[int]int, len(larger))
	for i, size := range larger {
		level := i + 1
		if level > h.config.MaxLevels {
			level = h.config.MaxLevels
		}
		h.levels[size] = level
	}
}

// Level returns the header level for a span's font size, or 0 for body text.
func (h *HeaderIdentifier) Level(span content.Span) int {
	return h.levels[int(math.Round(span.FontSize))]
}

// Prefix returns the markdown header prefix for a span ("## " and the like),
// or the empty string for body text.
func (h *HeaderIdentifier) Prefix(span content.Span) string {
	level := h.Level(span)
	if level == 0 {
		return ""
	}
	return strings.Repeat("#", level) + " "
}
