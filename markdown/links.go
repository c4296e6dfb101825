package markdown

import (
	"github.com/tsawler/pagemd/content"
	"github.com/tsawler/pagemd/geom"
)

// LinkStrategy selects how a text span is matched to a link hot zone.
type LinkStrategy int

const (
	// LinkAreaOverlap matches when the hot zone covers at least MinOverlap
	// of the span's area. The default: robust against hot zones that are
	// slightly taller or wider than the glyphs.
	LinkAreaOverlap LinkStrategy = iota

	// LinkMidpoint matches when the hot zone contains the span's midpoint.
	// Cheaper and more forgiving for very small spans.
	LinkMidpoint
)

// LinkConfig holds configuration for link resolution.
type LinkConfig struct {
	// Strategy selects the matching test. Default: LinkAreaOverlap.
	Strategy LinkStrategy

	// MinOverlap is the area fraction a hot zone must cover for
	// LinkAreaOverlap. Default: 0.7.
	MinOverlap float64
}

// DefaultLinkConfig returns sensible default configuration.
func DefaultLinkConfig() LinkConfig {
	return LinkConfig{
		Strategy:   LinkAreaOverlap,
		MinOverlap: 0.7,
	}
}

// LinkResolver maps span rectangles to link URIs using the page's link hot
// zones.
type LinkResolver struct {
	config LinkConfig
	links  []content.Link
}

// NewLinkResolver creates a resolver over the given links with default
// configuration.
func NewLinkResolver(links []content.Link) *LinkResolver {
	return NewLinkResolverWithConfig(links, DefaultLinkConfig())
}

// NewLinkResolverWithConfig creates a resolver with custom configuration.
func NewLinkResolverWithConfig(links []content.Link, config LinkConfig) *LinkResolver {
	return &LinkResolver{config: config, links: links}
}

// Resolve returns the URI whose hot zone matches the span rectangle, and
// whether one matched. The first matching link in page order wins.
func (r *LinkResolver) Resolve(spanRect geom.Rect) (string, bool) {
	for _, link := range r.links {
		if link.URI == "" {
			continue
		}
		switch r.config.Strategy {
		case LinkMidpoint:
			if link.BBox.ContainsPoint(spanRect.Mid()) {
				return link.URI, true
			}
		default:
			area := spanRect.Area()
			if area <= 0 {
				continue
			}
			common := spanRect.Intersect(link.BBox)
			if common.IsEmpty() {
				continue
			}
			if common.Area() >= area*r.config.MinOverlap {
				return link.URI, true
			}
		}
	}
	return "", false
}
