package markdown

import (
	"testing"

	"github.com/tsawler/pagemd/content"
	"github.com/tsawler/pagemd/geom"
)

func TestResolveAreaOverlap(t *testing.T) {
	links := []content.Link{
		{BBox: geom.NewRect(100, 100, 200, 112), URI: "https://example.com"},
	}
	r := NewLinkResolver(links)

	// Fully covered span.
	if uri, ok := r.Resolve(geom.NewRect(110, 100, 180, 112)); !ok || uri != "https://example.com" {
		t.Errorf("covered span should resolve, got %q %v", uri, ok)
	}
	// Span mostly outside the hot zone.
	if _, ok := r.Resolve(geom.NewRect(180, 100, 300, 112)); ok {
		t.Error("span with under 70%% coverage must not resolve")
	}
	// Disjoint span.
	if _, ok := r.Resolve(geom.NewRect(300, 300, 400, 312)); ok {
		t.Error("disjoint span must not resolve")
	}
}

func TestResolveMidpoint(t *testing.T) {
	cfg := DefaultLinkConfig()
	cfg.Strategy = LinkMidpoint
	links := []content.Link{
		{BBox: geom.NewRect(100, 100, 200, 112), URI: "https://example.com"},
	}
	r := NewLinkResolverWithConfig(links, cfg)

	// Span sticking far out but centered inside the hot zone.
	if _, ok := r.Resolve(geom.NewRect(60, 100, 240, 112)); !ok {
		t.Error("span with midpoint inside hot zone should resolve")
	}
	if _, ok := r.Resolve(geom.NewRect(190, 100, 320, 112)); ok {
		t.Error("span with midpoint outside hot zone must not resolve")
	}
}

func TestResolveSkipsEmptyURIs(t *testing.T) {
	links := []content.Link{
		{BBox: geom.NewRect(100, 100, 200, 112)},
		{BBox: geom.NewRect(100, 100, 200, 112), URI: "https://example.com"},
	}
	r := NewLinkResolver(links)
	uri, ok := r.Resolve(geom.NewRect(110, 100, 180, 112))
	if !ok || uri != "https://example.com" {
		t.Errorf("empty URI links must be skipped, got %q %v", uri, ok)
	}
}

func TestResolveFirstMatchWins(t *testing.T) {
	links := []content.Link{
		{BBox: geom.NewRect(100, 100, 200, 112), URI: "https://first.example"},
		{BBox: geom.NewRect(100, 100, 200, 112), URI: "https://second.example"},
	}
	r := NewLinkResolver(links)
	uri, _ := r.Resolve(geom.NewRect(110, 100, 180, 112))
	if uri != "https://first.example" {
		t.Errorf("expected first link, got %q", uri)
	}
}

func TestResolveDegenerateSpan(t *testing.T) {
	links := []content.Link{
		{BBox: geom.NewRect(100, 100, 200, 112), URI: "https://example.com"},
	}
	r := NewLinkResolver(links)
	if _, ok := r.Resolve(geom.Rect{}); ok {
		t.Error("zero-area span must not resolve")
	}
}
