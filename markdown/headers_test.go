package markdown

import (
	"testing"

	"github.com/tsawler/pagemd/content"
	"github.com/tsawler/pagemd/geom"
)

func sizedSpan(text string, size float64) content.Span {
	return content.Span{
		BBox:     geom.NewRect(0, 0, 100, size),
		Text:     text,
		FontSize: size,
		Alpha:    255,
	}
}

func pageWithSpans(spans ...content.Span) *content.Page {
	return &content.Page{Rect: geom.NewRect(0, 0, 600, 800), Spans: spans}
}

func TestHeaderLevelsFromFontSizes(t *testing.T) {
	page := pageWithSpans(
		sizedSpan("Title", 24),
		sizedSpan("Section", 18),
		sizedSpan("the quick brown fox jumps over the lazy dog many many times", 12),
		sizedSpan("footnote text", 10),
	)
	h := NewHeaderIdentifier()
	h.Fit([]*content.Page{page})

	tests := []struct {
		size  float64
		level int
	}{
		{24, 1},
		{18, 2},
		{12, 0},
		{10, 0},
	}
	for _, tt := range tests {
		if got := h.Level(sizedSpan("x", tt.size)); got != tt.level {
			t.Errorf("size %.0f: expected level %d, got %d", tt.size, tt.level, got)
		}
	}
}

func TestHeaderPrefix(t *testing.T) {
	page := pageWithSpans(
		sizedSpan("Title", 20),
		sizedSpan("body body body body body body body body body", 11),
	)
	h := NewHeaderIdentifier()
	h.Fit([]*content.Page{page})

	if got := h.Prefix(sizedSpan("Title", 20)); got != "# " {
		t.Errorf("expected %q, got %q", "# ", got)
	}
	if got := h.Prefix(sizedSpan("body", 11)); got != "" {
		t.Errorf("body text must have no prefix, got %q", got)
	}
}

func TestHeaderBodyLimitFloor(t *testing.T) {
	// Even when 10pt text dominates, sizes at or below the floor of 12
	// never become headers.
	page := pageWithSpans(
		sizedSpan("lots and lots and lots of small body text on this page", 10),
		sizedSpan("slightly bigger", 11),
	)
	h := NewHeaderIdentifier()
	h.Fit([]*content.Page{page})

	if got := h.Level(sizedSpan("x", 11)); got != 0 {
		t.Errorf("11pt is below the body floor, expected level 0, got %d", got)
	}
}

func TestHeaderMaxLevels(t *testing.T) {
	spans := []content.Span{
		sizedSpan("body body body body body body body body", 10),
	}
	for _, size := range []float64{40, 36, 32, 28, 24, 20, 18, 16} {
		spans = append(spans, sizedSpan("H", size))
	}
	h := NewHeaderIdentifier()
	h.Fit([]*content.Page{pageWithSpans(spans...)})

	if got := h.Level(sizedSpan("x", 16)); got != 6 {
		t.Errorf("levels must cap at 6, got %d", got)
	}
	if got := h.Level(sizedSpan("x", 40)); got != 1 {
		t.Errorf("largest size must be level 1, got %d", got)
	}
}

func TestHeaderUnfittedIdentifier(t *testing.T) {
	h := NewHeaderIdentifier()
	if got := h.Level(sizedSpan("x", 30)); got != 0 {
		t.Errorf("unfitted identifier must map everything to body, got %d", got)
	}
}

func TestHeaderFitSkipsNilPages(t *testing.T) {
	h := NewHeaderIdentifier()
	h.Fit([]*content.Page{nil, pageWithSpans(
		sizedSpan("Title", 20),
		sizedSpan("body body body body body body", 10),
	)})
	if got := h.Level(sizedSpan("x", 20)); got != 1 {
		t.Errorf("expected level 1, got %d", got)
	}
}
