package layout

import (
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/tsawler/pagemd/content"
	"github.com/tsawler/pagemd/geom"
)

// Line is one visual text line: a rectangle and its spans sorted left to
// right.
type Line struct {
	// Rect is the union of the member span boxes.
	Rect geom.Rect

	// Spans are the member spans, sorted by ascending left coordinate.
	Spans []content.Span
}

// Text returns the line content with single spaces between spans.
func (l Line) Text() string {
	parts := make([]string, 0, len(l.Spans))
	for _, s := range l.Spans {
		parts = append(parts, s.Text)
	}
	return strings.Join(parts, " ")
}

// AllMono returns true if every span in the line is monospaced.
func (l Line) AllMono() bool {
	if len(l.Spans) == 0 {
		return false
	}
	for _, s := range l.Spans {
		if !s.Flags.Has(content.StyleMono) {
			return false
		}
	}
	return true
}

// LineConfig holds configuration for line assembly.
type LineConfig struct {
	// Tolerance is the maximum difference between top or bottom coordinates
	// for two spans to share a line. Default: 3 page units.
	Tolerance float64

	// MergeGapRatio is the maximum horizontal gap between two same-style
	// spans to merge them, as a fraction of the font size. Default: 0.1.
	// Merging repairs glyph-level fragmentation in extracted text.
	MergeGapRatio float64

	// ClipOverlap is the minimum fraction of a span's area that must lie
	// inside the clip rectangle for the span to qualify. Default: 0.8.
	ClipOverlap float64

	// KeepInvisible retains spans with alpha 0. Off by default; enable for
	// pages whose text comes from an OCR layer.
	KeepInvisible bool
}

// DefaultLineConfig returns sensible default configuration.
func DefaultLineConfig() LineConfig {
	return LineConfig{
		Tolerance:     3.0,
		MergeGapRatio: 0.1,
		ClipOverlap:   0.8,
	}
}

// LineAssembler merges raw text spans into visually coherent lines. Content
// extraction tends to start a new structural line whenever the horizontal
// distance between spans exceeds some threshold; the assembler undoes that by
// regrouping spans purely by vertical proximity.
type LineAssembler struct {
	config LineConfig
}

// NewLineAssembler creates a line assembler with default configuration.
func NewLineAssembler() *LineAssembler {
	return &LineAssembler{config: DefaultLineConfig()}
}

// NewLineAssemblerWithConfig creates a line assembler with custom configuration.
func NewLineAssemblerWithConfig(config LineConfig) *LineAssembler {
	return &LineAssembler{config: config}
}

// Assemble regroups spans into lines, restricted to the clip rectangle when
// one is given. The result is sorted by ascending bottom coordinate; spans
// within a line are sorted by ascending left coordinate. A page with no
// qualifying spans yields an empty slice.
func (a *LineAssembler) Assemble(spans []content.Span, clip geom.Rect) []Line {
	qualified := a.filterSpans(spans, clip)
	if len(qualified) == 0 {
		return nil
	}

	sort.SliceStable(qualified, func(i, j int) bool {
		return qualified[i].BBox.Y1 < qualified[j].BBox.Y1
	})

	var lines []Line
	current := []content.Span{qualified[0]}
	lrect := qualified[0].BBox

	for _, s := range qualified[1:] {
		prev := current[len(current)-1].BBox
		if abs(s.BBox.Y1-prev.Y1) <= a.config.Tolerance ||
			abs(s.BBox.Y0-prev.Y0) <= a.config.Tolerance {
			current = append(current, s)
			lrect = lrect.Union(s.BBox)
			continue
		}
		lines = append(lines, Line{Rect: lrect, Spans: a.sanitizeSpans(current)})
		current = []content.Span{s}
		lrect = s.BBox
	}
	lines = append(lines, Line{Rect: lrect, Spans: a.sanitizeSpans(current)})

	return lines
}

// SourceLines groups qualifying spans by the block and line identifiers the
// provider assigned during extraction and returns one Line per group.
// Extraction order rather than visual proximity decides membership here, so
// side-by-side columns stay apart. Column detection runs on these rectangles;
// visual lines are then assembled per column with Assemble.
func (a *LineAssembler) SourceLines(spans []content.Span, clip geom.Rect) []Line {
	qualified := a.filterSpans(spans, clip)
	if len(qualified) == 0 {
		return nil
	}

	type key struct{ block, line int }
	index := make(map[key]int)
	var lines []Line
	for _, s := range qualified {
		k := key{s.Block, s.Line}
		i, ok := index[k]
		if !ok {
			index[k] = len(lines)
			lines = append(lines, Line{Rect: s.BBox, Spans: []content.Span{s}})
			continue
		}
		lines[i].Rect = lines[i].Rect.Union(s.BBox)
		lines[i].Spans = append(lines[i].Spans, s)
	}

	sort.SliceStable(lines, func(i, j int) bool {
		if lines[i].Rect.Y1 != lines[j].Rect.Y1 {
			return lines[i].Rect.Y1 < lines[j].Rect.Y1
		}
		return lines[i].Rect.X0 < lines[j].Rect.X0
	})
	for i := range lines {
		lines[i].Spans = a.sanitizeSpans(lines[i].Spans)
	}
	return lines
}

// filterSpans drops whitespace-only, invisible, vertical and out-of-clip
// spans, then applies superscript bbox repair and text normalization. The
// input slice is never modified.
func (a *LineAssembler) filterSpans(spans []content.Span, clip geom.Rect) []content.Span {
	out := make([]content.Span, 0, len(spans))
	for i, s := range spans {
		if s.Vertical {
			continue
		}
		if isWhite(s.Text) {
			continue
		}
		if s.Alpha == 0 && !a.config.KeepInvisible {
			continue
		}
		if !clip.IsEmpty() {
			is := s.BBox.Intersect(clip)
			overlap := 0.0
			if is.IsValid() {
				overlap = is.Area()
			}
			if overlap < s.BBox.Area()*a.config.ClipOverlap {
				continue
			}
		}
		if s.Flags.Has(content.StyleSuperscript) {
			s = repairSuperscript(s, spans, i)
		}
		s.Text = norm.NFC.String(s.Text)
		out = append(out, s)
	}
	return out
}

// repairSuperscript clips a superscript span's bbox to the baseline of its
// neighbor in the same source line and wraps its text in brackets so that
// downstream styling treats it as a footnote-style marker.
func repairSuperscript(s content.Span, spans []content.Span, idx int) content.Span {
	if neighbor, ok := sameLineNeighbor(spans, idx); ok {
		s.BBox.Y1 = neighbor.BBox.Y1
	}
	s.Text = "[" + s.Text + "]"
	return s
}

// sameLineNeighbor returns the preceding span of the same source block and
// line, or the following one for a line-initial span.
func sameLineNeighbor(spans []content.Span, idx int) (content.Span, bool) {
	s := spans[idx]
	for i := idx - 1; i >= 0; i-- {
		if spans[i].Block == s.Block && spans[i].Line == s.Line {
			return spans[i], true
		}
	}
	for i := idx + 1; i < len(spans); i++ {
		if spans[i].Block == s.Block && spans[i].Line == s.Line {
			return spans[i], true
		}
	}
	return content.Span{}, false
}

// sanitizeSpans sorts a closed line's spans left to right and merges
// horizontally adjacent fragments that share style flags and font size when
// the gap between them is below MergeGapRatio of the font size.
func (a *LineAssembler) sanitizeSpans(spans []content.Span) []content.Span {
	sorted := make([]content.Span, len(spans))
	copy(sorted, spans)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].BBox.X0 < sorted[j].BBox.X0
	})

	for i := len(sorted) - 1; i > 0; i-- {
		s0 := sorted[i-1]
		s1 := sorted[i]
		delta := s1.FontSize * a.config.MergeGapRatio
		if s0.BBox.X1+delta < s1.BBox.X0 ||
			s0.Flags != s1.Flags || s0.FontSize != s1.FontSize {
			continue
		}
		// Spans are occasionally emitted twice with identical text and box;
		// join text only when the fragments genuinely differ.
		if s0.Text != s1.Text || s0.BBox != s1.BBox {
			s0.Text += s1.Text
		}
		s0.BBox = s0.BBox.Union(s1.BBox)
		sorted[i-1] = s0
		sorted = append(sorted[:i], sorted[i+1:]...)
	}
	return sorted
}

// isWhite returns true for text consisting entirely of whitespace.
func isWhite(s string) bool {
	return strings.TrimSpace(s) == ""
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
