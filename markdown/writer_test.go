package markdown

import (
	"strings"
	"testing"

	"github.com/tsawler/pagemd/content"
	"github.com/tsawler/pagemd/geom"
	"github.com/tsawler/pagemd/layout"
)

func styledSpan(text string, r geom.Rect, flags content.StyleFlags) content.Span {
	return content.Span{BBox: r, Text: text, FontSize: 10, Flags: flags, Alpha: 255}
}

func textLine(text string, r geom.Rect, flags content.StyleFlags) layout.Line {
	return layout.Line{Rect: r, Spans: []content.Span{styledSpan(text, r, flags)}}
}

func textRegion(box geom.Rect, lines ...layout.Line) layout.Region {
	return layout.Region{Kind: layout.RegionText, Box: box, Lines: lines}
}

func writePage(t *testing.T, w *Writer, regions ...layout.Region) string {
	t.Helper()
	page := &content.Page{Rect: geom.NewRect(0, 0, 600, 800)}
	out, err := w.Page(PageInput{Page: page, Regions: regions, Clip: page.Rect})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return out
}

func plainWriter() *Writer {
	return NewWriter(NewHeaderIdentifier())
}

func TestPageTwoColumns(t *testing.T) {
	left := textRegion(geom.NewRect(50, 100, 300, 115),
		textLine("Left column", geom.NewRect(50, 100, 300, 115), 0))
	right := textRegion(geom.NewRect(350, 100, 550, 115),
		textLine("Right column", geom.NewRect(350, 100, 550, 115), 0))

	got := writePage(t, plainWriter(), left, right)
	if got != "Left column\n\nRight column\n" {
		t.Errorf("expected %q, got %q", "Left column\n\nRight column\n", got)
	}
}

func TestPageInlineStyles(t *testing.T) {
	tests := []struct {
		name  string
		flags content.StyleFlags
		want  string
	}{
		{"bold", content.StyleBold, "**word**"},
		{"italic", content.StyleItalic, "_word_"},
		{"strikeout", content.StyleStrikeout, "~~word~~"},
		{"bold italic", content.StyleBold | content.StyleItalic, "**_word_**"},
		{"mono", content.StyleMono, "`word`"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := geom.NewRect(50, 100, 100, 112)
			line := layout.Line{Rect: r, Spans: []content.Span{
				styledSpan("plain", geom.NewRect(10, 100, 45, 112), 0),
				styledSpan("word", r, tt.flags),
			}}
			got := writePage(t, plainWriter(), textRegion(r, line))
			if !strings.Contains(got, tt.want) {
				t.Errorf("expected output to contain %q, got %q", tt.want, got)
			}
		})
	}
}

func TestPageCodeBlock(t *testing.T) {
	box := geom.NewRect(50, 100, 400, 150)
	lines := []layout.Line{
		textLine("x := 1", geom.NewRect(100, 100, 200, 112), content.StyleMono),
		textLine("y := 2", geom.NewRect(100, 115, 200, 127), content.StyleMono),
		textLine("after the code", geom.NewRect(50, 130, 300, 142), 0),
	}
	got := writePage(t, plainWriter(), textRegion(box, lines...))

	if strings.Count(got, "```") != 2 {
		t.Fatalf("expected one opened and one closed fence, got %q", got)
	}
	if !strings.Contains(got, "x := 1\n") || !strings.Contains(got, "y := 2\n") {
		t.Errorf("code lines missing: %q", got)
	}
	fenceIdx := strings.LastIndex(got, "```")
	if !strings.Contains(got[fenceIdx:], "after the code") {
		t.Errorf("text after code must follow the closing fence: %q", got)
	}
}

func TestPageCodeIndentation(t *testing.T) {
	// x0 offset 100 at font size 10 gives 100/(10*0.5) = 20 spaces.
	box := geom.NewRect(0, 100, 400, 120)
	line := textLine("indented", geom.NewRect(100, 100, 200, 112), content.StyleMono)
	got := writePage(t, plainWriter(), textRegion(box, line))

	if !strings.Contains(got, strings.Repeat(" ", 20)+"indented") {
		t.Errorf("expected 20-space indent, got %q", got)
	}
}

func TestPageIgnoreCode(t *testing.T) {
	cfg := DefaultWriterConfig()
	cfg.IgnoreCode = true
	w := NewWriterWithConfig(NewHeaderIdentifier(), cfg)

	box := geom.NewRect(50, 100, 400, 120)
	line := textLine("mono text", geom.NewRect(50, 100, 200, 112), content.StyleMono)
	got := writePage(t, w, textRegion(box, line))

	if strings.Contains(got, "```") {
		t.Errorf("IgnoreCode must suppress fences, got %q", got)
	}
}

func TestPageHeaders(t *testing.T) {
	h := NewHeaderIdentifier()
	h.Fit([]*content.Page{pageWithSpans(
		sizedSpan("Title", 20),
		sizedSpan("body body body body body body body body", 10),
	)})
	w := NewWriter(h)

	box := geom.NewRect(50, 50, 400, 130)
	title := geom.NewRect(50, 50, 200, 70)
	body := geom.NewRect(50, 100, 300, 112)
	titleLine := layout.Line{Rect: title, Spans: []content.Span{
		{BBox: title, Text: "Title", FontSize: 20, Alpha: 255},
	}}
	bodyLine := layout.Line{Rect: body, Spans: []content.Span{
		{BBox: body, Text: "body text", FontSize: 10, Alpha: 255},
	}}
	got := writePage(t, w, textRegion(box, titleLine, bodyLine))

	if !strings.Contains(got, "# Title") {
		t.Errorf("expected header prefix, got %q", got)
	}
	if strings.Contains(got, "# body") {
		t.Errorf("body text must not be a header: %q", got)
	}
}

func TestPageBrokenHeaderJoins(t *testing.T) {
	h := NewHeaderIdentifier()
	h.Fit([]*content.Page{pageWithSpans(
		sizedSpan("Long Title", 20),
		sizedSpan("body body body body body body body body", 10),
	)})
	w := NewWriter(h)

	box := geom.NewRect(50, 50, 400, 110)
	first := geom.NewRect(50, 50, 200, 70)
	second := geom.NewRect(50, 72, 200, 92)
	lines := []layout.Line{
		{Rect: first, Spans: []content.Span{{BBox: first, Text: "A Very Long", FontSize: 20, Alpha: 255}}},
		{Rect: second, Spans: []content.Span{{BBox: second, Text: "Heading", FontSize: 20, Alpha: 255}}},
	}
	got := writePage(t, w, textRegion(box, lines...))

	if !strings.Contains(got, "# A Very Long Heading") {
		t.Errorf("broken heading should join into one line, got %q", got)
	}
	if strings.Count(got, "#") != 1 {
		t.Errorf("heading marker must appear once, got %q", got)
	}
}

func TestPageBulletRewrite(t *testing.T) {
	box := geom.NewRect(50, 100, 400, 160)
	tests := []string{"• first point", "- second point", "· third point"}
	var lines []layout.Line
	y := 100.0
	for _, text := range tests {
		lines = append(lines, textLine(text, geom.NewRect(50, y, 300, y+12), 0))
		y += 15
	}
	got := writePage(t, plainWriter(), textRegion(box, lines...))

	for _, want := range []string{"- first point", "- second point", "- third point"} {
		if !strings.Contains(got, want) {
			t.Errorf("expected %q in %q", want, got)
		}
	}
	if strings.Contains(got, "•") {
		t.Errorf("bullet glyph must be rewritten: %q", got)
	}
}

func TestPageBulletIndent(t *testing.T) {
	// The list marker keeps its visual nesting: the x-offset divided by the
	// character width becomes leading spaces.
	box := geom.NewRect(0, 100, 400, 130)

	flush := writePage(t, plainWriter(), textRegion(box,
		textLine("• item", geom.NewRect(0, 100, 60, 112), 0)))
	if flush != "- item\n" {
		t.Errorf("flush-left bullet must not be padded, got %q", flush)
	}

	// Six character widths of 10 units from the left edge.
	nested := writePage(t, plainWriter(), textRegion(box,
		textLine("• item", geom.NewRect(60, 100, 120, 112), 0)))
	if nested != "      - item\n" {
		t.Errorf("expected 6-space indent, got %q", nested)
	}
}

func TestPageLinkMarkup(t *testing.T) {
	r := geom.NewRect(50, 100, 150, 112)
	page := &content.Page{
		Rect:  geom.NewRect(0, 0, 600, 800),
		Links: []content.Link{{BBox: r, URI: "https://example.com"}},
	}
	region := textRegion(r, textLine("click here", r, 0))
	got, err := plainWriter().Page(PageInput{Page: page, Regions: []layout.Region{region}, Clip: page.Rect})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(got, "[click here](https://example.com)") {
		t.Errorf("expected link markup, got %q", got)
	}
}

func TestPageTableRegion(t *testing.T) {
	got := writePage(t, plainWriter(), layout.Region{
		Kind:  layout.RegionTable,
		Table: staticTable{md: "|a|b|\n|-|-|\n|1|2|\n"},
	})
	if !strings.Contains(got, "|a|b|") {
		t.Errorf("table markdown missing: %q", got)
	}
}

func TestPageForcedTextForGraphics(t *testing.T) {
	line := textLine("caption inside figure", geom.NewRect(60, 210, 200, 222), 0)
	region := layout.Region{
		Kind:    layout.RegionGraphic,
		Cluster: &layout.GraphicsCluster{Rect: geom.NewRect(50, 200, 300, 400)},
		Lines:   []layout.Line{line},
	}
	got := writePage(t, plainWriter(), region)
	if !strings.Contains(got, "caption inside figure") {
		t.Errorf("forced text missing: %q", got)
	}

	cfg := DefaultWriterConfig()
	cfg.ForceText = false
	w := NewWriterWithConfig(NewHeaderIdentifier(), cfg)
	got = writePage(t, w, region)
	if strings.Contains(got, "caption") {
		t.Errorf("forced text must be off, got %q", got)
	}
}

func TestPageParagraphBreakOnGap(t *testing.T) {
	box := geom.NewRect(50, 100, 400, 300)
	// Same block, but the second line sits far below the first.
	first := textLine("paragraph one", geom.NewRect(50, 100, 300, 112), 0)
	second := textLine("paragraph two", geom.NewRect(50, 200, 300, 212), 0)
	got := writePage(t, plainWriter(), textRegion(box, first, second))

	if !strings.Contains(got, "paragraph one\n\nparagraph two") {
		t.Errorf("expected blank line between distant lines, got %q", got)
	}
}

func TestPageBlockChangeBreak(t *testing.T) {
	box := geom.NewRect(50, 100, 400, 160)
	first := textLine("block one", geom.NewRect(50, 100, 300, 112), 0)
	second := textLine("block two", geom.NewRect(50, 115, 300, 127), 0)
	second.Spans[0].Block = 1
	got := writePage(t, plainWriter(), textRegion(box, first, second))

	if !strings.Contains(got, "block one\n\nblock two") {
		t.Errorf("expected blank line at block boundary, got %q", got)
	}
}

// staticTable satisfies content.Table with fixed markdown.
type staticTable struct {
	md string
}

func (t staticTable) BBox() geom.Rect       { return geom.NewRect(50, 100, 300, 200) }
func (t staticTable) HeaderBBox() geom.Rect { return geom.Rect{} }
func (t staticTable) RowCount() int         { return 2 }
func (t staticTable) ColCount() int         { return 2 }
func (t staticTable) ToMarkdown() string    { return t.md }
