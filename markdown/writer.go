package markdown

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/tsawler/pagemd/content"
	"github.com/tsawler/pagemd/geom"
	"github.com/tsawler/pagemd/layout"
)

// bulletPrefixes are the glyph sequences list items start with in the wild.
// Any of them becomes a markdown "- " item.
var bulletPrefixes = []string{
	"- ",
	"* ",
	"",
	"",
	"·",
	"•",
	"●",
}

// Annotator produces a text description for an image, typically via OCR.
// A returned empty string means nothing useful was found.
type Annotator interface {
	Annotate(img *content.Image) (string, error)
}

// WriterConfig holds configuration for markdown serialization.
type WriterConfig struct {
	// ImageDir, when set, saves images as PNG files in that directory and
	// references them by file name.
	ImageDir string

	// ImageBaseName prefixes generated image file names. Default: "figure".
	ImageBaseName string

	// EmbedImages emits images as base64 data URIs instead of files.
	EmbedImages bool

	// ForceText renders text lines covered by images and vector graphics
	// after the figure reference, so no text is lost when figures are not
	// rendered. Default: on.
	ForceText bool

	// IgnoreCode disables code block detection; mono-spaced lines are then
	// written as ordinary text.
	IgnoreCode bool

	// Links configures how spans are matched to link hot zones.
	Links LinkConfig

	// Annotator, when set, is consulted for every written or embedded image
	// and its description appended as an HTML comment.
	Annotator Annotator
}

// DefaultWriterConfig returns sensible default configuration.
func DefaultWriterConfig() WriterConfig {
	return WriterConfig{
		ImageBaseName: "figure",
		ForceText:     true,
		Links:         DefaultLinkConfig(),
	}
}

// PageWriter serializes composed pages. Fit runs once over the whole page
// selection before the first Page call; Page may then be called concurrently.
// Writer is the default implementation.
type PageWriter interface {
	Fit(pages []*content.Page)
	Page(in PageInput) (string, error)
}

// Writer serializes composed page regions to GitHub-flavored markdown.
// Styling covers headers, bold, italic, strikeout, inline code, code blocks,
// list bullets and links.
type Writer struct {
	config  WriterConfig
	headers *HeaderIdentifier
}

// NewWriter creates a writer with default configuration.
func NewWriter(headers *HeaderIdentifier) *Writer {
	return NewWriterWithConfig(headers, DefaultWriterConfig())
}

// NewWriterWithConfig creates a writer with custom configuration. A nil
// header identifier gets a fresh one; Fit it before writing pages.
func NewWriterWithConfig(headers *HeaderIdentifier, config WriterConfig) *Writer {
	if headers == nil {
		headers = NewHeaderIdentifier()
	}
	if config.ImageBaseName == "" {
		config.ImageBaseName = "figure"
	}
	return &Writer{config: config, headers: headers}
}

// Fit derives the document's header levels from the given pages.
func (w *Writer) Fit(pages []*content.Page) {
	w.headers.Fit(pages)
}

// PageInput bundles one page's composed content.
type PageInput struct {
	// Page supplies the page index and link hot zones.
	Page *content.Page
	// Regions is the page's reading order.
	Regions []layout.Region
	// Clip is the page text area after margins.
	Clip geom.Rect
}

// Page serializes one page. The result is normalized and ends with exactly
// one newline; pages without content yield a single newline.
func (w *Writer) Page(in PageInput) (string, error) {
	links := NewLinkResolverWithConfig(in.Page.Links, w.config.Links)

	var sb strings.Builder
	imgSeq := 0
	for _, region := range in.Regions {
		switch region.Kind {
		case layout.RegionTable:
			sb.WriteString("\n")
			sb.WriteString(region.Table.ToMarkdown())
			sb.WriteString("\n")

		case layout.RegionImage:
			md, err := w.imageMarkdown(region.Image, in.Page.Index, imgSeq)
			if err != nil {
				return "", err
			}
			imgSeq++
			sb.WriteString(md)
			if md != "" && w.config.Annotator != nil {
				if note, err := w.config.Annotator.Annotate(region.Image); err == nil && note != "" {
					sb.WriteString("<!-- " + strings.TrimSpace(note) + " -->\n")
				}
			}
			w.writeForcedText(&sb, region.Lines, links)

		case layout.RegionGraphic:
			// Vector clusters carry no pixel data; only their covered text
			// can be recovered.
			w.writeForcedText(&sb, region.Lines, links)

		default:
			sb.WriteString(w.textRegion(region, in.Clip, links))
		}
	}
	return NormalizePage(sb.String()), nil
}

// writeForcedText renders lines covered by a figure as plain styled text.
func (w *Writer) writeForcedText(sb *strings.Builder, lines []layout.Line, links *LinkResolver) {
	if !w.config.ForceText || len(lines) == 0 {
		return
	}
	sb.WriteString("\n")
	for _, line := range lines {
		sb.WriteString(w.styledLine(line.Spans, links))
		sb.WriteString("\n")
	}
}

// textRegion serializes one text region: the core line loop with header,
// code block, list and paragraph break handling.
func (w *Writer) textRegion(region layout.Region, clip geom.Rect, links *LinkResolver) string {
	var out []byte
	prevBlock := -1
	prevHeader := ""
	havePrev := false
	var prevRect geom.Rect
	code := false

	for _, line := range region.Lines {
		if len(line.Spans) == 0 {
			continue
		}

		if line.AllMono() && !w.config.IgnoreCode {
			if !code {
				out = append(out, "```\n"...)
				code = true
			}
			indent := int((line.Rect.X0 - clip.X0) / (line.Spans[0].FontSize * 0.5))
			if indent < 0 {
				indent = 0
			}
			out = append(out, strings.Repeat(" ", indent)...)
			out = append(out, line.Text()...)
			out = append(out, '\n')
			continue
		}
		if code {
			out = append(out, "```\n"...)
			code = false
		}

		span0 := line.Spans[0]
		if span0.Block != prevBlock {
			out = append(out, '\n')
			prevBlock = span0.Block
		}

		// Paragraph break on a large vertical jump, a footnote-style "["
		// start, a list bullet or a superscript lead-in.
		if (havePrev && line.Rect.Y1-prevRect.Y1 > line.Rect.Height()*1.5) ||
			strings.HasPrefix(span0.Text, "[") ||
			hasBulletPrefix(span0.Text) ||
			span0.Flags.Has(content.StyleSuperscript) {
			out = append(out, '\n')
		}
		prevRect = line.Rect
		havePrev = true

		header := w.headers.Prefix(span0)

		// A heading broken over lines continues the previous heading line.
		if header != "" && header == prevHeader && len(out) > 0 {
			out = out[:len(out)-1]
			out = append(out, ' ')
			out = append(out, line.Text()...)
			out = append(out, '\n')
			continue
		}
		prevHeader = header

		if header != "" {
			out = append(out, header...)
			out = append(out, line.Text()...)
			out = append(out, '\n')
			continue
		}

		// List items keep their visual nesting: the x-offset becomes one
		// leading space per character width.
		if hasBulletPrefix(span0.Text) {
			out = append(out, strings.Repeat(" ", bulletIndent(span0, clip))...)
		}
		out = append(out, w.styledLine(line.Spans, links)...)
		out = append(out, '\n')
	}

	if code {
		out = append(out, "```\n"...)
	}
	out = append(out, '\n')
	return string(out)
}

// styledLine renders a line's spans with inline styling and link markup.
func (w *Writer) styledLine(spans []content.Span, links *LinkResolver) string {
	var sb strings.Builder
	for i, s := range spans {
		text := strings.TrimSpace(s.Text)
		if text == "" {
			continue
		}

		if s.Flags.Has(content.StyleMono) {
			sb.WriteString("`" + text + "` ")
			continue
		}

		prefix, suffix := "", ""
		if s.Flags.Has(content.StyleBold) {
			prefix += "**"
			suffix = "**" + suffix
		}
		if s.Flags.Has(content.StyleItalic) {
			prefix += "_"
			suffix = "_" + suffix
		}
		if s.Flags.Has(content.StyleStrikeout) {
			prefix += "~~"
			suffix = "~~" + suffix
		}

		if uri, ok := links.Resolve(s.BBox); ok {
			text = "[" + text + "](" + uri + ")"
		}

		piece := prefix + text + suffix + " "
		if i == 0 {
			piece = rewriteBullet(piece)
		}
		sb.WriteString(piece)
	}
	return strings.TrimRight(sb.String(), " ")
}

// bulletIndent converts a list item's offset from the text area's left edge
// into a space count, using the span's average character width as the unit.
func bulletIndent(s content.Span, clip geom.Rect) int {
	runes := utf8.RuneCountInString(s.Text)
	if runes == 0 {
		return 0
	}
	cwidth := s.BBox.Width() / float64(runes)
	if cwidth <= 0 {
		return 0
	}
	indent := int(math.Round((s.BBox.X0 - clip.X0) / cwidth))
	if indent < 0 {
		return 0
	}
	return indent
}

// hasBulletPrefix reports whether text starts with a known bullet glyph.
func hasBulletPrefix(text string) bool {
	for _, b := range bulletPrefixes {
		if strings.HasPrefix(text, b) {
			return true
		}
	}
	return false
}

// rewriteBullet replaces a leading bullet glyph with the markdown list
// marker.
func rewriteBullet(text string) string {
	for _, b := range bulletPrefixes {
		if strings.HasPrefix(text, b) {
			return "- " + strings.TrimLeft(strings.TrimPrefix(text, b), " ")
		}
	}
	return text
}
