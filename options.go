package pagemd

import (
	"github.com/tsawler/pagemd/layout"
	"github.com/tsawler/pagemd/markdown"
)

// Table detection strategies understood by providers that support strategy
// selection.
var tableStrategies = map[string]bool{
	"lines":        true,
	"lines_strict": true,
	"text":         true,
}

// convertOptions holds configuration for markdown conversion.
type convertOptions struct {
	// Page selection (1-indexed in API, stored as-is)
	pages []int

	// margins are left, top, right, bottom distances excluded from every
	// page.
	margins [4]float64

	// Image handling
	imageDir       string
	embedImages    bool
	imageSizeLimit float64

	// Serialization
	ignoreCode bool
	forceText  bool
	linkConfig markdown.LinkConfig
	annotator  markdown.Annotator

	// Layout
	extendRight bool
	shadedLast  bool

	// Strategy injection; nil selects the default implementations.
	graphics layout.GraphicsProcessor
	writer   markdown.PageWriter

	// Provider hints and safety valves
	tableStrategy string
	graphicsLimit int

	// Concurrency
	parallel int
}

// defaultOptions returns the default conversion options.
func defaultOptions() convertOptions {
	return convertOptions{
		pages:          nil, // nil means all pages
		margins:        [4]float64{0, 50, 0, 50},
		imageSizeLimit: 0.05,
		forceText:      true,
		linkConfig:     markdown.DefaultLinkConfig(),
		tableStrategy:  "lines_strict",
		graphicsLimit:  0, // 0 means unlimited
		parallel:       1,
	}
}

// clone creates a deep copy of convertOptions.
func (o convertOptions) clone() convertOptions {
	newOpts := o
	if o.pages != nil {
		newOpts.pages = make([]int, len(o.pages))
		copy(newOpts.pages, o.pages)
	}
	return newOpts
}

// validate checks option values before conversion starts.
func (o convertOptions) validate() error {
	for _, m := range o.margins {
		if m < 0 {
			return configErr("Margins", "margin values must not be negative")
		}
	}
	for _, p := range o.pages {
		if p < 1 {
			return configErr("Pages", "page numbers are 1-indexed")
		}
	}
	if o.imageDir != "" && o.embedImages {
		return configErr("WriteImages", "writing image files and embedding data URIs are mutually exclusive")
	}
	if o.imageSizeLimit < 0 || o.imageSizeLimit >= 1 {
		return configErr("ImageSizeLimit", "fraction must be in [0, 1)")
	}
	if !tableStrategies[o.tableStrategy] {
		return configErr("TableStrategy", "unknown strategy "+o.tableStrategy)
	}
	if o.graphicsLimit < 0 {
		return configErr("GraphicsLimit", "limit must not be negative")
	}
	if o.parallel < 1 {
		return configErr("Parallel", "worker count must be at least 1")
	}
	return nil
}

// writerConfig derives the markdown writer configuration.
func (o convertOptions) writerConfig() markdown.WriterConfig {
	cfg := markdown.DefaultWriterConfig()
	cfg.ImageDir = o.imageDir
	cfg.EmbedImages = o.embedImages
	cfg.IgnoreCode = o.ignoreCode
	cfg.ForceText = o.forceText
	cfg.Links = o.linkConfig
	cfg.Annotator = o.annotator
	return cfg
}
