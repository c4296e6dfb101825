package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/tsawler/pagemd"
	"github.com/tsawler/pagemd/jsonprovider"
)

// Flag variables.
var (
	flagOutput        string
	flagConfig        string
	flagPages         []int
	flagImageDir      string
	flagEmbedImages   bool
	flagChunks        bool
	flagParallel      int
	flagTableStrategy string
	flagGraphicsLimit int
)

var convertCmd = &cobra.Command{
	Use:   "convert <input.json>",
	Short: "Convert a JSON page dump to markdown",
	Long: `Convert reads a JSON page dump, reconstructs the reading order of every
page and writes the document as markdown.

Examples:
  pagemd convert doc.json -o doc.md
  pagemd convert doc.json --pages 1,2,3 --images out/
  pagemd convert doc.json --chunks -o chunks.json
  pagemd convert doc.json --config pagemd.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runConvert,
}

// fileConfig mirrors the convert flags for yaml config files. Flags set on
// the command line win over the file.
type fileConfig struct {
	Pages         []int     `yaml:"pages"`
	Margins       []float64 `yaml:"margins"`
	ImageDir      string    `yaml:"image_dir"`
	EmbedImages   bool      `yaml:"embed_images"`
	TableStrategy string    `yaml:"table_strategy"`
	GraphicsLimit int       `yaml:"graphics_limit"`
	Parallel      int       `yaml:"parallel"`
}

func init() {
	rootCmd.AddCommand(convertCmd)

	convertCmd.Flags().StringVarP(&flagOutput, "output", "o", "", "Output file (default: stdout)")
	convertCmd.Flags().StringVar(&flagConfig, "config", "", "YAML config file")
	convertCmd.Flags().IntSliceVar(&flagPages, "pages", nil, "Pages to convert, 1-indexed (default: all)")
	convertCmd.Flags().StringVar(&flagImageDir, "images", "", "Directory for extracted images")
	convertCmd.Flags().BoolVar(&flagEmbedImages, "embed-images", false, "Embed images as data URIs")
	convertCmd.Flags().BoolVar(&flagChunks, "chunks", false, "Emit per-page JSON chunks instead of markdown")
	convertCmd.Flags().IntVar(&flagParallel, "parallel", 1, "Concurrent page conversions")
	convertCmd.Flags().StringVar(&flagTableStrategy, "table-strategy", "lines_strict", "Table detection strategy hint")
	convertCmd.Flags().IntVar(&flagGraphicsLimit, "graphics-limit", 0, "Skip pages with more vector drawings (0 = no limit)")
}

func runConvert(cmd *cobra.Command, args []string) error {
	log := zap.S()
	input := args[0]

	conv, err := buildConverter(cmd, input)
	if err != nil {
		return err
	}

	var out string
	if flagChunks {
		chunks, err := conv.Chunks()
		if err != nil {
			return err
		}
		data, err := json.MarshalIndent(chunks, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding chunks: %w", err)
		}
		out = string(data) + "\n"
	} else {
		md, err := conv.Markdown()
		if err != nil {
			return err
		}
		out = md
	}

	if flagOutput == "" {
		fmt.Print(out)
		return nil
	}
	if err := os.WriteFile(flagOutput, []byte(out), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", flagOutput, err)
	}
	log.Infow("conversion complete", "input", input, "output", flagOutput, "bytes", len(out))
	return nil
}

// buildConverter assembles the converter from config file and flags.
func buildConverter(cmd *cobra.Command, input string) (*pagemd.Converter, error) {
	cfg := fileConfig{
		TableStrategy: "lines_strict",
		Parallel:      1,
	}
	if flagConfig != "" {
		data, err := os.ReadFile(flagConfig)
		if err != nil {
			return nil, fmt.Errorf("reading config %s: %w", flagConfig, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", flagConfig, err)
		}
		if len(cfg.Margins) != 0 && len(cfg.Margins) != 4 {
			return nil, fmt.Errorf("config margins must have 4 values, got %d", len(cfg.Margins))
		}
	}

	// Command line flags override the config file.
	if cmd.Flags().Changed("pages") {
		cfg.Pages = flagPages
	}
	if cmd.Flags().Changed("images") {
		cfg.ImageDir = flagImageDir
	}
	if cmd.Flags().Changed("embed-images") {
		cfg.EmbedImages = flagEmbedImages
	}
	if cmd.Flags().Changed("table-strategy") {
		cfg.TableStrategy = flagTableStrategy
	}
	if cmd.Flags().Changed("graphics-limit") {
		cfg.GraphicsLimit = flagGraphicsLimit
	}
	if cmd.Flags().Changed("parallel") {
		cfg.Parallel = flagParallel
	}

	if !strings.HasSuffix(input, ".json") {
		zap.S().Warnw("input does not look like a JSON page dump", "input", input)
	}
	provider, err := jsonprovider.Open(input)
	if err != nil {
		return nil, err
	}

	conv := pagemd.New(provider).
		TableStrategy(cfg.TableStrategy).
		GraphicsLimit(cfg.GraphicsLimit).
		Parallel(cfg.Parallel)
	if len(cfg.Pages) > 0 {
		conv = conv.Pages(cfg.Pages...)
	}
	if len(cfg.Margins) == 4 {
		conv = conv.Margins(cfg.Margins[0], cfg.Margins[1], cfg.Margins[2], cfg.Margins[3])
	}
	if cfg.ImageDir != "" {
		conv = conv.WriteImages(cfg.ImageDir)
	}
	if cfg.EmbedImages {
		conv = conv.EmbedImages()
	}
	return conv, nil
}
