// Command pagemd converts JSON page dumps into markdown.
//
// A page dump is a JSON serialization of structured page content (text
// spans, drawings, images, tables and links per page) as produced by any
// extraction engine. See the jsonprovider package for the format.
//
// Usage:
//
//	pagemd convert input.json -o output.md
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var rootCmd = &cobra.Command{
	Use:   "pagemd",
	Short: "Reconstruct reading order and emit markdown",
	Long: `pagemd turns structured page content into GitHub-flavored markdown in
natural reading order: multi-column text, headers, code blocks, lists,
tables and figures.

Usage:
  pagemd convert <input.json> [flags]`,
}

func main() {
	logger, _ := zap.NewDevelopment()
	zap.ReplaceGlobals(logger)
	defer logger.Sync()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
