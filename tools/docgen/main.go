// Package main generates CLI reference documentation for the fpt client and
// the flyer-price-tracker server binaries.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"

	server "github.com/donaldgifford/flyer-price-tracker/cmd/flyer-price-tracker/cmd"
	client "github.com/donaldgifford/flyer-price-tracker/cmd/fpt/cmd"
)

func main() {
	output := flag.String("output", "docs/cli", "output directory for generated docs")
	format := flag.String("format", "markdown", "output format: markdown or man")
	flag.Parse()

	trees := map[string]*cobra.Command{
		"fpt":                 client.Root(),
		"flyer-price-tracker": server.Root(),
	}
	for name, root := range trees {
		dir := filepath.Join(*output, name)
		if err := generate(root, dir, *format); err != nil {
			log.Fatalf("generating %s docs: %v", name, err)
		}
		fmt.Printf("%s docs generated in %s/\n", name, dir)
	}
}

func generate(root *cobra.Command, dir, format string) error {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	root.DisableAutoGenTag = true

	switch format {
	case "markdown":
		return doc.GenMarkdownTree(root, dir)
	case "man":
		return doc.GenManTree(root, &doc.GenManHeader{
			Title:   root.Name(),
			Section: "1",
			Source:  "flyer-price-tracker",
		}, dir)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}
