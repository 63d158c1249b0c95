// Package main generates CLI reference documentation from the rent-notifier
// command tree.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra/doc"

	"github.com/donaldgifford/rent-notifier/cmd/rent-notifier/cmd"
)

func main() {
	output := flag.String("output", "docs/cli", "output directory for generated docs")
	man := flag.Bool("man", false, "generate man pages instead of markdown")
	flag.Parse()

	if err := generate(*output, *man); err != nil {
		log.Fatal(err)
	}

	fmt.Printf("CLI docs generated in %s/\n", *output)
}

func generate(output string, man bool) error {
	if err := os.MkdirAll(output, 0o750); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	root := cmd.Root()
	root.DisableAutoGenTag = true

	if man {
		header := &doc.GenManHeader{Title: "RENT-NOTIFIER", Section: "1"}
		if err := doc.GenManTree(root, header, output); err != nil {
			return fmt.Errorf("generating man pages: %w", err)
		}
		return nil
	}

	if err := doc.GenMarkdownTree(root, output); err != nil {
		return fmt.Errorf("generating docs: %w", err)
	}
	return nil
}
