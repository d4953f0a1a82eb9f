// debug-tokens prints, for one file, the function names each line's tokens
// report and what the locator extracts from them.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/mvp-joe/funcscrape/internal/extract"
	"github.com/mvp-joe/funcscrape/internal/lexer"
)

func main() {
	backend := flag.String("backend", lexer.BackendChroma, "lexer backend: chroma or treesitter")
	flag.Parse()
	if flag.NArg() != 1 {
		log.Fatal("usage: debug-tokens [-backend chroma|treesitter] <file>")
	}
	path := flag.Arg(0)

	lx, err := lexer.New(*backend, 16)
	if err != nil {
		log.Fatal(err)
	}
	defer lx.Close()
	ruleset, err := lx.Resolve(path)
	if err != nil {
		log.Fatal(err)
	}

	source, err := os.ReadFile(path)
	if err != nil {
		log.Fatal(err)
	}
	tokenizer, err := ruleset.Bind(source)
	if err != nil {
		log.Fatal(err)
	}

	lines := extract.SplitLines(string(source))
	fmt.Printf("=== %s (%s, %d lines) ===\n", path, ruleset.Name(), len(lines))
	for i, line := range lines {
		for _, tok := range tokenizer.Tokens(i, line) {
			if tok.Kind == extract.KindFunctionName {
				shape := extract.Classify(line)
				fmt.Printf("%5d  %-20s %-15s %s\n", i+1, tok.Text, shape, strings.TrimSpace(line))
			}
		}
	}

	locator := &extract.Locator{
		OnMiss: func(index int, header string) {
			fmt.Printf("MISS %5d  %s\n", index+1, strings.TrimSpace(header))
		},
	}
	fmt.Println("\n=== EXTRACTED ===")
	result := locator.Locate(lines, tokenizer)
	for _, r := range result.Records {
		fmt.Printf("--- %s (line %d) ---\n%s", r.Name, r.Line+1, r.Text)
	}
	fmt.Printf("\n%d extracted, %d missed\n", len(result.Records), result.Missed)
}
