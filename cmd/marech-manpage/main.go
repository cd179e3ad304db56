package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra/doc"

	"github.com/guesant/marech/cmd/marech"
	"github.com/guesant/marech/internal/version"
)

func main() {
	rootCmd := marech.NewRootCmd()

	header := &doc.GenManHeader{
		Title:   "MARECH",
		Section: "1",
		Source:  "marech " + version.Version,
		Manual:  "marech manual",
	}

	err := doc.GenMan(rootCmd, header, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating man page: %v\n", err)
		os.Exit(1)
	}
}
