// Package main provides the dealsense CLI entry point.
package main

import (
	"fmt"
	"os"

	"github.com/harshbansal7/dealsense/cmd"
)

func main() {
	root := cmd.NewRootCommand()
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
