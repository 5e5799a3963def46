// Package main is the entry point for the eco CLI.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "eco: %v\n", err)
		os.Exit(1)
	}
}
