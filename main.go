// Package main provides the entry point for Tourney.
// Tourney is a tournament branch predictor with local, global and choice
// tables, built on Akita hooks.
//
// For the trace runner, use: go run ./cmd/tourney
package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Println("Tourney - Tournament Branch Predictor")
	fmt.Println("Built on Akita simulation framework")
	fmt.Println("")
	fmt.Println("Usage: tourney [options] <trace>")
	fmt.Println("")
	fmt.Println("Options:")
	fmt.Println("  -config    Path to runner configuration JSON file")
	fmt.Println("  -log       Append the diagnostic table log to this file")
	fmt.Println("  -policy    Pending prediction policy: strict or overwrite")
	fmt.Println("  -v         Verbose output")
	fmt.Println("")
	fmt.Println("Run 'go run ./cmd/tourney' for the full CLI.")
	fmt.Println("Run 'go run ./cmd/benchmark' for the synthetic benchmarks.")

	if len(os.Args) > 1 {
		fmt.Println("\nNote: You provided arguments. Use 'go run ./cmd/tourney' instead.")
	}
}
