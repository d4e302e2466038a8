// Command benchmark runs the tournament predictor on synthetic branch
// streams.
//
// Usage:
//
//	go run ./cmd/benchmark [flags]
//
// Flags:
//
//	-csv        Output results in CSV format (default: human-readable)
//	-json       Output results as JSON
//	-n          Branches per benchmark
//	-core       Run only the core benchmarks
//	-dump name  Write the named benchmark as a trace to stdout and exit
//
// Example:
//
//	# Run all benchmarks with human-readable output
//	go run ./cmd/benchmark
//
//	# Produce a trace for the trace runner
//	go run ./cmd/benchmark -dump correlated_pair > pair.trace
//	go run ./cmd/tourney pair.trace
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/sarchlab/tourney/benchmarks"
)

func main() {
	// Parse flags
	csvOutput := flag.Bool("csv", false, "Output results in CSV format")
	jsonOutput := flag.Bool("json", false, "Output results as JSON")
	length := flag.Int("n", benchmarks.DefaultLength, "Branches per benchmark")
	coreOnly := flag.Bool("core", false, "Run only the core benchmarks")
	dump := flag.String("dump", "", "Write the named benchmark as a trace to stdout")
	verbose := flag.Bool("v", false, "Verbose output")
	flag.Parse()

	log := logrus.New()
	log.SetOutput(os.Stderr)

	suite := benchmarks.GetMicrobenchmarks()
	if *coreOnly {
		suite = benchmarks.GetCoreBenchmarks()
	}

	if *dump != "" {
		for _, b := range suite {
			if b.Name == *dump {
				if err := benchmarks.WriteTrace(os.Stdout, b, *length); err != nil {
					log.WithError(err).Fatal("cannot write trace")
				}
				return
			}
		}
		log.WithField("benchmark", *dump).Fatal("unknown benchmark")
	}

	// Configure harness
	config := benchmarks.DefaultConfig()
	config.Length = *length
	config.Output = os.Stdout
	config.Log = log
	config.Verbose = *verbose

	// Create harness and add benchmarks
	harness := benchmarks.NewHarness(config)
	harness.AddBenchmarks(suite)

	// Print configuration
	if !*csvOutput && !*jsonOutput {
		fmt.Println("Tournament Predictor Benchmark Harness")
		fmt.Println("======================================")
		fmt.Printf("Branches per benchmark: %d\n", config.Length)
		fmt.Printf("Pending policy: %s\n", config.Predictor.Policy)
		fmt.Println("")
	}

	// Run benchmarks
	results, err := harness.RunAll()
	if err != nil {
		log.WithError(err).Fatal("benchmark failed")
	}

	// Output results
	switch {
	case *csvOutput:
		harness.PrintCSV(results)
	case *jsonOutput:
		if err := harness.PrintJSON(results); err != nil {
			log.WithError(err).Fatal("cannot print results")
		}
	default:
		harness.PrintResults(results)

		fmt.Println("=== Summary ===")
		fmt.Println("")
		fmt.Println("Expected characteristics:")
		fmt.Println("- always_taken / never_taken: near 100%, warm-up cost only")
		fmt.Println("- alternating / forward_periodic: learned by local history")
		fmt.Println("- correlated_pair: global path history beats local history")
		fmt.Println("- loop_exit: backward override, one miss per loop exit")
		fmt.Println("- call_return: unconditional override, always right")
	}
}
