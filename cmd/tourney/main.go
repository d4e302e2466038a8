// Package main provides the entry point for the trace-driven tournament
// predictor simulator.
//
// Usage:
//
//	go run ./cmd/tourney [flags] <branches.trace>
//
// Use "-" as the trace path to read from standard input.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/sarchlab/tourney/runner"
	"github.com/sarchlab/tourney/timing/tournament"
	"github.com/sarchlab/tourney/trace"
)

var (
	configPath  = flag.String("config", "", "Path to runner configuration JSON file")
	logPath     = flag.String("log", "", "Append the diagnostic table log to this file")
	policy      = flag.String("policy", "", "Pending prediction policy: strict or overwrite")
	maxBranches = flag.Uint64("max", 0, "Stop after this many branches (0 = whole trace)")
	mispredicts = flag.Bool("mispredictions", false, "Log every mispredicted branch")
	verbose     = flag.Bool("v", false, "Verbose output")
)

func main() {
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Usage: tourney [options] <branches.trace>\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	log := logrus.New()
	log.SetOutput(os.Stderr)
	if *verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	config, err := buildConfig()
	if err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}

	in, closeIn, err := openTrace(flag.Arg(0))
	if err != nil {
		log.WithError(err).Fatal("cannot open trace")
	}
	defer closeIn()

	r, err := runner.New(config, log)
	if err != nil {
		log.WithError(err).Fatal("cannot create runner")
	}

	log.WithFields(logrus.Fields{
		"trace":  flag.Arg(0),
		"policy": config.Predictor.Policy,
	}).Debug("replaying trace")

	result, err := r.Run(trace.NewReader(in))
	if closeErr := r.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	if err != nil {
		log.WithError(err).Fatal("replay failed")
	}

	printResult(os.Stdout, flag.Arg(0), result)
}

// buildConfig loads the config file, if any, and applies flag overrides.
func buildConfig() (*runner.Config, error) {
	config := runner.DefaultConfig()
	if *configPath != "" {
		var err error
		config, err = runner.LoadConfig(*configPath)
		if err != nil {
			return nil, err
		}
	}

	if *logPath != "" {
		config.LogPath = *logPath
	}
	if *policy != "" {
		p, err := tournament.ParsePendingPolicy(*policy)
		if err != nil {
			return nil, err
		}
		config.Predictor.Policy = p
	}
	if *maxBranches > 0 {
		config.MaxBranches = *maxBranches
	}
	if *mispredicts {
		config.LogMispredictions = true
	}

	return config, config.Validate()
}

func openTrace(path string) (io.Reader, func(), error) {
	if path == "-" {
		return os.Stdin, func() {}, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { _ = f.Close() }, nil
}

func printResult(w io.Writer, tracePath string, result runner.Result) {
	stats := result.Stats

	_, _ = fmt.Fprintf(w, "\n")
	_, _ = fmt.Fprintf(w, "Trace: %s\n", tracePath)
	_, _ = fmt.Fprintf(w, "Branches: %d\n", result.Branches)
	_, _ = fmt.Fprintf(w, "Correct: %d\n", stats.Correct)
	_, _ = fmt.Fprintf(w, "Mispredictions: %d\n", stats.Mispredictions)
	_, _ = fmt.Fprintf(w, "Accuracy: %.2f%%\n", result.AccuracyPercent)
	_, _ = fmt.Fprintf(w, "\n")
	_, _ = fmt.Fprintf(w, "Breakdown:\n")
	_, _ = fmt.Fprintf(w, "  Backward overrides:      %d\n", stats.BackwardOverrides)
	_, _ = fmt.Fprintf(w, "  Unconditional overrides: %d\n", stats.UnconditionalOverrides)
	_, _ = fmt.Fprintf(w, "  Chose local:             %d\n", stats.ChoseLocal)
	_, _ = fmt.Fprintf(w, "  Chose global:            %d\n", stats.ChoseGlobal)
	_, _ = fmt.Fprintf(w, "  Local accuracy:          %5.1f%%\n", result.LocalAccuracy)
	_, _ = fmt.Fprintf(w, "  Global accuracy:         %5.1f%%\n", result.GlobalAccuracy)
	if result.DiagnosticRows > 0 {
		_, _ = fmt.Fprintf(w, "\n")
		_, _ = fmt.Fprintf(w, "Diagnostic rows: %d\n", result.DiagnosticRows)
	}
	if result.StoppedAtMaxCount {
		_, _ = fmt.Fprintf(w, "Stopped at branch limit.\n")
	}
}
