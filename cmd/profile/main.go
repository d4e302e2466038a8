// Package main provides a profiling wrapper for the tournament predictor to
// identify performance bottlenecks in trace replay.
package main

import (
	"flag"
	"fmt"
	"os"
	"runtime/pprof"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/sarchlab/tourney/benchmarks"
	"github.com/sarchlab/tourney/runner"
	"github.com/sarchlab/tourney/trace"
)

var (
	cpuProfile = flag.String("cpuprofile", "", "write cpu profile to file")
	memProfile = flag.String("memprofile", "", "write memory profile to file")
	duration   = flag.Duration("duration", 30*time.Second, "max duration to run (for profiling)")
	bench      = flag.String("bench", "", "replay the named synthetic benchmark instead of a trace")
	length     = flag.Int("n", 1000000, "branches to generate with -bench")
	repeat     = flag.Int("repeat", 1, "number of times to replay the stream")
)

func main() {
	flag.Parse()

	if flag.NArg() < 1 && *bench == "" {
		fmt.Fprintf(os.Stderr, "Usage: profile [options] <branches.trace>\n")
		fmt.Fprintf(os.Stderr, "       profile [options] -bench <name>\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	log := logrus.New()
	log.SetOutput(os.Stderr)

	records, err := loadRecords()
	if err != nil {
		log.WithError(err).Fatal("cannot load branches")
	}
	fmt.Printf("Loaded: %d branches\n", len(records))

	// Start CPU profiling if requested
	if *cpuProfile != "" {
		f, err := os.Create(*cpuProfile)
		if err != nil {
			log.WithError(err).Fatal("cannot create CPU profile")
		}
		defer func() { _ = f.Close() }()

		if err := pprof.StartCPUProfile(f); err != nil {
			log.WithError(err).Fatal("cannot start CPU profile")
		}
		defer pprof.StopCPUProfile()
	}

	// Set timeout
	go func() {
		time.Sleep(*duration)
		fmt.Printf("\nTimeout reached after %v - stopping execution\n", *duration)
		os.Exit(2)
	}()

	start := time.Now()

	var branches uint64
	var last runner.Result
	for i := 0; i < *repeat; i++ {
		last, err = replay(records, log)
		if err != nil {
			log.WithError(err).Fatal("replay failed")
		}
		branches += last.Branches
	}

	elapsed := time.Since(start)

	// Write memory profile if requested
	if *memProfile != "" {
		f, err := os.Create(*memProfile)
		if err != nil {
			log.WithError(err).Fatal("cannot create memory profile")
		}
		defer func() { _ = f.Close() }()

		if err := pprof.WriteHeapProfile(f); err != nil {
			log.WithError(err).Error("cannot write memory profile")
		}
	}

	fmt.Printf("\nProfiling Results:\n")
	fmt.Printf("Branches replayed: %d\n", branches)
	fmt.Printf("Accuracy: %.2f%%\n", last.AccuracyPercent)
	fmt.Printf("Elapsed time: %v\n", elapsed)
	if branches > 0 {
		fmt.Printf("Branches/second: %.0f\n", float64(branches)/elapsed.Seconds())
	}
}

// loadRecords reads the whole stream up front so that profiles only cover
// prediction.
func loadRecords() ([]trace.Record, error) {
	if *bench == "" {
		return trace.ReadFile(flag.Arg(0))
	}

	for _, b := range benchmarks.GetMicrobenchmarks() {
		if b.Name == *bench {
			return b.Generate(*length), nil
		}
	}
	return nil, errors.Errorf("unknown benchmark %q", *bench)
}

func replay(records []trace.Record, log logrus.FieldLogger) (runner.Result, error) {
	config := runner.DefaultConfig()
	config.ProgressInterval = 0

	r, err := runner.New(config, log)
	if err != nil {
		return runner.Result{}, err
	}
	defer func() { _ = r.Close() }()

	return r.Run(runner.Records(records))
}
