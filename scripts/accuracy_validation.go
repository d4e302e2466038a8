// Package main provides accuracy validation for the tournament predictor.
// Ensures that trace replay and table resets preserve prediction results.
package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/sarchlab/tourney/benchmarks"
	"github.com/sarchlab/tourney/runner"
	"github.com/sarchlab/tourney/timing/tournament"
	"github.com/sarchlab/tourney/trace"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.WarnLevel)
	return log
}

func replay(src runner.Source) (runner.Result, error) {
	config := runner.DefaultConfig()
	config.ProgressInterval = 0

	r, err := runner.New(config, quietLogger())
	if err != nil {
		return runner.Result{}, err
	}
	defer func() { _ = r.Close() }()

	return r.Run(src)
}

// testDeterminism validates that two predictors fed the same stream make
// identical predictions and end with identical statistics.
func testDeterminism() bool {
	fmt.Println("Testing predictor determinism...")

	for _, b := range benchmarks.GetMicrobenchmarks() {
		records := b.Generate(benchmarks.DefaultLength)

		first, err := replay(runner.Records(records))
		if err != nil {
			fmt.Printf("❌ %s: replay failed: %v\n", b.Name, err)
			return false
		}
		second, err := replay(runner.Records(records))
		if err != nil {
			fmt.Printf("❌ %s: replay failed: %v\n", b.Name, err)
			return false
		}

		if first.Stats != second.Stats {
			fmt.Printf("❌ %s: statistics differ between runs\n", b.Name)
			fmt.Printf("  First:  %+v\n", first.Stats)
			fmt.Printf("  Second: %+v\n", second.Stats)
			return false
		}

		fmt.Printf("✅ %s: %.1f%% accuracy on both runs\n", b.Name, first.AccuracyPercent)
	}

	return true
}

// testTraceRoundTrip validates that replaying a stream from its trace text
// gives the same result as replaying it from memory.
func testTraceRoundTrip() bool {
	fmt.Println("\nTesting trace round trip...")

	for _, b := range benchmarks.GetCoreBenchmarks() {
		var buf bytes.Buffer
		if err := benchmarks.WriteTrace(&buf, b, benchmarks.DefaultLength); err != nil {
			fmt.Printf("❌ %s: cannot write trace: %v\n", b.Name, err)
			return false
		}

		direct, err := replay(runner.Records(b.Generate(benchmarks.DefaultLength)))
		if err != nil {
			fmt.Printf("❌ %s: replay failed: %v\n", b.Name, err)
			return false
		}
		fromTrace, err := replay(trace.NewReader(&buf))
		if err != nil {
			fmt.Printf("❌ %s: trace replay failed: %v\n", b.Name, err)
			return false
		}

		if direct.Stats != fromTrace.Stats {
			fmt.Printf("❌ %s: trace replay differs\n", b.Name)
			fmt.Printf("  Direct: %+v\n", direct.Stats)
			fmt.Printf("  Trace:  %+v\n", fromTrace.Stats)
			return false
		}

		fmt.Printf("✅ %s: %d branches replayed identically\n", b.Name, fromTrace.Branches)
	}

	return true
}

// testResetBehavior validates that a reset predictor behaves like a fresh
// one.
func testResetBehavior() bool {
	fmt.Println("\nTesting predictor reset...")

	fresh := tournament.MustNewPredictor(tournament.DefaultConfig())
	used := tournament.MustNewPredictor(tournament.DefaultConfig())

	warmup := benchmarks.GetMicrobenchmarks()[0].Generate(256)
	for _, rec := range warmup {
		pred, err := used.Predict(rec.Branch)
		if err != nil {
			fmt.Printf("❌ warm-up predict failed: %v\n", err)
			return false
		}
		if err := used.Update(pred.Context, rec.Branch, rec.Taken); err != nil {
			fmt.Printf("❌ warm-up update failed: %v\n", err)
			return false
		}
	}
	used.Reset()

	for _, rec := range warmup[:32] {
		a, errA := fresh.Predict(rec.Branch)
		b, errB := used.Predict(rec.Branch)
		if errA != nil || errB != nil {
			fmt.Printf("❌ predict failed after reset: %v / %v\n", errA, errB)
			return false
		}

		if a.Taken != b.Taken || a.Source != b.Source {
			fmt.Printf("❌ Post-reset prediction mismatch at 0x%X\n", rec.Branch.InstructionAddr)
			return false
		}

		_ = fresh.Update(a.Context, rec.Branch, rec.Taken)
		_ = used.Update(b.Context, rec.Branch, rec.Taken)
	}

	fmt.Println("✅ Predictor reset behavior validated")
	return true
}

func main() {
	fmt.Println("Tourney Accuracy Validation")
	fmt.Println("===========================")

	allPassed := true

	if !testDeterminism() {
		allPassed = false
	}

	if !testTraceRoundTrip() {
		allPassed = false
	}

	if !testResetBehavior() {
		allPassed = false
	}

	fmt.Println("\n===========================")
	if allPassed {
		fmt.Println("🎉 ALL ACCURACY TESTS PASSED")
		os.Exit(0)
	} else {
		fmt.Println("❌ ACCURACY TESTS FAILED")
		os.Exit(1)
	}
}
