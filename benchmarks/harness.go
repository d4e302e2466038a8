package benchmarks

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/sarchlab/tourney/runner"
	"github.com/sarchlab/tourney/timing/tournament"
	"github.com/sarchlab/tourney/trace"
)

// BenchmarkResult holds the predictor results for a single benchmark run.
type BenchmarkResult struct {
	// Name identifies the benchmark
	Name string `json:"name"`

	// Description explains what the benchmark measures
	Description string `json:"description"`

	// Branches is the number of branches replayed
	Branches uint64 `json:"branches"`

	// Correct and Mispredictions count resolved predictions
	Correct        uint64 `json:"correct"`
	Mispredictions uint64 `json:"mispredictions"`

	// AccuracyPercent is the overall prediction accuracy
	AccuracyPercent float64 `json:"accuracy_percent"`

	// LocalAccuracyPercent and GlobalAccuracyPercent are the accuracies each
	// component would have had on its own
	LocalAccuracyPercent  float64 `json:"local_accuracy_percent"`
	GlobalAccuracyPercent float64 `json:"global_accuracy_percent"`

	// ChoseLocal and ChoseGlobal count tournament selections
	ChoseLocal  uint64 `json:"chose_local"`
	ChoseGlobal uint64 `json:"chose_global"`

	// Overrides counts predictions forced taken by the static rules
	Overrides uint64 `json:"overrides"`

	// PenaltyCycles estimates the cycles lost to mispredictions
	PenaltyCycles uint64 `json:"penalty_cycles"`

	// WallTime is the actual time taken to replay the stream
	WallTime int64 `json:"wall_time_ns"`
}

// Benchmark defines a single synthetic branch stream.
type Benchmark struct {
	// Name identifies the benchmark
	Name string

	// Description explains what the benchmark measures
	Description string

	// Generate produces n resolved branches
	Generate func(n int) []trace.Record
}

// HarnessConfig configures the benchmark harness.
type HarnessConfig struct {
	// Predictor configures the predictor each benchmark runs on
	Predictor tournament.Config

	// Length is the number of branches per benchmark
	Length int

	// MispredictPenalty is the number of cycles charged per misprediction.
	// Default: 12 cycles.
	MispredictPenalty uint64

	// Output is where to write results (default: os.Stdout)
	Output io.Writer

	// Log receives progress messages when Verbose is set
	Log logrus.FieldLogger

	// Verbose enables detailed output
	Verbose bool
}

// DefaultConfig returns a default harness configuration.
func DefaultConfig() HarnessConfig {
	return HarnessConfig{
		Predictor:         tournament.DefaultConfig(),
		Length:            DefaultLength,
		MispredictPenalty: 12,
		Output:            os.Stdout,
		Verbose:           false,
	}
}

// Harness runs branch benchmarks and reports results.
type Harness struct {
	config     HarnessConfig
	benchmarks []Benchmark
}

// NewHarness creates a new benchmark harness.
func NewHarness(config HarnessConfig) *Harness {
	if config.Output == nil {
		config.Output = os.Stdout
	}
	if config.Length <= 0 {
		config.Length = DefaultLength
	}
	if config.Log == nil {
		config.Log = logrus.StandardLogger()
	}
	return &Harness{
		config:     config,
		benchmarks: []Benchmark{},
	}
}

// AddBenchmark adds a benchmark to the harness.
func (h *Harness) AddBenchmark(b Benchmark) {
	h.benchmarks = append(h.benchmarks, b)
}

// AddBenchmarks adds multiple benchmarks to the harness.
func (h *Harness) AddBenchmarks(benchmarks []Benchmark) {
	h.benchmarks = append(h.benchmarks, benchmarks...)
}

// RunAll executes all benchmarks and returns results.
func (h *Harness) RunAll() ([]BenchmarkResult, error) {
	results := make([]BenchmarkResult, 0, len(h.benchmarks))

	for _, bench := range h.benchmarks {
		result, err := h.runBenchmark(bench)
		if err != nil {
			return results, errors.Wrapf(err, "benchmark %s", bench.Name)
		}
		results = append(results, result)
	}

	return results, nil
}

// runBenchmark replays a single benchmark on a fresh predictor.
func (h *Harness) runBenchmark(bench Benchmark) (BenchmarkResult, error) {
	config := runner.DefaultConfig()
	config.Predictor = h.config.Predictor
	config.ProgressInterval = 0

	r, err := runner.New(config, h.config.Log)
	if err != nil {
		return BenchmarkResult{}, err
	}
	defer func() { _ = r.Close() }()

	if h.config.Verbose {
		h.config.Log.WithField("benchmark", bench.Name).Info("running benchmark")
	}

	res, err := r.Run(runner.Records(bench.Generate(h.config.Length)))
	if err != nil {
		return BenchmarkResult{}, err
	}

	stats := res.Stats
	result := BenchmarkResult{
		Name:                  bench.Name,
		Description:           bench.Description,
		Branches:              res.Branches,
		Correct:               stats.Correct,
		Mispredictions:        stats.Mispredictions,
		AccuracyPercent:       stats.Accuracy(),
		LocalAccuracyPercent:  stats.LocalAccuracy(),
		GlobalAccuracyPercent: stats.GlobalAccuracy(),
		ChoseLocal:            stats.ChoseLocal,
		ChoseGlobal:           stats.ChoseGlobal,
		Overrides:             stats.BackwardOverrides + stats.UnconditionalOverrides,
		PenaltyCycles:         stats.Mispredictions * h.config.MispredictPenalty,
		WallTime:              res.WallTime.Nanoseconds(),
	}

	if h.config.Verbose {
		h.config.Log.WithFields(logrus.Fields{
			"benchmark": bench.Name,
			"accuracy":  result.AccuracyPercent,
		}).Info("benchmark finished")
	}

	return result, nil
}

// PrintResults outputs benchmark results in a human-readable format.
func (h *Harness) PrintResults(results []BenchmarkResult) {
	_, _ = fmt.Fprintln(h.config.Output, "=== Tournament Predictor Benchmark Results ===")
	_, _ = fmt.Fprintln(h.config.Output, "")

	for _, r := range results {
		_, _ = fmt.Fprintf(h.config.Output, "Benchmark: %s\n", r.Name)
		_, _ = fmt.Fprintf(h.config.Output, "  Description: %s\n", r.Description)
		_, _ = fmt.Fprintln(h.config.Output, "  --- Prediction ---")
		_, _ = fmt.Fprintf(h.config.Output, "  Branches:        %d\n", r.Branches)
		_, _ = fmt.Fprintf(h.config.Output, "  Correct:         %d\n", r.Correct)
		_, _ = fmt.Fprintf(h.config.Output, "  Mispredictions:  %d\n", r.Mispredictions)
		_, _ = fmt.Fprintf(h.config.Output, "  Accuracy:        %.1f%%\n", r.AccuracyPercent)
		if r.Overrides > 0 {
			_, _ = fmt.Fprintf(h.config.Output, "  Overrides:       %d\n", r.Overrides)
		}
		if r.PenaltyCycles > 0 {
			_, _ = fmt.Fprintf(h.config.Output, "  Penalty Cycles:  %d\n", r.PenaltyCycles)
		}

		if r.ChoseLocal > 0 || r.ChoseGlobal > 0 {
			_, _ = fmt.Fprintln(h.config.Output, "  --- Tournament ---")
			_, _ = fmt.Fprintf(h.config.Output, "  Chose Local:     %d\n", r.ChoseLocal)
			_, _ = fmt.Fprintf(h.config.Output, "  Chose Global:    %d\n", r.ChoseGlobal)
			_, _ = fmt.Fprintf(h.config.Output, "  Local Accuracy:  %.1f%%\n", r.LocalAccuracyPercent)
			_, _ = fmt.Fprintf(h.config.Output, "  Global Accuracy: %.1f%%\n", r.GlobalAccuracyPercent)
		}

		_, _ = fmt.Fprintf(h.config.Output, "  Wall Time: %dns\n", r.WallTime)
		_, _ = fmt.Fprintln(h.config.Output, "")
	}
}

// PrintCSV outputs benchmark results in CSV format for easy comparison.
func (h *Harness) PrintCSV(results []BenchmarkResult) {
	_, _ = fmt.Fprintln(h.config.Output,
		"name,branches,correct,mispredictions,accuracy,local_accuracy,global_accuracy,chose_local,chose_global,overrides,penalty_cycles")

	for _, r := range results {
		_, _ = fmt.Fprintf(h.config.Output, "%s,%d,%d,%d,%.3f,%.3f,%.3f,%d,%d,%d,%d\n",
			r.Name,
			r.Branches,
			r.Correct,
			r.Mispredictions,
			r.AccuracyPercent,
			r.LocalAccuracyPercent,
			r.GlobalAccuracyPercent,
			r.ChoseLocal,
			r.ChoseGlobal,
			r.Overrides,
			r.PenaltyCycles,
		)
	}
}

// PrintJSON outputs benchmark results as an indented JSON array.
func (h *Harness) PrintJSON(results []BenchmarkResult) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to serialize results")
	}

	_, err = fmt.Fprintln(h.config.Output, string(data))
	return errors.Wrap(err, "failed to write results")
}

// WriteTrace writes the stream of a benchmark in trace notation, so it can
// be replayed by the trace runner.
func WriteTrace(w io.Writer, bench Benchmark, n int) error {
	tw := trace.NewWriter(w)
	if err := tw.Comment(fmt.Sprintf("%s: %s", bench.Name, bench.Description)); err != nil {
		return err
	}

	for _, rec := range bench.Generate(n) {
		if err := tw.Write(rec); err != nil {
			return err
		}
	}

	return tw.Flush()
}
