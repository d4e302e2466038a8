package runner

import (
	"io"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/sarchlab/tourney/timing/diag"
	"github.com/sarchlab/tourney/timing/tournament"
	"github.com/sarchlab/tourney/trace"
)

// Source yields resolved branches. It returns io.EOF when exhausted.
// *trace.Reader is a Source.
type Source interface {
	Next() (trace.Record, error)
}

// Records adapts a slice of records to a Source.
func Records(records []trace.Record) Source {
	return &sliceSource{records: records}
}

type sliceSource struct {
	records []trace.Record
	pos     int
}

func (s *sliceSource) Next() (trace.Record, error) {
	if s.pos >= len(s.records) {
		return trace.Record{}, io.EOF
	}
	rec := s.records[s.pos]
	s.pos++
	return rec, nil
}

// Result summarizes a replay.
type Result struct {
	Branches          uint64           `json:"branches"`
	Stats             tournament.Stats `json:"stats"`
	AccuracyPercent   float64          `json:"accuracy_percent"`
	LocalAccuracy     float64          `json:"local_accuracy_percent"`
	GlobalAccuracy    float64          `json:"global_accuracy_percent"`
	DiagnosticRows    uint64           `json:"diagnostic_rows,omitempty"`
	WallTime          time.Duration    `json:"wall_time_ns"`
	StoppedAtMaxCount bool             `json:"stopped_at_max_count,omitempty"`
}

// Runner drives a predictor through predict/update pairs for each branch of
// a trace.
type Runner struct {
	config    *Config
	log       logrus.FieldLogger
	predictor *tournament.Predictor
	tableLog  *diag.TableLogger
}

// New creates a Runner. If config.LogPath is set the diagnostic table log is
// opened for appending; call Close to flush it.
func New(config *Config, log logrus.FieldLogger) (*Runner, error) {
	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid runner config")
	}

	predictor, err := tournament.NewPredictor(config.Predictor)
	if err != nil {
		return nil, err
	}

	r := &Runner{
		config:    config,
		log:       log,
		predictor: predictor,
	}

	if config.LogPath != "" {
		r.tableLog, err = diag.OpenTableLogger(config.LogPath)
		if err != nil {
			return nil, err
		}
		predictor.AcceptHook(r.tableLog)
	}

	if config.LogMispredictions {
		hook := diag.NewTraceHook(log)
		hook.OnlyMispredictions = true
		predictor.AcceptHook(hook)
	}

	return r, nil
}

// Predictor returns the predictor under test.
func (r *Runner) Predictor() *tournament.Predictor {
	return r.predictor
}

// Run replays every branch from src.
func (r *Runner) Run(src Source) (Result, error) {
	var result Result
	start := time.Now()

	for {
		if r.config.MaxBranches > 0 && result.Branches >= r.config.MaxBranches {
			result.StoppedAtMaxCount = true
			break
		}

		rec, err := src.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return result, err
		}

		if err := r.step(rec); err != nil {
			return result, errors.Wrapf(err, "branch %d", result.Branches+1)
		}
		result.Branches++

		if r.config.ProgressInterval > 0 && result.Branches%r.config.ProgressInterval == 0 {
			stats := r.predictor.Stats()
			r.log.WithFields(logrus.Fields{
				"branches": result.Branches,
				"accuracy": stats.Accuracy(),
			}).Info("replay progress")
		}
	}

	result.WallTime = time.Since(start)
	r.fillStats(&result)

	if r.tableLog != nil {
		if err := r.tableLog.Flush(); err != nil {
			return result, err
		}
	}

	return result, nil
}

func (r *Runner) step(rec trace.Record) error {
	pred, err := r.predictor.Predict(rec.Branch)
	if err != nil {
		return err
	}

	return r.predictor.Update(pred.Context, rec.Branch, rec.Taken)
}

func (r *Runner) fillStats(result *Result) {
	stats := r.predictor.Stats()
	result.Stats = stats
	result.AccuracyPercent = stats.Accuracy()
	result.LocalAccuracy = stats.LocalAccuracy()
	result.GlobalAccuracy = stats.GlobalAccuracy()

	if r.tableLog != nil {
		result.DiagnosticRows = r.tableLog.Rows()
	}
}

// Close flushes and closes the diagnostic log, if any.
func (r *Runner) Close() error {
	if r.tableLog == nil {
		return nil
	}
	return r.tableLog.Close()
}
