package diag

import (
	"github.com/sarchlab/akita/v4/sim"
	"github.com/sirupsen/logrus"

	"github.com/sarchlab/tourney/timing/tournament"
)

// TraceHook logs every completed predict/update pair as a structured
// logrus entry at debug level. Mispredictions are logged at info level when
// OnlyMispredictions is set, and nothing else is logged.
type TraceHook struct {
	log                logrus.FieldLogger
	OnlyMispredictions bool
}

// NewTraceHook creates a TraceHook that writes to log.
func NewTraceHook(log logrus.FieldLogger) *TraceHook {
	return &TraceHook{log: log}
}

// Func implements sim.Hook.
func (h *TraceHook) Func(ctx sim.HookCtx) {
	if ctx.Pos != tournament.HookPosUpdate {
		return
	}

	rec, ok := ctx.Item.(*tournament.Record)
	if !ok {
		return
	}

	if h.OnlyMispredictions && rec.Correct() {
		return
	}

	entry := h.log.WithFields(logrus.Fields{
		"seq":          rec.Seq,
		"index":        Bits(rec.Index),
		"local":        rec.Context.Local,
		"global":       rec.Context.Global,
		"choice":       rec.Context.Choice,
		"predicted":    rec.Predicted,
		"taken":        rec.Taken,
		"path_history": Bits(rec.PathHistory),
	})

	if h.OnlyMispredictions {
		entry.Info("branch mispredicted")
		return
	}
	entry.Debug("branch resolved")
}
