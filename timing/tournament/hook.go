package tournament

import "github.com/sarchlab/akita/v4/sim"

var (
	// HookPosPredict fires after every successful Predict. The hook item is
	// a *Prediction.
	HookPosPredict = &sim.HookPos{Name: "Tournament Predict"}

	// HookPosUpdate fires after every successful Update. The hook item is a
	// *Record.
	HookPosUpdate = &sim.HookPos{Name: "Tournament Update"}
)

// Record describes one completed predict/update pair. The embedded Context
// holds the values observed at prediction time; the remaining fields hold
// the table contents after the update.
type Record struct {
	Context

	// Taken is the resolved outcome.
	Taken bool

	ChoiceCounter uint8
	LocalHistory  uint16
	LocalCounter  uint8
	GlobalCounter uint8
	PathHistory   uint16
}

// Correct reports whether the prediction matched the outcome.
func (r *Record) Correct() bool {
	return r.Predicted == r.Taken
}

func (p *Predictor) record(ctx Context, taken bool) *Record {
	return &Record{
		Context:       ctx,
		Taken:         taken,
		ChoiceCounter: p.choicePred.At(ctx.PathHistory).Value(),
		LocalHistory:  p.localHistory.Read(ctx.Index),
		LocalCounter:  p.localPred.At(ctx.LocalHistory).Value(),
		GlobalCounter: p.globalPred.At(ctx.PathHistory).Value(),
		PathHistory:   p.path.Value(),
	}
}
