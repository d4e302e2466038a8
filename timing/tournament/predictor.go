// Package tournament implements a tournament branch predictor that selects
// between a local-history predictor and a global path-history predictor
// with a choice table.
//
// Each branch goes through a Predict call followed by exactly one Update
// call. Predict returns a Context snapshot of everything it read; Update
// trains the tables from that snapshot rather than from a fresh lookup.
package tournament

import (
	"github.com/pkg/errors"
	"github.com/sarchlab/akita/v4/sim"
)

// Protocol violations reported by Predict and Update.
var (
	ErrUpdatePending       = errors.New("predict called while an update is pending")
	ErrNoPendingPrediction = errors.New("update called without a pending prediction")
	ErrStaleContext        = errors.New("update called with a stale prediction context")
	ErrBranchMismatch      = errors.New("update branch does not match the predicted branch")
)

// Branch describes the static attributes of a branch instruction.
type Branch struct {
	InstructionAddr uint64
	BranchTarget    uint64
	IsConditional   bool
	IsCall          bool
	IsReturn        bool
}

// IsBackward reports whether the branch jumps to a lower address.
func (b Branch) IsBackward() bool {
	return b.BranchTarget < b.InstructionAddr
}

// State is the position of the predictor in the predict/update cycle.
type State int

const (
	// AwaitingPrediction means the next call must be Predict.
	AwaitingPrediction State = iota
	// AwaitingUpdate means a prediction is outstanding.
	AwaitingUpdate
)

func (s State) String() string {
	switch s {
	case AwaitingPrediction:
		return "AwaitingPrediction"
	case AwaitingUpdate:
		return "AwaitingUpdate"
	default:
		return "Unknown"
	}
}

// Source identifies what decided a prediction.
type Source int

const (
	// SourceLocal means the choice table selected the local component.
	SourceLocal Source = iota
	// SourceGlobal means the choice table selected the global component.
	SourceGlobal
	// SourceBackward means the branch was forced taken because it jumps
	// backward.
	SourceBackward
	// SourceUnconditional means the branch was forced taken because it is
	// unconditional, a call or a return.
	SourceUnconditional
)

func (s Source) String() string {
	switch s {
	case SourceLocal:
		return "local"
	case SourceGlobal:
		return "global"
	case SourceBackward:
		return "backward"
	case SourceUnconditional:
		return "unconditional"
	default:
		return "unknown"
	}
}

// IsOverride reports whether the tournament was bypassed.
func (s Source) IsOverride() bool {
	return s == SourceBackward || s == SourceUnconditional
}

// Context is the state observed by Predict. It must be handed back to Update
// unmodified.
type Context struct {
	// Seq numbers predictions from 1. The zero Context is never valid.
	Seq uint64
	// Index is the local history slot of the branch.
	Index uint16
	// LocalHistory is the pattern read from the local history table.
	LocalHistory uint16
	// PathHistory is the path history register at prediction time.
	PathHistory uint16

	// Raw counter values.
	LocalCounter  uint8
	GlobalCounter uint8
	ChoiceCounter uint8

	// Counter MSBs.
	Local  bool
	Global bool
	Choice bool

	// Predicted is the value returned to the caller.
	Predicted bool
}

// Prediction is the result of Predict.
type Prediction struct {
	Taken   bool
	Source  Source
	Context Context
}

// Predictor is a tournament branch predictor. It is not safe for concurrent
// use.
type Predictor struct {
	*sim.HookableBase

	config Config

	localHistory LocalHistoryTable
	localPred    *CounterTable
	globalPred   *CounterTable
	choicePred   *CounterTable
	path         PathHistory

	state   State
	pending Context
	seq     uint64

	stats Stats
}

// NewPredictor creates a predictor with all tables zeroed.
func NewPredictor(config Config) (*Predictor, error) {
	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid predictor config")
	}

	p := &Predictor{
		HookableBase: sim.NewHookableBase(),
		config:       config,
		localPred:    NewCounterTable(LocalPredictionEntries, LocalCounterBits),
		globalPred:   NewCounterTable(GlobalEntries, GlobalCounterBits),
		choicePred:   NewCounterTable(GlobalEntries, ChoiceCounterBits),
	}

	return p, nil
}

// MustNewPredictor is like NewPredictor but panics on an invalid config.
func MustNewPredictor(config Config) *Predictor {
	p, err := NewPredictor(config)
	if err != nil {
		panic(err)
	}
	return p
}

// Config returns the configuration the predictor was built with.
func (p *Predictor) Config() Config {
	return p.config
}

// State returns where the predictor is in the predict/update cycle.
func (p *Predictor) State() State {
	return p.state
}

// Pending returns the outstanding context, if any.
func (p *Predictor) Pending() (Context, bool) {
	return p.pending, p.state == AwaitingUpdate
}

// Predict looks up all tables for the branch and returns the prediction
// together with the context that Update needs.
func (p *Predictor) Predict(b Branch) (Prediction, error) {
	if p.state == AwaitingUpdate && p.config.Policy == PolicyStrict {
		return Prediction{}, errors.Wrapf(ErrUpdatePending,
			"branch at 0x%x, outstanding prediction #%d",
			b.InstructionAddr, p.pending.Seq)
	}

	p.seq++
	ctx := p.lookup(b)

	pred := Prediction{Context: ctx}
	pred.Taken, pred.Source = choose(b, ctx)
	pred.Context.Predicted = pred.Taken

	p.pending = pred.Context
	p.state = AwaitingUpdate
	p.countPrediction(pred.Source)

	if p.NumHooks() > 0 {
		p.InvokeHook(sim.HookCtx{
			Domain: p,
			Pos:    HookPosPredict,
			Item:   &pred,
		})
	}

	return pred, nil
}

func (p *Predictor) lookup(b Branch) Context {
	index := BranchIndex(b.InstructionAddr)
	history := p.localHistory.Read(index)
	path := p.path.Value()

	local := p.localPred.At(history)
	global := p.globalPred.At(path)
	choice := p.choicePred.At(path)

	return Context{
		Seq:           p.seq,
		Index:         index,
		LocalHistory:  history,
		PathHistory:   path,
		LocalCounter:  local.Value(),
		GlobalCounter: global.Value(),
		ChoiceCounter: choice.Value(),
		Local:         local.PredictTaken(),
		Global:        global.PredictTaken(),
		Choice:        choice.PredictTaken(),
	}
}

// choose applies the override rules and then the tournament.
func choose(b Branch, ctx Context) (bool, Source) {
	if b.IsBackward() {
		return true, SourceBackward
	}

	if !b.IsConditional || b.IsCall || b.IsReturn {
		return true, SourceUnconditional
	}

	if ctx.Choice {
		return ctx.Global, SourceGlobal
	}

	return ctx.Local, SourceLocal
}

func (p *Predictor) countPrediction(src Source) {
	p.stats.Predictions++

	switch src {
	case SourceBackward:
		p.stats.BackwardOverrides++
	case SourceUnconditional:
		p.stats.UnconditionalOverrides++
	case SourceLocal:
		p.stats.ChoseLocal++
	case SourceGlobal:
		p.stats.ChoseGlobal++
	}
}

// Update trains all tables with the resolved outcome of the branch that ctx
// was predicted for. On error no state is modified.
func (p *Predictor) Update(ctx Context, b Branch, taken bool) error {
	if err := p.checkUpdate(ctx, b); err != nil {
		return err
	}

	p.trainChoice(ctx, taken)
	p.localHistory.Record(ctx.Index, ctx.LocalHistory, taken)
	p.localPred.Bump(ctx.LocalHistory, taken)
	p.globalPred.Bump(ctx.PathHistory, taken)
	p.path.Shift(taken)

	p.pending = Context{}
	p.state = AwaitingPrediction
	p.countOutcome(ctx, taken)

	if p.NumHooks() > 0 {
		p.InvokeHook(sim.HookCtx{
			Domain: p,
			Pos:    HookPosUpdate,
			Item:   p.record(ctx, taken),
		})
	}

	return nil
}

func (p *Predictor) checkUpdate(ctx Context, b Branch) error {
	if p.state != AwaitingUpdate {
		return errors.Wrapf(ErrNoPendingPrediction,
			"branch at 0x%x", b.InstructionAddr)
	}

	if ctx != p.pending {
		return errors.Wrapf(ErrStaleContext,
			"got prediction #%d, outstanding #%d", ctx.Seq, p.pending.Seq)
	}

	if index := BranchIndex(b.InstructionAddr); index != ctx.Index {
		return errors.Wrapf(ErrBranchMismatch,
			"branch index %#x, predicted index %#x", index, ctx.Index)
	}

	return nil
}

// trainChoice moves the choice counter toward whichever component was right
// when exactly one of them was.
func (p *Predictor) trainChoice(ctx Context, taken bool) {
	globalRight := ctx.Global == taken
	localRight := ctx.Local == taken

	switch {
	case globalRight && !localRight:
		p.choicePred.Bump(ctx.PathHistory, true)
		p.stats.ChoiceTowardGlobal++
	case localRight && !globalRight:
		p.choicePred.Bump(ctx.PathHistory, false)
		p.stats.ChoiceTowardLocal++
	}
}

func (p *Predictor) countOutcome(ctx Context, taken bool) {
	if ctx.Predicted == taken {
		p.stats.Correct++
	} else {
		p.stats.Mispredictions++
	}

	if ctx.Local == taken {
		p.stats.LocalCorrect++
	}
	if ctx.Global == taken {
		p.stats.GlobalCorrect++
	}
}

// LocalHistory returns the local history pattern stored at index.
func (p *Predictor) LocalHistory(index uint16) uint16 {
	return p.localHistory.Read(index)
}

// LocalCounter returns the local prediction counter for a history pattern.
func (p *Predictor) LocalCounter(history uint16) SaturatingCounter {
	return p.localPred.At(history)
}

// GlobalCounter returns the global prediction counter for a path history.
func (p *Predictor) GlobalCounter(path uint16) SaturatingCounter {
	return p.globalPred.At(path)
}

// ChoiceCounter returns the choice counter for a path history.
func (p *Predictor) ChoiceCounter(path uint16) SaturatingCounter {
	return p.choicePred.At(path)
}

// PathHistory returns the path history register.
func (p *Predictor) PathHistory() uint16 {
	return p.path.Value()
}

// Stats returns the predictor statistics.
func (p *Predictor) Stats() Stats {
	return p.stats
}

// Reset zeroes all tables, the path history and the statistics, and drops
// any outstanding prediction. Registered hooks are kept, and sequence
// numbers keep counting so contexts issued before the reset stay stale.
func (p *Predictor) Reset() {
	p.localHistory.Reset()
	p.localPred.Reset()
	p.globalPred.Reset()
	p.choicePred.Reset()
	p.path.Reset()

	p.state = AwaitingPrediction
	p.pending = Context{}
	p.stats = Stats{}
}
