package tournament

// Stats holds counters collected across predict/update pairs.
type Stats struct {
	// Predictions is the number of successful Predict calls.
	Predictions uint64
	// Correct is the number of resolved predictions that matched the outcome.
	Correct uint64
	// Mispredictions is the number of resolved predictions that did not.
	Mispredictions uint64

	// BackwardOverrides counts predictions forced taken by the loop rule.
	BackwardOverrides uint64
	// UnconditionalOverrides counts predictions forced taken for
	// unconditional branches, calls and returns.
	UnconditionalOverrides uint64

	// ChoseLocal and ChoseGlobal count which component the choice table
	// selected on non-overridden predictions.
	ChoseLocal  uint64
	ChoseGlobal uint64

	// LocalCorrect and GlobalCorrect count resolved branches where each
	// component would have been right on its own.
	LocalCorrect  uint64
	GlobalCorrect uint64

	// ChoiceTowardGlobal and ChoiceTowardLocal count choice table training
	// steps in each direction.
	ChoiceTowardGlobal uint64
	ChoiceTowardLocal  uint64
}

// Resolved returns the number of predictions that have been updated.
func (s Stats) Resolved() uint64 {
	return s.Correct + s.Mispredictions
}

// Accuracy returns the prediction accuracy as a percentage.
func (s Stats) Accuracy() float64 {
	if s.Resolved() == 0 {
		return 0
	}
	return float64(s.Correct) / float64(s.Resolved()) * 100
}

// MispredictionRate returns the misprediction rate as a percentage.
func (s Stats) MispredictionRate() float64 {
	if s.Resolved() == 0 {
		return 0
	}
	return float64(s.Mispredictions) / float64(s.Resolved()) * 100
}

// LocalAccuracy returns how often the local component alone was right.
func (s Stats) LocalAccuracy() float64 {
	if s.Resolved() == 0 {
		return 0
	}
	return float64(s.LocalCorrect) / float64(s.Resolved()) * 100
}

// GlobalAccuracy returns how often the global component alone was right.
func (s Stats) GlobalAccuracy() float64 {
	if s.Resolved() == 0 {
		return 0
	}
	return float64(s.GlobalCorrect) / float64(s.Resolved()) * 100
}
