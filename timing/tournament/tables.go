package tournament

// Table geometry. Sizes are fixed; masks are derived from the bit counts.
const (
	// LocalHistoryBits is the width of each local history pattern and of the
	// branch index taken from the instruction address.
	LocalHistoryBits = 10
	// LocalHistoryEntries is the number of local history patterns tracked.
	LocalHistoryEntries = 1 << LocalHistoryBits
	// LocalHistoryMask masks both the branch index and a history pattern.
	LocalHistoryMask = LocalHistoryEntries - 1

	// LocalPredictionEntries is one counter per local history pattern.
	LocalPredictionEntries = 1 << LocalHistoryBits
	// LocalCounterBits is the width of the local prediction counters.
	LocalCounterBits = 3

	// PathHistoryBits is the width of the global path history register.
	PathHistoryBits = 12
	// PathHistoryMask masks the path history register.
	PathHistoryMask = 1<<PathHistoryBits - 1
	// GlobalEntries is the size of the global and choice tables.
	GlobalEntries = 1 << PathHistoryBits
	// GlobalCounterBits is the width of the global prediction counters.
	GlobalCounterBits = 2
	// ChoiceCounterBits is the width of the choice counters.
	ChoiceCounterBits = 2

	// instructionAlignShift drops the byte offset of word-aligned addresses.
	instructionAlignShift = 2
)

// shiftIn shifts v left by one, inserts taken as the low bit and masks the
// result.
func shiftIn(v uint16, taken bool, mask uint16) uint16 {
	v <<= 1
	if taken {
		v |= 1
	}
	return v & mask
}

// BranchIndex maps an instruction address to its local history slot.
func BranchIndex(addr uint64) uint16 {
	return uint16((addr >> instructionAlignShift) & LocalHistoryMask)
}

// LocalHistoryTable holds the recent outcome pattern of each branch slot.
type LocalHistoryTable struct {
	entries [LocalHistoryEntries]uint16
}

// Read returns the history pattern stored at index.
func (t *LocalHistoryTable) Read(index uint16) uint16 {
	return t.entries[index&LocalHistoryMask]
}

// Record stores history with the outcome shifted in at index.
func (t *LocalHistoryTable) Record(index, history uint16, taken bool) {
	t.entries[index&LocalHistoryMask] = shiftIn(history, taken, LocalHistoryMask)
}

// Reset clears every pattern.
func (t *LocalHistoryTable) Reset() {
	t.entries = [LocalHistoryEntries]uint16{}
}

// CounterTable is a direct-mapped array of saturating counters. Indices are
// masked to the table size, so every access is in bounds.
type CounterTable struct {
	counters []SaturatingCounter
	mask     uint16
}

// NewCounterTable creates a table of entries counters, each width bits wide.
// entries must be a power of two no larger than 1<<16.
func NewCounterTable(entries int, width uint) *CounterTable {
	if entries <= 0 || entries > 1<<16 || entries&(entries-1) != 0 {
		panic("tournament: counter table size must be a power of 2")
	}

	t := &CounterTable{
		counters: make([]SaturatingCounter, entries),
		mask:     uint16(entries - 1),
	}
	for i := range t.counters {
		t.counters[i] = NewSaturatingCounter(width)
	}

	return t
}

// Len returns the number of counters.
func (t *CounterTable) Len() int {
	return len(t.counters)
}

// At returns a copy of the counter at index.
func (t *CounterTable) At(index uint16) SaturatingCounter {
	return t.counters[index&t.mask]
}

// PredictTaken returns the MSB of the counter at index.
func (t *CounterTable) PredictTaken(index uint16) bool {
	return t.counters[index&t.mask].PredictTaken()
}

// Bump moves the counter at index toward taken or not taken.
func (t *CounterTable) Bump(index uint16, taken bool) {
	t.counters[index&t.mask].Bump(taken)
}

// Reset zeroes all counters.
func (t *CounterTable) Reset() {
	for i := range t.counters {
		t.counters[i].Reset()
	}
}

// PathHistory is the global register of recent outcomes across all
// branches.
type PathHistory struct {
	value uint16
}

// Value returns the register contents.
func (h PathHistory) Value() uint16 {
	return h.value
}

// Shift inserts the latest outcome as the low bit.
func (h *PathHistory) Shift(taken bool) {
	h.value = shiftIn(h.value, taken, PathHistoryMask)
}

// Reset clears the register.
func (h *PathHistory) Reset() {
	h.value = 0
}
