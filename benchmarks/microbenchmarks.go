// Package benchmarks provides synthetic branch streams and a harness that
// measures the tournament predictor on them.
package benchmarks

import (
	"github.com/sarchlab/tourney/timing/tournament"
	"github.com/sarchlab/tourney/trace"
)

// DefaultLength is the number of branches each microbenchmark generates.
const DefaultLength = 4096

// GetMicrobenchmarks returns the standard set of branch microbenchmarks.
// Each benchmark targets one behaviour of the predictor.
func GetMicrobenchmarks() []Benchmark {
	return []Benchmark{
		alwaysTaken(),
		neverTaken(),
		alternating(),
		forwardPeriodic(),
		loopExit(),
		correlatedPair(),
		callReturn(),
		mixedWorkload(),
	}
}

// GetCoreBenchmarks returns a minimal set for quick validation: one local
// pattern, one global correlation and one override-only stream.
func GetCoreBenchmarks() []Benchmark {
	return []Benchmark{
		forwardPeriodic(),
		correlatedPair(),
		loopExit(),
	}
}

func conditional(addr, target uint64, taken bool) trace.Record {
	return trace.Record{
		Branch: tournament.Branch{
			InstructionAddr: addr,
			BranchTarget:    target,
			IsConditional:   true,
		},
		Taken: taken,
	}
}

// lcg is a small deterministic generator so that benchmarks are repeatable.
type lcg uint32

func (g *lcg) bit() bool {
	*g = *g*1103515245 + 12345
	return *g&0x10000 != 0
}

// 1. Always taken - a forward branch that is always taken.
func alwaysTaken() Benchmark {
	return Benchmark{
		Name:        "always_taken",
		Description: "Forward conditional branch, always taken - warm-up cost of the counters",
		Generate: func(n int) []trace.Record {
			records := make([]trace.Record, 0, n)
			for i := 0; i < n; i++ {
				records = append(records, conditional(0x1000, 0x1040, true))
			}
			return records
		},
	}
}

// 2. Never taken - matches the zeroed tables from the start.
func neverTaken() Benchmark {
	return Benchmark{
		Name:        "never_taken",
		Description: "Forward conditional branch, never taken - zeroed tables are already right",
		Generate: func(n int) []trace.Record {
			records := make([]trace.Record, 0, n)
			for i := 0; i < n; i++ {
				records = append(records, conditional(0x1000, 0x1040, false))
			}
			return records
		},
	}
}

// 3. Alternating - TNTN on a single branch, learned by local history.
func alternating() Benchmark {
	return Benchmark{
		Name:        "alternating",
		Description: "Forward branch alternating taken/not taken - local history pattern",
		Generate: func(n int) []trace.Record {
			records := make([]trace.Record, 0, n)
			for i := 0; i < n; i++ {
				records = append(records, conditional(0x2000, 0x2100, i%2 == 0))
			}
			return records
		},
	}
}

// 4. Forward periodic - TTTN repeating, an if inside a counted loop.
func forwardPeriodic() Benchmark {
	return Benchmark{
		Name:        "forward_periodic",
		Description: "Forward branch with period-4 pattern TTTN - local history pattern",
		Generate: func(n int) []trace.Record {
			records := make([]trace.Record, 0, n)
			for i := 0; i < n; i++ {
				records = append(records, conditional(0x3000, 0x3020, i%4 != 3))
			}
			return records
		},
	}
}

// 5. Loop exit - a backward loop branch that falls through every 8th time.
func loopExit() Benchmark {
	return Benchmark{
		Name:        "loop_exit",
		Description: "Backward loop branch, 7 taken then 1 exit - backward override only",
		Generate: func(n int) []trace.Record {
			records := make([]trace.Record, 0, n)
			for i := 0; i < n; i++ {
				records = append(records, conditional(0x4040, 0x4000, i%8 != 7))
			}
			return records
		},
	}
}

// 6. Correlated pair - a random branch followed by one with the same outcome.
func correlatedPair() Benchmark {
	return Benchmark{
		Name:        "correlated_pair",
		Description: "Random branch followed by a branch repeating its outcome - path history",
		Generate: func(n int) []trace.Record {
			records := make([]trace.Record, 0, n)
			g := lcg(1)
			for len(records) < n {
				taken := g.bit()
				records = append(records, conditional(0x5000, 0x5100, taken))
				if len(records) < n {
					records = append(records, conditional(0x5200, 0x5300, taken))
				}
			}
			return records
		},
	}
}

// 7. Call/return - calls, returns and jumps, all forced taken.
func callReturn() Benchmark {
	return Benchmark{
		Name:        "call_return",
		Description: "Calls, returns and unconditional jumps - unconditional override only",
		Generate: func(n int) []trace.Record {
			kinds := []tournament.Branch{
				{InstructionAddr: 0x6000, BranchTarget: 0x8000, IsCall: true},
				{InstructionAddr: 0x8010, BranchTarget: 0x7000},
				{InstructionAddr: 0x7008, BranchTarget: 0x6004, IsReturn: true},
			}
			records := make([]trace.Record, 0, n)
			for i := 0; i < n; i++ {
				records = append(records, trace.Record{Branch: kinds[i%len(kinds)], Taken: true})
			}
			return records
		},
	}
}

// 8. Mixed workload - a loop body with a data-dependent branch, a biased
// branch and a call, closed by a backward loop branch.
func mixedWorkload() Benchmark {
	return Benchmark{
		Name:        "mixed_workload",
		Description: "Loop body with random, biased, call and loop branches",
		Generate: func(n int) []trace.Record {
			records := make([]trace.Record, 0, n)
			g := lcg(7)
			for iter := 0; len(records) < n; iter++ {
				body := []trace.Record{
					conditional(0x9000, 0x9010, g.bit()),
					conditional(0x9014, 0x9040, iter%16 != 0),
					{
						Branch: tournament.Branch{
							InstructionAddr: 0x9044,
							BranchTarget:    0xA000,
							IsConditional:   true,
							IsCall:          true,
						},
						Taken: true,
					},
					conditional(0x9050, 0x8FF0, iter%32 != 31),
				}
				for _, rec := range body {
					if len(records) == n {
						break
					}
					records = append(records, rec)
				}
			}
			return records
		},
	}
}
