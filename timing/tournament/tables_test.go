package tournament_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/tourney/timing/tournament"
)

var _ = Describe("Tables", func() {
	Describe("BranchIndex", func() {
		It("should drop the alignment bits and mask to 10 bits", func() {
			Expect(tournament.BranchIndex(0x1000)).To(Equal(uint16(0x000)))
			Expect(tournament.BranchIndex(0x1004)).To(Equal(uint16(0x001)))
			Expect(tournament.BranchIndex(0xFFC)).To(Equal(uint16(0x3FF)))
			Expect(tournament.BranchIndex(0xFFFF_FFFF_FFFF_FFFF)).To(Equal(uint16(0x3FF)))
		})
	})

	Describe("LocalHistoryTable", func() {
		var t *tournament.LocalHistoryTable

		BeforeEach(func() {
			t = &tournament.LocalHistoryTable{}
		})

		It("should shift in outcomes as the low bit", func() {
			t.Record(5, 0, true)
			Expect(t.Read(5)).To(Equal(uint16(0b1)))

			t.Record(5, t.Read(5), false)
			Expect(t.Read(5)).To(Equal(uint16(0b10)))

			t.Record(5, t.Read(5), true)
			Expect(t.Read(5)).To(Equal(uint16(0b101)))
		})

		It("should keep patterns within 10 bits", func() {
			t.Record(7, 0x3FF, true)
			Expect(t.Read(7)).To(Equal(uint16(0x3FF)))

			t.Record(7, 0x3FF, false)
			Expect(t.Read(7)).To(Equal(uint16(0x3FE)))
		})

		It("should reset every entry", func() {
			t.Record(1, 3, true)
			t.Reset()
			Expect(t.Read(1)).To(Equal(uint16(0)))
		})
	})

	Describe("CounterTable", func() {
		It("should mask indices to the table size", func() {
			t := tournament.NewCounterTable(16, 2)
			t.Bump(0x13, true)
			Expect(t.At(0x3).Value()).To(Equal(uint8(1)))
			Expect(t.Len()).To(Equal(16))
		})

		It("should predict from the counter MSB", func() {
			t := tournament.NewCounterTable(16, 2)
			t.Bump(2, true)
			Expect(t.PredictTaken(2)).To(BeFalse())
			t.Bump(2, true)
			Expect(t.PredictTaken(2)).To(BeTrue())
		})

		It("should reject non power of two sizes", func() {
			Expect(func() { tournament.NewCounterTable(12, 2) }).To(Panic())
		})
	})

	Describe("PathHistory", func() {
		It("should shift and mask to 12 bits", func() {
			var h tournament.PathHistory
			for i := 0; i < 20; i++ {
				h.Shift(true)
			}
			Expect(h.Value()).To(Equal(uint16(0xFFF)))

			h.Shift(false)
			Expect(h.Value()).To(Equal(uint16(0xFFE)))
		})
	})
})
