package trace_test

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/tourney/timing/tournament"
	"github.com/sarchlab/tourney/trace"
)

var _ = Describe("Trace", func() {
	Describe("ParseLine", func() {
		It("should parse a conditional forward branch", func() {
			rec, err := trace.ParseLine("0x1000 0x2000 c 1")
			Expect(err).NotTo(HaveOccurred())
			Expect(rec.Branch).To(Equal(tournament.Branch{
				InstructionAddr: 0x1000,
				BranchTarget:    0x2000,
				IsConditional:   true,
			}))
			Expect(rec.Taken).To(BeTrue())
		})

		It("should parse calls, returns and unprefixed addresses", func() {
			rec, err := trace.ParseLine("40a0 7fff0 cCR N")
			Expect(err).NotTo(HaveOccurred())
			Expect(rec.Branch.InstructionAddr).To(Equal(uint64(0x40a0)))
			Expect(rec.Branch.BranchTarget).To(Equal(uint64(0x7fff0)))
			Expect(rec.Branch.IsConditional).To(BeTrue())
			Expect(rec.Branch.IsCall).To(BeTrue())
			Expect(rec.Branch.IsReturn).To(BeTrue())
			Expect(rec.Taken).To(BeFalse())
		})

		It("should parse unconditional branches", func() {
			rec, err := trace.ParseLine("0x10 0x20 - T")
			Expect(err).NotTo(HaveOccurred())
			Expect(rec.Branch.IsConditional).To(BeFalse())
			Expect(rec.Taken).To(BeTrue())
		})

		DescribeTable("malformed lines",
			func(line string) {
				_, err := trace.ParseLine(line)
				Expect(err).To(HaveOccurred())
			},
			Entry("too few fields", "0x10 0x20 c"),
			Entry("bad address", "0xZZ 0x20 c 1"),
			Entry("bad target", "0x10 nope c 1"),
			Entry("bad flag", "0x10 0x20 x 1"),
			Entry("bad outcome", "0x10 0x20 c maybe"),
		)
	})

	Describe("Reader", func() {
		It("should skip comments and blank lines", func() {
			input := "# header\n\n0x1000 0x2000 c 1\n  # indented\n0x1004 0x1000 c 0\n"
			records, err := trace.ReadAll(strings.NewReader(input))
			Expect(err).NotTo(HaveOccurred())
			Expect(records).To(HaveLen(2))
			Expect(records[1].Branch.IsBackward()).To(BeTrue())
		})

		It("should report the failing line", func() {
			r := trace.NewReader(strings.NewReader("0x1000 0x2000 c 1\n\nbogus\n"))
			_, err := r.Next()
			Expect(err).NotTo(HaveOccurred())

			_, err = r.Next()
			Expect(err).To(MatchError(ContainSubstring("line 3")))
			Expect(r.Line()).To(Equal(3))
		})

		It("should return io.EOF at the end", func() {
			r := trace.NewReader(strings.NewReader(""))
			_, err := r.Next()
			Expect(err).To(Equal(io.EOF))
		})
	})

	Describe("Writer", func() {
		It("should write records the reader accepts", func() {
			records := []trace.Record{
				{Branch: tournament.Branch{InstructionAddr: 0x1000, BranchTarget: 0x2000, IsConditional: true}, Taken: true},
				{Branch: tournament.Branch{InstructionAddr: 0x1004, BranchTarget: 0x3000, IsCall: true}, Taken: true},
				{Branch: tournament.Branch{InstructionAddr: 0x3000, BranchTarget: 0x1008, IsReturn: true}, Taken: false},
			}

			var buf bytes.Buffer
			w := trace.NewWriter(&buf)
			Expect(w.Comment("generated")).To(Succeed())
			for _, rec := range records {
				Expect(w.Write(rec)).To(Succeed())
			}
			Expect(w.Flush()).To(Succeed())

			Expect(buf.String()).To(HavePrefix("# generated\n0x1000 0x2000 c 1\n"))

			got, err := trace.ReadAll(&buf)
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(Equal(records))
		})
	})

	Describe("ReadFile", func() {
		It("should read a trace from disk", func() {
			path := filepath.Join(GinkgoT().TempDir(), "branches.trace")
			Expect(os.WriteFile(path, []byte("0x1000 0x2000 c 1\n"), 0644)).To(Succeed())

			records, err := trace.ReadFile(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(records).To(HaveLen(1))
		})

		It("should fail on a missing file", func() {
			_, err := trace.ReadFile(filepath.Join(GinkgoT().TempDir(), "missing"))
			Expect(err).To(HaveOccurred())
		})
	})
})
