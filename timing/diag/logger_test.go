package diag_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/sarchlab/tourney/timing/diag"
	"github.com/sarchlab/tourney/timing/tournament"
)

var _ = Describe("Bits", func() {
	It("should render 12 bits most significant first", func() {
		Expect(diag.Bits(0)).To(Equal("000000000000"))
		Expect(diag.Bits(5)).To(Equal("000000000101"))
		Expect(diag.Bits(0xFFF)).To(Equal("111111111111"))
		Expect(diag.Bits(0x1801)).To(Equal("100000000001"))
	})
})

var _ = Describe("TableLogger", func() {
	var (
		buf    *bytes.Buffer
		logger *diag.TableLogger
		bp     *tournament.Predictor
	)

	branch := tournament.Branch{
		InstructionAddr: 0x1004,
		BranchTarget:    0x2000,
		IsConditional:   true,
	}

	step := func(taken bool) {
		pred, err := bp.Predict(branch)
		Expect(err).NotTo(HaveOccurred())
		Expect(bp.Update(pred.Context, branch, taken)).To(Succeed())
	}

	BeforeEach(func() {
		buf = &bytes.Buffer{}
		logger = diag.NewTableLogger(buf)
		bp = tournament.MustNewPredictor(tournament.DefaultConfig())
		bp.AcceptHook(logger)
	})

	It("should write the header once and one row per pair", func() {
		step(true)
		step(false)
		Expect(logger.Flush()).To(Succeed())

		lines := strings.Split(buf.String(), "\r\n")
		Expect(lines).To(HaveLen(4))
		Expect(lines[3]).To(BeEmpty())
		Expect(lines[0]).To(HavePrefix("LINE        \tBINDEX      \tP-Choice"))
		Expect(lines[0]).To(HaveSuffix("U-Path Hist "))
		Expect(logger.Rows()).To(Equal(uint64(2)))
	})

	It("should render the observed and updated values", func() {
		step(true)
		Expect(logger.Flush()).To(Succeed())

		row := strings.Split(buf.String(), "\r\n")[1]
		fields := strings.Split(row, "\t")
		Expect(fields).To(HaveLen(14))
		Expect(strings.TrimSpace(fields[0])).To(Equal("1"))
		Expect(fields[1]).To(Equal("000000000001")) // index
		Expect(fields[2]).To(Equal("000000000000")) // choice
		Expect(fields[3]).To(Equal("000000000000")) // global
		Expect(fields[4]).To(Equal("000000000000")) // local
		Expect(fields[5]).To(Equal("000000000000")) // local history
		Expect(fields[6]).To(Equal("000000000000")) // path history
		Expect(strings.TrimSpace(fields[7])).To(Equal("1"))
		Expect(fields[8]).To(Equal("000000000000"))  // choice after
		Expect(fields[9]).To(Equal("000000000001"))  // local history after
		Expect(fields[10]).To(Equal("000000000001")) // local counter after
		Expect(fields[11]).To(Equal("000000000001")) // global counter after
		Expect(fields[12]).To(Equal("000000000001")) // path history after
		Expect(fields[13]).To(BeEmpty())
	})

	It("should ignore prediction hooks", func() {
		_, err := bp.Predict(branch)
		Expect(err).NotTo(HaveOccurred())
		Expect(logger.Flush()).To(Succeed())
		Expect(buf.Len()).To(BeZero())
	})

	It("should append to a log file", func() {
		path := filepath.Join(GinkgoT().TempDir(), "log.txt")

		fileLogger, err := diag.OpenTableLogger(path)
		Expect(err).NotTo(HaveOccurred())
		bp.AcceptHook(fileLogger)
		step(true)
		Expect(fileLogger.Close()).To(Succeed())

		data, err := os.ReadFile(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(strings.Count(string(data), "\r\n")).To(Equal(2))
	})

	It("should fail to open a log in a missing directory", func() {
		_, err := diag.OpenTableLogger(filepath.Join(GinkgoT().TempDir(), "missing", "log.txt"))
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("TraceHook", func() {
	var (
		log  *logrus.Logger
		hook *test.Hook
		bp   *tournament.Predictor
	)

	branch := tournament.Branch{
		InstructionAddr: 0x1000,
		BranchTarget:    0x2000,
		IsConditional:   true,
	}

	BeforeEach(func() {
		log, hook = test.NewNullLogger()
		log.SetLevel(logrus.DebugLevel)
		bp = tournament.MustNewPredictor(tournament.DefaultConfig())
	})

	run := func(outcomes ...bool) {
		for _, taken := range outcomes {
			pred, err := bp.Predict(branch)
			Expect(err).NotTo(HaveOccurred())
			Expect(bp.Update(pred.Context, branch, taken)).To(Succeed())
		}
	}

	It("should log every resolved branch at debug level", func() {
		bp.AcceptHook(diag.NewTraceHook(log))
		run(true, false)

		Expect(hook.AllEntries()).To(HaveLen(2))
		entry := hook.LastEntry()
		Expect(entry.Level).To(Equal(logrus.DebugLevel))
		Expect(entry.Data["seq"]).To(Equal(uint64(2)))
		Expect(entry.Data["taken"]).To(BeFalse())
	})

	It("should only log mispredictions when asked", func() {
		h := diag.NewTraceHook(log)
		h.OnlyMispredictions = true
		bp.AcceptHook(h)

		// Predicted not taken both times.
		run(true, false)

		Expect(hook.AllEntries()).To(HaveLen(1))
		Expect(hook.LastEntry().Level).To(Equal(logrus.InfoLevel))
		Expect(hook.LastEntry().Message).To(Equal("branch mispredicted"))
	})
})
