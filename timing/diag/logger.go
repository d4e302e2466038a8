// Package diag provides diagnostic sinks for the tournament predictor.
//
// TableLogger writes one tab-separated row per predict/update pair: the
// counters observed at prediction time followed by the outcome and the
// updated table contents, each rendered as a 12-bit binary string.
package diag

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/tourney/timing/tournament"
)

// Columns lists the header of the diagnostic table.
var Columns = []string{
	"LINE",
	"BINDEX",
	"P-Choice",
	"P-Global P",
	"P-Local P",
	"P-LocalHist",
	"P-Path Hist",
	"taken",
	"U-G|L",
	"U-LocalHist",
	"U-LocalPred",
	"U-GlobalPred",
	"U-Path Hist",
}

const (
	bitWidth   = 12
	lineEnding = "\r\n"
)

// Bits renders the low 12 bits of v, most significant first.
func Bits(v uint16) string {
	var buf [bitWidth]byte
	for i := 0; i < bitWidth; i++ {
		if v>>(bitWidth-1-i)&1 == 1 {
			buf[i] = '1'
		} else {
			buf[i] = '0'
		}
	}
	return string(buf[:])
}

// TableLogger is an akita hook that records every completed predict/update
// pair of a tournament.Predictor.
type TableLogger struct {
	w      *bufio.Writer
	closer io.Closer

	wroteHeader bool
	rows        uint64
	err         error
}

// NewTableLogger creates a logger writing to w.
func NewTableLogger(w io.Writer) *TableLogger {
	return &TableLogger{w: bufio.NewWriter(w)}
}

// OpenTableLogger appends to the file at path, creating it if needed.
func OpenTableLogger(path string) (*TableLogger, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open diagnostic log")
	}

	l := NewTableLogger(f)
	l.closer = f
	return l, nil
}

// Func implements sim.Hook.
func (l *TableLogger) Func(ctx sim.HookCtx) {
	if ctx.Pos != tournament.HookPosUpdate {
		return
	}

	rec, ok := ctx.Item.(*tournament.Record)
	if !ok {
		return
	}

	l.Log(rec)
}

// Log writes one row. The header is written before the first row.
func (l *TableLogger) Log(rec *tournament.Record) {
	if l.err != nil {
		return
	}

	if !l.wroteHeader {
		l.writeHeader()
		l.wroteHeader = true
	}

	taken := 0
	if rec.Taken {
		taken = 1
	}

	l.printf("%-12d\t", rec.Seq)
	l.printf("%s\t", Bits(rec.Index))
	l.printf("%s\t", Bits(uint16(rec.Context.ChoiceCounter)))
	l.printf("%s\t", Bits(uint16(rec.Context.GlobalCounter)))
	l.printf("%s\t", Bits(uint16(rec.Context.LocalCounter)))
	l.printf("%s\t", Bits(rec.Context.LocalHistory))
	l.printf("%s\t", Bits(rec.Context.PathHistory))
	l.printf("%-12d\t", taken)
	l.printf("%s\t", Bits(uint16(rec.ChoiceCounter)))
	l.printf("%s\t", Bits(rec.LocalHistory))
	l.printf("%s\t", Bits(uint16(rec.LocalCounter)))
	l.printf("%s\t", Bits(uint16(rec.GlobalCounter)))
	l.printf("%s\t", Bits(rec.PathHistory))
	l.printf(lineEnding)

	l.rows++
}

func (l *TableLogger) writeHeader() {
	for i, col := range Columns {
		if i == len(Columns)-1 {
			l.printf("%-12s", col)
		} else {
			l.printf("%-12s\t", col)
		}
	}
	l.printf(lineEnding)
}

func (l *TableLogger) printf(format string, args ...interface{}) {
	if l.err != nil {
		return
	}
	_, l.err = fmt.Fprintf(l.w, format, args...)
}

// Rows returns the number of rows written, excluding the header.
func (l *TableLogger) Rows() uint64 {
	return l.rows
}

// Err returns the first write error, if any.
func (l *TableLogger) Err() error {
	return l.err
}

// Flush writes any buffered rows to the underlying writer.
func (l *TableLogger) Flush() error {
	if l.err != nil {
		return l.err
	}
	return errors.Wrap(l.w.Flush(), "failed to flush diagnostic log")
}

// Close flushes the logger and closes the file opened by OpenTableLogger.
func (l *TableLogger) Close() error {
	flushErr := l.Flush()

	if l.closer != nil {
		if err := l.closer.Close(); err != nil && flushErr == nil {
			return errors.Wrap(err, "failed to close diagnostic log")
		}
	}

	return flushErr
}
