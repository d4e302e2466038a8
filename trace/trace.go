// Package trace reads and writes branch traces for replay through the
// tournament predictor.
//
// A trace is a text file with one resolved branch per line:
//
//	<instruction addr> <target addr> <flags> <outcome>
//
// Addresses are hexadecimal with an optional 0x prefix. Flags is "-" or any
// combination of c (conditional), C (call) and R (return). Outcome is 1 or T
// for taken and 0 or N for not taken. Blank lines and lines starting with #
// are ignored.
package trace

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/sarchlab/tourney/timing/tournament"
)

// Record is one resolved branch.
type Record struct {
	Branch tournament.Branch
	Taken  bool
}

// Flags renders the branch attributes in trace notation.
func Flags(b tournament.Branch) string {
	var sb strings.Builder
	if b.IsConditional {
		sb.WriteByte('c')
	}
	if b.IsCall {
		sb.WriteByte('C')
	}
	if b.IsReturn {
		sb.WriteByte('R')
	}
	if sb.Len() == 0 {
		return "-"
	}
	return sb.String()
}

// Reader parses a trace one record at a time.
type Reader struct {
	scanner *bufio.Scanner
	line    int
}

// NewReader creates a Reader on r.
func NewReader(r io.Reader) *Reader {
	return &Reader{scanner: bufio.NewScanner(r)}
}

// Line returns the number of the last line read.
func (r *Reader) Line() int {
	return r.line
}

// Next returns the next record, or io.EOF when the trace is exhausted.
func (r *Reader) Next() (Record, error) {
	for r.scanner.Scan() {
		r.line++

		text := strings.TrimSpace(r.scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		rec, err := ParseLine(text)
		if err != nil {
			return Record{}, errors.Wrapf(err, "line %d", r.line)
		}
		return rec, nil
	}

	if err := r.scanner.Err(); err != nil {
		return Record{}, errors.Wrap(err, "failed to read trace")
	}

	return Record{}, io.EOF
}

// ParseLine parses a single non-comment trace line.
func ParseLine(line string) (Record, error) {
	fields := strings.Fields(line)
	if len(fields) != 4 {
		return Record{}, errors.Errorf("expected 4 fields, got %d", len(fields))
	}

	var rec Record
	var err error

	rec.Branch.InstructionAddr, err = parseAddr(fields[0])
	if err != nil {
		return Record{}, errors.Wrap(err, "bad instruction address")
	}

	rec.Branch.BranchTarget, err = parseAddr(fields[1])
	if err != nil {
		return Record{}, errors.Wrap(err, "bad branch target")
	}

	if err := parseFlags(fields[2], &rec.Branch); err != nil {
		return Record{}, err
	}

	switch fields[3] {
	case "1", "T", "t":
		rec.Taken = true
	case "0", "N", "n":
		rec.Taken = false
	default:
		return Record{}, errors.Errorf("bad outcome %q", fields[3])
	}

	return rec, nil
}

func parseAddr(s string) (uint64, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	return strconv.ParseUint(s, 16, 64)
}

func parseFlags(s string, b *tournament.Branch) error {
	if s == "-" {
		return nil
	}

	for _, c := range s {
		switch c {
		case 'c':
			b.IsConditional = true
		case 'C':
			b.IsCall = true
		case 'R':
			b.IsReturn = true
		default:
			return errors.Errorf("bad flag %q", c)
		}
	}

	return nil
}

// ReadAll reads every record from r.
func ReadAll(r io.Reader) ([]Record, error) {
	reader := NewReader(r)
	var records []Record

	for {
		rec, err := reader.Next()
		if err == io.EOF {
			return records, nil
		}
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
}

// ReadFile reads every record of the trace file at path.
func ReadFile(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open trace")
	}
	defer func() { _ = f.Close() }()

	return ReadAll(f)
}

// Writer emits records in trace notation.
type Writer struct {
	w *bufio.Writer
}

// NewWriter creates a Writer on w. Call Flush when done.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// Write emits one record.
func (w *Writer) Write(rec Record) error {
	outcome := 0
	if rec.Taken {
		outcome = 1
	}

	_, err := fmt.Fprintf(w.w, "0x%x 0x%x %s %d\n",
		rec.Branch.InstructionAddr, rec.Branch.BranchTarget,
		Flags(rec.Branch), outcome)
	return errors.Wrap(err, "failed to write trace record")
}

// Comment emits a comment line.
func (w *Writer) Comment(text string) error {
	_, err := fmt.Fprintf(w.w, "# %s\n", text)
	return errors.Wrap(err, "failed to write trace comment")
}

// Flush writes any buffered data to the underlying writer.
func (w *Writer) Flush() error {
	return errors.Wrap(w.w.Flush(), "failed to flush trace")
}
