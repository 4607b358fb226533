package fasta

// Package fasta reads and writes FASTA records on top of the biogo seqio
// reader and writer. Sequence bytes are passed through as-is.

import (
	"fmt"
	"io"
	"strings"

	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/io/seqio"
	biofasta "github.com/biogo/biogo/io/seqio/fasta"
	"github.com/biogo/biogo/seq/linear"
)

// DefaultWidth is the sequence line width used when none is configured.
const DefaultWidth = 60

// Record is a single FASTA entry. Description holds the full header text
// after '>' and ID is its first whitespace-delimited token.
type Record struct {
	ID          string
	Description string
	Seq         []byte
}

// Read parses every record from r.
func Read(r io.Reader) ([]Record, error) {
	sc := seqio.NewScanner(biofasta.NewReader(r, linear.NewSeq("", nil, alphabet.DNA)))
	var records []Record
	for sc.Next() {
		s := sc.Seq().(*linear.Seq)
		desc := s.ID
		if s.Desc != "" {
			desc = s.ID + " " + s.Desc
		}
		records = append(records, Record{
			ID:          s.ID,
			Description: desc,
			Seq:         letterBytes(s.Seq),
		})
	}
	if err := sc.Error(); err != nil {
		return nil, fmt.Errorf("parse fasta: %w", err)
	}
	return records, nil
}

func letterBytes(l alphabet.Letters) []byte {
	b := make([]byte, len(l))
	for i, c := range l {
		b[i] = byte(c)
	}
	return b
}

// Writer serializes records with a fixed sequence line width.
type Writer struct {
	w *biofasta.Writer
}

// NewWriter wraps w, wrapping sequence lines at width (DefaultWidth if width < 1).
func NewWriter(w io.Writer, width int) *Writer {
	if width <= 0 {
		width = DefaultWidth
	}
	return &Writer{w: biofasta.NewWriter(w, width)}
}

// Write emits one record and returns the number of bytes written.
func (w *Writer) Write(rec Record) (int, error) {
	id, desc := splitTitle(rec.ID, rec.Description)
	s := linear.NewSeq(id, alphabet.BytesToLetters(rec.Seq), alphabet.DNA)
	s.Desc = desc
	return w.w.Write(s)
}

// Write emits all records in order.
func Write(w io.Writer, records []Record, width int) (int64, error) {
	fw := NewWriter(w, width)
	var total int64
	for _, rec := range records {
		n, err := fw.Write(rec)
		total += int64(n)
		if err != nil {
			return total, fmt.Errorf("write %s: %w", rec.ID, err)
		}
	}
	return total, nil
}

// splitTitle returns the name and trailing description for the '>' line.
// A description whose first token is the ID becomes the whole title,
// verbatim; any other description is appended after the ID.
func splitTitle(id, desc string) (string, string) {
	if desc == "" {
		return id, ""
	}
	if f := strings.Fields(desc); len(f) > 0 && f[0] == id {
		return desc, ""
	}
	return id, desc
}
