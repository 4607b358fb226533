package headers

// Package headers builds the accession -> header map from an NCBI assembly
// report (or any tab-delimited table with the same column layout).

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Column positions consumed from each report row.
const (
	colName      = 2
	colMolType   = 3
	colAccession = 6
	colLength    = 8

	minFields = colLength + 1
)

// ChromosomeType is the molecule type that triggers the name override.
const ChromosomeType = "Chromosome"

var (
	// ErrMalformedRow marks a non-comment row with fewer than 9 fields.
	ErrMalformedRow = errors.New("malformed report row")
	// ErrMissingMapping marks a sequence ID with no report row.
	ErrMissingMapping = errors.New("no header mapping for sequence")
	// ErrDuplicateAccession marks a repeated accession when duplicates are rejected.
	ErrDuplicateAccession = errors.New("duplicate accession in report")
)

// Row holds the fields of a report line that the header is derived from.
type Row struct {
	Name      string
	MolType   string
	Accession string
	Length    string
}

// Circular reports whether the sequence is circular. It is decided from the
// original name, before any chromosome override.
func (r Row) Circular() bool {
	return strings.HasPrefix(r.Name, "c")
}

// Header formats the row as "<name> length=<length> circular=<bool>".
func (r Row) Header() string {
	circular := "false"
	if r.Circular() {
		circular = "true"
	}
	name := r.Name
	if r.MolType == ChromosomeType {
		name = "chromosome"
	}
	return fmt.Sprintf("%s length=%s circular=%s", name, r.Length, circular)
}

// IsComment reports whether line is a '#' comment line.
func IsComment(line string) bool {
	return strings.HasPrefix(line, "#")
}

// ParseRow splits a non-comment report line on tabs.
func ParseRow(line string) (Row, error) {
	line = strings.TrimRight(line, "\r\n")
	parts := strings.Split(line, "\t")
	if len(parts) < minFields {
		return Row{}, fmt.Errorf("%w: %d fields, need at least %d", ErrMalformedRow, len(parts), minFields)
	}
	return Row{
		Name:      parts[colName],
		MolType:   parts[colMolType],
		Accession: parts[colAccession],
		Length:    parts[colLength],
	}, nil
}

// Map is accession -> formatted header. It is read-only once built.
type Map map[string]string

// Lookup returns the header for id or an ErrMissingMapping error.
func (m Map) Lookup(id string) (string, error) {
	h, ok := m[id]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrMissingMapping, id)
	}
	return h, nil
}

// Len is the number of accessions in the map.
func (m Map) Len() int { return len(m) }

// Options control how the map is assembled.
type Options struct {
	// RejectDuplicates turns a repeated accession into an error instead of
	// letting the later row overwrite the earlier one.
	RejectDuplicates bool
}

// Builder accumulates report lines into a Map.
type Builder struct {
	opts  Options
	m     Map
	rows  []Row
	lines int
}

// NewBuilder returns an empty Builder.
func NewBuilder(opts Options) *Builder {
	return &Builder{opts: opts, m: make(Map)}
}

// AddLine consumes one raw report line. Comment lines are skipped.
func (b *Builder) AddLine(line string) error {
	b.lines++
	if IsComment(line) {
		return nil
	}
	row, err := ParseRow(line)
	if err != nil {
		return fmt.Errorf("line %d: %w", b.lines, err)
	}
	if _, dup := b.m[row.Accession]; dup && b.opts.RejectDuplicates {
		return fmt.Errorf("line %d: %w: %q", b.lines, ErrDuplicateAccession, row.Accession)
	}
	b.m[row.Accession] = row.Header()
	b.rows = append(b.rows, row)
	return nil
}

// Map returns the map built so far.
func (b *Builder) Map() Map { return b.m }

// Rows returns every parsed (non-comment) row in input order, duplicates included.
func (b *Builder) Rows() []Row { return b.rows }

// Lines is the number of lines consumed, comments included.
func (b *Builder) Lines() int { return b.lines }

// Build constructs a Map from an in-memory list of lines.
func Build(lines []string, opts Options) (Map, error) {
	b := NewBuilder(opts)
	for _, l := range lines {
		if err := b.AddLine(l); err != nil {
			return nil, err
		}
	}
	return b.Map(), nil
}

// Read scans r line by line into a Builder. The returned Builder is nil on error.
func Read(r io.Reader, opts Options) (*Builder, error) {
	b := NewBuilder(opts)
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for sc.Scan() {
		if err := b.AddLine(sc.Text()); err != nil {
			return nil, err
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read report: %w", err)
	}
	return b, nil
}
