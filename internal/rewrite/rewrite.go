package rewrite

// Package rewrite replaces FASTA record identifiers with the headers built
// from an assembly report, and writes the result in one go.

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mjfos2r/ONT-RefAssembly/internal/fasta"
	"github.com/mjfos2r/ONT-RefAssembly/internal/headers"
)

// DefaultOutput is the file written when Job.OutPath is empty.
const DefaultOutput = "new_headers.fasta"

// Record rewrites a single record from m. The input is not modified.
func Record(rec fasta.Record, m headers.Map) (fasta.Record, error) {
	h, err := m.Lookup(rec.ID)
	if err != nil {
		return fasta.Record{}, err
	}
	id := h
	if f := strings.Fields(h); len(f) > 0 {
		id = f[0]
	}
	return fasta.Record{ID: id, Description: h, Seq: rec.Seq}, nil
}

// Rewrite maps every record through m, preserving order. The first record
// without a mapping aborts the whole rewrite.
func Rewrite(records []fasta.Record, m headers.Map) ([]fasta.Record, error) {
	return rewriteAll(context.Background(), records, m, nil)
}

// rewriteAll is the loop behind Rewrite and Run. ctx is checked before each
// record and onRecord, when set, sees every rewritten record.
func rewriteAll(ctx context.Context, records []fasta.Record, m headers.Map, onRecord func(string, fasta.Record)) ([]fasta.Record, error) {
	out := make([]fasta.Record, 0, len(records))
	for i, rec := range records {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		nr, err := Record(rec, m)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i+1, err)
		}
		out = append(out, nr)
		if onRecord != nil {
			onRecord(rec.ID, nr)
		}
	}
	return out, nil
}

// Hooks let callers observe a run. Either may be nil.
type Hooks struct {
	// OnRead is called once the FASTA input is loaded, with its record count.
	OnRead func(n int)
	// OnRecord is called after each record is rewritten.
	OnRecord func(oldID string, rec fasta.Record)
}

// Job describes one rewrite run.
type Job struct {
	// ReportPath is the assembly report file ("-" for stdin). Ignored when
	// Report is set.
	ReportPath string
	Report     io.Reader

	FastaPath string
	OutPath   string
	Width     int
	Headers   headers.Options
	DryRun    bool
	Hooks     Hooks
}

// Stats summarize a finished run.
type Stats struct {
	ReportLines int
	Rows        int
	Mapped      int
	Records     int
	Bytes       int64
	Output      string
}

// Run loads the report and the FASTA file completely, rewrites every record
// and only then writes the output. Nothing is written if any step fails.
func Run(ctx context.Context, job Job) (Stats, error) {
	var st Stats
	if job.Report == nil && job.ReportPath == "" {
		return st, errors.New("no assembly report source")
	}
	if job.Report == nil && job.ReportPath == "-" && job.FastaPath == "-" {
		return st, errors.New("report and FASTA cannot both be read from stdin")
	}
	out := job.OutPath
	if out == "" {
		out = DefaultOutput
	}
	st.Output = out

	b, err := readReport(job)
	if err != nil {
		return st, err
	}
	m := b.Map()
	st.ReportLines, st.Rows, st.Mapped = b.Lines(), len(b.Rows()), m.Len()

	records, err := fasta.ReadFile(job.FastaPath)
	if err != nil {
		return st, fmt.Errorf("read fasta %s: %w", job.FastaPath, err)
	}
	if job.Hooks.OnRead != nil {
		job.Hooks.OnRead(len(records))
	}

	rewritten, err := rewriteAll(ctx, records, m, job.Hooks.OnRecord)
	if err != nil {
		return st, err
	}
	st.Records = len(rewritten)

	if job.DryRun {
		return st, nil
	}
	n, err := writeOutput(out, rewritten, job.Width)
	st.Bytes = n
	if err != nil {
		return st, err
	}
	return st, nil
}

func readReport(job Job) (*headers.Builder, error) {
	if job.Report != nil {
		b, err := headers.Read(job.Report, job.Headers)
		if err != nil {
			return nil, fmt.Errorf("assembly report: %w", err)
		}
		return b, nil
	}
	rc, err := fasta.Open(job.ReportPath)
	if err != nil {
		return nil, fmt.Errorf("open assembly report: %w", err)
	}
	defer rc.Close()
	b, err := headers.Read(rc, job.Headers)
	if err != nil {
		return nil, fmt.Errorf("assembly report %s: %w", job.ReportPath, err)
	}
	return b, nil
}

// writeOutput writes records to path through a temp file in the same
// directory and renames it into place, so a failed write leaves no file.
// "-" writes to stdout.
func writeOutput(path string, records []fasta.Record, width int) (int64, error) {
	if path == "-" {
		bw := bufio.NewWriter(os.Stdout)
		n, err := fasta.Write(bw, records, width)
		if err != nil {
			return n, err
		}
		return n, bw.Flush()
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return 0, fmt.Errorf("create output: %w", err)
	}
	tmpName := tmp.Name()
	fail := func(err error) (int64, error) {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return 0, fmt.Errorf("write output %s: %w", path, err)
	}

	bw := bufio.NewWriter(tmp)
	wc := fasta.Compress(bw, path)
	n, err := fasta.Write(wc, records, width)
	if err != nil {
		return fail(err)
	}
	if err := wc.Close(); err != nil {
		return fail(err)
	}
	if err := bw.Flush(); err != nil {
		return fail(err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		return fail(err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return 0, fmt.Errorf("write output %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return 0, fmt.Errorf("write output %s: %w", path, err)
	}
	return n, nil
}
