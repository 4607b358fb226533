package fasta

import (
	"bytes"
	"compress/gzip"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestReadSimple(t *testing.T) {
	input := ">seq1\nATGC\n>seq2 desc text\nGGTT\nAACC\n"
	recs, err := Read(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected 2 records, got %d", len(recs))
	}
	if recs[0].ID != "seq1" || recs[0].Description != "seq1" || string(recs[0].Seq) != "ATGC" {
		t.Fatalf("unexpected first record: %+v", recs[0])
	}
	if recs[1].ID != "seq2" || recs[1].Description != "seq2 desc text" || string(recs[1].Seq) != "GGTTAACC" {
		t.Fatalf("unexpected second record: %+v", recs[1])
	}
}

func TestWriteUsesDescriptionAsTitle(t *testing.T) {
	var buf bytes.Buffer
	recs := []Record{
		{ID: "c", Description: "c length=5000 circular=true", Seq: []byte("ACGT")},
		{ID: "lp17", Description: "lp17", Seq: []byte("GG")},
		{ID: "x", Description: "other words", Seq: []byte("T")},
	}
	if _, err := Write(&buf, recs, 60); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	want := ">c length=5000 circular=true\nACGT\n" +
		">lp17\nGG\n" +
		">x other words\nT\n"
	if buf.String() != want {
		t.Fatalf("unexpected output:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestWriteKeepsTitleVerbatim(t *testing.T) {
	var buf bytes.Buffer
	recs := []Record{
		{ID: "length=7", Description: " length=7 circular=false", Seq: []byte("ACG")},
		{ID: "x", Description: "x  two  spaces", Seq: []byte("T")},
	}
	if _, err := Write(&buf, recs, 60); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	want := "> length=7 circular=false\nACG\n" +
		">x  two  spaces\nT\n"
	if buf.String() != want {
		t.Fatalf("unexpected output:\n%q\nwant:\n%q", buf.String(), want)
	}
}

func TestWriteWrapsAtWidth(t *testing.T) {
	var buf bytes.Buffer
	n, err := Write(&buf, []Record{{ID: "x", Description: "x", Seq: []byte("ACGTACGTAC")}}, 4)
	if err != nil {
		t.Fatalf("write failed: %v", err)
	}
	want := ">x\nACGT\nACGT\nAC\n"
	if buf.String() != want {
		t.Fatalf("expected %q, got %q", want, buf.String())
	}
	if n != int64(len(want)) {
		t.Fatalf("expected %d bytes reported, got %d", len(want), n)
	}
}

func TestWriteThenReadKeepsPayload(t *testing.T) {
	seq := bytes.Repeat([]byte("ACGTN"), 50)
	var buf bytes.Buffer
	if _, err := Write(&buf, []Record{{ID: "chromosome", Description: "chromosome length=250 circular=false", Seq: seq}}, 0); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	recs, err := Read(&buf)
	if err != nil {
		t.Fatalf("read back failed: %v", err)
	}
	if len(recs) != 1 || !bytes.Equal(recs[0].Seq, seq) {
		t.Fatalf("payload changed: %+v", recs)
	}
	if recs[0].Description != "chromosome length=250 circular=false" {
		t.Fatalf("unexpected description %q", recs[0].Description)
	}
}

func TestReadFileGzip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "genome.fna.gz")
	fh, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	gw := gzip.NewWriter(fh)
	if _, err := gw.Write([]byte(">NC_1\nACGT\n>NC_2\nTTTT\n")); err != nil {
		t.Fatalf("write gz: %v", err)
	}
	gw.Close()
	fh.Close()

	recs, err := ReadFile(path)
	if err != nil {
		t.Fatalf("read gz: %v", err)
	}
	if len(recs) != 2 || recs[0].ID != "NC_1" || recs[1].ID != "NC_2" {
		t.Fatalf("gzip parse failed: %+v", recs)
	}
}

func TestOpenMissingFile(t *testing.T) {
	if _, err := Open(filepath.Join(t.TempDir(), "absent.fasta")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestCompress(t *testing.T) {
	var buf bytes.Buffer
	wc := Compress(&buf, "out.fasta.gz")
	if _, err := wc.Write([]byte(">a\nAC\n")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := wc.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	gr, err := gzip.NewReader(&buf)
	if err != nil {
		t.Fatalf("expected gzip output: %v", err)
	}
	recs, err := Read(gr)
	if err != nil || len(recs) != 1 || recs[0].ID != "a" {
		t.Fatalf("unexpected records %+v, %v", recs, err)
	}

	var plain bytes.Buffer
	wc = Compress(&plain, "out.fasta")
	wc.Write([]byte("x"))
	wc.Close()
	if plain.String() != "x" {
		t.Fatalf("expected passthrough, got %q", plain.String())
	}
}
