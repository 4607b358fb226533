package main

import (
	"strings"
	"testing"

	"github.com/mjfos2r/ONT-RefAssembly/internal/fasta"
	"github.com/mjfos2r/ONT-RefAssembly/internal/headers"
)

func testEntries(t *testing.T) []entry {
	t.Helper()
	b, err := headers.Read(strings.NewReader(
		"# comment\n"+
			"na\tassembled-molecule\tna\tChromosome\tAE000783.1\t=\tNC_001318.1\tPrimary Assembly\t910724\tna\n"+
			"cp26\tassembled-molecule\tcp26\tPlasmid\tAE000792.1\t=\tNC_001903.1\tPrimary Assembly\t26498\tna\n",
	), headers.Options{})
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	records := []fasta.Record{
		{ID: "NC_001318.1", Description: "NC_001318.1 chromosome", Seq: []byte(strings.Repeat("ATG", 50))},
		{ID: "NC_001903.1", Description: "NC_001903.1 plasmid cp26", Seq: []byte("GATTACA")},
		{ID: "NC_999999.1", Description: "NC_999999.1 stray", Seq: []byte("AC")},
	}
	return buildEntries(records, b)
}

func TestBuildEntries(t *testing.T) {
	entries := testEntries(t)
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if entries[0].New.ID != "chromosome" || entries[0].Row == nil || entries[0].Row.Length != "910724" {
		t.Fatalf("unexpected first entry: %+v", entries[0])
	}
	if entries[1].New.Description != "cp26 length=26498 circular=true" {
		t.Fatalf("unexpected second entry: %+v", entries[1])
	}
	if !entries[2].Missing {
		t.Fatalf("expected third entry to be unmapped")
	}
}

func TestCycleMode(t *testing.T) {
	m := newModel(testEntries(t))
	if m.currentMode != modeHeader {
		t.Fatalf("expected initial mode header, got %v", m.currentMode)
	}
	if m.missing != 1 {
		t.Fatalf("expected 1 unmapped record, got %d", m.missing)
	}
	m = m.cycleMode()
	if m.currentMode != modeRow {
		t.Fatalf("expected row, got %v", m.currentMode)
	}
	m = m.cycleMode()
	if m.currentMode != modeSequence {
		t.Fatalf("expected sequence, got %v", m.currentMode)
	}
	m = m.cycleMode()
	if m.currentMode != modeHeader {
		t.Fatalf("expected header, got %v", m.currentMode)
	}
}

func TestBuildRightLinesWrap(t *testing.T) {
	entries := testEntries(t)
	m := newModel(entries)
	m.width = 120
	m.height = 40
	m.currentMode = modeSequence
	lines := m.buildRightLines(entries[0])
	// title, blank, length line, then 150 bp wrapped at 74 columns
	if len(lines) != 6 {
		t.Fatalf("expected 6 lines, got %d: %q", len(lines), lines)
	}
	if len(lines[3]) != 74 {
		t.Fatalf("expected first sequence line of 74 columns, got %d", len(lines[3]))
	}
}

func TestBuildRightLinesHeader(t *testing.T) {
	entries := testEntries(t)
	m := newModel(entries)
	lines := strings.Join(m.buildRightLines(entries[1]), "\n")
	if !strings.Contains(lines, ">cp26 length=26498 circular=true") || !strings.Contains(lines, ">NC_001903.1 plasmid cp26") {
		t.Fatalf("expected old and new headers, got %q", lines)
	}
	lines = strings.Join(m.buildRightLines(entries[2]), "\n")
	if !strings.Contains(lines, "NC_999999.1") {
		t.Fatalf("expected unmapped accession in panel, got %q", lines)
	}
}

func TestWrap(t *testing.T) {
	got := wrap("ABCDEFG", 3)
	if strings.Join(got, ",") != "ABC,DEF,G" {
		t.Fatalf("unexpected wrap result %v", got)
	}
	if len(wrap("", 3)) != 0 {
		t.Fatalf("expected no lines for empty input")
	}
}
