//go:build integration
// +build integration

package ncbi

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// This file contains integration tests that hit the real NCBI servers.
// They are excluded by default; run with `go test -tags=integration ./...`.

func TestIntegrationFetchEcoliReport(t *testing.T) {
	SetCacheFilePath(filepath.Join(t.TempDir(), "assembly_reports.json"))
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	report, err := FetchAssemblyReport(ctx, "GCF_000005845.2_ASM584v2")
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if !strings.Contains(report, "NC_000913.3") {
		t.Fatalf("expected NC_000913.3 in report")
	}
}
