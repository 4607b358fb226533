package ncbi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"sync"
	"time"
)

// httpClient performs requests; tests may replace it with a mock transport.
var httpClient = &http.Client{Timeout: 60 * time.Second}

// baseURL is the NCBI genomes FTP tree served over HTTPS.
var baseURL = "https://ftp.ncbi.nlm.nih.gov/genomes/all"

// sleep waits between retries; tests replace it to avoid real delays.
var sleep = func(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

const maxAttempts = 3

// Cache structures
type cachedEntry struct {
	Report      string `json:"report"`
	RetrievedAt int64  `json:"retrieved_at"`
}

var (
	cacheMu       sync.RWMutex
	cache         map[string]cachedEntry
	cacheLoaded   bool
	cacheDirty    bool
	cacheFilePath string
	cacheTTLSecs  int64 = -1
)

// SetCacheFilePath points the on-disk cache at path.
func SetCacheFilePath(path string) {
	cacheMu.Lock()
	defer cacheMu.Unlock()
	cacheFilePath = path
	cache = nil
	cacheLoaded = false
}

// SetCacheTTLSeconds overrides the cache TTL. Zero disables expiry.
func SetCacheTTLSeconds(secs int64) {
	cacheMu.Lock()
	defer cacheMu.Unlock()
	cacheTTLSecs = secs
}

// cache TTL in seconds (default 7 days)
func cacheTTL() int64 {
	if cacheTTLSecs >= 0 {
		return cacheTTLSecs
	}
	if s := os.Getenv("NCBI_CACHE_TTL_SECONDS"); s != "" {
		if v, err := strconv.ParseInt(s, 10, 64); err == nil {
			return v
		}
	}
	return int64(7 * 24 * 3600)
}

func defaultCachePath() string {
	if cacheFilePath != "" {
		return cacheFilePath
	}
	if dir, err := os.UserCacheDir(); err == nil {
		p := filepath.Join(dir, "refheaders")
		_ = os.MkdirAll(p, 0o755)
		return filepath.Join(p, "assembly_reports.json")
	}
	return filepath.Join(os.TempDir(), "refheaders_assembly_reports.json")
}

// loadCacheLocked expects cacheMu to be held for writing.
func loadCacheLocked() {
	if cacheLoaded {
		return
	}
	cache = make(map[string]cachedEntry)
	cacheLoaded = true
	data, err := os.ReadFile(defaultCachePath())
	if err != nil {
		return
	}
	_ = json.Unmarshal(data, &cache)
}

func getCached(assembly string) (string, bool) {
	cacheMu.Lock()
	defer cacheMu.Unlock()
	loadCacheLocked()
	e, ok := cache[assembly]
	if !ok {
		return "", false
	}
	ttl := cacheTTL()
	if ttl > 0 && time.Now().Unix()-e.RetrievedAt > ttl {
		return "", false
	}
	return e.Report, true
}

func setCached(assembly, report string) {
	cacheMu.Lock()
	defer cacheMu.Unlock()
	loadCacheLocked()
	cache[assembly] = cachedEntry{Report: report, RetrievedAt: time.Now().Unix()}
	cacheDirty = true
}

// FlushCache writes pending cache entries to disk.
func FlushCache() error {
	cacheMu.Lock()
	defer cacheMu.Unlock()
	if !cacheDirty {
		return nil
	}
	b, err := json.MarshalIndent(cache, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(defaultCachePath(), b, 0o644); err != nil {
		return err
	}
	cacheDirty = false
	return nil
}

var assemblyRe = regexp.MustCompile(`^(GC[AF])_(\d{3})(\d{3})(\d{3})\.\d+_\S+$`)

// ReportURL returns the assembly report URL for a full assembly directory
// name such as GCF_000005845.2_ASM584v2.
func ReportURL(assembly string) (string, error) {
	m := assemblyRe.FindStringSubmatch(assembly)
	if m == nil {
		return "", fmt.Errorf("invalid assembly name %q (want e.g. GCF_000005845.2_ASM584v2)", assembly)
	}
	return fmt.Sprintf("%s/%s/%s/%s/%s/%s/%s_assembly_report.txt",
		baseURL, m[1], m[2], m[3], m[4], assembly, assembly), nil
}

// FetchAssemblyReport returns the text of the assembly report for assembly,
// from the cache when fresh, otherwise from NCBI. Rate limiting (429) and
// server errors are retried.
func FetchAssemblyReport(ctx context.Context, assembly string) (string, error) {
	url, err := ReportURL(assembly)
	if err != nil {
		return "", err
	}
	if v, ok := getCached(assembly); ok {
		return v, nil
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		body, wait, err := fetchOnce(ctx, url)
		if err == nil {
			setCached(assembly, body)
			return body, nil
		}
		lastErr = err
		if wait < 0 || attempt == maxAttempts {
			break
		}
		if err := sleep(ctx, wait); err != nil {
			return "", err
		}
	}
	return "", lastErr
}

// fetchOnce performs a single GET. A non-negative wait means the failure is
// retryable after that delay.
func fetchOnce(ctx context.Context, url string) (string, time.Duration, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", -1, err
	}
	req.Header.Set("User-Agent", "refheaders/1.0")
	resp, err := httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", -1, ctx.Err()
		}
		return "", 300 * time.Millisecond, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	switch {
	case resp.StatusCode == http.StatusOK:
		if err != nil {
			return "", -1, err
		}
		return string(data), 0, nil
	case resp.StatusCode == http.StatusTooManyRequests:
		return "", retryAfter(resp.Header.Get("Retry-After"), 500*time.Millisecond), fmt.Errorf("ncbi returned 429 for %s", url)
	case resp.StatusCode >= 500:
		return "", retryAfter(resp.Header.Get("Retry-After"), 300*time.Millisecond), fmt.Errorf("ncbi returned status %d for %s", resp.StatusCode, url)
	default:
		return "", -1, fmt.Errorf("ncbi returned status %d for %s: %s", resp.StatusCode, url, truncate(string(data), 200))
	}
}

func retryAfter(h string, fallback time.Duration) time.Duration {
	if secs, err := strconv.Atoi(h); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	return fallback
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
