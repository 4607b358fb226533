package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/mjfos2r/ONT-RefAssembly/internal/config"
	"github.com/mjfos2r/ONT-RefAssembly/internal/fasta"
	"github.com/mjfos2r/ONT-RefAssembly/internal/headers"
	"github.com/mjfos2r/ONT-RefAssembly/internal/logging"
	"github.com/mjfos2r/ONT-RefAssembly/internal/ncbi"
	"github.com/mjfos2r/ONT-RefAssembly/internal/rewrite"

	pb "gopkg.in/cheggaaa/pb.v1"
)

// version is the program version. It can be overridden at build time with -ldflags "-X main.version=..."
var version = "0.1.0"

func main() {
	// CLI flags
	reportFlag := flag.String("report", "", "NCBI assembly report (tab-delimited, '-' for stdin)")
	assemblyFlag := flag.String("assembly", "", "fetch the assembly report from NCBI, e.g. GCF_000005845.2_ASM584v2")
	inputFlag := flag.String("in", "", "input FASTA file path ('-' for stdin, .gz accepted)")
	outputFlag := flag.String("out", "", "output FASTA file path (default "+config.DefaultOutput+")")
	configFlag := flag.String("config", "", "path to config.json (optional)")
	widthFlag := flag.Int("width", 0, "sequence line width in the output (default 60)")
	strictFlag := flag.Bool("strict", false, "fail on duplicate accessions instead of keeping the last row")
	progressFlag := flag.Bool("progress", false, "show a progress bar while rewriting")
	dryRun := flag.Bool("dry-run", false, "build and apply the header map without writing the output")
	verbose := flag.Bool("verbose", false, "enable verbose (debug) logging")
	versionFlag := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *versionFlag {
		fmt.Println("fixrefheaders", version)
		return
	}

	cfg, err := config.LoadConfig(*configFlag)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	// merge CLI flags into config (flags override config when provided)
	if *reportFlag != "" {
		cfg.Report = *reportFlag
		cfg.Assembly = ""
	}
	if *assemblyFlag != "" {
		cfg.Assembly = *assemblyFlag
		if *reportFlag == "" {
			cfg.Report = ""
		}
	}
	if *inputFlag != "" {
		cfg.InputFasta = *inputFlag
	}
	if *outputFlag != "" {
		cfg.OutputFasta = *outputFlag
	}
	if *widthFlag > 0 {
		cfg.LineWidth = *widthFlag
	}
	if *strictFlag {
		cfg.RejectDuplicates = true
	}

	logger := logging.New(logging.Options{File: cfg.LogFile, Level: cfg.LogLevel, Verbose: *verbose})
	defer logger.Close()

	logger.Debug("loaded config", "report", cfg.Report, "assembly", cfg.Assembly, "input_fasta", cfg.InputFasta,
		"output_fasta", cfg.OutputFasta, "line_width", cfg.LineWidth, "reject_duplicates", cfg.RejectDuplicates,
		"log_file", cfg.LogFile, "log_level", cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid configuration", "err", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	job := rewrite.Job{
		ReportPath: cfg.Report,
		FastaPath:  cfg.InputFasta,
		OutPath:    cfg.OutputFasta,
		Width:      cfg.LineWidth,
		Headers:    headers.Options{RejectDuplicates: cfg.RejectDuplicates},
		DryRun:     *dryRun,
	}

	if cfg.Assembly != "" {
		report, err := fetchReport(ctx, logger, cfg)
		if err != nil {
			logger.Fatal("failed to fetch assembly report", "assembly", cfg.Assembly, "err", err)
		}
		job.Report = strings.NewReader(report)
	}

	var bar *pb.ProgressBar
	job.Hooks.OnRead = func(n int) {
		logger.Info("parsed fasta", "path", cfg.InputFasta, "records", n)
		if *progressFlag {
			bar = pb.New(n).Prefix("records ")
			bar.Output = os.Stderr
			bar.ShowSpeed = false
			bar.Start()
		}
	}
	job.Hooks.OnRecord = func(oldID string, rec fasta.Record) {
		logger.Debug("renamed record", "old_id", oldID, "new_id", rec.ID, "header", rec.Description)
		if bar != nil {
			bar.Increment()
		}
	}

	logger.Info("starting fixrefheaders", "report", reportSource(cfg), "input_fasta", cfg.InputFasta, "output_fasta", cfg.OutputFasta)
	start := time.Now()
	st, err := rewrite.Run(ctx, job)
	if bar != nil {
		bar.Finish()
	}
	if err != nil {
		logger.Fatal("rewrite failed", "err", err)
	}
	logger.Info("built header map", "report_lines", st.ReportLines, "rows", st.Rows, "accessions", st.Mapped)
	if st.Rows > st.Mapped {
		logger.Warn("assembly report repeats accessions; later rows won", "rows", st.Rows, "accessions", st.Mapped)
	}

	if *dryRun {
		logger.Info("dry-run: would write output FASTA", "path", st.Output, "records", st.Records)
		return
	}
	logger.Info("wrote output FASTA", "path", st.Output, "records", st.Records, "bytes", st.Bytes, "duration_ms", time.Since(start).Milliseconds())
}

func reportSource(cfg *config.Config) string {
	if cfg.Assembly != "" {
		return "ncbi:" + cfg.Assembly
	}
	return cfg.Report
}

// fetchReport downloads (or reads from cache) the assembly report named in cfg.
func fetchReport(ctx context.Context, logger *logging.Logger, cfg *config.Config) (string, error) {
	if cfg.NcbiCachePath != "" {
		if absPath, err := filepath.Abs(cfg.NcbiCachePath); err == nil {
			ncbi.SetCacheFilePath(absPath)
			logger.Info("ncbi cache path set from config (absolute)", "path", absPath)
		} else {
			ncbi.SetCacheFilePath(cfg.NcbiCachePath)
			logger.Info("ncbi cache path set from config", "path", cfg.NcbiCachePath)
		}
	}
	if cfg.NcbiCacheTTLSecs > 0 {
		ncbi.SetCacheTTLSeconds(cfg.NcbiCacheTTLSecs)
	}
	defer func() {
		if err := ncbi.FlushCache(); err != nil {
			logger.Warn("could not persist ncbi cache", "err", err)
		}
	}()

	url, err := ncbi.ReportURL(cfg.Assembly)
	if err != nil {
		return "", err
	}
	logger.Debug("fetching assembly report", "url", url)
	fctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()
	report, err := ncbi.FetchAssemblyReport(fctx, cfg.Assembly)
	if err != nil {
		return "", err
	}
	logger.Info("assembly report ready", "assembly", cfg.Assembly, "bytes", len(report))
	return report, nil
}
