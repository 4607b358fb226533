package logging

import (
	"bytes"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// timestampWriter prefixes each flushed line with an RFC3339 timestamp.
type timestampWriter struct {
	w   io.Writer
	buf bytes.Buffer
	mu  sync.Mutex
	now func() time.Time
}

// Write buffers bytes until a newline is found; for each full line, write a timestamped
// line to the underlying writer. Partial lines are kept in the buffer.
func (t *timestampWriter) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	n, _ := t.buf.Write(p)
	for {
		line, err := t.buf.ReadString('\n')
		if err != nil {
			// put the partial line back for the next write
			t.buf.Reset()
			t.buf.WriteString(line)
			break
		}
		ts := t.now().Format(time.RFC3339)
		if _, err := io.WriteString(t.w, ts+" "+line); err != nil {
			return n, err
		}
	}
	return n, nil
}

// terminalWriter exposes an Fd method so charm/log can detect a TTY through
// the wrapping writers.
type terminalWriter struct {
	w  io.Writer
	fd uintptr
}

func (tw *terminalWriter) Write(p []byte) (int, error) { return tw.w.Write(p) }

func (tw *terminalWriter) Fd() uintptr { return tw.fd }

// Options describe where and how verbosely to log.
type Options struct {
	File    string
	Level   string
	Verbose bool
}

// Logger wraps a charm logger together with the log file it may hold open.
type Logger struct {
	*log.Logger
	file *os.File
}

// Close releases the log file, if any.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}

// New builds a logger writing timestamped lines to stderr and, when
// opts.File is set, appending to that file as well.
func New(opts Options) *Logger {
	var out io.Writer = os.Stderr
	var fh *os.File
	if opts.File != "" {
		if f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644); err == nil {
			out = io.MultiWriter(os.Stderr, f)
			fh = f
		}
	}
	l := NewWithWriter(&terminalWriter{w: out, fd: os.Stderr.Fd()}, opts)
	l.file = fh
	if opts.File != "" && fh == nil {
		l.Warn("log_file specified but could not be opened; logging to stderr only", "path", opts.File)
	}
	return l
}

// NewWithWriter builds a logger on w without touching the filesystem.
func NewWithWriter(w io.Writer, opts Options) *Logger {
	var lw io.Writer = &timestampWriter{w: w, now: time.Now}
	if f, ok := w.(interface{ Fd() uintptr }); ok {
		lw = &terminalWriter{w: lw, fd: f.Fd()}
	}
	l := &Logger{Logger: log.New(lw)}
	if opts.Verbose {
		l.SetLevel(log.DebugLevel)
		return l
	}
	level, ok := ParseLevel(opts.Level)
	l.SetLevel(level)
	if !ok {
		l.Warn("unknown log_level in config, defaulting to info", "provided", opts.Level)
	}
	return l
}

// ParseLevel maps a config level name to a charm level. Unknown names map to
// info and report false.
func ParseLevel(s string) (log.Level, bool) {
	switch strings.ToLower(s) {
	case "debug":
		return log.DebugLevel, true
	case "info", "":
		return log.InfoLevel, true
	case "warn", "warning":
		return log.WarnLevel, true
	case "error":
		return log.ErrorLevel, true
	default:
		return log.InfoLevel, false
	}
}
