// FILE: lixenwraith/compose/report.go
package compose

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// DefaultPrefix starts every line a Reporter writes
const DefaultPrefix = "- "

// PrecedenceSeparator joins file names in the summary line, lowest precedence first
const PrecedenceSeparator = " << "

// Verbosity controls how much the composer reports
type Verbosity int

const (
	// VerbosityQuiet prints nothing
	VerbosityQuiet Verbosity = 0
	// VerbositySummary prints one line with the configuration count and files read
	VerbositySummary Verbosity = 1
	// VerbosityFull also prints every resolved configuration
	VerbosityFull Verbosity = 2
)

// Reporter writes human-readable progress lines and is the shared fatal-error
// routine for the composer.
type Reporter struct {
	out    io.Writer
	prefix string
	logger *slog.Logger
}

// NewReporter creates a reporter writing to out (stdout when nil)
func NewReporter(out io.Writer, logger *slog.Logger) *Reporter {
	if out == nil {
		out = os.Stdout
	}
	if logger == nil {
		logger = discardLogger()
	}
	return &Reporter{out: out, prefix: DefaultPrefix, logger: logger}
}

// Fail reports an unrecoverable error raised by source. It returns a
// *FatalError wrapping err for the caller to propagate. With warn set the
// problem is printed as a warning instead and Fail returns nil.
func (r *Reporter) Fail(source string, err error, warn bool) error {
	if warn {
		r.printf("WARNING from %s - %v\n", source, err)
		r.logger.Warn("non-fatal configuration problem", "source", source, "error", err)
		return nil
	}
	r.logger.Error("fatal configuration problem", "source", source, "error", err)
	return &FatalError{Source: source, Err: err}
}

// Summary prints the configuration count and contributing files at
// VerbositySummary and above, and each configuration at VerbosityFull.
func (r *Reporter) Summary(verbosity Verbosity, configs []*Configuration, files []string) {
	n := len(configs)
	if verbosity >= VerbositySummary {
		r.printf("Read %d config(s) from %s\n", n, strings.Join(files, PrecedenceSeparator))
	}
	if verbosity >= VerbosityFull {
		for i, cfg := range configs {
			r.printf("CONFIG %d/%d:\n%s", i+1, n, cfg.render())
		}
	}
}

func (r *Reporter) printf(format string, args ...any) {
	fmt.Fprintf(r.out, r.prefix+format, args...)
}

// discardLogger returns a logger that drops every record
func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}
