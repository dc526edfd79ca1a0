package logger

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color" // Import the fatih/color package for colored console output
)

// Colorized printing functions for the different message levels, built with fatih/color.
// They are package-level variables holding functions that behave like fmt.Printf,
// with the text colored for the level. SetOutput rebuilds them against another writer.
var (
	// Info prints informational messages in green.
	Info func(format string, a ...any)

	// Success prints completion messages in bold green.
	Success func(format string, a ...any)

	// Comment prints secondary hints (the "Running:" lines, tips) in yellow.
	Comment func(format string, a ...any)

	// Warn prints warnings in bright magenta.
	Warn func(format string, a ...any)

	// Error prints errors in red.
	Error func(format string, a ...any)

	// Line prints uncolored text.
	Line func(format string, a ...any)

	// Debug prints debug messages in cyan when enabled, otherwise it is a no-op.
	// It is assigned by Init based on the --debug flag.
	Debug = func(format string, a ...any) {}
)

var (
	out          io.Writer = os.Stdout
	debugEnabled bool
)

func init() {
	build()
}

// Init enables or disables debug logging.
// When enabled, Debug prints cyan messages; when disabled it silently ignores them.
func Init(enableDebug bool) {
	debugEnabled = enableDebug
	build()
}

// SetOutput redirects every printer to w. A nil writer restores os.Stdout.
func SetOutput(w io.Writer) {
	if w == nil {
		w = os.Stdout
	}
	out = w
	build()
}

// Writer returns the writer the printers currently target.
func Writer() io.Writer {
	return out
}

// Task prints a progress title, runs fn, and reports ✔ or ✘.
// The error from fn is returned unchanged.
func Task(title string, fn func() error) error {
	Line("%s...\n", title)
	if err := fn(); err != nil {
		Error("%s: ✘\n", title)
		return err
	}
	Success("%s: ✔\n", title)
	return nil
}

func bind(c *color.Color) func(format string, a ...any) {
	printf := c.FprintfFunc()
	w := out
	return func(format string, a ...any) { printf(w, format, a...) }
}

func build() {
	Info = bind(color.New(color.FgGreen))
	Success = bind(color.New(color.FgGreen, color.Bold))
	Comment = bind(color.New(color.FgYellow))
	Warn = bind(color.New(color.FgHiMagenta))
	Error = bind(color.New(color.FgRed))
	Line = func(format string, a ...any) { fmt.Fprintf(out, format, a...) }
	if debugEnabled {
		Debug = bind(color.New(color.FgCyan))
	} else {
		Debug = func(format string, a ...any) {}
	}
}
