package invoker

import (
	"bytes"
	"regexp"
	"strings"
	"sync"

	"github.com/fatih/color"
)

// ansiPattern matches an SGR escape sequence.
var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*m`)

var stderrColor = color.New(color.FgYellow)

// HighlightStderr colors a stderr line yellow unless the tool already colored it.
func HighlightStderr(line string) string {
	if line == "" || ansiPattern.MatchString(line) {
		return line
	}
	return stderrColor.Sprint(line)
}

// lineWriter splits a byte stream into lines and hands each complete line to emit.
// Flush emits a trailing partial line.
type lineWriter struct {
	mu   sync.Mutex
	buf  bytes.Buffer
	emit func(line string)
}

func (w *lineWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.buf.Write(p)
	for {
		idx := bytes.IndexByte(w.buf.Bytes(), '\n')
		if idx < 0 {
			break
		}
		line := string(w.buf.Next(idx + 1))
		w.emit(strings.TrimRight(line, "\r\n"))
	}
	return len(p), nil
}

func (w *lineWriter) Flush() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.buf.Len() > 0 {
		w.emit(strings.TrimRight(w.buf.String(), "\r\n"))
		w.buf.Reset()
	}
}
