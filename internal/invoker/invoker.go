// Package invoker runs external commands for the provisioning pipeline.
//
// Commands are literal argument vectors, never shell strings. Output is streamed to
// the console as it arrives: through a pseudo-terminal when stdout is a terminal, so
// tools keep their colors, or line by line otherwise.
package invoker

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-isatty"

	"laravel-api-forge/internal/apperr"
	"laravel-api-forge/internal/logger"
)

// DefaultTimeout is the ceiling for a single command.
const DefaultTimeout = 300 * time.Second

// waitDelay bounds how long Wait keeps draining output after the process is killed.
const waitDelay = 2 * time.Second

// colorEnv asks child tools to keep emitting ANSI colors.
var colorEnv = []string{
	"FORCE_COLOR=1",
	"TERM=xterm-256color",
	"COLORTERM=truecolor",
}

type (
	// Command is an argument vector plus the directory it runs in.
	// An empty Dir means the current process directory.
	Command struct {
		Args []string
		Dir  string
	}

	// Runner is the contract the pipeline depends on. Implementations must be
	// safe to stub in tests.
	Runner interface {
		// Run streams the command's output and fails with a CommandFailed error
		// on non-zero exit or timeout.
		Run(ctx context.Context, cmd Command) error

		// Output runs the command silently and returns its stdout.
		Output(ctx context.Context, cmd Command) (string, error)
	}

	// ExitError describes a failed command. It is wrapped in an *apperr.Error
	// of kind CommandFailed.
	ExitError struct {
		Args     []string
		ExitCode int
		Stderr   string
		TimedOut bool
		Timeout  time.Duration
		Cause    error // set when the process could not be started
	}

	// Invoker is the production Runner.
	Invoker struct {
		out     io.Writer
		timeout time.Duration
		tty     func() bool
	}

	// Option configures an Invoker.
	Option func(*Invoker)
)

// Cmd builds a Command running in dir.
func Cmd(dir string, args ...string) Command {
	return Command{Args: args, Dir: dir}
}

// String renders the argument vector for display.
func (c Command) String() string {
	return strings.Join(c.Args, " ")
}

func (e *ExitError) Error() string {
	switch {
	case e.TimedOut:
		return fmt.Sprintf("timed out after %s", e.Timeout)
	case e.Cause != nil:
		return e.Cause.Error()
	case e.Stderr != "":
		return fmt.Sprintf("exit status %d\n%s", e.ExitCode, strings.TrimRight(e.Stderr, "\n"))
	default:
		return fmt.Sprintf("exit status %d", e.ExitCode)
	}
}

func (e *ExitError) Unwrap() error {
	return e.Cause
}

// WithOutput sets where subprocess output is streamed. Defaults to os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(i *Invoker) {
		i.out = w
	}
}

// WithTimeout overrides DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(i *Invoker) {
		if d > 0 {
			i.timeout = d
		}
	}
}

// WithTTY forces pseudo-terminal mode on or off instead of detecting it.
func WithTTY(enabled bool) Option {
	return func(i *Invoker) {
		i.tty = func() bool { return enabled }
	}
}

// New creates an Invoker streaming to os.Stdout.
func New(opts ...Option) *Invoker {
	i := &Invoker{
		out:     os.Stdout,
		timeout: DefaultTimeout,
		tty:     stdoutIsTerminal,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Run executes cmd, streaming its output, and returns a CommandFailed error on
// non-zero exit. It is never retried.
func (i *Invoker) Run(ctx context.Context, cmd Command) error {
	if len(cmd.Args) == 0 {
		return apperr.New(apperr.CommandFailed, "empty command")
	}
	logger.Comment("Running: ")
	logger.Line("%s\n", cmd)

	ctx, cancel := context.WithTimeout(ctx, i.timeout)
	defer cancel()

	c := i.command(ctx, cmd)

	var (
		stderr string
		err    error
	)
	if i.tty() && ptySupported {
		err = runPTY(c, i.out)
	} else {
		stderr, err = runPiped(c, i.out)
	}
	if err != nil {
		return i.failure(ctx, cmd, err, stderr)
	}

	logger.Info("✓ Command completed successfully\n")
	return nil
}

// Output executes cmd without streaming and returns its stdout unmodified.
// Leading whitespace is significant for callers such as porcelain parsing.
func (i *Invoker) Output(ctx context.Context, cmd Command) (string, error) {
	if len(cmd.Args) == 0 {
		return "", apperr.New(apperr.CommandFailed, "empty command")
	}
	logger.Debug("[DEBUG] Capturing: %s (dir=%s)\n", cmd, cmd.Dir)

	ctx, cancel := context.WithTimeout(ctx, i.timeout)
	defer cancel()

	c := i.command(ctx, cmd)
	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr

	if err := c.Run(); err != nil {
		return stdout.String(), i.failure(ctx, cmd, err, stderr.String())
	}
	return stdout.String(), nil
}

func (i *Invoker) command(ctx context.Context, cmd Command) *exec.Cmd {
	c := exec.CommandContext(ctx, cmd.Args[0], cmd.Args[1:]...)
	c.Dir = cmd.Dir
	c.Env = append(os.Environ(), colorEnv...)
	c.WaitDelay = waitDelay
	return c
}

func (i *Invoker) failure(ctx context.Context, cmd Command, err error, stderr string) error {
	ee := &ExitError{
		Args:     append([]string(nil), cmd.Args...),
		ExitCode: -1,
		Stderr:   stderr,
	}

	var xe *exec.ExitError
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		ee.TimedOut = true
		ee.Timeout = i.timeout
	case errors.As(err, &xe):
		ee.ExitCode = xe.ExitCode()
	default:
		ee.Cause = err
	}

	return apperr.WrapWithDetails(apperr.CommandFailed, "Command failed: "+cmd.String(), ee,
		map[string]string{"dir": cmd.Dir, "exit_code": fmt.Sprint(ee.ExitCode)})
}

// runPiped streams stdout verbatim and stderr highlighted, line by line, and
// returns the captured stderr.
func runPiped(c *exec.Cmd, out io.Writer) (string, error) {
	var mu sync.Mutex
	var captured bytes.Buffer

	stdout := &lineWriter{emit: func(line string) {
		mu.Lock()
		defer mu.Unlock()
		fmt.Fprintln(out, line)
	}}
	stderr := &lineWriter{emit: func(line string) {
		mu.Lock()
		defer mu.Unlock()
		captured.WriteString(line)
		captured.WriteByte('\n')
		fmt.Fprintln(out, HighlightStderr(line))
	}}
	c.Stdout = stdout
	c.Stderr = stderr

	err := c.Run()
	stdout.Flush()
	stderr.Flush()
	return captured.String(), err
}

func stdoutIsTerminal() bool {
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
