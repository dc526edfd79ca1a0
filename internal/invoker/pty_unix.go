//go:build !windows

package invoker

import (
	"errors"
	"io"
	"os"
	"os/exec"
	"syscall"

	"github.com/creack/pty"
)

const ptySupported = true

// runPTY attaches the command to a pseudo-terminal and copies everything it
// writes to out. Stdout and stderr share the terminal, so nothing is captured.
func runPTY(c *exec.Cmd, out io.Writer) error {
	ptmx, err := pty.Start(c)
	if err != nil {
		return err
	}
	defer func() { _ = ptmx.Close() }()

	// Best effort: stdin may not be a terminal even when stdout is.
	_ = pty.InheritSize(os.Stdin, ptmx)

	// Linux reports EIO on the master once the child side is closed.
	if _, err := io.Copy(out, ptmx); err != nil && !errors.Is(err, syscall.EIO) {
		_ = c.Wait()
		return err
	}
	return c.Wait()
}
