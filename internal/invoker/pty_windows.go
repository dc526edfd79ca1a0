//go:build windows

package invoker

import (
	"errors"
	"io"
	"os/exec"
)

const ptySupported = false

func runPTY(_ *exec.Cmd, _ io.Writer) error {
	return errors.New("pseudo-terminals are not supported on windows")
}
