// Package invokertest provides a recording Runner for tests.
package invokertest

import (
	"context"
	"strings"
	"sync"

	"laravel-api-forge/internal/invoker"
)

// Recorder records every command it is asked to run. Handlers decide the
// outcome; without one, Run succeeds and Output returns "".
type Recorder struct {
	mu    sync.Mutex
	Calls []invoker.Command

	// OnRun is called for Run. It may mutate the filesystem to emulate the tool.
	OnRun func(cmd invoker.Command) error

	// OnOutput is called for Output.
	OnOutput func(cmd invoker.Command) (string, error)
}

var _ invoker.Runner = (*Recorder)(nil)

// Run implements invoker.Runner.
func (r *Recorder) Run(_ context.Context, cmd invoker.Command) error {
	r.record(cmd)
	if r.OnRun == nil {
		return nil
	}
	return r.OnRun(cmd)
}

// Output implements invoker.Runner.
func (r *Recorder) Output(_ context.Context, cmd invoker.Command) (string, error) {
	r.record(cmd)
	if r.OnOutput == nil {
		return "", nil
	}
	return r.OnOutput(cmd)
}

// Lines returns each recorded command as a space-joined string.
func (r *Recorder) Lines() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]string, len(r.Calls))
	for i, c := range r.Calls {
		out[i] = strings.Join(c.Args, " ")
	}
	return out
}

func (r *Recorder) record(cmd invoker.Command) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Calls = append(r.Calls, invoker.Command{Args: append([]string(nil), cmd.Args...), Dir: cmd.Dir})
}
