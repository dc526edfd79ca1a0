// Package prompt asks the user the questions of the new-project flow.
package prompt

import (
	"errors"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/mattn/go-isatty"

	"laravel-api-forge/internal/apperr"
)

// Prompter answers yes/no and free-text questions.
type Prompter interface {
	Confirm(title string, def bool) (bool, error)
	// Ask returns the trimmed answer. An empty answer is allowed.
	Ask(title string) (string, error)
}

// Interactive prompts on the terminal with huh forms.
type Interactive struct {
	accessible bool
}

// NewInteractive returns a terminal Prompter. Accessible mode, which renders plain
// line-based prompts, is used when stdin is not a terminal or ACCESSIBLE is set.
func NewInteractive() *Interactive {
	fd := os.Stdin.Fd()
	tty := isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
	return &Interactive{accessible: !tty || os.Getenv("ACCESSIBLE") != ""}
}

func (p *Interactive) Confirm(title string, def bool) (bool, error) {
	answer := def
	field := huh.NewConfirm().
		Title(title).
		Affirmative("Yes").
		Negative("No").
		Value(&answer)
	if err := p.run(field); err != nil {
		return def, err
	}
	return answer, nil
}

func (p *Interactive) Ask(title string) (string, error) {
	var answer string
	field := huh.NewInput().
		Title(title).
		Value(&answer)
	if err := p.run(field); err != nil {
		return "", err
	}
	return strings.TrimSpace(answer), nil
}

func (p *Interactive) run(field huh.Field) error {
	err := huh.NewForm(huh.NewGroup(field)).
		WithAccessible(p.accessible).
		WithShowHelp(false).
		Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return apperr.New(apperr.Usage, "Aborted")
	}
	if err != nil {
		return apperr.Wrap(apperr.Internal, "Prompt failed", err)
	}
	return nil
}

// Defaults answers every question with its default and never blocks.
// It backs --no-interaction.
type Defaults struct{}

func (Defaults) Confirm(_ string, def bool) (bool, error) { return def, nil }

func (Defaults) Ask(string) (string, error) { return "", nil }
