// Package prompttest provides a scripted Prompter for tests.
package prompttest

import (
	"laravel-api-forge/internal/prompt"
)

// Scripted replays fixed answers. Questions without an answer get the default.
type Scripted struct {
	Confirms map[string]bool
	Answers  map[string]string
	// Asked records every question in order.
	Asked []string
}

var _ prompt.Prompter = (*Scripted)(nil)

// Confirm implements prompt.Prompter.
func (s *Scripted) Confirm(title string, def bool) (bool, error) {
	s.Asked = append(s.Asked, title)
	if v, ok := s.Confirms[title]; ok {
		return v, nil
	}
	return def, nil
}

// Ask implements prompt.Prompter.
func (s *Scripted) Ask(title string) (string, error) {
	s.Asked = append(s.Asked, title)
	return s.Answers[title], nil
}
