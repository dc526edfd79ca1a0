package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_Message(t *testing.T) {
	assert.Equal(t, "no backup", New(NoBackupFound, "no backup").Error())

	cause := errors.New("dial tcp: timeout")
	err := Wrap(UpdateCheckFailed, "failed to fetch releases", cause)
	assert.Equal(t, "failed to fetch releases: dial tcp: timeout", err.Error())
	assert.ErrorIs(t, err, cause)
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, ""},
		{"plain", errors.New("boom"), Internal},
		{"direct", New(CommandFailed, "x"), CommandFailed},
		{"wrapped by fmt", fmt.Errorf("step: %w", New(FileOperationFailed, "x")), FileOperationFailed},
		{"outermost wins", Wrap(UpdateFailed, "outer", New(CommandFailed, "inner")), UpdateFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, ExitCode(nil))
	assert.Equal(t, 2, ExitCode(New(Usage, "bad name")))
	assert.Equal(t, 1, ExitCode(New(NoBackupFound, "none")))
	assert.Equal(t, 1, ExitCode(errors.New("plain")))
}

func TestWrapWithDetails_CopiesMap(t *testing.T) {
	details := map[string]string{"step": "Setup Git hooks"}
	err := WrapWithDetails(CommandFailed, "failed", errors.New("x"), details)
	details["step"] = "mutated"

	var ae *Error
	assert.True(t, errors.As(err, &ae))
	assert.Equal(t, "Setup Git hooks", ae.Details["step"])
	assert.True(t, Is(err, CommandFailed))
}
