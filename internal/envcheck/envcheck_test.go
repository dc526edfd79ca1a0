package envcheck

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"laravel-api-forge/internal/apperr"
	"laravel-api-forge/internal/invoker"
	"laravel-api-forge/internal/invoker/invokertest"
	"laravel-api-forge/internal/logger"
)

func versions(v map[string]string) *invokertest.Recorder {
	return &invokertest.Recorder{
		OnOutput: func(cmd invoker.Command) (string, error) {
			out, ok := v[cmd.Args[0]]
			if !ok {
				return "", errors.New("executable file not found in $PATH")
			}
			return out, nil
		},
	}
}

var healthy = map[string]string{
	"php":      "PHP 8.3.7 (cli) (built: May  7 2024 16:35:26) (NTS)\n",
	"composer": "Composer version 2.7.6 2024-05-04 23:03:15\n",
	"laravel":  "Laravel Installer 5.8.3\n",
	"git":      "git version 2.45.1\n",
}

func TestCheck_AllPass(t *testing.T) {
	r := New(versions(healthy)).Check(context.Background())

	require.Len(t, r.Checks, 4)
	assert.True(t, r.Passed())
	assert.NoError(t, r.Err())
	assert.Equal(t, Check{Tool: "PHP", OK: true, Message: "Version 8.3 (✓ >= 8.2)"}, r.Checks[0])
	assert.Equal(t, "Version 2.7.6", r.Checks[1].Message)
	assert.Equal(t, "Version 5.8.3 (✓ >= 5.0)", r.Checks[2].Message)
	assert.Equal(t, "Version 2.45.1", r.Checks[3].Message)
}

func TestCheck_Failures(t *testing.T) {
	v := map[string]string{
		"php":      "PHP 8.1.2 (cli)\n",
		"composer": "Composer 3 nightly\n",
		"laravel":  "Laravel Installer 4.5.1\n",
	}
	r := New(versions(v)).Check(context.Background())

	assert.False(t, r.Passed())
	assert.Equal(t, "Version 8.1 (❌ requires >= 8.2)", r.Checks[0].Message)
	assert.Equal(t, Check{Tool: "Composer", OK: true, Message: "Available (version not detected)"}, r.Checks[1])
	assert.Equal(t, "Version 4.5.1 (❌ requires >= 5.0)", r.Checks[2].Message)
	assert.Equal(t, Check{Tool: "Git", Message: "Git not found in PATH"}, r.Checks[3])

	err := r.Err()
	assert.Equal(t, apperr.EnvironmentCheckFailed, apperr.KindOf(err))
	var ae *apperr.Error
	require.ErrorAs(t, err, &ae)
	assert.Contains(t, ae.Details, "Git")
	assert.NotContains(t, ae.Details, "Composer")
}

func TestCheck_UndetectablePHPVersion(t *testing.T) {
	v := map[string]string{"php": "garbage", "composer": "", "laravel": "Laravel Installer 5.0.0", "git": ""}
	r := New(versions(v)).Check(context.Background())

	assert.Equal(t, "Unable to determine PHP version", r.Checks[0].Message)
	assert.True(t, r.Checks[2].OK)
}

func TestReport_PrintIncludesHints(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer
	logger.SetOutput(&buf)
	t.Cleanup(func() { logger.SetOutput(nil) })

	Report{Checks: []Check{{Tool: "PHP", Message: "PHP not found in PATH"}}}.Print()

	assert.Contains(t, buf.String(), "❌ PHP: PHP not found in PATH")
	assert.Contains(t, buf.String(), "composer global require laravel/installer")
}

func TestFindPHP(t *testing.T) {
	color.NoColor = true
	logger.SetOutput(&bytes.Buffer{})
	t.Cleanup(func() { logger.SetOutput(nil) })

	c := New(nil)
	c.lookPath = func(string) (string, error) { return "/custom/bin/php", nil }
	assert.Equal(t, "/custom/bin/php", c.FindPHP())

	c.lookPath = func(string) (string, error) { return "", errors.New("not found") }
	c.isExec = func(p string) bool { return p == "/opt/homebrew/bin/php" }
	assert.Equal(t, "/opt/homebrew/bin/php", c.FindPHP())

	c.isExec = func(string) bool { return false }
	assert.Equal(t, "php", c.FindPHP())
}
