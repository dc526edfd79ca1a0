// Package envcheck verifies the external tools the pipeline shells out to.
package envcheck

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"regexp"

	"golang.org/x/mod/semver"

	"laravel-api-forge/internal/apperr"
	"laravel-api-forge/internal/invoker"
	"laravel-api-forge/internal/logger"
)

const (
	minPHP     = "v8.2"
	minLaravel = "v5.0.0"
)

// Check is the outcome of probing one tool.
type Check struct {
	Tool    string
	OK      bool
	Message string
}

// Report collects every check in the order it ran.
type Report struct {
	Checks []Check
}

// Passed reports whether every tool is usable.
func (r Report) Passed() bool {
	for _, c := range r.Checks {
		if !c.OK {
			return false
		}
	}
	return true
}

// Err returns an EnvironmentCheckFailed error when a check failed.
func (r Report) Err() error {
	if r.Passed() {
		return nil
	}
	details := make(map[string]string)
	for _, c := range r.Checks {
		if !c.OK {
			details[c.Tool] = c.Message
		}
	}
	return apperr.WrapWithDetails(apperr.EnvironmentCheckFailed,
		"Environment check failed. Please install the missing tools and try again.", nil, details)
}

// Print writes one line per check followed, on failure, by installation hints.
func (r Report) Print() {
	for _, c := range r.Checks {
		if c.OK {
			logger.Line("✅ %s: %s\n", c.Tool, c.Message)
		} else {
			logger.Error("❌ %s: %s\n", c.Tool, c.Message)
		}
	}
	if r.Passed() {
		logger.Line("\n")
		return
	}
	logger.Line("\n")
	logger.Error("Environment check failed. Please install the missing tools and try again.\n")
	logger.Line("\n")
	logger.Comment("📚 Installation guides:\n")
	for _, hint := range Hints {
		logger.Line("   %s\n", hint)
	}
	logger.Line("\n")
}

// Hints tell the user where to get each tool.
var Hints = []string{
	"PHP 8.2+: https://www.php.net/downloads.php",
	"Composer: https://getcomposer.org/download/",
	"Laravel Installer: composer global require laravel/installer",
	"Git: https://git-scm.com/downloads",
}

// toolSpec describes how to interrogate a tool's version.
type toolSpec struct {
	tool    string
	args    []string
	pattern *regexp.Regexp
	// accept validates the semver-normalised version. Nil accepts any version.
	accept func(version string) (bool, string)
	// unknownOK reports success when the version cannot be parsed.
	unknownOK bool
}

var tools = []toolSpec{
	{
		tool:    "PHP",
		args:    []string{"php", "--version"},
		pattern: regexp.MustCompile(`PHP (\d+\.\d+)`),
		accept:  atLeast(minPHP, "8.2"),
	},
	{
		tool:      "Composer",
		args:      []string{"composer", "--version"},
		pattern:   regexp.MustCompile(`Composer version (\d+\.\d+\.\d+)`),
		unknownOK: true,
	},
	{
		tool:    "Laravel Installer",
		args:    []string{"laravel", "--version"},
		pattern: regexp.MustCompile(`Laravel Installer (\d+\.\d+\.\d+)`),
		accept:  atLeast(minLaravel, "5.0"),
	},
	{
		tool:      "Git",
		args:      []string{"git", "--version"},
		pattern:   regexp.MustCompile(`git version (\d+\.\d+\.\d+)`),
		unknownOK: true,
	},
}

func atLeast(min, label string) func(string) (bool, string) {
	return func(version string) (bool, string) {
		if semver.Compare("v"+version, min) >= 0 {
			return true, fmt.Sprintf("Version %s (✓ >= %s)", version, label)
		}
		return false, fmt.Sprintf("Version %s (❌ requires >= %s)", version, label)
	}
}

// Checker inspects tools through a Runner.
type Checker struct {
	run      invoker.Runner
	lookPath func(string) (string, error)
	isExec   func(string) bool
}

// New returns a Checker that runs version commands through run.
func New(run invoker.Runner) *Checker {
	return &Checker{run: run, lookPath: exec.LookPath, isExec: isExecutable}
}

// Check inspects PHP, Composer, the Laravel installer and Git in that order.
func (c *Checker) Check(ctx context.Context) Report {
	var r Report
	for _, p := range tools {
		r.Checks = append(r.Checks, c.inspect(ctx, p))
	}
	return r
}

func (c *Checker) inspect(ctx context.Context, p toolSpec) Check {
	out, err := c.run.Output(ctx, invoker.Cmd("", p.args...))
	if err != nil {
		logger.Debug("[DEBUG] %s version check failed: %v\n", p.tool, err)
		return Check{Tool: p.tool, Message: p.tool + " not found in PATH"}
	}

	m := p.pattern.FindStringSubmatch(out)
	if m == nil {
		if p.unknownOK {
			return Check{Tool: p.tool, OK: true, Message: "Available (version not detected)"}
		}
		return Check{Tool: p.tool, Message: "Unable to determine " + p.tool + " version"}
	}

	version := m[1]
	if p.accept == nil {
		return Check{Tool: p.tool, OK: true, Message: "Version " + version}
	}
	ok, msg := p.accept(version)
	return Check{Tool: p.tool, OK: ok, Message: msg}
}

// phpLocations are tried after PATH lookup.
var phpLocations = []string{
	"/usr/bin/php",
	"/usr/local/bin/php",
	"/opt/homebrew/bin/php",
	"/opt/local/bin/php",
}

// FindPHP resolves the PHP interpreter used for artisan commands. It prefers PATH,
// then well-known install locations, and falls back to the bare "php" command.
func (c *Checker) FindPHP() string {
	if path, err := c.lookPath("php"); err == nil {
		logger.Info("Using PHP executable: ")
		logger.Line("%s\n", path)
		return path
	}
	for _, path := range phpLocations {
		if c.isExec(path) {
			logger.Info("Using PHP executable: ")
			logger.Line("%s\n", path)
			return path
		}
	}
	logger.Comment("Using default PHP command: ")
	logger.Line("php\n")
	return "php"
}

func isExecutable(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir() && info.Mode().Perm()&0o111 != 0
}
