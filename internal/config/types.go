package config

import "time"

// Config is the top-level structure loaded from config.yaml.
// Every field has a default, so an absent file yields a usable Config.
type Config struct {
	Release   Release   `yaml:"release"`
	Defaults  Defaults  `yaml:"defaults"`
	Git       Git       `yaml:"git"`
	Hooks     Hooks     `yaml:"hooks"`
	Commands  Commands  `yaml:"commands"`
	Formatter Formatter `yaml:"formatter"`
}

// Release locates the release feed used by self-update.
// - Owner/Repo: GitHub repository (e.g., goez-tools/laravel-api-forge).
// - APIURL: API base URL, overridable for GitHub Enterprise or tests.
type Release struct {
	Owner  string `yaml:"owner"`
	Repo   string `yaml:"repo"`
	APIURL string `yaml:"api_url"`
}

// Defaults holds the pre-selected answers of the feature prompts.
// They are used as-is when running non-interactively.
type Defaults struct {
	Redis   bool `yaml:"redis"`
	RBAC    bool `yaml:"rbac"`
	Modules bool `yaml:"modules"`
}

// Git is the optional identity written into the new repository's local config.
type Git struct {
	Email string `yaml:"email"`
	Name  string `yaml:"name"`
}

// Hooks tunes the generated git hook scripts.
type Hooks struct {
	TestProcesses int `yaml:"test_processes"`
}

// Commands tunes external command execution.
type Commands struct {
	Timeout time.Duration `yaml:"timeout"`
}

// Formatter is the source formatter invoked on changed files at each checkpoint,
// relative to the project root.
type Formatter struct {
	Path    string `yaml:"path"`
	Pattern string `yaml:"pattern"`
}
