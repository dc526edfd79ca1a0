package cmd

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"

	"github.com/spf13/cobra"

	"laravel-api-forge/internal/apperr"
	"laravel-api-forge/internal/envcheck"
	"laravel-api-forge/internal/forge"
	"laravel-api-forge/internal/logger"
	"laravel-api-forge/internal/pipeline"
	"laravel-api-forge/internal/prompt"
)

// projectName is what `laravel new` accepts as a directory name.
var projectName = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

var getwd = os.Getwd

// newOptions holds the flags of `forge new`.
type newOptions struct {
	redis         bool
	rbac          bool
	modules       bool
	noInteraction bool
}

func newNewCmd() *cobra.Command {
	var opts newOptions
	cmd := &cobra.Command{
		Use:   "new <name>",
		Short: "Create a new Laravel API project with forge configuration",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return apperr.Newf(apperr.Usage, "Expected exactly one project name, got %d", len(args))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNew(cmd, args[0], opts)
		},
	}
	cmd.Flags().BoolVar(&opts.redis, "redis", false, "Use Redis as cache store")
	cmd.Flags().BoolVar(&opts.rbac, "rbac", false, "Install and configure RBAC package")
	cmd.Flags().BoolVar(&opts.modules, "modules", false, "Install and configure modular architecture")
	cmd.Flags().BoolVarP(&opts.noInteraction, "no-interaction", "n", false, "Do not ask any interactive question")
	return cmd
}

func runNew(cmd *cobra.Command, name string, opts newOptions) error {
	ctx := cmd.Context()

	cwd, err := getwd()
	if err != nil {
		return apperr.Wrap(apperr.FileOperationFailed, "Unable to determine the working directory", err)
	}
	root, err := validateProject(cwd, name)
	if err != nil {
		return err
	}

	run := newRunner(cfg)

	logger.Info("🔍 Checking environment requirements...\n")
	checker := envcheck.New(run)
	report := checker.Check(ctx)
	report.Print()
	if err := report.Err(); err != nil {
		return err
	}
	php := checker.FindPHP()

	p := newPrompter(opts.noInteraction)
	features, err := askFeatures(p, opts)
	if err != nil {
		return err
	}
	identity, err := askIdentity(p)
	if err != nil {
		return err
	}

	logger.Info("Creating Laravel API project: %s\n", name)
	forge.PrintFeatures(features)

	pc := pipeline.ProjectContext{
		Name:      name,
		Root:      root,
		ParentDir: cwd,
		PHP:       php,
		Features:  features,
		Git:       identity,
	}
	if _, err := forge.New(run, forge.OptionsFromConfig(cfg)).Provision(ctx, pc); err != nil {
		return err
	}

	logger.Info("✅ Laravel API project '%s' has been created successfully!\n", name)
	forge.PrintNextSteps(name)
	return nil
}

// validateProject returns the absolute root of the new project, refusing names
// the installer would reject and directories that already exist.
func validateProject(cwd, name string) (string, error) {
	if !projectName.MatchString(name) || name == "." || name == ".." {
		return "", apperr.Newf(apperr.Usage, "Invalid project name %q: use letters, digits, '.', '_' or '-'", name)
	}
	root := filepath.Join(cwd, name)
	if _, err := os.Stat(root); err == nil {
		return "", apperr.Newf(apperr.Usage, "Directory %s already exists", root)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return "", apperr.Wrap(apperr.FileOperationFailed, "Unable to inspect "+root, err)
	}
	return root, nil
}

// askFeatures resolves each optional feature: a flag wins, otherwise the user is
// asked with the configured default pre-selected.
func askFeatures(p prompt.Prompter, opts newOptions) (pipeline.Features, error) {
	var f pipeline.Features
	questions := []struct {
		flag  bool
		title string
		def   bool
		dst   *bool
	}{
		{opts.redis, "Do you want to use Redis as cache store?", cfg.Defaults.Redis, &f.Redis},
		{opts.rbac, "Do you want to install RBAC package?", cfg.Defaults.RBAC, &f.RBAC},
		{opts.modules, "Do you want to install modular architecture?", cfg.Defaults.Modules, &f.Modules},
	}

	for _, q := range questions {
		if q.flag {
			*q.dst = true
			continue
		}
		answer, err := p.Confirm(q.title, q.def)
		if err != nil {
			return pipeline.Features{}, err
		}
		*q.dst = answer
	}
	return f, nil
}

// askIdentity collects the optional git identity of the new repository.
// Configured values are used without asking.
func askIdentity(p prompt.Prompter) (pipeline.GitIdentity, error) {
	id := pipeline.GitIdentity{Email: cfg.Git.Email, Name: cfg.Git.Name}
	var err error
	if id.Email == "" {
		if id.Email, err = p.Ask("Enter your git email (optional)"); err != nil {
			return pipeline.GitIdentity{}, err
		}
	}
	if id.Name == "" {
		if id.Name, err = p.Ask("Enter your git name (optional)"); err != nil {
			return pipeline.GitIdentity{}, err
		}
	}
	return id, nil
}
