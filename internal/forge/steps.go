package forge

import (
	"context"

	"laravel-api-forge/internal/invoker"
	"laravel-api-forge/internal/logger"
	"laravel-api-forge/internal/patcher"
	"laravel-api-forge/internal/pipeline"
)

func withRedis(f pipeline.Features) bool   { return f.Redis }
func withRBAC(f pipeline.Features) bool    { return f.RBAC }
func withModules(f pipeline.Features) bool { return f.Modules }

// Steps returns the provisioning steps in execution order.
func (f *Forge) Steps() []pipeline.Step {
	return []pipeline.Step{
		{Title: "Creating Laravel project", Action: f.createProject},
		{Title: "Initializing Git repository", Action: f.initRepository},
		{Title: "Adjusting test configuration", Commit: "Adjust test configuration", Action: f.adjustTests},
		{Title: "Setting up API environment", Commit: "Setup API environment", Action: f.setupAPI},
		{Title: "Setting up Redis cache", Commit: "Setup Redis cache", When: withRedis, Action: f.setupRedis},
		{Title: "Setting up RBAC package", Commit: "Setup RBAC package", When: withRBAC, Action: f.setupRBAC},
		{Title: "Setting up modular architecture", Commit: "Setup modular architecture", When: withModules, Action: f.setupModules},
		{Title: "Installing Laravel Data", Commit: "Install Laravel Data package", Action: f.installData},
		{Title: "Installing Spectator", Commit: "Install Spectator package", Action: f.installSpectator},
		{Title: "Setting up Laravel Sail", Commit: "Setup Laravel Sail", Action: f.setupSail},
		{Title: "Setting up Git hooks", Commit: "Setup Git hooks", Action: f.setupHooks},
		{Title: "Finalizing RBAC configuration", Commit: "Finalize RBAC configuration", When: withRBAC, Action: f.finalizeRBAC},
		{Title: "Finalizing setup", Action: f.finalize},
	}
}

func (f *Forge) createProject(ctx context.Context, pc pipeline.ProjectContext) error {
	return f.run.Run(ctx, invoker.Cmd(pc.ParentDir, "laravel", "new", pc.Name, "--pest", "--no-interaction"))
}

func (f *Forge) initRepository(ctx context.Context, pc pipeline.ProjectContext) error {
	if err := f.git.Init(ctx, pc.Root); err != nil {
		return err
	}
	if pc.Git.Email != "" {
		if err := f.git.SetConfig(ctx, pc.Root, "user.email", pc.Git.Email); err != nil {
			return err
		}
	}
	if pc.Git.Name != "" {
		if err := f.git.SetConfig(ctx, pc.Root, "user.name", pc.Git.Name); err != nil {
			return err
		}
	}
	if err := f.git.AddAll(ctx, pc.Root); err != nil {
		return err
	}
	return f.git.Commit(ctx, pc.Root, "Init commit", false)
}

func (f *Forge) adjustTests(_ context.Context, pc pipeline.ProjectContext) error {
	for _, test := range exampleTests {
		if err := patcher.RemoveIfExists(projectFile(pc, test)); err != nil {
			return err
		}
	}
	for _, keep := range []string{"tests/Feature/.gitkeep", "tests/Unit/.gitkeep"} {
		if err := patcher.WriteFile(projectFile(pc, keep), nil, 0o644); err != nil {
			return err
		}
	}

	_, err := patcher.Edit(projectFile(pc, pestFile), func(content string) string {
		content = patcher.Apply(content, pestAnchors)
		content = patcher.CommentOutExpectExtend(content)
		return patcher.CommentOutFunction("something")(content)
	})
	return err
}

func (f *Forge) setupAPI(ctx context.Context, pc pipeline.ProjectContext) error {
	if err := f.artisan(ctx, pc, "install:api", "--no-interaction"); err != nil {
		return err
	}
	if _, err := patcher.Patch(projectFile(pc, userModelFile), sanctumUserAnchors); err != nil {
		return err
	}
	if _, err := patcher.Patch(projectFile(pc, bootstrapFile), bootstrapAnchors); err != nil {
		return err
	}
	return patcher.WriteFile(projectFile(pc, "docs/v1/.gitkeep"), nil, 0o644)
}

func (f *Forge) setupRedis(_ context.Context, pc pipeline.ProjectContext) error {
	if err := patcher.RemoveIfExists(projectFile(pc, cacheMigration)); err != nil {
		return err
	}
	return patcher.UpdateEnvFiles(pc.Root, redisEnvAnchors)
}

func (f *Forge) setupRBAC(ctx context.Context, pc pipeline.ProjectContext) error {
	if err := f.cmd(ctx, pc, "composer", "require", "binary-cats/laravel-rbac"); err != nil {
		return err
	}
	if err := f.artisan(ctx, pc, "vendor:publish", `--provider=Spatie\Permission\PermissionServiceProvider`, "--no-interaction"); err != nil {
		return err
	}
	if err := f.artisan(ctx, pc, "vendor:publish", "--tag=rbac-config", "--no-interaction"); err != nil {
		return err
	}
	if err := patcher.EnsureDir(projectFile(pc, "app/Abilities")); err != nil {
		return err
	}
	if _, err := patcher.Patch(projectFile(pc, permissionFile), permissionAnchors); err != nil {
		return err
	}
	if _, err := patcher.Patch(projectFile(pc, userModelFile), rolesUserAnchors); err != nil {
		return err
	}
	return f.cmd(ctx, pc, "composer", "update", "--lock")
}

func (f *Forge) setupModules(ctx context.Context, pc pipeline.ProjectContext) error {
	// Pre-allow the merge plugin so composer does not prompt for it.
	err := patcher.EditManifest(projectFile(pc, composerFile), func(m *patcher.Manifest) error {
		return m.Set(patcher.Key("config", "allow-plugins", mergePlugin), true)
	})
	if err != nil {
		return err
	}

	if err := f.cmd(ctx, pc, "composer", "require", "nwidart/laravel-modules"); err != nil {
		return err
	}
	if err := f.artisan(ctx, pc, "vendor:publish", `--provider=Nwidart\Modules\LaravelModulesServiceProvider`, "--no-interaction"); err != nil {
		return err
	}

	if err := patcher.RemoveAllIfExists(projectFile(pc, "stubs")); err != nil {
		return err
	}
	if err := patcher.WriteFile(projectFile(pc, "modules/.gitkeep"), nil, 0o644); err != nil {
		return err
	}
	if err := patcher.WriteFile(projectFile(pc, "modules_statuses.json"), []byte("{}"), 0o644); err != nil {
		return err
	}
	if _, err := patcher.Patch(projectFile(pc, modulesConfigFile), modulesConfigAnchors); err != nil {
		return err
	}

	err = patcher.EditManifest(projectFile(pc, composerFile), func(m *patcher.Manifest) error {
		return m.Set(patcher.Key("extra", "merge-plugin"), map[string][]string{
			"include": {modulesManifests},
		})
	})
	if err != nil {
		return err
	}

	if err := patcher.WriteFile(projectFile(pc, viteLoaderFile), staticAsset("vite/vite-module-loader.js"), 0o644); err != nil {
		return err
	}
	if err := patcher.WriteFile(projectFile(pc, viteConfigFile), staticAsset("vite/vite.config.js"), 0o644); err != nil {
		return err
	}

	return f.cmd(ctx, pc, "composer", "update", "--lock")
}

func (f *Forge) installData(ctx context.Context, pc pipeline.ProjectContext) error {
	if err := f.cmd(ctx, pc, "composer", "require", "spatie/laravel-data"); err != nil {
		return err
	}
	return f.artisan(ctx, pc, "vendor:publish", `--provider=Spatie\LaravelData\LaravelDataServiceProvider`, "--tag=data-config", "--no-interaction")
}

func (f *Forge) installSpectator(ctx context.Context, pc pipeline.ProjectContext) error {
	if err := f.cmd(ctx, pc, "composer", "require", "hotmeteor/spectator", "--dev"); err != nil {
		return err
	}
	if err := f.artisan(ctx, pc, "vendor:publish", `--provider=Spectator\SpectatorServiceProvider`, "--no-interaction"); err != nil {
		return err
	}
	return patcher.AppendToEnvFiles(pc.Root, spectatorEnvBlock)
}

func (f *Forge) setupSail(ctx context.Context, pc pipeline.ProjectContext) error {
	if err := patcher.UpdateEnvFiles(pc.Root, sailEnvAnchors(pc.Name)); err != nil {
		return err
	}
	return f.artisan(ctx, pc, "sail:install", "--with=mysql,redis,mailpit", "--no-interaction")
}

func (f *Forge) setupHooks(_ context.Context, pc pipeline.ProjectContext) error {
	data := hookData{Project: pc.Name, TestProcesses: f.opts.TestProcesses}
	for _, name := range hookNames {
		content, err := renderHook(name, data)
		if err != nil {
			return err
		}
		if err := patcher.WriteFile(projectFile(pc, hooksDir+"/"+name), content, 0o755); err != nil {
			return err
		}
	}

	return patcher.EditManifest(projectFile(pc, composerFile), func(m *patcher.Manifest) error {
		if err := m.AppendScript(autoloadDumpEvent, hooksPathScript); err != nil {
			return err
		}
		return m.SetScript("lint", "vendor/bin/pint")
	})
}

// finalizeRBAC runs after Sail is installed, when rbac:reset can reach the database.
func (f *Forge) finalizeRBAC(_ context.Context, pc pipeline.ProjectContext) error {
	return patcher.EditManifest(projectFile(pc, composerFile), func(m *patcher.Manifest) error {
		inserted, err := m.InsertScriptAfter(autoloadDumpEvent, packageDiscover, rbacResetScript)
		if err == nil && !inserted {
			logger.Comment("%s already configured or %q not found\n", rbacResetScript, packageDiscover)
		}
		return err
	})
}

func (f *Forge) finalize(context.Context, pipeline.ProjectContext) error {
	logger.Success("✓ All steps completed successfully\n")
	return nil
}
