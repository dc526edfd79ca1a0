package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"laravel-api-forge/internal/apperr"
	"laravel-api-forge/internal/logger"
	"laravel-api-forge/internal/selfupdate"
)

// selfUpdateOptions holds the flags of `forge self-update`.
type selfUpdateOptions struct {
	check      bool
	rollback   bool
	force      bool
	preRelease bool
}

func newSelfUpdateCmd() *cobra.Command {
	var opts selfUpdateOptions
	cmd := &cobra.Command{
		Use:   "self-update",
		Short: "Update the application to the latest version from GitHub",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			u := newUpdater(opts)
			switch {
			case opts.rollback:
				return rollback(cmd, u)
			case opts.check:
				return checkForUpdates(cmd, u)
			default:
				return update(cmd, u, opts.force)
			}
		},
	}
	cmd.Flags().BoolVar(&opts.check, "check", false, "Only check for updates, do not update")
	cmd.Flags().BoolVar(&opts.rollback, "rollback", false, "Rollback to the previous version")
	cmd.Flags().BoolVar(&opts.force, "force", false, "Force update even if versions match")
	cmd.Flags().BoolVar(&opts.preRelease, "pre-release", false, "Include pre-release versions")
	return cmd
}

func newUpdater(opts selfUpdateOptions) *selfupdate.Updater {
	client := selfupdate.NewClient(cfg.Release.Owner, cfg.Release.Repo,
		selfupdate.WithBaseURL(cfg.Release.APIURL),
		selfupdate.WithToken(os.Getenv("GITHUB_TOKEN")),
		selfupdate.WithUserAgent("laravel-api-forge/"+Version),
	)
	stability := selfupdate.Stable
	if opts.preRelease {
		stability = selfupdate.Any
	}
	return selfupdate.New(client, selfupdate.Options{Version: Version, Binary: "forge", Stability: stability})
}

func update(cmd *cobra.Command, u *selfupdate.Updater, force bool) error {
	logger.Info("🔍 Checking for updates...\n")
	if force {
		logger.Comment("🔧 Force update requested...\n")
	}

	res, err := u.Update(cmd.Context(), force)
	if err != nil {
		if apperr.Is(err, apperr.UpdateFailed) || apperr.Is(err, apperr.UpdateCheckFailed) {
			logger.Comment("💡 Try:\n")
			logger.Line("   • Check your internet connection\n")
			logger.Line("   • Visit GitHub releases manually: %s\n", releasesPage())
			logger.Line("\n")
		}
		return err
	}

	if res.Status == selfupdate.UpToDate {
		logger.Info("✨ You already have the latest version installed!\n")
		return nil
	}
	logger.Info("✅ Successfully updated from %s to %s!\n", res.From, res.To)
	logger.Line("\n")
	logger.Comment("🔥 What's new in this version:\n")
	logger.Line("   Visit: %s\n", notesURL(res.NotesURL))
	logger.Line("\n")
	logger.Info("💡 Tip: You can roll back using self-update --rollback if needed.\n")
	return nil
}

func checkForUpdates(cmd *cobra.Command, u *selfupdate.Updater) error {
	logger.Info("🔍 Checking for available updates...\n")
	res, err := u.Check(cmd.Context())
	if err != nil {
		return err
	}

	if res.Status == selfupdate.UpToDate {
		logger.Info("✅ You have the latest version installed: %s\n", res.Local)
		return nil
	}
	logger.Line("\n")
	logger.Info("🎉 A new version is available!\n")
	logger.Line("   Current version: %s\n", res.Local)
	logger.Line("   Latest version:  %s\n", res.Remote)
	logger.Line("\n")
	logger.Line("🚀 Run self-update to update to the latest version.\n")
	if res.NotesURL != "" {
		logger.Line("📝 Release notes: %s\n", res.NotesURL)
	}
	return nil
}

func rollback(cmd *cobra.Command, u *selfupdate.Updater) error {
	logger.Info("🔙 Rolling back to the previous version...\n")
	res, err := u.Rollback(cmd.Context())
	if apperr.Is(err, apperr.NoBackupFound) {
		logger.Comment("💡 Backup versions are created automatically when you update.\n")
		logger.Line("\n")
		return err
	}
	if err != nil {
		return err
	}

	if res.Restored != "" {
		logger.Info("✅ Successfully rolled back to %s!\n", res.Restored)
	} else {
		logger.Info("✅ Successfully rolled back to the previous version!\n")
	}
	logger.Line("\n")
	logger.Comment("💡 You can update again using self-update command.\n")
	return nil
}

// notesURL falls back to the releases page when the release has no page of its own.
func notesURL(u string) string {
	if u != "" {
		return u
	}
	return releasesPage()
}

func releasesPage() string {
	return "https://github.com/" + cfg.Release.Owner + "/" + cfg.Release.Repo + "/releases"
}
