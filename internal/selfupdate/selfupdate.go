// Package selfupdate replaces the running binary with a newer GitHub release,
// keeping exactly one backup for rollback.
package selfupdate

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"time"

	"golang.org/x/mod/semver"

	"laravel-api-forge/internal/apperr"
	"laravel-api-forge/internal/logger"
	"laravel-api-forge/internal/state"
)

// NotPackagedMessage is shown when the binary is a development build.
const NotPackagedMessage = "This command can only be used when running from a packaged binary."

// Test seams.
var (
	osExecutable = os.Executable
	evalSymlinks = filepath.EvalSymlinks
)

// Stability selects which releases are eligible.
type Stability int

const (
	// Stable ignores drafts and pre-releases.
	Stable Stability = iota
	// Any includes pre-releases. Drafts are always ignored.
	Any
)

// State is the position of an Updater in its lifecycle.
type State string

const (
	Idle            State = "idle"
	Checking        State = "checking"
	UpToDate        State = "up-to-date"
	UpdateAvailable State = "update-available"
	Updating        State = "updating"
	Updated         State = "updated"
	Failed          State = "failed"
	RollingBack     State = "rolling-back"
	RolledBack      State = "rolled-back"
	NoBackupFound   State = "no-backup-found"
)

type (
	// Options configure an Updater.
	Options struct {
		// Version is the version of the running binary. "dev" or empty marks a
		// development build.
		Version string
		// Binary is the executable name inside release assets.
		Binary    string
		Stability Stability
	}

	// CheckResult describes the newest eligible release.
	CheckResult struct {
		Status   State
		Local    string
		Remote   string
		NotesURL string
		Release  Release
	}

	// UpdateResult describes a finished update.
	UpdateResult struct {
		Status     State
		From       string
		To         string
		NotesURL   string
		BinaryPath string
		BackupPath string
	}

	// RollbackResult describes a finished rollback.
	RollbackResult struct {
		BinaryPath string
		// Restored is the version now installed, when the update record knew it.
		Restored string
	}

	// Updater checks, applies and rolls back updates of the running binary.
	Updater struct {
		client *Client
		opts   Options
		state  State
		goos   string
		goarch string
		now    func() time.Time
	}
)

// New returns an Updater reading releases through client.
func New(client *Client, opts Options) *Updater {
	if opts.Binary == "" {
		opts.Binary = "forge"
	}
	return &Updater{
		client: client,
		opts:   opts,
		state:  Idle,
		goos:   runtime.GOOS,
		goarch: runtime.GOARCH,
		now:    time.Now,
	}
}

// State returns the current lifecycle state.
func (u *Updater) State() State {
	return u.state
}

// Check compares the running version with the newest eligible release. It never
// touches the filesystem.
func (u *Updater) Check(ctx context.Context) (CheckResult, error) {
	if _, err := u.executable(); err != nil {
		return CheckResult{}, err
	}
	return u.check(ctx)
}

// Update installs the newest eligible release. Without force, nothing happens when
// the running version is already the newest one.
func (u *Updater) Update(ctx context.Context, force bool) (UpdateResult, error) {
	exe, err := u.executable()
	if err != nil {
		return UpdateResult{}, err
	}
	check, err := u.check(ctx)
	if err != nil {
		return UpdateResult{}, err
	}

	res := UpdateResult{From: check.Local, To: check.Remote, NotesURL: check.NotesURL, BinaryPath: exe}
	if check.Status == UpToDate && !force {
		res.Status = UpToDate
		return res, nil
	}

	u.state = Updating
	res.BackupPath, err = u.apply(ctx, exe, check)
	if err != nil {
		u.state = Failed
		return res, apperr.WrapWithDetails(apperr.UpdateFailed, "Update failed", err,
			map[string]string{"binary": exe, "release": check.Release.TagName})
	}
	u.state = Updated
	res.Status = Updated
	return res, nil
}

// Rollback restores the backup over the running binary. The backup slot is
// consumed; without a backup nothing changes.
func (u *Updater) Rollback(_ context.Context) (RollbackResult, error) {
	exe, err := u.executable()
	if err != nil {
		return RollbackResult{}, err
	}
	u.state = RollingBack

	backup := BackupPath(exe)
	if _, err := os.Stat(backup); err != nil {
		u.state = NoBackupFound
		if errors.Is(err, fs.ErrNotExist) {
			return RollbackResult{}, apperr.New(apperr.NoBackupFound, "No backup found to rollback to.")
		}
		return RollbackResult{}, apperr.Wrap(apperr.NoBackupFound, "Unable to read backup "+backup, err)
	}

	rec, err := state.Load(backup)
	if err != nil {
		logger.Warn("[WARN] Ignoring unreadable update record: %v\n", err)
	}

	if err := os.Rename(backup, exe); err != nil {
		u.state = Failed
		return RollbackResult{}, apperr.Wrap(apperr.UpdateFailed, "Rollback failed", err)
	}
	if err := state.Remove(backup); err != nil {
		logger.Warn("[WARN] %v\n", err)
	}

	u.state = RolledBack
	res := RollbackResult{BinaryPath: exe}
	if rec != nil {
		res.Restored = rec.PreviousVersion
	}
	return res, nil
}

// executable resolves the running binary and enforces the packaged-build precondition.
func (u *Updater) executable() (string, error) {
	v := strings.TrimSpace(u.opts.Version)
	if v == "" || v == "dev" {
		return "", apperr.New(apperr.NotPackaged, NotPackagedMessage)
	}
	exe, err := osExecutable()
	if err != nil {
		return "", apperr.Wrap(apperr.NotPackaged, NotPackagedMessage, err)
	}
	resolved, err := evalSymlinks(exe)
	if err != nil {
		return "", apperr.Wrap(apperr.NotPackaged, NotPackagedMessage, err)
	}
	if strings.Contains(filepath.ToSlash(resolved), "/go-build") {
		return "", apperr.New(apperr.NotPackaged, NotPackagedMessage)
	}
	return resolved, nil
}

func (u *Updater) check(ctx context.Context) (CheckResult, error) {
	u.state = Checking

	release, err := u.latest(ctx)
	if err != nil {
		u.state = Failed
		return CheckResult{}, apperr.WrapWithDetails(apperr.UpdateCheckFailed, "Unable to check for updates", err,
			map[string]string{"repository": u.client.Repository()})
	}

	res := CheckResult{
		Local:    normalize(u.opts.Version),
		Remote:   normalize(release.TagName),
		NotesURL: release.HTMLURL,
		Release:  release,
	}
	if res.Local == res.Remote {
		res.Status = UpToDate
	} else {
		res.Status = UpdateAvailable
	}
	u.state = res.Status
	logger.Debug("[DEBUG] Local %s, remote %s: %s\n", res.Local, res.Remote, res.Status)
	return res, nil
}

// latest returns the highest semver release allowed by the stability setting.
func (u *Updater) latest(ctx context.Context) (Release, error) {
	releases, err := u.client.Releases(ctx)
	if err != nil {
		return Release{}, err
	}
	eligible := Eligible(releases, u.opts.Stability)
	if len(eligible) == 0 {
		return Release{}, fmt.Errorf("no releases found for %s", u.client.Repository())
	}
	return eligible[0], nil
}

// Eligible filters releases by stability and sorts them newest first. Tags that
// are not semantic versions are dropped. Stable keeps finalized versions only, so
// a pre-release tag is skipped even when GitHub does not flag it.
func Eligible(releases []Release, s Stability) []Release {
	var out []Release
	for _, r := range releases {
		v := normalize(r.TagName)
		if r.Draft || !semver.IsValid(v) {
			continue
		}
		if s == Stable && (r.Prerelease || semver.Prerelease(v) != "") {
			continue
		}
		out = append(out, r)
	}
	slices.SortStableFunc(out, func(a, b Release) int {
		return semver.Compare(normalize(b.TagName), normalize(a.TagName))
	})
	return out
}

// normalize adds the "v" prefix semver expects.
func normalize(v string) string {
	v = strings.TrimSpace(v)
	if v == "" || strings.HasPrefix(v, "v") {
		return v
	}
	return "v" + v
}

// apply downloads, verifies and installs the release, returning the backup path.
func (u *Updater) apply(ctx context.Context, exe string, check CheckResult) (string, error) {
	asset, ok := selectAsset(check.Release.Assets, u.opts.Binary, u.goos, u.goarch)
	if !ok {
		return "", fmt.Errorf("release %s has no asset for %s/%s", check.Release.TagName, u.goos, u.goarch)
	}
	logger.Info("[INFO] Downloading %s\n", asset.Name)

	info, err := os.Stat(exe)
	if err != nil {
		return "", fmt.Errorf("failed to stat %s: %w", exe, err)
	}

	// Same directory as exe, so the final rename cannot cross filesystems.
	work, err := os.MkdirTemp(filepath.Dir(exe), ".forge-update-*")
	if err != nil {
		return "", fmt.Errorf("failed to create working directory: %w", err)
	}
	defer os.RemoveAll(work)

	downloaded := filepath.Join(work, filepath.Base(asset.Name))
	if err := u.client.Download(ctx, asset.BrowserDownloadURL, downloaded); err != nil {
		return "", err
	}

	if err := u.verify(ctx, check.Release, asset, work, downloaded); err != nil {
		return "", err
	}

	candidate := downloaded
	if isArchive(asset.Name) {
		candidate, err = extractBinary(downloaded, filepath.Join(work, "extracted"), u.opts.Binary)
		if err != nil {
			return "", err
		}
	}
	if err := os.Chmod(candidate, info.Mode().Perm()); err != nil {
		return "", fmt.Errorf("failed to chmod new binary: %w", err)
	}

	backup := BackupPath(exe)
	if err := writeBackup(exe, backup); err != nil {
		return "", fmt.Errorf("failed to back up %s: %w", exe, err)
	}
	rec := &state.UpdateRecord{
		CurrentVersion:  check.Remote,
		PreviousVersion: check.Local,
		RemoteVersion:   check.Release.TagName,
		BinaryPath:      exe,
		BackupPath:      backup,
		UpdatedAt:       u.now().UTC(),
	}
	if err := state.Save(rec); err != nil {
		logger.Warn("[WARN] Failed to write update record: %v\n", err)
	}

	if err := os.Rename(candidate, exe); err != nil {
		return "", fmt.Errorf("failed to replace %s: %w", exe, err)
	}
	return backup, nil
}

// verify checks the downloaded asset against checksums.txt when the release has one.
func (u *Updater) verify(ctx context.Context, release Release, asset Asset, work, downloaded string) error {
	i := slices.IndexFunc(release.Assets, func(a Asset) bool { return a.Name == checksumsAsset })
	if i < 0 {
		logger.Debug("[DEBUG] Release %s has no %s, skipping verification\n", release.TagName, checksumsAsset)
		return nil
	}

	sumsPath := filepath.Join(work, checksumsAsset)
	if err := u.client.Download(ctx, release.Assets[i].BrowserDownloadURL, sumsPath); err != nil {
		return err
	}
	f, err := os.Open(sumsPath)
	if err != nil {
		return err
	}
	defer f.Close()

	sums, err := parseChecksums(f)
	if err != nil {
		return err
	}
	if err := verifyChecksum(downloaded, asset.Name, sums); err != nil {
		return err
	}
	logger.Debug("[DEBUG] Checksum of %s verified\n", asset.Name)
	return nil
}
