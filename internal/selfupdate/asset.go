package selfupdate

import (
	"strings"
)

// Name fragments release assets use for each platform.
var (
	osAliases = map[string][]string{
		"darwin":  {"darwin", "macos", "apple"},
		"linux":   {"linux"},
		"windows": {"windows", "win64", "win32"},
		"freebsd": {"freebsd"},
	}
	archAliases = map[string][]string{
		"amd64": {"amd64", "x86_64", "x64"},
		"arm64": {"arm64", "aarch64"},
		"386":   {"386", "i386", "i686"},
		"arm":   {"armv7", "armv6", "armhf", "armel"},
	}
)

// selectAsset picks the release asset for this platform. An asset named exactly
// like the binary wins; otherwise the first asset naming both goos and goarch is
// used, as an archive or a bare executable.
func selectAsset(assets []Asset, binary, goos, goarch string) (Asset, bool) {
	for _, a := range assets {
		if a.Name == binary || (goos == "windows" && a.Name == binary+".exe") {
			return a, true
		}
	}

	for _, a := range assets {
		lower := strings.ToLower(a.Name)
		if lower == checksumsAsset || !(isArchive(lower) || isBareExecutable(lower)) {
			continue
		}
		if containsAny(lower, osAliases[goos], goos) && containsAny(lower, archAliases[goarch], goarch) {
			return a, true
		}
	}
	return Asset{}, false
}

// isBareExecutable accepts names without an extension, or ending in .exe.
func isBareExecutable(name string) bool {
	if strings.HasSuffix(name, ".exe") {
		return true
	}
	base := name[strings.LastIndexAny(name, "_-")+1:]
	return !strings.Contains(base, ".")
}

func containsAny(name string, aliases []string, fallback string) bool {
	if len(aliases) == 0 {
		aliases = []string{fallback}
	}
	for _, alias := range aliases {
		if strings.Contains(name, alias) {
			return true
		}
	}
	return false
}
