package common

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
)

// Build metadata injected via ldflags. The defaults stand in during
// development builds and are overridden by a .version file next to the
// binary when present.
var (
	Version   = "dev"
	Build     = "unknown"
	GitCommit = "unknown"
)

// GetVersion returns the semantic version string.
func GetVersion() string { return Version }

// GetBuild returns the build timestamp.
func GetBuild() string { return Build }

// GetGitCommit returns the short git commit hash.
func GetGitCommit() string { return GitCommit }

// LoadVersionFromFile reads key:value pairs from a .version file beside the
// binary. A value only applies when the corresponding variable is still at
// its default, so ldflags always win over the file.
func LoadVersionFromFile() {
	exe, err := os.Executable()
	if err != nil {
		return
	}

	f, err := os.Open(filepath.Join(filepath.Dir(exe), ".version"))
	if err != nil {
		return
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, val, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		applyFallback(strings.TrimSpace(key), strings.TrimSpace(val))
	}
}

func applyFallback(key, val string) {
	if val == "" {
		return
	}
	switch key {
	case "version":
		if Version == "dev" {
			Version = val
		}
	case "build":
		if Build == "unknown" {
			Build = val
		}
	case "commit":
		if GitCommit == "unknown" {
			GitCommit = val
		}
	}
}
