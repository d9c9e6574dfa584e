// Package build identifies the running muse binary.
//
// Release builds stamp these variables through the linker:
//
//	go build -ldflags "\
//	  -X github.com/haivivi/muse/cmd/muse/internal/build.Version=v0.4.0 \
//	  -X github.com/haivivi/muse/cmd/muse/internal/build.Commit=$(git rev-parse --short HEAD) \
//	  -X github.com/haivivi/muse/cmd/muse/internal/build.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
//
// A plain `go build` leaves them alone; String then falls back to the
// revision the toolchain embeds for VCS checkouts.
package build

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Overridden by the linker on release builds.
var (
	Version = "dev"
	Commit  = ""
	Date    = ""
)

// String renders the one-line banner shown by `muse version`.
func String() string {
	commit := Commit
	if commit == "" {
		commit = vcsRevision()
	}
	if commit == "" {
		commit = "unknown"
	}
	date := Date
	if date == "" {
		date = "unknown"
	}
	return fmt.Sprintf("muse %s (%s) built %s %s/%s",
		Version, commit, date, runtime.GOOS, runtime.GOARCH)
}

// vcsRevision pulls the short commit hash out of the embedded build info.
func vcsRevision() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	for _, s := range info.Settings {
		if s.Key == "vcs.revision" {
			if len(s.Value) > 12 {
				return s.Value[:12]
			}
			return s.Value
		}
	}
	return ""
}
