// Package buildinfo holds build-time metadata injected via -ldflags.
package buildinfo

import "fmt"

// Version is the semantic version or tag for this build.
// Inject via: -X github.com/garyellow/kebiao-ics/internal/buildinfo.Version=...
var Version = ""

// Commit is the git commit SHA for this build.
// Inject via: -X github.com/garyellow/kebiao-ics/internal/buildinfo.Commit=...
var Commit = ""

// BuildDate is the RFC3339 build timestamp.
// Inject via: -X github.com/garyellow/kebiao-ics/internal/buildinfo.BuildDate=...
var BuildDate = ""

// DisplayVersion returns Version, or "dev" for unreleased builds.
func DisplayVersion() string {
	if Version == "" {
		return "dev"
	}
	return Version
}

// String formats all fields for `kebiao version`.
func String() string {
	commit := Commit
	if len(commit) > 12 {
		commit = commit[:12]
	}
	if commit == "" {
		commit = "unknown"
	}
	date := BuildDate
	if date == "" {
		date = "unknown"
	}
	return fmt.Sprintf("kebiao %s (commit %s, built %s)", DisplayVersion(), commit, date)
}
