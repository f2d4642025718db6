package context

import (
	"fmt"
	"runtime/debug"
	"strings"
)

// version is set at build time with -ldflags "-X ...".
//
//nolint:gochecknoglobals // Set by the linker.
var version = "v0.0.0-dev"

// VersionInfo describes the application build.
type VersionInfo struct {
	Semantic  string
	Commit    string
	GoVersion string
	Dirty     bool
}

// String returns a human readable version.
func (v *VersionInfo) String() string {
	var sb strings.Builder
	sb.WriteString(v.Semantic)
	if v.Commit != "" {
		commit := v.Commit
		if len(commit) > 12 {
			commit = commit[:12]
		}
		fmt.Fprintf(&sb, " (commit %s", commit)
		if v.Dirty {
			sb.WriteString(", dirty")
		}
		sb.WriteString(")")
	}
	if v.GoVersion != "" {
		fmt.Fprintf(&sb, " %s", v.GoVersion)
	}

	return sb.String()
}

// GetVersion returns the application version, with VCS details embedded by
// the Go toolchain when they're available.
func GetVersion() (*VersionInfo, error) {
	vi := &VersionInfo{Semantic: version}
	if !strings.HasPrefix(vi.Semantic, "v") {
		return nil, fmt.Errorf("invalid version '%s'", version)
	}

	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return vi, nil
	}
	vi.GoVersion = bi.GoVersion
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			vi.Commit = s.Value
		case "vcs.modified":
			vi.Dirty = s.Value == "true"
		}
	}

	return vi, nil
}
