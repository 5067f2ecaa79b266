// Package version holds build metadata injected with -ldflags.
package version

import (
	"fmt"
	"runtime"
)

// Set via -ldflags "-X github.com/quantmind-br/gitingest-go/pkg/version.Version=..."
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// Short returns the release version, as reported by /health
func Short() string {
	return Version
}

// Full returns the version line printed by "gitingest version"
func Full() string {
	return fmt.Sprintf("gitingest %s (commit: %s, built: %s, %s %s/%s)",
		Version, Commit, BuildTime, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
