// Package version exposes build metadata for the tradestudy binary,
// injected at build time via -ldflags.
package version

import (
	"fmt"
	"runtime"
)

// Version is the semantic version.
var Version = "dev"

// GitCommit is the git commit hash.
var GitCommit = "unknown"

// BuildTime is the timestamp when the binary was built.
var BuildTime = "unknown"

// String renders a one-line human-readable version banner.
func String() string {
	return fmt.Sprintf("tradestudy %s (commit: %s, built: %s, go: %s)",
		Version, GitCommit, BuildTime, runtime.Version())
}

// Info returns the build metadata as a flat map for structured output.
func Info() map[string]string {
	return map[string]string{
		"version":   Version,
		"commit":    GitCommit,
		"buildTime": BuildTime,
		"goVersion": runtime.Version(),
		"platform":  fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}
}
