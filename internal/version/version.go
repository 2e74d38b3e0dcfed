// Package version carries build metadata stamped in at release time.
package version

// Overridden via -ldflags "-X ..." by the release build.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)
