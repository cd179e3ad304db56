// Package version holds the build information of the marech binaries.
package version

// Build information set by ldflags
var (
	Version = "dev"     // -X github.com/guesant/marech/internal/version.Version={{.Version}}
	Commit  = "unknown" // -X github.com/guesant/marech/internal/version.Commit={{.Commit}}
	Date    = "unknown" // -X github.com/guesant/marech/internal/version.Date={{.Date}}
)
