// Package version provides version information for namematch
package version

// Version information set at build time
const (
	// Version is the current version of namematch
	Version = "0.2.0"

	// BuildDate is set during build with -ldflags
	BuildDate = "development"

	// GitCommit is set during build with -ldflags
	GitCommit = "unknown"
)

// FullInfo returns detailed version information
func FullInfo() string {
	return "namematch " + Version + " (commit: " + GitCommit + ", built: " + BuildDate + ")"
}
