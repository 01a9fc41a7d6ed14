// Package version provides version information for the resolve-mcp binary.
package version

import "strings"

// Version is overridden at build time via ldflags. The fallback is
// used for go install and development builds.
var Version = "0.3.0-dev"

// Commit and Date are optional build metadata set via ldflags.
var (
	Commit = ""
	Date   = ""
)

// Get returns the version with "v" prefix.
func Get() string {
	return "v" + strings.TrimSpace(Version)
}
