// Package build provides information defined on the build time.
package build

// MajorVersion of the project manifest format.
const MajorVersion = 1

// Defined on build time:

var (
	GitCommit    = "-"
	BuildVersion = "dev"
	BuildDate    = "-"
)
