// Package version reports the idbatch build version.
package version

// Set at build time with
// -ldflags "-X github.com/rshade/idbatch/pkg/version.version=v1.2.3 ...".
//
//nolint:gochecknoglobals // Overridden by the linker.
var (
	version   = "dev"
	gitCommit = "none"
	buildDate = "unknown"
)

// GetVersion returns the semantic version of the binary.
func GetVersion() string {
	return version
}

// GetGitCommit returns the commit the binary was built from.
func GetGitCommit() string {
	return gitCommit
}

// GetBuildDate returns when the binary was built.
func GetBuildDate() string {
	return buildDate
}

// String returns the full version line printed by --version.
func String() string {
	return version + " (commit " + gitCommit + ", built " + buildDate + ")"
}
