// Package version holds the build metadata the vp binary reports via
// -version, set at link time with -ldflags.
package version

var (
	// Version is the vp release tag, or "dev" outside a release build.
	Version = "dev"
	// GitSHA is the commit the binary was built from.
	GitSHA = "unknown"
	// BuildTime is the build timestamp.
	BuildTime = "unknown"
)
