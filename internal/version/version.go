// Package version exposes build information injected through -ldflags.
package version

//nolint:gochecknoglobals // Overridden at link time with -X.
var (
	// Version is the semantic version of the build.
	Version = "0.1.0"
	// Commit is the git commit the binary was built from.
	Commit = "none"
	// BuildTime is the UTC build timestamp.
	BuildTime = "unknown"
)

// Short returns the version string alone.
func Short() string {
	return Version
}

// Full returns the version together with commit and build time.
func Full() string {
	return "version: " + Version + ", commit: " + Commit + ", built at: " + BuildTime
}
