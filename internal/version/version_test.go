package version

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

// semverPattern matches MAJOR.MINOR.PATCH with an optional pre-release suffix.
var semverPattern = regexp.MustCompile(`^\d+\.\d+\.\d+(-[0-9A-Za-z.-]+)?$`)

// TestDefaults tests the values a binary built without -ldflags reports.
func TestDefaults(t *testing.T) {
	t.Parallel()

	assert.Regexp(t, semverPattern, Version)
	assert.Equal(t, "none", Commit)
	assert.Equal(t, "unknown", BuildTime)
	assert.Equal(t, Version, Short())
}

// TestFull tests the line printed by "yadisk-grabber version" for linked build values.
func TestFull(t *testing.T) {
	// Not parallel: overrides the package variables the way -ldflags -X does.
	originalVersion, originalCommit, originalBuildTime := Version, Commit, BuildTime

	defer func() {
		Version, Commit, BuildTime = originalVersion, originalCommit, originalBuildTime
	}()

	Version, Commit, BuildTime = "1.4.0", "3f2c9ab", "2026-10-01T12:00:00Z"

	assert.Equal(t, "1.4.0", Short())
	assert.Equal(t, "version: 1.4.0, commit: 3f2c9ab, built at: 2026-10-01T12:00:00Z", Full())
}
