package cmd_test

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	// testBinaryName is the name of the test binary for E2E tests.
	testBinaryName = "yadisk-grabber-test"
)

// TestMain builds the binary before running E2E tests.
func TestMain(m *testing.M) {
	// Build the binary for testing.
	//nolint:noctx // TestMain doesn't have access to context, and build is needed before tests run.
	buildCmd := exec.Command("go", "build", "-o", testBinaryName, "../.")
	if err := buildCmd.Run(); err != nil {
		os.Exit(1)
	}

	// Run tests.
	code := m.Run()

	// Cleanup.
	_ = os.Remove(testBinaryName)

	os.Exit(code)
}

// runBinary runs the test binary and returns its combined output.
func runBinary(t *testing.T, args ...string) (string, error) {
	t.Helper()

	//nolint:gosec,noctx // Test binary name is a constant, not user input. No context available in test.
	cmd := exec.Command("./"+testBinaryName, args...)
	output, err := cmd.CombinedOutput()

	return string(output), err
}

// TestE2E_Version tests the version command.
func TestE2E_Version(t *testing.T) {
	t.Parallel()

	output, err := runBinary(t, "version")
	require.NoError(t, err)
	assert.Contains(t, output, "version:")
}

// TestE2E_ConfigInit tests writing and then loading a default configuration.
func TestE2E_ConfigInit(t *testing.T) {
	t.Parallel()

	configPath := filepath.Join(t.TempDir(), "config.yaml")

	_, err := runBinary(t, "--config", configPath, "config", "init")
	require.NoError(t, err)

	data, err := os.ReadFile(configPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "collision_policy: rename")

	// A second init keeps the file.
	_, err = runBinary(t, "--config", configPath, "config", "init")
	require.Error(t, err)

	_, err = runBinary(t, "--config", configPath, "config", "init", "--force")
	require.NoError(t, err)
}

// TestE2E_InvalidValues tests that invalid input fails before any request is sent.
func TestE2E_InvalidValues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name             string
		args             []string
		expectedErrorMsg string
	}{
		{
			name:             "invalid collision policy",
			args:             []string{"download", "abc123", "--collision", "skip"},
			expectedErrorMsg: "invalid collision_policy",
		},
		{
			name:             "invalid speed limit",
			args:             []string{"download", "abc123", "--speed-limit", "invalid-speed"},
			expectedErrorMsg: "failed to parse download speed limit",
		},
		{
			name:             "foreign link",
			args:             []string{"list", "https://example.com/d/abc123"},
			expectedErrorMsg: "not a Yandex Disk public link",
		},
		{
			name:             "missing config file",
			args:             []string{"--config", "does-not-exist.yaml", "list", "abc123"},
			expectedErrorMsg: "failed to read config",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			output, err := runBinary(t, tt.args...)
			require.Error(t, err)

			assert.Contains(t, strings.ToLower(output), strings.ToLower(tt.expectedErrorMsg),
				"Expected error message about '%s' but got: %s", tt.expectedErrorMsg, output)
		})
	}
}
