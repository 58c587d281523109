package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaskDSN(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty", "", ""},
		{"sqlite path", "/var/lib/app.sqlite", "/var/lib/app.sqlite"},
		{"url without password", "postgres://app@db/app", "postgres://app@db/app"},
		{"url with password", "postgres://app:s3cret@db:5432/app?sslmode=disable", "postgres://app:xxxxx@db:5432/app?sslmode=disable"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, maskDSN(tt.input))
		})
	}
}

func TestMaskConfig(t *testing.T) {
	cfg := &UserConfig{
		CurrentProfile: "default",
		Profiles: map[string]Profile{
			"default": {
				Driver: "pgx",
				DSN:    "postgres://app:s3cret@db/app",
				Output: "json",
			},
		},
	}

	masked := maskConfig(cfg)

	// Non-sensitive fields preserved.
	assert.Equal(t, "pgx", masked.Profiles["default"].Driver)
	assert.Equal(t, "json", masked.Profiles["default"].Output)
	assert.Equal(t, "default", masked.CurrentProfile)

	assert.NotContains(t, masked.Profiles["default"].DSN, "s3cret")

	// Original config not mutated.
	assert.Equal(t, "postgres://app:s3cret@db/app", cfg.Profiles["default"].DSN)
}

func TestConfigShow_TableOutput(t *testing.T) {
	isolateEnv(t)

	require.NoError(t, SaveUserConfig(&UserConfig{
		CurrentProfile: "default",
		Profiles: map[string]Profile{
			"default": {
				Driver: "pgx",
				DSN:    "postgres://app:s3cret@db/app",
				Output: "table",
			},
			"local": {Driver: "sqlite3", DSN: "local.sqlite"},
		},
	}))

	output, err := runCLI(t, "config", "show", "--output", "table")
	require.NoError(t, err)

	assert.Contains(t, output, "PROFILE")
	assert.Contains(t, output, "ACTIVE")
	assert.Contains(t, output, "DSN")
	assert.Contains(t, output, "default")
	assert.Contains(t, output, "local.sqlite")
	assert.Contains(t, output, "*")
	assert.NotContains(t, output, "s3cret", "password should be masked in table output")
}

func TestConfigShow_RevealJSON(t *testing.T) {
	isolateEnv(t)
	require.NoError(t, SaveUserConfig(&UserConfig{
		CurrentProfile: "default",
		Profiles:       map[string]Profile{"default": {DSN: "postgres://app:s3cret@db/app"}},
	}))

	output, err := runCLI(t, "config", "show", "--reveal", "-o", "json")
	require.NoError(t, err)

	var cfg map[string]any
	require.NoError(t, json.Unmarshal([]byte(output), &cfg))
	assert.Contains(t, output, "s3cret")
}

func TestConfigSetAndUseProfile(t *testing.T) {
	isolateEnv(t)

	_, err := runCLI(t, "config", "set-profile", "--name", "ci", "--driver", "sqlite3", "--dsn", "ci.sqlite", "--output", "json")
	require.NoError(t, err)

	cfg, err := LoadUserConfig()
	require.NoError(t, err)
	assert.Equal(t, "default", cfg.CurrentProfile)
	assert.Equal(t, Profile{Driver: "sqlite3", DSN: "ci.sqlite", Output: "json"}, cfg.Profiles["ci"])

	output, err := runCLI(t, "config", "use-profile", "ci")
	require.NoError(t, err)
	// Output resolves from the profile that was active before the switch.
	assert.Contains(t, output, `Active profile set to "ci"`)

	cfg, err = LoadUserConfig()
	require.NoError(t, err)
	assert.Equal(t, "ci", cfg.CurrentProfile)

	_, err = runCLI(t, "config", "use-profile", "missing")
	require.EqualError(t, err, `profile "missing" not found`)
}

func TestConfigSetProfile_RejectsBadOutput(t *testing.T) {
	isolateEnv(t)

	_, err := runCLI(t, "config", "set-profile", "--name", "x", "--output", "yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported output format")
}
