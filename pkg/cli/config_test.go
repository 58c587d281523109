package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserConfig_ActiveProfile(t *testing.T) {
	cfg := &UserConfig{
		CurrentProfile: "default",
		Profiles: map[string]Profile{
			"default": {
				Driver: "sqlite3",
				DSN:    "local.sqlite",
				Output: "table",
			},
			"staging": {
				Driver: "pgx",
				DSN:    "postgres://app@staging/app",
				Output: "json",
			},
		},
	}

	tests := []struct {
		name     string
		override string
		wantDSN  string
		wantErr  string
	}{
		{
			name:     "uses current profile",
			override: "",
			wantDSN:  "local.sqlite",
		},
		{
			name:     "override to staging",
			override: "staging",
			wantDSN:  "postgres://app@staging/app",
		},
		{
			name:     "nonexistent profile returns error",
			override: "nonexistent",
			wantErr:  `profile "nonexistent" not found`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := cfg.ActiveProfile(tt.override)
			if tt.wantErr != "" {
				require.EqualError(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantDSN, p.DSN)
		})
	}
}

func TestUserConfig_ActiveProfileMissingCurrent(t *testing.T) {
	cfg := &UserConfig{CurrentProfile: "default", Profiles: map[string]Profile{}}

	p, err := cfg.ActiveProfile("")
	require.NoError(t, err)
	assert.Equal(t, Profile{}, p)
}

func TestLoadSaveUserConfig(t *testing.T) {
	// Override config path for testing
	dir := t.TempDir()
	t.Setenv("HOME", dir)

	cfg := &UserConfig{
		CurrentProfile: "test",
		Profiles: map[string]Profile{
			"test": {
				Driver: "sqlite3",
				DSN:    "/tmp/test.sqlite",
			},
		},
	}
	err := SaveUserConfig(cfg)
	require.NoError(t, err)

	configPath := filepath.Join(dir, ".datamapper", "config.yaml")
	info, err := os.Stat(configPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	loaded, err := LoadUserConfig()
	require.NoError(t, err)
	assert.Equal(t, "test", loaded.CurrentProfile)
	require.Contains(t, loaded.Profiles, "test")
	assert.Equal(t, "sqlite3", loaded.Profiles["test"].Driver)
	assert.Equal(t, "/tmp/test.sqlite", loaded.Profiles["test"].DSN)
}

func TestLoadUserConfig_NotFound(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)

	_, err := LoadUserConfig()
	require.Error(t, err)
}

func TestLoadUserConfig_EmptyProfiles(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".datamapper"), 0o700))
	require.NoError(t, os.WriteFile(ConfigPath(), []byte("current-profile: default\n"), 0o600))

	loaded, err := LoadUserConfig()
	require.NoError(t, err)
	assert.NotNil(t, loaded.Profiles)
}
