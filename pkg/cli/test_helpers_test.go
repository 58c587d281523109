package cli

import (
	"bytes"
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	internaldb "datamapper/internal/db"
)

// isolateEnv points HOME at a temp dir and clears the variables the root
// command resolves, so no real profile or environment leaks into a test.
func isolateEnv(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("DB_DRIVER", "")
	t.Setenv("DB_DSN", "")
	t.Setenv("DATAMAPPER_OUTPUT", "")
	return home
}

// runCLI executes a fresh root command and returns what it wrote to its
// output stream.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	rootCmd := newRootCmd()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

// seededDatabase creates a migrated SQLite file holding three users and
// returns its path.
func seededDatabase(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cli.sqlite")

	pools, err := internaldb.Open(internaldb.DriverSQLite, path, 1)
	require.NoError(t, err)
	defer pools.Close() //nolint:errcheck

	require.NoError(t, internaldb.RunMigrations(pools.Write, pools.Driver))
	_, err = pools.Write.Exec(`INSERT INTO users (name, email, age, active, nickname) VALUES
		('Ada', 'ada@example.com', 36, 1, 'Countess'),
		('Bob', 'bob@example.com', 25, 0, NULL),
		('Cy', 'cy@example.com', 41, 1, NULL)`)
	require.NoError(t, err)
	return path
}
