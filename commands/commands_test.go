package commands

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/restaurant-reservation/database"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	confirmReset, jsonOutput = false, false
	envFile = ".env"
	rootCmd.PersistentFlags().Lookup("env-file").Changed = false

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	err := rootCmd.Execute()
	return out.String(), err
}

func useSQLite(t *testing.T) {
	t.Helper()
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_DSN", filepath.Join(t.TempDir(), "cli.db"))
	t.Setenv("LOG_LEVEL", "error")
}

func rowCounts(t *testing.T, out string) map[string]int64 {
	t.Helper()
	var report database.CheckReport
	require.NoError(t, json.Unmarshal([]byte(out), &report), out)
	assert.Equal(t, "sqlite", report.Driver)

	counts := make(map[string]int64, len(report.Tables))
	for _, table := range report.Tables {
		assert.True(t, table.Exists, table.Name)
		counts[table.Name] = table.Rows
	}
	return counts
}

func TestDatabaseCommands(t *testing.T) {
	useSQLite(t)

	_, err := run(t, "migrate")
	require.NoError(t, err)

	out, err := run(t, "seed")
	require.NoError(t, err)
	assert.Contains(t, out, "Seeded 3 users, 8 tables, 2 reservations")

	out, err = run(t, "check", "--json")
	require.NoError(t, err)
	counts := rowCounts(t, out)
	assert.Equal(t, int64(3), counts["users"])
	assert.Equal(t, int64(8), counts["tables"])
	assert.Equal(t, int64(2), counts["reservations"])

	_, err = run(t, "reset")
	assert.ErrorContains(t, err, "--yes")

	_, err = run(t, "reset", "--yes")
	require.NoError(t, err)

	out, err = run(t, "check", "--json")
	require.NoError(t, err)
	for name, rows := range rowCounts(t, out) {
		assert.Zero(t, rows, name)
	}
}

func TestCheckTableOutput(t *testing.T) {
	useSQLite(t)

	out, err := run(t, "check")
	require.NoError(t, err)
	assert.Contains(t, out, "Driver: sqlite")
	assert.Contains(t, out, "some tables are missing")
}

func TestInvalidConfigFailsEarly(t *testing.T) {
	t.Setenv("DB_DRIVER", "oracle")

	_, err := run(t, "migrate")
	assert.ErrorContains(t, err, "DB_DRIVER")
}

func TestMissingEnvFile(t *testing.T) {
	_, err := run(t, "check", "--env-file", filepath.Join(t.TempDir(), "absent.env"))
	assert.Error(t, err)
}
