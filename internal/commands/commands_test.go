package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tally-dev/tally/internal/model"
)

// run executes the CLI against a project directory and returns stdout.
func run(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"-C", dir}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func initProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	out, err := run(t, dir, "init", "--no-git")
	require.NoError(t, err)
	require.Contains(t, out, "Initialized Tally project")
	return dir
}

func TestInit(t *testing.T) {
	dir := initProject(t)

	for _, f := range []string{"tally.yaml", "rules.yaml", ".gitignore"} {
		_, err := os.Stat(filepath.Join(dir, f))
		assert.NoError(t, err, f)
	}
	for _, d := range []string{"pending", "ledger", "import"} {
		info, err := os.Stat(filepath.Join(dir, d))
		require.NoError(t, err, d)
		assert.True(t, info.IsDir())
	}

	// Re-running refuses to clobber.
	_, err := run(t, dir, "init", "--no-git")
	assert.ErrorContains(t, err, "already exists")
}

func TestVersionFlag(t *testing.T) {
	out, err := run(t, t.TempDir(), "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "dev (commit: none, built: unknown)")
}

func TestCommandsRequireProject(t *testing.T) {
	_, err := run(t, t.TempDir(), "list")
	assert.ErrorContains(t, err, "tally init")
}

func TestImportListConfirmFlow(t *testing.T) {
	dir := initProject(t)

	csvPath := filepath.Join(dir, "import", "statement.csv")
	statement := "Date,Description,Amount\n" +
		"2024-03-02,TRADER JOES #123,45.23\n" +
		"2024-03-03,UBER TRIP,12.40\n" +
		"2024-03-04,MYSTERY VENDOR,9.99\n"
	require.NoError(t, os.WriteFile(csvPath, []byte(statement), 0o644))

	out, err := run(t, dir, "import", csvPath)
	require.NoError(t, err)
	// Default config keywords cover trader joe and uber.
	assert.Contains(t, out, "Imported 3 of 3 row(s) (2 auto-mapped)")

	out, err = run(t, dir, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "TRADER JOES #123")
	assert.Contains(t, out, "3 transaction(s)")

	out, err = run(t, dir, "list", "--status", "uncategorized")
	require.NoError(t, err)
	assert.Contains(t, out, "MYSTERY VENDOR")
	assert.Contains(t, out, "1 transaction(s)")

	// Categorize the stray one by hand, then confirm everything.
	e, err := newEnv(dir, zerolog.Nop())
	require.NoError(t, err)
	txns, err := e.pending.Load()
	require.NoError(t, err)
	var mysteryID string
	for _, txn := range txns {
		if txn.Status == model.StatusUncategorized {
			mysteryID = txn.ID
		}
	}
	require.NotEmpty(t, mysteryID)

	out, err = run(t, dir, "categorize", mysteryID, "misc")
	require.NoError(t, err)
	assert.Contains(t, out, "Set "+mysteryID)

	out, err = run(t, dir, "confirm", "--all")
	require.NoError(t, err)
	assert.Contains(t, out, "Confirmed 3 transaction(s)")

	out, err = run(t, dir, "list", "--year", "2024")
	require.NoError(t, err)
	assert.Contains(t, out, "3 expense(s) in 2024")
	assert.Contains(t, out, "67.62") // 45.23 + 12.40 + 9.99

	out, err = run(t, dir, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "0 transaction(s)")
}

func TestConfirmAllSkipsUnready(t *testing.T) {
	dir := initProject(t)

	csvPath := filepath.Join(dir, "statement.csv")
	statement := "Date,Description,Amount\n" +
		"2024-03-02,TRADER JOES #123,45.23\n" + // keyword-mapped to groceries
		"2024-03-04,MYSTERY VENDOR,9.99\n"
	require.NoError(t, os.WriteFile(csvPath, []byte(statement), 0o644))
	_, err := run(t, dir, "import", csvPath)
	require.NoError(t, err)

	out, err := run(t, dir, "confirm", "--all")
	require.NoError(t, err)
	assert.Contains(t, out, "Confirmed 1 transaction(s)")

	// The uncategorized one stays queued.
	out, err = run(t, dir, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "MYSTERY VENDOR")
	assert.Contains(t, out, "1 transaction(s)")
}

func TestConfirmAllNothingReady(t *testing.T) {
	dir := initProject(t)

	csvPath := filepath.Join(dir, "statement.csv")
	require.NoError(t, os.WriteFile(csvPath,
		[]byte("Date,Description,Amount\n2024-03-04,MYSTERY VENDOR,9.99\n"), 0o644))
	_, err := run(t, dir, "import", csvPath)
	require.NoError(t, err)

	out, err := run(t, dir, "confirm", "--all")
	require.NoError(t, err)
	assert.Contains(t, out, "Nothing ready to confirm")

	out, err = run(t, dir, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "1 transaction(s)")
}

func TestConfirmRejectsUnreadyBatch(t *testing.T) {
	dir := initProject(t)

	csvPath := filepath.Join(dir, "statement.csv")
	require.NoError(t, os.WriteFile(csvPath,
		[]byte("Date,Description,Amount\n2024-03-04,MYSTERY VENDOR,9.99\n"), 0o644))
	_, err := run(t, dir, "import", csvPath)
	require.NoError(t, err)

	e, err := newEnv(dir, zerolog.Nop())
	require.NoError(t, err)
	txns, err := e.pending.Load()
	require.NoError(t, err)
	require.Len(t, txns, 1)

	// Naming the transaction explicitly keeps the all-or-nothing check.
	out, err := run(t, dir, "confirm", txns[0].ID)
	require.Error(t, err)
	assert.Contains(t, out, "not ready")

	out, err = run(t, dir, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "1 transaction(s)")
}

func TestCategorizeValidatesCategory(t *testing.T) {
	dir := initProject(t)
	_, err := run(t, dir, "categorize", "2024-aaaaaaaa", "not-a-category")
	assert.ErrorContains(t, err, "unknown category")
}

func TestIgnoreUnignore(t *testing.T) {
	dir := initProject(t)

	csvPath := filepath.Join(dir, "statement.csv")
	require.NoError(t, os.WriteFile(csvPath,
		[]byte("Date,Description,Amount\n2024-03-04,VENMO PAYMENT,20.00\n"), 0o644))
	_, err := run(t, dir, "import", csvPath)
	require.NoError(t, err)

	e, err := newEnv(dir, zerolog.Nop())
	require.NoError(t, err)
	txns, err := e.pending.Load()
	require.NoError(t, err)
	require.Len(t, txns, 1)
	txnID := txns[0].ID

	_, err = run(t, dir, "ignore", txnID)
	require.NoError(t, err)
	out, err := run(t, dir, "list", "--status", "ignored")
	require.NoError(t, err)
	assert.Contains(t, out, "1 transaction(s)")

	_, err = run(t, dir, "unignore", txnID)
	require.NoError(t, err)
	out, err = run(t, dir, "list", "--status", "uncategorized")
	require.NoError(t, err)
	assert.Contains(t, out, "1 transaction(s)")
}

func TestRulesApplyDryRun(t *testing.T) {
	dir := initProject(t)

	rulesYAML := `rules:
  - id: r1
    name: Groceries
    category: groceries
    conditions:
      - id: r1-c1
        field: description
        match: contains
        value: trader joe
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "rules.yaml"), []byte(rulesYAML), 0o644))

	csvPath := filepath.Join(dir, "statement.csv")
	require.NoError(t, os.WriteFile(csvPath,
		[]byte("Date,Description,Amount\n2024-03-04,SOMETHING ELSE,5.00\n"), 0o644))
	_, err := run(t, dir, "import", csvPath)
	require.NoError(t, err)

	out, err := run(t, dir, "rules", "apply", "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "[dry-run]")

	out, err = run(t, dir, "rules", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Groceries")
	assert.Contains(t, out, "enabled")
}

func TestSuggestOffline(t *testing.T) {
	dir := initProject(t)

	csvPath := filepath.Join(dir, "statement.csv")
	require.NoError(t, os.WriteFile(csvPath,
		[]byte("Date,Description,Amount\n2024-03-04,NETFLIX.COM,15.49\n2024-03-05,UNKNOWN 77,5.00\n"), 0o644))
	_, err := run(t, dir, "import", csvPath)
	require.NoError(t, err)

	// netflix is in the default entertainment keywords, so import
	// already auto-mapped it; only the unknown row is left to suggest
	// for, and the heuristic has nothing for it.
	out, err := run(t, dir, "suggest", "--offline")
	require.NoError(t, err)
	assert.Contains(t, out, "No suggestions")
}
