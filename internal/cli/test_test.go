package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scenarioDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, dir, "colors.yaml", passScenario)
	writeFile(t, dir, "constant_marker.yaml", failScenario)
	return dir
}

func TestTestCommandMissingArgs(t *testing.T) {
	_, err := execute(NewTestCommand(newRootOpts(t, "text")))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg")
}

func TestTestCommandNonExistentScenariosDir(t *testing.T) {
	_, err := execute(NewTestCommand(newRootOpts(t, "text")), "/nonexistent/scenarios")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "scenarios directory not found")
}

func TestTestCommandEmptyScenariosDir(t *testing.T) {
	out, err := execute(NewTestCommand(newRootOpts(t, "text")), t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out, "No scenarios found")
}

func TestTestCommandEmptyScenariosDirJSON(t *testing.T) {
	out, err := execute(NewTestCommand(newRootOpts(t, "json")), t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "ok", decodeResponse(t, out).Status)
}

func TestTestCommand_WantPassWithoutGoldens(t *testing.T) {
	dir := scenarioDir(t)

	out, err := execute(NewTestCommand(newRootOpts(t, "text")), dir)
	require.NoError(t, err, out)
	assert.Contains(t, out, "✓ colors")
	assert.Contains(t, out, "✓ constant_marker")
	assert.Contains(t, out, "Test Summary: 2 passed, 0 failed, 2 total")
}

func TestTestCommand_UpdateThenMatch(t *testing.T) {
	dir := scenarioDir(t)

	out, err := execute(NewTestCommand(newRootOpts(t, "text")), dir, "--update")
	require.NoError(t, err, out)
	assert.Contains(t, out, "✓ colors (golden updated)")
	assert.FileExists(t, filepath.Join(dir, "golden", "colors.golden"))
	assert.FileExists(t, filepath.Join(dir, "golden", "constant_marker.golden"))

	out, err = execute(NewTestCommand(newRootOpts(t, "json")), dir, "--parallel", "1")
	require.NoError(t, err, out)
	resp := decodeResponse(t, out)
	assert.Equal(t, "ok", resp.Status)
	for _, s := range resp.Data.(map[string]any)["scenarios"].([]any) {
		assert.Equal(t, "matched", s.(map[string]any)["golden"])
	}
}

func TestTestCommand_GoldenMismatch(t *testing.T) {
	dir := scenarioDir(t)
	_, err := execute(NewTestCommand(newRootOpts(t, "text")), dir, "--update")
	require.NoError(t, err)

	golden := filepath.Join(dir, "golden", "colors.golden")
	require.NoError(t, os.WriteFile(golden, []byte("stale\n"), 0644))

	out, err := execute(NewTestCommand(newRootOpts(t, "text")), dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ colors")
	assert.Contains(t, out, "does not match golden file")
	assert.Contains(t, out, "Test Summary: 1 passed, 1 failed, 2 total")
}

func TestTestCommand_UnexpectedOutcome(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "wrong.yaml", strings.Replace(failScenario, "want_pass: false", "want_pass: true", 1))

	out, err := execute(NewTestCommand(newRootOpts(t, "text")), dir)
	require.Error(t, err)
	assert.Contains(t, out, "expected pass=true, got pass=false")
	assert.Contains(t, out, "ax0/marker/variation")
}

func TestTestCommand_FilterAndGoldenDir(t *testing.T) {
	dir := scenarioDir(t)
	goldenDir := filepath.Join(t.TempDir(), "snapshots")

	out, err := execute(NewTestCommand(newRootOpts(t, "text")), dir,
		"--filter", "colors", "--golden-dir", goldenDir, "--update")
	require.NoError(t, err, out)
	assert.Contains(t, out, "1 total")
	assert.FileExists(t, filepath.Join(goldenDir, "colors.golden"))
	assert.NoFileExists(t, filepath.Join(dir, "golden", "colors.golden"))
}

func TestTestCommand_LoadErrorsFailTheScenario(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "broken.yaml", "name: [unterminated\n")

	out, err := execute(NewTestCommand(newRootOpts(t, "text")), dir)
	require.Error(t, err)
	assert.Contains(t, out, "✗ broken.yaml")
	assert.Contains(t, out, "failed to load scenario")
}

func TestTestHelpText(t *testing.T) {
	out, err := execute(NewTestCommand(newRootOpts(t, "text")), "--help")
	require.NoError(t, err)
	assert.Contains(t, out, "want_pass")
	assert.Contains(t, out, "--update")
	assert.Contains(t, out, "--parallel")
	assert.Contains(t, out, "scenarios-dir")
}

func TestFindScenarioFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.yaml", "")
	writeFile(t, dir, "a.yml", "")
	writeFile(t, dir, "ignore.txt", "")
	writeFile(t, dir, "figures/fig.yaml", "")

	files, err := findScenarioFiles(dir, "")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.yml"), filepath.Join(dir, "b.yaml")}, files,
		"sorted, top level only")
}

func TestFindScenarioFilesWithFilter(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "legend-split.yaml", "")
	writeFile(t, dir, "legend-unified.yaml", "")
	writeFile(t, dir, "scatter.yaml", "")

	files, err := findScenarioFiles(dir, "legend-*")
	require.NoError(t, err)
	assert.Len(t, files, 2)

	_, err = findScenarioFiles(dir, "[")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid filter pattern")
}

func TestTestOptions_GoldenDir(t *testing.T) {
	opts := &TestOptions{RootOptions: newRootOpts(t, "text")}
	require.NoError(t, opts.resolve())

	assert.Equal(t, filepath.Join("scenarios", "golden"), opts.goldenDir("scenarios"))
	assert.Equal(t, 4, opts.parallel())

	opts.GoldenDir = "/abs/golden"
	opts.Parallel = 9
	assert.Equal(t, "/abs/golden", opts.goldenDir("scenarios"))
	assert.Equal(t, 9, opts.parallel())
}
