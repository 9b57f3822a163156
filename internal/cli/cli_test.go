package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/wgrid/internal/value"
)

var (
	defsDir      = filepath.Join("..", "compiler", "testdata", "defs")
	scenariosDir = filepath.Join("..", "harness", "testdata", "scenarios")
	goldenDir    = filepath.Join("..", "harness", "testdata", "golden")
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

type envelope struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
	Error  *CLIError       `json:"error"`
}

func decode(t *testing.T, out string) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal([]byte(out), &env), out)
	return env
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	assert.Equal(t, "wgrid", cmd.Use)

	for _, name := range []string{"validate", "seed", "load", "apply", "test"} {
		sub, _, err := cmd.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, sub.Name())
	}

	verbose := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verbose)
	assert.Equal(t, "v", verbose.Shorthand)
	assert.Equal(t, "text", cmd.PersistentFlags().Lookup("format").DefValue)
	assert.Equal(t, "sqlite3", cmd.PersistentFlags().Lookup("driver").DefValue)
}

func TestRootCommand_RejectsBadGlobals(t *testing.T) {
	_, err := execute(t, "validate", defsDir, "--format", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")

	_, err = execute(t, "validate", defsDir, "--driver", "mysql")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid driver")
}

func TestExitCodes(t *testing.T) {
	assert.Equal(t, ExitSuccess, GetExitCode(nil))
	assert.Equal(t, ExitFailure, GetExitCode(assert.AnError))
	assert.Equal(t, ExitCommandError, GetExitCode(NewExitError(ExitCommandError, "x")))

	wrapped := WrapExitError(ExitFailure, "outer", assert.AnError)
	assert.ErrorIs(t, wrapped, assert.AnError)
	assert.Contains(t, wrapped.Error(), "outer: ")
}

func TestOutputFormatter(t *testing.T) {
	var buf bytes.Buffer
	f := &OutputFormatter{Format: "json", Writer: &buf}
	require.NoError(t, f.Success(map[string]int{"n": 1}, nil))
	assert.JSONEq(t, `{"status":"ok","data":{"n":1}}`, buf.String())

	buf.Reset()
	err := f.Fail(ExitFailure, ErrCodeInvalid, "bad", []string{"a"})
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.JSONEq(t, `{"status":"error","error":{"code":"E002","message":"bad","details":["a"]}}`, buf.String())

	buf.Reset()
	f.Format = "text"
	_ = f.Fail(ExitCommandError, ErrCodeNotFound, "missing", []string{"one", "two"})
	assert.Equal(t, "Error [E001]: missing\n  one\n  two\n", buf.String())

	buf.Reset()
	require.NoError(t, f.Success("plain", nil))
	assert.Equal(t, "plain\n", buf.String())
}

func TestValidate(t *testing.T) {
	out, err := execute(t, "validate", defsDir)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ 2 grid(s) valid in 1 file(s)")
	assert.Contains(t, out, "items: 5 field(s)")

	out, err = execute(t, "validate", defsDir, "--format", "json")
	require.NoError(t, err)
	env := decode(t, out)
	assert.Equal(t, "ok", env.Status)

	var result struct {
		Valid bool `json:"valid"`
		Grids []struct {
			Name    string         `json:"name"`
			Fields  []string       `json:"fields"`
			Insert  bool           `json:"insert"`
			Options map[string]any `json:"options"`
		} `json:"grids"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.True(t, result.Valid)
	require.Len(t, result.Grids, 2)
	assert.Equal(t, "codes", result.Grids[0].Name)
	assert.False(t, result.Grids[0].Insert)
	assert.Equal(t, []string{"check", "name", "qty", "use", "note"}, result.Grids[1].Fields)
	assert.True(t, result.Grids[1].Insert)
	assert.Equal(t, true, result.Grids[1].Options["isPaging"])
}

func TestValidate_Errors(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "bad.cue"), `package bad

grid: dup: fields: [{name: "a"}, {name: "a"}]
`)
	out, err := execute(t, "validate", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "Error [E006]: 1 validation error(s)")
	assert.Contains(t, out, "E102")

	out, err = execute(t, "validate", filepath.Join(dir, "missing"), "--format", "json")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	env := decode(t, out)
	assert.Equal(t, "error", env.Status)
	assert.Equal(t, ErrCodeNotFound, env.Error.Code)
}

func seedDB(t *testing.T, grid string) string {
	t.Helper()
	dir := t.TempDir()
	db := filepath.Join(dir, "grid.db")
	rows := filepath.Join(dir, "rows.jsonc")
	writeFile(t, rows, `[
  // keys are assigned by the database
  {"name": "a", "qty": 1},
  {"name": "b", "qty": 2},
  {"name": "c", "qty": 3},
]`)
	out, err := execute(t, "seed", "--db", db, "--grid", grid, rows, "--format", "json")
	require.NoError(t, err, out)

	var result SeedResult
	require.NoError(t, json.Unmarshal(decode(t, out).Data, &result))
	assert.Equal(t, []int64{1, 2, 3}, result.IDs)
	return db
}

func TestSeedAndLoad(t *testing.T) {
	db := seedDB(t, "items")

	out, err := execute(t, "load", "--db", db, "--grid", "items")
	require.NoError(t, err)
	assert.Equal(t,
		"1\tSELECT\t{\"id\":1,\"name\":\"a\",\"qty\":1}\n"+
			"2\tSELECT\t{\"id\":2,\"name\":\"b\",\"qty\":2}\n"+
			"3\tSELECT\t{\"id\":3,\"name\":\"c\",\"qty\":3}\n"+
			"3 row(s)\n",
		out)

	out, err = execute(t, "load", "--db", db, "--grid", "items", "--size", "2", "--page", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "1\tSELECT\t{\"id\":3,\"name\":\"c\",\"qty\":3}\n")
	assert.Contains(t, out, "page 2/2 (3 row(s))")

	out, err = execute(t, "load", "--db", db, "--grid", "items", "--filter", "qty=2", "--format", "json")
	require.NoError(t, err)
	var result struct {
		Rows []map[string]any `json:"rows"`
	}
	require.NoError(t, json.Unmarshal(decode(t, out).Data, &result))
	require.Len(t, result.Rows, 1)
	assert.Equal(t, "b", result.Rows[0]["name"])
	assert.Equal(t, "SELECT", result.Rows[0]["_state"])
}

func TestLoad_WithDefinitions(t *testing.T) {
	db := seedDB(t, "items")
	out, err := execute(t, "load", "--db", db, "--grid", "items", "--defs", defsDir)
	require.NoError(t, err)
	assert.Contains(t, out, "3 row(s)")

	_, err = execute(t, "load", "--db", db, "--grid", "nope", "--defs", defsDir)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestLoad_OptionFile(t *testing.T) {
	db := seedDB(t, "items")
	options := filepath.Join("..", "compiler", "testdata", "options")

	out, err := execute(t, "load", "--db", db, "--grid", "items", "--options", filepath.Join(options, "paging.yaml"))
	require.NoError(t, err)
	assert.Contains(t, out, "3 row(s)")

	out, err = execute(t, "load", "--db", db, "--grid", "items", "--options", filepath.Join(options, "typo.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E002]")
}

func TestParseFilters(t *testing.T) {
	f, err := parseFilters([]string{"a=1", "b=x", "c=true", `d="7"`, "e=nick"})
	require.NoError(t, err)
	assert.Equal(t, "1", string(mustCanonical(t, f["a"])))
	assert.Equal(t, `"x"`, string(mustCanonical(t, f["b"])))
	assert.Equal(t, "true", string(mustCanonical(t, f["c"])))
	assert.Equal(t, `"7"`, string(mustCanonical(t, f["d"])))
	assert.Equal(t, `"nick"`, string(mustCanonical(t, f["e"])))

	_, err = parseFilters([]string{"novalue"})
	assert.Error(t, err)
}

func mustCanonical(t *testing.T, v value.Value) []byte {
	t.Helper()
	data, err := value.MarshalCanonical(v)
	require.NoError(t, err)
	return data
}

func TestApply(t *testing.T) {
	db := seedDB(t, "edit_and_submit")

	out, err := execute(t, "apply", "--db", db, filepath.Join(scenariosDir, "edit_and_submit.yaml"))
	require.NoError(t, err, out)
	assert.Contains(t, out, "✓ edit_and_submit: 9 step(s) on edit_and_submit")
	assert.Contains(t, out, "inserted 1, updated 1, deleted 1")

	out, err = execute(t, "load", "--db", db, "--grid", "edit_and_submit")
	require.NoError(t, err)
	assert.Contains(t, out, `{"id":1,"name":"a2","qty":1}`)
	assert.Contains(t, out, `{"id":4,"name":"d","qty":4}`)
	assert.NotContains(t, out, `"name":"b"`)
}

func TestApply_FailingScenario(t *testing.T) {
	db := seedDB(t, "items")

	out, err := execute(t, "apply", "--db", db, "--grid", "empty",
		filepath.Join(scenariosDir, "edit_and_submit.yaml"), "--format", "json")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	env := decode(t, out)
	assert.Equal(t, ErrCodeScenario, env.Error.Code)
}

func TestTestCommand(t *testing.T) {
	out, err := execute(t, "test", scenariosDir, "--golden", goldenDir)
	require.NoError(t, err, out)
	assert.Contains(t, out, "✓ edit_and_submit")
	assert.Contains(t, out, "✓ checkbox_defs")
	assert.Contains(t, out, "2 passed, 0 failed, 2 total")
}

func TestTestCommand_UpdateThenMatch(t *testing.T) {
	golden := t.TempDir()

	out, err := execute(t, "test", scenariosDir, "--golden", golden, "--update", "--filter", "edit_*")
	require.NoError(t, err, out)
	assert.Contains(t, out, "✓ edit_and_submit (golden updated)")

	written, err := os.ReadFile(filepath.Join(golden, "edit_and_submit.golden"))
	require.NoError(t, err)
	expected, err := os.ReadFile(filepath.Join(goldenDir, "edit_and_submit.golden"))
	require.NoError(t, err)
	assert.Equal(t, string(expected), string(written))

	out, err = execute(t, "test", scenariosDir, "--golden", golden, "--format", "json")
	require.NoError(t, err, out)
	var result TestResult
	require.NoError(t, json.Unmarshal(decode(t, out).Data, &result))
	assert.Equal(t, 2, result.Passed)
	golds := map[string]string{}
	for _, sr := range result.Scenarios {
		golds[sr.Name] = sr.Golden
	}
	assert.Equal(t, map[string]string{"checkbox_defs": "missing", "edit_and_submit": "match"}, golds)
}

func TestTestCommand_Mismatch(t *testing.T) {
	golden := t.TempDir()
	writeFile(t, filepath.Join(golden, "edit_and_submit.golden"), "stale\n")

	out, err := execute(t, "test", scenariosDir, "--golden", golden, "--filter", "edit_*")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ edit_and_submit")
	assert.Contains(t, out, "does not match golden file")
}

func TestTestCommand_MissingDir(t *testing.T) {
	_, err := execute(t, "test", filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
