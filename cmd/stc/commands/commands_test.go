package commands

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	configPath, searchPaths, debug, verbose, checkJSON = "", nil, false, false, false

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(append([]string{args[0], "-c", "testdata/stc.yaml"}, args[1:]...))
	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestCheckClean(t *testing.T) {
	stdout, _, err := run(t, "check", "testdata/ok.yaml")
	require.NoError(t, err)
	assert.Empty(t, stdout)
}

func TestCheckReportsDiagnostics(t *testing.T) {
	stdout, _, err := run(t, "check", "testdata/ok.yaml", "testdata/bad.yaml")
	require.ErrorIs(t, err, errDiagnostics)
	assert.Contains(t, stdout, "testdata/bad.yaml:8:")
	assert.Contains(t, stdout, "error: Cannot assign value of type java.lang.String to variable of type int [IncompatibleAssignment]")
	assert.Contains(t, stdout, "Cannot find matching method java.lang.String#frobnicate()")
	assert.NotContains(t, stdout, "ok.yaml")
	assert.NotContains(t, stdout, "\x1b[", "colors are only used on terminals")
}

func TestCheckJSON(t *testing.T) {
	stdout, _, err := run(t, "check", "--json", "testdata/bad.yaml")
	require.ErrorIs(t, err, errDiagnostics)

	var diags []jsonDiagnostic
	require.NoError(t, json.Unmarshal([]byte(stdout), &diags))
	require.Len(t, diags, 2)
	assert.Equal(t, "testdata/bad.yaml", diags[0].File)
	assert.Equal(t, 8, diags[0].Line)
	assert.Equal(t, "IncompatibleAssignment", diags[0].Type)
	assert.Equal(t, "MethodNotFound", diags[1].Type)
}

func TestCheckMissingUnit(t *testing.T) {
	_, stderr, err := run(t, "check", "testdata/nope.yaml")
	require.ErrorIs(t, err, errDiagnostics)
	assert.Contains(t, stderr, "testdata/nope.yaml: reading unit")
}

func TestDump(t *testing.T) {
	stdout, _, err := run(t, "dump", "testdata/ok.yaml")
	require.NoError(t, err)
	assert.Contains(t, stdout, "class demo.Greeter\n")
	assert.Contains(t, stdout, "method greet(java.lang.String): java.lang.String\n")
	assert.Contains(t, stdout, "MethodCallExpr toUpperCase : java.lang.String -> java.lang.String#toUpperCase()")
}

func TestVersion(t *testing.T) {
	stdout, _, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, stdout, "stc version dev")
}
