package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestValidate_Golden(t *testing.T) {
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)

	out, err := execute(t, "validate", "--config", "testdata/valid.yaml")
	require.NoError(t, err)
	g.Assert(t, "validate-text", []byte(out))

	out, err = execute(t, "validate", "--config", "testdata/valid.yaml", "--format", "json")
	require.NoError(t, err)
	g.Assert(t, "validate-json", []byte(out))
}

func TestValidate_Verbose(t *testing.T) {
	out, err := execute(t, "validate", "--config", "testdata/valid.yaml", "-v")
	require.NoError(t, err)
	assert.Contains(t, out, "github.com/aws")
	assert.Contains(t, out, "github.com/acme/internal")
}

func TestValidate_SchemaViolation(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("on_exhausted: explode\n"), 0o600))

	out, err := execute(t, "validate", "--config", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "[C004]")
}

func TestValidate_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope.yaml")

	out, err := execute(t, "validate", "--config", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "[C001]")
}

func TestRoot_RejectsUnknownFormat(t *testing.T) {
	_, err := execute(t, "validate", "--config", "testdata/valid.yaml", "--format", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}
