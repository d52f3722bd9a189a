package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uuidfreeze/uuidfreeze/internal/generate"
)

func TestParse_FullDocument(t *testing.T) {
	doc := []byte(`
default_ignore:
  - github.com/aws
  - github.com/jackc/pgx
extend_ignore:
  - github.com/acme/internal/telemetry
on_exhausted: raise
journal: /tmp/uuidfreeze.journal
`)
	cfg, err := Parse(doc, ".uuidfreeze.yaml")
	require.NoError(t, err)

	assert.Equal(t, []string{"github.com/aws", "github.com/jackc/pgx"}, cfg.DefaultIgnore)
	assert.Equal(t, []string{"github.com/acme/internal/telemetry"}, cfg.ExtendIgnore)
	assert.Equal(t, "raise", cfg.OnExhausted)
	assert.Equal(t, "/tmp/uuidfreeze.journal", cfg.Journal)

	assert.Equal(t, []string{
		"github.com/aws",
		"github.com/jackc/pgx",
		"github.com/acme/internal/telemetry",
	}, cfg.IgnorePrefixes())

	p, err := cfg.Policy()
	require.NoError(t, err)
	assert.Equal(t, generate.PolicyRaise, p)
}

func TestParse_EmptyDocumentUsesDefaults(t *testing.T) {
	cfg, err := Parse([]byte("{}\n"), ".uuidfreeze.yaml")
	require.NoError(t, err)

	assert.Empty(t, cfg.IgnorePrefixes())
	assert.Empty(t, cfg.Journal)
	p, err := cfg.Policy()
	require.NoError(t, err)
	assert.Equal(t, generate.PolicyCycle, p)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		code string
	}{
		{
			name: "unknown key",
			doc:  "defualt_ignore: [github.com/aws]\n",
			code: ErrCodeSchema,
		},
		{
			name: "bad policy value",
			doc:  "on_exhausted: explode\n",
			code: ErrCodeSchema,
		},
		{
			name: "ignore entry not a string",
			doc:  "default_ignore: [42]\n",
			code: ErrCodeSchema,
		},
		{
			name: "empty ignore prefix",
			doc:  "default_ignore: [\"\"]\n",
			code: ErrCodeSchema,
		},
		{
			name: "not yaml",
			doc:  ":{[\n",
			code: ErrCodeParse,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.doc), "test.yaml")
			require.Error(t, err)
			var cfgErr *Error
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tc.code, cfgErr.Code)
		})
	}
}

func TestLoad_FileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, DefaultFilename)
	require.NoError(t, os.WriteFile(path, []byte("extend_ignore: [github.com/aws]\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"github.com/aws"}, cfg.IgnorePrefixes())
}

func TestLoad_Missing(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFilename)

	_, err := Load(path)
	require.Error(t, err)
	var cfgErr *Error
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, ErrCodeNotFound, cfgErr.Code)

	cfg, err := LoadIfPresent(path)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestErrorString(t *testing.T) {
	withField := &Error{Code: ErrCodeSchema, Field: "on_exhausted", Message: "bad value"}
	assert.Equal(t, "[C004] on_exhausted: bad value", withField.Error())

	noField := &Error{Code: ErrCodeRead, Message: "boom"}
	assert.Equal(t, "[C002] boom", noField.Error())
}
