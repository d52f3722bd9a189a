package cli

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uuidfreeze/uuidfreeze/internal/generate"
)

func genLines(t *testing.T, args ...string) []string {
	t.Helper()
	out, err := execute(t, append([]string{"gen"}, args...)...)
	require.NoError(t, err)
	return strings.Split(strings.TrimRight(out, "\n"), "\n")
}

func TestGen_DeterministicForSeed(t *testing.T) {
	first := genLines(t, "--seed", "42", "--count", "5")
	second := genLines(t, "--seed", "42", "--count", "5")
	assert.Equal(t, first, second)
	require.Len(t, first, 5)

	for _, line := range first {
		v, err := uuid.Parse(line)
		require.NoError(t, err)
		assert.Equal(t, uuid.Version(4), v.Version())
		assert.Equal(t, uuid.RFC4122, v.Variant())
	}
}

func TestGen_MatchesLibraryStream(t *testing.T) {
	lines := genLines(t, "--channel", "uuid7", "--seed", "1234", "--count", "3")

	gen, err := generate.NewSeeded(7, 1234)
	require.NoError(t, err)
	for i, line := range lines {
		want, err := gen.Next()
		require.NoError(t, err)
		assert.Equal(t, want.String(), line, "line %d", i)
	}
}

func TestGen_TestIDMatchesIdentifierSeed(t *testing.T) {
	lines := genLines(t, "--test-id", "pkg/auth.TestLogin", "--count", "2")

	gen, err := generate.NewSeeded(4, generate.IdentifierSeed("pkg/auth.TestLogin"))
	require.NoError(t, err)
	for i, line := range lines {
		want, err := gen.Next()
		require.NoError(t, err)
		assert.Equal(t, want.String(), line, "line %d", i)
	}
}

func TestGen_PinnedNode(t *testing.T) {
	lines := genLines(t, "--channel", "uuid1", "--seed", "7",
		"--node", "0x112233445566", "--clock-seq", "100")
	require.Len(t, lines, 1)

	v, err := uuid.Parse(lines[0])
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(1), v.Version())
	assert.Equal(t, []byte{0x11, 0x22, 0x33, 0x44, 0x55, 0x66}, v[10:16])
}

func TestGen_JSONEnvelope(t *testing.T) {
	out, err := execute(t, "gen", "--seed", "9", "--count", "2", "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Status string    `json:"status"`
		Data   GenResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "uuid4", resp.Data.Channel)
	assert.Equal(t, int64(9), resp.Data.Seed)
	assert.Len(t, resp.Data.UUIDs, 2)
}

func TestGen_FlagValidation(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"no seed source", []string{"gen"}},
		{"both seed sources", []string{"gen", "--seed", "1", "--test-id", "x"}},
		{"namespace channel", []string{"gen", "--channel", "uuid5", "--seed", "1"}},
		{"unknown channel", []string{"gen", "--channel", "uuid9", "--seed", "1"}},
		{"zero count", []string{"gen", "--seed", "1", "--count", "0"}},
		{"node on uuid4", []string{"gen", "--seed", "1", "--node", "5"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := execute(t, tc.args...)
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))
		})
	}
}
