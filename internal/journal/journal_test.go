package journal

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uuidfreeze/uuidfreeze/internal/track"
)

func record(seq int64, module string, synthetic bool) track.Record {
	return track.Record{
		Seq:       seq,
		Value:     uuid.New(),
		Synthetic: synthetic,
		Version:   4,
		Module:    module,
		File:      module + "/file.go",
		Line:      int(seq),
		Function:  "call",
	}
}

func TestJournal_RecordAndQuery(t *testing.T) {
	j, err := OpenMemory()
	require.NoError(t, err)
	defer j.Close()

	j.Record("uuid4", record(1, "github.com/acme/app", true))
	j.Record("uuid4", record(2, "github.com/acme/libx", false))
	j.Record("uuid7", record(3, "github.com/acme/app/service", true))

	ctx := context.Background()

	all, err := j.Calls(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, int64(1), all[0].Seq)
	assert.Equal(t, int64(3), all[2].Seq)
	assert.Equal(t, "uuid4", all[0].Channel)
	assert.Equal(t, 4, all[0].Version)
	assert.True(t, all[0].Synthetic)
	assert.Equal(t, "github.com/acme/app/file.go", all[0].File)

	byChannel, err := j.Calls(ctx, Filter{Channel: "uuid7"})
	require.NoError(t, err)
	require.Len(t, byChannel, 1)
	assert.Equal(t, int64(3), byChannel[0].Seq)

	byModule, err := j.Calls(ctx, Filter{ModulePrefix: "github.com/acme/app"})
	require.NoError(t, err)
	require.Len(t, byModule, 2)

	synthetic, err := j.Calls(ctx, Filter{SyntheticOnly: true})
	require.NoError(t, err)
	require.Len(t, synthetic, 2)

	n, err := j.Count(ctx, Filter{Channel: "uuid4"})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestJournal_NamespaceRoundTrip(t *testing.T) {
	j, err := OpenMemory()
	require.NoError(t, err)
	defer j.Close()

	rec := record(1, "github.com/acme/app", false)
	rec.Version = 5
	rec.Namespace = uuid.NameSpaceDNS
	rec.Name = "example.com"
	j.Record("uuid5", rec)

	entries, err := j.Calls(context.Background(), Filter{Channel: "uuid5"})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, uuid.NameSpaceDNS, entries[0].Namespace)
	assert.Equal(t, "example.com", entries[0].Name)
}

func TestJournal_Summary(t *testing.T) {
	j, err := OpenMemory()
	require.NoError(t, err)
	defer j.Close()

	j.Record("uuid4", record(1, "a", true))
	j.Record("uuid4", record(2, "a", true))
	j.Record("uuid1", record(3, "a", false))

	sum, err := j.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"uuid4": 2, "uuid1": 1}, sum)
}

func TestJournal_FilePersistsAcrossOpens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.journal")

	j, err := Open(path)
	require.NoError(t, err)
	j.Record("uuid4", record(1, "github.com/acme/app", true))
	require.NoError(t, j.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	entries, err := reopened.Calls(context.Background(), Filter{})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, int64(1), entries[0].Seq)
}

func TestJournal_ModulePrefixEscapesLikeMetachars(t *testing.T) {
	j, err := OpenMemory()
	require.NoError(t, err)
	defer j.Close()

	j.Record("uuid4", record(1, "github.com/acme/a_b", true))
	j.Record("uuid4", record(2, "github.com/acme/axb", true))

	entries, err := j.Calls(context.Background(), Filter{ModulePrefix: "github.com/acme/a_b"})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, int64(1), entries[0].Seq)
}
