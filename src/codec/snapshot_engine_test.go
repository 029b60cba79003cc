package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotRoundTrip(t *testing.T) {
	store, err := NewSnapshotStore(t.TempDir(), testLogger())
	require.NoError(t, err)

	config := buildTestConfiguration()
	document := []byte(`<Configuration version="1.2"><Profile name="default"/></Configuration>`)

	require.NoError(t, store.WriteSnapshot(config, document, "default"))

	snapshot, err := store.ReadSnapshot("default")
	require.NoError(t, err)

	assert.Equal(t, config.Version, snapshot.Version)
	assert.Equal(t, []string{"default"}, snapshot.Profiles)
	assert.Equal(t, document, snapshot.Document)
	assert.False(t, snapshot.WrittenAt.IsZero())
}

func TestReadMissingSnapshotFails(t *testing.T) {
	store, err := NewSnapshotStore(t.TempDir(), testLogger())
	require.NoError(t, err)

	_, err = store.ReadSnapshot("ghost")
	assert.Error(t, err)
}

func TestRemoveSnapshot(t *testing.T) {
	store, err := NewSnapshotStore(t.TempDir(), testLogger())
	require.NoError(t, err)

	config := buildTestConfiguration()
	require.NoError(t, store.WriteSnapshot(config, []byte("<Configuration/>"), "default"))
	require.NoError(t, store.RemoveSnapshot("default"))

	_, err = store.ReadSnapshot("default")
	assert.Error(t, err)
}
