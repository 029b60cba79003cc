package directors

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tenureconf/src/codec"
	"tenureconf/src/settings"
)

const testDocument = `<Configuration version="1.2">
  <Profile name="default">
    <ValueLists>
      <ValueList name="status">
        <CodeValue code="1" value="Active"/>
      </ValueList>
    </ValueLists>
    <Entity shortName="party">
      <Columns>
        <Column TYPE_INFO="SERIAL" name="id"/>
      </Columns>
    </Entity>
    <SocialTenure party="party" spatialUnit="" tenureTypeList="status"/>
  </Profile>
</Configuration>`

func newTestService(t *testing.T, args *settings.Arguments) *ConfigService {
	t.Helper()

	logger := zap.NewNop().Sugar()
	store, err := codec.NewSnapshotStore(args.DataDir, logger)
	require.NoError(t, err)

	return NewConfigService(store, codec.UnsupportedUpgrader{}, logger, args)
}

func writeTestDocument(t *testing.T, dir string) string {
	t.Helper()

	path := filepath.Join(dir, "config.stc")
	require.NoError(t, os.WriteFile(path, []byte(testDocument), 0644))
	return path
}

func TestServiceLoadConfiguration(t *testing.T) {
	dir := t.TempDir()
	args := &settings.Arguments{DataDir: dir}
	service := newTestService(t, args)

	require.NoError(t, service.LoadConfiguration(writeTestDocument(t, dir)))

	config := service.Configuration()
	require.Contains(t, config.Profiles, "default")
	assert.NotNil(t, config.Profiles["default"].EntityObjectByName("party"))
	assert.NotNil(t, config.Profiles["default"].EntityObjectByName("status"))
}

func TestServiceSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	args := &settings.Arguments{DataDir: dir}
	service := newTestService(t, args)

	require.NoError(t, service.LoadConfiguration(writeTestDocument(t, dir)))

	savePath := filepath.Join(dir, "roundtrip.stc")
	require.NoError(t, service.SaveConfiguration(savePath))

	second := newTestService(t, args)
	require.NoError(t, second.LoadConfiguration(savePath))
	assert.Contains(t, second.Configuration().Profiles, "default")
}

func TestServiceSnapshotAfterLoad(t *testing.T) {
	dir := t.TempDir()
	args := &settings.Arguments{DataDir: dir, Snapshot: true}
	service := newTestService(t, args)

	path := writeTestDocument(t, dir)
	require.NoError(t, service.LoadConfiguration(path))

	// A fresh service restores the same configuration from the snapshot,
	// even after the file itself is gone.
	require.NoError(t, os.Remove(path))
	restored := newTestService(t, args)
	require.NoError(t, restored.LoadConfiguration(path))
	assert.Contains(t, restored.Configuration().Profiles, "default")
}

func TestServiceUnusableSnapshotFallsBackToFile(t *testing.T) {
	dir := t.TempDir()
	args := &settings.Arguments{DataDir: dir, Snapshot: true}
	service := newTestService(t, args)

	path := writeTestDocument(t, dir)

	// A snapshot whose document no longer parses must not prevent the
	// load; the file is parsed instead.
	store, err := codec.NewSnapshotStore(dir, zap.NewNop().Sugar())
	require.NoError(t, err)
	require.NoError(t, store.WriteSnapshot(service.Configuration(),
		[]byte("<<<not-xml>>>"), SnapshotName(path)))

	require.NoError(t, service.LoadConfiguration(path))
	assert.Contains(t, service.Configuration().Profiles, "default")
}

func TestServiceStaleSnapshotFallsBackToFile(t *testing.T) {
	dir := t.TempDir()
	args := &settings.Arguments{DataDir: dir, Snapshot: true}
	service := newTestService(t, args)

	path := writeTestDocument(t, dir)
	require.NoError(t, service.LoadConfiguration(path))

	// Rewriting the file after the snapshot makes the snapshot stale.
	updated := strings.Replace(testDocument, `name="default"`, `name="updated"`, 1)
	require.NoError(t, os.WriteFile(path, []byte(updated), 0644))
	future := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(path, future, future))

	require.NoError(t, service.LoadConfiguration(path))
	assert.Contains(t, service.Configuration().Profiles, "updated")
}

func TestSnapshotName(t *testing.T) {
	assert.Equal(t, "config", SnapshotName("/data/config.stc"))
	assert.Equal(t, "config", SnapshotName("config"))
}
