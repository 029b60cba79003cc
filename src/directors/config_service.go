package directors

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"

	"tenureconf/src/codec"
	"tenureconf/src/schema"
	"tenureconf/src/settings"
)

// ConfigService owns the configuration lifecycle: it holds the single
// in-memory configuration, drives the serializer and the snapshot store,
// and serializes operations so that only one load or save runs at a time.
type ConfigService struct {
	config     *schema.Configuration
	serializer *codec.ConfigSerializer
	store      codec.SnapshotStore
	settings   *settings.Arguments
	logger     *zap.SugaredLogger
	inFlight   sync.Mutex
}

func NewConfigService(store codec.SnapshotStore, upgrader codec.Upgrader,
	logger *zap.SugaredLogger, args *settings.Arguments) *ConfigService {
	config := schema.NewConfiguration()

	return &ConfigService{
		config:     config,
		serializer: codec.NewConfigSerializer(config, upgrader, logger, args),
		store:      store,
		settings:   args,
		logger:     logger,
	}
}

// Configuration returns the in-memory configuration.
func (s *ConfigService) Configuration() *schema.Configuration {
	return s.config
}

// acquire takes the in-flight guard or reports which operation was
// rejected.
func (s *ConfigService) acquire(operation string) error {
	if !s.inFlight.TryLock() {
		return fmt.Errorf("%s rejected: another load or save is in progress", operation)
	}
	return nil
}

// LoadConfiguration loads the configuration document at the given path,
// replacing the in-memory configuration. When snapshotting is enabled, a
// fresh snapshot of the document is preferred over parsing it again, and a
// snapshot of the loaded document is written afterwards.
func (s *ConfigService) LoadConfiguration(path string) error {
	if err := s.acquire("load"); err != nil {
		return err
	}
	defer s.inFlight.Unlock()

	if s.settings.Snapshot && s.restoreFromSnapshot(path) {
		return nil
	}

	if err := s.serializer.Load(path); err != nil {
		return err
	}

	s.logger.Infof("Loaded configuration from %s with %d profile(s)",
		path, len(s.config.Profiles))

	if s.settings.Snapshot {
		if err := s.writeSnapshot(path); err != nil {
			// Snapshotting is best effort; the load itself succeeded.
			s.logger.Warnf("Snapshot of %s failed: %v", path, err)
		}
	}

	return nil
}

// SaveConfiguration writes the in-memory configuration to the given path.
func (s *ConfigService) SaveConfiguration(path string) error {
	if err := s.acquire("save"); err != nil {
		return err
	}
	defer s.inFlight.Unlock()

	return s.serializer.Save(path)
}

// restoreFromSnapshot tries to restore the configuration from the snapshot
// of the given configuration file. The snapshot is a cache: when it is
// missing, older than the file, or holds an unusable document, the caller
// loads the file itself.
func (s *ConfigService) restoreFromSnapshot(path string) bool {
	name := SnapshotName(path)

	snapshot, err := s.store.ReadSnapshot(name)
	if err != nil {
		s.logger.Debugf("Snapshot %s is unavailable, loading %s instead: %v",
			name, path, err)
		return false
	}

	if info, err := os.Stat(path); err == nil && info.ModTime().After(snapshot.WrittenAt) {
		s.logger.Debugf("Snapshot %s is older than %s, loading the file instead",
			name, path)
		return false
	}

	if err := s.serializer.LoadBytes(snapshot.Document); err != nil {
		s.logger.Warnf("Snapshot %s holds an unusable document, loading %s instead: %v",
			name, path, err)
		return false
	}

	s.logger.Infof("Restored configuration from snapshot %s (written %s)",
		name, snapshot.WrittenAt.Format("2006-01-02 15:04:05"))

	return true
}

func (s *ConfigService) writeSnapshot(path string) error {
	document, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("cannot re-read %s for snapshotting: %w", path, err)
	}

	return s.store.WriteSnapshot(s.config, document, SnapshotName(path))
}

// SnapshotName derives the snapshot name from a configuration file path.
func SnapshotName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
