package codec

import (
	"fmt"
	"os"
	"path/filepath"
	"syscall"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/sys/unix"

	"tenureconf/src/helpers"
	"tenureconf/src/schema"
)

// Snapshot is the decoded form of a snapshot file: the last successfully
// loaded configuration document plus enough metadata to describe it
// without re-parsing.
type Snapshot struct {
	Version   float64
	Profiles  []string
	WrittenAt time.Time
	Document  []byte
}

// SnapshotStore persists and recovers configuration snapshots.
type SnapshotStore interface {
	WriteSnapshot(config *schema.Configuration, document []byte, name string) error
	ReadSnapshot(name string) (*Snapshot, error)
	RemoveSnapshot(name string) error
}

type SnapshotStorageEngine struct {
	DataDirectory string
	logger        *zap.SugaredLogger
}

func NewSnapshotStore(dataDir string, logger *zap.SugaredLogger) (*SnapshotStorageEngine, error) {
	store := &SnapshotStorageEngine{
		DataDirectory: dataDir,
		logger:        logger,
	}

	// Ensure the data directory exists
	if err := os.MkdirAll(store.DataDirectory, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory %s: %w", store.DataDirectory, err)
	}

	return store, nil
}

func snapshotFileName(name string) string {
	return fmt.Sprintf("%s.%s", name, SnapshotFileSuffix)
}

// WriteSnapshot encodes the configuration metadata and the raw document
// into a BSON snapshot file.
func (s *SnapshotStorageEngine) WriteSnapshot(config *schema.Configuration,
	document []byte, name string) error {
	profiles := make([]string, 0, len(config.Profiles))
	for _, profile := range config.ProfileList() {
		profiles = append(profiles, profile.Name)
	}

	data, err := helpers.EncodeBSON(map[string]interface{}{
		"version":   config.Version,
		"profiles":  profiles,
		"writtenAt": time.Now().UTC(),
		"document":  document,
	})
	if err != nil {
		return fmt.Errorf("error encoding snapshot %s: %w", name, err)
	}

	filePath := filepath.Join(s.DataDirectory, snapshotFileName(name))
	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return fmt.Errorf("error writing snapshot file %s: %w", filePath, err)
	}

	s.logger.Infof("Snapshot %s written with %d profile(s)", name, len(profiles))

	return nil
}

// ReadSnapshot memory maps the snapshot file and decodes it.
func (s *SnapshotStorageEngine) ReadSnapshot(name string) (*Snapshot, error) {
	fileName := snapshotFileName(name)

	snapshotFile, err := helpers.OpenDataFile(s.DataDirectory, fileName)
	if err != nil {
		return nil, fmt.Errorf("error opening snapshot file %s: %w", fileName, err)
	}
	defer snapshotFile.Close()

	stat, err := snapshotFile.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot file stats: %w", err)
	}
	fileSize := int(stat.Size())
	if fileSize == 0 {
		return nil, fmt.Errorf("snapshot file %s is empty", fileName)
	}

	// Memory map the file
	data, err := unix.Mmap(int(snapshotFile.Fd()), 0, fileSize, syscall.PROT_READ, syscall.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("failed to memory map snapshot file %s: %w", fileName, err)
	}
	defer unix.Munmap(data)

	decoded, err := helpers.DecodeBSON(data)
	if err != nil {
		return nil, fmt.Errorf("error decoding snapshot data from file %s: %w", fileName, err)
	}

	return snapshotFromDecoded(decoded, fileName)
}

func (s *SnapshotStorageEngine) RemoveSnapshot(name string) error {
	return helpers.DeleteDataFile(filepath.Join(s.DataDirectory, snapshotFileName(name)))
}

// snapshotFromDecoded maps the loosely typed BSON decode result onto a
// Snapshot value.
func snapshotFromDecoded(decoded map[string]interface{}, fileName string) (*Snapshot, error) {
	snapshot := &Snapshot{}

	version, ok := decoded["version"].(float64)
	if !ok {
		return nil, fmt.Errorf("snapshot %s carries no version", fileName)
	}
	snapshot.Version = version

	if profiles, ok := decoded["profiles"].(primitive.A); ok {
		for _, p := range profiles {
			if name, ok := p.(string); ok {
				snapshot.Profiles = append(snapshot.Profiles, name)
			}
		}
	}

	if writtenAt, ok := decoded["writtenAt"].(primitive.DateTime); ok {
		snapshot.WrittenAt = writtenAt.Time()
	}

	document, ok := decoded["document"].(primitive.Binary)
	if !ok || len(document.Data) == 0 {
		return nil, fmt.Errorf("snapshot %s carries no configuration document", fileName)
	}
	snapshot.Document = document.Data

	return snapshot, nil
}
