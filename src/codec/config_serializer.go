package codec

import (
	"bytes"
	"fmt"
	"os"
	"strconv"

	"github.com/beevik/etree"
	"go.uber.org/zap"

	"tenureconf/src/helpers"
	"tenureconf/src/schema"
	"tenureconf/src/settings"
)

// ConfigSerializer reads and writes a whole configuration document. The
// configuration it operates on is passed in at construction and reset at
// the start of every load, so a failed load never leaves a mix of old and
// new state.
type ConfigSerializer struct {
	config   *schema.Configuration
	upgrader Upgrader
	profiles *ProfileSerializer
	settings *settings.Arguments
	logger   *zap.SugaredLogger
}

func NewConfigSerializer(config *schema.Configuration, upgrader Upgrader,
	logger *zap.SugaredLogger, args *settings.Arguments) *ConfigSerializer {
	columns := NewColumnRegistry(logger)
	entities := NewEntityRegistry(columns, logger)

	return &ConfigSerializer{
		config:   config,
		upgrader: upgrader,
		profiles: NewProfileSerializer(entities, columns, logger),
		settings: args,
		logger:   logger,
	}
}

// Configuration returns the configuration the serializer operates on.
func (s *ConfigSerializer) Configuration() *schema.Configuration {
	return s.config
}

// Save serializes the configuration to the given path, appending the
// configuration file suffix when absent.
func (s *ConfigSerializer) Save(path string) error {
	if s.config.IsNull() {
		return fmt.Errorf("configuration is empty, nothing to save")
	}
	if path == "" {
		return fmt.Errorf("file path for saving the configuration is empty")
	}

	path = helpers.EnsureSuffix(path, ConfigFileSuffix)

	doc := s.writeDocument()

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("the configuration cannot be saved in %s: %w", path, err)
	}
	defer file.Close()

	if _, err := doc.WriteTo(file); err != nil {
		return fmt.Errorf("the configuration could not be written to %s: %w", path, err)
	}

	if s.settings.Debug {
		s.logger.Debugf("Configuration with %d profile(s) saved to %s",
			len(s.config.Profiles), path)
	}

	return nil
}

// writeDocument builds the document tree from the configuration.
func (s *ConfigSerializer) writeDocument() *etree.Document {
	doc := etree.NewDocument()

	configEl := doc.CreateElement(ConfigurationTag)
	configEl.CreateAttr(VersionAttr, strconv.FormatFloat(s.config.Version, 'f', -1, 64))

	for _, profile := range s.config.ProfileList() {
		s.profiles.Write(profile, configEl)
	}

	doc.Indent(2)

	return doc
}

// Load reads the configuration document at the given path into the
// serializer's configuration.
func (s *ConfigSerializer) Load(path string) error {
	if !helpers.FileExists(path, s.logger) {
		return fmt.Errorf("%s does not exist, configuration file cannot be loaded", path)
	}

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("cannot read configuration file %s: %w", path, err)
	}
	defer file.Close()

	doc := etree.NewDocument()
	if _, err := doc.ReadFrom(file); err != nil {
		return fmt.Errorf("configuration file %s cannot be parsed: %w", path, err)
	}

	return s.readDocument(doc)
}

// LoadBytes parses a configuration document held in memory, such as one
// recovered from a snapshot.
func (s *ConfigSerializer) LoadBytes(data []byte) error {
	doc := etree.NewDocument()
	if _, err := doc.ReadFrom(bytes.NewReader(data)); err != nil {
		return fmt.Errorf("configuration document cannot be parsed: %w", err)
	}

	return s.readDocument(doc)
}

// readDocument applies the version gate and populates the configuration.
// The configuration is reset before the gate runs, so a fatal outcome
// leaves it empty rather than partially populated.
func (s *ConfigSerializer) readDocument(doc *etree.Document) error {
	s.config.Clear()

	version, ok := documentVersion(doc)
	if !ok || version < schema.CurrentVersion {
		upgraded, err := s.upgrader.Upgrade(doc)
		if err != nil {
			return fmt.Errorf("configuration could not be updated to version %v: %w",
				schema.CurrentVersion, err)
		}
		doc = upgraded

		version, ok = documentVersion(doc)
		if !ok || version < schema.CurrentVersion {
			return fmt.Errorf("upgraded configuration still carries an unusable version")
		}
	}

	s.config.Version = version

	root := doc.Root()
	for _, profileEl := range root.SelectElements(ProfileTag) {
		profile := s.profiles.Read(profileEl)
		if profile == nil {
			s.logger.Debugf("Empty profile name in the configuration document, profile skipped")
			continue
		}
		s.config.AddProfile(profile)
	}

	if s.settings.Debug {
		s.logger.Debugf("Loaded configuration version %v with %d profile(s)",
			version, len(s.config.Profiles))
	}

	return nil
}

// documentVersion extracts the version number from the document root. A
// missing root, a wrong root tag, or an unparsable version attribute all
// report false and route the document to the upgrade path.
func documentVersion(doc *etree.Document) (float64, bool) {
	root := doc.Root()
	if root == nil || root.Tag != ConfigurationTag {
		return 0, false
	}

	attr := root.SelectAttr(VersionAttr)
	if attr == nil {
		return 0, false
	}

	version, err := strconv.ParseFloat(attr.Value, 64)
	if err != nil {
		return 0, false
	}

	return version, true
}
