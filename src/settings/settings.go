package settings

import "sync"

type Arguments struct {
	// The file path to the configuration file to load
	ConfigFile string

	// Directory where configuration snapshots are stored
	DataDir string

	// Directory to store log files
	LogDir string

	// Target path for re-saving a loaded configuration
	SaveFile string

	// Write a snapshot of the configuration after a successful load
	Snapshot bool

	// Strongly verbose logging
	Verbose bool

	// Enable debug mode
	Debug bool

	// Print log messages to screen in addition to the log file
	PrintToScreen bool

	Version string
}

var (
	instance *Arguments
	once     sync.Once
)

// GetSettings returns the process-wide settings instance.
func GetSettings() *Arguments {
	once.Do(func() {
		instance = &Arguments{}
	})
	return instance
}
