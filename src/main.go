package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"go.uber.org/zap"

	"tenureconf/src/codec"
	"tenureconf/src/directors"
	"tenureconf/src/settings"
)

// printUsage prints helpful usage information
func printUsage() {
	log.Println("tenureconf - profile configuration codec")
	log.Println("\nUsage:")
	log.Println("  tenureconf [options]")
	log.Println("\nOptions:")
	flag.PrintDefaults()

	log.Println("\nExamples:")
	log.Println("  tenureconf --load=configuration.stc")
	log.Println("  tenureconf --load=configuration.stc --save=roundtrip.stc")
	log.Println("  tenureconf --load=configuration.stc --snapshot --datadir=/data")
}

func main() {
	// Get the global settings instance
	args := settings.GetSettings()

	// Define command line flags that map to the Arguments struct
	flag.StringVar(&args.ConfigFile, "load", "", "Path to the configuration file to load")
	flag.StringVar(&args.SaveFile, "save", "", "Path to re-save the loaded configuration to")
	flag.StringVar(&args.DataDir, "datadir", "./datafiles", "Directory to store snapshot files")
	flag.StringVar(&args.LogDir, "logdir", "", "Directory to store log files (default: stdout)")
	flag.BoolVar(&args.Snapshot, "snapshot", false, "Write a snapshot after a successful load")
	flag.BoolVar(&args.Verbose, "verbose", false, "Enable verbose logging")
	flag.BoolVar(&args.Debug, "debug", false, "Enable debug mode")
	flag.BoolVar(&args.PrintToScreen, "print", true, "Print log messages to screen")
	flag.StringVar(&args.Version, "version", "0.1.0", "Shows version")

	// Parse the command line
	flag.Parse()

	// Validate the arguments
	if err := validateArguments(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n\n", err)
		printUsage()
		os.Exit(1)
	}

	logger, err := initLogger(args)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	sugar := logger.Sugar()

	if args.Verbose {
		sugar.Infof("tenureconf starting with options:")
		sugar.Infof("  Configuration File: %s", args.ConfigFile)
		sugar.Infof("  Save File: %s", args.SaveFile)
		sugar.Infof("  Data Directory: %s", args.DataDir)
		sugar.Infof("  Snapshot: %v", args.Snapshot)
		sugar.Infof("  Debug: %v", args.Debug)
	}

	// Create the snapshot store
	store, err := codec.NewSnapshotStore(args.DataDir, sugar)
	if err != nil {
		sugar.Fatalf("Failed to create snapshot store: %v", err)
	}

	// Create the service
	service := directors.NewConfigService(store, codec.UnsupportedUpgrader{}, sugar, args)

	if err := service.LoadConfiguration(args.ConfigFile); err != nil {
		sugar.Fatalf("Failed to load configuration: %v", err)
	}

	for _, profile := range service.Configuration().ProfileList() {
		sugar.Infof("Profile %s: %d entity object(s), %d relation(s)",
			profile.Name, len(profile.Entities), len(profile.Relations))
	}

	if args.SaveFile != "" {
		if err := service.SaveConfiguration(args.SaveFile); err != nil {
			sugar.Fatalf("Failed to save configuration: %v", err)
		}
	}
}

func initLogger(args *settings.Arguments) (*zap.Logger, error) {
	var logger *zap.Logger
	var err error

	if args.Debug {
		// Development configuration with more verbose output
		z := zap.NewDevelopmentConfig()
		z.OutputPaths = []string{"stdout"}
		if args.LogDir != "" {
			z.OutputPaths = append(z.OutputPaths, args.LogDir)
		}
		logger, err = z.Build()
	} else {
		// Production configuration
		logger, err = zap.NewProduction()
	}

	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	// Replace standard log with zap
	zap.ReplaceGlobals(logger)

	return logger, nil
}

// validateArguments validates the arguments and returns an error if invalid
func validateArguments(args *settings.Arguments) error {
	if args.ConfigFile == "" {
		return fmt.Errorf("no configuration file specified, use --load")
	}

	// Check if the configuration file exists and is readable
	if _, err := os.Stat(args.ConfigFile); err != nil {
		return fmt.Errorf("could not access configuration file: %w", err)
	}

	// Check if the data directory exists and is accessible
	dirInfo, err := os.Stat(args.DataDir)
	if err != nil {
		if os.IsNotExist(err) {
			// Try to create the directory
			if err := os.MkdirAll(args.DataDir, 0755); err != nil {
				return fmt.Errorf("could not create data directory: %w", err)
			}
		} else {
			return fmt.Errorf("error accessing data directory: %w", err)
		}
	} else if !dirInfo.IsDir() {
		return fmt.Errorf("data directory path exists but is not a directory: %s", args.DataDir)
	}

	return nil
}
