package helpers

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	"tenureconf/src/settings"
)

func OpenDataFile(dataDirectory, fileName string) (*os.File, error) {
	// Open a specific data file
	filePath := filepath.Join(dataDirectory, fileName)
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("error opening data file %s: %w", fileName, err)
	}
	return file, nil
}

// DeleteDataFile deletes a file
func DeleteDataFile(filePath string) error {
	return os.Remove(filePath)
}

// FileExists checks if a file exists and is not a directory
func FileExists(filename string, logger *zap.SugaredLogger) bool {
	args := settings.GetSettings()

	info, err := os.Stat(filename)
	if err != nil {
		if os.IsNotExist(err) {
			if args.Debug && args.Verbose {
				logger.Infof("File does not exist: %s", filename)
			}
			return false // File does not exist
		}

		logger.Infof("Error checking file %s for existence: %s", filename, err)
		return false // Some other error occurred
	}

	return !info.IsDir() // Return true if it's not a directory
}

// EnsureSuffix appends the given file suffix if the path does not already
// carry it. The check is case-insensitive.
func EnsureSuffix(path, suffix string) string {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if strings.EqualFold(ext, suffix) {
		return path
	}
	return fmt.Sprintf("%s.%s", path, suffix)
}

func EncodeBSON(data map[string]interface{}) ([]byte, error) {
	// Encode the map into BSON
	bsonData, err := bson.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("error encoding BSON: %w", err)
	}

	return bsonData, nil
}

func DecodeBSON(bsonData []byte) (map[string]interface{}, error) {
	// Decode the BSON back into a Go map
	var decodedData map[string]interface{}
	err := bson.Unmarshal(bsonData, &decodedData)
	if err != nil {
		return nil, fmt.Errorf("error decoding BSON: %w", err)
	}

	return decodedData, nil
}
