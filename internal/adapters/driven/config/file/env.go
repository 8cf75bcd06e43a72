package file

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// LoadEnv loads .env files into the process environment, first match
// wins per variable. Variables already set are never overridden.
// Missing files are skipped. It returns the files that were read.
func LoadEnv(paths ...string) ([]string, error) {
	var loaded []string
	for _, path := range paths {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return loaded, fmt.Errorf("load %s: %w", path, err)
		}
		loaded = append(loaded, path)
	}
	return loaded, nil
}

// DefaultEnvFiles returns ./.env and <configDir>/.env.
func DefaultEnvFiles(configDir string) []string {
	files := []string{".env"}
	if configDir != "" {
		files = append(files, filepath.Join(configDir, ".env"))
	}
	return files
}
