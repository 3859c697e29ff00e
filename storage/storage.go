package storage

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	appDirName = "campus-sports"
	stateFile  = "state.db"
	configFile = "config.json"
)

func DefaultConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appDirName), nil
}

func StatePath(dir string) string {
	return filepath.Join(dir, stateFile)
}

func ConfigPath(dir string) string {
	return filepath.Join(dir, configFile)
}

func ensureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	return nil
}
