package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// FileName is the per-project configuration file.
const FileName = "pyskel.yaml"

// markers identify a project root, in order of preference.
var markers = []string{FileName, "pyproject.toml"}

// FindProjectRoot walks up from start to the nearest directory holding a
// pyskel.yaml or pyproject.toml. It returns "" when none is found.
func FindProjectRoot(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", err
	}
	for {
		for _, m := range markers {
			_, err := os.Stat(filepath.Join(dir, m))
			if err == nil {
				return dir, nil
			}
			if !errors.Is(err, fs.ErrNotExist) {
				return "", err
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

// ConfigFileExists checks if the config file exists.
func ConfigFileExists(path string) (bool, error) {
	expanded, err := ExpandPath(path)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(expanded)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// ExpandPath expands ~ to the user's home directory.
func ExpandPath(path string) (string, error) {
	if len(path) == 0 {
		return path, nil
	}

	if path[0] != '~' {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	if len(path) == 1 {
		return homeDir, nil
	}

	// Handle ~/path/to/something
	if path[1] == '/' || path[1] == filepath.Separator {
		return filepath.Join(homeDir, path[2:]), nil
	}

	// Handle ~username (not supported, return as-is)
	return path, nil
}
