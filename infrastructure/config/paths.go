package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/pkg/errors"
)

const (
	appDir         = "swhealth"
	configFileName = "config.yaml"
)

// SearchPaths lists where a configuration file is looked for, in order
func SearchPaths() []string {
	paths := []string{filepath.Join(".", configFileName)}

	switch runtime.GOOS {
	case "windows":
		if appDataDir := os.Getenv("APPDATA"); appDataDir != "" {
			paths = append(paths, filepath.Join(appDataDir, appDir, configFileName))
		}
		if programDataDir := os.Getenv("ProgramData"); programDataDir != "" {
			paths = append(paths, filepath.Join(programDataDir, appDir, configFileName))
		}
	default:
		if userConfigDir, err := os.UserConfigDir(); err == nil {
			paths = append(paths, filepath.Join(userConfigDir, appDir, configFileName))
		}
		paths = append(paths, filepath.Join("/etc", appDir, configFileName))
	}

	return paths
}

// ResolvePath returns explicit when set, otherwise the first existing search path
func ResolvePath(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", errors.Wrap(ErrConfig, fmt.Sprintf("configuration file %s: %v", explicit, err))
		}
		return explicit, nil
	}

	candidates := SearchPaths()
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	return "", errors.Wrap(ErrConfig, fmt.Sprintf("no %s file found in %v", configFileName, candidates))
}
