package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// DefaultEnvFile is the file name LoadDotEnv searches for by default
const DefaultEnvFile = ".env"

// LoadDotEnv searches the working directory and all of its parents for files
// called name and loads them into the process environment. Files closer to
// the working directory take precedence, and variables that are already set
// are never overwritten. It returns the paths that were loaded.
func LoadDotEnv(name string) ([]string, error) {
	if name == "" {
		name = DefaultEnvFile
	}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}

	envFiles := findEnvFiles(cwd, name)
	if len(envFiles) == 0 {
		return nil, nil
	}

	if err := godotenv.Load(envFiles...); err != nil {
		return nil, fmt.Errorf("failed to load env files: %w", err)
	}
	return envFiles, nil
}

// findEnvFiles lists name in dir and every parent of dir, nearest first
func findEnvFiles(dir, name string) []string {
	var envFiles []string

	for {
		envPath := filepath.Join(dir, name)
		if info, err := os.Stat(envPath); err == nil && !info.IsDir() {
			envFiles = append(envFiles, envPath)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return envFiles
}
