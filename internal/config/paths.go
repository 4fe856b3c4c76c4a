// ABOUTME: Standard filesystem paths for ctedit configuration and data
// ABOUTME: Resolves ~/.ctedit/ for global and .ctedit/ for project-local paths

package config

import (
	"os"
	"path/filepath"
)

const (
	globalDirName  = ".ctedit"
	projectDirName = ".ctedit"
)

// GlobalDir returns the user-global config directory (~/.ctedit/).
func GlobalDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", globalDirName)
	}
	return filepath.Join(home, globalDirName)
}

// ProjectDir returns the project-local config directory (.ctedit/ in cwd).
func ProjectDir(projectRoot string) string {
	return filepath.Join(projectRoot, projectDirName)
}

// GlobalConfigFile returns the path to the global config file.
func GlobalConfigFile() string {
	return filepath.Join(GlobalDir(), "config.json")
}

// ProjectConfigFile returns the path to the project-local config file.
func ProjectConfigFile(projectRoot string) string {
	return filepath.Join(ProjectDir(projectRoot), "config.json")
}

// GlobalKeybindingsFile returns the path to the global keybindings file.
func GlobalKeybindingsFile() string {
	return filepath.Join(GlobalDir(), "keybindings.json")
}

// LocalKeybindingsFile returns the path to the project keybindings file.
func LocalKeybindingsFile(projectRoot string) string {
	return filepath.Join(ProjectDir(projectRoot), "keybindings.json")
}

// EnsureDir creates a directory and all parents if they don't exist.
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0o700)
}
