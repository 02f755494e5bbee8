package ux

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// DirName is the per-project directory holding config and templates
const DirName = ".devflow"

// DiscoverDir searches for the .devflow directory.
// Priority: current dir -> parent dirs (up to the git root) -> git root.
func DiscoverDir() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return discoverFrom(cwd), nil
}

func discoverFrom(start string) string {
	dir := start
	for {
		candidate := filepath.Join(dir, DirName)
		if isDir(candidate) {
			return candidate
		}

		// Stop at the repository boundary
		if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
			break
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	if gitRoot, err := getGitRoot(start); err == nil {
		candidate := filepath.Join(gitRoot, DirName)
		if isDir(candidate) {
			return candidate
		}
	}

	// Not found: the working directory is where init will create it
	return filepath.Join(start, DirName)
}

// DiscoverConfigFile returns the first existing config file among
// <.devflow>/<filename>, ./<filename> and ~/.devflow/<filename>. When none
// exists the .devflow location is returned.
func DiscoverConfigFile(filename string) (string, error) {
	dir, err := DiscoverDir()
	if err != nil {
		return "", err
	}

	primary := filepath.Join(dir, filename)
	candidates := []string{primary, filename}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, DirName, filename))
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return primary, nil
}

// getGitRoot returns the git repository root directory
func getGitRoot(dir string) (string, error) {
	cmd := exec.Command("git", "rev-parse", "--show-toplevel")
	cmd.Dir = dir
	output, err := cmd.Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(output)), nil
}

// EnsureDir creates the .devflow directory and its templates subdirectory
func EnsureDir(dir string) error {
	return os.MkdirAll(filepath.Join(dir, "templates"), 0o755)
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
