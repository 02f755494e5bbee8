package ux

import (
	"fmt"
	"os"
	"path/filepath"
)

// PathDefaults provides smart defaults for common file paths
type PathDefaults struct {
	Dir string
}

// NewPathDefaults creates PathDefaults rooted at ./.devflow. Commands root
// them at the directory of the config file in use.
func NewPathDefaults() *PathDefaults {
	return &PathDefaults{Dir: DirName}
}

// ConfigFile returns the default config path
func (pd *PathDefaults) ConfigFile() string {
	return filepath.Join(pd.Dir, "config.yaml")
}

// TemplatesDir returns the directory for template overrides
func (pd *PathDefaults) TemplatesDir() string {
	return filepath.Join(pd.Dir, "templates")
}

// PlanFile returns the default plan export path
func (pd *PathDefaults) PlanFile() string {
	return "plan.json"
}

// ValidateSetup checks if the .devflow directory is initialized
func (pd *PathDefaults) ValidateSetup() error {
	if _, err := os.Stat(pd.Dir); os.IsNotExist(err) {
		return fmt.Errorf("%s directory not found. Run 'devflow config init' to set up your project", DirName)
	}
	return nil
}

// ValidateRequiredFile checks if a required file exists and provides helpful error
func ValidateRequiredFile(path string, fileType string, creationCommand string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return fmt.Errorf("%s not found at: %s\n\nRun '%s' to create it", fileType, path, creationCommand)
	} else if err != nil {
		return fmt.Errorf("error accessing %s: %w", path, err)
	}
	return nil
}

// SuggestNextSteps names the command to run next given what exists
func (pd *PathDefaults) SuggestNextSteps(sessionPath string) string {
	if _, err := os.Stat(pd.ConfigFile()); os.IsNotExist(err) {
		return "Run 'devflow config init' to write a starter configuration"
	}
	if _, err := os.Stat(sessionPath); err == nil {
		return "Resume the saved discovery with 'devflow disco' or inspect it with 'devflow session show'"
	}
	return "Start a discovery with 'devflow disco feature.json'"
}
