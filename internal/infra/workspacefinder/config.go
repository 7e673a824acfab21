package workspacefinder

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/aalvaropc/stockyard/internal/domain"
	"gopkg.in/yaml.v3"
)

// ConfigFile is the workspace marker and configuration file name.
const ConfigFile = "stockyard.yaml"

// LoadConfig loads stockyard.yaml from the workspace root and applies defaults.
func LoadConfig(root string) (domain.Config, error) {
	cfg := domain.DefaultConfig()

	path := filepath.Join(root, ConfigFile)
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, &domain.OpError{
			Op:   "workspacefinder.loadconfig",
			Kind: domain.KindNotFound,
			Path: path,
			Err:  err,
		}
	}

	var y yamlConfig
	if err := yaml.Unmarshal(b, &y); err != nil {
		return cfg, &domain.OpError{
			Op:   "workspacefinder.loadconfig",
			Kind: domain.KindInvalidConfig,
			Path: path,
			Err:  err,
		}
	}

	// Apply parsed values on top of defaults.
	if y.Stockyard.Backup.Dir != "" {
		cfg.Backup.Dir = y.Stockyard.Backup.Dir
	}
	if y.Stockyard.Backup.Prefix != "" {
		cfg.Backup.Prefix = y.Stockyard.Backup.Prefix
	}
	if y.Stockyard.Backup.Journal != nil {
		cfg.Backup.Journal = *y.Stockyard.Backup.Journal
	}
	if y.Stockyard.Shell.Prompt != "" {
		cfg.Shell.Prompt = y.Stockyard.Shell.Prompt
	}

	if strings.ContainsAny(cfg.Backup.Prefix, `/\`) {
		return cfg, &domain.OpError{
			Op:   "workspacefinder.loadconfig",
			Kind: domain.KindInvalidConfig,
			Path: path,
			Err:  errors.New("backup.prefix must be a file name, not a path"),
		}
	}

	return cfg, nil
}

type yamlConfig struct {
	Stockyard struct {
		Backup struct {
			Dir     string `yaml:"dir"`
			Prefix  string `yaml:"prefix"`
			Journal *bool  `yaml:"journal"`
		} `yaml:"backup"`

		Shell struct {
			Prompt string `yaml:"prompt"`
		} `yaml:"shell"`
	} `yaml:"stockyard"`
}
