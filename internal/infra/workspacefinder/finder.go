package workspacefinder

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/aalvaropc/stockyard/internal/domain"
	"github.com/aalvaropc/stockyard/internal/ports"
)

// Finder locates a stockyard workspace root by searching for stockyard.yaml upward.
type Finder struct {
	ConfigFile string // defaults to "stockyard.yaml"
}

func NewFinder() *Finder {
	return &Finder{ConfigFile: ConfigFile}
}

var _ ports.WorkspaceLocator = (*Finder)(nil)

func (f *Finder) FindRoot(startDir string) (string, error) {
	if startDir == "" {
		return "", &domain.OpError{
			Op:   "workspacefinder.findroot",
			Kind: domain.KindInvalidArgument,
			Err:  errors.New("startDir is empty"),
		}
	}

	abs, err := filepath.Abs(startDir)
	if err != nil {
		return "", domain.IOError("workspacefinder.findroot", startDir, err)
	}

	// If user passes a file path, use its directory.
	info, statErr := os.Stat(abs)
	if statErr == nil && !info.IsDir() {
		abs = filepath.Dir(abs)
	}

	cur := filepath.Clean(abs)
	for {
		cfgPath := filepath.Join(cur, f.ConfigFile)
		if _, err := os.Stat(cfgPath); err == nil {
			return cur, nil
		}

		parent := filepath.Dir(cur)
		if parent == cur {
			return "", &domain.OpError{
				Op:   "workspacefinder.findroot",
				Kind: domain.KindNotFound,
				Path: abs,
				Err:  domain.ErrNotFound,
			}
		}
		cur = parent
	}
}

// Resolution is the outcome of Resolve. Found is false when no stockyard.yaml
// exists above the start directory; Root is then the start directory itself.
type Resolution struct {
	Root   string
	Config domain.Config
	Found  bool
}

// Resolve returns the workspace root above startDir and its configuration.
// Outside a workspace it returns startDir and the defaults.
func (f *Finder) Resolve(startDir string) (Resolution, error) {
	root, err := f.FindRoot(startDir)
	if err != nil {
		if domain.IsKind(err, domain.KindNotFound) {
			return Resolution{Root: startDir, Config: domain.DefaultConfig()}, nil
		}
		return Resolution{}, err
	}
	cfg, err := LoadConfig(root)
	return Resolution{Root: root, Config: cfg, Found: true}, err
}
