package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aalvaropc/stockyard/internal/domain"
	"github.com/aalvaropc/stockyard/internal/infra/csvcodec"
	"github.com/aalvaropc/stockyard/internal/infra/fsbackup"
	"github.com/aalvaropc/stockyard/internal/infra/jsoncodec"
	"github.com/aalvaropc/stockyard/internal/infra/logger"
	"github.com/aalvaropc/stockyard/internal/infra/workspacefinder"
	"github.com/aalvaropc/stockyard/internal/infra/xmlcodec"
	"github.com/aalvaropc/stockyard/internal/ports"
	"github.com/aalvaropc/stockyard/internal/registry"
	"github.com/aalvaropc/stockyard/internal/usecase"
)

type workspaceCtx struct {
	root  string
	cfg   domain.Config
	found bool
}

// loadWorkspace resolves the workspace from the flag or the working
// directory. Outside a workspace the working directory and defaults are used.
func loadWorkspace(workspaceFlag string) (*workspaceCtx, error) {
	finder := workspacefinder.NewFinder()

	w := strings.TrimSpace(workspaceFlag)
	if w != "" {
		abs, err := filepath.Abs(w)
		if err != nil {
			return nil, fmt.Errorf("invalid workspace path: %w", err)
		}
		cfg, err := workspacefinder.LoadConfig(abs)
		if err != nil && !domain.IsKind(err, domain.KindNotFound) {
			return nil, err
		}
		return &workspaceCtx{root: abs, cfg: cfg, found: err == nil}, nil
	}

	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("get working directory: %w", err)
	}
	res, err := finder.Resolve(wd)
	if err != nil {
		return nil, err
	}
	return &workspaceCtx{root: res.Root, cfg: res.Config, found: res.Found}, nil
}

// backupDir is the configured backup directory, relative to the workspace root.
func (ws *workspaceCtx) backupDir() string {
	if filepath.IsAbs(ws.cfg.Backup.Dir) {
		return ws.cfg.Backup.Dir
	}
	return filepath.Join(ws.root, ws.cfg.Backup.Dir)
}

func (ws *workspaceCtx) newBackup(inv ports.Inventory, journal bool) *usecase.Backup {
	store := fsbackup.NewStore(fsbackup.WithJournal(journal && ws.cfg.Backup.Journal))
	return usecase.NewBackup(inv, store, codecs(),
		usecase.WithJournal(store),
		usecase.WithLogger(logger.Component("backup")),
	)
}

func codecs() []ports.Codec {
	return []ports.Codec{csvcodec.New(), jsoncodec.New(), xmlcodec.New()}
}

// loadFile imports one backup file into a fresh registry.
func (ws *workspaceCtx) loadFile(path string) (*registry.Registry, domain.ImportReport, error) {
	format, err := usecase.FormatFromPath(path)
	if err != nil {
		return nil, domain.ImportReport{}, err
	}
	reg := registry.New()
	report, err := ws.newBackup(reg, false).Import(format, path)
	if err != nil {
		return nil, report, err
	}
	return reg, report, nil
}

// setupLogging writes logs under the workspace. Without a stockyard.yaml
// nothing is created and logs are discarded.
func (ws *workspaceCtx) setupLogging(debug bool) func() {
	if !ws.found {
		return func() {}
	}
	cleanup, err := logger.Setup(logger.Config{Root: ws.root, Debug: debug})
	if err != nil {
		return func() {}
	}
	logger.L().Debug("cli.start", "root", ws.root, "pid", os.Getpid())
	return func() { _ = cleanup() }
}
