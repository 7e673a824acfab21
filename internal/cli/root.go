package cli

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/aalvaropc/stockyard/internal/registry"
)

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cmd := newRootCmd()
	if err := cmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

type rootOpts struct {
	debug     bool
	workspace string
}

func newRootCmd() *cobra.Command {
	opts := &rootOpts{}

	cmd := &cobra.Command{
		Use:          "stockyard",
		Short:        "Stockyard: in-memory inventory ledger with csv/json/xml backups",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runShell(cmd, opts)
		},
	}

	cmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "enable verbose logging to .stockyard/logs/stockyard.log")
	cmd.PersistentFlags().StringVarP(&opts.workspace, "workspace", "w", "", "Workspace root (optional; autodetected if omitted)")

	cmd.AddCommand(
		shellCmd(opts),
		initCmd(),
		convertCmd(opts),
		inspectCmd(opts),
		versionCmd(),
	)
	return cmd
}

func shellCmd(opts *rootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Start the interactive inventory shell (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runShell(cmd, opts)
		},
	}
}

func runShell(cmd *cobra.Command, opts *rootOpts) error {
	ws, err := loadWorkspace(opts.workspace)
	if err != nil {
		return err
	}
	defer ws.setupLogging(opts.debug)()

	reg := registry.New()
	sh := NewShell(reg, ws.newBackup(reg, true), cmd.InOrStdin(), cmd.OutOrStdout(),
		WithPrompt(ws.cfg.Shell.Prompt),
		WithBackupDefaults(ws.backupDir(), ws.cfg.Backup.Prefix),
	)
	return sh.Run(cmd.Context())
}
