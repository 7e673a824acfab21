package domain

// Config represents the stockyard configuration loaded from stockyard.yaml.
type Config struct {
	Backup BackupConfig
	Shell  ShellConfig
}

type BackupConfig struct {
	Dir     string
	Prefix  string
	Journal bool
}

type ShellConfig struct {
	Prompt string
}

// DefaultConfig provides sane defaults if stockyard.yaml is partially missing.
func DefaultConfig() Config {
	return Config{
		Backup: BackupConfig{
			Dir:     "backups",
			Prefix:  "inventory",
			Journal: true,
		},
		Shell: ShellConfig{
			Prompt: "> ",
		},
	}
}

// WorkspaceSpec describes where a workspace is initialized.
type WorkspaceSpec struct {
	Root string
}
