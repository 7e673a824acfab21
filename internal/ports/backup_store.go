package ports

import "github.com/aalvaropc/stockyard/internal/domain"

// BackupStore reads and writes whole backup files.
type BackupStore interface {
	EnsureDir(dir string) error
	WriteFile(path string, data []byte) error
	ReadFile(path string) ([]byte, error)
}

// BackupJournal records completed exports.
type BackupJournal interface {
	Append(dir string, entry domain.BackupEntry) error
}
