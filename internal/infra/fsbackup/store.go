package fsbackup

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/aalvaropc/stockyard/internal/domain"
	"github.com/aalvaropc/stockyard/internal/ports"
)

const journalFile = "journal.jsonl"

// Store is the only filesystem writer for backup files.
type Store struct {
	journal bool
	now     func() time.Time
	newID   func() string
}

type Option func(*Store)

// WithJournal enables a JSONL export journal: <dir>/journal.jsonl
func WithJournal(enabled bool) Option {
	return func(s *Store) { s.journal = enabled }
}

// WithNow is useful for tests.
func WithNow(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDs overrides journal id generation.
func WithIDs(newID func() string) Option {
	return func(s *Store) { s.newID = newID }
}

func NewStore(opts ...Option) *Store {
	s := &Store{
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var (
	_ ports.BackupStore   = (*Store)(nil)
	_ ports.BackupJournal = (*Store)(nil)
)

func (s *Store) EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return domain.IOError("fsbackup.mkdir", dir, err)
	}
	return nil
}

// WriteFile replaces path atomically-ish: tmp then rename.
func (s *Store) WriteFile(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return domain.IOError("fsbackup.write", path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return domain.IOError("fsbackup.rename", path, err)
	}
	return nil
}

func (s *Store) ReadFile(path string) ([]byte, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, domain.IOError("fsbackup.read", path, err)
	}
	return b, nil
}

// Append records one export in dir's journal. It is a no-op unless the
// journal is enabled. Empty ID and zero At are filled in.
func (s *Store) Append(dir string, entry domain.BackupEntry) error {
	if !s.journal {
		return nil
	}
	if entry.ID == "" {
		entry.ID = s.newID()
	}
	if entry.At.IsZero() {
		entry.At = s.now()
	}
	entry.At = entry.At.UTC()

	line, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	path := filepath.Join(dir, journalFile)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return domain.IOError("fsbackup.journal", path, err)
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return domain.IOError("fsbackup.journal", path, err)
	}
	return nil
}

// ReadJournal returns the entries recorded in dir, oldest first. A missing
// journal yields no entries.
func ReadJournal(dir string) ([]domain.BackupEntry, error) {
	path := filepath.Join(dir, journalFile)
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return []domain.BackupEntry{}, nil
		}
		return nil, domain.IOError("fsbackup.journal", path, err)
	}

	out := []domain.BackupEntry{}
	dec := json.NewDecoder(bytes.NewReader(b))
	for dec.More() {
		var e domain.BackupEntry
		if err := dec.Decode(&e); err != nil {
			return out, domain.IOError("fsbackup.journal", path, err)
		}
		out = append(out, e)
	}
	return out, nil
}
