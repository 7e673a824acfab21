package usecase

import (
	"bytes"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/aalvaropc/stockyard/internal/domain"
	"github.com/aalvaropc/stockyard/internal/infra/logger"
	"github.com/aalvaropc/stockyard/internal/ports"
)

// Backup exports registry snapshots to files and imports them back.
type Backup struct {
	inventory ports.Inventory
	store     ports.BackupStore
	journal   ports.BackupJournal
	codecs    map[domain.Format]ports.Codec
	log       *slog.Logger
}

type BackupOption func(*Backup)

// WithJournal records every successful export.
func WithJournal(j ports.BackupJournal) BackupOption {
	return func(uc *Backup) { uc.journal = j }
}

func WithLogger(l *slog.Logger) BackupOption {
	return func(uc *Backup) { uc.log = l }
}

func NewBackup(inv ports.Inventory, store ports.BackupStore, codecs []ports.Codec, opts ...BackupOption) *Backup {
	uc := &Backup{
		inventory: inv,
		store:     store,
		codecs:    make(map[domain.Format]ports.Codec, len(codecs)),
	}
	for _, c := range codecs {
		uc.codecs[c.Format()] = c
	}
	for _, opt := range opts {
		opt(uc)
	}
	if uc.log == nil {
		uc.log = logger.L()
	}
	return uc
}

// ExportAll writes <prefix>.<ext> for every format into dir from a single
// snapshot, in csv, json, xml order. The first failure aborts the rest.
func (uc *Backup) ExportAll(dir, prefix string) ([]string, error) {
	if err := uc.store.EnsureDir(dir); err != nil {
		return nil, err
	}

	snap := uc.inventory.Snapshot()
	paths := make([]string, 0, len(domain.Formats()))
	for _, f := range domain.Formats() {
		codec, err := uc.codec(f)
		if err != nil {
			return paths, err
		}
		path := filepath.Join(dir, prefix+codec.Extension())
		if err := uc.write(codec, path, snap); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// Export writes the current snapshot to path in the given format.
func (uc *Backup) Export(format domain.Format, path string) error {
	codec, err := uc.codec(format)
	if err != nil {
		return err
	}
	return uc.write(codec, path, uc.inventory.Snapshot())
}

// Import reads path in the given format and restores every decoded record,
// replacing products with the same id.
func (uc *Backup) Import(format domain.Format, path string) (domain.ImportReport, error) {
	report := domain.ImportReport{Path: path, Format: format}

	codec, err := uc.codec(format)
	if err != nil {
		return report, err
	}
	b, err := uc.store.ReadFile(path)
	if err != nil {
		return report, err
	}

	decoded, err := codec.Decode(bytes.NewReader(b))
	if err != nil {
		return report, domain.IOError("backup.import", path, err)
	}
	report.Skipped = decoded.Skipped

	for _, rec := range decoded.Records {
		if _, err := uc.inventory.Restore(rec); err != nil {
			uc.log.Warn("backup.import.record_rejected", "path", path, "id", rec.ID, "error", err.Error())
			report.Skipped++
			continue
		}
		report.Applied++
	}

	uc.log.Info("backup.import",
		"path", path,
		"format", string(format),
		"applied", report.Applied,
		"skipped", report.Skipped,
	)
	return report, nil
}

func (uc *Backup) write(codec ports.Codec, path string, snap []domain.ProductRecord) error {
	var buf bytes.Buffer
	if err := codec.Encode(&buf, snap); err != nil {
		return domain.IOError("backup.encode", path, err)
	}
	if err := uc.store.WriteFile(path, buf.Bytes()); err != nil {
		uc.log.Error("backup.export.failed", "path", path, "error", err.Error())
		return err
	}

	uc.log.Info("backup.export", "path", path, "format", string(codec.Format()), "products", len(snap))

	if uc.journal != nil {
		entry := domain.BackupEntry{Format: codec.Format(), Path: path, Products: len(snap)}
		if err := uc.journal.Append(filepath.Dir(path), entry); err != nil {
			uc.log.Warn("backup.journal.failed", "path", path, "error", err.Error())
		}
	}
	return nil
}

func (uc *Backup) codec(f domain.Format) (ports.Codec, error) {
	c, ok := uc.codecs[f]
	if !ok {
		return nil, &domain.OpError{
			Op:   "backup.codec",
			Kind: domain.KindInvalidArgument,
			Err:  fmt.Errorf("unsupported format %q: %w", f, domain.ErrInvalidArgument),
		}
	}
	return c, nil
}

// FormatFromPath picks a format from the file extension, ignoring case.
func FormatFromPath(path string) (domain.Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	for _, f := range domain.Formats() {
		if ext == "."+string(f) {
			return f, nil
		}
	}
	return "", &domain.OpError{
		Op:   "backup.format",
		Kind: domain.KindInvalidArgument,
		Path: path,
		Err:  fmt.Errorf("unsupported extension %q: %w", ext, domain.ErrInvalidArgument),
	}
}
