package domain

import "time"

// Format identifies one of the backup text formats.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatXML  Format = "xml"
)

// Formats lists every supported format in export order.
func Formats() []Format {
	return []Format{FormatCSV, FormatJSON, FormatXML}
}

// Decoded is the result of reading one backup payload.
// Skipped counts records that were malformed and dropped.
type Decoded struct {
	Records []ProductRecord
	Skipped int
}

// ImportReport summarizes an import into a registry.
type ImportReport struct {
	Path    string
	Format  Format
	Applied int
	Skipped int
}

// BackupEntry is one line of the export journal.
type BackupEntry struct {
	ID       string    `json:"id"`
	Format   Format    `json:"format"`
	Path     string    `json:"path"`
	Products int       `json:"products"`
	At       time.Time `json:"at"`
}
