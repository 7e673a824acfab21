package ports

import (
	"io"

	"github.com/aalvaropc/stockyard/internal/domain"
)

// Codec encodes a registry snapshot to one backup text format and back.
type Codec interface {
	Format() domain.Format
	Extension() string
	Encode(w io.Writer, records []domain.ProductRecord) error
	// Decode is best-effort: malformed records are skipped and counted,
	// only a failure of r itself is returned as an error.
	Decode(r io.Reader) (domain.Decoded, error)
}
