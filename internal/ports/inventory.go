package ports

import "github.com/aalvaropc/stockyard/internal/domain"

// Inventory is the part of the registry that backup and restore need.
type Inventory interface {
	Snapshot() []domain.ProductRecord
	Restore(rec domain.ProductRecord) (*domain.Product, error)
}
