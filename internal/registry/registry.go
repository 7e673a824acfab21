// Package registry holds the in-memory set of tracked products.
package registry

import (
	"slices"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/aalvaropc/stockyard/internal/domain"
)

// Registry maps product ids to products. The registry lock guards the map
// only; per-product work runs after the lookup has released it.
type Registry struct {
	mu       sync.RWMutex
	products map[string]*domain.Product
}

func New() *Registry {
	return &Registry{products: make(map[string]*domain.Product)}
}

// Create registers a new product, replacing any existing product with the same id.
func (r *Registry) Create(id string, initialStock, threshold int, name string) (*domain.Product, error) {
	p, err := domain.NewProduct(id, initialStock, threshold, name)
	if err != nil {
		return nil, err
	}
	r.put(p)
	return p, nil
}

// Restore registers a product rebuilt from a backup record,
// replacing any existing product with the same id.
func (r *Registry) Restore(rec domain.ProductRecord) (*domain.Product, error) {
	p, err := domain.RestoreProduct(rec)
	if err != nil {
		return nil, err
	}
	r.put(p)
	return p, nil
}

func (r *Registry) put(p *domain.Product) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.products[p.ID()] = p
}

func (r *Registry) Find(id string) (*domain.Product, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.products[id]
	return p, ok
}

// Remove deletes a product and reports whether it existed.
func (r *Registry) Remove(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[id]; !ok {
		return false
	}
	delete(r.products, id)
	return true
}

// ReceiveShipment records a shipment for id. found is false when no such product exists.
func (r *Registry) ReceiveShipment(id string, s domain.Shipment) (found bool, err error) {
	p, ok := r.Find(id)
	if !ok {
		return false, nil
	}
	return true, p.AddShipment(s)
}

// Deliver removes qty from id's stock. delivered is false when stock is insufficient.
func (r *Registry) Deliver(id string, qty int) (delivered, found bool, err error) {
	p, ok := r.Find(id)
	if !ok {
		return false, false, nil
	}
	delivered, err = p.AddDelivery(qty)
	return delivered, true, err
}

// Pay settles amount against id's payment due and returns the remainder.
func (r *Registry) Pay(id string, amount decimal.Decimal) (remaining decimal.Decimal, found bool, err error) {
	p, ok := r.Find(id)
	if !ok {
		return decimal.Decimal{}, false, nil
	}
	remaining, err = p.Pay(amount)
	return remaining, true, err
}

func (r *Registry) Rename(id, name string) bool {
	p, ok := r.Find(id)
	if !ok {
		return false
	}
	p.SetName(name)
	return true
}

func (r *Registry) SetThreshold(id string, threshold int) bool {
	p, ok := r.Find(id)
	if !ok {
		return false
	}
	p.SetThreshold(threshold)
	return true
}

// ListAll returns every product in no particular order.
func (r *Registry) ListAll() []*domain.Product {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.Product, 0, len(r.products))
	for _, p := range r.products {
		out = append(out, p)
	}
	return out
}

// LowStock returns the products whose stock is below their threshold.
func (r *Registry) LowStock() []*domain.Product {
	all := r.ListAll()
	out := make([]*domain.Product, 0, len(all))
	for _, p := range all {
		if p.IsBelowThreshold() {
			out = append(out, p)
		}
	}
	return out
}

func (r *Registry) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.products)
}

// Snapshot copies the state of every product, one product at a time, ordered
// by id. There is no cross-product consistency: each record is consistent on
// its own.
func (r *Registry) Snapshot() []domain.ProductRecord {
	all := r.ListAll()
	out := make([]domain.ProductRecord, 0, len(all))
	for _, p := range all {
		out = append(out, p.Snapshot())
	}
	slices.SortFunc(out, func(a, b domain.ProductRecord) int { return strings.Compare(a.ID, b.ID) })
	return out
}
