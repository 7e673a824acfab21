package domain

import (
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

const (
	// DefaultProductName is used when a product is created without a name.
	DefaultProductName = "Unnamed Product"

	// UnknownShipper is recorded when a shipment arrives without a shipper.
	UnknownShipper = "Unknown"

	// DateLayout is the ISO-8601 calendar date layout used everywhere dates are rendered.
	DateLayout = "2006-01-02"

	moneyScale = 2

	minDateYear = 0
	maxDateYear = 9999
)

// Shipment is one inbound delivery from a supplier.
// Date, Shipper and Cost are optional: a zero Date is not recorded,
// a blank Shipper becomes UnknownShipper and an invalid Cost adds nothing.
type Shipment struct {
	Quantity int
	Date     time.Time
	Shipper  string
	Cost     decimal.NullDecimal
}

// ProductRecord is a point-in-time copy of a product's full state.
// Codecs read and write records; they never touch a live Product.
type ProductRecord struct {
	ID            string
	Name          string
	Stock         int
	Threshold     int
	PaymentDue    decimal.Decimal
	ShipmentDates []time.Time
	Shippers      []string
}

// Product is a single inventory item. All methods are safe for concurrent use;
// each product serializes its own reads and writes.
type Product struct {
	mu sync.Mutex

	id            string
	name          string
	stock         int
	threshold     int
	paymentDue    decimal.Decimal
	shipmentDates []time.Time
	shippers      []string
}

// NewProduct builds a product with no shipment history and nothing due.
// Negative stock and threshold clamp to zero.
func NewProduct(id string, initialStock, threshold int, name string) (*Product, error) {
	if id == "" {
		return nil, invalidArgument("product.new", "id cannot be empty")
	}
	return &Product{
		id:            id,
		name:          normalizeName(name),
		stock:         max(0, initialStock),
		threshold:     max(0, threshold),
		paymentDue:    decimal.Zero,
		shipmentDates: []time.Time{},
		shippers:      []string{},
	}, nil
}

// RestoreProduct rebuilds a product from a backup record. Unlike the mutation
// methods it does not re-derive the payment due and history: they are
// restored exactly as recorded. Dates must still be representable as YYYY-MM-DD.
func RestoreProduct(rec ProductRecord) (*Product, error) {
	for _, d := range rec.ShipmentDates {
		if !ValidDate(d) {
			return nil, invalidArgument("product.restore", "shipment date out of range: "+d.String())
		}
	}
	p, err := NewProduct(rec.ID, rec.Stock, rec.Threshold, rec.Name)
	if err != nil {
		return nil, err
	}
	p.paymentDue = rec.PaymentDue
	p.shipmentDates = cloneDates(rec.ShipmentDates)
	p.shippers = cloneStrings(rec.Shippers)
	return p, nil
}

// AddShipment increases stock and records the shipment metadata and cost.
func (p *Product) AddShipment(s Shipment) error {
	if s.Quantity <= 0 {
		return invalidArgument("product.add_shipment", "quantity must be positive")
	}
	if s.Cost.Valid && s.Cost.Decimal.IsNegative() {
		return invalidArgument("product.add_shipment", "cost cannot be negative")
	}
	if !s.Date.IsZero() && !ValidDate(s.Date) {
		return invalidArgument("product.add_shipment", "date must be between years 0000 and 9999")
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if s.Quantity > math.MaxInt-p.stock {
		return invalidArgument("product.add_shipment", "quantity overflows stock")
	}
	p.stock += s.Quantity
	if !s.Date.IsZero() {
		p.shipmentDates = append(p.shipmentDates, CalendarDate(s.Date))
	}
	shipper := s.Shipper
	if strings.TrimSpace(shipper) == "" {
		shipper = UnknownShipper
	}
	p.shippers = append(p.shippers, shipper)
	if s.Cost.Valid {
		p.paymentDue = roundMoney(p.paymentDue.Add(s.Cost.Decimal))
	}
	return nil
}

// AddDelivery removes quantity from stock. It reports false and leaves stock
// untouched when there is not enough on hand.
func (p *Product) AddDelivery(quantity int) (bool, error) {
	if quantity <= 0 {
		return false, invalidArgument("product.add_delivery", "quantity must be positive")
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if quantity > p.stock {
		return false, nil
	}
	p.stock -= quantity
	return true, nil
}

// IsBelowThreshold reports whether stock is strictly less than the threshold.
func (p *Product) IsBelowThreshold() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stock < p.threshold
}

// Pay settles part of the payment due and returns what remains.
// Overpayment clears the debt; it is not kept as credit.
func (p *Product) Pay(amount decimal.Decimal) (decimal.Decimal, error) {
	if amount.IsNegative() {
		return decimal.Decimal{}, invalidArgument("product.pay", "amount cannot be negative")
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	due := p.paymentDue.Sub(amount)
	if due.IsNegative() {
		due = decimal.Zero
	}
	p.paymentDue = roundMoney(due)
	return p.paymentDue, nil
}

func (p *Product) ID() string { return p.id }

func (p *Product) Name() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.name
}

func (p *Product) SetName(name string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.name = normalizeName(name)
}

func (p *Product) Stock() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stock
}

func (p *Product) Threshold() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.threshold
}

func (p *Product) SetThreshold(threshold int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.threshold = max(0, threshold)
}

// PaymentDue returns the outstanding amount at two decimal places.
func (p *Product) PaymentDue() decimal.Decimal {
	p.mu.Lock()
	defer p.mu.Unlock()
	return roundMoney(p.paymentDue)
}

// ShipmentDates returns a copy of the recorded shipment dates in receipt order.
func (p *Product) ShipmentDates() []time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	return cloneDates(p.shipmentDates)
}

// Shippers returns a copy of the recorded shipper names in receipt order.
func (p *Product) Shippers() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return cloneStrings(p.shippers)
}

// Snapshot copies the whole product state under a single lock acquisition.
func (p *Product) Snapshot() ProductRecord {
	p.mu.Lock()
	defer p.mu.Unlock()
	return ProductRecord{
		ID:            p.id,
		Name:          p.name,
		Stock:         p.stock,
		Threshold:     p.threshold,
		PaymentDue:    p.paymentDue,
		ShipmentDates: cloneDates(p.shipmentDates),
		Shippers:      cloneStrings(p.shippers),
	}
}

func (p *Product) String() string {
	r := p.Snapshot()
	return fmt.Sprintf("%s %q stock=%d threshold=%d due=%s shipments=%d shippers=[%s]",
		r.ID, r.Name, r.Stock, r.Threshold, FormatMoney(r.PaymentDue),
		len(r.ShipmentDates), strings.Join(r.Shippers, ", "))
}

// CalendarDate truncates t to midnight UTC of its own calendar day.
func CalendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ValidDate reports whether t falls on a calendar day that FormatDate and
// ParseDate can carry through a backup unchanged.
func ValidDate(t time.Time) bool {
	y := t.Year()
	return y >= minDateYear && y <= maxDateYear
}

// ParseDate parses an ISO-8601 calendar date (YYYY-MM-DD).
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}

// FormatDate renders a date as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// FormatMoney renders an amount with exactly two fraction digits.
func FormatMoney(d decimal.Decimal) string {
	return d.StringFixed(moneyScale)
}

// roundMoney rounds half away from zero, which is half-up for the
// non-negative amounts a product carries.
func roundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(moneyScale)
}

func normalizeName(name string) string {
	if strings.TrimSpace(name) == "" {
		return DefaultProductName
	}
	return name
}

func cloneDates(in []time.Time) []time.Time {
	out := make([]time.Time, len(in))
	copy(out, in)
	return out
}

func cloneStrings(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}
