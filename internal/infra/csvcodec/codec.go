// Package csvcodec reads and writes the delimited backup format.
//
// Layout: a header line followed by one line per product,
//
//	id,name,stock,threshold,paymentDue,shipmentDates,shippers
//
// A field is quoted when it contains a comma, a quote or a line break, and
// embedded quotes are doubled. The two list fields are joined with '|';
// inside a list token '\' is written as `\\` and '|' as `\|`.
package csvcodec

import (
	"bufio"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/aalvaropc/stockyard/internal/domain"
	"github.com/aalvaropc/stockyard/internal/ports"
)

const (
	fieldCount = 7
	listSep    = '|'
	listEscape = '\\'
)

var header = []string{"id", "name", "stock", "threshold", "paymentDue", "shipmentDates", "shippers"}

type Codec struct{}

func New() *Codec { return &Codec{} }

var _ ports.Codec = (*Codec)(nil)

func (c *Codec) Format() domain.Format { return domain.FormatCSV }
func (c *Codec) Extension() string     { return ".csv" }

func (c *Codec) Encode(w io.Writer, records []domain.ProductRecord) error {
	bw := bufio.NewWriter(w)
	writeLine(bw, header)
	for _, r := range records {
		dates := make([]string, 0, len(r.ShipmentDates))
		for _, d := range r.ShipmentDates {
			dates = append(dates, domain.FormatDate(d))
		}
		writeLine(bw, []string{
			r.ID,
			r.Name,
			strconv.Itoa(r.Stock),
			strconv.Itoa(r.Threshold),
			domain.FormatMoney(r.PaymentDue),
			joinList(dates),
			joinList(r.Shippers),
		})
	}
	return bw.Flush()
}

func (c *Codec) Decode(r io.Reader) (domain.Decoded, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return domain.Decoded{}, err
	}

	out := domain.Decoded{Records: []domain.ProductRecord{}}
	first := true
	for _, row := range splitRecords(string(b)) {
		if row.blank() {
			continue
		}
		if first {
			first = false
			if row.isHeader() {
				continue
			}
		}
		rec, ok := parseRecord(row)
		if !ok {
			out.Skipped++
			continue
		}
		out.Records = append(out.Records, rec)
	}
	return out, nil
}

func writeLine(w *bufio.Writer, fields []string) {
	for i, f := range fields {
		if i > 0 {
			_ = w.WriteByte(',')
		}
		_, _ = w.WriteString(quoteField(f))
	}
	_ = w.WriteByte('\n')
}

func quoteField(s string) string {
	if !strings.ContainsAny(s, ",\"\r\n") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func joinList(items []string) string {
	var b strings.Builder
	for i, it := range items {
		if i > 0 {
			b.WriteByte(listSep)
		}
		for _, r := range it {
			if r == listSep || r == listEscape {
				b.WriteByte(listEscape)
			}
			b.WriteRune(r)
		}
	}
	return b.String()
}

// splitList inverts joinList. Empty tokens are dropped.
func splitList(s string) []string {
	out := []string{}
	var cur strings.Builder
	escaped := false
	for _, r := range s {
		switch {
		case escaped:
			cur.WriteRune(r)
			escaped = false
		case r == listEscape:
			escaped = true
		case r == listSep:
			if cur.Len() > 0 {
				out = append(out, cur.String())
			}
			cur.Reset()
		default:
			cur.WriteRune(r)
		}
	}
	if escaped {
		// dangling escape keeps its backslash
		cur.WriteRune(listEscape)
	}
	if cur.Len() > 0 {
		out = append(out, cur.String())
	}
	return out
}

func parseRecord(row record) (domain.ProductRecord, bool) {
	if !row.complete || len(row.fields) < fieldCount {
		return domain.ProductRecord{}, false
	}
	f := row.fields

	stock, err := strconv.Atoi(strings.TrimSpace(f[2]))
	if err != nil {
		return domain.ProductRecord{}, false
	}
	threshold, err := strconv.Atoi(strings.TrimSpace(f[3]))
	if err != nil {
		return domain.ProductRecord{}, false
	}
	due, err := decimal.NewFromString(strings.TrimSpace(f[4]))
	if err != nil {
		return domain.ProductRecord{}, false
	}

	rec := domain.ProductRecord{
		ID:         f[0],
		Name:       f[1],
		Stock:      stock,
		Threshold:  threshold,
		PaymentDue: due,
		Shippers:   splitList(f[6]),
	}
	if rec.ID == "" {
		return domain.ProductRecord{}, false
	}

	tokens := splitList(f[5])
	rec.ShipmentDates = make([]time.Time, 0, len(tokens))
	for _, tok := range tokens {
		d, err := domain.ParseDate(tok)
		if err != nil {
			return domain.ProductRecord{}, false
		}
		rec.ShipmentDates = append(rec.ShipmentDates, d)
	}
	return rec, true
}
