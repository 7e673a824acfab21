// Package jsoncodec reads and writes the structured-text backup format: a
// compact JSON array with one object per product.
//
// Strings escape only backslash, double quote, LF and CR. The decoder is a
// small recursive-descent parser that also accepts the remaining JSON escapes
// and arbitrary whitespace, so hand-edited files still load.
package jsoncodec

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/aalvaropc/stockyard/internal/domain"
	"github.com/aalvaropc/stockyard/internal/ports"
)

type Codec struct{}

func New() *Codec { return &Codec{} }

var _ ports.Codec = (*Codec)(nil)

func (c *Codec) Format() domain.Format { return domain.FormatJSON }
func (c *Codec) Extension() string     { return ".json" }

func (c *Codec) Encode(w io.Writer, records []domain.ProductRecord) error {
	bw := bufio.NewWriter(w)
	_ = bw.WriteByte('[')
	for i, r := range records {
		if i > 0 {
			_ = bw.WriteByte(',')
		}
		dates := make([]string, 0, len(r.ShipmentDates))
		for _, d := range r.ShipmentDates {
			dates = append(dates, domain.FormatDate(d))
		}

		_, _ = bw.WriteString(`{"id":`)
		writeString(bw, r.ID)
		_, _ = bw.WriteString(`,"name":`)
		writeString(bw, r.Name)
		_, _ = bw.WriteString(`,"stock":`)
		_, _ = bw.WriteString(strconv.Itoa(r.Stock))
		_, _ = bw.WriteString(`,"threshold":`)
		_, _ = bw.WriteString(strconv.Itoa(r.Threshold))
		_, _ = bw.WriteString(`,"paymentDue":`)
		writeString(bw, domain.FormatMoney(r.PaymentDue))
		_, _ = bw.WriteString(`,"shipmentDates":`)
		writeArray(bw, dates)
		_, _ = bw.WriteString(`,"shippers":`)
		writeArray(bw, r.Shippers)
		_ = bw.WriteByte('}')
	}
	_ = bw.WriteByte(']')
	return bw.Flush()
}

func (c *Codec) Decode(r io.Reader) (domain.Decoded, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return domain.Decoded{}, err
	}

	out := domain.Decoded{Records: []domain.ProductRecord{}}
	p := &parser{s: string(b)}

	p.skipWS()
	if p.eof() {
		return out, nil
	}
	if !p.consume('[') {
		out.Skipped++
		return out, nil
	}

	for {
		p.skipWS()
		if p.consume(']') {
			return out, nil
		}

		v, err := p.parseValue()
		if err != nil {
			// Nothing after a syntax error can be trusted.
			out.Skipped++
			return out, nil
		}
		if rec, ok := toRecord(v); ok {
			out.Records = append(out.Records, rec)
		} else {
			out.Skipped++
		}

		p.skipWS()
		if p.consume(',') {
			continue
		}
		if p.consume(']') {
			return out, nil
		}
		if !p.eof() {
			out.Skipped++
		}
		return out, nil
	}
}

func writeArray(w *bufio.Writer, items []string) {
	_ = w.WriteByte('[')
	for i, it := range items {
		if i > 0 {
			_ = w.WriteByte(',')
		}
		writeString(w, it)
	}
	_ = w.WriteByte(']')
}

var escaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\r", `\r`)

func writeString(w *bufio.Writer, s string) {
	_ = w.WriteByte('"')
	_, _ = escaper.WriteString(w, s)
	_ = w.WriteByte('"')
}
