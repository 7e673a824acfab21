// Package xmlcodec reads and writes the markup backup format:
//
//	<products><product><id/><name/><stock/><threshold/><paymentDue/>
//	<shipmentDates><d/>...</shipmentDates><shippers><s/>...</shippers></product></products>
//
// Text escapes '&', '<' and '>'. Output carries no declaration and no
// whitespace between tags.
package xmlcodec

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

type Codec struct{}

func New() *Codec { return &Codec{} }

var _ ports.Codec = (*Codec)(nil)

func (c *Codec) Format() domain.Format { return domain.FormatXML }
func (c *Codec) Extension() string     { return ".xml" }

var escaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

func (c *Codec) Encode(w io.Writer, records []domain.ProductRecord) error {
	bw := bufio.NewWriter(w)
	_, _ = bw.WriteString("<products>")
	for _, r := range records {
		_, _ = bw.WriteString("<product>")
		writeLeaf(bw, "id", r.ID)
		writeLeaf(bw, "name", r.Name)
		writeLeaf(bw, "stock", strconv.Itoa(r.Stock))
		writeLeaf(bw, "threshold", strconv.Itoa(r.Threshold))
		writeLeaf(bw, "paymentDue", domain.FormatMoney(r.PaymentDue))
		_, _ = bw.WriteString("<shipmentDates>")
		for _, d := range r.ShipmentDates {
			writeLeaf(bw, "d", domain.FormatDate(d))
		}
		_, _ = bw.WriteString("</shipmentDates><shippers>")
		for _, s := range r.Shippers {
			writeLeaf(bw, "s", s)
		}
		_, _ = bw.WriteString("</shippers></product>")
	}
	_, _ = bw.WriteString("</products>")
	return bw.Flush()
}

func writeLeaf(w *bufio.Writer, tag, text string) {
	_, _ = w.WriteString("<" + tag + ">")
	_, _ = escaper.WriteString(w, text)
	_, _ = w.WriteString("</" + tag + ">")
}

func (c *Codec) Decode(r io.Reader) (domain.Decoded, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return domain.Decoded{}, err
	}

	out := domain.Decoded{Records: []domain.ProductRecord{}}
	root := buildTree(tokenize(string(b)))
	for _, el := range root.find("product") {
		rec, ok := toRecord(el)
		if !ok {
			out.Skipped++
			continue
		}
		out.Records = append(out.Records, rec)
	}
	return out, nil
}

func toRecord(el *element) (domain.ProductRecord, bool) {
	if !el.closed || el.hasBad() {
		return domain.ProductRecord{}, false
	}

	id, ok := el.childText("id")
	if !ok || id == "" {
		return domain.ProductRecord{}, false
	}
	name, _ := el.childText("name")

	stock, ok := el.childInt("stock")
	if !ok {
		return domain.ProductRecord{}, false
	}
	threshold, ok := el.childInt("threshold")
	if !ok {
		return domain.ProductRecord{}, false
	}
	dueText, ok := el.childText("paymentDue")
	if !ok {
		return domain.ProductRecord{}, false
	}
	due, err := decimal.NewFromString(strings.TrimSpace(dueText))
	if err != nil {
		return domain.ProductRecord{}, false
	}

	rec := domain.ProductRecord{
		ID:            id,
		Name:          name,
		Stock:         stock,
		Threshold:     threshold,
		PaymentDue:    due,
		ShipmentDates: []time.Time{},
		Shippers:      []string{},
	}

	if group := el.child("shipmentDates"); group != nil {
		for _, d := range group.children {
			if d.name != "d" {
				continue
			}
			s := strings.TrimSpace(d.text.String())
			if s == "" {
				continue
			}
			t, err := domain.ParseDate(s)
			if err != nil {
				return domain.ProductRecord{}, false
			}
			rec.ShipmentDates = append(rec.ShipmentDates, t)
		}
	}
	if group := el.child("shippers"); group != nil {
		for _, s := range group.children {
			if s.name == "s" && s.text.Len() > 0 {
				rec.Shippers = append(rec.Shippers, s.text.String())
			}
		}
	}
	return rec, true
}
