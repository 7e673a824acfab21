package jsoncodec

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/aalvaropc/stockyard/internal/domain"
)

// number keeps the literal text so integers and decimals parse exactly.
type number string

type syntaxError struct {
	pos int
	msg string
}

func (e *syntaxError) Error() string {
	return fmt.Sprintf("json: %s at offset %d", e.msg, e.pos)
}

// parser produces string, number, bool, nil, []any and map[string]any values.
type parser struct {
	s   string
	pos int
}

func (p *parser) eof() bool { return p.pos >= len(p.s) }

func (p *parser) fail(msg string) error {
	return &syntaxError{pos: p.pos, msg: msg}
}

func (p *parser) skipWS() {
	for !p.eof() {
		switch p.s[p.pos] {
		case ' ', '\t', '\n', '\r':
			p.pos++
		default:
			return
		}
	}
}

func (p *parser) consume(c byte) bool {
	if !p.eof() && p.s[p.pos] == c {
		p.pos++
		return true
	}
	return false
}

func (p *parser) parseValue() (any, error) {
	p.skipWS()
	if p.eof() {
		return nil, p.fail("unexpected end of input")
	}
	switch c := p.s[p.pos]; {
	case c == '{':
		return p.parseObject()
	case c == '[':
		return p.parseArray()
	case c == '"':
		return p.parseString()
	case c == 't':
		return true, p.literal("true")
	case c == 'f':
		return false, p.literal("false")
	case c == 'n':
		return nil, p.literal("null")
	case c == '-' || (c >= '0' && c <= '9'):
		return p.parseNumber()
	default:
		return nil, p.fail(fmt.Sprintf("unexpected character %q", c))
	}
}

func (p *parser) literal(word string) error {
	if !strings.HasPrefix(p.s[p.pos:], word) {
		return p.fail("invalid literal")
	}
	p.pos += len(word)
	return nil
}

func (p *parser) parseObject() (any, error) {
	p.pos++ // {
	obj := map[string]any{}

	p.skipWS()
	if p.consume('}') {
		return obj, nil
	}
	for {
		p.skipWS()
		if p.eof() || p.s[p.pos] != '"' {
			return nil, p.fail("expected object key")
		}
		key, err := p.parseString()
		if err != nil {
			return nil, err
		}
		p.skipWS()
		if !p.consume(':') {
			return nil, p.fail("expected ':'")
		}
		v, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		obj[key] = v

		p.skipWS()
		if p.consume(',') {
			continue
		}
		if p.consume('}') {
			return obj, nil
		}
		return nil, p.fail("expected ',' or '}'")
	}
}

func (p *parser) parseArray() (any, error) {
	p.pos++ // [
	arr := []any{}

	p.skipWS()
	if p.consume(']') {
		return arr, nil
	}
	for {
		v, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		arr = append(arr, v)

		p.skipWS()
		if p.consume(',') {
			continue
		}
		if p.consume(']') {
			return arr, nil
		}
		return nil, p.fail("expected ',' or ']'")
	}
}

func (p *parser) parseNumber() (any, error) {
	start := p.pos
	for !p.eof() && strings.IndexByte("+-0123456789.eE", p.s[p.pos]) >= 0 {
		p.pos++
	}
	return number(p.s[start:p.pos]), nil
}

// parseString reads a quoted string starting at the opening quote. Raw
// control characters are accepted as-is.
func (p *parser) parseString() (string, error) {
	p.pos++ // opening quote
	var b strings.Builder
	for {
		if p.eof() {
			return "", p.fail("unterminated string")
		}
		c := p.s[p.pos]
		switch c {
		case '"':
			p.pos++
			return b.String(), nil
		case '\\':
			p.pos++
			if p.eof() {
				return "", p.fail("unterminated escape")
			}
			esc := p.s[p.pos]
			p.pos++
			switch esc {
			case '"', '\\', '/':
				b.WriteByte(esc)
			case 'n':
				b.WriteByte('\n')
			case 'r':
				b.WriteByte('\r')
			case 't':
				b.WriteByte('\t')
			case 'b':
				b.WriteByte('\b')
			case 'f':
				b.WriteByte('\f')
			case 'u':
				r, err := p.parseUnicodeEscape()
				if err != nil {
					return "", err
				}
				b.WriteRune(r)
			default:
				return "", p.fail(fmt.Sprintf("invalid escape %q", esc))
			}
		default:
			b.WriteByte(c)
			p.pos++
		}
	}
}

func (p *parser) parseUnicodeEscape() (rune, error) {
	r1, err := p.hex4()
	if err != nil {
		return 0, err
	}
	if !utf16.IsSurrogate(r1) {
		return r1, nil
	}
	if strings.HasPrefix(p.s[p.pos:], `\u`) {
		save := p.pos
		p.pos += 2
		r2, err := p.hex4()
		if err == nil {
			if r := utf16.DecodeRune(r1, r2); r != utf8.RuneError {
				return r, nil
			}
		}
		p.pos = save
	}
	return utf8.RuneError, nil
}

func (p *parser) hex4() (rune, error) {
	if p.pos+4 > len(p.s) {
		return 0, p.fail("short unicode escape")
	}
	n, err := strconv.ParseUint(p.s[p.pos:p.pos+4], 16, 32)
	if err != nil {
		return 0, p.fail("invalid unicode escape")
	}
	p.pos += 4
	return rune(n), nil
}

// toRecord maps one decoded array element to a product record. Missing keys
// take defaults; a missing id or a wrongly typed field rejects the element.
func toRecord(v any) (domain.ProductRecord, bool) {
	obj, ok := v.(map[string]any)
	if !ok {
		return domain.ProductRecord{}, false
	}

	rec := domain.ProductRecord{
		PaymentDue:    decimal.Zero,
		ShipmentDates: []time.Time{},
		Shippers:      []string{},
	}

	id, ok := obj["id"].(string)
	if !ok || id == "" {
		return domain.ProductRecord{}, false
	}
	rec.ID = id

	if raw, present := obj["name"]; present && raw != nil {
		name, ok := raw.(string)
		if !ok {
			return domain.ProductRecord{}, false
		}
		rec.Name = name
	}

	var okStock, okThreshold bool
	rec.Stock, okStock = intField(obj, "stock")
	rec.Threshold, okThreshold = intField(obj, "threshold")
	if !okStock || !okThreshold {
		return domain.ProductRecord{}, false
	}

	switch due := obj["paymentDue"].(type) {
	case nil:
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(due))
		if err != nil {
			return domain.ProductRecord{}, false
		}
		rec.PaymentDue = d
	case number:
		d, err := decimal.NewFromString(string(due))
		if err != nil {
			return domain.ProductRecord{}, false
		}
		rec.PaymentDue = d
	default:
		return domain.ProductRecord{}, false
	}

	dates, ok := stringList(obj["shipmentDates"])
	if !ok {
		return domain.ProductRecord{}, false
	}
	for _, s := range dates {
		d, err := domain.ParseDate(s)
		if err != nil {
			return domain.ProductRecord{}, false
		}
		rec.ShipmentDates = append(rec.ShipmentDates, d)
	}

	shippers, ok := stringList(obj["shippers"])
	if !ok {
		return domain.ProductRecord{}, false
	}
	rec.Shippers = append(rec.Shippers, shippers...)

	return rec, true
}

func intField(obj map[string]any, key string) (int, bool) {
	switch v := obj[key].(type) {
	case nil:
		return 0, true
	case number:
		n, err := strconv.Atoi(string(v))
		return n, err == nil
	default:
		return 0, false
	}
}

// stringList accepts a missing value or an array of strings; empty strings are dropped.
func stringList(v any) ([]string, bool) {
	if v == nil {
		return nil, true
	}
	arr, ok := v.([]any)
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(arr))
	for _, it := range arr {
		s, ok := it.(string)
		if !ok {
			return nil, false
		}
		if s != "" {
			out = append(out, s)
		}
	}
	return out, true
}
