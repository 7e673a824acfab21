package csvcodec

import "strings"

// record is one logical row. complete is false when input ended inside a
// quoted field.
type record struct {
	fields   []string
	complete bool
}

func (r record) blank() bool {
	return r.complete && len(r.fields) == 1 && r.fields[0] == ""
}

func (r record) isHeader() bool {
	if len(r.fields) < len(header) {
		return false
	}
	for i, h := range header {
		if strings.TrimSpace(r.fields[i]) != h {
			return false
		}
	}
	return true
}

type lexState int

const (
	stateFieldStart lexState = iota
	stateUnquoted
	stateQuoted
	stateQuoteInQuoted
)

// splitRecords tokenizes the whole payload into records. Quoted fields may
// span lines; both "\n" and "\r\n" end a record outside quotes.
func splitRecords(s string) []record {
	var (
		out     []record
		fields  []string
		cur     strings.Builder
		state   = stateFieldStart
		started bool
	)

	endField := func() {
		fields = append(fields, cur.String())
		cur.Reset()
	}
	endRecord := func() {
		endField()
		out = append(out, record{fields: fields, complete: true})
		fields = nil
		state = stateFieldStart
		started = false
	}
	// lineBreak reports the width of a record terminator at i, or 0.
	lineBreak := func(i int) int {
		switch {
		case s[i] == '\n':
			return 1
		case s[i] == '\r' && i+1 < len(s) && s[i+1] == '\n':
			return 2
		}
		return 0
	}

	for i := 0; i < len(s); i++ {
		c := s[i]
		started = true

		switch state {
		case stateFieldStart, stateUnquoted:
			if n := lineBreak(i); n > 0 {
				endRecord()
				i += n - 1
				continue
			}
			switch {
			case c == ',':
				endField()
				state = stateFieldStart
			case c == '"' && state == stateFieldStart:
				state = stateQuoted
			default:
				cur.WriteByte(c)
				state = stateUnquoted
			}

		case stateQuoted:
			if c == '"' {
				state = stateQuoteInQuoted
			} else {
				cur.WriteByte(c)
			}

		case stateQuoteInQuoted:
			if n := lineBreak(i); n > 0 {
				endRecord()
				i += n - 1
				continue
			}
			switch c {
			case '"':
				cur.WriteByte('"')
				state = stateQuoted
			case ',':
				endField()
				state = stateFieldStart
			default:
				// stray text after a closing quote is kept literally
				cur.WriteByte(c)
				state = stateUnquoted
			}
		}
	}

	if started {
		endField()
		out = append(out, record{fields: fields, complete: state != stateQuoted})
	}
	return out
}
