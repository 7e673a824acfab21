package xmlcodec

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

type tokenKind int

const (
	tokStart tokenKind = iota
	tokEnd
	tokText
	tokCDATA
)

type token struct {
	kind      tokenKind
	name      string
	text      string
	selfClose bool
}

// tokenize splits markup into tags and text. Comments, processing
// instructions and doctype declarations are dropped; attributes are ignored.
// A tag cut off by the end of input ends tokenization.
func tokenize(s string) []token {
	var out []token
	for i := 0; i < len(s); {
		if s[i] != '<' {
			j := strings.IndexByte(s[i:], '<')
			if j < 0 {
				j = len(s) - i
			}
			out = append(out, token{kind: tokText, text: s[i : i+j]})
			i += j
			continue
		}

		rest := s[i:]
		switch {
		case strings.HasPrefix(rest, "<!--"):
			i = skipPast(s, i, "-->")
		case strings.HasPrefix(rest, "<![CDATA["):
			end := strings.Index(rest, "]]>")
			if end < 0 {
				return out
			}
			out = append(out, token{kind: tokCDATA, text: rest[len("<![CDATA["):end]})
			i += end + len("]]>")
		case strings.HasPrefix(rest, "<?"):
			i = skipPast(s, i, "?>")
		case strings.HasPrefix(rest, "<!"):
			i = skipPast(s, i, ">")
		default:
			end := strings.IndexByte(rest, '>')
			if end < 0 {
				return out
			}
			body := rest[1:end]
			i += end + 1

			if strings.HasPrefix(body, "/") {
				out = append(out, token{kind: tokEnd, name: strings.TrimSpace(body[1:])})
				continue
			}
			selfClose := strings.HasSuffix(body, "/")
			body = strings.TrimSuffix(body, "/")
			name := body
			if k := strings.IndexAny(body, " \t\r\n"); k >= 0 {
				name = body[:k]
			}
			out = append(out, token{kind: tokStart, name: name, selfClose: selfClose})
		}
	}
	return out
}

func skipPast(s string, i int, marker string) int {
	j := strings.Index(s[i:], marker)
	if j < 0 {
		return len(s)
	}
	return i + j + len(marker)
}

// unescape decodes the predefined entities and numeric character
// references. It reports false on an unknown or unterminated entity.
func unescape(s string) (string, bool) {
	if strings.IndexByte(s, '&') < 0 {
		return s, true
	}
	var b strings.Builder
	for i := 0; i < len(s); {
		if s[i] != '&' {
			b.WriteByte(s[i])
			i++
			continue
		}
		end := strings.IndexByte(s[i:], ';')
		if end < 0 {
			return "", false
		}
		ent := s[i+1 : i+end]
		i += end + 1

		switch ent {
		case "amp":
			b.WriteByte('&')
		case "lt":
			b.WriteByte('<')
		case "gt":
			b.WriteByte('>')
		case "quot":
			b.WriteByte('"')
		case "apos":
			b.WriteByte('\'')
		default:
			r, ok := charRef(ent)
			if !ok {
				return "", false
			}
			b.WriteRune(r)
		}
	}
	return b.String(), true
}

func charRef(ent string) (rune, bool) {
	if !strings.HasPrefix(ent, "#") {
		return 0, false
	}
	base, digits := 10, ent[1:]
	if strings.HasPrefix(digits, "x") || strings.HasPrefix(digits, "X") {
		base, digits = 16, digits[1:]
	}
	n, err := strconv.ParseUint(digits, base, 32)
	if err != nil || !utf8.ValidRune(rune(n)) {
		return 0, false
	}
	return rune(n), true
}

type element struct {
	name     string
	children []*element
	text     strings.Builder
	closed   bool
	bad      bool
}

// buildTree nests tokens into elements. An end tag closes the nearest open
// element of the same name and leaves anything opened after it unclosed;
// an end tag with no open match is ignored.
func buildTree(tokens []token) *element {
	root := &element{closed: true}
	stack := []*element{root}

	for _, tk := range tokens {
		top := stack[len(stack)-1]
		switch tk.kind {
		case tokStart:
			el := &element{name: tk.name, closed: tk.selfClose}
			top.children = append(top.children, el)
			if !tk.selfClose {
				stack = append(stack, el)
			}
		case tokEnd:
			for i := len(stack) - 1; i > 0; i-- {
				if stack[i].name == tk.name {
					stack[i].closed = true
					stack = stack[:i]
					break
				}
			}
		case tokText:
			txt, ok := unescape(tk.text)
			if !ok {
				top.bad = true
				continue
			}
			top.text.WriteString(txt)
		case tokCDATA:
			top.text.WriteString(tk.text)
		}
	}
	return root
}

// find returns the outermost descendants named name, in document order.
func (e *element) find(name string) []*element {
	var out []*element
	for _, c := range e.children {
		if c.name == name {
			out = append(out, c)
			continue
		}
		out = append(out, c.find(name)...)
	}
	return out
}

func (e *element) child(name string) *element {
	for _, c := range e.children {
		if c.name == name {
			return c
		}
	}
	return nil
}

func (e *element) childText(name string) (string, bool) {
	c := e.child(name)
	if c == nil {
		return "", false
	}
	return c.text.String(), true
}

func (e *element) childInt(name string) (int, bool) {
	s, ok := e.childText(name)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	return n, err == nil
}

func (e *element) hasBad() bool {
	if e.bad || !e.closed {
		return true
	}
	for _, c := range e.children {
		if c.hasBad() {
			return true
		}
	}
	return false
}
