package format

import (
	"math"
	"strconv"
	"strings"
	"unicode/utf8"
)

type fieldSpec struct {
	fill    rune
	align   byte
	sign    byte
	alt     bool
	zero    bool
	width   int
	prec    int
	hasPrec bool
	verb    byte
}

// maxSpecField caps width and precision so a template cannot request an
// allocation the runtime cannot recover from.
const maxSpecField = 4096

func (s fieldSpec) isZero() bool {
	return s == fieldSpec{}
}

func parseSpec(spec string) (fieldSpec, bool) {
	var s fieldSpec
	i := 0
	if r, size := utf8.DecodeRuneInString(spec); size > 0 && size < len(spec) && isAlign(spec[size]) {
		s.fill, s.align = r, spec[size]
		i = size + 1
	} else if len(spec) > 0 && isAlign(spec[0]) {
		s.align = spec[0]
		i = 1
	}
	if i < len(spec) && (spec[i] == '+' || spec[i] == '-' || spec[i] == ' ') {
		s.sign = spec[i]
		i++
	}
	if i < len(spec) && spec[i] == '#' {
		s.alt = true
		i++
	}
	if i < len(spec) && spec[i] == '0' {
		s.zero = true
		i++
	}
	start := i
	for i < len(spec) && isDigit(spec[i]) {
		i++
	}
	if i > start {
		w, ok := specNumber(spec[start:i])
		if !ok {
			return fieldSpec{}, false
		}
		s.width = w
	}
	if i < len(spec) && spec[i] == '.' {
		i++
		start = i
		for i < len(spec) && isDigit(spec[i]) {
			i++
		}
		if i == start {
			return fieldSpec{}, false
		}
		p, ok := specNumber(spec[start:i])
		if !ok {
			return fieldSpec{}, false
		}
		s.prec, s.hasPrec = p, true
	}
	if i < len(spec) {
		if !strings.ContainsRune("dboxXeEfFgGsc%", rune(spec[i])) {
			return fieldSpec{}, false
		}
		s.verb = spec[i]
		i++
	}
	return s, i == len(spec)
}

func specNumber(digits string) (int, bool) {
	n, err := strconv.Atoi(digits)
	if err != nil || n > maxSpecField {
		return 0, false
	}
	return n, true
}

func isAlign(c byte) bool { return c == '<' || c == '>' || c == '^' }
func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func (s fieldSpec) formatInt(v int64) string {
	neg := v < 0
	u := uint64(v)
	if neg {
		u = uint64(-v)
	}
	return s.formatIntBits(u, neg)
}

func (s fieldSpec) formatUint(v uint64) string {
	return s.formatIntBits(v, false)
}

func (s fieldSpec) formatIntBits(u uint64, neg bool) string {
	var prefix, body string
	switch s.verb {
	case 'b':
		body, prefix = strconv.FormatUint(u, 2), "0b"
	case 'o':
		body, prefix = strconv.FormatUint(u, 8), "0o"
	case 'x':
		body, prefix = strconv.FormatUint(u, 16), "0x"
	case 'X':
		body, prefix = strings.ToUpper(strconv.FormatUint(u, 16)), "0X"
	case 'c':
		return s.pad(string(rune(u)), false)
	case 'e', 'E', 'f', 'F', 'g', 'G', '%':
		f := float64(u)
		if neg {
			f = -f
		}
		return s.formatFloat(f)
	default:
		body = strconv.FormatUint(u, 10)
	}
	if !s.alt {
		prefix = ""
	}
	return s.padNumber(s.signOf(neg)+prefix, body)
}

func (s fieldSpec) formatFloat(v float64) string {
	neg := math.Signbit(v) && !math.IsNaN(v)
	a := math.Abs(v)
	var body string
	switch s.verb {
	case 'f', 'F':
		body = strconv.FormatFloat(a, 'f', s.precOr(6), 64)
	case 'e', 'E':
		body = strconv.FormatFloat(a, s.verb, s.precOr(6), 64)
	case 'g', 'G':
		body = strconv.FormatFloat(a, s.verb, s.precOr(-1), 64)
	case '%':
		body = strconv.FormatFloat(a*100, 'f', s.precOr(6), 64) + "%"
	default:
		if s.hasPrec {
			body = strconv.FormatFloat(a, 'g', s.prec, 64)
		} else {
			body = shortFloat(a)
		}
	}
	if s.verb == 'F' || s.verb == 'E' || s.verb == 'G' {
		body = strings.ToUpper(body)
	}
	return s.padNumber(s.signOf(neg), body)
}

// shortFloat renders the shortest representation, avoiding exponents for
// ordinary magnitudes.
func shortFloat(a float64) string {
	if a == 0 || (a >= 1e-4 && a < 1e16) {
		return strconv.FormatFloat(a, 'f', -1, 64)
	}
	return strconv.FormatFloat(a, 'g', -1, 64)
}

func (s fieldSpec) formatString(v string) string {
	if s.hasPrec && utf8.RuneCountInString(v) > s.prec {
		runes := []rune(v)
		v = string(runes[:s.prec])
	}
	return s.pad(v, false)
}

func (s fieldSpec) precOr(def int) int {
	if s.hasPrec {
		return s.prec
	}
	return def
}

func (s fieldSpec) signOf(neg bool) string {
	switch {
	case neg:
		return "-"
	case s.sign == '+':
		return "+"
	case s.sign == ' ':
		return " "
	default:
		return ""
	}
}

// padNumber pads a numeric rendering. With the 0 flag and no explicit
// alignment, zeros go between the sign/prefix and the digits.
func (s fieldSpec) padNumber(lead, body string) string {
	if s.zero && s.align == 0 {
		n := s.width - utf8.RuneCountInString(lead) - utf8.RuneCountInString(body)
		if n > 0 {
			return lead + strings.Repeat("0", n) + body
		}
		return lead + body
	}
	return s.pad(lead+body, true)
}

func (s fieldSpec) pad(v string, numeric bool) string {
	n := s.width - utf8.RuneCountInString(v)
	if n <= 0 {
		return v
	}
	fill := " "
	if s.fill != 0 {
		fill = string(s.fill)
	}
	align := s.align
	if align == 0 {
		align = '<'
		if numeric {
			align = '>'
		}
	}
	switch align {
	case '>':
		return strings.Repeat(fill, n) + v
	case '^':
		left := n / 2
		return strings.Repeat(fill, left) + v + strings.Repeat(fill, n-left)
	default:
		return v + strings.Repeat(fill, n)
	}
}
