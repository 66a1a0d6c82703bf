package format

import (
	"errors"
	"strings"
	"testing"
)

type mode uint8

func (m mode) String() string {
	if m == 1 {
		return "Client"
	}
	return "Server"
}

type point struct {
	X, Y  int
	label string
}

func TestFormat(t *testing.T) {
	f := New()
	ptr := 7
	var nilPtr *int
	tests := []struct {
		name     string
		template string
		args     []any
		want     string
	}{
		{"positional", "Hello {0}", []any{42}, "Hello 42"},
		{"precision", "{0:.3f}", []any{3.14159265}, "3.142"},
		{"auto index", "{} and {}", []any{"a", "b"}, "a and b"},
		{"reorder", "{1} {0} {1}", []any{"x", "y"}, "y x y"},
		{"no placeholders", "plain text", nil, "plain text"},
		{"escaped braces", "{{0}} is {0}", []any{1}, "{0} is 1"},
		{"closing escape", "a}}b", nil, "a}b"},
		{"missing arg kept", "{0} {3}", []any{"only"}, "only {3}"},
		{"bad index kept", "{x}", []any{1}, "{x}"},
		{"unterminated", "value {0", []any{1}, "value {0"},
		{"bad spec kept", "{0:.}", []any{1.5}, "{0:.}"},
		{"oversized width kept", "{0:1000000000000}", []any{"x"}, "{0:1000000000000}"},
		{"oversized precision kept", "{0:.99999f}", []any{1.5}, "{0:.99999f}"},
		{"width overflowing int kept", "{0:99999999999999999999999}", []any{1}, "{0:99999999999999999999999}"},
		{"width at cap", "{0:4096}", []any{""}, strings.Repeat(" ", 4096)},
		{"width right aligns numbers", "[{0:5}]", []any{42}, "[   42]"},
		{"width left aligns strings", "[{0:5}]", []any{"ab"}, "[ab   ]"},
		{"center with fill", "[{0:*^7}]", []any{"mid"}, "[**mid**]"},
		{"zero pad", "{0:08.2f}", []any{-3.14159}, "-0003.14"},
		{"sign", "{0:+d}", []any{5}, "+5"},
		{"hex alt", "{0:#x}", []any{255}, "0xff"},
		{"hex upper", "{0:X}", []any{255}, "FF"},
		{"binary", "{0:b}", []any{5}, "101"},
		{"percent", "{0:.1%}", []any{0.256}, "25.6%"},
		{"exp", "{0:.2e}", []any{12345.678}, "1.23e+04"},
		{"int as float", "{0:.1f}", []any{3}, "3.0"},
		{"string truncate", "{0:.3}", []any{"abcdef"}, "abc"},
		{"float default", "{0}", []any{0.1}, "0.1"},
		{"float32", "{0}", []any{float32(0.1)}, "0.1"},
		{"big float", "{0}", []any{100000000.0}, "100000000"},
		{"bool", "{0}", []any{true}, "true"},
		{"nil", "{0}", []any{nil}, "nil"},
		{"nil pointer", "{0}", []any{nilPtr}, "nil"},
		{"pointer", "{0}", []any{&ptr}, "7"},
		{"stringer", "{0}", []any{mode(1)}, "Client"},
		{"error", "{0}", []any{errors.New("boom")}, "boom"},
		{"slice", "{0}", []any{[]int{1, 2, 3}}, "[1, 2, 3]"},
		{"slice of strings", "{0}", []any{[]string{"a", "b"}}, `["a", "b"]`},
		{"slice with spec", "{0:.1f}", []any{[]float64{1, 2.26}}, "[1.0, 2.3]"},
		{"map sorted", "{0}", []any{map[string]int{"b": 2, "a": 1}}, `{"a": 1, "b": 2}`},
		{"struct exported only", "{0}", []any{point{X: 1, Y: 2, label: "p"}}, "{X: 1, Y: 2}"},
		{"nested", "{0}", []any{map[int][]mode{1: {0, 1}}}, "{1: [Server, Client]}"},
		{"unicode", "{0}→{1}", []any{"α", "β"}, "α→β"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := f.Format(tt.template, tt.args); got != tt.want {
				t.Fatalf("Format(%q, %v) = %q, want %q", tt.template, tt.args, got, tt.want)
			}
		})
	}
}

type node struct {
	Next *node
}

func TestFormatBoundsRecursion(t *testing.T) {
	n := &node{}
	n.Next = n
	f := &Formatter{MaxDepth: 3}
	got := f.Format("{0}", []any{n})
	if got != "{Next: {Next: ...}}" {
		t.Fatalf("got %q", got)
	}
}

func TestParseSpec(t *testing.T) {
	s, ok := parseSpec("_<+#010.4f")
	if !ok {
		t.Fatal("spec should parse")
	}
	if s.fill != '_' || s.align != '<' || s.sign != '+' || !s.alt || !s.zero || s.width != 10 || s.prec != 4 || !s.hasPrec || s.verb != 'f' {
		t.Fatalf("unexpected spec %+v", s)
	}
	for _, bad := range []string{"q", "5z", ".f", "10.2fx"} {
		if _, ok := parseSpec(bad); ok {
			t.Fatalf("%q should not parse", bad)
		}
	}
}
