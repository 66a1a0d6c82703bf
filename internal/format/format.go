// Package format renders brace templates such as "Hello {0}" or "{0:.3f}".
//
// Placeholders are {N} (positional), {} (next argument) and either form
// followed by ":spec", where spec is [[fill]align][sign][#][0][width][.prec][type]
// with align one of < > ^ and type one of d b o x X e E f F g G s c %.
// "{{" and "}}" produce literal braces. Placeholders that refer to a missing
// argument are kept as written.
//
// Composite values are rendered recursively: slices and arrays as [a, b],
// maps as {k: v} with keys sorted, structs as {Field: v}, pointers by their
// target. A spec given for a composite applies to every leaf.
package format

import (
	"strconv"
	"strings"
)

// Formatter is the default template renderer. The zero value is ready to use.
type Formatter struct {
	// MaxDepth bounds recursion into nested values. Zero means 8.
	MaxDepth int
}

// New returns a Formatter with default settings.
func New() *Formatter {
	return &Formatter{}
}

// Format substitutes args into template.
func (f *Formatter) Format(template string, args []any) string {
	if strings.IndexAny(template, "{}") < 0 {
		return template
	}
	var sb strings.Builder
	sb.Grow(len(template) + 16*len(args))
	next := 0
	for i := 0; i < len(template); i++ {
		c := template[i]
		switch c {
		case '{':
			if i+1 < len(template) && template[i+1] == '{' {
				sb.WriteByte('{')
				i++
				continue
			}
			end := strings.IndexByte(template[i+1:], '}')
			if end < 0 {
				sb.WriteString(template[i:])
				return sb.String()
			}
			field := template[i+1 : i+1+end]
			raw := template[i : i+2+end]
			i += end + 1
			f.writeField(&sb, field, raw, args, &next)
		case '}':
			if i+1 < len(template) && template[i+1] == '}' {
				i++
			}
			sb.WriteByte('}')
		default:
			sb.WriteByte(c)
		}
	}
	return sb.String()
}

func (f *Formatter) writeField(sb *strings.Builder, field, raw string, args []any, next *int) {
	index, spec, hasSpec := field, "", false
	if colon := strings.IndexByte(field, ':'); colon >= 0 {
		index, spec, hasSpec = field[:colon], field[colon+1:], true
	}
	index = strings.TrimSpace(index)

	var n int
	if index == "" {
		n = *next
		*next++
	} else {
		v, err := strconv.Atoi(index)
		if err != nil || v < 0 {
			sb.WriteString(raw)
			return
		}
		n = v
	}
	if n >= len(args) {
		sb.WriteString(raw)
		return
	}

	var s fieldSpec
	if hasSpec {
		parsed, ok := parseSpec(spec)
		if !ok {
			sb.WriteString(raw)
			return
		}
		s = parsed
	}
	r := renderer{spec: s, maxDepth: f.maxDepth()}
	r.value(sb, args[n], 0, false)
}

func (f *Formatter) maxDepth() int {
	if f == nil || f.MaxDepth <= 0 {
		return 8
	}
	return f.MaxDepth
}
