package format

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

type renderer struct {
	spec     fieldSpec
	maxDepth int
}

var (
	stringerType = reflect.TypeFor[fmt.Stringer]()
	errorType    = reflect.TypeFor[error]()
)

// value writes v. nested is set inside containers, where plain strings are
// quoted.
func (r renderer) value(sb *strings.Builder, v any, depth int, nested bool) {
	if v == nil {
		sb.WriteString(r.spec.pad("nil", false))
		return
	}
	switch x := v.(type) {
	case string:
		r.str(sb, x, nested)
		return
	case int:
		sb.WriteString(r.spec.formatInt(int64(x)))
		return
	case float64:
		sb.WriteString(r.spec.formatFloat(x))
		return
	case bool:
		sb.WriteString(r.spec.pad(strconv.FormatBool(x), false))
		return
	}
	r.reflectValue(sb, reflect.ValueOf(v), depth, nested)
}

func (r renderer) str(sb *strings.Builder, s string, nested bool) {
	if nested && r.spec.isZero() {
		sb.WriteString(strconv.Quote(s))
		return
	}
	sb.WriteString(r.spec.formatString(s))
}

func (r renderer) reflectValue(sb *strings.Builder, rv reflect.Value, depth int, nested bool) {
	if !rv.IsValid() {
		sb.WriteString(r.spec.pad("nil", false))
		return
	}
	if depth > r.maxDepth {
		sb.WriteString("...")
		return
	}

	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		if rv.IsNil() {
			sb.WriteString(r.spec.pad("nil", false))
			return
		}
	}

	if rv.CanInterface() && (rv.Type().Implements(errorType) || rv.Type().Implements(stringerType)) {
		if text, ok := describe(rv.Interface()); ok {
			r.str(sb, text, false)
			return
		}
	}

	switch rv.Kind() {
	case reflect.Bool:
		sb.WriteString(r.spec.pad(strconv.FormatBool(rv.Bool()), false))
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		sb.WriteString(r.spec.formatInt(rv.Int()))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		sb.WriteString(r.spec.formatUint(rv.Uint()))
	case reflect.Float32:
		// Round-trip through the 32-bit shortest form so 0.1f prints as 0.1.
		f, _ := strconv.ParseFloat(strconv.FormatFloat(rv.Float(), 'g', -1, 32), 64)
		sb.WriteString(r.spec.formatFloat(f))
	case reflect.Float64:
		sb.WriteString(r.spec.formatFloat(rv.Float()))
	case reflect.Complex64, reflect.Complex128:
		sb.WriteString(r.spec.pad(strconv.FormatComplex(rv.Complex(), 'g', -1, 128), true))
	case reflect.String:
		r.str(sb, rv.String(), nested)
	case reflect.Pointer, reflect.Interface:
		r.reflectValue(sb, rv.Elem(), depth+1, nested)
	case reflect.Slice, reflect.Array:
		sb.WriteByte('[')
		for i := 0; i < rv.Len(); i++ {
			if i > 0 {
				sb.WriteString(", ")
			}
			r.reflectValue(sb, rv.Index(i), depth+1, true)
		}
		sb.WriteByte(']')
	case reflect.Map:
		r.mapValue(sb, rv, depth)
	case reflect.Struct:
		r.structValue(sb, rv, depth)
	default:
		sb.WriteString(r.spec.pad("0x"+strconv.FormatUint(uint64(rv.Pointer()), 16), false))
	}
}

func (r renderer) mapValue(sb *strings.Builder, rv reflect.Value, depth int) {
	type pair struct{ k, v string }
	pairs := make([]pair, 0, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		var k, v strings.Builder
		r.reflectValue(&k, iter.Key(), depth+1, true)
		r.reflectValue(&v, iter.Value(), depth+1, true)
		pairs = append(pairs, pair{k.String(), v.String()})
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].k < pairs[j].k })
	sb.WriteByte('{')
	for i, p := range pairs {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(p.k)
		sb.WriteString(": ")
		sb.WriteString(p.v)
	}
	sb.WriteByte('}')
}

func (r renderer) structValue(sb *strings.Builder, rv reflect.Value, depth int) {
	t := rv.Type()
	sb.WriteByte('{')
	first := true
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		if !first {
			sb.WriteString(", ")
		}
		first = false
		sb.WriteString(field.Name)
		sb.WriteString(": ")
		r.reflectValue(sb, rv.Field(i), depth+1, true)
	}
	sb.WriteByte('}')
}

// describe calls Error or String, treating a panic (typically a nil
// receiver) as "no description".
func describe(v any) (text string, ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	switch x := v.(type) {
	case error:
		return x.Error(), true
	case fmt.Stringer:
		return x.String(), true
	}
	return "", false
}
