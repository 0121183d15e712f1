package json

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// maxIndent caps Indent's width: beyond 8 spaces a generator's pretty-
// print output has diminishing legibility return.
const maxIndent = 8

// Style controls Write/Marshal's text layout. The zero value is
// CompactStyle: no extra whitespace, matching the smallest valid
// encoding of the tree.
type Style struct {
	indent int // 0 = compact
}

// CompactStyle writes with no insignificant whitespace.
func CompactStyle() Style { return Style{} }

// Indent writes pretty-printed, each nesting level indented by n spaces
// (capped at 8). Trailing commas are never emitted in either style.
func Indent(n int) Style {
	if n < 0 {
		n = 0
	}
	if n > maxIndent {
		n = maxIndent
	}
	return Style{indent: n}
}

// Marshal renders v as a JSON text using the given style.
func Marshal(v *Value, style Style) ([]byte, error) {
	var sb strings.Builder
	if err := Write(&sb, v, style); err != nil {
		return nil, err
	}
	return []byte(sb.String()), nil
}

// Write renders v as a JSON text into w using the given style.
func Write(w io.Writer, v *Value, style Style) error {
	g := &generator{w: w, style: style}
	return g.value(v, 0)
}

type generator struct {
	w     io.Writer
	style Style
}

func (g *generator) pretty() bool { return g.style.indent > 0 }

func (g *generator) newline(depth int) error {
	if !g.pretty() {
		return nil
	}
	if _, err := io.WriteString(g.w, "\n"+strings.Repeat(" ", depth*g.style.indent)); err != nil {
		return err
	}
	return nil
}

func (g *generator) value(v *Value, depth int) error {
	if v == nil {
		_, err := io.WriteString(g.w, "null")
		return err
	}
	switch v.typ {
	case Null:
		_, err := io.WriteString(g.w, "null")
		return err
	case Boolean:
		s := "false"
		if v.b {
			s = "true"
		}
		_, err := io.WriteString(g.w, s)
		return err
	case IntegralNumber:
		_, err := io.WriteString(g.w, strconv.FormatInt(v.i, 10))
		return err
	case FloatNumber:
		_, err := io.WriteString(g.w, strconv.FormatFloat(v.f, 'g', -1, 64))
		return err
	case String:
		return g.string(v.s)
	case Array:
		return g.array(v, depth)
	case Object:
		return g.object(v, depth)
	default:
		return fmt.Errorf("%w: cannot render value of type %v", ErrType, v.typ)
	}
}

func (g *generator) string(s string) error {
	var sb strings.Builder
	sb.WriteByte('"')
	for _, r := range s {
		if r == '"' || r == '\\' {
			sb.WriteByte('\\')
		}
		if r < 0x20 {
			fmt.Fprintf(&sb, `\u%04x`, r)
		} else {
			sb.WriteRune(r)
		}
	}
	sb.WriteByte('"')
	_, err := io.WriteString(g.w, sb.String())
	return err
}

func (g *generator) array(v *Value, depth int) error {
	if len(v.arr) == 0 {
		_, err := io.WriteString(g.w, "[]")
		return err
	}
	if _, err := io.WriteString(g.w, "["); err != nil {
		return err
	}
	for i, e := range v.arr {
		if i > 0 {
			if _, err := io.WriteString(g.w, ","); err != nil {
				return err
			}
		}
		if err := g.newline(depth + 1); err != nil {
			return err
		}
		if err := g.value(e, depth+1); err != nil {
			return err
		}
	}
	if err := g.newline(depth); err != nil {
		return err
	}
	_, err := io.WriteString(g.w, "]")
	return err
}

func (g *generator) object(v *Value, depth int) error {
	if v.obj == nil || v.obj.Len() == 0 {
		_, err := io.WriteString(g.w, "{}")
		return err
	}
	if _, err := io.WriteString(g.w, "{"); err != nil {
		return err
	}
	first := true
	var outerErr error
	v.obj.Range(func(k string, val *Value) bool {
		if !first {
			if _, err := io.WriteString(g.w, ","); err != nil {
				outerErr = err
				return false
			}
		}
		first = false
		if err := g.newline(depth + 1); err != nil {
			outerErr = err
			return false
		}
		if err := g.string(k); err != nil {
			outerErr = err
			return false
		}
		sep := ":"
		if g.pretty() {
			sep = ": "
		}
		if _, err := io.WriteString(g.w, sep); err != nil {
			outerErr = err
			return false
		}
		if err := g.value(val, depth+1); err != nil {
			outerErr = err
			return false
		}
		return true
	})
	if outerErr != nil {
		return outerErr
	}
	if err := g.newline(depth); err != nil {
		return err
	}
	_, err := io.WriteString(g.w, "}")
	return err
}
