package vm

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

const tab = "  "

// Format renders v the way PRINT shows it: a top-level string is written
// bare, everything else uses its display form.
func Format(v Value) string {
	if s, ok := v.(StrValue); ok {
		return string(s)
	}
	var sb strings.Builder
	inspect(&sb, v, 1)
	return sb.String()
}

func (b BoolValue) String() string    { return Format(b) }
func (s StrValue) String() string     { return Format(s) }
func (i IntValue) String() string     { return Format(i) }
func (f FloatValue) String() string   { return Format(f) }
func (n NullValue) String() string    { return Format(n) }
func (a *ArrayValue) String() string  { return Format(a) }
func (o *ObjectValue) String() string { return Format(o) }

func formatFloat(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	case math.IsNaN(f):
		return "NaN"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// inspect writes the display form. Containers with three or more entries
// are broken over lines indented by depth.
func inspect(sb *strings.Builder, v Value, indent int) {
	switch val := v.(type) {
	case FloatValue:
		sb.WriteString(formatFloat(float64(val)))
	case IntValue:
		sb.WriteString(strconv.FormatInt(int64(val), 10))
	case BoolValue:
		sb.WriteString(strconv.FormatBool(bool(val)))
	case StrValue:
		sb.WriteByte('"')
		sb.WriteString(string(val))
		sb.WriteByte('"')
	case *ArrayValue:
		long := len(val.Elems) >= 3
		sb.WriteByte('[')
		if long {
			newline(sb, indent)
		}
		for i, e := range val.Elems {
			if long {
				inspect(sb, e, indent+1)
			} else {
				inspect(sb, e, 1)
			}
			if i < len(val.Elems)-1 {
				sb.WriteByte(',')
				if long {
					newline(sb, indent)
				} else {
					sb.WriteByte(' ')
				}
			}
		}
		if long {
			newline(sb, indent-1)
		}
		sb.WriteByte(']')
	case *ObjectValue:
		entries := val.Entries()
		long := len(entries) >= 3
		sb.WriteByte('{')
		if long {
			newline(sb, indent)
		} else if len(entries) > 0 {
			sb.WriteByte(' ')
		}
		for i, e := range entries {
			sb.WriteByte('[')
			inspect(sb, e.Key, 1)
			sb.WriteString("]: ")
			if long {
				inspect(sb, e.Value, indent+1)
			} else {
				inspect(sb, e.Value, 1)
			}
			if i < len(entries)-1 {
				sb.WriteByte(',')
				if long {
					newline(sb, indent)
				} else {
					sb.WriteByte(' ')
				}
			}
		}
		if long {
			newline(sb, indent-1)
		} else if len(entries) > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteByte('}')
	default:
		sb.WriteString("null")
	}
}

func newline(sb *strings.Builder, indent int) {
	sb.WriteByte('\n')
	sb.WriteString(strings.Repeat(tab, indent))
}

// Describe is the debug rendering used in fault payloads, e.g. Int(5) or
// String("a").
func Describe(v Value) string {
	switch val := v.(type) {
	case FloatValue:
		return fmt.Sprintf("Float(%s)", formatFloat(float64(val)))
	case IntValue:
		return fmt.Sprintf("Int(%d)", val)
	case BoolValue:
		return fmt.Sprintf("Boolean(%t)", bool(val))
	case StrValue:
		return fmt.Sprintf("String(%q)", string(val))
	case *ArrayValue:
		parts := make([]string, len(val.Elems))
		for i, e := range val.Elems {
			parts[i] = Describe(e)
		}
		return "Array([" + strings.Join(parts, ", ") + "])"
	case *ObjectValue:
		entries := val.Entries()
		parts := make([]string, len(entries))
		for i, e := range entries {
			parts[i] = Describe(e.Key) + ": " + Describe(e.Value)
		}
		return "Object({" + strings.Join(parts, ", ") + "})"
	}
	return "Null"
}
