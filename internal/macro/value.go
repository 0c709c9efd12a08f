package macro

import (
	"strconv"
)

// ValueKind tags the literal type of a macro argument.
type ValueKind int

const (
	KindString ValueKind = iota
	KindInt
	KindFloat
	KindBool
)

func (k ValueKind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	default:
		return "unknown"
	}
}

// Value is one typed macro argument.
type Value struct {
	Kind  ValueKind
	Str   string
	Int   int64
	Float float64
	Bool  bool
}

func StringValue(s string) Value { return Value{Kind: KindString, Str: s} }
func IntValue(i int64) Value     { return Value{Kind: KindInt, Int: i} }
func FloatValue(f float64) Value { return Value{Kind: KindFloat, Float: f} }
func BoolValue(b bool) Value     { return Value{Kind: KindBool, Bool: b} }

// Any returns the plain Go value handed to templates.
func (v Value) Any() any {
	switch v.Kind {
	case KindInt:
		return v.Int
	case KindFloat:
		return v.Float
	case KindBool:
		return v.Bool
	default:
		return v.Str
	}
}

func (v Value) String() string {
	switch v.Kind {
	case KindInt:
		return strconv.FormatInt(v.Int, 10)
	case KindFloat:
		return strconv.FormatFloat(v.Float, 'g', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.Bool)
	default:
		return strconv.Quote(v.Str)
	}
}

// InvocationKind distinguishes inline from body macros.
type InvocationKind int

const (
	Inline InvocationKind = iota
	Body
)

func (k InvocationKind) String() string {
	if k == Body {
		return "body"
	}
	return "inline"
}

// Invocation is one parsed macro occurrence.
type Invocation struct {
	Name string
	Args map[string]Value
	// Body holds the raw inner text of a body macro; nil for inline macros.
	Body  *string
	Kind  InvocationKind
	Start int // byte offset of the opening delimiter
	End   int // byte offset just past the closing delimiter (or the matching end tag)
	Line  int
}
