// Package value defines the runtime values of Verse programs.
//
// Numbers are strict: an [Integer] never combines with a [Float]. Every
// operation that mixes the two, or applies arithmetic to a non-number,
// fails with [ErrTypeMismatch]. A nil [Value] means "no value".
package value

import (
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/ardnew/verse/pkg"
)

// Errors returned by value operations.
var (
	ErrTypeMismatch   = pkg.NewError("type mismatch")
	ErrDivisionByZero = pkg.NewError("division by zero")
)

// Value is a runtime value. The set of implementations is closed.
type Value interface {
	// Kind names the variant, as used in error messages.
	Kind() string
	String() string
	value()
}

// Number is a [Value] that supports arithmetic.
type Number interface {
	Value
	number()
}

type (
	// Integer is a signed 64-bit integer.
	Integer int64
	// Float is an IEEE 754 double.
	Float float64
	// Bool is a boolean.
	Bool bool
	// String is a UTF-8 string.
	String string
	// List is an ordered sequence of values.
	List []Value
)

func (Integer) Kind() string { return "integer" }
func (Float) Kind() string   { return "float" }
func (Bool) Kind() string    { return "logic" }
func (String) Kind() string  { return "string" }
func (List) Kind() string    { return "list" }

func (v Integer) String() string { return strconv.FormatInt(int64(v), 10) }

// String always includes a decimal point for finite values, so 2.0 prints
// as "2.0" rather than "2".
func (v Float) String() string {
	f := float64(v)

	switch {
	case math.IsInf(f, 1):
		return "+Inf"
	case math.IsInf(f, -1):
		return "-Inf"
	case math.IsNaN(f):
		return "NaN"
	}

	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}

	return s
}

func (v Bool) String() string   { return strconv.FormatBool(bool(v)) }
func (v String) String() string { return string(v) }

func (v List) String() string {
	var sb strings.Builder

	sb.WriteByte('[')

	for i, e := range v {
		if i > 0 {
			sb.WriteString(", ")
		}

		sb.WriteString(Format(e))
	}

	sb.WriteByte(']')

	return sb.String()
}

func (Integer) value() {}
func (Float) value()   {}
func (Bool) value()    {}
func (String) value()  {}
func (List) value()    {}

func (Integer) number() {}
func (Float) number()   {}

// Format renders v for display. A nil value renders as "nil".
func Format(v Value) string {
	if v == nil {
		return "nil"
	}

	return v.String()
}

// KindOf returns the kind name of v, or "nil" for no value.
func KindOf(v Value) string {
	if v == nil {
		return "nil"
	}

	return v.Kind()
}

// Of converts a host value to a Value. It returns false for unsupported
// types. Both int and int64 map to [Integer].
func Of(x any) (Value, bool) {
	switch x := x.(type) {
	case nil:
		return nil, true
	case Value:
		return x, true
	case int:
		return Integer(x), true
	case int64:
		return Integer(x), true
	case float64:
		return Float(x), true
	case bool:
		return Bool(x), true
	case string:
		return String(x), true
	case []string:
		l := make(List, len(x))
		for i, s := range x {
			l[i] = String(s)
		}

		return l, true
	case []any:
		l := make(List, len(x))

		for i, e := range x {
			v, ok := Of(e)
			if !ok {
				return nil, false
			}

			l[i] = v
		}

		return l, true
	}

	return nil, false
}

// Host converts v to its host representation: int64, float64, bool,
// string, []string (when every element is a String) or []any.
func Host(v Value) any {
	switch v := v.(type) {
	case nil:
		return nil
	case Integer:
		return int64(v)
	case Float:
		return float64(v)
	case Bool:
		return bool(v)
	case String:
		return string(v)
	case List:
		ss := make([]string, len(v))

		for i, e := range v {
			s, ok := e.(String)
			if !ok {
				return hostList(v)
			}

			ss[i] = string(s)
		}

		return ss
	}

	return nil
}

func hostList(l List) []any {
	out := make([]any, len(l))
	for i, e := range l {
		out[i] = Host(e)
	}

	return out
}

func mismatch(op string, a, b Value) *pkg.Error {
	return ErrTypeMismatch.
		Detail("for `"+op+"`: "+KindOf(a)+" and "+KindOf(b)).
		With(
			slog.String("op", op),
			slog.String("left", KindOf(a)),
			slog.String("right", KindOf(b)),
		)
}
