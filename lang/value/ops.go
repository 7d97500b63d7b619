package value

import (
	"log/slog"
)

// Add returns a + b.
func Add(a, b Value) (Value, error) {
	return arith("+", a, b,
		func(x, y int64) (int64, error) { return x + y, nil },
		func(x, y float64) float64 { return x + y })
}

// Sub returns a - b.
func Sub(a, b Value) (Value, error) {
	return arith("-", a, b,
		func(x, y int64) (int64, error) { return x - y, nil },
		func(x, y float64) float64 { return x - y })
}

// Mul returns a * b.
func Mul(a, b Value) (Value, error) {
	return arith("*", a, b,
		func(x, y int64) (int64, error) { return x * y, nil },
		func(x, y float64) float64 { return x * y })
}

// Div returns a / b. Integer division truncates toward zero and fails on
// a zero divisor; float division follows IEEE 754.
func Div(a, b Value) (Value, error) {
	return arith("/", a, b,
		func(x, y int64) (int64, error) {
			if y == 0 {
				return 0, ErrDivisionByZero.With(slog.Int64("dividend", x))
			}

			return x / y, nil
		},
		func(x, y float64) float64 { return x / y })
}

func arith(
	op string,
	a, b Value,
	ints func(x, y int64) (int64, error),
	floats func(x, y float64) float64,
) (Value, error) {
	switch x := a.(type) {
	case Integer:
		if y, ok := b.(Integer); ok {
			r, err := ints(int64(x), int64(y))
			if err != nil {
				return nil, err
			}

			return Integer(r), nil
		}
	case Float:
		if y, ok := b.(Float); ok {
			return Float(floats(float64(x), float64(y))), nil
		}
	}

	return nil, mismatch(op, a, b)
}

// Neg returns -a.
func Neg(a Value) (Value, error) {
	switch x := a.(type) {
	case Integer:
		return -x, nil
	case Float:
		return -x, nil
	}

	return nil, ErrTypeMismatch.
		Detail("for unary `-`: "+KindOf(a)).
		With(slog.String("op", "-"), slog.String("operand", KindOf(a)))
}

// Not returns true unless a is the Bool true.
func Not(a Value) Value {
	b, ok := a.(Bool)

	return Bool(!(ok && bool(b)))
}

// Greater returns a > b.
func Greater(a, b Value) (Value, error) {
	return compare(">", a, b,
		func(x, y int64) bool { return x > y },
		func(x, y float64) bool { return x > y })
}

// GreaterEqual returns a >= b.
func GreaterEqual(a, b Value) (Value, error) {
	return compare(">=", a, b,
		func(x, y int64) bool { return x >= y },
		func(x, y float64) bool { return x >= y })
}

// Less returns a < b.
func Less(a, b Value) (Value, error) {
	return compare("<", a, b,
		func(x, y int64) bool { return x < y },
		func(x, y float64) bool { return x < y })
}

// LessEqual returns a <= b.
func LessEqual(a, b Value) (Value, error) {
	return compare("<=", a, b,
		func(x, y int64) bool { return x <= y },
		func(x, y float64) bool { return x <= y })
}

func compare(
	op string,
	a, b Value,
	ints func(x, y int64) bool,
	floats func(x, y float64) bool,
) (Value, error) {
	switch x := a.(type) {
	case Integer:
		if y, ok := b.(Integer); ok {
			return Bool(ints(int64(x), int64(y))), nil
		}
	case Float:
		if y, ok := b.(Float); ok {
			return Bool(floats(float64(x), float64(y))), nil
		}
	}

	return nil, mismatch(op, a, b)
}

// Equal compares two values of the same kind. Integer, Float, Bool and
// String are comparable; any other pairing is a type mismatch.
func Equal(a, b Value) (Value, error) {
	switch x := a.(type) {
	case Integer:
		if y, ok := b.(Integer); ok {
			return Bool(x == y), nil
		}
	case Float:
		if y, ok := b.(Float); ok {
			return Bool(x == y), nil
		}
	case Bool:
		if y, ok := b.(Bool); ok {
			return Bool(x == y), nil
		}
	case String:
		if y, ok := b.(String); ok {
			return Bool(x == y), nil
		}
	}

	return nil, mismatch("=", a, b)
}
