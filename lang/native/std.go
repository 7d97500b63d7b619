package native

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
	"unicode/utf8"
)

var errSingleChar = errors.New("ToString expects a single character")

// Std returns the standard natives. Print writes to out.
func Std(out io.Writer) []Func {
	return []Func{
		{
			Name:   "Print",
			Params: []Param{{Name: "message", Type: TypeString}},
			Result: TypeVoid,
			Impl: func(_ context.Context, args []any) (any, error) {
				_, err := fmt.Fprintln(out, args[0].(string))

				return nil, err
			},
		},
		{
			Name:   "Sqrt",
			Params: []Param{{Name: "value", Type: TypeNumber}},
			Result: TypeNumber,
			Impl: func(_ context.Context, args []any) (any, error) {
				switch x := args[0].(type) {
				case int64:
					return math.Sqrt(float64(x)), nil
				default:
					return math.Sqrt(x.(float64)), nil
				}
			},
		},
		{
			Name: "Join",
			Params: []Param{
				{Name: "list", Type: TypeStringList},
				{Name: "separator", Type: TypeString},
			},
			Result: TypeString,
			Impl: func(_ context.Context, args []any) (any, error) {
				return strings.Join(args[0].([]string), args[1].(string)), nil
			},
		},
		{
			Name:   "ToString",
			Params: []Param{{Name: "character", Type: TypeString}},
			Result: TypeString,
			Impl: func(_ context.Context, args []any) (any, error) {
				s := args[0].(string)
				if utf8.RuneCountInString(s) != 1 {
					return nil, errSingleChar
				}

				return s, nil
			},
		},
	}
}
