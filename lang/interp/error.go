package interp

import (
	"log/slog"

	"github.com/ardnew/verse/lang/env"
	"github.com/ardnew/verse/lang/token"
	"github.com/ardnew/verse/lang/value"
	"github.com/ardnew/verse/pkg"
)

// Runtime errors. Value and scope failures keep the sentinels of the
// packages that raise them and are re-exported here for convenience.
var (
	ErrDuplicateFunction = pkg.NewError("duplicate function")
	ErrNoEntry           = pkg.NewError("no entry function `Main`")
	ErrUndefinedFunction = pkg.NewError("undefined function")
	ErrNotCallable       = pkg.NewError("expression is not callable")
	ErrArity             = pkg.NewError("wrong number of arguments")
	ErrNoBody            = pkg.NewError("function has no body")
	ErrMaxDepth          = pkg.NewError("maximum call depth exceeded")
	ErrUnsupported       = pkg.NewError("unsupported operation")

	ErrTypeMismatch      = value.ErrTypeMismatch
	ErrDivisionByZero    = value.ErrDivisionByZero
	ErrRedefinedVariable = env.ErrRedefinedVariable
	ErrUndefinedVariable = env.ErrUndefinedVariable
)

// Internal errors.
var (
	ErrUnknownNode     = pkg.NewInternalError("unknown node")
	ErrUnknownOperator = pkg.NewInternalError("unknown operator")
)

// located attaches the source position of the failing node to err.
func located(err error, pos token.Pos) error {
	return pkg.WrapError(err).With(slog.String("pos", pos.String()))
}
