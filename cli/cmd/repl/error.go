package repl

import "github.com/ardnew/verse/pkg"

// Sentinel errors.
var (
	ErrOutOfBounds  = pkg.NewError("history index out of range")
	ErrEditDeclined = pkg.NewError("edit declined")
	ErrEditor       = pkg.NewError("editor failed")
)
