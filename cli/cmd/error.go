package cmd

import "github.com/ardnew/verse/pkg"

var (
	ErrSourceNotFound = pkg.NewError("source not found")
	ErrOpenSource     = pkg.NewError("open source")
	ErrWriteDump      = pkg.NewError("write program dump")
	ErrWriteConfig    = pkg.NewError("write configuration file")
	ErrFileExists     = pkg.NewError("file exists (use --force to overwrite)")
	ErrNoConfigPath   = pkg.NewInternalError("configuration path undefined")
)
