package cli

import (
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/ardnew/verse/lang/host"
	"github.com/ardnew/verse/pkg"
)

// baseConfig is the base name of the configuration files.
const baseConfig = "config"

// pathEnv names the environment variable holding the source search list.
const pathEnv = "VERSE_PATH"

var defaultDirMode os.FileMode = 0o700

// configPath joins elem to the configuration directory.
func configPath(elem ...string) string {
	return filepath.Join(append([]string{pkg.ConfigDir()}, elem...)...)
}

// mkdirAllRequired creates the configuration and cache directories.
func mkdirAllRequired() error {
	for _, dir := range []string{pkg.ConfigDir(), pkg.CacheDir()} {
		if err := os.MkdirAll(dir, defaultDirMode); err != nil {
			return err
		}
	}

	return nil
}

// searchPath merges the --path directories in front of $VERSE_PATH. Empty
// and repeated entries are dropped.
func searchPath(dirs []string) []string {
	list := host.MungPrefix(os.Getenv(pathEnv), dirs...)

	var out []string

	for _, dir := range strings.Split(list, string(os.PathListSeparator)) {
		if dir != "" && !slices.Contains(out, dir) {
			out = append(out, dir)
		}
	}

	return out
}
