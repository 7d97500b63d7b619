package repl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/ardnew/verse/lang"
	"github.com/ardnew/verse/log"
	"github.com/ardnew/verse/pkg"
)

const defaultEditor = "vi"

// editCommand implements [tea.ExecCommand]. It writes the session source
// to a temporary file, opens $EDITOR on it and parses the result,
// offering to edit again while the text has syntax errors.
type editCommand struct {
	ctx    context.Context
	source string
	log    log.Logger

	// prog is the parsed result; nil when the user emptied the file.
	prog *lang.Program

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

func (c *editCommand) SetStdin(r io.Reader)  { c.stdin = r }
func (c *editCommand) SetStdout(w io.Writer) { c.stdout = w }
func (c *editCommand) SetStderr(w io.Writer) { c.stderr = w }

// Run returns [ErrEditDeclined] when the user gives up on a text with
// syntax errors.
func (c *editCommand) Run() error {
	f, err := os.CreateTemp("", pkg.Name+"-repl-*"+pkg.SourceExt)
	if err != nil {
		return ErrEditor.Wrap(err)
	}

	path := f.Name()
	defer os.Remove(path)

	if err := f.Close(); err != nil {
		return ErrEditor.Wrap(err)
	}

	content := c.source
	answers := bufio.NewScanner(c.stdin)

	for {
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			return ErrEditor.Wrap(err)
		}

		if err := c.edit(path); err != nil {
			return err
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return ErrEditor.Wrap(err)
		}

		content = string(data)
		if strings.TrimSpace(content) == "" {
			return nil
		}

		prog, err := lang.ParseString(c.ctx, content,
			lang.WithCache(false),
			lang.WithLogger(c.log),
		)

		c.log.TraceContext(c.ctx, "repl edit parsed",
			slog.Int("source_bytes", len(content)),
			slog.Bool("ok", err == nil),
		)

		if err == nil {
			c.prog = prog

			return nil
		}

		fmt.Fprintf(c.stderr, "\n%s\n", err)
		fmt.Fprint(c.stdout, "Edit again? [Y/n] ")

		if !answers.Scan() {
			return ErrEditDeclined
		}

		switch strings.ToLower(strings.TrimSpace(answers.Text())) {
		case "n", "no":
			return ErrEditDeclined
		}
	}
}

func (c *editCommand) edit(path string) error {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = defaultEditor
	}

	cmd := exec.CommandContext(c.ctx, editor, path)
	cmd.Stdin = c.stdin
	cmd.Stdout = c.stdout
	cmd.Stderr = c.stderr

	if err := cmd.Run(); err != nil {
		return ErrEditor.With(slog.String("editor", editor)).Wrap(err)
	}

	return nil
}
