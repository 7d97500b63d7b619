package repl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/peterh/liner"

	"github.com/ardnew/verse/lang"
	"github.com/ardnew/verse/lang/value"
	"github.com/ardnew/verse/log"
)

const (
	plainPrompt = "> "
	ctrlPrefix  = ":"
)

// Interactive reports whether stdin and stdout are both terminals, which
// the full-screen REPL requires.
func Interactive() bool {
	in, out := os.Stdin.Fd(), os.Stdout.Fd()

	return (isatty.IsTerminal(in) || isatty.IsCygwinTerminal(in)) &&
		(isatty.IsTerminal(out) || isatty.IsCygwinTerminal(out))
}

// prompter reads lines; *liner.State implements it.
type prompter interface {
	Prompt(prompt string) (string, error)
	AppendHistory(item string)
}

// RunPlain starts the line-mode REPL on prog, which may be nil. Commands
// are entered with a leading colon, as in ":list".
func RunPlain(ctx context.Context, prog *lang.Program, cacheDir string, logger log.Logger) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	session, history, err := start(ctx, prog, cacheDir, logger)
	if err != nil {
		return err
	}

	line := liner.NewLiner()
	defer line.Close()

	line.SetCtrlCAborts(true)
	line.SetWordCompleter(wordCompleter(func() []string {
		return append(session.Candidates(), prefixed(ctrlCommands)...)
	}))

	for _, l := range history.Lines(modeEval) {
		line.AppendHistory(l)
	}

	return loop(ctx, session, history, line, os.Stdout, logger)
}

func prefixed(cmds []string) []string {
	out := make([]string, len(cmds))
	for i, c := range cmds {
		out[i] = ctrlPrefix + c
	}

	return out
}

// loop reads and evaluates lines from p until end of input or quit.
func loop(
	ctx context.Context,
	session *Session,
	history *History,
	p prompter,
	out io.Writer,
	logger log.Logger,
) error {
	if s := session.Output(); s != "" {
		fmt.Fprint(out, s)
	}

	for {
		if err := context.Cause(ctx); err != nil {
			return err
		}

		input, err := p.Prompt(plainPrompt)

		switch {
		case errors.Is(err, io.EOF):
			fmt.Fprintln(out)

			return nil
		case errors.Is(err, liner.ErrPromptAborted):
			continue
		case err != nil:
			return err
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		p.AppendHistory(input)

		mode := modeEval

		cmd, isCmd := strings.CutPrefix(input, ctrlPrefix)
		if isCmd {
			mode = modeCtrl
		}

		if err := history.Add(strings.TrimSpace(cmd), mode); err != nil {
			logger.WarnContext(ctx, "could not save history", slog.Any("error", err))
		}

		if !isCmd {
			res, err := session.Eval(ctx, input)
			printResult(out, res, err)

			continue
		}

		if quit := plainCommand(out, session, strings.TrimSpace(cmd)); quit {
			return nil
		}
	}
}

func printResult(out io.Writer, res Result, err error) {
	fmt.Fprint(out, res.Output)

	switch {
	case err != nil:
		fmt.Fprintln(out, "error:", err)
	case res.Value != nil:
		fmt.Fprintln(out, value.Format(res.Value))
	}
}

// plainCommand runs a colon command and reports whether to quit.
func plainCommand(out io.Writer, session *Session, cmd string) bool {
	fields := strings.Fields(cmd)
	if len(fields) == 0 {
		return false
	}

	switch fields[0] {
	case "q", "quit", "exit":
		return true
	case "h", "help":
		fmt.Fprintln(out, "Commands: "+strings.Join(prefixed(ctrlCommands), ", "))
		fmt.Fprintln(out, "Editing and clearing need a terminal; run without --plain.")
	case "l", "list":
		for _, e := range session.List() {
			fmt.Fprintf(out, "  %s %s\n", e.Name, e.Detail)
		}
	case "e", "edit", "c", "clear":
		fmt.Fprintf(out, "%s is not available in plain mode\n", fields[0])
	default:
		fmt.Fprintf(out, "unknown command: %s (try :help)\n", fields[0])
	}

	return false
}
