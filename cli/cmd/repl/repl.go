// Package repl implements the interactive read-eval-print loop.
//
// Two front ends share a [Session]: a full-screen line editor built on
// bubbletea with fuzzy completion and signature hints, and a plain
// line-mode loop used when stdin is not a terminal.
package repl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/verse/lang"
	"github.com/ardnew/verse/lang/value"
	"github.com/ardnew/verse/log"
)

type (
	// editDoneMsg carries the program parsed from the editor.
	editDoneMsg struct{ prog *lang.Program }
	// editCancelledMsg reports an emptied editor buffer.
	editCancelledMsg struct{}
	// editDeclinedMsg reports that the user gave up on a broken edit.
	editDeclinedMsg struct{}
	// editErrorMsg reports any other editor failure.
	editErrorMsg struct{ err error }
)

const (
	evalPrompt = "➜ "
	ctrlPrompt = " :"
)

const helpText = `
Commands (press Esc to toggle command mode):

  help     Show this help
  list     List functions and globals
  edit     Edit the session in $EDITOR
  clear    Clear the screen
  quit     Exit

Type declarations, statements or expressions to evaluate them.
The value of a trailing expression is printed.

  Tab / Shift-Tab     cycle completions
  Space               accept the current completion
  Up / Down           history (switches mode to match the entry)
  Shift-Up / Down     history in the current mode only
  Alt-Up / Down       command history
  Ctrl-C              clear the line, or exit on an empty line
  Ctrl-D              exit on an empty line
`

type inputMode int

const (
	modeEval inputMode = iota
	modeCtrl
)

var (
	promptStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true)
	ctrlPromptStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("5")).Bold(true)
	inputStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	resultStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	outputStyle        = lipgloss.NewStyle()
	errorStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	hintStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	suggestionStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	matchStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("4")).Bold(true)
	selectedStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("4"))
	selectedMatchStyle = selectedStyle.Bold(true)

	signatureStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	signatureNameStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true)
	currentParamStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
)

// model is the bubbletea model of the terminal REPL.
type model struct {
	ctx     context.Context
	session *Session
	log     log.Logger
	history *History
	input   textinput.Model

	historyIdx int

	matches      fuzzy.Matches
	wordStart    int
	wordEnd      int
	suggIdx      int
	tabActive    bool
	preTabText   string
	preTabCursor int

	// Alt-Up/Down navigation restores this state when it runs off the end.
	altNav       bool
	altNavMode   inputMode
	altNavText   string
	altNavCursor int

	mode       inputMode
	evalText   string
	evalCursor int
	ctrlText   string
	ctrlCursor int

	// banner is program output produced while loading.
	banner   string
	width    int
	quitting bool
}

// Run starts the terminal REPL on prog, which may be nil. History is kept
// in cacheDir.
func Run(ctx context.Context, prog *lang.Program, cacheDir string, logger log.Logger) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	session, history, err := start(ctx, prog, cacheDir, logger)
	if err != nil {
		return err
	}

	m := newModel(ctx, session, history, logger)
	m.banner = strings.TrimSuffix(session.Output(), "\n")

	_, err = tea.NewProgram(m, tea.WithContext(ctx)).Run()

	return err
}

// start loads the session and history shared by both front ends.
func start(
	ctx context.Context,
	prog *lang.Program,
	cacheDir string,
	logger log.Logger,
) (*Session, *History, error) {
	logger.TraceContext(ctx, "repl start",
		slog.String("cache_dir", cacheDir),
		slog.Bool("has_source", prog != nil),
	)

	session, err := NewSession(ctx, prog, logger)
	if err != nil {
		return nil, nil, err
	}

	var path string
	if cacheDir != "" {
		path = filepath.Join(cacheDir, baseHistory)
	}

	history := NewHistory(path)
	if err := history.Load(); err != nil {
		logger.WarnContext(ctx, "could not load history",
			slog.String("path", path),
			slog.Any("error", err),
		)
	}

	logger.TraceContext(ctx, "repl history loaded", slog.Int("entries", history.Len()))

	return session, history, nil
}

const defaultWidth = 80

func newModel(ctx context.Context, session *Session, history *History, logger log.Logger) model {
	ti := textinput.New()
	ti.Prompt = promptStyle.Render(evalPrompt)
	ti.CharLimit = 1024
	ti.Width = defaultWidth
	ti.Focus()

	return model{
		ctx:        ctx,
		session:    session,
		log:        logger,
		history:    history,
		input:      ti,
		historyIdx: history.Len(),
		suggIdx:    -1,
		width:      defaultWidth,
	}
}

func (m model) Init() tea.Cmd {
	if m.banner != "" {
		return tea.Batch(textinput.Blink, tea.Println(outputStyle.Render(m.banner)))
	}

	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = max(msg.Width-lipgloss.Width(evalPrompt)-2, 1)

		return m, nil

	case editDoneMsg:
		if err := m.session.Reload(m.ctx, msg.prog); err != nil {
			return m, tea.Println(errorStyle.Render("error: " + err.Error()))
		}

		m.log.TraceContext(m.ctx, "repl edit applied",
			slog.Int("statements", len(msg.prog.Stmts)),
		)

		lines := []string{resultStyle.Render("session reloaded")}
		if out := m.session.Output(); out != "" {
			lines = append(lines, outputStyle.Render(strings.TrimSuffix(out, "\n")))
		}

		return m, tea.Println(strings.Join(lines, "\n"))

	case editCancelledMsg:
		return m, tea.Println(hintStyle.Render("edit cancelled"))

	case editDeclinedMsg:
		m.quitting = true

		return m, tea.Quit

	case editErrorMsg:
		return m, tea.Println(errorStyle.Render("error: " + msg.err.Error()))
	}

	var cmd tea.Cmd

	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(m.input.View())
	b.WriteByte('\n')
	b.WriteString(m.hintLine())
	b.WriteByte('\n')

	return b.String()
}

// hintLine is the line under the input: history position, usage hint,
// signature of the enclosing call or completion candidates.
func (m model) hintLine() string {
	input := m.input.Value()

	if m.historyIdx < m.history.Len() {
		pos := lipgloss.NewStyle().Bold(true).Render(strconv.Itoa(m.historyIdx + 1))

		return hintStyle.Render(fmt.Sprintf("%s/%d", pos, m.history.Len()))
	}

	if strings.TrimSpace(input) == "" {
		if m.mode == modeEval {
			return hintStyle.Render("Type a statement or press Esc for commands")
		}

		return hintStyle.Render("Type: " + strings.Join(ctrlCommands, ", ") + " (Esc to return)")
	}

	if m.mode == modeEval {
		call := detectFunctionCall(input, m.cursor())
		if call.inCall {
			if sig, params, ok := m.session.Signature(call.name); ok {
				return renderSignatureHint(sig, params, call.argIndex)
			}
		}
	}

	var isFunc func(string) bool
	if m.mode == modeEval {
		isFunc = m.session.IsFunction
	}

	return renderCandidateBar(m.matches, m.suggIdx, m.tabActive, m.width, isFunc)
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	m.log.TraceContext(m.ctx, "repl keypress", slog.String("key", msg.String()))

	switch msg.Type {
	case tea.KeyCtrlC:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		m.input.SetValue("")
		m.tabActive = false
		m.altNav = false
		m.historyIdx = m.history.Len()
		m.refreshMatches(false)

		return m, nil

	case tea.KeyCtrlD:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		return m, nil

	case tea.KeyEnter:
		m.altNav = false

		if m.tabActive && len(m.matches) > 0 {
			m.tabActive = false
			m.refreshMatches(true)

			return m, nil
		}

		return m.submit()

	case tea.KeyTab:
		return m.cycle(1), nil

	case tea.KeyShiftTab:
		return m.cycle(-1), nil

	case tea.KeyUp:
		if msg.Alt {
			return m.historyCtrl(-1), nil
		}

		return m.historyStep(-1), nil

	case tea.KeyDown:
		if msg.Alt {
			return m.historyCtrl(1), nil
		}

		return m.historyStep(1), nil

	case tea.KeyShiftUp:
		return m.historyInMode(-1), nil

	case tea.KeyShiftDown:
		return m.historyInMode(1), nil

	case tea.KeyEsc:
		if m.tabActive {
			m.tabActive = false
			m.input.SetValue(m.preTabText)
			m.input.SetCursor(m.preTabCursor)
			m.refreshMatches(false)

			return m, nil
		}

		m.altNav = false

		return m.toggleMode(), nil

	case tea.KeyRunes, tea.KeySpace:
		if m.tabActive && msg.String() == " " {
			m.tabActive = false
		}

		var cmd tea.Cmd

		m.historyIdx = m.history.Len()
		m.input, cmd = m.input.Update(msg)
		m.refreshMatches(true)

		return m, cmd
	}

	var cmd tea.Cmd

	m.tabActive = false
	m.altNav = false
	m.historyIdx = m.history.Len()
	m.input, cmd = m.input.Update(msg)
	m.refreshMatches(false)

	return m, cmd
}

// cycle moves the tab selection by step, wrapping around.
func (m model) cycle(step int) model {
	n := len(m.matches)
	if n == 0 {
		return m
	}

	if n == 1 {
		m.replaceWord(m.matches[0].Str)
		m.tabActive = false
		m.suggIdx = -1
		m.matches = nil

		return m
	}

	switch {
	case m.tabActive:
		m.suggIdx = (m.suggIdx + step + n) % n
	case step > 0:
		m.tabActive = true
		m.preTabText = m.input.Value()
		m.preTabCursor = m.input.Position()
		m.suggIdx = 0
	default:
		m.tabActive = true
		m.preTabText = m.input.Value()
		m.preTabCursor = m.input.Position()
		m.suggIdx = n - 1
	}

	m.replaceWord(m.matches[m.suggIdx].Str)

	return m
}

// replaceWord substitutes s for the current word and moves the cursor
// after it.
func (m *model) replaceWord(s string) {
	input := m.input.Value()
	m.input.SetValue(input[:m.wordStart] + s + input[m.wordEnd:])
	m.wordEnd = m.wordStart + len(s)
	m.input.SetCursor(utf8.RuneCountInString(input[:m.wordStart] + s))
}

// cursor returns the byte offset of the input cursor, which textinput
// tracks in runes.
func (m model) cursor() int {
	runes := []rune(m.input.Value())

	return len(string(runes[:min(m.input.Position(), len(runes))]))
}

// refreshMatches recomputes completions. With confirm set, a word that
// already equals its only candidate is accepted.
func (m *model) refreshMatches(confirm bool) {
	m.matches, m.wordStart, m.wordEnd = m.computeMatches()

	if !m.tabActive {
		m.suggIdx = -1
	}

	if !confirm || len(m.matches) != 1 {
		return
	}

	if m.input.Value()[m.wordStart:m.wordEnd] == m.matches[0].Str {
		m.tabActive = false
		m.suggIdx = -1
		m.matches = nil
	}
}

func (m model) submit() (model, tea.Cmd) {
	input := strings.TrimSpace(m.input.Value())
	if input == "" {
		return m, nil
	}

	m.evalText, m.evalCursor = "", 0
	m.ctrlText, m.ctrlCursor = "", 0
	m.input.SetValue("")
	m.matches = nil

	if err := m.history.Add(input, m.mode); err != nil {
		m.log.WarnContext(m.ctx, "could not save history", slog.Any("error", err))
	}

	m.historyIdx = m.history.Len()

	if m.mode == modeCtrl {
		return m.command(input)
	}

	m.log.TraceContext(m.ctx, "repl eval", slog.String("input", input))

	echo := promptStyle.Render(evalPrompt) + inputStyle.Render(input)

	return m, tea.Println(echo + "\n" + strings.Join(m.evaluate(input), "\n"))
}

// evaluate runs input and returns the styled lines to print.
func (m model) evaluate(input string) []string {
	res, err := m.session.Eval(m.ctx, input)

	var lines []string

	if out := strings.TrimSuffix(res.Output, "\n"); out != "" {
		lines = append(lines, outputStyle.Render(out))
	}

	switch {
	case err != nil:
		lines = append(lines, errorStyle.Render("error: "+err.Error()))
	case res.Value != nil:
		lines = append(lines, resultStyle.Render(value.Format(res.Value)))
	}

	m.log.TraceContext(m.ctx, "repl eval result",
		slog.String("kind", value.KindOf(res.Value)),
		slog.Bool("failed", err != nil),
	)

	return lines
}

func (m model) command(input string) (model, tea.Cmd) {
	fields := strings.Fields(input)
	echo := tea.Println(ctrlPromptStyle.Render(ctrlPrompt) + inputStyle.Render(input))

	m.log.TraceContext(m.ctx, "repl command", slog.String("command", fields[0]))

	switch fields[0] {
	case "q", "quit", "exit":
		m.quitting = true

		return m, tea.Sequence(echo, tea.Quit)

	case "h", "help":
		return m, tea.Sequence(echo, tea.Println(helpText))

	case "l", "list":
		return m, tea.Sequence(echo, tea.Println(m.listing()))

	case "c", "clear":
		return m, tea.ClearScreen

	case "e", "edit":
		return m, tea.Sequence(echo, m.edit())

	default:
		return m, tea.Println(errorStyle.Render("unknown command: " + fields[0] + " (try help)"))
	}
}

func (m model) listing() string {
	var b strings.Builder

	for _, e := range m.session.List() {
		fmt.Fprintf(&b, "  %s %s\n", e.Name, hintStyle.Render(e.Detail))
	}

	return strings.TrimSuffix(b.String(), "\n")
}

func (m model) edit() tea.Cmd {
	src, err := m.session.Source()
	if err != nil {
		return tea.Println(errorStyle.Render("error: " + err.Error()))
	}

	cmd := &editCommand{ctx: m.ctx, source: src, log: m.log}

	return tea.Exec(cmd, func(err error) tea.Msg {
		switch {
		case errors.Is(err, ErrEditDeclined):
			return editDeclinedMsg{}
		case err != nil:
			return editErrorMsg{err: err}
		case cmd.prog == nil:
			return editCancelledMsg{}
		default:
			return editDoneMsg{prog: cmd.prog}
		}
	})
}

// show loads history entry e into the input, switching mode if needed.
func (m model) show(i int, e HistoryEntry) model {
	if m.mode != e.Mode {
		m = m.switchMode(e.Mode)
	}

	m.historyIdx = i
	m.input.SetValue(e.Line)
	m.input.SetCursor(len(e.Line))
	m.refreshMatches(false)

	return m
}

// clearLine leaves history navigation with an empty input.
func (m model) clearLine() model {
	m.historyIdx = m.history.Len()
	m.input.SetValue("")
	m.refreshMatches(false)

	return m
}

// historyStep moves through all entries.
func (m model) historyStep(step int) model {
	i := m.historyIdx + step
	if i < 0 {
		return m
	}

	e, err := m.history.Entry(i)
	if err != nil {
		return m.clearLine()
	}

	return m.show(i, e)
}

// find returns the next entry from the current position in direction
// step whose mode is mode.
func (m model) find(step int, mode inputMode) (int, HistoryEntry, bool) {
	for i := m.historyIdx + step; i >= 0 && i < m.history.Len(); i += step {
		if e, err := m.history.Entry(i); err == nil && e.Mode == mode {
			return i, e, true
		}
	}

	return 0, HistoryEntry{}, false
}

// historyInMode moves through the entries of the current mode.
func (m model) historyInMode(step int) model {
	if i, e, ok := m.find(step, m.mode); ok {
		return m.show(i, e)
	}

	if step > 0 && m.historyIdx < m.history.Len() {
		return m.clearLine()
	}

	return m
}

// historyCtrl moves through command history from either mode. Running off
// either end restores the line being edited before navigation began.
func (m model) historyCtrl(step int) model {
	if !m.altNav {
		m.altNav = true
		m.altNavMode = m.mode
		m.altNavText = m.input.Value()
		m.altNavCursor = m.input.Position()

		if m.mode != modeCtrl {
			m = m.switchMode(modeCtrl)
		}
	}

	if i, e, ok := m.find(step, modeCtrl); ok {
		return m.show(i, e)
	}

	m.altNav = false
	if m.mode != m.altNavMode {
		m = m.switchMode(m.altNavMode)
	}

	m.input.SetValue(m.altNavText)
	m.input.SetCursor(m.altNavCursor)
	m.historyIdx = m.history.Len()
	m.refreshMatches(false)

	return m
}

func (m model) toggleMode() model {
	if m.mode == modeEval {
		return m.switchMode(modeCtrl)
	}

	return m.switchMode(modeEval)
}

// switchMode saves the line of the current mode and restores the line
// last edited in mode.
func (m model) switchMode(mode inputMode) model {
	if m.mode == modeEval {
		m.evalText, m.evalCursor = m.input.Value(), m.input.Position()
	} else {
		m.ctrlText, m.ctrlCursor = m.input.Value(), m.input.Position()
	}

	m.mode = mode

	if mode == modeEval {
		m.input.Prompt = promptStyle.Render(evalPrompt)
		m.input.SetValue(m.evalText)
		m.input.SetCursor(m.evalCursor)
	} else {
		m.input.Prompt = ctrlPromptStyle.Render(ctrlPrompt)
		m.input.SetValue(m.ctrlText)
		m.input.SetCursor(m.ctrlCursor)
	}

	m.refreshMatches(false)

	return m
}
