package ui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	zone "github.com/lrstanley/bubblezone"

	"github.com/gravitrone/mentionly/internal/drafts"
	"github.com/gravitrone/mentionly/internal/mention"
	"github.com/gravitrone/mentionly/internal/ui/components"
)

const transcriptSize = 5

type clearToastMsg struct{}

type transcriptLoadedMsg struct {
	drafts []drafts.Draft
	err    error
}

type draftSavedMsg struct {
	draft drafts.Draft
	err   error
}

type draftRecalledMsg struct {
	draft drafts.Draft
	ok    bool
	err   error
}

type appToast struct {
	level string
	text  string
}

// --- App Model ---

// App is the root model: a transcript of submitted drafts above the editor.
type App struct {
	editor *Editor
	store  *drafts.Store
	zones  *zone.Manager
	logger *log.Logger

	width      int
	height     int
	helpOpen   bool
	transcript []drafts.Draft
	toast      *appToast
}

// NewApp creates the root application model. store and zones may be nil.
func NewApp(editor *Editor, store *drafts.Store, zones *zone.Manager, logger *log.Logger) App {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return App{
		editor: editor,
		store:  store,
		zones:  zones,
		logger: logger,
	}
}

func (a App) Init() tea.Cmd {
	return a.loadTranscriptCmd()
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.editor.SetWidth(components.BoxContentWidth(msg.Width))
		return a, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, appKeys.Quit):
			a.editor.Dispose()
			return a, tea.Quit
		case key.Matches(msg, appKeys.Help):
			a.helpOpen = !a.helpOpen
			return a, nil
		case key.Matches(msg, appKeys.Recall):
			return a, a.recallCmd()
		case a.helpOpen && isBack(msg):
			a.helpOpen = false
			return a, nil
		}

	case SubmitMsg:
		a.editor.Clear()
		return a, a.saveCmd(msg)

	case CommandSelectedMsg:
		return a.runCommand(msg)

	case transcriptLoadedMsg:
		if msg.err != nil {
			return a, a.setToast("error", msg.err.Error())
		}
		a.transcript = tail(msg.drafts, transcriptSize)
		return a, nil

	case draftSavedMsg:
		if msg.err != nil {
			return a, a.setToast("error", msg.err.Error())
		}
		a.transcript = tail(append(a.transcript, msg.draft), transcriptSize)
		return a, a.setToast("success", "saved "+shortID(msg.draft.ID))

	case draftRecalledMsg:
		switch {
		case msg.err != nil:
			return a, a.setToast("error", msg.err.Error())
		case !msg.ok:
			return a, a.setToast("info", "nothing to recall")
		}
		a.editor.SetContent(msg.draft.Content)
		return a, nil

	case clearToastMsg:
		a.toast = nil
		return a, nil
	}

	_, cmd := a.editor.Update(msg)
	return a, cmd
}

// Dispose tears down the editor. Call it once the program has exited.
func (a App) Dispose() {
	a.editor.Dispose()
}

func (a App) runCommand(msg CommandSelectedMsg) (tea.Model, tea.Cmd) {
	switch msg.Item.ID {
	case "clear":
		a.editor.Clear()
		return a, a.setToast("info", "cleared")
	case "recall":
		return a, a.recallCmd()
	case "help":
		a.helpOpen = true
		return a, nil
	case "quit":
		a.editor.Dispose()
		return a, tea.Quit
	}
	return a, a.setToast("info", "ran "+msg.Trigger+msg.Item.Label)
}

// --- Commands ---

func (a App) loadTranscriptCmd() tea.Cmd {
	if a.store == nil {
		return nil
	}
	store := a.store
	return func() tea.Msg {
		all, err := store.List()
		return transcriptLoadedMsg{drafts: all, err: err}
	}
}

func (a App) saveCmd(msg SubmitMsg) tea.Cmd {
	if a.store == nil {
		d := drafts.Draft{ID: "local", CreatedAt: time.Now().UTC(), Content: msg.Content, Data: msg.Data}
		return func() tea.Msg { return draftSavedMsg{draft: d} }
	}
	store := a.store
	return func() tea.Msg {
		d, err := store.Append(msg.Content, msg.Data)
		return draftSavedMsg{draft: d, err: err}
	}
}

func (a App) recallCmd() tea.Cmd {
	if a.store == nil {
		if n := len(a.transcript); n > 0 {
			d := a.transcript[n-1]
			return func() tea.Msg { return draftRecalledMsg{draft: d, ok: true} }
		}
		return func() tea.Msg { return draftRecalledMsg{} }
	}
	store := a.store
	return func() tea.Msg {
		d, ok, err := store.Last()
		return draftRecalledMsg{draft: d, ok: ok, err: err}
	}
}

func (a *App) setToast(level, text string) tea.Cmd {
	if level == "error" {
		a.logger.Error("app error", "err", text)
	}
	a.toast = &appToast{
		level: level,
		text:  components.SanitizeOneLine(text),
	}
	return tea.Tick(2500*time.Millisecond, func(time.Time) tea.Msg {
		return clearToastMsg{}
	})
}

// --- View ---

func (a App) View() string {
	banner := centerBlockUniform(RenderBanner(a.width), a.width)

	var content string
	if a.helpOpen {
		content = a.renderHelp()
	} else {
		content = a.renderTranscript()
	}
	content = centerBlockUniform(content, a.width)

	editor := components.ActiveBox(a.editor.View(), a.width)
	if !a.editor.Focused() {
		editor = components.Box(a.editor.View(), a.width)
	}
	if popup := a.editor.PopupView(); popup != "" {
		editor = lipgloss.JoinVertical(lipgloss.Left, editor, components.Indent(popup, 3))
	}
	editor = centerBlockUniform(editor, a.width)

	hints := components.StatusBar(a.statusHints(), a.width)

	feedback := ""
	if a.toast != nil {
		feedback = "\n\n" + centerBlockUniform(a.renderToast(), a.width)
	}

	view := fmt.Sprintf("%s\n%s\n\n%s\n\n%s%s", banner, content, editor, hints, feedback)
	if a.zones != nil {
		return a.zones.Scan(view)
	}
	return view
}

func (a App) renderTranscript() string {
	if len(a.transcript) == 0 {
		return components.TitledBox("Transcript", MutedStyle.Render("nothing sent yet"), a.width)
	}
	inner := components.BoxContentWidth(a.width)
	lines := make([]string, 0, len(a.transcript))
	for _, d := range a.transcript {
		stamp := MutedStyle.Render(d.CreatedAt.Local().Format("15:04"))
		lines = append(lines, stamp+"  "+renderParts(d.Content, inner-7))
	}
	return components.TitledBox("Transcript", strings.Join(lines, "\n"), a.width)
}

// renderParts draws content parts on one line, mentions styled as tokens.
func renderParts(parts []mention.ContentPart, width int) string {
	var b strings.Builder
	used := 0
	for _, p := range parts {
		text := components.SanitizeOneLine(p.Visual())
		if width > 0 {
			if used >= width {
				break
			}
			text = components.ClampTextWidth(text, width-used)
		}
		used += lipgloss.Width(text)
		if p.Type == mention.PartMention {
			b.WriteString(MentionStyle.Render(text))
			continue
		}
		b.WriteString(NormalStyle.Render(text))
	}
	return b.String()
}

func (a App) statusHints() []string {
	keys := a.editor.Keys()
	if a.editor.State().Open {
		hints := []string{components.Hint("↑/↓", "Move")}
		return append(hints, components.BindingHints(keys.Select, keys.Dismiss)...)
	}
	return components.BindingHints(
		keys.Submit,
		keys.Newline,
		keys.Paste,
		appKeys.Recall,
		appKeys.Help,
		appKeys.Quit,
	)
}

func (a App) renderHelp() string {
	keys := a.editor.Keys()
	rows := []string{
		"Type a trigger character to look something up.",
		"",
		fmt.Sprintf("%-12s %s", keys.Submit.Help().Key, "send the draft"),
		fmt.Sprintf("%-12s %s", keys.Newline.Help().Key, "insert a line break"),
		fmt.Sprintf("%-12s %s", keys.Select.Help().Key, "pick the highlighted candidate"),
		fmt.Sprintf("%-12s %s", keys.Dismiss.Help().Key, "close the popup"),
		fmt.Sprintf("%-12s %s", keys.Paste.Help().Key, "paste as plain text"),
		fmt.Sprintf("%-12s %s", keys.Home.Help().Key, "caret to start"),
		fmt.Sprintf("%-12s %s", keys.End.Help().Key, "caret to end"),
		fmt.Sprintf("%-12s %s", appKeys.Recall.Help().Key, "recall the last draft"),
	}
	return components.TitledBox("Help", strings.Join(rows, "\n"), a.width)
}

func (a App) renderToast() string {
	if a.toast == nil {
		return ""
	}
	title := "Info"
	switch a.toast.level {
	case "success":
		title = "Success"
	case "warning":
		title = "Warning"
	case "error":
		return components.ErrorBox("Error", a.toast.text, a.width)
	}
	return components.TitledBox(title, a.toast.text, a.width)
}

func tail(all []drafts.Draft, n int) []drafts.Draft {
	if len(all) <= n {
		return all
	}
	return append([]drafts.Draft(nil), all[len(all)-n:]...)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func centerBlockUniform(s string, width int) string {
	if width <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	maxWidth := 0
	for _, line := range lines {
		if w := lipgloss.Width(line); w > maxWidth {
			maxWidth = w
		}
	}
	if maxWidth <= 0 || maxWidth >= width {
		return s
	}
	pad := (width - maxWidth) / 2
	if pad <= 0 {
		return s
	}
	prefix := strings.Repeat(" ", pad)
	for i := range lines {
		if lines[i] != "" {
			lines[i] = prefix + lines[i]
		}
	}
	return strings.Join(lines, "\n")
}
