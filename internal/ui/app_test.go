package ui

import (
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gravitrone/mentionly/internal/drafts"
	"github.com/gravitrone/mentionly/internal/mention"
)

func newTestApp(t *testing.T) (App, *drafts.Store) {
	t.Helper()
	store := drafts.Open(filepath.Join(t.TempDir(), "drafts.jsonl"))
	return NewApp(newTestEditor(t), store, nil, nil), store
}

func update(app App, msg tea.Msg) (App, tea.Cmd) {
	model, cmd := app.Update(msg)
	return model.(App), cmd
}

// step feeds msg to the app, then feeds back the message produced by the returned command.
// The follow-up command is not run, since toasts return a timer.
func step(t *testing.T, app App, msg tea.Msg) App {
	t.Helper()
	app, cmd := update(app, msg)
	if cmd == nil {
		return app
	}
	app, _ = update(app, cmd())
	return app
}

func TestAppSubmitSavesDraftAndClears(t *testing.T) {
	app, store := newTestApp(t)
	typeInto(app.editor, "hi @al")
	press(app.editor, tea.KeyEnter)
	require.Equal(t, "hi @Alice"+mention.NBSP, app.editor.PlainText())

	app, cmd := update(app, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	app = step(t, app, cmd())

	assert.True(t, app.editor.IsEmpty())
	all, err := store.List()
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "hi @Alice"+mention.NBSP, all[0].PlainText())
	require.Len(t, app.transcript, 1)
	require.NotNil(t, app.toast)
	assert.Equal(t, "success", app.toast.level)
}

func TestAppRecallLoadsLastDraft(t *testing.T) {
	app, store := newTestApp(t)
	_, err := store.Append([]mention.ContentPart{mention.TextPart("first")}, nil)
	require.NoError(t, err)
	_, err = store.Append([]mention.ContentPart{
		mention.TextPart("ping "),
		mention.MentionPart("@", mention.Item{ID: "2", Label: "Bob"}),
	}, nil)
	require.NoError(t, err)

	app = step(t, app, tea.KeyMsg{Type: tea.KeyCtrlR})
	parts := app.editor.Parts()
	require.Len(t, parts, 2)
	assert.Equal(t, mention.PartMention, parts[1].Type)
	assert.Equal(t, "Bob", parts[1].Label)
}

func TestAppRecallWithNoDraftsToasts(t *testing.T) {
	app, _ := newTestApp(t)
	app, cmd := update(app, tea.KeyMsg{Type: tea.KeyCtrlR})
	require.NotNil(t, cmd)
	app, _ = update(app, cmd())
	require.NotNil(t, app.toast)
	assert.Equal(t, "nothing to recall", app.toast.text)
	assert.True(t, app.editor.IsEmpty())
}

func TestAppInitLoadsTranscriptTail(t *testing.T) {
	app, store := newTestApp(t)
	for i := 0; i < transcriptSize+2; i++ {
		_, err := store.Append([]mention.ContentPart{mention.TextPart("x")}, nil)
		require.NoError(t, err)
	}
	cmd := app.Init()
	require.NotNil(t, cmd)
	app = step(t, app, cmd())
	assert.Len(t, app.transcript, transcriptSize)
}

func TestAppCommandClear(t *testing.T) {
	app, _ := newTestApp(t)
	typeInto(app.editor, "draft")
	app, _ = update(app, CommandSelectedMsg{Trigger: "/", Item: mention.Item{ID: "clear", Label: "clear"}})
	assert.True(t, app.editor.IsEmpty())
}

func TestAppCommandQuitDisposesEditor(t *testing.T) {
	app, _ := newTestApp(t)
	app, cmd := update(app, CommandSelectedMsg{Trigger: "/", Item: mention.Item{ID: "quit"}})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Equal(t, "(detached)", app.editor.View())
}

func TestAppUnknownCommandToasts(t *testing.T) {
	app, _ := newTestApp(t)
	app, _ = update(app, CommandSelectedMsg{Trigger: "/", Item: mention.Item{ID: "deploy", Label: "deploy"}})
	require.NotNil(t, app.toast)
	assert.Equal(t, "ran /deploy", app.toast.text)
}

func TestAppHelpToggle(t *testing.T) {
	app, _ := newTestApp(t)
	app = step(t, app, tea.KeyMsg{Type: tea.KeyF1})
	assert.True(t, app.helpOpen)
	assert.Contains(t, app.View(), "recall the last draft")

	app = step(t, app, tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, app.helpOpen)
}

func TestAppForwardsTypingToEditor(t *testing.T) {
	app, _ := newTestApp(t)
	app = step(t, app, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("@")})
	assert.True(t, app.editor.State().Open)
	assert.Contains(t, app.View(), "Alice")
}

func TestAppViewShowsTranscriptAndHints(t *testing.T) {
	app, _ := newTestApp(t)
	app = step(t, app, tea.WindowSizeMsg{Width: 100, Height: 40})
	app.transcript = []drafts.Draft{{ID: "abc", Content: []mention.ContentPart{
		mention.TextPart("ask "),
		mention.MentionPart("@", mention.Item{ID: "1", Label: "Alice"}),
	}}}

	out := app.View()
	assert.Contains(t, out, "Transcript")
	assert.Contains(t, out, "@Alice")
	assert.Contains(t, out, "Send")
	assert.Contains(t, out, "Recall")
}

func TestCenterBlockUniform(t *testing.T) {
	assert.Equal(t, "ab", centerBlockUniform("ab", 0))
	assert.Equal(t, "  ab\n  c", centerBlockUniform("ab\nc", 6))
}
