package cmd

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gravitrone/mentionly/internal/config"
	"github.com/gravitrone/mentionly/internal/drafts"
	"github.com/gravitrone/mentionly/internal/mention"
)

func run(t *testing.T, cmd *cobra.Command, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestInitWritesDefaultConfig(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	out, err := run(t, InitCmd(), "")
	require.NoError(t, err)
	assert.Contains(t, out, config.Path())

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Len(t, cfg.Triggers, 3)
}

func TestInitRefusesOverwriteWithoutForce(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	_, err := run(t, InitCmd(), "")
	require.NoError(t, err)

	_, err = run(t, InitCmd(), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--force")

	_, err = run(t, InitCmd(), "", "--force")
	assert.NoError(t, err)
}

func TestCheckWithoutConfig(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	_, err := run(t, CheckCmd(), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mentionly init")
}

func TestCheckListsTriggers(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	require.NoError(t, config.Default().Save())

	out, err := run(t, CheckCmd(), "")
	require.NoError(t, err)
	assert.Contains(t, out, "@   static")
	assert.Contains(t, out, "/   commands  command")
	assert.Contains(t, out, "server: not configured")
}

func TestCheckReachesServer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/health", r.URL.Path)
		w.Write([]byte(`{"status":"ok"}`))
	}))
	t.Cleanup(srv.Close)
	t.Setenv("HOME", t.TempDir())
	cfg := config.Default()
	cfg.ServerURL = srv.URL
	require.NoError(t, cfg.Save())

	out, err := run(t, CheckCmd(), "")
	require.NoError(t, err)
	assert.Contains(t, out, "server: "+srv.URL+" (ok)")
}

func TestCheckTimeoutFlag(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	t.Cleanup(srv.Close)
	t.Setenv("HOME", t.TempDir())
	cfg := config.Default()
	cfg.ServerURL = srv.URL
	require.NoError(t, cfg.Save())

	start := time.Now()
	_, err := run(t, CheckCmd(), "", "--timeout", "50ms")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server health")
	assert.Less(t, time.Since(start), time.Second)
}

func TestSerializeFromStdin(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	input := `[{"type":"text","content":"  hi "},{"type":"mention","triggeredBy":"@","id":"u1","label":"Ada"},{"type":"text","content":" "}]`

	out, err := run(t, SerializeCmd(), input)
	require.NoError(t, err)
	assert.JSONEq(t, `[
		{"type":"text","text":"hi "},
		{"type":"data","mentionType":"@","id":"u1","label":"Ada"}
	]`, out)
}

func TestSerializeUsesTriggerSchema(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	file := filepath.Join(t.TempDir(), "parts.json")
	input := `[{"type":"mention","triggeredBy":"#","id":"a/main.go","label":"a/main.go"}]`
	require.NoError(t, os.WriteFile(file, []byte(input), 0o600))

	out, err := run(t, SerializeCmd(), "", file)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"type":"file","path":"a/main.go","name":"a/main.go"}]`, out)
}

func TestSerializePlain(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	input := `[{"type":"text","content":"ping "},{"type":"mention","triggeredBy":"@","id":"u1","label":"Ada"}]`

	out, err := run(t, SerializeCmd(), input, "--plain")
	require.NoError(t, err)
	assert.Equal(t, "ping @Ada\n", out)
}

func TestSerializeRejectsBadJSON(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	_, err := run(t, SerializeCmd(), "{")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse content parts")
}

func TestHistoryListsRecentDrafts(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	store := drafts.Open(drafts.DefaultPath())
	for _, text := range []string{"one", "two", "three"} {
		_, err := store.Append([]mention.ContentPart{mention.TextPart(text)}, nil)
		require.NoError(t, err)
	}

	out, err := run(t, HistoryCmd(), "", "--limit", "2")
	require.NoError(t, err)
	assert.NotContains(t, out, "one")
	assert.Contains(t, out, "two")
	assert.Contains(t, out, "three")

	out, err = run(t, HistoryCmd(), "", "--json", "-n", "0")
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(out), "\n"), 3)
}

func TestHistoryEmpty(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	out, err := run(t, HistoryCmd(), "")
	require.NoError(t, err)
	assert.Equal(t, "no drafts yet\n", out)
}

func TestNewAppBuildsFromDefault(t *testing.T) {
	app, err := NewApp(config.Default(), drafts.Open(filepath.Join(t.TempDir(), "d.jsonl")), nil, nil)
	require.NoError(t, err)
	assert.Contains(t, app.View(), "Transcript")
}

func TestNewAppRejectsInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Triggers = nil
	_, err := NewApp(cfg, nil, nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "build triggers")
}

func TestDisposeModelDetachesFinalEditor(t *testing.T) {
	app, err := NewApp(config.Default(), nil, nil, nil)
	require.NoError(t, err)
	model, _ := app.Update(tea.WindowSizeMsg{Width: 80, Height: 24})

	DisposeModel(model, app)
	assert.Contains(t, model.View(), "(detached)")
}

func TestDisposeModelFallsBackToInitialApp(t *testing.T) {
	app, err := NewApp(config.Default(), nil, nil, nil)
	require.NoError(t, err)

	DisposeModel(nil, app)
	assert.Contains(t, app.View(), "(detached)")
}
