package cmd

import (
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	zone "github.com/lrstanley/bubblezone"

	"github.com/gravitrone/mentionly/internal/config"
	"github.com/gravitrone/mentionly/internal/drafts"
	"github.com/gravitrone/mentionly/internal/sources"
	"github.com/gravitrone/mentionly/internal/ui"
)

const placeholder = "write something, @ to mention, # for files, / for commands"

// LoadConfig loads the user config, falling back to the defaults when none exists.
func LoadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if errors.Is(err, os.ErrNotExist) {
		return config.Default(), nil
	}
	return cfg, err
}

// OpenStore returns the drafts store configured in cfg.
func OpenStore(cfg *config.Config) *drafts.Store {
	if cfg.DraftsPath != "" {
		return drafts.Open(cfg.DraftsPath)
	}
	return drafts.Open(drafts.DefaultPath())
}

// NewApp assembles one editor session. zones may be nil for a program without mouse support.
func NewApp(cfg *config.Config, store *drafts.Store, zones *zone.Manager, logger *log.Logger) (ui.App, error) {
	triggers, err := sources.Build(cfg, sources.Deps{Logger: logger})
	if err != nil {
		return ui.App{}, fmt.Errorf("build triggers: %w", err)
	}
	editor, err := ui.NewEditor(ui.EditorOptions{
		Triggers:        triggers,
		NoTrailingSpace: !cfg.SpaceAfter(),
		PopupMode:       cfg.Popup(),
		BlurDelay:       cfg.BlurDelay(),
		Placeholder:     placeholder,
		Zones:           zones,
		Logger:          logger,
	})
	if err != nil {
		return ui.App{}, err
	}
	return ui.NewApp(editor, store, zones, logger), nil
}

// DisposeModel tears down the editor of a program's final model. initial is used when
// the program exited without producing one.
func DisposeModel(final tea.Model, initial ui.App) {
	if app, ok := final.(ui.App); ok {
		app.Dispose()
		return
	}
	initial.Dispose()
}
