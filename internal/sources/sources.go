// Package sources turns configured triggers into mention triggers backed by
// static lists, the local file tree, a remote directory or built-in commands.
package sources

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/gravitrone/mentionly/internal/api"
	"github.com/gravitrone/mentionly/internal/config"
	"github.com/gravitrone/mentionly/internal/mention"
)

// Deps are the collaborators a trigger source may need.
type Deps struct {
	// Client serves remote triggers. When nil, one is built from the config.
	Client *api.Client
	Logger *log.Logger
	// OnCommand runs after a command-mode selection, in addition to logging.
	OnCommand func(mention.Item)
}

// Build converts the configured triggers. The result passes mention.ValidateTriggers.
func Build(cfg *config.Config, deps Deps) ([]mention.Trigger, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger := deps.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	triggers := make([]mention.Trigger, 0, len(cfg.Triggers))
	for _, tc := range cfg.Triggers {
		t := mention.Trigger{
			Char:     tc.Char,
			Mode:     mention.Mode(tc.Mode),
			Debounce: tc.Debounce(),
			Schema:   tc.Schema,
		}

		switch tc.Source {
		case config.SourceStatic:
			t.Source = mention.StaticSource(tc.Items)
		case config.SourceFiles:
			t.Source = mention.FuncSource(NewFileIndex(tc.Root, tc.Limit).Search)
		case config.SourceRemote:
			client := deps.Client
			if client == nil {
				client = api.NewClient(cfg.ServerURL, cfg.APIKey)
			}
			t.Source = Remote(client, tc.Char, tc.Limit)
		case config.SourceCommands:
			items := tc.Items
			if len(items) == 0 {
				items = BuiltinCommands
			}
			t.Source = Commands(items)
		default:
			return nil, fmt.Errorf("trigger %q: unknown source %q", tc.Char, tc.Source)
		}

		if t.IsCommand() {
			char := tc.Char
			onCommand := deps.OnCommand
			t.OnSelect = func(item mention.Item) {
				logger.Info("command selected", "trigger", char, "command", item.ID)
				if onCommand != nil {
					onCommand(item)
				}
			}
		}
		triggers = append(triggers, t)
	}

	if err := mention.ValidateTriggers(triggers); err != nil {
		return nil, err
	}
	return triggers, nil
}

// Remote queries the candidate directory for char.
func Remote(client *api.Client, char string, limit int) mention.FuncSource {
	return func(ctx context.Context, query string) ([]mention.Item, error) {
		items, err := client.QueryItems(ctx, char, query, limit)
		if err != nil {
			return nil, fmt.Errorf("remote candidates: %w", err)
		}
		return items, nil
	}
}
