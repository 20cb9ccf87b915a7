package mention

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrDuplicateTrigger is returned when two triggers share a character.
var ErrDuplicateTrigger = errors.New("duplicate trigger character")

// Item is a candidate that can be mentioned.
type Item struct {
	ID    string         `json:"id" yaml:"id"`
	Label string         `json:"label" yaml:"label"`
	Extra map[string]any `json:"extra,omitempty" yaml:"extra,omitempty"`
}

// Field looks up a field by name. id and label are built in; everything else comes from Extra.
func (i Item) Field(name string) (any, bool) {
	switch name {
	case "id":
		return i.ID, true
	case "label":
		return i.Label, true
	}
	v, ok := i.Extra[name]
	return v, ok
}

// Fields flattens the item into a map. id and label win over extras with the same key.
func (i Item) Fields() map[string]any {
	out := make(map[string]any, len(i.Extra)+2)
	for k, v := range i.Extra {
		out[k] = v
	}
	out["id"] = i.ID
	out["label"] = i.Label
	return out
}

// Mode decides what selecting a candidate does.
type Mode string

const (
	// ModeInline replaces the trigger text with an atomic token.
	ModeInline Mode = "inline"
	// ModeCommand removes the trigger text and hands the item to the trigger's OnSelect.
	ModeCommand Mode = "command"
)

// Source produces candidates for a trigger. It is either a StaticSource or a FuncSource.
type Source interface {
	source()
}

// StaticSource is a fixed candidate list filtered locally.
type StaticSource []Item

func (StaticSource) source() {}

// FuncSource computes candidates for a query. Synchronous and asynchronous providers
// share this shape; results are always delivered off the event loop.
type FuncSource func(ctx context.Context, query string) ([]Item, error)

func (FuncSource) source() {}

// TransformFunc converts a selected item into the fields of a data part.
type TransformFunc func(Item) map[string]any

// Schema maps output keys to item field names.
type Schema struct {
	Type    string            `json:"type" yaml:"type"`
	Mapping map[string]string `json:"mapping" yaml:"mapping"`
}

// Trigger configures one trigger character.
type Trigger struct {
	Char      string
	Mode      Mode
	Source    Source
	Debounce  time.Duration
	Transform TransformFunc
	Schema    *Schema
	OnSelect  func(Item)
}

// IsCommand reports whether selections for t run in command mode.
func (t Trigger) IsCommand() bool {
	return t.Mode == ModeCommand
}

// PopupMode tells the rendering layer where to place the candidate popup.
type PopupMode string

const (
	PopupFixed  PopupMode = "fixed"
	PopupCursor PopupMode = "cursor"
)

// ValidateTriggers rejects trigger sets the scanner cannot tell apart.
func ValidateTriggers(triggers []Trigger) error {
	seen := make(map[string]struct{}, len(triggers))
	for i, t := range triggers {
		if strings.TrimSpace(t.Char) == "" {
			return fmt.Errorf("trigger %d: empty character", i)
		}
		if strings.IndexFunc(t.Char, isBlank) >= 0 {
			return fmt.Errorf("trigger %q: character contains whitespace", t.Char)
		}
		if _, ok := seen[t.Char]; ok {
			return fmt.Errorf("trigger %q: %w", t.Char, ErrDuplicateTrigger)
		}
		seen[t.Char] = struct{}{}
		switch t.Mode {
		case "", ModeInline, ModeCommand:
		default:
			return fmt.Errorf("trigger %q: unknown mode %q", t.Char, t.Mode)
		}
		if t.Source == nil {
			return fmt.Errorf("trigger %q: missing source", t.Char)
		}
		if t.Debounce < 0 {
			return fmt.Errorf("trigger %q: negative debounce", t.Char)
		}
	}
	return nil
}

// FindTrigger returns the trigger registered for char.
func FindTrigger(triggers []Trigger, char string) (*Trigger, bool) {
	for i := range triggers {
		if triggers[i].Char == char {
			return &triggers[i], true
		}
	}
	return nil, false
}

// FilterStatic keeps items whose label contains query, ignoring case.
func FilterStatic(items []Item, query string) []Item {
	q := strings.ToLower(query)
	out := make([]Item, 0, len(items))
	for _, it := range items {
		if strings.Contains(strings.ToLower(it.Label), q) {
			out = append(out, it)
		}
	}
	return out
}
