package mention

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func people() StaticSource {
	return StaticSource{
		{ID: "1", Label: "Alice"},
		{ID: "2", Label: "Bob"},
		{ID: "3", Label: "Malory"},
	}
}

func TestFilterStaticIsCaseInsensitiveSubstring(t *testing.T) {
	got := FilterStatic(people(), "AL")
	require.Len(t, got, 2)
	assert.Equal(t, "Alice", got[0].Label)
	assert.Equal(t, "Malory", got[1].Label)

	assert.Len(t, FilterStatic(people(), ""), 3)
	assert.Empty(t, FilterStatic(people(), "zz"))
}

func TestValidateTriggersRejectsDuplicates(t *testing.T) {
	err := ValidateTriggers([]Trigger{
		{Char: "@", Source: people()},
		{Char: "@", Source: people()},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDuplicateTrigger))
}

func TestValidateTriggersRejectsBadShapes(t *testing.T) {
	fn := FuncSource(func(context.Context, string) ([]Item, error) { return nil, nil })
	cases := map[string]Trigger{
		"empty char":  {Char: "", Source: people()},
		"blank char":  {Char: "@ ", Source: people()},
		"no source":   {Char: "@"},
		"bad mode":    {Char: "@", Mode: "popup", Source: people()},
		"negative ms": {Char: "@", Source: fn, Debounce: -1},
	}
	for name, trig := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, ValidateTriggers([]Trigger{trig}))
		})
	}

	assert.NoError(t, ValidateTriggers([]Trigger{
		{Char: "@", Source: people()},
		{Char: "/", Mode: ModeCommand, Source: fn},
	}))
}

func TestItemFieldPrefersBuiltins(t *testing.T) {
	item := Item{ID: "7", Label: "Ada", Extra: map[string]any{"id": "shadow", "email": "ada@example.com"}}

	v, ok := item.Field("id")
	assert.True(t, ok)
	assert.Equal(t, "7", v)

	v, ok = item.Field("email")
	assert.True(t, ok)
	assert.Equal(t, "ada@example.com", v)

	_, ok = item.Field("missing")
	assert.False(t, ok)

	assert.Equal(t, map[string]any{"id": "7", "label": "Ada", "email": "ada@example.com"}, item.Fields())
}

func TestFindTriggerReturnsPointerIntoSlice(t *testing.T) {
	triggers := []Trigger{{Char: "@"}, {Char: "#"}}
	got, ok := FindTrigger(triggers, "#")
	require.True(t, ok)
	assert.Same(t, &triggers[1], got)

	_, ok = FindTrigger(triggers, "/")
	assert.False(t, ok)
}
