package sources

import (
	"context"
	"sort"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/gravitrone/mentionly/internal/mention"
)

// BuiltinCommands are handled by the app shell.
var BuiltinCommands = []mention.Item{
	{ID: "clear", Label: "clear", Extra: map[string]any{"description": "empty the editor"}},
	{ID: "recall", Label: "recall", Extra: map[string]any{"description": "load the last draft"}},
	{ID: "help", Label: "help", Extra: map[string]any{"description": "show key bindings"}},
	{ID: "quit", Label: "quit", Extra: map[string]any{"description": "leave mentionly"}},
}

// Commands ranks command items by fuzzy label match; an empty query lists them all.
func Commands(items []mention.Item) mention.FuncSource {
	labels := make([]string, len(items))
	byLabel := make(map[string]mention.Item, len(items))
	for i, it := range items {
		labels[i] = it.Label
		byLabel[it.Label] = it
	}
	return func(_ context.Context, query string) ([]mention.Item, error) {
		if query == "" {
			return append([]mention.Item(nil), items...), nil
		}
		matches := fuzzy.RankFindFold(query, labels)
		sort.Stable(matches)
		out := make([]mention.Item, 0, len(matches))
		for _, m := range matches {
			out = append(out, byLabel[m.Target])
		}
		return out, nil
	}
}
