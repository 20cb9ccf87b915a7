package mention

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestEncodeInsertsNewlineBeforeBlocks(t *testing.T) {
	root := NewInline(
		NewBlock(NewText("one")),
		NewBlock(NewText("two\n")),
		NewBlock(NewText("three")),
		NewInline(NewText(" tail")),
	)
	assert.Equal(t, []ContentPart{TextPart("one\ntwo\nthree tail")}, Encode(root))
}

func TestEncodeFirstBlockHasNoLeadingNewline(t *testing.T) {
	root := NewInline(NewBlock(NewToken("@", bob)), NewBlock(NewText("x")))
	assert.Equal(t, []ContentPart{
		MentionPart("@", bob),
		TextPart("\nx"),
	}, Encode(root))
}

func TestEncodeSkipsEmptyRuns(t *testing.T) {
	root := NewInline(NewText(""), NewBreak(), NewText(""))
	assert.Equal(t, []ContentPart{TextPart("\n")}, Encode(root))
	assert.Empty(t, Encode(NewInline()))
	assert.Nil(t, Encode(nil))
}

func TestDecodeSplitsLines(t *testing.T) {
	nodes := Decode([]ContentPart{TextPart("a\n\nb"), MentionPart("@", bob)})
	kinds := make([]NodeKind, len(nodes))
	for i, n := range nodes {
		kinds[i] = n.Kind
	}
	assert.Equal(t, []NodeKind{TextNode, BreakNode, BreakNode, TextNode, TokenNode}, kinds)
	assert.Equal(t, bob, nodes[4].Item)
}

func TestSetPartsPutsCaretAtEnd(t *testing.T) {
	doc := NewDocument()
	doc.SetParts([]ContentPart{TextPart("hi "), MentionPart("@", bob)})
	assert.Equal(t, TokenNode, doc.NodeBeforeCaret().Kind)
}

func contentParts() *rapid.Generator[[]ContentPart] {
	return rapid.Custom(func(t *rapid.T) []ContentPart {
		n := rapid.IntRange(0, 8).Draw(t, "n")
		parts := []ContentPart{}
		for i := 0; i < n; i++ {
			prevText := len(parts) > 0 && parts[len(parts)-1].Type == PartText
			if !prevText && rapid.Bool().Draw(t, "text") {
				parts = append(parts, TextPart(rapid.StringMatching(`[a-z \n\x{00a0}]{1,8}`).Draw(t, "content")))
				continue
			}
			parts = append(parts, MentionPart(
				rapid.SampledFrom([]string{"@", "#", "/"}).Draw(t, "char"),
				Item{
					ID:    rapid.StringMatching(`[a-z0-9]{1,6}`).Draw(t, "id"),
					Label: rapid.StringMatching(`[A-Za-z ]{1,10}`).Draw(t, "label"),
				},
			))
		}
		return parts
	})
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		parts := contentParts().Draw(t, "parts")
		got := Encode(NewInline(Decode(parts)...))
		require.Equal(t, parts, got)
	})
}

func TestSerializeIsIdempotentThroughFallbackShape(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(0, 8).Draw(t, "n")
		parts := make([]ContentPart, 0, n)
		for i := 0; i < n; i++ {
			if rapid.Bool().Draw(t, "text") {
				parts = append(parts, TextPart(rapid.StringMatching(`[a-z \t\n\x{00a0}]{0,6}`).Draw(t, "content")))
				continue
			}
			parts = append(parts, MentionPart("@", Item{
				ID:    rapid.StringMatching(`[0-9]{1,3}`).Draw(t, "id"),
				Label: rapid.StringMatching(`[A-Za-z]{1,6}`).Draw(t, "label"),
			}))
		}

		once := Serialize(parts, nil)
		twice := Serialize(PartsFromData(once), nil)
		require.Equal(t, once, twice)
	})
}

func TestSerializeFallbackAndTrim(t *testing.T) {
	got := Serialize([]ContentPart{
		TextPart("  "),
		TextPart("hi "),
		MentionPart("@", bob),
		TextPart(NBSP),
	}, nil)
	assert.Equal(t, []DataPart{
		DataTextPart("hi "),
		{Kind: DataMention, Fields: map[string]any{"type": "data", "mentionType": "@", "id": "5", "label": "Bob"}},
	}, got)
}

func TestSerializeTransformWinsOverSchema(t *testing.T) {
	triggers := []Trigger{{
		Char:   "@",
		Source: people(),
		Transform: func(it Item) map[string]any {
			return map[string]any{"type": "user", "userId": it.ID}
		},
		Schema: &Schema{Type: "ignored", Mapping: map[string]string{"x": "id"}},
	}}
	got := Serialize([]ContentPart{MentionPart("@", bob)}, triggers)
	require.Len(t, got, 1)
	assert.Equal(t, map[string]any{"type": "user", "userId": "5"}, got[0].Fields)
}

func TestSerializeTransformWithoutTypeKeepsData(t *testing.T) {
	triggers := []Trigger{{
		Char:      "@",
		Source:    people(),
		Transform: func(it Item) map[string]any { return map[string]any{"ref": it.ID} },
	}}
	got := Serialize([]ContentPart{MentionPart("@", bob)}, triggers)
	assert.Equal(t, map[string]any{"type": "data", "ref": "5"}, got[0].Fields)
}

func TestSerializeSchemaMapsFieldsAndSkipsMissing(t *testing.T) {
	triggers := []Trigger{{
		Char:   "#",
		Source: people(),
		Schema: &Schema{Type: "tag", Mapping: map[string]string{
			"tagId": "id",
			"name":  "label",
			"color": "color",
			"nope":  "missing",
		}},
	}}
	item := Item{ID: "t1", Label: "urgent", Extra: map[string]any{"color": "red"}}
	got := Serialize([]ContentPart{MentionPart("#", item)}, triggers)
	assert.Equal(t, map[string]any{"type": "tag", "tagId": "t1", "name": "urgent", "color": "red"}, got[0].Fields)
}

func TestSerializeUnknownTriggerUsesFallback(t *testing.T) {
	got := Serialize([]ContentPart{MentionPart("!", bob)}, []Trigger{{Char: "@", Source: people()}})
	assert.Equal(t, "!", got[0].Fields["mentionType"])
}

func TestSerializeAllBlankIsEmpty(t *testing.T) {
	got := Serialize([]ContentPart{TextPart(" \n"), TextPart(NBSP)}, nil)
	assert.Empty(t, got)
}
