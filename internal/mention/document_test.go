package mention

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var bob = Item{ID: "5", Label: "Bob"}

func TestInsertTextCreatesAndExtendsRuns(t *testing.T) {
	doc := NewDocument()
	doc.InsertText("he")
	doc.InsertText("llo")

	require.Len(t, doc.Root().Children, 1)
	text, ok := doc.TextBeforeCaret()
	assert.True(t, ok)
	assert.Equal(t, "hello", text)
}

func TestInsertTextAfterTokenStartsNewRun(t *testing.T) {
	doc := NewDocument(NewToken("@", bob))
	_, ok := doc.TextBeforeCaret()
	assert.False(t, ok)

	doc.InsertText("x")
	text, ok := doc.TextBeforeCaret()
	assert.True(t, ok)
	assert.Equal(t, "x", text)
	assert.Equal(t, []ContentPart{MentionPart("@", bob), TextPart("x")}, doc.Parts())
}

func TestInsertNodeSplitsRun(t *testing.T) {
	run := NewText("helloworld")
	doc := NewDocument(run)
	doc.SetCaret(run, 5)

	doc.InsertNode(NewToken("@", bob))

	assert.Equal(t, []ContentPart{
		TextPart("hello"),
		MentionPart("@", bob),
		TextPart("world"),
	}, doc.Parts())
	caret, ok := doc.Caret()
	require.True(t, ok)
	assert.Equal(t, doc.Root(), caret.Node)
	assert.Equal(t, 2, caret.Offset)
	assert.Equal(t, TokenNode, doc.NodeBeforeCaret().Kind)
}

func TestInsertNodeAtRunEdgesDropsEmptyHalves(t *testing.T) {
	run := NewText("hi")
	doc := NewDocument(run)
	doc.SetCaret(run, 2)
	doc.InsertNode(NewToken("@", bob))
	assert.Len(t, doc.Root().Children, 2)
}

func TestDeleteBackwardRemovesWholeGrapheme(t *testing.T) {
	doc := NewDocument(NewText("a👍🏽"))
	doc.SetCaret(doc.Root().Children[0], len("a👍🏽"))

	assert.True(t, doc.DeleteBackward())
	assert.Equal(t, "a", PlainText(doc.Parts()))

	assert.True(t, doc.DeleteBackward())
	assert.Empty(t, doc.Root().Children)
	assert.False(t, doc.DeleteBackward())
}

func TestDeleteBackwardRemovesTokenAsUnit(t *testing.T) {
	doc := NewDocument(NewText("hi "), NewToken("@", bob))

	assert.True(t, doc.DeleteBackward())
	assert.Equal(t, []ContentPart{TextPart("hi ")}, doc.Parts())
}

func TestDeleteBackwardAtRunStartReachesPreviousToken(t *testing.T) {
	after := NewText("x")
	doc := NewDocument(NewToken("@", bob), after)
	doc.SetCaret(after, 0)

	assert.Equal(t, TokenNode, doc.NodeBeforeCaret().Kind)
	assert.True(t, doc.DeleteBackward())
	assert.Equal(t, []ContentPart{TextPart("x")}, doc.Parts())
}

func TestDeleteBackwardMergesBlockIntoPreviousLine(t *testing.T) {
	second := NewText("two")
	doc := NewDocument(NewBlock(NewText("one")), NewBlock(second))
	doc.SetCaret(second, 0)
	require.Equal(t, "one\ntwo", PlainText(doc.Parts()))

	assert.True(t, doc.DeleteBackward())
	assert.Equal(t, "onetwo", PlainText(doc.Parts()))
	text, ok := doc.TextBeforeCaret()
	assert.True(t, ok)
	assert.Equal(t, "", text)
}

func TestDeleteForward(t *testing.T) {
	run := NewText("ab")
	doc := NewDocument(run, NewToken("@", bob))
	doc.SetCaret(run, 1)

	assert.True(t, doc.DeleteForward())
	assert.Equal(t, "a@Bob", PlainText(doc.Parts()))
	assert.True(t, doc.DeleteForward())
	assert.Equal(t, "a", PlainText(doc.Parts()))
	assert.False(t, doc.DeleteForward())
}

func TestMoveLeftRightStepsOverTokens(t *testing.T) {
	first, last := NewText("ab"), NewText("c")
	doc := NewDocument(first, NewToken("@", bob), last)

	doc.MoveLeft()
	caret, _ := doc.Caret()
	assert.Equal(t, Caret{Node: last, Offset: 0}, caret)

	doc.MoveLeft()
	caret, _ = doc.Caret()
	assert.Equal(t, Caret{Node: first, Offset: 2}, caret)

	doc.MoveRight()
	caret, _ = doc.Caret()
	assert.Equal(t, Caret{Node: last, Offset: 0}, caret)

	doc.CaretToStart()
	doc.MoveLeft()
	caret, _ = doc.Caret()
	assert.Equal(t, Caret{Node: doc.Root(), Offset: 0}, caret)
}

func TestRemoveShiftsCaretInParent(t *testing.T) {
	token := NewToken("@", bob)
	doc := NewDocument(NewText("a"), token, NewText("b"))
	doc.Remove(token)

	caret, ok := doc.Caret()
	require.True(t, ok)
	assert.Equal(t, 2, caret.Offset)
}

func TestRemoveMovesCaretOutOfRemovedSubtree(t *testing.T) {
	inner := NewText("gone")
	block := NewBlock(inner)
	doc := NewDocument(NewText("a"), block)
	doc.SetCaret(inner, 2)

	doc.Remove(block)
	caret, _ := doc.Caret()
	assert.Equal(t, Caret{Node: doc.Root(), Offset: 1}, caret)
}

func TestCaretPositionCountsLinesAndWidth(t *testing.T) {
	doc := NewDocument()
	doc.SetParts([]ContentPart{
		TextPart("ab\ncd"),
		MentionPart("@", bob),
	})
	assert.Equal(t, Position{Top: 1, Left: 6}, doc.CaretPosition())

	doc.CaretToStart()
	assert.Equal(t, Position{}, doc.CaretPosition())

	wide := NewDocument(NewText("日本"))
	assert.Equal(t, Position{Top: 0, Left: 4}, wide.CaretPosition())
}

func TestDeleteTextBeforeCaret(t *testing.T) {
	run := NewText("hi @al")
	doc := NewDocument(run)
	doc.SetCaret(run, len(run.Text))

	doc.DeleteTextBeforeCaret(3)
	text, ok := doc.TextBeforeCaret()
	assert.True(t, ok)
	assert.Equal(t, "hi ", text)

	doc.DeleteTextBeforeCaret(10)
	assert.Equal(t, "hi ", PlainText(doc.Parts()))
}
