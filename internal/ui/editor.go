package ui

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	zone "github.com/lrstanley/bubblezone"

	"github.com/gravitrone/mentionly/internal/mention"
	"github.com/gravitrone/mentionly/internal/ui/components"
)

const (
	defaultBlurDelay = 150 * time.Millisecond
	defaultPageSize  = 6
)

// SubmitMsg is emitted when enter is pressed with no candidate list to pick from.
type SubmitMsg struct {
	Content []mention.ContentPart
	Data    []mention.DataPart
}

// CommandSelectedMsg is emitted after a command-mode selection ran OnSelect.
type CommandSelectedMsg struct {
	Trigger string
	Item    mention.Item
}

// CompositionStartMsg marks the start of an IME composition.
type CompositionStartMsg struct{}

// CompositionEndMsg marks the end of an IME composition.
type CompositionEndMsg struct{}

// PasteMsg carries clipboard text to insert at the caret.
type PasteMsg struct {
	Text string
}

type blurTimeoutMsg struct {
	seq uint64
}

type clipboardErrMsg struct {
	err error
}

// EditorOptions configures an Editor.
type EditorOptions struct {
	Triggers []mention.Trigger
	// NoTrailingSpace disables the non-breaking space inserted after a mention.
	NoTrailingSpace bool
	PopupMode       mention.PopupMode
	BlurDelay       time.Duration
	PageSize        int
	Placeholder     string
	Keys            *EditorKeyMap
	Zones           *zone.Manager
	Logger          *log.Logger
}

// Editor is a mention-aware text input. It owns the document, routes key, paste,
// composition and focus events, and drives the candidate popup.
type Editor struct {
	doc      *mention.Document
	resolver *mention.Resolver
	triggers []mention.Trigger
	opts     EditorOptions
	keys     EditorKeyMap
	logger   *log.Logger

	open      bool
	active    string
	query     string
	list      *components.List
	position  mention.Position
	composing bool
	focused   bool

	blurSeq    uint64
	blurCancel context.CancelFunc

	zonePrefix string
	spinner    spinner.Model
	width      int
}

// NewEditor validates the triggers and returns a focused, empty editor.
func NewEditor(opts EditorOptions) (*Editor, error) {
	if err := mention.ValidateTriggers(opts.Triggers); err != nil {
		return nil, fmt.Errorf("invalid triggers: %w", err)
	}
	if opts.BlurDelay <= 0 {
		opts.BlurDelay = defaultBlurDelay
	}
	if opts.PageSize <= 0 {
		opts.PageSize = defaultPageSize
	}
	if opts.PopupMode == "" {
		opts.PopupMode = mention.PopupCursor
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	keys := DefaultEditorKeys
	if opts.Keys != nil {
		keys = *opts.Keys
	}

	e := &Editor{
		doc:      mention.NewDocument(),
		resolver: mention.NewResolver(logger),
		triggers: opts.Triggers,
		opts:     opts,
		keys:     keys,
		logger:   logger,
		list:     components.NewList(opts.PageSize),
		focused:  true,
		spinner: spinner.New(
			spinner.WithSpinner(spinner.MiniDot),
			spinner.WithStyle(AccentStyle),
		),
	}
	if opts.Zones != nil {
		e.zonePrefix = opts.Zones.NewPrefix()
	}
	return e, nil
}

// Attach swaps in a document surface. Passing nil detaches the editor.
func (e *Editor) Attach(doc *mention.Document) {
	e.doc = doc
	e.Close()
}

// Dispose tears the editor down: timers are cancelled, late results are dropped and the
// document is detached.
func (e *Editor) Dispose() {
	e.resolver.Stop()
	e.cancelBlur()
	e.open = false
	e.active = ""
	e.query = ""
	e.list.SetItems(nil)
	e.doc = nil
}

// SetWidth sets the render width.
func (e *Editor) SetWidth(width int) {
	e.width = width
}

// Keys returns the active key map.
func (e *Editor) Keys() EditorKeyMap {
	return e.keys
}

// Focused reports whether the editor has focus.
func (e *Editor) Focused() bool {
	return e.focused
}

// Init satisfies the bubbletea model shape.
func (e *Editor) Init() tea.Cmd {
	return nil
}

// Update routes a message to the matching handler.
func (e *Editor) Update(msg tea.Msg) (*Editor, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return e, e.HandleKey(msg)
	case tea.MouseMsg:
		return e, e.handleMouse(msg)
	case PasteMsg:
		return e, e.Paste(msg.Text)
	case CompositionStartMsg:
		e.CompositionStart()
		return e, nil
	case CompositionEndMsg:
		return e, e.CompositionEnd()
	case tea.FocusMsg:
		e.focusIn()
		return e, nil
	case tea.BlurMsg:
		return e, e.Blur()
	case blurTimeoutMsg:
		if msg.seq == e.blurSeq && !e.focused {
			e.Close()
		}
		return e, nil
	case mention.ResultMsg:
		if e.resolver.Apply(msg) {
			e.syncList()
		}
		return e, nil
	case clipboardErrMsg:
		e.logger.Warn("clipboard read failed", "err", msg.err)
		return e, nil
	case spinner.TickMsg:
		if !e.resolver.Loading() {
			return e, nil
		}
		var cmd tea.Cmd
		e.spinner, cmd = e.spinner.Update(msg)
		return e, cmd
	}
	return e, nil
}

// --- Observable State ---

// State returns a snapshot of the popup state.
func (e *Editor) State() mention.State {
	return mention.State{
		Open:        e.open,
		Trigger:     e.active,
		Query:       e.query,
		Items:       e.resolver.Items(),
		ActiveIndex: e.list.Selected(),
		Loading:     e.resolver.Loading(),
		Position:    e.position,
	}
}

// Parts returns the encoded content.
func (e *Editor) Parts() []mention.ContentPart {
	if e.doc == nil {
		return nil
	}
	return e.doc.Parts()
}

// SerializedParts returns the content in its serialized form.
func (e *Editor) SerializedParts() []mention.DataPart {
	if e.doc == nil {
		return nil
	}
	return mention.Serialize(e.doc.Parts(), e.triggers)
}

// PlainText returns the content with mentions rendered as trigger plus label.
func (e *Editor) PlainText() string {
	return mention.PlainText(e.Parts())
}

// IsEmpty reports whether the editor holds no mention and no visible text.
func (e *Editor) IsEmpty() bool {
	return mention.IsEmpty(e.Parts())
}

// --- Content Operations ---

// Clear empties the document and closes the popup.
func (e *Editor) Clear() {
	if e.doc == nil {
		return
	}
	e.doc.Reset()
	e.Close()
}

// SetContent replaces the document with parts and puts the caret at the end.
func (e *Editor) SetContent(parts []mention.ContentPart) {
	if e.doc == nil {
		return
	}
	e.doc.SetParts(parts)
	e.Close()
}

// Focus gives the editor focus and moves the caret to the end.
func (e *Editor) Focus() {
	e.focusIn()
	if e.doc != nil {
		e.doc.CaretToEnd()
	}
}

// focusIn marks the editor focused and cancels a pending blur close. The caret stays put.
func (e *Editor) focusIn() {
	e.focused = true
	e.cancelBlur()
}

// Blur drops focus and arms the delayed popup close.
func (e *Editor) Blur() tea.Cmd {
	e.focused = false
	e.cancelBlur()
	if !e.open {
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	e.blurCancel = cancel
	seq := e.blurSeq
	delay := e.opts.BlurDelay
	return func() tea.Msg {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil
		case <-timer.C:
			return blurTimeoutMsg{seq: seq}
		}
	}
}

func (e *Editor) cancelBlur() {
	e.blurSeq++
	if e.blurCancel != nil {
		e.blurCancel()
		e.blurCancel = nil
	}
}

// --- Selection Protocol ---

// Close resets the popup state. Pending and in-flight resolutions are invalidated.
func (e *Editor) Close() {
	e.open = false
	e.active = ""
	e.query = ""
	e.list.SetItems(nil)
	e.resolver.Reset()
}

// Select applies item for the active trigger. Inline triggers replace the typed trigger
// text with a token; command triggers remove it and run OnSelect.
func (e *Editor) Select(item mention.Item) tea.Cmd {
	if e.doc == nil || !e.open {
		return nil
	}
	trig, ok := mention.FindTrigger(e.triggers, e.active)
	if !ok {
		e.Close()
		return nil
	}
	e.removeTriggerText(trig.Char)

	if trig.IsCommand() {
		e.logger.Info("command selected", "trigger", trig.Char, "id", item.ID)
		if trig.OnSelect != nil {
			trig.OnSelect(item)
		}
		e.Close()
		char := trig.Char
		return func() tea.Msg {
			return CommandSelectedMsg{Trigger: char, Item: item}
		}
	}

	e.doc.InsertNode(mention.NewToken(trig.Char, item))
	if !e.opts.NoTrailingSpace {
		e.doc.InsertNode(mention.NewText(mention.NBSP))
	}
	e.Close()
	e.focusIn()
	return nil
}

// removeTriggerText deletes from the last occurrence of char up to the caret.
func (e *Editor) removeTriggerText(char string) {
	text, ok := e.doc.TextBeforeCaret()
	if !ok {
		return
	}
	idx := strings.LastIndex(text, char)
	if idx < 0 {
		return
	}
	e.doc.DeleteTextBeforeCaret(idx)
}

// --- Detection ---

func (e *Editor) detect() tea.Cmd {
	if e.doc == nil || e.composing {
		return nil
	}
	text, ok := e.doc.TextBeforeCaret()
	if !ok {
		e.Close()
		return nil
	}
	m, ok := mention.Detect(text, e.triggers)
	if !ok {
		e.Close()
		return nil
	}
	e.open = true
	e.active = m.Trigger.Char
	e.query = m.Query
	e.position = e.doc.CaretPosition()

	cmd := e.resolver.Resolve(m.Trigger, m.Query)
	e.syncList()
	if e.resolver.Loading() {
		return tea.Batch(cmd, e.spinner.Tick)
	}
	return cmd
}

func (e *Editor) syncList() {
	items := e.resolver.Items()
	labels := make([]string, len(items))
	for i, it := range items {
		labels[i] = it.Label
	}
	e.list.SetItems(labels)
}

// --- Edit Events ---

// HandleKey applies a key press. Popup navigation takes precedence while it is open.
func (e *Editor) HandleKey(msg tea.KeyMsg) tea.Cmd {
	if e.doc == nil {
		return nil
	}
	if msg.Paste {
		return e.Paste(string(msg.Runes))
	}
	if e.open {
		if handled, cmd := e.handlePopupKey(msg); handled {
			return cmd
		}
	}

	switch {
	case key.Matches(msg, e.keys.Newline):
		e.doc.InsertBreak()
		return e.detect()
	case key.Matches(msg, e.keys.Submit):
		return e.submit()
	case key.Matches(msg, e.keys.Backspace):
		return e.Backspace()
	case key.Matches(msg, e.keys.Delete):
		if e.doc.DeleteForward() {
			return e.detect()
		}
		return nil
	case key.Matches(msg, e.keys.Paste):
		return readClipboard
	case key.Matches(msg, e.keys.Home):
		e.doc.CaretToStart()
		return e.detect()
	case key.Matches(msg, e.keys.End):
		e.doc.CaretToEnd()
		return e.detect()
	case isKey(msg, "left"):
		e.doc.MoveLeft()
		return e.detect()
	case isKey(msg, "right"):
		e.doc.MoveRight()
		return e.detect()
	case msg.Type == tea.KeySpace:
		return e.Input(" ")
	case msg.Type == tea.KeyRunes && !msg.Alt:
		return e.Input(string(msg.Runes))
	}
	return nil
}

func (e *Editor) handlePopupKey(msg tea.KeyMsg) (bool, tea.Cmd) {
	switch {
	case isDown(msg):
		e.list.Next()
		return true, nil
	case isUp(msg):
		e.list.Prev()
		return true, nil
	case key.Matches(msg, e.keys.Select):
		items := e.resolver.Items()
		if len(items) == 0 {
			return false, nil
		}
		return true, e.Select(items[e.list.Selected()])
	case key.Matches(msg, e.keys.Dismiss):
		e.Close()
		return true, nil
	}
	return false, nil
}

// Input types text at the caret.
func (e *Editor) Input(text string) tea.Cmd {
	if e.doc == nil || text == "" {
		return nil
	}
	e.doc.InsertText(text)
	return e.detect()
}

// Backspace deletes backward. A token right before the caret goes as a whole.
func (e *Editor) Backspace() tea.Cmd {
	if e.doc == nil {
		return nil
	}
	if prev := e.doc.NodeBeforeCaret(); prev != nil && prev.Kind == mention.TokenNode {
		e.doc.Remove(prev)
		return nil
	}
	if !e.doc.DeleteBackward() {
		return nil
	}
	return e.detect()
}

// Paste inserts text as a single plain run and collapses the caret after it.
func (e *Editor) Paste(text string) tea.Cmd {
	if e.doc == nil || text == "" {
		return nil
	}
	e.doc.InsertNode(mention.NewText(text))
	return nil
}

// CompositionStart suspends trigger detection.
func (e *Editor) CompositionStart() {
	e.composing = true
}

// CompositionEnd resumes detection and scans once.
func (e *Editor) CompositionEnd() tea.Cmd {
	e.composing = false
	return e.detect()
}

func (e *Editor) submit() tea.Cmd {
	if e.IsEmpty() {
		return nil
	}
	content := e.Parts()
	data := e.SerializedParts()
	return func() tea.Msg {
		return SubmitMsg{Content: content, Data: data}
	}
}

func readClipboard() tea.Msg {
	text, err := clipboard.ReadAll()
	if err != nil {
		return clipboardErrMsg{err: err}
	}
	return PasteMsg{Text: text}
}

// --- Pointer Selection ---

func (e *Editor) itemZone(idx int) string {
	return fmt.Sprintf("%scandidate-%d", e.zonePrefix, idx)
}

func (e *Editor) handleMouse(msg tea.MouseMsg) tea.Cmd {
	if e.opts.Zones == nil || !e.open {
		return nil
	}
	if msg.Action != tea.MouseActionRelease || msg.Button != tea.MouseButtonLeft {
		return nil
	}
	items := e.resolver.Items()
	for rel := range e.list.Visible() {
		abs := e.list.RelToAbs(rel)
		if abs >= len(items) {
			break
		}
		if e.opts.Zones.Get(e.itemZone(abs)).InBounds(msg) {
			e.focusIn()
			return e.Select(items[abs])
		}
	}
	return nil
}
