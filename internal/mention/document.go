package mention

import (
	"github.com/rivo/uniseg"
)

// NodeKind is the closed set of document node kinds.
type NodeKind int

const (
	TextNode NodeKind = iota
	BreakNode
	TokenNode
	ContainerNode
)

// Node is an element of the editable document tree.
type Node struct {
	Kind     NodeKind
	Text     string
	Trigger  string
	Item     Item
	Block    bool
	Children []*Node

	parent *Node
}

// NewText returns a text run.
func NewText(s string) *Node {
	return &Node{Kind: TextNode, Text: s}
}

// NewBreak returns a line break.
func NewBreak() *Node {
	return &Node{Kind: BreakNode}
}

// NewToken returns an atomic mention token.
func NewToken(char string, item Item) *Node {
	return &Node{Kind: TokenNode, Trigger: char, Item: item}
}

// NewBlock returns a container that starts a new visual line.
func NewBlock(children ...*Node) *Node {
	n := &Node{Kind: ContainerNode, Block: true}
	n.insertAt(0, children...)
	return n
}

// NewInline returns a container that does not start a new line.
func NewInline(children ...*Node) *Node {
	n := &Node{Kind: ContainerNode}
	n.insertAt(0, children...)
	return n
}

// Parent returns the containing node, nil for the root.
func (n *Node) Parent() *Node {
	return n.parent
}

// Visual is the on-screen text of a leaf.
func (n *Node) Visual() string {
	switch n.Kind {
	case TextNode:
		return n.Text
	case BreakNode:
		return "\n"
	case TokenNode:
		return n.Trigger + n.Item.Label
	}
	return ""
}

func (n *Node) index() int {
	if n.parent == nil {
		return -1
	}
	for i, c := range n.parent.Children {
		if c == n {
			return i
		}
	}
	return -1
}

func (n *Node) insertAt(i int, children ...*Node) {
	for _, c := range children {
		c.parent = n
	}
	n.Children = append(n.Children[:i], append(append([]*Node(nil), children...), n.Children[i:]...)...)
}

func (n *Node) removeAt(i int) {
	n.Children[i].parent = nil
	n.Children = append(n.Children[:i], n.Children[i+1:]...)
}

func (n *Node) previousSibling() *Node {
	if i := n.index(); i > 0 {
		return n.parent.Children[i-1]
	}
	return nil
}

func (n *Node) nextSibling() *Node {
	if i := n.index(); i >= 0 && i+1 < len(n.parent.Children) {
		return n.parent.Children[i+1]
	}
	return nil
}

// Caret is a collapsed selection: a byte offset inside a text run, or a child index
// inside a container.
type Caret struct {
	Node   *Node
	Offset int
}

// Position is the caret location in terminal cells, relative to the editor origin.
type Position struct {
	Top  int
	Left int
}

// Document is a tree of nodes with at most one caret.
type Document struct {
	root     *Node
	caret    Caret
	hasCaret bool
}

// NewDocument returns a document holding children with the caret at the end.
func NewDocument(children ...*Node) *Document {
	d := &Document{}
	d.Reset(children...)
	return d
}

// Root returns the root container.
func (d *Document) Root() *Node {
	return d.root
}

// Reset replaces the whole content and puts the caret at the end.
func (d *Document) Reset(children ...*Node) {
	d.root = NewInline(children...)
	d.CaretToEnd()
}

// Caret returns the caret, if any.
func (d *Document) Caret() (Caret, bool) {
	return d.caret, d.hasCaret
}

// SetCaret places the caret, clamping the offset to the node.
func (d *Document) SetCaret(node *Node, offset int) {
	if node == nil {
		d.hasCaret = false
		return
	}
	limit := len(node.Children)
	if node.Kind == TextNode {
		limit = len(node.Text)
	}
	d.caret = Caret{Node: node, Offset: max(0, min(offset, limit))}
	d.hasCaret = true
}

// ClearCaret drops the caret, as when focus leaves the surface.
func (d *Document) ClearCaret() {
	d.hasCaret = false
}

// CaretToEnd collapses the caret after the last child of the root.
func (d *Document) CaretToEnd() {
	d.SetCaret(d.root, len(d.root.Children))
}

// CaretToStart collapses the caret before the first child of the root.
func (d *Document) CaretToStart() {
	d.SetCaret(d.root, 0)
}

// TextBeforeCaret returns the caret's text run up to the caret.
// ok is false when there is no caret or it does not sit inside a text run.
func (d *Document) TextBeforeCaret() (string, bool) {
	if !d.hasCaret || d.caret.Node.Kind != TextNode {
		return "", false
	}
	return d.caret.Node.Text[:d.caret.Offset], true
}

// NodeBeforeCaret returns the node that ends right where the caret is.
func (d *Document) NodeBeforeCaret() *Node {
	if !d.hasCaret {
		return nil
	}
	c := d.caret
	switch c.Node.Kind {
	case ContainerNode:
		if c.Offset > 0 {
			return c.Node.Children[c.Offset-1]
		}
	case TextNode:
		if c.Offset == 0 {
			return c.Node.previousSibling()
		}
	}
	return nil
}

func (d *Document) nodeAfterCaret() *Node {
	if !d.hasCaret {
		return nil
	}
	c := d.caret
	switch c.Node.Kind {
	case ContainerNode:
		if c.Offset < len(c.Node.Children) {
			return c.Node.Children[c.Offset]
		}
	case TextNode:
		if c.Offset == len(c.Node.Text) {
			return c.Node.nextSibling()
		}
	}
	return nil
}

// InsertText types s at the caret, extending a neighbouring text run when there is one.
func (d *Document) InsertText(s string) {
	if s == "" {
		return
	}
	if !d.hasCaret {
		d.CaretToEnd()
	}
	c := d.caret
	if c.Node.Kind == TextNode {
		c.Node.Text = c.Node.Text[:c.Offset] + s + c.Node.Text[c.Offset:]
		d.caret.Offset += len(s)
		return
	}
	kids := c.Node.Children
	switch {
	case c.Offset > 0 && kids[c.Offset-1].Kind == TextNode:
		prev := kids[c.Offset-1]
		prev.Text += s
		d.caret = Caret{Node: prev, Offset: len(prev.Text)}
	case c.Offset < len(kids) && kids[c.Offset].Kind == TextNode:
		next := kids[c.Offset]
		next.Text = s + next.Text
		d.caret = Caret{Node: next, Offset: len(s)}
	default:
		t := NewText(s)
		c.Node.insertAt(c.Offset, t)
		d.caret = Caret{Node: t, Offset: len(s)}
	}
}

// InsertNode inserts n at the caret, splitting a text run if needed, and collapses the
// caret right after n.
func (d *Document) InsertNode(n *Node) {
	if !d.hasCaret {
		d.CaretToEnd()
	}
	c := d.caret
	if c.Node.Kind == ContainerNode {
		c.Node.insertAt(c.Offset, n)
		d.caret = Caret{Node: c.Node, Offset: c.Offset + 1}
		return
	}

	run := c.Node
	parent := run.parent
	idx := run.index()
	left, right := run.Text[:c.Offset], run.Text[c.Offset:]

	repl := make([]*Node, 0, 3)
	if left != "" {
		run.Text = left
		repl = append(repl, run)
	}
	repl = append(repl, n)
	at := len(repl)
	if right != "" {
		repl = append(repl, NewText(right))
	}
	parent.removeAt(idx)
	parent.insertAt(idx, repl...)
	d.caret = Caret{Node: parent, Offset: idx + at}
}

// InsertBreak inserts a line break at the caret.
func (d *Document) InsertBreak() {
	d.InsertNode(NewBreak())
}

// Remove detaches n, keeping the caret at the same visual spot.
func (d *Document) Remove(n *Node) {
	parent := n.parent
	if parent == nil {
		return
	}
	idx := n.index()
	inside := d.hasCaret && contains(n, d.caret.Node)
	parent.removeAt(idx)
	switch {
	case inside:
		d.caret = Caret{Node: parent, Offset: idx}
	case d.hasCaret && d.caret.Node == parent && d.caret.Offset > idx:
		d.caret.Offset--
	}
}

// DeleteTextBeforeCaret removes the caret's text run from byte start up to the caret.
func (d *Document) DeleteTextBeforeCaret(start int) {
	if !d.hasCaret || d.caret.Node.Kind != TextNode {
		return
	}
	if start < 0 || start > d.caret.Offset {
		return
	}
	d.deleteText(d.caret.Node, start, d.caret.Offset)
}

func (d *Document) deleteText(run *Node, start, end int) {
	run.Text = run.Text[:start] + run.Text[end:]
	d.caret = Caret{Node: run, Offset: start}
	d.hasCaret = true
	if run.Text == "" {
		d.Remove(run)
	}
}

// DeleteBackward removes the grapheme or leaf before the caret. At the start of a block
// the block is merged into the previous line.
func (d *Document) DeleteBackward() bool {
	if !d.hasCaret {
		return false
	}
	c := d.caret
	if c.Node.Kind == TextNode && c.Offset > 0 {
		d.deleteText(c.Node, lastGraphemeStart(c.Node.Text[:c.Offset]), c.Offset)
		return true
	}
	prev := d.NodeBeforeCaret()
	if prev == nil {
		return d.leaveContainer()
	}
	switch prev.Kind {
	case TextNode:
		d.caret = Caret{Node: prev, Offset: len(prev.Text)}
		return d.DeleteBackward()
	case ContainerNode:
		d.caret = Caret{Node: prev, Offset: len(prev.Children)}
		return d.DeleteBackward()
	}
	d.Remove(prev)
	return true
}

func (d *Document) leaveContainer() bool {
	c := d.caret
	container := c.Node
	if container.Kind == TextNode {
		container = container.parent
	}
	if container == nil || container == d.root || container.parent == nil {
		return false
	}
	parent := container.parent
	idx := container.index()
	if !container.Block {
		d.caret = Caret{Node: parent, Offset: idx}
		return d.DeleteBackward()
	}
	kids := container.Children
	container.Children = nil
	parent.removeAt(idx)
	parent.insertAt(idx, kids...)
	if c.Node == container {
		d.caret = Caret{Node: parent, Offset: idx + c.Offset}
	}
	return true
}

// DeleteForward removes the grapheme or leaf after the caret.
func (d *Document) DeleteForward() bool {
	if !d.hasCaret {
		return false
	}
	c := d.caret
	if c.Node.Kind == TextNode && c.Offset < len(c.Node.Text) {
		d.deleteText(c.Node, c.Offset, c.Offset+firstGraphemeLen(c.Node.Text[c.Offset:]))
		return true
	}
	next := d.nodeAfterCaret()
	if next == nil {
		return false
	}
	switch next.Kind {
	case TextNode, ContainerNode:
		d.caret = Caret{Node: next, Offset: 0}
		return d.DeleteForward()
	}
	d.Remove(next)
	return true
}

type stop struct {
	caret Caret
	units int
}

// stops lists every caret position in document order with its visual offset.
// Positions sharing an offset are the same visual spot.
func (d *Document) stops() []stop {
	var out []stop
	units := 0
	var walk func(c *Node)
	walk = func(c *Node) {
		for i, ch := range c.Children {
			out = append(out, stop{Caret{c, i}, units})
			switch ch.Kind {
			case TextNode:
				out = append(out, stop{Caret{ch, 0}, units})
				for _, end := range graphemeEnds(ch.Text) {
					units++
					out = append(out, stop{Caret{ch, end}, units})
				}
			case ContainerNode:
				if ch.Block && units > 0 {
					units++
				}
				walk(ch)
			default:
				units++
			}
		}
		out = append(out, stop{Caret{c, len(c.Children)}, units})
	}
	walk(d.root)
	return out
}

func (d *Document) caretUnits(stops []stop) int {
	best := 0
	for _, s := range stops {
		if s.caret == d.caret {
			return s.units
		}
		if s.caret.Node == d.caret.Node && s.caret.Node.Kind == TextNode && s.caret.Offset <= d.caret.Offset {
			best = s.units
		}
	}
	return best
}

func (d *Document) moveBy(delta int) {
	if !d.hasCaret {
		d.CaretToEnd()
		return
	}
	stops := d.stops()
	target := d.caretUnits(stops) + delta
	if target < 0 || target > stops[len(stops)-1].units {
		return
	}
	// Prefer a spot inside a text run so typing continues it.
	var fallback *Caret
	for i := range stops {
		s := stops[i]
		if s.units != target {
			continue
		}
		if s.caret.Node.Kind == TextNode {
			d.caret = s.caret
			return
		}
		if fallback == nil {
			fallback = &stops[i].caret
		}
	}
	if fallback != nil {
		d.caret = *fallback
	}
}

// MoveLeft moves the caret one grapheme or one leaf back.
func (d *Document) MoveLeft() {
	d.moveBy(-1)
}

// MoveRight moves the caret one grapheme or one leaf forward.
func (d *Document) MoveRight() {
	d.moveBy(1)
}

// CaretPosition returns the caret's line and display column.
func (d *Document) CaretPosition() Position {
	segs, at := d.Segments()
	if at < 0 {
		at = len(segs)
	}
	var pos Position
	for _, s := range segs[:at] {
		for _, line := range splitKeep(s.Visual()) {
			if line == "\n" {
				pos.Top++
				pos.Left = 0
				continue
			}
			pos.Left += uniseg.StringWidth(line)
		}
	}
	return pos
}

func contains(ancestor, n *Node) bool {
	for ; n != nil; n = n.parent {
		if n == ancestor {
			return true
		}
	}
	return false
}

func graphemeEnds(s string) []int {
	var ends []int
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		_, to := g.Positions()
		ends = append(ends, to)
	}
	return ends
}

func lastGraphemeStart(s string) int {
	start := 0
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		start, _ = g.Positions()
	}
	return start
}

func firstGraphemeLen(s string) int {
	cluster, _, _, _ := uniseg.FirstGraphemeClusterInString(s, -1)
	return len(cluster)
}

// splitKeep splits s into lines, keeping every "\n" as its own element.
func splitKeep(s string) []string {
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			if i > start {
				out = append(out, s[start:i])
			}
			out = append(out, "\n")
			start = i + 1
		}
	}
	if start < len(s) {
		out = append(out, s[start:])
	}
	return out
}
