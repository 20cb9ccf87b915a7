package mention

import (
	"strings"
)

// SegmentKind tags a flattened document segment.
type SegmentKind int

const (
	SegmentText SegmentKind = iota
	SegmentBreak
	SegmentToken
)

// Segment is one render-ready run of the flattened document. Block boundaries show up
// as SegmentBreak.
type Segment struct {
	Kind    SegmentKind
	Text    string
	Trigger string
	Item    Item
}

// Visual is how the segment reads on screen.
func (s Segment) Visual() string {
	switch s.Kind {
	case SegmentBreak:
		return "\n"
	case SegmentToken:
		return s.Trigger + s.Item.Label
	}
	return s.Text
}

// Segments flattens the document. at is the index of the segment the caret sits
// before, or -1 without a caret.
func (d *Document) Segments() (segs []Segment, at int) {
	var c *Caret
	if d.hasCaret {
		c = &d.caret
	}
	return flatten(d.root, c)
}

func flatten(root *Node, caret *Caret) ([]Segment, int) {
	var segs []Segment
	at := -1
	mark := func(n *Node, offset int) {
		if caret != nil && caret.Node == n && caret.Offset == offset {
			at = len(segs)
		}
	}
	var walk func(c *Node)
	walk = func(c *Node) {
		for i, ch := range c.Children {
			mark(c, i)
			switch ch.Kind {
			case TextNode:
				if caret != nil && caret.Node == ch {
					if left := ch.Text[:caret.Offset]; left != "" {
						segs = append(segs, Segment{Kind: SegmentText, Text: left})
					}
					at = len(segs)
					if right := ch.Text[caret.Offset:]; right != "" {
						segs = append(segs, Segment{Kind: SegmentText, Text: right})
					}
				} else if ch.Text != "" {
					segs = append(segs, Segment{Kind: SegmentText, Text: ch.Text})
				}
			case BreakNode:
				segs = append(segs, Segment{Kind: SegmentBreak})
			case TokenNode:
				segs = append(segs, Segment{Kind: SegmentToken, Trigger: ch.Trigger, Item: ch.Item})
			case ContainerNode:
				if ch.Block && len(segs) > 0 && !endsWithBreak(segs) {
					segs = append(segs, Segment{Kind: SegmentBreak})
				}
				walk(ch)
			}
		}
		mark(c, len(c.Children))
	}
	walk(root)
	return segs, at
}

func endsWithBreak(segs []Segment) bool {
	last := segs[len(segs)-1]
	return last.Kind == SegmentBreak || (last.Kind == SegmentText && strings.HasSuffix(last.Text, "\n"))
}

// Encode turns the tree under root into content parts. Adjacent text is coalesced.
func Encode(root *Node) []ContentPart {
	if root == nil {
		return nil
	}
	segs, _ := flatten(root, nil)
	parts := make([]ContentPart, 0, len(segs))
	appendText := func(s string) {
		if n := len(parts); n > 0 && parts[n-1].Type == PartText {
			parts[n-1].Content += s
			return
		}
		parts = append(parts, TextPart(s))
	}
	for _, s := range segs {
		switch s.Kind {
		case SegmentText:
			appendText(s.Text)
		case SegmentBreak:
			appendText("\n")
		case SegmentToken:
			parts = append(parts, MentionPart(s.Trigger, s.Item))
		}
	}
	return parts
}

// Decode builds document nodes from content parts. Newlines become breaks and empty
// segments between them produce no text run.
func Decode(parts []ContentPart) []*Node {
	var nodes []*Node
	for _, p := range parts {
		switch p.Type {
		case PartMention:
			nodes = append(nodes, NewToken(p.TriggeredBy, p.Item()))
		case PartText:
			lines := strings.Split(p.Content, "\n")
			for i, line := range lines {
				if line != "" {
					nodes = append(nodes, NewText(line))
				}
				if i < len(lines)-1 {
					nodes = append(nodes, NewBreak())
				}
			}
		}
	}
	return nodes
}

// Parts encodes the document.
func (d *Document) Parts() []ContentPart {
	return Encode(d.root)
}

// SetParts replaces the content with decoded parts and puts the caret at the end.
func (d *Document) SetParts(parts []ContentPart) {
	d.Reset(Decode(parts)...)
}

// Serialize converts content parts to data parts. Mentions are mapped by their trigger's
// Transform, then Schema, then the built-in fallback. Adjacent text is merged, the outer
// whitespace trimmed and empty text dropped.
func Serialize(parts []ContentPart, triggers []Trigger) []DataPart {
	merged := make([]DataPart, 0, len(parts))
	for _, p := range parts {
		if p.Type == PartText {
			if n := len(merged); n > 0 && merged[n-1].Kind == DataText {
				merged[n-1].Text += p.Content
				continue
			}
			merged = append(merged, DataTextPart(p.Content))
			continue
		}
		t, _ := FindTrigger(triggers, p.TriggeredBy)
		merged = append(merged, DataPart{Kind: DataMention, Fields: mentionFields(p, t)})
	}

	if n := len(merged); n > 0 {
		if merged[0].Kind == DataText {
			merged[0].Text = strings.TrimLeftFunc(merged[0].Text, isBlank)
		}
		if merged[n-1].Kind == DataText {
			merged[n-1].Text = strings.TrimRightFunc(merged[n-1].Text, isBlank)
		}
	}

	out := merged[:0]
	for _, d := range merged {
		if d.Kind == DataText && d.Text == "" {
			continue
		}
		out = append(out, d)
	}
	return out
}

func mentionFields(p ContentPart, t *Trigger) map[string]any {
	item := p.Item()
	switch {
	case t != nil && t.Transform != nil:
		fields := map[string]any{"type": "data"}
		for k, v := range t.Transform(item) {
			fields[k] = v
		}
		return fields
	case t != nil && t.Schema != nil:
		fields := map[string]any{"type": t.Schema.Type}
		for key, field := range t.Schema.Mapping {
			if v, ok := item.Field(field); ok {
				fields[key] = v
			}
		}
		return fields
	}
	return map[string]any{
		"type":        "data",
		"mentionType": p.TriggeredBy,
		"id":          p.ID,
		"label":       p.Label,
	}
}
