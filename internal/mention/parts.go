package mention

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode"
)

// NBSP is inserted after a mention so the caret lands outside the token.
const NBSP = "\u00a0"

// PartType tags a content part.
type PartType string

const (
	PartText    PartType = "text"
	PartMention PartType = "mention"
)

// ContentPart is one piece of the editable content.
type ContentPart struct {
	Type        PartType       `json:"type"`
	Content     string         `json:"content,omitempty"`
	TriggeredBy string         `json:"triggeredBy,omitempty"`
	ID          string         `json:"id,omitempty"`
	Label       string         `json:"label,omitempty"`
	Extra       map[string]any `json:"extra,omitempty"`
}

// TextPart builds a text part.
func TextPart(content string) ContentPart {
	return ContentPart{Type: PartText, Content: content}
}

// MentionPart builds a mention part for item triggered by char.
func MentionPart(char string, item Item) ContentPart {
	return ContentPart{
		Type:        PartMention,
		TriggeredBy: char,
		ID:          item.ID,
		Label:       item.Label,
		Extra:       item.Extra,
	}
}

// Item returns the mentioned item.
func (p ContentPart) Item() Item {
	return Item{ID: p.ID, Label: p.Label, Extra: p.Extra}
}

// Visual is how the part reads on screen.
func (p ContentPart) Visual() string {
	if p.Type == PartMention {
		return p.TriggeredBy + p.Label
	}
	return p.Content
}

// PlainText concatenates the visual form of every part.
func PlainText(parts []ContentPart) string {
	var b strings.Builder
	for _, p := range parts {
		b.WriteString(p.Visual())
	}
	return b.String()
}

// IsEmpty reports whether parts hold no mention and only blank text.
func IsEmpty(parts []ContentPart) bool {
	for _, p := range parts {
		if p.Type == PartMention {
			return false
		}
		if strings.TrimFunc(p.Content, isBlank) != "" {
			return false
		}
	}
	return true
}

// DataKind tags a serialized part.
type DataKind int

const (
	DataText DataKind = iota
	DataMention
)

// DataPart is the serialized form handed to consumers. Mention fields always carry "type".
type DataPart struct {
	Kind   DataKind
	Text   string
	Fields map[string]any
}

// DataTextPart builds a serialized text part.
func DataTextPart(text string) DataPart {
	return DataPart{Kind: DataText, Text: text}
}

// Type is the "type" key of the part.
func (p DataPart) Type() string {
	if p.Kind == DataText {
		return string(PartText)
	}
	if v, ok := p.Fields["type"].(string); ok {
		return v
	}
	return "data"
}

// MarshalJSON writes {"type":"text","text":...} or the mention fields as a flat object.
func (p DataPart) MarshalJSON() ([]byte, error) {
	if p.Kind == DataText {
		return json.Marshal(struct {
			Type string `json:"type"`
			Text string `json:"text"`
		}{Type: string(PartText), Text: p.Text})
	}
	fields := make(map[string]any, len(p.Fields)+1)
	for k, v := range p.Fields {
		fields[k] = v
	}
	if _, ok := fields["type"]; !ok {
		fields["type"] = "data"
	}
	return json.Marshal(fields)
}

// UnmarshalJSON reads either shape written by MarshalJSON.
func (p *DataPart) UnmarshalJSON(data []byte) error {
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("decode data part: %w", err)
	}
	if t, _ := fields["type"].(string); t == string(PartText) {
		text, _ := fields["text"].(string)
		*p = DataTextPart(text)
		return nil
	}
	*p = DataPart{Kind: DataMention, Fields: fields}
	return nil
}

// PartsFromData converts text parts and fallback-shaped data parts back to content parts.
// Data parts without string mentionType, id and label are skipped.
func PartsFromData(data []DataPart) []ContentPart {
	out := make([]ContentPart, 0, len(data))
	for _, d := range data {
		if d.Kind == DataText {
			out = append(out, TextPart(d.Text))
			continue
		}
		char, ok1 := d.Fields["mentionType"].(string)
		id, ok2 := d.Fields["id"].(string)
		label, ok3 := d.Fields["label"].(string)
		if !ok1 || !ok2 || !ok3 {
			continue
		}
		out = append(out, MentionPart(char, Item{ID: id, Label: label}))
	}
	return out
}

func isBlank(r rune) bool {
	return unicode.IsSpace(r) || r == '\ufeff'
}
