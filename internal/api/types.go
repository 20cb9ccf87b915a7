package api

import (
	"encoding/json"

	"github.com/gravitrone/mentionly/internal/mention"
)

// --- API Response Envelope ---

type apiResponse[T any] struct {
	Data  T       `json:"data"`
	Error *apiErr `json:"error,omitempty"`
}

type apiErr struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// QueryParams are optional query string values. Empty values are skipped.
type QueryParams map[string]string

// JSONMap handles object fields that some servers send as JSON-encoded strings.
type JSONMap map[string]any

func (j *JSONMap) UnmarshalJSON(data []byte) error {
	// Try as object first
	var m map[string]any
	if err := json.Unmarshal(data, &m); err == nil {
		*j = m
		return nil
	}
	// Try as string containing JSON
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s == "" || s == "null" {
			*j = make(map[string]any)
			return nil
		}
		return json.Unmarshal([]byte(s), (*map[string]any)(j))
	}
	*j = make(map[string]any)
	return nil
}

// --- Candidate ---

// Candidate is one directory entry returned for a trigger query. Top-level keys
// other than id, label and extra are folded into Extra.
type Candidate struct {
	ID    string  `json:"id"`
	Label string  `json:"label"`
	Extra JSONMap `json:"extra,omitempty"`
}

func (c *Candidate) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	var out Candidate
	for k, v := range raw {
		switch k {
		case "id":
			if err := unmarshalID(v, &out.ID); err != nil {
				return err
			}
		case "label":
			if err := json.Unmarshal(v, &out.Label); err != nil {
				return err
			}
		case "extra":
			var extra JSONMap
			if err := json.Unmarshal(v, &extra); err != nil {
				return err
			}
			for ek, ev := range extra {
				out.setExtra(ek, ev)
			}
		default:
			var value any
			if err := json.Unmarshal(v, &value); err != nil {
				return err
			}
			out.setExtra(k, value)
		}
	}
	*c = out
	return nil
}

func (c *Candidate) setExtra(key string, value any) {
	if c.Extra == nil {
		c.Extra = make(JSONMap)
	}
	c.Extra[key] = value
}

// unmarshalID accepts string or numeric ids.
func unmarshalID(data json.RawMessage, dst *string) error {
	if err := json.Unmarshal(data, dst); err == nil {
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*dst = n.String()
	return nil
}

// Item converts the candidate to a mention item.
func (c Candidate) Item() mention.Item {
	item := mention.Item{ID: c.ID, Label: c.Label}
	if len(c.Extra) > 0 {
		item.Extra = map[string]any(c.Extra)
	}
	if item.Label == "" {
		item.Label = item.ID
	}
	return item
}
