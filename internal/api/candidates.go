package api

import (
	"context"
	"strconv"

	"github.com/gravitrone/mentionly/internal/mention"
)

// QueryCandidates calls GET /api/candidates for one trigger character and query.
// A zero limit leaves the page size to the server.
func (c *Client) QueryCandidates(ctx context.Context, trigger, query string, limit int) ([]Candidate, error) {
	params := QueryParams{
		"trigger": trigger,
		"q":       query,
	}
	if limit > 0 {
		params["limit"] = strconv.Itoa(limit)
	}
	data, err := c.get(ctx, buildQuery("/api/candidates", params))
	if err != nil {
		return nil, err
	}
	return decodeList[Candidate](data)
}

// QueryItems is QueryCandidates converted to mention items.
func (c *Client) QueryItems(ctx context.Context, trigger, query string, limit int) ([]mention.Item, error) {
	cands, err := c.QueryCandidates(ctx, trigger, query, limit)
	if err != nil {
		return nil, err
	}
	items := make([]mention.Item, 0, len(cands))
	for _, cand := range cands {
		items = append(items, cand.Item())
	}
	return items, nil
}
