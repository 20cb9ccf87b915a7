package api

import (
	"context"
	"encoding/json"
	"fmt"
)

type healthStatus struct {
	Status string `json:"status"`
}

// Health calls /api/health and returns the server status. Both the bare
// {"status"} form and the {"data":{"status"}} envelope are accepted.
func (c *Client) Health(ctx context.Context) (string, error) {
	data, err := c.get(ctx, "/api/health")
	if err != nil {
		return "", err
	}

	var env apiResponse[*healthStatus]
	if err := json.Unmarshal(data, &env); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if env.Data != nil && env.Data.Status != "" {
		return env.Data.Status, nil
	}

	var bare healthStatus
	if err := json.Unmarshal(data, &bare); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if bare.Status == "" {
		return "", fmt.Errorf("decode response: missing status")
	}
	return bare.Status, nil
}
