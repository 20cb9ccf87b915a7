package api

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func stubClient(baseURL string, body string, gotURL *string) *Client {
	client := NewClient(baseURL, "mly_testkey")
	client.httpClient.Transport = roundTripperFunc(func(r *http.Request) (*http.Response, error) {
		*gotURL = r.URL.String()
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader(body)),
			Header:     make(http.Header),
		}, nil
	})
	return client
}

func TestQueryCandidatesTrimsTrailingSlash(t *testing.T) {
	var gotURL string
	client := stubClient("http://directory.local/", `{"data":[{"id":"u1","label":"Alice"}]}`, &gotURL)
	assert.Equal(t, "http://directory.local", client.baseURL)

	items, err := client.QueryItems(context.Background(), "@", "al", 3)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Alice", items[0].Label)
	assert.Equal(t, "http://directory.local/api/candidates?limit=3&q=al&trigger=%40", gotURL)
}

func TestHealthAcceptsEnvelope(t *testing.T) {
	var gotURL string
	client := stubClient("http://directory.local", `{"data":{"status":"degraded"}}`, &gotURL)

	status, err := client.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "degraded", status)
	assert.Equal(t, "http://directory.local/api/health", gotURL)
}

func TestHealthMissingStatus(t *testing.T) {
	var gotURL string
	client := stubClient("http://directory.local", `{"data":{}}`, &gotURL)

	_, err := client.Health(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing status")
}
