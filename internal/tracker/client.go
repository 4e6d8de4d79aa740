package tracker

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/studiomap/crewdeck/internal/metrics"
	"github.com/studiomap/crewdeck/internal/types"
)

// Client talks to the project tracker's REST API. All list endpoints
// return envelopes of the form {"data": [...]}.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewClient creates a new tracker client pointing at the given base URL
// (e.g. "https://api.tracker.local/v2").
func NewClient(baseURL, token string, logger zerolog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		logger: logger.With().Str("component", "tracker").Logger(),
	}
}

// envelope is the standard list response body.
type envelope struct {
	Data []json.RawMessage `json:"data"`
}

// getPage requests a single page of a resource. Each page request is
// independent; the caller decides what to do with a failure.
func (c *Client) getPage(ctx context.Context, resource string, pageSize, offset int) ([]json.RawMessage, error) {
	q := url.Values{}
	q.Set("page[size]", strconv.Itoa(pageSize))
	q.Set("page[offset]", strconv.Itoa(offset))

	u := c.baseURL + "/" + resource + "?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request for %s: %w", resource, err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", u, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s returned status %d", u, resp.StatusCode)
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("decode %s page: %w", resource, err)
	}
	if env.Data == nil {
		return nil, fmt.Errorf("GET %s: payload missing data", u)
	}
	return env.Data, nil
}

// searchAll pages through a resource at increasing offsets until a page
// comes back shorter than pageSize or the accumulated count reaches
// maxTotal. On any page failure it stops and returns what it already
// has: partial results beat no results, and retrying is a transport
// concern, not ours.
func (c *Client) searchAll(ctx context.Context, resource string, pageSize, maxTotal int) []json.RawMessage {
	var all []json.RawMessage

	for offset := 0; len(all) < maxTotal; offset += pageSize {
		page, err := c.getPage(ctx, resource, pageSize, offset)
		if err != nil {
			metrics.Get().RecordTrackerError()
			c.logger.Warn().Err(err).
				Str("resource", resource).
				Int("offset", offset).
				Int("accumulated", len(all)).
				Msg("page fetch failed, returning partial results")
			break
		}

		metrics.Get().RecordTrackerPage()
		all = append(all, page...)
		if len(page) < pageSize {
			break
		}
	}

	if len(all) > maxTotal {
		all = all[:maxTotal]
	}
	return all
}

// decodeEach unmarshals every raw record into out via the decode
// callback, dropping records that do not parse.
func decodeEach[T any](c *Client, resource string, raw []json.RawMessage) []T {
	out := make([]T, 0, len(raw))
	for _, r := range raw {
		var rec T
		if err := json.Unmarshal(r, &rec); err != nil {
			c.logger.Debug().Err(err).Str("resource", resource).Msg("dropping malformed record")
			continue
		}
		out = append(out, rec)
	}
	return out
}

// Engagements fetches engagements via the paginated search endpoint.
func (c *Client) Engagements(ctx context.Context, pageSize, maxTotal int) []types.Engagement {
	raw := c.searchAll(ctx, "engagements", pageSize, maxTotal)
	return decodeEach[types.Engagement](c, "engagements", raw)
}

// WorkItems fetches work items via the paginated search endpoint.
func (c *Client) WorkItems(ctx context.Context, pageSize, maxTotal int) []types.WorkItem {
	raw := c.searchAll(ctx, "work_items", pageSize, maxTotal)
	return decodeEach[types.WorkItem](c, "work_items", raw)
}

// Assignments fetches assignments via the paginated search endpoint.
func (c *Client) Assignments(ctx context.Context, pageSize, maxTotal int) []types.Assignment {
	raw := c.searchAll(ctx, "assignments", pageSize, maxTotal)
	return decodeEach[types.Assignment](c, "assignments", raw)
}

// People fetches the full people directory as one bulk collection.
// Unlike the paginated relations this returns an error: reconciliation
// must never run against a partial directory, or everyone missing from
// the partial read would be deactivated.
func (c *Client) People(ctx context.Context) ([]types.Person, error) {
	u := c.baseURL + "/people"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request for people: %w", err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", u, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s returned status %d", u, resp.StatusCode)
	}

	var env struct {
		Data []types.Person `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("decode people: %w", err)
	}
	return env.Data, nil
}
