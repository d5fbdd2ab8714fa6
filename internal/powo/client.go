package powo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"time"

	"weedlist/internal"
	"weedlist/internal/config"
)

// Cache stores raw authority responses keyed by genus+species so repeat
// runs do not re-query the remote service. A nil Cache disables caching.
type Cache interface {
	Get(genus, species string) ([]byte, bool, error)
	Put(genus, species string, body []byte) error
}

type Client struct {
	cfg        config.Config
	httpClient *http.Client
	limiter    *RateLimiter
	cache      Cache
}

type searchPayload struct {
	Results      []map[string]any `json:"results"`
	Cursor       *string          `json:"cursor"`
	TotalResults *int             `json:"totalResults"`
}

func NewClient(cfg config.Config, cache Cache) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: time.Duration(cfg.POWOTimeoutMs) * time.Millisecond},
		limiter:    NewRateLimiter(cfg.POWORateLimitRPS),
		cache:      cache,
	}
}

// Search queries the authority for a genus+species pair and returns every
// result record across all result pages.
func (c *Client) Search(ctx context.Context, genus, species string) ([]internal.Record, error) {
	if c.cache != nil {
		if blob, ok, err := c.cache.Get(genus, species); err == nil && ok {
			var raw []map[string]any
			if err := json.Unmarshal(blob, &raw); err == nil {
				return toRecords(raw), nil
			}
		}
	}

	raw, err := c.searchScroll(ctx, genus, species)
	if err != nil {
		return nil, err
	}

	if c.cache != nil {
		if blob, err := json.Marshal(raw); err == nil {
			_ = c.cache.Put(genus, species, blob)
		}
	}

	return toRecords(raw), nil
}

func (c *Client) searchScroll(ctx context.Context, genus, species string) ([]map[string]any, error) {
	all := make([]map[string]any, 0)
	seen := map[string]struct{}{}
	var cursor string

	for {
		query := map[string]string{
			"q": fmt.Sprintf("genus:%s,species:%s", genus, species),
		}
		if cursor != "" {
			query["cursor"] = cursor
		}

		body, err := c.fetchJSON(ctx, "search", query)
		if err != nil {
			return nil, err
		}

		var payload searchPayload
		if err := json.Unmarshal(body, &payload); err != nil {
			return nil, err
		}

		all = append(all, payload.Results...)

		if payload.Cursor == nil || *payload.Cursor == "" || len(payload.Results) == 0 {
			break
		}
		if _, ok := seen[*payload.Cursor]; ok {
			break
		}
		seen[*payload.Cursor] = struct{}{}
		cursor = *payload.Cursor
	}

	return all, nil
}

func (c *Client) fetchJSON(ctx context.Context, endpoint string, params map[string]string) ([]byte, error) {
	baseURL := strings.TrimRight(c.cfg.POWOBaseURL, "/") + "/"
	u, err := url.Parse(baseURL + endpoint)
	if err != nil {
		return nil, err
	}

	q := u.Query()
	for k, v := range params {
		if strings.TrimSpace(v) != "" {
			q.Set(k, v)
		}
	}
	u.RawQuery = q.Encode()

	attempts := c.cfg.POWORetryAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", c.cfg.HTTPUserAgent)
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		body, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if readErr != nil {
			lastErr = readErr
			continue
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			if isRetryableStatus(resp.StatusCode) && attempt < attempts {
				backoff := time.Duration(250*(1<<(attempt-1))+rand.Intn(100)) * time.Millisecond
				time.Sleep(backoff)
				lastErr = fmt.Errorf("powo status %d", resp.StatusCode)
				continue
			}
			return nil, fmt.Errorf("powo api error: status=%d body=%s", resp.StatusCode, string(body))
		}

		return body, nil
	}

	if lastErr == nil {
		lastErr = errors.New("powo request failed")
	}
	return nil, lastErr
}

func isRetryableStatus(status int) bool {
	switch status {
	case 429, 500, 502, 503, 504:
		return true
	default:
		return false
	}
}

func toRecords(raw []map[string]any) []internal.Record {
	out := make([]internal.Record, 0, len(raw))
	for _, m := range raw {
		out = append(out, toRecord(m))
	}
	return out
}

func toRecord(raw map[string]any) internal.Record {
	rec := internal.Record{
		Rank:     toString(raw["rank"]),
		Accepted: toBoolPtr(raw["accepted"]),
		Name:     toString(raw["name"]),
	}
	if syn, ok := raw["synonymOf"].(map[string]any); ok {
		nested := toRecord(syn)
		rec.SynonymOf = &nested
	}
	return rec
}

func toString(v any) string {
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(s)
}

func toBoolPtr(v any) *bool {
	b, ok := v.(bool)
	if !ok {
		return nil
	}
	return &b
}
