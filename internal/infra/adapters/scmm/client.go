// File: internal/infra/adapters/scmm/client.go
package scmm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"telegram-skin-radar/internal/domain/model"
	"telegram-skin-radar/internal/domain/ports/adapter"
	"telegram-skin-radar/internal/infra/metrics"
)

var _ adapter.MarketIndex = (*Client)(nil)

// ErrProfileNotFound marks a 404 from the profile endpoint, which usually
// means a brand-new workshop author.
var ErrProfileNotFound = errors.New("scmm: profile not found")

// Client implements adapter.MarketIndex against the SCMM REST API
// (https://rust.scmm.app/api).
type Client struct {
	baseURL string
	client  *http.Client
}

func NewClient(baseURL string, timeout time.Duration) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("scmm base url empty")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("invalid scmm base url: %w", err)
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}, nil
}

func (c *Client) Name() string { return "scmm" }

// itemPayload mirrors the fields of the SCMM item API we consume.
type itemPayload struct {
	ID                         int64  `json:"id"`
	Name                       string `json:"name"`
	CreatorID                  int64  `json:"creatorId"`
	CreatorName                string `json:"creatorName"`
	ItemType                   string `json:"itemType"`
	ItemCollection             string `json:"itemCollection"`
	IsAccepted                 bool   `json:"isAccepted"`
	TimeAccepted               string `json:"timeAccepted"`
	TimeCreated                string `json:"timeCreated"`
	MarketID                   string `json:"marketId"`
	MarketSellOrderLowestPrice int    `json:"marketSellOrderLowestPrice"`
	MarketBuyOrderCount        int    `json:"marketBuyOrderCount"`
	MarketSellOrderCount       int    `json:"marketSellOrderCount"`
	WorkshopFileID             int64  `json:"workshopFileId"`
	WorkshopFileURL            string `json:"workshopFileUrl"`
}

type itemListPayload struct {
	Items []itemPayload `json:"items"`
	Total int           `json:"total"`
}

// LatestItems fetches up to count items sorted by creation time, newest first.
func (c *Client) LatestItems(ctx context.Context, count int) ([]*model.Item, error) {
	if count <= 0 {
		count = 50
	}
	q := url.Values{}
	q.Set("sortBy", "timeCreated")
	q.Set("sortByOrder", "desc")
	q.Set("count", strconv.Itoa(count))

	var out itemListPayload
	if err := c.getJSON(ctx, "item", "/item?"+q.Encode(), &out); err != nil {
		return nil, err
	}

	items := make([]*model.Item, 0, len(out.Items))
	for i := range out.Items {
		items = append(items, out.Items[i].toModel())
	}
	return items, nil
}

// CreatorItemCount returns how many items the creator has on the index.
func (c *Client) CreatorItemCount(ctx context.Context, creatorID string) (int, error) {
	q := url.Values{}
	q.Set("creatorId", creatorID)
	q.Set("count", "100")

	var out itemListPayload
	if err := c.getJSON(ctx, "item", "/item?"+q.Encode(), &out); err != nil {
		return 0, err
	}
	if out.Total > 0 {
		return out.Total, nil
	}
	return len(out.Items), nil
}

// ProfileExists probes the creator's profile summary. A 404 maps to
// (false, nil); other failures are reported as errors.
func (c *Client) ProfileExists(ctx context.Context, creatorID string) (bool, error) {
	err := c.getJSON(ctx, "profile", "/profile/"+url.PathEscape(creatorID)+"/summary", nil)
	if err != nil {
		if errors.Is(err, ErrProfileNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.client.Do(req)
	latency := time.Since(start).Milliseconds()
	if err != nil {
		metrics.IncMarketIndexError(endpoint)
		metrics.ObserveMarketIndexCall(endpoint, latency, false)
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound && endpoint == "profile":
		metrics.ObserveMarketIndexCall(endpoint, latency, false)
		return ErrProfileNotFound
	case resp.StatusCode != http.StatusOK:
		metrics.IncMarketIndexError(endpoint)
		metrics.ObserveMarketIndexCall(endpoint, latency, false)
		return fmt.Errorf("scmm %s: unexpected status %d", endpoint, resp.StatusCode)
	}
	metrics.ObserveMarketIndexCall(endpoint, latency, true)

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("scmm %s: decode: %w", endpoint, err)
	}
	return nil
}

func (p *itemPayload) toModel() *model.Item {
	return &model.Item{
		ID:                        p.ID,
		Name:                      p.Name,
		CreatorID:                 p.CreatorID,
		CreatorName:               p.CreatorName,
		ItemType:                  p.ItemType,
		ItemCollection:            p.ItemCollection,
		IsAccepted:                p.IsAccepted,
		TimeAccepted:              parseTime(p.TimeAccepted),
		TimeCreated:               parseTime(p.TimeCreated),
		MarketID:                  p.MarketID,
		SellOrderLowestPriceCents: p.MarketSellOrderLowestPrice,
		BuyOrderCount:             p.MarketBuyOrderCount,
		SellOrderCount:            p.MarketSellOrderCount,
		WorkshopFileID:            p.WorkshopFileID,
		WorkshopFileURL:           p.WorkshopFileURL,
	}
}

// parseTime accepts the index's ISO timestamps with or without a zone
// designator. A zero time means "unknown" and is handled upstream.
func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
