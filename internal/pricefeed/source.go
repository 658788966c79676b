package pricefeed

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"time"
)

// Source produces one validated spot price per call. Implementations do not
// retry; the Broadcaster's poll cadence is the retry schedule.
type Source interface {
	Fetch(ctx context.Context) (float64, error)
}

// GoldAPIClient reads the XAU spot price from gold-api.com (or any endpoint
// answering with the same `{"price": <number>}` shape).
type GoldAPIClient struct {
	url        string
	httpClient *http.Client
}

func NewGoldAPIClient(url string) *GoldAPIClient {
	return &GoldAPIClient{
		url:        url,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *GoldAPIClient) Fetch(ctx context.Context) (float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return 0, fmt.Errorf("gold price request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("gold price fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return 0, fmt.Errorf("gold price endpoint returned status %d", resp.StatusCode)
	}

	// json.Number also accepts numeric values sent as strings.
	var data struct {
		Price json.Number `json:"price"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return 0, fmt.Errorf("gold price decode: %w", err)
	}

	price, err := data.Price.Float64()
	if err != nil {
		return 0, fmt.Errorf("gold price not numeric (%q): %w", data.Price.String(), err)
	}
	if math.IsNaN(price) || price <= 0 {
		return 0, fmt.Errorf("invalid gold price value: %v", price)
	}

	return price, nil
}
