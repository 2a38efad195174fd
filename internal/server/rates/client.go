// Package rates fetches exchange rates and converts minor-unit amounts
// between currencies.
package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/fintrack/internal/common"
	"github.com/dmitrijs2005/fintrack/internal/logging"
	"github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"
)

// Provider yields the multiplier taking one unit of from to units of to.
type Provider interface {
	Rate(ctx context.Context, from, to string) (decimal.Decimal, error)
}

type latestResponse struct {
	Result    string                     `json:"result"`
	ErrorType string                     `json:"error-type"`
	Rates     map[string]decimal.Decimal `json:"rates"`
}

// Client talks to an open.er-api.com compatible endpoint. Rate tables are
// cached per base currency for ttl.
type Client struct {
	baseURL string
	http    *http.Client
	cache   *cache.Cache
	log     logging.Logger
}

func NewClient(baseURL string, ttl time.Duration, httpClient *http.Client, log logging.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		cache:   cache.New(ttl, 2*ttl),
		log:     log.With("module", "rates"),
	}
}

func (c *Client) Rate(ctx context.Context, from, to string) (decimal.Decimal, error) {
	from, to = strings.ToUpper(from), strings.ToUpper(to)
	if from == to {
		return decimal.NewFromInt(1), nil
	}

	table, err := c.table(ctx, from)
	if err != nil {
		return decimal.Zero, err
	}
	rate, ok := table[to]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %s->%s", common.ErrRateUnavailable, from, to)
	}
	return rate, nil
}

func (c *Client) table(ctx context.Context, from string) (map[string]decimal.Decimal, error) {
	if v, ok := c.cache.Get(from); ok {
		return v.(map[string]decimal.Decimal), nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v6/latest/"+from, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Error(ctx, "rate request failed", "from", from, "error", err)
		return nil, fmt.Errorf("%w: %v", common.ErrRateUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", common.ErrRateUnavailable, resp.StatusCode)
	}

	var body latestResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", common.ErrRateUnavailable, err)
	}
	if body.Result != "" && body.Result != "success" {
		return nil, fmt.Errorf("%w: %s", common.ErrRateUnavailable, body.ErrorType)
	}

	c.cache.SetDefault(from, body.Rates)
	c.log.Debug(ctx, "rates refreshed", "from", from, "count", len(body.Rates))
	return body.Rates, nil
}
