package venue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/mmynk/kanji/internal/apperr"
)

// DefaultHotpepperURL is the gourmet search endpoint of the Hotpepper API.
const DefaultHotpepperURL = "https://webservice.recruit.co.jp/hotpepper/gourmet/v1/"

// Hotpepper queries the Recruit Hotpepper gourmet search API.
type Hotpepper struct {
	apiKey     string
	baseURL    string
	maxResults int
	client     *http.Client
	logger     *slog.Logger
}

// HotpepperOption configures a Hotpepper provider.
type HotpepperOption func(*Hotpepper)

// WithBaseURL points the provider at a different endpoint.
func WithBaseURL(u string) HotpepperOption {
	return func(h *Hotpepper) { h.baseURL = u }
}

// WithHTTPClient replaces http.DefaultClient.
func WithHTTPClient(c *http.Client) HotpepperOption {
	return func(h *Hotpepper) { h.client = c }
}

func NewHotpepper(apiKey string, maxResults int, logger *slog.Logger, opts ...HotpepperOption) *Hotpepper {
	if logger == nil {
		logger = slog.Default()
	}
	if maxResults <= 0 {
		maxResults = 5
	}
	h := &Hotpepper{
		apiKey:     apiKey,
		baseURL:    DefaultHotpepperURL,
		maxResults: maxResults,
		client:     http.DefaultClient,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Hotpepper) Name() string { return "hotpepper" }

// budgetCode maps a per-person budget to a Hotpepper budget code.
func budgetCode(budget int64) string {
	switch {
	case budget < 3000:
		return "B009"
	case budget < 5000:
		return "B010"
	default:
		return "B011"
	}
}

type hotpepperResponse struct {
	Results struct {
		Error []struct {
			Message string `json:"message"`
		} `json:"error"`
		Shop []struct {
			Name    string `json:"name"`
			Address string `json:"address"`
			Budget  struct {
				Average string `json:"average"`
			} `json:"budget"`
			URLs struct {
				PC string `json:"pc"`
			} `json:"urls"`
		} `json:"shop"`
	} `json:"results"`
}

func (h *Hotpepper) buildURL(q Query) string {
	params := url.Values{}
	params.Set("key", h.apiKey)
	params.Set("keyword", q.Keyword())
	params.Set("format", "json")
	params.Set("count", strconv.Itoa(h.maxResults))
	if q.BudgetPerPerson != nil {
		params.Set("budget", budgetCode(*q.BudgetPerPerson))
	}
	if q.PartySize > 0 {
		params.Set("party_capacity", strconv.Itoa(q.PartySize))
	}

	sep := "?"
	if strings.Contains(h.baseURL, "?") {
		sep = "&"
	}
	return h.baseURL + sep + params.Encode()
}

// Recommend returns up to maxResults shops matching the query.
func (h *Hotpepper) Recommend(ctx context.Context, q Query) ([]Candidate, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.buildURL(q), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build hotpepper request: %w", err)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, apperr.DependencyUnavailable(err, "hotpepper unreachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperr.DependencyUnavailable(fmt.Errorf("status %d", resp.StatusCode), "hotpepper request failed")
	}

	var body hotpepperResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, apperr.DependencyUnavailable(err, "hotpepper returned malformed response")
	}
	if len(body.Results.Error) > 0 {
		return nil, apperr.DependencyUnavailable(fmt.Errorf("%s", body.Results.Error[0].Message), "hotpepper rejected request")
	}

	candidates := make([]Candidate, 0, len(body.Results.Shop))
	for _, shop := range body.Results.Shop {
		if shop.Name == "" {
			continue
		}
		candidates = append(candidates, Candidate{
			Name:       shop.Name,
			Address:    shop.Address,
			PriceRange: shop.Budget.Average,
			URL:        shop.URLs.PC,
		})
		if len(candidates) == h.maxResults {
			break
		}
	}

	h.logger.Debug("Hotpepper search finished", "keyword", q.Keyword(), "results", len(candidates))
	return candidates, nil
}
