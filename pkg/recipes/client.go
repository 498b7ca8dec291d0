// Package recipes searches Spoonacular for the portfolio's recipe demo page.
package recipes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kaviyamagudeeswaran/Kaviya-M--Portfolio/internal/cache"
)

const (
	defaultBaseURL       = "https://api.spoonacular.com"
	complexSearchPath    = "/recipes/complexSearch"
	defaultCacheTTL      = 30 * time.Minute
	defaultClientTimeout = 10 * time.Second

	defaultSearchLimit = 10
	maxSearchLimit     = 50

	cacheKeyPrefix = "recipes:search:"

	logEventCacheReadFail = "recipes_cache_read_failed"
	logEventCacheSaveFail = "recipes_cache_write_failed"
)

var (
	// ErrMissingQuery indicates the caller passed an empty search query.
	ErrMissingQuery = errors.New("recipes: missing query")
	// ErrMissingAPIKey indicates the client was built without an API key.
	ErrMissingAPIKey = errors.New("recipes: missing api key")
	// ErrUpstreamFailure indicates the upstream answered with an unexpected status.
	ErrUpstreamFailure = errors.New("recipes: upstream failure")
)

// Recipe is one shaped search hit.
type Recipe struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	ImageURL string `json:"image"`
}

// SearchResult bundles the shaped hits with the upstream total.
type SearchResult struct {
	Recipes      []Recipe `json:"recipes"`
	TotalResults int      `json:"total_results"`
}

// Client searches recipes by free-text query.
type Client interface {
	Search(ctx context.Context, query string, limit int) (SearchResult, error)
}

// HTTPClient searches against the Spoonacular API with caching.
type HTTPClient struct {
	httpClient *http.Client
	logger     *zap.Logger
	baseURL    string
	apiKey     string
	cache      cache.Cache
	cacheTTL   time.Duration
}

type complexSearchResponse struct {
	Results []struct {
		ID    int64  `json:"id"`
		Title string `json:"title"`
		Image string `json:"image"`
	} `json:"results"`
	TotalResults int `json:"totalResults"`
}

// NewHTTPClient builds a Spoonacular client. A nil httpClient gets a default
// with a conservative timeout; a nil responseCache disables caching.
func NewHTTPClient(httpClient *http.Client, logger *zap.Logger, apiKey string, responseCache cache.Cache) *HTTPClient {
	client := &HTTPClient{
		logger:   logger,
		baseURL:  defaultBaseURL,
		apiKey:   strings.TrimSpace(apiKey),
		cache:    responseCache,
		cacheTTL: defaultCacheTTL,
	}
	if httpClient != nil {
		client.httpClient = httpClient
	} else {
		client.httpClient = &http.Client{Timeout: defaultClientTimeout}
	}
	return client
}

// WithBaseURL overrides the Spoonacular base URL.
func (client *HTTPClient) WithBaseURL(baseURL string) *HTTPClient {
	client.baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	return client
}

// Search returns up to limit shaped recipes matching query.
func (client *HTTPClient) Search(ctx context.Context, query string, limit int) (SearchResult, error) {
	normalizedQuery := strings.TrimSpace(query)
	if normalizedQuery == "" {
		return SearchResult{}, ErrMissingQuery
	}
	if client.apiKey == "" {
		return SearchResult{}, ErrMissingAPIKey
	}
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}

	cacheKey := cacheKeyPrefix + strings.ToLower(normalizedQuery) + ":" + strconv.Itoa(limit)
	if cachedResult, found := client.loadCached(ctx, cacheKey); found {
		return cachedResult, nil
	}

	queryParameters := url.Values{}
	queryParameters.Set("query", normalizedQuery)
	queryParameters.Set("number", strconv.Itoa(limit))
	queryParameters.Set("apiKey", client.apiKey)
	requestURL := client.baseURL + complexSearchPath + "?" + queryParameters.Encode()

	request, requestErr := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if requestErr != nil {
		return SearchResult{}, fmt.Errorf("%w: %v", ErrUpstreamFailure, requestErr)
	}

	response, responseErr := client.httpClient.Do(request)
	if responseErr != nil {
		return SearchResult{}, fmt.Errorf("%w: %v", ErrUpstreamFailure, responseErr)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, response.Body)
		_ = response.Body.Close()
	}()

	if response.StatusCode != http.StatusOK {
		return SearchResult{}, fmt.Errorf("%w: status %d", ErrUpstreamFailure, response.StatusCode)
	}

	var decoded complexSearchResponse
	if decodeErr := json.NewDecoder(response.Body).Decode(&decoded); decodeErr != nil {
		return SearchResult{}, fmt.Errorf("%w: decode: %v", ErrUpstreamFailure, decodeErr)
	}

	result := SearchResult{
		Recipes:      make([]Recipe, 0, len(decoded.Results)),
		TotalResults: decoded.TotalResults,
	}
	for _, hit := range decoded.Results {
		result.Recipes = append(result.Recipes, Recipe{
			ID:       hit.ID,
			Title:    hit.Title,
			ImageURL: hit.Image,
		})
	}

	client.storeCached(ctx, cacheKey, result)
	return result, nil
}

func (client *HTTPClient) loadCached(ctx context.Context, cacheKey string) (SearchResult, bool) {
	if client.cache == nil {
		return SearchResult{}, false
	}
	cachedValue, found, getErr := client.cache.Get(ctx, cacheKey)
	if getErr != nil {
		if client.logger != nil {
			client.logger.Debug(logEventCacheReadFail, zap.Error(getErr))
		}
		return SearchResult{}, false
	}
	if !found {
		return SearchResult{}, false
	}
	var result SearchResult
	if decodeErr := json.Unmarshal([]byte(cachedValue), &result); decodeErr != nil {
		return SearchResult{}, false
	}
	return result, true
}

func (client *HTTPClient) storeCached(ctx context.Context, cacheKey string, result SearchResult) {
	if client.cache == nil {
		return
	}
	encoded, encodeErr := json.Marshal(result)
	if encodeErr != nil {
		return
	}
	if setErr := client.cache.Set(ctx, cacheKey, string(encoded), client.cacheTTL); setErr != nil && client.logger != nil {
		client.logger.Debug(logEventCacheSaveFail, zap.Error(setErr))
	}
}
