// Package github looks up public GitHub user profiles for the portfolio's
// profile section.
package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kaviyamagudeeswaran/Kaviya-M--Portfolio/internal/cache"
)

const (
	defaultBaseURL      = "https://api.github.com"
	defaultCacheTTL     = 10 * time.Minute
	defaultClientTimout = 10 * time.Second

	cacheKeyPrefix = "github:profile:"

	headerAccept          = "Accept"
	acceptGitHubJSON      = "application/vnd.github+json"
	logEventCacheReadFail = "github_cache_read_failed"
	logEventCacheSaveFail = "github_cache_write_failed"
)

var (
	// ErrMissingUsername indicates the caller passed an empty username.
	ErrMissingUsername = errors.New("github: missing username")
	// ErrUserNotFound indicates GitHub knows no user by the given name.
	ErrUserNotFound = errors.New("github: user not found")
	// ErrUpstreamFailure indicates GitHub answered with an unexpected status.
	ErrUpstreamFailure = errors.New("github: upstream failure")
)

// Profile is the shaped subset of a GitHub user profile returned to clients.
type Profile struct {
	Login       string `json:"login"`
	Name        string `json:"name"`
	AvatarURL   string `json:"avatar_url"`
	Bio         string `json:"bio"`
	Location    string `json:"location"`
	PublicRepos int    `json:"public_repos"`
	Followers   int    `json:"followers"`
	Following   int    `json:"following"`
	ProfileURL  string `json:"html_url"`
}

// Client resolves GitHub profiles by username.
type Client interface {
	Profile(ctx context.Context, username string) (Profile, error)
}

// HTTPClient resolves profiles against the GitHub REST API with caching.
type HTTPClient struct {
	httpClient *http.Client
	logger     *zap.Logger
	baseURL    string
	cache      cache.Cache
	cacheTTL   time.Duration
}

// NewHTTPClient builds a GitHub client. A nil httpClient gets a default with a
// conservative timeout; a nil responseCache disables caching.
func NewHTTPClient(httpClient *http.Client, logger *zap.Logger, responseCache cache.Cache) *HTTPClient {
	client := &HTTPClient{
		logger:   logger,
		baseURL:  defaultBaseURL,
		cache:    responseCache,
		cacheTTL: defaultCacheTTL,
	}
	if httpClient != nil {
		client.httpClient = httpClient
	} else {
		client.httpClient = &http.Client{Timeout: defaultClientTimout}
	}
	return client
}

// WithBaseURL overrides the GitHub API base URL.
func (client *HTTPClient) WithBaseURL(baseURL string) *HTTPClient {
	client.baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	return client
}

// Profile returns the shaped profile for username, serving repeat lookups from
// the cache.
func (client *HTTPClient) Profile(ctx context.Context, username string) (Profile, error) {
	normalizedUsername := strings.ToLower(strings.TrimSpace(username))
	if normalizedUsername == "" {
		return Profile{}, ErrMissingUsername
	}

	cacheKey := cacheKeyPrefix + normalizedUsername
	if cachedProfile, found := client.loadCached(ctx, cacheKey); found {
		return cachedProfile, nil
	}

	requestURL := fmt.Sprintf("%s/users/%s", client.baseURL, url.PathEscape(normalizedUsername))
	request, requestErr := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if requestErr != nil {
		return Profile{}, fmt.Errorf("%w: %v", ErrUpstreamFailure, requestErr)
	}
	request.Header.Set(headerAccept, acceptGitHubJSON)

	response, responseErr := client.httpClient.Do(request)
	if responseErr != nil {
		return Profile{}, fmt.Errorf("%w: %v", ErrUpstreamFailure, responseErr)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, response.Body)
		_ = response.Body.Close()
	}()

	if response.StatusCode == http.StatusNotFound {
		return Profile{}, fmt.Errorf("%w: %s", ErrUserNotFound, normalizedUsername)
	}
	if response.StatusCode != http.StatusOK {
		return Profile{}, fmt.Errorf("%w: status %d", ErrUpstreamFailure, response.StatusCode)
	}

	var profile Profile
	if decodeErr := json.NewDecoder(response.Body).Decode(&profile); decodeErr != nil {
		return Profile{}, fmt.Errorf("%w: decode: %v", ErrUpstreamFailure, decodeErr)
	}

	client.storeCached(ctx, cacheKey, profile)
	return profile, nil
}

func (client *HTTPClient) loadCached(ctx context.Context, cacheKey string) (Profile, bool) {
	if client.cache == nil {
		return Profile{}, false
	}
	cachedValue, found, getErr := client.cache.Get(ctx, cacheKey)
	if getErr != nil {
		if client.logger != nil {
			client.logger.Debug(logEventCacheReadFail, zap.Error(getErr))
		}
		return Profile{}, false
	}
	if !found {
		return Profile{}, false
	}
	var profile Profile
	if decodeErr := json.Unmarshal([]byte(cachedValue), &profile); decodeErr != nil {
		return Profile{}, false
	}
	return profile, true
}

func (client *HTTPClient) storeCached(ctx context.Context, cacheKey string, profile Profile) {
	if client.cache == nil {
		return
	}
	encoded, encodeErr := json.Marshal(profile)
	if encodeErr != nil {
		return
	}
	if setErr := client.cache.Set(ctx, cacheKey, string(encoded), client.cacheTTL); setErr != nil && client.logger != nil {
		client.logger.Debug(logEventCacheSaveFail, zap.Error(setErr))
	}
}
