// Package weather fetches current conditions from OpenWeatherMap for the
// portfolio's weather widget.
package weather

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
	defaultBaseURL       = "https://api.openweathermap.org"
	currentWeatherPath   = "/data/2.5/weather"
	defaultCacheTTL      = 10 * time.Minute
	defaultClientTimeout = 10 * time.Second
	metricUnits          = "metric"

	cacheKeyPrefix = "weather:city:"

	logEventCacheReadFail = "weather_cache_read_failed"
	logEventCacheSaveFail = "weather_cache_write_failed"
)

var (
	// ErrMissingCity indicates the caller passed an empty city name.
	ErrMissingCity = errors.New("weather: missing city")
	// ErrMissingAPIKey indicates the client was built without an API key.
	ErrMissingAPIKey = errors.New("weather: missing api key")
	// ErrCityNotFound indicates the upstream knows no city by the given name.
	ErrCityNotFound = errors.New("weather: city not found")
	// ErrUpstreamFailure indicates the upstream answered with an unexpected status.
	ErrUpstreamFailure = errors.New("weather: upstream failure")
)

// Report is the shaped current-weather answer returned to clients.
type Report struct {
	City        string  `json:"city"`
	Country     string  `json:"country"`
	Temperature float64 `json:"temperature"`
	FeelsLike   float64 `json:"feels_like"`
	Description string  `json:"description"`
	Humidity    int     `json:"humidity"`
	WindSpeed   float64 `json:"wind_speed"`
	Icon        string  `json:"icon"`
}

// Client resolves current weather by city name.
type Client interface {
	CurrentByCity(ctx context.Context, city string) (Report, error)
}

// HTTPClient resolves weather against the OpenWeatherMap API with caching.
type HTTPClient struct {
	httpClient *http.Client
	logger     *zap.Logger
	baseURL    string
	apiKey     string
	cache      cache.Cache
	cacheTTL   time.Duration
}

type currentWeatherResponse struct {
	Name string `json:"name"`
	Sys  struct {
		Country string `json:"country"`
	} `json:"sys"`
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Humidity  int     `json:"humidity"`
	} `json:"main"`
	Weather []struct {
		Description string `json:"description"`
		Icon        string `json:"icon"`
	} `json:"weather"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
}

// NewHTTPClient builds an OpenWeatherMap client. A nil httpClient gets a
// default with a conservative timeout; a nil responseCache disables caching.
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

// WithBaseURL overrides the OpenWeatherMap base URL.
func (client *HTTPClient) WithBaseURL(baseURL string) *HTTPClient {
	client.baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	return client
}

// CurrentByCity returns the shaped current weather for the given city.
func (client *HTTPClient) CurrentByCity(ctx context.Context, city string) (Report, error) {
	normalizedCity := strings.TrimSpace(city)
	if normalizedCity == "" {
		return Report{}, ErrMissingCity
	}
	if client.apiKey == "" {
		return Report{}, ErrMissingAPIKey
	}

	cacheKey := cacheKeyPrefix + strings.ToLower(normalizedCity)
	if cachedReport, found := client.loadCached(ctx, cacheKey); found {
		return cachedReport, nil
	}

	queryParameters := url.Values{}
	queryParameters.Set("q", normalizedCity)
	queryParameters.Set("appid", client.apiKey)
	queryParameters.Set("units", metricUnits)
	requestURL := client.baseURL + currentWeatherPath + "?" + queryParameters.Encode()

	request, requestErr := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if requestErr != nil {
		return Report{}, fmt.Errorf("%w: %v", ErrUpstreamFailure, requestErr)
	}

	response, responseErr := client.httpClient.Do(request)
	if responseErr != nil {
		return Report{}, fmt.Errorf("%w: %v", ErrUpstreamFailure, responseErr)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, response.Body)
		_ = response.Body.Close()
	}()

	if response.StatusCode == http.StatusNotFound {
		return Report{}, fmt.Errorf("%w: %s", ErrCityNotFound, normalizedCity)
	}
	if response.StatusCode != http.StatusOK {
		return Report{}, fmt.Errorf("%w: status %d", ErrUpstreamFailure, response.StatusCode)
	}

	var decoded currentWeatherResponse
	if decodeErr := json.NewDecoder(response.Body).Decode(&decoded); decodeErr != nil {
		return Report{}, fmt.Errorf("%w: decode: %v", ErrUpstreamFailure, decodeErr)
	}

	report := Report{
		City:        decoded.Name,
		Country:     decoded.Sys.Country,
		Temperature: decoded.Main.Temp,
		FeelsLike:   decoded.Main.FeelsLike,
		Humidity:    decoded.Main.Humidity,
		WindSpeed:   decoded.Wind.Speed,
	}
	if len(decoded.Weather) > 0 {
		report.Description = decoded.Weather[0].Description
		report.Icon = decoded.Weather[0].Icon
	}

	client.storeCached(ctx, cacheKey, report)
	return report, nil
}

func (client *HTTPClient) loadCached(ctx context.Context, cacheKey string) (Report, bool) {
	if client.cache == nil {
		return Report{}, false
	}
	cachedValue, found, getErr := client.cache.Get(ctx, cacheKey)
	if getErr != nil {
		if client.logger != nil {
			client.logger.Debug(logEventCacheReadFail, zap.Error(getErr))
		}
		return Report{}, false
	}
	if !found {
		return Report{}, false
	}
	var report Report
	if decodeErr := json.Unmarshal([]byte(cachedValue), &report); decodeErr != nil {
		return Report{}, false
	}
	return report, true
}

func (client *HTTPClient) storeCached(ctx context.Context, cacheKey string, report Report) {
	if client.cache == nil {
		return
	}
	encoded, encodeErr := json.Marshal(report)
	if encodeErr != nil {
		return
	}
	if setErr := client.cache.Set(ctx, cacheKey, string(encoded), client.cacheTTL); setErr != nil && client.logger != nil {
		client.logger.Debug(logEventCacheSaveFail, zap.Error(setErr))
	}
}
