package weather_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kaviyamagudeeswaran/Kaviya-M--Portfolio/internal/cache"
	"github.com/kaviyamagudeeswaran/Kaviya-M--Portfolio/pkg/weather"
)

const (
	testCityName      = "Chennai"
	testAPIKeyValue   = "test-api-key"
	testWeatherAnswer = `{"name":"Chennai","sys":{"country":"IN"},"main":{"temp":31.5,"feels_like":36.2,"humidity":74},"weather":[{"description":"scattered clouds","icon":"03d"}],"wind":{"speed":4.6}}`
)

func buildWeatherServer(testingT *testing.T, requestCount *atomic.Int64) *httptest.Server {
	testingT.Helper()
	return httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		requestCount.Add(1)
		if request.URL.Query().Get("appid") != testAPIKeyValue {
			writer.WriteHeader(http.StatusUnauthorized)
			return
		}
		if request.URL.Query().Get("q") != testCityName {
			writer.WriteHeader(http.StatusNotFound)
			return
		}
		writer.Header().Set("Content-Type", "application/json")
		_, _ = writer.Write([]byte(testWeatherAnswer))
	}))
}

func TestCurrentByCityShapesUpstreamResponse(t *testing.T) {
	var requestCount atomic.Int64
	server := buildWeatherServer(t, &requestCount)
	defer server.Close()

	client := weather.NewHTTPClient(server.Client(), zap.NewNop(), testAPIKeyValue, nil).WithBaseURL(server.URL)

	report, reportErr := client.CurrentByCity(context.Background(), " "+testCityName+" ")
	require.NoError(t, reportErr)
	require.Equal(t, testCityName, report.City)
	require.Equal(t, "IN", report.Country)
	require.InDelta(t, 31.5, report.Temperature, 0.001)
	require.InDelta(t, 36.2, report.FeelsLike, 0.001)
	require.Equal(t, 74, report.Humidity)
	require.InDelta(t, 4.6, report.WindSpeed, 0.001)
	require.Equal(t, "scattered clouds", report.Description)
	require.Equal(t, "03d", report.Icon)
}

func TestCurrentByCityServesRepeatLookupsFromCache(t *testing.T) {
	var requestCount atomic.Int64
	server := buildWeatherServer(t, &requestCount)
	defer server.Close()

	client := weather.NewHTTPClient(server.Client(), zap.NewNop(), testAPIKeyValue, cache.NewMemoryCache()).WithBaseURL(server.URL)

	_, firstErr := client.CurrentByCity(context.Background(), testCityName)
	require.NoError(t, firstErr)
	_, secondErr := client.CurrentByCity(context.Background(), testCityName)
	require.NoError(t, secondErr)

	require.Equal(t, int64(1), requestCount.Load())
}

func TestCurrentByCityReportsUnknownCity(t *testing.T) {
	var requestCount atomic.Int64
	server := buildWeatherServer(t, &requestCount)
	defer server.Close()

	client := weather.NewHTTPClient(server.Client(), zap.NewNop(), testAPIKeyValue, nil).WithBaseURL(server.URL)

	_, reportErr := client.CurrentByCity(context.Background(), "Atlantis")
	require.ErrorIs(t, reportErr, weather.ErrCityNotFound)
}

func TestCurrentByCityValidatesInputs(t *testing.T) {
	clientWithoutKey := weather.NewHTTPClient(nil, zap.NewNop(), "", nil)
	_, reportErr := clientWithoutKey.CurrentByCity(context.Background(), testCityName)
	require.ErrorIs(t, reportErr, weather.ErrMissingAPIKey)

	clientWithKey := weather.NewHTTPClient(nil, zap.NewNop(), testAPIKeyValue, nil)
	_, reportErr = clientWithKey.CurrentByCity(context.Background(), "  ")
	require.ErrorIs(t, reportErr, weather.ErrMissingCity)
}
