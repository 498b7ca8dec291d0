package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kaviyamagudeeswaran/Kaviya-M--Portfolio/pkg/github"
	"github.com/kaviyamagudeeswaran/Kaviya-M--Portfolio/pkg/recipes"
	"github.com/kaviyamagudeeswaran/Kaviya-M--Portfolio/pkg/weather"
)

const (
	queryParameterCity  = "city"
	queryParameterQuery = "query"
	queryParameterLimit = "limit"

	errorValueMissingUsername  = "missing_username"
	errorValueUnknownUser      = "unknown_user"
	errorValueMissingCity      = "missing_city"
	errorValueUnknownCity      = "unknown_city"
	errorValueMissingQuery     = "missing_query"
	errorValueUpstreamFailure  = "upstream_failure"
	errorValueProxyUnavailable = "proxy_unavailable"

	logEventGitHubProxyFailed  = "github_proxy_failed"
	logEventWeatherProxyFailed = "weather_proxy_failed"
	logEventRecipesProxyFailed = "recipes_proxy_failed"
)

// ProxyHandlers serves the routes that front the third-party public APIs.
type ProxyHandlers struct {
	githubClient  github.Client
	weatherClient weather.Client
	recipesClient recipes.Client
	logger        *zap.Logger
}

// NewProxyHandlers creates handlers over the three upstream clients.
func NewProxyHandlers(githubClient github.Client, weatherClient weather.Client, recipesClient recipes.Client, logger *zap.Logger) *ProxyHandlers {
	return &ProxyHandlers{
		githubClient:  githubClient,
		weatherClient: weatherClient,
		recipesClient: recipesClient,
		logger:        logger,
	}
}

// GitHubProfile proxies a GitHub user profile lookup.
func (handlers *ProxyHandlers) GitHubProfile(context *gin.Context) {
	if handlers.githubClient == nil {
		context.JSON(http.StatusServiceUnavailable, gin.H{jsonKeyError: errorValueProxyUnavailable})
		return
	}

	username := strings.TrimSpace(context.Param("username"))
	profile, profileErr := handlers.githubClient.Profile(context.Request.Context(), username)
	if profileErr != nil {
		switch {
		case errors.Is(profileErr, github.ErrMissingUsername):
			context.JSON(http.StatusBadRequest, gin.H{jsonKeyError: errorValueMissingUsername})
		case errors.Is(profileErr, github.ErrUserNotFound):
			context.JSON(http.StatusNotFound, gin.H{jsonKeyError: errorValueUnknownUser})
		default:
			handlers.logger.Warn(logEventGitHubProxyFailed, zap.Error(profileErr))
			context.JSON(http.StatusBadGateway, gin.H{jsonKeyError: errorValueUpstreamFailure})
		}
		return
	}

	context.JSON(http.StatusOK, profile)
}

// Weather proxies a current-weather lookup by city.
func (handlers *ProxyHandlers) Weather(context *gin.Context) {
	if handlers.weatherClient == nil {
		context.JSON(http.StatusServiceUnavailable, gin.H{jsonKeyError: errorValueProxyUnavailable})
		return
	}

	city := strings.TrimSpace(context.Query(queryParameterCity))
	report, reportErr := handlers.weatherClient.CurrentByCity(context.Request.Context(), city)
	if reportErr != nil {
		switch {
		case errors.Is(reportErr, weather.ErrMissingCity):
			context.JSON(http.StatusBadRequest, gin.H{jsonKeyError: errorValueMissingCity})
		case errors.Is(reportErr, weather.ErrCityNotFound):
			context.JSON(http.StatusNotFound, gin.H{jsonKeyError: errorValueUnknownCity})
		case errors.Is(reportErr, weather.ErrMissingAPIKey):
			context.JSON(http.StatusServiceUnavailable, gin.H{jsonKeyError: errorValueProxyUnavailable})
		default:
			handlers.logger.Warn(logEventWeatherProxyFailed, zap.Error(reportErr))
			context.JSON(http.StatusBadGateway, gin.H{jsonKeyError: errorValueUpstreamFailure})
		}
		return
	}

	context.JSON(http.StatusOK, report)
}

// Recipes proxies a recipe search.
func (handlers *ProxyHandlers) Recipes(context *gin.Context) {
	if handlers.recipesClient == nil {
		context.JSON(http.StatusServiceUnavailable, gin.H{jsonKeyError: errorValueProxyUnavailable})
		return
	}

	query := strings.TrimSpace(context.Query(queryParameterQuery))
	limit, _ := strconv.Atoi(strings.TrimSpace(context.Query(queryParameterLimit)))

	result, searchErr := handlers.recipesClient.Search(context.Request.Context(), query, limit)
	if searchErr != nil {
		switch {
		case errors.Is(searchErr, recipes.ErrMissingQuery):
			context.JSON(http.StatusBadRequest, gin.H{jsonKeyError: errorValueMissingQuery})
		case errors.Is(searchErr, recipes.ErrMissingAPIKey):
			context.JSON(http.StatusServiceUnavailable, gin.H{jsonKeyError: errorValueProxyUnavailable})
		default:
			handlers.logger.Warn(logEventRecipesProxyFailed, zap.Error(searchErr))
			context.JSON(http.StatusBadGateway, gin.H{jsonKeyError: errorValueUpstreamFailure})
		}
		return
	}

	context.JSON(http.StatusOK, result)
}
