package main

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/kaviyamagudeeswaran/Kaviya-M--Portfolio/internal/httpapi"
)

const (
	corsOriginWildcard = "*"

	apiRoutePrefix = "/api"

	publicRouteContact = "/contact"

	apiRouteSubmissions      = "/submissions"
	apiRouteSubmissionDetail = "/submissions/:id"
	apiRouteGitHubProfile    = "/github/:username"
	apiRouteWeather          = "/weather"
	apiRouteRecipes          = "/recipes"
)

var (
	corsAllowedMethods = []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"}
	corsAllowedHeaders = []string{"Origin", "Content-Type", "Authorization"}
)

func registerRoutes(
	router *gin.Engine,
	submissionHandlers *httpapi.SubmissionHandlers,
	proxyHandlers *httpapi.ProxyHandlers,
	authJWTSecret string,
) {
	publicCORS := cors.New(cors.Config{
		AllowOrigins:     []string{corsOriginWildcard},
		AllowMethods:     corsAllowedMethods,
		AllowHeaders:     corsAllowedHeaders,
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	})

	publicGroup := router.Group(apiRoutePrefix)
	publicGroup.Use(publicCORS)
	publicGroup.POST(publicRouteContact, submissionHandlers.CreateSubmission)

	apiGroup := router.Group(apiRoutePrefix)
	apiGroup.Use(publicCORS)
	apiGroup.Use(httpapi.AuthMiddleware(authJWTSecret))
	apiGroup.GET(apiRouteSubmissions, submissionHandlers.ListSubmissions)
	apiGroup.GET(apiRouteSubmissionDetail, submissionHandlers.GetSubmission)
	apiGroup.PATCH(apiRouteSubmissionDetail, submissionHandlers.UpdateSubmission)
	apiGroup.DELETE(apiRouteSubmissionDetail, submissionHandlers.DeleteSubmission)

	apiGroup.GET(apiRouteGitHubProfile, proxyHandlers.GitHubProfile)
	apiGroup.GET(apiRouteWeather, proxyHandlers.Weather)
	apiGroup.GET(apiRouteRecipes, proxyHandlers.Recipes)
}
