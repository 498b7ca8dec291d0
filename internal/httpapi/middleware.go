package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

const (
	authorizationHeaderName = "Authorization"
	bearerSchemePrefix      = "Bearer "

	contextKeyAuthSubject = "httpapi_auth_subject"

	errorValueAuthDisabled  = "auth_disabled"
	errorValueMissingBearer = "missing_bearer"
	errorValueInvalidToken  = "invalid_token"
)

// RequestLogger emits one structured log line per handled request.
func RequestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(context *gin.Context) {
		start := time.Now()
		context.Next()
		logger.Info("http",
			zap.String("method", context.Request.Method),
			zap.String("path", context.Request.URL.Path),
			zap.Int("status", context.Writer.Status()),
			zap.Duration("dur", time.Since(start)),
			zap.String("ip", context.ClientIP()),
			zap.String("ua", context.Request.UserAgent()),
		)
	}
}

// AuthMiddleware verifies an HS256 JWT bearer token and stores its subject in
// the request context. Tokens are issued out of band; there is no login flow.
func AuthMiddleware(jwtSecret string) gin.HandlerFunc {
	trimmedSecret := strings.TrimSpace(jwtSecret)
	tokenParser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	return func(context *gin.Context) {
		if trimmedSecret == "" {
			context.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{jsonKeyError: errorValueAuthDisabled})
			return
		}

		authorizationHeader := strings.TrimSpace(context.GetHeader(authorizationHeaderName))
		if !strings.HasPrefix(authorizationHeader, bearerSchemePrefix) {
			context.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{jsonKeyError: errorValueMissingBearer})
			return
		}
		rawToken := strings.TrimSpace(strings.TrimPrefix(authorizationHeader, bearerSchemePrefix))
		if rawToken == "" {
			context.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{jsonKeyError: errorValueMissingBearer})
			return
		}

		var claims jwt.RegisteredClaims
		token, parseErr := tokenParser.ParseWithClaims(rawToken, &claims, func(_ *jwt.Token) (any, error) {
			return []byte(trimmedSecret), nil
		})
		if parseErr != nil || !token.Valid {
			context.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{jsonKeyError: errorValueInvalidToken})
			return
		}
		if strings.TrimSpace(claims.Subject) == "" {
			context.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{jsonKeyError: errorValueInvalidToken})
			return
		}

		context.Set(contextKeyAuthSubject, claims.Subject)
		context.Next()
	}
}

// AuthSubjectFromContext returns the verified token subject for the request.
func AuthSubjectFromContext(context *gin.Context) (string, bool) {
	value, exists := context.Get(contextKeyAuthSubject)
	if !exists {
		return "", false
	}
	subject, ok := value.(string)
	return subject, ok
}
