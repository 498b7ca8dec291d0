package httpapi_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/kaviyamagudeeswaran/Kaviya-M--Portfolio/internal/httpapi"
	"github.com/kaviyamagudeeswaran/Kaviya-M--Portfolio/internal/model"
	"github.com/kaviyamagudeeswaran/Kaviya-M--Portfolio/internal/storage"
	"github.com/kaviyamagudeeswaran/Kaviya-M--Portfolio/internal/testutil"
)

const (
	testJWTSecret       = "test-jwt-secret"
	testTokenSubject    = "portfolio-admin"
	routeContact        = "/api/contact"
	routeSubmissions    = "/api/submissions"
	routeSubmissionByID = "/api/submissions/"
)

type apiHarness struct {
	router   *gin.Engine
	database *gorm.DB
}

func buildAPIHarness(testingT *testing.T) apiHarness {
	testingT.Helper()

	gin.SetMode(gin.TestMode)
	require.NoError(testingT, httpapi.RegisterValidations())

	logger, loggerErr := zap.NewDevelopment()
	require.NoError(testingT, loggerErr)

	sqliteDatabase := testutil.NewSQLiteTestDatabase(testingT)
	database, openErr := storage.OpenDatabase(sqliteDatabase.Configuration())
	require.NoError(testingT, openErr)
	database = testutil.ConfigureDatabaseLogger(testingT, database)
	require.NoError(testingT, storage.AutoMigrate(database))

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.Default())
	router.Use(httpapi.RequestLogger(logger))

	submissionHandlers := httpapi.NewSubmissionHandlers(database, logger)
	router.POST(routeContact, submissionHandlers.CreateSubmission)

	protectedGroup := router.Group("/api")
	protectedGroup.Use(httpapi.AuthMiddleware(testJWTSecret))
	protectedGroup.GET("/submissions", submissionHandlers.ListSubmissions)
	protectedGroup.GET("/submissions/:id", submissionHandlers.GetSubmission)
	protectedGroup.PATCH("/submissions/:id", submissionHandlers.UpdateSubmission)
	protectedGroup.DELETE("/submissions/:id", submissionHandlers.DeleteSubmission)

	return apiHarness{router: router, database: database}
}

func signTestToken(testingT *testing.T, secret string, subject string, expiresAt time.Time) string {
	testingT.Helper()

	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, signErr := token.SignedString([]byte(secret))
	require.NoError(testingT, signErr)
	return signed
}

func authorizationHeaders(testingT *testing.T) map[string]string {
	testingT.Helper()
	token := signTestToken(testingT, testJWTSecret, testTokenSubject, time.Now().Add(time.Hour))
	return map[string]string{"Authorization": "Bearer " + token}
}

func performJSONRequest(testingT *testing.T, router *gin.Engine, method string, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	testingT.Helper()

	var requestBody io.Reader
	if body != nil {
		encoded, encodeErr := json.Marshal(body)
		require.NoError(testingT, encodeErr)
		requestBody = bytes.NewReader(encoded)
	}
	request := httptest.NewRequest(method, path, requestBody)
	for name, value := range headers {
		request.Header.Set(name, value)
	}
	if body != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)
	return recorder
}

func insertSubmission(testingT *testing.T, database *gorm.DB, name string, email string, subject string, message string) model.Submission {
	testingT.Helper()

	submission := model.Submission{
		ID:                  storage.NewID(),
		Name:                name,
		Email:               email,
		Subject:             subject,
		Message:             message,
		SubmissionTimestamp: time.Now().Unix(),
	}
	require.NoError(testingT, database.Create(&submission).Error)
	return submission
}

func decodeSubmissionBody(testingT *testing.T, recorder *httptest.ResponseRecorder) map[string]any {
	testingT.Helper()
	var decoded map[string]any
	require.NoError(testingT, json.Unmarshal(recorder.Body.Bytes(), &decoded))
	return decoded
}

func TestCreateSubmissionStoresMessage(t *testing.T) {
	api := buildAPIHarness(t)

	response := performJSONRequest(t, api.router, http.MethodPost, routeContact, gin.H{
		"name":    "  Grace Hopper ",
		"email":   "GRACE@example.com",
		"subject": "Compilers",
		"message": "Loved the write-up on your build pipeline.",
	}, nil)
	require.Equal(t, http.StatusCreated, response.Code)

	decoded := decodeSubmissionBody(t, response)
	require.Equal(t, "Grace Hopper", decoded["name"])
	require.Equal(t, "grace@example.com", decoded["email"])
	require.NotEmpty(t, decoded["id"])
	require.NotZero(t, decoded["submission_timestamp"])

	var stored model.Submission
	require.NoError(t, api.database.First(&stored, "id = ?", decoded["id"]).Error)
	require.Equal(t, "Grace Hopper", stored.Name)
}

func TestCreateSubmissionRejectsInvalidPayloads(t *testing.T) {
	api := buildAPIHarness(t)

	testCases := []struct {
		name    string
		payload gin.H
	}{
		{name: "missing name", payload: gin.H{"email": "a@example.com", "subject": "s", "message": "m"}},
		{name: "blank subject", payload: gin.H{"name": "n", "email": "a@example.com", "subject": "   ", "message": "m"}},
		{name: "malformed email", payload: gin.H{"name": "n", "email": "not-an-email", "subject": "s", "message": "m"}},
		{name: "blank message", payload: gin.H{"name": "n", "email": "a@example.com", "subject": "s", "message": " "}},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			response := performJSONRequest(t, api.router, http.MethodPost, routeContact, testCase.payload, nil)
			require.Equal(t, http.StatusBadRequest, response.Code)
		})
	}

	var submissionCount int64
	require.NoError(t, api.database.Model(&model.Submission{}).Count(&submissionCount).Error)
	require.Equal(t, int64(0), submissionCount)
}

func TestListSubmissionsReturnsMostRecentFirst(t *testing.T) {
	api := buildAPIHarness(t)

	older := insertSubmission(t, api.database, "Older", "older@example.com", "First", "first message")
	require.NoError(t, api.database.Model(&older).Update("submission_timestamp", time.Now().Add(-time.Hour).Unix()).Error)
	newer := insertSubmission(t, api.database, "Newer", "newer@example.com", "Second", "second message")

	response := performJSONRequest(t, api.router, http.MethodGet, routeSubmissions, nil, authorizationHeaders(t))
	require.Equal(t, http.StatusOK, response.Code)

	var decoded struct {
		Submissions []struct {
			ID string `json:"id"`
		} `json:"submissions"`
	}
	require.NoError(t, json.Unmarshal(response.Body.Bytes(), &decoded))
	require.Len(t, decoded.Submissions, 2)
	require.Equal(t, newer.ID, decoded.Submissions[0].ID)
	require.Equal(t, older.ID, decoded.Submissions[1].ID)
}

func TestGetSubmissionByIdentifier(t *testing.T) {
	api := buildAPIHarness(t)
	submission := insertSubmission(t, api.database, "Visitor", "visitor@example.com", "Hello", "message body")

	response := performJSONRequest(t, api.router, http.MethodGet, routeSubmissionByID+submission.ID, nil, authorizationHeaders(t))
	require.Equal(t, http.StatusOK, response.Code)
	decoded := decodeSubmissionBody(t, response)
	require.Equal(t, submission.ID, decoded["id"])
	require.Equal(t, "Visitor", decoded["name"])

	missingResponse := performJSONRequest(t, api.router, http.MethodGet, routeSubmissionByID+"missing-id", nil, authorizationHeaders(t))
	require.Equal(t, http.StatusNotFound, missingResponse.Code)
}

func TestUpdateSubmissionReplacesOnlyProvidedFields(t *testing.T) {
	api := buildAPIHarness(t)
	submission := insertSubmission(t, api.database, "Visitor", "visitor@example.com", "Hello", "message body")

	response := performJSONRequest(t, api.router, http.MethodPatch, routeSubmissionByID+submission.ID, gin.H{
		"subject": "Updated subject",
	}, authorizationHeaders(t))
	require.Equal(t, http.StatusOK, response.Code)

	var refreshed model.Submission
	require.NoError(t, api.database.First(&refreshed, "id = ?", submission.ID).Error)
	require.Equal(t, "Updated subject", refreshed.Subject)
	require.Equal(t, submission.Name, refreshed.Name)
	require.Equal(t, submission.Email, refreshed.Email)
	require.Equal(t, submission.SubmissionTimestamp, refreshed.SubmissionTimestamp)
}

func TestUpdateSubmissionRejectsEmptyAndInvalidPayloads(t *testing.T) {
	api := buildAPIHarness(t)
	submission := insertSubmission(t, api.database, "Visitor", "visitor@example.com", "Hello", "message body")

	emptyResponse := performJSONRequest(t, api.router, http.MethodPatch, routeSubmissionByID+submission.ID, gin.H{}, authorizationHeaders(t))
	require.Equal(t, http.StatusBadRequest, emptyResponse.Code)

	invalidResponse := performJSONRequest(t, api.router, http.MethodPatch, routeSubmissionByID+submission.ID, gin.H{
		"email": "not-an-email",
	}, authorizationHeaders(t))
	require.Equal(t, http.StatusBadRequest, invalidResponse.Code)
}

func TestDeleteSubmissionRemovesRecord(t *testing.T) {
	api := buildAPIHarness(t)
	submission := insertSubmission(t, api.database, "Visitor", "visitor@example.com", "Hello", "message body")

	response := performJSONRequest(t, api.router, http.MethodDelete, routeSubmissionByID+submission.ID, nil, authorizationHeaders(t))
	require.Equal(t, http.StatusOK, response.Code)

	var submissionCount int64
	require.NoError(t, api.database.Model(&model.Submission{}).Count(&submissionCount).Error)
	require.Equal(t, int64(0), submissionCount)

	missingResponse := performJSONRequest(t, api.router, http.MethodDelete, routeSubmissionByID+submission.ID, nil, authorizationHeaders(t))
	require.Equal(t, http.StatusNotFound, missingResponse.Code)
}

func TestProtectedRoutesRequireBearerToken(t *testing.T) {
	api := buildAPIHarness(t)
	submission := insertSubmission(t, api.database, "Visitor", "visitor@example.com", "Hello", "message body")

	protectedRequests := []struct {
		method string
		path   string
	}{
		{method: http.MethodGet, path: routeSubmissions},
		{method: http.MethodGet, path: routeSubmissionByID + submission.ID},
		{method: http.MethodPatch, path: routeSubmissionByID + submission.ID},
		{method: http.MethodDelete, path: routeSubmissionByID + submission.ID},
	}

	for _, protectedRequest := range protectedRequests {
		response := performJSONRequest(t, api.router, protectedRequest.method, protectedRequest.path, nil, nil)
		require.Equal(t, http.StatusUnauthorized, response.Code)
	}
}
