package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/kaviyamagudeeswaran/Kaviya-M--Portfolio/internal/model"
)

const (
	jsonKeyError       = "error"
	jsonKeyStatus      = "status"
	jsonKeySubmissions = "submissions"

	statusValueOK = "ok"

	errorValueRateLimited       = "rate_limited"
	errorValueInvalidPayload    = "invalid_payload"
	errorValueSaveFailed        = "save_failed"
	errorValueQueryFailed       = "query_failed"
	errorValueUnknownSubmission = "unknown_submission"
	errorValueNothingToUpdate   = "nothing_to_update"
	errorValueDeleteFailed      = "delete_failed"
)

// SubmissionHandlers serves the contact-form submission routes. Creation is
// public; reading and mutating existing submissions sits behind the bearer
// auth middleware.
type SubmissionHandlers struct {
	database                  *gorm.DB
	logger                    *zap.Logger
	now                       func() time.Time
	rateWindow                time.Duration
	maxRequestsPerIPPerWindow int
	rateCountersByIP          map[string]int
	rateCountersMutex         sync.Mutex
}

// NewSubmissionHandlers creates submission handlers with default dependencies.
func NewSubmissionHandlers(database *gorm.DB, logger *zap.Logger) *SubmissionHandlers {
	return &SubmissionHandlers{
		database:                  database,
		logger:                    logger,
		now:                       time.Now,
		rateWindow:                30 * time.Second,
		maxRequestsPerIPPerWindow: 6,
		rateCountersByIP:          make(map[string]int),
	}
}

// WithClock overrides the wall clock dependency.
func (handlers *SubmissionHandlers) WithClock(clock func() time.Time) *SubmissionHandlers {
	handlers.now = clock
	return handlers
}

type createSubmissionRequest struct {
	Name    string `json:"name" binding:"required,notblank"`
	Email   string `json:"email" binding:"required,email"`
	Subject string `json:"subject" binding:"required,notblank"`
	Message string `json:"message" binding:"required,notblank"`
}

type updateSubmissionRequest struct {
	Name    *string `json:"name" binding:"omitempty,notblank"`
	Email   *string `json:"email" binding:"omitempty,email"`
	Subject *string `json:"subject" binding:"omitempty,notblank"`
	Message *string `json:"message" binding:"omitempty,notblank"`
}

type submissionResponse struct {
	ID                  string `json:"id"`
	Name                string `json:"name"`
	Email               string `json:"email"`
	Subject             string `json:"subject"`
	Message             string `json:"message"`
	SubmissionTimestamp int64  `json:"submission_timestamp"`
}

func shapeSubmission(submission model.Submission) submissionResponse {
	return submissionResponse{
		ID:                  submission.ID,
		Name:                submission.Name,
		Email:               submission.Email,
		Subject:             submission.Subject,
		Message:             submission.Message,
		SubmissionTimestamp: submission.SubmissionTimestamp,
	}
}

// CreateSubmission accepts a public contact-form message.
func (handlers *SubmissionHandlers) CreateSubmission(context *gin.Context) {
	clientIP := context.ClientIP()
	if handlers.isRateLimited(clientIP) {
		context.JSON(http.StatusTooManyRequests, gin.H{jsonKeyError: errorValueRateLimited})
		return
	}

	var payload createSubmissionRequest
	if bindErr := context.ShouldBindJSON(&payload); bindErr != nil {
		context.JSON(http.StatusBadRequest, gin.H{jsonKeyError: errorValueInvalidPayload})
		return
	}

	submission, buildErr := model.NewSubmission(model.SubmissionInput{
		Name:                payload.Name,
		Email:               payload.Email,
		Subject:             payload.Subject,
		Message:             payload.Message,
		SubmissionTimestamp: handlers.now().Unix(),
	})
	if buildErr != nil {
		context.JSON(http.StatusBadRequest, gin.H{jsonKeyError: errorValueInvalidPayload})
		return
	}

	if createErr := handlers.database.WithContext(context.Request.Context()).Create(&submission).Error; createErr != nil {
		handlers.logger.Warn("save_submission", zap.Error(createErr))
		context.JSON(http.StatusInternalServerError, gin.H{jsonKeyError: errorValueSaveFailed})
		return
	}

	context.JSON(http.StatusCreated, shapeSubmission(submission))
}

// ListSubmissions returns all submissions, most recent first.
func (handlers *SubmissionHandlers) ListSubmissions(context *gin.Context) {
	var submissions []model.Submission
	queryErr := handlers.database.WithContext(context.Request.Context()).
		Order("submission_timestamp desc").
		Find(&submissions).Error
	if queryErr != nil {
		handlers.logger.Warn("list_submissions", zap.Error(queryErr))
		context.JSON(http.StatusInternalServerError, gin.H{jsonKeyError: errorValueQueryFailed})
		return
	}

	shaped := make([]submissionResponse, 0, len(submissions))
	for _, submission := range submissions {
		shaped = append(shaped, shapeSubmission(submission))
	}
	context.JSON(http.StatusOK, gin.H{jsonKeySubmissions: shaped})
}

// GetSubmission returns one submission by identifier.
func (handlers *SubmissionHandlers) GetSubmission(context *gin.Context) {
	submission, found := handlers.findSubmission(context)
	if !found {
		return
	}
	context.JSON(http.StatusOK, shapeSubmission(submission))
}

// UpdateSubmission applies a partial field replacement to one submission. The
// identifier and the submission timestamp are immutable.
func (handlers *SubmissionHandlers) UpdateSubmission(context *gin.Context) {
	submission, found := handlers.findSubmission(context)
	if !found {
		return
	}

	var payload updateSubmissionRequest
	if bindErr := context.ShouldBindJSON(&payload); bindErr != nil {
		context.JSON(http.StatusBadRequest, gin.H{jsonKeyError: errorValueInvalidPayload})
		return
	}

	assignments := map[string]any{}
	if payload.Name != nil {
		assignments["name"] = strings.TrimSpace(*payload.Name)
	}
	if payload.Email != nil {
		assignments["email"] = strings.ToLower(strings.TrimSpace(*payload.Email))
	}
	if payload.Subject != nil {
		assignments["subject"] = strings.TrimSpace(*payload.Subject)
	}
	if payload.Message != nil {
		assignments["message"] = strings.TrimSpace(*payload.Message)
	}
	if len(assignments) == 0 {
		context.JSON(http.StatusBadRequest, gin.H{jsonKeyError: errorValueNothingToUpdate})
		return
	}

	updateErr := handlers.database.WithContext(context.Request.Context()).
		Model(&submission).
		Updates(assignments).Error
	if updateErr != nil {
		handlers.logger.Warn("update_submission", zap.Error(updateErr))
		context.JSON(http.StatusInternalServerError, gin.H{jsonKeyError: errorValueSaveFailed})
		return
	}

	var refreshed model.Submission
	if fetchErr := handlers.database.WithContext(context.Request.Context()).First(&refreshed, "id = ?", submission.ID).Error; fetchErr != nil {
		context.JSON(http.StatusInternalServerError, gin.H{jsonKeyError: errorValueQueryFailed})
		return
	}
	context.JSON(http.StatusOK, shapeSubmission(refreshed))
}

// DeleteSubmission removes one submission by identifier.
func (handlers *SubmissionHandlers) DeleteSubmission(context *gin.Context) {
	submission, found := handlers.findSubmission(context)
	if !found {
		return
	}

	deleteErr := handlers.database.WithContext(context.Request.Context()).
		Delete(&model.Submission{}, "id = ?", submission.ID).Error
	if deleteErr != nil {
		handlers.logger.Warn("delete_submission", zap.Error(deleteErr))
		context.JSON(http.StatusInternalServerError, gin.H{jsonKeyError: errorValueDeleteFailed})
		return
	}
	context.JSON(http.StatusOK, gin.H{jsonKeyStatus: statusValueOK})
}

func (handlers *SubmissionHandlers) findSubmission(context *gin.Context) (model.Submission, bool) {
	submissionID := strings.TrimSpace(context.Param("id"))
	if submissionID == "" {
		context.JSON(http.StatusNotFound, gin.H{jsonKeyError: errorValueUnknownSubmission})
		return model.Submission{}, false
	}

	var submission model.Submission
	findErr := handlers.database.WithContext(context.Request.Context()).First(&submission, "id = ?", submissionID).Error
	if findErr != nil {
		if errors.Is(findErr, gorm.ErrRecordNotFound) {
			context.JSON(http.StatusNotFound, gin.H{jsonKeyError: errorValueUnknownSubmission})
			return model.Submission{}, false
		}
		handlers.logger.Warn("find_submission", zap.Error(findErr))
		context.JSON(http.StatusInternalServerError, gin.H{jsonKeyError: errorValueQueryFailed})
		return model.Submission{}, false
	}
	return submission, true
}

func (handlers *SubmissionHandlers) isRateLimited(ip string) bool {
	nowBucket := handlers.now().Unix() / int64(handlers.rateWindow.Seconds())
	key := fmt.Sprintf("%s:%d", ip, nowBucket)

	handlers.rateCountersMutex.Lock()
	defer handlers.rateCountersMutex.Unlock()

	handlers.rateCountersByIP[key]++
	return handlers.rateCountersByIP[key] > handlers.maxRequestsPerIPPerWindow
}
