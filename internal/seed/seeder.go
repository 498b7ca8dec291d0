package seed

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kaviyamagudeeswaran/Kaviya-M--Portfolio/internal/model"
	"github.com/kaviyamagudeeswaran/Kaviya-M--Portfolio/internal/storage"
)

const (
	logEventSeedAlreadyAttempted = "seed_already_attempted"
	logEventSeedLockHeld         = "seed_lock_held_elsewhere"
	logEventSeedCompleted        = "seed_completed"
	logEventSeedFailed           = "seed_failed"
	logEventSeedMarkFailedError  = "seed_mark_failed_error"
	logFieldInstanceToken        = "instance"
	logFieldSubmissionCount      = "submissions"

	seedStatusErrorMaxLength = 2000

	errorMessageAcquireSeedLock    = "seed: acquire lock"
	errorMessageSeedTransaction    = "seed: transaction"
	errorMessageBuildSeedBatchItem = "seed: build batch submission"
)

// ErrorKind classifies seeding failures for callers that branch on the phase
// that failed.
type ErrorKind string

const (
	// ErrorKindLockContention marks a conditional-insert failure that was not
	// "the lock is already held". Contention itself is never an error.
	ErrorKindLockContention ErrorKind = "lock_contention"
	// ErrorKindTransaction marks a failure of the batch insert or the
	// completion update after the lock was acquired.
	ErrorKindTransaction ErrorKind = "transaction"
)

// SeedError wraps a seeding failure with its phase classification.
type SeedError struct {
	Kind ErrorKind
	Err  error
}

func (seedError *SeedError) Error() string {
	return fmt.Sprintf("seed %s: %v", seedError.Kind, seedError.Err)
}

func (seedError *SeedError) Unwrap() error {
	return seedError.Err
}

// Seeder writes a fixed batch of example submissions into the store exactly
// once per deployment. The SeedStatus row at a well-known identifier acts as a
// distributed lock: the one process whose conditional insert creates the row
// runs the seed, every other process treats the run as already owned and does
// nothing. The in-process attempted flag lives on the Seeder so repeated boot
// hooks in one process short-circuit without touching the store.
type Seeder struct {
	database         *gorm.DB
	logger           *zap.Logger
	batch            []Entry
	now              func() time.Time
	newInstanceToken func() string

	attemptMutex sync.Mutex
	attempted    bool
}

// NewSeeder creates a Seeder with the default batch and default dependencies.
func NewSeeder(database *gorm.DB, logger *zap.Logger) *Seeder {
	return &Seeder{
		database:         database,
		logger:           logger,
		batch:            defaultSeedBatch,
		now:              time.Now,
		newInstanceToken: storage.NewID,
	}
}

// WithClock overrides the wall clock dependency.
func (seeder *Seeder) WithClock(clock func() time.Time) *Seeder {
	seeder.now = clock
	return seeder
}

// WithInstanceTokenSource overrides the instance token generator dependency.
func (seeder *Seeder) WithInstanceTokenSource(tokenSource func() string) *Seeder {
	seeder.newInstanceToken = tokenSource
	return seeder
}

// WithBatch overrides the seed batch dependency.
func (seeder *Seeder) WithBatch(batch []Entry) *Seeder {
	seeder.batch = batch
	return seeder
}

// Run performs the one-time seed. It returns nil both when this process seeded
// the store and when another process already owns the seed. A returned error
// is always a *SeedError; callers are expected to log it and keep booting,
// since example data is auxiliary.
func (seeder *Seeder) Run(ctx context.Context) error {
	seeder.attemptMutex.Lock()
	alreadyAttempted := seeder.attempted
	seeder.attempted = true
	seeder.attemptMutex.Unlock()

	if alreadyAttempted {
		seeder.logger.Debug(logEventSeedAlreadyAttempted)
		return nil
	}

	instanceToken := seeder.newInstanceToken()
	lockAcquired, lockErr := seeder.acquireLock(ctx, instanceToken)
	if lockErr != nil {
		return &SeedError{Kind: ErrorKindLockContention, Err: fmt.Errorf("%s: %w", errorMessageAcquireSeedLock, lockErr)}
	}
	if !lockAcquired {
		seeder.logger.Info(logEventSeedLockHeld)
		return nil
	}

	if transactionErr := seeder.runSeedTransaction(ctx); transactionErr != nil {
		seeder.logger.Warn(logEventSeedFailed, zap.Error(transactionErr))
		seeder.markFailed(ctx, transactionErr)
		return &SeedError{Kind: ErrorKindTransaction, Err: fmt.Errorf("%s: %w", errorMessageSeedTransaction, transactionErr)}
	}

	seeder.logger.Info(logEventSeedCompleted,
		zap.String(logFieldInstanceToken, instanceToken),
		zap.Int(logFieldSubmissionCount, len(seeder.batch)),
	)
	return nil
}

// acquireLock conditionally inserts the SeedStatus row. Exactly one concurrent
// caller observes an insert; the rest observe the existing row. A duplicate-key
// error from a store that races the existence check against the insert counts
// as "already held".
func (seeder *Seeder) acquireLock(ctx context.Context, instanceToken string) (bool, error) {
	status := model.SeedStatus{
		ID:        model.SeedStatusRecordID,
		Executed:  true,
		Timestamp: seeder.now().Unix(),
		Instance:  instanceToken,
	}

	result := seeder.database.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, DoNothing: true}).
		Create(&status)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return false, nil
		}
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}

// runSeedTransaction inserts the batch and records completion as one atomic
// unit. Either both writes commit or neither does.
func (seeder *Seeder) runSeedTransaction(ctx context.Context) error {
	nowSeconds := seeder.now().Unix()

	return seeder.database.WithContext(ctx).Transaction(func(transaction *gorm.DB) error {
		for _, entry := range seeder.batch {
			submission, buildErr := model.NewSubmission(model.SubmissionInput{
				Name:                entry.Name,
				Email:               entry.Email,
				Subject:             entry.Subject,
				Message:             entry.Message,
				SubmissionTimestamp: nowSeconds - int64(entry.Age.Seconds()),
			})
			if buildErr != nil {
				return fmt.Errorf("%s: %w", errorMessageBuildSeedBatchItem, buildErr)
			}
			if createErr := transaction.Create(&submission).Error; createErr != nil {
				return createErr
			}
		}

		completionAssignments := map[string]any{
			"completed":           true,
			"completed_timestamp": seeder.now().Unix(),
		}
		return transaction.Model(&model.SeedStatus{}).
			Where("id = ?", model.SeedStatusRecordID).
			Updates(completionAssignments).Error
	})
}

// markFailed records the failure on the SeedStatus row outside any
// transaction. The write is best-effort: when it fails too the failure is
// logged and the primary error keeps propagating.
func (seeder *Seeder) markFailed(ctx context.Context, cause error) {
	failureAssignments := map[string]any{
		"failed":           true,
		"failed_timestamp": seeder.now().Unix(),
		"error":            truncateErrorDescription(cause.Error()),
	}

	updateErr := seeder.database.WithContext(ctx).Model(&model.SeedStatus{}).
		Where("id = ?", model.SeedStatusRecordID).
		Updates(failureAssignments).Error
	if updateErr != nil {
		seeder.logger.Warn(logEventSeedMarkFailedError, zap.Error(updateErr))
	}
}

func truncateErrorDescription(description string) string {
	if len(description) <= seedStatusErrorMaxLength {
		return description
	}
	return description[:seedStatusErrorMaxLength]
}
