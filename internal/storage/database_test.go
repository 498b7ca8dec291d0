package storage_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kaviyamagudeeswaran/Kaviya-M--Portfolio/internal/model"
	"github.com/kaviyamagudeeswaran/Kaviya-M--Portfolio/internal/storage"
	"github.com/kaviyamagudeeswaran/Kaviya-M--Portfolio/internal/testutil"
)

const (
	testSubmissionNameValue    = "Test Visitor"
	testSubmissionEmailValue   = "visitor@example.com"
	testSubmissionSubjectValue = "Hello"
	testSubmissionMessageValue = "Nice portfolio"
	testUnsupportedDriverName  = "unsupported-driver"
)

func TestOpenDatabaseWithSQLiteConfiguration(t *testing.T) {
	sqliteDatabase := testutil.NewSQLiteTestDatabase(t)

	database, openErr := storage.OpenDatabase(sqliteDatabase.Configuration())
	require.NoError(t, openErr)
	database = testutil.ConfigureDatabaseLogger(t, database)
	require.NotNil(t, database)

	require.NoError(t, storage.AutoMigrate(database))

	submission := model.Submission{
		ID:                  storage.NewID(),
		Name:                testSubmissionNameValue,
		Email:               testSubmissionEmailValue,
		Subject:             testSubmissionSubjectValue,
		Message:             testSubmissionMessageValue,
		SubmissionTimestamp: time.Now().Unix(),
	}
	require.NoError(t, database.Create(&submission).Error)

	var fetchedSubmission model.Submission
	require.NoError(t, database.First(&fetchedSubmission, "id = ?", submission.ID).Error)
	require.Equal(t, testSubmissionNameValue, fetchedSubmission.Name)

	seedStatus := model.SeedStatus{
		ID:        model.SeedStatusRecordID,
		Executed:  true,
		Timestamp: time.Now().Unix(),
		Instance:  storage.NewID(),
	}
	require.NoError(t, database.Create(&seedStatus).Error)

	var fetchedStatus model.SeedStatus
	require.NoError(t, database.First(&fetchedStatus, "id = ?", model.SeedStatusRecordID).Error)
	require.True(t, fetchedStatus.Executed)
}

func TestOpenDatabaseValidation(t *testing.T) {
	sqliteDatabase := testutil.NewSQLiteTestDatabase(t)

	testCases := []struct {
		name              string
		configuration     storage.Config
		expectedRootError error
	}{
		{
			name:              "missing driver",
			configuration:     storage.Config{DataSourceName: sqliteDatabase.DataSourceName()},
			expectedRootError: storage.ErrMissingDatabaseDriverName,
		},
		{
			name:              "unsupported driver",
			configuration:     storage.Config{DriverName: testUnsupportedDriverName, DataSourceName: sqliteDatabase.DataSourceName()},
			expectedRootError: storage.ErrUnsupportedDatabaseDriver,
		},
		{
			name:              "missing data source",
			configuration:     storage.Config{DriverName: storage.DriverNameSQLite},
			expectedRootError: storage.ErrMissingDataSourceName,
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			database, openErr := storage.OpenDatabase(testCase.configuration)
			require.Nil(t, database)
			require.ErrorIs(t, openErr, testCase.expectedRootError)
		})
	}
}

func TestNewIDGeneratesUniqueValues(t *testing.T) {
	firstID := storage.NewID()
	secondID := storage.NewID()
	require.NotEmpty(t, firstID)
	require.NotEmpty(t, secondID)
	require.NotEqual(t, firstID, secondID)
}
