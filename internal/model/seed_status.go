package model

// SeedStatusRecordID is the well-known identifier of the singleton SeedStatus
// row. Every process checks the same row, so the value must stay stable across
// deployments.
const SeedStatusRecordID = "mock_data_seed"

// SeedStatus is the singleton bookkeeping row for the one-time mock-data seed.
// The row doubles as a distributed lock: whichever process inserts it owns the
// seeding run, and the row is never deleted afterwards.
type SeedStatus struct {
	ID                 string `gorm:"primaryKey;size:64"`
	Executed           bool   `gorm:"not null"`
	Timestamp          int64  `gorm:"not null"`
	Instance           string `gorm:"size:36"`
	Completed          bool
	CompletedTimestamp int64
	Failed             bool
	FailedTimestamp    int64
	Error              string `gorm:"size:2000"`
}
