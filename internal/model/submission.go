package model

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/google/uuid"
)

const (
	submissionNameMaxLength    = 200
	submissionEmailMaxLength   = 320
	submissionSubjectMaxLength = 200
	submissionMessageMaxLength = 4000
)

var (
	ErrInvalidSubmissionName    = errors.New("invalid_submission_name")
	ErrInvalidSubmissionEmail   = errors.New("invalid_submission_email")
	ErrInvalidSubmissionSubject = errors.New("invalid_submission_subject")
	ErrInvalidSubmissionMessage = errors.New("invalid_submission_message")
)

// Submission captures one contact-form message sent through the portfolio site.
type Submission struct {
	ID                  string `gorm:"primaryKey;size:36"`
	Name                string `gorm:"not null;size:200"`
	Email               string `gorm:"not null;size:320;index"`
	Subject             string `gorm:"not null;size:200"`
	Message             string `gorm:"not null;size:4000"`
	SubmissionTimestamp int64  `gorm:"not null;index"`
}

// SubmissionInput holds the raw values used to construct a Submission.
type SubmissionInput struct {
	Name                string
	Email               string
	Subject             string
	Message             string
	SubmissionTimestamp int64
}

// NewSubmission constructs a Submission with validated, normalized fields.
// The identifier is assigned here and the timestamp is taken from the input
// unchanged; callers supply server time at creation.
func NewSubmission(input SubmissionInput) (Submission, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" || len(name) > submissionNameMaxLength {
		return Submission{}, fmt.Errorf("%w: empty or too long", ErrInvalidSubmissionName)
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	if err := validateSubmissionEmail(email); err != nil {
		return Submission{}, err
	}

	subject := strings.TrimSpace(input.Subject)
	if subject == "" || len(subject) > submissionSubjectMaxLength {
		return Submission{}, fmt.Errorf("%w: empty or too long", ErrInvalidSubmissionSubject)
	}

	message := strings.TrimSpace(input.Message)
	if message == "" || len(message) > submissionMessageMaxLength {
		return Submission{}, fmt.Errorf("%w: empty or too long", ErrInvalidSubmissionMessage)
	}

	return Submission{
		ID:                  uuid.NewString(),
		Name:                name,
		Email:               email,
		Subject:             subject,
		Message:             message,
		SubmissionTimestamp: input.SubmissionTimestamp,
	}, nil
}

func validateSubmissionEmail(email string) error {
	if email == "" || len(email) > submissionEmailMaxLength {
		return fmt.Errorf("%w: empty or too long", ErrInvalidSubmissionEmail)
	}
	_, parseErr := mail.ParseAddress(email)
	if parseErr != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSubmissionEmail, parseErr)
	}
	return nil
}
