package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/msx/internal/authors"
	"github.com/desertthunder/msx/internal/shared"
)

// SubmissionStatus tracks what happened to a stored upload.
type SubmissionStatus string

const (
	StatusReceived  SubmissionStatus = "received"
	StatusProcessed SubmissionStatus = "processed"
	StatusRejected  SubmissionStatus = "rejected"
)

// Valid reports whether s is a known status.
func (s SubmissionStatus) Valid() bool {
	switch s {
	case StatusReceived, StatusProcessed, StatusRejected:
		return true
	}
	return false
}

// Metadata holds the optional descriptive fields of the submission form.
type Metadata struct {
	Title         string `json:"title,omitempty" yaml:"title,omitempty"`
	ArticleType   string `json:"article_type,omitempty" yaml:"article_type,omitempty"`
	Keywords      string `json:"keywords,omitempty" yaml:"keywords,omitempty"`
	Email         string `json:"email,omitempty" yaml:"email,omitempty"`
	SubmittedDate string `json:"submitted_date,omitempty" yaml:"submitted_date,omitempty"`
}

// Submission is a manuscript received by the upload endpoint.
type Submission struct {
	id          string
	sequence    int
	Filename    string
	StoredPath  string
	ContentType string
	Size        int64
	Authors     []authors.Pair
	Metadata    Metadata
	Status      SubmissionStatus
	createdAt   time.Time
	updatedAt   time.Time
	deletedAt   *time.Time
}

var _ Model = (*Submission)(nil)

// NewSubmission creates a received submission stamped with the current time.
func NewSubmission(filename, storedPath, contentType string, size int64, pairs []authors.Pair, meta Metadata) *Submission {
	now := time.Now()
	return &Submission{
		Filename:    filename,
		StoredPath:  storedPath,
		ContentType: contentType,
		Size:        size,
		Authors:     pairs,
		Metadata:    meta,
		Status:      StatusReceived,
		createdAt:   now,
		updatedAt:   now,
	}
}

func (s *Submission) ID() string                { return s.id }
func (s *Submission) Sequence() int             { return s.sequence }
func (s *Submission) CreatedAt() time.Time      { return s.createdAt }
func (s *Submission) UpdatedAt() time.Time      { return s.updatedAt }
func (s *Submission) DeletedAt() *time.Time     { return s.deletedAt }
func (s *Submission) SetID(id string)           { s.id = id }
func (s *Submission) SetSequence(seq int)       { s.sequence = seq }
func (s *Submission) SetCreatedAt(t time.Time)  { s.createdAt = t }
func (s *Submission) SetUpdatedAt(t time.Time)  { s.updatedAt = t }
func (s *Submission) SetDeletedAt(t *time.Time) { s.deletedAt = t }

// Validate checks required fields.
func (s *Submission) Validate() error {
	if s.id == "" {
		return fmt.Errorf("%w: submission ID is required", shared.ErrInvalidInput)
	}
	if strings.TrimSpace(s.Filename) == "" {
		return fmt.Errorf("%w: filename is required", shared.ErrInvalidInput)
	}
	if s.StoredPath == "" {
		return fmt.Errorf("%w: stored path is required", shared.ErrInvalidInput)
	}
	if s.Size < 0 {
		return fmt.Errorf("%w: size cannot be negative", shared.ErrInvalidInput)
	}
	if !s.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", shared.ErrInvalidInput, s.Status)
	}
	return nil
}
