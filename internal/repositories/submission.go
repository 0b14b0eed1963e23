package repositories

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/msx/internal/authors"
	"github.com/desertthunder/msx/internal/models"
	"github.com/desertthunder/msx/internal/shared"
)

var _ models.Repository[*models.Submission] = (*SubmissionRepository)(nil)

// SubmissionRepository implements [models.Repository] for [models.Submission] persistence.
type SubmissionRepository struct {
	db *sql.DB
}

// NewSubmissionRepository creates a new [SubmissionRepository] with the given database connection
func NewSubmissionRepository(db *sql.DB) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

const submissionColumns = `
	id, sequence, filename, stored_path, content_type, size, authors,
	title, article_type, keywords, email, submitted_date, status,
	created_at, updated_at, deleted_at
`

// Create inserts a new submission with generated ID and sequence.
//
// An ID already set on the submission (e.g. the storage key) is kept.
func (r *SubmissionRepository) Create(s *models.Submission) error {
	sequence, err := NextSequence(r.db, "submissions")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	if s.ID() == "" {
		s.SetID(shared.GenerateID())
	}
	s.SetSequence(sequence)

	if err := s.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	authorsJSON, err := json.Marshal(s.Authors)
	if err != nil {
		return fmt.Errorf("failed to encode authors: %w", err)
	}

	query := `
		INSERT INTO submissions (
			id, sequence, filename, stored_path, content_type, size, authors,
			title, article_type, keywords, email, submitted_date, status,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		s.ID(), sequence, s.Filename, s.StoredPath, s.ContentType, s.Size, string(authorsJSON),
		s.Metadata.Title, s.Metadata.ArticleType, s.Metadata.Keywords, s.Metadata.Email, s.Metadata.SubmittedDate,
		string(s.Status), s.CreatedAt(), s.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert submission: %w", err)
	}

	return nil
}

// Get retrieves a submission by ID, excluding soft-deleted rows
func (r *SubmissionRepository) Get(id string) (*models.Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM submissions WHERE id = ? AND deleted_at IS NULL`

	s, err := scanSubmission(r.db.QueryRow(query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: submission %s", shared.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query submission: %w", err)
	}
	return s, nil
}

// Update modifies the status and metadata of an existing submission
func (r *SubmissionRepository) Update(s *models.Submission) error {
	if err := s.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	s.SetUpdatedAt(now)

	query := `
		UPDATE submissions
		SET status = ?, title = ?, article_type = ?, keywords = ?, email = ?, submitted_date = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query,
		string(s.Status), s.Metadata.Title, s.Metadata.ArticleType, s.Metadata.Keywords,
		s.Metadata.Email, s.Metadata.SubmittedDate, now, s.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update submission: %w", err)
	}

	return requireAffected(result, s.ID())
}

// Delete soft-deletes a submission by ID
func (r *SubmissionRepository) Delete(id string) error {
	query := `
		UPDATE submissions
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete submission: %w", err)
	}

	return requireAffected(result, id)
}

// List retrieves submissions matching the given criteria, excluding soft-deleted rows.
//
// Supported criteria: "status" (string), "limit" (int).
func (r *SubmissionRepository) List(criteria map[string]any) ([]*models.Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM submissions WHERE deleted_at IS NULL`
	args := []any{}

	if status, ok := criteria["status"].(string); ok && status != "" {
		query += " AND status = ?"
		args = append(args, status)
	}

	query += " ORDER BY sequence ASC"

	if limit, ok := criteria["limit"].(int); ok && limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query submissions: %w", err)
	}
	defer rows.Close()

	var submissions []*models.Submission
	for rows.Next() {
		s, err := scanSubmission(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan submission: %w", err)
		}
		submissions = append(submissions, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return submissions, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSubmission(row scanner) (*models.Submission, error) {
	var (
		id, filename, storedPath, contentType string
		authorsJSON, status                   string
		sequence                              int
		size                                  int64
		meta                                  models.Metadata
		createdAt, updatedAt                  time.Time
		deletedAt                             sql.NullTime
	)

	err := row.Scan(
		&id, &sequence, &filename, &storedPath, &contentType, &size, &authorsJSON,
		&meta.Title, &meta.ArticleType, &meta.Keywords, &meta.Email, &meta.SubmittedDate, &status,
		&createdAt, &updatedAt, &deletedAt,
	)
	if err != nil {
		return nil, err
	}

	var pairs []authors.Pair
	if err := json.Unmarshal([]byte(authorsJSON), &pairs); err != nil {
		return nil, fmt.Errorf("failed to decode authors: %w", err)
	}

	s := models.NewSubmission(filename, storedPath, contentType, size, pairs, meta)
	s.SetID(id)
	s.SetSequence(sequence)
	s.Status = models.SubmissionStatus(status)
	s.SetCreatedAt(createdAt)
	s.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		s.SetDeletedAt(&deletedAt.Time)
	}
	return s, nil
}

func requireAffected(result sql.Result, id string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: submission %s not found or already deleted", shared.ErrNotFound, id)
	}
	return nil
}
