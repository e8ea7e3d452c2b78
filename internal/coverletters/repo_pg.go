package coverletters

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"resume-coach/internal/schemas"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const selectColumns = `id, owner_id, template_id, job_title, company_name, job_description, content, resume_id, created_at, updated_at`

// Create inserts a new cover letter.
func (r *PGRepo) Create(ctx context.Context, l CoverLetter) error {
	const query = `
INSERT INTO cover_letters (
	id, owner_id, template_id, job_title, company_name, job_description, content, resume_id, created_at, updated_at
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	content, err := json.Marshal(l.Content)
	if err != nil {
		return fmt.Errorf("encode content: %w", err)
	}
	_, err = r.DB.ExecContext(ctx, query,
		l.ID,
		l.OwnerID,
		l.TemplateID,
		l.JobTitle,
		nullString(l.CompanyName),
		nullString(l.JobDescription),
		content,
		nullString(l.ResumeID),
		l.CreatedAt,
		l.UpdatedAt,
	)
	return err
}

// GetForOwner returns the letter only when it belongs to ownerID.
func (r *PGRepo) GetForOwner(ctx context.Context, id, ownerID string) (CoverLetter, error) {
	query := `SELECT ` + selectColumns + ` FROM cover_letters WHERE id = $1 AND owner_id = $2 LIMIT 1`
	l, err := scanLetter(r.DB.QueryRowContext(ctx, query, id, ownerID))
	if errors.Is(err, sql.ErrNoRows) {
		return CoverLetter{}, ErrNotFound
	}
	return l, err
}

// ListByOwner returns letters newest first.
func (r *PGRepo) ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]CoverLetter, error) {
	query := `SELECT ` + selectColumns + ` FROM cover_letters WHERE owner_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.DB.QueryContext(ctx, query, ownerID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]CoverLetter, 0)
	for rows.Next() {
		l, err := scanLetter(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// UpdateContent compares and sets in one statement so two writers holding the same
// updatedAt cannot both succeed.
func (r *PGRepo) UpdateContent(ctx context.Context, id, ownerID string, content schemas.CoverLetterContent, expected, at time.Time) error {
	const query = `
UPDATE cover_letters
SET content = $3, updated_at = $4
WHERE id = $1 AND owner_id = $2 AND updated_at = $5`
	payload, err := json.Marshal(content)
	if err != nil {
		return fmt.Errorf("encode content: %w", err)
	}
	res, err := r.DB.ExecContext(ctx, query, id, ownerID, payload, at, expected)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 1 {
		return nil
	}
	var exists int
	err = r.DB.QueryRowContext(ctx, `SELECT 1 FROM cover_letters WHERE id = $1 AND owner_id = $2`, id, ownerID).Scan(&exists)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return ErrNotFound
	case err != nil:
		return err
	}
	return ErrConflict
}

// ReplaceContent overwrites the content without a version check.
func (r *PGRepo) ReplaceContent(ctx context.Context, id, ownerID string, content schemas.CoverLetterContent, at time.Time) error {
	const query = `
UPDATE cover_letters
SET content = $3, updated_at = $4
WHERE id = $1 AND owner_id = $2`
	payload, err := json.Marshal(content)
	if err != nil {
		return fmt.Errorf("encode content: %w", err)
	}
	res, err := r.DB.ExecContext(ctx, query, id, ownerID, payload, at)
	if err != nil {
		return err
	}
	return expectOne(res)
}

// Delete removes the letter when it belongs to ownerID.
func (r *PGRepo) Delete(ctx context.Context, id, ownerID string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM cover_letters WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return err
	}
	return expectOne(res)
}

// DeleteByOwner removes every letter of ownerID.
func (r *PGRepo) DeleteByOwner(ctx context.Context, ownerID string) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM cover_letters WHERE owner_id = $1`, ownerID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLetter(row rowScanner) (CoverLetter, error) {
	var l CoverLetter
	var companyName, jobDescription, resumeID sql.NullString
	var content []byte
	if err := row.Scan(
		&l.ID,
		&l.OwnerID,
		&l.TemplateID,
		&l.JobTitle,
		&companyName,
		&jobDescription,
		&content,
		&resumeID,
		&l.CreatedAt,
		&l.UpdatedAt,
	); err != nil {
		return CoverLetter{}, err
	}
	if err := json.Unmarshal(content, &l.Content); err != nil {
		return CoverLetter{}, fmt.Errorf("decode content: %w", err)
	}
	l.CompanyName = companyName.String
	l.JobDescription = jobDescription.String
	l.ResumeID = resumeID.String
	return l, nil
}

func expectOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
