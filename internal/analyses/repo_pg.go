package analyses

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a new analysis.
func (r *PGRepo) Create(ctx context.Context, a Analysis) error {
	const query = `
INSERT INTO resume_analyses (
	id, owner_id, job_title, job_description, company_name, resume_markdown,
	feedback, preview_image, latex_content, created_at, updated_at
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	feedback, err := json.Marshal(a.Feedback)
	if err != nil {
		return fmt.Errorf("encode feedback: %w", err)
	}
	_, err = r.DB.ExecContext(ctx, query,
		a.ID,
		a.OwnerID,
		a.JobTitle,
		a.JobDescription,
		nullString(a.CompanyName),
		a.ResumeMarkdown,
		feedback,
		nullString(a.PreviewImage),
		nullString(a.LatexContent),
		a.CreatedAt,
		a.UpdatedAt,
	)
	return err
}

// GetForOwner returns the analysis only when it belongs to ownerID.
func (r *PGRepo) GetForOwner(ctx context.Context, id, ownerID string) (Analysis, error) {
	const query = `
SELECT id, owner_id, job_title, job_description, company_name, resume_markdown,
       feedback, preview_image, latex_content, created_at, updated_at
FROM resume_analyses
WHERE id = $1 AND owner_id = $2
LIMIT 1`
	var a Analysis
	var companyName, previewImage, latexContent sql.NullString
	var feedback []byte
	err := r.DB.QueryRowContext(ctx, query, id, ownerID).Scan(
		&a.ID,
		&a.OwnerID,
		&a.JobTitle,
		&a.JobDescription,
		&companyName,
		&a.ResumeMarkdown,
		&feedback,
		&previewImage,
		&latexContent,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Analysis{}, ErrNotFound
		}
		return Analysis{}, err
	}
	if err := json.Unmarshal(feedback, &a.Feedback); err != nil {
		return Analysis{}, fmt.Errorf("decode feedback: %w", err)
	}
	a.CompanyName = companyName.String
	a.PreviewImage = previewImage.String
	a.LatexContent = latexContent.String
	return a, nil
}

// ListByOwner returns summaries newest first.
func (r *PGRepo) ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]Summary, error) {
	const query = `
SELECT id, job_title, company_name, COALESCE((feedback->>'overallScore')::float8, 0),
       latex_content IS NOT NULL, created_at
FROM resume_analyses
WHERE owner_id = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`
	rows, err := r.DB.QueryContext(ctx, query, ownerID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Summary, 0)
	for rows.Next() {
		var s Summary
		var companyName sql.NullString
		if err := rows.Scan(&s.ID, &s.JobTitle, &companyName, &s.OverallScore, &s.HasLatex, &s.CreatedAt); err != nil {
			return nil, err
		}
		s.CompanyName = companyName.String
		out = append(out, s)
	}
	return out, rows.Err()
}

// UpdateLatex stores editor LaTeX on the analysis.
func (r *PGRepo) UpdateLatex(ctx context.Context, id, ownerID, latex string, at time.Time) error {
	const query = `
UPDATE resume_analyses
SET latex_content = $3, updated_at = $4
WHERE id = $1 AND owner_id = $2`
	res, err := r.DB.ExecContext(ctx, query, id, ownerID, latex, at)
	if err != nil {
		return err
	}
	return expectOne(res)
}

// Delete removes the analysis when it belongs to ownerID.
func (r *PGRepo) Delete(ctx context.Context, id, ownerID string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM resume_analyses WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return err
	}
	return expectOne(res)
}

// DeleteByOwner removes every analysis of ownerID.
func (r *PGRepo) DeleteByOwner(ctx context.Context, ownerID string) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM resume_analyses WHERE owner_id = $1`, ownerID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
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
