package outreach

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

const selectColumns = `id, owner_id, channel, tone, job_title, company_name, recipient_name, subject, content, context, created_at, updated_at`

// Create inserts a new message.
func (r *PGRepo) Create(ctx context.Context, m Message) error {
	const query = `
INSERT INTO outreach (
	id, owner_id, channel, tone, job_title, company_name, recipient_name, subject, content, context, created_at, updated_at
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	snapshot, err := json.Marshal(m.Context)
	if err != nil {
		return fmt.Errorf("encode context: %w", err)
	}
	_, err = r.DB.ExecContext(ctx, query,
		m.ID,
		m.OwnerID,
		m.Channel,
		m.Tone,
		m.JobTitle,
		nullString(m.CompanyName),
		nullString(m.RecipientName),
		nullString(m.Subject),
		m.Content,
		snapshot,
		m.CreatedAt,
		m.UpdatedAt,
	)
	return err
}

// GetForOwner returns the message only when it belongs to ownerID.
func (r *PGRepo) GetForOwner(ctx context.Context, id, ownerID string) (Message, error) {
	query := `SELECT ` + selectColumns + ` FROM outreach WHERE id = $1 AND owner_id = $2 LIMIT 1`
	m, err := scanMessage(r.DB.QueryRowContext(ctx, query, id, ownerID))
	if errors.Is(err, sql.ErrNoRows) {
		return Message{}, ErrNotFound
	}
	return m, err
}

// ListByOwner returns messages newest first.
func (r *PGRepo) ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]Message, error) {
	query := `SELECT ` + selectColumns + ` FROM outreach WHERE owner_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.DB.QueryContext(ctx, query, ownerID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Message, 0)
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// UpdateGenerated replaces content and subject. The context column is never rewritten.
func (r *PGRepo) UpdateGenerated(ctx context.Context, id, ownerID, content, subject string, at time.Time) error {
	const query = `
UPDATE outreach
SET content = $3, subject = $4, updated_at = $5
WHERE id = $1 AND owner_id = $2`
	res, err := r.DB.ExecContext(ctx, query, id, ownerID, content, nullString(subject), at)
	if err != nil {
		return err
	}
	return expectOne(res)
}

// Delete removes the message when it belongs to ownerID.
func (r *PGRepo) Delete(ctx context.Context, id, ownerID string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM outreach WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return err
	}
	return expectOne(res)
}

// DeleteByOwner removes every message of ownerID.
func (r *PGRepo) DeleteByOwner(ctx context.Context, ownerID string) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM outreach WHERE owner_id = $1`, ownerID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMessage(row rowScanner) (Message, error) {
	var m Message
	var companyName, recipientName, subject sql.NullString
	var snapshot []byte
	if err := row.Scan(
		&m.ID,
		&m.OwnerID,
		&m.Channel,
		&m.Tone,
		&m.JobTitle,
		&companyName,
		&recipientName,
		&subject,
		&m.Content,
		&snapshot,
		&m.CreatedAt,
		&m.UpdatedAt,
	); err != nil {
		return Message{}, err
	}
	if len(snapshot) > 0 {
		if err := json.Unmarshal(snapshot, &m.Context); err != nil {
			return Message{}, fmt.Errorf("decode context: %w", err)
		}
	}
	m.CompanyName = companyName.String
	m.RecipientName = recipientName.String
	m.Subject = subject.String
	return m, nil
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
