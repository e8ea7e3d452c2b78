package ratelimit

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// PGLimiter keeps fixed-window counters in the rate_limits table so they can be removed
// in the same transaction as the rest of an account.
type PGLimiter struct {
	DB  *sql.DB
	now func() time.Time
}

func NewPGLimiter(db *sql.DB, now func() time.Time) *PGLimiter {
	if now == nil {
		now = time.Now
	}
	return &PGLimiter{DB: db, now: now}
}

const upsertCounter = `
INSERT INTO rate_limits (key, owner_id, window_start, count, updated_at)
VALUES ($1, $2, $3, 1, $4)
ON CONFLICT (key) DO UPDATE SET
	count = CASE WHEN rate_limits.window_start = EXCLUDED.window_start THEN rate_limits.count + 1 ELSE 1 END,
	window_start = EXCLUDED.window_start,
	updated_at = EXCLUDED.updated_at
RETURNING count`

func (l *PGLimiter) Allow(ctx context.Context, route, identity string, rule Rule) (Decision, error) {
	if l == nil || l.DB == nil || !rule.Enabled() {
		return Decision{Allowed: true}, nil
	}
	now := l.now().UTC()
	windowStart := now.Truncate(rule.Window)

	var count int
	err := l.DB.QueryRowContext(ctx, upsertCounter, Key(route, identity), identity, windowStart, now).Scan(&count)
	if err != nil {
		return Decision{}, fmt.Errorf("rate limit upsert: %w", err)
	}
	if count <= rule.Limit {
		return Decision{Allowed: true}, nil
	}
	return Decision{Allowed: false, RetryAfter: windowStart.Add(rule.Window).Sub(now)}, nil
}

func (l *PGLimiter) Reset(ctx context.Context, identity string, keep ...string) error {
	if l == nil || l.DB == nil {
		return nil
	}
	query, args := ResetQuery(identity, keep...)
	if _, err := l.DB.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("rate limit reset: %w", err)
	}
	return nil
}

// ResetQuery builds the DELETE for an owner's counters, sparing the keep routes. It is shared
// with callers that reset inside their own transaction.
func ResetQuery(identity string, keep ...string) (string, []any) {
	query := `DELETE FROM rate_limits WHERE owner_id = $1`
	args := []any{identity}
	if len(keep) == 0 {
		return query, args
	}
	placeholders := make([]string, len(keep))
	for i, route := range keep {
		args = append(args, Key(route, identity))
		placeholders[i] = "$" + strconv.Itoa(i+2)
	}
	return query + ` AND key NOT IN (` + strings.Join(placeholders, ", ") + `)`, args
}
