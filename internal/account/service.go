package account

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"resume-coach/internal/analyses"
	"resume-coach/internal/coverletters"
	"resume-coach/internal/outreach"
	"resume-coach/internal/ratelimit"
	"resume-coach/internal/shared/telemetry"
)

// Service removes everything a user owns.
type Service struct {
	Analyses     analyses.Repo
	CoverLetters coverletters.Repo
	Outreach     outreach.Repo
	Limiter      ratelimit.Limiter
}

// WipeResult counts deleted rows per entity.
type WipeResult struct {
	DeletedResumes      int64 `json:"deletedResumes"`
	DeletedCoverLetters int64 `json:"deletedCoverLetters"`
	DeletedOutreach     int64 `json:"deletedOutreach"`
}

func NewService(a analyses.Repo, c coverletters.Repo, o outreach.Repo, limiter ratelimit.Limiter) *Service {
	return &Service{Analyses: a, CoverLetters: c, Outreach: o, Limiter: limiter}
}

// Wipe deletes the owner's résumés, cover letters, outreach messages and rate-limit counters.
// The caller's own wipe counter survives so the wipe quota still applies. With Postgres repos
// it runs in one transaction.
func (s *Service) Wipe(ctx context.Context, ownerID string) (WipeResult, error) {
	if strings.TrimSpace(ownerID) == "" {
		return WipeResult{}, errors.New("ownerID is required")
	}

	var result WipeResult
	var err error
	if db := s.sharedDB(); db != nil {
		result, err = wipeWithTx(ctx, db, ownerID)
		if err == nil && !s.limiterOn(db) {
			err = s.resetLimiter(ctx, ownerID)
		}
	} else {
		result, err = s.wipeSequential(ctx, ownerID)
	}
	if err != nil {
		telemetry.Error("account.wipe_failed", map[string]any{"user_id": ownerID, "error": err})
		return WipeResult{}, err
	}
	telemetry.Info("account.wiped", map[string]any{
		"user_id":       ownerID,
		"resumes":       result.DeletedResumes,
		"cover_letters": result.DeletedCoverLetters,
		"outreach":      result.DeletedOutreach,
	})
	return result, nil
}

// sharedDB returns the database when every repo is Postgres-backed on the same pool.
func (s *Service) sharedDB() *sql.DB {
	a, ok := s.Analyses.(*analyses.PGRepo)
	if !ok || a == nil || a.DB == nil {
		return nil
	}
	c, ok := s.CoverLetters.(*coverletters.PGRepo)
	if !ok || c == nil || c.DB != a.DB {
		return nil
	}
	o, ok := s.Outreach.(*outreach.PGRepo)
	if !ok || o == nil || o.DB != a.DB {
		return nil
	}
	return a.DB
}

// limiterOn reports whether the limiter stores its counters in db, in which case the wipe
// transaction already cleared them.
func (s *Service) limiterOn(db *sql.DB) bool {
	pg, ok := s.Limiter.(*ratelimit.PGLimiter)
	return ok && pg != nil && pg.DB == db
}

func (s *Service) resetLimiter(ctx context.Context, ownerID string) error {
	if s.Limiter == nil {
		return nil
	}
	if err := s.Limiter.Reset(ctx, ownerID, ratelimit.RouteWipe); err != nil {
		return fmt.Errorf("wipe: %w", err)
	}
	return nil
}

func wipeWithTx(ctx context.Context, db *sql.DB, ownerID string) (WipeResult, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return WipeResult{}, err
	}
	defer tx.Rollback()

	var result WipeResult
	limitsQuery, limitsArgs := ratelimit.ResetQuery(ownerID, ratelimit.RouteWipe)
	steps := []struct {
		query string
		args  []any
		count *int64
	}{
		{`DELETE FROM resume_analyses WHERE owner_id = $1`, []any{ownerID}, &result.DeletedResumes},
		{`DELETE FROM cover_letters WHERE owner_id = $1`, []any{ownerID}, &result.DeletedCoverLetters},
		{`DELETE FROM outreach WHERE owner_id = $1`, []any{ownerID}, &result.DeletedOutreach},
		{limitsQuery, limitsArgs, nil},
	}
	for _, step := range steps {
		res, err := tx.ExecContext(ctx, step.query, step.args...)
		if err != nil {
			return WipeResult{}, fmt.Errorf("wipe: %w", err)
		}
		if step.count == nil {
			continue
		}
		n, err := res.RowsAffected()
		if err != nil {
			return WipeResult{}, fmt.Errorf("wipe: %w", err)
		}
		*step.count = n
	}
	if err := tx.Commit(); err != nil {
		return WipeResult{}, err
	}
	return result, nil
}

func (s *Service) wipeSequential(ctx context.Context, ownerID string) (WipeResult, error) {
	var result WipeResult
	var err error
	if s.Analyses != nil {
		if result.DeletedResumes, err = s.Analyses.DeleteByOwner(ctx, ownerID); err != nil {
			return WipeResult{}, err
		}
	}
	if s.CoverLetters != nil {
		if result.DeletedCoverLetters, err = s.CoverLetters.DeleteByOwner(ctx, ownerID); err != nil {
			return WipeResult{}, err
		}
	}
	if s.Outreach != nil {
		if result.DeletedOutreach, err = s.Outreach.DeleteByOwner(ctx, ownerID); err != nil {
			return WipeResult{}, err
		}
	}
	if err := s.resetLimiter(ctx, ownerID); err != nil {
		return WipeResult{}, err
	}
	return result, nil
}
