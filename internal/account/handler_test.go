package account

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"resume-coach/internal/analyses"
	"resume-coach/internal/coverletters"
	"resume-coach/internal/outreach"
	"resume-coach/internal/ratelimit"
	"resume-coach/internal/shared/server/middleware"
)

func TestWipeDeletesOnlyCallerData(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ctx := context.Background()
	now := time.Now().UTC()

	analysisRepo := analyses.NewMemoryRepo()
	letterRepo := coverletters.NewMemoryRepo()
	outreachRepo := outreach.NewMemoryRepo()
	limiter := ratelimit.NewMemoryLimiter(func() time.Time { return now })

	for _, owner := range []string{"user-1", "user-2"} {
		_ = analysisRepo.Create(ctx, analyses.Analysis{ID: "an-" + owner, OwnerID: owner, CreatedAt: now})
		_ = letterRepo.Create(ctx, coverletters.CoverLetter{ID: "cl-" + owner, OwnerID: owner, CreatedAt: now})
		_ = outreachRepo.Create(ctx, outreach.Message{ID: "or-" + owner, OwnerID: owner, CreatedAt: now})
	}
	rule := ratelimit.Rule{Limit: 1, Window: time.Hour}
	_, _ = limiter.Allow(ctx, ratelimit.RouteAnalyze, "user-1", rule)

	svc := NewService(analysisRepo, letterRepo, outreachRepo, limiter)
	gate := middleware.Gate{Auth: func(c *gin.Context) {
		c.Set("userId", "user-1")
		c.Next()
	}}
	router := gin.New()
	NewHandler(svc, gate).RegisterRoutes(router.Group("/api"))

	req := httptest.NewRequest(http.MethodDelete, "/api/user/wipe", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var out struct {
		Success bool       `json:"success"`
		Deleted WipeResult `json:"deleted"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !out.Success || out.Deleted.DeletedResumes != 1 || out.Deleted.DeletedCoverLetters != 1 || out.Deleted.DeletedOutreach != 1 {
		t.Fatalf("unexpected body %s", resp.Body.String())
	}

	if _, err := analysisRepo.GetForOwner(ctx, "an-user-1", "user-1"); err == nil {
		t.Fatalf("caller analysis should be gone")
	}
	if _, err := analysisRepo.GetForOwner(ctx, "an-user-2", "user-2"); err != nil {
		t.Fatalf("other user's analysis must survive: %v", err)
	}
	if _, err := letterRepo.GetForOwner(ctx, "cl-user-2", "user-2"); err != nil {
		t.Fatalf("other user's letter must survive: %v", err)
	}
	if _, err := outreachRepo.GetForOwner(ctx, "or-user-1", "user-1"); err == nil {
		t.Fatalf("caller outreach should be gone")
	}

	decision, _ := limiter.Allow(ctx, ratelimit.RouteAnalyze, "user-1", rule)
	if !decision.Allowed {
		t.Fatalf("expected rate-limit counters to be reset")
	}
}

func TestWipeQuotaSurvivesWipes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	now := time.Date(2026, time.January, 1, 9, 0, 0, 0, time.UTC)
	limiter := ratelimit.NewMemoryLimiter(func() time.Time { return now })

	svc := NewService(analyses.NewMemoryRepo(), coverletters.NewMemoryRepo(), outreach.NewMemoryRepo(), limiter)
	gate := middleware.Gate{
		Auth: func(c *gin.Context) {
			c.Set("userId", "user-1")
			c.Next()
		},
		Limiter: limiter,
		Rules:   ratelimit.DefaultRules(),
	}
	router := gin.New()
	NewHandler(svc, gate).RegisterRoutes(router.Group("/api"))

	want := []int{http.StatusOK, http.StatusOK, http.StatusOK, http.StatusTooManyRequests}
	for i, code := range want {
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, httptest.NewRequest(http.MethodDelete, "/api/user/wipe", nil))
		if resp.Code != code {
			t.Fatalf("wipe %d: expected %d, got %d: %s", i+1, code, resp.Code, resp.Body.String())
		}
	}
}
