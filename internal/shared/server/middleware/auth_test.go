package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"resume-coach/internal/shared/auth"
)

func newSigner(t *testing.T) *auth.Signer {
	t.Helper()
	s, err := auth.NewSigner("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("signer: %v", err)
	}
	return s
}

func authRouter(t *testing.T, signer *auth.Signer) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Auth(signer, "rc_session"))
	router.GET("/api/me", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"userId": UserIDFromContext(c), "email": UserEmailFromContext(c)})
	})
	router.OPTIONS("/api/me", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return router
}

func TestAuthAllowsOptionsWithoutIdentity(t *testing.T) {
	router := authRouter(t, newSigner(t))
	req := httptest.NewRequest(http.MethodOptions, "/api/me", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.Code)
	}
}

func TestAuthRejectsMissingAndInvalidTokens(t *testing.T) {
	router := authRouter(t, newSigner(t))

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", resp.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 with bad token, got %d", resp.Code)
	}
}

func TestAuthAcceptsBearerAndCookie(t *testing.T) {
	signer := newSigner(t)
	router := authRouter(t, signer)
	token, err := signer.Sign("user-1", "a@example.com", "", "")
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 with bearer, got %d", resp.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.AddCookie(&http.Cookie{Name: "rc_session", Value: token})
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 with cookie, got %d", resp.Code)
	}
}
