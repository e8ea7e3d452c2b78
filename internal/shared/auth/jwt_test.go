package auth

import (
	"errors"
	"testing"
	"time"
)

func TestSignVerifyRoundTrip(t *testing.T) {
	s, err := NewSigner("secret", time.Hour)
	if err != nil {
		t.Fatalf("new signer: %v", err)
	}
	token, err := s.Sign("user-1", "a@example.com", "Ada", "")
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	claims, err := s.Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.Subject != "user-1" || claims.Email != "a@example.com" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestVerifyRejectsExpiredAndForeign(t *testing.T) {
	s, _ := NewSigner("secret", time.Minute)
	base := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return base }
	token, err := s.Sign("user-1", "", "", "")
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	s.now = func() time.Time { return base.Add(2 * time.Minute) }
	if _, err := s.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected expired token rejected, got %v", err)
	}

	other, _ := NewSigner("other", time.Minute)
	other.now = func() time.Time { return base }
	if _, err := other.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected foreign signature rejected, got %v", err)
	}
}

func TestNewSignerRequiresSecret(t *testing.T) {
	if _, err := NewSigner("  ", time.Hour); !errors.Is(err, ErrMissingSecret) {
		t.Fatalf("expected ErrMissingSecret, got %v", err)
	}
}
