package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"resume-coach/internal/shared/server/respond"
	"resume-coach/internal/shared/telemetry"
	"resume-coach/internal/users"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// TokenSigner issues session tokens.
type TokenSigner interface {
	Sign(subject, email, name, picture string) (string, error)
}

// UserStore records identities returned by the provider.
type UserStore interface {
	UpsertFromAuth(ctx context.Context, user users.User) error
}

// Session controls the cookie that carries the session token.
type Session struct {
	CookieName string
	TTL        time.Duration
	Secure     bool
}

// GoogleService handles Google OAuth flows.
type GoogleService struct {
	oauthConfig *oauth2.Config
	uiRedirect  string
	userInfoURL string
	stateTTL    time.Duration
	stateStore  *stateStore
	signer      TokenSigner
	users       UserStore
	session     Session
}

// NewGoogleService builds a GoogleService.
func NewGoogleService(clientID, clientSecret, redirectURL, uiRedirect string, signer TokenSigner, store UserStore, session Session) *GoogleService {
	return &GoogleService{
		oauthConfig: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: google.Endpoint,
		},
		uiRedirect:  uiRedirect,
		userInfoURL: googleUserInfoURL,
		stateTTL:    5 * time.Minute,
		stateStore:  newStateStore(),
		signer:      signer,
		users:       store,
		session:     session,
	}
}

// RegisterRoutes attaches Google auth routes.
func (s *GoogleService) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/auth/google/start", s.start)
	rg.GET("/auth/google/callback", s.callback)
	rg.POST("/auth/logout", s.logout)
}

func (s *GoogleService) configured() bool {
	return s.oauthConfig.ClientID != "" && s.oauthConfig.ClientSecret != "" && s.oauthConfig.RedirectURL != "" && s.signer != nil
}

func (s *GoogleService) start(c *gin.Context) {
	if !s.configured() {
		respond.Error(c, http.StatusServiceUnavailable, "auth_not_configured", "Google sign-in is not configured")
		return
	}

	state := uuid.NewString()
	s.stateStore.put(state, time.Now().Add(s.stateTTL))
	c.Redirect(http.StatusFound, s.oauthConfig.AuthCodeURL(state))
}

func (s *GoogleService) callback(c *gin.Context) {
	state := c.Query("state")
	code := c.Query("code")
	if state == "" || code == "" {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "missing state or code")
		return
	}
	if !s.stateStore.consume(state) {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "invalid or expired state")
		return
	}
	if !s.configured() {
		respond.Error(c, http.StatusServiceUnavailable, "auth_not_configured", "Google sign-in is not configured")
		return
	}

	ctx := c.Request.Context()
	token, err := s.oauthConfig.Exchange(ctx, code)
	if err != nil {
		telemetry.Warn("auth.exchange_failed", map[string]any{"error": err})
		respond.Error(c, http.StatusBadRequest, "invalid_request", "failed to exchange code")
		return
	}

	info, err := s.fetchUserInfo(ctx, token)
	if err != nil || info.Sub == "" {
		telemetry.Warn("auth.userinfo_failed", map[string]any{"error": err})
		respond.Error(c, http.StatusBadGateway, "auth_failed", "failed to fetch user profile")
		return
	}

	subject := "google:" + info.Sub
	if s.users != nil {
		err := s.users.UpsertFromAuth(ctx, users.User{
			ID:         subject,
			Email:      info.Email,
			FullName:   info.Name,
			GivenName:  info.GivenName,
			FamilyName: info.FamilyName,
			PictureURL: info.Picture,
		})
		if err != nil {
			telemetry.Error("auth.user_upsert_failed", map[string]any{"user_id": subject, "error": err})
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to save user")
			return
		}
	}

	jwt, err := s.signer.Sign(subject, info.Email, info.Name, info.Picture)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to issue token")
		return
	}
	redirectURL, err := appendToken(s.uiRedirect, jwt)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to redirect")
		return
	}

	s.setCookie(c, jwt, int(s.session.TTL.Seconds()))
	telemetry.Info("auth.login", map[string]any{"user_id": subject})
	c.Redirect(http.StatusFound, redirectURL)
}

func (s *GoogleService) logout(c *gin.Context) {
	s.setCookie(c, "", -1)
	respond.Success(c, http.StatusOK, gin.H{})
}

func (s *GoogleService) setCookie(c *gin.Context, value string, maxAge int) {
	if s.session.CookieName == "" {
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(s.session.CookieName, value, maxAge, "/", "", s.session.Secure, true)
}

type googleUserInfo struct {
	Sub        string `json:"sub"`
	ID         string `json:"id"`
	Email      string `json:"email"`
	Name       string `json:"name"`
	GivenName  string `json:"given_name"`
	FamilyName string `json:"family_name"`
	Picture    string `json:"picture"`
}

func (s *GoogleService) fetchUserInfo(ctx context.Context, token *oauth2.Token) (googleUserInfo, error) {
	client := s.oauthConfig.Client(ctx, token)
	resp, err := client.Get(s.userInfoURL)
	if err != nil {
		return googleUserInfo{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return googleUserInfo{}, fmt.Errorf("userinfo status %d", resp.StatusCode)
	}

	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return googleUserInfo{}, err
	}

	// v2 userinfo returns "id" rather than "sub".
	if info.Sub == "" {
		info.Sub = info.ID
	}
	return info, nil
}

type stateStore struct {
	items map[string]time.Time
	mu    sync.Mutex
}

func newStateStore() *stateStore {
	return &stateStore{items: make(map[string]time.Time)}
}

func (s *stateStore) put(state string, exp time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for k, v := range s.items {
		if now.After(v) {
			delete(s.items, k)
		}
	}
	s.items[state] = exp
}

func (s *stateStore) consume(state string) bool {
	s.mu.Lock()
	exp, ok := s.items[state]
	if ok {
		delete(s.items, state)
	}
	s.mu.Unlock()
	return ok && !time.Now().After(exp)
}

func appendToken(rawURL, token string) (string, error) {
	if rawURL == "" {
		return "", errors.New("redirect url required")
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
