package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/AndrewYakovlev/aso-uni/domain"
)

// Cookie slots used by the browser storefront.
const (
	CookieAccessToken    = "aso-access-token"
	CookieRefreshToken   = "aso-refresh-token"
	CookieAnonymousToken = "aso-anonymous-token"
	CookieSessionID      = "aso-session-id"
)

// CookieCarrier implements domain.CredentialCarrier over HTTP cookies, with
// an Authorization Bearer header accepted as an alternative access token
// slot for API clients.
type CookieCarrier struct {
	accessTTL    time.Duration
	refreshTTL   time.Duration
	anonymousTTL time.Duration
	secure       bool
}

// NewCookieCarrier creates a new cookie carrier. secure controls the Secure
// cookie attribute and should be true everywhere except local development.
func NewCookieCarrier(accessTTL, refreshTTL, anonymousTTL time.Duration, secure bool) *CookieCarrier {
	return &CookieCarrier{
		accessTTL:    accessTTL,
		refreshTTL:   refreshTTL,
		anonymousTTL: anonymousTTL,
		secure:       secure,
	}
}

// Extract implements domain.CredentialCarrier. The header wins over the
// cookie for the access slot; the legacy session-id cookie feeds the
// anonymous slot only when the token cookie is absent.
func (c *CookieCarrier) Extract(r *http.Request) domain.Credentials {
	creds := domain.Credentials{
		AccessToken:    cookieValue(r, CookieAccessToken),
		RefreshToken:   cookieValue(r, CookieRefreshToken),
		AnonymousToken: cookieValue(r, CookieAnonymousToken),
	}
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		creds.AccessToken = strings.TrimPrefix(auth, "Bearer ")
	}
	if creds.AnonymousToken == "" {
		creds.AnonymousToken = cookieValue(r, CookieSessionID)
	}
	return creds
}

// AttachSession implements domain.CredentialCarrier.
func (c *CookieCarrier) AttachSession(w http.ResponseWriter, session *domain.AnonymousSession) {
	c.set(w, CookieAnonymousToken, session.Token, c.anonymousTTL)
	c.set(w, CookieSessionID, session.SessionID, c.anonymousTTL)
}

// AttachUser implements domain.CredentialCarrier.
func (c *CookieCarrier) AttachUser(w http.ResponseWriter, pair domain.TokenPair) {
	c.set(w, CookieAccessToken, pair.AccessToken, c.accessTTL)
	c.set(w, CookieRefreshToken, pair.RefreshToken, c.refreshTTL)
}

// ClearSession implements domain.CredentialCarrier.
func (c *CookieCarrier) ClearSession(w http.ResponseWriter) {
	c.clear(w, CookieAnonymousToken)
	c.clear(w, CookieSessionID)
}

// ClearUser implements domain.CredentialCarrier.
func (c *CookieCarrier) ClearUser(w http.ResponseWriter) {
	c.clear(w, CookieAccessToken)
	c.clear(w, CookieRefreshToken)
}

func (c *CookieCarrier) set(w http.ResponseWriter, name, value string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (c *CookieCarrier) clear(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func cookieValue(r *http.Request, name string) string {
	cookie, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return cookie.Value
}
