package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AndrewYakovlev/aso-uni/domain"
)

func newTestCarrier() *CookieCarrier {
	return NewCookieCarrier(15*time.Minute, 7*24*time.Hour, 365*24*time.Hour, false)
}

func findCookie(t *testing.T, rec *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("cookie %q not set", name)
	return nil
}

func TestExtract_FromCookies(t *testing.T) {
	carrier := newTestCarrier()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieAccessToken, Value: "acc"})
	req.AddCookie(&http.Cookie{Name: CookieRefreshToken, Value: "ref"})
	req.AddCookie(&http.Cookie{Name: CookieAnonymousToken, Value: "anon"})

	creds := carrier.Extract(req)
	assert.Equal(t, "acc", creds.AccessToken)
	assert.Equal(t, "ref", creds.RefreshToken)
	assert.Equal(t, "anon", creds.AnonymousToken)
}

func TestExtract_BearerHeaderWinsOverCookie(t *testing.T) {
	carrier := newTestCarrier()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieAccessToken, Value: "cookie-token"})
	req.Header.Set("Authorization", "Bearer header-token")

	creds := carrier.Extract(req)
	assert.Equal(t, "header-token", creds.AccessToken)
}

func TestExtract_LegacySessionIDFallback(t *testing.T) {
	carrier := newTestCarrier()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieSessionID, Value: "anon_legacy"})

	creds := carrier.Extract(req)
	assert.Equal(t, "anon_legacy", creds.AnonymousToken)

	// The token cookie wins when both are present.
	req.AddCookie(&http.Cookie{Name: CookieAnonymousToken, Value: "tok"})
	creds = carrier.Extract(req)
	assert.Equal(t, "tok", creds.AnonymousToken)
}

func TestAttachUser(t *testing.T) {
	carrier := newTestCarrier()
	rec := httptest.NewRecorder()

	carrier.AttachUser(rec, domain.TokenPair{AccessToken: "acc", RefreshToken: "ref"})

	access := findCookie(t, rec, CookieAccessToken)
	assert.Equal(t, "acc", access.Value)
	assert.True(t, access.HttpOnly)
	assert.Equal(t, int((15 * time.Minute).Seconds()), access.MaxAge)

	refresh := findCookie(t, rec, CookieRefreshToken)
	assert.Equal(t, "ref", refresh.Value)
	assert.Equal(t, int((7 * 24 * time.Hour).Seconds()), refresh.MaxAge)
}

func TestAttachSession(t *testing.T) {
	carrier := newTestCarrier()
	rec := httptest.NewRecorder()

	carrier.AttachSession(rec, &domain.AnonymousSession{Token: "tok", SessionID: "sess"})

	assert.Equal(t, "tok", findCookie(t, rec, CookieAnonymousToken).Value)
	assert.Equal(t, "sess", findCookie(t, rec, CookieSessionID).Value)
}

func TestClearUserAndSession(t *testing.T) {
	carrier := newTestCarrier()
	rec := httptest.NewRecorder()

	carrier.ClearUser(rec)
	carrier.ClearSession(rec)

	for _, name := range []string{CookieAccessToken, CookieRefreshToken, CookieAnonymousToken, CookieSessionID} {
		cookie := findCookie(t, rec, name)
		assert.Empty(t, cookie.Value, name)
		assert.Negative(t, cookie.MaxAge, name)
	}
}

func TestRoundTrip(t *testing.T) {
	carrier := newTestCarrier()
	rec := httptest.NewRecorder()
	carrier.AttachUser(rec, domain.TokenPair{AccessToken: "acc", RefreshToken: "ref"})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}

	creds := carrier.Extract(req)
	require.Equal(t, "acc", creds.AccessToken)
	require.Equal(t, "ref", creds.RefreshToken)
}
