package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AndrewYakovlev/aso-uni/domain"
	"github.com/AndrewYakovlev/aso-uni/mocks"
)

type stubEnforcer struct {
	allow bool
	calls [][]interface{}
}

func (s *stubEnforcer) Enforce(rvals ...interface{}) (bool, error) {
	s.calls = append(s.calls, rvals)
	return s.allow, nil
}

type gateFixture struct {
	resolver  *mocks.MockSessionResolver
	anonymous *mocks.MockAnonymousService
	enforcer  *stubEnforcer
	router    *gin.Engine
}

func newGateFixture(t *testing.T) *gateFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	f := &gateFixture{
		resolver:  &mocks.MockSessionResolver{},
		anonymous: &mocks.MockAnonymousService{},
		enforcer:  &stubEnforcer{allow: true},
	}
	carrier := NewCookieCarrier(15*time.Minute, 7*24*time.Hour, 365*24*time.Hour, false)
	gate := NewEdgeGate(
		f.resolver, f.anonymous, carrier, f.enforcer,
		[]string{"/panel"}, []string{"/profile"}, []string{"/health"},
		zerolog.Nop(),
	)

	f.router = gin.New()
	f.router.Use(gate.Handler())
	ok := func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) }
	f.router.GET("/health", ok)
	f.router.GET("/", ok)
	f.router.GET("/profile", ok)
	f.router.GET("/panel/dashboard", ok)
	f.router.POST("/auth/anonymous", ok)
	return f
}

func (f *gateFixture) userIdentity(role domain.UserRole) {
	f.resolver.ResolveFunc = func(ctx context.Context, creds domain.Credentials) (*domain.Identity, error) {
		return &domain.Identity{Kind: domain.IdentityUser, User: &domain.User{ID: 1, Role: role}}, nil
	}
}

func TestGate_ExcludedPathSkipsResolution(t *testing.T) {
	f := newGateFixture(t)
	f.resolver.ResolveFunc = func(ctx context.Context, creds domain.Credentials) (*domain.Identity, error) {
		t.Fatal("resolver must not run on excluded paths")
		return nil, nil
	}

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGate_ProvisionsSessionForNewVisitor(t *testing.T) {
	f := newGateFixture(t)
	f.anonymous.ProvisionFunc = func(ctx context.Context, ip, agent string) (*domain.AnonymousSession, error) {
		return &domain.AnonymousSession{ID: 1, Token: "fresh-token", SessionID: "fresh-session"}, nil
	}

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	cookies := rec.Result().Cookies()
	values := map[string]string{}
	for _, c := range cookies {
		values[c.Name] = c.Value
	}
	assert.Equal(t, "fresh-token", values[CookieAnonymousToken])
	assert.Equal(t, "fresh-session", values[CookieSessionID])
}

func TestGate_KnownSessionIsNotReprovisioned(t *testing.T) {
	f := newGateFixture(t)
	f.resolver.ResolveFunc = func(ctx context.Context, creds domain.Credentials) (*domain.Identity, error) {
		return &domain.Identity{
			Kind:    domain.IdentityAnonymous,
			Session: &domain.AnonymousSession{ID: 1, Token: creds.AnonymousToken},
		}, nil
	}
	f.anonymous.ProvisionFunc = func(ctx context.Context, ip, agent string) (*domain.AnonymousSession, error) {
		t.Fatal("existing session must not be replaced")
		return nil, nil
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieAnonymousToken, Value: "existing"})
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Result().Cookies())
}

func TestGate_SessionCreateEndpointIsNotPreProvisioned(t *testing.T) {
	f := newGateFixture(t)
	f.anonymous.ProvisionFunc = func(ctx context.Context, ip, agent string) (*domain.AnonymousSession, error) {
		t.Fatal("the create endpoint provisions for itself")
		return nil, nil
	}

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/anonymous", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGate_HeartbeatIsNotPreProvisioned(t *testing.T) {
	f := newGateFixture(t)
	f.anonymous.ProvisionFunc = func(ctx context.Context, ip, agent string) (*domain.AnonymousSession, error) {
		t.Fatal("a heartbeat without a credential must not spawn a session")
		return nil, nil
	}
	f.router.POST("/auth/anonymous/activity", func(c *gin.Context) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "no session"})
	})

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/anonymous/activity", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, rec.Result().Cookies(), "no session cookies may be handed out")
}

func TestGate_ProtectedPathRejectsAnonymous(t *testing.T) {
	f := newGateFixture(t)
	f.resolver.ResolveFunc = func(ctx context.Context, creds domain.Credentials) (*domain.Identity, error) {
		return &domain.Identity{Kind: domain.IdentityAnonymous, Session: &domain.AnonymousSession{ID: 1}}, nil
	}

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/profile", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGate_BrowserGetsRedirectInsteadOfJSON(t *testing.T) {
	f := newGateFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/panel/dashboard", nil)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusFound, rec.Code)
	location := rec.Header().Get("Location")
	assert.Contains(t, location, "auth=required")
	assert.Contains(t, location, "return=%2Fpanel%2Fdashboard")
}

func TestGate_PolicyDenyIsForbidden(t *testing.T) {
	f := newGateFixture(t)
	f.userIdentity(domain.RoleCustomer)
	f.enforcer.allow = false

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/panel/dashboard", nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	require.Len(t, f.enforcer.calls, 1)
	assert.Equal(t, []interface{}{"role_customer", "/panel/dashboard", "GET"}, f.enforcer.calls[0])
}

func TestGate_AdminPassesPolicy(t *testing.T) {
	f := newGateFixture(t)
	f.userIdentity(domain.RoleAdmin)

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/panel/dashboard", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	require.Len(t, f.enforcer.calls, 1)
	assert.Equal(t, "role_admin", f.enforcer.calls[0][0])
}

func TestGate_ResolverOutageDegradesToAnonymous(t *testing.T) {
	f := newGateFixture(t)
	f.resolver.ResolveFunc = func(ctx context.Context, creds domain.Credentials) (*domain.Identity, error) {
		return nil, context.DeadlineExceeded
	}
	f.anonymous.ProvisionFunc = func(ctx context.Context, ip, agent string) (*domain.AnonymousSession, error) {
		return &domain.AnonymousSession{ID: 1, Token: "t", SessionID: "s"}, nil
	}

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
