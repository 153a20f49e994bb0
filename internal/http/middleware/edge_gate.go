package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/AndrewYakovlev/aso-uni/domain"
	"github.com/AndrewYakovlev/aso-uni/internal/infrastructure/auth"
)

// IdentityKey is the gin context key holding the resolved identity.
const IdentityKey = "identity"

// RouteEnforcer is the policy decision point consulted for protected paths.
// Satisfied by *casbin.Enforcer.
type RouteEnforcer interface {
	Enforce(rvals ...interface{}) (bool, error)
}

// EdgeGate resolves every request's identity once, provisions anonymous
// sessions for first-time visitors and enforces the route policy on
// protected path prefixes.
type EdgeGate struct {
	resolver  domain.SessionResolver
	anonymous domain.AnonymousSessionService
	carrier   domain.CredentialCarrier
	enforcer  RouteEnforcer
	logger    zerolog.Logger

	adminPaths    []string
	authPaths     []string
	excludedPaths []string
}

// NewEdgeGate creates the gate middleware.
func NewEdgeGate(
	resolver domain.SessionResolver,
	anonymous domain.AnonymousSessionService,
	carrier domain.CredentialCarrier,
	enforcer RouteEnforcer,
	adminPaths, authPaths, excludedPaths []string,
	logger zerolog.Logger,
) *EdgeGate {
	return &EdgeGate{
		resolver:      resolver,
		anonymous:     anonymous,
		carrier:       carrier,
		enforcer:      enforcer,
		logger:        logger,
		adminPaths:    adminPaths,
		authPaths:     authPaths,
		excludedPaths: excludedPaths,
	}
}

// Handler returns the gin middleware.
func (g *EdgeGate) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if hasPrefix(path, g.excludedPaths) {
			c.Next()
			return
		}

		creds := g.carrier.Extract(c.Request)
		identity, err := g.resolver.Resolve(c.Request.Context(), creds)
		if err != nil {
			// A store outage must not take anonymous browsing down with it.
			g.logger.Error().Err(err).Str("path", path).Msg("identity resolution failed")
			identity = nil
		}

		if identity == nil {
			identity = g.provision(c)
		}
		if identity != nil {
			c.Set(IdentityKey, identity)
		}

		if hasPrefix(path, g.adminPaths) || hasPrefix(path, g.authPaths) {
			if !g.authorize(c, identity, path) {
				return
			}
		}

		c.Next()
	}
}

// Identity retrieves the resolved identity from the gin context, or nil.
func Identity(c *gin.Context) *domain.Identity {
	v, ok := c.Get(IdentityKey)
	if !ok {
		return nil
	}
	identity, ok := v.(*domain.Identity)
	if !ok {
		return nil
	}
	return identity
}

// provision creates a fresh anonymous session and attaches its cookies. The
// explicit session-create endpoint does its own provisioning, and the
// heartbeat validates the presented credential itself, so neither gets an
// implicit session.
func (g *EdgeGate) provision(c *gin.Context) *domain.Identity {
	if c.Request.Method == http.MethodPost &&
		(c.Request.URL.Path == "/auth/anonymous" || c.Request.URL.Path == "/auth/anonymous/activity") {
		return nil
	}

	session, err := g.anonymous.Provision(c.Request.Context(), c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		g.logger.Error().Err(err).Msg("anonymous session provisioning failed")
		return nil
	}
	g.carrier.AttachSession(c.Writer, session)
	return &domain.Identity{Kind: domain.IdentityAnonymous, Session: session}
}

// authorize enforces the route policy. Returns false when the request has
// been answered.
func (g *EdgeGate) authorize(c *gin.Context, identity *domain.Identity, path string) bool {
	if !identity.IsUser() {
		g.deny(c, http.StatusUnauthorized, "authentication required")
		return false
	}

	allowed, err := g.enforcer.Enforce(auth.RoleSubject(identity.User.Role), path, c.Request.Method)
	if err != nil {
		g.logger.Error().Err(err).Str("path", path).Msg("route policy check failed")
		g.deny(c, http.StatusForbidden, "access denied")
		return false
	}
	if !allowed {
		g.deny(c, http.StatusForbidden, "access denied")
		return false
	}
	return true
}

// deny answers browsers with a redirect to the storefront login prompt and
// API clients with a JSON error.
func (g *EdgeGate) deny(c *gin.Context, status int, message string) {
	if wantsHTML(c.Request) {
		q := url.Values{}
		q.Set("auth", "required")
		q.Set("return", c.Request.URL.Path)
		c.Redirect(http.StatusFound, "/?"+q.Encode())
		c.Abort()
		return
	}
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}

func wantsHTML(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "text/html")
}

func hasPrefix(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if path == p || strings.HasPrefix(path, p+"/") || (strings.HasSuffix(p, "/") && strings.HasPrefix(path, p)) {
			return true
		}
	}
	return false
}
