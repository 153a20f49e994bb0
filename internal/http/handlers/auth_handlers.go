package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/AndrewYakovlev/aso-uni/domain"
	"github.com/AndrewYakovlev/aso-uni/internal/http/middleware"
)

// AuthHandlers holds the authentication endpoint handlers.
type AuthHandlers struct {
	auth      domain.AuthService
	otp       domain.OTPService
	anonymous domain.AnonymousSessionService
	users     domain.UserRepository
	owned     domain.OwnedRecordsRepository
	carrier   domain.CredentialCarrier
	logger    zerolog.Logger
}

// NewAuthHandlers creates the authentication handlers.
func NewAuthHandlers(
	auth domain.AuthService,
	otp domain.OTPService,
	anonymous domain.AnonymousSessionService,
	users domain.UserRepository,
	owned domain.OwnedRecordsRepository,
	carrier domain.CredentialCarrier,
	logger zerolog.Logger,
) *AuthHandlers {
	return &AuthHandlers{
		auth:      auth,
		otp:       otp,
		anonymous: anonymous,
		users:     users,
		owned:     owned,
		carrier:   carrier,
		logger:    logger,
	}
}

type sendOTPRequest struct {
	Phone string `json:"phone" binding:"required"`
}

type verifyOTPRequest struct {
	Phone     string `json:"phone" binding:"required"`
	Code      string `json:"code" binding:"required"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// CreateAnonymous handles POST /auth/anonymous. An existing anonymous
// identity is returned as-is; otherwise a fresh session is provisioned and
// its cookies attached.
func (h *AuthHandlers) CreateAnonymous(c *gin.Context) {
	if identity := middleware.Identity(c); identity.IsAnonymous() {
		c.JSON(http.StatusOK, sessionPayload(identity.Session))
		return
	}

	session, err := h.anonymous.Provision(c.Request.Context(), c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		h.logger.Error().Err(err).Msg("anonymous session creation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create session"})
		return
	}
	h.carrier.AttachSession(c.Writer, session)
	c.JSON(http.StatusCreated, sessionPayload(session))
}

// Activity handles POST /auth/anonymous/activity, the storefront's session
// heartbeat. The credential is taken from the request itself rather than the
// resolved identity so that a visitor without a session cookie gets 401
// instead of a freshly provisioned session. A successful heartbeat re-attaches
// the session cookies to push their expiry forward.
func (h *AuthHandlers) Activity(c *gin.Context) {
	creds := h.carrier.Extract(c.Request)
	if creds.AnonymousToken == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "no session"})
		return
	}

	session, err := h.anonymous.Resolve(c.Request.Context(), creds.AnonymousToken)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
			return
		}
		h.logger.Error().Err(err).Msg("activity session lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "heartbeat failed"})
		return
	}

	if err := h.anonymous.Touch(c.Request.Context(), session); err != nil {
		h.logger.Warn().Err(err).Msg("activity heartbeat failed")
	}
	h.carrier.AttachSession(c.Writer, session)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// SendOTP handles POST /auth/send-otp.
func (h *AuthHandlers) SendOTP(c *gin.Context) {
	var req sendOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "phone is required"})
		return
	}

	ttl, err := h.otp.SendCode(c.Request.Context(), req.Phone)
	if err != nil {
		var rate *domain.RateLimitError
		switch {
		case errors.Is(err, domain.ErrInvalidPhone):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid phone number"})
		case errors.As(err, &rate):
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":      "too many requests",
				"retryAfter": int(rate.RetryAfter.Seconds()),
			})
		case errors.Is(err, domain.ErrSMSDelivery):
			h.logger.Error().Err(err).Msg("otp delivery failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not send code"})
		default:
			h.logger.Error().Err(err).Msg("otp send failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not send code"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"expiresIn": int(ttl.Seconds()),
	})
}

// VerifyOTP handles POST /auth/verify-otp: code check, login, identity
// merge and cookie swap from anonymous to user credentials.
func (h *AuthHandlers) VerifyOTP(c *gin.Context) {
	var req verifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "phone and code are required"})
		return
	}

	creds := h.carrier.Extract(c.Request)
	result, err := h.auth.Authenticate(c.Request.Context(), domain.AuthenticateInput{
		Phone:          req.Phone,
		Code:           req.Code,
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Email:          req.Email,
		AnonymousToken: creds.AnonymousToken,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidPhone):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid phone number"})
		case errors.Is(err, domain.ErrTooManyAttempts):
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many attempts, request a new code"})
		case errors.Is(err, domain.ErrInvalidCode):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired code"})
		default:
			h.logger.Error().Err(err).Msg("otp verification failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "verification failed"})
		}
		return
	}

	h.carrier.AttachUser(c.Writer, result.Tokens)
	h.carrier.ClearSession(c.Writer)

	c.JSON(http.StatusOK, gin.H{
		"user":      userPayload(result.User),
		"tokens":    tokensPayload(result.Tokens),
		"isNewUser": result.IsNewUser,
		"merged":    result.Merge.Merged,
	})
}

// Refresh handles POST /auth/refresh. The token comes from the cookie slot
// or, for API clients, the request body.
func (h *AuthHandlers) Refresh(c *gin.Context) {
	token := h.carrier.Extract(c.Request).RefreshToken
	if token == "" {
		var req refreshRequest
		if err := c.ShouldBindJSON(&req); err == nil {
			token = req.RefreshToken
		}
	}
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "refresh token required"})
		return
	}

	result, err := h.auth.Refresh(c.Request.Context(), token)
	if err != nil {
		h.carrier.ClearUser(c.Writer)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid refresh token"})
		return
	}

	h.carrier.AttachUser(c.Writer, result.Tokens)
	c.JSON(http.StatusOK, gin.H{
		"user":      userPayload(result.User),
		"tokens":    tokensPayload(result.Tokens),
		"expiresIn": result.Tokens.ExpiresIn,
	})
}

// Logout handles POST /auth/logout. User credentials are dropped and a
// fresh anonymous session takes their place so the visitor keeps browsing.
func (h *AuthHandlers) Logout(c *gin.Context) {
	h.carrier.ClearUser(c.Writer)

	session, err := h.anonymous.Provision(c.Request.Context(), c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		h.logger.Error().Err(err).Msg("post-logout session provisioning failed")
		h.carrier.ClearSession(c.Writer)
		c.JSON(http.StatusOK, gin.H{"success": true})
		return
	}
	h.carrier.AttachSession(c.Writer, session)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Me handles GET /auth/me: the discriminated current-identity payload.
func (h *AuthHandlers) Me(c *gin.Context) {
	identity := middleware.Identity(c)

	switch {
	case identity.IsUser():
		if err := h.users.TouchActivity(c.Request.Context(), identity.User.ID); err != nil {
			h.logger.Warn().Err(err).Uint("user_id", identity.User.ID).Msg("user activity update failed")
		}
		counts, err := h.owned.UserCounts(c.Request.Context(), identity.User.ID)
		if err != nil {
			h.logger.Warn().Err(err).Uint("user_id", identity.User.ID).Msg("user counts lookup failed")
			counts = &domain.UserCounts{}
		}
		c.JSON(http.StatusOK, gin.H{
			"type": "user",
			"user": userPayload(identity.User),
			"counts": gin.H{
				"favorites":      counts.Favorites,
				"linkedSessions": counts.LinkedSessions,
			},
		})
	case identity.IsAnonymous():
		counts, err := h.owned.SessionCounts(c.Request.Context(), identity.Session.ID)
		if err != nil {
			h.logger.Warn().Err(err).Uint("anonymous_id", identity.Session.ID).Msg("session counts lookup failed")
			counts = &domain.SessionCounts{}
		}
		c.JSON(http.StatusOK, gin.H{
			"type":    "anonymous",
			"session": sessionPayload(identity.Session),
			"counts": gin.H{
				"carts":     counts.Carts,
				"favorites": counts.Favorites,
				"views":     counts.Views,
			},
		})
	default:
		c.JSON(http.StatusOK, gin.H{"type": "none"})
	}
}

func userPayload(user *domain.User) gin.H {
	return gin.H{
		"id":            user.ID,
		"phone":         user.Phone,
		"email":         user.Email,
		"firstName":     user.FirstName,
		"lastName":      user.LastName,
		"role":          user.Role,
		"phoneVerified": user.PhoneVerified,
	}
}

func tokensPayload(tokens domain.TokenPair) gin.H {
	return gin.H{
		"accessToken":  tokens.AccessToken,
		"refreshToken": tokens.RefreshToken,
	}
}

func sessionPayload(session *domain.AnonymousSession) gin.H {
	return gin.H{
		"token":     session.Token,
		"sessionId": session.SessionID,
		"createdAt": session.CreatedAt,
		"linked":    session.Linked(),
	}
}
