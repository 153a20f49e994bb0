package app

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/AndrewYakovlev/aso-uni/domain"
	"github.com/AndrewYakovlev/aso-uni/internal/config"
	apphttp "github.com/AndrewYakovlev/aso-uni/internal/http"
	"github.com/AndrewYakovlev/aso-uni/internal/http/handlers"
	"github.com/AndrewYakovlev/aso-uni/internal/http/middleware"
	"github.com/AndrewYakovlev/aso-uni/internal/infrastructure/auth"
	"github.com/AndrewYakovlev/aso-uni/internal/infrastructure/cache"
	"github.com/AndrewYakovlev/aso-uni/internal/infrastructure/notifications"
	"github.com/AndrewYakovlev/aso-uni/internal/infrastructure/repositories"
	"github.com/AndrewYakovlev/aso-uni/internal/services"
)

// Container holds every wired component of the service.
type Container struct {
	Config *config.Config
	Logger zerolog.Logger
	DB     *gorm.DB
	Redis  *redis.Client

	Users    domain.UserRepository
	Sessions domain.AnonymousSessionRepository
	Codes    domain.OtpCodeRepository
	Owned    domain.OwnedRecordsRepository

	Tokens    domain.TokenService
	Limiter   domain.RateLimiter
	SMS       domain.SMSSender
	OTP       domain.OTPService
	Auth      domain.AuthService
	Anonymous domain.AnonymousSessionService
	Resolver  domain.SessionResolver

	Casbin  *auth.CasbinService
	Carrier domain.CredentialCarrier
	Router  *gin.Engine
}

// BuildContainer wires the full dependency graph on top of already opened
// database and redis handles.
func BuildContainer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, logger zerolog.Logger) (*Container, error) {
	c := &Container{
		Config: cfg,
		Logger: logger,
		DB:     db,
		Redis:  redisClient,
	}

	c.Users = repositories.NewUserRepository(db)
	c.Sessions = repositories.NewAnonymousSessionRepository(db)
	c.Codes = repositories.NewOtpCodeRepository(db)
	c.Owned = repositories.NewOwnedRecordsRepository(db, c.Sessions, cfg.MaxCartItemQty)

	c.Tokens = auth.NewJWTService(cfg.AccessSecret, cfg.RefreshSecret, cfg.JWTIssuer, cfg.AccessTTL, cfg.RefreshTTL)
	c.Limiter = cache.NewRedisRateLimiter(redisClient)
	c.SMS = notifications.NewTwilioSender(cfg.TwilioSID, cfg.TwilioToken, cfg.TwilioFrom, logger)

	c.OTP = services.NewOTPService(c.Codes, c.Limiter, c.SMS, services.OTPConfig{
		Length:        cfg.OTPLength,
		TTL:           cfg.OTPTTL,
		MaxAttempts:   cfg.OTPMaxAttempts,
		SendCooldown:  cfg.SendCooldown,
		SendWindow:    cfg.SendWindow,
		SendWindowMax: cfg.SendWindowMax,
		SMSTimeout:    cfg.SMSTimeout,
	}, logger)
	c.Anonymous = services.NewAnonymousService(c.Sessions, c.Limiter, cfg.ActivityThrottle, logger)
	c.Auth = services.NewAuthService(c.OTP, c.Users, c.Anonymous, c.Owned, c.Tokens, logger)
	c.Resolver = services.NewSessionResolver(c.Tokens, c.Users, c.Anonymous, logger)

	casbinSvc, err := auth.NewCasbinService(db)
	if err != nil {
		return nil, err
	}
	if err := casbinSvc.SeedDefaultPolicies(); err != nil {
		return nil, err
	}
	c.Casbin = casbinSvc

	c.Carrier = middleware.NewCookieCarrier(cfg.AccessTTL, cfg.RefreshTTL, cfg.AnonymousTTL, cfg.GinMode == "release")

	gate := middleware.NewEdgeGate(c.Resolver, c.Anonymous, c.Carrier, casbinSvc.E, cfg.AdminPaths, cfg.AuthPaths, cfg.ExcludedPaths, logger)
	authHandlers := handlers.NewAuthHandlers(c.Auth, c.OTP, c.Anonymous, c.Users, c.Owned, c.Carrier, logger)
	protectedHandlers := handlers.NewProtectedHandlers(c.Owned)

	c.Router = apphttp.NewRouter(gate, authHandlers, protectedHandlers)
	return c, nil
}
