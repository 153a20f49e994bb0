package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type AppConfig struct {
	Port     int    `yaml:"port"`
	GinMode  string `yaml:"gin_mode"`
	LogLevel string `yaml:"log_level"`
}

type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type JWTConfig struct {
	AccessSecret  string `yaml:"access_secret"`
	RefreshSecret string `yaml:"refresh_secret"`
	Issuer        string `yaml:"issuer"`
	AccessTTL     string `yaml:"access_ttl"`
	RefreshTTL    string `yaml:"refresh_ttl"`
}

type OTPConfig struct {
	Length        int    `yaml:"length"`
	TTL           string `yaml:"ttl"`
	MaxAttempts   int    `yaml:"max_attempts"`
	SendCooldown  string `yaml:"send_cooldown"`
	SendWindow    string `yaml:"send_window"`
	SendWindowMax int    `yaml:"send_window_max"`
	SMSTimeout    string `yaml:"sms_timeout"`
}

type SessionConfig struct {
	AnonymousTTL     string `yaml:"anonymous_ttl"`
	ActivityThrottle string `yaml:"activity_throttle"`
}

type CartConfig struct {
	MaxItemQuantity int `yaml:"max_item_quantity"`
}

type TwilioConfig struct {
	AccountSID string `yaml:"account_sid"`
	AuthToken  string `yaml:"auth_token"`
	FromNumber string `yaml:"from_number"`
}

type GateConfig struct {
	AdminPaths    []string `yaml:"admin_paths"`
	AuthPaths     []string `yaml:"auth_paths"`
	ExcludedPaths []string `yaml:"excluded_paths"`
}

type ConfigFile struct {
	App      AppConfig      `yaml:"app"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	JWT      JWTConfig      `yaml:"jwt"`
	OTP      OTPConfig      `yaml:"otp"`
	Session  SessionConfig  `yaml:"session"`
	Cart     CartConfig     `yaml:"cart"`
	Twilio   TwilioConfig   `yaml:"twilio"`
	Gate     GateConfig     `yaml:"gate"`
}

// Config is the fully parsed runtime configuration.
type Config struct {
	Port     string
	GinMode  string
	LogLevel string

	DSN           string
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	AccessSecret  string
	RefreshSecret string
	JWTIssuer     string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration

	OTPLength      int
	OTPTTL         time.Duration
	OTPMaxAttempts int
	SendCooldown   time.Duration
	SendWindow     time.Duration
	SendWindowMax  int
	SMSTimeout     time.Duration

	AnonymousTTL     time.Duration
	ActivityThrottle time.Duration

	MaxCartItemQty int

	TwilioSID   string
	TwilioToken string
	TwilioFrom  string

	AdminPaths    []string
	AuthPaths     []string
	ExcludedPaths []string
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

// Load reads config/config.yml when present and applies environment
// overrides on top. A missing file is not an error; every knob has a
// default suitable for local development.
func Load() (*Config, error) {
	return LoadFrom("config/config.yml")
}

// LoadFrom is Load with an explicit file path, used by tests.
func LoadFrom(path string) (*Config, error) {
	var file ConfigFile
	if bytes, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(bytes, &file); err != nil {
			return nil, fmt.Errorf("could not parse config yaml: %w", err)
		}
	}

	cfg := &Config{
		Port:           env("PORT", def(strconv.Itoa(file.App.Port), "0", "8080")),
		GinMode:        env("GIN_MODE", def(file.App.GinMode, "", "release")),
		LogLevel:       env("LOG_LEVEL", def(file.App.LogLevel, "", "info")),
		DSN:            env("DATABASE_DSN", def(file.Database.DSN, "", "host=localhost user=aso password=aso dbname=aso_uni sslmode=disable")),
		RedisAddr:      env("REDIS_ADDR", def(file.Redis.Addr, "", "localhost:6379")),
		RedisPassword:  env("REDIS_PASSWORD", file.Redis.Password),
		RedisDB:        envInt("REDIS_DB", file.Redis.DB),
		AccessSecret:   env("JWT_SECRET", file.JWT.AccessSecret),
		RefreshSecret:  env("JWT_REFRESH_SECRET", file.JWT.RefreshSecret),
		JWTIssuer:      env("JWT_ISSUER", def(file.JWT.Issuer, "", "aso-uni")),
		OTPLength:      envInt("OTP_LENGTH", def(file.OTP.Length, 0, 4)),
		OTPMaxAttempts: envInt("OTP_MAX_ATTEMPTS", def(file.OTP.MaxAttempts, 0, 3)),
		SendWindowMax:  envInt("OTP_SEND_WINDOW_MAX", def(file.OTP.SendWindowMax, 0, 3)),
		MaxCartItemQty: envInt("CART_MAX_ITEM_QTY", def(file.Cart.MaxItemQuantity, 0, 99)),
		TwilioSID:      env("TWILIO_ACCOUNT_SID", file.Twilio.AccountSID),
		TwilioToken:    env("TWILIO_AUTH_TOKEN", file.Twilio.AuthToken),
		TwilioFrom:     env("TWILIO_FROM_NUMBER", file.Twilio.FromNumber),
		AdminPaths:     file.Gate.AdminPaths,
		AuthPaths:      file.Gate.AuthPaths,
		ExcludedPaths:  file.Gate.ExcludedPaths,
	}

	if cfg.AccessSecret == "" || cfg.RefreshSecret == "" {
		return nil, fmt.Errorf("jwt access and refresh secrets must be configured")
	}

	var err error
	if cfg.AccessTTL, err = duration(file.JWT.AccessTTL, 15*time.Minute); err != nil {
		return nil, fmt.Errorf("invalid JWT access TTL: %w", err)
	}
	if cfg.RefreshTTL, err = duration(file.JWT.RefreshTTL, 7*24*time.Hour); err != nil {
		return nil, fmt.Errorf("invalid JWT refresh TTL: %w", err)
	}
	if cfg.OTPTTL, err = duration(file.OTP.TTL, 5*time.Minute); err != nil {
		return nil, fmt.Errorf("invalid OTP TTL: %w", err)
	}
	if cfg.SendCooldown, err = duration(file.OTP.SendCooldown, 60*time.Second); err != nil {
		return nil, fmt.Errorf("invalid OTP send cooldown: %w", err)
	}
	if cfg.SendWindow, err = duration(file.OTP.SendWindow, 15*time.Minute); err != nil {
		return nil, fmt.Errorf("invalid OTP send window: %w", err)
	}
	if cfg.SMSTimeout, err = duration(file.OTP.SMSTimeout, 10*time.Second); err != nil {
		return nil, fmt.Errorf("invalid SMS timeout: %w", err)
	}
	if cfg.AnonymousTTL, err = duration(file.Session.AnonymousTTL, 365*24*time.Hour); err != nil {
		return nil, fmt.Errorf("invalid anonymous session TTL: %w", err)
	}
	if cfg.ActivityThrottle, err = duration(file.Session.ActivityThrottle, 5*time.Minute); err != nil {
		return nil, fmt.Errorf("invalid activity throttle: %w", err)
	}

	if len(cfg.AdminPaths) == 0 {
		cfg.AdminPaths = []string{"/panel"}
	}
	if len(cfg.AuthPaths) == 0 {
		cfg.AuthPaths = []string{"/profile"}
	}
	if len(cfg.ExcludedPaths) == 0 {
		cfg.ExcludedPaths = []string{"/health", "/static", "/favicon.ico"}
	}

	return cfg, nil
}

func duration(s string, dflt time.Duration) (time.Duration, error) {
	if s == "" {
		return dflt, nil
	}
	return time.ParseDuration(s)
}

// def picks the first value that differs from the zero marker.
func def[T comparable](v, zero, dflt T) T {
	if v == zero {
		return dflt
	}
	return v
}
