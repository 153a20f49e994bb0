package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/AndrewYakovlev/aso-uni/domain"
)

// JWTServiceImpl implements domain.TokenService with HS256 and distinct
// secrets for the access and refresh namespaces. The token type also
// travels as a claim, so tokens from one namespace are rejected by the
// other even if the secrets are ever configured identical.
type JWTServiceImpl struct {
	accessSecret  []byte
	refreshSecret []byte
	issuer        string
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

// NewJWTService creates a new JWT token service.
func NewJWTService(accessSecret, refreshSecret, issuer string, accessTTL, refreshTTL time.Duration) domain.TokenService {
	return &JWTServiceImpl{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		issuer:        issuer,
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

// MintAccess implements domain.TokenService.
func (j *JWTServiceImpl) MintAccess(userID uint, role domain.UserRole) (string, error) {
	return j.mint(userID, role, domain.TokenAccess, j.accessTTL, j.accessSecret)
}

// MintRefresh implements domain.TokenService.
func (j *JWTServiceImpl) MintRefresh(userID uint, role domain.UserRole) (string, error) {
	return j.mint(userID, role, domain.TokenRefresh, j.refreshTTL, j.refreshSecret)
}

// VerifyAccess implements domain.TokenService.
func (j *JWTServiceImpl) VerifyAccess(token string) (*domain.TokenClaims, error) {
	return j.verify(token, domain.TokenAccess, j.accessSecret)
}

// VerifyRefresh implements domain.TokenService.
func (j *JWTServiceImpl) VerifyRefresh(token string) (*domain.TokenClaims, error) {
	return j.verify(token, domain.TokenRefresh, j.refreshSecret)
}

// AccessTTL implements domain.TokenService.
func (j *JWTServiceImpl) AccessTTL() time.Duration {
	return j.accessTTL
}

func (j *JWTServiceImpl) mint(userID uint, role domain.UserRole, typ domain.TokenType, ttl time.Duration, secret []byte) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  userID,
		"role": string(role),
		"type": string(typ),
		"iss":  j.issuer,
		"iat":  now.Unix(),
		"exp":  now.Add(ttl).Unix(),
		"jti":  uuid.NewString(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

func (j *JWTServiceImpl) verify(tokenString string, want domain.TokenType, secret []byte) (*domain.TokenClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, domain.ErrTokenMalformed
		}
		return secret, nil
	})
	if err != nil {
		if token != nil && token.Claims != nil {
			// Distinguish expiry from everything else for callers.
			if exp, expErr := token.Claims.GetExpirationTime(); expErr == nil && exp != nil && exp.Before(time.Now()) {
				return nil, domain.ErrTokenExpired
			}
		}
		return nil, domain.ErrTokenInvalid
	}
	if !token.Valid {
		return nil, domain.ErrTokenInvalid
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, domain.ErrTokenMalformed
	}

	sub, ok := claims["sub"].(float64)
	if !ok {
		return nil, domain.ErrTokenMalformed
	}
	role, ok := claims["role"].(string)
	if !ok {
		return nil, domain.ErrTokenMalformed
	}
	typ, ok := claims["type"].(string)
	if !ok {
		return nil, domain.ErrTokenMalformed
	}
	if domain.TokenType(typ) != want {
		return nil, domain.ErrTokenInvalid
	}
	iat, ok := claims["iat"].(float64)
	if !ok {
		return nil, domain.ErrTokenMalformed
	}
	exp, ok := claims["exp"].(float64)
	if !ok {
		return nil, domain.ErrTokenMalformed
	}
	if time.Unix(int64(exp), 0).Before(time.Now()) {
		return nil, domain.ErrTokenExpired
	}

	return &domain.TokenClaims{
		UserID:    uint(sub),
		Role:      domain.UserRole(role),
		Type:      domain.TokenType(typ),
		IssuedAt:  int64(iat),
		ExpiresAt: int64(exp),
	}, nil
}
