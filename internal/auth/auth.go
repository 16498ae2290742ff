package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	coreUser "github.com/frahmantamala/role-assignment/internal/core/user"
)

type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// Claims represents JWT token claims
type Claims struct {
	UserID    int64     `json:"user_id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	TokenType TokenType `json:"token_type"`
	jwt.RegisteredClaims
}

type TokenGeneratorAPI interface {
	GenerateAccessToken(userID int64, email, role string) (string, error)
	GenerateRefreshToken(userID int64, email, role string) (string, error)
	ValidateAccessToken(tokenString string) (*Claims, error)
	ValidateRefreshToken(tokenString string) (*Claims, error)
	AccessTokenLifetime() time.Duration
}

type JWTTokenGenerator struct {
	AccessTokenSecret  []byte
	RefreshTokenSecret []byte
	AccessTokenTTL     time.Duration
	RefreshTokenTTL    time.Duration
}

type AuthTokens struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int64  `json:"expiresIn"`
}

// LoginResponse carries the token pair and the session the client renders menus from.
type LoginResponse struct {
	AuthTokens
	Token              string         `json:"token"`
	Email              string         `json:"email"`
	Role               string         `json:"role"`
	FirstName          string         `json:"firstName"`
	LastName           string         `json:"lastName"`
	MustChangePassword bool           `json:"mustChangePassword"`
	OrganizationAccess map[int64]bool `json:"organizationAccess"`
}

func newLoginResponse(tokens AuthTokens, u *coreUser.User) *LoginResponse {
	access := u.OrganizationAccess
	if access == nil {
		access = map[int64]bool{}
	}
	return &LoginResponse{
		AuthTokens:         tokens,
		Token:              tokens.AccessToken,
		Email:              u.Email,
		Role:               u.Role,
		FirstName:          u.FirstName,
		LastName:           u.LastName,
		MustChangePassword: u.MustChangePassword,
		OrganizationAccess: access,
	}
}
