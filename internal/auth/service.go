package auth

import (
	stdErrors "errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	errors "github.com/frahmantamala/role-assignment/internal"
	userDatamodel "github.com/frahmantamala/role-assignment/internal/core/datamodel/user"
	coreUser "github.com/frahmantamala/role-assignment/internal/core/user"
)

type RepositoryAPI interface {
	GetByEmail(email string) (*userDatamodel.User, error)
	GetByID(id int64) (*userDatamodel.User, error)
	AccessMap(userID int64) (map[int64]bool, error)
	UpdatePassword(userID int64, hash *string) error
}

type Service struct {
	repo       RepositoryAPI
	tokens     TokenGeneratorAPI
	bcryptCost int
	logger     *slog.Logger
}

func NewService(repo RepositoryAPI, tokens TokenGeneratorAPI, bcryptCost int, logger *slog.Logger) *Service {
	if bcryptCost <= 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		repo:       repo,
		tokens:     tokens,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

func NewJWTTokenGenerator(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *JWTTokenGenerator {
	return &JWTTokenGenerator{
		AccessTokenSecret:  []byte(accessSecret),
		RefreshTokenSecret: []byte(refreshSecret),
		AccessTokenTTL:     accessTTL,
		RefreshTokenTTL:    refreshTTL,
	}
}

// Login checks credentials. A user without a stored password may sign in with
// any non-empty password and is flagged to set one before doing anything else.
func (s *Service) Login(dto LoginDTO) (*LoginResponse, error) {
	if appErr := dto.Validate(); appErr != nil {
		return nil, appErr
	}

	row, err := s.repo.GetByEmail(strings.TrimSpace(dto.Email))
	if err != nil {
		s.logger.Error("failed to load user for login", "error", err)
		return nil, errors.NewInternalError("failed to authenticate", err)
	}
	if row == nil {
		return nil, errors.ErrInvalidCredentials
	}

	if !hasPassword(row) {
		if dto.Password == "" {
			return nil, errors.NewValidationError("Password required. Please set your password.", errors.ErrCodePasswordRequired)
		}
	} else if err := VerifyPassword(*row.Password, dto.Password); err != nil {
		return nil, errors.ErrInvalidCredentials
	}

	principal, err := s.principal(row)
	if err != nil {
		return nil, err
	}
	tokens, err := s.issue(principal)
	if err != nil {
		return nil, err
	}
	s.logger.Info("user logged in", "user_id", principal.ID, "must_change_password", principal.MustChangePassword)
	return newLoginResponse(tokens, principal), nil
}

func (s *Service) Refresh(dto RefreshTokenDTO) (*AuthTokens, error) {
	if appErr := dto.Validate(); appErr != nil {
		return nil, appErr
	}
	claims, err := s.tokens.ValidateRefreshToken(dto.RefreshToken)
	if err != nil {
		return nil, err
	}
	principal, err := s.LoadPrincipal(claims.UserID)
	if err != nil {
		return nil, err
	}
	tokens, err := s.issue(principal)
	if err != nil {
		return nil, err
	}
	return &tokens, nil
}

func (s *Service) ValidateAccessToken(token string) (*Claims, error) {
	return s.tokens.ValidateAccessToken(token)
}

// LoadPrincipal rebuilds the session user with its current access map.
func (s *Service) LoadPrincipal(userID int64) (*coreUser.User, error) {
	row, err := s.repo.GetByID(userID)
	if err != nil {
		s.logger.Error("failed to load user", "error", err, "user_id", userID)
		return nil, errors.NewInternalError("failed to load user", err)
	}
	if row == nil {
		return nil, errors.ErrInvalidToken
	}
	return s.principal(row)
}

// ChangePassword sets a new password. Non-admins may only change their own.
func (s *Service) ChangePassword(actor *coreUser.User, dto ChangePasswordDTO) error {
	if actor == nil {
		return errors.ErrInvalidToken
	}
	if appErr := dto.Validate(); appErr != nil {
		return appErr
	}
	email := strings.TrimSpace(dto.Email)
	if !actor.IsAdmin() && !strings.EqualFold(actor.Email, email) {
		return errors.NewForbiddenError("You can only change your own password", errors.ErrCodeAccessDenied)
	}

	row, err := s.repo.GetByEmail(email)
	if err != nil {
		s.logger.Error("failed to load user for password change", "error", err)
		return errors.NewInternalError("failed to change password", err)
	}
	if row == nil {
		return errors.NewNotFoundError(fmt.Sprintf("User %s not found", email), errors.ErrCodeUserNotFound)
	}

	hash, err := HashPassword(dto.NewPassword, s.bcryptCost)
	if err != nil {
		return errors.NewInternalError("failed to hash password", err)
	}
	if err := s.repo.UpdatePassword(row.ID, &hash); err != nil {
		s.logger.Error("failed to update password", "error", err, "user_id", row.ID)
		return errors.NewInternalError("failed to change password", err)
	}
	s.logger.Info("password changed", "user_id", row.ID, "actor_id", actor.ID)
	return nil
}

func (s *Service) principal(row *userDatamodel.User) (*coreUser.User, error) {
	access, err := s.repo.AccessMap(row.ID)
	if err != nil {
		s.logger.Error("failed to load organization access", "error", err, "user_id", row.ID)
		return nil, errors.NewInternalError("failed to load user", err)
	}
	return &coreUser.User{
		ID:                 row.ID,
		Email:              row.Email,
		FirstName:          row.FirstName,
		LastName:           row.LastName,
		Role:               row.Role,
		MustChangePassword: !hasPassword(row),
		OrganizationAccess: access,
	}, nil
}

func (s *Service) issue(u *coreUser.User) (AuthTokens, error) {
	accessToken, err := s.tokens.GenerateAccessToken(u.ID, u.Email, u.Role)
	if err != nil {
		return AuthTokens{}, errors.NewInternalError("failed to issue token", err)
	}
	refreshToken, err := s.tokens.GenerateRefreshToken(u.ID, u.Email, u.Role)
	if err != nil {
		return AuthTokens{}, errors.NewInternalError("failed to issue token", err)
	}
	return AuthTokens{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.tokens.AccessTokenLifetime().Seconds()),
	}, nil
}

func hasPassword(row *userDatamodel.User) bool {
	return row.Password != nil && *row.Password != ""
}

func (j *JWTTokenGenerator) GenerateAccessToken(userID int64, email, role string) (string, error) {
	return j.sign(userID, email, role, TokenTypeAccess, j.AccessTokenTTL, j.AccessTokenSecret)
}

func (j *JWTTokenGenerator) GenerateRefreshToken(userID int64, email, role string) (string, error) {
	return j.sign(userID, email, role, TokenTypeRefresh, j.RefreshTokenTTL, j.RefreshTokenSecret)
}

func (j *JWTTokenGenerator) AccessTokenLifetime() time.Duration {
	return j.AccessTokenTTL
}

func (j *JWTTokenGenerator) ValidateAccessToken(tokenString string) (*Claims, error) {
	return j.validate(tokenString, TokenTypeAccess, j.AccessTokenSecret)
}

func (j *JWTTokenGenerator) ValidateRefreshToken(tokenString string) (*Claims, error) {
	return j.validate(tokenString, TokenTypeRefresh, j.RefreshTokenSecret)
}

func (j *JWTTokenGenerator) sign(userID int64, email, role string, tokenType TokenType, ttl time.Duration, secret []byte) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID:    userID,
		Email:     email,
		Role:      role,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Subject:   email,
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func (j *JWTTokenGenerator) validate(tokenString string, tokenType TokenType, secret []byte) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		if stdErrors.Is(err, jwt.ErrTokenExpired) {
			return nil, errors.ErrTokenExpired
		}
		return nil, errors.ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.TokenType != tokenType {
		return nil, errors.ErrInvalidToken
	}
	return claims, nil
}

func VerifyPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

func HashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
