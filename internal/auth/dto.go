package auth

import (
	"strings"

	errors "github.com/frahmantamala/role-assignment/internal"
	"github.com/frahmantamala/role-assignment/internal/core/common/validation"
)

type LoginDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate only requires the email; an empty password is judged against the stored one.
func (d LoginDTO) Validate() *errors.AppError {
	validator := validation.NewValidator()
	validator.Field("email", d.Email).Required().MaxLength(200)
	return validator.Validate()
}

type RefreshTokenDTO struct {
	RefreshToken string `json:"refreshToken"`
}

func (d RefreshTokenDTO) Validate() *errors.AppError {
	validator := validation.NewValidator()
	validator.Field("refreshToken", d.RefreshToken).Required()
	return validator.Validate()
}

type ChangePasswordDTO struct {
	Email       string `json:"email"`
	NewPassword string `json:"newPassword"`
}

func (d ChangePasswordDTO) Validate() *errors.AppError {
	if strings.TrimSpace(d.Email) == "" {
		return errors.NewValidationFieldError("email", "email is required", errors.ErrCodeValidationFailed)
	}
	return validation.ValidatePassword(d.NewPassword)
}

type MessageResponse struct {
	Message string `json:"message"`
}
