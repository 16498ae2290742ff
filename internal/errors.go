package internal

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

type ErrorType string

const (
	ErrorTypeValidation   ErrorType = "VALIDATION_ERROR"
	ErrorTypeNotFound     ErrorType = "NOT_FOUND"
	ErrorTypeUnauthorized ErrorType = "UNAUTHORIZED"
	ErrorTypeForbidden    ErrorType = "FORBIDDEN"
	ErrorTypeConflict     ErrorType = "CONFLICT"
	ErrorTypeInternal     ErrorType = "INTERNAL_ERROR"
)

type ErrorCode string

const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeInvalidRequest   ErrorCode = "INVALID_REQUEST"
	ErrCodeInvalidFieldKey  ErrorCode = "INVALID_FIELD_KEY"
	ErrCodeUnknownFieldKey  ErrorCode = "UNKNOWN_FIELD_KEY"
	ErrCodeInvalidSlug      ErrorCode = "INVALID_SLUG"
	ErrCodeInvalidFile      ErrorCode = "INVALID_FILE"
	ErrCodeUnknownOrgType   ErrorCode = "UNKNOWN_ORGANIZATION_TYPE"
	ErrCodeWeakPassword     ErrorCode = "WEAK_PASSWORD"
	ErrCodePasswordRequired ErrorCode = "PASSWORD_REQUIRED"

	ErrCodeOrganizationTypeNotFound   ErrorCode = "ORGANIZATION_TYPE_NOT_FOUND"
	ErrCodeFieldDefinitionNotFound    ErrorCode = "FIELD_DEFINITION_NOT_FOUND"
	ErrCodeOrganizationDetailNotFound ErrorCode = "ORGANIZATION_DETAIL_NOT_FOUND"
	ErrCodeEmployeeNotFound           ErrorCode = "EMPLOYEE_NOT_FOUND"
	ErrCodeAssignmentNotFound         ErrorCode = "ASSIGNMENT_NOT_FOUND"
	ErrCodeUserNotFound               ErrorCode = "USER_NOT_FOUND"
	ErrCodeParameterNotFound          ErrorCode = "PARAMETER_NOT_FOUND"

	ErrCodeOrganizationTypeConflict ErrorCode = "ORGANIZATION_TYPE_CONFLICT"
	ErrCodeFieldKeyConflict         ErrorCode = "FIELD_KEY_CONFLICT"
	ErrCodeFieldInUse               ErrorCode = "FIELD_DEFINITION_IN_USE"
	ErrCodeAssignmentConflict       ErrorCode = "ASSIGNMENT_CONFLICT"
	ErrCodeEmployeeInUse            ErrorCode = "EMPLOYEE_IN_USE"
	ErrCodeOrganizationDetailInUse  ErrorCode = "ORGANIZATION_DETAIL_IN_USE"
	ErrCodeEmailConflict            ErrorCode = "EMAIL_CONFLICT"

	ErrCodeInvalidCredentials     ErrorCode = "INVALID_CREDENTIALS"
	ErrCodeInvalidToken           ErrorCode = "INVALID_TOKEN"
	ErrCodeTokenExpired           ErrorCode = "TOKEN_EXPIRED"
	ErrCodeAccessDenied           ErrorCode = "ACCESS_DENIED"
	ErrCodeAdminRequired          ErrorCode = "ADMIN_REQUIRED"
	ErrCodePasswordChangeRequired ErrorCode = "PASSWORD_CHANGE_REQUIRED"
)

type AppError struct {
	Type       ErrorType   `json:"type"`
	Code       ErrorCode   `json:"code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
	StatusCode int         `json:"-"`
	Cause      error       `json:"-"`
}

func (e *AppError) Error() string {
	if e.Details != nil {
		if validationErrors, ok := e.Details.(ValidationErrors); ok && len(validationErrors.Errors) > 0 {
			return validationErrors.Errors[0].Message
		}
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) GetDetailedMessage() string {
	if e.Details != nil {
		if validationErrors, ok := e.Details.(ValidationErrors); ok && len(validationErrors.Errors) > 0 {
			messages := make([]string, len(validationErrors.Errors))
			for i, err := range validationErrors.Errors {
				messages[i] = err.Message
			}
			return strings.Join(messages, "; ")
		}
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithCause returns a copy of e carrying cause; e itself is left unchanged so
// shared sentinels stay clean.
func (e *AppError) WithCause(cause error) *AppError {
	cp := *e
	cp.Cause = cause
	return &cp
}

// WithDetails returns a copy of e carrying details.
func (e *AppError) WithDetails(details interface{}) *AppError {
	cp := *e
	cp.Details = details
	return &cp
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func NewValidationError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func NewValidationFieldError(field, message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       ErrCodeValidationFailed,
		Message:    "Validation failed",
		StatusCode: http.StatusBadRequest,
		Details: ValidationErrors{
			Errors: []ValidationError{
				{Field: field, Message: message, Code: string(code)},
			},
		},
	}
}

func NewNotFoundError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

func NewUnauthorizedError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeUnauthorized,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusUnauthorized,
	}
}

func NewForbiddenError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeForbidden,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusForbidden,
	}
}

func NewInternalError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Code:       "INTERNAL_ERROR",
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

func NewConflictError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeConflict,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusConflict,
	}
}

// Shared sentinels. Compare with HasCode; WithDetails and WithCause return copies.
var (
	ErrInvalidCredentials     = NewUnauthorizedError("Invalid email or password", ErrCodeInvalidCredentials)
	ErrInvalidToken           = NewUnauthorizedError("Invalid token", ErrCodeInvalidToken)
	ErrTokenExpired           = NewUnauthorizedError("Token has expired", ErrCodeTokenExpired)
	ErrAccessDenied           = NewForbiddenError("You do not have access to this organization type", ErrCodeAccessDenied)
	ErrAdminRequired          = NewForbiddenError("Administrator role required", ErrCodeAdminRequired)
	ErrPasswordChangeRequired = NewForbiddenError("Password must be changed before continuing", ErrCodePasswordChangeRequired)
)

func IsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// HasCode reports whether err is an AppError carrying code.
func HasCode(err error, code ErrorCode) bool {
	appErr, ok := IsAppError(err)
	return ok && appErr.Code == code
}

type Response struct {
	Error *AppError `json:"error"`
}

func (e *AppError) ToHTTPResponse() (int, interface{}) {
	return e.StatusCode, Response{Error: e}
}

func (e *AppError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type    ErrorType   `json:"type"`
		Code    ErrorCode   `json:"code"`
		Message string      `json:"message"`
		Details interface{} `json:"details,omitempty"`
	}{
		Type:    e.Type,
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
	})
}
