package app

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	"campora/api/internal/auth"
	"campora/api/internal/authpw"
	"campora/api/internal/content"
	"campora/api/internal/media"
	"campora/api/internal/session"
	"campora/api/internal/store"
)

type DomainError struct {
	Status  int
	Code    string
	Message string
	Details any
}

func (e *DomainError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func domainError(status int, code, message string, details any) *DomainError {
	return &DomainError{
		Status:  status,
		Code:    code,
		Message: message,
		Details: details,
	}
}

// mapError translates sentinel errors from the service's collaborators into
// HTTP boundary responses. Anything unmapped is a plain 500.
func mapError(err error) (status int, code, message string, details any) {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Status, domainErr.Code, domainErr.Message, domainErr.Details
	}
	var validationErr *content.ValidationError
	if errors.As(err, &validationErr) {
		return http.StatusUnprocessableEntity, "VALIDATION_ERROR", validationErr.Message, map[string]any{
			"section": string(validationErr.Section),
			"field":   validationErr.Field,
		}
	}
	switch {
	case errors.Is(err, store.ErrNotFound), errors.Is(err, sql.ErrNoRows):
		return http.StatusNotFound, "NOT_FOUND", "Not found", nil
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrExpiredToken):
		return http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized", nil
	case errors.Is(err, session.ErrSessionNotFound):
		return http.StatusUnauthorized, "UNAUTHORIZED", "Session expired", nil
	case errors.Is(err, authpw.ErrEmailTaken):
		return http.StatusConflict, "EMAIL_EXISTS", "Email already registered", nil
	case errors.Is(err, authpw.ErrInvalidCredentials):
		return http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password", nil
	case errors.Is(err, authpw.ErrInvalidToken):
		return http.StatusBadRequest, "INVALID_TOKEN", "Token is invalid or expired", nil
	case errors.Is(err, media.ErrTooLarge):
		return http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "File exceeds the 5MB limit", nil
	case errors.Is(err, media.ErrUnsupportedType):
		return http.StatusUnsupportedMediaType, "UNSUPPORTED_TYPE", "Only JPEG, PNG, WebP and GIF images are allowed", nil
	case errors.Is(err, media.ErrPendingNotFound):
		return http.StatusNotFound, "UPLOAD_NOT_FOUND", "Staged upload not found", nil
	}
	return http.StatusInternalServerError, "SERVER_ERROR", "Server error", nil
}
