package domain

import (
	"fmt"
)

type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Err        error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func (e *AppError) WithError(err error) *AppError {
	return &AppError{
		Code:       e.Code,
		Message:    e.Message,
		StatusCode: e.StatusCode,
		Err:        err,
	}
}

// Pre-defined errors
var (
	ErrInternal = &AppError{
		Code:       "INTERNAL_ERROR",
		Message:    "An unexpected error occurred",
		StatusCode: 500,
	}

	ErrBadRequest = &AppError{
		Code:       "BAD_REQUEST",
		Message:    "Invalid request",
		StatusCode: 400,
	}

	ErrNotFound = &AppError{
		Code:       "NOT_FOUND",
		Message:    "Resource not found",
		StatusCode: 404,
	}

	ErrSignatureNotFound = &AppError{
		Code:       "SIGNATURE_NOT_FOUND",
		Message:    "Signature not found",
		StatusCode: 404,
	}

	ErrNameTooShort = &AppError{
		Code:       "NAME_TOO_SHORT",
		Message:    "Signature name must be longer than 3 characters",
		StatusCode: 422,
	}

	ErrNoEmbedding = &AppError{
		Code:       "NO_EMBEDDING",
		Message:    "Current capture has no face embedding to enroll",
		StatusCode: 422,
	}

	ErrSaveNotOpen = &AppError{
		Code:       "SAVE_NOT_OPEN",
		Message:    "No enrollment in progress",
		StatusCode: 409,
	}

	ErrSaveInProgress = &AppError{
		Code:       "SAVE_IN_PROGRESS",
		Message:    "An enrollment is already being saved",
		StatusCode: 409,
	}

	ErrSessionActive = &AppError{
		Code:       "SESSION_ACTIVE",
		Message:    "Recognition session is already bound",
		StatusCode: 409,
	}

	ErrSessionDisposed = &AppError{
		Code:       "SESSION_DISPOSED",
		Message:    "Recognition session has been disposed",
		StatusCode: 410,
	}

	ErrCameraBind = &AppError{
		Code:       "CAMERA_BIND_FAILED",
		Message:    "Failed to bind the camera analysis pipeline",
		StatusCode: 503,
	}

	ErrGalleryLoad = &AppError{
		Code:       "GALLERY_LOAD_FAILED",
		Message:    "Failed to load the signature gallery",
		StatusCode: 503,
	}

	ErrInvalidImage = &AppError{
		Code:       "INVALID_IMAGE",
		Message:    "Invalid image format or corrupted frame",
		StatusCode: 422,
	}

	ErrValidationFailed = &AppError{
		Code:       "VALIDATION_FAILED",
		Message:    "Request validation failed",
		StatusCode: 422,
	}
)
