package handler

import "net/http"

type AppError struct {
	Status  int
	Code    string
	Message string
}

func (e *AppError) Error() string { return e.Message }

var (
	ErrMissingToken     = &AppError{http.StatusUnauthorized, "MISSING_TOKEN", "Authorization header required"}
	ErrInvalidToken     = &AppError{http.StatusUnauthorized, "INVALID_TOKEN", "Token is invalid or expired"}
	ErrInvalidRequest   = &AppError{http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body"}
	ErrInvalidID        = &AppError{http.StatusBadRequest, "INVALID_ID", "Path id must be a UUID"}
	ErrValidationFailed = &AppError{http.StatusBadRequest, "VALIDATION_FAILED", "Validation failed"}
	ErrResourceNotFound = &AppError{http.StatusNotFound, "RESOURCE_NOT_FOUND", "Resource not found"}
	ErrInternalError    = &AppError{http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred"}

	ErrInvalidOperation    = &AppError{http.StatusUnprocessableEntity, "INVALID_OPERATION", "Operation refused: a referenced record is missing or not allowed"}
	ErrInvalidAmount       = &AppError{http.StatusBadRequest, "INVALID_AMOUNT", "Amount or quantity is out of range"}
	ErrInvalidDocumentType = &AppError{http.StatusBadRequest, "INVALID_DOCUMENT_TYPE", "Unknown document type"}
	ErrUnbalancedEntry     = &AppError{http.StatusUnprocessableEntity, "UNBALANCED_ENTRY", "Total debits must equal total credits"}
	ErrInvalidTransition   = &AppError{http.StatusConflict, "INVALID_TRANSITION", "Status transition not allowed"}
	ErrDuplicate           = &AppError{http.StatusConflict, "DUPLICATE", "A record with the same unique key already exists"}
	ErrHasChildren         = &AppError{http.StatusConflict, "HAS_CHILDREN", "Account has child accounts"}

	ErrIdempotencyConflict = &AppError{http.StatusConflict, "IDEMPOTENCY_CONFLICT", "Idempotency key already used with a different request"}
)
