package domain

import "errors"

var (
	ErrNotFound            = errors.New("not found")
	ErrInvalidOperation    = errors.New("invalid operation")
	ErrInvalidRequest      = errors.New("invalid request")
	ErrInvalidAmount       = errors.New("amount must be greater than zero")
	ErrUnbalancedEntry     = errors.New("journal entry debits and credits do not balance")
	ErrInvalidTransition   = errors.New("status transition not allowed")
	ErrInvalidDocumentType = errors.New("invalid document type")
	ErrDuplicate           = errors.New("duplicate resource")
	ErrHasChildren         = errors.New("account has child accounts")
)
