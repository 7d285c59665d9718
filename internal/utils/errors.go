package utils

import "errors"

// Common application errors used across services.
var (
	ErrInvalidToken    = errors.New("INVALID_TOKEN")
	ErrEmptyQuery      = errors.New("INVALID_QUERY")
	ErrRetrievalFailed = errors.New("RETRIEVAL_FAILED")
	ErrProductNotFound = errors.New("PRODUCT_NOT_FOUND")
	ErrInvalidProduct  = errors.New("INVALID_PRODUCT")
	ErrInvalidMetadata = errors.New("INVALID_METADATA")
)
