package utils

import "errors"

// Common application errors used across services.
var (
	ErrEmptyCart             = errors.New("EMPTY_CART")
	ErrIncompleteDestination = errors.New("INCOMPLETE_DESTINATION")
	ErrIncompleteRecipient   = errors.New("INCOMPLETE_RECIPIENT")
	ErrUnknownLocation       = errors.New("UNKNOWN_LOCATION")
	ErrSelectionRequired     = errors.New("SELECTION_REQUIRED")
	ErrSuperseded            = errors.New("SUPERSEDED")
	ErrSessionNotFound       = errors.New("SESSION_NOT_FOUND")
	ErrQuoteNotFound         = errors.New("QUOTE_NOT_FOUND")
	ErrInvalidCredentials    = errors.New("INVALID_CREDENTIALS")
	ErrAccountInactive       = errors.New("ACCOUNT_INACTIVE")
	ErrInvalidToken          = errors.New("INVALID_TOKEN")
)
