package ghn

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures returned by the GHN client so callers can
// branch on them without matching message text.
type ErrorKind string

const (
	// KindConfig means the client is missing credentials or the base URL.
	KindConfig ErrorKind = "CONFIG_ERROR"
	// KindTransport means the request failed at the network/HTTP level after
	// every retry attempt was used.
	KindTransport ErrorKind = "TRANSPORT_ERROR"
	// KindQuote means the carrier rejected a fee or order request inside its
	// envelope, or the request was incomplete and never sent.
	KindQuote ErrorKind = "QUOTE_ERROR"
	// KindResponse means the carrier answered with a malformed envelope or a
	// non-success code for a non-fee call.
	KindResponse ErrorKind = "RESPONSE_ERROR"
)

// Error is the single error type produced by this package.
type Error struct {
	Kind    ErrorKind
	Op      string
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Op == "" {
		return fmt.Sprintf("ghn: %s", msg)
	}
	return fmt.Sprintf("ghn %s: %s", e.Op, msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of a GHN error anywhere in err's chain.
func KindOf(err error) (ErrorKind, bool) {
	var ghnErr *Error
	if errors.As(err, &ghnErr) {
		return ghnErr.Kind, true
	}
	return "", false
}

// IsKind reports whether err carries a GHN error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}
