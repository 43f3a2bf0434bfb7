package dhan

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNotConfigured = errors.New("dhan client not configured")
	ErrNoPrice       = errors.New("no last traded price in response")
)

// APIError is a failed or rejected call as reported by Dhan.
type APIError struct {
	HTTPStatus  int
	ErrorType   string
	ErrorCode   string
	Message     string
	OrderStatus string
}

func (e *APIError) Error() string {
	switch {
	case e.ErrorCode != "" || e.ErrorType != "":
		return fmt.Sprintf("dhan api error (http %d): %s %s: %s", e.HTTPStatus, e.ErrorType, e.ErrorCode, e.Message)
	case e.OrderStatus != "":
		return fmt.Sprintf("dhan order %s: %s", e.OrderStatus, e.Message)
	}
	return fmt.Sprintf("dhan api error (http %d): %s", e.HTTPStatus, e.Message)
}

// Temporary reports whether the same request may succeed later.
func (e *APIError) Temporary() bool {
	return e.HTTPStatus == http.StatusTooManyRequests || e.HTTPStatus >= 500
}
