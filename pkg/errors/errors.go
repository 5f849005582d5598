package errors

import (
	"fmt"
	"strings"
	"time"
)

// ErrNotFound is returned when a lookup misses (catalog entry, mapping, run)
type ErrNotFound struct {
	Resource string
	Key      string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.Key)
}

// ErrUnauthorized is returned when operator authentication fails
type ErrUnauthorized struct {
	Message string
}

func (e *ErrUnauthorized) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "unauthorized"
}

// ErrValidation is returned when input validation fails
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// UserError is a single entry from a Shopify userErrors array or a REST 422 body
type UserError struct {
	Field   []string `json:"field"`
	Message string   `json:"message"`
}

// ErrUserErrors is returned when Shopify accepts the request but rejects the
// payload. It aborts the current product only, never the batch.
type ErrUserErrors struct {
	Operation string
	Errors    []UserError
}

func (e *ErrUserErrors) Error() string {
	msgs := make([]string, 0, len(e.Errors))
	for _, ue := range e.Errors {
		if len(ue.Field) > 0 {
			msgs = append(msgs, fmt.Sprintf("%s: %s", strings.Join(ue.Field, "."), ue.Message))
		} else {
			msgs = append(msgs, ue.Message)
		}
	}
	return fmt.Sprintf("%s rejected: %s", e.Operation, strings.Join(msgs, "; "))
}

// ErrRateLimited is returned when Shopify keeps answering 429 after the
// configured retries are spent
type ErrRateLimited struct {
	RetryAfter time.Duration
}

func (e *ErrRateLimited) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited by shopify, retry after %s", e.RetryAfter)
	}
	return "rate limited by shopify"
}
