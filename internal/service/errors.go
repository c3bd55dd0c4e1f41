package service

import (
	"errors"
	"fmt"
	"strings"

	"osa-dashboard/pkg/osaapi"
	"osa-dashboard/pkg/validator"
)

var (
	ErrAuthentication  = errors.New("authentication failed")
	ErrFetch           = errors.New("fetch failed")
	ErrImport          = errors.New("import failed")
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionTimeout  = errors.New("session expired due to inactivity")
	ErrSuperseded      = errors.New("response superseded by a newer request")
	ErrNoSnapshot      = errors.New("no data loaded")
)

// ValidationError carries the failed fields of a form.
type ValidationError struct {
	Fields []*validator.ErrorResponse
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.FailedField+" ("+f.Tag+")")
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// wrapUpstream tags err with kind and keeps the upstream message readable.
func wrapUpstream(kind, err error) error {
	return fmt.Errorf("%w: %s", kind, upstreamMessage(err, err.Error()))
}

// upstreamMessage returns the upstream error text, or fallback for transport
// failures that carry none.
func upstreamMessage(err error, fallback string) string {
	var se *osaapi.StatusError
	if errors.As(err, &se) && se.Message != "" {
		return se.Message
	}
	return fallback
}
