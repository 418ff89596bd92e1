package owm

import (
	"fmt"
	"strings"
)

// APIError captures a non-2xx response from the weather provider.
type APIError struct {
	StatusCode int
	// Body keeps a bounded excerpt of the response payload for logs.
	Body string
}

func (e *APIError) Error() string {
	b := strings.TrimSpace(e.Body)
	if b == "" {
		return fmt.Sprintf("owm: API error (status=%d)", e.StatusCode)
	}
	return fmt.Sprintf("owm: API error (status=%d): %s", e.StatusCode, b)
}

// FieldError reports a structurally required field missing from the provider
// payload. Projection never produces a partial reading; the first missing
// field aborts it.
type FieldError struct {
	Path string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("owm: payload missing required field %q", e.Path)
}
