package socialsdk

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// APIError is a non-2xx response from the service.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("socialsdk: %d: %s", e.StatusCode, e.Message)
}

// parseError builds an APIError from an error envelope, falling back to the
// status text when the body is not one.
func parseError(status int, body []byte) error {
	var env Envelope[json.RawMessage]
	if err := json.Unmarshal(body, &env); err == nil && env.Message != "" {
		return &APIError{StatusCode: status, Message: env.Message}
	}
	return &APIError{StatusCode: status, Message: http.StatusText(status)}
}
