package chatapi

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// StatusError reports a non-200 response from the endpoint.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	summary := summarizeErrorBody(e.Body)
	if summary == "" {
		return fmt.Sprintf("HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, summary)
}

func newStatusError(statusCode int, body []byte) *StatusError {
	snippet := body
	if len(snippet) > maxErrorBodyBytes {
		snippet = snippet[:maxErrorBodyBytes]
	}
	return &StatusError{
		StatusCode: statusCode,
		Body:       strings.TrimSpace(string(snippet)),
	}
}

// summarizeErrorBody pulls a human-readable message out of a JSON error body
// when one is present, falling back to the raw body. The endpoint wraps
// errors as {"error": {"message": ...}} but proxies in front of it may use
// other common shapes.
func summarizeErrorBody(body string) string {
	if body == "" {
		return ""
	}
	for _, path := range []string{"error.message", "message", "error", "detail"} {
		result := gjson.Get(body, path)
		if result.Exists() && result.Type == gjson.String && result.String() != "" {
			return result.String()
		}
	}
	return body
}
