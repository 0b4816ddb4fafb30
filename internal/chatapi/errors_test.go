package chatapi

import (
	"strings"
	"testing"
)

func TestStatusErrorSummarizesJSONBodies(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{
			name: "openai error envelope",
			body: `{"error":{"message":"conversation not found","type":"invalid_request_error"}}`,
			want: "HTTP 404: conversation not found",
		},
		{
			name: "bare message field",
			body: `{"message":"service unavailable"}`,
			want: "HTTP 404: service unavailable",
		},
		{
			name: "string error field",
			body: `{"error":"boom"}`,
			want: "HTTP 404: boom",
		},
		{
			name: "plain text body",
			body: "upstream exploded",
			want: "HTTP 404: upstream exploded",
		},
		{
			name: "empty body",
			body: "",
			want: "HTTP 404",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := &StatusError{StatusCode: 404, Body: tc.body}
			if got := err.Error(); got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestNewStatusErrorTruncatesBody(t *testing.T) {
	long := strings.Repeat("x", 4*maxErrorBodyBytes)
	err := newStatusError(500, []byte(long))
	if len(err.Body) > maxErrorBodyBytes {
		t.Fatalf("expected body capped at %d bytes, got %d", maxErrorBodyBytes, len(err.Body))
	}
	if err.StatusCode != 500 {
		t.Fatalf("expected status 500, got %d", err.StatusCode)
	}
}
