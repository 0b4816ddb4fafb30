package chatapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestCompleteSendsWireFormat(t *testing.T) {
	var gotPath, gotMethod, gotContentType string
	var gotBody map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotMethod = r.Method
		gotContentType = r.Header.Get("Content-Type")
		payload, err := io.ReadAll(r.Body)
		if err != nil {
			t.Errorf("read request body failed: %v", err)
		}
		if err := json.Unmarshal(payload, &gotBody); err != nil {
			t.Errorf("request body is not JSON: %v", err)
		}
		writeCompletion(w, "conv-123", "4")
	}))
	defer server.Close()

	client, err := NewClient(server.URL, 5*time.Second)
	if err != nil {
		t.Fatalf("expected client, got error: %v", err)
	}

	resp, err := client.Complete(context.Background(), &CompletionRequest{
		Model:    "claude-opus-4-20250514",
		Messages: []Message{{Role: RoleUser, Content: "2 + 2 = ?"}},
	})
	if err != nil {
		t.Fatalf("expected response, got error: %v", err)
	}

	if gotMethod != http.MethodPost {
		t.Fatalf("expected POST, got %s", gotMethod)
	}
	if gotPath != "/v1/chat/completions" {
		t.Fatalf("expected completions path, got %s", gotPath)
	}
	if gotContentType != "application/json" {
		t.Fatalf("expected JSON content type, got %q", gotContentType)
	}
	if gotBody["model"] != "claude-opus-4-20250514" {
		t.Fatalf("expected model in body, got %v", gotBody["model"])
	}
	if stream, ok := gotBody["stream"]; !ok || stream != false {
		t.Fatalf("expected stream:false serialized explicitly, got %v (present=%v)", stream, ok)
	}
	if _, ok := gotBody["conversation_id"]; ok {
		t.Fatalf("expected conversation_id omitted for fresh conversation, got %v", gotBody["conversation_id"])
	}

	if resp.ConversationID != "conv-123" {
		t.Fatalf("expected conversation id conv-123, got %q", resp.ConversationID)
	}
	if resp.FirstContent() != "4" {
		t.Fatalf("expected content %q, got %q", "4", resp.FirstContent())
	}
}

func TestCompleteForwardsConversationID(t *testing.T) {
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		payload, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(payload, &gotBody); err != nil {
			t.Errorf("request body is not JSON: %v", err)
		}
		writeCompletion(w, "conv-456", "ok")
	}))
	defer server.Close()

	client, err := NewClient(server.URL, 5*time.Second)
	if err != nil {
		t.Fatalf("expected client, got error: %v", err)
	}

	_, err = client.Complete(context.Background(), &CompletionRequest{
		Model:          "claude-opus-4-20250514",
		Messages:       []Message{{Role: RoleUser, Content: "again"}},
		ConversationID: "conv-456",
	})
	if err != nil {
		t.Fatalf("expected response, got error: %v", err)
	}
	if gotBody["conversation_id"] != "conv-456" {
		t.Fatalf("expected conversation_id forwarded, got %v", gotBody["conversation_id"])
	}
}

func TestCompleteStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = io.WriteString(w, `{"error":{"message":"rate limit exceeded","type":"rate_limit_error"}}`)
	}))
	defer server.Close()

	client, err := NewClient(server.URL, 5*time.Second)
	if err != nil {
		t.Fatalf("expected client, got error: %v", err)
	}

	_, err = client.Complete(context.Background(), &CompletionRequest{
		Model:    "claude-opus-4-20250514",
		Messages: []Message{{Role: RoleUser, Content: "hi"}},
	})
	if err == nil {
		t.Fatalf("expected error for 429 response")
	}

	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected StatusError, got %T: %v", err, err)
	}
	if statusErr.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("expected status 429, got %d", statusErr.StatusCode)
	}
	if !strings.Contains(statusErr.Error(), "rate limit exceeded") {
		t.Fatalf("expected summarized error message, got %q", statusErr.Error())
	}
}

func TestCompleteMalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"id": "x", "choices": [`)
	}))
	defer server.Close()

	client, err := NewClient(server.URL, 5*time.Second)
	if err != nil {
		t.Fatalf("expected client, got error: %v", err)
	}

	_, err = client.Complete(context.Background(), &CompletionRequest{
		Model:    "claude-opus-4-20250514",
		Messages: []Message{{Role: RoleUser, Content: "hi"}},
	})
	if err == nil {
		t.Fatalf("expected decode error for truncated body")
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		t.Fatalf("malformed 200 body must not be a StatusError, got %v", err)
	}
}

func TestCompleteTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	client, err := NewClient(server.URL, 50*time.Millisecond)
	if err != nil {
		t.Fatalf("expected client, got error: %v", err)
	}

	start := time.Now()
	_, err = client.Complete(context.Background(), &CompletionRequest{
		Model:    "claude-opus-4-20250514",
		Messages: []Message{{Role: RoleUser, Content: "hi"}},
	})
	if err == nil {
		t.Fatalf("expected timeout error")
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("timeout took too long: %v", elapsed)
	}
}

func TestListModels(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/models" {
			t.Errorf("expected models path, got %s", r.URL.Path)
		}
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"object":"list","data":[{"id":"claude-opus-4-20250514","object":"model","created":1715000000,"owned_by":"anthropic"}]}`)
	}))
	defer server.Close()

	client, err := NewClient(server.URL, 5*time.Second)
	if err != nil {
		t.Fatalf("expected client, got error: %v", err)
	}

	list, err := client.ListModels(context.Background())
	if err != nil {
		t.Fatalf("expected model list, got error: %v", err)
	}
	if len(list.Data) != 1 {
		t.Fatalf("expected one model, got %d", len(list.Data))
	}
	if list.Data[0].ID != "claude-opus-4-20250514" {
		t.Fatalf("unexpected model id %q", list.Data[0].ID)
	}
}

func TestNewClientValidation(t *testing.T) {
	if _, err := NewClient("", time.Second); err == nil {
		t.Fatalf("expected error for empty base URL")
	}
	if _, err := NewClient("ftp://example.com", time.Second); err == nil {
		t.Fatalf("expected error for unsupported scheme")
	}

	client, err := NewClient("http://localhost:8080/", time.Second)
	if err != nil {
		t.Fatalf("expected client, got error: %v", err)
	}
	if client.BaseURL() != "http://localhost:8080" {
		t.Fatalf("expected trailing slash trimmed, got %q", client.BaseURL())
	}
}

func writeCompletion(w http.ResponseWriter, conversationID, content string) {
	w.Header().Set("Content-Type", "application/json")
	resp := CompletionResponse{
		ID:      "chatcmpl-test",
		Object:  "chat.completion",
		Created: time.Now().Unix(),
		Model:   "claude-opus-4-20250514",
		Choices: []Choice{{
			Index:        0,
			Message:      Message{Role: RoleAssistant, Content: content},
			FinishReason: "stop",
		}},
		Usage:          &Usage{PromptTokens: 10, CompletionTokens: 2, TotalTokens: 12},
		ConversationID: conversationID,
	}
	_ = json.NewEncoder(w).Encode(resp)
}
