// Package chatapi provides the typed wire contract and HTTP client for an
// OpenAI-compatible chat completion endpoint.
//
// The package defines request and response types that mirror the chat
// completion API surface exposed by the Claude Code API bridge:
// [CompletionRequest], [CompletionResponse], and [ModelList]. The bridge
// extends the stock OpenAI schema with a conversation_id field that threads
// follow-up requests into an existing session; the field is optional on
// requests and echoed back on every successful response.
//
// # Client
//
// [NewClient] builds a client with connection pooling tuned for many
// simultaneous in-flight requests:
//
//	client, err := chatapi.NewClient("http://localhost:8080", 120*time.Second)
//	if err != nil {
//		return err
//	}
//	resp, err := client.Complete(ctx, &chatapi.CompletionRequest{
//		Model:    "claude-opus-4-20250514",
//		Messages: []chatapi.Message{{Role: chatapi.RoleUser, Content: "2 + 2 = ?"}},
//	})
//
// # Error Handling
//
// Non-200 responses surface as [*StatusError] carrying the status code and a
// bounded snippet of the response body. Transport failures and malformed
// bodies return ordinary errors. Callers that need to distinguish a rejected
// request from a broken connection can use errors.As:
//
//	var statusErr *chatapi.StatusError
//	if errors.As(err, &statusErr) {
//		fmt.Printf("endpoint rejected request: HTTP %d\n", statusErr.StatusCode)
//	}
package chatapi
