// Command mockbridge is a stand-in for the Claude Code API bridge, for
// exercising convfire locally. It answers the arithmetic prompts the harness
// sends, mints and continues conversation ids, and can inject latency,
// failures, and wrong answers on demand.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

var questionPattern = regexp.MustCompile(`(\d+)\s*\+\s*(\d+)`)

type bridgeOptions struct {
	model     string
	latency   time.Duration
	jitter    time.Duration
	failRate  float64
	wrongRate float64
}

type bridge struct {
	opts bridgeOptions

	mu    sync.Mutex
	turns map[string]int
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	Stream         bool          `json:"stream"`
	ConversationID string        `json:"conversation_id,omitempty"`
}

func main() {
	port := flag.Int("port", 8080, "Listening port")
	model := flag.String("model", "claude-opus-4-20250514", "Model id to report")
	latency := flag.Duration("latency", 0, "Base artificial delay per completion")
	jitter := flag.Duration("jitter", 0, "Extra random delay, 0..jitter")
	failRate := flag.Float64("fail-rate", 0, "Probability of a simulated 500 response")
	wrongRate := flag.Float64("wrong-rate", 0, "Probability of an off-by-one answer")
	flag.Parse()

	if *port <= 0 {
		log.Fatalf("port must be > 0")
	}

	b := &bridge{
		opts: bridgeOptions{
			model:     *model,
			latency:   *latency,
			jitter:    *jitter,
			failRate:  *failRate,
			wrongRate: *wrongRate,
		},
		turns: make(map[string]int),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/chat/completions", b.handleCompletion)
	mux.HandleFunc("/v1/models", b.handleModels)

	addr := fmt.Sprintf(":%d", *port)
	log.Printf("mock bridge listening on %s (model %s)", addr, *model)
	log.Fatal(http.ListenAndServe(addr, mux))
}

func (b *bridge) handleCompletion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req completionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("malformed request: %v", err))
		return
	}
	if len(req.Messages) == 0 {
		respondError(w, http.StatusBadRequest, "messages must not be empty")
		return
	}

	if b.opts.latency > 0 || b.opts.jitter > 0 {
		delay := b.opts.latency
		if b.opts.jitter > 0 {
			delay += time.Duration(rand.Int63n(int64(b.opts.jitter)))
		}
		time.Sleep(delay)
	}

	if b.opts.failRate > 0 && rand.Float64() < b.opts.failRate {
		respondError(w, http.StatusInternalServerError, "simulated upstream failure")
		return
	}

	convID := req.ConversationID
	if convID == "" {
		convID = uuid.NewString()
	}
	turn := b.recordTurn(convID)

	content := b.answer(req.Messages[len(req.Messages)-1].Content)

	model := req.Model
	if model == "" {
		model = b.opts.model
	}

	log.Printf("completion conv=%s turn=%d model=%s", convID, turn, model)
	respondJSON(w, http.StatusOK, map[string]any{
		"id":      "chatcmpl-" + uuid.NewString(),
		"object":  "chat.completion",
		"created": time.Now().Unix(),
		"model":   model,
		"choices": []map[string]any{
			{
				"index":         0,
				"message":       map[string]any{"role": "assistant", "content": content},
				"finish_reason": "stop",
			},
		},
		"usage": map[string]any{
			"prompt_tokens":     len(strings.Fields(req.Messages[len(req.Messages)-1].Content)),
			"completion_tokens": len(strings.Fields(content)),
		},
		"conversation_id": convID,
	})
}

func (b *bridge) handleModels(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	created := time.Now().Unix()
	ids := []string{b.opts.model, "claude-sonnet-4-20250514", "claude-3-5-haiku-20241022"}
	data := make([]map[string]any, 0, len(ids))
	for _, id := range ids {
		data = append(data, map[string]any{
			"id":       id,
			"object":   "model",
			"created":  created,
			"owned_by": "anthropic",
		})
	}
	respondJSON(w, http.StatusOK, map[string]any{"object": "list", "data": data})
}

// answer solves the harness's arithmetic prompt, or admits it found none.
func (b *bridge) answer(prompt string) string {
	m := questionPattern.FindStringSubmatch(prompt)
	if m == nil {
		return "I do not see an arithmetic question in that message."
	}
	var a, c int
	fmt.Sscanf(m[1], "%d", &a)
	fmt.Sscanf(m[2], "%d", &c)
	sum := a + c
	if b.opts.wrongRate > 0 && rand.Float64() < b.opts.wrongRate {
		sum++
	}
	return fmt.Sprintf("The answer is %d.", sum)
}

func (b *bridge) recordTurn(convID string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.turns[convID]++
	return b.turns[convID]
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]any{
		"error": map[string]any{"message": message, "type": "server_error"},
	})
}
