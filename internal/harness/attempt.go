package harness

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	glog "github.com/Laisky/go-utils/v5/log"
	"github.com/Laisky/zap"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/torosent/convfire/internal/chatapi"
	"github.com/torosent/convfire/internal/tracing"
)

// seedID is the request ID reserved for the synchronous seed attempt that
// opens a shared conversation. Concurrent attempts number from 1.
const seedID = 0

// Completer is the slice of the chat client the harness needs.
type Completer interface {
	Complete(ctx context.Context, req *chatapi.CompletionRequest) (*chatapi.CompletionResponse, error)
}

// Options configure a Harness.
type Options struct {
	Completer   Completer   // chat completion executor (required)
	Model       string      // model identifier passed through to the endpoint
	Recorder    Recorder    // optional run-wide metrics sink
	Logger      glog.Logger // optional structured logger
	Tracer      trace.Tracer
	LaunchRate  float64 // attempts per second when launching a wave (0 means all at once)
	LogRequests bool    // log every attempt's outcome, not just scenario lifecycle
}

func (o *Options) normalize() {
	if o.LaunchRate < 0 {
		o.LaunchRate = 0
	}
	if o.Tracer == nil {
		o.Tracer = otel.Tracer("convfire/harness")
	}
}

// Harness fires chat completion attempts at one endpoint and classifies the
// results. All methods are safe for concurrent use.
type Harness struct {
	completer   Completer
	model       string
	recorder    Recorder
	logger      glog.Logger
	tracer      trace.Tracer
	launch      *rate.Limiter
	logRequests bool
}

func New(opts Options) *Harness {
	opts.normalize()
	var launch *rate.Limiter
	if opts.LaunchRate > 0 {
		launch = rate.NewLimiter(rate.Limit(opts.LaunchRate), 1)
	}
	return &Harness{
		completer:   opts.Completer,
		model:       opts.Model,
		recorder:    opts.Recorder,
		logger:      opts.Logger,
		tracer:      opts.Tracer,
		launch:      launch,
		logRequests: opts.LogRequests,
	}
}

// Question renders the arithmetic prompt for a request ID. Each ID asks for
// its own doubled value, which makes answers bleeding across conversations
// visible in the correctness check.
func Question(id int) string {
	return fmt.Sprintf("Please answer: %d + %d = ?", id, id)
}

// ExpectedAnswer is the substring a response must contain to count as
// correct for the given request ID.
func ExpectedAnswer(id int) string {
	return strconv.Itoa(2 * id)
}

// attempt executes one chat completion and classifies the result. Transport
// and protocol errors never escape: they are absorbed into a failed Outcome
// after being handed to the recorder. The wall clock covers the whole
// exchange, from request encoding through response decode.
func (h *Harness) attempt(ctx context.Context, id int, conversationID string) Outcome {
	ctx, span := tracing.StartAttemptSpan(ctx, h.tracer, id)

	req := &chatapi.CompletionRequest{
		Model:          h.model,
		Messages:       []chatapi.Message{{Role: chatapi.RoleUser, Content: Question(id)}},
		Stream:         false,
		ConversationID: conversationID,
	}

	start := time.Now()
	resp, err := h.completer.Complete(ctx, req)
	elapsed := time.Since(start)

	if err != nil {
		if h.recorder != nil {
			h.recorder.Record(elapsed, err, false)
		}
		tracing.EndSpan(span, err)
		if h.logRequests && h.logger != nil {
			h.logger.Warn("request failed",
				zap.Int("request_id", id),
				zap.Duration("elapsed", elapsed),
				zap.String("error", err.Error()),
			)
		}
		return Outcome{
			ID:      id,
			Success: false,
			Elapsed: elapsed,
			Err:     err.Error(),
		}
	}

	correct := strings.Contains(resp.FirstContent(), ExpectedAnswer(id))
	if h.recorder != nil {
		h.recorder.Record(elapsed, nil, correct)
	}
	tracing.EndSpan(span, nil,
		attribute.String("convfire.conversation_id", resp.ConversationID),
		attribute.Bool("convfire.correct", correct),
	)
	if h.logRequests && h.logger != nil {
		h.logger.Info("request completed",
			zap.Int("request_id", id),
			zap.Duration("elapsed", elapsed),
			zap.String("conversation_id", resp.ConversationID),
			zap.Bool("correct", correct),
		)
	}

	return Outcome{
		ID:             id,
		Success:        true,
		Elapsed:        elapsed,
		ConversationID: resp.ConversationID,
		Correct:        correct,
	}
}
