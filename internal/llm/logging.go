package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/abhisek/qbank/internal/logger"
	"github.com/abhisek/qbank/internal/store"
)

// LoggingProvider records one llm_request_events row and one log line per
// call. Recording failures are logged and never fail the call.
type LoggingProvider struct {
	inner  Provider
	events store.EventRepo
	log    *logger.Logger
	now    func() time.Time
}

// WithLogging wraps p. Either events or log may be nil.
func WithLogging(p Provider, events store.EventRepo, log *logger.Logger) Provider {
	if log == nil {
		log = logger.NewNop()
	}
	return &LoggingProvider{inner: p, events: events, log: log, now: time.Now}
}

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := l.now()
	resp, err := l.inner.Generate(ctx, req)

	ev := store.LLMRequestEventData{
		Provider:    l.inner.ModelID(),
		Model:       l.inner.ModelID(),
		Purpose:     PurposeFrom(ctx),
		LatencyMs:   l.now().Sub(start).Milliseconds(),
		Success:     err == nil,
		RequestBody: describeRequest(req),
	}
	log := l.log.With("purpose", ev.Purpose, "latency_ms", ev.LatencyMs)

	switch {
	case err != nil:
		ev.ErrorMessage = err.Error()
		log.Warn("llm request failed", "model", ev.Model, "error", err)
	default:
		ev.Model = resp.Model
		ev.InputTokens = resp.Usage.InputTokens
		ev.OutputTokens = resp.Usage.OutputTokens
		ev.ResponseBody = string(resp.Content)
		if len(resp.Dropped) > 0 {
			ev.ErrorMessage = describeDropped(resp.Dropped)
		}
		log.Debug("llm request", "model", ev.Model,
			"input_tokens", ev.InputTokens, "output_tokens", ev.OutputTokens,
			"dropped_items", len(resp.Dropped))
	}

	if l.events != nil {
		if rerr := l.events.AppendLLMRequest(ctx, ev); rerr != nil {
			log.Warn("failed to record llm request event", "error", rerr)
		}
	}
	return resp, err
}

func (l *LoggingProvider) ModelID() string { return l.inner.ModelID() }

// describeRequest renders the prompt for the event log. Only the schema
// name is kept; the definitions are static and large.
func describeRequest(req Request) string {
	var b strings.Builder
	if req.System != "" {
		fmt.Fprintf(&b, "[system]\n%s\n\n", req.System)
	}
	for _, m := range req.Messages {
		fmt.Fprintf(&b, "[%s]\n%s\n\n", m.Role, m.Content)
	}
	if req.Schema != nil {
		fmt.Fprintf(&b, "[schema %s]\n", req.Schema.Name)
	}
	return b.String()
}

func describeDropped(dropped []DroppedItem) string {
	parts := make([]string, len(dropped))
	for i, d := range dropped {
		parts[i] = fmt.Sprintf("item %d: %s", d.Index, d.Reason)
	}
	return fmt.Sprintf("dropped %d item(s): %s", len(dropped), strings.Join(parts, "; "))
}
