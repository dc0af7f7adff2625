package provider

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ortus-boxlang/bx-ai-sub007/core"
)

// Scripted is a deterministic in-memory Provider for tests and examples. It
// replays a queue of canned responses and records every request it receives.
type Scripted struct {
	mu       sync.Mutex
	info     Info
	queue    []*core.ChatResponse
	repeat   *core.ChatResponse
	requests []core.ChatRequest
	stall    time.Duration
	err      error
}

// NewScripted constructs an empty scripted provider.
func NewScripted(name string) *Scripted {
	return &Scripted{
		info: Info{Name: name, Vendor: "scripted", SupportsTools: true},
	}
}

// EnqueueText queues a plain text response.
func (s *Scripted) EnqueueText(text string) *Scripted {
	return s.Enqueue(&core.ChatResponse{Text: text, FinishReason: "stop"})
}

// EnqueueToolCall queues a response requesting a single tool call with a
// generated call id.
func (s *Scripted) EnqueueToolCall(toolName string, args map[string]any) *Scripted {
	return s.Enqueue(&core.ChatResponse{
		ToolCalls: []core.ToolCallRequest{{
			ID:        "call_" + uuid.NewString(),
			ToolName:  toolName,
			Arguments: args,
		}},
		FinishReason: "tool_calls",
	})
}

// Enqueue appends a canned response to the replay queue.
func (s *Scripted) Enqueue(resp *core.ChatResponse) *Scripted {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queue = append(s.queue, resp)
	return s
}

// Repeat sets the response returned once the queue is drained. A scripted
// provider with only a Repeat response answers every call identically, which
// is how misbehaving always-tool-calling models are simulated.
func (s *Scripted) Repeat(resp *core.ChatResponse) *Scripted {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.repeat = resp
	return s
}

// Stall makes every subsequent Send block for the given duration, or until
// the call context is done, before answering. Simulates a slow vendor so the
// per-call timeout option can be exercised.
func (s *Scripted) Stall(d time.Duration) *Scripted {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stall = d
	return s
}

// Fail makes every subsequent Send return the given error.
func (s *Scripted) Fail(err error) *Scripted {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
	return s
}

// Requests returns a copy of all requests received so far, in order.
func (s *Scripted) Requests() []core.ChatRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.ChatRequest, len(s.requests))
	copy(out, s.requests)
	return out
}

// CallCount returns the number of Send invocations observed.
func (s *Scripted) CallCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

// Send implements Provider by replaying the queue. The per-call timeout
// option is honored the same way the vendor adapters honor it, so timeout
// behavior is testable without a network.
func (s *Scripted) Send(ctx context.Context, req core.ChatRequest) (*core.ChatResponse, error) {
	ctx, cancel := WithCallTimeout(ctx, req.Options)
	defer cancel()

	s.mu.Lock()
	stall := s.stall
	s.mu.Unlock()
	if stall > 0 {
		timer := time.NewTimer(stall)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, req.Clone())

	if s.err != nil {
		return nil, s.err
	}
	if len(s.queue) > 0 {
		resp := s.queue[0]
		s.queue = s.queue[1:]
		return resp, nil
	}
	if s.repeat != nil {
		return s.repeat, nil
	}
	return &core.ChatResponse{
		Text:         fmt.Sprintf("scripted response #%d", len(s.requests)),
		FinishReason: "stop",
	}, nil
}

// SendStream implements Streamer, delivering the canned text rune by rune
// before returning the full response.
func (s *Scripted) SendStream(ctx context.Context, req core.ChatRequest, onDelta func(delta string) error) (*core.ChatResponse, error) {
	resp, err := s.Send(ctx, req)
	if err != nil {
		return nil, err
	}
	for _, r := range resp.Text {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := onDelta(string(r)); err != nil {
			return nil, err
		}
	}
	return resp, nil
}

// Info implements Provider.
func (s *Scripted) Info() Info { return s.info }
