package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/ortus-boxlang/bx-ai-sub007/core"
	"github.com/ortus-boxlang/bx-ai-sub007/provider"
)

// condenseInstruction is the fixed prompt used for every summarization
// request.
const condenseInstruction = "Condense the following conversation into a single concise summary. " +
	"Preserve all facts, names, decisions and open questions. Respond with the summary only."

// Summary keeps the most recent summaryThreshold messages verbatim and folds
// everything older into one synthetic assistant-tagged summary message
// produced by a summarization model.
//
// Re-summarization always folds the previous summary together with the newly
// aged-out messages into a single new summary; summaries are never
// concatenated, so memory size stays bounded on arbitrarily long
// conversations. Summarization runs synchronously inside Add or Compact and
// only when the configured bound is crossed, not on every Add.
type Summary struct {
	mu          sync.Mutex
	summarizer  provider.Provider
	messages    []core.Message
	maxMessages int
	threshold   int
	hasSummary  bool
	params      map[string]any
}

var _ Memory = (*Summary)(nil)

// SummaryOptions configures a Summary memory.
type SummaryOptions struct {
	// Params are passed to the summarization model request (model name,
	// temperature, ...).
	Params map[string]any
}

// NewSummary creates a summary memory. summaryThreshold is the number of
// recent messages kept verbatim and must be smaller than maxMessages, the
// count that triggers summarization when exceeded.
func NewSummary(summarizer provider.Provider, maxMessages, summaryThreshold int, optFns ...func(o *SummaryOptions)) (*Summary, error) {
	if summarizer == nil {
		return nil, core.NewConfigurationError("memory", "summary memory requires a summarization provider")
	}
	if maxMessages <= 0 {
		return nil, core.NewConfigurationError("memory", "maxMessages must be positive, got %d", maxMessages)
	}
	if summaryThreshold <= 0 || summaryThreshold >= maxMessages {
		return nil, core.NewConfigurationError("memory",
			"summaryThreshold must be in (0, maxMessages), got %d with maxMessages %d", summaryThreshold, maxMessages)
	}

	opts := SummaryOptions{}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Summary{
		summarizer:  summarizer,
		maxMessages: maxMessages,
		threshold:   summaryThreshold,
		params:      opts.Params,
	}, nil
}

// Add implements Memory. Crossing maxMessages triggers a synchronous
// summarization; its failure is returned to the caller and the unsummarized
// messages stay intact.
func (s *Summary) Add(ctx context.Context, msg core.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, msg)
	if len(s.messages) > s.maxMessages {
		return s.summarizeLocked(ctx)
	}
	return nil
}

// GetAll implements Memory.
func (s *Summary) GetAll() []core.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return core.CloneMessages(s.messages)
}

// Count implements Memory.
func (s *Summary) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.messages)
}

// Compact implements Memory, summarizing eagerly when anything has aged out
// of the verbatim tail.
func (s *Summary) Compact(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.messages) <= s.threshold {
		return nil
	}
	if s.hasSummary && len(s.messages) == s.threshold+1 {
		return nil // already one summary plus the verbatim tail
	}
	return s.summarizeLocked(ctx)
}

// summarizeLocked folds everything older than the verbatim tail, including
// any previous summary, into one new summary message. Caller holds the lock.
func (s *Summary) summarizeLocked(ctx context.Context) error {
	aged := s.messages[:len(s.messages)-s.threshold]
	tail := s.messages[len(s.messages)-s.threshold:]

	req := core.ChatRequest{
		Messages: []core.Message{
			core.SystemMessage(condenseInstruction),
			core.UserMessage(renderTranscript(aged)),
		},
		Params: s.params,
	}
	resp, err := s.summarizer.Send(ctx, req)
	if err != nil {
		return fmt.Errorf("summarize memory: %w", err)
	}

	compacted := make([]core.Message, 0, s.threshold+1)
	compacted = append(compacted, core.AssistantMessage(resp.Text))
	compacted = append(compacted, tail...)
	s.messages = compacted
	s.hasSummary = true
	return nil
}

func renderTranscript(msgs []core.Message) string {
	var sb strings.Builder
	for _, m := range msgs {
		fmt.Fprintf(&sb, "%s: %s\n", m.Role, m.Content)
	}
	return sb.String()
}
