package memory

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ortus-boxlang/bx-ai-sub007/core"
	"github.com/ortus-boxlang/bx-ai-sub007/provider"
)

func TestNewWindowed_RejectsNonPositiveBound(t *testing.T) {
	_, err := NewWindowed(0)
	var cfgErr *core.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "memory", cfgErr.Component)
}

func TestWindowed_TrimsOldestFirst(t *testing.T) {
	mem, err := NewWindowed(3)
	require.NoError(t, err)

	ctx := context.Background()
	for i := 1; i <= 5; i++ {
		require.NoError(t, mem.Add(ctx, core.UserMessage(fmt.Sprintf("msg %d", i))))
	}

	assert.Equal(t, 3, mem.Count())
	msgs := mem.GetAll()
	require.Len(t, msgs, 3)
	assert.Equal(t, "msg 3", msgs[0].Content)
	assert.Equal(t, "msg 5", msgs[2].Content)

	// Compact is a no-op for the window policy.
	require.NoError(t, mem.Compact(ctx))
	assert.Equal(t, 3, mem.Count())
}

func TestWindowed_GetAllReturnsCopy(t *testing.T) {
	mem, _ := NewWindowed(3)
	require.NoError(t, mem.Add(context.Background(), core.UserMessage("original")))

	msgs := mem.GetAll()
	msgs[0].Content = "mutated"
	assert.Equal(t, "original", mem.GetAll()[0].Content)
}

func TestNewSummary_Validation(t *testing.T) {
	summarizer := provider.NewScripted("sum")

	_, err := NewSummary(nil, 10, 4)
	assert.Error(t, err)

	_, err = NewSummary(summarizer, 0, 4)
	assert.Error(t, err)

	// Threshold must be strictly inside (0, maxMessages).
	_, err = NewSummary(summarizer, 10, 0)
	assert.Error(t, err)
	_, err = NewSummary(summarizer, 10, 10)
	assert.Error(t, err)

	_, err = NewSummary(summarizer, 10, 4)
	assert.NoError(t, err)
}

func TestSummary_FoldsAgedMessagesIntoOneSummary(t *testing.T) {
	summarizer := provider.NewScripted("sum").EnqueueText("summary v1")
	mem, err := NewSummary(summarizer, 4, 2)
	require.NoError(t, err)

	ctx := context.Background()
	for i := 1; i <= 5; i++ {
		require.NoError(t, mem.Add(ctx, core.UserMessage(fmt.Sprintf("msg %d", i))))
	}

	// Crossing maxMessages folds everything but the verbatim tail into one
	// assistant summary message.
	msgs := mem.GetAll()
	require.Len(t, msgs, 3)
	assert.Equal(t, core.RoleAssistant, msgs[0].Role)
	assert.Equal(t, "summary v1", msgs[0].Content)
	assert.Equal(t, "msg 4", msgs[1].Content)
	assert.Equal(t, "msg 5", msgs[2].Content)

	// The summarizer saw the aged-out transcript, not the tail.
	reqs := summarizer.Requests()
	require.Len(t, reqs, 1)
	transcript := reqs[0].Messages[1].Content
	assert.Contains(t, transcript, "msg 1")
	assert.Contains(t, transcript, "msg 3")
	assert.NotContains(t, transcript, "msg 4")
}

func TestSummary_ResummarizationFoldsPriorSummary(t *testing.T) {
	summarizer := provider.NewScripted("sum").
		EnqueueText("summary v1").
		EnqueueText("summary v2")
	mem, err := NewSummary(summarizer, 4, 2)
	require.NoError(t, err)

	ctx := context.Background()
	for i := 1; i <= 7; i++ {
		require.NoError(t, mem.Add(ctx, core.UserMessage(fmt.Sprintf("msg %d", i))))
	}

	// The second crossing folds the previous summary plus newly aged
	// messages into a single fresh summary, never two stacked summaries.
	msgs := mem.GetAll()
	require.Len(t, msgs, 3)
	assert.Equal(t, "summary v2", msgs[0].Content)
	assert.Equal(t, "msg 6", msgs[1].Content)
	assert.Equal(t, "msg 7", msgs[2].Content)

	secondTranscript := summarizer.Requests()[1].Messages[1].Content
	assert.Contains(t, secondTranscript, "summary v1")
}

func TestSummary_CompactEager(t *testing.T) {
	summarizer := provider.NewScripted("sum").EnqueueText("compacted")
	mem, err := NewSummary(summarizer, 10, 2)
	require.NoError(t, err)

	ctx := context.Background()
	for i := 1; i <= 4; i++ {
		require.NoError(t, mem.Add(ctx, core.UserMessage(fmt.Sprintf("msg %d", i))))
	}

	// Under maxMessages nothing folded yet; Compact forces it.
	assert.Equal(t, 4, mem.Count())
	require.NoError(t, mem.Compact(ctx))
	assert.Equal(t, 3, mem.Count())
	assert.Equal(t, "compacted", mem.GetAll()[0].Content)

	// A second Compact with nothing new aged out is a no-op.
	require.NoError(t, mem.Compact(ctx))
	assert.Equal(t, 1, summarizer.CallCount())
}

func TestSummary_SummarizerFailureKeepsMessages(t *testing.T) {
	summarizer := provider.NewScripted("sum").Fail(errors.New("model down"))
	mem, err := NewSummary(summarizer, 3, 1)
	require.NoError(t, err)

	ctx := context.Background()
	for i := 1; i <= 3; i++ {
		require.NoError(t, mem.Add(ctx, core.UserMessage(fmt.Sprintf("msg %d", i))))
	}
	err = mem.Add(ctx, core.UserMessage("msg 4"))
	require.Error(t, err)

	// Unsummarized messages stay intact for a later retry.
	assert.Equal(t, 4, mem.Count())
}

func TestSession_WriteThroughAndReload(t *testing.T) {
	store := NewInMemorySessionStore()
	ctx := context.Background()

	sess, err := NewSession(store, "user-1", 10)
	require.NoError(t, err)
	assert.Equal(t, "user-1", sess.Key())

	require.NoError(t, sess.Add(ctx, core.UserMessage("hello")))
	require.NoError(t, sess.Add(ctx, core.AssistantMessage("hi!")))

	// Every Add writes through immediately.
	stored, err := store.Get("user-1")
	require.NoError(t, err)
	assert.Len(t, stored, 2)

	// A new session over the same key sees the persisted history.
	reloaded, err := NewSession(store, "user-1", 10)
	require.NoError(t, err)
	assert.Equal(t, 2, reloaded.Count())
	assert.Equal(t, "hello", reloaded.GetAll()[0].Content)
}

func TestSession_ReloadTrimsToWindow(t *testing.T) {
	store := NewInMemorySessionStore()
	var msgs []core.Message
	for i := 1; i <= 5; i++ {
		msgs = append(msgs, core.UserMessage(fmt.Sprintf("msg %d", i)))
	}
	require.NoError(t, store.Set("user-1", msgs))

	sess, err := NewSession(store, "user-1", 3)
	require.NoError(t, err)
	assert.Equal(t, 3, sess.Count())
	assert.Equal(t, "msg 3", sess.GetAll()[0].Content)
}

func TestNewSession_Validation(t *testing.T) {
	store := NewInMemorySessionStore()

	_, err := NewSession(nil, "k", 3)
	assert.Error(t, err)
	_, err = NewSession(store, "", 3)
	assert.Error(t, err)
	_, err = NewSession(store, "k", 0)
	assert.Error(t, err)
}

func TestInMemorySessionStore(t *testing.T) {
	store := NewInMemorySessionStore()

	// Missing key yields an empty list, not an error.
	msgs, err := store.Get("missing")
	require.NoError(t, err)
	assert.Empty(t, msgs)

	require.NoError(t, store.Set("a", []core.Message{core.UserMessage("x")}))
	require.NoError(t, store.Set("b", []core.Message{core.UserMessage("y")}))
	assert.ElementsMatch(t, []string{"a", "b"}, store.Keys())

	// Stored slices are isolated from caller mutation.
	got, _ := store.Get("a")
	got[0].Content = "mutated"
	again, _ := store.Get("a")
	assert.Equal(t, "x", again[0].Content)

	assert.True(t, store.Delete("a"))
	assert.False(t, store.Delete("a"))
}
