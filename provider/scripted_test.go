package provider

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ortus-boxlang/bx-ai-sub007/core"
)

func TestScripted_ReplaysQueueInOrder(t *testing.T) {
	s := NewScripted("mock").
		EnqueueText("first").
		EnqueueToolCall("lookup", map[string]any{"q": "x"}).
		EnqueueText("second")

	ctx := context.Background()

	resp, err := s.Send(ctx, core.NewChatRequest(core.UserMessage("a")))
	require.NoError(t, err)
	assert.Equal(t, "first", resp.Text)

	resp, err = s.Send(ctx, core.NewChatRequest(core.UserMessage("b")))
	require.NoError(t, err)
	require.True(t, resp.HasToolCalls())
	assert.Equal(t, "lookup", resp.ToolCalls[0].ToolName)
	assert.NotEmpty(t, resp.ToolCalls[0].ID)

	resp, err = s.Send(ctx, core.NewChatRequest(core.UserMessage("c")))
	require.NoError(t, err)
	assert.Equal(t, "second", resp.Text)

	// Drained queue falls back to a generated default.
	resp, err = s.Send(ctx, core.NewChatRequest(core.UserMessage("d")))
	require.NoError(t, err)
	assert.Contains(t, resp.Text, "scripted response")

	assert.Equal(t, 4, s.CallCount())
}

func TestScripted_Repeat(t *testing.T) {
	s := NewScripted("mock").Repeat(&core.ChatResponse{Text: "again"})

	for i := 0; i < 3; i++ {
		resp, err := s.Send(context.Background(), core.NewChatRequest(core.UserMessage("x")))
		require.NoError(t, err)
		assert.Equal(t, "again", resp.Text)
	}
}

func TestScripted_Fail(t *testing.T) {
	boom := errors.New("provider down")
	s := NewScripted("mock").Fail(boom)

	_, err := s.Send(context.Background(), core.NewChatRequest(core.UserMessage("x")))
	assert.ErrorIs(t, err, boom)
}

func TestScripted_RecordsRequestCopies(t *testing.T) {
	s := NewScripted("mock").EnqueueText("ok")
	req := core.NewChatRequest(core.UserMessage("original"))

	_, err := s.Send(context.Background(), req)
	require.NoError(t, err)

	req.Messages[0].Content = "mutated"
	assert.Equal(t, "original", s.Requests()[0].Messages[0].Content)
}

func TestScripted_SendStream(t *testing.T) {
	s := NewScripted("mock").EnqueueText("hey")

	var deltas []string
	resp, err := s.SendStream(context.Background(), core.NewChatRequest(core.UserMessage("x")), func(d string) error {
		deltas = append(deltas, d)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"h", "e", "y"}, deltas)
	assert.Equal(t, "hey", resp.Text)
}

func TestScripted_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := NewScripted("mock")
	_, err := s.Send(ctx, core.NewChatRequest(core.UserMessage("x")))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestScripted_TimeoutOptionBoundsCall(t *testing.T) {
	s := NewScripted("mock").Stall(time.Second).EnqueueText("too late")

	req := core.NewChatRequest(core.UserMessage("x"))
	req.Options = map[string]any{core.OptionTimeout: "20ms"}

	start := time.Now()
	_, err := s.Send(context.Background(), req)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestWithCallTimeout(t *testing.T) {
	t.Run("duration value sets a deadline", func(t *testing.T) {
		ctx, cancel := WithCallTimeout(context.Background(), map[string]any{
			core.OptionTimeout: 30 * time.Second,
		})
		defer cancel()

		deadline, ok := ctx.Deadline()
		require.True(t, ok)
		assert.InDelta(t, 30, time.Until(deadline).Seconds(), 5)
	})

	t.Run("numeric value reads as seconds", func(t *testing.T) {
		ctx, cancel := WithCallTimeout(context.Background(), map[string]any{
			core.OptionTimeout: 10,
		})
		defer cancel()

		deadline, ok := ctx.Deadline()
		require.True(t, ok)
		assert.InDelta(t, 10, time.Until(deadline).Seconds(), 5)
	})

	t.Run("absent option leaves the context unbounded", func(t *testing.T) {
		ctx, cancel := WithCallTimeout(context.Background(), nil)
		defer cancel()

		_, ok := ctx.Deadline()
		assert.False(t, ok)
	})
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("429 too many requests")
	err := &Error{Vendor: "openai", Status: 429, Message: "rate limited", Err: cause}

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "openai")
}
