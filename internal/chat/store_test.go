package chat

import (
	"context"
	"math/rand"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupChat(t *testing.T, opts ...StoreOption) *Store {
	t.Helper()
	responder, err := NewResponder(rand.New(rand.NewSource(42)))
	require.NoError(t, err)
	base := []StoreOption{WithLatency(FixedLatency(0))}
	return NewStore(responder, zerolog.Nop(), append(base, opts...)...)
}

func TestStore_SeededWithWelcome(t *testing.T) {
	s := setupChat(t)

	history := s.History()
	require.Len(t, history, 1)
	assert.Equal(t, RoleAssistant, history[0].Role)
	assert.NotEmpty(t, history[0].Content)
}

func TestSend_AppendsUserThenReply(t *testing.T) {
	s := setupChat(t, WithLatency(FixedLatency(50*time.Millisecond)))

	done := s.Send(context.Background(), "hello there", "proj-1")

	// User message is visible and typing is set before the reply lands.
	history := s.History()
	require.Len(t, history, 2)
	assert.Equal(t, RoleUser, history[1].Role)
	assert.Equal(t, "hello there", history[1].Content)
	assert.Equal(t, "proj-1", history[1].ProjectID)
	assert.True(t, s.Typing())

	require.NoError(t, <-done)

	history = s.History()
	require.Len(t, history, 3)
	assert.Equal(t, RoleAssistant, history[2].Role)
	assert.Equal(t, "Hello! What are you working on today?", history[2].Content)
	assert.False(t, s.Typing())
	assert.Empty(t, s.LastError())
}

func TestSend_CancelledContextRecordsError(t *testing.T) {
	s := setupChat(t, WithLatency(FixedLatency(time.Minute)))

	ctx, cancel := context.WithCancel(context.Background())
	done := s.Send(ctx, "hello", "")
	cancel()

	require.Error(t, <-done)
	assert.False(t, s.Typing())
	assert.NotEmpty(t, s.LastError())

	// No assistant reply was appended.
	history := s.History()
	require.Len(t, history, 2)
	assert.Equal(t, RoleUser, history[1].Role)
}

func TestSend_RepliesStayOrdered(t *testing.T) {
	s := setupChat(t)

	require.NoError(t, <-s.Send(context.Background(), "first deadline question", ""))
	require.NoError(t, <-s.Send(context.Background(), "second risk question", ""))

	history := s.History()
	require.Len(t, history, 5)
	assert.Equal(t, "first deadline question", history[1].Content)
	assert.Equal(t, RoleAssistant, history[2].Role)
	assert.Equal(t, "second risk question", history[3].Content)
	assert.Equal(t, RoleAssistant, history[4].Role)
}

func TestClear_ResetsToWelcome(t *testing.T) {
	s := setupChat(t)
	require.NoError(t, <-s.Send(context.Background(), "hi", ""))
	require.Greater(t, len(s.History()), 1)

	s.Clear()

	history := s.History()
	require.Len(t, history, 1)
	assert.Equal(t, RoleAssistant, history[0].Role)
	assert.Empty(t, s.LastError())
}

func TestSubscribe_NotifiedOnAppend(t *testing.T) {
	s := setupChat(t)
	var fired int32
	s.Subscribe(func() { atomic.AddInt32(&fired, 1) })

	require.NoError(t, <-s.Send(context.Background(), "hi", ""))
	// One notification for the user message, one for the reply.
	assert.Equal(t, int32(2), atomic.LoadInt32(&fired))
}

func TestSend_ConcurrentDefaultReplies(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	s := setupChat(t, WithLatency(JitterLatency(rng, 0, time.Millisecond)))

	// Unmatched content forces the pseudo-random default path, so every
	// reply goroutine draws from the shared responder and latency rngs.
	const senders = 32
	errs := make(chan error, senders)
	for i := 0; i < senders; i++ {
		go func() {
			errs <- <-s.Send(context.Background(), "xyzzy", "")
		}()
	}
	for i := 0; i < senders; i++ {
		require.NoError(t, <-errs)
	}

	assert.Len(t, s.History(), 1+2*senders)
	assert.False(t, s.Typing())
}

func TestClear_DropsInFlightReply(t *testing.T) {
	s := setupChat(t, WithLatency(FixedLatency(50*time.Millisecond)))

	done := s.Send(context.Background(), "hello", "")
	s.Clear()
	require.NoError(t, <-done)

	// The pre-clear reply must not land after the reset.
	history := s.History()
	require.Len(t, history, 1)
	assert.Equal(t, RoleAssistant, history[0].Role)
	assert.False(t, s.Typing())
	assert.Empty(t, s.LastError())
}

func TestResponder_FirstMatchWins(t *testing.T) {
	responder, err := NewResponder(rand.New(rand.NewSource(1)))
	require.NoError(t, err)

	// "hello" contains both the "hello" and "hi" keywords in rule order;
	// the earlier rule must win.
	assert.Equal(t, "Hello! What are you working on today?", responder.Reply("well HELLO friend"))
	assert.Contains(t, responder.Reply("what about the deadline?"), "deadlines")
}

func TestResponder_DefaultForUnmatched(t *testing.T) {
	responder, err := NewResponder(rand.New(rand.NewSource(1)))
	require.NoError(t, err)

	got := responder.Reply("xyzzy")
	assert.Contains(t, responder.table.Defaults, got)
}
