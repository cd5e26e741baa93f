package chat

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Latency produces the simulated delay before the assistant reply lands.
type Latency func() time.Duration

// FixedLatency returns a Latency that always yields d.
func FixedLatency(d time.Duration) Latency {
	return func() time.Duration { return d }
}

// JitterLatency returns a Latency drawing uniformly from [min, max].
// The returned func is safe for concurrent use; rand.Rand itself is not,
// and every reply goroutine draws a delay.
func JitterLatency(rng *rand.Rand, min, max time.Duration) Latency {
	if max < min {
		max = min
	}
	var mu sync.Mutex
	return func() time.Duration {
		if max == min {
			return min
		}
		mu.Lock()
		defer mu.Unlock()
		return min + time.Duration(rng.Int63n(int64(max-min)+1))
	}
}

// Store owns the conversation transcript. Messages are strictly
// append-ordered: a Send appends the user message synchronously and its
// reply asynchronously, so the reply always follows its trigger.
type Store struct {
	mu      sync.RWMutex
	log     []Message
	typing  bool
	lastErr string
	gen     uint64
	subs    []func()

	responder *Responder
	latency   Latency
	now       func() int64
	logger    zerolog.Logger
}

// StoreOption configures a chat Store.
type StoreOption func(*Store)

// WithLatency overrides the simulated reply latency.
func WithLatency(l Latency) StoreOption {
	return func(s *Store) { s.latency = l }
}

// WithClock overrides the timestamp source (Unix milliseconds).
func WithClock(now func() int64) StoreOption {
	return func(s *Store) { s.now = now }
}

// NewStore creates a chat store seeded with the welcome message.
func NewStore(responder *Responder, logger zerolog.Logger, opts ...StoreOption) *Store {
	s := &Store{
		responder: responder,
		latency:   FixedLatency(800 * time.Millisecond),
		now:       func() int64 { return time.Now().UnixMilli() },
		logger:    logger.With().Str("component", "chat.store").Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = []Message{s.welcomeMessage()}
	return s
}

func (s *Store) welcomeMessage() Message {
	return Message{
		ID:        uuid.New().String(),
		Content:   s.responder.Welcome(),
		Role:      RoleAssistant,
		Timestamp: s.now(),
	}
}

// Subscribe registers a callback invoked after every transcript change.
// Callbacks run outside the lock and must not block for long.
func (s *Store) Subscribe(fn func()) {
	s.mu.Lock()
	s.subs = append(s.subs, fn)
	s.mu.Unlock()
}

func (s *Store) notify() {
	s.mu.RLock()
	subs := append([]func(){}, s.subs...)
	s.mu.RUnlock()
	for _, fn := range subs {
		fn()
	}
}

// Send appends the user message immediately, then generates the assistant
// reply after the simulated latency. The returned channel yields the
// terminal error (nil on success) and is closed afterwards. Cancelling ctx
// during the wait records the error and clears typing without a reply.
func (s *Store) Send(ctx context.Context, content, projectID string) <-chan error {
	done := make(chan error, 1)

	userMsg := Message{
		ID:        uuid.New().String(),
		Content:   content,
		Role:      RoleUser,
		ProjectID: projectID,
		Timestamp: s.now(),
	}

	s.mu.Lock()
	s.log = append(s.log, userMsg)
	s.typing = true
	s.lastErr = ""
	gen := s.gen
	s.mu.Unlock()
	s.notify()

	go func() {
		defer close(done)

		timer := time.NewTimer(s.latency())
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			err := fmt.Errorf("reply interrupted: %w", ctx.Err())
			s.mu.Lock()
			if s.gen != gen {
				// Cleared while waiting; nothing left to report against.
				s.mu.Unlock()
				done <- nil
				return
			}
			s.typing = false
			s.lastErr = err.Error()
			s.mu.Unlock()
			s.logger.Warn().Err(err).Msg("chat send aborted")
			s.notify()
			done <- err
			return
		}

		reply := Message{
			ID:        uuid.New().String(),
			Content:   s.responder.Reply(content),
			Role:      RoleAssistant,
			ProjectID: projectID,
			Timestamp: s.now(),
		}

		s.mu.Lock()
		if s.gen != gen {
			s.mu.Unlock()
			s.logger.Debug().Msg("stale reply discarded after clear")
			done <- nil
			return
		}
		s.log = append(s.log, reply)
		s.typing = false
		s.mu.Unlock()

		s.notify()
		done <- nil
	}()

	return done
}

// Clear resets the transcript to the single welcome message. In-flight
// replies from earlier sends are invalidated so they cannot land after
// the reset.
func (s *Store) Clear() {
	s.mu.Lock()
	s.log = []Message{s.welcomeMessage()}
	s.typing = false
	s.lastErr = ""
	s.gen++
	s.mu.Unlock()
	s.logger.Info().Msg("chat transcript cleared")
	s.notify()
}

// History returns a snapshot of the transcript in insertion order.
func (s *Store) History() []Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Message(nil), s.log...)
}

// Typing reports whether a mock reply is pending.
func (s *Store) Typing() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.typing
}

// LastError returns the most recent store-level error message, or "".
func (s *Store) LastError() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}
