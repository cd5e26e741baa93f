package project

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

// tickClock returns a clock that advances by one millisecond per call, so
// every mutation gets a strictly increasing timestamp.
func tickClock() func() int64 {
	var n int64
	return func() int64 { return atomic.AddInt64(&n, 1) }
}

func setupStore(t *testing.T, opts ...StoreOption) *Store {
	t.Helper()
	clock := tickClock()
	base := []StoreOption{
		WithClock(clock),
		WithLatency(FixedLatency(0)),
		WithAnalyzer(NewAnalyzer(rand.New(rand.NewSource(42)), clock)),
	}
	return NewStore(zerolog.Nop(), append(base, opts...)...)
}

func TestInitialize_Idempotent(t *testing.T) {
	s := setupStore(t)

	require.NoError(t, s.Initialize())
	first := s.List()
	require.NotEmpty(t, first)

	require.NoError(t, s.Initialize())
	second := s.List()

	require.Len(t, second, len(first))
	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID)
		assert.Equal(t, first[i].Name, second[i].Name)
		assert.Equal(t, first[i].Status, second[i].Status)
	}
	assert.Empty(t, s.LastError())
}

func TestAdd_AssignsIdentityAndDefaults(t *testing.T) {
	s := setupStore(t)

	p := s.Add(CreateProjectInput{Name: "Test", Description: "D", Type: TypeWeb, Tags: []string{"x"}})
	require.NotNil(t, p)
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, StatusDraft, p.Status)
	assert.Equal(t, 0, p.Progress)
	assert.Equal(t, p.CreatedAt, p.UpdatedAt)

	other := s.Add(CreateProjectInput{Name: "Other", Description: "D", Type: TypeMobile, Tags: []string{}})
	assert.NotEqual(t, p.ID, other.ID)

	// Newest first.
	list := s.List()
	require.Len(t, list, 2)
	assert.Equal(t, other.ID, list[0].ID)
}

func TestUpdate_PatchesAndTouches(t *testing.T) {
	s := setupStore(t)
	p := s.Add(CreateProjectInput{Name: "Test", Description: "D", Type: TypeWeb, Tags: []string{"x"}})

	name := "Renamed"
	got := s.Update(p.ID, UpdateProjectInput{Name: &name})
	require.NotNil(t, got)
	assert.Equal(t, "Renamed", got.Name)
	assert.Equal(t, "D", got.Description)
	assert.Greater(t, got.UpdatedAt, p.UpdatedAt)

	progress := 150
	got = s.Update(p.ID, UpdateProjectInput{Progress: &progress})
	assert.Equal(t, 100, got.Progress)
}

func TestUpdate_UnknownIDIsNoOp(t *testing.T) {
	s := setupStore(t)
	assert.Nil(t, s.Update("nope", UpdateProjectInput{}))
	assert.Empty(t, s.LastError())
}

func TestDelete_RemovesAndClearsCurrent(t *testing.T) {
	s := setupStore(t)
	p := s.Add(CreateProjectInput{Name: "Test", Description: "D", Type: TypeWeb, Tags: []string{}})
	s.SetCurrent(p.ID)
	require.NotNil(t, s.Current())

	assert.True(t, s.Delete(p.ID))
	assert.Nil(t, s.Get(p.ID))
	assert.Nil(t, s.Current())
	assert.False(t, s.Delete(p.ID))

	views := NewViews(zerolog.Nop())
	assert.Empty(t, views.Filter(s.List(), Criteria{}))
	assert.Equal(t, 0, views.Stats(s.List()).Total)
}

func TestAnalyze_StateMachine(t *testing.T) {
	s := setupStore(t, WithLatency(FixedLatency(100*time.Millisecond)))
	p := s.Add(CreateProjectInput{Name: "Test", Description: "D", Type: TypeWeb, Tags: []string{"x"}})

	done := s.Analyze(context.Background(), p.ID, AnalysisInitial)

	// The transition to analyzing is synchronous.
	mid := s.Get(p.ID)
	require.NotNil(t, mid)
	assert.Equal(t, StatusAnalyzing, mid.Status)

	require.NoError(t, <-done)

	got := s.Get(p.ID)
	require.NotNil(t, got)
	assert.Equal(t, StatusComplete, got.Status)
	assert.Equal(t, 100, got.Progress)
	require.NotNil(t, got.Analysis)
	assert.Equal(t, AnalysisInitial, got.Analysis.Type)
	assert.GreaterOrEqual(t, got.Analysis.Confidence, 75)
	assert.LessOrEqual(t, got.Analysis.Confidence, 95)
	assert.GreaterOrEqual(t, got.Analysis.TechnicalScore, 70)
	assert.LessOrEqual(t, got.Analysis.TechnicalScore, 95)
	assert.Len(t, got.Analysis.Keywords, 5)
	assert.Len(t, got.Analysis.Recommendations, 4)
	assert.False(t, s.Loading())
}

func TestAnalyze_UnknownIDDoesNotCrash(t *testing.T) {
	s := setupStore(t)

	done := s.Analyze(context.Background(), "missing", AnalysisInitial)
	require.NoError(t, <-done)
	assert.False(t, s.Loading())
	assert.Empty(t, s.LastError())
}

func TestAnalyze_ReentrantLastWriteWins(t *testing.T) {
	// First call waits 200ms, second 10ms: the second supersedes the
	// first, so the first run's late completion must be discarded.
	delays := []time.Duration{200 * time.Millisecond, 10 * time.Millisecond}
	var call int32
	latency := func() time.Duration {
		i := atomic.AddInt32(&call, 1) - 1
		if int(i) < len(delays) {
			return delays[i]
		}
		return 0
	}

	s := setupStore(t, WithLatency(latency))
	p := s.Add(CreateProjectInput{Name: "Test", Description: "D", Type: TypeWeb, Tags: []string{}})

	first := s.Analyze(context.Background(), p.ID, AnalysisInitial)
	second := s.Analyze(context.Background(), p.ID, AnalysisDeep)

	require.NoError(t, <-second)
	require.NoError(t, <-first)

	got := s.Get(p.ID)
	require.NotNil(t, got.Analysis)
	assert.Equal(t, AnalysisDeep, got.Analysis.Type)
	assert.Equal(t, StatusComplete, got.Status)
}

func TestAnalyze_CancelledContextTakesFailurePath(t *testing.T) {
	s := setupStore(t, WithLatency(FixedLatency(time.Minute)))
	p := s.Add(CreateProjectInput{Name: "Test", Description: "D", Type: TypeWeb, Tags: []string{}})

	ctx, cancel := context.WithCancel(context.Background())
	done := s.Analyze(ctx, p.ID, AnalysisInitial)
	cancel()

	err := <-done
	require.Error(t, err)

	got := s.Get(p.ID)
	assert.Equal(t, StatusError, got.Status)
	assert.Nil(t, got.Analysis)
	assert.NotEmpty(t, s.LastError())
}

func TestAnalyze_DeleteInvalidatesInflightRun(t *testing.T) {
	s := setupStore(t, WithLatency(FixedLatency(50*time.Millisecond)))
	p := s.Add(CreateProjectInput{Name: "Test", Description: "D", Type: TypeWeb, Tags: []string{}})

	done := s.Analyze(context.Background(), p.ID, AnalysisInitial)
	require.True(t, s.Delete(p.ID))
	require.NoError(t, <-done)

	assert.Nil(t, s.Get(p.ID))
}

func TestNotesAndFiles(t *testing.T) {
	s := setupStore(t)
	p := s.Add(CreateProjectInput{Name: "Test", Description: "D", Type: TypeWeb, Tags: []string{}})

	note := s.AddNote(p.ID, "remember this", NoteUser, []string{"todo"})
	require.NotNil(t, note)
	assert.NotEmpty(t, note.ID)

	file := s.AddFile(p.ID, "brief.pdf", 2048, "application/pdf")
	require.NotNil(t, file)

	got := s.Get(p.ID)
	require.Len(t, got.Notes, 1)
	require.Len(t, got.Files, 1)
	assert.Equal(t, "brief.pdf", got.Files[0].Name)

	assert.True(t, s.DeleteNote(p.ID, note.ID))
	assert.False(t, s.DeleteNote(p.ID, note.ID))
	assert.Nil(t, s.AddNote("missing", "x", NoteUser, nil))
}

func TestSubscribe_NotifiedOnMutation(t *testing.T) {
	s := setupStore(t)
	var fired int32
	s.Subscribe(func() { atomic.AddInt32(&fired, 1) })

	s.Add(CreateProjectInput{Name: "Test", Description: "D", Type: TypeWeb, Tags: []string{}})
	assert.Equal(t, int32(1), atomic.LoadInt32(&fired))

	require.NoError(t, s.Initialize())
	assert.Equal(t, int32(2), atomic.LoadInt32(&fired))
}

func TestAnalyze_ConcurrentProjectsWithJitter(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	s := setupStore(t, WithLatency(JitterLatency(rng, 0, time.Millisecond)))

	// Every analyze goroutine draws its delay from the shared rng.
	ids := make([]string, 8)
	for i := range ids {
		ids[i] = s.Add(CreateProjectInput{Name: "Load", Description: "d", Type: TypeWeb, Tags: []string{}}).ID
	}

	errs := make(chan error, len(ids))
	for _, id := range ids {
		go func(id string) {
			errs <- <-s.Analyze(context.Background(), id, AnalysisInitial)
		}(id)
	}
	for range ids {
		require.NoError(t, <-errs)
	}

	for _, id := range ids {
		got := s.Get(id)
		assert.Equal(t, StatusComplete, got.Status)
		require.NotNil(t, got.Analysis)
	}
}

func TestScenario_EndToEnd(t *testing.T) {
	s := setupStore(t)
	views := NewViews(zerolog.Nop())

	p := s.Add(CreateProjectInput{Name: "Test", Description: "D", Type: TypeWeb, Tags: []string{"x"}})
	require.NotEmpty(t, p.ID)
	assert.Equal(t, StatusDraft, p.Status)
	assert.Equal(t, 0, p.Progress)

	require.NoError(t, <-s.Analyze(context.Background(), p.ID, AnalysisInitial))
	got := s.Get(p.ID)
	assert.Equal(t, StatusComplete, got.Status)
	assert.Equal(t, 100, got.Progress)
	assert.Equal(t, AnalysisInitial, got.Analysis.Type)

	name := "Renamed"
	updated := s.Update(p.ID, UpdateProjectInput{Name: &name})
	assert.Equal(t, "Renamed", updated.Name)
	assert.Greater(t, updated.UpdatedAt, got.UpdatedAt)

	before := views.Stats(s.List()).Total
	s.Delete(p.ID)
	assert.Equal(t, before-1, views.Stats(s.List()).Total)
}
