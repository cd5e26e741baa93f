package project

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Store is the single source of truth for the project collection during a
// session. All mutation goes through its methods; readers get deep-copied
// snapshots. Analyze is the only asynchronous operation: it marks the
// record analyzing synchronously, waits out a simulated latency, then
// applies the generated result. Overlapping analyze calls on the same id
// resolve last-write-wins: each call bumps a per-id generation counter and
// a finishing run only writes if its generation is still the newest.
type Store struct {
	mu         sync.RWMutex
	projects   []*Project
	currentID  string
	inflight   int
	lastErr    string
	generation map[string]uint64
	subs       []func()

	analyzer *Analyzer
	latency  Latency
	now      func() int64
	logger   zerolog.Logger
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithLatency overrides the simulated analysis latency strategy.
func WithLatency(l Latency) StoreOption {
	return func(s *Store) { s.latency = l }
}

// WithClock overrides the timestamp source (Unix milliseconds).
func WithClock(now func() int64) StoreOption {
	return func(s *Store) { s.now = now }
}

// WithAnalyzer overrides the mock analysis generator.
func WithAnalyzer(a *Analyzer) StoreOption {
	return func(s *Store) { s.analyzer = a }
}

// NewStore creates an empty project store. Call Initialize to load the
// demo dataset.
func NewStore(logger zerolog.Logger, opts ...StoreOption) *Store {
	s := &Store{
		projects:   []*Project{},
		generation: make(map[string]uint64),
		now:        func() int64 { return time.Now().UnixMilli() },
		latency:    FixedLatency(1500 * time.Millisecond),
		logger:     logger.With().Str("component", "project.store").Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.analyzer == nil {
		s.analyzer = NewAnalyzer(newDefaultRand(), s.now)
	}
	return s
}

// Subscribe registers a callback invoked after every state change. The
// callback runs outside the store lock and must not block for long.
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

// Initialize replaces the collection with the embedded demo dataset and
// clears any prior error. It is idempotent: repeated calls yield the same
// ids and content.
func (s *Store) Initialize() error {
	s.mu.Lock()
	seed, err := loadSeed(s.now())
	if err != nil {
		s.lastErr = err.Error()
		s.mu.Unlock()
		s.logger.Error().Err(err).Msg("failed to load seed dataset")
		return err
	}
	s.projects = seed
	s.currentID = ""
	s.lastErr = ""
	s.generation = make(map[string]uint64)
	s.mu.Unlock()

	s.logger.Info().Int("projects", len(seed)).Msg("store initialized with seed dataset")
	s.notify()
	return nil
}

// Add creates a new project from the input and prepends it to the
// collection so listings show newest first. Business-rule validation is
// the caller's job (see Views.Validate); Add only assigns identity and
// lifecycle defaults.
func (s *Store) Add(input CreateProjectInput) *Project {
	now := s.now()
	p := &Project{
		ID:          uuid.New().String(),
		Name:        input.Name,
		Description: input.Description,
		Status:      StatusDraft,
		Type:        input.Type,
		Tags:        append([]string{}, input.Tags...),
		Progress:    0,
		Files:       []ProjectFile{},
		Notes:       []Note{},
		Metrics:     input.Metrics,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	s.mu.Lock()
	s.projects = append([]*Project{p}, s.projects...)
	s.lastErr = ""
	s.mu.Unlock()

	s.logger.Info().Str("project_id", p.ID).Str("name", p.Name).Msg("project added")
	s.notify()
	return p.Clone()
}

// Update merges the patch into the matching record and refreshes its
// updated_at. Returns the updated snapshot, or nil if the id is unknown
// (a silent no-op, not an error).
func (s *Store) Update(id string, input UpdateProjectInput) *Project {
	s.mu.Lock()
	p := s.find(id)
	if p == nil {
		s.mu.Unlock()
		s.logger.Debug().Str("project_id", id).Msg("update for unknown project ignored")
		return nil
	}
	if input.Name != nil {
		p.Name = *input.Name
	}
	if input.Description != nil {
		p.Description = *input.Description
	}
	if input.Type != nil {
		p.Type = *input.Type
	}
	if input.Tags != nil {
		p.Tags = append([]string{}, (*input.Tags)...)
	}
	if input.Progress != nil {
		p.Progress = clampProgress(*input.Progress)
	}
	p.UpdatedAt = s.now()
	out := p.Clone()
	s.mu.Unlock()

	s.notify()
	return out
}

// Delete removes the matching record and clears the current selection if
// it pointed at the deleted project. Unknown ids are a silent no-op.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	idx := -1
	for i, p := range s.projects {
		if p.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return false
	}
	s.projects = append(s.projects[:idx], s.projects[idx+1:]...)
	if s.currentID == id {
		s.currentID = ""
	}
	// Invalidate any in-flight analysis for the id.
	s.generation[id]++
	s.mu.Unlock()

	s.logger.Info().Str("project_id", id).Msg("project deleted")
	s.notify()
	return true
}

// Get returns a snapshot of the project, or nil if not found.
func (s *Store) Get(id string) *Project {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.find(id).Clone()
}

// List returns a snapshot of the full collection.
func (s *Store) List() []*Project {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Project, len(s.projects))
	for i, p := range s.projects {
		out[i] = p.Clone()
	}
	return out
}

// SetCurrent marks a project as the current selection. Unknown ids clear
// the selection.
func (s *Store) SetCurrent(id string) {
	s.mu.Lock()
	if s.find(id) == nil {
		s.currentID = ""
	} else {
		s.currentID = id
	}
	s.mu.Unlock()
	s.notify()
}

// Current returns a snapshot of the selected project, or nil.
func (s *Store) Current() *Project {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.find(s.currentID).Clone()
}

// Loading reports whether any analysis is in flight.
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inflight > 0
}

// LastError returns the most recent store-level error message, or "".
func (s *Store) LastError() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

// AddNote appends a note to the project. Returns the stored note, or nil
// if the project id is unknown.
func (s *Store) AddNote(id, content string, ntype NoteType, tags []string) *Note {
	note := Note{
		ID:        uuid.New().String(),
		Content:   content,
		Type:      ntype,
		Tags:      append([]string{}, tags...),
		CreatedAt: s.now(),
	}

	s.mu.Lock()
	p := s.find(id)
	if p == nil {
		s.mu.Unlock()
		return nil
	}
	p.Notes = append(p.Notes, note)
	p.UpdatedAt = s.now()
	s.mu.Unlock()

	s.notify()
	return &note
}

// DeleteNote removes a note from the project. Unknown ids are a no-op.
func (s *Store) DeleteNote(id, noteID string) bool {
	s.mu.Lock()
	p := s.find(id)
	if p == nil {
		s.mu.Unlock()
		return false
	}
	removed := false
	for i, n := range p.Notes {
		if n.ID == noteID {
			p.Notes = append(p.Notes[:i], p.Notes[i+1:]...)
			removed = true
			break
		}
	}
	if removed {
		p.UpdatedAt = s.now()
	}
	s.mu.Unlock()

	if removed {
		s.notify()
	}
	return removed
}

// AddFile records an uploaded artifact's metadata on the project. Returns
// the stored record, or nil if the project id is unknown.
func (s *Store) AddFile(id, name string, size int64, mimeType string) *ProjectFile {
	file := ProjectFile{
		ID:         uuid.New().String(),
		Name:       name,
		Size:       size,
		MimeType:   mimeType,
		UploadedAt: s.now(),
	}

	s.mu.Lock()
	p := s.find(id)
	if p == nil {
		s.mu.Unlock()
		return nil
	}
	p.Files = append(p.Files, file)
	p.UpdatedAt = s.now()
	s.mu.Unlock()

	s.notify()
	return &file
}

// Analyze runs the mock analysis workflow for a project. The status
// transition to analyzing is synchronous and visible before this returns;
// the result lands after the simulated latency. The returned channel
// yields the terminal error (nil on success) and is closed afterwards.
//
// An unknown id still goes through the loading cycle but has no effect.
// Cancelling ctx during the wait takes the failure path: the record moves
// to error and the message is recorded on the store.
func (s *Store) Analyze(ctx context.Context, id string, depth AnalysisType) <-chan error {
	done := make(chan error, 1)
	if depth != AnalysisInitial && depth != AnalysisDeep {
		depth = AnalysisInitial
	}

	s.mu.Lock()
	s.inflight++
	s.generation[id]++
	gen := s.generation[id]
	p := s.find(id)
	if p != nil {
		p.Status = StatusAnalyzing
		p.UpdatedAt = s.now()
	}
	s.mu.Unlock()
	s.notify()

	if p == nil {
		s.logger.Warn().Str("project_id", id).Msg("analyze requested for unknown project")
	} else {
		s.logger.Info().Str("project_id", id).Str("depth", string(depth)).Msg("analysis started")
	}

	go func() {
		defer close(done)

		var failure error
		timer := time.NewTimer(s.latency())
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			failure = fmt.Errorf("analysis interrupted: %w", ctx.Err())
		}

		s.mu.Lock()
		s.inflight--
		if s.generation[id] != gen {
			// A newer analyze call (or a delete) superseded this run.
			s.mu.Unlock()
			s.logger.Debug().Str("project_id", id).Msg("stale analysis discarded")
			done <- nil
			return
		}
		rec := s.find(id)
		if rec == nil {
			s.mu.Unlock()
			s.notify()
			done <- nil
			return
		}

		if failure != nil {
			rec.Status = StatusError
			rec.UpdatedAt = s.now()
			s.lastErr = failure.Error()
			s.mu.Unlock()
			s.logger.Error().Err(failure).Str("project_id", id).Msg("analysis failed")
			s.notify()
			done <- failure
			return
		}

		rec.Analysis = s.analyzer.Generate(depth)
		rec.Status = StatusComplete
		rec.Progress = 100
		rec.UpdatedAt = s.now()
		s.lastErr = ""
		s.mu.Unlock()

		s.logger.Info().Str("project_id", id).Msg("analysis complete")
		s.notify()
		done <- nil
	}()

	return done
}

// find returns the live record for id; callers must hold the lock.
func (s *Store) find(id string) *Project {
	if id == "" {
		return nil
	}
	for _, p := range s.projects {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func clampProgress(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
