// Package session holds the per-session state of the platform: the last
// analysis result, the synthesis cache, and the selected configuration.
//
// A session spans one user's interaction. State is created empty at session
// start, cleared on explicit reset or session end, and never shared between
// independent sessions. All mutation goes through accessor methods so there
// is a single source of truth for what the user is currently looking at.
package session

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/VijayPrakashReddy-k/deepgram-stt-tts-intelligence/internal/cache"
	"github.com/VijayPrakashReddy-k/deepgram-stt-tts-intelligence/internal/core"
	"github.com/VijayPrakashReddy-k/deepgram-stt-tts-intelligence/internal/sanitize"
)

// Selection is the user's current model, language, and voice choice. Each
// field is a pure selection validated for membership only; there is no
// cross-option validation.
type Selection struct {
	Model    core.Model
	Language core.Language
	Voice    core.Voice
}

// DefaultSelection returns the selection a fresh session starts with.
func DefaultSelection() Selection {
	return Selection{
		Model:    core.ModelNova3General,
		Language: core.LanguageEN,
		Voice:    core.VoiceThalia,
	}
}

// Validate checks every field of the selection for membership.
func (s Selection) Validate() error {
	if !s.Model.Valid() {
		return fmt.Errorf("%w: %q", core.ErrUnsupportedModel, s.Model)
	}

	if !s.Language.Valid() {
		return fmt.Errorf("%w: %q", core.ErrUnsupportedLanguage, s.Language)
	}

	if !s.Voice.Valid() {
		return fmt.Errorf("%w: %q", core.ErrUnsupportedVoice, s.Voice)
	}

	return nil
}

// State is the mutable state of one session. Safe for concurrent use, though
// normal usage is a single-user request/response cycle.
type State struct {
	id string

	mu           sync.Mutex
	lastAnalysis *core.AnalysisResult
	selection    Selection
	renderCache  *cache.SynthesisCache
}

// ID returns the session identifier.
func (s *State) ID() string {
	return s.id
}

// LastAnalysis returns the most recent successful analysis result, or nil
// when the session has not completed an analysis yet.
func (s *State) LastAnalysis() *core.AnalysisResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.lastAnalysis
}

// SetLastAnalysis records a successful analysis result. Callers must only
// invoke this after the external call succeeded; failures leave the prior
// value in place.
func (s *State) SetLastAnalysis(result *core.AnalysisResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastAnalysis = result
}

// Selection returns the session's current configuration choice.
func (s *State) Selection() Selection {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.selection
}

// SetSelection replaces the session's configuration choice after membership
// validation.
func (s *State) SetSelection(selection Selection) error {
	err := selection.Validate()
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.selection = selection

	return nil
}

// Cache returns the session's synthesis cache.
func (s *State) Cache() *cache.SynthesisCache {
	return s.renderCache
}

// Reset clears the cache and the last analysis result. The configuration
// selection survives a reset.
func (s *State) Reset() {
	s.mu.Lock()
	s.lastAnalysis = nil
	s.mu.Unlock()

	s.renderCache.Clear()
}

// Store manages session lifecycles keyed by session ID.
type Store struct {
	sanitizer     *sanitize.Sanitizer
	cacheCapacity int
	defaults      Selection

	mu       sync.Mutex
	sessions map[string]*State
}

// NewStore creates a session store. Every session it creates starts with the
// given default selection and a cache bounded to cacheCapacity.
func NewStore(sanitizer *sanitize.Sanitizer, cacheCapacity int, defaults Selection) *Store {
	return &Store{
		sanitizer:     sanitizer,
		cacheCapacity: cacheCapacity,
		defaults:      defaults,
		mu:            sync.Mutex{},
		sessions:      make(map[string]*State),
	}
}

// Begin creates a fresh session with a generated ID.
func (st *Store) Begin() *State {
	return st.GetOrCreate(uuid.NewString())
}

// GetOrCreate returns the session for the ID, creating it on first use.
func (st *Store) GetOrCreate(id string) *State {
	st.mu.Lock()
	defer st.mu.Unlock()

	if state, ok := st.sessions[id]; ok {
		return state
	}

	state := &State{
		id:           id,
		mu:           sync.Mutex{},
		lastAnalysis: nil,
		selection:    st.defaults,
		renderCache:  cache.New(st.sanitizer, st.cacheCapacity),
	}
	st.sessions[id] = state

	return state
}

// End tears the session down. A subsequent GetOrCreate with the same ID
// yields a fresh, empty session.
func (st *Store) End(id string) {
	st.mu.Lock()
	defer st.mu.Unlock()

	delete(st.sessions, id)
}

// Len returns the number of live sessions.
func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()

	return len(st.sessions)
}
