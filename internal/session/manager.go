// Copyright (c) 2025 Seraa Project
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/kiann/seraa-tui/internal/gemini"
	"github.com/kiann/seraa-tui/internal/model"
	"github.com/kiann/seraa-tui/internal/prompt"
	"github.com/kiann/seraa-tui/internal/store"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrEmptyInput rejects a turn whose input is empty or whitespace-only.
	ErrEmptyInput = errors.New("input is empty")

	// ErrNoCredential rejects a generation operation before any state
	// mutation when no API credential is configured.
	ErrNoCredential = errors.New("no API credential configured")

	// ErrTurnInFlight rejects an operation while another turn is running
	// against the same session.
	ErrTurnInFlight = errors.New("a turn is already in flight for this session")

	// ErrInteractionNotFound rejects an edit targeting an unknown
	// interaction.
	ErrInteractionNotFound = errors.New("interaction not found in session")

	// ErrNothingToRemember rejects a reflection over an empty session.
	ErrNothingToRemember = errors.New("nothing to remember yet")
)

// User-visible response texts written into an interaction when generation
// does not produce an answer.
const (
	blockedResponseText = "Response blocked due to safety settings. Adjust the level in Settings if needed."
	errorResponsePrefix = "Sorry, I encountered an error: "
)

// =============================================================================
// GENERATOR
// =============================================================================

// Generator is the generation surface the manager drives. *gemini.Client
// satisfies it; tests substitute a stub.
type Generator interface {
	Generate(ctx context.Context, prompt, credential string, threshold model.SafetyThreshold) (string, error)
	GenerateStream(ctx context.Context, prompt, credential string, threshold model.SafetyThreshold, callback gemini.StreamCallback) error
}

// =============================================================================
// MANAGER
// =============================================================================

// Config holds tunables for the lifecycle manager.
type Config struct {
	// ReflectionWindow caps how many trailing interactions the "remember"
	// excerpt includes (default: 10).
	ReflectionWindow int
}

// DefaultConfig returns the default manager configuration.
func DefaultConfig() Config {
	return Config{ReflectionWindow: 10}
}

// Manager drives the conversation lifecycle against a store and a
// generation client. It is safe for concurrent use; turn operations are
// serialized per session.
type Manager struct {
	store   *store.Store
	gen     Generator
	builder *prompt.Builder
	config  Config
	now     func() time.Time

	mu   sync.Mutex
	busy map[int64]bool
}

// NewManager creates a lifecycle manager.
func NewManager(st *store.Store, gen Generator, builder *prompt.Builder, cfg Config) *Manager {
	if cfg.ReflectionWindow == 0 {
		cfg.ReflectionWindow = DefaultConfig().ReflectionWindow
	}
	return &Manager{
		store:   st,
		gen:     gen,
		builder: builder,
		config:  cfg,
		now:     time.Now,
		busy:    make(map[int64]bool),
	}
}

// WithClock swaps the manager's clock. Test hook.
func (m *Manager) WithClock(now func() time.Time) *Manager {
	m.now = now
	return m
}

// =============================================================================
// SESSION SELECTION
// =============================================================================

// StartSession creates, persists, and returns a fresh session.
func (m *Manager) StartSession(ctx context.Context) (*model.Session, error) {
	sess := model.NewSession(m.now())
	if _, err := m.store.UpsertSession(ctx, sess); err != nil {
		return nil, fmt.Errorf("starting session: %w", err)
	}
	return sess, nil
}

// ActiveSession returns the session to load on startup: the pinned session
// with the latest creation time, an unpinned one if nothing is pinned, or a
// freshly started session when the store is empty. The user never faces an
// empty session set.
func (m *Manager) ActiveSession(ctx context.Context) (*model.Session, error) {
	sessions, err := m.store.Sessions(ctx)
	if err != nil {
		return nil, err
	}
	if latest := model.SelectLatest(sessions); latest != nil {
		return latest, nil
	}
	return m.StartSession(ctx)
}

// Sessions returns all stored sessions in selection order.
func (m *Manager) Sessions(ctx context.Context) ([]*model.Session, error) {
	sessions, err := m.store.Sessions(ctx)
	if err != nil {
		return nil, err
	}
	model.SortSessions(sessions)
	return sessions, nil
}

// Session loads one session by id.
func (m *Manager) Session(ctx context.Context, id int64) (*model.Session, error) {
	return m.store.Session(ctx, id)
}

// =============================================================================
// TURN SUBMISSION
// =============================================================================

// SubmitTurn runs one conversation turn: it appends an optimistic
// interaction carrying the input, generates a response, resolves the
// interaction, and persists the session. Generation failures do not fail
// the turn; the failure is written into the interaction's response text.
// Only rejections (empty input, missing credential, busy session) and
// persistence failures return an error.
//
// When onFragment is non-nil the response is streamed and each fragment is
// delivered as it arrives; otherwise a single blocking call is made.
func (m *Manager) SubmitTurn(ctx context.Context, sess *model.Session, gc *model.GlobalContext, input, credential string, onFragment func(string)) (*model.Interaction, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, ErrEmptyInput
	}
	if credential == "" {
		return nil, ErrNoCredential
	}
	if err := m.acquire(sess.ID); err != nil {
		return nil, err
	}
	defer m.release(sess.ID)

	history := append([]*model.Interaction(nil), sess.Interactions...)
	interaction := model.NewInteraction(input)
	sess.Interactions = append(sess.Interactions, interaction)
	firstTurn := len(sess.Interactions) == 1

	p := m.builder.Build(gc, history, input)
	interaction.Response = m.generate(ctx, p, credential, gc.SafetyThreshold, onFragment)

	if firstTurn {
		if name, err := m.generateTitle(ctx, input, credential); err == nil && name != "" {
			sess.Name = name
		}
	}

	if err := m.persist(ctx, sess); err != nil {
		return interaction, err
	}
	return interaction, nil
}

// EditAndRegenerate rewrites one past interaction and replays from it: all
// strictly later interactions are discarded, the target's input is replaced,
// and a fresh response is generated against the truncated history. The
// discarded turns are gone from the session's log permanently.
func (m *Manager) EditAndRegenerate(ctx context.Context, sess *model.Session, gc *model.GlobalContext, interactionID, newInput, credential string, onFragment func(string)) (*model.Interaction, error) {
	newInput = strings.TrimSpace(newInput)
	if newInput == "" {
		return nil, ErrEmptyInput
	}
	if credential == "" {
		// Rejected before the truncation touches anything: a doomed
		// call here would still discard the later interactions.
		return nil, ErrNoCredential
	}
	if err := m.acquire(sess.ID); err != nil {
		return nil, err
	}
	defer m.release(sess.ID)

	target, idx := sess.FindInteraction(interactionID)
	if target == nil {
		return nil, ErrInteractionNotFound
	}

	sess.TruncateAfter(idx)
	target.Input = newInput
	target.Response = ""

	p := m.builder.Build(gc, sess.Interactions[:idx], newInput)
	target.Response = m.generate(ctx, p, credential, gc.SafetyThreshold, onFragment)

	if err := m.persist(ctx, sess); err != nil {
		return target, err
	}
	return target, nil
}

// =============================================================================
// REFLECTION
// =============================================================================

// ReflectAndRemember distills a long-term observation from the session's
// recent interactions and appends it to the global context's memory. The
// operation is all-or-nothing: a generation or persistence failure leaves
// the memory unchanged. Returns the reflection text on success.
func (m *Manager) ReflectAndRemember(ctx context.Context, sess *model.Session, gc *model.GlobalContext, credential string) (string, error) {
	if len(sess.Interactions) == 0 {
		return "", ErrNothingToRemember
	}
	if credential == "" {
		return "", ErrNoCredential
	}
	if err := m.acquire(sess.ID); err != nil {
		return "", err
	}
	defer m.release(sess.ID)

	p := prompt.ReflectionPrompt(gc, sess.Interactions, m.config.ReflectionWindow)
	reflection, err := m.gen.Generate(ctx, p, credential, gc.SafetyThreshold)
	if err != nil {
		return "", fmt.Errorf("reflection failed: %w", err)
	}
	reflection = strings.TrimSpace(reflection)

	gc.Remember(m.now(), reflection)
	if err := m.store.SaveGlobalContext(ctx, gc); err != nil {
		gc.LongTermMemory = gc.LongTermMemory[:len(gc.LongTermMemory)-1]
		return "", fmt.Errorf("saving memory: %w", err)
	}
	return reflection, nil
}

// =============================================================================
// SESSION MAINTENANCE
// =============================================================================

// DeleteSession removes a session and returns the next one to activate:
// the best remaining session by the pinned-first selection rule, or a fresh
// session when none remain.
func (m *Manager) DeleteSession(ctx context.Context, id int64) (*model.Session, error) {
	if err := m.acquire(id); err != nil {
		return nil, err
	}
	err := m.store.DeleteSession(ctx, id)
	m.release(id)
	if err != nil && !errors.Is(err, store.ErrSessionNotFound) {
		return nil, err
	}
	return m.ActiveSession(ctx)
}

// RenameSession sets a session's display name and persists it.
func (m *Manager) RenameSession(ctx context.Context, sess *model.Session, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyInput
	}
	sess.Name = name
	_, err := m.store.UpsertSession(ctx, sess)
	return err
}

// TogglePin flips a session's pinned flag and persists it.
func (m *Manager) TogglePin(ctx context.Context, sess *model.Session) error {
	sess.IsPinned = !sess.IsPinned
	_, err := m.store.UpsertSession(ctx, sess)
	return err
}

// Busy reports whether a turn is in flight for the session.
func (m *Manager) Busy(id int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.busy[id]
}

// =============================================================================
// INTERNALS
// =============================================================================

// acquire takes the session's busy flag, failing if it is already held.
func (m *Manager) acquire(id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.busy[id] {
		return ErrTurnInFlight
	}
	m.busy[id] = true
	return nil
}

func (m *Manager) release(id int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.busy, id)
}

// generate invokes the client and converts every outcome into response
// text: the answer on success, the fixed safety notice on a content block,
// and an error message on any other failure. The turn always resolves.
func (m *Manager) generate(ctx context.Context, p, credential string, threshold model.SafetyThreshold, onFragment func(string)) string {
	if onFragment == nil {
		text, err := m.gen.Generate(ctx, p, credential, threshold)
		return resolveResponse(text, err)
	}

	acc := gemini.NewStreamAccumulator()
	err := m.gen.GenerateStream(ctx, p, credential, threshold, func(chunk gemini.StreamChunk) {
		acc.Add(chunk)
		if !chunk.Done {
			onFragment(chunk.Text)
		}
	})
	return resolveResponse(acc.Content(), err)
}

// resolveResponse maps a generation outcome to the interaction's response
// text.
func resolveResponse(text string, err error) string {
	if err == nil {
		return text
	}
	if gemini.IsBlocked(err) {
		return blockedResponseText
	}
	return errorResponsePrefix + err.Error()
}

// generateTitle asks for a short session title after the first turn. The
// sub-call always runs with the filter disabled so a strict user threshold
// cannot block its own session's name.
func (m *Manager) generateTitle(ctx context.Context, input, credential string) (string, error) {
	title, err := m.gen.Generate(ctx, prompt.TitlePrompt(input), credential, model.BlockNone)
	if err != nil {
		return "", err
	}
	return cleanTitle(title), nil
}

// cleanTitle strips the quoting and stray newlines models like to wrap
// titles in.
func cleanTitle(s string) string {
	s = strings.TrimSpace(s)
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		s = s[:idx]
	}
	return strings.Trim(strings.TrimSpace(s), `"'`)
}

// persist writes the session back, guarding against a turn that resolved
// after its session was deleted: stale results are dropped rather than
// resurrecting the row.
func (m *Manager) persist(ctx context.Context, sess *model.Session) error {
	if sess.ID != 0 {
		exists, err := m.store.HasSession(ctx, sess.ID)
		if err != nil {
			return err
		}
		if !exists {
			return nil
		}
	}
	_, err := m.store.UpsertSession(ctx, sess)
	return err
}
