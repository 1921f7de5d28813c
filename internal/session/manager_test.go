// Copyright (c) 2025 Seraa Project
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/kiann/seraa-tui/internal/gemini"
	"github.com/kiann/seraa-tui/internal/model"
	"github.com/kiann/seraa-tui/internal/prompt"
	"github.com/kiann/seraa-tui/internal/store"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

// stubCall records one generation request seen by the stub.
type stubCall struct {
	Prompt    string
	Threshold model.SafetyThreshold
}

// stubGen scripts generation outcomes. The respond function receives each
// prompt; title sub-calls are recognizable by their fixed instruction
// prefix.
type stubGen struct {
	mu      sync.Mutex
	calls   []stubCall
	respond func(prompt string) (string, error)
}

func (g *stubGen) Generate(ctx context.Context, p, credential string, threshold model.SafetyThreshold) (string, error) {
	g.mu.Lock()
	g.calls = append(g.calls, stubCall{Prompt: p, Threshold: threshold})
	g.mu.Unlock()
	return g.respond(p)
}

func (g *stubGen) GenerateStream(ctx context.Context, p, credential string, threshold model.SafetyThreshold, callback gemini.StreamCallback) error {
	g.mu.Lock()
	g.calls = append(g.calls, stubCall{Prompt: p, Threshold: threshold})
	g.mu.Unlock()

	text, err := g.respond(p)
	if err != nil {
		return err
	}
	// Deliver in two fragments to exercise accumulation.
	mid := len(text) / 2
	callback(gemini.StreamChunk{Text: text[:mid]})
	callback(gemini.StreamChunk{Text: text[mid:]})
	callback(gemini.StreamChunk{Done: true})
	return nil
}

func (g *stubGen) recorded() []stubCall {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]stubCall(nil), g.calls...)
}

func isTitlePrompt(p string) bool {
	return strings.HasPrefix(p, "Based on this initial user prompt")
}

// answering builds a respond function: title calls get title, everything
// else gets answer.
func answering(answer, title string) func(string) (string, error) {
	return func(p string) (string, error) {
		if isTitlePrompt(p) {
			return title, nil
		}
		return answer, nil
	}
}

func newTestManager(t *testing.T, gen Generator) (*Manager, *store.Store) {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "seraa.db"))
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	builder := prompt.NewBuilder("Asia/Jakarta", "WIB")
	m := NewManager(st, gen, builder, DefaultConfig())
	m.WithClock(func() time.Time {
		return time.Date(2025, time.July, 21, 14, 30, 0, 0, time.UTC)
	})
	return m, st
}

func mustStart(t *testing.T, m *Manager) *model.Session {
	t.Helper()
	sess, err := m.StartSession(context.Background())
	if err != nil {
		t.Fatalf("StartSession failed: %v", err)
	}
	return sess
}

// =============================================================================
// SUBMIT TURN TESTS
// =============================================================================

func TestSubmitTurnAppendsAndPersists(t *testing.T) {
	gen := &stubGen{respond: answering("hi there", "Quick Hello")}
	m, st := newTestManager(t, gen)
	sess := mustStart(t, m)
	gc := model.DefaultGlobalContext()

	interaction, err := m.SubmitTurn(context.Background(), sess, gc, "hello", "key", nil)
	if err != nil {
		t.Fatalf("SubmitTurn failed: %v", err)
	}

	if interaction.Input != "hello" || interaction.Response != "hi there" {
		t.Errorf("interaction = %+v", interaction)
	}
	if len(sess.Interactions) != 1 {
		t.Fatalf("session has %d interactions, want 1", len(sess.Interactions))
	}

	reloaded, err := st.Session(context.Background(), sess.ID)
	if err != nil {
		t.Fatalf("reloading session: %v", err)
	}
	if len(reloaded.Interactions) != 1 || reloaded.Interactions[0].Response != "hi there" {
		t.Errorf("persisted session = %+v", reloaded)
	}
}

func TestSubmitTurnRejectsEmptyInput(t *testing.T) {
	gen := &stubGen{respond: answering("x", "t")}
	m, _ := newTestManager(t, gen)
	sess := mustStart(t, m)

	_, err := m.SubmitTurn(context.Background(), sess, model.DefaultGlobalContext(), "   \n ", "key", nil)
	if !errors.Is(err, ErrEmptyInput) {
		t.Errorf("err = %v, want ErrEmptyInput", err)
	}
	if len(sess.Interactions) != 0 {
		t.Error("rejected turn mutated the session")
	}
}

func TestSubmitTurnRejectsMissingCredential(t *testing.T) {
	gen := &stubGen{respond: answering("x", "t")}
	m, st := newTestManager(t, gen)
	sess := mustStart(t, m)

	_, err := m.SubmitTurn(context.Background(), sess, model.DefaultGlobalContext(), "hello", "", nil)
	if !errors.Is(err, ErrNoCredential) {
		t.Fatalf("err = %v, want ErrNoCredential", err)
	}
	if len(gen.recorded()) != 0 {
		t.Error("generator called despite missing credential")
	}
	if len(sess.Interactions) != 0 {
		t.Error("rejected turn mutated the session")
	}

	reloaded, err := st.Session(context.Background(), sess.ID)
	if err != nil {
		t.Fatalf("reloading session: %v", err)
	}
	if len(reloaded.Interactions) != 0 {
		t.Error("rejected turn was persisted")
	}
}

func TestSubmitTurnSingleFlightPerSession(t *testing.T) {
	started := make(chan struct{})
	unblock := make(chan struct{})
	var signalStart sync.Once
	gen := &stubGen{respond: func(p string) (string, error) {
		if isTitlePrompt(p) {
			return "title", nil
		}
		// Only the first turn blocks; later turns in this test run
		// straight through.
		signalStart.Do(func() {
			close(started)
			<-unblock
		})
		return "done", nil
	}}
	m, _ := newTestManager(t, gen)
	sess := mustStart(t, m)
	gc := model.DefaultGlobalContext()

	errCh := make(chan error, 1)
	go func() {
		_, err := m.SubmitTurn(context.Background(), sess.Clone(), gc, "first", "key", nil)
		errCh <- err
	}()

	<-started
	_, err := m.SubmitTurn(context.Background(), sess.Clone(), gc, "second", "key", nil)
	if !errors.Is(err, ErrTurnInFlight) {
		t.Errorf("concurrent turn err = %v, want ErrTurnInFlight", err)
	}

	close(unblock)
	if err := <-errCh; err != nil {
		t.Fatalf("first turn failed: %v", err)
	}

	// Flag released: a new turn is accepted.
	if _, err := m.SubmitTurn(context.Background(), sess, gc, "third", "key", nil); err != nil {
		t.Errorf("turn after release failed: %v", err)
	}
}

func TestSubmitTurnHistoryExcludesPendingInput(t *testing.T) {
	gen := &stubGen{respond: answering("answer", "title")}
	m, _ := newTestManager(t, gen)
	sess := mustStart(t, m)
	gc := model.DefaultGlobalContext()

	if _, err := m.SubmitTurn(context.Background(), sess, gc, "first question", "key", nil); err != nil {
		t.Fatalf("first turn: %v", err)
	}
	if _, err := m.SubmitTurn(context.Background(), sess, gc, "second question", "key", nil); err != nil {
		t.Fatalf("second turn: %v", err)
	}

	var turnPrompts []string
	for _, call := range gen.recorded() {
		if !isTitlePrompt(call.Prompt) {
			turnPrompts = append(turnPrompts, call.Prompt)
		}
	}
	if len(turnPrompts) != 2 {
		t.Fatalf("saw %d turn prompts, want 2", len(turnPrompts))
	}

	if strings.Contains(turnPrompts[0], "History:") {
		t.Error("first turn prompt has a History section")
	}
	if !strings.HasSuffix(turnPrompts[0], "User: first question") {
		t.Error("first turn prompt does not end with the pending input")
	}

	if !strings.Contains(turnPrompts[1], "History:\nUser: first question\nAI: answer") {
		t.Errorf("second turn history wrong:\n%s", turnPrompts[1])
	}
	if !strings.HasSuffix(turnPrompts[1], "User: second question") {
		t.Error("second turn prompt does not end with the pending input")
	}
	if strings.Count(turnPrompts[1], "second question") != 1 {
		t.Error("pending input duplicated into history")
	}
}

func TestSubmitTurnGenerationFailureDegradesToErrorText(t *testing.T) {
	gen := &stubGen{respond: func(p string) (string, error) {
		return "", errors.New("connection refused")
	}}
	m, st := newTestManager(t, gen)
	sess := mustStart(t, m)

	interaction, err := m.SubmitTurn(context.Background(), sess, model.DefaultGlobalContext(), "hello", "key", nil)
	if err != nil {
		t.Fatalf("SubmitTurn returned error for generation failure: %v", err)
	}

	want := "Sorry, I encountered an error: connection refused"
	if interaction.Response != want {
		t.Errorf("response = %q, want %q", interaction.Response, want)
	}

	// The failed turn still persisted.
	reloaded, err := st.Session(context.Background(), sess.ID)
	if err != nil {
		t.Fatalf("reloading session: %v", err)
	}
	if len(reloaded.Interactions) != 1 || reloaded.Interactions[0].Response != want {
		t.Error("failed turn not persisted with error text")
	}
	if m.Busy(sess.ID) {
		t.Error("busy flag leaked after failed turn")
	}
}

func TestSubmitTurnBlockedResponseText(t *testing.T) {
	gen := &stubGen{respond: func(p string) (string, error) {
		if isTitlePrompt(p) {
			return "title", nil
		}
		return "", &gemini.BlockedError{Reason: "SAFETY"}
	}}
	m, _ := newTestManager(t, gen)
	sess := mustStart(t, m)

	interaction, err := m.SubmitTurn(context.Background(), sess, model.DefaultGlobalContext(), "hello", "key", nil)
	if err != nil {
		t.Fatalf("SubmitTurn failed: %v", err)
	}
	if interaction.Response != blockedResponseText {
		t.Errorf("response = %q, want blocked notice", interaction.Response)
	}
}

func TestSubmitTurnStreamsFragments(t *testing.T) {
	gen := &stubGen{respond: answering("streamed answer", "title")}
	m, _ := newTestManager(t, gen)
	sess := mustStart(t, m)

	var fragments []string
	interaction, err := m.SubmitTurn(context.Background(), sess, model.DefaultGlobalContext(), "hello", "key", func(text string) {
		fragments = append(fragments, text)
	})
	if err != nil {
		t.Fatalf("SubmitTurn failed: %v", err)
	}

	if interaction.Response != "streamed answer" {
		t.Errorf("response = %q, want accumulated text", interaction.Response)
	}
	if strings.Join(fragments, "") != "streamed answer" {
		t.Errorf("fragments = %v", fragments)
	}
	if len(fragments) < 2 {
		t.Errorf("saw %d fragments, want streaming delivery", len(fragments))
	}
}

// =============================================================================
// TITLE GENERATION TESTS
// =============================================================================

func TestFirstTurnAdoptsCleanedTitle(t *testing.T) {
	gen := &stubGen{respond: answering("hi", "\"Trip Planning Help\"\n")}
	m, st := newTestManager(t, gen)
	sess := mustStart(t, m)

	if _, err := m.SubmitTurn(context.Background(), sess, model.DefaultGlobalContext(), "plan a trip", "key", nil); err != nil {
		t.Fatalf("SubmitTurn failed: %v", err)
	}

	if sess.Name != "Trip Planning Help" {
		t.Errorf("Name = %q, want cleaned title", sess.Name)
	}
	reloaded, _ := st.Session(context.Background(), sess.ID)
	if reloaded.Name != "Trip Planning Help" {
		t.Errorf("persisted Name = %q", reloaded.Name)
	}
}

func TestTitleSubCallUsesBlockNone(t *testing.T) {
	gen := &stubGen{respond: answering("hi", "Title")}
	m, _ := newTestManager(t, gen)
	sess := mustStart(t, m)
	gc := model.DefaultGlobalContext()
	gc.SafetyThreshold = model.BlockLowAndAbove

	if _, err := m.SubmitTurn(context.Background(), sess, gc, "hello", "key", nil); err != nil {
		t.Fatalf("SubmitTurn failed: %v", err)
	}

	var found bool
	for _, call := range gen.recorded() {
		if isTitlePrompt(call.Prompt) {
			found = true
			if call.Threshold != model.BlockNone {
				t.Errorf("title threshold = %q, want BLOCK_NONE", call.Threshold)
			}
		} else if call.Threshold != model.BlockLowAndAbove {
			t.Errorf("turn threshold = %q, want the user's setting", call.Threshold)
		}
	}
	if !found {
		t.Error("no title sub-call issued on first turn")
	}
}

func TestTitleFailureKeepsDefaultName(t *testing.T) {
	gen := &stubGen{respond: func(p string) (string, error) {
		if isTitlePrompt(p) {
			return "", errors.New("quota exhausted")
		}
		return "hi", nil
	}}
	m, _ := newTestManager(t, gen)
	sess := mustStart(t, m)
	defaultName := sess.Name

	interaction, err := m.SubmitTurn(context.Background(), sess, model.DefaultGlobalContext(), "hello", "key", nil)
	if err != nil {
		t.Fatalf("SubmitTurn failed: %v", err)
	}
	if interaction.Response != "hi" {
		t.Error("title failure corrupted the turn response")
	}
	if sess.Name != defaultName {
		t.Errorf("Name = %q, want default %q kept", sess.Name, defaultName)
	}
}

func TestSecondTurnIssuesNoTitleCall(t *testing.T) {
	gen := &stubGen{respond: answering("hi", "Title")}
	m, _ := newTestManager(t, gen)
	sess := mustStart(t, m)
	gc := model.DefaultGlobalContext()

	m.SubmitTurn(context.Background(), sess, gc, "one", "key", nil)
	before := len(gen.recorded())
	m.SubmitTurn(context.Background(), sess, gc, "two", "key", nil)

	for _, call := range gen.recorded()[before:] {
		if isTitlePrompt(call.Prompt) {
			t.Error("title sub-call issued after the first turn")
		}
	}
}

// =============================================================================
// EDIT AND REGENERATE TESTS
// =============================================================================

func seedTurns(t *testing.T, m *Manager, sess *model.Session, inputs ...string) {
	t.Helper()
	gc := model.DefaultGlobalContext()
	for _, input := range inputs {
		if _, err := m.SubmitTurn(context.Background(), sess, gc, input, "key", nil); err != nil {
			t.Fatalf("seeding turn %q: %v", input, err)
		}
	}
}

func TestEditRejectsMissingCredentialBeforeTruncating(t *testing.T) {
	gen := &stubGen{respond: answering("answer", "title")}
	m, st := newTestManager(t, gen)
	sess := mustStart(t, m)
	seedTurns(t, m, sess, "a", "b", "c", "d")
	callsAfterSeed := len(gen.recorded())
	targetID := sess.Interactions[1].ID

	_, err := m.EditAndRegenerate(context.Background(), sess, model.DefaultGlobalContext(), targetID, "b revised", "", nil)
	if !errors.Is(err, ErrNoCredential) {
		t.Fatalf("err = %v, want ErrNoCredential", err)
	}
	if len(gen.recorded()) != callsAfterSeed {
		t.Error("generator called despite missing credential")
	}

	// The later turns must survive a rejected edit.
	if len(sess.Interactions) != 4 {
		t.Fatalf("session has %d interactions, want 4 untouched", len(sess.Interactions))
	}
	if sess.Interactions[1].Input != "b" || sess.Interactions[1].Response != "answer" {
		t.Errorf("target mutated by rejected edit: %+v", sess.Interactions[1])
	}

	reloaded, err := st.Session(context.Background(), sess.ID)
	if err != nil {
		t.Fatalf("reloading session: %v", err)
	}
	if len(reloaded.Interactions) != 4 {
		t.Errorf("persisted session has %d interactions, want 4", len(reloaded.Interactions))
	}
}

func TestEditAndRegenerateTruncatesAndRewrites(t *testing.T) {
	gen := &stubGen{respond: answering("answer", "title")}
	m, st := newTestManager(t, gen)
	sess := mustStart(t, m)
	seedTurns(t, m, sess, "q1", "q2", "q3", "q4")

	target := sess.Interactions[1]
	targetID := target.ID

	edited, err := m.EditAndRegenerate(context.Background(), sess, model.DefaultGlobalContext(), targetID, "q2 revised", "key", nil)
	if err != nil {
		t.Fatalf("EditAndRegenerate failed: %v", err)
	}

	if len(sess.Interactions) != 2 {
		t.Fatalf("session has %d interactions, want 2 (target index + 1)", len(sess.Interactions))
	}
	if edited.ID != targetID {
		t.Error("edited interaction changed identity")
	}
	if edited.Input != "q2 revised" || edited.Response != "answer" {
		t.Errorf("edited = %+v", edited)
	}

	seen := make(map[string]bool)
	for _, i := range sess.Interactions {
		if seen[i.ID] {
			t.Errorf("duplicate interaction id %s", i.ID)
		}
		seen[i.ID] = true
	}

	reloaded, _ := st.Session(context.Background(), sess.ID)
	if len(reloaded.Interactions) != 2 {
		t.Errorf("persisted %d interactions, want 2", len(reloaded.Interactions))
	}
}

func TestEditAndRegenerateHistoryExcludesTarget(t *testing.T) {
	gen := &stubGen{respond: answering("answer", "title")}
	m, _ := newTestManager(t, gen)
	sess := mustStart(t, m)
	seedTurns(t, m, sess, "q1", "q2")

	before := len(gen.recorded())
	if _, err := m.EditAndRegenerate(context.Background(), sess, model.DefaultGlobalContext(), sess.Interactions[1].ID, "q2 revised", "key", nil); err != nil {
		t.Fatalf("EditAndRegenerate failed: %v", err)
	}

	calls := gen.recorded()[before:]
	if len(calls) != 1 {
		t.Fatalf("edit made %d calls, want 1", len(calls))
	}
	p := calls[0].Prompt
	if !strings.Contains(p, "History:\nUser: q1\nAI: answer") {
		t.Errorf("edit prompt missing prior history:\n%s", p)
	}
	if !strings.HasSuffix(p, "User: q2 revised") {
		t.Error("edit prompt does not end with the new input")
	}
	if strings.Contains(p, "User: q2\n") {
		t.Error("edit prompt includes the target's old input in history")
	}
}

func TestEditAndRegenerateUnknownInteraction(t *testing.T) {
	gen := &stubGen{respond: answering("answer", "title")}
	m, _ := newTestManager(t, gen)
	sess := mustStart(t, m)
	seedTurns(t, m, sess, "q1")

	_, err := m.EditAndRegenerate(context.Background(), sess, model.DefaultGlobalContext(), "no-such-id", "new", "key", nil)
	if !errors.Is(err, ErrInteractionNotFound) {
		t.Errorf("err = %v, want ErrInteractionNotFound", err)
	}
	if len(sess.Interactions) != 1 {
		t.Error("failed edit mutated the session")
	}
	if m.Busy(sess.ID) {
		t.Error("busy flag leaked after rejected edit")
	}
}

// =============================================================================
// REFLECTION TESTS
// =============================================================================

func TestReflectAndRememberAppendsEntry(t *testing.T) {
	reflection := "I've noticed that the user is planning a trip."
	gen := &stubGen{respond: func(p string) (string, error) {
		if strings.HasPrefix(p, "You are an AI assistant named") {
			return reflection, nil
		}
		return "answer", nil
	}}
	m, st := newTestManager(t, gen)
	sess := mustStart(t, m)
	seedTurns(t, m, sess, "q1")

	gc := model.DefaultGlobalContext()
	got, err := m.ReflectAndRemember(context.Background(), sess, gc, "key")
	if err != nil {
		t.Fatalf("ReflectAndRemember failed: %v", err)
	}
	if got != reflection {
		t.Errorf("reflection = %q", got)
	}
	if len(gc.LongTermMemory) != 1 {
		t.Fatalf("memory has %d entries, want 1", len(gc.LongTermMemory))
	}
	entry := gc.LongTermMemory[0]
	if entry.Content != reflection {
		t.Errorf("Content = %q, want verbatim reflection", entry.Content)
	}
	if entry.SavedAt.IsZero() {
		t.Error("SavedAt not set")
	}

	reloaded, err := st.GlobalContext(context.Background())
	if err != nil {
		t.Fatalf("reloading context: %v", err)
	}
	if len(reloaded.LongTermMemory) != 1 || reloaded.LongTermMemory[0].Content != reflection {
		t.Error("memory entry not persisted")
	}
}

func TestReflectAndRememberEmptySession(t *testing.T) {
	gen := &stubGen{respond: answering("x", "t")}
	m, _ := newTestManager(t, gen)
	sess := mustStart(t, m)

	gc := model.DefaultGlobalContext()
	_, err := m.ReflectAndRemember(context.Background(), sess, gc, "key")
	if !errors.Is(err, ErrNothingToRemember) {
		t.Errorf("err = %v, want ErrNothingToRemember", err)
	}
	if len(gc.LongTermMemory) != 0 {
		t.Error("empty-session reflection mutated memory")
	}
	if len(gen.recorded()) != 0 {
		t.Error("empty-session reflection issued a generation call")
	}
}

func TestReflectAndRememberRejectsMissingCredential(t *testing.T) {
	gen := &stubGen{respond: answering("answer", "title")}
	m, _ := newTestManager(t, gen)
	sess := mustStart(t, m)
	seedTurns(t, m, sess, "q1")
	callsAfterSeed := len(gen.recorded())

	gc := model.DefaultGlobalContext()
	_, err := m.ReflectAndRemember(context.Background(), sess, gc, "")
	if !errors.Is(err, ErrNoCredential) {
		t.Errorf("err = %v, want ErrNoCredential", err)
	}
	if len(gen.recorded()) != callsAfterSeed {
		t.Error("generator called despite missing credential")
	}
	if len(gc.LongTermMemory) != 0 {
		t.Error("rejected reflection mutated memory")
	}
}

func TestReflectAndRememberFailureIsAllOrNothing(t *testing.T) {
	gen := &stubGen{respond: func(p string) (string, error) {
		if strings.HasPrefix(p, "You are an AI assistant named") {
			return "", errors.New("upstream down")
		}
		return "answer", nil
	}}
	m, st := newTestManager(t, gen)
	sess := mustStart(t, m)
	seedTurns(t, m, sess, "q1")

	gc := model.DefaultGlobalContext()
	_, err := m.ReflectAndRemember(context.Background(), sess, gc, "key")
	if err == nil {
		t.Fatal("expected error")
	}
	if len(gc.LongTermMemory) != 0 {
		t.Error("failed reflection left a partial memory entry")
	}
	reloaded, _ := st.GlobalContext(context.Background())
	if len(reloaded.LongTermMemory) != 0 {
		t.Error("failed reflection persisted a memory entry")
	}
}

// =============================================================================
// SELECTION AND DELETION TESTS
// =============================================================================

func TestActiveSessionPrefersPinned(t *testing.T) {
	gen := &stubGen{respond: answering("x", "t")}
	m, st := newTestManager(t, gen)

	old := model.NewSession(time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC))
	old.IsPinned = true
	recent := model.NewSession(time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC))
	for _, s := range []*model.Session{old, recent} {
		if _, err := st.UpsertSession(context.Background(), s); err != nil {
			t.Fatalf("seeding session: %v", err)
		}
	}

	active, err := m.ActiveSession(context.Background())
	if err != nil {
		t.Fatalf("ActiveSession failed: %v", err)
	}
	if active.ID != old.ID {
		t.Errorf("active = %d, want the pinned session %d despite its age", active.ID, old.ID)
	}
}

func TestActiveSessionEmptyStoreStartsFresh(t *testing.T) {
	gen := &stubGen{respond: answering("x", "t")}
	m, st := newTestManager(t, gen)

	active, err := m.ActiveSession(context.Background())
	if err != nil {
		t.Fatalf("ActiveSession failed: %v", err)
	}
	if active.ID == 0 {
		t.Error("fresh session not persisted")
	}

	sessions, _ := st.Sessions(context.Background())
	if len(sessions) != 1 {
		t.Errorf("store has %d sessions, want 1", len(sessions))
	}
}

func TestDeleteSessionReselects(t *testing.T) {
	gen := &stubGen{respond: answering("x", "t")}
	m, _ := newTestManager(t, gen)

	a := mustStart(t, m)
	b := mustStart(t, m)

	next, err := m.DeleteSession(context.Background(), b.ID)
	if err != nil {
		t.Fatalf("DeleteSession failed: %v", err)
	}
	if next.ID != a.ID {
		t.Errorf("next active = %d, want remaining session %d", next.ID, a.ID)
	}
}

func TestDeleteLastSessionStartsFresh(t *testing.T) {
	gen := &stubGen{respond: answering("x", "t")}
	m, st := newTestManager(t, gen)
	only := mustStart(t, m)

	next, err := m.DeleteSession(context.Background(), only.ID)
	if err != nil {
		t.Fatalf("DeleteSession failed: %v", err)
	}
	if next.ID == only.ID {
		t.Error("deleted session returned as active")
	}

	sessions, _ := st.Sessions(context.Background())
	if len(sessions) != 1 {
		t.Errorf("store has %d sessions, want exactly the fresh one", len(sessions))
	}
}

func TestStaleTurnDoesNotResurrectDeletedSession(t *testing.T) {
	var m *Manager
	var st *store.Store
	var sess *model.Session

	gen := &stubGen{respond: func(p string) (string, error) {
		if isTitlePrompt(p) {
			return "title", nil
		}
		// Session vanishes while the request is in flight.
		if err := st.DeleteSession(context.Background(), sess.ID); err != nil {
			t.Errorf("mid-flight delete: %v", err)
		}
		return "late answer", nil
	}}
	m, st = newTestManager(t, gen)
	sess = mustStart(t, m)

	if _, err := m.SubmitTurn(context.Background(), sess, model.DefaultGlobalContext(), "hello", "key", nil); err != nil {
		t.Fatalf("SubmitTurn failed: %v", err)
	}

	if _, err := st.Session(context.Background(), sess.ID); !errors.Is(err, store.ErrSessionNotFound) {
		t.Errorf("deleted session resurrected by stale turn: %v", err)
	}
}

// =============================================================================
// MAINTENANCE TESTS
// =============================================================================

func TestRenameSession(t *testing.T) {
	gen := &stubGen{respond: answering("x", "t")}
	m, st := newTestManager(t, gen)
	sess := mustStart(t, m)

	if err := m.RenameSession(context.Background(), sess, "  Project Notes  "); err != nil {
		t.Fatalf("RenameSession failed: %v", err)
	}
	reloaded, _ := st.Session(context.Background(), sess.ID)
	if reloaded.Name != "Project Notes" {
		t.Errorf("Name = %q", reloaded.Name)
	}

	if err := m.RenameSession(context.Background(), sess, "   "); !errors.Is(err, ErrEmptyInput) {
		t.Errorf("blank rename err = %v, want ErrEmptyInput", err)
	}
}

func TestTogglePin(t *testing.T) {
	gen := &stubGen{respond: answering("x", "t")}
	m, st := newTestManager(t, gen)
	sess := mustStart(t, m)

	if err := m.TogglePin(context.Background(), sess); err != nil {
		t.Fatalf("TogglePin failed: %v", err)
	}
	reloaded, _ := st.Session(context.Background(), sess.ID)
	if !reloaded.IsPinned {
		t.Error("pin not persisted")
	}

	m.TogglePin(context.Background(), sess)
	reloaded, _ = st.Session(context.Background(), sess.ID)
	if reloaded.IsPinned {
		t.Error("unpin not persisted")
	}
}

// =============================================================================
// END TO END
// =============================================================================

func TestFirstTurnEndToEnd(t *testing.T) {
	gen := &stubGen{respond: answering("hi there", "Friendly Greeting")}
	m, st := newTestManager(t, gen)
	sess := mustStart(t, m)

	gc := model.DefaultGlobalContext()
	gc.AIName = "Seraa"
	gc.UserName = "Kiann"

	if _, err := m.SubmitTurn(context.Background(), sess, gc, "hello", "key", nil); err != nil {
		t.Fatalf("SubmitTurn failed: %v", err)
	}

	calls := gen.recorded()
	if len(calls) != 2 {
		t.Fatalf("saw %d calls, want turn + title", len(calls))
	}
	turnPrompt := calls[0].Prompt
	if !strings.HasSuffix(turnPrompt, "User: hello") {
		t.Error("prompt does not end with 'User: hello'")
	}
	if strings.Contains(turnPrompt, "History:") {
		t.Error("prompt contains History section for a first turn")
	}

	reloaded, _ := st.Session(context.Background(), sess.ID)
	if len(reloaded.Interactions) != 1 {
		t.Fatalf("session has %d interactions, want 1", len(reloaded.Interactions))
	}
	sole := reloaded.Interactions[0]
	if sole.Input != "hello" || sole.Response != "hi there" {
		t.Errorf("sole interaction = %+v", sole)
	}
	if reloaded.Name != "Friendly Greeting" {
		t.Errorf("Name = %q, want the generated title", reloaded.Name)
	}
}
