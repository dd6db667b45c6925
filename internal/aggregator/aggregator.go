// Package aggregator holds the canonical in-memory form snapshot and keeps a
// session draft of it in sync with a trailing-edge debounce.
package aggregator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/almanova/preocupacional/internal/draft"
	"github.com/almanova/preocupacional/internal/form"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
)

// DefaultDebounce is the quiet interval before a change is persisted.
const DefaultDebounce = 3 * time.Second

const persistTimeout = 10 * time.Second

// PersistenceError wraps a draft store failure. It is logged, never returned
// to callers of state-changing methods.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("draft %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Options configures an Aggregator.
type Options struct {
	Store    draft.Store
	Key      string        // defaults to draft.DefaultKey
	Debounce time.Duration // defaults to DefaultDebounce
	Clock    clockwork.Clock
	Logger   zerolog.Logger
	// OnPersist, when set, is called after every debounced or flushed
	// persist attempt with its result (nil when skipped or written).
	OnPersist func(error)
}

// Aggregator owns the live snapshot. Every value going in or out is a copy.
type Aggregator struct {
	store     draft.Store
	key       string
	debounce  time.Duration
	clock     clockwork.Clock
	log       zerolog.Logger
	onPersist func(error)

	mu    sync.Mutex
	state form.Snapshot
	timer clockwork.Timer
	gen   uint64 // bumped on every (re)schedule and cancellation

	// persistMu orders store writes against Reset/ClearDraft removals.
	persistMu sync.Mutex
}

// New returns an Aggregator with a fresh snapshot.
func New(opts Options) *Aggregator {
	if opts.Store == nil {
		opts.Store = draft.NewMemoryStore()
	}
	if opts.Key == "" {
		opts.Key = draft.DefaultKey
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}

	a := &Aggregator{
		store:     opts.Store,
		key:       opts.Key,
		debounce:  opts.Debounce,
		clock:     opts.Clock,
		log:       opts.Logger.With().Str("component", "aggregator").Logger(),
		onPersist: opts.OnPersist,
	}
	a.state = form.New(a.clock.Now())
	return a
}

// Set atomically replaces the payload for key and schedules a persist.
func (a *Aggregator) Set(key form.SectionKey, value any) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	next := a.state.Clone()
	if err := next.SetSection(key, value); err != nil {
		return err
	}
	a.state = next
	a.scheduleLocked()
	return nil
}

// Get returns a copy of the payload for key.
func (a *Aggregator) Get(key form.SectionKey) (any, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state.Section(key)
}

// Snapshot returns an independent copy of the current state.
func (a *Aggregator) Snapshot() form.Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state.Clone()
}

// Replace installs s wholesale, for example from a prefill file, and
// schedules a persist.
func (a *Aggregator) Replace(s form.Snapshot) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.state = s.Clone()
	a.scheduleLocked()
}

// MarkWelcomeAcknowledged records that the welcome step was passed.
func (a *Aggregator) MarkWelcomeAcknowledged() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state.Metadata.WelcomeAcknowledged {
		return
	}
	a.state.Metadata.WelcomeAcknowledged = true
	a.scheduleLocked()
}

// MarkFinished records the submission time.
func (a *Aggregator) MarkFinished(t time.Time) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.state.Metadata.FinishedAt = &t
	a.scheduleLocked()
}

// LastCompletedStep returns the highest step whose section is present, or 0.
// It scans presence only; a stored but currently invalid section still counts.
func (a *Aggregator) LastCompletedStep() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return lastCompletedStep(&a.state)
}

func lastCompletedStep(s *form.Snapshot) int { return s.LastCompletedStep() }

// IsComplete reports whether every section is present.
func (a *Aggregator) IsComplete() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, k := range form.SectionOrder {
		if !a.state.Has(k) {
			return false
		}
	}
	return true
}

// HasDraft reports whether a draft is stored. A corrupt draft counts as
// present so it can be discarded; other store errors count as absent.
func (a *Aggregator) HasDraft(ctx context.Context) bool {
	_, ok, err := a.store.Read(ctx, a.key)
	if errors.Is(err, draft.ErrCorrupt) {
		return true
	}
	if err != nil {
		a.logPersistErr(&PersistenceError{Op: "read", Err: err})
		return false
	}
	return ok
}

// PeekDraft parses the stored draft without installing it.
func (a *Aggregator) PeekDraft(ctx context.Context) (*form.Snapshot, bool) {
	return a.readDraft(ctx)
}

// RestoreDraft replaces the in-memory state with the stored draft and returns
// a copy of it. It returns false without touching state when there is no
// draft or it cannot be read or parsed.
func (a *Aggregator) RestoreDraft(ctx context.Context) (*form.Snapshot, bool) {
	restored, ok := a.readDraft(ctx)
	if !ok {
		return nil, false
	}

	a.mu.Lock()
	a.cancelLocked()
	a.state = restored.Clone()
	a.mu.Unlock()

	a.log.Info().Int("last_step", lastCompletedStep(restored)).Msg("draft restored")
	return restored, true
}

func (a *Aggregator) readDraft(ctx context.Context) (*form.Snapshot, bool) {
	raw, ok, err := a.store.Read(ctx, a.key)
	if err != nil {
		a.logPersistErr(&PersistenceError{Op: "read", Err: err})
		return nil, false
	}
	if !ok {
		return nil, false
	}

	var s form.Snapshot
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		a.log.Warn().Err(err).Msg("discarding unparsable draft")
		return nil, false
	}
	return &s, true
}

// ClearDraft removes the stored draft. In-memory state is unchanged.
func (a *Aggregator) ClearDraft(ctx context.Context) {
	a.persistMu.Lock()
	defer a.persistMu.Unlock()
	if err := a.store.Remove(ctx, a.key); err != nil {
		a.logPersistErr(&PersistenceError{Op: "remove", Err: err})
	}
}

// Reset installs a fresh snapshot, drops any pending persist and clears the
// draft.
func (a *Aggregator) Reset(ctx context.Context) {
	a.mu.Lock()
	a.cancelLocked()
	a.state = form.New(a.clock.Now())
	a.mu.Unlock()

	a.ClearDraft(ctx)
}

// Flush persists immediately, replacing any pending debounce.
func (a *Aggregator) Flush(ctx context.Context) error {
	a.mu.Lock()
	a.cancelLocked()
	gen := a.gen
	a.mu.Unlock()

	err := a.persist(ctx, gen)
	if err != nil {
		a.logPersistErr(err)
	}
	if a.onPersist != nil {
		a.onPersist(err)
	}
	return err
}

// Close stops the pending timer without persisting.
func (a *Aggregator) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.cancelLocked()
}

func (a *Aggregator) scheduleLocked() {
	a.cancelLocked()
	gen := a.gen
	a.timer = a.clock.AfterFunc(a.debounce, func() {
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()
		err := a.persist(ctx, gen)
		if err != nil {
			a.logPersistErr(err)
		}
		if a.onPersist != nil {
			a.onPersist(err)
		}
	})
}

func (a *Aggregator) cancelLocked() {
	a.gen++
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
}

// persist writes the current state if gen is still current and at least one
// section exists.
func (a *Aggregator) persist(ctx context.Context, gen uint64) error {
	a.persistMu.Lock()
	defer a.persistMu.Unlock()

	a.mu.Lock()
	if gen != a.gen {
		a.mu.Unlock()
		return nil
	}
	snap := a.state.Clone()
	a.timer = nil
	a.mu.Unlock()

	if !snap.HasAnySection() {
		return nil
	}

	data, err := json.Marshal(snap)
	if err != nil {
		return &PersistenceError{Op: "encode", Err: err}
	}
	if err := a.store.Write(ctx, a.key, string(data)); err != nil {
		return &PersistenceError{Op: "write", Err: err}
	}
	a.log.Debug().Int("bytes", len(data)).Msg("draft saved")
	return nil
}

func (a *Aggregator) logPersistErr(err error) {
	a.log.Error().Err(err).Str("key", a.key).Msg("draft persistence failed")
}
