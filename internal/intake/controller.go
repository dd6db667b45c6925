// Package intake drives the form wizard: step navigation gated by per-step
// validity, draft restore on start, and the at-most-once submission run.
package intake

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/almanova/preocupacional/internal/aggregator"
	"github.com/almanova/preocupacional/internal/delivery"
	"github.com/almanova/preocupacional/internal/form"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
)

const (
	DefaultPulseWindow     = 100 * time.Millisecond
	DefaultSuccessCooldown = 3 * time.Second
	DefaultErrorCooldown   = 5 * time.Second
)

// Options configures a Controller. Aggregator, both renderers and Channel are
// required.
type Options struct {
	Aggregator *aggregator.Aggregator
	Clinic     Renderer // complete record for the clinic
	Patient    Renderer // consent record for the patient
	Channel    delivery.Channel

	Clock           clockwork.Clock
	Logger          zerolog.Logger
	PulseWindow     time.Duration
	SuccessCooldown time.Duration
	ErrorCooldown   time.Duration
}

// Controller is the wizard state machine.
type Controller struct {
	agg     *aggregator.Aggregator
	clinic  Renderer
	patient Renderer
	channel delivery.Channel
	clock   clockwork.Clock
	log     zerolog.Logger

	pulseWindow     time.Duration
	successCooldown time.Duration
	errorCooldown   time.Duration

	mu         sync.Mutex
	step       int
	valid      [form.TotalSteps]bool
	submission SubmissionState
	runGen     uint64
	pulsing    bool
	pulseGen   uint64
	pulseTimer clockwork.Timer
	pulseSubs  []func(bool)
	stateSubs  []func(SubmissionState)
}

// New returns a Controller at the welcome step.
func New(opts Options) (*Controller, error) {
	switch {
	case opts.Aggregator == nil:
		return nil, errors.New("intake: aggregator is required")
	case opts.Clinic == nil || opts.Patient == nil:
		return nil, errors.New("intake: both renderers are required")
	case opts.Channel == nil:
		return nil, errors.New("intake: delivery channel is required")
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.PulseWindow <= 0 {
		opts.PulseWindow = DefaultPulseWindow
	}
	if opts.SuccessCooldown <= 0 {
		opts.SuccessCooldown = DefaultSuccessCooldown
	}
	if opts.ErrorCooldown <= 0 {
		opts.ErrorCooldown = DefaultErrorCooldown
	}

	c := &Controller{
		agg:             opts.Aggregator,
		clinic:          opts.Clinic,
		patient:         opts.Patient,
		channel:         opts.Channel,
		clock:           opts.Clock,
		log:             opts.Logger.With().Str("component", "intake").Logger(),
		pulseWindow:     opts.PulseWindow,
		successCooldown: opts.SuccessCooldown,
		errorCooldown:   opts.ErrorCooldown,
	}
	c.valid[form.StepWelcome] = true
	return c, nil
}

// CurrentStep returns the visible step index.
func (c *Controller) CurrentStep() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.step
}

// StepValid reports the last validity reported for step.
func (c *Controller) StepValid(step int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if step < 0 || step >= form.TotalSteps {
		return false
	}
	return c.valid[step]
}

// CanAdvance reports whether the current step is valid.
func (c *Controller) CanAdvance() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.valid[c.step]
}

// CanSubmit reports whether every step is valid.
func (c *Controller) CanSubmit() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.allValidLocked(form.TotalSteps)
}

func (c *Controller) allValidLocked(upTo int) bool {
	for i := 0; i < upTo; i++ {
		if !c.valid[i] {
			return false
		}
	}
	return true
}

// ValidationRequested reports whether a validation pulse is active.
func (c *Controller) ValidationRequested() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pulsing
}

// OnValidationRequested subscribes fn to validation pulses. fn receives true
// when the pulse starts and false when it ends.
func (c *Controller) OnValidationRequested(fn func(bool)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pulseSubs = append(c.pulseSubs, fn)
}

// OnSubmissionChange subscribes fn to submission state changes.
func (c *Controller) OnSubmissionChange(fn func(SubmissionState)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stateSubs = append(c.stateSubs, fn)
}

// Submission returns the current submission state.
func (c *Controller) Submission() SubmissionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.submission
}

// Advance moves to the next step when the current one is valid. Otherwise it
// pulses validation and stays put.
func (c *Controller) Advance() bool {
	c.mu.Lock()
	if !c.valid[c.step] {
		c.mu.Unlock()
		c.pulse()
		return false
	}
	from := c.step
	if c.step < form.TotalSteps-1 {
		c.step++
	}
	c.mu.Unlock()

	if from == form.StepWelcome {
		c.agg.MarkWelcomeAcknowledged()
	}
	return true
}

// Retreat moves to the previous step.
func (c *Controller) Retreat() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.step > 0 {
		c.step--
	}
}

// GoTo jumps to step. Backward jumps always succeed. A forward jump needs every
// earlier step valid; otherwise validation is pulsed.
func (c *Controller) GoTo(step int) bool {
	if step < 0 || step >= form.TotalSteps {
		return false
	}
	c.mu.Lock()
	if step > c.step && !c.allValidLocked(step) {
		c.mu.Unlock()
		c.pulse()
		return false
	}
	from := c.step
	c.step = step
	c.mu.Unlock()

	if from == form.StepWelcome && step > from {
		c.agg.MarkWelcomeAcknowledged()
	}
	return true
}

// ReportStepValidity records the latest validity reported by a section.
func (c *Controller) ReportStepValidity(step int, valid bool) {
	if step < 0 || step >= form.TotalSteps {
		c.log.Warn().Int("step", step).Msg("validity for unknown step ignored")
		return
	}
	if step == form.StepWelcome {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.valid[step] = valid
}

// ReportStepData forwards a section payload to the aggregator.
func (c *Controller) ReportStepData(step int, payload any) error {
	if step == form.StepWelcome {
		c.agg.MarkWelcomeAcknowledged()
		return nil
	}
	key, ok := form.KeyForStep(step)
	if !ok {
		return fmt.Errorf("report data: unknown step %d", step)
	}
	return c.agg.Set(key, payload)
}

// HasUnsavedChanges reports whether quitting now would lose entered data.
func (c *Controller) HasUnsavedChanges() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.submission.Status == StatusSuccess {
		return false
	}
	for i := 1; i < form.TotalSteps; i++ {
		if c.valid[i] {
			return true
		}
	}
	return false
}

// Submit runs the submission pipeline in the caller's goroutine. It returns
// ErrNotReady or ErrSubmissionInProgress without starting anything when the
// preconditions do not hold.
func (c *Controller) Submit(ctx context.Context) error {
	c.mu.Lock()
	if c.submission.Status != StatusIdle {
		c.mu.Unlock()
		c.log.Warn().Stringer("status", c.Submission().Status).Msg("submit ignored, run in progress")
		return ErrSubmissionInProgress
	}
	if !c.allValidLocked(form.TotalSteps) {
		c.mu.Unlock()
		c.log.Warn().Msg("submit ignored, form incomplete")
		return ErrNotReady
	}
	c.runGen++
	gen := c.runGen
	// Claim the run before releasing the lock so a concurrent Submit sees it.
	c.submission = SubmissionState{Status: StatusGeneratingPDF}
	c.mu.Unlock()

	return c.run(ctx, gen)
}

func (c *Controller) publish(gen uint64, s SubmissionState) {
	c.mu.Lock()
	if gen != c.runGen {
		c.mu.Unlock()
		return
	}
	c.submission = s
	subs := append([]func(SubmissionState){}, c.stateSubs...)
	c.mu.Unlock()

	for _, fn := range subs {
		fn(s)
	}
}

func (c *Controller) isCurrent(gen uint64, status Status) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return gen == c.runGen && c.submission.Status == status
}

func (c *Controller) resetSteps() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.step = form.StepWelcome
	c.valid = [form.TotalSteps]bool{}
	c.valid[form.StepWelcome] = true
}

func (c *Controller) pulse() {
	c.mu.Lock()
	c.pulsing = true
	c.pulseGen++
	gen := c.pulseGen
	if c.pulseTimer != nil {
		c.pulseTimer.Stop()
	}
	subs := append([]func(bool){}, c.pulseSubs...)
	c.pulseTimer = c.clock.AfterFunc(c.pulseWindow, func() { c.endPulse(gen) })
	c.mu.Unlock()

	for _, fn := range subs {
		fn(true)
	}
}

func (c *Controller) endPulse(gen uint64) {
	c.mu.Lock()
	if gen != c.pulseGen {
		c.mu.Unlock()
		return
	}
	c.pulsing = false
	c.pulseTimer = nil
	subs := append([]func(bool){}, c.pulseSubs...)
	c.mu.Unlock()

	for _, fn := range subs {
		fn(false)
	}
}
