package intake

import (
	"context"
	"fmt"
	"time"

	"github.com/almanova/preocupacional/internal/form"
)

// Decision is the patient's answer to the resume prompt.
type Decision int

const (
	DecisionRestore Decision = iota
	DecisionDiscard
)

// DraftInfo describes a stored draft for the resume prompt.
type DraftInfo struct {
	StartedAt   time.Time
	LastStep    int
	PatientName string
}

// Decider asks whether to resume the draft described by info.
type Decider func(ctx context.Context, info DraftInfo) (Decision, error)

// RestoreOutcome reports what RestoreFromDraft did.
type RestoreOutcome int

const (
	RestoreNone RestoreOutcome = iota
	RestoreResumed
	RestoreKeptAtStart
	RestoreDiscarded
)

func (o RestoreOutcome) String() string {
	switch o {
	case RestoreNone:
		return "none"
	case RestoreResumed:
		return "resumed"
	case RestoreKeptAtStart:
		return "kept_at_start"
	case RestoreDiscarded:
		return "discarded"
	}
	return "unknown"
}

// RestoreFromDraft offers the stored draft, if any, to decide. On restore the
// steps up to the last completed one are marked valid and the wizard jumps
// there. An unreadable draft is discarded without asking.
func (c *Controller) RestoreFromDraft(ctx context.Context, decide Decider) (RestoreOutcome, error) {
	if !c.agg.HasDraft(ctx) {
		return RestoreNone, nil
	}

	stored, ok := c.agg.PeekDraft(ctx)
	if !ok {
		c.log.Warn().Msg("stored draft unreadable, discarding")
		c.agg.ClearDraft(ctx)
		return RestoreDiscarded, nil
	}

	info := DraftInfo{StartedAt: stored.Metadata.StartedAt, LastStep: stored.LastCompletedStep()}
	if stored.PersonalInfo != nil {
		info.PatientName = stored.PersonalInfo.FullName()
	}

	decision, err := decide(ctx, info)
	if err != nil {
		return RestoreNone, fmt.Errorf("restore prompt: %w", err)
	}

	if decision == DecisionDiscard {
		c.agg.ClearDraft(ctx)
		c.log.Info().Msg("draft discarded")
		return RestoreDiscarded, nil
	}

	restored, ok := c.agg.RestoreDraft(ctx)
	if !ok {
		return RestoreKeptAtStart, nil
	}
	last := c.agg.LastCompletedStep()
	if !restored.Metadata.WelcomeAcknowledged || last < form.StepPersonal {
		return RestoreKeptAtStart, nil
	}

	c.mu.Lock()
	for i := form.StepPersonal; i <= last; i++ {
		c.valid[i] = true
	}
	c.step = last
	c.mu.Unlock()

	c.log.Info().Int("step", last).Msg("resumed from draft")
	return RestoreResumed, nil
}
