// Package wizard is the interactive terminal client. It drives the intake
// controller from bubbletea screens.
package wizard

import "github.com/almanova/preocupacional/internal/intake"

// Phase represents the current phase/screen of the wizard.
type Phase int

const (
	PhaseRestore Phase = iota
	PhaseStep
	PhaseReview
	PhaseSubmitting
	PhaseDone
	PhaseSaveSnapshot
	PhaseConfirmQuit
)

func (p Phase) String() string {
	switch p {
	case PhaseRestore:
		return "restore"
	case PhaseStep:
		return "step"
	case PhaseReview:
		return "review"
	case PhaseSubmitting:
		return "submitting"
	case PhaseDone:
		return "done"
	case PhaseSaveSnapshot:
		return "save_snapshot"
	case PhaseConfirmQuit:
		return "confirm_quit"
	}
	return "unknown"
}

// Messages delivered from controller callbacks and background commands.
type (
	pulseMsg struct{ active bool }

	submissionMsg struct{ state intake.SubmissionState }

	submitDoneMsg struct{ err error }

	restorePromptMsg struct {
		info  intake.DraftInfo
		reply chan<- intake.Decision
	}

	restoreDoneMsg struct {
		outcome intake.RestoreOutcome
		err     error
	}
)
