package wizard

import (
	"context"
	"errors"
	"fmt"

	"github.com/almanova/preocupacional/cmd/preocupacional/wizard/components"
	"github.com/almanova/preocupacional/cmd/preocupacional/wizard/screens"
	"github.com/almanova/preocupacional/internal/aggregator"
	"github.com/almanova/preocupacional/internal/form"
	"github.com/almanova/preocupacional/internal/intake"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
)

// Deps are the collaborators the wizard drives.
type Deps struct {
	Controller *intake.Controller
	Aggregator *aggregator.Aggregator
	Clock      clockwork.Clock
	Logger     zerolog.Logger
}

// Wizard is the main bubbletea model
type Wizard struct {
	ctx  context.Context
	deps Deps
	log  zerolog.Logger

	events chan tea.Msg
	phase  Phase
	prev   Phase

	section screens.Section
	restore *screens.RestoreScreen
	reply   chan<- intake.Decision
	review  *screens.ReviewScreen
	submit  *screens.SubmitScreen

	saveForm *huh.Form
	savePath string
	quitForm *huh.Form
	quit     bool

	// reported holds the last payload sent per step so unchanged forms are
	// not re-sent on every keystroke.
	reported map[int]any
	// edited is set once a key reaches the current screen. Until then
	// payload drift (huh filling select defaults) only moves the baseline.
	edited  bool
	pulsing bool
	notice  string
	width   int
	err     error
}

// New creates the wizard model. When restoring is true the wizard starts by
// offering the stored draft.
func New(ctx context.Context, deps Deps, restoring bool) *Wizard {
	if deps.Clock == nil {
		deps.Clock = clockwork.NewRealClock()
	}
	w := &Wizard{
		ctx:      ctx,
		deps:     deps,
		log:      deps.Logger.With().Str("component", "wizard").Logger(),
		events:   make(chan tea.Msg, 64),
		reported: make(map[int]any),
	}

	deps.Controller.OnValidationRequested(func(active bool) { w.emit(pulseMsg{active: active}) })
	deps.Controller.OnSubmissionChange(func(s intake.SubmissionState) { w.emit(submissionMsg{state: s}) })

	if restoring {
		w.phase = PhaseRestore
	} else {
		w.enterStep()
	}
	return w
}

// emit queues msg for the event loop. Controller callbacks may fire from
// inside Update, so they never block on the program.
func (w *Wizard) emit(msg tea.Msg) {
	select {
	case w.events <- msg:
	case <-w.ctx.Done():
	}
}

func (w *Wizard) waitForEvent() tea.Msg {
	select {
	case msg := <-w.events:
		return msg
	case <-w.ctx.Done():
		return nil
	}
}

// Init implements tea.Model
func (w *Wizard) Init() tea.Cmd {
	cmds := []tea.Cmd{w.waitForEvent}
	switch w.phase {
	case PhaseRestore:
		cmds = append(cmds, w.restoreCmd())
	case PhaseStep:
		cmds = append(cmds, w.section.Init())
	}
	return tea.Batch(cmds...)
}

func (w *Wizard) restoreCmd() tea.Cmd {
	return func() tea.Msg {
		decide := func(ctx context.Context, info intake.DraftInfo) (intake.Decision, error) {
			reply := make(chan intake.Decision, 1)
			w.emit(restorePromptMsg{info: info, reply: reply})
			select {
			case d := <-reply:
				return d, nil
			case <-ctx.Done():
				return intake.DecisionDiscard, ctx.Err()
			}
		}
		outcome, err := w.deps.Controller.RestoreFromDraft(w.ctx, decide)
		return restoreDoneMsg{outcome: outcome, err: err}
	}
}

func (w *Wizard) submitCmd() tea.Cmd {
	return func() tea.Msg {
		return submitDoneMsg{err: w.deps.Controller.Submit(w.ctx)}
	}
}

// Update implements tea.Model
func (w *Wizard) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		w.width = msg.Width

	case pulseMsg:
		w.pulsing = msg.active
		if msg.active && w.section != nil {
			w.section.ShowErrors()
		}
		return w, w.waitForEvent

	case submissionMsg:
		return w, tea.Batch(w.onSubmission(msg.state), w.waitForEvent)

	case restorePromptMsg:
		w.restore = screens.NewRestoreScreen(msg.info)
		w.reply = msg.reply
		return w, tea.Batch(w.restore.Init(), w.waitForEvent)

	case restoreDoneMsg:
		return w, w.onRestored(msg)

	case submitDoneMsg:
		return w, w.onSubmitDone(msg.err)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return w, w.requestQuit()
		}
	}

	switch w.phase {
	case PhaseRestore:
		return w, w.updateRestore(msg)
	case PhaseStep:
		return w, w.updateStep(msg)
	case PhaseReview:
		return w, w.updateReview(msg)
	case PhaseSubmitting:
		return w, w.updateSubmit(msg)
	case PhaseDone:
		return w, w.updateDone(msg)
	case PhaseSaveSnapshot:
		return w, w.updateSave(msg)
	case PhaseConfirmQuit:
		return w, w.updateConfirmQuit(msg)
	}
	return w, nil
}

func (w *Wizard) updateRestore(msg tea.Msg) tea.Cmd {
	if w.restore == nil {
		return nil
	}
	_, cmd := w.restore.Update(msg)
	if w.restore.Done() && w.reply != nil {
		w.reply <- w.restore.Decision()
		w.reply = nil
	}
	return cmd
}

func (w *Wizard) onRestored(msg restoreDoneMsg) tea.Cmd {
	w.restore = nil
	if msg.err != nil {
		w.log.Warn().Err(msg.err).Msg("restore prompt failed")
	}
	switch msg.outcome {
	case intake.RestoreResumed:
		w.notice = "Se restauró su formulario guardado."
	case intake.RestoreDiscarded:
		w.notice = "Se descartó el borrador anterior."
	}
	w.log.Info().Stringer("outcome", msg.outcome).Msg("draft restore finished")
	return w.enterStep()
}

func (w *Wizard) updateStep(msg tea.Msg) tea.Cmd {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "ctrl+n":
			w.reportSection()
			return w.advance()
		case "ctrl+p":
			w.reportSection()
			w.deps.Controller.Retreat()
			return w.enterStep()
		case "esc":
			w.reportSection()
			return w.requestQuit()
		}
	}

	if _, ok := msg.(tea.KeyMsg); ok {
		w.edited = true
	}
	_, cmd := w.section.Update(msg)
	w.reportSection()

	if w.section.Done() {
		if welcome, ok := w.section.(*screens.WelcomeScreen); ok && !welcome.Start() {
			return w.requestQuit()
		}
		return tea.Batch(cmd, w.advance())
	}
	return cmd
}

// reportSection pushes the current screen's validity and, when it changed,
// its payload to the controller.
func (w *Wizard) reportSection() {
	if w.section == nil {
		return
	}
	step := w.section.Step()
	if step == form.StepWelcome {
		return
	}
	w.deps.Controller.ReportStepValidity(step, w.section.Valid())

	payload := w.section.Payload()
	if !w.edited {
		w.reported[step] = payload
		return
	}
	if prev, ok := w.reported[step]; ok && prev == payload {
		return
	}
	if err := w.deps.Controller.ReportStepData(step, payload); err != nil {
		w.log.Error().Err(err).Int("step", step).Msg("section data rejected")
		return
	}
	w.reported[step] = payload
}

func (w *Wizard) advance() tea.Cmd {
	from := w.deps.Controller.CurrentStep()
	if !w.deps.Controller.Advance() {
		// The huh form completed; rebuild it so the user can fix the fields.
		cmd := w.enterStep()
		w.section.ShowErrors()
		return cmd
	}
	if from == form.StepSignature {
		return w.enterReview()
	}
	return w.enterStep()
}

func (w *Wizard) enterStep() tea.Cmd {
	w.phase = PhaseStep
	step := w.deps.Controller.CurrentStep()
	now := w.deps.Clock.Now

	switch step {
	case form.StepPersonal:
		w.section = screens.NewPersonalScreen(current[form.PersonalInfo](w.deps.Aggregator, form.KeyPersonal))
	case form.StepEmployer:
		w.section = screens.NewEmployerScreen(current[form.EmployerInfo](w.deps.Aggregator, form.KeyEmployer))
	case form.StepMedical:
		w.section = screens.NewMedicalScreen(current[form.MedicalInfo](w.deps.Aggregator, form.KeyMedical))
	case form.StepAffidavit:
		w.section = screens.NewAffidavitScreen(current[form.Affidavit](w.deps.Aggregator, form.KeyAffidavit), now)
	case form.StepSignature:
		w.section = screens.NewSignatureScreen(current[form.Signature](w.deps.Aggregator, form.KeySignature), now)
	default:
		w.section = screens.NewWelcomeScreen()
	}

	if step != form.StepWelcome {
		w.edited = false
		w.reported[step] = w.section.Payload()
		w.deps.Controller.ReportStepValidity(step, w.section.Valid())
	}
	if w.pulsing {
		w.section.ShowErrors()
	}
	return w.section.Init()
}

func current[T any](agg *aggregator.Aggregator, key form.SectionKey) T {
	var zero T
	v, ok := agg.Get(key)
	if !ok {
		return zero
	}
	if t, ok := v.(T); ok {
		return t
	}
	return zero
}

func (w *Wizard) enterReview() tea.Cmd {
	w.phase = PhaseReview
	w.section = nil
	w.review = screens.NewReviewScreen(w.deps.Aggregator.Snapshot(), w.deps.Controller.CanSubmit(), w.notice)
	w.notice = ""
	return w.review.Init()
}

func (w *Wizard) updateReview(msg tea.Msg) tea.Cmd {
	_, cmd := w.review.Update(msg)
	if !w.review.Done() {
		return cmd
	}

	switch w.review.Action() {
	case screens.ActionSubmit:
		w.phase = PhaseSubmitting
		w.submit = screens.NewSubmitScreen()
		w.log.Info().Msg("submission requested")
		return tea.Batch(w.submit.Init(), w.submitCmd())
	case screens.ActionBack:
		return w.enterStep()
	case screens.ActionSave:
		return w.enterSave()
	case screens.ActionQuit:
		return w.requestQuit()
	}
	return cmd
}

func (w *Wizard) updateSubmit(msg tea.Msg) tea.Cmd {
	if w.submit == nil {
		return nil
	}
	_, cmd := w.submit.Update(msg)
	return cmd
}

func (w *Wizard) onSubmission(s intake.SubmissionState) tea.Cmd {
	if w.submit == nil {
		return nil
	}
	prev := w.submit.State()
	w.submit.SetState(s)

	if s.Status != intake.StatusIdle {
		return nil
	}
	switch prev.Status {
	case intake.StatusSuccess:
		w.phase = PhaseDone
		w.reported = make(map[int]any)
	case intake.StatusError:
		w.notice = screens.StatusLine(prev.Message, false)
		return w.enterReview()
	}
	return nil
}

func (w *Wizard) onSubmitDone(err error) tea.Cmd {
	if err == nil {
		return nil
	}
	if errors.Is(err, intake.ErrNotReady) || errors.Is(err, intake.ErrSubmissionInProgress) {
		w.notice = screens.StatusLine(intake.UserMessage(err), false)
		return w.enterReview()
	}
	w.log.Warn().Err(err).Msg("submission failed")
	return nil
}

func (w *Wizard) updateDone(msg tea.Msg) tea.Cmd {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}
	switch key.String() {
	case "enter":
		w.submit = nil
		return w.enterStep()
	case "q", "esc":
		return w.quitNow()
	}
	return nil
}

func (w *Wizard) enterSave() tea.Cmd {
	w.prev = w.phase
	w.phase = PhaseSaveSnapshot
	if w.savePath == "" {
		w.savePath = "preocupacional.yaml"
	}
	w.saveForm = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("path").
				Title("Guardar snapshot en").
				Description("El archivo contiene datos médicos; guárdelo en un lugar seguro.").
				Value(&w.savePath),
		),
	).WithShowHelp(false)
	return w.saveForm.Init()
}

func (w *Wizard) updateSave(msg tea.Msg) tea.Cmd {
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "esc" {
		return w.enterReview()
	}
	m, cmd := w.saveForm.Update(msg)
	if f, ok := m.(*huh.Form); ok {
		w.saveForm = f
	}
	if w.saveForm.State != huh.StateCompleted {
		return cmd
	}

	if err := SaveSnapshotYAML(w.deps.Aggregator.Snapshot(), w.savePath); err != nil {
		w.log.Error().Err(err).Str("path", w.savePath).Msg("saving snapshot failed")
		w.notice = screens.StatusLine(err.Error(), false)
	} else {
		w.log.Info().Str("path", w.savePath).Msg("snapshot saved")
		w.notice = screens.StatusLine("Snapshot guardado en "+w.savePath, true)
	}
	return w.enterReview()
}

// requestQuit leaves directly when nothing would be lost, otherwise asks.
func (w *Wizard) requestQuit() tea.Cmd {
	if w.phase == PhaseSubmitting {
		return nil
	}
	if !w.deps.Controller.HasUnsavedChanges() {
		return w.quitNow()
	}
	if w.phase == PhaseConfirmQuit {
		return nil
	}
	w.prev = w.phase
	w.phase = PhaseConfirmQuit
	w.quit = false
	w.quitForm = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Key("quit").
				Title("¿Salir del formulario?").
				Description("Su avance queda guardado como borrador y podrá continuar más tarde.").
				Affirmative("Salir").
				Negative("Continuar").
				Value(&w.quit),
		),
	).WithShowHelp(false)
	return w.quitForm.Init()
}

func (w *Wizard) updateConfirmQuit(msg tea.Msg) tea.Cmd {
	m, cmd := w.quitForm.Update(msg)
	if f, ok := m.(*huh.Form); ok {
		w.quitForm = f
	}
	if w.quitForm.State != huh.StateCompleted {
		return cmd
	}
	if w.quit {
		return w.quitNow()
	}
	w.phase = w.prev
	if w.phase == PhaseReview {
		return w.enterReview()
	}
	return w.enterStep()
}

func (w *Wizard) quitNow() tea.Cmd {
	if err := w.deps.Aggregator.Flush(w.ctx); err != nil {
		w.log.Error().Err(err).Msg("final draft flush failed")
		w.err = err
	}
	return tea.Quit
}

// Err returns the error that ended the session, if any.
func (w *Wizard) Err() error { return w.err }

// Phase returns the current phase.
func (w *Wizard) Phase() Phase { return w.phase }

// View implements tea.Model
func (w *Wizard) View() string {
	var body string
	switch w.phase {
	case PhaseRestore:
		if w.restore == nil {
			return components.HintStyle.Render("Buscando borrador guardado...")
		}
		return w.restore.View()
	case PhaseStep:
		body = w.section.View()
		if w.notice != "" {
			body = lipgloss.JoinVertical(lipgloss.Left, components.SuccessStyle.Render(w.notice), body)
		}
	case PhaseReview:
		body = w.review.View()
	case PhaseSubmitting:
		body = w.submit.View()
	case PhaseDone:
		body = lipgloss.JoinVertical(lipgloss.Left,
			w.submit.View(),
			"",
			components.HintStyle.Render("Enter: nuevo formulario | q: salir"),
		)
	case PhaseSaveSnapshot:
		body = w.saveForm.View()
	case PhaseConfirmQuit:
		body = w.quitForm.View()
	}
	return lipgloss.JoinVertical(lipgloss.Left, w.stepper(), "", body)
}

func (w *Wizard) stepper() string {
	valid := make([]bool, form.TotalSteps)
	for i := range valid {
		valid[i] = w.deps.Controller.StepValid(i)
	}
	return components.Stepper(w.deps.Controller.CurrentStep(), valid, w.pulsing)
}

// Run starts the wizard. When from names a YAML snapshot it prefills the
// form and skips the draft prompt.
func Run(ctx context.Context, deps Deps, from string) error {
	restoring := false
	if from != "" {
		s, err := LoadSnapshotYAML(from)
		if err != nil {
			return err
		}
		deps.Aggregator.Replace(s)
	} else {
		restoring = deps.Aggregator.HasDraft(ctx)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	w := New(ctx, deps, restoring)
	p := tea.NewProgram(w, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("wizard: %w", err)
	}
	return w.Err()
}
