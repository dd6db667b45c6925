package e2e

import (
	"context"
	"errors"
	"fmt"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/almanova/preocupacional/internal/aggregator"
	"github.com/almanova/preocupacional/internal/delivery"
	"github.com/almanova/preocupacional/internal/draft"
	"github.com/almanova/preocupacional/internal/form"
	"github.com/almanova/preocupacional/internal/intake"
	"github.com/almanova/preocupacional/internal/pdf"
	"github.com/almanova/preocupacional/internal/relay"
	"github.com/almanova/preocupacional/internal/throttle"
	"github.com/almanova/preocupacional/internal/util"
	"github.com/cucumber/godog"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
)

var sessionStart = time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)

// countingRenderer records how often a real renderer is invoked.
type countingRenderer struct {
	intake.Renderer
	calls atomic.Int32
}

func (r *countingRenderer) Render(ctx context.Context, s form.Snapshot) ([]byte, error) {
	r.calls.Add(1)
	return r.Renderer.Render(ctx, s)
}

// outbox is a relay mailer that keeps every message.
type outbox struct {
	mu   sync.Mutex
	sent []relay.Message
}

func (o *outbox) Send(_ context.Context, m relay.Message) (string, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.sent = append(o.sent, m)
	return fmt.Sprintf("msg-%d", len(o.sent)), nil
}

func (o *outbox) count() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.sent)
}

// intakeContext drives the controller in-process against a relay server.
type intakeContext struct {
	store   *draft.MemoryStore
	sealed  *draft.Sealed
	clock   *clockwork.FakeClock
	agg     *aggregator.Aggregator
	clinic  *countingRenderer
	patient *countingRenderer
	mail    *outbox
	server  *httptest.Server
	relay   string

	mu       sync.Mutex
	statuses []intake.Status
	last     intake.SubmissionState

	ctrl      *intake.Controller
	submitErr error
	outcome   intake.RestoreOutcome
}

func (ic *intakeContext) register(sc *godog.ScenarioContext) {
	sc.Step(`^a fresh intake session$`, ic.aFreshIntakeSession)
	sc.Step(`^a form with all five sections filled in$`, ic.aFilledForm)
	sc.Step(`^the patient email is missing$`, ic.thePatientEmailIsMissing)
	sc.Step(`^the draft has been saved$`, ic.theDraftHasBeenSaved)
	sc.Step(`^the relay accepts deliveries$`, ic.theRelayAcceptsDeliveries)
	sc.Step(`^the relay is unreachable$`, ic.theRelayIsUnreachable)
	sc.Step(`^the form can be submitted$`, ic.theFormCanBeSubmitted)
	sc.Step(`^I submit the form$`, ic.iSubmitTheForm)
	sc.Step(`^the submission should succeed$`, ic.theSubmissionShouldSucceed)
	sc.Step(`^the submission should fail with "([^"]*)"$`, ic.theSubmissionShouldFailWith)
	sc.Step(`^the submission should be refused as not ready$`, ic.theSubmissionShouldBeRefused)
	sc.Step(`^the cooldown elapses$`, ic.theCooldownElapses)
	sc.Step(`^the submission should have passed through "([^"]*)"$`, ic.theSubmissionShouldHavePassedThrough)
	sc.Step(`^the clinic and patient emails should have been sent$`, ic.bothEmailsSent)
	sc.Step(`^no email should have been sent$`, ic.noEmailSent)
	sc.Step(`^no PDF should have been rendered$`, ic.noPDFRendered)
	sc.Step(`^the form should be reset$`, ic.theFormShouldBeReset)
	sc.Step(`^the form should be kept$`, ic.theFormShouldBeKept)
	sc.Step(`^the draft should be cleared$`, ic.theDraftShouldBeCleared)
	sc.Step(`^the draft should be kept$`, ic.theDraftShouldBeKept)

	sc.Step(`^a stored draft with the welcome acknowledged and only personal data$`, ic.aStoredDraftWithPersonalData)
	sc.Step(`^the stored draft is corrupted as "([^"]*)"$`, ic.theStoredDraftIsCorrupted)
	sc.Step(`^the wizard restores the draft$`, ic.decide(intake.DecisionRestore))
	sc.Step(`^the wizard discards the draft$`, ic.decide(intake.DecisionDiscard))
	sc.Step(`^the restore outcome should be "([^"]*)"$`, ic.theRestoreOutcomeShouldBe)
	sc.Step(`^the current step should be (\d+)$`, ic.theCurrentStepShouldBe)
	sc.Step(`^step (\d+) should be valid$`, ic.stepShouldBeValid)
	sc.Step(`^steps (\d+) to (\d+) should be invalid$`, ic.stepsShouldBeInvalid)
}

func (ic *intakeContext) aFreshIntakeSession() error {
	ic.store = draft.NewMemoryStore()
	sealed, err := draft.NewSealed(ic.store, []byte(strings.Repeat("k", 32)))
	if err != nil {
		return err
	}
	ic.sealed = sealed
	ic.clock = clockwork.NewFakeClockAt(sessionStart)
	ic.mail = &outbox{}
	ic.relay = "http://127.0.0.1:1"
	opts := pdf.Options{Now: ic.clock.Now, Location: time.UTC}
	ic.clinic = &countingRenderer{Renderer: pdf.Complete{Options: opts}}
	ic.patient = &countingRenderer{Renderer: pdf.Consent{Options: opts}}
	return ic.newController()
}

// newController builds an aggregator and controller over the current store,
// as a fresh wizard start would.
func (ic *intakeContext) newController() error {
	if ic.agg != nil {
		ic.agg.Close()
	}
	ic.agg = aggregator.New(aggregator.Options{Store: ic.sealed, Clock: clockwork.NewFakeClockAt(sessionStart)})
	ctrl, err := intake.New(intake.Options{
		Aggregator: ic.agg,
		Clinic:     ic.clinic,
		Patient:    ic.patient,
		Channel: channelFunc(func(ctx context.Context, req delivery.Request) (delivery.Response, error) {
			return delivery.NewHTTPChannel(ic.relay, 5*time.Second).Send(ctx, req)
		}),
		Clock:  ic.clock,
		Logger: zerolog.Nop(),
	})
	if err != nil {
		return err
	}
	ctrl.OnSubmissionChange(func(s intake.SubmissionState) {
		ic.mu.Lock()
		defer ic.mu.Unlock()
		if n := len(ic.statuses); n == 0 || ic.statuses[n-1] != s.Status {
			ic.statuses = append(ic.statuses, s.Status)
		}
		ic.last = s
	})
	ic.ctrl = ctrl
	return nil
}

type channelFunc func(context.Context, delivery.Request) (delivery.Response, error)

func (f channelFunc) Send(ctx context.Context, req delivery.Request) (delivery.Response, error) {
	return f(ctx, req)
}

func (ic *intakeContext) close() {
	if ic.server != nil {
		ic.server.Close()
		ic.server = nil
	}
	if ic.agg != nil {
		ic.agg.Close()
		ic.agg = nil
	}
}

func (ic *intakeContext) aFilledForm() error {
	snap, err := util.GenerateSnapshot(sessionStart, util.SampleOptions{Seed: 21})
	if err != nil {
		return err
	}
	if !ic.ctrl.Advance() {
		return errors.New("welcome step did not advance")
	}
	for step := form.StepPersonal; step <= form.StepSignature; step++ {
		key, _ := form.KeyForStep(step)
		payload, ok := snap.Section(key)
		if !ok {
			return fmt.Errorf("sample has no %s", key)
		}
		if err := ic.ctrl.ReportStepData(step, payload); err != nil {
			return err
		}
		ic.ctrl.ReportStepValidity(step, form.ValidateSection(payload) == nil)
	}
	return nil
}

func (ic *intakeContext) thePatientEmailIsMissing() error {
	v, ok := ic.agg.Get(form.KeyPersonal)
	if !ok {
		return errors.New("no personal section")
	}
	p := v.(form.PersonalInfo)
	p.Email = ""
	return ic.ctrl.ReportStepData(form.StepPersonal, p)
}

func (ic *intakeContext) theDraftHasBeenSaved() error {
	if err := ic.agg.Flush(context.Background()); err != nil {
		return err
	}
	if !ic.agg.HasDraft(context.Background()) {
		return errors.New("expected a stored draft after flush")
	}
	return nil
}

func (ic *intakeContext) theRelayAcceptsDeliveries() error {
	srv, err := relay.New(relay.Options{
		Mailer:      ic.mail,
		ClinicEmail: "clinica@example.cl",
		Limits:      throttle.PerMinute(60, 10),
		Clock:       ic.clock,
		Logger:      zerolog.Nop(),
	})
	if err != nil {
		return err
	}
	ic.server = httptest.NewServer(srv)
	ic.relay = ic.server.URL
	return nil
}

func (ic *intakeContext) theRelayIsUnreachable() error {
	srv := httptest.NewServer(nil)
	ic.relay = srv.URL
	srv.Close()
	return nil
}

func (ic *intakeContext) theFormCanBeSubmitted() error {
	if !ic.ctrl.CanSubmit() {
		return errors.New("expected the form to be submittable")
	}
	return nil
}

func (ic *intakeContext) iSubmitTheForm() error {
	ic.submitErr = ic.ctrl.Submit(context.Background())
	return nil
}

func (ic *intakeContext) theSubmissionShouldSucceed() error {
	if ic.submitErr != nil {
		return fmt.Errorf("expected success, got %v", ic.submitErr)
	}
	if s := ic.ctrl.Submission(); s.Status != intake.StatusSuccess {
		return fmt.Errorf("expected success state, got %s", s.Status)
	}
	return nil
}

func (ic *intakeContext) theSubmissionShouldFailWith(text string) error {
	if ic.submitErr == nil {
		return errors.New("expected the submission to fail")
	}
	s := ic.ctrl.Submission()
	if s.Status != intake.StatusError {
		return fmt.Errorf("expected error state, got %s", s.Status)
	}
	if !strings.Contains(s.Message, text) {
		return fmt.Errorf("expected message containing %q, got %q", text, s.Message)
	}
	return nil
}

func (ic *intakeContext) theSubmissionShouldBeRefused() error {
	if !errors.Is(ic.submitErr, intake.ErrNotReady) {
		return fmt.Errorf("expected ErrNotReady, got %v", ic.submitErr)
	}
	if s := ic.ctrl.Submission(); s.Status != intake.StatusIdle {
		return fmt.Errorf("expected idle state, got %s", s.Status)
	}
	return nil
}

func (ic *intakeContext) theCooldownElapses() error {
	ic.clock.Advance(intake.DefaultErrorCooldown + intake.DefaultSuccessCooldown)
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if ic.ctrl.Submission().Status == intake.StatusIdle {
			return nil
		}
		time.Sleep(5 * time.Millisecond)
	}
	return fmt.Errorf("still %s after the cooldown", ic.ctrl.Submission().Status)
}

func (ic *intakeContext) theSubmissionShouldHavePassedThrough(list string) error {
	ic.mu.Lock()
	defer ic.mu.Unlock()
	got := make([]string, len(ic.statuses))
	for i, s := range ic.statuses {
		got[i] = s.String()
	}
	if strings.Join(got, ",") != list {
		return fmt.Errorf("expected %s, got %s", list, strings.Join(got, ","))
	}
	return nil
}

func (ic *intakeContext) bothEmailsSent() error {
	if n := ic.mail.count(); n != 2 {
		return fmt.Errorf("expected 2 emails, got %d", n)
	}
	return nil
}

func (ic *intakeContext) noEmailSent() error {
	if n := ic.mail.count(); n != 0 {
		return fmt.Errorf("expected no email, got %d", n)
	}
	return nil
}

func (ic *intakeContext) noPDFRendered() error {
	if n := ic.clinic.calls.Load() + ic.patient.calls.Load(); n != 0 {
		return fmt.Errorf("expected no rendering, got %d calls", n)
	}
	return nil
}

func (ic *intakeContext) theFormShouldBeReset() error {
	s := ic.agg.Snapshot()
	if s.PersonalInfo != nil || s.Signature != nil {
		return errors.New("expected an empty snapshot after reset")
	}
	if ic.ctrl.CurrentStep() != form.StepWelcome {
		return fmt.Errorf("expected step 0, got %d", ic.ctrl.CurrentStep())
	}
	return nil
}

func (ic *intakeContext) theFormShouldBeKept() error {
	if !ic.agg.IsComplete() {
		return errors.New("expected the filled form to survive the failure")
	}
	if !ic.ctrl.CanSubmit() {
		return errors.New("expected the form to remain submittable")
	}
	return nil
}

func (ic *intakeContext) theDraftShouldBeCleared() error {
	if ic.agg.HasDraft(context.Background()) {
		return errors.New("expected no stored draft")
	}
	return nil
}

func (ic *intakeContext) theDraftShouldBeKept() error {
	if !ic.agg.HasDraft(context.Background()) {
		return errors.New("expected the stored draft to remain")
	}
	return nil
}

func (ic *intakeContext) aStoredDraftWithPersonalData() error {
	snap, err := util.GenerateSnapshot(sessionStart, util.SampleOptions{Seed: 5})
	if err != nil {
		return err
	}
	if !ic.ctrl.Advance() {
		return errors.New("welcome step did not advance")
	}
	if err := ic.ctrl.ReportStepData(form.StepPersonal, *snap.PersonalInfo); err != nil {
		return err
	}
	if err := ic.agg.Flush(context.Background()); err != nil {
		return err
	}
	// Start over as a new process would.
	return ic.newController()
}

// theStoredDraftIsCorrupted damages the plaintext through the sealed store,
// except for tampering which targets the sealed value itself.
func (ic *intakeContext) theStoredDraftIsCorrupted(kind string) error {
	types, err := util.ParseCorruptionTypes(kind)
	if err != nil {
		return err
	}
	ctx := context.Background()
	var target draft.Store = ic.sealed
	if types[0] == util.Tampered {
		target = ic.store
	}
	raw, ok, err := target.Read(ctx, draft.DefaultKey)
	if err != nil || !ok {
		return fmt.Errorf("expected a stored draft (found %v): %v", ok, err)
	}
	bad, err := util.CorruptDraft(raw, types[0])
	if err != nil {
		return err
	}
	return target.Write(ctx, draft.DefaultKey, bad)
}

func (ic *intakeContext) decide(d intake.Decision) func() error {
	return func() error {
		outcome, err := ic.ctrl.RestoreFromDraft(context.Background(), func(context.Context, intake.DraftInfo) (intake.Decision, error) {
			return d, nil
		})
		ic.outcome = outcome
		return err
	}
}

func (ic *intakeContext) theRestoreOutcomeShouldBe(expected string) error {
	if ic.outcome.String() != expected {
		return fmt.Errorf("expected outcome %s, got %s", expected, ic.outcome)
	}
	return nil
}

func (ic *intakeContext) theCurrentStepShouldBe(expected int) error {
	if got := ic.ctrl.CurrentStep(); got != expected {
		return fmt.Errorf("expected step %d, got %d", expected, got)
	}
	return nil
}

func (ic *intakeContext) stepShouldBeValid(step int) error {
	if !ic.ctrl.StepValid(step) {
		return fmt.Errorf("expected step %d to be valid", step)
	}
	return nil
}

func (ic *intakeContext) stepsShouldBeInvalid(from, to int) error {
	for i := from; i <= to; i++ {
		if ic.ctrl.StepValid(i) {
			return fmt.Errorf("expected step %d to be invalid", i)
		}
	}
	return nil
}
