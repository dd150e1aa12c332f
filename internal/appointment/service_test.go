package appointment

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/carepulse/intake-platform/internal/notify"
	"github.com/carepulse/intake-platform/pkg/logging"
)

type mockRepo struct {
	createInputs []*Appointment
	createResult *Appointment
	createErr    error

	getResult *Appointment
	getErr    error

	updateCalls []struct {
		id    string
		patch Patch
	}
	updateResult *Appointment
	updateErr    error

	listResult []Appointment
	listErr    error
}

func (m *mockRepo) Create(_ context.Context, a *Appointment) (*Appointment, error) {
	m.createInputs = append(m.createInputs, a)
	if m.createErr != nil {
		return nil, m.createErr
	}
	if m.createResult != nil {
		return m.createResult, nil
	}
	stored := *a
	stored.ID = "apt-new"
	stored.CreatedAt = "2026-08-28T10:00:00Z"
	return &stored, nil
}

func (m *mockRepo) Get(_ context.Context, _ string) (*Appointment, error) {
	return m.getResult, m.getErr
}

func (m *mockRepo) Update(_ context.Context, id string, patch Patch) (*Appointment, error) {
	m.updateCalls = append(m.updateCalls, struct {
		id    string
		patch Patch
	}{id, patch})
	if m.updateErr != nil {
		return nil, m.updateErr
	}
	return m.updateResult, nil
}

func (m *mockRepo) List(_ context.Context) ([]Appointment, error) {
	return m.listResult, m.listErr
}

type mockNotifier struct {
	calls []struct {
		recipientID string
		content     string
	}
	err error
}

func (m *mockNotifier) Notify(_ context.Context, recipientID, content string) (*notify.Receipt, error) {
	m.calls = append(m.calls, struct {
		recipientID string
		content     string
	}{recipientID, content})
	if m.err != nil {
		return nil, m.err
	}
	return &notify.Receipt{MessageID: "msg-1", Status: "queued", To: "+15550001111"}, nil
}

type mockRevalidator struct {
	paths []string
	err   error
}

func (m *mockRevalidator) Revalidate(_ context.Context, path string) error {
	m.paths = append(m.paths, path)
	return m.err
}

func newTestService(repo *mockRepo, notifier *mockNotifier, revalidator *mockRevalidator) *Service {
	return NewService(repo, notifier, revalidator, nil, logging.Default())
}

func TestRequestCreateYieldsPendingRecord(t *testing.T) {
	repo := &mockRepo{}
	svc := newTestService(repo, &mockNotifier{}, &mockRevalidator{})

	created, err := svc.RequestCreate(context.Background(), CreateRequest{
		PatientID:        "pat-1",
		UserID:           "user-1",
		PrimaryPhysician: "Livingston",
		Schedule:         time.Date(2026, 9, 14, 15, 30, 0, 0, time.UTC),
		Reason:           "Annual checkup",
	})
	if err != nil {
		t.Fatalf("RequestCreate returned error: %v", err)
	}
	if created.Status != StatusPending {
		t.Fatalf("expected pending status, got %s", created.Status)
	}
	if created.ID == "" {
		t.Fatal("expected assigned id")
	}
	if len(repo.createInputs) != 1 || repo.createInputs[0].Status != StatusPending {
		t.Fatalf("expected a single pending create, got %+v", repo.createInputs)
	}
}

func TestRequestCreateValidationSkipsStore(t *testing.T) {
	repo := &mockRepo{}
	svc := newTestService(repo, &mockNotifier{}, &mockRevalidator{})

	_, err := svc.RequestCreate(context.Background(), CreateRequest{
		PatientID: "pat-1",
		UserID:    "user-1",
		// no physician, schedule or reason
	})
	var validation *ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(repo.createInputs) != 0 {
		t.Fatalf("expected no store call on validation failure, got %d", len(repo.createInputs))
	}
}

func TestRequestCreatePersistenceFailure(t *testing.T) {
	repo := &mockRepo{createErr: errors.New("store unavailable")}
	revalidator := &mockRevalidator{}
	svc := newTestService(repo, &mockNotifier{}, revalidator)

	_, err := svc.RequestCreate(context.Background(), CreateRequest{
		PatientID:        "pat-1",
		UserID:           "user-1",
		PrimaryPhysician: "Livingston",
		Schedule:         time.Date(2026, 9, 14, 15, 30, 0, 0, time.UTC),
		Reason:           "Annual checkup",
	})
	if err == nil {
		t.Fatal("expected persistence error to propagate")
	}
	if len(revalidator.paths) != 0 {
		t.Fatal("expected no invalidation when nothing was written")
	}
}

func TestTransitionScheduleUpdatesAndNotifies(t *testing.T) {
	slot := time.Date(2026, 9, 14, 15, 30, 0, 0, time.UTC)
	repo := &mockRepo{updateResult: &Appointment{
		ID:               "apt-1",
		PatientID:        "pat-1",
		UserID:           "user-1",
		PrimaryPhysician: "X",
		Schedule:         slot,
		Status:           StatusScheduled,
	}}
	notifier := &mockNotifier{}
	revalidator := &mockRevalidator{}
	svc := newTestService(repo, notifier, revalidator)

	updated, err := svc.Transition(context.Background(), "apt-1", IntentSchedule, Patch{
		PrimaryPhysician: "X",
		Schedule:         slot,
	})
	if err != nil {
		t.Fatalf("Transition returned error: %v", err)
	}
	if updated.Status != StatusScheduled {
		t.Fatalf("expected scheduled status, got %s", updated.Status)
	}

	if len(repo.updateCalls) != 1 {
		t.Fatalf("expected 1 update call, got %d", len(repo.updateCalls))
	}
	call := repo.updateCalls[0]
	if call.patch.Status != StatusScheduled || call.patch.PrimaryPhysician != "X" {
		t.Fatalf("unexpected patch: %+v", call.patch)
	}

	if len(notifier.calls) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(notifier.calls))
	}
	msg := notifier.calls[0]
	if msg.recipientID != "user-1" {
		t.Fatalf("expected notification to user-1, got %s", msg.recipientID)
	}
	if !strings.Contains(msg.content, "confirmed for") {
		t.Fatalf("expected confirmation copy, got %q", msg.content)
	}
	if !strings.Contains(msg.content, "Dr. X") {
		t.Fatalf("expected physician name, got %q", msg.content)
	}
	if !strings.Contains(msg.content, "Sep 14, 2026 - 3:30 PM") {
		t.Fatalf("expected formatted slot, got %q", msg.content)
	}

	if len(revalidator.paths) != 1 || revalidator.paths[0] != AdminPath {
		t.Fatalf("expected /admin invalidation, got %v", revalidator.paths)
	}
}

func TestTransitionCancelUpdatesAndNotifies(t *testing.T) {
	slot := time.Date(2026, 9, 14, 15, 30, 0, 0, time.UTC)
	repo := &mockRepo{updateResult: &Appointment{
		ID:                 "apt-1",
		UserID:             "user-1",
		Schedule:           slot,
		Status:             StatusCancelled,
		CancellationReason: "Conflict",
	}}
	notifier := &mockNotifier{}
	svc := newTestService(repo, notifier, &mockRevalidator{})

	updated, err := svc.Transition(context.Background(), "apt-1", IntentCancel, Patch{
		CancellationReason: "Conflict",
	})
	if err != nil {
		t.Fatalf("Transition returned error: %v", err)
	}
	if updated.Status != StatusCancelled || updated.CancellationReason != "Conflict" {
		t.Fatalf("unexpected record: %+v", updated)
	}

	if len(notifier.calls) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(notifier.calls))
	}
	if !strings.Contains(notifier.calls[0].content, "cancelled. Reason:  Conflict") {
		t.Fatalf("expected cancellation copy with original spacing, got %q", notifier.calls[0].content)
	}
}

func TestTransitionScheduleMissingFieldsSkipsStore(t *testing.T) {
	repo := &mockRepo{}
	notifier := &mockNotifier{}
	svc := newTestService(repo, notifier, &mockRevalidator{})

	_, err := svc.Transition(context.Background(), "apt-1", IntentSchedule, Patch{
		PrimaryPhysician: "X",
		// no schedule
	})
	var validation *ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if validation.Field != "schedule" {
		t.Fatalf("expected schedule field, got %s", validation.Field)
	}
	if len(repo.updateCalls) != 0 {
		t.Fatalf("expected zero update calls, got %d", len(repo.updateCalls))
	}
	if len(notifier.calls) != 0 {
		t.Fatalf("expected zero notifications, got %d", len(notifier.calls))
	}
}

func TestTransitionCancelMissingReasonSkipsStore(t *testing.T) {
	repo := &mockRepo{}
	svc := newTestService(repo, &mockNotifier{}, &mockRevalidator{})

	_, err := svc.Transition(context.Background(), "apt-1", IntentCancel, Patch{})
	var validation *ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(repo.updateCalls) != 0 {
		t.Fatalf("expected zero update calls, got %d", len(repo.updateCalls))
	}
}

func TestTransitionNotificationFailureKeepsWrite(t *testing.T) {
	repo := &mockRepo{updateResult: &Appointment{
		ID:       "apt-1",
		UserID:   "user-1",
		Schedule: time.Date(2026, 9, 14, 15, 30, 0, 0, time.UTC),
		Status:   StatusScheduled,
	}}
	notifier := &mockNotifier{err: errors.New("sms gateway down")}
	revalidator := &mockRevalidator{}
	svc := newTestService(repo, notifier, revalidator)

	updated, err := svc.Transition(context.Background(), "apt-1", IntentSchedule, Patch{
		PrimaryPhysician: "X",
		Schedule:         time.Date(2026, 9, 14, 15, 30, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("notification failure must not fail the transition: %v", err)
	}
	if updated.Status != StatusScheduled {
		t.Fatalf("persisted status must stand, got %s", updated.Status)
	}
	if len(revalidator.paths) != 1 {
		t.Fatal("expected invalidation despite notification failure")
	}
}

func TestTransitionGenericUpdateDefaultsToPending(t *testing.T) {
	repo := &mockRepo{updateResult: &Appointment{
		ID:     "apt-1",
		UserID: "user-1",
		Status: StatusPending,
		Note:   "updated note",
	}}
	notifier := &mockNotifier{}
	svc := newTestService(repo, notifier, &mockRevalidator{})

	updated, err := svc.Transition(context.Background(), "apt-1", IntentNone, Patch{
		Note: "updated note",
	})
	if err != nil {
		t.Fatalf("generic update must be permitted without field validation: %v", err)
	}
	if updated.Status != StatusPending {
		t.Fatalf("expected pending fallback, got %s", updated.Status)
	}
	if repo.updateCalls[0].patch.Status != StatusPending {
		t.Fatalf("expected pending target status, got %s", repo.updateCalls[0].patch.Status)
	}
	if len(notifier.calls) != 0 {
		t.Fatal("generic updates must not notify")
	}
}

func TestTransitionUnknownIDPropagatesNotFound(t *testing.T) {
	repo := &mockRepo{updateErr: ErrNotFound}
	svc := newTestService(repo, &mockNotifier{}, &mockRevalidator{})

	_, err := svc.Transition(context.Background(), "missing", IntentCancel, Patch{CancellationReason: "x"})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestConfirmationMessageFormats(t *testing.T) {
	slot := time.Date(2026, 10, 25, 8, 30, 0, 0, time.UTC)

	schedule := ConfirmationMessage(IntentSchedule, &Appointment{
		PrimaryPhysician: "Livingston",
		Schedule:         slot,
	})
	want := "Greetings from CarePulse. Your appointment is confirmed for Oct 25, 2026 - 8:30 AM with Dr. Livingston."
	if schedule != want {
		t.Fatalf("schedule message mismatch:\n got %q\nwant %q", schedule, want)
	}

	cancel := ConfirmationMessage(IntentCancel, &Appointment{
		Schedule:           slot,
		CancellationReason: "Physician unavailable",
	})
	want = "Greetings from CarePulse. We regret to inform that your appointment for Oct 25, 2026 - 8:30 AM is cancelled. Reason:  Physician unavailable."
	if cancel != want {
		t.Fatalf("cancel message mismatch:\n got %q\nwant %q", cancel, want)
	}
}
