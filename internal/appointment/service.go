package appointment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/carepulse/intake-platform/internal/notify"
	"github.com/carepulse/intake-platform/internal/observability/metrics"
	"github.com/carepulse/intake-platform/pkg/logging"
)

// scheduleLayout renders appointment slots inside patient-facing messages,
// e.g. "Oct 25, 2024 - 8:30 AM".
const scheduleLayout = "Jan 2, 2006 - 3:04 PM"

const smsGreeting = "Greetings from CarePulse. "

// AdminPath is the dashboard view invalidated after every transition.
const AdminPath = "/admin"

// Repository is the document-store contract the lifecycle service writes
// through.
type Repository interface {
	Create(ctx context.Context, a *Appointment) (*Appointment, error)
	Get(ctx context.Context, id string) (*Appointment, error)
	Update(ctx context.Context, id string, patch Patch) (*Appointment, error)
	List(ctx context.Context) ([]Appointment, error)
}

// Notifier dispatches a best-effort message to a recipient id.
type Notifier interface {
	Notify(ctx context.Context, recipientID, content string) (*notify.Receipt, error)
}

// Revalidator signals downstream views that cached data is stale.
type Revalidator interface {
	Revalidate(ctx context.Context, path string) error
}

// Service orchestrates the appointment state machine: pending on creation,
// then a single transition to scheduled or cancelled. Notification dispatch
// and cache invalidation ride along as non-transactional side effects — the
// status write is the source of truth and is never rolled back for them.
type Service struct {
	repo        Repository
	notifier    Notifier
	revalidator Revalidator
	metrics     *metrics.IntakeMetrics
	logger      *logging.Logger
}

// NewService wires the lifecycle service. notifier and revalidator may be
// nil, which disables the corresponding side effect.
func NewService(repo Repository, notifier Notifier, revalidator Revalidator, m *metrics.IntakeMetrics, logger *logging.Logger) *Service {
	if repo == nil {
		panic("appointment: repository cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		repo:        repo,
		notifier:    notifier,
		revalidator: revalidator,
		metrics:     m,
		logger:      logger,
	}
}

// RequestCreate validates the form input and persists a new appointment in
// pending status. The underlying single-document write is atomic: on failure
// the store holds nothing.
func (s *Service) RequestCreate(ctx context.Context, req CreateRequest) (*Appointment, error) {
	if err := req.Validate(); err != nil {
		s.metrics.ObserveTransition(string(IntentCreate), "validation_error")
		return nil, err
	}

	created, err := s.repo.Create(ctx, &Appointment{
		PatientID:        req.PatientID,
		UserID:           req.UserID,
		PrimaryPhysician: req.PrimaryPhysician,
		Schedule:         req.Schedule,
		Status:           StatusPending,
		Reason:           req.Reason,
		Note:             req.Note,
	})
	if err != nil {
		s.metrics.ObserveTransition(string(IntentCreate), "error")
		s.logger.Error("appointment creation did not complete", "error", err)
		return nil, err
	}

	s.metrics.ObserveTransition(string(IntentCreate), "ok")
	s.logger.Info("appointment requested", "id", created.ID, "patient_id", created.PatientID)
	s.invalidateAdminView(ctx)
	return created, nil
}

// Get fetches a single appointment.
func (s *Service) Get(ctx context.Context, id string) (*Appointment, error) {
	return s.repo.Get(ctx, id)
}

// List returns the full set of appointments, newest first.
func (s *Service) List(ctx context.Context) ([]Appointment, error) {
	return s.repo.List(ctx)
}

// Transition applies an intent to an existing appointment. Required fields
// are validated before any store call; the status write happens before the
// notification, and a notification failure does not reverse it.
func (s *Service) Transition(ctx context.Context, id string, intent Intent, patch Patch) (*Appointment, error) {
	target, err := s.resolveTarget(intent, patch)
	if err != nil {
		s.metrics.ObserveTransition(string(intent), "validation_error")
		return nil, err
	}
	patch.Status = target

	updated, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		status := "error"
		if errors.Is(err, ErrNotFound) {
			status = "not_found"
		}
		s.metrics.ObserveTransition(string(intent), status)
		return nil, err
	}
	s.metrics.ObserveTransition(string(intent), "ok")
	s.logger.Info("appointment transitioned", "id", updated.ID, "intent", intent, "status", updated.Status)

	if intent == IntentSchedule || intent == IntentCancel {
		s.sendConfirmation(ctx, intent, updated)
	}
	s.invalidateAdminView(ctx)
	return updated, nil
}

// resolveTarget maps an intent to the target status, enforcing the fields
// each intent requires. Every member of the closed intent set is handled:
// the generic-update members fall through to pending without field checks,
// matching the documented update-path default.
func (s *Service) resolveTarget(intent Intent, patch Patch) (Status, error) {
	switch intent {
	case IntentSchedule:
		if patch.PrimaryPhysician == "" {
			return "", &ValidationError{Field: "primaryPhysician"}
		}
		if patch.Schedule.IsZero() {
			return "", &ValidationError{Field: "schedule"}
		}
		return StatusScheduled, nil
	case IntentCancel:
		if patch.CancellationReason == "" {
			return "", &ValidationError{Field: "cancellationReason"}
		}
		return StatusCancelled, nil
	case IntentCreate, IntentNone:
		return StatusPending, nil
	}
	return StatusPending, nil
}

// sendConfirmation formats and dispatches the patient-facing SMS. Failure is
// logged and counted only: the persisted status change stands regardless.
func (s *Service) sendConfirmation(ctx context.Context, intent Intent, a *Appointment) {
	if s.notifier == nil {
		return
	}

	receipt, err := s.notifier.Notify(ctx, a.UserID, ConfirmationMessage(intent, a))
	if err != nil {
		s.metrics.ObserveNotification("sms", "error")
		s.logger.Error("appointment notification failed", "error", err, "id", a.ID, "intent", intent)
		return
	}
	s.metrics.ObserveNotification("sms", "ok")
	s.logger.Info("appointment notification sent", "id", a.ID, "message_id", receipt.MessageID)
}

func (s *Service) invalidateAdminView(ctx context.Context) {
	if s.revalidator == nil {
		return
	}
	if err := s.revalidator.Revalidate(ctx, AdminPath); err != nil {
		s.logger.Error("admin view invalidation failed", "error", err, "path", AdminPath)
	}
}

// ConfirmationMessage renders the SMS body for a schedule or cancel
// transition. The wording, including the double space after "Reason:",
// matches the copy patients have received since launch.
func ConfirmationMessage(intent Intent, a *Appointment) string {
	var body string
	if intent == IntentSchedule {
		body = fmt.Sprintf("Your appointment is confirmed for %s with Dr. %s",
			FormatSchedule(a.Schedule), a.PrimaryPhysician)
	} else {
		body = fmt.Sprintf("We regret to inform that your appointment for %s is cancelled. Reason:  %s",
			FormatSchedule(a.Schedule), a.CancellationReason)
	}
	return smsGreeting + body + "."
}

// FormatSchedule renders an appointment slot for human-readable messages.
func FormatSchedule(t time.Time) string {
	return t.Format(scheduleLayout)
}
