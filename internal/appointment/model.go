// Package appointment implements the appointment lifecycle: creation,
// schedule/cancel transitions, persistence against DynamoDB, and the derived
// status counts shown on the admin dashboard.
package appointment

import (
	"fmt"
	"time"
)

// Status is the lifecycle state of an appointment.
type Status string

const (
	StatusPending   Status = "pending"
	StatusScheduled Status = "scheduled"
	StatusCancelled Status = "cancelled"
)

// KnownStatus reports whether s is one of the three lifecycle states.
// Records with any other status are excluded from aggregate counters.
func KnownStatus(s Status) bool {
	switch s {
	case StatusPending, StatusScheduled, StatusCancelled:
		return true
	}
	return false
}

// Intent is the caller-specified purpose of a transition request. It is a
// closed set: anything the wire layer cannot map lands on IntentNone, which
// is the explicit generic-update fallback (target status pending, no field
// validation). That fallback mirrors the long-standing behavior of the update
// path and is kept deliberately.
type Intent string

const (
	IntentCreate   Intent = "create"
	IntentSchedule Intent = "schedule"
	IntentCancel   Intent = "cancel"
	IntentNone     Intent = "none"
)

// ParseIntent maps a wire value to an Intent. Unknown values become
// IntentNone rather than an error.
func ParseIntent(raw string) Intent {
	switch raw {
	case "create":
		return IntentCreate
	case "schedule":
		return IntentSchedule
	case "cancel":
		return IntentCancel
	}
	return IntentNone
}

// Appointment is the persisted booking record. ID and CreatedAt are assigned
// by the store layer on creation and never change afterwards.
type Appointment struct {
	ID                 string    `dynamodbav:"id" json:"id"`
	PatientID          string    `dynamodbav:"patientId" json:"patientId"`
	UserID             string    `dynamodbav:"userId" json:"userId"`
	PrimaryPhysician   string    `dynamodbav:"primaryPhysician,omitempty" json:"primaryPhysician,omitempty"`
	Schedule           time.Time `dynamodbav:"schedule" json:"schedule"`
	Status             Status    `dynamodbav:"status" json:"status"`
	Reason             string    `dynamodbav:"reason,omitempty" json:"reason,omitempty"`
	Note               string    `dynamodbav:"note,omitempty" json:"note,omitempty"`
	CancellationReason string    `dynamodbav:"cancellationReason,omitempty" json:"cancellationReason,omitempty"`
	CreatedAt          string    `dynamodbav:"createdAt" json:"createdAt"`
	UpdatedAt          string    `dynamodbav:"updatedAt" json:"updatedAt"`
}

// CreateRequest is the form-to-action payload for a new appointment.
type CreateRequest struct {
	PatientID        string    `json:"patientId"`
	UserID           string    `json:"userId"`
	PrimaryPhysician string    `json:"primaryPhysician"`
	Schedule         time.Time `json:"schedule"`
	Reason           string    `json:"reason"`
	Note             string    `json:"note,omitempty"`
}

// Validate checks the fields required for creation. It returns a
// *ValidationError naming the first missing field.
func (r *CreateRequest) Validate() error {
	switch {
	case r.PatientID == "":
		return &ValidationError{Field: "patientId"}
	case r.UserID == "":
		return &ValidationError{Field: "userId"}
	case r.PrimaryPhysician == "":
		return &ValidationError{Field: "primaryPhysician"}
	case r.Schedule.IsZero():
		return &ValidationError{Field: "schedule"}
	case r.Reason == "":
		return &ValidationError{Field: "reason"}
	}
	return nil
}

// Patch carries the mutable fields of a transition request. Zero values mean
// "leave unchanged"; the store merges only what is set. Status is filled in
// by the lifecycle service, never by callers.
type Patch struct {
	PrimaryPhysician   string    `json:"primaryPhysician,omitempty"`
	Schedule           time.Time `json:"schedule,omitempty"`
	Reason             string    `json:"reason,omitempty"`
	Note               string    `json:"note,omitempty"`
	CancellationReason string    `json:"cancellationReason,omitempty"`
	Status             Status    `json:"-"`
}

// ValidationError reports a required field missing for the requested intent.
// No store call is made when validation fails.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("appointment: missing required field %q", e.Field)
}
