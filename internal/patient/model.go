// Package patient implements the patient registry: intake registration,
// lookup, and identification-document storage. It also resolves recipient ids
// for the notification gateway.
package patient

import (
	"fmt"
	"time"
)

// Patient is the persisted intake record. The field set mirrors the
// registration form.
type Patient struct {
	ID                     string    `dynamodbav:"id" json:"id"`
	UserID                 string    `dynamodbav:"userId" json:"userId"`
	Name                   string    `dynamodbav:"name" json:"name"`
	Email                  string    `dynamodbav:"email" json:"email"`
	Phone                  string    `dynamodbav:"phone" json:"phone"`
	BirthDate              time.Time `dynamodbav:"birthDate" json:"birthDate"`
	Gender                 string    `dynamodbav:"gender,omitempty" json:"gender,omitempty"`
	Address                string    `dynamodbav:"address,omitempty" json:"address,omitempty"`
	Occupation             string    `dynamodbav:"occupation,omitempty" json:"occupation,omitempty"`
	EmergencyContactName   string    `dynamodbav:"emergencyContactName,omitempty" json:"emergencyContactName,omitempty"`
	EmergencyContactNumber string    `dynamodbav:"emergencyContactNumber,omitempty" json:"emergencyContactNumber,omitempty"`
	PrimaryPhysician       string    `dynamodbav:"primaryPhysician,omitempty" json:"primaryPhysician,omitempty"`
	InsuranceProvider      string    `dynamodbav:"insuranceProvider,omitempty" json:"insuranceProvider,omitempty"`
	InsurancePolicyNumber  string    `dynamodbav:"insurancePolicyNumber,omitempty" json:"insurancePolicyNumber,omitempty"`
	Allergies              string    `dynamodbav:"allergies,omitempty" json:"allergies,omitempty"`
	CurrentMedication      string    `dynamodbav:"currentMedication,omitempty" json:"currentMedication,omitempty"`
	FamilyMedicalHistory   string    `dynamodbav:"familyMedicalHistory,omitempty" json:"familyMedicalHistory,omitempty"`
	PastMedicalHistory     string    `dynamodbav:"pastMedicalHistory,omitempty" json:"pastMedicalHistory,omitempty"`
	IdentificationType     string    `dynamodbav:"identificationType,omitempty" json:"identificationType,omitempty"`
	IdentificationNumber   string    `dynamodbav:"identificationNumber,omitempty" json:"identificationNumber,omitempty"`
	IdentificationDocument string    `dynamodbav:"identificationDocument,omitempty" json:"identificationDocument,omitempty"`
	TreatmentConsent       bool      `dynamodbav:"treatmentConsent" json:"treatmentConsent"`
	DisclosureConsent      bool      `dynamodbav:"disclosureConsent" json:"disclosureConsent"`
	PrivacyConsent         bool      `dynamodbav:"privacyConsent" json:"privacyConsent"`
	CreatedAt              string    `dynamodbav:"createdAt" json:"createdAt"`
	UpdatedAt              string    `dynamodbav:"updatedAt" json:"updatedAt"`
}

// RegisterRequest is the form-to-action payload for patient registration.
type RegisterRequest struct {
	UserID                 string    `json:"userId"`
	Name                   string    `json:"name"`
	Email                  string    `json:"email"`
	Phone                  string    `json:"phone"`
	BirthDate              time.Time `json:"birthDate"`
	Gender                 string    `json:"gender,omitempty"`
	Address                string    `json:"address,omitempty"`
	Occupation             string    `json:"occupation,omitempty"`
	EmergencyContactName   string    `json:"emergencyContactName,omitempty"`
	EmergencyContactNumber string    `json:"emergencyContactNumber,omitempty"`
	PrimaryPhysician       string    `json:"primaryPhysician,omitempty"`
	InsuranceProvider      string    `json:"insuranceProvider,omitempty"`
	InsurancePolicyNumber  string    `json:"insurancePolicyNumber,omitempty"`
	Allergies              string    `json:"allergies,omitempty"`
	CurrentMedication      string    `json:"currentMedication,omitempty"`
	FamilyMedicalHistory   string    `json:"familyMedicalHistory,omitempty"`
	PastMedicalHistory     string    `json:"pastMedicalHistory,omitempty"`
	IdentificationType     string    `json:"identificationType,omitempty"`
	IdentificationNumber   string    `json:"identificationNumber,omitempty"`
	TreatmentConsent       bool      `json:"treatmentConsent"`
	DisclosureConsent      bool      `json:"disclosureConsent"`
	PrivacyConsent         bool      `json:"privacyConsent"`
}

// ValidationError reports a missing or unacceptable registration field.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("patient: missing required field %q", e.Field)
}

// Validate checks the fields registration requires. Privacy consent is
// mandatory; the other consents are recorded as given.
func (r *RegisterRequest) Validate() error {
	switch {
	case r.UserID == "":
		return &ValidationError{Field: "userId"}
	case r.Name == "":
		return &ValidationError{Field: "name"}
	case r.Email == "":
		return &ValidationError{Field: "email"}
	case r.Phone == "":
		return &ValidationError{Field: "phone"}
	case r.BirthDate.IsZero():
		return &ValidationError{Field: "birthDate"}
	case !r.PrivacyConsent:
		return &ValidationError{Field: "privacyConsent"}
	}
	return nil
}
