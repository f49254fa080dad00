package validator

import (
	"fmt"
	"strings"
	"time"
)

// FieldError is a single violated constraint on a named field.
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ValidationError carries every violation found, not just the first.
type ValidationError struct {
	Fields []FieldError `json:"fields"`
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = fmt.Sprintf("%s: %s", f.Field, f.Reason)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Has(field string) bool {
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

type ClaimValidator struct{}

func NewClaimValidator() *ClaimValidator {
	return &ClaimValidator{}
}

// ValidateEdit checks the fields a claim edit may change.
func (v *ClaimValidator) ValidateEdit(claimType string, amount float64, dateSubmitted time.Time) error {
	var fields []FieldError
	fields = appendCommonFieldErrors(fields, claimType, amount)
	if dateSubmitted.IsZero() {
		fields = append(fields, FieldError{Field: "dateSubmitted", Reason: "Date Submitted is mandatory."})
	}
	return asError(fields)
}

// ValidateSubmission checks a new claim request: the edit fields plus the
// incident date, description and policyholder identity.
func (v *ClaimValidator) ValidateSubmission(policyholderID, claimType string, amount float64, dateOfIncident time.Time, description string, now time.Time) error {
	var fields []FieldError
	fields = appendCommonFieldErrors(fields, claimType, amount)
	if dateOfIncident.IsZero() {
		fields = append(fields, FieldError{Field: "dateOfIncident", Reason: "Date of Incident is mandatory."})
	} else if dateOfIncident.After(now) {
		fields = append(fields, FieldError{Field: "dateOfIncident", Reason: "Date of Incident cannot be in the future."})
	}
	if strings.TrimSpace(description) == "" {
		fields = append(fields, FieldError{Field: "description", Reason: "Description is mandatory."})
	}
	if strings.TrimSpace(policyholderID) == "" {
		fields = append(fields, FieldError{Field: "policyholderId", Reason: "Policyholder ID is mandatory."})
	}
	return asError(fields)
}

func appendCommonFieldErrors(fields []FieldError, claimType string, amount float64) []FieldError {
	if strings.TrimSpace(claimType) == "" {
		fields = append(fields, FieldError{Field: "type", Reason: "Claim Type is mandatory."})
	}
	if amount <= 0 {
		fields = append(fields, FieldError{Field: "amount", Reason: "Amount must be a positive number."})
	}
	return fields
}

func asError(fields []FieldError) error {
	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: fields}
}
