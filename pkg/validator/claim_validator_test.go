package validator

import (
	"errors"
	"testing"
	"time"
)

func TestValidateSubmission_AllViolationsCollected(t *testing.T) {
	v := NewClaimValidator()
	now := time.Now()

	err := v.ValidateSubmission("", "", 0, time.Time{}, "", now)
	if err == nil {
		t.Fatal("expected validation error")
	}

	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	for _, field := range []string{"type", "amount", "dateOfIncident", "description", "policyholderId"} {
		if !vErr.Has(field) {
			t.Errorf("expected a violation for %q, got %v", field, vErr.Fields)
		}
	}
	if len(vErr.Fields) != 5 {
		t.Errorf("expected 5 violations, got %d", len(vErr.Fields))
	}
}

func TestValidateSubmission_Valid(t *testing.T) {
	v := NewClaimValidator()
	now := time.Now()

	err := v.ValidateSubmission("PH001", "Auto Accident", 15000, now.AddDate(0, 0, -3), "Rear-ended at a junction.", now)
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidateSubmission_FutureIncidentDate(t *testing.T) {
	v := NewClaimValidator()
	now := time.Now()

	err := v.ValidateSubmission("PH001", "Auto Accident", 100, now.AddDate(0, 0, 2), "desc", now)
	var vErr *ValidationError
	if !errors.As(err, &vErr) || !vErr.Has("dateOfIncident") {
		t.Errorf("expected dateOfIncident violation, got %v", err)
	}
}

func TestValidateSubmission_ZeroAmount(t *testing.T) {
	v := NewClaimValidator()
	now := time.Now()

	err := v.ValidateSubmission("PH001", "Auto Accident", 0, now.AddDate(0, 0, -1), "desc", now)
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	if !vErr.Has("amount") || len(vErr.Fields) != 1 {
		t.Errorf("expected exactly one amount violation, got %v", vErr.Fields)
	}
}

func TestValidateEdit(t *testing.T) {
	v := NewClaimValidator()

	if err := v.ValidateEdit("Home Burglary", 5000, time.Now()); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	err := v.ValidateEdit("  ", -3, time.Time{})
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	for _, field := range []string{"type", "amount", "dateSubmitted"} {
		if !vErr.Has(field) {
			t.Errorf("expected a violation for %q, got %v", field, vErr.Fields)
		}
	}
}
