package model

import (
	"fmt"
	"testing"
)

func TestAPIError_Error(t *testing.T) {
	err := NewDuplicateContactError()
	want := "[DUPLICATE_CONTACT] Email, phone, or name already exists"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestHasCode_Wrapped(t *testing.T) {
	err := fmt.Errorf("update failed: %w", NewContactNotFoundError("abc"))
	if !HasCode(err, ErrCodeContactNotFound) {
		t.Error("expected wrapped CONTACT_NOT_FOUND to be detected")
	}
	if HasCode(err, ErrCodeDuplicateContact) {
		t.Error("expected DUPLICATE_CONTACT not to match")
	}
}

func TestHasCode_PlainError(t *testing.T) {
	if HasCode(fmt.Errorf("boom"), ErrCodeInternal) {
		t.Error("plain error must not carry an API error code")
	}
	if HasCode(nil, ErrCodeInternal) {
		t.Error("nil error must not carry an API error code")
	}
}

func TestNewValidationError_KeepsFields(t *testing.T) {
	fields := []FieldError{
		{Field: "fname", Rule: "min", Message: "fname must be at least 2 characters"},
		{Field: "email", Rule: "email", Message: "email must be a valid email address"},
	}
	err := NewValidationError(fields)
	if err.Code != ErrCodeValidationFailed {
		t.Errorf("Code = %q, want %q", err.Code, ErrCodeValidationFailed)
	}
	if len(err.Fields) != 2 {
		t.Fatalf("len(Fields) = %d, want 2", len(err.Fields))
	}
	if err.Category != "validation" {
		t.Errorf("Category = %q, want validation", err.Category)
	}
}
