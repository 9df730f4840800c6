package contact

import (
	"errors"
	"strings"
	"testing"

	"github.com/hitoshi/contactbook/internal/model"
)

func validContact() *model.Contact {
	return &model.Contact{
		FirstName: "Jane",
		LastName:  "Doe",
		Phone:     "+12025550123",
		Address:   "1 Main St",
		Email:     "jane@example.com",
	}
}

// fieldRules はバリデーションエラーから field -> rule のマップを作るテストヘルパー。
func fieldRules(t *testing.T, err error) map[string]string {
	t.Helper()
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *model.APIError, got %T (%v)", err, err)
	}
	if apiErr.Code != model.ErrCodeValidationFailed {
		t.Fatalf("Code = %q, want %q", apiErr.Code, model.ErrCodeValidationFailed)
	}
	rules := make(map[string]string, len(apiErr.Fields))
	for _, f := range apiErr.Fields {
		rules[f.Field] = f.Rule
	}
	return rules
}

func TestValidate_ValidContact(t *testing.T) {
	if err := Validate(validContact()); err != nil {
		t.Fatalf("expected valid contact, got %v", err)
	}
}

func TestValidate_PhoneWithoutPlus(t *testing.T) {
	c := validContact()
	c.Phone = "2025550123"
	if err := Validate(c); err != nil {
		t.Fatalf("expected phone without + to be valid, got %v", err)
	}
}

func TestValidate_IgnoresID(t *testing.T) {
	c := validContact()
	c.ID = "not-a-uuid"
	if err := Validate(c); err != nil {
		t.Fatalf("ID must not be validated, got %v", err)
	}
}

func TestValidate_FieldRules(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *model.Contact)
		field  string
		rule   string
	}{
		{"fname missing", func(c *model.Contact) { c.FirstName = "" }, "fname", "required"},
		{"fname too short", func(c *model.Contact) { c.FirstName = "J" }, "fname", "min"},
		{"fname too long", func(c *model.Contact) { c.FirstName = strings.Repeat("a", 51) }, "fname", "max"},
		{"lname too short", func(c *model.Contact) { c.LastName = "D" }, "lname", "min"},
		{"lname too long", func(c *model.Contact) { c.LastName = strings.Repeat("b", 51) }, "lname", "max"},
		{"phone letters", func(c *model.Contact) { c.Phone = "+1202555abcd" }, "phone", "phone"},
		{"phone too short", func(c *model.Contact) { c.Phone = "123456789" }, "phone", "phone"},
		{"phone too long", func(c *model.Contact) { c.Phone = "1234567890123456" }, "phone", "phone"},
		{"phone double plus", func(c *model.Contact) { c.Phone = "++12025550123" }, "phone", "phone"},
		{"address too short", func(c *model.Contact) { c.Address = "1 Ma" }, "address", "min"},
		{"address too long", func(c *model.Contact) { c.Address = strings.Repeat("x", 101) }, "address", "max"},
		{"email syntax", func(c *model.Contact) { c.Email = "jane.example.com" }, "email", "email"},
		{"email missing", func(c *model.Contact) { c.Email = "" }, "email", "required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validContact()
			tt.mutate(c)

			rules := fieldRules(t, Validate(c))
			if got := rules[tt.field]; got != tt.rule {
				t.Errorf("rule for %s = %q, want %q (all: %v)", tt.field, got, tt.rule, rules)
			}
			if len(rules) != 1 {
				t.Errorf("expected exactly one violation, got %v", rules)
			}
		})
	}
}

func TestValidate_BoundaryLengths(t *testing.T) {
	c := validContact()
	c.FirstName = "Jo"
	c.LastName = strings.Repeat("l", 50)
	c.Address = "1 Ma "
	if err := Validate(c); err != nil {
		t.Fatalf("boundary lengths should be valid, got %v", err)
	}

	c.Address = strings.Repeat("a", 100)
	if err := Validate(c); err != nil {
		t.Fatalf("address of 100 characters should be valid, got %v", err)
	}
}

func TestValidate_LengthCountsCharacters(t *testing.T) {
	c := validContact()
	// 2文字だが6バイト
	c.FirstName = "花子"
	if err := Validate(c); err != nil {
		t.Fatalf("two multibyte characters should satisfy min=2, got %v", err)
	}
}

func TestValidate_EnumeratesEveryViolation(t *testing.T) {
	c := &model.Contact{
		FirstName: "J",
		LastName:  "",
		Phone:     "12",
		Address:   "x",
		Email:     "nope",
	}

	rules := fieldRules(t, Validate(c))
	want := map[string]string{
		"fname":   "min",
		"lname":   "required",
		"phone":   "phone",
		"address": "min",
		"email":   "email",
	}
	if len(rules) != len(want) {
		t.Fatalf("violations = %v, want %v", rules, want)
	}
	for field, rule := range want {
		if rules[field] != rule {
			t.Errorf("rule for %s = %q, want %q", field, rules[field], rule)
		}
	}
}

func TestValidate_NilContact(t *testing.T) {
	rules := fieldRules(t, Validate(nil))
	if rules["contact"] != "required" {
		t.Errorf("expected contact required violation, got %v", rules)
	}
}

func TestValidate_MessagesMentionField(t *testing.T) {
	c := validContact()
	c.Email = "bad"

	var apiErr *model.APIError
	if !errors.As(Validate(c), &apiErr) {
		t.Fatal("expected *model.APIError")
	}
	if !strings.Contains(apiErr.Fields[0].Message, "email") {
		t.Errorf("message %q should mention the field", apiErr.Fields[0].Message)
	}
}
