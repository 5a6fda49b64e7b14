package user

import (
	"strings"
	"testing"

	in "account_server/core/port/in"
)

func TestValidateCreate(t *testing.T) {
	tests := []struct {
		name       string
		req        *in.CreateUserRequest
		wantFields []string
	}{
		{
			name: "valid payload without zipcode",
			req: &in.CreateUserRequest{
				Email:     "ana@example.com",
				Password:  "supersecret",
				FirstName: "Ana",
				LastName:  "Souza",
			},
			wantFields: nil,
		},
		{
			name: "valid payload with zipcode",
			req: &in.CreateUserRequest{
				Email:     "ana@example.com",
				Password:  "supersecret",
				FirstName: "Ana",
				LastName:  "Souza",
				Zipcode:   "01001000",
			},
			wantFields: nil,
		},
		{
			name:       "empty payload reports every required field",
			req:        &in.CreateUserRequest{},
			wantFields: []string{"email", "password", "first_name", "last_name"},
		},
		{
			name: "malformed email",
			req: &in.CreateUserRequest{
				Email:     "not-an-email",
				Password:  "supersecret",
				FirstName: "Ana",
				LastName:  "Souza",
			},
			wantFields: []string{"email"},
		},
		{
			name: "short password",
			req: &in.CreateUserRequest{
				Email:     "ana@example.com",
				Password:  "short",
				FirstName: "Ana",
				LastName:  "Souza",
			},
			wantFields: []string{"password"},
		},
		{
			name: "first name too long",
			req: &in.CreateUserRequest{
				Email:     "ana@example.com",
				Password:  "supersecret",
				FirstName: strings.Repeat("a", 31),
				LastName:  "Souza",
			},
			wantFields: []string{"first_name"},
		},
		{
			name: "multibyte name counts runes not bytes",
			req: &in.CreateUserRequest{
				Email:     "ana@example.com",
				Password:  "supersecret",
				FirstName: strings.Repeat("ã", 30), // 30 chars, 60 bytes
				LastName:  strings.Repeat("ç", 50),
			},
			wantFields: nil,
		},
		{
			name: "multibyte first name over the limit",
			req: &in.CreateUserRequest{
				Email:     "ana@example.com",
				Password:  "supersecret",
				FirstName: strings.Repeat("ã", 31),
				LastName:  "Souza",
			},
			wantFields: []string{"first_name"},
		},
		{
			name: "last name too long",
			req: &in.CreateUserRequest{
				Email:     "ana@example.com",
				Password:  "supersecret",
				FirstName: "Ana",
				LastName:  strings.Repeat("a", 51),
			},
			wantFields: []string{"last_name"},
		},
		{
			name: "zipcode with wrong length",
			req: &in.CreateUserRequest{
				Email:     "ana@example.com",
				Password:  "supersecret",
				FirstName: "Ana",
				LastName:  "Souza",
				Zipcode:   "0100100",
			},
			wantFields: []string{"zipcode"},
		},
		{
			name: "multiple failures collected in one pass",
			req: &in.CreateUserRequest{
				Email:    "bad",
				Password: "short",
				LastName: "Souza",
				Zipcode:  "123",
			},
			wantFields: []string{"email", "password", "first_name", "zipcode"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			issues := ValidateCreate(tt.req)
			assertIssueFields(t, issues, tt.wantFields)
		})
	}
}

func TestValidateUpdate(t *testing.T) {
	str := func(s string) *string { return &s }

	tests := []struct {
		name       string
		req        *in.UpdateUserRequest
		wantFields []string
	}{
		{
			name:       "empty payload has no field issues",
			req:        &in.UpdateUserRequest{},
			wantFields: nil,
		},
		{
			name: "valid partial update",
			req: &in.UpdateUserRequest{
				FirstName: str("Maria"),
				Zipcode:   str("01001000"),
			},
			wantFields: nil,
		},
		{
			name:       "malformed email",
			req:        &in.UpdateUserRequest{Email: str("nope")},
			wantFields: []string{"email"},
		},
		{
			name:       "short password",
			req:        &in.UpdateUserRequest{Password: str("short")},
			wantFields: []string{"password"},
		},
		{
			name:       "empty first name rejected when present",
			req:        &in.UpdateUserRequest{FirstName: str("")},
			wantFields: []string{"first_name"},
		},
		{
			name:       "empty last name rejected when present",
			req:        &in.UpdateUserRequest{LastName: str("")},
			wantFields: []string{"last_name"},
		},
		{
			name:       "multibyte first name at the limit accepted",
			req:        &in.UpdateUserRequest{FirstName: str(strings.Repeat("é", 30))},
			wantFields: nil,
		},
		{
			name:       "zipcode with wrong length",
			req:        &in.UpdateUserRequest{Zipcode: str("123")},
			wantFields: []string{"zipcode"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			issues := ValidateUpdate(tt.req)
			assertIssueFields(t, issues, tt.wantFields)
		})
	}
}

func assertIssueFields(t *testing.T, issues []FieldIssue, want []string) {
	t.Helper()

	if len(issues) != len(want) {
		t.Fatalf("got %d issues (%v), want %d (%v)", len(issues), issues, len(want), want)
	}

	got := make(map[string]bool, len(issues))
	for _, issue := range issues {
		got[issue.Field] = true
	}
	for _, field := range want {
		if !got[field] {
			t.Errorf("missing issue for field %q, got %v", field, issues)
		}
	}
}
