package userservice

import (
	"strings"
	"testing"

	"github.com/sushihentaime/bloghub/internal/common"
)

func TestValidateName(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		valid bool
	}{
		{name: "empty", input: "", valid: false},
		{name: "single rune", input: "a", valid: true},
		{name: "with spaces", input: "Jane Doe", valid: true},
		{name: "non ascii", input: "Zoë Ångström", valid: true},
		{name: "fifty runes", input: strings.Repeat("a", 50), valid: true},
		{name: "too long", input: strings.Repeat("a", 51), valid: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			v := common.NewValidator()
			validateName(v, tc.input)
			if v.Valid() != tc.valid {
				t.Errorf("expected %v, got %v", tc.valid, v.Valid())
				for _, e := range v.Errors {
					t.Log(e)
				}
			}
		})
	}
}

func TestValidateEmail(t *testing.T) {
	testCases := []struct {
		email string
		valid bool
	}{
		{email: "", valid: false},
		{email: "a", valid: false},
		{email: "a@", valid: false},
		{email: "a@b", valid: false},
		{email: "a@b.c", valid: false},
		{email: "a@b.com", valid: true},
		{email: "first.last+tag@mail.example.org", valid: true},
	}

	for _, tc := range testCases {
		t.Run(tc.email, func(t *testing.T) {
			v := common.NewValidator()
			validateEmail(v, tc.email)
			if v.Valid() != tc.valid {
				t.Errorf("expected %v, got %v", tc.valid, v.Valid())
				for _, e := range v.Errors {
					t.Log(e)
				}
			}
		})
	}
}

func TestValidatePassword(t *testing.T) {
	testCases := []struct {
		password string
		valid    bool
	}{
		{password: "", valid: false},
		{password: "abcdef", valid: false},
		{password: "password123", valid: false},
		{password: "Password123", valid: false},
		{password: "Pa!1", valid: false},
		{password: "Password!23", valid: true},
		{password: "P!1" + strings.Repeat("a", 70), valid: false},
	}

	for _, tc := range testCases {
		t.Run(tc.password, func(t *testing.T) {
			v := common.NewValidator()
			validatePassword(v, tc.password)
			if v.Valid() != tc.valid {
				t.Errorf("expected %v, got %v", tc.valid, v.Valid())
				for _, e := range v.Errors {
					t.Log(e)
				}
			}
		})
	}
}

func TestValidateCredentials(t *testing.T) {
	v := common.NewValidator()
	validateCredentials(v, "", "")
	if v.Valid() {
		t.Fatal("expected missing credentials to be invalid")
	}

	if len(v.Errors) != 2 {
		t.Errorf("expected 2 errors, got %d", len(v.Errors))
	}

	v = common.NewValidator()
	validateCredentials(v, "a@b.com", "weak")
	if !v.Valid() {
		t.Errorf("sign-in should not enforce password strength: %v", v.Errors)
	}
}
