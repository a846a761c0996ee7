package dto

import (
	"testing"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRegister() RegisterRequest {
	return RegisterRequest{
		Name:        "Ada",
		Email:       "ada@x.com",
		PhoneNumber: "14155550100",
		Password:    "Str0ng!Pass",
		Consent:     true,
	}
}

func TestRegisterRequestValidate(t *testing.T) {
	require.NoError(t, validRegister().Validate())

	tests := []struct {
		name   string
		mutate func(r *RegisterRequest)
		field  string
	}{
		{"short name", func(r *RegisterRequest) { r.Name = "A" }, "name"},
		{"bad email", func(r *RegisterRequest) { r.Email = "not-an-email" }, "email"},
		{"short phone", func(r *RegisterRequest) { r.PhoneNumber = "123" }, "phoneNumber"},
		{"letters in phone", func(r *RegisterRequest) { r.PhoneNumber = "1415abc0100" }, "phoneNumber"},
		{"weak password", func(r *RegisterRequest) { r.Password = "password" }, "password"},
		{"no consent", func(r *RegisterRequest) { r.Consent = false }, "consent"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRegister()
			tt.mutate(&req)

			err := req.Validate()
			require.Error(t, err)

			errs, ok := err.(validation.Errors)
			require.True(t, ok)
			assert.Contains(t, errs, tt.field)
		})
	}
}

func TestRegisterRequestNormalize(t *testing.T) {
	req := RegisterRequest{
		Name:        "  Ada  ",
		Email:       " Ada@X.com ",
		PhoneNumber: " +14155550100 ",
		Password:    " Str0ng!Pass ",
		Consent:     true,
	}
	req.Normalize()

	assert.Equal(t, "Ada", req.Name)
	assert.Equal(t, "ada@x.com", req.Email)
	assert.Equal(t, "+14155550100", req.PhoneNumber)
	assert.Equal(t, "Str0ng!Pass", req.Password)
	assert.NoError(t, req.Validate())
}

func TestRegisterRequestRejectsInnerSpaceInPassword(t *testing.T) {
	req := validRegister()
	req.Password = "Str0ng! Pass"
	req.Normalize()

	errs, ok := req.Validate().(validation.Errors)
	require.True(t, ok)
	assert.Contains(t, errs, "password")
}

func TestLoginRequestNormalize(t *testing.T) {
	req := LoginRequest{Email: " Ada@X.com", Password: " Str0ng!Pass "}
	req.Normalize()

	assert.Equal(t, "ada@x.com", req.Email)
	assert.Equal(t, "Str0ng!Pass", req.Password)
}

func TestLoginRequestValidate(t *testing.T) {
	assert.NoError(t, LoginRequest{Email: "ada@x.com", Password: "Str0ng!Pass"}.Validate())
	assert.Error(t, LoginRequest{Email: "ada", Password: "Str0ng!Pass"}.Validate())
	assert.Error(t, LoginRequest{Email: "ada@x.com"}.Validate())
	assert.Error(t, LoginRequest{Email: "ada@x.com", Password: "this-password-is-way-too-long"}.Validate())
}
