package request

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSignupRequest_Validate(t *testing.T) {
	valid := SignupRequest{
		Email:           "ana@example.com",
		Password:        "hunter2abc",
		ConfirmPassword: "hunter2abc",
		Name:            "Ana",
		Country:         "Singapore",
	}

	tests := []struct {
		name    string
		mutate  func(*SignupRequest)
		wantErr bool
	}{
		{"valid request", func(*SignupRequest) {}, false},
		{"missing email", func(r *SignupRequest) { r.Email = "" }, true},
		{"malformed email", func(r *SignupRequest) { r.Email = "not-an-email" }, true},
		{"missing name", func(r *SignupRequest) { r.Name = "" }, true},
		{"password too short", func(r *SignupRequest) { r.Password = "ab1"; r.ConfirmPassword = "ab1" }, true},
		{"password without digit", func(r *SignupRequest) { r.Password = "abcdefgh"; r.ConfirmPassword = "abcdefgh" }, true},
		{"password without letter", func(r *SignupRequest) { r.Password = "12345678"; r.ConfirmPassword = "12345678" }, true},
		{"confirm mismatch", func(r *SignupRequest) { r.ConfirmPassword = "different1" }, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := valid
			tc.mutate(&req)

			err := req.Validate()
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoginRequest_Validate(t *testing.T) {
	assert.NoError(t, (&LoginRequest{Email: "ana@example.com", Password: "x"}).Validate())
	assert.Error(t, (&LoginRequest{Email: "", Password: "x"}).Validate())
	assert.Error(t, (&LoginRequest{Email: "ana@example.com", Password: ""}).Validate())
}
