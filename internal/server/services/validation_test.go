package services

import (
	"testing"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsValidPassword(t *testing.T) {
	tests := []struct {
		password string
		want     bool
	}{
		{"Abcdef1!", true},
		{"Passw0rd$Passw0rd$Pa", true},
		{"abcdefg1!", false},             // no uppercase
		{"ABCDEFG1!", false},             // no lowercase
		{"Abcdefgh!", false},             // no digit
		{"Abcdefgh1", false},             // no symbol
		{"Ab1!", false},                  // too short
		{"Abcdefgh1!Abcdefgh1!X", false}, // 21 chars
		{"Abcdef1! ", false},             // space outside the class
		{"Abcdef1#", false},              // '#' is not an allowed symbol
		{"Äbcdef1!", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.password, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidPassword(tt.password))
		})
	}
}

func TestIsValidEmail(t *testing.T) {
	tests := []struct {
		email string
		want  bool
	}{
		{"a@b.io", true},
		{"first.last+tag@sub.example.com", true},
		{"UPPER@EXAMPLE.ORG", true},
		{"no-at.example.com", false},
		{"a@b", false},
		{"a@b.c", false},
		{"a b@c.io", false},
		{"a@b.io trailing", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidEmail(tt.email))
		})
	}
}

func TestValidateRequest_MissingBeforeInvalid(t *testing.T) {
	err := validateRequest(RegisterRequest{Email: "not-an-email"})
	require.Error(t, err)
	assert.ErrorIs(t, err, &common.Error{Kind: common.KindBadRequest, Field: "password"})

	err = validateRequest(ChangePasswordRequest{Email: "a@b.io", NewPassword: "weak"})
	assert.ErrorIs(t, err, &common.Error{Kind: common.KindBadRequest, Field: "currentPassword"})
}

func TestValidateRequest_FormatErrors(t *testing.T) {
	err := validateRequest(RegisterRequest{Email: "bad", Password: "Abcdef1!"})
	require.Error(t, err)
	assert.ErrorIs(t, err, &common.Error{Kind: common.KindValidation, Field: "email"})
	assert.Contains(t, err.Error(), "invalid email address")

	err = validateRequest(RegisterRequest{Email: "a@b.io", Password: "weak"})
	assert.ErrorIs(t, err, &common.Error{Kind: common.KindValidation, Field: "password"})
	assert.Contains(t, err.Error(), "invalid password")

	assert.NoError(t, validateRequest(RegisterRequest{Email: "a@b.io", Password: "Abcdef1!"}))
}

func TestBuildLink(t *testing.T) {
	assert.Equal(t,
		"https://app.example/verify?email=a%2Bx%40b.io&token=abc",
		BuildLink("https://app.example/verify", "a+x@b.io", "abc"))
	assert.Equal(t,
		"https://app.example/r?lang=en&email=a%40b.io&token=t",
		BuildLink("https://app.example/r?lang=en", "a@b.io", "t"))
}
