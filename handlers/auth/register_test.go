package auth

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexsergeyev/skillforge/model"
	"github.com/alexsergeyev/skillforge/utils/validation"
)

func validRegisterRequest() RegisterRequest {
	return RegisterRequest{
		Email:           "new.user@example.com",
		Password:        "correct-horse-battery",
		PasswordConfirm: "correct-horse-battery",
		FirstName:       "New",
		LastName:        "User",
		City:            "Berlin",
	}
}

func TestRegisterRequestPasswordMismatchNamesTheField(t *testing.T) {
	v := validation.NewValidator()

	req := validRegisterRequest()
	req.PasswordConfirm = "something-else-entirely"

	err := v.ValidateStruct(req)
	require.Error(t, err)

	violations := validation.FormatValidationErrors(err)
	require.Contains(t, violations, "password_confirm")
	assert.Equal(t, "Password fields do not match", violations["password_confirm"])
}

func TestRegisterRequestMatchingPasswordsPass(t *testing.T) {
	v := validation.NewValidator()

	assert.NoError(t, v.ValidateStruct(validRegisterRequest()))
}

func TestRegisterRequestRejectsShortPassword(t *testing.T) {
	v := validation.NewValidator()

	req := validRegisterRequest()
	req.Password = "short"
	req.PasswordConfirm = "short"

	err := v.ValidateStruct(req)
	require.Error(t, err)

	violations := validation.FormatValidationErrors(err)
	assert.Contains(t, violations, "password")
}

func TestUserResponseNeverCarriesPasswordMaterial(t *testing.T) {
	resp := userResponse(&model.User{
		ID:           7,
		Email:        "masked@example.com",
		PasswordHash: "$2a$10$not-a-real-hash",
		FirstName:    "Masked",
		IsActive:     true,
	})

	raw, err := json.Marshal(resp)
	require.NoError(t, err)

	assert.NotContains(t, string(raw), "password")
	assert.NotContains(t, string(raw), "hash")
}
