// internal/utils/validator_test.go
package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsValidPayoutEmail(t *testing.T) {
	valid := []string{
		"seller@example.com",
		"a.b+tag@sub.domain.org",
	}
	invalid := []string{
		"",
		"no-at-sign",
		"two@@example.com",
		"spaces in@example.com",
		"missing@tld",
	}

	for _, email := range valid {
		assert.True(t, IsValidPayoutEmail(email), "email=%q", email)
	}
	for _, email := range invalid {
		assert.False(t, IsValidPayoutEmail(email), "email=%q", email)
	}
}

func TestValidateStructPayoutEmail(t *testing.T) {
	type form struct {
		PayoutEmail string `validate:"required,payout_email"`
	}

	assert.NoError(t, ValidateStruct(&form{PayoutEmail: "seller@example.com"}))

	err := ValidateStruct(&form{PayoutEmail: "not-an-email"})
	require.Error(t, err)

	errs := GetValidationErrors(err)
	require.Len(t, errs, 1)
	assert.Equal(t, "payoutemail", errs[0].Field)
	assert.Equal(t, "payout_email", errs[0].Tag)
}

func TestValidateStructUsername(t *testing.T) {
	type form struct {
		Username string `validate:"required,username"`
	}

	assert.NoError(t, ValidateStruct(&form{Username: "seller_42"}))
	assert.Error(t, ValidateStruct(&form{Username: "ab"}))
	assert.Error(t, ValidateStruct(&form{Username: "bad name"}))
}
