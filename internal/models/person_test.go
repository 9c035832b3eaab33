package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/school-mgmt-api/pkg/errors"
)

func TestValidateName(t *testing.T) {
	require.NoError(t, ValidateName("Jo"))
	require.NoError(t, ValidateName("Maria Lopez"))

	err := ValidateName(" a ")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)

	require.Error(t, ValidateName("   "))
}

func TestValidateEmail(t *testing.T) {
	require.NoError(t, ValidateEmail("student@school.edu"))

	for _, bad := range []string{"", "no-at-sign", "a@b", "a b@c.d", "a@b c.d"} {
		assert.Error(t, ValidateEmail(bad), bad)
	}
}

func TestValidatePhone(t *testing.T) {
	require.NoError(t, ValidatePhone("081234567890"))

	assert.Error(t, ValidatePhone("12345"))
	assert.Error(t, ValidatePhone("1234567890123"))
	assert.Error(t, ValidatePhone("08123456789x"))
}

func TestPersonAge(t *testing.T) {
	p := Person{BirthDate: time.Date(2008, 6, 15, 0, 0, 0, 0, time.UTC)}

	assert.Equal(t, 17, p.Age(time.Date(2026, 6, 14, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 18, p.Age(time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 0, p.Age(time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)))
}
