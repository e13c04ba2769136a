package validation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	parsed, err := ParseDate("2026-03-02")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), parsed)

	_, err = ParseDate("02/03/2026")
	assert.Error(t, err)

	_, err = ParseDate("2026-13-40")
	assert.Error(t, err)
}

func TestFormatDate(t *testing.T) {
	assert.Equal(t, "2026-03-02", FormatDate(time.Date(2026, 3, 2, 15, 4, 5, 0, time.UTC)))
}

func TestValidateEmail(t *testing.T) {
	assert.True(t, ValidateEmail("sales@example.com"))
	assert.True(t, ValidateEmail("  first.last+tag@sub.example.pt  "))
	assert.False(t, ValidateEmail(""))
	assert.False(t, ValidateEmail("not-an-email"))
	assert.False(t, ValidateEmail("missing@tld"))
}

func TestValidatePhoneNumber(t *testing.T) {
	assert.True(t, ValidatePhoneNumber("+351912345678"))
	assert.True(t, ValidatePhoneNumber("912345678"))
	assert.False(t, ValidatePhoneNumber("0000"))
	assert.False(t, ValidatePhoneNumber("call me"))
}

func TestValidateDateRange(t *testing.T) {
	start := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	assert.NoError(t, ValidateDateRange(start, start))
	assert.NoError(t, ValidateDateRange(start, start.AddDate(0, 0, 5)))
	assert.Error(t, ValidateDateRange(start, start.AddDate(0, 0, -1)))
}

func TestValidateStruct_CustomTags(t *testing.T) {
	type request struct {
		Plate  string `validate:"required,plate"`
		Type   string `validate:"required,vehicle_type"`
		Status string `validate:"required,booking_status"`
		Role   string `validate:"required,user_role"`
		Date   string `validate:"required,dateonly"`
		Phone  string `validate:"omitempty,phone"`
	}

	valid := request{
		Plate:  "AB 12 CD",
		Type:   "HEAVY",
		Status: "pending",
		Role:   "manager",
		Date:   "2026-03-02",
		Phone:  "+351912345678",
	}
	assert.NoError(t, ValidateStruct(valid))

	invalid := request{
		Plate:  "!",
		Type:   "TRACTOR",
		Status: "lost",
		Role:   "intern",
		Date:   "today",
		Phone:  "n/a",
	}
	err := ValidateStruct(invalid)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Plate")
	assert.Contains(t, err.Error(), "Type")
	assert.Contains(t, err.Error(), "Status")
}
