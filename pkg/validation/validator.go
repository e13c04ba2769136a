package validation

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rsalgueiro/truck-booking/pkg/common"
	"github.com/rsalgueiro/truck-booking/pkg/models"
)

// DateLayout is the wire format for calendar dates
const DateLayout = "2006-01-02"

var (
	// Validate is the global validator instance
	Validate *validator.Validate

	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	phoneRegex = regexp.MustCompile(`^\+?[1-9]\d{1,14}$`) // E.164 format
	plateRegex = regexp.MustCompile(`^[A-Z0-9][A-Z0-9 \-]{1,15}$`)
)

func init() {
	Validate = validator.New()

	// Register custom validators
	_ = Validate.RegisterValidation("phone", validatePhone)
	_ = Validate.RegisterValidation("booking_status", validateBookingStatus)
	_ = Validate.RegisterValidation("vehicle_type", validateVehicleType)
	_ = Validate.RegisterValidation("user_role", validateUserRole)
	_ = Validate.RegisterValidation("dateonly", validateDateOnly)
	_ = Validate.RegisterValidation("plate", validatePlate)
}

// ValidateStruct validates a struct and returns an AppError if validation fails
func ValidateStruct(s interface{}) error {
	err := Validate.Struct(s)
	if err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			messages := make([]string, 0, len(validationErrors))
			for _, fieldErr := range validationErrors {
				messages = append(messages, fmt.Sprintf("%s failed on %s", fieldErr.Field(), fieldErr.Tag()))
			}
			return common.NewValidationError(strings.Join(messages, "; "))
		}
		return err
	}
	return nil
}

// ParseDate parses a YYYY-MM-DD date string into a UTC midnight time
func ParseDate(value string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, value, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", value)
	}
	return t, nil
}

// FormatDate renders a time as a YYYY-MM-DD date string
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// validatePhone checks if phone number is in E.164 format
func validatePhone(fl validator.FieldLevel) bool {
	return phoneRegex.MatchString(fl.Field().String())
}

// validateBookingStatus checks if booking status is valid
func validateBookingStatus(fl validator.FieldLevel) bool {
	return models.BookingStatus(fl.Field().String()).IsValid()
}

// validateVehicleType checks if vehicle type is valid
func validateVehicleType(fl validator.FieldLevel) bool {
	return models.VehicleType(fl.Field().String()).IsValid()
}

// validateUserRole checks if user role is valid
func validateUserRole(fl validator.FieldLevel) bool {
	switch models.UserRole(fl.Field().String()) {
	case models.RoleStaff, models.RoleManager, models.RoleAdmin:
		return true
	}
	return false
}

// validateDateOnly checks if a string field is a YYYY-MM-DD date
func validateDateOnly(fl validator.FieldLevel) bool {
	_, err := ParseDate(fl.Field().String())
	return err == nil
}

// validatePlate checks if a registration plate looks plausible
func validatePlate(fl validator.FieldLevel) bool {
	return plateRegex.MatchString(strings.ToUpper(fl.Field().String()))
}

// ValidateEmail validates email format
func ValidateEmail(email string) bool {
	email = strings.TrimSpace(email)
	return len(email) > 0 && emailRegex.MatchString(email)
}

// ValidatePhoneNumber validates phone number format
func ValidatePhoneNumber(phone string) bool {
	return phoneRegex.MatchString(strings.TrimSpace(phone))
}

// ValidateDateRange checks that a booking date range is well formed
func ValidateDateRange(start, end time.Time) error {
	if end.Before(start) {
		return fmt.Errorf("end date %s is before start date %s", FormatDate(end), FormatDate(start))
	}
	return nil
}
