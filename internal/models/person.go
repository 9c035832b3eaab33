package models

import (
	"regexp"
	"strings"
	"time"

	appErrors "github.com/noah-isme/school-mgmt-api/pkg/errors"
)

// Role discriminates the person record backing a student or teacher.
type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
)

// PhoneLength is the canonical digit count for phone numbers.
const PhoneLength = 12

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Person carries the identity and contact fields shared by students and
// teachers. It is stored in the persons table and embedded by both roles.
type Person struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Email     string    `db:"email" json:"email"`
	Phone     string    `db:"phone" json:"phone"`
	Address   string    `db:"address" json:"address"`
	BirthDate time.Time `db:"birth_date" json:"birth_date"`
	Role      Role      `db:"role" json:"role"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Age returns the person's age in whole years at the given instant.
func (p Person) Age(now time.Time) int {
	age := now.Year() - p.BirthDate.Year()
	if now.YearDay() < p.BirthDate.YearDay() {
		age--
	}
	if age < 0 {
		return 0
	}
	return age
}

// ValidateName enforces the minimum trimmed length rule.
func ValidateName(name string) error {
	if len(strings.TrimSpace(name)) < 2 {
		return appErrors.Clone(appErrors.ErrValidation, "name must be at least 2 characters")
	}
	return nil
}

// ValidateEmail enforces the simplified RFC email pattern.
func ValidateEmail(email string) error {
	if !emailPattern.MatchString(email) {
		return appErrors.Clone(appErrors.ErrValidation, "invalid email format")
	}
	return nil
}

// ValidatePhone enforces an exact-length digit string.
func ValidatePhone(phone string) error {
	if len(phone) != PhoneLength {
		return appErrors.Clone(appErrors.ErrValidation, "phone number must be exactly 12 digits")
	}
	for _, r := range phone {
		if r < '0' || r > '9' {
			return appErrors.Clone(appErrors.ErrValidation, "phone number must contain digits only")
		}
	}
	return nil
}

// ValidatePersonFields runs the construction-time predicates. Mutators run
// the same predicates again so a failed update leaves the record unchanged.
func ValidatePersonFields(name, email, phone string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	if err := ValidateEmail(email); err != nil {
		return err
	}
	return ValidatePhone(phone)
}
