package validation

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// Validation rule patterns
var (
	LoginPattern     = `^[a-zA-Z0-9._]{5,20}$`
	PhonePattern     = `^\+?[0-9]{6,15}$`
	TagNamePattern   = `^[a-z0-9-]{2,30}$`
	EntryTimePattern = `^([01][0-9]|2[0-3]):[0-5][0-9]$`

	PasswordMinLength = 8
	PasswordMaxLength = 30

	NameMinLength = 2
	NameMaxLength = 50
)

// CompiledPatterns caches compiled regex patterns
var CompiledPatterns = struct {
	Login     *regexp.Regexp
	Phone     *regexp.Regexp
	TagName   *regexp.Regexp
	EntryTime *regexp.Regexp
}{
	Login:     regexp.MustCompile(LoginPattern),
	Phone:     regexp.MustCompile(PhonePattern),
	TagName:   regexp.MustCompile(TagNamePattern),
	EntryTime: regexp.MustCompile(EntryTimePattern),
}

// Languages accepted as tourist UI language
var Languages = []string{"en", "it", "de", "fr", "es"}

// ValidatePassword checks length and that the password mixes letters and digits
func ValidatePassword(password string) error {
	if len(password) < PasswordMinLength || len(password) > PasswordMaxLength {
		return fmt.Errorf("password must be between %d and %d characters", PasswordMinLength, PasswordMaxLength)
	}

	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsSpace(r):
			return fmt.Errorf("password must not contain whitespace")
		}
	}
	if !hasLetter || !hasDigit {
		return fmt.Errorf("password must contain at least one letter and one digit")
	}
	return nil
}

// ParseEntryTime validates an HH:MM entry time
func ParseEntryTime(value string) (string, error) {
	value = strings.TrimSpace(value)
	if !CompiledPatterns.EntryTime.MatchString(value) {
		return "", fmt.Errorf("entry time must be in HH:MM format")
	}
	return value, nil
}

// ParseDate parses a YYYY-MM-DD date in UTC
func ParseDate(value string) (time.Time, error) {
	day, err := time.ParseInLocation(time.DateOnly, strings.TrimSpace(value), time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("date must be in YYYY-MM-DD format")
	}
	return day, nil
}

// RegisterRules installs the custom tags used by request DTOs
func RegisterRules(v *validator.Validate) error {
	rules := map[string]validator.Func{
		"login": func(fl validator.FieldLevel) bool {
			return CompiledPatterns.Login.MatchString(fl.Field().String())
		},
		"phone": func(fl validator.FieldLevel) bool {
			return CompiledPatterns.Phone.MatchString(fl.Field().String())
		},
		"tagname": func(fl validator.FieldLevel) bool {
			return CompiledPatterns.TagName.MatchString(fl.Field().String())
		},
		"entrytime": func(fl validator.FieldLevel) bool {
			return CompiledPatterns.EntryTime.MatchString(fl.Field().String())
		},
		"password": func(fl validator.FieldLevel) bool {
			return ValidatePassword(fl.Field().String()) == nil
		},
		"isodate": func(fl validator.FieldLevel) bool {
			_, err := ParseDate(fl.Field().String())
			return err == nil
		},
	}

	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("register %s rule: %w", tag, err)
		}
	}
	return nil
}

// FieldMessage renders a validator failure as a human readable message
func FieldMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return e.Field() + " is required"
	case "min":
		return e.Field() + " must be at least " + e.Param()
	case "max":
		return e.Field() + " must be at most " + e.Param()
	case "gte":
		return e.Field() + " must be greater than or equal to " + e.Param()
	case "lte":
		return e.Field() + " must be less than or equal to " + e.Param()
	case "email":
		return e.Field() + " must be a valid email address"
	case "oneof":
		return e.Field() + " must be one of: " + e.Param()
	case "login":
		return e.Field() + " must be 5-20 letters, digits, dots or underscores"
	case "phone":
		return e.Field() + " must be 6-15 digits"
	case "tagname":
		return e.Field() + " must be 2-30 lowercase letters, digits or dashes"
	case "entrytime":
		return e.Field() + " must be in HH:MM format"
	case "password":
		return e.Field() + " must be 8-30 characters with at least one letter and one digit"
	case "isodate":
		return e.Field() + " must be a YYYY-MM-DD date"
	case "latitude", "longitude":
		return e.Field() + " must be a valid " + e.Tag()
	default:
		return e.Field() + " validation failed: " + e.Tag()
	}
}
