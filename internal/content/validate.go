package content

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// PrincipalMessageLimit caps the principal message length. The admin input
// truncates on keystroke; validation still rejects over-long values that
// arrive through the API directly.
const PrincipalMessageLimit = 500

// ValidationError blocks a single-field save and is surfaced inline next to
// the offending field, never through a global handler.
type ValidationError struct {
	Section Section
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s.%s: %s", e.Section, e.Field, e.Message)
}

func fieldError(section Section, field, message string) *ValidationError {
	return &ValidationError{Section: section, Field: field, Message: message}
}

var (
	phonePattern  = regexp.MustCompile(`^[0-9+\-() ]+$`)
	emailPattern  = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	socialPattern = regexp.MustCompile(`^(https?://)?([a-zA-Z0-9-]+\.)+[a-zA-Z]{2,}(/\S*)?$`)
	yearPattern   = regexp.MustCompile(`^\d{4}$`)
	countPattern  = regexp.MustCompile(`^[0-9+, ]+$`)
)

// ValidateInline applies the field-level rules for the home and contact
// inline editors and returns the normalized value to save. A non-nil error
// is always a *ValidationError.
func ValidateInline(section Section, fieldKey, value string) (string, error) {
	trimmed := strings.TrimSpace(value)

	switch section {
	case SectionHome:
		return validateHomeField(fieldKey, trimmed)
	case SectionContact:
		return validateContactField(fieldKey, trimmed)
	default:
		return trimmed, nil
	}
}

func validateHomeField(fieldKey, value string) (string, error) {
	switch fieldKey {
	case "welcomeTitle":
		if value == "" {
			return "", fieldError(SectionHome, fieldKey, "Welcome title is required")
		}
	case "welcomeSubtitle":
		if value == "" {
			return "", fieldError(SectionHome, fieldKey, "Welcome subtitle is required")
		}
	case "principalName":
		if value == "" {
			return "", fieldError(SectionHome, fieldKey, "Principal name is required")
		}
	case "principalMessage":
		if utf8.RuneCountInString(value) > PrincipalMessageLimit {
			return "", fieldError(SectionHome, fieldKey, fmt.Sprintf("Principal message must be at most %d characters", PrincipalMessageLimit))
		}
	case "yearEstablished":
		if value == "" {
			return "", nil
		}
		if !yearPattern.MatchString(value) {
			return "", fieldError(SectionHome, fieldKey, "Year established must be a 4-digit year")
		}
		year, _ := strconv.Atoi(value)
		if year < 1800 || year > time.Now().Year() {
			return "", fieldError(SectionHome, fieldKey, fmt.Sprintf("Year established must be between 1800 and %d", time.Now().Year()))
		}
	case "students", "teachers":
		if value == "" {
			return "", nil
		}
		if !countPattern.MatchString(value) {
			return "", fieldError(SectionHome, fieldKey, "Use digits, '+', commas and spaces only")
		}
	case "successRate":
		return validateSuccessRate(value)
	}
	return value, nil
}

// validateSuccessRate strips a trailing %, requires a number in [0,100], and
// re-appends the % on the normalized form.
func validateSuccessRate(value string) (string, error) {
	if value == "" {
		return "", nil
	}
	bare := strings.TrimSpace(strings.TrimSuffix(value, "%"))
	rate, err := strconv.ParseFloat(bare, 64)
	if err != nil {
		return "", fieldError(SectionHome, "successRate", "Success rate must be a number")
	}
	if rate < 0 || rate > 100 {
		return "", fieldError(SectionHome, "successRate", "Success rate must be between 0 and 100")
	}
	return bare + "%", nil
}

func validateContactField(fieldKey, value string) (string, error) {
	switch fieldKey {
	case "address":
		if value == "" {
			return "", fieldError(SectionContact, fieldKey, "Address is required")
		}
	case "phone", "whatsApp":
		if value == "" {
			return "", nil
		}
		for _, part := range splitList(value) {
			if !phonePattern.MatchString(part) {
				return "", fieldError(SectionContact, fieldKey, fmt.Sprintf("%q is not a valid phone number", part))
			}
		}
	case "email":
		if value == "" {
			return "", nil
		}
		for _, part := range splitList(value) {
			if !emailPattern.MatchString(part) {
				return "", fieldError(SectionContact, fieldKey, fmt.Sprintf("%q is not a valid email address", part))
			}
		}
	case "facebook", "instagram":
		if value == "" {
			return "", nil
		}
		if !socialPattern.MatchString(value) {
			return "", fieldError(SectionContact, fieldKey, "Enter a valid link")
		}
	}
	return value, nil
}

func splitList(value string) []string {
	out := []string{}
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// TruncatePrincipalMessage applies the keystroke-time cap. The limit counts
// characters, not bytes, so multibyte messages are never cut mid-rune.
func TruncatePrincipalMessage(value string) string {
	if utf8.RuneCountInString(value) <= PrincipalMessageLimit {
		return value
	}
	runes := []rune(value)
	return string(runes[:PrincipalMessageLimit])
}
