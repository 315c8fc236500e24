package services

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/regportal/registration-backend/v1/models"
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^[0-9+\-() ]+$`)
)

// ValidateSubmission checks a payload against the ordered field set of a
// user type. It is a pure function: no I/O, deterministic for the same
// inputs. Every failing field is reported, never just the first, so one
// round trip surfaces all problems. Payload keys not declared in the
// schema are ignored.
//
// Returns nil when the payload is acceptable.
func ValidateSubmission(fields []models.TypeFieldDescriptor, payload models.Payload) map[string]string {
	errs := make(map[string]string)

	for _, field := range fields {
		value, present := payload[field.Name]

		if !present || value.IsEmpty() {
			if field.Required {
				errs[field.Name] = fmt.Sprintf("%s is required", field.Label)
			}
			// Absent or blank optional values get no further checks.
			continue
		}

		if msg := checkKind(field, value); msg != "" {
			errs[field.Name] = msg
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// checkKind applies the kind-specific rule to a present, non-empty value.
// Returns an empty string when the value passes.
func checkKind(field models.TypeFieldDescriptor, value models.Value) string {
	switch models.FieldKind(field.Kind) {
	case models.KindEmail:
		if value.Kind != models.ValueString || !emailPattern.MatchString(value.Str) {
			return "Invalid email format"
		}
	case models.KindPhone:
		if value.Kind != models.ValueString || !phonePattern.MatchString(value.Str) {
			return "Invalid phone number format"
		}
	case models.KindNumber:
		if value.Kind == models.ValueNumber {
			return ""
		}
		if value.Kind == models.ValueString {
			if _, err := strconv.ParseFloat(value.Str, 64); err == nil {
				return ""
			}
		}
		return "Must be a valid number"
	case models.KindDropdown:
		// An empty options list performs no membership check.
		if len(field.Options) == 0 {
			return ""
		}
		for _, opt := range field.Options {
			if value.Kind == models.ValueString && value.Str == opt {
				return ""
			}
		}
		return fmt.Sprintf("%s must be one of the allowed options", field.Label)
	}
	// text, multiline-text and date accept any present value.
	return ""
}
