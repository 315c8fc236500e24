package services

import (
	"sort"
	"strings"

	"github.com/regportal/registration-backend/v1/models"
)

// Key-name hints for contact channels, Latin and Arabic. Matched as
// case-insensitive substrings of payload keys.
var (
	emailKeyHints = []string{"email", "mail", "بريد"}
	phoneKeyHints = []string{"phone", "mobile", "tel", "whatsapp", "هاتف", "جوال"}
)

// ExtractContact finds at most one email value and one phone value in a
// request payload, for notification delivery. Three layers, in order of
// preference: exact kind match against schema metadata (when supplied),
// key-name heuristics, then value-pattern sniffing across all values.
// Each channel stops at its first match in sorted key order. Best
// effort only: a channel with no plausible value stays nil, and the
// function never fails.
func ExtractContact(payload models.Payload, kinds map[string]models.FieldKind) models.ContactInfo {
	var contact models.ContactInfo

	// Deterministic iteration regardless of map order.
	keys := make([]string, 0, len(payload))
	for k := range payload {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	// Layer 1: schema kind metadata.
	for _, key := range keys {
		value := payload[key]
		if value.Kind != models.ValueString || strings.TrimSpace(value.Str) == "" {
			continue
		}
		switch kinds[key] {
		case models.KindEmail:
			if contact.Email == nil {
				v := strings.TrimSpace(value.Str)
				contact.Email = &v
			}
		case models.KindPhone:
			if contact.Phone == nil {
				v := strings.TrimSpace(value.Str)
				contact.Phone = &v
			}
		}
	}

	// Layer 2: key-name heuristics.
	for _, key := range keys {
		value := payload[key]
		if value.Kind != models.ValueString || strings.TrimSpace(value.Str) == "" {
			continue
		}
		lower := strings.ToLower(key)
		if contact.Email == nil && matchesAny(lower, emailKeyHints) {
			v := strings.TrimSpace(value.Str)
			contact.Email = &v
		}
		if contact.Phone == nil && matchesAny(lower, phoneKeyHints) {
			v := strings.TrimSpace(value.Str)
			contact.Phone = &v
		}
	}

	// Layer 3: value-pattern sniffing.
	for _, key := range keys {
		value := payload[key]
		if value.Kind != models.ValueString {
			continue
		}
		v := strings.TrimSpace(value.Str)
		if v == "" {
			continue
		}
		if contact.Email == nil && emailPattern.MatchString(v) {
			contact.Email = &v
		}
		if contact.Phone == nil && looksLikePhone(v) {
			contact.Phone = &v
		}
	}

	return contact
}

func matchesAny(key string, hints []string) bool {
	for _, hint := range hints {
		if strings.Contains(key, hint) {
			return true
		}
	}
	return false
}

// looksLikePhone accepts phone-shaped strings: allowed characters only
// and at least seven digits, so plain numbers and short codes are not
// mistaken for phone numbers.
func looksLikePhone(v string) bool {
	if !phonePattern.MatchString(v) {
		return false
	}
	digits := 0
	for _, r := range v {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	return digits >= 7
}
