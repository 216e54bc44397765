package worker

import (
	"regexp"

	"github.com/boscogd/waitlist/models"
)

var placeholderPattern = regexp.MustCompile(`\{\{(\w+)\}\}`)

// Personalize substitutes every occurrence of the subscriber placeholders
// ({{name}}, {{email}}, {{code}}) in content. Placeholders outside the known
// set are left verbatim.
func Personalize(content string, entry models.WaitlistEntry) string {
	return PersonalizeWith(content, SubscriberVars(entry))
}

// PersonalizeWith resolves placeholder tokens through the vars lookup
func PersonalizeWith(content string, vars map[string]string) string {
	return placeholderPattern.ReplaceAllStringFunc(content, func(match string) string {
		key := placeholderPattern.FindStringSubmatch(match)[1]
		if value, ok := vars[key]; ok {
			return value
		}
		return match
	})
}

// UnknownPlaceholders reports the tokens in content that vars cannot resolve
func UnknownPlaceholders(content string, vars map[string]string) []string {
	var unknown []string
	seen := make(map[string]bool)
	for _, match := range placeholderPattern.FindAllStringSubmatch(content, -1) {
		key := match[1]
		if _, ok := vars[key]; !ok && !seen[key] {
			unknown = append(unknown, key)
			seen[key] = true
		}
	}
	return unknown
}

// SubscriberVars maps the closed placeholder set to a subscriber's fields
func SubscriberVars(entry models.WaitlistEntry) map[string]string {
	return map[string]string{
		"name":  entry.Name,
		"email": entry.Email,
		"code":  entry.Code,
	}
}

// TestVars returns the synthetic values used for admin test sends
func TestVars(testEmail string) map[string]string {
	return map[string]string{
		"name":  "Usuario de Prueba",
		"email": testEmail,
		"code":  "TEST-1234",
	}
}
