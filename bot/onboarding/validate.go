package onboarding

import (
	"fmt"
	"regexp"
	"strings"

	"vaulty/bot/models"
)

var (
	emailPattern      = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	urlPattern        = regexp.MustCompile(`^https?://.+`)
	phonePattern      = regexp.MustCompile(`^[+]?[\d\s\-().]{7,20}$`)
	digitPattern      = regexp.MustCompile(`\d`)
	phoneSeparators   = regexp.MustCompile(`[\s\-().]`)
	minPhoneDigits    = 7
	skipKeyword       = "skip"
	notProvidedAnswer = "Not provided"
)

// ValidateAnswer checks a trimmed answer against the question's
// validation policy.
func ValidateAnswer(question models.Question, answer string) bool {
	trimmed := strings.TrimSpace(answer)

	switch question.Validation {
	case models.ValidationOptional:
		return true

	case models.ValidationRequired:
		return trimmed != ""

	case models.ValidationEmail:
		if trimmed == "" {
			return false
		}
		return emailPattern.MatchString(trimmed) && strings.Contains(trimmed, "@") && strings.Contains(trimmed, ".")

	case models.ValidationURL:
		if trimmed == "" {
			return false
		}
		return urlPattern.MatchString(trimmed)

	case models.ValidationPhone:
		return validatePhone(trimmed)
	}

	// WhatsApp keeps its skip semantics even when the catalog predates
	// the phone validation policy.
	if question.QuestionId == "whatsapp_number" {
		return validatePhone(trimmed)
	}

	return trimmed != ""
}

func validatePhone(trimmed string) bool {
	if trimmed == "" || strings.EqualFold(trimmed, skipKeyword) {
		return true
	}

	stripped := phoneSeparators.ReplaceAllString(trimmed, "")

	return phonePattern.MatchString(trimmed) &&
		digitPattern.MatchString(trimmed) &&
		len(stripped) >= minPhoneDigits
}

// ValidationError is the user-facing message sent when an answer is
// rejected; the same question is asked again afterwards.
func ValidationError(question models.Question) string {
	switch question.Validation {
	case models.ValidationRequired:
		return fmt.Sprintf("Please provide an answer for: %s", question.Text)
	case models.ValidationEmail:
		return "Please provide a valid email address (e.g., yourname@example.com). Make sure it includes an @ symbol and a domain."
	case models.ValidationURL:
		return "Please provide a valid URL (e.g., https://example.com). Make sure it starts with http:// or https://."
	case models.ValidationPhone:
		return "Please provide a valid phone number (e.g., +1-234-567-8900 or 234-567-8900). Include area code and use numbers only, or type 'skip' if you don't have one."
	}

	if question.QuestionId == "whatsapp_number" {
		return "Please provide a valid WhatsApp number (e.g., +1-234-567-8900 or 234-567-8900), or type 'skip' if you don't have WhatsApp."
	}

	return fmt.Sprintf("Please provide a valid answer for: %s", question.Text)
}

// IsSkip reports whether an answer to a skippable question should be
// stored as the "Not provided" sentinel.
func IsSkip(answer string) bool {
	trimmed := strings.TrimSpace(answer)
	return trimmed == "" || strings.EqualFold(trimmed, skipKeyword)
}

// AllowsSkip reports whether a question may be skipped: optional
// questions, phone questions, and the legacy whatsapp_number id.
func AllowsSkip(question models.Question) bool {
	return question.Validation == models.ValidationOptional ||
		question.Validation == models.ValidationPhone ||
		question.QuestionId == "whatsapp_number"
}
