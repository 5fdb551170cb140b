package onboarding

import (
	"testing"

	"vaulty/bot/models"

	"github.com/stretchr/testify/assert"
)

func TestValidateAnswerEmail(t *testing.T) {
	question := models.Question{QuestionId: "email_address", Validation: models.ValidationEmail}

	tests := []struct {
		answer string
		valid  bool
	}{
		{"user@example.com", true},
		{"first.last@sub.domain.org", true},
		{"  user@example.com  ", true},
		{"user@example", false},
		{"userexample.com", false},
		{"user @example.com", false},
		{"@example.com", false},
		{"user@.com", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.answer, func(t *testing.T) {
			assert.Equal(t, tt.valid, ValidateAnswer(question, tt.answer))
		})
	}
}

func TestValidateAnswerPhone(t *testing.T) {
	question := models.Question{QuestionId: "whatsapp_number", Validation: models.ValidationPhone}

	tests := []struct {
		answer string
		valid  bool
	}{
		{"+1234567890", true},
		{"+1 (234) 567-8900", true},
		{"234-567-8900", true},
		{"1234567", true},
		{"skip", true},
		{"SKIP", true},
		{"", true},
		{"123456", false},
		{"12-34-56", false},
		{"not a number", false},
		{"+123456789012345678901", false},
	}

	for _, tt := range tests {
		t.Run(tt.answer, func(t *testing.T) {
			assert.Equal(t, tt.valid, ValidateAnswer(question, tt.answer))
		})
	}
}

func TestValidateAnswerRequired(t *testing.T) {
	question := models.Question{QuestionId: "tiktok_handle", Validation: models.ValidationRequired}

	assert.True(t, ValidateAnswer(question, "khaby.lame"))
	assert.False(t, ValidateAnswer(question, ""))
	assert.False(t, ValidateAnswer(question, "   "))
}

func TestValidateAnswerOptional(t *testing.T) {
	question := models.Question{QuestionId: "instagram", Validation: models.ValidationOptional}

	assert.True(t, ValidateAnswer(question, "anything"))
	assert.True(t, ValidateAnswer(question, ""))
}

func TestValidateAnswerURL(t *testing.T) {
	question := models.Question{QuestionId: "portfolio", Validation: models.ValidationURL}

	assert.True(t, ValidateAnswer(question, "https://example.com"))
	assert.True(t, ValidateAnswer(question, "http://example.com/page"))
	assert.False(t, ValidateAnswer(question, "example.com"))
	assert.False(t, ValidateAnswer(question, ""))
}

// Questions created before the phone policy existed rely on the
// whatsapp_number id to keep their skip semantics.
func TestValidateAnswerWhatsAppFallback(t *testing.T) {
	question := models.Question{QuestionId: "whatsapp_number", Validation: ""}

	assert.True(t, ValidateAnswer(question, "skip"))
	assert.True(t, ValidateAnswer(question, "+1234567890"))
	assert.False(t, ValidateAnswer(question, "hello"))
}

func TestValidateAnswerUnknownPolicy(t *testing.T) {
	question := models.Question{QuestionId: "favorite_color", Validation: ""}

	assert.True(t, ValidateAnswer(question, "blue"))
	assert.False(t, ValidateAnswer(question, "  "))
}

func TestValidationErrorMessages(t *testing.T) {
	for _, validation := range []string{
		models.ValidationRequired,
		models.ValidationEmail,
		models.ValidationURL,
		models.ValidationPhone,
	} {
		question := models.Question{Text: "A question", Validation: validation}
		assert.NotEmpty(t, ValidationError(question))
	}
}

func TestAllowsSkip(t *testing.T) {
	tests := []struct {
		name     string
		question models.Question
		want     bool
	}{
		{"optional", models.Question{Validation: models.ValidationOptional}, true},
		{"phone", models.Question{Validation: models.ValidationPhone}, true},
		{"whatsapp fallback", models.Question{QuestionId: "whatsapp_number"}, true},
		{"required", models.Question{Validation: models.ValidationRequired}, false},
		{"email", models.Question{Validation: models.ValidationEmail}, false},
		{"url", models.Question{Validation: models.ValidationURL}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AllowsSkip(tt.question))
		})
	}
}

func TestIsSkip(t *testing.T) {
	assert.True(t, IsSkip("skip"))
	assert.True(t, IsSkip("  Skip  "))
	assert.True(t, IsSkip(""))
	assert.False(t, IsSkip("no thanks"))
}
