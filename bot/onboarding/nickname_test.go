package onboarding

import (
	"testing"

	"vaulty/bot/models"

	"github.com/stretchr/testify/assert"
)

func TestCleanTikTokUsername(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"plain", "khaby.lame", "khaby.lame"},
		{"leading at", "@khaby.lame", "khaby.lame"},
		{"whitespace", "  khaby.lame  ", "khaby.lame"},
		{"trailing slash", "@My.Name/", "My.Name"},
		{"profile url", "https://www.tiktok.com/@khaby.lame", "khaby.lame"},
		{"profile url with query", "https://www.tiktok.com/@khaby.lame?lang=en", "khaby.lame"},
		{"underscores and digits", "user_123", "user_123"},
		{"illegal characters", "user name!", ""},
		{"empty", "", ""},
		{"only at", "@", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanTikTokUsername(tt.raw))
		})
	}
}

func TestFindTikTokUsername(t *testing.T) {
	questions := []models.Question{
		{QuestionId: "tiktok_handle", Text: "What's your TikTok username? (without the @ symbol)"},
		{QuestionId: "email_address", Text: "What's your email address?"},
	}

	t.Run("answered", func(t *testing.T) {
		responses := map[string]string{"tiktok_handle": "@khaby.lame"}
		assert.Equal(t, "khaby.lame", FindTikTokUsername(questions, responses))
	})

	t.Run("not provided sentinel", func(t *testing.T) {
		responses := map[string]string{"tiktok_handle": "Not provided"}
		assert.Equal(t, "", FindTikTokUsername(questions, responses))
	})

	t.Run("no answer", func(t *testing.T) {
		assert.Equal(t, "", FindTikTokUsername(questions, map[string]string{}))
	})

	t.Run("no tiktok question", func(t *testing.T) {
		other := []models.Question{{QuestionId: "email_address", Text: "What's your email address?"}}
		responses := map[string]string{"email_address": "user@example.com"}
		assert.Equal(t, "", FindTikTokUsername(other, responses))
	})

	t.Run("tiktok question without username wording", func(t *testing.T) {
		other := []models.Question{{QuestionId: "tiktok_opinion", Text: "Do you like TikTok?"}}
		responses := map[string]string{"tiktok_opinion": "yes"}
		assert.Equal(t, "", FindTikTokUsername(other, responses))
	})
}
