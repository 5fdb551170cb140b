package onboarding

import (
	"log"
	"regexp"
	"strings"

	"vaulty/bot/models"
)

var tiktokUsernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_.]+$`)

// FindTikTokUsername scans the catalog for a question whose wording
// asks for a TikTok username and returns the cleaned stored answer, or
// "" when no such question or answer exists.
func FindTikTokUsername(questions []models.Question, responses map[string]string) string {
	for _, question := range questions {
		text := strings.ToLower(question.Text)
		if !strings.Contains(text, "tiktok") {
			continue
		}

		if !strings.Contains(text, "username") &&
			!strings.Contains(text, "handle") &&
			!strings.Contains(text, "@") &&
			!strings.Contains(text, "account") {
			continue
		}

		answer := responses[question.QuestionId]
		if answer == "" || answer == notProvidedAnswer {
			return ""
		}

		return CleanTikTokUsername(answer)
	}

	return ""
}

// CleanTikTokUsername strips a leading @, URL path and query remnants,
// and rejects anything outside [A-Za-z0-9_.].
func CleanTikTokUsername(raw string) string {
	cleaned := strings.TrimSpace(raw)

	if idx := strings.Index(cleaned, "?"); idx >= 0 {
		cleaned = cleaned[:idx]
	}

	// Take the last path segment if the user pasted a profile URL.
	cleaned = strings.TrimRight(cleaned, "/")
	if idx := strings.LastIndex(cleaned, "/"); idx >= 0 {
		cleaned = cleaned[idx+1:]
	}

	cleaned = strings.TrimLeft(cleaned, "@")

	if cleaned == "" || !tiktokUsernamePattern.MatchString(cleaned) {
		log.Printf("Invalid TikTok username format: %q", cleaned)
		return ""
	}

	return cleaned
}

// applyTikTokNickname sets the member's display name to @<username>
// when a TikTok question was answered. Any failure (missing question,
// missing rights, unmanageable member) skips the step without failing
// the completion.
func (e *Engine) applyTikTokNickname(sess *Session, questions []models.Question) string {
	username := FindTikTokUsername(questions, sess.Responses)
	if username == "" {
		log.Printf("No TikTok username found for %v in guild %v", sess.UserTag, sess.GuildId)
		return ""
	}

	nickname := "@" + username

	if err := e.discord.GuildMemberNickname(sess.GuildId, sess.UserId, nickname); err != nil {
		log.Printf("Cannot set nickname for %v in guild %v: %v", sess.UserTag, sess.GuildId, err)
		return ""
	}

	log.Printf("Applied TikTok nickname %q to %v", nickname, sess.UserTag)
	return nickname
}
