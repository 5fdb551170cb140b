package onboarding

import (
	"fmt"
	"log"
	"strings"
	"time"

	"vaulty/bot/models"
	"vaulty/bot/roles"
	"vaulty/utils"

	"github.com/bwmarrin/discordgo"
)

var baseRowHeaders = []string{
	"Timestamp", "Guild Name", "Guild ID", "User Tag", "User ID", "Channel",
}

var tailRowHeaders = []string{"Roles Added", "Run ID"}

// complete runs the completion transaction: roles, nickname, persisted
// row, completion message, audit embed, channel teardown. Each step is
// independently fault tolerant; only a missing guild configuration
// aborts the whole transaction. The session is removed from the
// registry no matter what, so a failed completion never leaves a user
// stuck in "already onboarding".
func (e *Engine) complete(sess *Session) {
	defer e.ClearSession(sess.UserId)

	config, err := e.configs.GetConfig(sess.GuildId)
	if err != nil || config == nil {
		log.Printf("Critical error completing onboarding for %v: guild %v is not configured (%v)", sess.UserTag, sess.GuildId, err)
		e.notify(fmt.Sprintf("Critical error during onboarding completion for %s: server is not configured", sess.UserTag), "Onboarding Completion Failed", 1)
		e.send(sess.ChannelId, fmt.Sprintf("<@%s> ❌ This server is not configured yet. Please ask an admin to run `/server-setup` first.", sess.UserId))
		return
	}

	questions := e.configs.ActiveQuestions(sess.GuildId)

	var roleResult roles.Result
	if !sess.IsTest {
		roleResult = roles.AssignOnboardingRoles(e.discord, sess.GuildId, sess.UserId, false, config)
	}

	nickname := e.applyTikTokNickname(sess, questions)

	rowStatus := e.persistRow(sess, config, questions, roleResult)

	e.sendCompletionMessage(sess, nickname, rowStatus)

	if !sess.IsTest {
		username := FindTikTokUsername(questions, sess.Responses)
		message := fmt.Sprintf("✅ Onboarding completed!\n\n👤 User: %s\n🏠 Server: %s", sess.UserTag, config.Name)
		if username != "" {
			message += fmt.Sprintf("\n📱 TikTok: @%s", username)
		}
		e.notify(message, "Onboarding Complete", 0)
	}

	e.sendAuditLog(sess, config, questions)

	notice := "This channel will be deleted in 30 seconds. Enjoy the server!"
	if sess.IsTest {
		notice = "Test channel will be deleted in 30 seconds."
	}
	e.teardownChannel(sess, notice)

	log.Printf("Onboarding completed for %v (test=%v)", sess.UserTag, sess.IsTest)
}

// rowStatus reports how persisting the result row went; it only shapes
// the wording of the completion message.
type rowStatus int

const (
	rowSaved rowStatus = iota
	rowFailed
	rowDisabled
)

// persistRow appends the result row to the guild's sheet tab. Failure
// is logged and escalated but never blocks the remaining steps.
func (e *Engine) persistRow(sess *Session, config *models.GuildConfig, questions []models.Question, roleResult roles.Result) rowStatus {
	if e.sheets == nil {
		log.Printf("Sheet persistence is disabled; skipping row for %v (guild: %v)", sess.UserTag, config.Name)
		return rowDisabled
	}

	headers := make([]string, 0, len(baseRowHeaders)+len(questions)+len(tailRowHeaders))
	headers = append(headers, baseRowHeaders...)
	for _, question := range questions {
		headers = append(headers, question.Text)
	}
	headers = append(headers, tailRowHeaders...)

	rolesAdded := strings.Join(roleResult.Added, ", ")
	if rolesAdded == "" {
		rolesAdded = "None"
	}
	runId := utils.RunId()
	if sess.IsTest {
		rolesAdded = "TEST MODE - No role changes"
		runId = "TEST-" + runId
	}

	row := make([]string, 0, len(headers))
	row = append(row,
		time.Now().UTC().Format(time.RFC3339),
		config.Name,
		sess.GuildId,
		sess.UserTag,
		sess.UserId,
		sess.ChannelName,
	)
	for _, question := range questions {
		answer := sess.Responses[question.QuestionId]
		if answer == "" {
			answer = notProvidedAnswer
		}
		row = append(row, answer)
	}
	row = append(row, rolesAdded, runId)

	if err := e.sheets.AppendRow(config.SheetTab, headers, row); err != nil {
		log.Printf("Failed to save onboarding data for %v (guild %v): %v", sess.UserTag, config.Name, err)
		e.notify(fmt.Sprintf("Failed to save onboarding data for %s in %s", sess.UserTag, config.Name), "Sheet Save Failed", 1)
		return rowFailed
	}

	log.Printf("Sheet data saved for %v (guild: %v)", sess.UserTag, config.Name)
	return rowSaved
}

func (e *Engine) sendCompletionMessage(sess *Session, nickname string, status rowStatus) {
	var message string

	if sess.IsTest {
		message = fmt.Sprintf("<@%s> 🧪 Test completed, %s!", sess.UserId, sess.Username)
		if status == rowSaved {
			message += "\n\nYour answers were saved to the test logs."
		}
		if nickname != "" {
			message += fmt.Sprintf("\n\n👤 **Your nickname has been set to:** `%s` *(You can change it back manually)*", nickname)
		}
		message += "\n\n*Note: Only the nickname was changed for testing - no roles were assigned.*"
	} else {
		message = fmt.Sprintf("<@%s> 🎉 Great! You've completed onboarding, %s!", sess.UserId, sess.Username)
		if status == rowSaved {
			message += "\n\nYour info has been saved and you now have access to the full server."
		} else {
			message += "\n\nYou now have access to the full server."
		}
		if nickname != "" {
			message += fmt.Sprintf("\n\n👤 **Your nickname has been set to:** `%s`", nickname)
		}
		message += "\n\nWelcome aboard! Check out the channels and say hi to everyone."
	}

	if status == rowFailed {
		message += "\n\n⚠️ There was an issue saving your data. Please contact an admin to verify your information was recorded."
	}

	e.send(sess.ChannelId, message)
}

// sendAuditLog posts a structured embed with every question/answer pair
// to the guild's audit channel. Skipped silently when none is
// configured.
func (e *Engine) sendAuditLog(sess *Session, config *models.GuildConfig, questions []models.Question) {
	if config.AuditChannelId == "" {
		log.Printf("No audit channel configured for guild %v", config.Name)
		return
	}

	fields := []*discordgo.MessageEmbedField{
		{Name: "👤 User", Value: fmt.Sprintf("%s\nID: %s", sess.UserTag, sess.UserId), Inline: true},
		{Name: "📅 Timestamp", Value: fmt.Sprintf("<t:%d:F>", time.Now().Unix()), Inline: true},
		{Name: "🎯 Channel", Value: "#" + sess.ChannelName, Inline: true},
	}

	for index, question := range questions {
		answer := sess.Responses[question.QuestionId]
		if answer == "" {
			answer = notProvidedAnswer
		}

		fields = append(fields, &discordgo.MessageEmbedField{
			Name:   utils.Truncate(question.Text, 20),
			Value:  answer,
			Inline: index < 2,
		})
	}

	title := "✅ New Creator Onboarded!"
	description := fmt.Sprintf("<@%s> **%s** completed onboarding successfully!", sess.UserId, sess.Username)
	color := 0x00ff00

	if sess.IsTest {
		title = "🧪 Test Onboarding Completed!"
		description = fmt.Sprintf("<@%s> **%s** completed onboarding TEST!", sess.UserId, sess.Username)
		color = 0xffa500
		fields = append(fields, &discordgo.MessageEmbedField{
			Name: "🧪 Mode", Value: "TEST - No role changes", Inline: false,
		})
	}

	embed := &discordgo.MessageEmbed{
		Title:       title,
		Description: description,
		Color:       color,
		Fields:      fields,
		Footer:      &discordgo.MessageEmbedFooter{Text: "Vaulty Onboarding System"},
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
	}

	if _, err := e.discord.ChannelMessageSendEmbed(config.AuditChannelId, embed); err != nil {
		log.Printf("Failed to send audit log for %v: %v", sess.UserTag, err)
	}
}

func (e *Engine) notify(message, title string, priority int) {
	if e.notifier == nil {
		return
	}
	e.notifier.Notify(message, title, priority)
}
