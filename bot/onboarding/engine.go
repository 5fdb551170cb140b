package onboarding

import (
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"vaulty/bot/models"

	"github.com/bwmarrin/discordgo"
)

// ErrAlreadyOnboarding is returned by Start when the user already has a
// live session. It is always handled at the call site with a user-facing
// message and never propagates further.
var ErrAlreadyOnboarding = errors.New("user is already in an active onboarding session")

// DiscordAPI is the slice of *discordgo.Session the engine needs.
type DiscordAPI interface {
	ChannelMessageSend(channelID string, content string) (*discordgo.Message, error)
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed) (*discordgo.Message, error)
	ChannelDelete(channelID string) (*discordgo.Channel, error)
	GuildMember(guildID, userID string) (*discordgo.Member, error)
	GuildRoles(guildID string) ([]*discordgo.Role, error)
	GuildMemberRoleAdd(guildID, userID, roleID string) error
	GuildMemberRoleRemove(guildID, userID, roleID string) error
	GuildMemberNickname(guildID, userID, nickname string) error
}

// ConfigSource provides per-guild configuration and question catalogs.
// *store.Store satisfies it.
type ConfigSource interface {
	GetConfig(guildId string) (*models.GuildConfig, error)
	ActiveQuestions(guildId string) []models.Question
}

// RowAppender persists one completed onboarding as a spreadsheet row,
// (re)establishing the guild-specific header first.
type RowAppender interface {
	AppendRow(tabName string, headers, row []string) error
}

// Notifier pushes operator alerts. Failures are swallowed.
type Notifier interface {
	Notify(message, title string, priority int) bool
}

// Engine drives one linear question/answer conversation per user and
// owns the session registry.
type Engine struct {
	discord  DiscordAPI
	configs  ConfigSource
	sheets   RowAppender
	notifier Notifier

	mu       sync.Mutex
	sessions map[string]*Session

	// Delays are fields so tests can shrink them.
	AskDelay      time.Duration
	ReminderDelay time.Duration
	ExpireDelay   time.Duration
	CleanupDelay  time.Duration
}

func NewEngine(discord DiscordAPI, configs ConfigSource, sheets RowAppender, notifier Notifier) *Engine {
	return &Engine{
		discord:  discord,
		configs:  configs,
		sheets:   sheets,
		notifier: notifier,
		sessions: make(map[string]*Session),

		AskDelay:      2 * time.Second,
		ReminderDelay: 10 * time.Minute,
		ExpireDelay:   20 * time.Minute,
		CleanupDelay:  30 * time.Second,
	}
}

// Start begins onboarding for a member in their private channel. The
// existence check and registration happen under one lock so two
// concurrent starts cannot both slip through.
func (e *Engine) Start(channel *discordgo.Channel, member *discordgo.Member) error {
	return e.start(channel, member, false)
}

// StartTest begins a dry-run session that skips role mutation.
func (e *Engine) StartTest(channel *discordgo.Channel, member *discordgo.Member) error {
	return e.start(channel, member, true)
}

func (e *Engine) start(channel *discordgo.Channel, member *discordgo.Member, isTest bool) error {
	now := time.Now().UTC()

	sess := &Session{
		UserId:       member.User.ID,
		Username:     member.User.Username,
		UserTag:      member.User.String(),
		GuildId:      channel.GuildID,
		ChannelId:    channel.ID,
		ChannelName:  channel.Name,
		Responses:    make(map[string]string),
		StartedAt:    now,
		LastActivity: now,
		IsTest:       isTest,
	}

	e.mu.Lock()
	if _, exists := e.sessions[sess.UserId]; exists {
		e.mu.Unlock()
		return ErrAlreadyOnboarding
	}
	e.sessions[sess.UserId] = sess
	e.armTimers(sess)
	e.mu.Unlock()

	if !isTest && e.notifier != nil {
		guildName := e.guildName(sess.GuildId)
		e.notifier.Notify(
			fmt.Sprintf("🎯 New onboarding started!\n\n👤 User: %s\n🏠 Server: %s", sess.UserTag, guildName),
			"New Onboarding", 0)
	}

	// Brief pause so the user can read the welcome message first.
	time.Sleep(e.AskDelay)

	e.askQuestion(sess)
	return nil
}

// HandleMessage consumes a chat message if it belongs to an active
// session. It returns false when no session exists for the author or
// the message arrived outside the session's bound channel, so other
// message handling can run. Session state is mutated under the engine
// lock; discordgo dispatches every event on its own goroutine, and
// Sessions/Lookup read concurrently.
func (e *Engine) HandleMessage(m *discordgo.Message) bool {
	e.mu.Lock()
	sess := e.sessions[m.Author.ID]
	if sess == nil || m.ChannelID != sess.ChannelId {
		e.mu.Unlock()
		return false
	}

	sess.LastActivity = time.Now().UTC()
	sess.stopTimers()
	cursor := sess.CurrentQuestion
	e.mu.Unlock()

	questions := e.configs.ActiveQuestions(sess.GuildId)

	// Defensive: the increasing-only cursor should never pass the end
	// outside of completion, but a shrunk catalog could get it there.
	if cursor >= len(questions) {
		log.Printf("Invalid question index %v for %v questions (user %v)", cursor, len(questions), sess.UserTag)
		e.send(sess.ChannelId, fmt.Sprintf("<@%s> ❌ Sorry, there was an issue with the onboarding process. Please try again by using the `/onboard` command.", sess.UserId))
		e.ClearSession(sess.UserId)
		return true
	}

	question := questions[cursor]
	answer := strings.TrimSpace(m.Content)

	if AllowsSkip(question) && IsSkip(answer) {
		e.recordAnswer(sess, question.QuestionId, notProvidedAnswer)
		e.askQuestion(sess)
		return true
	}

	if !ValidateAnswer(question, answer) {
		e.send(sess.ChannelId, fmt.Sprintf("<@%s> ❌ %s", sess.UserId, ValidationError(question)))
		return true
	}

	e.recordAnswer(sess, question.QuestionId, answer)

	e.askQuestion(sess)
	return true
}

func (e *Engine) recordAnswer(sess *Session, questionId, answer string) {
	e.mu.Lock()
	sess.Responses[questionId] = answer
	sess.CurrentQuestion++
	e.mu.Unlock()
}

// askQuestion sends the prompt at the session's cursor, or runs the
// completion transaction once the catalog is exhausted.
func (e *Engine) askQuestion(sess *Session) {
	questions := e.configs.ActiveQuestions(sess.GuildId)

	e.mu.Lock()
	cursor := sess.CurrentQuestion
	e.mu.Unlock()

	if cursor >= len(questions) {
		e.complete(sess)
		return
	}

	question := questions[cursor]
	number := cursor + 1
	total := len(questions)

	header := "Question"
	if sess.IsTest {
		header = "🧪 Test Question"
	}

	message := fmt.Sprintf("**%s %d/%d:**\n%s", header, number, total, question.Text)

	if question.Placeholder != "" {
		message += fmt.Sprintf("\n\n*(Example: %s)*", question.Placeholder)
	}

	if question.Validation == models.ValidationOptional {
		message += "\n\n*(Type \"skip\" if you don't have this)*"
	}

	switch {
	case question.Validation == models.ValidationEmail:
		message += "\n\n*(Make sure your email includes an @ symbol and a domain like .com)*"
	case question.Validation == models.ValidationPhone || question.QuestionId == "whatsapp_number":
		message += "\n\n*(Include country code for international numbers, e.g., +1 for US/Canada)*"
	}

	if sess.IsTest {
		message += "\n\n*This is just a test - no real changes will be made*"
	}

	e.send(sess.ChannelId, message)
}

// IsOnboarding reports whether a user currently has a live session.
func (e *Engine) IsOnboarding(userId string) bool {
	return e.session(userId) != nil
}

// Lookup returns a snapshot of the live session for a user, or nil.
func (e *Engine) Lookup(userId string) *Session {
	e.mu.Lock()
	defer e.mu.Unlock()

	sess, ok := e.sessions[userId]
	if !ok {
		return nil
	}

	snapshot := *sess
	return &snapshot
}

// ClearSession cancels the session's timers and removes it from the
// registry. It reports whether a session existed.
func (e *Engine) ClearSession(userId string) bool {
	e.mu.Lock()
	sess, exists := e.sessions[userId]
	delete(e.sessions, userId)
	e.mu.Unlock()

	if exists {
		sess.stopTimers()
	}

	return exists
}

// Sessions returns snapshots of the live sessions, oldest first.
func (e *Engine) Sessions() []*Session {
	e.mu.Lock()
	defer e.mu.Unlock()

	sessions := make([]*Session, 0, len(e.sessions))
	for _, sess := range e.sessions {
		snapshot := *sess
		sessions = append(sessions, &snapshot)
	}

	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].StartedAt.Before(sessions[j].StartedAt)
	})

	return sessions
}

func (e *Engine) SessionCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.sessions)
}

func (e *Engine) session(userId string) *Session {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sessions[userId]
}

// armTimers sets the one-shot reminder and expiry timers at session
// start. Both fire only if the session is still live and still bound to
// the same channel. Called with e.mu held so the timer fields are never
// written while a snapshot is being taken.
func (e *Engine) armTimers(sess *Session) {
	userId := sess.UserId
	channelId := sess.ChannelId

	sess.reminderTimer = time.AfterFunc(e.ReminderDelay, func() {
		current := e.session(userId)
		if current == nil || current.ChannelId != channelId {
			return
		}

		e.send(channelId, fmt.Sprintf("<@%s> 👋 Just checking in! Are you still there? Please reply to continue with onboarding.", userId))
		log.Printf("Sent inactivity reminder for %v", sess.UserTag)
	})

	sess.expireTimer = time.AfterFunc(e.ExpireDelay, func() {
		current := e.session(userId)
		if current == nil || current.ChannelId != channelId {
			return
		}

		log.Printf("Auto-cleanup triggered for inactive session: %v", sess.UserTag)

		e.send(channelId, fmt.Sprintf("<@%s> ⏰ Your onboarding session has expired due to inactivity.\n\nTo restart onboarding, please use the `/onboard` command in the welcome channel.", userId))
		e.teardownChannel(sess, "This channel will be deleted in 30 seconds. Enjoy the server!")
		e.ClearSession(userId)
	})
}

// teardownChannel announces the deletion and removes the channel after
// the grace delay so the user can read the final message.
func (e *Engine) teardownChannel(sess *Session, notice string) {
	e.send(sess.ChannelId, notice)

	channelId := sess.ChannelId
	userTag := sess.UserTag

	time.AfterFunc(e.CleanupDelay, func() {
		if _, err := e.discord.ChannelDelete(channelId); err != nil {
			log.Printf("Error deleting onboarding channel for %v: %v", userTag, err)
		}
	})
}

func (e *Engine) send(channelId, content string) {
	if _, err := e.discord.ChannelMessageSend(channelId, content); err != nil {
		log.Printf("Failed to send message in %v: %v", channelId, err)
	}
}

func (e *Engine) guildName(guildId string) string {
	config, err := e.configs.GetConfig(guildId)
	if err != nil || config == nil {
		return guildId
	}
	return config.Name
}
