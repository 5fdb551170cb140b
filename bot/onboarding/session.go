package onboarding

import (
	"time"
)

// Session is the live state of one user's onboarding conversation. A
// session owns its two inactivity timers; they are cancelled whenever
// the session ends, so a stale timer can never act on a reused entry.
type Session struct {
	UserId      string
	Username    string
	UserTag     string
	GuildId     string
	ChannelId   string
	ChannelName string

	// CurrentQuestion only ever increases. When it reaches the active
	// question count the session moves to completion.
	CurrentQuestion int
	Responses       map[string]string

	StartedAt    time.Time
	LastActivity time.Time
	IsTest       bool

	reminderTimer *time.Timer
	expireTimer   *time.Timer
}

// stopTimers cancels both one-shot timers. They are not rearmed on
// user activity: once a user has replied, the question flow keeps the
// session alive.
func (sess *Session) stopTimers() {
	if sess.reminderTimer != nil {
		sess.reminderTimer.Stop()
	}
	if sess.expireTimer != nil {
		sess.expireTimer.Stop()
	}
}
