package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// GuildConfig holds the per-server configuration. One record per guild.
type GuildConfig struct {
	gorm.Model
	GuildId string `gorm:"uniqueIndex"`
	Name    string

	// SheetTab is generated once from the guild name and never changes,
	// even if the guild is renamed afterwards.
	SheetTab string

	Active bool

	WelcomeChannel    string
	OnboardingChannel string
	AuditChannelId    string

	WelcomeRoleName    string
	OnboardingRoleName string
	OnboardedRoleName  string
	SampleRoleName     string
	AdminRoleNames     string // comma-separated

	JoinedAt             time.Time
	LastUpdatedAt        time.Time
	QuestionVersion      int
	LastQuestionUpdateAt *time.Time

	Questions []Question `gorm:"foreignKey:GuildConfigID"`
}

func (c *GuildConfig) AdminRoles() []string {
	if c.AdminRoleNames == "" {
		return nil
	}

	parts := strings.Split(c.AdminRoleNames, ",")
	roles := make([]string, 0, len(parts))

	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			roles = append(roles, trimmed)
		}
	}

	return roles
}

func (c *GuildConfig) SetAdminRoles(roles []string) {
	c.AdminRoleNames = strings.Join(roles, ",")
}

// Question is one onboarding prompt in a guild's catalog.
type Question struct {
	gorm.Model
	GuildConfigID uint   `gorm:"index"`
	QuestionId    string `gorm:"index"`
	Text          string
	Kind          string
	Validation    string
	Placeholder   string
	Position      int // display order, unique and contiguous within a guild
	Active        bool
}

// Validation policies for questions.
const (
	ValidationRequired = "required"
	ValidationOptional = "optional"
	ValidationEmail    = "email"
	ValidationURL      = "url"
	ValidationPhone    = "phone"
)
