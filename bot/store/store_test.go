package store

import (
	"fmt"
	"testing"

	"vaulty/bot/models"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	st := New(db)
	require.NoError(t, st.Migrate())

	return st
}

func testGuild() *discordgo.Guild {
	return &discordgo.Guild{
		ID:   "guild-1",
		Name: "Creator Hub",
		Channels: []*discordgo.Channel{
			{ID: "chan-general", Name: "general", Type: discordgo.ChannelTypeGuildText},
			{ID: "chan-welcome", Name: "welcome-mat", Type: discordgo.ChannelTypeGuildText},
			{ID: "chan-audit", Name: "mod-log", Type: discordgo.ChannelTypeGuildText},
		},
	}
}

func TestGetConfigMissingGuild(t *testing.T) {
	st := newTestStore(t)

	config, err := st.GetConfig("nope")
	require.NoError(t, err)
	assert.Nil(t, config)
}

func TestConfigureDefaults(t *testing.T) {
	st := newTestStore(t)

	config, err := st.Configure("guild-1", testGuild(), Overrides{})
	require.NoError(t, err)

	assert.Equal(t, "Creator Hub", config.Name)
	assert.Equal(t, "Creator Hub Onboarding", config.SheetTab)
	assert.True(t, config.Active)
	assert.Equal(t, "welcome-mat", config.WelcomeChannel)
	assert.Equal(t, "chan-audit", config.AuditChannelId)
	assert.Equal(t, "Onboarding", config.WelcomeRoleName)
	assert.Equal(t, "Creator", config.OnboardingRoleName)
	assert.Equal(t, "Verified", config.OnboardedRoleName)
	assert.Equal(t, []string{"Owner", "Admin", "Moderator"}, config.AdminRoles())
}

func TestConfigureOverrides(t *testing.T) {
	st := newTestStore(t)

	config, err := st.Configure("guild-1", testGuild(), Overrides{
		SheetTab:       "Legacy Tab",
		OnboardedRole:  "Member",
		AdminRoles:     []string{"Staff"},
	})
	require.NoError(t, err)

	assert.Equal(t, "Legacy Tab", config.SheetTab)
	assert.Equal(t, "Member", config.OnboardedRoleName)
	assert.Equal(t, []string{"Staff"}, config.AdminRoles())
}

func TestConfigurePreservesJoinedAtOnReconfigure(t *testing.T) {
	st := newTestStore(t)

	first, err := st.Configure("guild-1", testGuild(), Overrides{})
	require.NoError(t, err)

	second, err := st.Configure("guild-1", testGuild(), Overrides{})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.JoinedAt.Unix(), second.JoinedAt.Unix())
}

func TestUpdateUnconfiguredGuild(t *testing.T) {
	st := newTestStore(t)

	_, err := st.Update("guild-1", func(c *models.GuildConfig) {})
	assert.ErrorIs(t, err, ErrGuildNotConfigured)
}

func TestUpdateMutatesAndPersists(t *testing.T) {
	st := newTestStore(t)

	_, err := st.Configure("guild-1", testGuild(), Overrides{})
	require.NoError(t, err)

	_, err = st.Update("guild-1", func(c *models.GuildConfig) {
		c.AuditChannelId = "chan-other"
	})
	require.NoError(t, err)

	config, err := st.GetConfig("guild-1")
	require.NoError(t, err)
	assert.Equal(t, "chan-other", config.AuditChannelId)
}

func TestDeactivateAndReactivate(t *testing.T) {
	st := newTestStore(t)

	_, err := st.Configure("guild-1", testGuild(), Overrides{})
	require.NoError(t, err)

	require.NoError(t, st.Deactivate("guild-1"))

	active, err := st.ActiveGuilds()
	require.NoError(t, err)
	assert.Empty(t, active)

	require.NoError(t, st.Reactivate("guild-1"))

	active, err = st.ActiveGuilds()
	require.NoError(t, err)
	assert.Len(t, active, 1)
}

func TestActiveQuestionsFallsBackToDefaults(t *testing.T) {
	st := newTestStore(t)

	// Unconfigured guild.
	questions := st.ActiveQuestions("guild-1")
	require.Len(t, questions, 3)
	assert.Equal(t, "tiktok_handle", questions[0].QuestionId)
	assert.Equal(t, "email_address", questions[1].QuestionId)
	assert.Equal(t, "whatsapp_number", questions[2].QuestionId)

	// Configured guild with an empty catalog.
	_, err := st.Configure("guild-1", testGuild(), Overrides{})
	require.NoError(t, err)

	questions = st.ActiveQuestions("guild-1")
	assert.Len(t, questions, 3)
}

func TestAddQuestionAppendsAtEnd(t *testing.T) {
	st := newTestStore(t)

	_, err := st.Configure("guild-1", testGuild(), Overrides{})
	require.NoError(t, err)
	require.NoError(t, st.ResetQuestions("guild-1"))

	question, err := st.AddQuestion("guild-1", QuestionInput{Text: "What's your Instagram?", Validation: models.ValidationOptional})
	require.NoError(t, err)

	assert.Equal(t, 4, question.Position)
	assert.True(t, question.Active)
	assert.NotEmpty(t, question.QuestionId)

	questions := st.ActiveQuestions("guild-1")
	require.Len(t, questions, 4)
	assert.Equal(t, "What's your Instagram?", questions[3].Text)
}

func TestAddQuestionBumpsVersion(t *testing.T) {
	st := newTestStore(t)

	_, err := st.Configure("guild-1", testGuild(), Overrides{})
	require.NoError(t, err)

	before, err := st.GetConfig("guild-1")
	require.NoError(t, err)

	_, err = st.AddQuestion("guild-1", QuestionInput{Text: "Extra question"})
	require.NoError(t, err)

	after, err := st.GetConfig("guild-1")
	require.NoError(t, err)
	assert.Greater(t, after.QuestionVersion, before.QuestionVersion)
	assert.NotNil(t, after.LastQuestionUpdateAt)
}

func TestUpdateQuestion(t *testing.T) {
	st := newTestStore(t)

	_, err := st.Configure("guild-1", testGuild(), Overrides{})
	require.NoError(t, err)
	require.NoError(t, st.ResetQuestions("guild-1"))

	config, err := st.GetConfig("guild-1")
	require.NoError(t, err)
	target := config.Questions[0]

	inactive := false
	updated, err := st.UpdateQuestion("guild-1", target.QuestionId, QuestionInput{Text: "New wording"}, &inactive)
	require.NoError(t, err)

	assert.Equal(t, "New wording", updated.Text)
	assert.False(t, updated.Active)

	// The deactivated question disappears from the live flow.
	questions := st.ActiveQuestions("guild-1")
	for _, q := range questions {
		assert.NotEqual(t, target.QuestionId, q.QuestionId)
	}
}

func TestUpdateQuestionUnknownId(t *testing.T) {
	st := newTestStore(t)

	_, err := st.Configure("guild-1", testGuild(), Overrides{})
	require.NoError(t, err)

	_, err = st.UpdateQuestion("guild-1", "question_missing", QuestionInput{Text: "x"}, nil)
	assert.ErrorIs(t, err, ErrQuestionNotFound)
}

func TestRemoveQuestionRenumbers(t *testing.T) {
	st := newTestStore(t)

	_, err := st.Configure("guild-1", testGuild(), Overrides{})
	require.NoError(t, err)
	require.NoError(t, st.ResetQuestions("guild-1"))

	config, err := st.GetConfig("guild-1")
	require.NoError(t, err)
	require.Len(t, config.Questions, 3)

	var middle models.Question
	for _, q := range config.Questions {
		if q.Position == 2 {
			middle = q
		}
	}
	require.NotEmpty(t, middle.QuestionId)

	_, err = st.RemoveQuestion("guild-1", middle.QuestionId)
	require.NoError(t, err)

	questions := st.ActiveQuestions("guild-1")
	require.Len(t, questions, 2)
	assert.Equal(t, 1, questions[0].Position)
	assert.Equal(t, 2, questions[1].Position)
}

func TestReorderQuestions(t *testing.T) {
	st := newTestStore(t)

	_, err := st.Configure("guild-1", testGuild(), Overrides{})
	require.NoError(t, err)
	require.NoError(t, st.ResetQuestions("guild-1"))

	config, err := st.GetConfig("guild-1")
	require.NoError(t, err)

	ids := make([]string, 0, len(config.Questions))
	for _, q := range config.Questions {
		ids = append(ids, q.QuestionId)
	}

	// Reverse the order.
	reversed := []string{ids[2], ids[1], ids[0]}
	require.NoError(t, st.ReorderQuestions("guild-1", reversed))

	questions := st.ActiveQuestions("guild-1")
	require.Len(t, questions, 3)
	assert.Equal(t, reversed[0], questions[0].QuestionId)
	assert.Equal(t, reversed[2], questions[2].QuestionId)
}

// A partial id list promotes the listed questions and renumbers the
// rest after them, keeping positions unique and contiguous.
func TestReorderQuestionsPartialList(t *testing.T) {
	st := newTestStore(t)

	_, err := st.Configure("guild-1", testGuild(), Overrides{})
	require.NoError(t, err)
	require.NoError(t, st.ResetQuestions("guild-1"))

	questions := st.ActiveQuestions("guild-1")
	require.Len(t, questions, 3)

	// Promote only the last question.
	require.NoError(t, st.ReorderQuestions("guild-1", []string{questions[2].QuestionId}))

	reordered := st.ActiveQuestions("guild-1")
	require.Len(t, reordered, 3)

	assert.Equal(t, "whatsapp_number", reordered[0].QuestionId)
	assert.Equal(t, "tiktok_handle", reordered[1].QuestionId)
	assert.Equal(t, "email_address", reordered[2].QuestionId)

	for i, q := range reordered {
		assert.Equal(t, i+1, q.Position)
	}
}

func TestReorderQuestionsUnknownId(t *testing.T) {
	st := newTestStore(t)

	_, err := st.Configure("guild-1", testGuild(), Overrides{})
	require.NoError(t, err)
	require.NoError(t, st.ResetQuestions("guild-1"))

	err = st.ReorderQuestions("guild-1", []string{"question_missing"})
	assert.ErrorIs(t, err, ErrQuestionNotFound)
}

func TestResetQuestionsRestoresDefaults(t *testing.T) {
	st := newTestStore(t)

	_, err := st.Configure("guild-1", testGuild(), Overrides{})
	require.NoError(t, err)

	_, err = st.AddQuestion("guild-1", QuestionInput{Text: "Custom question"})
	require.NoError(t, err)

	require.NoError(t, st.ResetQuestions("guild-1"))

	questions := st.ActiveQuestions("guild-1")
	require.Len(t, questions, 3)
	assert.Equal(t, "tiktok_handle", questions[0].QuestionId)
}

func TestGenerateTabName(t *testing.T) {
	tests := []struct {
		name  string
		guild string
		want  string
	}{
		{"simple", "Creator Hub", "Creator Hub Onboarding"},
		{"special characters stripped", "Creator! Hub?", "Creator Hub Onboarding"},
		{"collapsed whitespace", "Creator    Hub", "Creator Hub Onboarding"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GenerateTabName(tt.guild))
		})
	}
}

func TestGenerateTabNameRespectsSheetLimit(t *testing.T) {
	got := GenerateTabName("An Extremely Long Discord Guild Name")

	assert.LessOrEqual(t, len(got), 31)
	assert.Contains(t, got, "Onboarding")
}
