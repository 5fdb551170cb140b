package store

import (
	"errors"
	"fmt"
	"log"
	"math/rand"
	"regexp"
	"sort"
	"strings"
	"time"

	"vaulty/bot/models"

	"github.com/bwmarrin/discordgo"
	"gorm.io/gorm"
)

var (
	ErrGuildNotConfigured = errors.New("guild is not configured")
	ErrQuestionNotFound   = errors.New("question not found")
)

// Google Sheets tab names are limited to 31 characters.
const maxTabNameLength = 31

const tabNameSuffix = "Onboarding"

// Store is the guild configuration store. All mutations go through it
// and re-read the record before writing, so callers never write back a
// stale copy.
type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (st *Store) Migrate() error {
	return st.db.AutoMigrate(&models.GuildConfig{}, &models.Question{})
}

// GetConfig returns the configuration for a guild, or nil if the guild
// has never been configured. A missing guild is not an error.
func (st *Store) GetConfig(guildId string) (*models.GuildConfig, error) {
	var config models.GuildConfig

	result := st.db.Preload("Questions").Where(&models.GuildConfig{GuildId: guildId}).First(&config)

	switch {
	case errors.Is(result.Error, gorm.ErrRecordNotFound):
		return nil, nil
	case result.Error != nil:
		return nil, result.Error
	}

	return &config, nil
}

// Overrides carries optional values for Configure. SheetTab must be set
// explicitly by reset flows that want to keep the existing tab binding;
// otherwise a fresh tab name is generated from the guild name.
type Overrides struct {
	SheetTab       string
	WelcomeRole    string
	OnboardingRole string
	OnboardedRole  string
	SampleRole     string
	AdminRoles     []string
}

// Configure creates or overwrites a guild's configuration with defaults,
// auto-detecting likely welcome and audit channels by name.
func (st *Store) Configure(guildId string, guild *discordgo.Guild, overrides Overrides) (*models.GuildConfig, error) {
	now := time.Now().UTC()

	config := models.GuildConfig{
		GuildId:            guildId,
		Name:               guild.Name,
		SheetTab:           GenerateTabName(guild.Name),
		Active:             true,
		WelcomeChannel:     detectWelcomeChannel(guild),
		OnboardingChannel:  "onboarding",
		AuditChannelId:     detectAuditChannel(guild),
		WelcomeRoleName:    "Onboarding",
		OnboardingRoleName: "Creator",
		OnboardedRoleName:  "Verified",
		JoinedAt:           now,
		LastUpdatedAt:      now,
		QuestionVersion:    1,
	}
	config.SetAdminRoles([]string{"Owner", "Admin", "Moderator"})

	if overrides.SheetTab != "" {
		config.SheetTab = overrides.SheetTab
	}
	if overrides.WelcomeRole != "" {
		config.WelcomeRoleName = overrides.WelcomeRole
	}
	if overrides.OnboardingRole != "" {
		config.OnboardingRoleName = overrides.OnboardingRole
	}
	if overrides.OnboardedRole != "" {
		config.OnboardedRoleName = overrides.OnboardedRole
	}
	if overrides.SampleRole != "" {
		config.SampleRoleName = overrides.SampleRole
	}
	if len(overrides.AdminRoles) > 0 {
		config.SetAdminRoles(overrides.AdminRoles)
	}

	existing, err := st.GetConfig(guildId)
	if err != nil {
		return nil, err
	}

	if existing == nil {
		if result := st.db.Create(&config); result.Error != nil {
			return nil, result.Error
		}
		return &config, nil
	}

	config.ID = existing.ID
	config.JoinedAt = existing.JoinedAt
	config.CreatedAt = existing.CreatedAt

	if result := st.db.Save(&config); result.Error != nil {
		return nil, result.Error
	}

	return &config, nil
}

// Update applies mutate to the current record and persists it. Fails
// with ErrGuildNotConfigured if the guild has no record.
func (st *Store) Update(guildId string, mutate func(*models.GuildConfig)) (*models.GuildConfig, error) {
	config, err := st.GetConfig(guildId)
	if err != nil {
		return nil, err
	}
	if config == nil {
		return nil, ErrGuildNotConfigured
	}

	mutate(config)
	config.LastUpdatedAt = time.Now().UTC()

	if result := st.db.Omit("Questions").Save(config); result.Error != nil {
		return nil, result.Error
	}

	return config, nil
}

// Deactivate soft-disables a guild, keeping its question history and
// sheet binding for a later rejoin.
func (st *Store) Deactivate(guildId string) error {
	_, err := st.Update(guildId, func(c *models.GuildConfig) {
		c.Active = false
	})
	return err
}

func (st *Store) Reactivate(guildId string) error {
	_, err := st.Update(guildId, func(c *models.GuildConfig) {
		c.Active = true
	})
	return err
}

// ActiveGuilds returns every guild that has not been deactivated.
func (st *Store) ActiveGuilds() ([]models.GuildConfig, error) {
	var configs []models.GuildConfig

	result := st.db.Preload("Questions").Where(&models.GuildConfig{Active: true}).Find(&configs)
	if result.Error != nil {
		return nil, result.Error
	}

	return configs, nil
}

type QuestionInput struct {
	Text        string
	Kind        string
	Validation  string
	Placeholder string
}

// AddQuestion appends a question to the end of a guild's catalog.
func (st *Store) AddQuestion(guildId string, input QuestionInput) (*models.Question, error) {
	config, err := st.GetConfig(guildId)
	if err != nil {
		return nil, err
	}
	if config == nil {
		return nil, ErrGuildNotConfigured
	}

	maxPosition := 0
	for _, q := range config.Questions {
		if q.Position > maxPosition {
			maxPosition = q.Position
		}
	}

	question := models.Question{
		GuildConfigID: config.ID,
		QuestionId:    newQuestionId(),
		Text:          input.Text,
		Kind:          orDefault(input.Kind, "text"),
		Validation:    orDefault(input.Validation, models.ValidationRequired),
		Placeholder:   input.Placeholder,
		Position:      maxPosition + 1,
		Active:        true,
	}

	if result := st.db.Create(&question); result.Error != nil {
		return nil, result.Error
	}

	if err := st.bumpQuestionVersion(guildId); err != nil {
		return nil, err
	}

	return &question, nil
}

// UpdateQuestion edits a question's fields. Zero-valued input fields are
// left unchanged; active toggles only when non-nil.
func (st *Store) UpdateQuestion(guildId, questionId string, input QuestionInput, active *bool) (*models.Question, error) {
	config, question, err := st.findQuestion(guildId, questionId)
	if err != nil {
		return nil, err
	}
	_ = config

	if input.Text != "" {
		question.Text = input.Text
	}
	if input.Kind != "" {
		question.Kind = input.Kind
	}
	if input.Validation != "" {
		question.Validation = input.Validation
	}
	if input.Placeholder != "" {
		question.Placeholder = input.Placeholder
	}
	if active != nil {
		question.Active = *active
	}

	if result := st.db.Save(question); result.Error != nil {
		return nil, result.Error
	}

	if err := st.bumpQuestionVersion(guildId); err != nil {
		return nil, err
	}

	return question, nil
}

// RemoveQuestion deletes a question and renumbers the remaining ones so
// positions stay contiguous.
func (st *Store) RemoveQuestion(guildId, questionId string) (*models.Question, error) {
	config, question, err := st.findQuestion(guildId, questionId)
	if err != nil {
		return nil, err
	}

	if result := st.db.Delete(question); result.Error != nil {
		return nil, result.Error
	}

	position := 1
	for i := range config.Questions {
		q := &config.Questions[i]
		if q.QuestionId == questionId {
			continue
		}

		if q.Position != position {
			q.Position = position
			if result := st.db.Save(q); result.Error != nil {
				return nil, result.Error
			}
		}
		position++
	}

	if err := st.bumpQuestionVersion(guildId); err != nil {
		return nil, err
	}

	return question, nil
}

// ReorderQuestions rewrites positions to match the given id sequence.
// Every id must name an existing question in the guild's catalog.
// Questions not listed keep their relative order and are renumbered
// after the listed ones, so positions stay unique and contiguous.
func (st *Store) ReorderQuestions(guildId string, questionIds []string) error {
	config, err := st.GetConfig(guildId)
	if err != nil {
		return err
	}
	if config == nil {
		return ErrGuildNotConfigured
	}

	byId := make(map[string]*models.Question, len(config.Questions))
	for i := range config.Questions {
		byId[config.Questions[i].QuestionId] = &config.Questions[i]
	}

	for _, id := range questionIds {
		if _, ok := byId[id]; !ok {
			return fmt.Errorf("%w: %s", ErrQuestionNotFound, id)
		}
	}

	listed := make(map[string]bool, len(questionIds))
	deduped := make([]string, 0, len(questionIds))
	for _, id := range questionIds {
		if !listed[id] {
			listed[id] = true
			deduped = append(deduped, id)
		}
	}

	var rest []*models.Question
	for i := range config.Questions {
		if question := &config.Questions[i]; !listed[question.QuestionId] {
			rest = append(rest, question)
		}
	}
	sort.Slice(rest, func(i, j int) bool {
		return rest[i].Position < rest[j].Position
	})

	position := 1
	for _, id := range deduped {
		question := byId[id]
		question.Position = position
		position++

		if result := st.db.Save(question); result.Error != nil {
			return result.Error
		}
	}

	for _, question := range rest {
		question.Position = position
		position++

		if result := st.db.Save(question); result.Error != nil {
			return result.Error
		}
	}

	return st.bumpQuestionVersion(guildId)
}

// ResetQuestions replaces the guild's catalog with the built-in default
// 3-question set.
func (st *Store) ResetQuestions(guildId string) error {
	config, err := st.GetConfig(guildId)
	if err != nil {
		return err
	}
	if config == nil {
		return ErrGuildNotConfigured
	}

	if len(config.Questions) > 0 {
		if result := st.db.Delete(&config.Questions); result.Error != nil {
			return result.Error
		}
	}

	for _, question := range DefaultQuestions() {
		question.GuildConfigID = config.ID
		if result := st.db.Create(&question); result.Error != nil {
			return result.Error
		}
	}

	return st.bumpQuestionVersion(guildId)
}

// ActiveQuestions returns the guild's active questions sorted by
// position. Guilds with no configuration or an empty catalog get the
// built-in defaults, so callers can rely on a non-empty ordered list.
func (st *Store) ActiveQuestions(guildId string) []models.Question {
	config, err := st.GetConfig(guildId)
	if err != nil {
		log.Printf("Could not load questions for guild %v, falling back to defaults: %v", guildId, err)
		return DefaultQuestions()
	}
	if config == nil || len(config.Questions) == 0 {
		return DefaultQuestions()
	}

	var questions []models.Question

	result := st.db.
		Where(&models.Question{GuildConfigID: config.ID, Active: true}).
		Order("position asc").
		Find(&questions)

	if result.Error != nil {
		log.Printf("Could not load questions for guild %v, falling back to defaults: %v", guildId, result.Error)
		return DefaultQuestions()
	}

	if len(questions) == 0 {
		return DefaultQuestions()
	}

	return questions
}

// DefaultQuestions is the catalog used before a guild configures its
// own questions: TikTok handle, email, WhatsApp.
func DefaultQuestions() []models.Question {
	return []models.Question{
		{
			QuestionId:  "tiktok_handle",
			Text:        "What's your TikTok username? (without the @ symbol)",
			Kind:        "text",
			Validation:  models.ValidationRequired,
			Placeholder: "e.g., khaby.lame",
			Position:    1,
			Active:      true,
		},
		{
			QuestionId:  "email_address",
			Text:        "What's your email address?",
			Kind:        "email",
			Validation:  models.ValidationEmail,
			Placeholder: "your@email.com",
			Position:    2,
			Active:      true,
		},
		{
			QuestionId:  "whatsapp_number",
			Text:        "What's your WhatsApp number? (or type 'skip' if you don't have one)",
			Kind:        "text",
			Validation:  models.ValidationPhone,
			Placeholder: "+1234567890",
			Position:    3,
			Active:      true,
		},
	}
}

func (st *Store) findQuestion(guildId, questionId string) (*models.GuildConfig, *models.Question, error) {
	config, err := st.GetConfig(guildId)
	if err != nil {
		return nil, nil, err
	}
	if config == nil {
		return nil, nil, ErrGuildNotConfigured
	}

	for i := range config.Questions {
		if config.Questions[i].QuestionId == questionId {
			return config, &config.Questions[i], nil
		}
	}

	return nil, nil, fmt.Errorf("%w: %s", ErrQuestionNotFound, questionId)
}

func (st *Store) bumpQuestionVersion(guildId string) error {
	_, err := st.Update(guildId, func(c *models.GuildConfig) {
		now := time.Now().UTC()
		c.QuestionVersion++
		c.LastQuestionUpdateAt = &now
	})
	return err
}

var guildNameSanitizer = regexp.MustCompile(`[^a-zA-Z0-9\s-]`)
var spaceCollapser = regexp.MustCompile(`\s+`)

// SanitizeGuildName strips special characters and collapses whitespace
// so the name is usable inside a sheet tab name.
func SanitizeGuildName(name string) string {
	cleaned := guildNameSanitizer.ReplaceAllString(name, "")
	cleaned = spaceCollapser.ReplaceAllString(cleaned, " ")
	cleaned = strings.TrimSpace(cleaned)

	if len(cleaned) > 30 {
		cleaned = cleaned[:30]
	}

	return cleaned
}

// GenerateTabName builds "<guild> Onboarding", truncating the guild
// part so the result fits the 31 character sheet tab limit with the
// suffix preserved.
func GenerateTabName(guildName string) string {
	name := SanitizeGuildName(guildName)
	tabName := name + " " + tabNameSuffix

	if len(tabName) <= maxTabNameLength {
		return tabName
	}

	maxNameLength := maxTabNameLength - len(tabNameSuffix) - 1
	return name[:maxNameLength] + " " + tabNameSuffix
}

func detectWelcomeChannel(guild *discordgo.Guild) string {
	for _, channel := range guild.Channels {
		if channel.Type != discordgo.ChannelTypeGuildText {
			continue
		}

		name := strings.ToLower(channel.Name)
		if strings.Contains(name, "welcome") || strings.Contains(name, "join") || strings.Contains(name, "intro") {
			return channel.Name
		}
	}

	return "welcome"
}

func detectAuditChannel(guild *discordgo.Guild) string {
	for _, channel := range guild.Channels {
		if channel.Type != discordgo.ChannelTypeGuildText {
			continue
		}

		name := strings.ToLower(channel.Name)
		if strings.Contains(name, "audit") || strings.Contains(name, "log") {
			return channel.ID
		}
	}

	return ""
}

const questionIdAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

func newQuestionId() string {
	suffix := make([]byte, 9)
	for i := range suffix {
		suffix[i] = questionIdAlphabet[rand.Intn(len(questionIdAlphabet))]
	}

	return fmt.Sprintf("question_%d_%s", time.Now().UnixMilli(), suffix)
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
