package handlers

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"vaulty/bot/channels"
	"vaulty/bot/models"
	"vaulty/bot/onboarding"
	"vaulty/bot/responses"
	"vaulty/bot/store"
	"vaulty/packages/pushover"

	"github.com/bwmarrin/discordgo"
)

type CommandHandler = func(s *discordgo.Session, i *discordgo.InteractionCreate)

func InteractionCreateHandler(st *store.Store, engine *onboarding.Engine, notifier *pushover.Service) func(s *discordgo.Session, i *discordgo.InteractionCreate) {
	var commandHandlers = map[string]CommandHandler{
		"ping":               pingCommandHandler(),
		"onboard":            onboardCommandHandler(st, engine),
		"test-onboard":       testOnboardCommandHandler(st, engine),
		"server-setup":       serverSetupCommandHandler(st),
		"server-status":      serverStatusCommandHandler(st, engine),
		"server-config":      serverConfigCommandHandler(st),
		"list-onboarding":    listOnboardingCommandHandler(st, engine),
		"cleanup-onboarding": cleanupOnboardingCommandHandler(st, engine),
		"restart-onboarding": restartOnboardingCommandHandler(st, engine),
	}

	return func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		if i.Type != discordgo.InteractionApplicationCommand {
			return
		}

		// If command handler exists
		if commandHandler, ok := commandHandlers[i.ApplicationCommandData().Name]; ok {
			// Call with session and interaction
			commandHandler(s, i)
		}
	}
}

func optionMap(options []*discordgo.ApplicationCommandInteractionDataOption) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	m := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(options))
	for _, opt := range options {
		m[opt.Name] = opt
	}
	return m
}

func pingCommandHandler() CommandHandler {
	return func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		s.InteractionRespond(i.Interaction, responses.Ephemeral(fmt.Sprintf("🏓 Pong! Heartbeat latency: %v", s.HeartbeatLatency().Round(time.Millisecond))))
	}
}

func onboardCommandHandler(st *store.Store, engine *onboarding.Engine) CommandHandler {
	return func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		config, err := st.GetConfig(i.GuildID)
		if err != nil {
			log.Print(err)
			s.InteractionRespond(i.Interaction, responses.GenericErrorResponse)
			return
		}

		if config == nil {
			s.InteractionRespond(i.Interaction, responses.NotConfiguredResponse)
			return
		}

		if !canStartOnboarding(s, i, config) {
			s.InteractionRespond(i.Interaction, responses.Ephemeral("❌ You do not have permission to use this command.\n\nYou must hold the onboarding role (to complete your onboarding) or a staff role."))
			return
		}

		if engine.IsOnboarding(i.Member.User.ID) {
			s.InteractionRespond(i.Interaction, responses.Ephemeral("❌ You are already in an active onboarding session. Please complete your current onboarding first."))
			return
		}

		startPrivateOnboarding(s, i, engine, config, false)
	}
}

func testOnboardCommandHandler(st *store.Store, engine *onboarding.Engine) CommandHandler {
	return func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		config, err := st.GetConfig(i.GuildID)
		if err != nil {
			log.Print(err)
			s.InteractionRespond(i.Interaction, responses.GenericErrorResponse)
			return
		}

		if config == nil {
			s.InteractionRespond(i.Interaction, responses.NotConfiguredResponse)
			return
		}

		if allowed, _ := checkAdmin(s, i, config); !allowed {
			s.InteractionRespond(i.Interaction, responses.NotAllowedResponse)
			return
		}

		if engine.IsOnboarding(i.Member.User.ID) {
			s.InteractionRespond(i.Interaction, responses.Ephemeral("❌ You are already in an active onboarding session. Please complete your current onboarding first."))
			return
		}

		startPrivateOnboarding(s, i, engine, config, true)
	}
}

// startPrivateOnboarding creates the private channel, greets the user
// there, and hands control to the session engine.
func startPrivateOnboarding(s *discordgo.Session, i *discordgo.InteractionCreate, engine *onboarding.Engine, config *models.GuildConfig, isTest bool) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Flags: discordgo.MessageFlagsEphemeral},
	})
	if err != nil {
		log.Printf("Could not defer onboard response: %v", err)
		return
	}

	member := i.Member
	member.GuildID = i.GuildID

	var channel *discordgo.Channel
	if isTest {
		channel, err = channels.CreateTestChannel(s, member, config)
	} else {
		channel, err = channels.CreateOnboardingChannel(s, member, config)
	}

	if err != nil {
		log.Printf("Failed to create onboarding channel for %v: %v", member.User.String(), err)
		s.FollowupMessageCreate(i.Interaction, true, &discordgo.WebhookParams{
			Content: fmt.Sprintf("❌ Sorry, I couldn't create your private onboarding channel. Please try again.\n\nError: %v", err),
			Flags:   discordgo.MessageFlagsEphemeral,
		})
		return
	}

	guildName := i.GuildID
	if config != nil {
		guildName = config.Name
	}

	channels.SendWelcomeMessage(s, channel, member, guildName, isTest)

	go func() {
		var startErr error
		if isTest {
			startErr = engine.StartTest(channel, member)
		} else {
			startErr = engine.Start(channel, member)
		}
		if startErr != nil {
			log.Printf("Error starting onboarding for %v: %v", member.User.String(), startErr)
		}
	}()

	s.FollowupMessageCreate(i.Interaction, true, &discordgo.WebhookParams{
		Content: fmt.Sprintf("✅ **Onboarding Started!**\n\nI've created a private channel for you: <#%s>\n\nGo there to complete your onboarding with me!", channel.ID),
		Flags:   discordgo.MessageFlagsEphemeral,
	})
}

// canStartOnboarding allows admins, holders of the welcome role, and
// common staff roles to run /onboard.
func canStartOnboarding(s *discordgo.Session, i *discordgo.InteractionCreate, config *models.GuildConfig) bool {
	if allowed, _ := checkAdmin(s, i, config); allowed {
		return true
	}

	welcomeRole := "Onboarding"
	if config != nil && config.WelcomeRoleName != "" {
		welcomeRole = config.WelcomeRoleName
	}

	var guildRoles []*discordgo.Role
	if guild, err := s.State.Guild(i.GuildID); err == nil {
		guildRoles = guild.Roles
	} else if fetched, err := s.GuildRoles(i.GuildID); err == nil {
		guildRoles = fetched
	}

	return memberHasRoleNamed(i.Member, guildRoles, welcomeRole)
}

func serverSetupCommandHandler(st *store.Store) CommandHandler {
	return func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		existing, err := st.GetConfig(i.GuildID)
		if err != nil {
			log.Print(err)
			s.InteractionRespond(i.Interaction, responses.GenericErrorResponse)
			return
		}

		if allowed, _ := checkAdmin(s, i, existing); !allowed {
			s.InteractionRespond(i.Interaction, responses.NotAllowedResponse)
			return
		}

		guild, err := s.State.Guild(i.GuildID)
		if err != nil {
			guild, err = s.Guild(i.GuildID)
			if err != nil {
				log.Printf("Could not fetch guild %v: %v", i.GuildID, err)
				s.InteractionRespond(i.Interaction, responses.GenericErrorResponse)
				return
			}
			if guild.Channels == nil {
				if guildChannels, err := s.GuildChannels(i.GuildID); err == nil {
					guild.Channels = guildChannels
				}
			}
		}

		overrides := store.Overrides{}

		options := optionMap(i.ApplicationCommandData().Options)
		if option, ok := options["reset"]; ok && option.BoolValue() && existing != nil {
			// Reset keeps the sheet binding so history stays in one tab.
			overrides.SheetTab = existing.SheetTab
		}

		config, err := st.Configure(i.GuildID, guild, overrides)
		if err != nil {
			log.Print(err)
			s.InteractionRespond(i.Interaction, responses.GenericErrorResponse)
			return
		}

		s.InteractionRespond(i.Interaction, responses.Ephemeral(fmt.Sprintf(
			"✅ Server configured!\n\nSheet tab: `%s`\nWelcome channel: %s\nAudit channel: %s\nOnboarding roles: %s → %s\n\nUse `/server-config question list` to review the question catalog.",
			config.SheetTab, config.WelcomeChannel, orNone(config.AuditChannelId), config.OnboardingRoleName, config.OnboardedRoleName)))
	}
}

func serverStatusCommandHandler(st *store.Store, engine *onboarding.Engine) CommandHandler {
	return func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		config, err := st.GetConfig(i.GuildID)
		if err != nil {
			log.Print(err)
			s.InteractionRespond(i.Interaction, responses.GenericErrorResponse)
			return
		}

		if config == nil {
			s.InteractionRespond(i.Interaction, responses.NotConfiguredResponse)
			return
		}

		if allowed, _ := checkAdmin(s, i, config); !allowed {
			s.InteractionRespond(i.Interaction, responses.NotAllowedResponse)
			return
		}

		questions := st.ActiveQuestions(i.GuildID)

		status := "active"
		if !config.Active {
			status = "deactivated"
		}

		s.InteractionRespond(i.Interaction, responses.Ephemeral(fmt.Sprintf(
			"**Server status for %s**\n\nState: %s\nActive questions: %d (version %d)\nSheet tab: `%s`\nAudit channel: %s\nLive onboarding sessions: %d\nLast updated: %s",
			config.Name, status, len(questions), config.QuestionVersion, config.SheetTab,
			orNone(config.AuditChannelId), engine.SessionCount(), config.LastUpdatedAt.Format("2006-01-02 15:04 MST"))))
	}
}

func listOnboardingCommandHandler(st *store.Store, engine *onboarding.Engine) CommandHandler {
	return func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		config, err := st.GetConfig(i.GuildID)
		if err != nil {
			log.Print(err)
			s.InteractionRespond(i.Interaction, responses.GenericErrorResponse)
			return
		}

		if allowed, _ := checkAdmin(s, i, config); !allowed {
			s.InteractionRespond(i.Interaction, responses.NotAllowedResponse)
			return
		}

		sessions := engine.Sessions()
		if len(sessions) == 0 {
			s.InteractionRespond(i.Interaction, responses.Ephemeral("No active onboarding sessions."))
			return
		}

		var b strings.Builder
		fmt.Fprintf(&b, "**Active onboarding sessions (%d):**\n", len(sessions))
		for _, sess := range sessions {
			mode := ""
			if sess.IsTest {
				mode = " (test)"
			}
			fmt.Fprintf(&b, "• %s%s — question %d, channel <#%s>, started <t:%d:R>\n",
				sess.UserTag, mode, sess.CurrentQuestion+1, sess.ChannelId, sess.StartedAt.Unix())
		}

		s.InteractionRespond(i.Interaction, responses.Ephemeral(b.String()))
	}
}

func cleanupOnboardingCommandHandler(st *store.Store, engine *onboarding.Engine) CommandHandler {
	return func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		config, err := st.GetConfig(i.GuildID)
		if err != nil {
			log.Print(err)
			s.InteractionRespond(i.Interaction, responses.GenericErrorResponse)
			return
		}

		if allowed, _ := checkAdmin(s, i, config); !allowed {
			s.InteractionRespond(i.Interaction, responses.NotAllowedResponse)
			return
		}

		options := optionMap(i.ApplicationCommandData().Options)
		user := options["user"].UserValue(s)

		sess := engine.Lookup(user.ID)
		if sess == nil {
			s.InteractionRespond(i.Interaction, responses.Ephemeral(fmt.Sprintf("ℹ️ %s has no active onboarding session.", user.String())))
			return
		}

		channelId := sess.ChannelId
		engine.ClearSession(user.ID)

		if _, err := s.ChannelDelete(channelId); err != nil {
			log.Printf("Could not delete onboarding channel %v: %v", channelId, err)
		}

		s.InteractionRespond(i.Interaction, responses.Ephemeral(fmt.Sprintf("🗑️ Cleared onboarding session for %s and removed their channel.", user.String())))
	}
}

func restartOnboardingCommandHandler(st *store.Store, engine *onboarding.Engine) CommandHandler {
	return func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		config, err := st.GetConfig(i.GuildID)
		if err != nil {
			log.Print(err)
			s.InteractionRespond(i.Interaction, responses.GenericErrorResponse)
			return
		}

		if config == nil {
			s.InteractionRespond(i.Interaction, responses.NotConfiguredResponse)
			return
		}

		if allowed, _ := checkAdmin(s, i, config); !allowed {
			s.InteractionRespond(i.Interaction, responses.NotAllowedResponse)
			return
		}

		options := optionMap(i.ApplicationCommandData().Options)
		user := options["user"].UserValue(s)

		if sess := engine.Lookup(user.ID); sess != nil {
			channelId := sess.ChannelId
			engine.ClearSession(user.ID)
			if _, err := s.ChannelDelete(channelId); err != nil {
				log.Printf("Could not delete onboarding channel %v: %v", channelId, err)
			}
		}

		member, err := s.GuildMember(i.GuildID, user.ID)
		if err != nil {
			log.Printf("Could not fetch member %v: %v", user.ID, err)
			s.InteractionRespond(i.Interaction, responses.GenericErrorResponse)
			return
		}
		member.GuildID = i.GuildID

		channel, err := channels.CreateOnboardingChannel(s, member, config)
		if err != nil {
			log.Printf("Failed to create onboarding channel for %v: %v", user.String(), err)
			s.InteractionRespond(i.Interaction, responses.GenericErrorResponse)
			return
		}

		guildName := i.GuildID
		if config != nil {
			guildName = config.Name
		}
		channels.SendWelcomeMessage(s, channel, member, guildName, false)

		go func() {
			if err := engine.Start(channel, member); err != nil {
				log.Printf("Error restarting onboarding for %v: %v", user.String(), err)
			}
		}()

		s.InteractionRespond(i.Interaction, responses.Ephemeral(fmt.Sprintf("🔄 Restarted onboarding for %s in <#%s>.", user.String(), channel.ID)))
	}
}

func serverConfigCommandHandler(st *store.Store) CommandHandler {
	return func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		config, err := st.GetConfig(i.GuildID)
		if err != nil {
			log.Print(err)
			s.InteractionRespond(i.Interaction, responses.GenericErrorResponse)
			return
		}

		if allowed, _ := checkAdmin(s, i, config); !allowed {
			s.InteractionRespond(i.Interaction, responses.NotAllowedResponse)
			return
		}

		options := i.ApplicationCommandData().Options

		switch options[0].Name {
		case "view":
			viewConfig(s, i, st, config)
		case "set":
			setConfig(s, i, st, options[0].Options)
		case "question":
			questionConfig(s, i, st, options[0].Options)
		}
	}
}

func viewConfig(s *discordgo.Session, i *discordgo.InteractionCreate, st *store.Store, config *models.GuildConfig) {
	if config == nil {
		s.InteractionRespond(i.Interaction, responses.NotConfiguredResponse)
		return
	}

	questions := st.ActiveQuestions(i.GuildID)

	s.InteractionRespond(i.Interaction, responses.Ephemeral(fmt.Sprintf(
		"**Configuration for %s**\n\nWelcome channel: %s\nAudit channel: %s\nWelcome role: %s\nOnboarding role: %s\nOnboarded role: %s\nSample role: %s\nAdmin roles: %s\nSheet tab: `%s`\nActive questions: %d",
		config.Name, config.WelcomeChannel, orNone(config.AuditChannelId),
		config.WelcomeRoleName, config.OnboardingRoleName, config.OnboardedRoleName,
		orNone(config.SampleRoleName), strings.Join(config.AdminRoles(), ", "),
		config.SheetTab, len(questions))))
}

func setConfig(s *discordgo.Session, i *discordgo.InteractionCreate, st *store.Store, subOptions []*discordgo.ApplicationCommandInteractionDataOption) {
	sub := subOptions[0]
	values := optionMap(sub.Options)

	var mutate func(*models.GuildConfig)

	switch sub.Name {
	case "welcome_channel":
		channel := values["channel"].ChannelValue(s)
		mutate = func(c *models.GuildConfig) { c.WelcomeChannel = channel.Name }
	case "audit_channel":
		channel := values["channel"].ChannelValue(s)
		mutate = func(c *models.GuildConfig) { c.AuditChannelId = channel.ID }
	case "roles":
		mutate = func(c *models.GuildConfig) {
			if option, ok := values["onboarding"]; ok {
				c.OnboardingRoleName = option.StringValue()
			}
			if option, ok := values["onboarded"]; ok {
				c.OnboardedRoleName = option.StringValue()
			}
			if option, ok := values["welcome"]; ok {
				c.WelcomeRoleName = option.StringValue()
			}
			if option, ok := values["sample"]; ok {
				c.SampleRoleName = option.StringValue()
			}
		}
	case "admin_roles":
		raw := values["roles"].StringValue()
		mutate = func(c *models.GuildConfig) {
			c.SetAdminRoles(splitAndTrim(raw))
		}
	default:
		return
	}

	if _, err := st.Update(i.GuildID, mutate); err != nil {
		respondStoreError(s, i, err)
		return
	}

	s.InteractionRespond(i.Interaction, responses.Ephemeral("✅ Successfully updated config!"))
}

func questionConfig(s *discordgo.Session, i *discordgo.InteractionCreate, st *store.Store, subOptions []*discordgo.ApplicationCommandInteractionDataOption) {
	sub := subOptions[0]
	values := optionMap(sub.Options)

	switch sub.Name {
	case "list":
		config, err := st.GetConfig(i.GuildID)
		if err != nil {
			respondStoreError(s, i, err)
			return
		}

		questions := store.DefaultQuestions()
		usingDefaults := true
		if config != nil && len(config.Questions) > 0 {
			questions = config.Questions
			usingDefaults = false
		}

		var b strings.Builder
		if usingDefaults {
			b.WriteString("**Question catalog (built-in defaults):**\n")
		} else {
			b.WriteString("**Question catalog:**\n")
		}

		for _, q := range questions {
			state := "active"
			if !q.Active {
				state = "inactive"
			}
			fmt.Fprintf(&b, "%d. [%s] %s (`%s`, %s)\n", q.Position, state, q.Text, q.QuestionId, q.Validation)
		}

		s.InteractionRespond(i.Interaction, responses.Ephemeral(b.String()))

	case "add":
		input := store.QuestionInput{Text: values["text"].StringValue()}
		if option, ok := values["validation"]; ok {
			input.Validation = option.StringValue()
		}
		if option, ok := values["placeholder"]; ok {
			input.Placeholder = option.StringValue()
		}

		question, err := st.AddQuestion(i.GuildID, input)
		if err != nil {
			respondStoreError(s, i, err)
			return
		}

		s.InteractionRespond(i.Interaction, responses.Ephemeral(fmt.Sprintf("✅ Added question %d: %s (`%s`)", question.Position, question.Text, question.QuestionId)))

	case "edit":
		var input store.QuestionInput
		if option, ok := values["text"]; ok {
			input.Text = option.StringValue()
		}
		if option, ok := values["validation"]; ok {
			input.Validation = option.StringValue()
		}
		if option, ok := values["placeholder"]; ok {
			input.Placeholder = option.StringValue()
		}

		var active *bool
		if option, ok := values["active"]; ok {
			value := option.BoolValue()
			active = &value
		}

		question, err := st.UpdateQuestion(i.GuildID, values["id"].StringValue(), input, active)
		if err != nil {
			respondStoreError(s, i, err)
			return
		}

		s.InteractionRespond(i.Interaction, responses.Ephemeral(fmt.Sprintf("✅ Updated question `%s`: %s", question.QuestionId, question.Text)))

	case "remove":
		question, err := st.RemoveQuestion(i.GuildID, values["id"].StringValue())
		if err != nil {
			respondStoreError(s, i, err)
			return
		}

		s.InteractionRespond(i.Interaction, responses.Ephemeral(fmt.Sprintf("✅ Removed question: %s", question.Text)))

	case "reorder":
		ids := splitAndTrim(values["ids"].StringValue())

		if err := st.ReorderQuestions(i.GuildID, ids); err != nil {
			respondStoreError(s, i, err)
			return
		}

		s.InteractionRespond(i.Interaction, responses.Ephemeral("✅ Reordered questions."))

	case "reset":
		if err := st.ResetQuestions(i.GuildID); err != nil {
			respondStoreError(s, i, err)
			return
		}

		s.InteractionRespond(i.Interaction, responses.Ephemeral("✅ Reset questions to the default catalog."))
	}
}

func respondStoreError(s *discordgo.Session, i *discordgo.InteractionCreate, err error) {
	switch {
	case errors.Is(err, store.ErrGuildNotConfigured):
		s.InteractionRespond(i.Interaction, responses.NotConfiguredResponse)
	case errors.Is(err, store.ErrQuestionNotFound):
		s.InteractionRespond(i.Interaction, responses.Ephemeral("❌ No question with that id. Use `/server-config question list` to see the catalog."))
	default:
		log.Print(err)
		s.InteractionRespond(i.Interaction, responses.GenericErrorResponse)
	}
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func orNone(value string) string {
	if value == "" {
		return "None"
	}
	return value
}
