package events

import (
	"fmt"
	"log"
	"strings"

	"vaulty/bot/channels"
	"vaulty/bot/onboarding"
	"vaulty/bot/roles"
	"vaulty/bot/store"
	"vaulty/packages/pushover"

	"github.com/bwmarrin/discordgo"
)

func ReadyHandler(notifier *pushover.Service) func(s *discordgo.Session, e *discordgo.Ready) {
	return func(s *discordgo.Session, e *discordgo.Ready) {
		log.Printf("Logged in as: %v#%v, serving %v guilds", s.State.User.Username, s.State.User.Discriminator, len(e.Guilds))

		notifier.NotifyBotStarted(len(e.Guilds))
	}
}

// GuildMemberAddHandler runs the automatic join flow: initial role,
// private channel, welcome message, and the question session. The
// guild must be configured and active, otherwise the join is ignored.
func GuildMemberAddHandler(st *store.Store, engine *onboarding.Engine) func(s *discordgo.Session, e *discordgo.GuildMemberAdd) {
	return func(s *discordgo.Session, e *discordgo.GuildMemberAdd) {
		if e.User.Bot {
			return
		}

		config, err := st.GetConfig(e.GuildID)
		if err != nil {
			log.Printf("Could not load config for guild %v: %v", e.GuildID, err)
			return
		}

		if config == nil || !config.Active {
			log.Printf("Ignoring join in unconfigured or inactive guild %v", e.GuildID)
			return
		}

		log.Printf("New member joined %v: %v", config.Name, e.User.String())

		roles.AssignInitialRole(s, e.Member, config)

		channel, err := channels.CreateOnboardingChannel(s, e.Member, config)
		if err != nil {
			log.Printf("Failed to create onboarding channel for %v: %v", e.User.String(), err)

			// Fall back to the welcome channel so the member still gets
			// an entry point into onboarding.
			if welcomeChannel := findChannelByName(s, e.GuildID, config.WelcomeChannel); welcomeChannel != "" {
				s.ChannelMessageSend(welcomeChannel, fmt.Sprintf("<@%s> 👋 Welcome! I couldn't create your private onboarding channel. Please use the `/onboard` command to get started.", e.User.ID))
			}
			return
		}

		channels.SendWelcomeMessage(s, channel, e.Member, config.Name, false)

		go func() {
			if err := engine.Start(channel, e.Member); err != nil {
				log.Printf("Error starting onboarding for %v: %v", e.User.String(), err)
			}
		}()
	}
}

// MessageCreateHandler feeds messages to the session engine first; a
// consumed message belongs to an active onboarding conversation and
// gets no further handling.
func MessageCreateHandler(engine *onboarding.Engine) func(s *discordgo.Session, e *discordgo.MessageCreate) {
	return func(s *discordgo.Session, e *discordgo.MessageCreate) {
		if e.Author == nil || e.Author.Bot {
			return
		}

		if engine.HandleMessage(e.Message) {
			return
		}

		if strings.EqualFold(strings.TrimSpace(e.Content), "!vaulty") {
			s.ChannelMessageSend(e.ChannelID, "👋 I'm Vaulty! Use `/onboard` to start onboarding, or `/server-setup` if you're an admin setting me up.")
		}
	}
}

// GuildCreateHandler fires on startup for every known guild and when
// the bot is invited somewhere new. Known guilds get reactivated,
// unknown ones just trigger an operator notification; configuration
// stays an explicit /server-setup step.
func GuildCreateHandler(st *store.Store, notifier *pushover.Service) func(s *discordgo.Session, e *discordgo.GuildCreate) {
	return func(s *discordgo.Session, e *discordgo.GuildCreate) {
		config, err := st.GetConfig(e.ID)
		if err != nil {
			log.Printf("Could not load config for guild %v: %v", e.ID, err)
			return
		}

		if config != nil {
			if !config.Active {
				if err := st.Reactivate(e.ID); err != nil {
					log.Printf("Could not reactivate guild %v: %v", e.ID, err)
					return
				}
				log.Printf("Reactivated guild %v (%v)", e.Name, e.ID)
			}
			return
		}

		log.Printf("Joined new guild: %v (%v)", e.Name, e.ID)
		notifier.NotifyNewServer(e.Name, e.ID)
	}
}

// GuildDeleteHandler soft-deactivates the guild so its questions and
// sheet binding survive a later re-invite.
func GuildDeleteHandler(st *store.Store) func(s *discordgo.Session, e *discordgo.GuildDelete) {
	return func(s *discordgo.Session, e *discordgo.GuildDelete) {
		if e.Unavailable {
			// Outage, not a removal.
			return
		}

		log.Printf("Removed from guild %v", e.ID)

		if err := st.Deactivate(e.ID); err != nil {
			log.Printf("Could not deactivate guild %v: %v", e.ID, err)
		}
	}
}

func findChannelByName(s *discordgo.Session, guildId, channelName string) string {
	guild, err := s.State.Guild(guildId)
	if err != nil {
		return ""
	}

	for _, channel := range guild.Channels {
		if channel.Type == discordgo.ChannelTypeGuildText && strings.EqualFold(channel.Name, channelName) {
			return channel.ID
		}
	}

	return ""
}
