package tasks

import (
	"fmt"
	"log"
	"strings"

	"vaulty/bot/models"
	"vaulty/bot/onboarding"
	"vaulty/bot/store"
	"vaulty/packages/pushover"

	"github.com/bwmarrin/discordgo"
)

// HealthCheck verifies that every active guild's configured roles and
// channels still resolve, pushing an operator alert per broken guild.
func HealthCheck(st *store.Store, s *discordgo.Session, notifier *pushover.Service) func() {
	return func() {
		configs, err := st.ActiveGuilds()
		if err != nil {
			log.Printf("Health check: could not list active guilds: %v", err)
			return
		}

		for _, config := range configs {
			issues := checkGuild(s, config.GuildId, &config)

			if len(issues) > 0 {
				log.Printf("Health check failed for %v: %v", config.Name, strings.Join(issues, ", "))
				notifier.NotifyHealthCheckFailure(config.Name, issues)
			}
		}

		log.Printf("Health check completed for %v guilds", len(configs))
	}
}

func checkGuild(s *discordgo.Session, guildId string, config *models.GuildConfig) []string {
	var issues []string

	guild, err := s.State.Guild(guildId)
	if err != nil {
		guild, err = s.Guild(guildId)
		if err != nil {
			return []string{fmt.Sprintf("guild unreachable: %v", err)}
		}
	}

	roleNames := map[string]bool{}
	guildRoles := guild.Roles
	if len(guildRoles) == 0 {
		if fetched, err := s.GuildRoles(guildId); err == nil {
			guildRoles = fetched
		}
	}
	for _, role := range guildRoles {
		roleNames[strings.ToLower(role.Name)] = true
	}

	for _, want := range []struct{ label, name string }{
		{"welcome role", config.WelcomeRoleName},
		{"onboarding role", config.OnboardingRoleName},
		{"onboarded role", config.OnboardedRoleName},
	} {
		if want.name == "" {
			continue
		}
		if !roleNames[strings.ToLower(want.name)] {
			issues = append(issues, fmt.Sprintf("missing %s %q", want.label, want.name))
		}
	}

	if config.WelcomeChannel != "" {
		found := false
		channels := guild.Channels
		if len(channels) == 0 {
			if fetched, err := s.GuildChannels(guildId); err == nil {
				channels = fetched
			}
		}
		for _, channel := range channels {
			if strings.EqualFold(channel.Name, config.WelcomeChannel) {
				found = true
				break
			}
		}
		if !found {
			issues = append(issues, fmt.Sprintf("missing welcome channel %q", config.WelcomeChannel))
		}
	}

	return issues
}

// DailySummary reports live session and guild counts to the operator.
func DailySummary(st *store.Store, engine *onboarding.Engine, notifier *pushover.Service) func() {
	return func() {
		configs, err := st.ActiveGuilds()
		if err != nil {
			log.Printf("Daily summary: could not list active guilds: %v", err)
			return
		}

		notifier.NotifyDailySummary(engine.SessionCount(), len(configs))
	}
}
