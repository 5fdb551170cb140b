package channels

import (
	"fmt"
	"log"

	"vaulty/bot/models"
	"vaulty/packages/cards"
	"vaulty/utils"

	"github.com/bwmarrin/discordgo"
)

const memberPermissions = discordgo.PermissionViewChannel |
	discordgo.PermissionSendMessages |
	discordgo.PermissionReadMessageHistory

const botPermissions = memberPermissions |
	discordgo.PermissionEmbedLinks |
	discordgo.PermissionAttachFiles

const adminViewPermissions = discordgo.PermissionViewChannel |
	discordgo.PermissionReadMessageHistory

// CreateOnboardingChannel creates the private per-user text channel the
// whole onboarding conversation is bound to. Only the member and the
// bot can talk in it; configured admin roles can read along.
func CreateOnboardingChannel(s *discordgo.Session, member *discordgo.Member, config *models.GuildConfig) (*discordgo.Channel, error) {
	return createPrivateChannel(s, member, config, "onboarding")
}

// CreateTestChannel is the dry-run variant used by /test-onboard.
func CreateTestChannel(s *discordgo.Session, member *discordgo.Member, config *models.GuildConfig) (*discordgo.Channel, error) {
	return createPrivateChannel(s, member, config, "test-onboarding")
}

func createPrivateChannel(s *discordgo.Session, member *discordgo.Member, config *models.GuildConfig, prefix string) (*discordgo.Channel, error) {
	guildId := member.GuildID
	botId := s.State.User.ID

	overwrites := []*discordgo.PermissionOverwrite{
		{
			// @everyone shares the guild's id
			ID:   guildId,
			Type: discordgo.PermissionOverwriteTypeRole,
			Deny: discordgo.PermissionViewChannel,
		},
		{
			ID:    member.User.ID,
			Type:  discordgo.PermissionOverwriteTypeMember,
			Allow: memberPermissions,
		},
		{
			ID:    botId,
			Type:  discordgo.PermissionOverwriteTypeMember,
			Allow: botPermissions,
		},
	}

	overwrites = append(overwrites, adminOverwrites(s, guildId, config)...)

	channel, err := s.GuildChannelCreateComplex(guildId, discordgo.GuildChannelCreateData{
		Name:                 fmt.Sprintf("%s-%s", prefix, utils.CleanUsername(member.User.Username)),
		Type:                 discordgo.ChannelTypeGuildText,
		Topic:                fmt.Sprintf("Private onboarding channel for %s (ID: %s)", member.User.String(), member.User.ID),
		PermissionOverwrites: overwrites,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create onboarding channel: %w", err)
	}

	log.Printf("Created private channel %v for %v", channel.Name, member.User.String())
	return channel, nil
}

// adminOverwrites lets the configured admin roles view the channel
// without being able to send into it. Unresolvable roles are skipped.
func adminOverwrites(s *discordgo.Session, guildId string, config *models.GuildConfig) []*discordgo.PermissionOverwrite {
	if config == nil {
		return nil
	}

	adminNames := config.AdminRoles()
	if len(adminNames) == 0 {
		return nil
	}

	guildRoles, err := s.GuildRoles(guildId)
	if err != nil {
		log.Printf("Could not fetch roles for admin channel visibility in %v: %v", guildId, err)
		return nil
	}

	byName := make(map[string]*discordgo.Role, len(guildRoles))
	for _, role := range guildRoles {
		byName[role.Name] = role
	}

	var overwrites []*discordgo.PermissionOverwrite
	for _, name := range adminNames {
		role, ok := byName[name]
		if !ok {
			continue
		}

		overwrites = append(overwrites, &discordgo.PermissionOverwrite{
			ID:    role.ID,
			Type:  discordgo.PermissionOverwriteTypeRole,
			Allow: adminViewPermissions,
			Deny:  discordgo.PermissionSendMessages,
		})
	}

	return overwrites
}

// SendWelcomeMessage greets the member inside their private channel,
// with a rendered welcome card when drawing succeeds.
func SendWelcomeMessage(s *discordgo.Session, channel *discordgo.Channel, member *discordgo.Member, guildName string, isTest bool) {
	message := fmt.Sprintf("<@%s> 👋 Hi %s! Welcome!\n\nThis is your private onboarding channel. Only you and I can see these messages.\n\nI'll ask you a few simple questions to get you set up. Just reply with your answers and we'll get you onboarded quickly!", member.User.ID, member.User.Username)
	if isTest {
		message = fmt.Sprintf("<@%s> 🧪 This is a test onboarding channel. The questions below behave exactly like the real flow, but no roles will change.", member.User.ID)
	}

	var files []*discordgo.File

	card, err := cards.WelcomeCard(member.User.Username, guildName)
	if err != nil {
		log.Printf("Could not render welcome card for %v: %v", member.User.String(), err)
	} else {
		files = append(files, &discordgo.File{
			Name:        "welcome.png",
			ContentType: "image/png",
			Reader:      card,
		})
	}

	_, err = s.ChannelMessageSendComplex(channel.ID, &discordgo.MessageSend{
		Content: message,
		Files:   files,
	})
	if err != nil {
		log.Printf("Error sending welcome message for %v: %v", member.User.String(), err)
	}
}
