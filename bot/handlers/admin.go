package handlers

import (
	"fmt"
	"strings"

	"vaulty/bot/models"

	"github.com/bwmarrin/discordgo"
)

// commonAdminRoleNames is the fallback used when a guild has not
// configured its own admin roles.
var commonAdminRoleNames = []string{
	"owner", "admin", "administrator", "mod", "moderator", "staff", "helper", "help",
}

// IsAdmin is the single capability check used by every configuration
// command: server owner, Administrator permission, or a configured (or
// common) admin role name. The reason names whichever rule matched.
func IsAdmin(member *discordgo.Member, ownerId string, guildRoles []*discordgo.Role, config *models.GuildConfig) (bool, string) {
	if member == nil || member.User == nil {
		return false, "No member information"
	}

	if ownerId != "" && member.User.ID == ownerId {
		return true, "Server Owner"
	}

	if member.Permissions&discordgo.PermissionAdministrator != 0 {
		return true, "Administrator Permission"
	}

	adminNames := commonAdminRoleNames
	if config != nil {
		if configured := config.AdminRoles(); len(configured) > 0 {
			adminNames = configured
		}
	}

	memberRoleNames := roleNames(member, guildRoles)

	for _, name := range memberRoleNames {
		for _, adminName := range adminNames {
			if strings.EqualFold(name, adminName) {
				return true, fmt.Sprintf("Admin Role: %s", name)
			}
		}
	}

	return false, "No admin permissions found"
}

func roleNames(member *discordgo.Member, guildRoles []*discordgo.Role) []string {
	byId := make(map[string]string, len(guildRoles))
	for _, role := range guildRoles {
		byId[role.ID] = role.Name
	}

	names := make([]string, 0, len(member.Roles))
	for _, roleId := range member.Roles {
		if name, ok := byId[roleId]; ok {
			names = append(names, name)
		}
	}

	return names
}

// checkAdmin resolves the guild context for IsAdmin from the state
// cache, falling back to the API.
func checkAdmin(s *discordgo.Session, i *discordgo.InteractionCreate, config *models.GuildConfig) (bool, string) {
	ownerId := ""
	var guildRoles []*discordgo.Role

	if guild, err := s.State.Guild(i.GuildID); err == nil {
		ownerId = guild.OwnerID
		guildRoles = guild.Roles
	} else {
		if guild, err := s.Guild(i.GuildID); err == nil {
			ownerId = guild.OwnerID
		}
		if fetched, err := s.GuildRoles(i.GuildID); err == nil {
			guildRoles = fetched
		}
	}

	return IsAdmin(i.Member, ownerId, guildRoles, config)
}

// memberHasRoleNamed reports whether the member holds a role with the
// given name, used to let users holding the welcome role run /onboard.
func memberHasRoleNamed(member *discordgo.Member, guildRoles []*discordgo.Role, roleName string) bool {
	for _, name := range roleNames(member, guildRoles) {
		if strings.EqualFold(name, roleName) {
			return true
		}
	}
	return false
}
