package handlers

import (
	"testing"

	"vaulty/bot/models"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
)

func adminTestRoles() []*discordgo.Role {
	return []*discordgo.Role{
		{ID: "role-mod", Name: "Moderator"},
		{ID: "role-team", Name: "Core Team"},
		{ID: "role-member", Name: "Member"},
	}
}

func memberWithRoles(userId string, roleIds ...string) *discordgo.Member {
	return &discordgo.Member{
		User:  &discordgo.User{ID: userId},
		Roles: roleIds,
	}
}

func TestIsAdminServerOwner(t *testing.T) {
	member := memberWithRoles("user-1")

	allowed, reason := IsAdmin(member, "user-1", adminTestRoles(), nil)

	assert.True(t, allowed)
	assert.Equal(t, "Server Owner", reason)
}

func TestIsAdminAdministratorPermission(t *testing.T) {
	member := memberWithRoles("user-1")
	member.Permissions = discordgo.PermissionAdministrator

	allowed, reason := IsAdmin(member, "someone-else", adminTestRoles(), nil)

	assert.True(t, allowed)
	assert.Equal(t, "Administrator Permission", reason)
}

func TestIsAdminCommonRoleFallback(t *testing.T) {
	member := memberWithRoles("user-1", "role-mod")

	allowed, reason := IsAdmin(member, "someone-else", adminTestRoles(), nil)

	assert.True(t, allowed)
	assert.Equal(t, "Admin Role: Moderator", reason)
}

func TestIsAdminConfiguredRoles(t *testing.T) {
	config := &models.GuildConfig{}
	config.SetAdminRoles([]string{"Core Team"})

	member := memberWithRoles("user-1", "role-team")
	allowed, reason := IsAdmin(member, "someone-else", adminTestRoles(), config)

	assert.True(t, allowed)
	assert.Equal(t, "Admin Role: Core Team", reason)
}

// Configuring admin roles replaces the common-name fallback entirely.
func TestIsAdminConfiguredRolesExcludeCommonNames(t *testing.T) {
	config := &models.GuildConfig{}
	config.SetAdminRoles([]string{"Core Team"})

	member := memberWithRoles("user-1", "role-mod")
	allowed, _ := IsAdmin(member, "someone-else", adminTestRoles(), config)

	assert.False(t, allowed)
}

func TestIsAdminCaseInsensitiveRoleMatch(t *testing.T) {
	config := &models.GuildConfig{}
	config.SetAdminRoles([]string{"core team"})

	member := memberWithRoles("user-1", "role-team")
	allowed, _ := IsAdmin(member, "someone-else", adminTestRoles(), config)

	assert.True(t, allowed)
}

func TestIsAdminRegularMember(t *testing.T) {
	member := memberWithRoles("user-1", "role-member")

	allowed, reason := IsAdmin(member, "someone-else", adminTestRoles(), nil)

	assert.False(t, allowed)
	assert.Equal(t, "No admin permissions found", reason)
}

func TestIsAdminNilMember(t *testing.T) {
	allowed, _ := IsAdmin(nil, "owner", adminTestRoles(), nil)
	assert.False(t, allowed)
}

func TestMemberHasRoleNamed(t *testing.T) {
	member := memberWithRoles("user-1", "role-member")

	assert.True(t, memberHasRoleNamed(member, adminTestRoles(), "Member"))
	assert.True(t, memberHasRoleNamed(member, adminTestRoles(), "member"))
	assert.False(t, memberHasRoleNamed(member, adminTestRoles(), "Moderator"))
}
