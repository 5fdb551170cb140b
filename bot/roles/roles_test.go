package roles

import (
	"fmt"
	"testing"

	"vaulty/bot/models"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
)

type fakeAPI struct {
	member     *discordgo.Member
	guildRoles []*discordgo.Role
	rolesErr   error

	added   []string
	removed []string
}

func (f *fakeAPI) GuildMember(guildID, userID string) (*discordgo.Member, error) {
	if f.member == nil {
		return nil, fmt.Errorf("member not found")
	}
	return f.member, nil
}

func (f *fakeAPI) GuildRoles(guildID string) ([]*discordgo.Role, error) {
	if f.rolesErr != nil {
		return nil, f.rolesErr
	}
	return f.guildRoles, nil
}

func (f *fakeAPI) GuildMemberRoleAdd(guildID, userID, roleID string) error {
	f.added = append(f.added, roleID)
	return nil
}

func (f *fakeAPI) GuildMemberRoleRemove(guildID, userID, roleID string) error {
	f.removed = append(f.removed, roleID)
	return nil
}

func standardRoles() []*discordgo.Role {
	return []*discordgo.Role{
		{ID: "role-onboarding", Name: "Onboarding"},
		{ID: "role-creator", Name: "Creator"},
		{ID: "role-verified", Name: "Verified"},
		{ID: "role-sample", Name: "Sample"},
	}
}

func standardConfig() *models.GuildConfig {
	return &models.GuildConfig{
		GuildId:            "guild-1",
		WelcomeRoleName:    "Onboarding",
		OnboardingRoleName: "Creator",
		OnboardedRoleName:  "Verified",
		SampleRoleName:     "Sample",
	}
}

func newMember(roleIds ...string) *discordgo.Member {
	return &discordgo.Member{
		GuildID: "guild-1",
		User:    &discordgo.User{ID: "user-1", Username: "khaby"},
		Roles:   roleIds,
	}
}

func TestAssignInitialRole(t *testing.T) {
	api := &fakeAPI{guildRoles: standardRoles()}

	result := AssignInitialRole(api, newMember(), standardConfig())

	assert.Equal(t, []string{"Onboarding"}, result.Added)
	assert.Equal(t, []string{"role-onboarding"}, api.added)
}

func TestAssignInitialRoleAlreadyHeld(t *testing.T) {
	api := &fakeAPI{guildRoles: standardRoles()}

	result := AssignInitialRole(api, newMember("role-onboarding"), standardConfig())

	assert.Equal(t, []string{"Onboarding"}, result.Added)
	assert.Empty(t, api.added)
}

func TestAssignInitialRoleMissingRole(t *testing.T) {
	api := &fakeAPI{guildRoles: []*discordgo.Role{}}

	result := AssignInitialRole(api, newMember(), standardConfig())

	assert.Empty(t, result.Added)
	assert.Empty(t, api.added)
}

func TestAssignInitialRoleDefaultsToOnboarding(t *testing.T) {
	api := &fakeAPI{guildRoles: standardRoles()}

	result := AssignInitialRole(api, newMember(), nil)

	assert.Equal(t, []string{"Onboarding"}, result.Added)
}

func TestAssignOnboardingRoles(t *testing.T) {
	api := &fakeAPI{guildRoles: standardRoles()}
	api.member = newMember("role-creator")

	result := AssignOnboardingRoles(api, "guild-1", "user-1", false, standardConfig())

	assert.Equal(t, []string{"Verified"}, result.Added)
	assert.Equal(t, []string{"Creator"}, result.Removed)
	assert.Equal(t, []string{"role-verified"}, api.added)
	assert.Equal(t, []string{"role-creator"}, api.removed)
}

func TestAssignOnboardingRolesWithSample(t *testing.T) {
	api := &fakeAPI{guildRoles: standardRoles()}
	api.member = newMember("role-creator")

	result := AssignOnboardingRoles(api, "guild-1", "user-1", true, standardConfig())

	assert.Equal(t, []string{"Verified", "Sample"}, result.Added)
	assert.Equal(t, []string{"role-verified", "role-sample"}, api.added)
}

func TestAssignOnboardingRolesIdempotent(t *testing.T) {
	api := &fakeAPI{guildRoles: standardRoles()}
	api.member = newMember("role-verified")

	result := AssignOnboardingRoles(api, "guild-1", "user-1", false, standardConfig())

	assert.Empty(t, result.Added)
	assert.Empty(t, result.Removed)
	assert.Empty(t, api.added)
	assert.Empty(t, api.removed)
}

func TestAssignOnboardingRolesMissingConfig(t *testing.T) {
	api := &fakeAPI{guildRoles: standardRoles()}
	api.member = newMember("role-creator")

	result := AssignOnboardingRoles(api, "guild-1", "user-1", false, nil)

	assert.Empty(t, result.Added)
	assert.Empty(t, api.added)
}

func TestAssignOnboardingRolesMemberFetchFails(t *testing.T) {
	api := &fakeAPI{guildRoles: standardRoles()}

	result := AssignOnboardingRoles(api, "guild-1", "user-1", false, standardConfig())

	assert.Empty(t, result.Added)
	assert.Empty(t, result.Removed)
}
