package roles

import (
	"log"

	"vaulty/bot/models"

	"github.com/bwmarrin/discordgo"
)

// API is the slice of *discordgo.Session this package needs.
type API interface {
	GuildMember(guildID, userID string) (*discordgo.Member, error)
	GuildRoles(guildID string) ([]*discordgo.Role, error)
	GuildMemberRoleAdd(guildID, userID, roleID string) error
	GuildMemberRoleRemove(guildID, userID, roleID string) error
}

// Result lists the role names that were actually changed. Partial
// failures leave the slices shorter; they never abort the whole step.
type Result struct {
	Added   []string
	Removed []string
}

func findRoleByName(api API, guildId, roleName string) *discordgo.Role {
	guildRoles, err := api.GuildRoles(guildId)
	if err != nil {
		log.Printf("Could not fetch roles for guild %v: %v", guildId, err)
		return nil
	}

	for _, role := range guildRoles {
		if role.Name == roleName {
			return role
		}
	}

	return nil
}

func hasRole(member *discordgo.Member, roleId string) bool {
	for _, id := range member.Roles {
		if id == roleId {
			return true
		}
	}
	return false
}

// AssignInitialRole gives a freshly joined member the restricted
// welcome role so they only see the onboarding flow. A missing role is
// logged and skipped, not an error.
func AssignInitialRole(api API, member *discordgo.Member, config *models.GuildConfig) Result {
	roleName := "Onboarding"
	if config != nil && config.WelcomeRoleName != "" {
		roleName = config.WelcomeRoleName
	}

	guildId := member.GuildID
	role := findRoleByName(api, guildId, roleName)
	if role == nil {
		log.Printf("Onboarding role %q not found in guild %v. Skipping auto-role assignment.", roleName, guildId)
		return Result{}
	}

	if hasRole(member, role.ID) {
		return Result{Added: []string{role.Name}}
	}

	if err := api.GuildMemberRoleAdd(guildId, member.User.ID, role.ID); err != nil {
		log.Printf("Error assigning initial role to %v: %v", member.User.String(), err)
		return Result{}
	}

	log.Printf("Assigned onboarding role %q to %v in guild %v", roleName, member.User.String(), guildId)
	return Result{Added: []string{role.Name}}
}

// AssignOnboardingRoles runs the completion role swap: remove the
// onboarding role if held, add the onboarded role, and optionally add
// the sample role. Unresolvable roles are reported as warnings and the
// rest of the swap still happens.
func AssignOnboardingRoles(api API, guildId, userId string, requestedSample bool, config *models.GuildConfig) Result {
	if config == nil || config.OnboardingRoleName == "" || config.OnboardedRoleName == "" {
		log.Printf("Missing role configuration for guild %v. Cannot complete onboarding role assignment.", guildId)
		return Result{}
	}

	member, err := api.GuildMember(guildId, userId)
	if err != nil {
		log.Printf("Could not fetch member %v in guild %v: %v", userId, guildId, err)
		return Result{}
	}

	onboardingRole := findRoleByName(api, guildId, config.OnboardingRoleName)
	if onboardingRole == nil {
		log.Printf("Onboarding role %q not found in guild %v", config.OnboardingRoleName, guildId)
	}

	onboardedRole := findRoleByName(api, guildId, config.OnboardedRoleName)
	if onboardedRole == nil {
		log.Printf("Onboarded role %q not found in guild %v", config.OnboardedRoleName, guildId)
	}

	var sampleRole *discordgo.Role
	if requestedSample && config.SampleRoleName != "" {
		sampleRole = findRoleByName(api, guildId, config.SampleRoleName)
		if sampleRole == nil {
			log.Printf("Sample role %q not found in guild %v", config.SampleRoleName, guildId)
		}
	}

	var result Result

	if onboardedRole != nil && !hasRole(member, onboardedRole.ID) {
		if err := api.GuildMemberRoleAdd(guildId, userId, onboardedRole.ID); err != nil {
			log.Printf("Could not add role %q to %v: %v", onboardedRole.Name, member.User.String(), err)
		} else {
			result.Added = append(result.Added, onboardedRole.Name)
		}
	}

	if sampleRole != nil && !hasRole(member, sampleRole.ID) {
		if err := api.GuildMemberRoleAdd(guildId, userId, sampleRole.ID); err != nil {
			log.Printf("Could not add role %q to %v: %v", sampleRole.Name, member.User.String(), err)
		} else {
			result.Added = append(result.Added, sampleRole.Name)
		}
	}

	if onboardingRole != nil && hasRole(member, onboardingRole.ID) {
		if err := api.GuildMemberRoleRemove(guildId, userId, onboardingRole.ID); err != nil {
			log.Printf("Could not remove role %q from %v: %v", onboardingRole.Name, member.User.String(), err)
		} else {
			result.Removed = append(result.Removed, onboardingRole.Name)
		}
	}

	if len(result.Added) > 0 {
		log.Printf("Added roles to %v: %v", member.User.String(), result.Added)
	}
	if len(result.Removed) > 0 {
		log.Printf("Removed roles from %v: %v", member.User.String(), result.Removed)
	}

	return result
}
