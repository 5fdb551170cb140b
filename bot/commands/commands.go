package commands

import "github.com/bwmarrin/discordgo"

var noDM = false
var adminPermission int64 = discordgo.PermissionAdministrator

var Commands = []*discordgo.ApplicationCommand{
	&pingCommand,
	&onboardCommand,
	&testOnboardCommand,
	&serverSetupCommand,
	&serverStatusCommand,
	&serverConfigCommand,
	&listOnboardingCommand,
	&cleanupOnboardingCommand,
	&restartOnboardingCommand,
}

var pingCommand = discordgo.ApplicationCommand{
	Name:        "ping",
	Description: "Check that the bot is alive",
}

var onboardCommand = discordgo.ApplicationCommand{
	Name:         "onboard",
	Description:  "Start interactive onboarding process",
	DMPermission: &noDM,
}

var testOnboardCommand = discordgo.ApplicationCommand{
	Name:                     "test-onboard",
	Description:              "Run the onboarding flow in test mode (no role changes)",
	DMPermission:             &noDM,
	DefaultMemberPermissions: &adminPermission,
}

var serverSetupCommand = discordgo.ApplicationCommand{
	Name:                     "server-setup",
	Description:              "Configure this server for onboarding",
	DMPermission:             &noDM,
	DefaultMemberPermissions: &adminPermission,
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionBoolean,
			Name:        "reset",
			Description: "Reconfigure while keeping the existing sheet tab binding",
			Required:    false,
		},
	},
}

var serverStatusCommand = discordgo.ApplicationCommand{
	Name:                     "server-status",
	Description:              "Show configuration health for this server",
	DMPermission:             &noDM,
	DefaultMemberPermissions: &adminPermission,
}

var listOnboardingCommand = discordgo.ApplicationCommand{
	Name:                     "list-onboarding",
	Description:              "List active onboarding sessions",
	DMPermission:             &noDM,
	DefaultMemberPermissions: &adminPermission,
}

var cleanupOnboardingCommand = discordgo.ApplicationCommand{
	Name:                     "cleanup-onboarding",
	Description:              "Clear a user's stuck onboarding session",
	DMPermission:             &noDM,
	DefaultMemberPermissions: &adminPermission,
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "user",
			Description: "User whose session should be cleared",
			Required:    true,
		},
	},
}

var restartOnboardingCommand = discordgo.ApplicationCommand{
	Name:                     "restart-onboarding",
	Description:              "Clear a user's session and start onboarding again",
	DMPermission:             &noDM,
	DefaultMemberPermissions: &adminPermission,
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "user",
			Description: "User to restart onboarding for",
			Required:    true,
		},
	},
}

var serverConfigCommand = discordgo.ApplicationCommand{
	Name:                     "server-config",
	Description:              "View and change onboarding configuration",
	DMPermission:             &noDM,
	DefaultMemberPermissions: &adminPermission,
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "view",
			Description: "Show the current configuration",
		},
		{
			Type:        discordgo.ApplicationCommandOptionSubCommandGroup,
			Name:        "set",
			Description: "Update configuration values",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "welcome_channel",
					Description: "Set the welcome channel",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionChannel,
							Name:        "channel",
							Description: "New welcome channel",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "audit_channel",
					Description: "Set the audit log channel",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionChannel,
							Name:        "channel",
							Description: "New audit channel",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "roles",
					Description: "Set the onboarding role names",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "onboarding",
							Description: "Role held while onboarding",
							Required:    false,
						},
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "onboarded",
							Description: "Role granted after onboarding",
							Required:    false,
						},
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "welcome",
							Description: "Role assigned on join",
							Required:    false,
						},
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "sample",
							Description: "Optional sample role",
							Required:    false,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "admin_roles",
					Description: "Set the comma-separated admin role names",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "roles",
							Description: "e.g. Owner,Admin,Moderator",
							Required:    true,
						},
					},
				},
			},
		},
		{
			Type:        discordgo.ApplicationCommandOptionSubCommandGroup,
			Name:        "question",
			Description: "Manage the onboarding question catalog",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "list",
					Description: "List all questions with their ids and order",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "add",
					Description: "Add a question to the end of the catalog",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "text",
							Description: "The prompt shown to the user",
							Required:    true,
						},
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "validation",
							Description: "Validation policy",
							Required:    false,
							Choices: []*discordgo.ApplicationCommandOptionChoice{
								{Name: "required", Value: "required"},
								{Name: "optional", Value: "optional"},
								{Name: "email", Value: "email"},
								{Name: "url", Value: "url"},
								{Name: "phone", Value: "phone"},
							},
						},
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "placeholder",
							Description: "Example answer shown to the user",
							Required:    false,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "edit",
					Description: "Edit a question",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "id",
							Description: "Question id (see /server-config question list)",
							Required:    true,
						},
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "text",
							Description: "New prompt text",
							Required:    false,
						},
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "validation",
							Description: "New validation policy",
							Required:    false,
						},
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "placeholder",
							Description: "New example answer",
							Required:    false,
						},
						{
							Type:        discordgo.ApplicationCommandOptionBoolean,
							Name:        "active",
							Description: "Include the question in the live flow",
							Required:    false,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "remove",
					Description: "Remove a question and renumber the rest",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "id",
							Description: "Question id to remove",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "reorder",
					Description: "Reorder questions by id",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "ids",
							Description: "Comma-separated question ids in the new order",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "reset",
					Description: "Replace the catalog with the default questions",
				},
			},
		},
	},
}
