package discord

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
)

var commands = []*discordgo.ApplicationCommand{
	{
		Name:        "class",
		Description: "Manage and join the classes of this server.",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "list",
				Description: "List all classes of this server.",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionBoolean,
						Name:        "mention",
						Description: "Mention the class roles instead of printing their names.",
					},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "info",
				Description: "Show information about a class.",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionRole,
						Name:        "class",
						Description: "The role of the class.",
						Required:    true,
					},
					{
						Type:        discordgo.ApplicationCommandOptionBoolean,
						Name:        "mention",
						Description: "Mention the class role instead of printing its name.",
					},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "create",
				Description: "Create a new class with its role, category and channels.",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "name",
						Description: "The name of the new class.",
						Required:    true,
					},
				},
			},
			trackCommand(),
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "untrack",
				Description: "Stop tracking a class without deleting anything on Discord.",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionRole,
						Name:        "class",
						Description: "The role of the class.",
						Required:    true,
					},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "delete",
				Description: "Delete a class along with its role, category and channels.",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionRole,
						Name:        "class",
						Description: "The role of the class.",
						Required:    true,
					},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "menu",
				Description: "Post the self-service class menu button.",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionChannel,
						Name:        "channel",
						Description: "The channel to post the menu in, defaulting to the current one.",
						ChannelTypes: []discordgo.ChannelType{
							discordgo.ChannelTypeGuildText,
						},
					},
				},
			},
		},
	},
	{
		Name:        "config",
		Description: "Configure this server.",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionSubCommandGroup,
				Name:        "refrole",
				Description: "Manage the reference role new class roles are inserted under.",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionSubCommand,
						Name:        "set",
						Description: "Set the reference role.",
						Options: []*discordgo.ApplicationCommandOption{
							{
								Type:        discordgo.ApplicationCommandOptionRole,
								Name:        "role",
								Description: "The new reference role.",
								Required:    true,
							},
						},
					},
				},
			},
		},
	},
}

// trackCommand builds the track subcommand with its numbered optional
// channel slots. Discord has no variadic options, hence the slots; any
// channel already under the category is picked up implicitly anyway.
func trackCommand() *discordgo.ApplicationCommandOption {
	opts := []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionRole,
			Name:        "role",
			Description: "The existing role of the class.",
			Required:    true,
		},
		{
			Type:        discordgo.ApplicationCommandOptionChannel,
			Name:        "category",
			Description: "The existing category of the class.",
			Required:    true,
			ChannelTypes: []discordgo.ChannelType{
				discordgo.ChannelTypeGuildCategory,
			},
		},
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "name",
			Description: "The name of the class, defaulting to the role's name.",
		},
	}
	for n := 1; n <= 5; n++ {
		opts = append(opts, &discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionChannel,
			Name:        fmt.Sprintf("channel%d", n),
			Description: "An additional channel belonging to the class.",
			ChannelTypes: []discordgo.ChannelType{
				discordgo.ChannelTypeGuildText,
				discordgo.ChannelTypeGuildVoice,
			},
		})
	}
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionSubCommand,
		Name:        "track",
		Description: "Track an existing role, category and channels as a class.",
		Options:     opts,
	}
}

func (d *Discord) registerCommands(appID string) {
	for _, guildID := range d.config.guilds {
		if _, err := d.session.ApplicationCommandBulkOverwrite(appID, guildID, commands); err != nil {
			d.logger.Errorf("Failed to register commands for guild %s: %s.", guildID, err)
		}
	}
}

// onCommand resolves the invoked subcommand, runs it and reports its
// outcome (or user-actionable error) as an ephemeral reply. Store and
// platform transport errors are logged and surfaced generically.
func (d *Discord) onCommand(i *discordgo.InteractionCreate) {
	data := i.ApplicationCommandData()

	var run func(*discordgo.InteractionCreate, optionMap) (string, error)
	var opts optionMap
	admin := false

	switch data.Name {
	case "class":
		sub := data.Options[0]
		opts = mapOptions(sub.Options)
		switch sub.Name {
		case "list":
			run = d.commandClassList
		case "info":
			run = d.commandClassInfo
		case "create":
			run, admin = d.commandClassCreate, true
		case "track":
			run, admin = d.commandClassTrack, true
		case "untrack":
			run, admin = d.commandClassUntrack, true
		case "delete":
			run, admin = d.commandClassDelete, true
		case "menu":
			run, admin = d.commandClassMenu, true
		}
	case "config":
		group := data.Options[0]
		if group.Name == "refrole" && group.Options[0].Name == "set" {
			opts = mapOptions(group.Options[0].Options)
			run, admin = d.commandConfigRefrole, true
		}
	}
	if run == nil {
		return
	}

	if err := d.session.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Flags: discordgo.MessageFlagsEphemeral},
	}); err != nil {
		d.logger.Errorf("Failed to defer interaction response: %s.", err)
		return
	}

	var msg string
	switch {
	case i.GuildID == "" || i.Member == nil:
		msg = ErrNoServer.Error()
	case admin && i.Member.Permissions&discordgo.PermissionManageServer == 0:
		msg = "You need the Manage Server permission to run this command."
	default:
		var err error
		msg, err = run(i, opts)
		if err != nil {
			if isUserError(err) {
				msg = err.Error()
			} else {
				d.logger.Errorf("Failed to handle command: %s.", err)
				msg = "Something went wrong while running this command."
			}
		}
	}

	if _, err := d.session.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
		Content: &msg,
	}); err != nil {
		d.logger.Errorf("Failed to edit interaction response: %s.", err)
	}
}

type optionMap map[string]*discordgo.ApplicationCommandInteractionDataOption

func mapOptions(opts []*discordgo.ApplicationCommandInteractionDataOption) optionMap {
	m := make(optionMap, len(opts))
	for _, o := range opts {
		m[o.Name] = o
	}
	return m
}

// isUserError reports whether an error is part of the validation,
// configuration or referential taxonomy whose message is the actionable
// cause for the invoking user.
func isUserError(err error) bool {
	for _, sentinel := range []error{
		ErrNoRefrole, ErrInvalidRefrole, ErrClassExists, ErrRoleExists,
		ErrCategoryExists, ErrNoServer, ErrInvalidRole, ErrInvalidClass,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	var (
		invalidChannel     *InvalidChannelError
		invalidChannelType *InvalidChannelTypeError
		roleInUse          *RoleInUseError
	)
	return errors.As(err, &invalidChannel) || errors.As(err, &invalidChannelType) || errors.As(err, &roleInUse)
}

func (d *Discord) commandClassList(i *discordgo.InteractionCreate, opts optionMap) (string, error) {
	classes, err := d.listClasses(i.GuildID)
	if err != nil {
		return "", err
	}
	if len(classes) == 0 {
		return "No classes found for this server.", nil
	}

	mention := false
	if o, ok := opts["mention"]; ok {
		mention = o.BoolValue()
	}

	sortClasses(classes)
	names := make([]string, len(classes))
	for idx, c := range classes {
		if mention {
			names[idx] = fmt.Sprintf("<@&%s>", c.Role)
		} else {
			names[idx] = c.Name
		}
	}
	return fmt.Sprintf("Found %d classes: %s", len(classes), strings.Join(names, ", ")), nil
}

func (d *Discord) commandClassInfo(i *discordgo.InteractionCreate, opts optionMap) (string, error) {
	roleID := opts["class"].Value.(string)
	class, err := d.findClassByRole(roleID)
	if err != nil {
		return "", err
	}
	if class == nil {
		return "", ErrInvalidClass
	}

	var role string
	if o, ok := opts["mention"]; ok && o.BoolValue() {
		role = fmt.Sprintf("<@&%s>", class.Role)
	} else {
		roles, err := d.session.GuildRoles(i.GuildID)
		if err != nil {
			return "", err
		}
		r := findRole(roles, class.Role)
		if r == nil {
			return "", ErrInvalidRole
		}
		role = fmt.Sprintf("`%s`", r.Name)
	}

	channels, err := d.session.GuildChannels(i.GuildID)
	if err != nil {
		return "", err
	}
	category := findChannel(channels, class.Category)
	if category == nil {
		return "", &InvalidChannelError{ChannelID: class.Category}
	}
	if category.Type != discordgo.ChannelTypeGuildCategory {
		return "", &InvalidChannelTypeError{ChannelID: class.Category}
	}

	return fmt.Sprintf(
		"**Class info:**\n"+
			"> Name: \"%s\"\n"+
			"> Short name: \"%s\"\n"+
			"> Role: %s\n"+
			"> Category: `%s`\n"+
			"> Text Channels: %s\n"+
			"> Voice Channels: %s",
		class.Name,
		class.ShortName,
		role,
		category.Name,
		mentionChannels(class.TextChannels),
		mentionChannels(class.VoiceChannels),
	), nil
}

func mentionChannels(ids []string) string {
	mentions := make([]string, len(ids))
	for i, id := range ids {
		mentions[i] = fmt.Sprintf("<#%s>", id)
	}
	return strings.Join(mentions, ", ")
}

func (d *Discord) commandClassCreate(i *discordgo.InteractionCreate, opts optionMap) (string, error) {
	name := opts["name"].StringValue()
	class, err := d.createClass(i.GuildID, name)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Created new class \"%s\"", class.Name), nil
}

func (d *Discord) commandClassTrack(i *discordgo.InteractionCreate, opts optionMap) (string, error) {
	roleID := opts["role"].Value.(string)
	categoryID := opts["category"].Value.(string)

	var name string
	if o, ok := opts["name"]; ok {
		name = o.StringValue()
	}

	var channels []string
	for n := 1; n <= 5; n++ {
		if o, ok := opts[fmt.Sprintf("channel%d", n)]; ok {
			channels = append(channels, o.Value.(string))
		}
	}

	class, err := d.trackClass(i.GuildID, name, roleID, categoryID, channels)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Now tracking class \"%s\"", class.Name), nil
}

func (d *Discord) commandClassUntrack(i *discordgo.InteractionCreate, opts optionMap) (string, error) {
	class, err := d.findClassByRole(opts["class"].Value.(string))
	if err != nil {
		return "", err
	}
	if class == nil {
		return "", ErrInvalidClass
	}

	name, removed, err := d.untrackClass(class)
	if err != nil {
		return "", err
	}
	if !removed {
		return "", ErrInvalidClass
	}
	return fmt.Sprintf("No longer tracking class %s.", name), nil
}

func (d *Discord) commandClassDelete(i *discordgo.InteractionCreate, opts optionMap) (string, error) {
	class, err := d.findClassByRole(opts["class"].Value.(string))
	if err != nil {
		return "", err
	}
	if class == nil {
		return "", ErrInvalidClass
	}

	name, removed, failed, err := d.deleteClass(i.GuildID, class)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	if removed {
		fmt.Fprintf(&b, "Deleted class \"%s\".", name)
	} else {
		b.WriteString("Failed to delete the class.")
	}
	if len(failed) > 0 {
		b.WriteString("\nErrors:")
		for _, e := range failed {
			fmt.Fprintf(&b, "\n- %s", e)
		}
	}
	return b.String(), nil
}

func (d *Discord) commandClassMenu(i *discordgo.InteractionCreate, opts optionMap) (string, error) {
	channelID := i.ChannelID
	if o, ok := opts["channel"]; ok {
		channelID = o.Value.(string)
	}

	channels, err := d.session.GuildChannels(i.GuildID)
	if err != nil {
		return "", err
	}
	channel := findChannel(channels, channelID)
	if channel == nil {
		return "", &InvalidChannelError{ChannelID: channelID}
	}
	if channel.Type != discordgo.ChannelTypeGuildText {
		return "", &InvalidChannelTypeError{ChannelID: channelID}
	}

	if _, err := d.session.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{
					discordgo.Button{
						CustomID: classMenuButtonID,
						Style:    discordgo.PrimaryButton,
						Label:    "Click here to choose classes!",
						Emoji:    discordgo.ComponentEmoji{Name: "📝"},
					},
				},
			},
		},
	}); err != nil {
		return "", err
	}
	return "Done!", nil
}

func (d *Discord) commandConfigRefrole(i *discordgo.InteractionCreate, opts optionMap) (string, error) {
	roleID := opts["role"].Value.(string)
	if err := d.setRefrole(i.GuildID, roleID); err != nil {
		return "", err
	}
	return fmt.Sprintf("<@&%s> is now the refrole for this server.", roleID), nil
}
