package discord

import (
	"fmt"
	"sort"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/maruel/natural"
	"pkg.classd.app/classd/internal/storage/model"
	"pkg.classd.app/classd/internal/util"
)

const (
	classMenuButtonID = "class_menu_button"
	classMenuIDPrefix = "class_menu_button_"

	// Discord caps select menus at 25 options each.
	menuPageSize = 25
)

func isClassMenuID(customID string) bool {
	return strings.HasPrefix(customID, classMenuIDPrefix)
}

// sortClasses orders classes by a natural comparison on name, so that
// "Class 2" sorts before "Class 10".
func sortClasses(classes []*model.Class) {
	sort.Slice(classes, func(i, j int) bool {
		return natural.Less(classes[i].Name, classes[j].Name)
	})
}

// buildClassMenu assembles the membership-selection component tree for
// a member: one option per class (pre-checked when the member holds the
// class role), paginated into select menus of at most 25 options, each
// allowing zero to page-size selections.
func buildClassMenu(classes []*model.Class, memberRoles []string) []discordgo.MessageComponent {
	sortClasses(classes)
	held := newStringSet(memberRoles)

	options := make([]discordgo.SelectMenuOption, len(classes))
	for i, c := range classes {
		options[i] = discordgo.SelectMenuOption{
			Label:   c.Name,
			Value:   c.Role,
			Default: held.Contains(c.Role),
		}
	}

	var rows []discordgo.MessageComponent
	for page := 0; page*menuPageSize < len(options); page++ {
		chunk := options[page*menuPageSize : min((page+1)*menuPageSize, len(options))]
		minValues := 0
		rows = append(rows, discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.SelectMenu{
					MenuType:  discordgo.StringSelectMenu,
					CustomID:  fmt.Sprintf("%s%d", classMenuIDPrefix, page),
					MinValues: &minValues,
					MaxValues: len(chunk),
					Options:   chunk,
				},
			},
		})
	}
	return rows
}

// onClassMenuButton renders the class menu for the clicking member as
// an ephemeral response.
func (d *Discord) onClassMenuButton(i *discordgo.InteractionCreate) {
	if i.Member == nil || i.GuildID == "" {
		d.logger.Errorf("Error handling %s: %s", classMenuButtonID, ErrNoServer)
		return
	}

	classes, err := d.listClasses(i.GuildID)
	if err != nil {
		d.logger.Errorf("Error handling %s: %s", classMenuButtonID, err)
		return
	}

	if err := d.session.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content:    "Select the classes you are taking:",
			Flags:      discordgo.MessageFlagsEphemeral,
			Components: buildClassMenu(classes, i.Member.Roles),
		},
	}); err != nil {
		d.logger.Errorf("Error handling %s: %s", classMenuButtonID, err)
	}
}

// newMemberRoles computes a member's next role set from one submitted
// select menu: drop every role the menu could have toggled, then add
// back exactly what is selected now. Subtraction is scoped to the shown
// roles so that roles belonging to other menu pages stay untouched.
func newMemberRoles(current, shown, selected []string) []string {
	return newStringSet(current).
		Difference(newStringSet(shown)).
		Union(newStringSet(selected)).
		Values()
}

// onClassMenuSubmit applies a select menu submission as a single
// member-edit. The shown role set is recovered from the submitted
// message's own component tree, so concurrently open menus need no
// cross-instance coordination.
func (d *Discord) onClassMenuSubmit(i *discordgo.InteractionCreate) {
	data := i.MessageComponentData()

	// The user sees an error either way if this fails, so carry on.
	_ = d.session.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredMessageUpdate,
	})

	if i.Member == nil || i.GuildID == "" {
		d.logger.Errorf("Error handling %s: %s", data.CustomID, ErrNoServer)
		return
	}

	menu := findSelectMenu(i.Message.Components, data.CustomID)
	if menu == nil {
		d.logger.Errorf("Error handling %s: could not find matching select menu", data.CustomID)
		return
	}

	shown := make([]string, len(menu.Options))
	for idx, o := range menu.Options {
		// Values are role IDs this program generated; anything else is
		// a programming error.
		util.MustParseSnowflake(o.Value)
		shown[idx] = o.Value
	}
	for _, v := range data.Values {
		util.MustParseSnowflake(v)
	}

	roles := newMemberRoles(i.Member.Roles, shown, data.Values)
	if _, err := d.session.GuildMemberEdit(i.GuildID, i.Member.User.ID, &discordgo.GuildMemberParams{
		Roles: &roles,
	}); err != nil {
		d.logger.Errorf("Error handling %s: %s", data.CustomID, err)
	}
}

// findSelectMenu walks a message's action rows for the select menu with
// the given custom ID.
func findSelectMenu(components []discordgo.MessageComponent, customID string) *discordgo.SelectMenu {
	for _, row := range components {
		r, ok := row.(*discordgo.ActionsRow)
		if !ok {
			continue
		}
		for _, c := range r.Components {
			if m, ok := c.(*discordgo.SelectMenu); ok && m.CustomID == customID {
				return m
			}
		}
	}
	return nil
}
