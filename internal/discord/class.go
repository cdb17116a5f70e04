package discord

import (
	"fmt"
	"sort"
	"strings"

	"github.com/bwmarrin/discordgo"
	"golang.org/x/sync/errgroup"
	"pkg.classd.app/classd/internal/storage/model"
)

// getOrCreateServer fetches the guild's settings record, inserting a
// default one on first access. Two racing first accesses both build the
// same default record; the unique server_id index rejects the second
// insert and the loser re-reads.
func (d *Discord) getOrCreateServer(guildID string) (*model.Server, error) {
	server, err := model.FindServer(d.ctx, d.storage.Servers(), guildID)
	if err != nil {
		return nil, err
	}
	if server != nil {
		return server, nil
	}

	server = model.NewServer(guildID)
	if err := model.InsertServer(d.ctx, d.storage.Servers(), server); err != nil {
		if model.IsDuplicateKey(err) {
			server, err = model.FindServer(d.ctx, d.storage.Servers(), guildID)
			if err != nil {
				return nil, err
			}
			return ensureServer(server, guildID)
		}
		return nil, err
	}
	return server, nil
}

// ensureServer guards the duplicate-key re-read: servers are never
// deleted, so a miss right after a conflicting insert means the record
// vanished mid-operation.
func ensureServer(server *model.Server, guildID string) (*model.Server, error) {
	if server == nil {
		return nil, fmt.Errorf("no server record for guild %s after conflicting insert", guildID)
	}
	return server, nil
}

// setRefrole records the role under which new class roles are inserted
// in the guild's role hierarchy.
func (d *Discord) setRefrole(guildID, roleID string) error {
	server, err := d.getOrCreateServer(guildID)
	if err != nil {
		return err
	}

	roles, err := d.session.GuildRoles(guildID)
	if err != nil {
		return err
	}
	if findRole(roles, roleID) == nil {
		return ErrInvalidRole
	}

	server.Refrole = roleID
	prior, err := model.ReplaceServer(d.ctx, d.storage.Servers(), server)
	if err != nil {
		return err
	}
	if prior == nil {
		return ErrNoServer
	}
	return nil
}

func (d *Discord) listClasses(guildID string) ([]*model.Class, error) {
	return model.ListClasses(d.ctx, d.storage.Classes(), guildID)
}

func (d *Discord) findClassByRole(roleID string) (*model.Class, error) {
	return model.FindClassByRole(d.ctx, d.storage.Classes(), roleID)
}

// createClass builds the full platform object set for a new class (a
// mentionable role at the refrole's hierarchy position, a category
// visible only to that role, three text channels and a voice channel)
// and persists the record. There is no rollback: objects created before
// a failure are left for manual cleanup.
func (d *Discord) createClass(guildID, name string) (*model.Class, error) {
	name = strings.TrimSpace(name)

	server, err := d.getOrCreateServer(guildID)
	if err != nil {
		return nil, err
	}
	if server.Refrole == "" {
		return nil, ErrNoRefrole
	}

	if existing, err := model.FindClassByName(d.ctx, d.storage.Classes(), guildID, name); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, ErrClassExists
	}

	roles, err := d.session.GuildRoles(guildID)
	if err != nil {
		return nil, err
	}
	for _, r := range roles {
		if strings.EqualFold(r.Name, name) {
			return nil, ErrRoleExists
		}
	}

	channels, err := d.session.GuildChannels(guildID)
	if err != nil {
		return nil, err
	}
	for _, c := range channels {
		if c.Type == discordgo.ChannelTypeGuildCategory && strings.EqualFold(c.Name, name) {
			return nil, ErrCategoryExists
		}
	}

	refrole := findRole(roles, server.Refrole)
	if refrole == nil {
		return nil, ErrInvalidRefrole
	}

	mentionable := true
	role, err := d.session.GuildRoleCreate(guildID, &discordgo.RoleParams{
		Name:        name,
		Mentionable: &mentionable,
	})
	if err != nil {
		return nil, fmt.Errorf("couldn't create class role: %w", err)
	}
	// Role creation params carry no position, so place the role at the
	// refrole's level with a follow-up reorder.
	if _, err := d.session.GuildRoleReorder(guildID, []*discordgo.Role{
		{ID: role.ID, Position: refrole.Position},
	}); err != nil {
		return nil, fmt.Errorf("couldn't position class role: %w", err)
	}

	category, err := d.session.GuildChannelCreateComplex(guildID, discordgo.GuildChannelCreateData{
		Name: name,
		Type: discordgo.ChannelTypeGuildCategory,
		PermissionOverwrites: []*discordgo.PermissionOverwrite{
			{
				// @everyone shares its ID with the guild.
				ID:   guildID,
				Type: discordgo.PermissionOverwriteTypeRole,
				Deny: discordgo.PermissionViewChannel,
			},
			{
				ID:    role.ID,
				Type:  discordgo.PermissionOverwriteTypeRole,
				Allow: discordgo.PermissionViewChannel,
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("couldn't create class category: %w", err)
	}

	short := model.ShortName(name)
	var general, homework, resources, voice *discordgo.Channel
	var g errgroup.Group
	g.Go(func() (err error) {
		general, err = d.createClassChannel(guildID, fmt.Sprintf("general—〈%s〉", short), discordgo.ChannelTypeGuildText, category.ID)
		return
	})
	g.Go(func() (err error) {
		homework, err = d.createClassChannel(guildID, fmt.Sprintf("homework-help—〈%s〉", short), discordgo.ChannelTypeGuildText, category.ID)
		return
	})
	g.Go(func() (err error) {
		resources, err = d.createClassChannel(guildID, fmt.Sprintf("resources—〈%s〉", short), discordgo.ChannelTypeGuildText, category.ID)
		return
	})
	g.Go(func() (err error) {
		voice, err = d.createClassChannel(guildID, fmt.Sprintf("General (%s)", short), discordgo.ChannelTypeGuildVoice, category.ID)
		return
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("couldn't create class channels: %w", err)
	}

	class := &model.Class{
		ServerID:      guildID,
		Name:          name,
		ShortName:     short,
		Role:          role.ID,
		Category:      category.ID,
		TextChannels:  []string{general.ID, homework.ID, resources.ID},
		VoiceChannels: []string{voice.ID},
	}
	if err := d.insertClass(class); err != nil {
		return nil, err
	}
	return class, nil
}

func (d *Discord) createClassChannel(guildID, name string, kind discordgo.ChannelType, categoryID string) (*discordgo.Channel, error) {
	return d.session.GuildChannelCreateComplex(guildID, discordgo.GuildChannelCreateData{
		Name:     name,
		Type:     kind,
		ParentID: categoryID,
	})
}

// trackClass adopts pre-existing platform objects into a new class
// record without creating anything. The channel set is the union of the
// explicitly supplied channels and every live channel parented to the
// category.
func (d *Discord) trackClass(guildID, name, roleID, categoryID string, explicitChannels []string) (*model.Class, error) {
	server, err := d.getOrCreateServer(guildID)
	if err != nil {
		return nil, err
	}

	roles, err := d.session.GuildRoles(guildID)
	if err != nil {
		return nil, err
	}
	role := findRole(roles, roleID)
	if role == nil {
		return nil, ErrInvalidRole
	}

	name = strings.TrimSpace(name)
	if name == "" {
		name = role.Name
	}

	if existing, err := model.FindClassByName(d.ctx, d.storage.Classes(), guildID, name); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, ErrClassExists
	}
	if existing, err := model.FindClassByRole(d.ctx, d.storage.Classes(), role.ID); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, &RoleInUseError{Name: existing.Name}
	}

	live, err := d.session.GuildChannels(guildID)
	if err != nil {
		return nil, err
	}
	channels := make([]*discordgo.Channel, 0, len(explicitChannels))
	for _, id := range explicitChannels {
		c := findChannel(live, id)
		if c == nil {
			return nil, &InvalidChannelError{ChannelID: id}
		}
		channels = append(channels, c)
	}
	for _, c := range live {
		if c.ParentID == categoryID {
			channels = append(channels, c)
		}
	}
	text, voice, err := classifyChannels(channels)
	if err != nil {
		return nil, err
	}

	class := &model.Class{
		ServerID:      server.ServerID,
		Name:          name,
		ShortName:     model.ShortName(name),
		Role:          role.ID,
		Category:      categoryID,
		TextChannels:  text,
		VoiceChannels: voice,
	}
	if err := d.insertClass(class); err != nil {
		return nil, err
	}
	return class, nil
}

// insertClass persists a class record, mapping a unique-index conflict
// onto the matching validation error. The pre-insert checks give the
// friendlier message; the index closes the check-then-act race.
func (d *Discord) insertClass(class *model.Class) error {
	return mapInsertConflict(model.InsertClass(d.ctx, d.storage.Classes(), class), func() *model.Class {
		existing, err := model.FindClassByRole(d.ctx, d.storage.Classes(), class.Role)
		if err != nil {
			return nil
		}
		return existing
	})
}

// mapInsertConflict converts a unique-index insert rejection into the
// matching validation error: the role conflict when byRole resolves the
// class already bound to the role, the name conflict otherwise. Other
// errors pass through untouched.
func mapInsertConflict(err error, byRole func() *model.Class) error {
	if err == nil || !model.IsDuplicateKey(err) {
		return err
	}
	if existing := byRole(); existing != nil {
		return &RoleInUseError{Name: existing.Name}
	}
	return ErrClassExists
}

// untrackClass removes the class record without touching platform
// objects. Returns the class name and whether a record was actually
// deleted, so callers can distinguish "already gone" from "removed".
func (d *Discord) untrackClass(class *model.Class) (string, bool, error) {
	deleted, err := model.DeleteClassesByRole(d.ctx, d.storage.Classes(), class.Role)
	if err != nil {
		return "", false, err
	}
	return class.Name, deleted > 0, nil
}

// deleteClass untracks the class and then attempts, independently, to
// delete every text channel, every voice channel, the category and
// finally the role. Individual platform failures — including a failed
// live-object listing — are collected rather than aborting the
// remaining deletions, so the database-removal result always reaches
// the caller; deletion is best-effort and maximally destructive.
func (d *Discord) deleteClass(guildID string, class *model.Class) (string, bool, []error, error) {
	name, removed, err := d.untrackClass(class)
	if err != nil {
		return "", false, nil, err
	}

	var failed []error

	if live, err := d.session.GuildChannels(guildID); err != nil {
		failed = append(failed, fmt.Errorf("couldn't list guild channels: %w", err))
	} else {
		ids := append(append([]string{}, class.TextChannels...), class.VoiceChannels...)
		ids = append(ids, class.Category)
		failed = append(failed, destroyChannels(ids, live, func(id string) error {
			_, err := d.session.ChannelDelete(id)
			return err
		})...)
	}

	if roles, err := d.session.GuildRoles(guildID); err != nil {
		failed = append(failed, fmt.Errorf("couldn't list guild roles: %w", err))
	} else {
		failed = append(failed, destroyRole(class.Role, roles, func(id string) error {
			return d.session.GuildRoleDelete(guildID, id)
		})...)
	}

	return name, removed, failed, nil
}

// destroyChannels deletes each channel in order, recording IDs that no
// longer resolve to a live channel as invalid instead of attempting
// them. A failed deletion never stops the remaining ones.
func destroyChannels(ids []string, live []*discordgo.Channel, deleteChannel func(id string) error) []error {
	var failed []error
	for _, id := range ids {
		if findChannel(live, id) == nil {
			failed = append(failed, &InvalidChannelError{ChannelID: id})
			continue
		}
		if err := deleteChannel(id); err != nil {
			failed = append(failed, err)
		}
	}
	return failed
}

// destroyRole deletes the class role, recording a role that is no
// longer live as invalid instead of attempting it.
func destroyRole(roleID string, roles []*discordgo.Role, deleteRole func(id string) error) []error {
	if findRole(roles, roleID) == nil {
		return []error{ErrInvalidRole}
	}
	if err := deleteRole(roleID); err != nil {
		return []error{err}
	}
	return nil
}

// classifyChannels de-duplicates channels by ID and partitions them
// into text and voice channel ID sets. Any channel of another type
// aborts with an error naming it.
func classifyChannels(channels []*discordgo.Channel) (text, voice []string, err error) {
	seen := make(map[string]struct{}, len(channels))
	for _, c := range channels {
		if _, dup := seen[c.ID]; dup {
			continue
		}
		seen[c.ID] = struct{}{}

		switch c.Type {
		case discordgo.ChannelTypeGuildText:
			text = append(text, c.ID)
		case discordgo.ChannelTypeGuildVoice:
			voice = append(voice, c.ID)
		default:
			return nil, nil, &InvalidChannelTypeError{ChannelID: c.ID}
		}
	}
	sort.Strings(text)
	sort.Strings(voice)
	return text, voice, nil
}

func findRole(roles []*discordgo.Role, id string) *discordgo.Role {
	for _, r := range roles {
		if r.ID == id {
			return r
		}
	}
	return nil
}

func findChannel(channels []*discordgo.Channel, id string) *discordgo.Channel {
	for _, c := range channels {
		if c.ID == id {
			return c
		}
	}
	return nil
}
