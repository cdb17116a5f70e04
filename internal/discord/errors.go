package discord

import (
	"errors"
	"fmt"
)

// Class command errors. These strings are surfaced verbatim to the
// invoking user as the actionable cause.
var (
	ErrNoRefrole      = errors.New("There is no refrole set for this server.")
	ErrInvalidRefrole = errors.New("The set refrole for this server is invalid.")
	ErrClassExists    = errors.New("Already tracking a class with the given name.")
	ErrRoleExists     = errors.New("A role with the given name already exists.")
	ErrCategoryExists = errors.New("A category with the given name already exists.")
	ErrNoServer       = errors.New("This command can only be run inside a server.")
	ErrInvalidRole    = errors.New("The given role does not exist in this server.")
	ErrInvalidClass   = errors.New("There is no class assigned to the given role.")
)

// InvalidChannelError reports a channel reference that does not resolve
// to a live channel in the guild.
type InvalidChannelError struct {
	ChannelID string
}

func (e *InvalidChannelError) Error() string {
	return fmt.Sprintf("The given channel <#%s> does not exist in this server.", e.ChannelID)
}

// InvalidChannelTypeError reports a channel that is neither a text nor
// a voice channel where one was required.
type InvalidChannelTypeError struct {
	ChannelID string
}

func (e *InvalidChannelTypeError) Error() string {
	return fmt.Sprintf("The given channel <#%s> is of an invalid type.", e.ChannelID)
}

// RoleInUseError reports a role already bound to another class.
type RoleInUseError struct {
	Name string
}

func (e *RoleInUseError) Error() string {
	return fmt.Sprintf("The given role is already being used for class %s.", e.Name)
}
