package discord

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"pkg.classd.app/classd/internal/storage/model"
)

// TestClassifyChannels_Partition verifies text and voice channels land
// in their respective sets.
func TestClassifyChannels_Partition(t *testing.T) {
	text, voice, err := classifyChannels([]*discordgo.Channel{
		{ID: "T1", Type: discordgo.ChannelTypeGuildText},
		{ID: "V1", Type: discordgo.ChannelTypeGuildVoice},
		{ID: "T2", Type: discordgo.ChannelTypeGuildText},
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"T1", "T2"}, text)
	assert.ElementsMatch(t, []string{"V1"}, voice)
}

// TestClassifyChannels_InvalidType verifies a channel that is neither
// text nor voice aborts the whole classification naming the channel.
func TestClassifyChannels_InvalidType(t *testing.T) {
	text, voice, err := classifyChannels([]*discordgo.Channel{
		{ID: "T1", Type: discordgo.ChannelTypeGuildText},
		{ID: "A1", Type: discordgo.ChannelTypeGuildNews},
	})
	require.Error(t, err)
	assert.Nil(t, text)
	assert.Nil(t, voice)

	var typeErr *InvalidChannelTypeError
	require.ErrorAs(t, err, &typeErr)
	assert.Equal(t, "A1", typeErr.ChannelID)
}

// TestClassifyChannels_Deduplicates verifies a channel supplied both
// explicitly and as a category child counts once.
func TestClassifyChannels_Deduplicates(t *testing.T) {
	text, voice, err := classifyChannels([]*discordgo.Channel{
		{ID: "T1", Type: discordgo.ChannelTypeGuildText},
		{ID: "T1", Type: discordgo.ChannelTypeGuildText},
		{ID: "V1", Type: discordgo.ChannelTypeGuildVoice},
		{ID: "V1", Type: discordgo.ChannelTypeGuildVoice},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"T1"}, text)
	assert.Equal(t, []string{"V1"}, voice)
}

// TestClassifyChannels_Empty verifies an empty input yields empty sets,
// not an error.
func TestClassifyChannels_Empty(t *testing.T) {
	text, voice, err := classifyChannels(nil)
	require.NoError(t, err)
	assert.Empty(t, text)
	assert.Empty(t, voice)
}

// TestIsUserError verifies the taxonomy split between user-actionable
// errors (reported verbatim) and transport errors (logged, generic).
func TestIsUserError(t *testing.T) {
	assert.True(t, isUserError(ErrNoRefrole))
	assert.True(t, isUserError(ErrClassExists))
	assert.True(t, isUserError(&RoleInUseError{Name: "Algebra"}))
	assert.True(t, isUserError(&InvalidChannelTypeError{ChannelID: "A1"}))
	assert.True(t, isUserError(&InvalidChannelError{ChannelID: "C1"}))

	assert.False(t, isUserError(assert.AnError))
}

// TestRoleInUseError_Message verifies the conflicting class name is
// part of the reported cause.
func TestRoleInUseError_Message(t *testing.T) {
	err := &RoleInUseError{Name: "Algebra"}
	assert.Contains(t, err.Error(), "Algebra")
}

// collectingDeleter records the IDs a destroy pass attempts and fails
// the ones listed in failing.
type collectingDeleter struct {
	attempted []string
	failing   map[string]error
}

func (c *collectingDeleter) delete(id string) error {
	c.attempted = append(c.attempted, id)
	return c.failing[id]
}

// TestDestroyChannels_CategoryAlreadyRemoved verifies deletion of a
// class whose category was manually removed: the category is recorded
// as invalid while every still-live channel is still attempted.
func TestDestroyChannels_CategoryAlreadyRemoved(t *testing.T) {
	live := []*discordgo.Channel{
		{ID: "T1", Type: discordgo.ChannelTypeGuildText},
		{ID: "V1", Type: discordgo.ChannelTypeGuildVoice},
	}
	deleter := &collectingDeleter{}

	failed := destroyChannels([]string{"T1", "V1", "C1"}, live, deleter.delete)

	assert.Equal(t, []string{"T1", "V1"}, deleter.attempted)
	require.Len(t, failed, 1)
	var invalid *InvalidChannelError
	require.ErrorAs(t, failed[0], &invalid)
	assert.Equal(t, "C1", invalid.ChannelID)
}

// TestDestroyChannels_FailuresAreIndependent verifies a rejected
// deletion is collected without stopping the remaining deletions.
func TestDestroyChannels_FailuresAreIndependent(t *testing.T) {
	live := []*discordgo.Channel{{ID: "T1"}, {ID: "T2"}, {ID: "C1"}}
	deleter := &collectingDeleter{failing: map[string]error{"T1": assert.AnError}}

	failed := destroyChannels([]string{"T1", "T2", "C1"}, live, deleter.delete)

	assert.Equal(t, []string{"T1", "T2", "C1"}, deleter.attempted)
	require.Len(t, failed, 1)
	assert.ErrorIs(t, failed[0], assert.AnError)
}

// TestDestroyRole verifies the role deletion leg: a live role is
// deleted, a vanished role is recorded as invalid without an attempt,
// and a rejected deletion is collected.
func TestDestroyRole(t *testing.T) {
	roles := []*discordgo.Role{{ID: "R1"}}

	deleter := &collectingDeleter{}
	assert.Empty(t, destroyRole("R1", roles, deleter.delete))
	assert.Equal(t, []string{"R1"}, deleter.attempted)

	deleter = &collectingDeleter{}
	failed := destroyRole("R2", roles, deleter.delete)
	require.Len(t, failed, 1)
	assert.ErrorIs(t, failed[0], ErrInvalidRole)
	assert.Empty(t, deleter.attempted)

	deleter = &collectingDeleter{failing: map[string]error{"R1": assert.AnError}}
	failed = destroyRole("R1", roles, deleter.delete)
	require.Len(t, failed, 1)
	assert.ErrorIs(t, failed[0], assert.AnError)
}

func duplicateKeyErr() error {
	return mongo.WriteException{WriteErrors: mongo.WriteErrors{
		{Code: 11000, Message: "E11000 duplicate key error"},
	}}
}

// TestMapInsertConflict verifies a unique-index rejection maps onto the
// role conflict when the role is already bound, and onto the name
// conflict otherwise; other errors pass through.
func TestMapInsertConflict(t *testing.T) {
	assert.NoError(t, mapInsertConflict(nil, func() *model.Class { return nil }))

	assert.ErrorIs(t,
		mapInsertConflict(assert.AnError, func() *model.Class { return nil }),
		assert.AnError)

	err := mapInsertConflict(duplicateKeyErr(), func() *model.Class {
		return &model.Class{Name: "Algebra"}
	})
	var inUse *RoleInUseError
	require.ErrorAs(t, err, &inUse)
	assert.Equal(t, "Algebra", inUse.Name)

	assert.ErrorIs(t,
		mapInsertConflict(duplicateKeyErr(), func() *model.Class { return nil }),
		ErrClassExists)
}

// TestEnsureServer verifies the duplicate-key re-read guard: a present
// record passes through, a vanished one is an explicit error.
func TestEnsureServer(t *testing.T) {
	server := model.NewServer("123")
	got, err := ensureServer(server, "123")
	require.NoError(t, err)
	assert.Same(t, server, got)

	_, err = ensureServer(nil, "123")
	assert.Error(t, err)
}
