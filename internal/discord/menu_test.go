package discord

import (
	"fmt"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pkg.classd.app/classd/internal/storage/model"
)

func testClasses(n int) []*model.Class {
	classes := make([]*model.Class, n)
	for i := range classes {
		classes[i] = &model.Class{
			Name: fmt.Sprintf("Class %d", i+1),
			Role: fmt.Sprintf("%d", 1000+i),
		}
	}
	return classes
}

func selectMenuAt(t *testing.T, rows []discordgo.MessageComponent, i int) discordgo.SelectMenu {
	t.Helper()
	row, ok := rows[i].(discordgo.ActionsRow)
	require.True(t, ok, "row %d should be an actions row", i)
	require.Len(t, row.Components, 1)
	menu, ok := row.Components[0].(discordgo.SelectMenu)
	require.True(t, ok, "row %d should hold a select menu", i)
	return menu
}

// TestBuildClassMenu_Pagination verifies 53 classes render as three
// select menus of sizes 25, 25 and 3.
func TestBuildClassMenu_Pagination(t *testing.T) {
	rows := buildClassMenu(testClasses(53), nil)
	require.Len(t, rows, 3)

	for i, want := range []int{25, 25, 3} {
		menu := selectMenuAt(t, rows, i)
		assert.Equal(t, fmt.Sprintf("class_menu_button_%d", i), menu.CustomID)
		assert.Len(t, menu.Options, want)
		require.NotNil(t, menu.MinValues)
		assert.Equal(t, 0, *menu.MinValues)
		assert.Equal(t, want, menu.MaxValues)
	}
}

// TestBuildClassMenu_NaturalOrder verifies class names sort
// alphanumerically, not lexicographically.
func TestBuildClassMenu_NaturalOrder(t *testing.T) {
	classes := []*model.Class{
		{Name: "Class 2", Role: "2"},
		{Name: "Class 10", Role: "10"},
		{Name: "Class 1", Role: "1"},
	}

	menu := selectMenuAt(t, buildClassMenu(classes, nil), 0)
	require.Len(t, menu.Options, 3)
	assert.Equal(t, "Class 1", menu.Options[0].Label)
	assert.Equal(t, "Class 2", menu.Options[1].Label)
	assert.Equal(t, "Class 10", menu.Options[2].Label)
}

// TestBuildClassMenu_PrecheckedMembership verifies options are
// pre-checked exactly for the class roles the member already holds.
func TestBuildClassMenu_PrecheckedMembership(t *testing.T) {
	classes := []*model.Class{
		{Name: "Algebra", Role: "100"},
		{Name: "Biology", Role: "200"},
	}

	menu := selectMenuAt(t, buildClassMenu(classes, []string{"200", "999"}), 0)
	require.Len(t, menu.Options, 2)
	assert.False(t, menu.Options[0].Default, "Algebra is not held")
	assert.True(t, menu.Options[1].Default, "Biology is held")
	assert.Equal(t, "100", menu.Options[0].Value)
	assert.Equal(t, "200", menu.Options[1].Value)
}

// TestNewMemberRoles_DeltaLaw verifies the role delta: with current
// roles {A, B, C}, shown {A, B} and selected {B}, the result is {B, C}
// — A dropped (shown, not selected), C preserved (not part of this
// menu), B kept (shown and selected).
func TestNewMemberRoles_DeltaLaw(t *testing.T) {
	got := newMemberRoles(
		[]string{"A", "B", "C"},
		[]string{"A", "B"},
		[]string{"B"},
	)
	assert.ElementsMatch(t, []string{"B", "C"}, got)
}

// TestNewMemberRoles_OtherPagesUntouched verifies roles shown only by
// other menu pages survive a submission of this page.
func TestNewMemberRoles_OtherPagesUntouched(t *testing.T) {
	current := []string{"page2role", "member", "page1role"}
	got := newMemberRoles(current, []string{"page1role", "unheld"}, []string{"unheld"})
	assert.ElementsMatch(t, []string{"page2role", "member", "unheld"}, got)
}

// TestNewMemberRoles_DeselectAll verifies submitting an empty selection
// drops every shown role and nothing else.
func TestNewMemberRoles_DeselectAll(t *testing.T) {
	got := newMemberRoles([]string{"A", "B", "C"}, []string{"A", "B", "C"}, nil)
	assert.Empty(t, got)

	got = newMemberRoles([]string{"A", "other"}, []string{"A"}, nil)
	assert.ElementsMatch(t, []string{"other"}, got)
}

// TestFindSelectMenu verifies the shown-roles menu is recovered from a
// submitted message's component tree by custom ID.
func TestFindSelectMenu(t *testing.T) {
	components := []discordgo.MessageComponent{
		&discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			&discordgo.SelectMenu{CustomID: "class_menu_button_0"},
		}},
		&discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			&discordgo.SelectMenu{CustomID: "class_menu_button_1"},
		}},
	}

	menu := findSelectMenu(components, "class_menu_button_1")
	require.NotNil(t, menu)
	assert.Equal(t, "class_menu_button_1", menu.CustomID)

	assert.Nil(t, findSelectMenu(components, "class_menu_button_2"))
}
