package discord

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStringSet_Contains(t *testing.T) {
	s := newStringSet([]string{"a", "b"})
	assert.True(t, s.Contains("a"))
	assert.False(t, s.Contains("c"))
}

func TestStringSet_Difference(t *testing.T) {
	d := newStringSet([]string{"a", "b", "c"}).Difference(newStringSet([]string{"b"}))
	assert.ElementsMatch(t, []string{"a", "c"}, d.Values())
}

func TestStringSet_Union(t *testing.T) {
	u := newStringSet([]string{"a", "b"}).Union(newStringSet([]string{"b", "c"}))
	assert.ElementsMatch(t, []string{"a", "b", "c"}, u.Values())
}

func TestStringSet_Empty(t *testing.T) {
	s := newStringSet(nil)
	assert.Empty(t, s.Values())
	assert.Empty(t, s.Union(s).Values())
	assert.Empty(t, s.Difference(s).Values())
}
