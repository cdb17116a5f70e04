package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/mongo"
)

// TestShortName verifies the channel-name normalization: whitespace
// stripped out, everything lower-cased.
func TestShortName(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Linear Algebra", "linearalgebra"},
		{"CS 101", "cs101"},
		{"  padded  name  ", "paddedname"},
		{"already", "already"},
		{"Tabs\tand\nnewlines", "tabsandnewlines"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ShortName(tt.name), "ShortName(%q)", tt.name)
	}
}

// TestIsDuplicateKey verifies a unique-index write rejection is
// recognized and other errors are not.
func TestIsDuplicateKey(t *testing.T) {
	assert.True(t, IsDuplicateKey(mongo.WriteException{WriteErrors: mongo.WriteErrors{
		{Code: 11000, Message: "E11000 duplicate key error"},
	}}))
	assert.False(t, IsDuplicateKey(assert.AnError))
	assert.False(t, IsDuplicateKey(nil))
}

// TestNewServer verifies the default record for a first-touched guild:
// no admin roles, no refrole.
func TestNewServer(t *testing.T) {
	s := NewServer("123")
	assert.Equal(t, "123", s.ServerID)
	assert.Empty(t, s.AdminRoles)
	assert.NotNil(t, s.AdminRoles)
	assert.Empty(t, s.Refrole)
}
