package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMustParseSnowflake(t *testing.T) {
	assert.Equal(t, uint64(175928847299117063), MustParseSnowflake("175928847299117063"))
	assert.Panics(t, func() { MustParseSnowflake("not-a-snowflake") })
	assert.Panics(t, func() { MustParseSnowflake("") })
}
