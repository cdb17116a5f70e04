package util

import (
	"fmt"
	"strconv"
)

// MustParseSnowflake parses a Discord snowflake ID string, panicking on
// malformed input. Only for values this program generated itself.
func MustParseSnowflake(s string) uint64 {
	val, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		panic(fmt.Errorf("could not parse Snowflake ID string: %w", err))
	}
	return val
}
