package domain

import (
	"fmt"
	"strconv"
)

// Snowflake is a Discord identifier. The zero value means "absent".
type Snowflake uint64

// ParseSnowflake parses the decimal string form used by the Discord API.
func ParseSnowflake(s string) (Snowflake, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid snowflake %q: %w", s, err)
	}
	return Snowflake(id), nil
}

// MustSnowflake parses s and returns zero on malformed input.
func MustSnowflake(s string) Snowflake {
	id, err := ParseSnowflake(s)
	if err != nil {
		return 0
	}
	return id
}

func (s Snowflake) String() string {
	return strconv.FormatUint(uint64(s), 10)
}

// IsZero reports whether the id is unset.
func (s Snowflake) IsZero() bool {
	return s == 0
}

// Mention renders the user mention markup.
func (s Snowflake) Mention() string {
	return "<@" + s.String() + ">"
}

// ChannelMention renders the channel mention markup.
func (s Snowflake) ChannelMention() string {
	return "<#" + s.String() + ">"
}
