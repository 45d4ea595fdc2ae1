package control

import "github.com/chanisolator/channel-isolator/internal/chanid"

// ParseChannelID parses a channel id from its external (CLI/HTTP) string
// form, returning a KindBadRequest error on malformed input.
func ParseChannelID(s string) (uint64, error) {
	id, err := chanid.Parse(s)
	if err != nil {
		return 0, badRequest("%s", err)
	}
	return id, nil
}
