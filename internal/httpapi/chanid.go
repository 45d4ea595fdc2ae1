package httpapi

import (
	"strconv"

	"github.com/chanisolator/channel-isolator/internal/chanid"
)

func chanIDString(id uint64) string {
	return strconv.FormatUint(id, 10)
}

func chanIDName(id uint64) string {
	return chanid.String(id)
}
