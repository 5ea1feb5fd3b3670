package pkg

import (
	"net/url"
	"strings"
)

// ShareURL - builds the link a second player opens to join roomID.
func ShareURL(publicURL, roomID string) string {
	return strings.TrimRight(publicURL, "/") + "/?room=" + url.QueryEscape(roomID)
}
