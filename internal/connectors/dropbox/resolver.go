package dropbox

import (
	"net/url"
	"strings"
)

// IsShareURL reports whether raw looks like a Dropbox shared link.
// Both the legacy /sh/ and the current /scl/fo/ folder link forms are
// recognised.
func IsShareURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	if host != "www.dropbox.com" && host != "dropbox.com" {
		return false
	}
	return strings.HasPrefix(u.Path, "/sh/") ||
		strings.HasPrefix(u.Path, "/scl/fo/") ||
		strings.HasPrefix(u.Path, "/scl/fi/")
}
