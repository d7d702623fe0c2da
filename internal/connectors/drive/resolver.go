package drive

import (
	"net/url"
	"strings"
)

// ParseFolderURL extracts the folder id from a Drive folder URL.
// Recognises the /drive/folders/{id} and /drive/u/{n}/folders/{id}
// forms. Returns "" when the URL is not a Drive folder link.
func ParseFolderURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	if strings.ToLower(u.Hostname()) != "drive.google.com" {
		return ""
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i, part := range parts {
		if part == "folders" && i+1 < len(parts) {
			return parts[i+1]
		}
	}
	return ""
}
