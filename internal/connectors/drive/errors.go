package drive

import (
	"errors"
	"net/http"

	"google.golang.org/api/googleapi"
)

// IsRateLimited returns true if the error indicates rate limiting.
func IsRateLimited(err error) bool {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code == http.StatusTooManyRequests
	}
	return false
}

// IsSyncTokenExpired returns true if the error indicates an expired
// changes page token (410 GONE). The caller should perform a full
// resync.
func IsSyncTokenExpired(err error) bool {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code == http.StatusGone
	}
	return false
}
