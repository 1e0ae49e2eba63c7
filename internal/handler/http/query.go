package http

import (
	"net/http"
	"strconv"
)

// optionalQuery returns nil when the parameter is absent or empty.
func optionalQuery(r *http.Request, key string) *string {
	if v := r.URL.Query().Get(key); v != "" {
		return &v
	}
	return nil
}

// intQuery falls back to zero on a missing or malformed value so the
// filter's own Validate applies defaults.
func intQuery(r *http.Request, key string) int {
	n, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return 0
	}
	return n
}
