package header

import (
	"net/http"
	"strings"
)

// MediaType returns the lower-cased media type of the request body
// without parameters such as charset.
func MediaType(r *http.Request) string {
	contentType := r.Header.Get("Content-Type")
	contentType = strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.Index(contentType, ";"); i > -1 {
		contentType = strings.TrimSpace(contentType[0:i])
	}
	return contentType
}

// IsApplicationJSONContentType returns true if the content type of the
// request is application/json.
func IsApplicationJSONContentType(r *http.Request) bool {
	return MediaType(r) == "application/json"
}

// IsFormContentType returns true if the request carries an urlencoded
// or multipart form.
func IsFormContentType(r *http.Request) bool {
	switch MediaType(r) {
	case "application/x-www-form-urlencoded", "multipart/form-data":
		return true
	}
	return false
}

// IsAJAX reports whether the request was sent by a script rather than
// a page navigation.
func IsAJAX(r *http.Request) bool {
	return r.Header.Get("X-Requested-With") == "XMLHttpRequest" ||
		r.URL.Query().Get("ajax") == "1"
}
