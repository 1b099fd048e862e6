package helpers

import (
	"net/http"
	"strconv"
)

// QueryInt reads an integer query parameter, falling back to def when the
// parameter is absent or not an integer.
func QueryInt(r *http.Request, name string, def int) int {
	s := r.URL.Query().Get(name)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}

// QueryInt64 reads an int64 query parameter. ok is false when the parameter
// is absent or malformed.
func QueryInt64(r *http.Request, name string) (value int64, ok bool) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// PathInt64 parses a path segment captured by the router as an int64.
// ok is false when the segment is missing or not an integer.
func PathInt64(r *http.Request, name string) (value int64, ok bool) {
	s := r.PathValue(name)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
