package utils

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/user/crawler-console/internal/entity"
)

// QueryValue extracts key from a raw query string ("a=1&name=x", with or without the
// leading "?") using an exact, case-sensitive key=value match. ok is false when the key
// is absent. The value is form-decoded, so "+" reads as a space.
func QueryValue(rawQuery, key string) (string, bool) {
	rawQuery = strings.TrimPrefix(rawQuery, "?")
	re := regexp.MustCompile(`(^|&)` + regexp.QuoteMeta(key) + `=([^&]*)(&|$)`)
	m := re.FindStringSubmatch(rawQuery)
	if m == nil {
		return "", false
	}
	v, err := url.QueryUnescape(m[2])
	if err != nil {
		return m[2], true
	}
	return v, true
}

// ParseQueryContext decodes the page's navigational intent from its raw query string.
func ParseQueryContext(rawQuery string) entity.QueryContext {
	name, ok := QueryValue(rawQuery, "name")
	if !ok {
		return entity.QueryContext{}
	}
	return entity.QueryContext{Name: &name}
}

// JoinURL appends path to base, avoiding duplicate slashes.
func JoinURL(base, path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}
