package images

import (
	"net/url"
	"strings"
)

// ExtractFilename reduces a raw CSV image cell to a bare filename. Only the
// first comma-separated entry (and its first |-separated part) is considered;
// query strings and fragments are stripped and the result is URL-decoded.
func ExtractFilename(raw string) string {
	first := ""
	for _, entry := range strings.Split(raw, ",") {
		if entry = strings.TrimSpace(entry); entry != "" {
			first = entry
			break
		}
	}
	if first == "" {
		return ""
	}

	sanitized, _, _ := strings.Cut(first, "|")
	sanitized = strings.TrimSpace(sanitized)
	if sanitized == "" {
		return ""
	}

	if u, err := url.Parse(sanitized); err == nil && u.Scheme != "" && u.Host != "" {
		return decode(lastSegment(u.EscapedPath()))
	}

	withoutQuery, _, _ := strings.Cut(sanitized, "?")
	withoutQuery, _, _ = strings.Cut(withoutQuery, "#")
	return decode(lastSegment(withoutQuery))
}

func decode(s string) string {
	decoded, err := url.PathUnescape(s)
	if err != nil {
		return s
	}
	return decoded
}
