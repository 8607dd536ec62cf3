package normalize

import (
	"net/url"
	"strconv"
	"strings"
)

// hash32 is a 31-multiplier rolling hash over the runes of s, folded to a
// non-negative value and rendered in base 36.
func hash32(s string) string {
	var h int32
	for _, r := range s {
		h = h*31 + int32(r)
	}
	v := int64(h)
	if v < 0 {
		v = -v
	}
	return strconv.FormatInt(v, 36)
}

// ExternalID derives a stable identifier for re-ingestion: the URL host
// plus a hash of the title when the URL parses, otherwise a slug of the
// source name plus the same hash. Collisions are tolerated.
func ExternalID(articleURL, sourceName, title string) string {
	prefix := ""
	if articleURL != "" {
		if u, err := url.Parse(articleURL); err == nil {
			prefix = strings.ToLower(u.Hostname())
		}
	}
	if prefix == "" {
		prefix = slug(sourceName)
	}
	if prefix == "" {
		prefix = "unknown"
	}
	return prefix + "-" + hash32(title)
}

func slug(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), "-"))
}
