package schema

import "strings"

func lower(s string) string {
	return strings.ToLower(s)
}

// ParseBucket resolves a bucket name case-insensitively, accepting singular and plural forms
// ("service", "Services", "locations", "support"). The second return is false when s names no bucket.
func ParseBucket(s string) (Bucket, bool) {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.TrimSuffix(key, "s")
	switch key {
	case "service":
		return ServiceBucket, true
	case "location":
		return LocationBucket, true
	case "supporting", "support":
		return SupportingBucket, true
	}
	return "", false
}

// ParseWindow resolves a window name case-insensitively.
func ParseWindow(s string) (Window, bool) {
	for _, w := range AllWindows {
		if strings.EqualFold(string(w), strings.TrimSpace(s)) {
			return w, true
		}
	}
	return "", false
}
