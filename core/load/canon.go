package load

import (
	"strings"
	"unicode"
)

// CanonicalURL returns the join key for a raw URL. The scheme, host and path are lowercased,
// the fragment and any trailing "?" are dropped, duplicate slashes in the path are collapsed,
// and the path ends in exactly one slash. A non-empty query is kept verbatim.
// Inputs without a scheme are treated as paths, unless the first segment looks like a host.
func CanonicalURL(raw string) string {
	s := strings.TrimSpace(raw)
	if i := strings.IndexByte(s, '#'); i >= 0 {
		s = s[:i]
	}
	s = strings.TrimRight(s, "?")
	if s == "" {
		return ""
	}

	scheme, rest := splitScheme(s)
	host, path := "", rest
	if scheme != "" || looksLikeHost(rest) {
		if i := strings.IndexAny(rest, "/?"); i >= 0 {
			host, path = rest[:i], rest[i:]
		} else {
			host, path = rest, ""
		}
	}

	query := ""
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path, query = path[:i], path[i+1:]
		query = strings.TrimRightFunc(query, func(r rune) bool { return r == '?' || unicode.IsSpace(r) })
	}
	path = normalizePath(path)

	var b strings.Builder
	if scheme != "" {
		b.WriteString(scheme)
		b.WriteString("://")
	}
	b.WriteString(strings.ToLower(host))
	b.WriteString(path)
	if query != "" {
		b.WriteByte('?')
		b.WriteString(query)
	}
	return b.String()
}

// splitScheme separates a leading "scheme://" from the rest of s. The scheme is lowercased.
func splitScheme(s string) (string, string) {
	i := strings.Index(s, "://")
	if i <= 0 {
		return "", s
	}
	for _, r := range s[:i] {
		isAlpha := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		isOther := (r >= '0' && r <= '9') || r == '+' || r == '-' || r == '.'
		if !isAlpha && !isOther {
			return "", s
		}
	}
	return strings.ToLower(s[:i]), s[i+3:]
}

// looksLikeHost reports whether a scheme-less value starts with a dotted host such as "example.com/a".
func looksLikeHost(s string) bool {
	if s == "" || s[0] == '/' {
		return false
	}
	first := s
	if i := strings.IndexAny(s, "/?"); i >= 0 {
		first = s[:i]
	}
	return strings.Contains(first, ".") && !strings.ContainsAny(first, " \t")
}

func normalizePath(path string) string {
	path = strings.ToLower(path)
	for strings.Contains(path, "//") {
		path = strings.ReplaceAll(path, "//", "/")
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if !strings.HasSuffix(path, "/") {
		path += "/"
	}
	return path
}
