package domain

import "strings"

// InvalidDomain is returned by ExtractDomain when no host can be found.
const InvalidDomain = "invalid-domain"

// ExtractDomain returns the registrable domain of raw using a two-label
// heuristic: the last two dot-separated labels of the host.
//
// No public suffix list is consulted, so hosts under multi-label suffixes
// collapse onto the suffix ("sub.example.co.uk" gives "co.uk").
func ExtractDomain(raw string) string {
	s := strings.Trim(strings.TrimSpace(raw), `"'`)
	if s == "" {
		return InvalidDomain
	}

	s = stripScheme(s)
	if len(s) >= 4 && strings.EqualFold(s[:4], "www.") {
		s = s[4:]
	}

	if i := strings.IndexAny(s, "/:?#\\ \t\r\n"); i >= 0 {
		s = s[:i]
	}
	s = strings.TrimRight(s, `"'\`)

	labels := make([]string, 0, 4)
	for _, label := range strings.Split(strings.ToLower(s), ".") {
		if label != "" {
			labels = append(labels, label)
		}
	}

	switch n := len(labels); {
	case n == 0:
		return InvalidDomain
	case n > 2:
		return labels[n-2] + "." + labels[n-1]
	default:
		return strings.Join(labels, ".")
	}
}

// stripScheme removes a leading "scheme://". The scheme must start the string
// and follow RFC 3986 syntax, so a URL embedded in a path or query is left alone.
func stripScheme(s string) string {
	i := strings.Index(s, "://")
	if i <= 0 {
		return s
	}
	for j, c := range s[:i] {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case j > 0 && (c >= '0' && c <= '9' || c == '+' || c == '-' || c == '.'):
		default:
			return s
		}
	}
	return s[i+3:]
}
