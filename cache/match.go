package cache

import "strings"

// Match reports whether key matches the glob pattern, where '*' matches any
// substring (including the empty one). These are the same semantics Redis
// applies to MATCH patterns restricted to '*', so local tiers and the shared
// tier agree on what a pattern selects.
func Match(pattern, key string) bool {
	parts := strings.Split(pattern, "*")
	if len(parts) == 1 {
		return pattern == key
	}

	if !strings.HasPrefix(key, parts[0]) {
		return false
	}
	key = key[len(parts[0]):]

	last := parts[len(parts)-1]
	for _, part := range parts[1 : len(parts)-1] {
		idx := strings.Index(key, part)
		if idx < 0 {
			return false
		}
		key = key[idx+len(part):]
	}

	return strings.HasSuffix(key, last)
}
