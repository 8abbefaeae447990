package auth

import "strings"

// RequireAuth reports whether path needs authentication given the list of
// excluded paths. Entries ending in '*' exclude every path with that prefix,
// other entries must match exactly, ignoring a trailing slash.
// An empty path stands for a missing one and always requires authentication.
func RequireAuth(path string, excludedPaths []string) bool {
	if path == "" || len(excludedPaths) == 0 {
		return true
	}
	path = withSlash(path)
	for _, excluded := range excludedPaths {
		if strings.HasSuffix(excluded, "*") {
			if strings.HasPrefix(path, excluded[:len(excluded)-1]) {
				return false
			}
			continue
		}
		if path == withSlash(excluded) {
			return false
		}
	}
	return true
}

func withSlash(p string) string {
	if strings.HasSuffix(p, "/") {
		return p
	}
	return p + "/"
}
