// Package auth decides who is calling an HTTP endpoint.
//
// Every strategy answers two questions: does this path need authentication
// at all (RequireAuth) and, if so, which user sent the request (CurrentUser).
//
// BasicAuth reads the "Authorization: Basic <base64(email:password)>" header
// and checks the password against the directory on every request.
//
// SessionAuth reads an opaque session token from a cookie. What a token means
// is decided by the SessionLayer it was built with, and layers stack:
//
//	MemorySessions    token -> user id, kept in a SessionStore
//	ExpiringSessions  wraps MemorySessions, tokens die after SESSION_DURATION
//	PersistedSessions wraps ExpiringSessions, tokens live in the directory
//
// A request that does not authenticate is never an error: malformed headers,
// unknown tokens and wrong passwords all resolve to a nil user. Errors are
// reserved for a directory that cannot be reached.
//
// Expired sessions are only ignored, never removed, so a long running process
// keeps every token it ever issued in its SessionStore.
package auth
