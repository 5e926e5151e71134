package interceptors

import (
	"context"
	"strconv"

	"github.com/vincent-24/GlassBallots-sub001/internal/security"
)

type identityKey struct{}

// WithIdentity returns a context carrying the authenticated caller.
func WithIdentity(ctx context.Context, userID, orgID, sessionID string) context.Context {
	return context.WithValue(ctx, identityKey{}, security.Identity{UserID: userID, OrgID: orgID, SessionID: sessionID})
}

func identity(ctx context.Context) (security.Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(security.Identity)
	return id, ok
}

// GetUserID returns the user_id from context and true if set; otherwise "", false.
func GetUserID(ctx context.Context) (string, bool) {
	id, ok := identity(ctx)
	return id.UserID, ok
}

// GetOrgID returns the org_id from context and true if set; otherwise "", false.
func GetOrgID(ctx context.Context) (string, bool) {
	id, ok := identity(ctx)
	return id.OrgID, ok
}

// GetSessionID returns the session_id from context and true if set; otherwise "", false.
func GetSessionID(ctx context.Context) (string, bool) {
	id, ok := identity(ctx)
	return id.SessionID, ok
}

// CallerUserID returns the authenticated user as a numeric id. It reports false when the context has no
// identity or the token subject is not a positive integer.
func CallerUserID(ctx context.Context) (int64, bool) {
	s, ok := GetUserID(ctx)
	if !ok {
		return 0, false
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}
