// Package identity talks to the external user-identity and avatar-thumbnail
// services. Both lookups are best-effort: callers are expected to treat any
// error as a signal to keep default profile fields.
package identity

import (
	"context"
)

// UserInfo is the subset of the identity service response the dashboard uses.
// Both fields are optional on the wire.
type UserInfo struct {
	Name        string
	DisplayName string
}

// Directory is the external service seam for profile resolution.
type Directory interface {
	// LookupUser fetches the username and display name for a user id.
	LookupUser(ctx context.Context, userID string) (UserInfo, error)
	// AvatarURL fetches the headshot image URL for a user id.
	AvatarURL(ctx context.Context, userID string) (string, error)
}
