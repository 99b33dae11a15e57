// Package profile resolves and caches display identity for ban records.
package profile

import "fmt"

// Profile is the minimal identity presentation data for a user id.
type Profile struct {
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
	AvatarURL   string `json:"avatarUrl"`
}

// Display returns the display name, falling back to the username.
func (p Profile) Display() string {
	if p.DisplayName != "" {
		return p.DisplayName
	}
	return p.Username
}

// Defaults builds the placeholder profile used before (or instead of) a
// successful external lookup.
func Defaults(userID string) Profile {
	return Profile{
		Username:  fmt.Sprintf("User %s", userID),
		AvatarURL: placeholderAvatar(userID),
	}
}

// Unknown is the fixed profile for records with no user id at all.
func Unknown() Profile {
	return Profile{
		Username:  "Unknown user",
		AvatarURL: placeholderAvatar(""),
	}
}

// placeholderAvatar synthesises an image URL from the user id so every
// record has something to show before the avatar service answers.
func placeholderAvatar(userID string) string {
	seed := userID
	if seed == "" {
		seed = "unknown"
	}
	return "https://ui-avatars.com/api/?size=150&name=" + seed
}
