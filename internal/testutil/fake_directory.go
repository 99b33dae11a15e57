package testutil

import (
	"context"
	"sync"

	"github.com/csnsor/bs-webpanel/internal/identity"
)

// FakeDirectory implements identity.Directory with scripted answers for
// testing. All methods are safe for concurrent use.
type FakeDirectory struct {
	mu    sync.Mutex
	users map[string]identity.UserInfo
	urls  map[string]string

	// Error injection: method -> error returned on every call while set
	errors map[string]error

	// Call counts per method
	calls map[string]int
}

// NewFakeDirectory returns a zero-state FakeDirectory ready for use.
func NewFakeDirectory() *FakeDirectory {
	return &FakeDirectory{
		users:  make(map[string]identity.UserInfo),
		urls:   make(map[string]string),
		errors: make(map[string]error),
		calls:  make(map[string]int),
	}
}

// SetUser scripts the identity answer for a user id.
func (f *FakeDirectory) SetUser(userID string, info identity.UserInfo) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[userID] = info
}

// SetAvatar scripts the avatar answer for a user id.
func (f *FakeDirectory) SetAvatar(userID, url string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.urls[userID] = url
}

// SetError makes the named method ("LookupUser" or "AvatarURL") fail until cleared.
func (f *FakeDirectory) SetError(method string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		delete(f.errors, method)
		return
	}
	f.errors[method] = err
}

// Calls returns how many times the named method has been invoked.
func (f *FakeDirectory) Calls(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[method]
}

func (f *FakeDirectory) LookupUser(_ context.Context, userID string) (identity.UserInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["LookupUser"]++
	if err := f.errors["LookupUser"]; err != nil {
		return identity.UserInfo{}, err
	}
	return f.users[userID], nil
}

func (f *FakeDirectory) AvatarURL(_ context.Context, userID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["AvatarURL"]++
	if err := f.errors["AvatarURL"]; err != nil {
		return "", err
	}
	return f.urls[userID], nil
}
