package profile_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/csnsor/bs-webpanel/internal/identity"
	"github.com/csnsor/bs-webpanel/internal/profile"
	"github.com/csnsor/bs-webpanel/internal/testutil"
	"github.com/rs/zerolog"
)

func newResolver(dir identity.Directory) (*profile.Resolver, *profile.Cache) {
	cache := profile.NewCache()
	return profile.NewResolver(dir, cache, time.Second, zerolog.Nop()), cache
}

func TestResolveEmptyIDReturnsUnknown(t *testing.T) {
	dir := testutil.NewFakeDirectory()
	r, cache := newResolver(dir)

	p := r.Resolve(context.Background(), "")
	if p.Username != "Unknown user" {
		t.Errorf("Username: got %q", p.Username)
	}
	if dir.Calls("LookupUser") != 0 || dir.Calls("AvatarURL") != 0 {
		t.Error("empty id must not trigger external lookups")
	}
	if cache.Len() != 0 {
		t.Error("empty id must not touch the cache")
	}
}

func TestResolveSuccessBothServices(t *testing.T) {
	dir := testutil.NewFakeDirectory()
	dir.SetUser("123", identity.UserInfo{Name: "builderman", DisplayName: "Builderman"})
	dir.SetAvatar("123", "https://cdn.example/123.png")
	r, _ := newResolver(dir)

	p := r.Resolve(context.Background(), "123")
	if p.Username != "builderman" {
		t.Errorf("Username: got %q", p.Username)
	}
	if p.DisplayName != "Builderman" {
		t.Errorf("DisplayName: got %q", p.DisplayName)
	}
	if p.AvatarURL != "https://cdn.example/123.png" {
		t.Errorf("AvatarURL: got %q", p.AvatarURL)
	}
}

func TestResolveDisplayNameFallsBackToUsername(t *testing.T) {
	dir := testutil.NewFakeDirectory()
	dir.SetUser("123", identity.UserInfo{Name: "builderman"})
	r, _ := newResolver(dir)

	p := r.Resolve(context.Background(), "123")
	if p.DisplayName != "builderman" {
		t.Errorf("DisplayName should equal username, got %q", p.DisplayName)
	}
}

func TestResolveCacheHitShortCircuitsLookups(t *testing.T) {
	dir := testutil.NewFakeDirectory()
	dir.SetUser("123", identity.UserInfo{Name: "builderman"})
	r, _ := newResolver(dir)

	for i := 0; i < 5; i++ {
		r.Resolve(context.Background(), "123")
	}

	if got := dir.Calls("LookupUser"); got != 1 {
		t.Errorf("LookupUser calls: got %d, want 1", got)
	}
	if got := dir.Calls("AvatarURL"); got != 1 {
		t.Errorf("AvatarURL calls: got %d, want 1", got)
	}
}

func TestResolveIndependentFailure(t *testing.T) {
	// Identity fails, avatar succeeds: default username, fetched avatar.
	dir := testutil.NewFakeDirectory()
	dir.SetError("LookupUser", errors.New("timeout"))
	dir.SetAvatar("42", "https://cdn.example/42.png")
	r, _ := newResolver(dir)

	p := r.Resolve(context.Background(), "42")
	if p.Username != "User 42" {
		t.Errorf("Username should stay default, got %q", p.Username)
	}
	if p.AvatarURL != "https://cdn.example/42.png" {
		t.Errorf("AvatarURL should be fetched, got %q", p.AvatarURL)
	}
}

func TestResolveAvatarFailureKeepsPlaceholder(t *testing.T) {
	dir := testutil.NewFakeDirectory()
	dir.SetUser("42", identity.UserInfo{Name: "noob"})
	dir.SetError("AvatarURL", errors.New("503"))
	r, _ := newResolver(dir)

	p := r.Resolve(context.Background(), "42")
	if p.Username != "noob" {
		t.Errorf("Username: got %q", p.Username)
	}
	if !strings.Contains(p.AvatarURL, "ui-avatars.com") {
		t.Errorf("AvatarURL should stay placeholder, got %q", p.AvatarURL)
	}
}

func TestResolveBothFailStillCaches(t *testing.T) {
	dir := testutil.NewFakeDirectory()
	dir.SetError("LookupUser", errors.New("down"))
	dir.SetError("AvatarURL", errors.New("down"))
	r, cache := newResolver(dir)

	p := r.Resolve(context.Background(), "7")
	if p.Username != "User 7" {
		t.Errorf("Username: got %q", p.Username)
	}
	if _, ok := cache.Get("7"); !ok {
		t.Error("default profile should still be cached")
	}

	// Subsequent resolves must not retry the services within the session.
	r.Resolve(context.Background(), "7")
	if got := dir.Calls("LookupUser"); got != 1 {
		t.Errorf("LookupUser calls: got %d, want 1", got)
	}
}

func TestResolveConcurrentSameIDSingleLookup(t *testing.T) {
	dir := testutil.NewFakeDirectory()
	dir.SetUser("123", identity.UserInfo{Name: "builderman"})
	r, _ := newResolver(dir)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Resolve(context.Background(), "123")
		}()
	}
	wg.Wait()

	// Concurrent resolves collapse; each service is called at most once.
	if got := dir.Calls("LookupUser"); got != 1 {
		t.Errorf("LookupUser calls: got %d, want 1", got)
	}
}

func TestProfileDisplayFallback(t *testing.T) {
	p := profile.Profile{Username: "noob"}
	if p.Display() != "noob" {
		t.Errorf("Display: got %q", p.Display())
	}
	p.DisplayName = "Noob!"
	if p.Display() != "Noob!" {
		t.Errorf("Display: got %q", p.Display())
	}
}
