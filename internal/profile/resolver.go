package profile

import (
	"context"
	"sync"
	"time"

	"github.com/csnsor/bs-webpanel/internal/identity"
	"github.com/csnsor/bs-webpanel/internal/metrics"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// Resolver produces a Profile for a user id, consulting the external
// directory and memoising results in a Cache. Resolve never fails: every
// lookup error degrades to default fields.
type Resolver struct {
	dir     identity.Directory
	cache   *Cache
	timeout time.Duration
	group   singleflight.Group
	log     zerolog.Logger
}

// NewResolver wires a Resolver to a directory and cache. timeout bounds each
// individual external lookup.
func NewResolver(dir identity.Directory, cache *Cache, timeout time.Duration, log zerolog.Logger) *Resolver {
	return &Resolver{
		dir:     dir,
		cache:   cache,
		timeout: timeout,
		log:     log,
	}
}

// Resolve returns the profile for userID. An empty id yields the fixed
// unknown-user profile with no cache or network interaction. A cache hit
// short-circuits both external lookups. Concurrent resolves of the same id
// are collapsed so each id triggers each lookup at most once.
func (r *Resolver) Resolve(ctx context.Context, userID string) Profile {
	if userID == "" {
		return Unknown()
	}

	if p, ok := r.cache.Get(userID); ok {
		metrics.CacheLookups.WithLabelValues("hit").Inc()
		return p
	}
	metrics.CacheLookups.WithLabelValues("miss").Inc()

	v, _, _ := r.group.Do(userID, func() (interface{}, error) {
		// Another resolve may have populated the cache while this call
		// waited on the singleflight lock.
		if p, ok := r.cache.Get(userID); ok {
			return p, nil
		}
		p := r.fetch(ctx, userID)
		r.cache.Put(userID, p)
		return p, nil
	})
	return v.(Profile)
}

// fetch runs the identity and avatar lookups concurrently. The two write
// disjoint fields, so their completion order does not matter.
func (r *Resolver) fetch(ctx context.Context, userID string) Profile {
	p := Defaults(userID)

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		lctx, cancel := context.WithTimeout(ctx, r.timeout)
		defer cancel()
		info, err := r.dir.LookupUser(lctx, userID)
		if err != nil {
			r.log.Debug().Err(err).Str("user_id", userID).Msg("identity lookup failed, keeping defaults")
			return
		}
		if info.Name == "" {
			// A 200 with no name is treated like a failed lookup.
			return
		}
		p.Username = info.Name
		if info.DisplayName != "" {
			p.DisplayName = info.DisplayName
		} else {
			p.DisplayName = p.Username
		}
	}()

	go func() {
		defer wg.Done()
		lctx, cancel := context.WithTimeout(ctx, r.timeout)
		defer cancel()
		url, err := r.dir.AvatarURL(lctx, userID)
		if err != nil {
			r.log.Debug().Err(err).Str("user_id", userID).Msg("avatar lookup failed, keeping placeholder")
			return
		}
		p.AvatarURL = url
	}()

	wg.Wait()
	return p
}
