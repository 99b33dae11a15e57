// Package enrich attaches resolved profiles to raw ban records and orders
// them for display.
package enrich

import (
	"context"
	"sort"
	"time"

	"github.com/csnsor/bs-webpanel/internal/banlog"
	"github.com/csnsor/bs-webpanel/internal/metrics"
	"github.com/csnsor/bs-webpanel/internal/profile"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Record is a raw ban record plus its resolved profile.
type Record struct {
	banlog.Record
	Profile profile.Profile `json:"profile"`
}

// Resolver is the profile resolution seam.
type Resolver interface {
	Resolve(ctx context.Context, userID string) profile.Profile
}

// Enricher resolves a profile for every record in a batch with bounded
// concurrency.
type Enricher struct {
	resolver    Resolver
	concurrency int
	log         zerolog.Logger
}

// New constructs an Enricher. concurrency bounds how many profile
// resolutions run at once.
func New(resolver Resolver, concurrency int, log zerolog.Logger) *Enricher {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Enricher{
		resolver:    resolver,
		concurrency: concurrency,
		log:         log,
	}
}

// Enrich resolves a profile for each record concurrently, then returns the
// batch sorted descending by effective timestamp. Ties keep input order, and
// records with no parsable timestamp sink to the bottom. Individual
// resolution failures degrade to default profiles inside the resolver, so
// the batch as a whole never fails.
func (e *Enricher) Enrich(ctx context.Context, raw []banlog.Record) []Record {
	start := time.Now()

	out := make([]Record, len(raw))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)

	for i, rec := range raw {
		i, rec := i, rec
		g.Go(func() error {
			out[i] = Record{
				Record:  rec,
				Profile: e.resolver.Resolve(gctx, rec.UserID.String()),
			}
			return nil
		})
	}
	// Workers never return errors; Wait only synchronises completion.
	_ = g.Wait()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].EffectiveTime().After(out[j].EffectiveTime())
	})

	elapsed := time.Since(start)
	metrics.EnrichDuration.Observe(elapsed.Seconds())
	e.log.Debug().Int("records", len(out)).Dur("elapsed", elapsed).Msg("batch enriched")
	return out
}
