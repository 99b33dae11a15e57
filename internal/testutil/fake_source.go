package testutil

import (
	"context"
	"sync"

	"github.com/csnsor/bs-webpanel/internal/banlog"
)

// FakeBanSource implements banlog.Source with a scripted (batch, error)
// response. Safe for concurrent use.
type FakeBanSource struct {
	mu      sync.Mutex
	records []banlog.Record
	err     error
	calls   int

	// Gate, when set, is received from before each Fetch returns. It lets
	// tests hold a fetch in flight to exercise overlapping completions.
	Gate chan struct{}
}

// NewFakeBanSource returns a source that answers with the given batch.
func NewFakeBanSource(records ...banlog.Record) *FakeBanSource {
	return &FakeBanSource{records: records}
}

// SetRecords replaces the scripted batch.
func (f *FakeBanSource) SetRecords(records []banlog.Record) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = records
	f.err = nil
}

// SetError makes Fetch fail until SetRecords is called again.
func (f *FakeBanSource) SetError(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

// Calls returns how many times Fetch has been invoked.
func (f *FakeBanSource) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *FakeBanSource) Fetch(ctx context.Context) ([]banlog.Record, error) {
	f.mu.Lock()
	f.calls++
	recs := make([]banlog.Record, len(f.records))
	copy(recs, f.records)
	err := f.err
	gate := f.Gate
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	return recs, nil
}
