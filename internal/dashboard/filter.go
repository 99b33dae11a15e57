package dashboard

import (
	"strings"

	"github.com/csnsor/bs-webpanel/internal/enrich"
)

// Filter returns the subset of records whose searchable fields contain the
// query, case-insensitively. It is pure and order-preserving: a blank query
// returns the input unchanged, and filtering never reorders records.
func Filter(records []enrich.Record, query string) []enrich.Record {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return records
	}

	out := make([]enrich.Record, 0, len(records))
	for _, r := range records {
		if strings.Contains(searchBlob(r), q) {
			out = append(out, r)
		}
	}
	return out
}

// searchBlob concatenates the fields a query is matched against. Missing
// fields contribute nothing.
func searchBlob(r enrich.Record) string {
	parts := []string{
		r.Profile.DisplayName,
		r.Profile.Username,
		r.UserID.String(),
		r.ModeratorID.String(),
		r.ShortReason,
		r.DisplayReason,
		r.PrivateReason,
	}
	return strings.ToLower(strings.Join(parts, " "))
}
