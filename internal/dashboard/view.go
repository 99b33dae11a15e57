package dashboard

import (
	"fmt"
	"strings"
	"time"

	"github.com/csnsor/bs-webpanel/internal/enrich"
)

// RecordView is the display projection of one enriched ban record. Building
// a view is pure: all derived fields are computed from the record and the
// render time alone.
type RecordView struct {
	UserID             string `json:"userId"`
	Username           string `json:"username"`
	DisplayName        string `json:"displayName"`
	AvatarURL          string `json:"avatarUrl"`
	ModeratorID        string `json:"moderatorId"`
	StatusLabel        string `json:"status"`
	Active             bool   `json:"active"`
	RelativeTime       string `json:"relativeTime"`
	AbsoluteTime       string `json:"absoluteTime"`
	ReasonTag          string `json:"reasonTag"`
	ShortReason        string `json:"shortReason"`
	DisplayReason      string `json:"displayReason"`
	PrivateReason      string `json:"privateReason"`
	ExcludeAltAccounts bool   `json:"excludeAltAccounts"`
}

// PageView is everything the page template needs for one render.
type PageView struct {
	Records     []RecordView
	ActiveCount int
	TotalCount  int
	State       string
	Error       string
	Countdown   string
	LastUpdated string
	Query       string
}

// BuildRecordView derives the display fields for one record at render time.
func BuildRecordView(r enrich.Record, now time.Time) RecordView {
	status := "Ended"
	if r.Active {
		status = "Active"
	}
	eff := r.EffectiveTime()

	return RecordView{
		UserID:             r.UserID.String(),
		Username:           r.Profile.Username,
		DisplayName:        r.Profile.Display(),
		AvatarURL:          r.Profile.AvatarURL,
		ModeratorID:        r.ModeratorID.String(),
		StatusLabel:        status,
		Active:             r.Active,
		RelativeTime:       relativeSince(eff, now),
		AbsoluteTime:       absoluteTime(eff),
		ReasonTag:          ReasonSlug(r.ShortReason),
		ShortReason:        r.ShortReason,
		DisplayReason:      r.DisplayReason,
		PrivateReason:      r.PrivateReason,
		ExcludeAltAccounts: r.ExcludeAltAccounts,
	}
}

// BuildPageView projects a (possibly filtered) record list plus session
// display state into a PageView. Aggregate counts cover the rendered list,
// not the full set.
func BuildPageView(records []enrich.Record, snap Snapshot, query string, now time.Time) PageView {
	views := make([]RecordView, 0, len(records))
	active := 0
	for _, r := range records {
		v := BuildRecordView(r, now)
		if v.Active {
			active++
		}
		views = append(views, v)
	}

	lastUpdated := ""
	if !snap.LastUpdated.IsZero() {
		lastUpdated = absoluteTime(snap.LastUpdated)
	}

	return PageView{
		Records:     views,
		ActiveCount: active,
		TotalCount:  len(views),
		State:       snap.State.String(),
		Error:       snap.Error,
		Countdown:   snap.Countdown,
		LastUpdated: lastUpdated,
		Query:       query,
	}
}

// relativeSince renders elapsed time in the dashboard's coarse buckets.
func relativeSince(t, now time.Time) string {
	if t.IsZero() {
		return "unknown"
	}
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}

// absoluteTime formats a timestamp for display. Zero times render as a dash.
func absoluteTime(t time.Time) string {
	if t.IsZero() {
		return "—"
	}
	return t.UTC().Format("2006-01-02 15:04 UTC")
}

// ReasonSlug normalises a short reason into a tag: lowercase with
// non-alphanumeric runs collapsed to single hyphens. Absent reasons map to
// "other".
func ReasonSlug(shortReason string) string {
	s := strings.ToLower(strings.TrimSpace(shortReason))
	if s == "" {
		return "other"
	}
	var b strings.Builder
	lastHyphen := false
	for _, r := range s {
		isAlnum := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		if isAlnum {
			b.WriteRune(r)
			lastHyphen = false
			continue
		}
		if !lastHyphen && b.Len() > 0 {
			b.WriteByte('-')
			lastHyphen = true
		}
	}
	out := strings.TrimRight(b.String(), "-")
	if out == "" {
		return "other"
	}
	return out
}
