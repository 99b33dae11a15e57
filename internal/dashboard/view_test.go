package dashboard

import (
	"testing"
	"time"

	"github.com/csnsor/bs-webpanel/internal/banlog"
	"github.com/csnsor/bs-webpanel/internal/enrich"
	"github.com/csnsor/bs-webpanel/internal/profile"
)

func TestBuildRecordViewStatusAndFallback(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	active := enrich.Record{
		Record: banlog.Record{
			UserID:      "42",
			Active:      true,
			StartTime:   "2024-06-01T11:30:00Z",
			ShortReason: "Exploiting",
		},
		Profile: profile.Profile{Username: "builderman", AvatarURL: "https://cdn.example/42.png"},
	}
	v := BuildRecordView(active, now)
	if v.StatusLabel != "Active" {
		t.Errorf("status = %q, want Active", v.StatusLabel)
	}
	if v.DisplayName != "builderman" {
		t.Errorf("display name = %q, want username fallback", v.DisplayName)
	}
	if v.RelativeTime != "30m ago" {
		t.Errorf("relative = %q, want 30m ago", v.RelativeTime)
	}
	if v.ReasonTag != "exploiting" {
		t.Errorf("reason tag = %q", v.ReasonTag)
	}

	ended := enrich.Record{Record: banlog.Record{UserID: "7", Active: false}}
	if got := BuildRecordView(ended, now).StatusLabel; got != "Ended" {
		t.Errorf("status = %q, want Ended", got)
	}
}

func TestBuildRecordViewCreateTimeFallback(t *testing.T) {
	now := time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)
	r := enrich.Record{
		Record: banlog.Record{
			UserID:     "1",
			CreateTime: "2024-01-01T00:00:00Z",
			// no start time: ordering and display fall back to creation
		},
	}
	v := BuildRecordView(r, now)
	if v.RelativeTime != "2d ago" {
		t.Errorf("relative = %q, want 2d ago", v.RelativeTime)
	}
	if v.AbsoluteTime != "2024-01-01 00:00 UTC" {
		t.Errorf("absolute = %q", v.AbsoluteTime)
	}
}

func TestBuildRecordViewMissingTimestamps(t *testing.T) {
	v := BuildRecordView(enrich.Record{Record: banlog.Record{UserID: "1"}}, time.Now())
	if v.RelativeTime != "unknown" {
		t.Errorf("relative = %q, want unknown", v.RelativeTime)
	}
	if v.AbsoluteTime != "—" {
		t.Errorf("absolute = %q, want dash", v.AbsoluteTime)
	}
}

func TestRelativeSinceBuckets(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		ago  time.Duration
		want string
	}{
		{30 * time.Second, "just now"},
		{59 * time.Second, "just now"},
		{90 * time.Second, "1m ago"},
		{59 * time.Minute, "59m ago"},
		{2 * time.Hour, "2h ago"},
		{23*time.Hour + 59*time.Minute, "23h ago"},
		{25 * time.Hour, "1d ago"},
		{30 * 24 * time.Hour, "30d ago"},
	}
	for _, tc := range cases {
		if got := relativeSince(now.Add(-tc.ago), now); got != tc.want {
			t.Errorf("ago %v: got %q, want %q", tc.ago, got, tc.want)
		}
	}
}

func TestReasonSlug(t *testing.T) {
	cases := []struct{ in, want string }{
		{"Exploiting", "exploiting"},
		{"Account Theft", "account-theft"},
		{"  Toxic / Abusive!! ", "toxic-abusive"},
		{"", "other"},
		{"   ", "other"},
		{"###", "other"},
		{"Exploiting", "exploiting"}, // equal inputs yield equal tags
	}
	for _, tc := range cases {
		if got := ReasonSlug(tc.in); got != tc.want {
			t.Errorf("ReasonSlug(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestBuildPageViewCounts(t *testing.T) {
	now := time.Now()
	recs := []enrich.Record{
		{Record: banlog.Record{UserID: "1", Active: true}},
		{Record: banlog.Record{UserID: "2", Active: false}},
		{Record: banlog.Record{UserID: "3", Active: false}},
	}
	snap := Snapshot{State: StateRendered, Countdown: "12s", LastUpdated: now}

	view := BuildPageView(recs, snap, "", now)
	if view.ActiveCount != 1 || view.TotalCount != 3 {
		t.Fatalf("counts = %d/%d, want 1/3", view.ActiveCount, view.TotalCount)
	}
	if view.State != "rendered" {
		t.Errorf("state = %q", view.State)
	}
	if view.Countdown != "12s" {
		t.Errorf("countdown = %q", view.Countdown)
	}
	if view.LastUpdated == "" {
		t.Error("last updated should be set")
	}
}

func TestBuildPageViewCountsFollowFilter(t *testing.T) {
	now := time.Now()
	recs := []enrich.Record{
		{Record: banlog.Record{UserID: "1", Active: true, ShortReason: "Spam"}},
		{Record: banlog.Record{UserID: "2", Active: true, ShortReason: "Exploiting"}},
	}
	filtered := Filter(recs, "spam")
	view := BuildPageView(filtered, Snapshot{State: StateRendered}, "spam", now)
	if view.ActiveCount != 1 || view.TotalCount != 1 {
		t.Fatalf("counts = %d/%d, want 1/1 over the filtered list", view.ActiveCount, view.TotalCount)
	}
	if view.Query != "spam" {
		t.Errorf("query = %q", view.Query)
	}
}

func TestBuildPageViewEmpty(t *testing.T) {
	view := BuildPageView(nil, Snapshot{State: StateIdle, Countdown: "--"}, "", time.Now())
	if view.ActiveCount != 0 || view.TotalCount != 0 || len(view.Records) != 0 {
		t.Fatal("empty input should produce empty view")
	}
	if view.LastUpdated != "" {
		t.Errorf("last updated = %q, want empty before first cycle", view.LastUpdated)
	}
}
