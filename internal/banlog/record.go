package banlog

import (
	"encoding/json"
	"strconv"
	"time"
)

// Record is one moderation ban entry as returned by the backend.
// Records are immutable once received; there is no primary key beyond
// position within a fetch batch.
type Record struct {
	UserID             FlexID `json:"userId"`
	UserPath           string `json:"userPath"`
	Place              string `json:"place"`
	ModeratorID        FlexID `json:"moderatorId"`
	CreateTime         string `json:"createTime"`
	StartTime          string `json:"startTime"`
	Active             bool   `json:"active"`
	ExcludeAltAccounts bool   `json:"excludeAltAccounts"`
	PrivateReason      string `json:"privateReason"`
	DisplayReason      string `json:"displayReason"`
	ShortReason        string `json:"shortReason"`
}

// FlexID is a user identifier that the backend may encode as either a JSON
// string or a JSON number.
type FlexID string

// UnmarshalJSON accepts both string and numeric encodings.
func (f *FlexID) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	if n == "" {
		*f = ""
		return nil
	}
	*f = FlexID(n.String())
	return nil
}

// MarshalJSON always emits the string form.
func (f FlexID) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(string(f))), nil
}

func (f FlexID) String() string { return string(f) }

// EffectiveTime returns the timestamp a record is ordered and displayed by:
// the start time if present and parsable, else the creation time. Records
// with neither yield the zero time so they sink to the bottom of a
// descending sort.
func (r Record) EffectiveTime() time.Time {
	if t, ok := parseTimestamp(r.StartTime); ok {
		return t
	}
	if t, ok := parseTimestamp(r.CreateTime); ok {
		return t
	}
	return time.Time{}
}

func parseTimestamp(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
