package internal

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

type dateKind int

const (
	dateKindNone dateKind = iota
	dateKindEpoch
	dateKindInstant
	dateKindString
)

// DateValue carries a log's date in whichever shape the client sent it:
// epoch seconds, a timestamp, or an ISO-like string. The raw form is kept
// so the week-window counters can compare real timestamps, while DayKey
// gives the canonical local-calendar day used for streaks.
type DateValue struct {
	kind    dateKind
	seconds int64
	instant time.Time
	raw     string
}

func EpochSeconds(n int64) DateValue {
	return DateValue{kind: dateKindEpoch, seconds: n}
}

func CalendarInstant(t time.Time) DateValue {
	return DateValue{kind: dateKindInstant, instant: t}
}

func IsoString(s string) DateValue {
	return DateValue{kind: dateKindString, raw: s}
}

func (d DateValue) IsZero() bool {
	return d.kind == dateKindNone
}

// DayKey normalizes the date to "YYYY-MM-DD" on the local calendar, so a
// day boundary matches the user's own wall-clock day. Malformed strings
// fall back to their first 10 characters.
func (d DateValue) DayKey() string {
	switch d.kind {
	case dateKindEpoch:
		return time.Unix(d.seconds, 0).Local().Format("2006-01-02")
	case dateKindInstant:
		return d.instant.Local().Format("2006-01-02")
	case dateKindString:
		if len(d.raw) > 10 {
			return d.raw[:10]
		}
		return d.raw
	}
	return ""
}

var isoLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// Time returns the raw timestamp behind the date, for comparisons against
// rolling-window boundaries. Unparseable strings report ok=false.
func (d DateValue) Time() (time.Time, bool) {
	switch d.kind {
	case dateKindEpoch:
		return time.Unix(d.seconds, 0), true
	case dateKindInstant:
		return d.instant, true
	case dateKindString:
		for _, layout := range isoLayouts {
			if t, err := time.ParseInLocation(layout, d.raw, time.Local); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

// Text is the storage form: a plain scalar string round-tripped by
// ParseDateText. Instants are collapsed to RFC3339 strings.
func (d DateValue) Text() string {
	switch d.kind {
	case dateKindEpoch:
		return strconv.FormatInt(d.seconds, 10)
	case dateKindInstant:
		return d.instant.Format(time.RFC3339)
	case dateKindString:
		return d.raw
	}
	return ""
}

func ParseDateText(s string) DateValue {
	if s == "" {
		return DateValue{}
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return EpochSeconds(n)
	}
	return IsoString(s)
}

func (d DateValue) MarshalJSON() ([]byte, error) {
	switch d.kind {
	case dateKindEpoch:
		return []byte(strconv.FormatInt(d.seconds, 10)), nil
	case dateKindInstant:
		return json.Marshal(d.instant.Format(time.RFC3339))
	case dateKindString:
		return json.Marshal(d.raw)
	}
	return []byte("null"), nil
}

func (d *DateValue) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*d = DateValue{}
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*d = IsoString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("date must be a string or epoch seconds: %w", err)
	}
	secs, err := n.Int64()
	if err != nil {
		return fmt.Errorf("date must be whole epoch seconds: %w", err)
	}
	*d = EpochSeconds(secs)
	return nil
}
