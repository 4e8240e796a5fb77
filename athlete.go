package trainload

import (
	"sort"
	"time"
)

// ProfileEventKind identifies which threshold measurement a ProfileEvent carries.
type ProfileEventKind int

const (
	EventFTP ProfileEventKind = iota
	EventFTHr
	EventWeight
)

func (k ProfileEventKind) String() string {
	switch k {
	case EventFTP:
		return "ftp"
	case EventFTHr:
		return "fthr"
	case EventWeight:
		return "weight"
	default:
		return "unknown"
	}
}

// ProfileEvent is one dated athlete measurement. Only the field matching Kind
// is meaningful; the accessors return ok=false for non-matching kinds.
type ProfileEvent struct {
	Date time.Time
	Kind ProfileEventKind

	ftp    Power
	fthr   HeartRate
	weight Weight
}

// FTPEvent records a new functional threshold power effective from date.
func FTPEvent(date time.Time, ftp Power) ProfileEvent {
	return ProfileEvent{Date: midnightUTC(date), Kind: EventFTP, ftp: ftp}
}

// FTHrEvent records a new functional threshold heart rate effective from date.
func FTHrEvent(date time.Time, fthr HeartRate) ProfileEvent {
	return ProfileEvent{Date: midnightUTC(date), Kind: EventFTHr, fthr: fthr}
}

// WeightEvent records a new body weight effective from date.
func WeightEvent(date time.Time, weight Weight) ProfileEvent {
	return ProfileEvent{Date: midnightUTC(date), Kind: EventWeight, weight: weight}
}

func (e ProfileEvent) FTP() (Power, bool) {
	if e.Kind != EventFTP {
		return 0, false
	}
	return e.ftp, true
}

func (e ProfileEvent) FTHr() (HeartRate, bool) {
	if e.Kind != EventFTHr {
		return 0, false
	}
	return e.fthr, true
}

func (e ProfileEvent) Weight() (Weight, bool) {
	if e.Kind != EventWeight {
		return 0, false
	}
	return e.weight, true
}

// ProfileTimeline is an athlete's threshold history. Each event models a step
// function: its value applies from its effective date until superseded by a
// later event of the same kind. Immutable once constructed.
type ProfileTimeline struct {
	events []ProfileEvent
}

// NewProfileTimeline sorts events ascending by date (stable) and returns a
// read-only timeline.
func NewProfileTimeline(events []ProfileEvent) *ProfileTimeline {
	sorted := make([]ProfileEvent, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})
	return &ProfileTimeline{events: sorted}
}

// FTPAt returns the FTP in effect on date, or ok=false when no FTP event is
// dated at or before it.
func (tl *ProfileTimeline) FTPAt(date time.Time) (Power, bool) {
	return lastAt(tl, date, ProfileEvent.FTP)
}

// FTHrAt returns the threshold heart rate in effect on date.
func (tl *ProfileTimeline) FTHrAt(date time.Time) (HeartRate, bool) {
	return lastAt(tl, date, ProfileEvent.FTHr)
}

// WeightAt returns the body weight in effect on date.
func (tl *ProfileTimeline) WeightAt(date time.Time) (Weight, bool) {
	return lastAt(tl, date, ProfileEvent.Weight)
}

func lastAt[T any](tl *ProfileTimeline, date time.Time, get func(ProfileEvent) (T, bool)) (T, bool) {
	var (
		value T
		found bool
	)
	day := midnightUTC(date)
	for _, e := range tl.events {
		if e.Date.After(day) {
			break
		}
		if v, ok := get(e); ok {
			value = v
			found = true
		}
	}
	return value, found
}

// midnightUTC truncates a timestamp to its UTC calendar day.
func midnightUTC(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
