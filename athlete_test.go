package trainload

import (
	"testing"
	"time"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestProfileTimelineStepFunction(t *testing.T) {
	tl := NewProfileTimeline([]ProfileEvent{
		FTPEvent(day(2022, 7, 8), 200),
		FTPEvent(day(2022, 8, 8), 210),
		FTPEvent(day(2022, 9, 8), 220),
	})

	ftp, ok := tl.FTPAt(day(2022, 9, 1))
	if !ok {
		t.Fatal("expected an FTP in effect")
	}
	if ftp != 210 {
		t.Fatalf("expected FTP 210 on 2022-09-01, got %d", ftp)
	}
}

func TestProfileTimelineBeforeFirstEventUndefined(t *testing.T) {
	tl := NewProfileTimeline([]ProfileEvent{FTPEvent(day(2022, 7, 8), 200)})
	if _, ok := tl.FTPAt(day(2022, 7, 7)); ok {
		t.Fatal("expected no FTP before the earliest event")
	}
}

func TestProfileTimelineBoundaryDays(t *testing.T) {
	tl := NewProfileTimeline([]ProfileEvent{
		FTPEvent(day(2022, 7, 8), 200),
		FTPEvent(day(2022, 8, 8), 210),
	})

	if ftp, _ := tl.FTPAt(day(2022, 7, 8)); ftp != 200 {
		t.Fatalf("event must apply on its own date, got %d", ftp)
	}
	if ftp, _ := tl.FTPAt(day(2022, 8, 8)); ftp != 210 {
		t.Fatalf("later event must apply on its own date, got %d", ftp)
	}
	if ftp, _ := tl.FTPAt(day(2030, 1, 1)); ftp != 210 {
		t.Fatalf("latest event must apply indefinitely, got %d", ftp)
	}
}

func TestProfileTimelineKindsIndependent(t *testing.T) {
	tl := NewProfileTimeline([]ProfileEvent{
		FTPEvent(day(2022, 7, 8), 200),
		WeightEvent(day(2022, 7, 10), 71.5),
		FTHrEvent(day(2022, 8, 1), 178),
	})

	if _, ok := tl.FTHrAt(day(2022, 7, 20)); ok {
		t.Fatal("weight and FTP events must not satisfy an FTHr lookup")
	}
	fthr, ok := tl.FTHrAt(day(2022, 8, 1))
	if !ok || fthr != 178 {
		t.Fatalf("expected FTHr 178, got %d (ok=%v)", fthr, ok)
	}
	weight, ok := tl.WeightAt(day(2023, 1, 1))
	if !ok || weight != 71.5 {
		t.Fatalf("expected weight 71.5, got %v (ok=%v)", weight, ok)
	}
}

func TestProfileTimelineUnsortedInput(t *testing.T) {
	tl := NewProfileTimeline([]ProfileEvent{
		FTPEvent(day(2022, 9, 8), 220),
		FTPEvent(day(2022, 7, 8), 200),
		FTPEvent(day(2022, 8, 8), 210),
	})
	if ftp, _ := tl.FTPAt(day(2022, 8, 15)); ftp != 210 {
		t.Fatalf("expected FTP 210 from sorted lookup, got %d", ftp)
	}
}

func TestProfileTimelineNormalizesTimestamps(t *testing.T) {
	// An event recorded late in the evening still applies to activities
	// earlier the same day.
	tl := NewProfileTimeline([]ProfileEvent{
		FTPEvent(time.Date(2022, 7, 8, 22, 30, 0, 0, time.UTC), 200),
	})
	if ftp, ok := tl.FTPAt(time.Date(2022, 7, 8, 6, 0, 0, 0, time.UTC)); !ok || ftp != 200 {
		t.Fatalf("expected FTP 200 anywhere on the event day, got %d (ok=%v)", ftp, ok)
	}
}

func TestProfileEventAccessorsMatchKind(t *testing.T) {
	e := FTPEvent(day(2022, 7, 8), 200)
	if _, ok := e.FTHr(); ok {
		t.Fatal("FTP event must not expose an FTHr")
	}
	if _, ok := e.Weight(); ok {
		t.Fatal("FTP event must not expose a weight")
	}
	if ftp, ok := e.FTP(); !ok || ftp != 200 {
		t.Fatalf("expected FTP 200, got %d (ok=%v)", ftp, ok)
	}
	if e.Kind.String() != "ftp" {
		t.Fatalf("expected kind string ftp, got %s", e.Kind)
	}
}
