package trainload

import (
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/tormoder/fit"
)

// Activity is the decoded, immutable sample view of one FIT activity file.
// Sample slices are in record order; FIT writes records in ascending time
// order and the engine never re-sorts them.
type Activity struct {
	Name      string
	Sport     string
	StartTime time.Time     // zero when the file carries no valid start
	Duration  time.Duration // zero when no duration field is present

	Power     []Sample[Power]
	HeartRate []Sample[HeartRate]
	Speed     []Sample[Speed]
	Altitude  []Sample[Altitude]
}

// HasStartTime reports whether the activity carries a usable start timestamp.
func (a *Activity) HasStartTime() bool { return !a.StartTime.IsZero() }

// Date is the UTC calendar day the activity started on.
func (a *Activity) Date() time.Time { return midnightUTC(a.StartTime) }

// DecodeActivityFile reads and decodes one activity FIT file.
func DecodeActivityFile(path string) (*Activity, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open FIT file: %w", err)
	}
	defer f.Close()
	return DecodeActivity(f)
}

// DecodeActivity decodes an activity FIT stream into per-metric sample
// series. Sensor fields carrying the FIT invalid sentinel, and non-finite
// float values, are dropped here so the engine can assume totally ordered
// sample domains.
func DecodeActivity(r io.Reader) (*Activity, error) {
	decoded, err := fit.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode FIT file: %w", err)
	}

	activityFile, err := decoded.Activity()
	if err != nil {
		return nil, fmt.Errorf("activity FIT expected: %w", err)
	}
	if len(activityFile.Sessions) == 0 {
		return nil, fmt.Errorf("activity file has no session message")
	}
	session := activityFile.Sessions[0]

	act := &Activity{
		Sport:     fmt.Sprint(session.Sport),
		StartTime: validTime(session.StartTime),
		Duration:  sessionDuration(session),
	}

	for _, rec := range activityFile.Records {
		if rec == nil {
			continue
		}
		ts := validTime(rec.Timestamp)
		if ts.IsZero() {
			continue
		}

		if rec.Power != math.MaxUint16 {
			act.Power = append(act.Power, Sample[Power]{Value: Power(rec.Power), Time: ts})
		}
		if rec.HeartRate != math.MaxUint8 {
			act.HeartRate = append(act.HeartRate, Sample[HeartRate]{Value: HeartRate(rec.HeartRate), Time: ts})
		}
		if speed, ok := recordSpeed(rec); ok {
			act.Speed = append(act.Speed, Sample[Speed]{Value: speed, Time: ts})
		}
		if altitude, ok := recordAltitude(rec); ok {
			act.Altitude = append(act.Altitude, Sample[Altitude]{Value: altitude, Time: ts})
		}
	}

	if act.StartTime.IsZero() && len(act.Power) > 0 {
		act.StartTime = act.Power[0].Time
	}
	if act.StartTime.IsZero() && len(act.HeartRate) > 0 {
		act.StartTime = act.HeartRate[0].Time
	}

	return act, nil
}

// sessionDuration picks the first available duration field: moving time,
// elapsed time, then timer time.
func sessionDuration(session *fit.SessionMsg) time.Duration {
	for _, seconds := range []float64{
		session.GetTotalMovingTimeScaled(),
		session.GetTotalElapsedTimeScaled(),
		session.GetTotalTimerTimeScaled(),
	} {
		if isFinite(seconds) && seconds > 0 {
			return time.Duration(seconds) * time.Second
		}
	}
	return 0
}

func recordSpeed(rec *fit.RecordMsg) (Speed, bool) {
	speed := rec.GetEnhancedSpeedScaled()
	if isFinite(speed) && speed >= 0 {
		return Speed(speed), true
	}
	speed = rec.GetSpeedScaled()
	if isFinite(speed) && speed >= 0 {
		return Speed(speed), true
	}
	return 0, false
}

func recordAltitude(rec *fit.RecordMsg) (Altitude, bool) {
	altitude := rec.GetEnhancedAltitudeScaled()
	if isFinite(altitude) {
		return Altitude(altitude), true
	}
	altitude = rec.GetAltitudeScaled()
	if isFinite(altitude) {
		return Altitude(altitude), true
	}
	return 0, false
}

func validTime(t time.Time) time.Time {
	if t.IsZero() || fit.IsBaseTime(t) {
		return time.Time{}
	}
	return t
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
