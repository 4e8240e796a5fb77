// Package trainload computes training-load metrics (Normalized Power, TSS,
// peak efforts, CTL/ATL/TSB) from time-stamped activity sensor data.
package trainload

import "time"

// Metric is satisfied by any measurement type that can be summed, averaged
// and totally ordered. Integer-backed metrics average with truncating integer
// division; float-backed metrics average in float64.
type Metric[T any] interface {
	Add(T) T
	DivN(n int) T
	Less(T) bool
}

// Power in watts.
type Power int64

func (p Power) Add(o Power) Power { return p + o }
func (p Power) DivN(n int) Power { return p / Power(n) }
func (p Power) Less(o Power) bool { return p < o }

// HeartRate in beats per minute.
type HeartRate int64

func (h HeartRate) Add(o HeartRate) HeartRate { return h + o }
func (h HeartRate) DivN(n int) HeartRate { return h / HeartRate(n) }
func (h HeartRate) Less(o HeartRate) bool { return h < o }

// Speed in meters per second.
type Speed float64

func (s Speed) Add(o Speed) Speed { return s + o }
func (s Speed) DivN(n int) Speed { return s / Speed(n) }
func (s Speed) Less(o Speed) bool { return s < o }

// Altitude in meters above sea level.
type Altitude float64

func (a Altitude) Less(o Altitude) bool { return a < o }

// AltitudeDiff is a signed altitude change in meters.
type AltitudeDiff float64

// Work in kilojoules.
type Work float64

// Weight in kilograms.
type Weight float64

// TSS is a Training Stress Score for an activity or a day.
type TSS int64

// Sample pairs a measurement with the time it was recorded. Sample sequences
// are supplied by the decoder in ascending-timestamp order and are never
// re-sorted by the engine.
type Sample[T any] struct {
	Value T
	Time  time.Time
}

// Average returns the mean of values, or ok=false when values is empty.
func Average[T Metric[T]](values []T) (T, bool) {
	var zero T
	if len(values) == 0 {
		return zero, false
	}
	sum := values[0]
	for _, v := range values[1:] {
		sum = sum.Add(v)
	}
	return sum.DivN(len(values)), true
}

// Max returns the largest of values, or ok=false when values is empty.
func Max[T Metric[T]](values []T) (T, bool) {
	var zero T
	if len(values) == 0 {
		return zero, false
	}
	max := values[0]
	for _, v := range values[1:] {
		if max.Less(v) {
			max = v
		}
	}
	return max, true
}

func sampleValues[T any](samples []Sample[T]) []T {
	values := make([]T, len(samples))
	for i, s := range samples {
		values[i] = s.Value
	}
	return values
}
