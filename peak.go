package trainload

import (
	"fmt"
	"sort"
	"time"
)

// Peak is the best sustained effort of a metric over a requested duration:
// the highest sliding-window average, with the winning window's time bounds.
type Peak[T Metric[T]] struct {
	Value    T
	Start    time.Time
	End      time.Time
	Duration time.Duration
}

// FindPeak slides a fixed-length window across samples and returns the window
// with the highest average. The window length in samples equals the duration
// in seconds: the series is assumed to be uniformly sampled at 1 Hz. With
// non-uniform input the returned value has no physical meaning.
//
// When several windows share the maximum average, the earliest one wins.
// ok is false when the series is shorter than the window.
func FindPeak[T Metric[T]](samples []Sample[T], duration time.Duration) (Peak[T], bool) {
	window := int(duration / time.Second)
	if window < 1 || len(samples) < window {
		return Peak[T]{}, false
	}

	var best Peak[T]
	for i := 0; i+window <= len(samples); i++ {
		avg, _ := Average(sampleValues(samples[i : i+window]))
		if i > 0 && !best.Value.Less(avg) {
			continue
		}
		best = Peak[T]{
			Value:    avg,
			Start:    samples[i].Time,
			End:      samples[i+window-1].Time,
			Duration: duration,
		}
	}
	return best, true
}

// FindPeaks computes one Peak per requested duration, independently. Durations
// whose window exceeds the series length are absent from the result.
func FindPeaks[T Metric[T]](samples []Sample[T], durations PeakDurations) map[time.Duration]Peak[T] {
	peaks := make(map[time.Duration]Peak[T], len(durations.durations))
	for _, d := range durations.durations {
		if peak, ok := FindPeak(samples, d); ok {
			peaks[d] = peak
		}
	}
	return peaks
}

// MergePeaks keeps the higher peak per duration across both maps. The merge is
// commutative and associative, so cross-activity reductions may run in any
// order.
func MergePeaks[T Metric[T]](a, b map[time.Duration]Peak[T]) map[time.Duration]Peak[T] {
	merged := make(map[time.Duration]Peak[T], len(a)+len(b))
	for d, p := range a {
		merged[d] = p
	}
	for d, p := range b {
		if cur, ok := merged[d]; !ok || cur.Value.Less(p.Value) {
			merged[d] = p
		}
	}
	return merged
}

// PeakDurations is a validated set of peak target durations.
type PeakDurations struct {
	durations []time.Duration
}

// NewPeakDurations validates that every duration is a whole number of seconds
// (at least one), deduplicates, and sorts ascending. Whole seconds map 1:1 to
// window sample counts at 1 Hz; fractional durations would silently truncate.
func NewPeakDurations(durations ...time.Duration) (PeakDurations, error) {
	seen := make(map[time.Duration]struct{}, len(durations))
	out := make([]time.Duration, 0, len(durations))
	for _, d := range durations {
		if d < time.Second {
			return PeakDurations{}, fmt.Errorf("peak duration %s is shorter than one second", d)
		}
		if d%time.Second != 0 {
			return PeakDurations{}, fmt.Errorf("peak duration %s is not a whole number of seconds", d)
		}
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return PeakDurations{durations: out}, nil
}

// Slice returns the validated durations in ascending order.
func (pd PeakDurations) Slice() []time.Duration {
	out := make([]time.Duration, len(pd.durations))
	copy(out, pd.durations)
	return out
}
