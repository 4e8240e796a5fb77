package trainload

import (
	"math"
	"time"

	"gonum.org/v1/gonum/stat"
)

const (
	// npWindow is the rolling-average width of the Normalized Power
	// algorithm, in samples (seconds at 1 Hz).
	npWindow = 30

	secondsPerHour = 3600.0
)

// NormalizedPower computes the intensity-weighted average power of an
// activity: 30-sample rolling averages, raised to the 4th power, averaged,
// 4th root. Sequences shorter than the rolling window fall back to the
// arithmetic mean. ok is false for an empty sequence.
//
// All intermediate averages stay in the integer domain; the final root is
// truncated to whole watts.
func NormalizedPower(power []Power) (Power, bool) {
	if len(power) < npWindow {
		return Average(power)
	}

	var sum int64
	for i := 0; i < npWindow; i++ {
		sum += int64(power[i])
	}

	var fourthTotal int64
	count := 0
	for i := npWindow - 1; i < len(power); i++ {
		if i >= npWindow {
			sum += int64(power[i]) - int64(power[i-npWindow])
		}
		rolling := sum / npWindow
		fourthTotal += rolling * rolling * rolling * rolling
		count++
	}

	mean := fourthTotal / int64(count)
	// Two square roots instead of Pow(x, 0.25): Sqrt is correctly rounded,
	// so perfect fourth powers come back exact and a constant stream keeps
	// its constant.
	return Power(math.Sqrt(math.Sqrt(float64(mean)))), true
}

// RollingAverages returns the stride-1 window averages of data. Empty when
// data is shorter than the window.
func RollingAverages[T Metric[T]](data []T, window int) []T {
	if window < 1 || len(data) < window {
		return nil
	}
	out := make([]T, 0, len(data)-window+1)
	for i := 0; i+window <= len(data); i++ {
		avg, _ := Average(data[i : i+window])
		out = append(out, avg)
	}
	return out
}

// CalcTSS scores an effort against threshold power: one hour at NP == FTP is
// exactly 100. The result is truncated to a whole score.
func CalcTSS(ftp Power, duration time.Duration, np Power) TSS {
	intensity := IntensityFactor(ftp, np)
	seconds := duration.Seconds()
	return TSS((seconds * float64(np) * intensity) / (float64(ftp) * secondsPerHour) * 100.0)
}

// hrZoneWeights are the per-second scores of the ten heart-rate zones used by
// CalcHrTSS. Zone 7 sits at threshold and scores like a threshold-power
// effort; everything above 106% of threshold scores 120.
var hrZoneWeights = [10]int64{20, 30, 40, 50, 60, 75, 100, 105, 110, 120}

// hrZoneCutPercents are the upper cut points of zones 1-9 as percentages of
// threshold heart rate.
var hrZoneCutPercents = [9]int64{73, 77, 81, 85, 89, 93, 100, 103, 106}

// CalcHrTSS scores an activity from its full 1 Hz heart-rate trace: every
// sample lands in one of ten zones relative to the threshold heart rate, each
// zone carries a fixed per-second weight, and the weighted second count is
// scaled to an hourly score.
func CalcHrTSS(fthr HeartRate, heartRate []HeartRate) TSS {
	var cuts [9]int64
	for i, pct := range hrZoneCutPercents {
		cuts[i] = int64(fthr) * pct / 100
	}

	var counts [10]int64
	for _, hr := range heartRate {
		zone := len(cuts)
		for i, cut := range cuts {
			if int64(hr) < cut {
				zone = i
				break
			}
		}
		counts[zone]++
	}

	var total int64
	for zone, count := range counts {
		total += count * hrZoneWeights[zone]
	}
	return TSS(total / 3600)
}

// IntensityFactor is NP relative to threshold power.
func IntensityFactor(ftp, np Power) float64 {
	return float64(np) / float64(ftp)
}

// VariabilityIndex is NP relative to average power; 1.0 means a perfectly
// steady effort.
func VariabilityIndex(np, avgPower Power) float64 {
	return float64(np) / float64(avgPower)
}

// TotalWork sums a 1 Hz power trace into kilojoules.
func TotalWork(power []Power) Work {
	var joules int64
	for _, p := range power {
		joules += int64(p)
	}
	return Work(float64(joules) / 1000.0)
}

// AltitudeChanges decomposes an altitude trace into total gain and total
// loss. A total is nil until the trace actually moves in that direction, so a
// flat trace reports neither gain nor loss rather than zero.
func AltitudeChanges(altitude []Altitude) (gain, loss *AltitudeDiff) {
	for i := 1; i < len(altitude); i++ {
		prev, next := altitude[i-1], altitude[i]
		switch {
		case prev.Less(next):
			gain = addDiff(gain, AltitudeDiff(next-prev))
		case next.Less(prev):
			loss = addDiff(loss, AltitudeDiff(prev-next))
		}
	}
	return gain, loss
}

func addDiff(acc *AltitudeDiff, d AltitudeDiff) *AltitudeDiff {
	if acc == nil {
		return &d
	}
	sum := *acc + d
	return &sum
}

// AerobicDecoupling measures power:HR ratio drift between the first and
// second half of an activity, in percent. Negative values indicate the heart
// rate drifted up relative to power output. ok is false when the paired
// series is too short or a half averages to zero.
func AerobicDecoupling(power []Power, heartRate []HeartRate) (float64, bool) {
	n := len(power)
	if n != len(heartRate) || n < 20 {
		return 0, false
	}

	pw := make([]float64, n)
	hr := make([]float64, n)
	for i := range power {
		pw[i] = float64(power[i])
		hr[i] = float64(heartRate[i])
	}

	mid := n / 2
	p1, h1 := stat.Mean(pw[:mid], nil), stat.Mean(hr[:mid], nil)
	p2, h2 := stat.Mean(pw[mid:], nil), stat.Mean(hr[mid:], nil)
	if p1 == 0 || p2 == 0 || h1 == 0 || h2 == 0 {
		return 0, false
	}

	first := p1 / h1
	second := p2 / h2
	return ((second / first) - 1.0) * 100.0, true
}
