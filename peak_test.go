package trainload

import (
	"testing"
	"time"
)

func powerSamples(start time.Time, values ...Power) []Sample[Power] {
	samples := make([]Sample[Power], len(values))
	for i, v := range values {
		samples[i] = Sample[Power]{Value: v, Time: start.Add(time.Duration(i) * time.Second)}
	}
	return samples
}

func TestFindPeakConstantSeries(t *testing.T) {
	start := time.Date(2023, 6, 10, 8, 0, 0, 0, time.UTC)
	samples := powerSamples(start, 100, 100, 100, 100, 100, 100, 100, 100, 100, 100)

	peak, ok := FindPeak(samples, 5*time.Second)
	if !ok {
		t.Fatal("expected defined peak")
	}
	if peak.Value != 100 {
		t.Fatalf("expected peak 100, got %d", peak.Value)
	}
	// Ties break toward the earliest window.
	if !peak.Start.Equal(start) {
		t.Fatalf("expected earliest window start %v, got %v", start, peak.Start)
	}
	if !peak.End.Equal(start.Add(4 * time.Second)) {
		t.Fatalf("expected window end %v, got %v", start.Add(4*time.Second), peak.End)
	}
	if peak.Duration != 5*time.Second {
		t.Fatalf("expected duration 5s, got %v", peak.Duration)
	}
}

func TestFindPeakPicksBestWindow(t *testing.T) {
	start := time.Date(2023, 6, 10, 8, 0, 0, 0, time.UTC)
	samples := powerSamples(start, 100, 100, 300, 320, 100, 100)

	peak, ok := FindPeak(samples, 2*time.Second)
	if !ok {
		t.Fatal("expected defined peak")
	}
	if peak.Value != 310 {
		t.Fatalf("expected peak 310, got %d", peak.Value)
	}
	if !peak.Start.Equal(start.Add(2 * time.Second)) {
		t.Fatalf("expected window starting at +2s, got %v", peak.Start)
	}
}

func TestFindPeakShortSeriesUndefined(t *testing.T) {
	start := time.Date(2023, 6, 10, 8, 0, 0, 0, time.UTC)
	samples := powerSamples(start, 100, 100, 100)
	if _, ok := FindPeak(samples, 5*time.Second); ok {
		t.Fatal("expected no peak when the series is shorter than the window")
	}
}

func TestFindPeaksSkipsOversizedWindows(t *testing.T) {
	start := time.Date(2023, 6, 10, 8, 0, 0, 0, time.UTC)
	samples := powerSamples(start, 100, 200, 300, 200)

	durations, err := NewPeakDurations(2*time.Second, time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	peaks := FindPeaks(samples, durations)
	if len(peaks) != 1 {
		t.Fatalf("expected exactly one defined peak, got %d", len(peaks))
	}
	peak, ok := peaks[2*time.Second]
	if !ok {
		t.Fatal("expected the 2s peak to be present")
	}
	if peak.Value != 250 {
		t.Fatalf("expected 2s peak 250, got %d", peak.Value)
	}
}

func TestMergePeaksKeepsBest(t *testing.T) {
	start := time.Date(2023, 6, 10, 8, 0, 0, 0, time.UTC)
	a := map[time.Duration]Peak[Power]{
		5 * time.Second: {Value: 200, Start: start, Duration: 5 * time.Second},
		time.Minute:     {Value: 180, Start: start, Duration: time.Minute},
	}
	b := map[time.Duration]Peak[Power]{
		5 * time.Second: {Value: 250, Start: start.AddDate(0, 0, 1), Duration: 5 * time.Second},
		5 * time.Minute: {Value: 160, Start: start.AddDate(0, 0, 1), Duration: 5 * time.Minute},
	}

	merged := MergePeaks(a, b)
	if len(merged) != 3 {
		t.Fatalf("expected 3 durations, got %d", len(merged))
	}
	if merged[5*time.Second].Value != 250 {
		t.Fatalf("expected the higher 5s peak to win, got %d", merged[5*time.Second].Value)
	}
	if merged[time.Minute].Value != 180 || merged[5*time.Minute].Value != 160 {
		t.Fatal("expected unmatched durations to carry over unchanged")
	}

	// Order must not matter.
	flipped := MergePeaks(b, a)
	for d, p := range merged {
		if flipped[d].Value != p.Value {
			t.Fatalf("merge is not commutative for %v", d)
		}
	}
}

func TestNewPeakDurationsValidates(t *testing.T) {
	if _, err := NewPeakDurations(500 * time.Millisecond); err == nil {
		t.Fatal("expected sub-second duration to be rejected")
	}
	if _, err := NewPeakDurations(0); err == nil {
		t.Fatal("expected zero duration to be rejected")
	}
	if _, err := NewPeakDurations(1500 * time.Millisecond); err == nil {
		t.Fatal("expected fractional-second duration to be rejected")
	}

	pd, err := NewPeakDurations(time.Minute, 5*time.Second, time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := pd.Slice()
	if len(got) != 2 || got[0] != 5*time.Second || got[1] != time.Minute {
		t.Fatalf("expected deduplicated ascending durations, got %v", got)
	}
}
