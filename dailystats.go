package trainload

import (
	"fmt"
	"math"
	"sort"
	"time"
)

const (
	ctlTimeConstant = 42.0
	atlTimeConstant = 7.0

	// DefaultConvergenceThreshold bounds the simulator's zero-load
	// extension tail: synthetic rest days stop once CTL, ATL and TSB are
	// all within this distance of zero.
	DefaultConvergenceThreshold = 0.5

	// maxExtensionDays caps the extension tail regardless of the
	// convergence test. At e^(-1/42) decay even a CTL in the thousands is
	// below any sensible threshold well inside a year.
	maxExtensionDays = 3650
)

// DailyTSS is the accumulated Training Stress Score of one calendar day.
type DailyTSS struct {
	Date time.Time
	TSS  TSS
}

// DailyStats is one day of the rolling fitness/fatigue model.
type DailyStats struct {
	Date time.Time
	TSS  TSS
	CTL  float64
	ATL  float64
	TSB  float64
}

// AccumulateDailyTSS turns raw per-activity (date, TSS) entries into a
// strictly contiguous daily series: entries sharing a date are summed,
// entries dated at or before the checkpoint are discarded, and every gap
// between consecutive days (including the checkpoint's own gap, when
// resuming) is filled with zero-TSS days.
func AccumulateDailyTSS(entries []DailyTSS, checkpoint *DailyStats) []DailyTSS {
	byDate := make(map[time.Time]TSS, len(entries))
	for _, e := range entries {
		day := midnightUTC(e.Date)
		if checkpoint != nil && !day.After(midnightUTC(checkpoint.Date)) {
			continue
		}
		byDate[day] += e.TSS
	}
	if len(byDate) == 0 {
		return nil
	}

	days := make([]time.Time, 0, len(byDate))
	for day := range byDate {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	out := make([]DailyTSS, 0, len(days))
	prev := days[0]
	if checkpoint != nil {
		prev = midnightUTC(checkpoint.Date).AddDate(0, 0, 1)
	}
	for _, day := range days {
		for ; prev.Before(day); prev = prev.AddDate(0, 0, 1) {
			out = append(out, DailyTSS{Date: prev})
		}
		out = append(out, DailyTSS{Date: day, TSS: byDate[day]})
		prev = day.AddDate(0, 0, 1)
	}
	return out
}

// NextDailyStats advances the fitness/fatigue recurrence by one day. Each
// load is an exponentially weighted average of daily TSS: chronic over a
// 42-day time constant, acute over 7 days.
func NextDailyStats(yesterday DailyStats, day DailyTSS) DailyStats {
	ctl := trainingLoad(ctlTimeConstant, yesterday.CTL, day.TSS)
	atl := trainingLoad(atlTimeConstant, yesterday.ATL, day.TSS)
	return DailyStats{
		Date: day.Date,
		TSS:  day.TSS,
		CTL:  ctl,
		ATL:  atl,
		TSB:  ctl - atl,
	}
}

func trainingLoad(timeConstant, yesterday float64, tss TSS) float64 {
	decay := math.Exp(-1.0 / timeConstant)
	return yesterday*decay + float64(tss)*(1.0-decay)
}

// Simulator rolls the daily CTL/ATL/TSB recurrence over a normalized TSS
// series and extends it with synthetic rest days until the modeled load
// decays to baseline.
type Simulator struct {
	threshold float64
}

// NewSimulator rejects a non-positive convergence threshold; everything else
// about the simulator is fixed by the model.
func NewSimulator(convergenceThreshold float64) (*Simulator, error) {
	if convergenceThreshold <= 0 {
		return nil, fmt.Errorf("convergence threshold must be positive, got %v", convergenceThreshold)
	}
	return &Simulator{threshold: convergenceThreshold}, nil
}

// Run normalizes entries (see AccumulateDailyTSS) and rolls the recurrence
// day by day, starting from checkpoint when supplied, else from a synthetic
// zero state dated the day before the first entry. Every real day is
// retained; the zero-TSS extension tail ends once CTL, ATL and TSB have all
// converged within the threshold (bounded by a hard cap). Empty input yields
// an empty series.
func (s *Simulator) Run(entries []DailyTSS, checkpoint *DailyStats) []DailyStats {
	normalized := AccumulateDailyTSS(entries, checkpoint)
	if len(normalized) == 0 {
		return nil
	}

	var state DailyStats
	if checkpoint != nil {
		state = *checkpoint
	} else {
		state = DailyStats{Date: normalized[0].Date.AddDate(0, 0, -1)}
	}

	out := make([]DailyStats, 0, len(normalized))
	for _, day := range normalized {
		state = NextDailyStats(state, day)
		out = append(out, state)
	}

	for i := 0; i < maxExtensionDays && !s.converged(state); i++ {
		state = NextDailyStats(state, DailyTSS{Date: state.Date.AddDate(0, 0, 1)})
		out = append(out, state)
	}
	return out
}

func (s *Simulator) converged(st DailyStats) bool {
	return math.Abs(st.CTL) <= s.threshold &&
		math.Abs(st.ATL) <= s.threshold &&
		math.Abs(st.TSB) <= s.threshold
}
