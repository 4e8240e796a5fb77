package trainload

import (
	"fmt"
	"strings"
	"time"
)

// BuildTrainingSummary turns a batch of analyzed activities and the rolled
// daily series into a readable training report: today's fitness/fatigue/form,
// a form assessment, and one load line per activity.
func BuildTrainingSummary(stats []DailyStats, activities []ActivitySummaryLine, today time.Time) string {
	var b strings.Builder

	day := midnightUTC(today)
	if todays, ok := statsOn(stats, day); ok {
		fmt.Fprintf(
			&b,
			"Fitness (CTL) %.1f | Fatigue (ATL) %.1f | Form (TSB) %+.1f\n",
			todays.CTL,
			todays.ATL,
			todays.TSB,
		)
		b.WriteString(formDescription(todays.TSB))
		b.WriteByte('\n')
	} else {
		b.WriteString("No training load history covers today.\n")
	}

	if len(activities) > 0 {
		b.WriteString("\nActivities\n")
		for _, line := range activities {
			b.WriteString("- ")
			b.WriteString(line.String())
			b.WriteByte('\n')
		}
	}

	return strings.TrimSpace(b.String())
}

// ActivitySummaryLine is one activity's one-line load report.
type ActivitySummaryLine struct {
	Name     string
	Date     time.Time
	Analysis *ActivityAnalysis
}

func (l ActivitySummaryLine) String() string {
	var b strings.Builder
	if l.Name != "" {
		fmt.Fprintf(&b, "%s: ", l.Name)
	}
	if !l.Date.IsZero() {
		fmt.Fprintf(&b, "%s: ", l.Date.Format("2006-01-02"))
	}

	a := l.Analysis
	if a == nil {
		b.WriteString("no analysis")
		return b.String()
	}

	switch {
	case a.TSS != nil && a.IntensityFactor != nil:
		fmt.Fprintf(&b, "TSS %d at IF %.2f", *a.TSS, *a.IntensityFactor)
	case a.HrTSS != nil:
		fmt.Fprintf(&b, "hrTSS %d", *a.HrTSS)
	default:
		b.WriteString("no load score (missing thresholds)")
	}
	if a.NormalizedPower != nil {
		fmt.Fprintf(&b, " | NP %d W", *a.NormalizedPower)
	}
	if a.NPPerKg != nil {
		fmt.Fprintf(&b, " (%.2f W/kg)", *a.NPPerKg)
	}
	fmt.Fprintf(&b, " | work %.0f kJ", float64(a.TotalWork))
	if a.ElevationGain != nil {
		fmt.Fprintf(&b, " | +%.0f m", float64(*a.ElevationGain))
	}
	if a.Decoupling != nil && a.VariabilityIndex != nil && *a.VariabilityIndex <= 1.10 {
		fmt.Fprintf(&b, " | decoupling %+.1f%%", *a.Decoupling)
	}
	return b.String()
}

func statsOn(stats []DailyStats, day time.Time) (DailyStats, bool) {
	for _, s := range stats {
		if s.Date.Equal(day) {
			return s, true
		}
	}
	return DailyStats{}, false
}

func formDescription(tsb float64) string {
	switch {
	case tsb > 25:
		return "Very fresh; fitness may be fading without new load."
	case tsb > 10:
		return "Fresh and ready for a hard session or race."
	case tsb > -10:
		return "Neutral form; good window for steady training."
	case tsb > -25:
		return "Carrying fatigue while building fitness."
	default:
		return "Deep fatigue; recovery is overdue."
	}
}
