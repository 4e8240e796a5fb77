package trainload

import "time"

// ActivityAnalysis is the full derived-metric view of one activity. Pointer
// fields are nil when the metric is undefined: missing samples, or a missing
// threshold for the activity date. Undefined-ness propagates — TSS needs both
// an FTP for the date and a Normalized Power; VI needs NP and average power.
type ActivityAnalysis struct {
	TotalWork        Work
	NormalizedPower  *Power
	IntensityFactor  *float64
	VariabilityIndex *float64
	TSS              *TSS
	HrTSS            *TSS
	AveragePower     *Power
	MaximumPower     *Power
	AverageHeartRate *HeartRate
	MaximumHeartRate *HeartRate
	AverageSpeed     *Speed
	MaximumSpeed     *Speed
	ElevationGain    *AltitudeDiff
	ElevationLoss    *AltitudeDiff
	Decoupling       *float64
	NPPerKg          *float64

	PowerPeaks     map[time.Duration]Peak[Power]
	HeartRatePeaks map[time.Duration]Peak[HeartRate]
	SpeedPeaks     map[time.Duration]Peak[Speed]
}

// Analyze derives every per-activity metric from the decoded sample series,
// looking up the athlete's thresholds as of the activity's start date.
func Analyze(profile *ProfileTimeline, activity *Activity, durations PeakDurations) *ActivityAnalysis {
	power := sampleValues(activity.Power)
	heartRate := sampleValues(activity.HeartRate)
	speed := sampleValues(activity.Speed)
	altitude := sampleValues(activity.Altitude)

	a := &ActivityAnalysis{
		TotalWork:      TotalWork(power),
		PowerPeaks:     FindPeaks(activity.Power, durations),
		HeartRatePeaks: FindPeaks(activity.HeartRate, durations),
		SpeedPeaks:     FindPeaks(activity.Speed, durations),
	}
	a.ElevationGain, a.ElevationLoss = AltitudeChanges(altitude)

	a.AveragePower = optional(Average(power))
	a.MaximumPower = optional(Max(power))
	a.AverageHeartRate = optional(Average(heartRate))
	a.MaximumHeartRate = optional(Max(heartRate))
	a.AverageSpeed = optional(Average(speed))
	a.MaximumSpeed = optional(Max(speed))
	a.NormalizedPower = optional(NormalizedPower(power))

	if a.NormalizedPower != nil && a.AveragePower != nil {
		vi := VariabilityIndex(*a.NormalizedPower, *a.AveragePower)
		a.VariabilityIndex = &vi
	}

	var (
		ftp       Power
		fthr      HeartRate
		weight    Weight
		hasFTP    bool
		hasFTHr   bool
		hasWeight bool
	)
	if activity.HasStartTime() {
		ftp, hasFTP = profile.FTPAt(activity.StartTime)
		fthr, hasFTHr = profile.FTHrAt(activity.StartTime)
		weight, hasWeight = profile.WeightAt(activity.StartTime)
	}

	if hasFTP && a.NormalizedPower != nil {
		intensity := IntensityFactor(ftp, *a.NormalizedPower)
		a.IntensityFactor = &intensity
		if activity.Duration > 0 {
			tss := CalcTSS(ftp, activity.Duration, *a.NormalizedPower)
			a.TSS = &tss
		}
	}
	if hasFTHr && len(heartRate) > 0 {
		hrTSS := CalcHrTSS(fthr, heartRate)
		a.HrTSS = &hrTSS
	}
	if hasWeight && weight > 0 && a.NormalizedPower != nil {
		perKg := float64(*a.NormalizedPower) / float64(weight)
		a.NPPerKg = &perKg
	}

	if pairedPower, pairedHR := pairByTime(activity.Power, activity.HeartRate); len(pairedPower) > 0 {
		if d, ok := AerobicDecoupling(pairedPower, pairedHR); ok {
			a.Decoupling = &d
		}
	}

	return a
}

// LoadScore picks the activity's daily-load contribution: power TSS when
// available, else heart-rate TSS.
func (a *ActivityAnalysis) LoadScore() (TSS, bool) {
	if a.TSS != nil {
		return *a.TSS, true
	}
	if a.HrTSS != nil {
		return *a.HrTSS, true
	}
	return 0, false
}

func optional[T any](v T, ok bool) *T {
	if !ok {
		return nil
	}
	return &v
}

// pairByTime matches power and heart-rate samples sharing a timestamp,
// preserving order. Both inputs are time-ascending, so a single merge pass
// suffices.
func pairByTime(power []Sample[Power], heartRate []Sample[HeartRate]) ([]Power, []HeartRate) {
	var (
		pw []Power
		hr []HeartRate
	)
	i, j := 0, 0
	for i < len(power) && j < len(heartRate) {
		switch {
		case power[i].Time.Before(heartRate[j].Time):
			i++
		case heartRate[j].Time.Before(power[i].Time):
			j++
		default:
			pw = append(pw, power[i].Value)
			hr = append(hr, heartRate[j].Value)
			i++
			j++
		}
	}
	return pw, hr
}
