// Package pipeline runs the batch training-load workflow: decode a set of
// activity FIT files, analyze each one, aggregate daily stress, roll the
// fitness/fatigue model and write the result artifacts.
package pipeline

import (
	"time"

	"go.uber.org/zap"

	"github.com/lucasjlepore/trainload"
)

// Options configures one pipeline run.
type Options struct {
	// Dir is scanned (non-recursively) for .fit files; FitPaths may list
	// files explicitly instead of or in addition to Dir.
	Dir      string
	FitPaths []string

	OutDir string
	Format string // parquet|csv for the daily stats series

	Profile   *trainload.ProfileTimeline
	Durations trainload.PeakDurations

	// ConvergenceThreshold for the daily simulator; zero means the engine
	// default.
	ConvergenceThreshold float64

	// Checkpoint resumes the daily series from a previously computed day.
	Checkpoint *trainload.DailyStats

	// Workers bounds the per-activity analysis pool; zero means GOMAXPROCS.
	Workers int

	// Today selects the day reported in the training summary; zero means
	// the current UTC day.
	Today time.Time

	Logger *zap.Logger
}

// Result returns generated output paths and the rolled model.
type Result struct {
	OutputDir           string `json:"output_dir"`
	DailyStatsPath      string `json:"daily_stats_path"`
	ActivitySummaryPath string `json:"activity_summary_path"`
	PeaksPath           string `json:"peaks_path"`
	TrainingSummaryPath string `json:"training_summary_path"`

	Analyzed   int      `json:"analyzed"`
	Failed     []string `json:"failed,omitempty"`
	DailyStats []trainload.DailyStats
	TodayStats *trainload.DailyStats
}

// ActivitySummary is the serialized per-activity analysis row.
type ActivitySummary struct {
	File           string        `json:"file"`
	Sport          string        `json:"sport,omitempty"`
	StartTime      string        `json:"start_time,omitempty"`
	DurationS      float64       `json:"duration_s"`
	TotalWorkKJ    float64       `json:"total_work_kj"`
	NPW            *int64        `json:"np_w,omitempty"`
	IF             *float64      `json:"if,omitempty"`
	VI             *float64      `json:"vi,omitempty"`
	TSS            *int64        `json:"tss,omitempty"`
	HrTSS          *int64        `json:"hr_tss,omitempty"`
	AvgPowerW      *int64        `json:"avg_power_w,omitempty"`
	MaxPowerW      *int64        `json:"max_power_w,omitempty"`
	AvgHRBPM       *int64        `json:"avg_hr_bpm,omitempty"`
	MaxHRBPM       *int64        `json:"max_hr_bpm,omitempty"`
	AvgSpeedMPS    *float64      `json:"avg_speed_mps,omitempty"`
	MaxSpeedMPS    *float64      `json:"max_speed_mps,omitempty"`
	ElevationGainM *float64      `json:"elevation_gain_m,omitempty"`
	ElevationLossM *float64      `json:"elevation_loss_m,omitempty"`
	NPWPerKG       *float64      `json:"np_w_per_kg,omitempty"`
	DecouplingPct  *float64      `json:"decoupling_pct,omitempty"`
	PowerPeaks     []PeakSummary `json:"power_peaks,omitempty"`
	HeartRatePeaks []PeakSummary `json:"heart_rate_peaks,omitempty"`
	SpeedPeaks     []PeakSummary `json:"speed_peaks,omitempty"`
}

// PeakSummary is one (duration, best effort) row.
type PeakSummary struct {
	DurationS int64   `json:"duration_s"`
	Value     float64 `json:"value"`
	StartTS   string  `json:"start_ts,omitempty"`
	EndTS     string  `json:"end_ts,omitempty"`
}

// PeaksFile holds the batch-wide best efforts per metric and duration.
type PeaksFile struct {
	Power     []PeakSummary `json:"power,omitempty"`
	HeartRate []PeakSummary `json:"heart_rate,omitempty"`
	Speed     []PeakSummary `json:"speed,omitempty"`
}
