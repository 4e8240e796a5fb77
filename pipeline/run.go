package pipeline

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/lucasjlepore/trainload"
)

// Run executes the batch training-load pipeline and writes all artifacts.
func Run(opts Options) (*Result, error) {
	if strings.TrimSpace(opts.OutDir) == "" {
		return nil, fmt.Errorf("output directory is required")
	}
	format := strings.ToLower(strings.TrimSpace(opts.Format))
	if format == "" {
		format = "parquet"
	}
	if format != "parquet" && format != "csv" {
		return nil, fmt.Errorf("unsupported format %q (expected parquet|csv)", format)
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	paths, err := collectFitPaths(opts)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no FIT files to analyze")
	}
	if err := os.MkdirAll(opts.OutDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	analyzed := analyzeAll(paths, opts, logger)

	result := &Result{OutputDir: opts.OutDir}

	var (
		summaries    []ActivitySummary
		summaryLines []trainload.ActivitySummaryLine
		dailyTSS     []trainload.DailyTSS
		powerPeaks   map[time.Duration]trainload.Peak[trainload.Power]
		hrPeaks      map[time.Duration]trainload.Peak[trainload.HeartRate]
		speedPeaks   map[time.Duration]trainload.Peak[trainload.Speed]
	)
	for _, item := range analyzed {
		if item.err != nil {
			logger.Warn("skipping activity",
				zap.String("file", item.path),
				zap.Error(item.err))
			result.Failed = append(result.Failed, item.path)
			continue
		}
		result.Analyzed++

		summaries = append(summaries, buildActivitySummary(item))
		summaryLines = append(summaryLines, trainload.ActivitySummaryLine{
			Name:     filepath.Base(item.path),
			Date:     item.activity.Date(),
			Analysis: item.analysis,
		})

		if item.activity.HasStartTime() {
			if tss, ok := item.analysis.LoadScore(); ok {
				dailyTSS = append(dailyTSS, trainload.DailyTSS{Date: item.activity.Date(), TSS: tss})
			}
		}

		powerPeaks = trainload.MergePeaks(powerPeaks, item.analysis.PowerPeaks)
		hrPeaks = trainload.MergePeaks(hrPeaks, item.analysis.HeartRatePeaks)
		speedPeaks = trainload.MergePeaks(speedPeaks, item.analysis.SpeedPeaks)
	}

	threshold := opts.ConvergenceThreshold
	if threshold == 0 {
		threshold = trainload.DefaultConvergenceThreshold
	}
	sim, err := trainload.NewSimulator(threshold)
	if err != nil {
		return nil, err
	}
	result.DailyStats = sim.Run(dailyTSS, opts.Checkpoint)
	logger.Info("rolled daily training load",
		zap.Int("activities", result.Analyzed),
		zap.Int("days", len(result.DailyStats)))

	today := opts.Today
	if today.IsZero() {
		today = time.Now().UTC()
	}
	today = today.UTC().Truncate(24 * time.Hour)
	for i := range result.DailyStats {
		if result.DailyStats[i].Date.Equal(today) {
			stats := result.DailyStats[i]
			result.TodayStats = &stats
			break
		}
	}

	result.DailyStatsPath = filepath.Join(opts.OutDir, "daily_stats."+format)
	switch format {
	case "csv":
		err = writeDailyStatsCSV(result.DailyStatsPath, result.DailyStats)
	case "parquet":
		err = writeDailyStatsParquet(result.DailyStatsPath, result.DailyStats)
	}
	if err != nil {
		return nil, fmt.Errorf("write daily stats: %w", err)
	}

	result.ActivitySummaryPath = filepath.Join(opts.OutDir, "activity_summaries.json")
	if err := writeJSON(result.ActivitySummaryPath, summaries); err != nil {
		return nil, fmt.Errorf("write activity summaries: %w", err)
	}

	peaksFile := PeaksFile{
		Power:     peakRows(powerPeaks, func(p trainload.Power) float64 { return float64(p) }),
		HeartRate: peakRows(hrPeaks, func(h trainload.HeartRate) float64 { return float64(h) }),
		Speed:     peakRows(speedPeaks, func(s trainload.Speed) float64 { return float64(s) }),
	}
	result.PeaksPath = filepath.Join(opts.OutDir, "peaks.json")
	if err := writeJSON(result.PeaksPath, peaksFile); err != nil {
		return nil, fmt.Errorf("write peaks: %w", err)
	}

	summaryText := trainload.BuildTrainingSummary(result.DailyStats, summaryLines, today)
	result.TrainingSummaryPath = filepath.Join(opts.OutDir, "training_summary.txt")
	if err := os.WriteFile(result.TrainingSummaryPath, []byte(summaryText+"\n"), 0o644); err != nil {
		return nil, fmt.Errorf("write training summary: %w", err)
	}

	return result, nil
}

func collectFitPaths(opts Options) ([]string, error) {
	paths := append([]string(nil), opts.FitPaths...)
	if opts.Dir != "" {
		entries, err := os.ReadDir(opts.Dir)
		if err != nil {
			return nil, fmt.Errorf("read activity directory: %w", err)
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			if strings.EqualFold(filepath.Ext(entry.Name()), ".fit") {
				paths = append(paths, filepath.Join(opts.Dir, entry.Name()))
			}
		}
	}
	sort.Strings(paths)
	return paths, nil
}

type analyzedFile struct {
	path     string
	activity *trainload.Activity
	analysis *trainload.ActivityAnalysis
	err      error
}

// analyzeAll decodes and analyzes each file on a bounded worker pool. Every
// activity is independent; only the shared profile timeline is read, so no
// locking is needed. Slot i belongs to exactly one worker.
func analyzeAll(paths []string, opts Options, logger *zap.Logger) []analyzedFile {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > len(paths) {
		workers = len(paths)
	}

	results := make([]analyzedFile, len(paths))
	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = analyzeOne(paths[i], opts)
			}
		}()
	}
	for i := range paths {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	logger.Debug("analysis pool finished",
		zap.Int("files", len(paths)),
		zap.Int("workers", workers))
	return results
}

func analyzeOne(path string, opts Options) analyzedFile {
	activity, err := trainload.DecodeActivityFile(path)
	if err != nil {
		return analyzedFile{path: path, err: err}
	}
	return analyzedFile{
		path:     path,
		activity: activity,
		analysis: trainload.Analyze(opts.Profile, activity, opts.Durations),
	}
}

func buildActivitySummary(item analyzedFile) ActivitySummary {
	a := item.analysis
	s := ActivitySummary{
		File:           filepath.Base(item.path),
		Sport:          item.activity.Sport,
		DurationS:      item.activity.Duration.Seconds(),
		TotalWorkKJ:    float64(a.TotalWork),
		NPW:            int64Ptr(a.NormalizedPower),
		IF:             a.IntensityFactor,
		VI:             a.VariabilityIndex,
		TSS:            int64Ptr(a.TSS),
		HrTSS:          int64Ptr(a.HrTSS),
		AvgPowerW:      int64Ptr(a.AveragePower),
		MaxPowerW:      int64Ptr(a.MaximumPower),
		AvgHRBPM:       int64Ptr(a.AverageHeartRate),
		MaxHRBPM:       int64Ptr(a.MaximumHeartRate),
		AvgSpeedMPS:    float64Ptr(a.AverageSpeed),
		MaxSpeedMPS:    float64Ptr(a.MaximumSpeed),
		ElevationGainM: float64Ptr(a.ElevationGain),
		ElevationLossM: float64Ptr(a.ElevationLoss),
		NPWPerKG:       a.NPPerKg,
		DecouplingPct:  a.Decoupling,
		PowerPeaks:     peakRows(a.PowerPeaks, func(p trainload.Power) float64 { return float64(p) }),
		HeartRatePeaks: peakRows(a.HeartRatePeaks, func(h trainload.HeartRate) float64 { return float64(h) }),
		SpeedPeaks:     peakRows(a.SpeedPeaks, func(sp trainload.Speed) float64 { return float64(sp) }),
	}
	if item.activity.HasStartTime() {
		s.StartTime = item.activity.StartTime.UTC().Format(time.RFC3339)
	}
	return s
}

func peakRows[T trainload.Metric[T]](peaks map[time.Duration]trainload.Peak[T], value func(T) float64) []PeakSummary {
	if len(peaks) == 0 {
		return nil
	}
	rows := make([]PeakSummary, 0, len(peaks))
	for d, p := range peaks {
		rows = append(rows, PeakSummary{
			DurationS: int64(d / time.Second),
			Value:     value(p.Value),
			StartTS:   p.Start.UTC().Format(time.RFC3339),
			EndTS:     p.End.UTC().Format(time.RFC3339),
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].DurationS < rows[j].DurationS })
	return rows
}

func writeDailyStatsCSV(path string, stats []trainload.DailyStats) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"date", "tss", "ctl", "atl", "tsb"}); err != nil {
		return err
	}
	for _, s := range stats {
		row := []string{
			s.Date.Format("2006-01-02"),
			strconv.FormatInt(int64(s.TSS), 10),
			strconv.FormatFloat(s.CTL, 'f', 4, 64),
			strconv.FormatFloat(s.ATL, 'f', 4, 64),
			strconv.FormatFloat(s.TSB, 'f', 4, 64),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

func int64Ptr[T ~int64](v *T) *int64 {
	if v == nil {
		return nil
	}
	n := int64(*v)
	return &n
}

func float64Ptr[T ~float64](v *T) *float64 {
	if v == nil {
		return nil
	}
	f := float64(*v)
	return &f
}
