package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/lucasjlepore/trainload/config"
	"github.com/lucasjlepore/trainload/pipeline"
)

func main() {
	var (
		fitPath    = flag.String("fit", "", "Path to a single input .fit file")
		dir        = flag.String("dir", "", "Directory containing .fit files")
		configPath = flag.String("config", "", "Path to the athlete YAML config")
		outDir     = flag.String("out", "", "Output directory")
		format     = flag.String("format", "parquet", "Daily stats format: parquet|csv")
		workers    = flag.Int("workers", 0, "Analysis workers (0 = number of CPUs)")
		verbose    = flag.Bool("verbose", false, "Enable debug logging")
	)
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s --config athlete.yaml --out outdir (--fit activity.fit | --dir activities/)\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	flag.Parse()

	if strings.TrimSpace(*configPath) == "" || strings.TrimSpace(*outDir) == "" {
		flag.Usage()
		os.Exit(2)
	}
	if strings.TrimSpace(*fitPath) == "" && strings.TrimSpace(*dir) == "" {
		flag.Usage()
		os.Exit(2)
	}

	logger := buildLogger(*verbose)
	defer logger.Sync()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}
	durations, err := cfg.PeakDurations()
	if err != nil {
		logger.Fatal("invalid peak durations", zap.Error(err))
	}

	opts := pipeline.Options{
		Dir:                  *dir,
		OutDir:               *outDir,
		Format:               *format,
		Profile:              cfg.ProfileTimeline(),
		Durations:            durations,
		ConvergenceThreshold: cfg.ConvergenceThreshold,
		Workers:              *workers,
		Logger:               logger,
	}
	if strings.TrimSpace(*fitPath) != "" {
		opts.FitPaths = []string{*fitPath}
	}

	result, err := pipeline.Run(opts)
	if err != nil {
		logger.Fatal("pipeline failed", zap.Error(err))
	}

	fmt.Printf("trainload complete\n")
	fmt.Printf("analyzed activities: %d\n", result.Analyzed)
	if len(result.Failed) > 0 {
		fmt.Printf("failed files:        %d\n", len(result.Failed))
	}
	fmt.Printf("daily stats:         %s\n", result.DailyStatsPath)
	fmt.Printf("activity summaries:  %s\n", result.ActivitySummaryPath)
	fmt.Printf("peaks:               %s\n", result.PeaksPath)
	fmt.Printf("training summary:    %s\n", result.TrainingSummaryPath)

	if result.TodayStats != nil {
		s := result.TodayStats
		fmt.Printf("today: CTL %.1f | ATL %.1f | TSB %+.1f (TSS %d on %s)\n",
			s.CTL, s.ATL, s.TSB, s.TSS, s.Date.Format("2006-01-02"))
	} else if len(result.DailyStats) > 0 {
		last := result.DailyStats[len(result.DailyStats)-1]
		fmt.Printf("series ends %s: CTL %.1f | ATL %.1f | TSB %+.1f\n",
			last.Date.Format("2006-01-02"), last.CTL, last.ATL, last.TSB)
	}
}

func buildLogger(verbose bool) *zap.Logger {
	if verbose {
		return zap.Must(zap.NewDevelopment())
	}
	return zap.Must(zap.NewProduction())
}
