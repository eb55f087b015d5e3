package cfg

import (
	"cmp"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Storage
	DataDir string `long:"data-dir" env:"DATA_DIR" default:"./data" description:"Directory for the SQLite database and generated newsletters"`
	DBPath  string `long:"db-path" env:"DB_PATH" description:"SQLite database file (defaults to <data-dir>/curator.db)"`

	// Application configuration
	ConfigFile   string `long:"config" env:"CONFIG_FILE" default:"./config/curator.yml" description:"Curator configuration file (topics, scoring, personalization)"`
	FeedsDir     string `long:"feeds-dir" env:"FEEDS_DIR" default:"./feeds" description:"Directory containing feed configuration files"`
	Port         string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	BaseUrl      string `long:"base-url" env:"BASE_URL" description:"Public base URL for the service (e.g., https://curator.example.com)"`
	WorkerCount  int    `long:"worker-count" env:"WORKER_COUNT" default:"2" description:"Number of background workers"`
	APIAccessKey string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for authentication (optional)"`

	// Schedules
	ReviewSchedule  string `long:"review-schedule" env:"REVIEW_SCHEDULE" default:"0 6 * * 4" description:"Cron schedule for creating the weekly review"`
	ProfileSchedule string `long:"profile-schedule" env:"PROFILE_SCHEDULE" default:"0 3 * * *" description:"Cron schedule for rebuilding the preference profile"`

	// AI summaries
	GeminiAPIKey string `long:"gemini-api-key" env:"GEMINI_API_KEY" description:"Google Gemini API key (summaries are skipped when empty)"`
	GeminiModel  string `long:"gemini-model" env:"GEMINI_MODEL" description:"Gemini model override"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"News Curator/1.0" description:"User agent string for HTTP requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, America/Toronto)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	return load(os.Args[1:])
}

func load(args []string) (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.ParseArgs(args); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		DataDir:         raw.DataDir,
		DBPath:          cmp.Or(raw.DBPath, filepath.Join(raw.DataDir, "curator.db")),
		ConfigFile:      raw.ConfigFile,
		FeedsDir:        raw.FeedsDir,
		Port:            raw.Port,
		BaseUrl:         raw.BaseUrl,
		WorkerCount:     raw.WorkerCount,
		APIAccessKey:    raw.APIAccessKey,
		ReviewSchedule:  raw.ReviewSchedule,
		ProfileSchedule: raw.ProfileSchedule,
		GeminiAPIKey:    raw.GeminiAPIKey,
		GeminiModel:     raw.GeminiModel,
		UserAgent:       raw.UserAgent,
		Timezone:        raw.Timezone,
		Debug:           raw.Debug,
		Version:         GetVersion(),
	}

	if cfg.WorkerCount < 1 {
		return nil, fmt.Errorf("worker count must be at least 1, got %d", cfg.WorkerCount)
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		slog.Warn("Invalid timezone, using system default", "timezone", cfg.Timezone, "error", err)
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
			slog.Debug("Timezone configured", "timezone", timezone)
		}
	}
	return nil
}
