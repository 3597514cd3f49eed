package cfg

import (
	"cmp"
	"errors"
	"fmt"
	"os"
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
	DBPath string `long:"db-path" env:"DB_PATH" default:"./data/legistar.db" description:"SQLite database file"`

	// Application configuration
	JurisdictionsDir string        `long:"jurisdictions-dir" env:"JURISDICTIONS_DIR" description:"Directory containing jurisdiction configuration files (embedded defaults when empty)"`
	Port             string        `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	BaseUrl          string        `long:"base-url" env:"BASE_URL" description:"Public base URL for the service (e.g., https://legistar.example.com)"`
	APIAccessKey     string        `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for scrape triggers (triggers disabled when empty)"`
	ScrapeOnStart    bool          `long:"scrape-on-start" env:"SCRAPE_ON_START" description:"Enqueue a scrape of every enabled jurisdiction at startup"`
	ScrapeInterval   int           `long:"scrape-interval" env:"SCRAPE_INTERVAL" default:"0" description:"Minutes between scheduled scrapes (0 disables)"`
	Once             bool          `long:"once" env:"ONCE" description:"Scrape every enabled jurisdiction once and exit"`
	QueueSize        int           `long:"queue-size" env:"QUEUE_SIZE" default:"100" description:"Capacity of the scrape task queue"`
	TaskTimeout      time.Duration `long:"task-timeout" env:"TASK_TIMEOUT" default:"0" description:"Deadline of a single scrape task, e.g. 2h (0 runs tasks to completion)"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"Legistar Comb/1.0" description:"User agent string for HTTP requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for log timestamps (e.g., UTC, America/New_York)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

// Load parses the command line and environment into the global
// configuration. It returns nil, nil when help was requested.
func Load() (*Cfg, error) {
	cfg, err := parse(os.Args[1:])
	if err != nil || cfg == nil {
		return cfg, err
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	globalCfg = cfg

	return cfg, nil
}

func parse(args []string) (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.ParseArgs(args); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	if raw.ScrapeInterval < 0 {
		return nil, fmt.Errorf("scrape-interval must be non-negative, got %d", raw.ScrapeInterval)
	}
	if raw.QueueSize <= 0 {
		return nil, fmt.Errorf("queue-size must be positive, got %d", raw.QueueSize)
	}
	if raw.TaskTimeout < 0 {
		return nil, fmt.Errorf("task-timeout must be non-negative, got %s", raw.TaskTimeout)
	}

	return &Cfg{
		DBPath:           raw.DBPath,
		JurisdictionsDir: raw.JurisdictionsDir,
		Port:             raw.Port,
		BaseUrl:          raw.BaseUrl,
		APIAccessKey:     raw.APIAccessKey,
		ScrapeOnStart:    raw.ScrapeOnStart,
		ScrapeInterval:   raw.ScrapeInterval,
		Once:             raw.Once,
		QueueSize:        raw.QueueSize,
		TaskTimeout:      raw.TaskTimeout,
		UserAgent:        raw.UserAgent,
		Timezone:         raw.Timezone,
		Debug:            raw.Debug,
		Version:          GetVersion(),
	}, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

// GetScrapeInterval returns the periodic scrape interval, zero when disabled.
func (c *Cfg) GetScrapeInterval() time.Duration {
	return time.Duration(c.ScrapeInterval) * time.Minute
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		loc, err := time.LoadLocation(timezone)
		if err != nil {
			return err
		}
		time.Local = loc
	}
	return nil
}
