package cfg

import "time"

type Cfg struct {
	// Storage
	DBPath string

	// Application configuration
	JurisdictionsDir string
	Port             string
	BaseUrl          string
	APIAccessKey     string
	ScrapeOnStart    bool
	ScrapeInterval   int // minutes, 0 disables periodic scraping
	Once             bool
	QueueSize        int
	// Zero leaves scrape tasks unbounded
	TaskTimeout time.Duration

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}
