package cfg

type Cfg struct {
	// Storage
	DataDir string
	DBPath  string

	// Application configuration
	ConfigFile   string
	FeedsDir     string
	Port         string
	BaseUrl      string
	WorkerCount  int
	APIAccessKey string

	// Schedules (cron expressions)
	ReviewSchedule  string
	ProfileSchedule string

	// AI summaries
	GeminiAPIKey string
	GeminiModel  string

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}
