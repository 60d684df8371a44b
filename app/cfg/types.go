package cfg

type Cfg struct {
	// Mail transport configuration
	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	Recipient    string

	// Filter criteria
	MinPrice int
	MaxPrice int
	Bedrooms int
	Towns    []string

	// Application configuration
	SitesDir     string
	SeenDBPath   string
	Port         string
	RunInterval  int
	SiteTimeout  int
	WorkerCount  int
	APIAccessKey string

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}
