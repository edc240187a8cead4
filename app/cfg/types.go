package cfg

type Cfg struct {
	// Storage configuration
	DBPath string

	// Collection configuration
	SubscriptionsFile  string
	WorkerCount        int
	CollectionInterval int // minutes
	RequestTimeout     int // seconds
	RetentionDays      int
	CleanupInterval    int // hours

	// Application metadata
	UserAgent string
	Debug     bool
	Version   string
}
