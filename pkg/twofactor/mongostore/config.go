package mongostore

import "time"

// Config represents the MongoDB connection and collection settings.
type Config struct {
	ConnectionURL   string        `env:"MONGODB_URL,required"`                         // Connection string, e.g. "mongodb://localhost:27017"
	Database        string        `env:"MONGODB_DATABASE" envDefault:"skybooker"`      // Database holding the accounts collection
	Collection      string        `env:"MONGODB_USERS_COLLECTION" envDefault:"users"`  // Accounts collection
	ConnectTimeout  time.Duration `env:"MONGODB_CONNECT_TIMEOUT" envDefault:"10s"`     // Timeout for establishing a connection
	MaxPoolSize     uint64        `env:"MONGODB_MAX_POOL_SIZE" envDefault:"100"`       // Maximum number of pooled connections
	MinPoolSize     uint64        `env:"MONGODB_MIN_POOL_SIZE" envDefault:"1"`         // Minimum number of pooled connections
	MaxConnIdleTime time.Duration `env:"MONGODB_MAX_CONN_IDLE_TIME" envDefault:"300s"` // Idle time before a pooled connection is closed
	RetryWrites     bool          `env:"MONGODB_RETRY_WRITES" envDefault:"true"`       // Retry retryable write operations
	RetryReads      bool          `env:"MONGODB_RETRY_READS" envDefault:"true"`        // Retry retryable read operations
	RetryAttempts   int           `env:"MONGODB_RETRY_ATTEMPTS" envDefault:"3"`        // Connection attempts before giving up
	RetryInterval   time.Duration `env:"MONGODB_RETRY_INTERVAL" envDefault:"5s"`       // Delay between connection attempts
}
