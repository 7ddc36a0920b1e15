package config

// AppConfig is the main application configuration struct that composes
// domain-specific configuration from separate files.
//
// Configuration is loaded from environment variables using the
// github.com/caarlos0/env library. See individual domain config
// files for details on available environment variables:
//   - database.go: PostgreSQL and Redis configuration
//   - http.go: HTTP server configuration
//   - jobs.go: worker pool and job retention configuration
//   - import.go: startup CSV import configuration
//   - observability.go: StatsD metrics configuration
type AppConfig struct {
	// DatabaseURL, when set, overrides the individual DB_* fields with a
	// full PostgreSQL connection string.
	DatabaseURL string `env:"DATABASE_URL" envDefault:""`

	// Database configuration
	Postgres DBConfig    `envPrefix:"DB_"`
	Redis    RedisConfig `envPrefix:"REDIS_"`

	// HTTP server configuration
	HTTP HTTPConfig

	// Worker pool and job retention configuration
	Jobs JobsConfig `envPrefix:"JOBS_"`

	// Startup CSV import configuration
	Import ImportConfig `envPrefix:"IMPORT_"`

	// StatsD metrics configuration
	Statsd StatsdConfig `envPrefix:"STATSD_"`
}

// Sanitize applies guardrails to configuration values loaded from env.
// This should be called after loading configuration from environment variables.
func (c *AppConfig) Sanitize() {
	c.HTTP.Sanitize()
	c.Jobs.Sanitize()
	c.Statsd.Sanitize()
}
