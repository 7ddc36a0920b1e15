package config

import "time"

// JobsConfig contains worker pool and job retention configuration.
type JobsConfig struct {
	// Workers is the number of worker goroutines draining the job queue.
	Workers int `env:"WORKERS" envDefault:"4"`

	// QueueSize is the capacity of the in-memory job queue. Submissions
	// beyond this bound are rejected with a 503.
	QueueSize int `env:"QUEUE_SIZE" envDefault:"64"`

	// ProcessLatency is the simulated work duration each job spends in the
	// transform. Zero disables the pause.
	ProcessLatency time.Duration `env:"PROCESS_LATENCY" envDefault:"3s"`

	// TTL is how long terminal job records stay readable before expiry.
	TTL time.Duration `env:"TTL" envDefault:"24h"`
}

// Sanitize applies guardrails to jobs configuration values.
func (j *JobsConfig) Sanitize() {
	if j.Workers < 1 {
		j.Workers = 4
	}
	if j.QueueSize < 1 {
		j.QueueSize = 64
	}
	if j.ProcessLatency < 0 {
		j.ProcessLatency = 0
	}
	if j.TTL <= 0 {
		j.TTL = 24 * time.Hour
	}
}
