package data

import "errors"

// Shared sentinel errors for data-layer repositories.
var (
	// Job store sentinels.
	ErrJobNotFound   = errors.New("job not found")
	ErrJobIDRequired = errors.New("job_id is required")

	// Housing repository sentinels.
	ErrNoHousingData = errors.New("no housing data found")
)
