package authority

import "time"

const defaultTimeout = 30 * time.Second

// Config holds policy authority client configuration.
type Config struct {
	URL     string
	Token   string
	Timeout time.Duration
}
