package postgres

import "time"

// Option configures Postgres.
type Option func(*Postgres)

// MaxPoolSize sets pool size.
func MaxPoolSize(size int) Option {
	return func(c *Postgres) {
		if size > 0 {
			c.maxPoolSize = size
		}
	}
}

// ConnAttempts sets connection retries. Non-positive values keep the default.
func ConnAttempts(attempts int) Option {
	return func(c *Postgres) {
		if attempts > 0 {
			c.connAttempts = attempts
		}
	}
}

// ConnTimeout sets timeout between attempts.
func ConnTimeout(timeout time.Duration) Option {
	return func(c *Postgres) {
		if timeout > 0 {
			c.connTimeout = timeout
		}
	}
}
