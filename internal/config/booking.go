package config

import "time"

// BookingConfig bounds the purchase transaction.
type BookingConfig struct {
	// Timeout is the overall budget of one purchase, lock waits
	// included.  Exceeding it fails the purchase with BOOKING_TIMEOUT.
	Timeout time.Duration
	// LockWaitTimeout is passed to InnoDB as innodb_lock_wait_timeout.
	LockWaitTimeout time.Duration
	// MetricsNamespace prefixes the Prometheus metric names.
	MetricsNamespace string
}

// LoadBookingConfig reads BOOKING_TIMEOUT, BOOKING_LOCK_WAIT_TIMEOUT and
// METRICS_NAMESPACE.  The lock wait never exceeds the overall timeout.
func LoadBookingConfig() BookingConfig {
	cfg := BookingConfig{
		Timeout:          envDur("BOOKING_TIMEOUT", 10*time.Second),
		LockWaitTimeout:  envDur("BOOKING_LOCK_WAIT_TIMEOUT", 5*time.Second),
		MetricsNamespace: envStr("METRICS_NAMESPACE", "ticketing"),
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.LockWaitTimeout <= 0 || cfg.LockWaitTimeout > cfg.Timeout {
		cfg.LockWaitTimeout = cfg.Timeout
	}
	return cfg
}
