package resilience

import "time"

// FromRetryConfig builds a RetryConfig from plain config values. Zero values
// keep the defaults.
func FromRetryConfig(attempts, initialBackoffMs, maxBackoffMs int) RetryConfig {
	cfg := DefaultRetryConfig()
	if attempts > 0 {
		cfg.MaxAttempts = attempts
	}
	if initialBackoffMs > 0 {
		cfg.InitialBackoff = time.Duration(initialBackoffMs) * time.Millisecond
	}
	if maxBackoffMs > 0 {
		cfg.MaxBackoff = time.Duration(maxBackoffMs) * time.Millisecond
	}
	return cfg
}

// FromCircuitConfig builds a BreakerConfig from plain config values.
func FromCircuitConfig(threshold, resetSecs int) BreakerConfig {
	cfg := DefaultBreakerConfig()
	if threshold > 0 {
		cfg.FailureThreshold = threshold
	}
	if resetSecs > 0 {
		cfg.ResetTimeout = time.Duration(resetSecs) * time.Second
	}
	return cfg
}
