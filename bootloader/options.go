package bootloader

import "time"

// Config holds the client configuration.
type Config struct {
	// Logger receives operational logging (optional)
	Logger Logger

	// ProgressCallback receives progress updates (optional)
	ProgressCallback ProgressCallback

	// Timeout is the operating read timeout for established sessions
	Timeout time.Duration

	// SyncTimeout is the short read timeout used during the sync
	// handshake, where a silent chip is expected and retried
	SyncTimeout time.Duration

	// EraseTimeout is the read timeout while flash begin erases the
	// target region, which can take several seconds on large areas
	EraseTimeout time.Duration

	// ResetAttempts is the number of reset-to-bootloader pulses tried
	ResetAttempts int

	// SyncAttempts is the number of sync handshakes tried per reset
	SyncAttempts int
}

// defaultConfig returns the default configuration. The timing values
// come from the ROM's observed behavior: the worst-case USB-serial
// latency timer is 255ms, hence the 300ms sync timeout.
func defaultConfig() Config {
	return Config{
		Timeout:       5 * time.Second,
		SyncTimeout:   300 * time.Millisecond,
		EraseTimeout:  10 * time.Second,
		ResetAttempts: 4,
		SyncAttempts:  4,
	}
}

// Option is a functional option for configuring the Client.
type Option func(*Config)

// WithLogger sets a logger for client operations.
//
// Example:
//
//	client := bootloader.New(conn, bootloader.WithLogger(myLogger))
func WithLogger(logger Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithProgressCallback sets a callback tracking block transfers.
//
// Example:
//
//	client := bootloader.New(conn,
//	    bootloader.WithProgressCallback(func(p bootloader.Progress) {
//	        fmt.Printf("%.1f%% complete\n", p.Percentage)
//	    }),
//	)
func WithProgressCallback(callback ProgressCallback) Option {
	return func(c *Config) {
		c.ProgressCallback = callback
	}
}

// WithTimeout sets the operating read timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		if timeout > 0 {
			c.Timeout = timeout
		}
	}
}

// WithSyncTimeout sets the short handshake read timeout.
func WithSyncTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		if timeout > 0 {
			c.SyncTimeout = timeout
		}
	}
}

// WithEraseTimeout sets the read timeout used while flash begin
// erases the target region.
func WithEraseTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		if timeout > 0 {
			c.EraseTimeout = timeout
		}
	}
}

// WithResetAttempts sets how many reset-to-bootloader pulses Connect
// tries before giving up.
func WithResetAttempts(attempts int) Option {
	return func(c *Config) {
		if attempts > 0 {
			c.ResetAttempts = attempts
		}
	}
}

// WithSyncAttempts sets how many sync handshakes are tried per reset
// pulse.
func WithSyncAttempts(attempts int) Option {
	return func(c *Config) {
		if attempts > 0 {
			c.SyncAttempts = attempts
		}
	}
}
