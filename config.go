package goSession

import (
	"fmt"
	"time"

	"github.com/MrEthical07/goSession/internal/expiry"
	"github.com/MrEthical07/goSession/internal/idle"
)

// Config defines a public type used by goSession APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	Expiry  ExpiryConfig
	Idle    IdleConfig
	Store   StoreConfig
	Events  EventsConfig
	Metrics MetricsConfig
}

/*
====================================
EXPIRY CONFIG
====================================
*/

// ExpiryConfig controls the token-expiry forced logout.
type ExpiryConfig struct {
	// Grace is added past the token's exp instant to tolerate clock skew
	// and timer slack. Defaults to 500ms.
	Grace time.Duration
}

/*
====================================
IDLE CONFIG
====================================
*/

// IdleConfig controls inactivity detection. Timeout is only the local
// default: when the durable store already carries a shared idle-timeout
// value, that value wins so every instance behaves identically.
type IdleConfig struct {
	// Timeout is the inactivity window after which the session is forcibly
	// ended. Zero disables idle monitoring.
	Timeout time.Duration
	// WarningLead is how long before the forced logout the warning fires.
	// Defaults to one minute. No warning is armed when Timeout <= WarningLead.
	WarningLead time.Duration
	// Slack delays the forced-logout timer slightly past the window so a
	// touch landing exactly on the deadline wins. Defaults to 250ms.
	Slack time.Duration
	// Tick is the warning countdown reporting interval. Defaults to 1s.
	Tick time.Duration
}

/*
====================================
STORE CONFIG
====================================
*/

// StoreConfig defines a public type used by goSession APIs.
type StoreConfig struct {
	// RedisPrefix namespaces the durable keys and the cross-instance event
	// channel. Defaults to "gsess".
	RedisPrefix string
}

/*
====================================
EVENTS CONFIG
====================================
*/

// EventsConfig controls the async session event dispatcher.
type EventsConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

/*
====================================
METRICS CONFIG
====================================
*/

// MetricsConfig defines a public type used by goSession APIs.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

func defaultConfig() Config {
	return Config{
		Expiry: ExpiryConfig{
			Grace: expiry.DefaultGrace,
		},
		Idle: IdleConfig{
			Timeout:     0, // disabled until configured locally or via the store
			WarningLead: idle.DefaultWarningLead,
			Slack:       idle.DefaultSlack,
			Tick:        idle.DefaultTick,
		},
		Store: StoreConfig{
			RedisPrefix: "gsess",
		},
		Events: EventsConfig{
			Enabled:    true,
			BufferSize: 64,
			DropIfFull: true,
		},
	}
}

func cloneConfig(cfg Config) Config {
	// All fields are value types; a copy is a deep copy.
	return cfg
}

// Validate checks the configuration for internally inconsistent values.
// Zero values are always valid and fall back to defaults.
func (c *Config) Validate() error {
	if c.Expiry.Grace < 0 {
		return fmt.Errorf("%w: negative expiry grace", ErrInvalidConfig)
	}
	if c.Idle.Timeout < 0 {
		return fmt.Errorf("%w: negative idle timeout", ErrInvalidConfig)
	}
	if c.Idle.WarningLead < 0 {
		return fmt.Errorf("%w: negative warning lead", ErrInvalidConfig)
	}
	if c.Idle.Slack < 0 {
		return fmt.Errorf("%w: negative idle slack", ErrInvalidConfig)
	}
	if c.Idle.Tick < 0 {
		return fmt.Errorf("%w: negative countdown tick", ErrInvalidConfig)
	}
	if c.Events.BufferSize < 0 {
		return fmt.Errorf("%w: negative event buffer size", ErrInvalidConfig)
	}
	return nil
}
