package goSession

import (
	"github.com/MrEthical07/goSession/internal/events"
	"github.com/MrEthical07/goSession/internal/expiry"
	internalmetrics "github.com/MrEthical07/goSession/internal/metrics"
	"github.com/MrEthical07/goSession/store"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Builder defines a public type used by goSession APIs.
//
// Builder instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Builder struct {
	config Config
	redis  redis.UniversalClient

	client CredentialClient
	sink   EventSink

	instanceID string

	built bool
}

// New creates a Builder preloaded with defaults. A Redis client is optional:
// without one the controller runs single-instance and memory-only.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig replaces the entire configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis attaches the durable store backend shared by all instances.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithCredentialClient attaches the external refresh/invalidate collaborator.
func (b *Builder) WithCredentialClient(client CredentialClient) *Builder {
	b.client = client
	return b
}

// WithEventSink attaches the sink that receives session lifecycle events.
func (b *Builder) WithEventSink(sink EventSink) *Builder {
	b.sink = sink
	return b
}

// WithInstanceID overrides the generated per-instance origin ID. Mostly
// useful in tests; colliding IDs make instances ignore each other's writes.
func (b *Builder) WithInstanceID(id string) *Builder {
	b.instanceID = id
	return b
}

// WithMetricsEnabled toggles metric collection.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms toggles refresh latency histogram collection.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration and assembles a [Controller]. The
// controller owns no goroutines and arms no timers until [Controller.Start].
func (b *Builder) Build() (*Controller, error) {
	if b.built {
		return nil, ErrBuilderReused
	}

	cfg := cloneConfig(b.config)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	instanceID := b.instanceID
	if instanceID == "" {
		instanceID = uuid.NewString()
	}

	m := NewMetrics(cfg.Metrics)
	st := store.New(b.redis, cfg.Store.RedisPrefix, instanceID)
	st.OnDegrade(func() {
		m.Inc(internalmetrics.MetricStoreDegraded)
	})

	c := &Controller{
		cfg:     cfg,
		store:   st,
		client:  b.client,
		metrics: m,
		expiry:  expiry.NewScheduler(cfg.Expiry.Grace),
		events: events.NewDispatcher(events.Config{
			Enabled:    cfg.Events.Enabled,
			BufferSize: cfg.Events.BufferSize,
			DropIfFull: cfg.Events.DropIfFull,
		}, b.sink),
		state: StateLoggedOut,
	}

	b.built = true

	return c, nil
}
