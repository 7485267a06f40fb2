package listener

import (
	"fmt"
	"time"
)

const (
	// DefaultMaxBodyBytes bounds a single notification body
	DefaultMaxBodyBytes = 1 << 20

	defaultReadTimeout  = 30 * time.Second
	defaultWriteTimeout = 30 * time.Second
	defaultIdleTimeout  = 120 * time.Second
)

// ServerConfig holds callback listener configuration.
type ServerConfig struct {
	// MaxBodyBytes is the largest notification accepted; longer bodies are dropped
	MaxBodyBytes int64

	// DedupeSize enables duplicate suppression over the last N notifications (0 = off)
	DedupeSize int

	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// SetDefaults fills in zero values.
func (c *ServerConfig) SetDefaults() {
	if c.MaxBodyBytes == 0 {
		c.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = defaultReadTimeout
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = defaultWriteTimeout
	}
	if c.IdleTimeout == 0 {
		c.IdleTimeout = defaultIdleTimeout
	}
}

// Validate checks the configuration.
func (c *ServerConfig) Validate() error {
	if c.MaxBodyBytes < 0 {
		return fmt.Errorf("max body bytes cannot be negative: %d", c.MaxBodyBytes)
	}
	if c.DedupeSize < 0 {
		return fmt.Errorf("dedupe size cannot be negative: %d", c.DedupeSize)
	}
	if c.ReadTimeout < 0 || c.WriteTimeout < 0 || c.IdleTimeout < 0 {
		return fmt.Errorf("timeouts cannot be negative")
	}
	return nil
}
