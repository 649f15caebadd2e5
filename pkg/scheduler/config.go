/*
Copyright (c) automateprint authors.
Licensed under the MIT license.
*/

package scheduler

import (
	"time"

	"go.uber.org/zap"

	"github.com/Vishnuvikas56/automateprint/pkg/consumption"
	"github.com/Vishnuvikas56/automateprint/pkg/scorer"
)

// Config is the enumerated set of options recognized by the engine
// (§6 Configuration). It is built with functional options, the same
// pattern jamyct-fleet's framework.Option applies to frameworkOptions.
type Config struct {
	MaxQueueLength int
	MaxRetries     int
	RetryDelay     time.Duration
	LockTimeout    time.Duration
	CacheTTL       time.Duration
	DefaultWeights scorer.Weights
	InkConsumption consumption.Table
	Logger         *zap.Logger
}

// DefaultConfig returns the configuration defaults from §6.
func DefaultConfig() Config {
	return Config{
		MaxQueueLength: 10,
		MaxRetries:     3,
		RetryDelay:     500 * time.Millisecond,
		LockTimeout:    10 * time.Second,
		CacheTTL:       300 * time.Second,
		DefaultWeights: scorer.Default(),
		InkConsumption: consumption.Default(),
	}
}

// Option configures a Config at construction time.
type Option func(*Config)

func WithMaxQueueLength(n int) Option        { return func(c *Config) { c.MaxQueueLength = n } }
func WithMaxRetries(n int) Option            { return func(c *Config) { c.MaxRetries = n } }
func WithRetryDelay(d time.Duration) Option  { return func(c *Config) { c.RetryDelay = d } }
func WithLockTimeout(d time.Duration) Option { return func(c *Config) { c.LockTimeout = d } }
func WithCacheTTL(d time.Duration) Option    { return func(c *Config) { c.CacheTTL = d } }
func WithWeights(w scorer.Weights) Option    { return func(c *Config) { c.DefaultWeights = w } }
func WithInkConsumption(t consumption.Table) Option {
	return func(c *Config) { c.InkConsumption = t }
}

// WithLogger sets the structured logger used at construction time by
// both the Scheduler and the Resource Manager it builds. Must be
// supplied before New returns — there is no way to retrofit a logger
// into an already-constructed Resource Manager.
func WithLogger(l *zap.Logger) Option { return func(c *Config) { c.Logger = l } }
