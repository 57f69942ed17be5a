package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/code-payments/cnft-minter/pkg/config"
)

var errDeveloperInduced = errors.New("in memory config: developer induced error")

// Config is an in memory config.Config used by tests to override values
type Config struct {
	stateMu  sync.RWMutex
	value    interface{}
	err      error
	shutdown bool
}

// NewConfig returns a new in memory config. A nil value means no value is set.
func NewConfig(value interface{}) *Config {
	return &Config{
		value: value,
	}
}

// Get implements Config.Get
func (c *Config) Get(_ context.Context) (interface{}, error) {
	c.stateMu.RLock()
	defer c.stateMu.RUnlock()

	switch {
	case c.shutdown:
		return nil, config.ErrShutdown
	case c.err != nil:
		return nil, c.err
	case c.value == nil:
		return nil, config.ErrNoValue
	}
	return c.value, nil
}

// Shutdown implements Config.Shutdown
func (c *Config) Shutdown() {
	c.update(func() { c.shutdown = true })
}

// SetValue sets the value returned by subsequent Get calls
func (c *Config) SetValue(value interface{}) {
	c.update(func() { c.value = value })
}

// ClearValue makes subsequent Get calls return config.ErrNoValue
func (c *Config) ClearValue() {
	c.update(func() { c.value = nil })
}

// InduceErrors makes subsequent Get calls fail
func (c *Config) InduceErrors() {
	c.update(func() { c.err = errDeveloperInduced })
}

// StopInducingErrors undoes InduceErrors
func (c *Config) StopInducingErrors() {
	c.update(func() { c.err = nil })
}

func (c *Config) update(fn func()) {
	c.stateMu.Lock()
	fn()
	c.stateMu.Unlock()
}
