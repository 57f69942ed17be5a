package config

import (
	"context"

	"github.com/pkg/errors"
)

var (
	// ErrNoValue indicates no value was set for the config
	ErrNoValue = errors.New("config: no value set")

	// ErrShutdown indicates the use of a Config after calling Shutdown
	ErrShutdown = errors.New("config: shutdown")
)

// Config is a source of raw configuration values
type Config interface {
	// Get returns the latest raw value
	Get(ctx context.Context) (interface{}, error)

	// Shutdown signals the config to stop all underlying resources
	Shutdown()
}

// NoopConfig is a config that does not yield any values.
var NoopConfig = &noopConfig{}

type noopConfig struct{}

func (*noopConfig) Get(_ context.Context) (interface{}, error) {
	return nil, ErrNoValue
}

func (*noopConfig) Shutdown() {
}

// Typed is a Config whose raw values have been converted to T.
type Typed[T any] interface {
	// Get returns the latest value, falling back to the last known value on error
	Get(ctx context.Context) T

	// GetSafe is Get with errors propagated
	GetSafe(ctx context.Context) (T, error)

	Shutdown()
}

type (
	Bool   = Typed[bool]
	Uint64 = Typed[uint64]
	String = Typed[string]
)
