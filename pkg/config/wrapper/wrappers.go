package wrapper

import (
	"context"
	"strconv"
	"sync"

	"github.com/pkg/errors"

	"github.com/code-payments/cnft-minter/pkg/config"
)

// ErrUnsuportedConversion indicates the wrapper does not implement conversion from the source type
var ErrUnsuportedConversion = errors.New("config: wrapper conversion from source type not implemented")

type converter[T any] func(raw interface{}) (T, error)

// TypedConfig converts the raw values of a config.Config into T. The last
// successfully converted value is kept so Get has something to return when
// the source errors.
type TypedConfig[T any] struct {
	source       config.Config
	defaultValue T
	convert      converter[T]

	stateMu   sync.RWMutex
	lastValue T
}

func newTypedConfig[T any](source config.Config, defaultValue T, convert converter[T]) *TypedConfig[T] {
	return &TypedConfig[T]{
		source:       source,
		defaultValue: defaultValue,
		convert:      convert,
		lastValue:    defaultValue,
	}
}

// NewBoolConfig returns a bool config backed by source
func NewBoolConfig(source config.Config, defaultValue bool) config.Bool {
	return newTypedConfig(source, defaultValue, func(raw interface{}) (bool, error) {
		switch v := raw.(type) {
		case []byte:
			return strconv.ParseBool(string(v))
		case string:
			return strconv.ParseBool(v)
		case bool:
			return v, nil
		default:
			return false, ErrUnsuportedConversion
		}
	})
}

// NewUint64Config returns a uint64 config backed by source
func NewUint64Config(source config.Config, defaultValue uint64) config.Uint64 {
	return newTypedConfig(source, defaultValue, func(raw interface{}) (uint64, error) {
		switch v := raw.(type) {
		case []byte:
			return strconv.ParseUint(string(v), 10, 64)
		case uint64:
			return v, nil
		case uint:
			return uint64(v), nil
		case int:
			if v < 0 {
				return 0, errors.Errorf("negative value: %d", v)
			}
			return uint64(v), nil
		default:
			return 0, ErrUnsuportedConversion
		}
	})
}

// NewStringConfig returns a string config backed by source
func NewStringConfig(source config.Config, defaultValue string) config.String {
	return newTypedConfig(source, defaultValue, func(raw interface{}) (string, error) {
		switch v := raw.(type) {
		case []byte:
			return string(v), nil
		case string:
			return v, nil
		default:
			return "", ErrUnsuportedConversion
		}
	})
}

// GetSafe gets a config value and propagates any errors that arise. A best-effort
// attempt is made to return the last known value
func (c *TypedConfig[T]) GetSafe(ctx context.Context) (T, error) {
	raw, err := c.source.Get(ctx)

	c.stateMu.RLock()
	lastValue := c.lastValue
	c.stateMu.RUnlock()

	if err == config.ErrNoValue {
		c.setLastValue(c.defaultValue)
		return c.defaultValue, nil
	} else if err != nil {
		return lastValue, err
	}

	converted, err := c.convert(raw)
	if err != nil {
		return lastValue, err
	}

	c.setLastValue(converted)
	return converted, nil
}

// Get is a wrapper for GetSafe that ignores the returned error
func (c *TypedConfig[T]) Get(ctx context.Context) T {
	val, _ := c.GetSafe(ctx)
	return val
}

// Shutdown signals the config to stop all underlying resources
func (c *TypedConfig[T]) Shutdown() {
	c.source.Shutdown()
}

func (c *TypedConfig[T]) setLastValue(v T) {
	c.stateMu.Lock()
	c.lastValue = v
	c.stateMu.Unlock()
}
