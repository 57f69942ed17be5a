package env

import (
	"context"
	"os"
	"strings"

	"github.com/code-payments/cnft-minter/pkg/config"
	"github.com/code-payments/cnft-minter/pkg/config/wrapper"
)

type conf struct {
	key string
}

// NewConfig returns a config.Config sourced from the environment variable
// named key, upper cased. The variable is read on every Get, so changes made
// after construction are observed.
func NewConfig(key string) config.Config {
	return &conf{
		key: strings.ToUpper(key),
	}
}

// Get implements Config.Get
func (c *conf) Get(_ context.Context) (interface{}, error) {
	val, ok := os.LookupEnv(c.key)
	if !ok || len(val) == 0 {
		return nil, config.ErrNoValue
	}

	return []byte(val), nil
}

// Shutdown implements Config.Shutdown
func (c *conf) Shutdown() {
}

// NewUint64Config creates a env-based uint64 config
func NewUint64Config(key string, defaultValue uint64) config.Uint64 {
	return wrapper.NewUint64Config(NewConfig(key), defaultValue)
}

// NewStringConfig creates a env-based string config
func NewStringConfig(key string, defaultValue string) config.String {
	return wrapper.NewStringConfig(NewConfig(key), defaultValue)
}

// NewBoolConfig creates a env-based bool config
func NewBoolConfig(key string, defaultValue bool) config.Bool {
	return wrapper.NewBoolConfig(NewConfig(key), defaultValue)
}
