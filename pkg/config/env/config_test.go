package env

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/code-payments/cnft-minter/pkg/config"
)

func TestConfig(t *testing.T) {
	const env = "CNFT_MINTER_ENV_CONFIG_TEST_VAR"

	t.Setenv(env, "default")
	c := NewConfig(env)

	v, err := c.Get(context.Background())
	assert.Equal(t, []byte("default"), v)
	assert.NoError(t, err)

	t.Setenv(env, "")
	v, err = c.Get(context.Background())
	assert.Nil(t, v)
	assert.Equal(t, config.ErrNoValue, err)
}

func TestTypedConfigs(t *testing.T) {
	ctx := context.Background()

	assert.EqualValues(t, 1400, NewUint64Config("CNFT_MINTER_TEST_SIZE", 1400).Get(ctx))
	assert.Equal(t, "collection.json", NewStringConfig("CNFT_MINTER_TEST_FILE", "collection.json").Get(ctx))
	assert.False(t, NewBoolConfig("CNFT_MINTER_TEST_FLAG", false).Get(ctx))

	t.Setenv("CNFT_MINTER_TEST_SIZE", "2048")
	t.Setenv("CNFT_MINTER_TEST_FILE", "meta.json")
	t.Setenv("CNFT_MINTER_TEST_FLAG", "true")

	assert.EqualValues(t, 2048, NewUint64Config("cnft_minter_test_size", 1400).Get(ctx))
	assert.Equal(t, "meta.json", NewStringConfig("CNFT_MINTER_TEST_FILE", "collection.json").Get(ctx))
	assert.True(t, NewBoolConfig("CNFT_MINTER_TEST_FLAG", false).Get(ctx))
}
