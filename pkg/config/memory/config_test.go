package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/code-payments/cnft-minter/pkg/config"
)

func TestConfig_StateTransitions(t *testing.T) {
	ctx := context.Background()
	c := NewConfig(uint64(1400))

	for _, step := range []struct {
		name     string
		apply    func()
		expected interface{}
		err      error
	}{
		{name: "initial", apply: func() {}, expected: uint64(1400)},
		{name: "set", apply: func() { c.SetValue(uint64(512)) }, expected: uint64(512)},
		{name: "clear", apply: c.ClearValue, err: config.ErrNoValue},
		{name: "induce errors", apply: c.InduceErrors, err: errDeveloperInduced},
		{name: "set while erroring", apply: func() { c.SetValue("collection.json") }, err: errDeveloperInduced},
		{name: "stop errors", apply: c.StopInducingErrors, expected: "collection.json"},
		{name: "shutdown", apply: c.Shutdown, err: config.ErrShutdown},
		{name: "set after shutdown", apply: func() { c.SetValue(true) }, err: config.ErrShutdown},
	} {
		step.apply()

		actual, err := c.Get(ctx)
		if step.err != nil {
			assert.Equal(t, step.err, err, step.name)
			assert.Nil(t, actual, step.name)
			continue
		}
		assert.NoError(t, err, step.name)
		assert.Equal(t, step.expected, actual, step.name)
	}
}

func TestConfig_ConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	c := NewConfig(nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			c.SetValue(i)
		}(i)
		go func() {
			defer wg.Done()
			_, _ = c.Get(ctx)
		}()
	}
	wg.Wait()

	actual, err := c.Get(ctx)
	assert.NoError(t, err)
	assert.IsType(t, 0, actual)
}
