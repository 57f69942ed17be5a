package pointer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTo(t *testing.T) {
	value := uint8(5)
	ptr := To(value)
	value = 6

	assert.EqualValues(t, 5, *ptr)
	assert.NotEqual(t, value, *ptr)
	assert.Equal(t, "nft", *To("nft"))
}

func TestValueOrDefault(t *testing.T) {
	assert.EqualValues(t, 7, ValueOrDefault(To(uint64(7)), 0))
	assert.EqualValues(t, 3, ValueOrDefault(nil, uint64(3)))
	assert.False(t, ValueOrDefault[bool](nil, false))
}
