package binary

import (
	"crypto/ed25519"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOffsets(t *testing.T) {
	key := make(ed25519.PublicKey, ed25519.PublicKeySize)
	for i := range key {
		key[i] = byte(i)
	}
	amount := uint64(1000)

	buf := make([]byte, 32+(4+32)+8+4+2+1+1+(4+8)+3)

	var offset int
	PutKey32(buf[offset:], key, &offset)
	PutOptionalKey32(buf[offset:], nil, &offset, 4)
	PutUint64(buf[offset:], 42, &offset)
	PutUint32(buf[offset:], 7, &offset)
	PutUint16(buf[offset:], 500, &offset)
	PutUint8(buf[offset:], 9, &offset)
	PutBool(buf[offset:], true, &offset)
	PutOptionalUint64(buf[offset:], &amount, &offset, 4)
	PutBytes(buf[offset:], []byte{1, 2, 3}, &offset)
	require.Equal(t, len(buf), offset)

	var (
		actualKey      ed25519.PublicKey
		actualOptional ed25519.PublicKey
		u64            uint64
		u32            uint32
		u16            uint16
		u8             uint8
		flag           bool
		optional       *uint64
		raw            = make([]byte, 3)
	)

	offset = 0
	GetKey32(buf[offset:], &actualKey, &offset)
	GetOptionalKey32(buf[offset:], &actualOptional, &offset, 4)
	GetUint64(buf[offset:], &u64, &offset)
	GetUint32(buf[offset:], &u32, &offset)
	GetUint16(buf[offset:], &u16, &offset)
	GetUint8(buf[offset:], &u8, &offset)
	GetBool(buf[offset:], &flag, &offset)
	GetOptionalUint64(buf[offset:], &optional, &offset, 4)
	GetBytes(buf[offset:], raw, &offset)
	require.Equal(t, len(buf), offset)

	assert.Equal(t, key, actualKey)
	assert.Nil(t, actualOptional)
	assert.EqualValues(t, 42, u64)
	assert.EqualValues(t, 7, u32)
	assert.EqualValues(t, 500, u16)
	assert.EqualValues(t, 9, u8)
	assert.True(t, flag)
	require.NotNil(t, optional)
	assert.Equal(t, amount, *optional)
	assert.Equal(t, []byte{1, 2, 3}, raw)
}
