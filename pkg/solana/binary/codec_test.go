package binary

import (
	"crypto/ed25519"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodec_RoundTrip(t *testing.T) {
	key := make(ed25519.PublicKey, ed25519.PublicKeySize)
	for i := range key {
		key[i] = byte(i)
	}

	e := NewEncoder(1 + 4 + 8 + ed25519.PublicKeySize)
	e.PutUint8(9)
	e.PutUint32(0x01020304)
	e.PutUint64(0x0102030405060708)
	e.PutKey32(key)

	data := e.Bytes()
	assert.EqualValues(t, 9, data[0])
	assert.Equal(t, []byte{4, 3, 2, 1}, data[1:5])
	assert.Equal(t, []byte{8, 7, 6, 5, 4, 3, 2, 1}, data[5:13])

	d := NewDecoder(data)

	u8, err := d.Uint8()
	require.NoError(t, err)
	assert.EqualValues(t, 9, u8)

	u32, err := d.Uint32()
	require.NoError(t, err)
	assert.EqualValues(t, 0x01020304, u32)

	u64, err := d.Uint64()
	require.NoError(t, err)
	assert.EqualValues(t, uint64(0x0102030405060708), u64)

	decoded, err := d.Key32()
	require.NoError(t, err)
	assert.Equal(t, key, decoded)

	assert.Equal(t, 0, d.Remaining())
}

func TestDecoder_UnexpectedEOF(t *testing.T) {
	d := NewDecoder([]byte{1, 2, 3})

	_, err := d.Uint32()
	assert.Equal(t, ErrUnexpectedEOF, err)
	assert.Equal(t, 3, d.Remaining())

	_, err = d.Uint64()
	assert.Equal(t, ErrUnexpectedEOF, err)

	_, err = d.Key32()
	assert.Equal(t, ErrUnexpectedEOF, err)

	d = NewDecoder(nil)
	_, err = d.Uint8()
	assert.Equal(t, ErrUnexpectedEOF, err)
}
