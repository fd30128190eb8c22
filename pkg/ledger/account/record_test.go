package account

import (
	"crypto/ed25519"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecord_Validate(t *testing.T) {
	address, _, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	owner, _, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	record := NewRecord(address, owner, 1000, []byte{1, 2, 3, 4})
	require.NoError(t, record.Validate())

	actualAddress, err := record.GetAddress()
	require.NoError(t, err)
	assert.Equal(t, address, actualAddress)

	actualOwner, err := record.GetOwner()
	require.NoError(t, err)
	assert.Equal(t, owner, actualOwner)

	for _, invalid := range []func(r *Record){
		func(r *Record) { r.Address = "" },
		func(r *Record) { r.Address = "invalid-base58-0OIl" },
		func(r *Record) { r.Address = "11111" },
		func(r *Record) { r.Owner = "" },
		func(r *Record) { r.Owner = "0OIl" },
		func(r *Record) { r.Lamports = math.MaxUint64 },
	} {
		cloned := record.Clone()
		invalid(&cloned)
		assert.Error(t, cloned.Validate())
	}
}

func TestRecord_Clone(t *testing.T) {
	address, _, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	record := NewRecord(address, address, 1, []byte{1, 2, 3, 4})
	record.Slot = 10

	cloned := record.Clone()
	assert.Equal(t, *record, cloned)
	assert.True(t, record.Equivalent(&cloned))

	cloned.Data[0] = 0xff
	assert.EqualValues(t, 1, record.Data[0])
	assert.False(t, record.Equivalent(&cloned))

	var copied Record
	record.CopyTo(&copied)
	assert.Equal(t, *record, copied)
}
