package tests

import (
	"context"
	"crypto/ed25519"
	"testing"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/counter-program/pkg/ledger/account"
)

func RunTests(t *testing.T, s account.Store, teardown func()) {
	for _, tf := range []func(t *testing.T, s account.Store){
		testRoundTrip,
		testUpdate,
		testGetMultiple,
		testGetAllByOwner,
		testSaveAllIsAtomic,
	} {
		tf(t, s)
		teardown()
	}
}

func testRoundTrip(t *testing.T, s account.Store) {
	ctx := context.Background()

	address := newKey(t)

	actual, err := s.Get(ctx, address)
	assert.Equal(t, account.ErrAccountNotFound, err)
	assert.Nil(t, actual)

	count, err := s.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 0, count)

	expected := &account.Record{
		Address:  address,
		Owner:    newKey(t),
		Lamports: 890880,
		Data:     []byte{10, 0, 0, 0},
		Slot:     1,
	}
	cloned := expected.Clone()
	require.NoError(t, s.SaveAll(ctx, expected))
	assert.EqualValues(t, 1, expected.Id)
	assert.False(t, expected.UpdatedAt.IsZero())

	actual, err = s.Get(ctx, address)
	require.NoError(t, err)
	assertEquivalentRecords(t, &cloned, actual)
	assert.EqualValues(t, 1, actual.Id)
	assert.EqualValues(t, 1, actual.Slot)

	count, err = s.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	// Mutating a returned record must not affect the store
	actual.Data[0] = 0xff
	actual, err = s.Get(ctx, address)
	require.NoError(t, err)
	assert.EqualValues(t, 10, actual.Data[0])
}

func testUpdate(t *testing.T, s account.Store) {
	ctx := context.Background()

	expected := &account.Record{
		Address:  newKey(t),
		Owner:    newKey(t),
		Lamports: 1000,
		Data:     []byte{1, 0, 0, 0},
		Slot:     1,
	}
	require.NoError(t, s.SaveAll(ctx, expected))
	assert.EqualValues(t, 1, expected.Id)

	expected.Owner = newKey(t)
	expected.Lamports = 2000
	expected.Data = []byte{2, 0, 0, 0}
	expected.Executable = true
	expected.Slot = 2
	require.NoError(t, s.SaveAll(ctx, expected))
	assert.EqualValues(t, 1, expected.Id)

	actual, err := s.Get(ctx, expected.Address)
	require.NoError(t, err)
	assertEquivalentRecords(t, expected, actual)
	assert.EqualValues(t, 2, actual.Slot)

	count, err := s.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func testGetMultiple(t *testing.T, s account.Store) {
	ctx := context.Background()

	records := make([]*account.Record, 3)
	for i := range records {
		records[i] = &account.Record{
			Address:  newKey(t),
			Owner:    newKey(t),
			Lamports: uint64(i + 1),
			Data:     []byte{byte(i), 0, 0, 0},
		}
	}
	require.NoError(t, s.SaveAll(ctx, records...))

	missing := newKey(t)

	actual, err := s.GetMultiple(ctx, records[2].Address, missing, records[0].Address)
	require.NoError(t, err)
	require.Len(t, actual, 3)
	assertEquivalentRecords(t, records[2], actual[0])
	assert.Nil(t, actual[1])
	assertEquivalentRecords(t, records[0], actual[2])

	actual, err = s.GetMultiple(ctx)
	require.NoError(t, err)
	assert.Empty(t, actual)
}

func testGetAllByOwner(t *testing.T, s account.Store) {
	ctx := context.Background()

	owner := newKey(t)

	_, err := s.GetAllByOwner(ctx, owner)
	assert.Equal(t, account.ErrAccountNotFound, err)

	var owned []*account.Record
	for i := 0; i < 5; i++ {
		record := &account.Record{
			Address: newKey(t),
			Owner:   owner,
			Data:    []byte{byte(i), 0, 0, 0},
		}
		owned = append(owned, record)
	}
	other := &account.Record{
		Address: newKey(t),
		Owner:   newKey(t),
		Data:    []byte{},
	}
	require.NoError(t, s.SaveAll(ctx, append(owned, other)...))

	actual, err := s.GetAllByOwner(ctx, owner)
	require.NoError(t, err)
	require.Len(t, actual, len(owned))
	for i := 1; i < len(actual); i++ {
		assert.True(t, actual[i-1].Address < actual[i].Address)
	}
	for _, record := range actual {
		assert.Equal(t, owner, record.Owner)
	}
}

func testSaveAllIsAtomic(t *testing.T, s account.Store) {
	ctx := context.Background()

	valid := &account.Record{
		Address: newKey(t),
		Owner:   newKey(t),
		Data:    []byte{1, 2, 3, 4},
	}
	invalid := &account.Record{
		Address: newKey(t),
	}

	assert.Error(t, s.SaveAll(ctx, valid, invalid))

	_, err := s.Get(ctx, valid.Address)
	assert.Equal(t, account.ErrAccountNotFound, err)

	count, err := s.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 0, count)
}

func assertEquivalentRecords(t *testing.T, expected, actual *account.Record) {
	require.NotNil(t, actual)
	assert.Equal(t, expected.Address, actual.Address)
	assert.Equal(t, expected.Owner, actual.Owner)
	assert.Equal(t, expected.Lamports, actual.Lamports)
	assert.Equal(t, expected.Data, actual.Data)
	assert.Equal(t, expected.Executable, actual.Executable)
}

func newKey(t *testing.T) string {
	pub, _, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	return base58.Encode(pub)
}
