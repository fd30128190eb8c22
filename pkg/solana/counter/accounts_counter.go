package counter

import (
	"bytes"
	"crypto/ed25519"

	"github.com/near/borsh-go"
	"github.com/pkg/errors"

	"github.com/code-payments/counter-program/pkg/solana"
)

const (
	CounterAccountSize = 4 // value
)

var (
	ErrNotCounterAccount = errors.New("account is not owned by the counter program")
)

// CounterAccount is the persisted counter record
type CounterAccount struct {
	Value uint32
}

// Marshal encodes the record into exactly CounterAccountSize bytes
func (obj *CounterAccount) Marshal() []byte {
	// Serializing a struct of a single uint32 can't fail
	data, _ := borsh.Serialize(*obj)
	return data
}

// Unmarshal decodes the record from the first CounterAccountSize bytes of
// data. Any trailing bytes are ignored.
func (obj *CounterAccount) Unmarshal(data []byte) error {
	if len(data) < CounterAccountSize {
		return ErrMalformedRecord
	}

	var decoded CounterAccount
	if err := borsh.Deserialize(&decoded, data[:CounterAccountSize]); err != nil {
		return ErrMalformedRecord
	}

	*obj = decoded
	return nil
}

// GetCounterAccount fetches and decodes the counter at address
func GetCounterAccount(client solana.Client, address ed25519.PublicKey, commitment solana.Commitment) (*CounterAccount, error) {
	info, err := client.GetAccountInfo(address, commitment)
	if err != nil {
		return nil, err
	}

	return CounterFromAccountInfo(info, PROGRAM_ID)
}

// CounterFromAccountInfo decodes a counter from account info owned by program
func CounterFromAccountInfo(info solana.AccountInfo, program ed25519.PublicKey) (*CounterAccount, error) {
	if !bytes.Equal(info.Owner, program) {
		return nil, ErrNotCounterAccount
	}

	var counter CounterAccount
	if err := counter.Unmarshal(info.Data); err != nil {
		return nil, err
	}
	return &counter, nil
}
