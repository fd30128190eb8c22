package account

import (
	"bytes"
	"crypto/ed25519"
	"math"
	"time"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
)

// Record is the persisted state of a single ledger account.
type Record struct {
	Id uint64

	Address    string
	Owner      string
	Lamports   uint64
	Data       []byte
	Executable bool

	// Slot is the ledger slot at which the account was last written.
	Slot uint64

	UpdatedAt time.Time
}

// NewRecord returns a Record for the provided keys
func NewRecord(address, owner ed25519.PublicKey, lamports uint64, data []byte) *Record {
	return &Record{
		Address:  base58.Encode(address),
		Owner:    base58.Encode(owner),
		Lamports: lamports,
		Data:     data,
	}
}

func (r *Record) GetAddress() (ed25519.PublicKey, error) {
	return decodeKey(r.Address)
}

func (r *Record) GetOwner() (ed25519.PublicKey, error) {
	return decodeKey(r.Owner)
}

func (r *Record) Validate() error {
	if len(r.Address) == 0 {
		return errors.New("address is required")
	}
	if _, err := decodeKey(r.Address); err != nil {
		return errors.Wrap(err, "invalid address")
	}

	if len(r.Owner) == 0 {
		return errors.New("owner is required")
	}
	if _, err := decodeKey(r.Owner); err != nil {
		return errors.Wrap(err, "invalid owner")
	}

	if r.Lamports > math.MaxInt64 {
		return errors.Errorf("lamports exceeds max supported value: %d", r.Lamports)
	}

	return nil
}

func (r *Record) Clone() Record {
	var data []byte
	if r.Data != nil {
		data = make([]byte, len(r.Data))
		copy(data, r.Data)
	}

	return Record{
		Id:         r.Id,
		Address:    r.Address,
		Owner:      r.Owner,
		Lamports:   r.Lamports,
		Data:       data,
		Executable: r.Executable,
		Slot:       r.Slot,
		UpdatedAt:  r.UpdatedAt,
	}
}

func (r *Record) CopyTo(dst *Record) {
	cloned := r.Clone()
	*dst = cloned
}

// Equivalent reports whether two records describe the same account state,
// ignoring store bookkeeping fields.
func (r *Record) Equivalent(other *Record) bool {
	return r.Address == other.Address &&
		r.Owner == other.Owner &&
		r.Lamports == other.Lamports &&
		bytes.Equal(r.Data, other.Data) &&
		r.Executable == other.Executable
}

func decodeKey(value string) (ed25519.PublicKey, error) {
	decoded, err := base58.Decode(value)
	if err != nil {
		return nil, err
	}
	if len(decoded) != ed25519.PublicKeySize {
		return nil, errors.Errorf("invalid key length: %d", len(decoded))
	}
	return decoded, nil
}
