package runtime

import (
	"bytes"
	"crypto/ed25519"

	"github.com/mr-tron/base58"
)

// AccountInfo is the view of an account handed to a program. Programs may
// mutate Lamports, Data and Owner. Changes are checked against the host's
// account rules after the instruction completes.
type AccountInfo struct {
	Key        ed25519.PublicKey
	Owner      ed25519.PublicKey
	Lamports   uint64
	Data       []byte
	Executable bool

	IsSigner   bool
	IsWritable bool
}

func (a *AccountInfo) clone() *AccountInfo {
	cloned := *a
	cloned.Data = make([]byte, len(a.Data))
	copy(cloned.Data, a.Data)
	return &cloned
}

// isUnallocated reports whether the account is an empty system account, as
// is the case for addresses that have never been written.
func (a *AccountInfo) isUnallocated() bool {
	return len(a.Data) == 0 && bytes.Equal(a.Owner, SystemProgramID)
}

func isZeroed(data []byte) bool {
	for _, b := range data {
		if b != 0 {
			return false
		}
	}
	return true
}

func (a *AccountInfo) key() string {
	return base58.Encode(a.Key)
}
