package counter

import (
	"crypto/ed25519"

	"github.com/code-payments/counter-program/pkg/solana"
)

var (
	CounterPrefix = []byte("counter")
)

type GetCounterAddressArgs struct {
	Authority ed25519.PublicKey
	Name      string
}

// GetCounterAddress derives a deterministic counter address for an authority.
// Counters don't need to live at derived addresses, any writable account
// owned by the program works.
func GetCounterAddress(args *GetCounterAddressArgs) (ed25519.PublicKey, uint8, error) {
	return solana.FindProgramAddressAndBump(
		PROGRAM_ID,
		CounterPrefix,
		args.Authority,
		[]byte(args.Name),
	)
}
