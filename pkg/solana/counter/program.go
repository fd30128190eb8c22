package counter

import (
	"crypto/ed25519"

	"github.com/mr-tron/base58"

	"github.com/code-payments/counter-program/pkg/solana"
)

var (
	PROGRAM_ADDRESS = mustBase58Decode("Cntr53siqYB3xRiJfz65ya7ewsSy8UcA8fM4Qa6Tieay")
	PROGRAM_ID      = ed25519.PublicKey(PROGRAM_ADDRESS)
)

// programError is returned by the processor. It unwraps to the instruction
// error reported by the runtime.
type programError struct {
	msg string
	key solana.InstructionErrorKey
}

func (e programError) Error() string {
	return e.msg
}

func (e programError) Unwrap() error {
	return e.key
}

var (
	ErrMalformedInstruction = programError{"counter: malformed instruction", solana.InstructionErrorInvalidInstructionData}
	ErrMalformedRecord      = programError{"counter: malformed record", solana.InstructionErrorInvalidAccountData}
	ErrMissingAccount       = programError{"counter: missing account", solana.InstructionErrorNotEnoughAccountKeys}
	ErrWriteFailure         = programError{"counter: write failure", solana.InstructionErrorAccountDataTooSmall}
)

func mustBase58Decode(value string) []byte {
	decoded, err := base58.Decode(value)
	if err != nil {
		panic(err)
	}
	return decoded
}
