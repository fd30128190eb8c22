package memo

import (
	"bytes"
	"crypto/ed25519"
	"unicode/utf8"

	"github.com/pkg/errors"

	"github.com/code-payments/counter-program/pkg/solana"
	"github.com/code-payments/counter-program/pkg/solana/runtime"
)

// ProgramKey is the address of the memo program (MemoSq4gqABAXKb96qnH8TysNcWxMyWCqXgDLGmfcHr).
var ProgramKey = ed25519.PublicKey{5, 74, 83, 90, 153, 41, 33, 6, 77, 36, 232, 113, 96, 218, 56, 124, 124, 53, 181, 221, 188, 146, 187, 129, 228, 31, 168, 64, 65, 5, 68, 141}

// Instruction returns a memo instruction. Every signer must sign the
// transaction for the memo to be accepted.
//
// Reference: https://github.com/solana-labs/solana-program-library/blob/master/memo/program/src/processor.rs
func Instruction(data string, signers ...ed25519.PublicKey) solana.Instruction {
	accounts := make([]solana.AccountMeta, len(signers))
	for i, signer := range signers {
		accounts[i] = solana.NewReadonlyAccountMeta(signer, true)
	}

	return solana.NewInstruction(
		ProgramKey,
		[]byte(data),
		accounts...,
	)
}

type DecompiledMemo struct {
	Data []byte
}

func DecompileMemo(m solana.Message, index int) (*DecompiledMemo, error) {
	if index >= len(m.Instructions) {
		return nil, errors.Errorf("instruction doesn't exist at %d", index)
	}

	i := m.Instructions[index]

	if !bytes.Equal(m.Accounts[i.ProgramIndex], ProgramKey) {
		return nil, solana.ErrIncorrectProgram
	}

	return &DecompiledMemo{Data: i.Data}, nil
}

// Process executes a memo instruction: every provided account must have
// signed, and the memo must be valid UTF-8. The memo is logged.
func Process(ctx *runtime.InvokeContext, accounts []*runtime.AccountInfo, data []byte) error {
	for _, account := range accounts {
		if !account.IsSigner {
			ctx.Log("Missing required signature")
			return solana.InstructionErrorMissingRequiredSignature
		}
	}

	if !utf8.Valid(data) {
		ctx.Log("Invalid UTF-8")
		return solana.InstructionErrorInvalidInstructionData
	}

	ctx.Log("Memo (len %d): %q", len(data), string(data))
	return nil
}
