package runtime

import (
	"bytes"
	"crypto/ed25519"
	"math"

	"github.com/code-payments/counter-program/pkg/solana"
	"github.com/code-payments/counter-program/pkg/solana/system"
)

var (
	SystemProgramID = ed25519.PublicKey(system.ProgramKey[:])
)

// System program custom errors.
//
// Reference: https://github.com/solana-labs/solana/blob/f02a78d8fff2dd7297dc6ce6eb5a68a3002f5359/sdk/program/src/system_instruction.rs#L20-L35
const (
	SystemErrorAccountAlreadyInUse        solana.CustomError = 0
	SystemErrorResultWithNegativeLamports solana.CustomError = 1
	SystemErrorInvalidAccountDataLength   solana.CustomError = 3
)

// processSystem is the native implementation of the subset of the system
// program needed to create and fund accounts.
func (r *Runtime) processSystem(ctx *InvokeContext, accounts []*AccountInfo, data []byte) error {
	command, err := system.GetCommand(data)
	if err != nil {
		return solana.InstructionErrorInvalidInstructionData
	}

	if len(accounts) < 2 {
		return solana.InstructionErrorNotEnoughAccountKeys
	}
	from, to := accounts[0], accounts[1]

	switch command {
	case system.CommandCreateAccount:
		args, err := system.ParseCreateAccountArgs(data)
		if err != nil {
			return solana.InstructionErrorInvalidInstructionData
		}

		if !from.IsSigner || !to.IsSigner {
			return solana.InstructionErrorMissingRequiredSignature
		}
		if !to.isUnallocated() || to.Lamports > 0 {
			ctx.Log("Create Account: account %s already in use", to.key())
			return SystemErrorAccountAlreadyInUse
		}
		if args.Size > r.conf.maxAccountDataSize.Get(ctx.Context()) {
			return SystemErrorInvalidAccountDataLength
		}
		if err := transfer(ctx, from, to, args.Lamports); err != nil {
			return err
		}

		to.Data = make([]byte, args.Size)
		to.Owner = args.Owner
		return nil

	case system.CommandTransfer:
		lamports, err := system.ParseTransferLamports(data)
		if err != nil {
			return solana.InstructionErrorInvalidInstructionData
		}
		if !from.IsSigner {
			return solana.InstructionErrorMissingRequiredSignature
		}
		return transfer(ctx, from, to, lamports)
	}

	return solana.InstructionErrorInvalidInstructionData
}

func transfer(ctx *InvokeContext, from, to *AccountInfo, lamports uint64) error {
	if len(from.Data) > 0 || !bytes.Equal(from.Owner, SystemProgramID) {
		ctx.Log("Transfer: `from` must not carry data")
		return solana.InstructionErrorInvalidArgument
	}
	if from.Lamports < lamports {
		ctx.Log("Transfer: insufficient lamports %d, need %d", from.Lamports, lamports)
		return SystemErrorResultWithNegativeLamports
	}

	if to.Lamports > math.MaxUint64-lamports {
		ctx.Log("Transfer: recipient balance overflow")
		return solana.InstructionErrorArithmeticOverflow
	}

	from.Lamports -= lamports
	to.Lamports += lamports
	return nil
}
