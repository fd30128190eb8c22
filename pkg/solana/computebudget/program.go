package computebudget

import (
	"crypto/ed25519"

	"github.com/pkg/errors"

	"github.com/code-payments/counter-program/pkg/solana"
	"github.com/code-payments/counter-program/pkg/solana/binary"
	"github.com/code-payments/counter-program/pkg/solana/runtime"
)

// ComputeBudget111111111111111111111111111111
var ProgramKey = ed25519.PublicKey{3, 6, 70, 111, 229, 33, 23, 50, 255, 236, 173, 186, 114, 195, 155, 231, 188, 140, 229, 187, 197, 247, 18, 107, 44, 67, 155, 58, 64, 0, 0, 0}

type Command uint8

const (
	CommandRequestUnits Command = iota
	CommandRequestHeapFrame
	CommandSetComputeUnitLimit
	CommandSetComputeUnitPrice
)

const (
	setComputeUnitLimitDataSize = 1 + 4
	setComputeUnitPriceDataSize = 1 + 8
)

// SetComputeUnitLimit caps the compute units the transaction may consume
func SetComputeUnitLimit(computeUnitLimit uint32) solana.Instruction {
	e := binary.NewEncoder(setComputeUnitLimitDataSize)
	e.PutUint8(uint8(CommandSetComputeUnitLimit))
	e.PutUint32(computeUnitLimit)

	return solana.NewInstruction(ProgramKey, e.Bytes())
}

// SetComputeUnitPrice sets the prioritization fee in micro-lamports per
// compute unit
func SetComputeUnitPrice(computeUnitPrice uint64) solana.Instruction {
	e := binary.NewEncoder(setComputeUnitPriceDataSize)
	e.PutUint8(uint8(CommandSetComputeUnitPrice))
	e.PutUint64(computeUnitPrice)

	return solana.NewInstruction(ProgramKey, e.Bytes())
}

func ParseSetComputeUnitLimitIxnData(data []byte) (uint32, error) {
	if len(data) != setComputeUnitLimitDataSize {
		return 0, errors.Errorf("invalid instruction data size: %d", len(data))
	}
	if Command(data[0]) != CommandSetComputeUnitLimit {
		return 0, errors.New("invalid instruction")
	}
	return binary.NewDecoder(data[1:]).Uint32()
}

func ParseSetComputeUnitPriceIxnData(data []byte) (uint64, error) {
	if len(data) != setComputeUnitPriceDataSize {
		return 0, errors.Errorf("invalid instruction data size: %d", len(data))
	}
	if Command(data[0]) != CommandSetComputeUnitPrice {
		return 0, errors.New("invalid instruction")
	}
	return binary.NewDecoder(data[1:]).Uint64()
}

// Process validates compute budget instructions. The budget itself is not
// metered, so well formed instructions are accepted without effect.
func Process(ctx *runtime.InvokeContext, accounts []*runtime.AccountInfo, data []byte) error {
	if len(accounts) != 0 {
		return solana.InstructionErrorInvalidArgument
	}
	if len(data) == 0 {
		return solana.InstructionErrorInvalidInstructionData
	}

	var err error
	switch Command(data[0]) {
	case CommandSetComputeUnitLimit:
		_, err = ParseSetComputeUnitLimitIxnData(data)
	case CommandSetComputeUnitPrice:
		_, err = ParseSetComputeUnitPriceIxnData(data)
	default:
		// Deprecated or unsupported commands
		err = errors.Errorf("unsupported command: %d", data[0])
	}
	if err != nil {
		ctx.Log("Invalid compute budget instruction: %v", err)
		return solana.InstructionErrorInvalidInstructionData
	}
	return nil
}
