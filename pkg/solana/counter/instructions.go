package counter

import (
	"bytes"
	"crypto/ed25519"

	"github.com/pkg/errors"

	"github.com/code-payments/counter-program/pkg/solana"
)

type InstructionAccounts struct {
	Counter ed25519.PublicKey
}

func NewInitializeInstruction(accounts *InstructionAccounts, value uint32) solana.Instruction {
	return NewProgramInstruction(PROGRAM_ID, accounts, &Instruction{Type: InstructionTypeInitialize, Value: value})
}

func NewIncrementInstruction(accounts *InstructionAccounts, value uint32) solana.Instruction {
	return NewProgramInstruction(PROGRAM_ID, accounts, &Instruction{Type: InstructionTypeIncrement, Value: value})
}

func NewDecrementInstruction(accounts *InstructionAccounts, value uint32) solana.Instruction {
	return NewProgramInstruction(PROGRAM_ID, accounts, &Instruction{Type: InstructionTypeDecrement, Value: value})
}

// NewProgramInstruction builds the instruction for a counter program deployed
// at program.
func NewProgramInstruction(program ed25519.PublicKey, accounts *InstructionAccounts, instruction *Instruction) solana.Instruction {
	return solana.Instruction{
		Program: program,

		// Instruction args
		Data: instruction.Marshal(),

		// Instruction accounts
		Accounts: []solana.AccountMeta{
			{
				PublicKey:  accounts.Counter,
				IsWritable: true,
				IsSigner:   false,
			},
		},
	}
}

type DecompiledInstruction struct {
	Counter     ed25519.PublicKey
	Instruction *Instruction
}

// DecompileInstruction parses the counter instruction at index in a message
func DecompileInstruction(m solana.Message, index int) (*DecompiledInstruction, error) {
	return DecompileProgramInstruction(PROGRAM_ID, m, index)
}

func DecompileProgramInstruction(program ed25519.PublicKey, m solana.Message, index int) (*DecompiledInstruction, error) {
	if index >= len(m.Instructions) {
		return nil, errors.Errorf("instruction doesn't exist at %d", index)
	}

	i := m.Instructions[index]

	if !bytes.Equal(m.Accounts[i.ProgramIndex], program) {
		return nil, solana.ErrIncorrectProgram
	}

	instruction, err := DecodeInstruction(i.Data)
	if err != nil {
		return nil, solana.ErrIncorrectInstruction
	}

	if len(i.Accounts) < 1 {
		return nil, errors.Errorf("invalid number of accounts: %d", len(i.Accounts))
	}

	return &DecompiledInstruction{
		Counter:     m.Accounts[i.Accounts[0]],
		Instruction: instruction,
	}, nil
}
