package counter

import (
	"fmt"

	"github.com/near/borsh-go"
)

type InstructionType uint8

const (
	InstructionTypeInitialize InstructionType = iota
	InstructionTypeIncrement
	InstructionTypeDecrement
)

const (
	// InstructionSize is the size of the encoded instruction: a one byte
	// discriminant followed by a little endian u32 operand.
	InstructionSize = 1 + 4
)

func (t InstructionType) String() string {
	switch t {
	case InstructionTypeInitialize:
		return "initialize"
	case InstructionTypeIncrement:
		return "increment"
	case InstructionTypeDecrement:
		return "decrement"
	}
	return fmt.Sprintf("unknown(%d)", uint8(t))
}

func (t InstructionType) isValid() bool {
	return t <= InstructionTypeDecrement
}

// Instruction is a decoded counter program instruction
type Instruction struct {
	Type  InstructionType
	Value uint32
}

func (i *Instruction) String() string {
	return fmt.Sprintf("%s(%d)", i.Type, i.Value)
}

// Marshal encodes the instruction into its wire format
func (i *Instruction) Marshal() []byte {
	// Serializing a uint32 can't fail
	operand, _ := borsh.Serialize(i.Value)

	data := make([]byte, 0, InstructionSize)
	data = append(data, byte(i.Type))
	return append(data, operand...)
}

// DecodeInstruction decodes an instruction from its wire format. Trailing
// bytes are rejected.
func DecodeInstruction(data []byte) (*Instruction, error) {
	if len(data) == 0 {
		return nil, ErrMalformedInstruction
	}

	instructionType := InstructionType(data[0])
	if !instructionType.isValid() {
		return nil, ErrMalformedInstruction
	}

	if len(data) != InstructionSize {
		return nil, ErrMalformedInstruction
	}

	var value uint32
	if err := borsh.Deserialize(&value, data[1:InstructionSize]); err != nil {
		return nil, ErrMalformedInstruction
	}

	return &Instruction{
		Type:  instructionType,
		Value: value,
	}, nil
}
