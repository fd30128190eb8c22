package counter

import (
	"github.com/code-payments/counter-program/pkg/solana/runtime"
)

// Process executes a counter instruction against the first account. It
// holds no state between calls.
func Process(ctx *runtime.InvokeContext, accounts []*runtime.AccountInfo, data []byte) error {
	if len(accounts) == 0 {
		return ErrMissingAccount
	}
	account := accounts[0]

	instruction, err := DecodeInstruction(data)
	if err != nil {
		return err
	}

	switch instruction.Type {
	case InstructionTypeInitialize:
		return writeCounter(account, &CounterAccount{Value: instruction.Value}, true)

	case InstructionTypeIncrement:
		var counter CounterAccount
		if err := counter.Unmarshal(account.Data); err != nil {
			return err
		}

		counter.Value += instruction.Value
		ctx.Log("Account incremented with %d", instruction.Value)

		return writeCounter(account, &counter, false)

	case InstructionTypeDecrement:
		var counter CounterAccount
		if err := counter.Unmarshal(account.Data); err != nil {
			return err
		}

		counter.Value -= instruction.Value
		ctx.Log("Account decremented with %d", instruction.Value)

		return writeCounter(account, &counter, false)
	}

	return ErrMalformedInstruction
}

func writeCounter(account *runtime.AccountInfo, counter *CounterAccount, zeroTrailing bool) error {
	if len(account.Data) < CounterAccountSize {
		return ErrWriteFailure
	}

	n := copy(account.Data, counter.Marshal())
	if zeroTrailing {
		for i := n; i < len(account.Data); i++ {
			account.Data[i] = 0
		}
	}
	return nil
}
