package memo

import (
	"context"
	"crypto/ed25519"
	"testing"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/counter-program/pkg/solana"
	"github.com/code-payments/counter-program/pkg/solana/runtime"
	"github.com/code-payments/counter-program/pkg/testutil"
)

func TestProgramKey(t *testing.T) {
	assert.Equal(t, "MemoSq4gqABAXKb96qnH8TysNcWxMyWCqXgDLGmfcHr", base58.Encode(ProgramKey))
}

func TestInstruction(t *testing.T) {
	i := Instruction("hello, world!")
	assert.Equal(t, ProgramKey, i.Program)
	assert.Empty(t, i.Accounts)
	assert.Equal(t, "hello, world!", string(i.Data))

	signer := testutil.GenerateSolanaKeys(t, 1)[0]
	i = Instruction("signed", signer)
	require.Len(t, i.Accounts, 1)
	assert.True(t, i.Accounts[0].IsSigner)
	assert.False(t, i.Accounts[0].IsWritable)
}

func TestDecompile(t *testing.T) {
	tx := solana.NewTransaction(
		make([]byte, 32),
		Instruction("hello, world"),
	)

	i, err := DecompileMemo(tx.Message, 0)
	assert.NoError(t, err)
	assert.Equal(t, "hello, world", string(i.Data))

	_, err = DecompileMemo(tx.Message, 1)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "instruction doesn't exist")

	tx.Message.Accounts[1], _, err = ed25519.GenerateKey(nil)
	require.NoError(t, err)
	_, err = DecompileMemo(tx.Message, 0)
	assert.Error(t, err)
	assert.Equal(t, solana.ErrIncorrectProgram, err)
}

func TestProcess(t *testing.T) {
	ctx := runtime.NewInvokeContext(context.Background(), ProgramKey)
	require.NoError(t, Process(ctx, nil, []byte("counter")))
	assert.Equal(t, []string{`Program log: Memo (len 7): "counter"`}, ctx.Logs())

	ctx = runtime.NewInvokeContext(context.Background(), ProgramKey)
	assert.Equal(t, solana.InstructionErrorInvalidInstructionData, Process(ctx, nil, []byte{0xff, 0xfe}))

	ctx = runtime.NewInvokeContext(context.Background(), ProgramKey)
	accounts := []*runtime.AccountInfo{{IsSigner: true}, {IsSigner: false}}
	assert.Equal(t, solana.InstructionErrorMissingRequiredSignature, Process(ctx, accounts, []byte("memo")))
}
