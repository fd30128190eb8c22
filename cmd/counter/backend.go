package main

import (
	"context"
	"crypto/ed25519"
	"crypto/sha256"
	"sort"

	"github.com/google/uuid"
	"github.com/mr-tron/base58"
	"github.com/pkg/errors"

	"github.com/code-payments/counter-program/pkg/ledger/account"
	"github.com/code-payments/counter-program/pkg/solana"
	"github.com/code-payments/counter-program/pkg/solana/runtime"
)

type submitResult struct {
	Signature solana.Signature
	Logs      []string
}

type programAccount struct {
	Address ed25519.PublicKey
	Info    solana.AccountInfo
}

// backend is where transactions are executed: a remote cluster over RPC,
// or an in process runtime.
type backend interface {
	Airdrop(ctx context.Context, address ed25519.PublicKey, lamports uint64) error

	MinimumBalanceForRentExemption(ctx context.Context, size uint64) (uint64, error)

	// Submit sets a recent blockhash, signs and submits the transaction, and
	// waits for it to land.
	Submit(ctx context.Context, txn solana.Transaction, signers ...ed25519.PrivateKey) (*submitResult, error)

	// GetAccountInfo returns solana.ErrNoAccountInfo if the account doesn't
	// exist.
	GetAccountInfo(ctx context.Context, address ed25519.PublicKey) (*solana.AccountInfo, error)

	// GetProgramAccounts returns every account owned by program, ordered by
	// address.
	GetProgramAccounts(ctx context.Context, program ed25519.PublicKey) ([]programAccount, error)
}

type rpcBackend struct {
	client     solana.Client
	commitment solana.Commitment
}

func newRPCBackend(client solana.Client, commitment solana.Commitment) backend {
	return &rpcBackend{
		client:     client,
		commitment: commitment,
	}
}

func (b *rpcBackend) Airdrop(ctx context.Context, address ed25519.PublicKey, lamports uint64) error {
	sig, err := b.client.RequestAirdrop(address, lamports, b.commitment)
	if err != nil {
		return errors.Wrap(err, "error requesting airdrop")
	}
	return b.awaitSignature(ctx, sig)
}

func (b *rpcBackend) MinimumBalanceForRentExemption(_ context.Context, size uint64) (uint64, error) {
	return b.client.GetMinimumBalanceForRentExemption(size)
}

func (b *rpcBackend) Submit(ctx context.Context, txn solana.Transaction, signers ...ed25519.PrivateKey) (*submitResult, error) {
	blockhash, err := b.client.GetLatestBlockhash()
	if err != nil {
		return nil, errors.Wrap(err, "error getting recent blockhash")
	}
	txn.SetBlockhash(blockhash)

	if err := txn.Sign(signers...); err != nil {
		return nil, errors.Wrap(err, "error signing transaction")
	}

	sig, err := b.client.SubmitTransaction(txn, b.commitment)
	if err != nil {
		return nil, err
	}

	if err := b.awaitSignature(ctx, sig); err != nil {
		return nil, err
	}
	return &submitResult{Signature: sig}, nil
}

func (b *rpcBackend) awaitSignature(ctx context.Context, sig solana.Signature) error {
	status, err := b.client.AwaitSignatureStatus(ctx, sig, b.commitment)
	if err != nil {
		return errors.Wrapf(err, "error waiting for %s", sig)
	}
	if status.ErrorResult != nil {
		return status.ErrorResult
	}
	return nil
}

func (b *rpcBackend) GetAccountInfo(_ context.Context, address ed25519.PublicKey) (*solana.AccountInfo, error) {
	info, err := b.client.GetAccountInfo(address, b.commitment)
	if err != nil {
		return nil, err
	}
	return &info, nil
}

func (b *rpcBackend) GetProgramAccounts(_ context.Context, program ed25519.PublicKey) ([]programAccount, error) {
	keyed, err := b.client.GetProgramAccounts(program, b.commitment)
	if err != nil {
		return nil, errors.Wrap(err, "error getting program accounts")
	}

	accounts := make([]programAccount, len(keyed))
	for i, account := range keyed {
		accounts[i] = programAccount{
			Address: account.Address,
			Info:    account.AccountInfo,
		}
	}

	// Match the local store, which orders by encoded address
	sort.Slice(accounts, func(i, j int) bool {
		return base58.Encode(accounts[i].Address) < base58.Encode(accounts[j].Address)
	})
	return accounts, nil
}

type localBackend struct {
	runtime  *runtime.Runtime
	accounts account.Store
}

func newLocalBackend(rt *runtime.Runtime, accounts account.Store) backend {
	return &localBackend{
		runtime:  rt,
		accounts: accounts,
	}
}

func (b *localBackend) Airdrop(ctx context.Context, address ed25519.PublicKey, lamports uint64) error {
	return b.runtime.Airdrop(ctx, address, lamports)
}

func (b *localBackend) MinimumBalanceForRentExemption(ctx context.Context, size uint64) (uint64, error) {
	return b.runtime.MinimumBalanceForRentExemption(ctx, size), nil
}

func (b *localBackend) Submit(ctx context.Context, txn solana.Transaction, signers ...ed25519.PrivateKey) (*submitResult, error) {
	// The local runtime doesn't track blockhashes, they only need to make
	// transactions unique.
	id := uuid.New()
	txn.SetBlockhash(sha256.Sum256(id[:]))

	if err := txn.Sign(signers...); err != nil {
		return nil, errors.Wrap(err, "error signing transaction")
	}

	result, err := b.runtime.ProcessTransaction(ctx, txn)
	if err != nil {
		return toSubmitResult(result), err
	}
	return toSubmitResult(result), nil
}

func toSubmitResult(result *runtime.Result) *submitResult {
	if result == nil {
		return nil
	}
	return &submitResult{
		Signature: result.Signature,
		Logs:      result.Logs,
	}
}

func (b *localBackend) GetAccountInfo(ctx context.Context, address ed25519.PublicKey) (*solana.AccountInfo, error) {
	info, err := b.runtime.GetAccountInfo(ctx, address)
	if err == account.ErrAccountNotFound {
		return nil, solana.ErrNoAccountInfo
	} else if err != nil {
		return nil, err
	}
	return toSolanaAccountInfo(info), nil
}

func (b *localBackend) GetProgramAccounts(ctx context.Context, program ed25519.PublicKey) ([]programAccount, error) {
	records, err := b.accounts.GetAllByOwner(ctx, base58.Encode(program))
	if err == account.ErrAccountNotFound {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	accounts := make([]programAccount, len(records))
	for i, record := range records {
		address, err := record.GetAddress()
		if err != nil {
			return nil, err
		}

		accounts[i] = programAccount{
			Address: address,
			Info: solana.AccountInfo{
				Data:       record.Data,
				Owner:      program,
				Lamports:   record.Lamports,
				Executable: record.Executable,
			},
		}
	}
	return accounts, nil
}

func toSolanaAccountInfo(info *runtime.AccountInfo) *solana.AccountInfo {
	return &solana.AccountInfo{
		Data:       info.Data,
		Owner:      info.Owner,
		Lamports:   info.Lamports,
		Executable: info.Executable,
	}
}
