package runtime

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/code-payments/counter-program/pkg/ledger/account"
	"github.com/code-payments/counter-program/pkg/metrics"
	"github.com/code-payments/counter-program/pkg/rate"
	"github.com/code-payments/counter-program/pkg/solana"
	sync_util "github.com/code-payments/counter-program/pkg/sync"
)

const (
	metricsStructName = "solana.runtime"

	transactionCountMetricName    = "Runtime/transactions"
	transactionFailureMetricName  = "Runtime/transaction_failures"
	transactionDurationMetricName = "Runtime/transaction_duration"
	rateLimitedMetricName         = "Runtime/rate_limited"
)

var (
	// ErrRateLimited is returned when a fee payer submits transactions faster
	// than the configured per payer rate. Nothing is committed or charged.
	ErrRateLimited = errors.New("fee payer rate limited")

	// ErrLamportOverflow is returned when an airdrop would overflow the
	// recipient's balance.
	ErrLamportOverflow = errors.New("lamport balance overflow")
)

// ProcessFunc executes a single instruction for a program. Accounts are
// provided in instruction order, and may be mutated in place.
type ProcessFunc func(ctx *InvokeContext, accounts []*AccountInfo, data []byte) error

// Result is the outcome of an executed transaction.
type Result struct {
	Signature solana.Signature
	Slot      uint64
	Logs      []string
}

type processedTransaction struct {
	slot uint64
	err  *solana.TransactionError
}

// Runtime is a local bank that executes legacy transactions against an
// account store. Transactions with overlapping writable accounts are
// serialized, disjoint transactions execute in parallel.
type Runtime struct {
	log      *logrus.Entry
	conf     *conf
	accounts account.Store
	locks    *sync_util.StripedLock
	limiter  rate.Limiter

	programsMu sync.RWMutex
	programs   map[string]ProcessFunc

	slotMu    sync.Mutex
	slot      uint64 // highest committed
	issued    uint64 // highest handed out by nextSlot
	processed map[solana.Signature]processedTransaction
}

// New returns a Runtime backed by the provided account store, with the
// system program registered.
func New(accounts account.Store, configProvider ConfigProvider) *Runtime {
	conf := configProvider()

	r := &Runtime{
		log:       logrus.StandardLogger().WithField("type", "solana/runtime"),
		conf:      conf,
		accounts:  accounts,
		locks:     sync_util.NewStripedLock(uint(conf.lockStripes.Get(context.Background()))),
		limiter:   rate.New(float64(conf.maxTransactionsPerSecondPerPayer.Get(context.Background()))),
		programs:  make(map[string]ProcessFunc),
		processed: make(map[solana.Signature]processedTransaction),
	}
	r.programs[string(SystemProgramID)] = r.processSystem
	return r
}

// RegisterProgram makes a program available for execution at id
func (r *Runtime) RegisterProgram(id ed25519.PublicKey, process ProcessFunc) error {
	if len(id) != ed25519.PublicKeySize {
		return errors.Errorf("invalid program id length: %d", len(id))
	}
	if bytes.Equal(id, SystemProgramID) {
		return errors.New("cannot replace the system program")
	}

	r.programsMu.Lock()
	defer r.programsMu.Unlock()

	if _, ok := r.programs[string(id)]; ok {
		return errors.Errorf("program %s already registered", base58.Encode(id))
	}
	r.programs[string(id)] = process
	return nil
}

func (r *Runtime) getProgram(id ed25519.PublicKey) (ProcessFunc, bool) {
	r.programsMu.RLock()
	defer r.programsMu.RUnlock()

	process, ok := r.programs[string(id)]
	return process, ok
}

// Slot returns the slot of the most recently committed transaction
func (r *Runtime) Slot() uint64 {
	r.slotMu.Lock()
	defer r.slotMu.Unlock()
	return r.slot
}

// GetSignatureStatus returns the status of a processed transaction, or
// solana.ErrSignatureNotFound if it was never processed.
func (r *Runtime) GetSignatureStatus(sig solana.Signature) (*solana.SignatureStatus, error) {
	r.slotMu.Lock()
	defer r.slotMu.Unlock()

	processed, ok := r.processed[sig]
	if !ok {
		return nil, solana.ErrSignatureNotFound
	}
	return &solana.SignatureStatus{
		Slot:               processed.slot,
		ErrorResult:        processed.err,
		ConfirmationStatus: solana.CommitmentFinalized.Commitment,
	}, nil
}

// GetAccountInfo returns the current state of an account.
//
// Returns account.ErrAccountNotFound if the account was never written.
func (r *Runtime) GetAccountInfo(ctx context.Context, address ed25519.PublicKey) (*AccountInfo, error) {
	record, err := r.accounts.Get(ctx, base58.Encode(address))
	if err != nil {
		return nil, err
	}
	return fromRecord(record)
}

// Airdrop credits lamports to an address, creating the account if needed
func (r *Runtime) Airdrop(ctx context.Context, address ed25519.PublicKey, lamports uint64) error {
	unlock := r.locks.LockAll([][]byte{address}, nil)
	defer unlock()

	info, err := r.load(ctx, []ed25519.PublicKey{address})
	if err != nil {
		return err
	}

	if info[0].Lamports > math.MaxUint64-lamports {
		return ErrLamportOverflow
	}
	info[0].Lamports += lamports

	slot := r.nextSlot()
	if err := r.accounts.SaveAll(ctx, toRecord(info[0], slot)); err != nil {
		return errors.Wrap(err, "failure saving airdrop")
	}
	r.commitSlot(slot)
	return nil
}

// ProcessTransaction executes a signed transaction and commits its effects.
//
// Transactions that fail validation are rejected with nothing committed and
// a nil Result. Once the fee has been charged the transaction is recorded as
// processed: a failed instruction commits only the fee, and both the Result
// and the TransactionError are returned.
func (r *Runtime) ProcessTransaction(ctx context.Context, txn solana.Transaction) (*Result, error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "ProcessTransaction")
	defer tracer.End()

	start := time.Now()
	defer func() {
		metrics.RecordDuration(ctx, transactionDurationMetricName, time.Since(start))
	}()
	metrics.RecordCount(ctx, transactionCountMetricName, 1)

	sig := txn.Signature()
	tracer.AddAttribute("signature", sig.String())

	log := r.log.WithFields(logrus.Fields{
		"method":    "ProcessTransaction",
		"signature": sig.String(),
	})

	result, err := r.processTransaction(ctx, log, txn)
	if err != nil {
		log.WithError(err).Debug("transaction failed")
		metrics.RecordCount(ctx, transactionFailureMetricName, 1)
		tracer.OnError(err)
	}
	return result, err
}

func (r *Runtime) processTransaction(ctx context.Context, log *logrus.Entry, txn solana.Transaction) (*Result, error) {
	m := &txn.Message

	if err := sanitize(m); err != nil {
		return nil, err
	}
	if err := txn.VerifySignatures(); err != nil {
		log.WithError(err).Debug("invalid signatures")
		return nil, solana.NewTransactionError(solana.TransactionErrorSignatureFailure)
	}

	if !r.limiter.Allow(base58.Encode(m.Accounts[0])) {
		metrics.RecordCount(ctx, rateLimitedMetricName, 1)
		return nil, ErrRateLimited
	}

	programs := make([]ProcessFunc, len(m.Instructions))
	for i, instruction := range m.Instructions {
		process, ok := r.getProgram(m.Accounts[instruction.ProgramIndex])
		if !ok {
			return nil, solana.NewTransactionError(solana.TransactionErrorProgramAccountNotFound)
		}
		programs[i] = process
	}

	var writable, readonly [][]byte
	for i, key := range m.Accounts {
		if m.IsWritable(i) {
			writable = append(writable, key)
		} else {
			readonly = append(readonly, key)
		}
	}
	unlock := r.locks.LockAll(writable, readonly)
	defer unlock()

	sig := txn.Signature()
	if r.isProcessed(sig) {
		return nil, solana.NewTransactionError(solana.TransactionErrorAlreadyProcessed)
	}

	loaded, err := r.load(ctx, m.Accounts)
	if err != nil {
		return nil, err
	}
	for i, info := range loaded {
		info.IsSigner = m.IsSigner(i)
		info.IsWritable = m.IsWritable(i)
	}

	payer := loaded[0]
	fee := r.conf.lamportsPerSignature.Get(ctx) * uint64(len(txn.Signatures))
	if payer.Lamports < fee {
		return nil, solana.NewTransactionError(solana.TransactionErrorInsufficientFundsForFee)
	}
	payer.Lamports -= fee

	var logs []string
	slot := r.nextSlot()
	result := &Result{
		Signature: sig,
		Slot:      slot,
	}

	working := make([]*AccountInfo, len(loaded))
	for i, info := range loaded {
		working[i] = info.clone()
	}

	txErr := r.execute(ctx, m, programs, working, &logs)
	if txErr == nil {
		txErr = r.checkRent(ctx, loaded, working)
	}
	result.Logs = logs

	committed := working
	if txErr != nil {
		committed = []*AccountInfo{payer}
	}

	var records []*account.Record
	for i, info := range committed {
		if !info.IsWritable {
			continue
		}
		if txErr == nil && info.isUnallocated() && info.Lamports == 0 && loaded[i].Lamports == 0 {
			continue
		}
		records = append(records, toRecord(info, slot))
	}

	if err := r.accounts.SaveAll(ctx, records...); err != nil {
		log.WithError(err).Warn("failure committing transaction")
		return nil, errors.Wrap(err, "failure committing transaction")
	}

	r.markProcessed(sig, slot, txErr)

	if txErr != nil {
		return result, txErr
	}
	return result, nil
}

// execute runs every instruction in order against the working accounts.
// Accounts referenced more than once share the same AccountInfo.
func (r *Runtime) execute(ctx context.Context, m *solana.Message, programs []ProcessFunc, working []*AccountInfo, logs *[]string) *solana.TransactionError {
	for i, instruction := range m.Instructions {
		programID := m.Accounts[instruction.ProgramIndex]
		program := base58.Encode(programID)

		invokeCtx := newInvokeContext(ctx, r.log, programID, i, logs)
		invokeCtx.appendLog(fmt.Sprintf("Program %s invoke [1]", program))

		accounts := make([]*AccountInfo, len(instruction.Accounts))
		unique := make(map[byte]struct{})
		var indexes []byte
		for j, index := range instruction.Accounts {
			accounts[j] = working[index]
			if _, ok := unique[index]; !ok {
				unique[index] = struct{}{}
				indexes = append(indexes, index)
			}
		}

		pre := make([]*AccountInfo, len(indexes))
		for j, index := range indexes {
			pre[j] = working[index].clone()
		}

		err := programs[i](invokeCtx, accounts, instruction.Data)
		if err == nil {
			post := make([]*AccountInfo, len(indexes))
			for j, index := range indexes {
				post[j] = working[index]
			}
			err = r.verify(ctx, programID, pre, post)
		}

		if err != nil {
			invokeCtx.appendLog(fmt.Sprintf("Program %s failed: %v", program, err))
			return toTransactionError(i, err)
		}
		invokeCtx.appendLog(fmt.Sprintf("Program %s success", program))
	}
	return nil
}

// verify enforces the account rules every instruction must satisfy.
func (r *Runtime) verify(ctx context.Context, programID ed25519.PublicKey, pre, post []*AccountInfo) error {
	var preTotal, postTotal uint64
	isSystem := bytes.Equal(programID, SystemProgramID)

	for i := range pre {
		before, after := pre[i], post[i]
		isOwner := bytes.Equal(before.Owner, programID)

		if !bytes.Equal(before.Owner, after.Owner) {
			if !after.IsWritable || !isOwner || !isZeroed(after.Data) {
				return solana.InstructionErrorModifiedProgramID
			}
		}

		if before.Lamports != after.Lamports {
			if !after.IsWritable {
				return solana.InstructionErrorReadonlyLamportChange
			}
			if after.Lamports < before.Lamports && !isOwner {
				return solana.InstructionErrorExternalAccountLamportSpend
			}
		}

		if len(before.Data) != len(after.Data) {
			if !isSystem || !before.isUnallocated() {
				return solana.InstructionErrorAccountDataSizeChanged
			}
			if uint64(len(after.Data)) > r.conf.maxAccountDataSize.Get(ctx) {
				return solana.InstructionErrorInvalidRealloc
			}
		} else if !bytes.Equal(before.Data, after.Data) {
			if !after.IsWritable {
				return solana.InstructionErrorReadonlyDataModified
			}
			if !isOwner {
				return solana.InstructionErrorExternalAccountDataModified
			}
		}

		if before.Executable != after.Executable {
			return solana.InstructionErrorInvalidAccountData
		}

		preTotal += before.Lamports
		postTotal += after.Lamports
	}

	if preTotal != postTotal {
		return solana.InstructionErrorUnbalancedInstruction
	}
	return nil
}

// checkRent requires every writable account that holds data after the
// transaction to be rent exempt.
func (r *Runtime) checkRent(ctx context.Context, loaded, working []*AccountInfo) *solana.TransactionError {
	for i, info := range working {
		if !info.IsWritable || len(info.Data) == 0 {
			continue
		}
		if info.Lamports == loaded[i].Lamports && len(info.Data) == len(loaded[i].Data) {
			continue
		}
		if info.Lamports < minimumBalance(ctx, r.conf, uint64(len(info.Data))) {
			return solana.NewTransactionError(solana.TransactionErrorInsufficientFundsForRent)
		}
	}
	return nil
}

func (r *Runtime) load(ctx context.Context, keys []ed25519.PublicKey) ([]*AccountInfo, error) {
	addresses := make([]string, len(keys))
	for i, key := range keys {
		addresses[i] = base58.Encode(key)
	}

	records, err := r.accounts.GetMultiple(ctx, addresses...)
	if err != nil {
		return nil, errors.Wrap(err, "failure loading accounts")
	}

	infos := make([]*AccountInfo, len(keys))
	for i, record := range records {
		if record == nil {
			infos[i] = &AccountInfo{
				Key:   keys[i],
				Owner: SystemProgramID,
			}
			continue
		}

		infos[i], err = fromRecord(record)
		if err != nil {
			return nil, err
		}
	}
	return infos, nil
}

func (r *Runtime) isProcessed(sig solana.Signature) bool {
	r.slotMu.Lock()
	defer r.slotMu.Unlock()

	_, ok := r.processed[sig]
	return ok
}

// nextSlot reserves a slot that no other caller will be handed. A reserved
// slot that never commits leaves a gap.
func (r *Runtime) nextSlot() uint64 {
	r.slotMu.Lock()
	defer r.slotMu.Unlock()

	if r.issued < r.slot {
		r.issued = r.slot
	}
	r.issued++
	return r.issued
}

func (r *Runtime) commitSlot(slot uint64) {
	r.slotMu.Lock()
	defer r.slotMu.Unlock()
	if slot > r.slot {
		r.slot = slot
	}
}

func (r *Runtime) markProcessed(sig solana.Signature, slot uint64, err *solana.TransactionError) {
	r.slotMu.Lock()
	defer r.slotMu.Unlock()

	r.processed[sig] = processedTransaction{slot: slot, err: err}
	if slot > r.slot {
		r.slot = slot
	}
}

func sanitize(m *solana.Message) error {
	sanitizeFailure := solana.NewTransactionError(solana.TransactionErrorSanitizeFailure)

	if m.Header.NumSignatures == 0 || int(m.Header.NumSignatures) > len(m.Accounts) {
		return sanitizeFailure
	}
	if m.Header.NumReadonlySigned >= m.Header.NumSignatures {
		return sanitizeFailure
	}
	if int(m.Header.NumReadOnly)+int(m.Header.NumSignatures) > len(m.Accounts) {
		return sanitizeFailure
	}

	seen := make(map[string]struct{}, len(m.Accounts))
	for _, key := range m.Accounts {
		if len(key) != ed25519.PublicKeySize {
			return sanitizeFailure
		}
		if _, ok := seen[string(key)]; ok {
			return solana.NewTransactionError(solana.TransactionErrorAccountLoadedTwice)
		}
		seen[string(key)] = struct{}{}
	}

	for _, instruction := range m.Instructions {
		if instruction.ProgramIndex == 0 || int(instruction.ProgramIndex) >= len(m.Accounts) {
			return sanitizeFailure
		}
		for _, index := range instruction.Accounts {
			if int(index) >= len(m.Accounts) {
				return sanitizeFailure
			}
		}
	}
	return nil
}

func toTransactionError(index int, err error) *solana.TransactionError {
	var custom solana.CustomError
	if errors.As(err, &custom) {
		return solana.NewInstructionError(index, custom)
	}

	var key solana.InstructionErrorKey
	if errors.As(err, &key) {
		return solana.NewInstructionError(index, key)
	}

	return solana.NewInstructionError(index, solana.InstructionErrorGenericError)
}

func fromRecord(record *account.Record) (*AccountInfo, error) {
	key, err := record.GetAddress()
	if err != nil {
		return nil, err
	}
	owner, err := record.GetOwner()
	if err != nil {
		return nil, err
	}

	data := make([]byte, len(record.Data))
	copy(data, record.Data)

	return &AccountInfo{
		Key:        key,
		Owner:      owner,
		Lamports:   record.Lamports,
		Data:       data,
		Executable: record.Executable,
	}, nil
}

func toRecord(info *AccountInfo, slot uint64) *account.Record {
	data := make([]byte, len(info.Data))
	copy(data, info.Data)

	record := account.NewRecord(info.Key, info.Owner, info.Lamports, data)
	record.Executable = info.Executable
	record.Slot = slot
	return record
}
