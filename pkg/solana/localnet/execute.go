package localnet

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/code-payments/cnft-minter/pkg/metrics"
	"github.com/code-payments/cnft-minter/pkg/solana"
	compute_budget "github.com/code-payments/cnft-minter/pkg/solana/computebudget"
	"github.com/code-payments/cnft-minter/pkg/solana/system"
)

const (
	metricsStructName = "localnet.ledger"

	submitDurationMetricName = "Localnet/SubmitDuration"
	committedCountMetricName = "Localnet/CommittedTransactions"
	failedCountMetricName    = "Localnet/FailedTransactions"
)

// Submit executes a signed transaction atomically. Account changes are only
// committed when every instruction succeeds.
//
// A receipt is returned for every transaction that paid its fee, including
// failed ones, in which case the error is a *solana.TransactionError.
// Transactions rejected before fee payment return no receipt.
func (l *Ledger) Submit(ctx context.Context, txn solana.Transaction) (*Receipt, error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "Submit")
	defer tracer.End()

	l.mu.Lock()
	defer l.mu.Unlock()

	start := time.Now()
	defer func() {
		metrics.RecordDuration(ctx, submitDurationMetricName, time.Since(start))
	}()

	id := uuid.New()
	log := l.log.WithFields(logrus.Fields{
		"method":    "Submit",
		"id":        id,
		"signature": txn.SignatureString(),
	})

	if txErr := l.sanitize(&txn); txErr != nil {
		log.WithError(txErr).Info("transaction rejected")
		return nil, txErr
	}

	budget, txErr := l.computeBudget(&txn)
	if txErr != nil {
		log.WithError(txErr).Info("transaction rejected")
		return nil, txErr
	}

	fee := l.fee(&txn, budget)
	payer, ok := l.accounts[key(txn.Message.Accounts[0])]
	if !ok {
		txErr := solana.NewTransactionError(solana.TransactionErrorAccountNotFound)
		log.WithError(txErr).Info("transaction rejected")
		return nil, txErr
	}
	if payer.Lamports < fee || !bytes.Equal(payer.Owner, system.SystemAccount) {
		txErr := solana.NewTransactionError(solana.TransactionErrorInsufficientFundsForFee)
		log.WithError(txErr).Info("transaction rejected")
		return nil, txErr
	}
	payer.Lamports -= fee

	receipt := &Receipt{
		ID:                id,
		Signature:         txn.SignatureString(),
		Slot:              l.slot,
		Fee:               fee,
		ComputeBudget:     *budget,
		InnerInstructions: make(map[int][]InnerInstruction),
	}

	tx := &txContext{
		ledger:  l,
		log:     log,
		ws:      newWorkingSet(l.accounts),
		message: &txn.Message,
		receipt: receipt,
	}

	receipt.Err = tx.run(ctx)
	if receipt.Err == nil {
		tx.ws.commit()
		log.WithField("fee", fee).Debug("transaction committed")
		metrics.RecordCount(ctx, committedCountMetricName, 1)
	} else {
		log.WithError(receipt.Err).Info("transaction failed")
		tracer.OnError(receipt.Err)
		metrics.RecordCount(ctx, failedCountMetricName, 1)
	}
	tracer.AddAttributes(map[string]interface{}{
		"signature": receipt.Signature,
		"fee":       fee,
	})

	l.receipts[receipt.Signature] = receipt
	l.advance(txn.Signatures[0])

	if receipt.Err != nil {
		return receipt, receipt.Err
	}
	return receipt, nil
}

// Simulate executes a transaction without committing any changes, charging a
// fee or checking signatures.
func (l *Ledger) Simulate(ctx context.Context, txn solana.Transaction) (*Receipt, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	budget, txErr := l.computeBudget(&txn)
	if txErr != nil {
		return nil, txErr
	}

	receipt := &Receipt{
		ID:                uuid.New(),
		Slot:              l.slot,
		ComputeBudget:     *budget,
		InnerInstructions: make(map[int][]InnerInstruction),
	}

	tx := &txContext{
		ledger:  l,
		log:     l.log.WithFields(logrus.Fields{"method": "Simulate", "id": receipt.ID}),
		ws:      newWorkingSet(l.accounts),
		message: &txn.Message,
		receipt: receipt,
	}

	receipt.Err = tx.run(ctx)
	if receipt.Err != nil {
		return receipt, receipt.Err
	}
	return receipt, nil
}

func (l *Ledger) sanitize(txn *solana.Transaction) *solana.TransactionError {
	m := &txn.Message

	if m.Header.NumSignatures == 0 || len(m.Accounts) == 0 {
		return solana.NewTransactionError(solana.TransactionErrorSanitizeFailure)
	}
	for i := range m.Accounts {
		for j := i + 1; j < len(m.Accounts); j++ {
			if bytes.Equal(m.Accounts[i], m.Accounts[j]) {
				return solana.NewTransactionError(solana.TransactionErrorAccountLoadedTwice)
			}
		}
	}
	for _, ix := range m.Instructions {
		if ix.ProgramIndex == 0 || int(ix.ProgramIndex) >= len(m.Accounts) {
			return solana.NewTransactionError(solana.TransactionErrorSanitizeFailure)
		}
		for _, index := range ix.Accounts {
			if int(index) >= len(m.Accounts) {
				return solana.NewTransactionError(solana.TransactionErrorInvalidAccountIndex)
			}
		}

		program, ok := l.accounts[key(m.Accounts[ix.ProgramIndex])]
		if !ok || !program.Executable {
			return solana.NewTransactionError(solana.TransactionErrorProgramAccountNotFound)
		}
		if _, ok := l.program(m.Accounts[ix.ProgramIndex]); !ok {
			return solana.NewTransactionError(solana.TransactionErrorInvalidProgramForExecution)
		}
	}

	if err := txn.VerifySignatures(); err != nil {
		return solana.NewTransactionError(solana.TransactionErrorSignatureFailure)
	}
	if _, ok := l.receipts[txn.SignatureString()]; ok {
		return solana.NewTransactionError(solana.TransactionErrorDuplicateSignature)
	}
	if !l.isRecentBlockhash(m.RecentBlockhash) {
		return solana.NewTransactionError(solana.TransactionErrorBlockhashNotFound)
	}

	return nil
}

// computeBudget collects the compute budget requested by the transaction.
// Instructions that don't set a limit get the default limit each.
func (l *Ledger) computeBudget(txn *solana.Transaction) (*compute_budget.Budget, *solana.TransactionError) {
	var budget compute_budget.Budget
	seen := make(map[uint8]bool)

	var others int
	for i := range txn.Message.Instructions {
		ix, err := txn.Message.Decompile(i)
		if err != nil {
			return nil, solana.NewTransactionError(solana.TransactionErrorSanitizeFailure)
		}

		if !bytes.Equal(ix.Program, compute_budget.ProgramKey) {
			others++
			continue
		}

		if err := budget.Apply(ix, seen); err != nil {
			return nil, instructionError(i, solana.ErrInvalidInstructionData)
		}
	}

	if budget.ComputeUnitLimit == 0 {
		limit := uint64(others) * compute_budget.DefaultComputeUnitLimit
		if limit > compute_budget.MaxComputeUnitLimit {
			limit = compute_budget.MaxComputeUnitLimit
		}
		budget.ComputeUnitLimit = uint32(limit)
	}

	return &budget, nil
}

// fee is the base signature fee plus the prioritization fee, which is priced
// in micro-lamports per requested compute unit.
func (l *Ledger) fee(txn *solana.Transaction, budget *compute_budget.Budget) uint64 {
	fee := LamportsPerSignature * uint64(txn.Message.Header.NumSignatures)

	priority := budget.ComputeUnitPrice * uint64(budget.ComputeUnitLimit)
	fee += (priority + 999_999) / 1_000_000

	return fee
}

type txContext struct {
	ledger  *Ledger
	log     *logrus.Entry
	ws      *workingSet
	message *solana.Message
	receipt *Receipt

	index int
}

func (tx *txContext) run(ctx context.Context) *solana.TransactionError {
	for i := range tx.message.Instructions {
		tx.index = i

		ix, err := tx.message.Decompile(i)
		if err != nil {
			return solana.NewTransactionError(solana.TransactionErrorSanitizeFailure)
		}

		infos := make([]*solana.AccountInfo, len(ix.Accounts))
		for j, meta := range ix.Accounts {
			infos[j] = &solana.AccountInfo{
				Key:        meta.PublicKey,
				IsSigner:   meta.IsSigner,
				IsWritable: meta.IsWritable,
				Account:    tx.ws.load(meta.PublicKey),
			}
		}

		if err := tx.process(ctx, ix.Program, infos, ix.Data, 1); err != nil {
			return instructionError(i, err)
		}
	}

	return tx.checkRent()
}

// process runs a single instruction at the given invocation depth and
// verifies the changes it made.
func (tx *txContext) process(ctx context.Context, program ed25519.PublicKey, accounts []*solana.AccountInfo, data []byte, depth int) error {
	fn, ok := tx.ledger.program(program)
	if !ok {
		return solana.ErrUnsupportedProgramID
	}

	id := encodeKey(program)
	tx.logf("Program %s invoke [%d]", id, depth)

	frame := &invocation{
		tx:       tx,
		program:  program,
		accounts: accounts,
		depth:    depth,
		pre:      snapshot(accounts),
	}

	err := fn(ctx, frame, program, accounts, data)
	if err == nil {
		err = frame.verify()
	}
	if err != nil {
		tx.logf("Program %s failed: %s", id, solana.ToProgramError(err))
		return err
	}

	tx.logf("Program %s success", id)
	return nil
}

// checkRent ensures every account changed by the transaction is either closed
// or rent exempt.
func (tx *txContext) checkRent() *solana.TransactionError {
	for k, account := range tx.ws.accounts {
		if account.Executable || account.Lamports == 0 {
			continue
		}

		if base, ok := tx.ws.base[k]; ok && base.Lamports == account.Lamports && len(base.Data) == len(account.Data) {
			continue
		}

		if account.Lamports < system.MinimumBalanceForRentExemption(uint64(len(account.Data))) {
			return solana.NewTransactionError(solana.TransactionErrorInsufficientFundsForRent)
		}
	}
	return nil
}

func (tx *txContext) logf(format string, args ...interface{}) {
	tx.receipt.Logs = append(tx.receipt.Logs, fmt.Sprintf(format, args...))
}

// invocation is the runtime handed to a program for one instruction.
type invocation struct {
	tx       *txContext
	program  ed25519.PublicKey
	accounts []*solana.AccountInfo
	depth    int

	// pre is the account state the program is accountable from. It's rebased
	// after every successful invoke, since changes made by the callee were
	// already verified against the callee.
	pre map[string]accountState
}

func (f *invocation) Log(format string, args ...interface{}) {
	f.tx.logf("Program log: "+format, args...)
}

func (f *invocation) InvokeSigned(ctx context.Context, ix solana.Instruction, signerSeeds ...[][]byte) error {
	if f.depth+1 > MaxInvokeDepth {
		return solana.ErrCallDepth
	}

	if err := f.verify(); err != nil {
		return err
	}

	var signers []ed25519.PublicKey
	for _, seeds := range signerSeeds {
		signer, err := solana.CreateProgramAddress(f.program, seeds...)
		if err != nil {
			if errors.Cause(err) == solana.ErrMaxSeedLengthExceeded {
				return solana.ErrMaxSeedLengthExceededKey
			}
			return solana.ErrInvalidSeeds
		}
		signers = append(signers, signer)
	}

	program := f.find(ix.Program)
	if program == nil {
		return solana.ErrMissingAccount
	}
	if !program.Executable {
		return solana.ErrAccountNotExecutable
	}

	callee := make([]*solana.AccountInfo, len(ix.Accounts))
	for i, meta := range ix.Accounts {
		caller := f.find(meta.PublicKey)
		if caller == nil {
			return solana.ErrMissingAccount
		}

		if meta.IsSigner && !caller.IsSigner && !containsKey(signers, meta.PublicKey) {
			return solana.ErrPrivilegeEscalation
		}
		if meta.IsWritable && !caller.IsWritable {
			return solana.ErrPrivilegeEscalation
		}

		callee[i] = &solana.AccountInfo{
			Key:        meta.PublicKey,
			IsSigner:   meta.IsSigner,
			IsWritable: meta.IsWritable,
			Account:    caller.Account,
		}
	}

	f.tx.receipt.InnerInstructions[f.tx.index] = append(
		f.tx.receipt.InnerInstructions[f.tx.index],
		InnerInstruction{
			StackHeight: f.depth + 1,
			Instruction: ix.Clone(),
		},
	)

	if err := f.tx.process(ctx, ix.Program, callee, ix.Data, f.depth+1); err != nil {
		return err
	}

	for _, info := range callee {
		f.pre[key(info.Key)] = stateOf(info.Account)
	}
	return nil
}

// find returns the caller's view of an account, merging privileges when the
// account was passed more than once.
func (f *invocation) find(pub ed25519.PublicKey) *solana.AccountInfo {
	var found *solana.AccountInfo
	for _, info := range f.accounts {
		if !bytes.Equal(info.Key, pub) {
			continue
		}

		if found == nil {
			found = &solana.AccountInfo{Key: info.Key, Account: info.Account}
		}
		found.IsSigner = found.IsSigner || info.IsSigner
		found.IsWritable = found.IsWritable || info.IsWritable
	}
	return found
}

// verify checks that the program only made the changes it is allowed to.
func (f *invocation) verify() error {
	var preTotal, postTotal uint64

	seen := make(map[string]bool)
	for _, info := range f.accounts {
		k := key(info.Key)
		if seen[k] {
			continue
		}
		seen[k] = true

		merged := f.find(info.Key)
		pre := f.pre[k]
		post := info.Account

		preTotal += pre.lamports
		postTotal += post.Lamports

		ownedByProgram := bytes.Equal(pre.owner, f.program)
		dataChanged := !bytes.Equal(pre.data, post.Data)
		ownerChanged := !bytes.Equal(pre.owner, post.Owner)

		if pre.executable || post.Executable != pre.executable {
			if dataChanged || ownerChanged || post.Lamports != pre.lamports || post.Executable != pre.executable {
				return solana.ErrReadonlyDataModified
			}
			continue
		}

		if ownerChanged {
			if !merged.IsWritable || !ownedByProgram || !isZeroed(post.Data) {
				return solana.ErrModifiedProgramID
			}
		}

		if dataChanged {
			if !merged.IsWritable {
				return solana.ErrReadonlyDataModified
			}
			if !ownedByProgram {
				return solana.ErrExternalAccountDataModified
			}
		}

		switch {
		case post.Lamports < pre.lamports:
			if !merged.IsWritable {
				return solana.ErrReadonlyLamportChange
			}
			if !ownedByProgram {
				return solana.ErrExternalAccountLamportSpend
			}
		case post.Lamports > pre.lamports:
			if !merged.IsWritable {
				return solana.ErrReadonlyLamportChange
			}
		}
	}

	if preTotal != postTotal {
		return solana.ErrUnbalancedInstruction
	}
	return nil
}

type accountState struct {
	lamports   uint64
	owner      ed25519.PublicKey
	data       []byte
	executable bool
}

func stateOf(account *solana.Account) accountState {
	return accountState{
		lamports:   account.Lamports,
		owner:      append(ed25519.PublicKey{}, account.Owner...),
		data:       append([]byte{}, account.Data...),
		executable: account.Executable,
	}
}

func snapshot(accounts []*solana.AccountInfo) map[string]accountState {
	res := make(map[string]accountState, len(accounts))
	for _, info := range accounts {
		res[key(info.Key)] = stateOf(info.Account)
	}
	return res
}

type workingSet struct {
	base     map[string]*solana.Account
	accounts map[string]*solana.Account
}

func newWorkingSet(base map[string]*solana.Account) *workingSet {
	return &workingSet{
		base:     base,
		accounts: make(map[string]*solana.Account),
	}
}

// load returns the transaction's copy of an account. Addresses that don't
// exist yet are empty system accounts.
func (ws *workingSet) load(pub ed25519.PublicKey) *solana.Account {
	k := key(pub)
	if account, ok := ws.accounts[k]; ok {
		return account
	}

	var account *solana.Account
	if existing, ok := ws.base[k]; ok {
		account = existing.Clone()
	} else {
		account = &solana.Account{Owner: append(ed25519.PublicKey{}, system.SystemAccount...)}
	}

	ws.accounts[k] = account
	return account
}

func (ws *workingSet) commit() {
	for k, account := range ws.accounts {
		if account.Lamports == 0 && !account.Executable {
			delete(ws.base, k)
			continue
		}
		ws.base[k] = account
	}
}

func instructionError(index int, err error) *solana.TransactionError {
	ixErr := &solana.InstructionError{
		Index: index,
		Err:   solana.ToProgramError(err),
	}

	txErr, err := solana.TransactionErrorFromInstructionError(ixErr)
	if err != nil {
		return solana.NewTransactionError(solana.TransactionErrorInternal)
	}
	return txErr
}

func containsKey(keys []ed25519.PublicKey, pub ed25519.PublicKey) bool {
	for _, k := range keys {
		if bytes.Equal(k, pub) {
			return true
		}
	}
	return false
}

func isZeroed(data []byte) bool {
	for _, b := range data {
		if b != 0 {
			return false
		}
	}
	return true
}
