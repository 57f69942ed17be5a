// Package localnet is an in-process ledger that executes signed legacy
// transactions against deployed programs. It ships with the subset of the
// system, token, associated token, token metadata, bubblegum, account
// compression, noop, memo and compute budget programs that collection minting
// relies on.
package localnet

import (
	"crypto/ed25519"
	"crypto/sha256"
	"sync"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/code-payments/cnft-minter/pkg/solana"
	"github.com/code-payments/cnft-minter/pkg/solana/system"
)

const (
	// MaxInvokeDepth is the deepest cross-program invocation stack allowed,
	// counting the top level instruction.
	MaxInvokeDepth = 4

	// LamportsPerSignature is the base fee charged per required signature.
	LamportsPerSignature = 5000

	maxRecentBlockhashes = 150
)

var (
	ErrAccountNotFound = errors.New("account not found")
	ErrReceiptNotFound = errors.New("receipt not found")
)

// NativeLoader owns the builtin program accounts.
var NativeLoader = ed25519.PublicKey(mustBase58Decode("NativeLoader1111111111111111111111111111111"))

// BPFLoaderUpgradeable owns deployed program accounts.
var BPFLoaderUpgradeable = ed25519.PublicKey(mustBase58Decode("BPFLoaderUpgradeab1e11111111111111111111111"))

type Ledger struct {
	log *logrus.Entry

	mu                sync.Mutex
	slot              uint64
	accounts          map[string]*solana.Account
	programs          map[string]solana.ProgramFunc
	recentBlockhashes []solana.Blockhash
	receipts          map[string]*Receipt
}

// New returns a ledger with every builtin program deployed.
func New() *Ledger {
	l := &Ledger{
		log:      logrus.StandardLogger().WithField("type", "solana/localnet"),
		accounts: make(map[string]*solana.Account),
		programs: make(map[string]solana.ProgramFunc),
		receipts: make(map[string]*Receipt),
	}

	l.recentBlockhashes = append(l.recentBlockhashes, sha256.Sum256([]byte("genesis")))

	for _, builtin := range l.builtins() {
		l.deploy(builtin.id, NativeLoader, builtin.fn)
	}

	return l
}

// Deploy makes fn executable at the program address.
func (l *Ledger) Deploy(program ed25519.PublicKey, fn solana.ProgramFunc) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.deploy(program, BPFLoaderUpgradeable, fn)
}

func (l *Ledger) deploy(program, loader ed25519.PublicKey, fn solana.ProgramFunc) {
	k := key(program)
	l.programs[k] = fn
	l.accounts[k] = &solana.Account{
		Lamports:   1,
		Owner:      append(ed25519.PublicKey{}, loader...),
		Executable: true,
	}
}

// Airdrop credits lamports to an address, creating a system account if needed.
func (l *Ledger) Airdrop(address ed25519.PublicKey, lamports uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	account, ok := l.accounts[key(address)]
	if !ok {
		account = &solana.Account{Owner: append(ed25519.PublicKey{}, system.SystemAccount...)}
		l.accounts[key(address)] = account
	}
	account.Lamports += lamports
}

// GetAccount returns a copy of the account stored at address.
func (l *Ledger) GetAccount(address ed25519.PublicKey) (*solana.Account, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	account, ok := l.accounts[key(address)]
	if !ok {
		return nil, ErrAccountNotFound
	}
	return account.Clone(), nil
}

// SetAccount overwrites the account stored at address.
func (l *Ledger) SetAccount(address ed25519.PublicKey, account *solana.Account) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.accounts[key(address)] = account.Clone()
}

// GetBalance returns the lamports held at address, which is zero for an
// address that was never funded.
func (l *Ledger) GetBalance(address ed25519.PublicKey) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	account, ok := l.accounts[key(address)]
	if !ok {
		return 0
	}
	return account.Lamports
}

// LatestBlockhash returns the blockhash new transactions should reference.
func (l *Ledger) LatestBlockhash() solana.Blockhash {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.recentBlockhashes[len(l.recentBlockhashes)-1]
}

func (l *Ledger) Slot() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.slot
}

// GetReceipt returns the receipt of a previously submitted transaction.
func (l *Ledger) GetReceipt(signature string) (*Receipt, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	receipt, ok := l.receipts[signature]
	if !ok {
		return nil, ErrReceiptNotFound
	}
	return receipt, nil
}

// MinimumBalanceForRentExemption returns the lamports an account holding size
// bytes must keep.
func (l *Ledger) MinimumBalanceForRentExemption(size uint64) uint64 {
	return system.MinimumBalanceForRentExemption(size)
}

func (l *Ledger) isRecentBlockhash(bh solana.Blockhash) bool {
	for _, recent := range l.recentBlockhashes {
		if recent == bh {
			return true
		}
	}
	return false
}

// advance moves to the next slot, deriving its blockhash from the previous one
// and the signature that was just processed.
func (l *Ledger) advance(signature solana.Signature) {
	latest := l.recentBlockhashes[len(l.recentBlockhashes)-1]

	h := sha256.New()
	h.Write(latest[:])
	h.Write(signature[:])

	var next solana.Blockhash
	copy(next[:], h.Sum(nil))

	l.recentBlockhashes = append(l.recentBlockhashes, next)
	if len(l.recentBlockhashes) > maxRecentBlockhashes {
		l.recentBlockhashes = l.recentBlockhashes[1:]
	}
	l.slot++
}

func (l *Ledger) program(id ed25519.PublicKey) (solana.ProgramFunc, bool) {
	fn, ok := l.programs[key(id)]
	return fn, ok
}

type builtin struct {
	id ed25519.PublicKey
	fn solana.ProgramFunc
}

func key(pub ed25519.PublicKey) string {
	return string(pub)
}

func encodeKey(pub ed25519.PublicKey) string {
	return base58.Encode(pub)
}

func mustBase58Decode(value string) []byte {
	decoded, err := base58.Decode(value)
	if err != nil {
		panic(err)
	}
	return decoded
}
