package compression

import (
	"crypto/ed25519"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"

	"github.com/code-payments/cnft-minter/pkg/solana"
)

var (
	ErrInvalidProgram         = errors.New("invalid program id")
	ErrInvalidAccountData     = errors.New("unexpected account data")
	ErrInvalidInstructionData = errors.New("unexpected instruction data")
)

var (
	PROGRAM_ADDRESS = mustBase58Decode("cmtDvXumGCrqC1Age74AVPhSRVXJMd8PJS91L8KbNCK")
	PROGRAM_ID      = ed25519.PublicKey(PROGRAM_ADDRESS)
)

var (
	NOOP_PROGRAM_ADDRESS = mustBase58Decode("noopb9bkMVfRPU8AsbpTUg8AQkHtKwMYZiFUjNRtMmV")
	NOOP_PROGRAM_ID      = ed25519.PublicKey(NOOP_PROGRAM_ADDRESS)
)

// Anchor instruction discriminators
var (
	initEmptyMerkleTreeInstructionDiscriminator = []byte{191, 11, 119, 7, 180, 107, 220, 110}
	appendInstructionDiscriminator              = []byte{149, 120, 18, 222, 236, 225, 88, 203}
)

// Error codes returned by the account compression program.
//
// Reference: https://github.com/solana-labs/solana-program-library/blob/master/account-compression/programs/account-compression/src/error.rs
const (
	ErrorIncorrectLeafLength solana.CustomError = 6000 + iota
	ErrorConcurrentMerkleTreeError
	ErrorZeroCopyError
	ErrorConcurrentMerkleTreeConstantsError
	ErrorCanopyLengthMismatch
	ErrorIncorrectAuthority
	ErrorIncorrectAccountOwner
	ErrorIncorrectAccountType
	ErrorLeafIndexOutOfBounds
)

func mustBase58Decode(value string) []byte {
	decoded, err := base58.Decode(value)
	if err != nil {
		panic(err)
	}
	return decoded
}
