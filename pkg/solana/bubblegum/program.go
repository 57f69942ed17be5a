package bubblegum

import (
	"crypto/ed25519"

	"github.com/pkg/errors"

	"github.com/code-payments/cnft-minter/pkg/solana"
	"github.com/code-payments/cnft-minter/pkg/solana/compression"
	"github.com/code-payments/cnft-minter/pkg/solana/tokenmetadata"
)

var (
	ErrInvalidProgram         = errors.New("invalid program id")
	ErrInvalidAccountData     = errors.New("unexpected account data")
	ErrInvalidInstructionData = errors.New("unexpected instruction data")
)

var (
	PROGRAM_ADDRESS = mustBase58Decode("BGUMAp9Gq7iTEuizy4pqaxsTyUCBK68MDfK752saRPUY")
	PROGRAM_ID      = ed25519.PublicKey(PROGRAM_ADDRESS)
)

var (
	SYSTEM_PROGRAM_ID         = ed25519.PublicKey(mustBase58Decode("11111111111111111111111111111111"))
	LOG_WRAPPER_PROGRAM_ID    = compression.NOOP_PROGRAM_ID
	COMPRESSION_PROGRAM_ID    = compression.PROGRAM_ID
	TOKEN_METADATA_PROGRAM_ID = tokenmetadata.PROGRAM_ID
)

// Anchor instruction discriminators
var (
	createTreeConfigInstructionDiscriminator   = []byte{165, 83, 136, 142, 89, 202, 47, 220}
	mintToCollectionV1InstructionDiscriminator = []byte{153, 18, 178, 47, 197, 158, 86, 15}
)

// Error codes returned by the bubblegum program.
//
// Reference: https://github.com/metaplex-foundation/mpl-bubblegum/blob/main/programs/bubblegum/program/src/error.rs
const (
	ErrorAssetOwnerMismatch solana.CustomError = 6000 + iota
	ErrorPublicKeyMismatch
	ErrorHashingMismatch
	ErrorUnsupportedSchemaVersion
	ErrorCreatorShareTotalMustBe100
	ErrorDuplicateCreatorAddress
	ErrorCreatorDidNotVerify
	ErrorCreatorNotFound
	ErrorNoCreatorsPresent
	ErrorCreatorHashMismatch
	ErrorDataHashMismatch
	ErrorCreatorsTooLong
	ErrorMetadataNameTooLong
	ErrorMetadataSymbolTooLong
	ErrorMetadataUriTooLong
	ErrorMetadataBasisPointsTooHigh
	ErrorTreeAuthorityIncorrect
	ErrorInsufficientMintCapacity
	ErrorNumericalOverflowError
	ErrorIncorrectOwner
	ErrorCollectionCannotBeVerifiedInThisInstruction
	ErrorCollectionNotFound
	ErrorAlreadyVerified
	ErrorAlreadyUnverified
	ErrorUpdateAuthorityIncorrect
	ErrorLeafAuthorityMustSign
	ErrorCollectionMustBeSized
	ErrorMetadataMintMismatch
	ErrorInvalidCollectionAuthority
	ErrorInvalidDelegateRecord
	ErrorCollectionMasterEditionAccountInvalid
	ErrorCollectionMustBeAUniqueMasterEdition
)

// ErrorConstraintSeeds is raised by the account validation layer when an
// address doesn't match its seeds.
const ErrorConstraintSeeds solana.CustomError = 2006
