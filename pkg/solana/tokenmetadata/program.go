package tokenmetadata

import (
	"crypto/ed25519"

	"github.com/pkg/errors"

	"github.com/code-payments/cnft-minter/pkg/solana"
)

var (
	ErrInvalidProgram         = errors.New("invalid program id")
	ErrInvalidAccountData     = errors.New("unexpected account data")
	ErrInvalidInstructionData = errors.New("unexpected instruction data")
)

var (
	PROGRAM_ADDRESS = mustBase58Decode("metaqbxxUerdq28cj1RbAWkYQm3ybzjb6a8bt518x1s")
	PROGRAM_ID      = ed25519.PublicKey(PROGRAM_ADDRESS)
)

var (
	SYSTEM_PROGRAM_ID       = ed25519.PublicKey(mustBase58Decode("11111111111111111111111111111111"))
	SPL_TOKEN_PROGRAM_ID    = ed25519.PublicKey(mustBase58Decode("TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA"))
	SPL_ATA_PROGRAM_ID      = ed25519.PublicKey(mustBase58Decode("ATokenGPvbdGVxr1b2hvZbsiqW5xWH25efTNsLJA8knL"))
	SYSVAR_INSTRUCTIONS_KEY = ed25519.PublicKey(mustBase58Decode("Sysvar1nstructions1111111111111111111111111"))
)

type InstructionType uint8

const (
	InstructionTypeCreateV1 InstructionType = 42
	InstructionTypeMintV1   InstructionType = 43
)

// Versioned argument enums of CreateV1 and MintV1 only define V1.
const argsVersionV1 uint8 = 0

const (
	MaxNameLength   = 32
	MaxSymbolLength = 10
	MaxUriLength    = 200
	MaxCreatorLimit = 5
)

// Error codes returned by the metadata program.
//
// Reference: https://github.com/metaplex-foundation/mpl-token-metadata/blob/main/programs/token-metadata/program/src/error.rs
const (
	ErrorInstructionUnpack solana.CustomError = iota
	ErrorInstructionPack
	ErrorNotRentExempt
	ErrorAlreadyInitialized
	ErrorUninitialized
	ErrorInvalidMetadataKey
	ErrorInvalidEditionKey
	ErrorUpdateAuthorityIncorrect
	ErrorUpdateAuthorityIsNotSigner
	ErrorNotMintAuthority
	ErrorInvalidMintAuthority
	ErrorNameTooLong
	ErrorSymbolTooLong
	ErrorUriTooLong
	// nolint:varcheck,deadcode,unused
	ErrorUpdateAuthorityMustBeEqualToMetadataAuthorityAndSigner
	ErrorMintMismatch
)
