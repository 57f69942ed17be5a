package cnftminter

import (
	"crypto/ed25519"

	"github.com/pkg/errors"

	"github.com/code-payments/cnft-minter/pkg/solana/bubblegum"
	"github.com/code-payments/cnft-minter/pkg/solana/compression"
	"github.com/code-payments/cnft-minter/pkg/solana/system"
	"github.com/code-payments/cnft-minter/pkg/solana/token"
	"github.com/code-payments/cnft-minter/pkg/solana/tokenmetadata"
)

var (
	ErrInvalidProgram         = errors.New("invalid program id")
	ErrInvalidAccountData     = errors.New("unexpected account data")
	ErrInvalidInstructionData = errors.New("unexpected instruction data")
)

var (
	PROGRAM_ADDRESS = mustBase58Decode("FHiVpspTHVHu1WcHqCLJNRCJebLX2Ex7a4f3rr8znTUt")
	PROGRAM_ID      = ed25519.PublicKey(PROGRAM_ADDRESS)
)

var (
	SYSTEM_PROGRAM_ID          = system.SystemAccount
	SPL_TOKEN_PROGRAM_ID       = token.ProgramKey
	SPL_ATA_PROGRAM_ID         = token.AssociatedTokenAccountProgramKey
	METADATA_PROGRAM_ID        = tokenmetadata.PROGRAM_ID
	BUBBLEGUM_PROGRAM_ID       = bubblegum.PROGRAM_ID
	COMPRESSION_PROGRAM_ID     = compression.PROGRAM_ID
	NOOP_PROGRAM_ID            = compression.NOOP_PROGRAM_ID
	SYSVAR_RENT_PUBKEY         = system.RentSysVar
	SYSVAR_INSTRUCTIONS_PUBKEY = system.InstructionsSysVar
)
