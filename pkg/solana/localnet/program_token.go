package localnet

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"math"

	"github.com/code-payments/cnft-minter/pkg/solana"
	"github.com/code-payments/cnft-minter/pkg/solana/system"
	"github.com/code-payments/cnft-minter/pkg/solana/token"
)

func processToken(_ context.Context, rt solana.Runtime, program ed25519.PublicKey, accounts []*solana.AccountInfo, data []byte) error {
	ix := asInstruction(program, accounts, data)

	command, err := token.GetCommand(ix)
	if err != nil {
		return token.ErrorInvalidInstruction
	}

	switch command {
	case token.CommandInitializeMint2:
		rt.Log("Instruction: InitializeMint2")

		v, err := token.DecodeInitializeMint2(ix)
		if err != nil {
			return token.ErrorInvalidInstruction
		}
		return tokenInitializeMint(program, accounts[0], v)
	case token.CommandInitializeAccount3:
		rt.Log("Instruction: InitializeAccount3")

		v, err := token.DecodeInitializeAccount3(ix)
		if err != nil {
			return token.ErrorInvalidInstruction
		}
		return tokenInitializeAccount(program, accounts[0], accounts[1], v.Owner)
	case token.CommandMintTo:
		rt.Log("Instruction: MintTo")

		v, err := token.DecodeMintTo(ix)
		if err != nil {
			return token.ErrorInvalidInstruction
		}
		return tokenMintTo(program, accounts[0], accounts[1], accounts[2], v.Amount)
	default:
		return token.ErrorInvalidInstruction
	}
}

func tokenInitializeMint(program ed25519.PublicKey, mintInfo *solana.AccountInfo, v *token.DecompiledInitializeMint2) error {
	if !bytes.Equal(mintInfo.Owner, program) {
		return solana.ErrIncorrectProgramID
	}
	if len(mintInfo.Data) != token.MintSize {
		return token.ErrorInvalidState
	}

	var mint token.Mint
	mint.Unmarshal(mintInfo.Data)
	if mint.IsInitialized {
		return token.ErrorAlreadyInUse
	}
	if mintInfo.Lamports < system.MinimumBalanceForRentExemption(token.MintSize) {
		return token.ErrorNotRentExempt
	}

	mint = token.Mint{
		MintAuthority:   v.MintAuthority,
		Decimals:        v.Decimals,
		IsInitialized:   true,
		FreezeAuthority: v.FreezeAuthority,
	}
	copy(mintInfo.Data, mint.Marshal())

	return nil
}

func tokenInitializeAccount(program ed25519.PublicKey, accountInfo, mintInfo *solana.AccountInfo, owner ed25519.PublicKey) error {
	if !bytes.Equal(accountInfo.Owner, program) {
		return solana.ErrIncorrectProgramID
	}
	if len(accountInfo.Data) != token.AccountSize {
		return token.ErrorInvalidState
	}

	var account token.Account
	account.Unmarshal(accountInfo.Data)
	if account.State != token.AccountStateUninitialized {
		return token.ErrorAlreadyInUse
	}
	if accountInfo.Lamports < system.MinimumBalanceForRentExemption(token.AccountSize) {
		return token.ErrorNotRentExempt
	}

	if _, err := loadMint(program, mintInfo); err != nil {
		return err
	}

	account = token.Account{
		Mint:  mintInfo.Key,
		Owner: owner,
		State: token.AccountStateInitialized,
	}
	copy(accountInfo.Data, account.Marshal())

	return nil
}

func tokenMintTo(program ed25519.PublicKey, mintInfo, destinationInfo, authority *solana.AccountInfo, amount uint64) error {
	mint, err := loadMint(program, mintInfo)
	if err != nil {
		return err
	}

	if !bytes.Equal(destinationInfo.Owner, program) {
		return solana.ErrIncorrectProgramID
	}
	var destination token.Account
	if !destination.Unmarshal(destinationInfo.Data) || destination.State == token.AccountStateUninitialized {
		return token.ErrorUninitializedState
	}
	if destination.State == token.AccountStateFrozen {
		return token.ErrorAccountFrozen
	}
	if !bytes.Equal(destination.Mint, mintInfo.Key) {
		return token.ErrorMintMismatch
	}

	if len(mint.MintAuthority) == 0 {
		return token.ErrorFixedSupply
	}
	if !bytes.Equal(mint.MintAuthority, authority.Key) {
		return token.ErrorOwnerMismatch
	}
	if !authority.IsSigner {
		return solana.ErrMissingRequiredSignature
	}

	if mint.Supply > math.MaxUint64-amount {
		return token.ErrorOverflow
	}
	mint.Supply += amount
	destination.Amount += amount

	copy(mintInfo.Data, mint.Marshal())
	copy(destinationInfo.Data, destination.Marshal())

	return nil
}

func loadMint(program ed25519.PublicKey, info *solana.AccountInfo) (*token.Mint, error) {
	if !bytes.Equal(info.Owner, program) {
		return nil, solana.ErrIncorrectProgramID
	}

	var mint token.Mint
	if !mint.Unmarshal(info.Data) {
		return nil, token.ErrorInvalidMint
	}
	if !mint.IsInitialized {
		return nil, token.ErrorUninitializedState
	}
	return &mint, nil
}

func processAssociatedToken(ctx context.Context, rt solana.Runtime, program ed25519.PublicKey, accounts []*solana.AccountInfo, data []byte) error {
	v, err := token.DecodeCreateAssociatedAccount(asInstruction(program, accounts, data))
	if err != nil {
		return solana.ErrInvalidInstructionData
	}

	if v.Idempotent {
		rt.Log("CreateIdempotent")
	} else {
		rt.Log("Create")
	}

	payer, address, mint := accounts[0], accounts[1], accounts[3]

	expected, bump, err := token.GetAssociatedAccountAndBump(v.Owner, v.Mint)
	if err != nil {
		return solana.ErrInvalidSeeds
	}
	if !bytes.Equal(expected, address.Key) {
		rt.Log("Error: Associated address does not match seed derivation")
		return solana.ErrInvalidSeeds
	}

	if v.Idempotent && bytes.Equal(address.Owner, token.ProgramKey) {
		var existing token.Account
		if existing.Unmarshal(address.Data) && bytes.Equal(existing.Owner, v.Owner) && bytes.Equal(existing.Mint, v.Mint) {
			return nil
		}
		return solana.ErrInvalidAccountData
	}

	if !bytes.Equal(mint.Owner, token.ProgramKey) {
		return solana.ErrIncorrectProgramID
	}

	err = rt.InvokeSigned(
		ctx,
		system.CreateAccount(
			payer.Key,
			address.Key,
			token.ProgramKey,
			system.MinimumBalanceForRentExemption(token.AccountSize),
			token.AccountSize,
		),
		solana.SignerSeeds(bump, v.Owner, token.ProgramKey, v.Mint),
	)
	if err != nil {
		return err
	}

	return rt.InvokeSigned(ctx, token.InitializeAccount3(address.Key, mint.Key, v.Owner))
}
