package localnet

import (
	"bytes"
	"context"
	"crypto/ed25519"

	"github.com/code-payments/cnft-minter/pkg/pointer"
	"github.com/code-payments/cnft-minter/pkg/solana"
	"github.com/code-payments/cnft-minter/pkg/solana/system"
	"github.com/code-payments/cnft-minter/pkg/solana/token"
	"github.com/code-payments/cnft-minter/pkg/solana/tokenmetadata"
)

func processTokenMetadata(ctx context.Context, rt solana.Runtime, program ed25519.PublicKey, accounts []*solana.AccountInfo, data []byte) error {
	if len(data) == 0 {
		return tokenmetadata.ErrorInstructionUnpack
	}

	ix := asInstruction(program, accounts, data)

	switch tokenmetadata.InstructionType(data[0]) {
	case tokenmetadata.InstructionTypeCreateV1:
		rt.Log("IX: Create")

		_, args, err := tokenmetadata.DecodeCreateV1Instruction(ix)
		if err != nil {
			return tokenmetadata.ErrorInstructionUnpack
		}
		return metadataCreate(ctx, rt, program, accounts, args)
	case tokenmetadata.InstructionTypeMintV1:
		rt.Log("IX: Mint")

		_, args, err := tokenmetadata.DecodeMintV1Instruction(ix)
		if err != nil {
			return tokenmetadata.ErrorInstructionUnpack
		}
		return metadataMint(ctx, rt, program, accounts, args)
	default:
		return tokenmetadata.ErrorInstructionUnpack
	}
}

func metadataCreate(ctx context.Context, rt solana.Runtime, program ed25519.PublicKey, accounts []*solana.AccountInfo, args *tokenmetadata.CreateV1InstructionArgs) error {
	metadataInfo := accounts[0]
	editionInfo := accounts[1]
	mintInfo := accounts[2]
	authority := accounts[3]
	payer := accounts[4]
	updateAuthority := accounts[5]

	hasEdition := !bytes.Equal(editionInfo.Key, program)

	if err := validateMetadata(rt, args.Name, args.Symbol, args.Uri, args.SellerFeeBasisPoints, args.Creators, accounts); err != nil {
		return err
	}

	if !authority.IsSigner {
		return solana.ErrMissingRequiredSignature
	}

	if args.TokenStandard == tokenmetadata.TokenStandardNonFungible {
		if !hasEdition {
			rt.Log("Missing master edition account")
			return solana.ErrNotEnoughAccountKeys
		}
		if args.Decimals != nil && *args.Decimals != 0 {
			return solana.ErrInvalidArgument
		}
	}

	metadataAddress, metadataBump, err := tokenmetadata.GetMetadataAddress(&tokenmetadata.GetMetadataAddressArgs{
		Mint: mintInfo.Key,
	})
	if err != nil || !bytes.Equal(metadataAddress, metadataInfo.Key) {
		return tokenmetadata.ErrorInvalidMetadataKey
	}
	if !metadataInfo.IsEmpty() {
		return tokenmetadata.ErrorAlreadyInitialized
	}

	var editionBump uint8
	if hasEdition {
		var editionAddress ed25519.PublicKey
		editionAddress, editionBump, err = tokenmetadata.GetMasterEditionAddress(&tokenmetadata.GetMasterEditionAddressArgs{
			Mint: mintInfo.Key,
		})
		if err != nil || !bytes.Equal(editionAddress, editionInfo.Key) {
			return tokenmetadata.ErrorInvalidEditionKey
		}
		if !editionInfo.IsEmpty() {
			return tokenmetadata.ErrorAlreadyInitialized
		}
	}

	// Minting authority of a master edition mint is held by the edition, so
	// that supply can only move through this program.
	mintAuthority := authority.Key
	if hasEdition {
		mintAuthority = editionInfo.Key
	}

	if mintInfo.IsEmpty() {
		if !mintInfo.IsSigner {
			return solana.ErrMissingRequiredSignature
		}

		err = rt.InvokeSigned(
			ctx,
			system.CreateAccount(
				payer.Key,
				mintInfo.Key,
				token.ProgramKey,
				system.MinimumBalanceForRentExemption(token.MintSize),
				token.MintSize,
			),
		)
		if err != nil {
			return err
		}

		err = rt.InvokeSigned(ctx, token.InitializeMint2(mintInfo.Key, mintAuthority, mintAuthority, pointer.ValueOrDefault(args.Decimals, 0)))
		if err != nil {
			return err
		}
	} else if _, err := loadMint(token.ProgramKey, mintInfo); err != nil {
		return tokenmetadata.ErrorInvalidMintAuthority
	}

	var collection *tokenmetadata.Collection
	if args.Collection != nil {
		// Collection membership is only verified through a dedicated instruction.
		collection = &tokenmetadata.Collection{Key: args.Collection.Key}
	}

	metadata := &tokenmetadata.MetadataAccount{
		UpdateAuthority:      updateAuthority.Key,
		Mint:                 mintInfo.Key,
		Name:                 args.Name,
		Symbol:               args.Symbol,
		Uri:                  args.Uri,
		SellerFeeBasisPoints: args.SellerFeeBasisPoints,
		Creators:             args.Creators,
		PrimarySaleHappened:  args.PrimarySaleHappened,
		IsMutable:            args.IsMutable,
		TokenStandard:        pointer.To(args.TokenStandard),
		Collection:           collection,
		CollectionDetails:    args.CollectionDetails,
	}
	if hasEdition {
		metadata.EditionNonce = pointer.To(editionBump)
	}

	metadataData, err := metadata.Marshal()
	if err != nil {
		return tokenmetadata.ErrorInstructionPack
	}

	err = createProgramAccount(
		ctx,
		rt,
		payer.Key,
		metadataInfo,
		program,
		metadataData,
		solana.SignerSeeds(metadataBump, tokenmetadata.MetadataPrefix, program, mintInfo.Key),
	)
	if err != nil {
		return err
	}

	if !hasEdition {
		return nil
	}

	var maxSupply *uint64
	if args.PrintSupply == nil || args.PrintSupply.Type != tokenmetadata.PrintSupplyUnlimited {
		var limit uint64
		if args.PrintSupply != nil && args.PrintSupply.Type == tokenmetadata.PrintSupplyLimited {
			limit = args.PrintSupply.Limit
		}
		maxSupply = &limit
	}

	edition := &tokenmetadata.MasterEditionAccount{MaxSupply: maxSupply}
	editionData, err := edition.Marshal()
	if err != nil {
		return tokenmetadata.ErrorInstructionPack
	}

	return createProgramAccount(
		ctx,
		rt,
		payer.Key,
		editionInfo,
		program,
		editionData,
		solana.SignerSeeds(editionBump, tokenmetadata.MetadataPrefix, program, mintInfo.Key, tokenmetadata.EditionPrefix),
	)
}

func metadataMint(ctx context.Context, rt solana.Runtime, program ed25519.PublicKey, accounts []*solana.AccountInfo, args *tokenmetadata.MintV1InstructionArgs) error {
	tokenInfo := accounts[0]
	tokenOwner := accounts[1]
	metadataInfo := accounts[2]
	editionInfo := accounts[3]
	mintInfo := accounts[5]
	authority := accounts[6]
	payer := accounts[8]

	if !bytes.Equal(metadataInfo.Owner, program) {
		return solana.ErrIncorrectProgramID
	}
	var metadata tokenmetadata.MetadataAccount
	if err := metadata.Unmarshal(metadataInfo.Data); err != nil {
		return tokenmetadata.ErrorUninitialized
	}
	if !bytes.Equal(metadata.Mint, mintInfo.Key) {
		return tokenmetadata.ErrorMintMismatch
	}

	if !authority.IsSigner {
		return tokenmetadata.ErrorUpdateAuthorityIsNotSigner
	}
	if !bytes.Equal(metadata.UpdateAuthority, authority.Key) {
		return tokenmetadata.ErrorUpdateAuthorityIncorrect
	}

	mint, err := loadMint(token.ProgramKey, mintInfo)
	if err != nil {
		return err
	}

	hasEdition := !bytes.Equal(editionInfo.Key, program)
	isNonFungible := metadata.TokenStandard != nil && *metadata.TokenStandard == tokenmetadata.TokenStandardNonFungible
	if isNonFungible {
		if !hasEdition {
			return solana.ErrNotEnoughAccountKeys
		}
		if mint.Supply+args.Amount > 1 {
			rt.Log("Editions must have exactly one token")
			return solana.ErrInvalidArgument
		}
	}

	if tokenInfo.IsEmpty() {
		if bytes.Equal(tokenOwner.Key, program) {
			rt.Log("Missing token owner account")
			return solana.ErrNotEnoughAccountKeys
		}

		create, _, err := token.CreateAssociatedTokenAccount(payer.Key, tokenOwner.Key, mintInfo.Key)
		if err != nil {
			return solana.ErrInvalidSeeds
		}
		// The rent sysvar isn't passed to this instruction and the associated
		// token program no longer needs it.
		create.Accounts = create.Accounts[:6]

		if err := rt.InvokeSigned(ctx, create); err != nil {
			return err
		}
	}

	if !hasEdition {
		return rt.InvokeSigned(ctx, token.MintTo(mintInfo.Key, tokenInfo.Key, authority.Key, args.Amount))
	}

	editionAddress, editionBump, err := tokenmetadata.GetMasterEditionAddress(&tokenmetadata.GetMasterEditionAddressArgs{
		Mint: mintInfo.Key,
	})
	if err != nil || !bytes.Equal(editionAddress, editionInfo.Key) {
		return tokenmetadata.ErrorInvalidEditionKey
	}

	return rt.InvokeSigned(
		ctx,
		token.MintTo(mintInfo.Key, tokenInfo.Key, editionInfo.Key, args.Amount),
		solana.SignerSeeds(editionBump, tokenmetadata.MetadataPrefix, program, mintInfo.Key, tokenmetadata.EditionPrefix),
	)
}

// validateMetadata enforces the data limits shared by every metadata record.
func validateMetadata(rt solana.Runtime, name, symbol, uri string, sfbp uint16, creators []tokenmetadata.Creator, accounts []*solana.AccountInfo) error {
	if len(name) > tokenmetadata.MaxNameLength {
		return tokenmetadata.ErrorNameTooLong
	}
	if len(symbol) > tokenmetadata.MaxSymbolLength {
		return tokenmetadata.ErrorSymbolTooLong
	}
	if len(uri) > tokenmetadata.MaxUriLength {
		return tokenmetadata.ErrorUriTooLong
	}
	if sfbp > 10_000 {
		rt.Log("Basis points cannot be more than 10000")
		return solana.ErrInvalidArgument
	}

	if len(creators) > tokenmetadata.MaxCreatorLimit {
		rt.Log("Creators list too long")
		return solana.ErrInvalidArgument
	}

	var total int
	for i, creator := range creators {
		for _, other := range creators[:i] {
			if bytes.Equal(other.Address, creator.Address) {
				rt.Log("No duplicate creator addresses")
				return solana.ErrInvalidArgument
			}
		}

		if creator.Verified && !isSigner(accounts, creator.Address) {
			rt.Log("Cannot verify another creator")
			return solana.ErrMissingRequiredSignature
		}

		total += int(creator.Share)
	}
	if len(creators) > 0 && total != 100 {
		rt.Log("Share total must equal 100 for creator array")
		return solana.ErrInvalidArgument
	}

	return nil
}

// createProgramAccount allocates a rent exempt account owned by the program at
// a derived address and writes its initial data.
func createProgramAccount(ctx context.Context, rt solana.Runtime, payer ed25519.PublicKey, info *solana.AccountInfo, owner ed25519.PublicKey, data []byte, seeds [][]byte) error {
	err := rt.InvokeSigned(
		ctx,
		system.CreateAccount(
			payer,
			info.Key,
			owner,
			system.MinimumBalanceForRentExemption(uint64(len(data))),
			uint64(len(data)),
		),
		seeds,
	)
	if err != nil {
		return err
	}

	copy(info.Data, data)
	return nil
}
