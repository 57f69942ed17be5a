package localnet

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"encoding/binary"

	"github.com/code-payments/cnft-minter/pkg/solana"
	"github.com/code-payments/cnft-minter/pkg/solana/bubblegum"
	"github.com/code-payments/cnft-minter/pkg/solana/compression"
	"github.com/code-payments/cnft-minter/pkg/solana/tokenmetadata"
)

// processBubblegum supports creating trees and minting into verified, sized
// collections. Collection sizes are not incremented on mint.
func processBubblegum(ctx context.Context, rt solana.Runtime, program ed25519.PublicKey, accounts []*solana.AccountInfo, data []byte) error {
	ix := asInstruction(program, accounts, data)

	if _, args, err := bubblegum.DecodeCreateTreeConfigInstruction(ix); err == nil {
		rt.Log("Instruction: CreateTreeConfig")
		return bubblegumCreateTreeConfig(ctx, rt, program, accounts, args)
	}

	if _, args, err := bubblegum.DecodeMintToCollectionV1Instruction(ix); err == nil {
		rt.Log("Instruction: MintToCollectionV1")
		return bubblegumMintToCollection(ctx, rt, program, accounts, args)
	}

	return solana.ErrInvalidInstructionData
}

func bubblegumCreateTreeConfig(ctx context.Context, rt solana.Runtime, program ed25519.PublicKey, accounts []*solana.AccountInfo, args *bubblegum.CreateTreeConfigInstructionArgs) error {
	treeConfigInfo := accounts[0]
	treeInfo := accounts[1]
	payer := accounts[2]
	treeCreator := accounts[3]

	if !treeCreator.IsSigner {
		return solana.ErrMissingRequiredSignature
	}

	treeConfigAddress, bump, err := bubblegum.GetTreeConfigAddress(&bubblegum.GetTreeConfigAddressArgs{
		MerkleTree: treeInfo.Key,
	})
	if err != nil || !bytes.Equal(treeConfigAddress, treeConfigInfo.Key) {
		return bubblegum.ErrorConstraintSeeds
	}

	if !bytes.Equal(treeInfo.Owner, compression.PROGRAM_ID) {
		return bubblegum.ErrorIncorrectOwner
	}
	if _, err := compression.GetMerkleTreeAccountSize(args.MaxDepth, args.MaxBufferSize); err != nil {
		return solana.ErrInvalidArgument
	}

	treeConfig := &bubblegum.TreeConfigAccount{
		TreeCreator:       treeCreator.Key,
		TreeDelegate:      treeCreator.Key,
		TotalMintCapacity: uint64(1) << args.MaxDepth,
		IsPublic:          args.Public != nil && *args.Public,
		IsDecompressible:  bubblegum.DecompressibleStateDisabled,
	}

	seeds := solana.SignerSeeds(bump, treeInfo.Key)

	err = createProgramAccount(ctx, rt, payer.Key, treeConfigInfo, program, treeConfig.Marshal(), seeds)
	if err != nil {
		return err
	}

	return rt.InvokeSigned(
		ctx,
		compression.NewInitEmptyMerkleTreeInstruction(
			&compression.InitEmptyMerkleTreeInstructionAccounts{
				MerkleTree: treeInfo.Key,
				Authority:  treeConfigInfo.Key,
				Noop:       bubblegum.LOG_WRAPPER_PROGRAM_ID,
			},
			&compression.InitEmptyMerkleTreeInstructionArgs{
				MaxDepth:      args.MaxDepth,
				MaxBufferSize: args.MaxBufferSize,
			},
		),
		seeds,
	)
}

func bubblegumMintToCollection(ctx context.Context, rt solana.Runtime, program ed25519.PublicKey, accounts []*solana.AccountInfo, args *bubblegum.MintToCollectionV1InstructionArgs) error {
	treeConfigInfo := accounts[0]
	leafOwner := accounts[1]
	leafDelegate := accounts[2]
	treeInfo := accounts[3]
	payer := accounts[4]
	treeCreatorOrDelegate := accounts[5]
	collectionAuthority := accounts[6]
	collectionMint := accounts[8]
	collectionMetadataInfo := accounts[9]
	collectionEditionInfo := accounts[10]
	bubblegumSigner := accounts[11]

	treeConfigAddress, treeConfigBump, err := bubblegum.GetTreeConfigAddress(&bubblegum.GetTreeConfigAddressArgs{
		MerkleTree: treeInfo.Key,
	})
	if err != nil || !bytes.Equal(treeConfigAddress, treeConfigInfo.Key) {
		rt.Log("AnchorError caused by account: tree_authority. Error Code: ConstraintSeeds.")
		return bubblegum.ErrorConstraintSeeds
	}

	if !bytes.Equal(treeConfigInfo.Owner, program) {
		return bubblegum.ErrorIncorrectOwner
	}
	var treeConfig bubblegum.TreeConfigAccount
	if err := treeConfig.Unmarshal(treeConfigInfo.Data); err != nil {
		return solana.ErrInvalidAccountData
	}

	if !payer.IsSigner {
		return solana.ErrMissingRequiredSignature
	}
	if !treeConfig.IsPublic && (!treeCreatorOrDelegate.IsSigner || !treeConfig.HasAuthority(treeCreatorOrDelegate.Key)) {
		return bubblegum.ErrorTreeAuthorityIncorrect
	}
	if treeConfig.RemainingCapacity() == 0 {
		return bubblegum.ErrorInsufficientMintCapacity
	}

	metadata := args.Metadata
	if err := validateMetadataArgs(&metadata, accounts); err != nil {
		return err
	}

	if metadata.Collection == nil || !bytes.Equal(metadata.Collection.Key, collectionMint.Key) {
		return bubblegum.ErrorCollectionNotFound
	}

	if !bytes.Equal(collectionMetadataInfo.Owner, tokenmetadata.PROGRAM_ID) {
		return bubblegum.ErrorIncorrectOwner
	}
	var collectionMetadata tokenmetadata.MetadataAccount
	if err := collectionMetadata.Unmarshal(collectionMetadataInfo.Data); err != nil {
		return solana.ErrInvalidAccountData
	}
	if !bytes.Equal(collectionMetadata.Mint, collectionMint.Key) {
		return bubblegum.ErrorMetadataMintMismatch
	}
	if !collectionAuthority.IsSigner || !bytes.Equal(collectionMetadata.UpdateAuthority, collectionAuthority.Key) {
		return bubblegum.ErrorInvalidCollectionAuthority
	}
	if collectionMetadata.CollectionDetails == nil {
		return bubblegum.ErrorCollectionMustBeSized
	}

	editionAddress, _, err := tokenmetadata.GetMasterEditionAddress(&tokenmetadata.GetMasterEditionAddressArgs{
		Mint: collectionMint.Key,
	})
	if err != nil || !bytes.Equal(editionAddress, collectionEditionInfo.Key) || !bytes.Equal(collectionEditionInfo.Owner, tokenmetadata.PROGRAM_ID) {
		return bubblegum.ErrorCollectionMasterEditionAccountInvalid
	}
	var collectionEdition tokenmetadata.MasterEditionAccount
	if err := collectionEdition.Unmarshal(collectionEditionInfo.Data); err != nil {
		return bubblegum.ErrorCollectionMasterEditionAccountInvalid
	}
	if collectionEdition.MaxSupply == nil || *collectionEdition.MaxSupply != 0 {
		return bubblegum.ErrorCollectionMustBeAUniqueMasterEdition
	}

	signerAddress, _, err := bubblegum.GetBubblegumSignerAddress()
	if err != nil || !bytes.Equal(signerAddress, bubblegumSigner.Key) {
		return bubblegum.ErrorConstraintSeeds
	}

	metadata.Collection = &tokenmetadata.Collection{
		Verified: true,
		Key:      collectionMint.Key,
	}

	nonce := treeConfig.NumMinted
	assetID, _, err := bubblegum.GetAssetIdAddress(&bubblegum.GetAssetIdAddressArgs{
		MerkleTree: treeInfo.Key,
		Nonce:      nonce,
	})
	if err != nil {
		return bubblegum.ErrorPublicKeyMismatch
	}

	dataHash, err := metadata.DataHash()
	if err != nil {
		return bubblegum.ErrorHashingMismatch
	}

	leaf := &bubblegum.LeafSchema{
		Id:          assetID,
		Owner:       leafOwner.Key,
		Delegate:    leafDelegate.Key,
		Nonce:       nonce,
		DataHash:    dataHash,
		CreatorHash: metadata.CreatorHash(),
	}

	event := make([]byte, 0, 1+3*32+8+2*32)
	event = append(event, 1)
	event = append(event, leaf.Id...)
	event = append(event, leaf.Owner...)
	event = append(event, leaf.Delegate...)
	event = binary.LittleEndian.AppendUint64(event, leaf.Nonce)
	event = append(event, leaf.DataHash...)
	event = append(event, leaf.CreatorHash...)
	if err := rt.InvokeSigned(ctx, solana.NewInstruction(bubblegum.LOG_WRAPPER_PROGRAM_ID, event)); err != nil {
		return err
	}

	err = rt.InvokeSigned(
		ctx,
		compression.NewAppendInstruction(
			&compression.AppendInstructionAccounts{
				MerkleTree: treeInfo.Key,
				Authority:  treeConfigInfo.Key,
				Noop:       bubblegum.LOG_WRAPPER_PROGRAM_ID,
			},
			&compression.AppendInstructionArgs{
				Leaf: leaf.Hash(),
			},
		),
		solana.SignerSeeds(treeConfigBump, treeInfo.Key),
	)
	if err != nil {
		return err
	}

	treeConfig.NumMinted++
	copy(treeConfigInfo.Data, treeConfig.Marshal())

	rt.Log("Leaf asset ID: %s", encodeKey(assetID))
	return nil
}

func validateMetadataArgs(metadata *bubblegum.MetadataArgs, accounts []*solana.AccountInfo) error {
	if len(metadata.Name) > tokenmetadata.MaxNameLength {
		return bubblegum.ErrorMetadataNameTooLong
	}
	if len(metadata.Symbol) > tokenmetadata.MaxSymbolLength {
		return bubblegum.ErrorMetadataSymbolTooLong
	}
	if len(metadata.Uri) > tokenmetadata.MaxUriLength {
		return bubblegum.ErrorMetadataUriTooLong
	}
	if metadata.SellerFeeBasisPoints > 10_000 {
		return bubblegum.ErrorMetadataBasisPointsTooHigh
	}
	if len(metadata.Creators) > tokenmetadata.MaxCreatorLimit {
		return bubblegum.ErrorCreatorsTooLong
	}

	var total int
	for i, creator := range metadata.Creators {
		for _, other := range metadata.Creators[:i] {
			if bytes.Equal(other.Address, creator.Address) {
				return bubblegum.ErrorDuplicateCreatorAddress
			}
		}

		if creator.Verified && !isSigner(accounts, creator.Address) {
			return bubblegum.ErrorCreatorDidNotVerify
		}

		total += int(creator.Share)
	}

	// Shares only need to fit within 100, so a secondary creator can hold a
	// partial cut while the verified authority holds none.
	if total > 100 {
		return bubblegum.ErrorCreatorShareTotalMustBe100
	}

	return nil
}
