package processor

import (
	"context"
	"crypto/ed25519"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/code-payments/cnft-minter/pkg/metrics"
	"github.com/code-payments/cnft-minter/pkg/pointer"
	"github.com/code-payments/cnft-minter/pkg/solana"
	"github.com/code-payments/cnft-minter/pkg/solana/bubblegum"
	"github.com/code-payments/cnft-minter/pkg/solana/cnftminter"
	"github.com/code-payments/cnft-minter/pkg/solana/system"
	"github.com/code-payments/cnft-minter/pkg/solana/tokenmetadata"
)

type mintAccounts struct {
	payer                 *solana.AccountInfo
	config                *solana.AccountInfo
	authority             *solana.AccountInfo
	treeConfig            *solana.AccountInfo
	treeCreatorOrDelegate *solana.AccountInfo
	merkleTree            *solana.AccountInfo
	collectionMint        *solana.AccountInfo
	collectionMetadata    *solana.AccountInfo
	collectionEdition     *solana.AccountInfo
	bubblegumSigner       *solana.AccountInfo
	logWrapper            *solana.AccountInfo
	compressionProgram    *solana.AccountInfo
	metadataProgram       *solana.AccountInfo
	bubblegumProgram      *solana.AccountInfo
	systemProgram         *solana.AccountInfo
	instructionsSysvar    *solana.AccountInfo
}

// mint mints a compressed NFT owned by the payer into the collection. The
// authority signs as collection authority and first creator.
func (p *Processor) mint(ctx context.Context, rt solana.Runtime, log *logrus.Entry, programID ed25519.PublicKey, accounts []*solana.AccountInfo, data []byte) error {
	var args cnftminter.MintInstructionArgs
	if err := args.Unmarshal(data); err != nil {
		return solana.ErrInvalidInstructionData
	}

	var a mintAccounts
	err := nextAccounts(
		solana.NewAccountIterator(accounts),
		&a.payer,
		&a.config,
		&a.authority,
		&a.treeConfig,
		&a.treeCreatorOrDelegate,
		&a.merkleTree,
		&a.collectionMint,
		&a.collectionMetadata,
		&a.collectionEdition,
		&a.bubblegumSigner,
		&a.logWrapper,
		&a.compressionProgram,
		&a.metadataProgram,
		&a.bubblegumProgram,
		&a.systemProgram,
		&a.instructionsSysvar,
	)
	if err != nil {
		return err
	}

	if !solana.KeysEqual(a.config.Owner, programID) {
		return solana.ErrInvalidAccountData
	}

	var config cnftminter.CollectionConfigAccount
	if err := config.Unmarshal(a.config.Data); err != nil {
		return solana.ErrInvalidAccountData
	}

	log = log.WithFields(logrus.Fields{
		"collection": config.Name,
		"payer":      base58.Encode(a.payer.Key),
		"name":       args.Name,
	})

	tracer := traceInstruction(ctx, "Mint", map[string]interface{}{
		"collection": config.Name,
		"name":       args.Name,
	})
	defer tracer.End()

	if !solana.KeysEqual(a.instructionsSysvar.Key, system.InstructionsSysVar) {
		tracer.OnError(solana.ErrInvalidAccountData)
		return solana.ErrInvalidAccountData
	}

	_, err = deriveAddress(programID, a.config, solana.ErrInvalidAccountData, cnftminter.ConfigSeeds(programID, config.Name)...)
	if err != nil {
		tracer.OnError(err)
		return err
	}

	authorityBump, err := deriveAddress(programID, a.authority, cnftminter.ErrorAuthKeyFailure, cnftminter.AuthoritySeeds(programID, config.Name)...)
	if err != nil {
		tracer.OnError(err)
		return err
	}

	if !solana.KeysEqual(a.merkleTree.Key, config.MerkleTree) || !solana.KeysEqual(a.collectionMint.Key, config.CollectionKey) {
		tracer.OnError(solana.ErrInvalidAccountData)
		return solana.ErrInvalidAccountData
	}

	ix, err := newMintToCollectionInstruction(&a, &config, &args)
	if err != nil {
		tracer.OnError(err)
		return err
	}

	err = rt.InvokeSigned(ctx, ix, solana.SignerSeeds(authorityBump, cnftminter.AuthoritySeeds(programID, config.Name)...))
	if err != nil {
		tracer.OnError(err)
		return err
	}

	rt.Log("Minted new cNFT into collection: %s", base58.Encode(a.collectionMint.Key))
	log.Debug("minted collection member")

	metrics.RecordEvent(ctx, memberMintedEventName, map[string]interface{}{
		"collection":  config.Name,
		"merkle_tree": base58.Encode(a.merkleTree.Key),
		"owner":       base58.Encode(a.payer.Key),
	})

	return nil
}

// newMintToCollectionInstruction builds the bubblegum mint. The payer pays
// for, owns and delegates the leaf.
func newMintToCollectionInstruction(a *mintAccounts, config *cnftminter.CollectionConfigAccount, args *cnftminter.MintInstructionArgs) (solana.Instruction, error) {
	ix, err := bubblegum.NewMintToCollectionV1Instruction(
		&bubblegum.MintToCollectionV1InstructionAccounts{
			TreeConfig:                   a.treeConfig.Key,
			LeafOwner:                    a.payer.Key,
			LeafDelegate:                 a.payer.Key,
			MerkleTree:                   a.merkleTree.Key,
			Payer:                        a.payer.Key,
			TreeCreatorOrDelegate:        a.payer.Key,
			CollectionAuthority:          a.authority.Key,
			CollectionAuthorityRecordPda: a.bubblegumProgram.Key,
			CollectionMint:               a.collectionMint.Key,
			CollectionMetadata:           a.collectionMetadata.Key,
			CollectionEdition:            a.collectionEdition.Key,
			BubblegumSigner:              a.bubblegumSigner.Key,
			RemainingAccounts: []solana.AccountMeta{
				{
					PublicKey:  a.authority.Key,
					IsWritable: true,
					IsSigner:   true,
				},
			},
		},
		&bubblegum.MintToCollectionV1InstructionArgs{
			Metadata: bubblegum.MetadataArgs{
				Name:                 args.Name,
				Symbol:               args.Symbol,
				Uri:                  args.Uri,
				SellerFeeBasisPoints: config.Sfbp,
				PrimarySaleHappened:  false,
				IsMutable:            true,
				EditionNonce:         pointer.To(uint8(0)),
				TokenStandard:        pointer.To(tokenmetadata.TokenStandardNonFungible),
				Collection: &tokenmetadata.Collection{
					Verified: true,
					Key:      a.collectionMint.Key,
				},
				TokenProgramVersion: bubblegum.TokenProgramVersionOriginal,
				Creators:            collectionCreators(a.authority.Key, config),
			},
		},
	)
	if err != nil {
		return solana.Instruction{}, errors.Wrap(err, "error building mint to collection v1 instruction")
	}
	return ix, nil
}

// collectionCreators lists the authority as a verified creator without a
// share, followed by the configured royalty recipient.
func collectionCreators(authority ed25519.PublicKey, config *cnftminter.CollectionConfigAccount) []tokenmetadata.Creator {
	return []tokenmetadata.Creator{
		{
			Address:  authority,
			Verified: true,
			Share:    0,
		},
		{
			Address:  config.Creator1,
			Verified: false,
			Share:    config.Creator1Cut,
		},
	}
}
