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
	"github.com/code-payments/cnft-minter/pkg/solana/cnftminter"
	"github.com/code-payments/cnft-minter/pkg/solana/system"
	"github.com/code-payments/cnft-minter/pkg/solana/tokenmetadata"
)

type createCollectionAccounts struct {
	payer          *solana.AccountInfo
	config         *solana.AccountInfo
	authority      *solana.AccountInfo
	collectionMint *solana.AccountInfo
	collectionAta  *solana.AccountInfo
	metadata       *solana.AccountInfo
	masterEdition  *solana.AccountInfo

	// Programs and sysvars are only passed through to the invoked programs
	tokenProgram           *solana.AccountInfo
	associatedTokenProgram *solana.AccountInfo
	systemProgram          *solana.AccountInfo
	rentSysvar             *solana.AccountInfo
	metadataProgram        *solana.AccountInfo
	instructionsSysvar     *solana.AccountInfo
}

// createCollection stores the collection config and, the first time it's
// called for a name, mints the collection NFT into the authority's token
// account.
func (p *Processor) createCollection(ctx context.Context, rt solana.Runtime, log *logrus.Entry, programID ed25519.PublicKey, accounts []*solana.AccountInfo, data []byte) error {
	var a createCollectionAccounts
	err := nextAccounts(
		solana.NewAccountIterator(accounts),
		&a.payer,
		&a.config,
		&a.authority,
		&a.collectionMint,
		&a.collectionAta,
		&a.metadata,
		&a.masterEdition,
		&a.tokenProgram,
		&a.associatedTokenProgram,
		&a.systemProgram,
		&a.rentSysvar,
		&a.metadataProgram,
		&a.instructionsSysvar,
	)
	if err != nil {
		return err
	}

	if !a.payer.IsSigner {
		return solana.ErrMissingRequiredSignature
	}

	var input cnftminter.CollectionConfigAccount
	if err := input.UnmarshalStrict(data); err != nil {
		return solana.ErrInvalidInstructionData
	}

	log = log.WithFields(logrus.Fields{
		"collection": input.Name,
		"payer":      base58.Encode(a.payer.Key),
	})

	tracer := traceInstruction(ctx, "CreateCollection", map[string]interface{}{
		"collection": input.Name,
	})
	defer tracer.End()

	configBump, err := deriveAddress(programID, a.config, cnftminter.ErrorInvalidConfigAccount, cnftminter.ConfigSeeds(programID, input.Name)...)
	if err != nil {
		tracer.OnError(err)
		return err
	}

	if err := input.Validate(); err != nil {
		tracer.OnError(err)
		return err
	}

	authorityBump, err := deriveAddress(programID, a.authority, cnftminter.ErrorAuthKeyFailure, cnftminter.AuthoritySeeds(programID, input.Name)...)
	if err != nil {
		tracer.OnError(err)
		return err
	}

	// The authority is always the first creator of minted members, so it
	// can't also be the royalty recipient.
	if solana.KeysEqual(input.Creator1, a.authority.Key) {
		tracer.OnError(cnftminter.ErrorInvalidCreatorShare)
		return cnftminter.ErrorInvalidCreatorShare
	}

	isNew := len(a.config.Data) == 0
	if isNew {
		err = p.initializeCollection(ctx, rt, programID, &a, &input, configBump, authorityBump)
	} else {
		err = p.checkOverwrite(ctx, programID, &a, &input)
	}
	if err != nil {
		tracer.OnError(err)
		return err
	}

	record := input
	record.AuthPda = a.authority.Key
	record.CollectionKey = a.collectionMint.Key
	if err := record.MarshalInto(a.config.Data); err != nil {
		log.WithError(err).Warn("failure saving collection config")
		rt.Log("Error saving collection config: %s", err.Error())
		tracer.OnError(err)
		return solana.ErrInvalidInstructionData
	}

	log.WithFields(logrus.Fields{
		"new":     isNew,
		"royalty": cnftminter.RoyaltyPercent(record.Sfbp).String(),
	}).Debug("collection config saved")

	if isNew {
		metrics.RecordEvent(ctx, collectionCreatedEventName, map[string]interface{}{
			"collection":      record.Name,
			"collection_mint": base58.Encode(record.CollectionKey),
			"sfbp":            record.Sfbp,
		})
	}

	return nil
}

// initializeCollection allocates the config account and mints the collection
// NFT under the authority.
func (p *Processor) initializeCollection(
	ctx context.Context,
	rt solana.Runtime,
	programID ed25519.PublicKey,
	a *createCollectionAccounts,
	input *cnftminter.CollectionConfigAccount,
	configBump, authorityBump uint8,
) error {
	size := p.conf.configAccountSize.Get(ctx)
	err := rt.InvokeSigned(
		ctx,
		system.CreateAccount(a.payer.Key, a.config.Key, programID, system.MinimumBalanceForRentExemption(size), size),
		solana.SignerSeeds(configBump, cnftminter.ConfigSeeds(programID, input.Name)...),
	)
	if err != nil {
		return err
	}

	authoritySeeds := solana.SignerSeeds(authorityBump, cnftminter.AuthoritySeeds(programID, input.Name)...)

	createIx, err := tokenmetadata.NewCreateV1Instruction(
		&tokenmetadata.CreateV1InstructionAccounts{
			Metadata:                a.metadata.Key,
			MasterEdition:           a.masterEdition.Key,
			Mint:                    a.collectionMint.Key,
			MintIsSigner:            true,
			Authority:               a.payer.Key,
			Payer:                   a.payer.Key,
			UpdateAuthority:         a.authority.Key,
			UpdateAuthorityIsSigner: true,
		},
		&tokenmetadata.CreateV1InstructionArgs{
			Name:                 input.Name,
			Symbol:               input.Symbol,
			Uri:                  input.Uri + p.conf.collectionMetadataFile.Get(ctx),
			SellerFeeBasisPoints: input.Sfbp,
			Creators: []tokenmetadata.Creator{
				{
					Address:  a.authority.Key,
					Verified: true,
					Share:    100,
				},
			},
			IsMutable:         true,
			TokenStandard:     tokenmetadata.TokenStandardNonFungible,
			CollectionDetails: &tokenmetadata.CollectionDetails{Size: 1},
			Decimals:          pointer.To(uint8(0)),
			PrintSupply:       &tokenmetadata.PrintSupply{Type: tokenmetadata.PrintSupplyZero},
		},
	)
	if err != nil {
		return errors.Wrap(err, "error building create v1 instruction")
	}
	if err := rt.InvokeSigned(ctx, createIx, authoritySeeds); err != nil {
		return err
	}

	mintIx, err := tokenmetadata.NewMintV1Instruction(
		&tokenmetadata.MintV1InstructionAccounts{
			Token:         a.collectionAta.Key,
			TokenOwner:    a.authority.Key,
			Metadata:      a.metadata.Key,
			MasterEdition: a.masterEdition.Key,
			Mint:          a.collectionMint.Key,
			Authority:     a.authority.Key,
			Payer:         a.payer.Key,
		},
		&tokenmetadata.MintV1InstructionArgs{
			Amount: 1,
		},
	)
	if err != nil {
		return errors.Wrap(err, "error building mint v1 instruction")
	}
	return rt.InvokeSigned(ctx, mintIx, authoritySeeds)
}

// checkOverwrite gates rewriting an existing config. Only its update
// authority may do so, and the collection's identity can't change.
func (p *Processor) checkOverwrite(ctx context.Context, programID ed25519.PublicKey, a *createCollectionAccounts, input *cnftminter.CollectionConfigAccount) error {
	if !solana.KeysEqual(a.config.Owner, programID) {
		return solana.ErrInvalidAccountData
	}

	if p.conf.disableOverwrite.Get(ctx) {
		return solana.ErrAccountAlreadyInitialized
	}

	var existing cnftminter.CollectionConfigAccount
	if err := existing.Unmarshal(a.config.Data); err != nil {
		return solana.ErrInvalidAccountData
	}

	if !solana.KeysEqual(a.payer.Key, existing.UpdateAuth) || !solana.KeysEqual(input.UpdateAuth, existing.UpdateAuth) {
		return cnftminter.ErrorUpdateAuthorityMismatch
	}

	if existing.Name != input.Name ||
		!solana.KeysEqual(existing.AuthPda, a.authority.Key) ||
		!solana.KeysEqual(existing.CollectionKey, a.collectionMint.Key) {
		return solana.ErrInvalidAccountData
	}

	return nil
}
