package localnet

import (
	"context"
	"crypto/ed25519"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/cnft-minter/pkg/merkletree"
	"github.com/code-payments/cnft-minter/pkg/solana"
	"github.com/code-payments/cnft-minter/pkg/solana/bubblegum"
	"github.com/code-payments/cnft-minter/pkg/solana/compression"
	compute_budget "github.com/code-payments/cnft-minter/pkg/solana/computebudget"
	"github.com/code-payments/cnft-minter/pkg/solana/memo"
	"github.com/code-payments/cnft-minter/pkg/solana/system"
	"github.com/code-payments/cnft-minter/pkg/solana/token"
	"github.com/code-payments/cnft-minter/pkg/solana/tokenmetadata"
	"github.com/code-payments/cnft-minter/pkg/testutil"
)

const initialBalance = 100_000_000_000

type testEnv struct {
	ledger   *Ledger
	payer    ed25519.PrivateKey
	payerKey ed25519.PublicKey
}

func newTestEnv(t *testing.T) *testEnv {
	env := &testEnv{
		ledger: New(),
		payer:  testutil.GenerateSolanaKeypair(t),
	}
	env.payerKey = testutil.PublicKey(env.payer)
	env.ledger.Airdrop(env.payerKey, initialBalance)
	return env
}

func (e *testEnv) transaction(t *testing.T, signers []ed25519.PrivateKey, ixns ...solana.Instruction) solana.Transaction {
	txn := solana.NewTransaction(e.payerKey, ixns...)
	txn.SetBlockhash(e.ledger.LatestBlockhash())
	require.NoError(t, txn.Sign(append([]ed25519.PrivateKey{e.payer}, signers...)...))
	return txn
}

func (e *testEnv) submit(t *testing.T, signers []ed25519.PrivateKey, ixns ...solana.Instruction) (*Receipt, error) {
	return e.ledger.Submit(context.Background(), e.transaction(t, signers, ixns...))
}

func requireTransactionError(t *testing.T, err error, key solana.TransactionErrorKey) {
	txErr, ok := err.(*solana.TransactionError)
	require.True(t, ok, "unexpected error type: %v", err)
	assert.Equal(t, key, txErr.ErrorKey())
}

func requireInstructionError(t *testing.T, err error, index int, expected error) {
	txErr, ok := err.(*solana.TransactionError)
	require.True(t, ok, "unexpected error type: %v", err)
	require.NotNil(t, txErr.InstructionError(), err.Error())
	assert.Equal(t, index, txErr.InstructionError().Index)
	assert.Equal(t, expected, txErr.InstructionError().Err)
}

func TestSubmit_Transfer(t *testing.T) {
	env := newTestEnv(t)
	dest := testutil.GenerateSolanaKeys(t, 1)[0]

	slot := env.ledger.Slot()
	receipt, err := env.submit(t, nil, system.Transfer(env.payerKey, dest, 2_000_000))
	require.NoError(t, err)
	require.NotNil(t, receipt)

	assert.True(t, receipt.Succeeded())
	assert.EqualValues(t, LamportsPerSignature, receipt.Fee)
	assert.EqualValues(t, compute_budget.DefaultComputeUnitLimit, receipt.ComputeBudget.ComputeUnitLimit)
	assert.Equal(t, slot, receipt.Slot)
	assert.Equal(t, slot+1, env.ledger.Slot())

	assert.EqualValues(t, initialBalance-2_000_000-LamportsPerSignature, env.ledger.GetBalance(env.payerKey))
	assert.EqualValues(t, 2_000_000, env.ledger.GetBalance(dest))

	assert.Equal(t, []string{
		"Program 11111111111111111111111111111111 invoke [1]",
		"Program 11111111111111111111111111111111 success",
	}, receipt.Logs)

	stored, err := env.ledger.GetReceipt(receipt.Signature)
	require.NoError(t, err)
	assert.Equal(t, receipt.ID, stored.ID)

	_, err = env.ledger.GetReceipt("unknown")
	assert.Equal(t, ErrReceiptNotFound, err)
}

func TestSubmit_Rejected(t *testing.T) {
	env := newTestEnv(t)
	dest := testutil.GenerateSolanaKeys(t, 1)[0]
	transfer := system.Transfer(env.payerKey, dest, 2_000_000)

	t.Run("invalid signature", func(t *testing.T) {
		txn := env.transaction(t, nil, transfer)
		txn.Signatures[0][0] ^= 0xff

		receipt, err := env.ledger.Submit(context.Background(), txn)
		assert.Nil(t, receipt)
		requireTransactionError(t, err, solana.TransactionErrorSignatureFailure)
	})

	t.Run("unknown blockhash", func(t *testing.T) {
		txn := solana.NewTransaction(env.payerKey, transfer)
		txn.SetBlockhash(solana.Blockhash{1, 2, 3})
		require.NoError(t, txn.Sign(env.payer))

		_, err := env.ledger.Submit(context.Background(), txn)
		requireTransactionError(t, err, solana.TransactionErrorBlockhashNotFound)
	})

	t.Run("duplicate", func(t *testing.T) {
		txn := env.transaction(t, nil, transfer)

		_, err := env.ledger.Submit(context.Background(), txn)
		require.NoError(t, err)

		_, err = env.ledger.Submit(context.Background(), txn)
		requireTransactionError(t, err, solana.TransactionErrorDuplicateSignature)
	})

	t.Run("unfunded payer", func(t *testing.T) {
		unfunded := &testEnv{ledger: env.ledger, payer: testutil.GenerateSolanaKeypair(t)}
		unfunded.payerKey = testutil.PublicKey(unfunded.payer)

		_, err := unfunded.submit(t, nil, memo.Instruction("hello"))
		requireTransactionError(t, err, solana.TransactionErrorAccountNotFound)
	})

	t.Run("unknown program", func(t *testing.T) {
		program := testutil.GenerateSolanaKeys(t, 1)[0]

		_, err := env.submit(t, nil, solana.NewInstruction(program, nil))
		requireTransactionError(t, err, solana.TransactionErrorProgramAccountNotFound)
	})

	t.Run("invalid compute budget", func(t *testing.T) {
		_, err := env.submit(
			t,
			nil,
			compute_budget.SetComputeUnitLimit(100),
			compute_budget.SetComputeUnitLimit(200),
		)
		requireInstructionError(t, err, 1, solana.ErrInvalidInstructionData)
	})
}

func TestSubmit_FailureDiscardsChanges(t *testing.T) {
	env := newTestEnv(t)
	dest := testutil.GenerateSolanaKeys(t, 1)[0]

	receipt, err := env.submit(
		t,
		nil,
		system.Transfer(env.payerKey, dest, 2_000_000),
		system.Transfer(env.payerKey, dest, 2*initialBalance),
	)
	requireInstructionError(t, err, 1, system.ErrorResultWithNegativeLamports)
	require.NotNil(t, receipt)
	assert.False(t, receipt.Succeeded())

	assert.EqualValues(t, initialBalance-LamportsPerSignature, env.ledger.GetBalance(env.payerKey))
	assert.Zero(t, env.ledger.GetBalance(dest))

	_, err = env.ledger.GetAccount(dest)
	assert.Equal(t, ErrAccountNotFound, err)

	var failed bool
	for _, log := range receipt.Logs {
		if strings.HasPrefix(log, "Program 11111111111111111111111111111111 failed") {
			failed = true
		}
	}
	assert.True(t, failed, receipt.Logs)
}

func TestSubmit_RentExemption(t *testing.T) {
	env := newTestEnv(t)
	dest := testutil.GenerateSolanaKeys(t, 1)[0]

	_, err := env.submit(t, nil, system.Transfer(env.payerKey, dest, 1_000))
	requireTransactionError(t, err, solana.TransactionErrorInsufficientFundsForRent)
	assert.Zero(t, env.ledger.GetBalance(dest))
}

func TestSubmit_PriorityFee(t *testing.T) {
	env := newTestEnv(t)

	receipt, err := env.submit(
		t,
		nil,
		compute_budget.SetComputeUnitLimit(100_000),
		compute_budget.SetComputeUnitPrice(1_000_000),
		memo.Instruction("hello", env.payerKey),
	)
	require.NoError(t, err)

	assert.EqualValues(t, 100_000, receipt.ComputeBudget.ComputeUnitLimit)
	assert.EqualValues(t, 1_000_000, receipt.ComputeBudget.ComputeUnitPrice)
	assert.EqualValues(t, LamportsPerSignature+100_000, receipt.Fee)
	assert.EqualValues(t, initialBalance-receipt.Fee, env.ledger.GetBalance(env.payerKey))
	assert.Contains(t, receipt.Logs, `Program log: Memo (len 5): "hello"`)
}

func TestSimulate(t *testing.T) {
	env := newTestEnv(t)
	dest := testutil.GenerateSolanaKeys(t, 1)[0]

	txn := env.transaction(t, nil, system.Transfer(env.payerKey, dest, 2_000_000))
	receipt, err := env.ledger.Simulate(context.Background(), txn)
	require.NoError(t, err)
	assert.True(t, receipt.Succeeded())

	assert.EqualValues(t, initialBalance, env.ledger.GetBalance(env.payerKey))
	assert.Zero(t, env.ledger.GetBalance(dest))

	_, err = env.ledger.GetReceipt(txn.SignatureString())
	assert.Equal(t, ErrReceiptNotFound, err)
}

func TestInvokeSigned_ProgramDerivedSigner(t *testing.T) {
	env := newTestEnv(t)

	program := testutil.GenerateSolanaKeys(t, 1)[0]
	vault, bump, err := solana.FindProgramAddressAndBump(program, []byte("vault"))
	require.NoError(t, err)

	env.ledger.Deploy(program, func(ctx context.Context, rt solana.Runtime, programID ed25519.PublicKey, accounts []*solana.AccountInfo, data []byte) error {
		payer, vaultInfo := accounts[0], accounts[1]

		// Without the vault seeds the new account never signs
		var signers [][][]byte
		if len(data) == 0 {
			signers = append(signers, solana.SignerSeeds(bump, []byte("vault")))
		}

		err := rt.InvokeSigned(
			ctx,
			system.CreateAccount(payer.Key, vaultInfo.Key, programID, system.MinimumBalanceForRentExemption(8), 8),
			signers...,
		)
		if err != nil {
			return err
		}

		rt.Log("vault created")
		copy(vaultInfo.Data, "deadbeef")
		return nil
	})

	accounts := []solana.AccountMeta{
		solana.NewAccountMeta(env.payerKey, true),
		solana.NewAccountMeta(vault, false),
		solana.NewReadonlyAccountMeta(system.SystemAccount, false),
	}

	_, err = env.submit(t, nil, solana.NewInstruction(program, []byte{1}, accounts...))
	requireInstructionError(t, err, 0, solana.ErrPrivilegeEscalation)

	receipt, err := env.submit(t, nil, solana.NewInstruction(program, nil, accounts...))
	require.NoError(t, err)

	account, err := env.ledger.GetAccount(vault)
	require.NoError(t, err)
	assert.Equal(t, program, account.Owner)
	assert.Equal(t, []byte("deadbeef"), account.Data)
	assert.EqualValues(t, system.MinimumBalanceForRentExemption(8), account.Lamports)

	inner := receipt.InnerInstructions[0]
	require.Len(t, inner, 1)
	assert.Equal(t, 2, inner[0].StackHeight)
	assert.Equal(t, system.SystemAccount, inner[0].Instruction.Program)
	assert.Contains(t, receipt.Logs, "Program log: vault created")
	assert.Contains(t, receipt.Logs, "Program 11111111111111111111111111111111 invoke [2]")

	// The address is now in use
	_, err = env.submit(t, nil, solana.NewInstruction(program, nil, accounts...))
	requireInstructionError(t, err, 0, system.ErrorAccountAlreadyInUse)
}

func TestVerify_AccountRules(t *testing.T) {
	env := newTestEnv(t)

	program := testutil.GenerateSolanaKeys(t, 1)[0]
	keys := testutil.GenerateSolanaKeys(t, 2)
	foreign, owned := keys[0], keys[1]

	env.ledger.SetAccount(foreign, &solana.Account{
		Lamports: system.MinimumBalanceForRentExemption(4),
		Owner:    system.SystemAccount,
		Data:     make([]byte, 4),
	})
	env.ledger.SetAccount(owned, &solana.Account{
		Lamports: system.MinimumBalanceForRentExemption(4),
		Owner:    program,
		Data:     make([]byte, 4),
	})

	env.ledger.Deploy(program, func(_ context.Context, _ solana.Runtime, _ ed25519.PublicKey, accounts []*solana.AccountInfo, data []byte) error {
		foreignInfo, ownedInfo, payer := accounts[0], accounts[1], accounts[2]

		switch data[0] {
		case 0:
			ownedInfo.Data[0] = 1
		case 1:
			foreignInfo.Data[0] = 1
		case 2:
			payer.Lamports -= 10
			ownedInfo.Lamports += 10
		case 3:
			ownedInfo.Lamports += 10
		case 4:
			ownedInfo.Owner = system.SystemAccount
		case 5:
			ownedInfo.Lamports -= 10
			payer.Lamports += 10
		}
		return nil
	})

	for _, tc := range []struct {
		name          string
		op            byte
		ownedWritable bool
		expected      error
	}{
		{"owned data", 0, true, nil},
		{"readonly data", 0, false, solana.ErrReadonlyDataModified},
		{"external data", 1, true, solana.ErrExternalAccountDataModified},
		{"external lamport spend", 2, true, solana.ErrExternalAccountLamportSpend},
		{"unbalanced", 3, true, solana.ErrUnbalancedInstruction},
		{"readonly lamports", 5, false, solana.ErrReadonlyLamportChange},
		{"owner change with data", 4, true, solana.ErrModifiedProgramID},
	} {
		t.Run(tc.name, func(t *testing.T) {
			// Restore the owned account's data between cases
			env.ledger.SetAccount(owned, &solana.Account{
				Lamports: system.MinimumBalanceForRentExemption(4),
				Owner:    program,
				Data:     []byte{0, 0, 0, 1},
			})

			ownedMeta := solana.NewReadonlyAccountMeta(owned, false)
			if tc.ownedWritable {
				ownedMeta = solana.NewAccountMeta(owned, false)
			}

			_, err := env.submit(
				t,
				nil,
				solana.NewInstruction(
					program,
					[]byte{tc.op},
					solana.NewAccountMeta(foreign, false),
					ownedMeta,
					solana.NewAccountMeta(env.payerKey, true),
				),
			)
			if tc.expected == nil {
				assert.NoError(t, err)
				return
			}
			requireInstructionError(t, err, 0, tc.expected)
		})
	}
}

func TestInvokeSigned_CallDepth(t *testing.T) {
	env := newTestEnv(t)

	program := testutil.GenerateSolanaKeys(t, 1)[0]
	env.ledger.Deploy(program, func(ctx context.Context, rt solana.Runtime, programID ed25519.PublicKey, _ []*solana.AccountInfo, _ []byte) error {
		return rt.InvokeSigned(ctx, solana.NewInstruction(programID, nil, solana.NewReadonlyAccountMeta(programID, false)))
	})

	receipt, err := env.submit(t, nil, solana.NewInstruction(program, nil, solana.NewReadonlyAccountMeta(program, false)))
	requireInstructionError(t, err, 0, solana.ErrCallDepth)
	assert.Contains(t, receipt.Logs, "Program "+encodeKey(program)+" invoke [4]")
	assert.NotContains(t, receipt.Logs, "Program "+encodeKey(program)+" invoke [5]")
}

func TestInvokeSigned_MissingAccount(t *testing.T) {
	env := newTestEnv(t)

	dest := testutil.GenerateSolanaKeys(t, 1)[0]
	program := testutil.GenerateSolanaKeys(t, 1)[0]
	env.ledger.Deploy(program, func(ctx context.Context, rt solana.Runtime, _ ed25519.PublicKey, accounts []*solana.AccountInfo, _ []byte) error {
		return rt.InvokeSigned(ctx, system.Transfer(accounts[0].Key, dest, 2_000_000))
	})

	_, err := env.submit(
		t,
		nil,
		solana.NewInstruction(
			program,
			nil,
			solana.NewAccountMeta(env.payerKey, true),
			solana.NewReadonlyAccountMeta(system.SystemAccount, false),
		),
	)
	requireInstructionError(t, err, 0, solana.ErrMissingAccount)
}

func TestTokenMetadata_CreateAndMint(t *testing.T) {
	env := newTestEnv(t)

	mint := testutil.GenerateSolanaKeypair(t)
	mintKey := testutil.PublicKey(mint)

	metadataAddress, _, err := tokenmetadata.GetMetadataAddress(&tokenmetadata.GetMetadataAddressArgs{Mint: mintKey})
	require.NoError(t, err)
	editionAddress, _, err := tokenmetadata.GetMasterEditionAddress(&tokenmetadata.GetMasterEditionAddressArgs{Mint: mintKey})
	require.NoError(t, err)
	ata, err := token.GetAssociatedAccount(env.payerKey, mintKey)
	require.NoError(t, err)

	decimals := uint8(0)
	create, err := tokenmetadata.NewCreateV1Instruction(
		&tokenmetadata.CreateV1InstructionAccounts{
			Metadata:                metadataAddress,
			MasterEdition:           editionAddress,
			Mint:                    mintKey,
			MintIsSigner:            true,
			Authority:               env.payerKey,
			Payer:                   env.payerKey,
			UpdateAuthority:         env.payerKey,
			UpdateAuthorityIsSigner: true,
		},
		&tokenmetadata.CreateV1InstructionArgs{
			Name:                 "Collection",
			Symbol:               "COL",
			Uri:                  "https://example.com/collection.json",
			SellerFeeBasisPoints: 500,
			Creators: []tokenmetadata.Creator{
				{Address: env.payerKey, Verified: true, Share: 100},
			},
			IsMutable:         true,
			TokenStandard:     tokenmetadata.TokenStandardNonFungible,
			CollectionDetails: &tokenmetadata.CollectionDetails{},
			Decimals:          &decimals,
			PrintSupply:       &tokenmetadata.PrintSupply{Type: tokenmetadata.PrintSupplyZero},
		},
	)
	require.NoError(t, err)

	mintTo, err := tokenmetadata.NewMintV1Instruction(
		&tokenmetadata.MintV1InstructionAccounts{
			Token:         ata,
			TokenOwner:    env.payerKey,
			Metadata:      metadataAddress,
			MasterEdition: editionAddress,
			Mint:          mintKey,
			Authority:     env.payerKey,
			Payer:         env.payerKey,
		},
		&tokenmetadata.MintV1InstructionArgs{Amount: 1},
	)
	require.NoError(t, err)

	_, err = env.submit(t, []ed25519.PrivateKey{mint}, create, mintTo)
	require.NoError(t, err)

	account, err := env.ledger.GetAccount(metadataAddress)
	require.NoError(t, err)
	assert.Equal(t, tokenmetadata.PROGRAM_ID, account.Owner)

	var metadata tokenmetadata.MetadataAccount
	require.NoError(t, metadata.Unmarshal(account.Data))
	assert.Equal(t, env.payerKey, metadata.UpdateAuthority)
	assert.Equal(t, mintKey, metadata.Mint)
	assert.Equal(t, "Collection", metadata.Name)
	assert.EqualValues(t, 500, metadata.SellerFeeBasisPoints)
	require.NotNil(t, metadata.TokenStandard)
	assert.Equal(t, tokenmetadata.TokenStandardNonFungible, *metadata.TokenStandard)
	assert.NotNil(t, metadata.CollectionDetails)

	account, err = env.ledger.GetAccount(editionAddress)
	require.NoError(t, err)
	var edition tokenmetadata.MasterEditionAccount
	require.NoError(t, edition.Unmarshal(account.Data))
	require.NotNil(t, edition.MaxSupply)
	assert.Zero(t, *edition.MaxSupply)

	account, err = env.ledger.GetAccount(mintKey)
	require.NoError(t, err)
	var mintState token.Mint
	require.True(t, mintState.Unmarshal(account.Data))
	assert.EqualValues(t, 1, mintState.Supply)
	assert.Equal(t, editionAddress, mintState.MintAuthority)

	account, err = env.ledger.GetAccount(ata)
	require.NoError(t, err)
	var tokenAccount token.Account
	require.True(t, tokenAccount.Unmarshal(account.Data))
	assert.EqualValues(t, 1, tokenAccount.Amount)
	assert.Equal(t, env.payerKey, tokenAccount.Owner)

	// A master edition mint holds exactly one token
	_, err = env.submit(t, nil, mintTo)
	requireInstructionError(t, err, 0, solana.ErrInvalidArgument)

	// Metadata can only be created once
	_, err = env.submit(t, []ed25519.PrivateKey{mint}, create)
	requireInstructionError(t, err, 0, tokenmetadata.ErrorAlreadyInitialized)
}

func TestBubblegum_CreateTree(t *testing.T) {
	env := newTestEnv(t)

	tree := testutil.GenerateSolanaKeypair(t)
	treeKey := testutil.PublicKey(tree)

	size, err := compression.GetMerkleTreeAccountSize(3, 8)
	require.NoError(t, err)
	treeConfigAddress, _, err := bubblegum.GetTreeConfigAddress(&bubblegum.GetTreeConfigAddressArgs{MerkleTree: treeKey})
	require.NoError(t, err)

	receipt, err := env.submit(
		t,
		[]ed25519.PrivateKey{tree},
		system.CreateAccount(env.payerKey, treeKey, compression.PROGRAM_ID, system.MinimumBalanceForRentExemption(size), size),
		bubblegum.NewCreateTreeConfigInstruction(
			&bubblegum.CreateTreeConfigInstructionAccounts{
				TreeConfig:  treeConfigAddress,
				MerkleTree:  treeKey,
				Payer:       env.payerKey,
				TreeCreator: env.payerKey,
			},
			&bubblegum.CreateTreeConfigInstructionArgs{
				MaxDepth:      3,
				MaxBufferSize: 8,
			},
		),
	)
	require.NoError(t, err)

	inner := receipt.InnerInstructions[1]
	assert.Len(t, receipt.InnerInstructionsFor(compression.NOOP_PROGRAM_ID), 1)
	require.Len(t, inner, 3)
	assert.Equal(t, system.SystemAccount, inner[0].Instruction.Program)
	assert.Equal(t, compression.PROGRAM_ID, inner[1].Instruction.Program)
	assert.Equal(t, compression.NOOP_PROGRAM_ID, inner[2].Instruction.Program)
	assert.Equal(t, 3, inner[2].StackHeight)

	account, err := env.ledger.GetAccount(treeConfigAddress)
	require.NoError(t, err)
	var treeConfig bubblegum.TreeConfigAccount
	require.NoError(t, treeConfig.Unmarshal(account.Data))
	assert.Equal(t, env.payerKey, treeConfig.TreeCreator)
	assert.Equal(t, env.payerKey, treeConfig.TreeDelegate)
	assert.EqualValues(t, 8, treeConfig.TotalMintCapacity)
	assert.Zero(t, treeConfig.NumMinted)
	assert.False(t, treeConfig.IsPublic)

	account, err = env.ledger.GetAccount(treeKey)
	require.NoError(t, err)
	var treeAccount compression.MerkleTreeAccount
	require.NoError(t, treeAccount.Unmarshal(account.Data))
	assert.Equal(t, treeConfigAddress, treeAccount.Authority)
	assert.EqualValues(t, 3, treeAccount.MaxDepth)
	assert.Equal(t, receipt.Slot, treeAccount.CreationSlot)

	empty, err := merkletree.New(3)
	require.NoError(t, err)
	assert.Equal(t, empty.GetRoot(), treeAccount.Root)

	// Only the tree config may append
	_, err = env.submit(
		t,
		nil,
		compression.NewAppendInstruction(
			&compression.AppendInstructionAccounts{
				MerkleTree: treeKey,
				Authority:  env.payerKey,
				Noop:       compression.NOOP_PROGRAM_ID,
			},
			&compression.AppendInstructionArgs{Leaf: make(merkletree.Hash, merkletree.NodeSize)},
		),
	)
	requireInstructionError(t, err, 0, compression.ErrorIncorrectAuthority)
}
