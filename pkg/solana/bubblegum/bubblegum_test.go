package bubblegum

import (
	"crypto/ed25519"
	"testing"

	solanago "github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/sha3"

	"github.com/code-payments/cnft-minter/pkg/solana"
	"github.com/code-payments/cnft-minter/pkg/solana/tokenmetadata"
)

func TestAddresses(t *testing.T) {
	tree := generateKey(t)

	treeConfig, bump, err := GetTreeConfigAddress(&GetTreeConfigAddressArgs{MerkleTree: tree})
	require.NoError(t, err)
	expected, expectedBump, err := solanago.FindProgramAddress([][]byte{tree}, solanago.PublicKeyFromBytes(PROGRAM_ID))
	require.NoError(t, err)
	assert.EqualValues(t, expected.Bytes(), treeConfig)
	assert.Equal(t, expectedBump, bump)

	signer, _, err := GetBubblegumSignerAddress()
	require.NoError(t, err)
	expected, _, err = solanago.FindProgramAddress([][]byte{[]byte("collection_cpi")}, solanago.PublicKeyFromBytes(PROGRAM_ID))
	require.NoError(t, err)
	assert.EqualValues(t, expected.Bytes(), signer)

	asset0, _, err := GetAssetIdAddress(&GetAssetIdAddressArgs{MerkleTree: tree, Nonce: 0})
	require.NoError(t, err)
	asset1, _, err := GetAssetIdAddress(&GetAssetIdAddressArgs{MerkleTree: tree, Nonce: 1})
	require.NoError(t, err)
	assert.NotEqual(t, asset0, asset1)
	expected, _, err = solanago.FindProgramAddress([][]byte{[]byte("asset"), tree, {1, 0, 0, 0, 0, 0, 0, 0}}, solanago.PublicKeyFromBytes(PROGRAM_ID))
	require.NoError(t, err)
	assert.EqualValues(t, expected.Bytes(), asset1)
}

func TestMetadataArgs_Hashes(t *testing.T) {
	auth := generateKey(t)
	creator := generateKey(t)
	args := newTestMetadataArgs(t, auth, creator)

	encoded, err := args.Marshal()
	require.NoError(t, err)

	var decoded MetadataArgs
	require.NoError(t, decoded.Unmarshal(encoded))
	assert.Equal(t, args, &decoded)

	dataHash, err := args.DataHash()
	require.NoError(t, err)
	assert.Equal(t, keccak(keccak(encoded), []byte{0xf4, 0x01}), dataHash)

	expectedCreatorHash := keccak(auth, []byte{1}, []byte{0}, creator, []byte{0}, []byte{50})
	assert.Equal(t, expectedCreatorHash, args.CreatorHash())

	// Any change to the metadata changes the data hash
	args.Name = "Bar"
	changed, err := args.DataHash()
	require.NoError(t, err)
	assert.NotEqual(t, dataHash, changed)

	assert.Equal(t, ErrInvalidInstructionData, decoded.Unmarshal(append(encoded, 0)))
	assert.Equal(t, ErrInvalidInstructionData, decoded.Unmarshal(encoded[:len(encoded)-1]))
}

func TestLeafSchema_Hash(t *testing.T) {
	leaf := &LeafSchema{
		Id:          generateKey(t),
		Owner:       generateKey(t),
		Delegate:    generateKey(t),
		Nonce:       258,
		DataHash:    keccak([]byte("data")),
		CreatorHash: keccak([]byte("creators")),
	}

	expected := keccak(
		[]byte{1},
		leaf.Id,
		leaf.Owner,
		leaf.Delegate,
		[]byte{2, 1, 0, 0, 0, 0, 0, 0},
		leaf.DataHash,
		leaf.CreatorHash,
	)
	assert.Equal(t, expected, leaf.Hash())
	assert.Len(t, leaf.Hash(), 32)
}

func TestTreeConfigAccount(t *testing.T) {
	creator := generateKey(t)
	config := &TreeConfigAccount{
		TreeCreator:       creator,
		TreeDelegate:      creator,
		TotalMintCapacity: 1 << 14,
		NumMinted:         3,
	}

	data := config.Marshal()
	assert.Len(t, data, TreeConfigAccountSize)

	var decoded TreeConfigAccount
	require.NoError(t, decoded.Unmarshal(data))
	assert.Equal(t, config, &decoded)
	assert.True(t, decoded.HasAuthority(creator))
	assert.False(t, decoded.HasAuthority(generateKey(t)))
	assert.EqualValues(t, 1<<14-3, decoded.RemainingCapacity())

	data[0] = 0
	assert.Equal(t, ErrInvalidAccountData, decoded.Unmarshal(data))
	assert.Equal(t, ErrInvalidAccountData, decoded.Unmarshal(data[:10]))
}

func TestCreateTreeConfigInstruction(t *testing.T) {
	accounts := &CreateTreeConfigInstructionAccounts{
		TreeConfig:  generateKey(t),
		MerkleTree:  generateKey(t),
		Payer:       generateKey(t),
		TreeCreator: generateKey(t),
	}
	args := &CreateTreeConfigInstructionArgs{MaxDepth: 14, MaxBufferSize: 64}

	ix := NewCreateTreeConfigInstruction(accounts, args)
	assert.EqualValues(t, []byte{165, 83, 136, 142, 89, 202, 47, 220, 14, 0, 0, 0, 64, 0, 0, 0, 0}, ix.Data)
	require.Len(t, ix.Accounts, CreateTreeConfigInstructionAccountsCount)

	decodedAccounts, decodedArgs, err := DecodeCreateTreeConfigInstruction(ix)
	require.NoError(t, err)
	assert.Equal(t, accounts, decodedAccounts)
	assert.Equal(t, args, decodedArgs)

	public := true
	args.Public = &public
	ix = NewCreateTreeConfigInstruction(accounts, args)
	_, decodedArgs, err = DecodeCreateTreeConfigInstruction(ix)
	require.NoError(t, err)
	require.NotNil(t, decodedArgs.Public)
	assert.True(t, *decodedArgs.Public)
}

func TestMintToCollectionV1Instruction(t *testing.T) {
	auth := generateKey(t)
	payer := generateKey(t)

	accounts := &MintToCollectionV1InstructionAccounts{
		TreeConfig:            generateKey(t),
		LeafOwner:             payer,
		LeafDelegate:          payer,
		MerkleTree:            generateKey(t),
		Payer:                 payer,
		TreeCreatorOrDelegate: payer,
		CollectionAuthority:   auth,
		CollectionMint:        generateKey(t),
		CollectionMetadata:    generateKey(t),
		CollectionEdition:     generateKey(t),
		BubblegumSigner:       generateKey(t),
		RemainingAccounts: []solana.AccountMeta{
			solana.NewAccountMeta(auth, true),
		},
	}
	args := &MintToCollectionV1InstructionArgs{Metadata: *newTestMetadataArgs(t, auth, generateKey(t))}

	ix, err := NewMintToCollectionV1Instruction(accounts, args)
	require.NoError(t, err)
	require.Len(t, ix.Accounts, MintToCollectionV1InstructionAccountsCount+1)
	assert.EqualValues(t, PROGRAM_ID, ix.Accounts[7].PublicKey)
	assert.EqualValues(t, mintToCollectionV1InstructionDiscriminator, ix.Data[:8])

	decodedAccounts, decodedArgs, err := DecodeMintToCollectionV1Instruction(ix)
	require.NoError(t, err)
	assert.Equal(t, accounts, decodedAccounts)
	assert.Equal(t, args, decodedArgs)

	ix.Accounts = ix.Accounts[:MintToCollectionV1InstructionAccountsCount-1]
	_, _, err = DecodeMintToCollectionV1Instruction(ix)
	assert.Error(t, err)
}

func newTestMetadataArgs(t *testing.T, auth, creator ed25519.PublicKey) *MetadataArgs {
	editionNonce := uint8(0)
	tokenStandard := tokenmetadata.TokenStandardNonFungible
	return &MetadataArgs{
		Name:                 "Foo",
		Symbol:               "FOO",
		Uri:                  "https://example.com/foo.json",
		SellerFeeBasisPoints: 500,
		IsMutable:            true,
		EditionNonce:         &editionNonce,
		TokenStandard:        &tokenStandard,
		Collection:           &tokenmetadata.Collection{Verified: true, Key: generateKey(t)},
		TokenProgramVersion:  TokenProgramVersionOriginal,
		Creators: []tokenmetadata.Creator{
			{Address: auth, Verified: true, Share: 0},
			{Address: creator, Verified: false, Share: 50},
		},
	}
}

func generateKey(t *testing.T) ed25519.PublicKey {
	pub, _, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	return pub
}

func keccak(values ...[]byte) []byte {
	h := sha3.NewLegacyKeccak256()
	for _, v := range values {
		h.Write(v)
	}
	return h.Sum(nil)
}
