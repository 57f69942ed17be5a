package compression

import (
	"bytes"
	"crypto/ed25519"

	"github.com/pkg/errors"

	"github.com/code-payments/cnft-minter/pkg/merkletree"
	"github.com/code-payments/cnft-minter/pkg/solana"
)

const AppendInstructionAccountsCount = 3

type AppendInstructionArgs struct {
	Leaf merkletree.Hash
}

type AppendInstructionAccounts struct {
	MerkleTree ed25519.PublicKey
	Authority  ed25519.PublicKey
	Noop       ed25519.PublicKey
}

func NewAppendInstruction(
	accounts *AppendInstructionAccounts,
	args *AppendInstructionArgs,
) solana.Instruction {
	return solana.Instruction{
		Program: PROGRAM_ADDRESS,

		// Instruction args
		Data: args.Marshal(),

		// Instruction accounts
		Accounts: []solana.AccountMeta{
			{
				PublicKey:  accounts.MerkleTree,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.Authority,
				IsWritable: false,
				IsSigner:   true,
			},
			{
				PublicKey:  accounts.Noop,
				IsWritable: false,
				IsSigner:   false,
			},
		},
	}
}

func (args *AppendInstructionArgs) Marshal() []byte {
	data := make([]byte, len(appendInstructionDiscriminator)+merkletree.NodeSize)
	copy(data, appendInstructionDiscriminator)
	copy(data[len(appendInstructionDiscriminator):], args.Leaf)
	return data
}

func (args *AppendInstructionArgs) Unmarshal(data []byte) error {
	if len(data) != len(appendInstructionDiscriminator)+merkletree.NodeSize {
		return ErrInvalidInstructionData
	}
	if !bytes.HasPrefix(data, appendInstructionDiscriminator) {
		return ErrInvalidInstructionData
	}

	args.Leaf = append(merkletree.Hash{}, data[len(appendInstructionDiscriminator):]...)
	return nil
}

func DecodeAppendInstruction(ix solana.Instruction) (*AppendInstructionAccounts, *AppendInstructionArgs, error) {
	if !bytes.Equal(ix.Program, PROGRAM_ID) {
		return nil, nil, ErrInvalidProgram
	}
	if len(ix.Accounts) != AppendInstructionAccountsCount {
		return nil, nil, errors.Errorf("invalid number of accounts: %d", len(ix.Accounts))
	}

	var args AppendInstructionArgs
	if err := args.Unmarshal(ix.Data); err != nil {
		return nil, nil, err
	}

	return &AppendInstructionAccounts{
		MerkleTree: ix.Accounts[0].PublicKey,
		Authority:  ix.Accounts[1].PublicKey,
		Noop:       ix.Accounts[2].PublicKey,
	}, &args, nil
}
