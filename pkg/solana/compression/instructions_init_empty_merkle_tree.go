package compression

import (
	"bytes"
	"crypto/ed25519"

	bin "github.com/gagliardetto/binary"
	"github.com/pkg/errors"

	"github.com/code-payments/cnft-minter/pkg/solana"
)

const InitEmptyMerkleTreeInstructionAccountsCount = 3

type InitEmptyMerkleTreeInstructionArgs struct {
	MaxDepth      uint32
	MaxBufferSize uint32
}

type InitEmptyMerkleTreeInstructionAccounts struct {
	MerkleTree ed25519.PublicKey
	Authority  ed25519.PublicKey
	Noop       ed25519.PublicKey
}

func NewInitEmptyMerkleTreeInstruction(
	accounts *InitEmptyMerkleTreeInstructionAccounts,
	args *InitEmptyMerkleTreeInstructionArgs,
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

func (args *InitEmptyMerkleTreeInstructionArgs) Marshal() []byte {
	var buf bytes.Buffer
	enc := bin.NewBorshEncoder(&buf)

	_ = enc.WriteBytes(initEmptyMerkleTreeInstructionDiscriminator, false)
	_ = enc.WriteUint32(args.MaxDepth, bin.LE)
	_ = enc.WriteUint32(args.MaxBufferSize, bin.LE)

	return buf.Bytes()
}

func (args *InitEmptyMerkleTreeInstructionArgs) Unmarshal(data []byte) error {
	if !bytes.HasPrefix(data, initEmptyMerkleTreeInstructionDiscriminator) {
		return ErrInvalidInstructionData
	}

	dec := bin.NewBorshDecoder(data[len(initEmptyMerkleTreeInstructionDiscriminator):])

	var err error
	if args.MaxDepth, err = dec.ReadUint32(bin.LE); err != nil {
		return ErrInvalidInstructionData
	}
	if args.MaxBufferSize, err = dec.ReadUint32(bin.LE); err != nil {
		return ErrInvalidInstructionData
	}
	return nil
}

func DecodeInitEmptyMerkleTreeInstruction(ix solana.Instruction) (*InitEmptyMerkleTreeInstructionAccounts, *InitEmptyMerkleTreeInstructionArgs, error) {
	if !bytes.Equal(ix.Program, PROGRAM_ID) {
		return nil, nil, ErrInvalidProgram
	}
	if len(ix.Accounts) != InitEmptyMerkleTreeInstructionAccountsCount {
		return nil, nil, errors.Errorf("invalid number of accounts: %d", len(ix.Accounts))
	}

	var args InitEmptyMerkleTreeInstructionArgs
	if err := args.Unmarshal(ix.Data); err != nil {
		return nil, nil, err
	}

	return &InitEmptyMerkleTreeInstructionAccounts{
		MerkleTree: ix.Accounts[0].PublicKey,
		Authority:  ix.Accounts[1].PublicKey,
		Noop:       ix.Accounts[2].PublicKey,
	}, &args, nil
}
