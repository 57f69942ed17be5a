package localnet

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"encoding/binary"

	"github.com/code-payments/cnft-minter/pkg/merkletree"
	"github.com/code-payments/cnft-minter/pkg/solana"
	"github.com/code-payments/cnft-minter/pkg/solana/compression"
)

// processCompression handles the account compression program. Tree state is
// stored with every leaf so the root can be recomputed on each append.
func (l *Ledger) processCompression(ctx context.Context, rt solana.Runtime, program ed25519.PublicKey, accounts []*solana.AccountInfo, data []byte) error {
	ix := asInstruction(program, accounts, data)

	if _, args, err := compression.DecodeInitEmptyMerkleTreeInstruction(ix); err == nil {
		rt.Log("Instruction: InitEmptyMerkleTree")
		return l.compressionInit(ctx, rt, program, accounts, args)
	}

	if _, args, err := compression.DecodeAppendInstruction(ix); err == nil {
		rt.Log("Instruction: Append")
		return compressionAppend(ctx, rt, program, accounts, args)
	}

	return solana.ErrInvalidInstructionData
}

func (l *Ledger) compressionInit(ctx context.Context, rt solana.Runtime, program ed25519.PublicKey, accounts []*solana.AccountInfo, args *compression.InitEmptyMerkleTreeInstructionArgs) error {
	treeInfo, authority := accounts[0], accounts[1]

	if !bytes.Equal(treeInfo.Owner, program) {
		return compression.ErrorIncorrectAccountOwner
	}
	if !authority.IsSigner {
		return solana.ErrMissingRequiredSignature
	}

	size, err := compression.GetMerkleTreeAccountSize(args.MaxDepth, args.MaxBufferSize)
	if err != nil {
		return compression.ErrorConcurrentMerkleTreeConstantsError
	}
	if uint64(len(treeInfo.Data)) != size {
		rt.Log("Account size mismatch, expected %d got %d", size, len(treeInfo.Data))
		return compression.ErrorConcurrentMerkleTreeConstantsError
	}
	if compression.AccountType(treeInfo.Data[0]) != compression.AccountTypeUninitialized {
		return compression.ErrorIncorrectAccountType
	}

	tree, err := compression.NewMerkleTreeAccount(args.MaxDepth, args.MaxBufferSize, authority.Key, l.slot)
	if err != nil {
		return compression.ErrorConcurrentMerkleTreeConstantsError
	}

	return writeTree(ctx, rt, treeInfo, tree, 0)
}

func compressionAppend(ctx context.Context, rt solana.Runtime, program ed25519.PublicKey, accounts []*solana.AccountInfo, args *compression.AppendInstructionArgs) error {
	treeInfo, authority := accounts[0], accounts[1]

	if !bytes.Equal(treeInfo.Owner, program) {
		return compression.ErrorIncorrectAccountOwner
	}

	var tree compression.MerkleTreeAccount
	if err := tree.Unmarshal(treeInfo.Data); err != nil {
		return compression.ErrorIncorrectAccountType
	}

	if !authority.IsSigner || !bytes.Equal(tree.Authority, authority.Key) {
		return compression.ErrorIncorrectAuthority
	}

	index := uint32(len(tree.Leaves))
	if err := tree.Append(args.Leaf); err == merkletree.ErrMerkleTreeFull {
		rt.Log("Tree is full")
		return compression.ErrorConcurrentMerkleTreeError
	} else if err != nil {
		return compression.ErrorIncorrectLeafLength
	}

	return writeTree(ctx, rt, treeInfo, &tree, index)
}

// writeTree persists the tree and emits its change log through the noop
// program so indexers can follow along.
func writeTree(ctx context.Context, rt solana.Runtime, info *solana.AccountInfo, tree *compression.MerkleTreeAccount, index uint32) error {
	data, err := tree.Marshal()
	if err != nil {
		return compression.ErrorZeroCopyError
	}
	copy(info.Data, data)

	event := make([]byte, 0, 32+32+8+4)
	event = append(event, info.Key...)
	event = append(event, tree.Root...)
	event = binary.LittleEndian.AppendUint64(event, tree.Sequence)
	event = binary.LittleEndian.AppendUint32(event, index)

	return rt.InvokeSigned(ctx, solana.NewInstruction(compression.NOOP_PROGRAM_ID, event))
}
