package localnet

import (
	"bytes"
	"context"
	"crypto/ed25519"

	"github.com/code-payments/cnft-minter/pkg/solana"
	"github.com/code-payments/cnft-minter/pkg/solana/system"
)

func processSystem(_ context.Context, rt solana.Runtime, program ed25519.PublicKey, accounts []*solana.AccountInfo, data []byte) error {
	ix := asInstruction(program, accounts, data)

	if v, err := system.DecodeCreateAccount(ix); err == nil {
		return systemCreateAccount(rt, accounts[0], accounts[1], v.Lamports, v.Size, v.Owner)
	} else if err != solana.ErrIncorrectInstruction {
		return solana.ErrInvalidInstructionData
	}

	if v, err := system.DecodeTransfer(ix); err == nil {
		return systemTransfer(rt, accounts[0], accounts[1], v.Lamports)
	} else if err != solana.ErrIncorrectInstruction {
		return solana.ErrInvalidInstructionData
	}

	if v, err := system.DecodeAssign(ix); err == nil {
		return systemAssign(accounts[0], v.Owner)
	} else if err != solana.ErrIncorrectInstruction {
		return solana.ErrInvalidInstructionData
	}

	if v, err := system.DecodeAllocate(ix); err == nil {
		return systemAllocate(rt, accounts[0], v.Size)
	} else if err != solana.ErrIncorrectInstruction {
		return solana.ErrInvalidInstructionData
	}

	return solana.ErrInvalidInstructionData
}

func systemCreateAccount(rt solana.Runtime, from, to *solana.AccountInfo, lamports, size uint64, owner ed25519.PublicKey) error {
	if !from.IsSigner || !to.IsSigner {
		return solana.ErrMissingRequiredSignature
	}

	if to.Lamports > 0 || len(to.Data) > 0 || !bytes.Equal(to.Owner, system.SystemAccount) {
		rt.Log("Create Account: account Address { address: %s, base: None } already in use", encodeKey(to.Key))
		return system.ErrorAccountAlreadyInUse
	}

	if size > system.MaxPermittedDataLength {
		return system.ErrorInvalidAccountDataLength
	}

	if from.Lamports < lamports {
		rt.Log("Transfer: insufficient lamports %d, need %d", from.Lamports, lamports)
		return system.ErrorResultWithNegativeLamports
	}

	from.Lamports -= lamports
	to.Lamports += lamports
	to.Data = make([]byte, size)
	to.Owner = append(ed25519.PublicKey{}, owner...)

	return nil
}

func systemTransfer(rt solana.Runtime, from, to *solana.AccountInfo, lamports uint64) error {
	if !from.IsSigner {
		return solana.ErrMissingRequiredSignature
	}
	if len(from.Data) > 0 {
		rt.Log("Transfer: `from` must not carry data")
		return solana.ErrInvalidArgument
	}
	if from.Lamports < lamports {
		rt.Log("Transfer: insufficient lamports %d, need %d", from.Lamports, lamports)
		return system.ErrorResultWithNegativeLamports
	}

	from.Lamports -= lamports
	to.Lamports += lamports

	return nil
}

func systemAssign(account *solana.AccountInfo, owner ed25519.PublicKey) error {
	if bytes.Equal(account.Owner, owner) {
		return nil
	}
	if !account.IsSigner {
		return solana.ErrMissingRequiredSignature
	}

	account.Owner = append(ed25519.PublicKey{}, owner...)
	return nil
}

func systemAllocate(rt solana.Runtime, account *solana.AccountInfo, size uint64) error {
	if !account.IsSigner {
		return solana.ErrMissingRequiredSignature
	}
	if len(account.Data) > 0 || !bytes.Equal(account.Owner, system.SystemAccount) {
		rt.Log("Allocate: account Address { address: %s, base: None } already in use", encodeKey(account.Key))
		return system.ErrorAccountAlreadyInUse
	}
	if size > system.MaxPermittedDataLength {
		return system.ErrorInvalidAccountDataLength
	}

	account.Data = make([]byte, size)
	return nil
}
