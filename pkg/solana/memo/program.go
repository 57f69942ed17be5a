package memo

import (
	"bytes"
	"crypto/ed25519"
	"unicode/utf8"

	"github.com/pkg/errors"

	"github.com/code-payments/cnft-minter/pkg/solana"
)

// ProgramKey is the address of the memo program.
//
// Current key: Memo1UhkJRfHyvLMcVucJwxXeuD728EqVDDwQDxFMNo
var ProgramKey = ed25519.PublicKey{5, 74, 83, 80, 248, 93, 200, 130, 214, 20, 165, 86, 114, 120, 138, 41, 109, 223, 30, 171, 171, 208, 166, 6, 120, 136, 73, 50, 244, 238, 246, 160}

var ErrInvalidUTF8 = errors.New("memo is not valid utf-8")

// Instruction returns a memo instruction. Signers, when provided, must sign
// the transaction for the memo to be accepted.
//
// Reference: https://github.com/solana-labs/solana-program-library/blob/master/memo/program/src/entrypoint.rs
func Instruction(data string, signers ...ed25519.PublicKey) solana.Instruction {
	accounts := make([]solana.AccountMeta, len(signers))
	for i, signer := range signers {
		accounts[i] = solana.NewReadonlyAccountMeta(signer, true)
	}

	return solana.NewInstruction(
		ProgramKey,
		[]byte(data),
		accounts...,
	)
}

type DecompiledMemo struct {
	Data    []byte
	Signers []ed25519.PublicKey
}

func DecompileMemo(m solana.Message, index int) (*DecompiledMemo, error) {
	ix, err := m.Decompile(index)
	if err != nil {
		return nil, err
	}
	return DecodeMemo(ix)
}

func DecodeMemo(ix solana.Instruction) (*DecompiledMemo, error) {
	if !bytes.Equal(ix.Program, ProgramKey) {
		return nil, solana.ErrIncorrectProgram
	}
	if !utf8.Valid(ix.Data) {
		return nil, ErrInvalidUTF8
	}

	decompiled := &DecompiledMemo{Data: ix.Data}
	for _, account := range ix.Accounts {
		decompiled.Signers = append(decompiled.Signers, account.PublicKey)
	}
	return decompiled, nil
}
