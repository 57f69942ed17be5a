package localnet

import (
	"bytes"
	"crypto/ed25519"

	"github.com/code-payments/cnft-minter/pkg/solana"
)

// asInstruction rebuilds the instruction a program was invoked with, so the
// client side decoders can be used to parse it.
func asInstruction(program ed25519.PublicKey, accounts []*solana.AccountInfo, data []byte) solana.Instruction {
	ix := solana.Instruction{
		Program:  program,
		Data:     data,
		Accounts: make([]solana.AccountMeta, len(accounts)),
	}
	for i, info := range accounts {
		ix.Accounts[i] = solana.AccountMeta{
			PublicKey:  info.Key,
			IsSigner:   info.IsSigner,
			IsWritable: info.IsWritable,
		}
	}
	return ix
}

func isSigner(accounts []*solana.AccountInfo, pub ed25519.PublicKey) bool {
	for _, info := range accounts {
		if info.IsSigner && bytes.Equal(info.Key, pub) {
			return true
		}
	}
	return false
}
