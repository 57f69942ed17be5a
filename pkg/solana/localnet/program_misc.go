package localnet

import (
	"context"
	"crypto/ed25519"

	"github.com/code-payments/cnft-minter/pkg/solana"
	"github.com/code-payments/cnft-minter/pkg/solana/memo"
)

// processNoop accepts anything. Its instruction data ends up in the inner
// instructions of the receipt, which is the point.
func processNoop(context.Context, solana.Runtime, ed25519.PublicKey, []*solana.AccountInfo, []byte) error {
	return nil
}

func processMemo(_ context.Context, rt solana.Runtime, program ed25519.PublicKey, accounts []*solana.AccountInfo, data []byte) error {
	decoded, err := memo.DecodeMemo(asInstruction(program, accounts, data))
	if err != nil {
		rt.Log("Invalid UTF-8, from byte 0")
		return solana.ErrInvalidInstructionData
	}

	for _, info := range accounts {
		if !info.IsSigner {
			rt.Log("Missing required signature for %s", encodeKey(info.Key))
			return solana.ErrMissingRequiredSignature
		}
		rt.Log("Signed by %s", encodeKey(info.Key))
	}

	rt.Log("Memo (len %d): %q", len(decoded.Data), string(decoded.Data))
	return nil
}

// processComputeBudget has nothing to do at execution time, since budgets are
// resolved before the transaction runs.
func processComputeBudget(context.Context, solana.Runtime, ed25519.PublicKey, []*solana.AccountInfo, []byte) error {
	return nil
}
