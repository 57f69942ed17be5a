package localnet

import (
	"github.com/code-payments/cnft-minter/pkg/solana/bubblegum"
	"github.com/code-payments/cnft-minter/pkg/solana/compression"
	compute_budget "github.com/code-payments/cnft-minter/pkg/solana/computebudget"
	"github.com/code-payments/cnft-minter/pkg/solana/memo"
	"github.com/code-payments/cnft-minter/pkg/solana/system"
	"github.com/code-payments/cnft-minter/pkg/solana/token"
	"github.com/code-payments/cnft-minter/pkg/solana/tokenmetadata"
)

func (l *Ledger) builtins() []builtin {
	return []builtin{
		{id: system.SystemAccount, fn: processSystem},
		{id: token.ProgramKey, fn: processToken},
		{id: token.AssociatedTokenAccountProgramKey, fn: processAssociatedToken},
		{id: tokenmetadata.PROGRAM_ID, fn: processTokenMetadata},
		{id: bubblegum.PROGRAM_ID, fn: processBubblegum},
		{id: compression.PROGRAM_ID, fn: l.processCompression},
		{id: compression.NOOP_PROGRAM_ID, fn: processNoop},
		{id: memo.ProgramKey, fn: processMemo},
		{id: compute_budget.ProgramKey, fn: processComputeBudget},
	}
}
