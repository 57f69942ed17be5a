package localnet

import (
	"crypto/ed25519"
	"sort"

	"github.com/google/uuid"

	"github.com/code-payments/cnft-minter/pkg/solana"
	compute_budget "github.com/code-payments/cnft-minter/pkg/solana/computebudget"
)

// InnerInstruction is an instruction invoked by a program while processing a
// top level instruction.
type InnerInstruction struct {
	// StackHeight is 2 for instructions invoked by a top level instruction,
	// and increases with every nested invocation.
	StackHeight int
	Instruction solana.Instruction
}

// Receipt is the outcome of a processed transaction. Failed transactions still
// pay their fee and are recorded.
type Receipt struct {
	ID        uuid.UUID
	Signature string
	Slot      uint64
	Fee       uint64

	ComputeBudget compute_budget.Budget

	Logs []string

	// InnerInstructions is keyed by the index of the top level instruction.
	InnerInstructions map[int][]InnerInstruction

	Err *solana.TransactionError
}

// Succeeded reports whether the transaction committed.
func (r *Receipt) Succeeded() bool {
	return r.Err == nil
}

// InnerInstructionsFor returns every inner instruction that invoked program.
func (r *Receipt) InnerInstructionsFor(program ed25519.PublicKey) []InnerInstruction {
	indices := make([]int, 0, len(r.InnerInstructions))
	for index := range r.InnerInstructions {
		indices = append(indices, index)
	}
	sort.Ints(indices)

	var res []InnerInstruction
	for _, index := range indices {
		for _, inner := range r.InnerInstructions[index] {
			if solana.KeysEqual(inner.Instruction.Program, program) {
				res = append(res, inner)
			}
		}
	}
	return res
}
