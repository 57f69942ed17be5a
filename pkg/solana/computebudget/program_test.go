package compute_budget

import (
	"testing"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/cnft-minter/pkg/solana"
)

func TestProgramKey(t *testing.T) {
	assert.Equal(t, "ComputeBudget111111111111111111111111111111", base58.Encode(ProgramKey))
}

func TestBudget_Apply(t *testing.T) {
	var budget Budget
	seen := make(map[uint8]bool)

	require.NoError(t, budget.Apply(SetComputeUnitLimit(400_000), seen))
	require.NoError(t, budget.Apply(SetComputeUnitPrice(10_000), seen))
	assert.EqualValues(t, 400_000, budget.ComputeUnitLimit)
	assert.EqualValues(t, 10_000, budget.ComputeUnitPrice)

	assert.Error(t, budget.Apply(SetComputeUnitPrice(1), seen))
	assert.EqualValues(t, 10_000, budget.ComputeUnitPrice)

	budget = Budget{}
	require.NoError(t, budget.Apply(SetComputeUnitLimit(2*MaxComputeUnitLimit), map[uint8]bool{}))
	assert.EqualValues(t, MaxComputeUnitLimit, budget.ComputeUnitLimit)

	assert.Equal(t, solana.ErrIncorrectProgram, budget.Apply(solana.NewInstruction(make([]byte, 32), []byte{2}), map[uint8]bool{}))
	assert.Equal(t, solana.ErrInvalidInstructionData, budget.Apply(solana.NewInstruction(ProgramKey, []byte{2, 1}), map[uint8]bool{}))
	assert.Equal(t, solana.ErrInvalidInstructionData, budget.Apply(solana.NewInstruction(ProgramKey, []byte{commandRequestHeapFrame}), map[uint8]bool{}))
}

func TestParse(t *testing.T) {
	limit, err := ParseSetComputeUnitLimitIxnData(SetComputeUnitLimit(123).Data)
	require.NoError(t, err)
	assert.EqualValues(t, 123, limit)

	price, err := ParseSetComputeUnitPriceIxnData(SetComputeUnitPrice(456).Data)
	require.NoError(t, err)
	assert.EqualValues(t, 456, price)

	_, err = ParseSetComputeUnitLimitIxnData(SetComputeUnitPrice(456).Data)
	assert.Error(t, err)
}
