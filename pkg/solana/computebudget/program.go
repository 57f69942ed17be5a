package compute_budget

import (
	"bytes"
	"crypto/ed25519"
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/code-payments/cnft-minter/pkg/solana"
)

// ComputeBudget111111111111111111111111111111
var ProgramKey = ed25519.PublicKey{3, 6, 70, 111, 229, 33, 23, 50, 255, 236, 173, 186, 114, 195, 155, 231, 188, 140, 229, 187, 197, 247, 18, 107, 44, 67, 155, 58, 64, 0, 0, 0}

const (
	commandRequestUnits uint8 = iota
	commandRequestHeapFrame
	commandSetComputeUnitLimit
	commandSetComputeUnitPrice
)

const (
	MaxComputeUnitLimit     = 1_400_000
	DefaultComputeUnitLimit = 200_000
)

func SetComputeUnitLimit(computeUnitLimit uint32) solana.Instruction {
	data := make([]byte, 1+4)
	data[0] = commandSetComputeUnitLimit
	binary.LittleEndian.PutUint32(data[1:], computeUnitLimit)

	return solana.NewInstruction(
		ProgramKey[:],
		data,
	)
}

func SetComputeUnitPrice(computeUnitPrice uint64) solana.Instruction {
	data := make([]byte, 1+8)
	data[0] = commandSetComputeUnitPrice
	binary.LittleEndian.PutUint64(data[1:], computeUnitPrice)

	return solana.NewInstruction(
		ProgramKey[:],
		data,
	)
}

// Budget is the compute budget requested by a transaction.
type Budget struct {
	ComputeUnitLimit uint32
	ComputeUnitPrice uint64
}

// Apply folds a compute budget instruction into the budget. Requesting the
// same setting twice is rejected, as the runtime does.
func (b *Budget) Apply(ix solana.Instruction, seen map[uint8]bool) error {
	if !bytes.Equal(ix.Program, ProgramKey) {
		return solana.ErrIncorrectProgram
	}
	if len(ix.Data) == 0 {
		return solana.ErrInvalidInstructionData
	}
	if len(ix.Accounts) != 0 {
		return solana.ErrInvalidInstructionData
	}

	command := ix.Data[0]
	if seen[command] {
		return errors.Errorf("duplicate compute budget instruction: %d", command)
	}
	seen[command] = true

	switch command {
	case commandSetComputeUnitLimit:
		limit, err := ParseSetComputeUnitLimitIxnData(ix.Data)
		if err != nil {
			return solana.ErrInvalidInstructionData
		}
		if limit > MaxComputeUnitLimit {
			limit = MaxComputeUnitLimit
		}
		b.ComputeUnitLimit = limit
	case commandSetComputeUnitPrice:
		price, err := ParseSetComputeUnitPriceIxnData(ix.Data)
		if err != nil {
			return solana.ErrInvalidInstructionData
		}
		b.ComputeUnitPrice = price
	default:
		return solana.ErrInvalidInstructionData
	}

	return nil
}

func ParseSetComputeUnitLimitIxnData(data []byte) (uint32, error) {
	if len(data) != 5 {
		return 0, errors.New("invalid length")
	}

	if data[0] != commandSetComputeUnitLimit {
		return 0, errors.New("invalid instruction")
	}

	return binary.LittleEndian.Uint32(data[1:]), nil
}

func ParseSetComputeUnitPriceIxnData(data []byte) (uint64, error) {
	if len(data) != 9 {
		return 0, errors.New("invalid length")
	}

	if data[0] != commandSetComputeUnitPrice {
		return 0, errors.New("invalid instruction")
	}

	return binary.LittleEndian.Uint64(data[1:]), nil
}
