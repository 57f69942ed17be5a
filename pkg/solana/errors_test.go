package solana

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	d := json.NewDecoder(bytes.NewBufferString(`{"InstructionError":[2,{"Custom":3}]}`))

	var raw interface{}
	assert.NoError(t, d.Decode(&raw))

	e, err := ParseTransactionError(raw)
	assert.NoError(t, err)

	assert.Equal(t, TransactionErrorInstructionError, e.ErrorKey())
	assert.NotNil(t, e.InstructionError())
	assert.Equal(t, 2, e.InstructionError().Index)
	assert.Equal(t, InstructionErrorCustom, e.InstructionError().ErrorKey())
	assert.NotNil(t, e.InstructionError().CustomError())
	assert.Equal(t, CustomError(3), *e.InstructionError().CustomError())

	d = json.NewDecoder(bytes.NewBufferString(`{"InstructionError":[0,"InvalidArgument"]}`))
	assert.NoError(t, d.Decode(&raw))

	e, err = ParseTransactionError(raw)
	assert.NoError(t, err)

	assert.Equal(t, TransactionErrorInstructionError, e.ErrorKey())
	assert.NotNil(t, e.InstructionError())
	assert.Equal(t, 0, e.InstructionError().Index)
	assert.Equal(t, InstructionErrorInvalidArgument, e.InstructionError().ErrorKey())

	d = json.NewDecoder(bytes.NewBufferString(`"DuplicateSignature"`))
	assert.NoError(t, d.Decode(&raw))

	e, err = ParseTransactionError(raw)
	assert.NoError(t, err)

	assert.Equal(t, TransactionErrorDuplicateSignature, e.ErrorKey())
	assert.Nil(t, e.InstructionError())
}

func TestNew(t *testing.T) {
	d := json.NewDecoder(bytes.NewBufferString(`"DuplicateSignature"`))
	var expected interface{}
	assert.NoError(t, d.Decode(&expected))

	e := NewTransactionError(TransactionErrorDuplicateSignature)
	assert.Equal(t, expected, e.raw)

	d = json.NewDecoder(bytes.NewBufferString(`{"InstructionError":[0,"InvalidArgument"]}`))
	assert.NoError(t, d.Decode(&expected))
	e, err := TransactionErrorFromInstructionError(&InstructionError{
		Index: 0,
		Err:   errors.New(string(InstructionErrorInvalidArgument)),
	})
	assert.NoError(t, err)
	assert.Equal(t, expected, e.raw)

	d = json.NewDecoder(bytes.NewBufferString(`{"InstructionError":[2,{"Custom":3}]}`))
	assert.NoError(t, d.Decode(&expected))
	e, err = TransactionErrorFromInstructionError(&InstructionError{
		Index: 2,
		Err:   CustomError(3),
	})
	assert.NoError(t, err)
	assert.Equal(t, expected, e.raw)
}

func TestParseJSONNumber(t *testing.T) {
	tc := []interface{}{
		"1",
		1.0,
		json.Number("1"),
	}
	for i, c := range tc {
		v, err := parseJSONNumber(c)
		assert.NoError(t, err)
		assert.Equal(t, 1, v, i)
	}
}

func TestToProgramError(t *testing.T) {
	assert.Nil(t, ToProgramError(nil))

	assert.Equal(t, CustomError(2), ToProgramError(CustomError(2)))
	assert.Equal(t, CustomError(2), ToProgramError(errors.Wrap(CustomError(2), "wrapped")))
	assert.Equal(t, ErrInvalidArgument, ToProgramError(errors.Wrap(ErrInvalidArgument, "wrapped")))

	assert.Equal(t, ErrMaxSeedLengthExceededKey, ToProgramError(ErrMaxSeedLengthExceeded))
	assert.Equal(t, ErrInvalidSeeds, ToProgramError(ErrTooManySeeds))
	assert.Equal(t, ErrInvalidSeeds, ToProgramError(errors.Wrap(ErrBumpSeedNotFound, "derive")))

	assert.Equal(t, ErrGenericError, ToProgramError(errors.New("something else")))
}

func TestInstructionError_ProgramErrorRoundTrip(t *testing.T) {
	txErr, err := TransactionErrorFromInstructionError(&InstructionError{
		Index: 1,
		Err:   ErrMissingRequiredSignature,
	})
	require.NoError(t, err)

	raw, err := txErr.JSONString()
	require.NoError(t, err)

	var decoded interface{}
	require.NoError(t, json.Unmarshal([]byte(raw), &decoded))

	parsed, err := ParseTransactionError(decoded)
	require.NoError(t, err)
	require.NotNil(t, parsed.InstructionError())
	assert.Equal(t, 1, parsed.InstructionError().Index)
	assert.Equal(t, ErrMissingRequiredSignature, parsed.InstructionError().Err)
	assert.Equal(t, InstructionErrorMissingRequiredSignature, parsed.InstructionError().ErrorKey())
}
