package cnftminter

import (
	"github.com/code-payments/cnft-minter/pkg/solana"
)

// Custom error codes returned by the program
const (
	// Seller fee basis points must be below 10000
	ErrorInvalidSfbp solana.CustomError = iota

	// Supplied authority address doesn't match its derivation
	ErrorAuthKeyFailure

	// Supplied config address doesn't match its derivation
	ErrorInvalidConfigAccount

	// Creator share exceeds 100
	ErrorInvalidCreatorShare

	// Signer isn't the update authority of an existing config
	ErrorUpdateAuthorityMismatch
)

var errorNames = map[solana.CustomError]string{
	ErrorInvalidSfbp:             "sfbp must be less than 10000",
	ErrorAuthKeyFailure:          "authority key mismatch",
	ErrorInvalidConfigAccount:    "invalid config account",
	ErrorInvalidCreatorShare:     "creator share exceeds 100",
	ErrorUpdateAuthorityMismatch: "update authority mismatch",
}

// ErrorMessage returns the human readable message for a program error code.
func ErrorMessage(code solana.CustomError) string {
	if msg, ok := errorNames[code]; ok {
		return msg
	}
	return code.Error()
}
