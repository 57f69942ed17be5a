package system

// Default rent parameters of a cluster.
//
// Reference: https://github.com/solana-labs/solana/blob/master/sdk/program/src/rent.rs
const (
	AccountStorageOverhead     = 128
	DefaultLamportsPerByteYear = 3480
	DefaultExemptionThreshold  = 2
)

// MinimumBalanceForRentExemption returns the lamports an account holding size
// bytes of data must keep to be exempt from rent.
func MinimumBalanceForRentExemption(size uint64) uint64 {
	return (AccountStorageOverhead + size) * DefaultLamportsPerByteYear * DefaultExemptionThreshold
}
