package cnftminter

import (
	"crypto/ed25519"
	"fmt"

	"github.com/mr-tron/base58"

	"github.com/code-payments/cnft-minter/pkg/cache"
	"github.com/code-payments/cnft-minter/pkg/solana"
)

var (
	AuthPrefix = []byte("auth")
)

// Derivations are pure, so results are cached by program, kind and name.
var addressCache = cache.New[derivedAddress](1_024)

type derivedAddress struct {
	address ed25519.PublicKey
	bump    uint8
}

type GetConfigAddressArgs struct {
	Program ed25519.PublicKey
	Name    string
}

// GetConfigAddress derives the collection config address from the collection
// name and the program id.
func GetConfigAddress(args *GetConfigAddressArgs) (ed25519.PublicKey, uint8, error) {
	return findCachedAddress("config", args.Program, args.Name, ConfigSeeds(args.Program, args.Name))
}

type GetAuthorityAddressArgs struct {
	Program ed25519.PublicKey
	Name    string
}

// GetAuthorityAddress derives the collection authority, which holds the
// collection NFT and signs as collection and update authority.
func GetAuthorityAddress(args *GetAuthorityAddressArgs) (ed25519.PublicKey, uint8, error) {
	return findCachedAddress("auth", args.Program, args.Name, AuthoritySeeds(args.Program, args.Name))
}

func ConfigSeeds(program ed25519.PublicKey, name string) [][]byte {
	return [][]byte{
		[]byte(name),
		program,
	}
}

func AuthoritySeeds(program ed25519.PublicKey, name string) [][]byte {
	return [][]byte{
		[]byte(name),
		AuthPrefix,
		program,
	}
}

func findCachedAddress(kind string, program ed25519.PublicKey, name string, seeds [][]byte) (ed25519.PublicKey, uint8, error) {
	key := fmt.Sprintf("%s:%s:%s", base58.Encode(program), kind, name)
	if cached, ok := addressCache.Retrieve(key); ok {
		return append(ed25519.PublicKey{}, cached.address...), cached.bump, nil
	}

	address, bump, err := solana.FindProgramAddressAndBump(program, seeds...)
	if err != nil {
		return nil, 0, err
	}

	// A concurrent derivation may have won the race, which is fine
	_ = addressCache.Insert(key, derivedAddress{address: append(ed25519.PublicKey{}, address...), bump: bump}, 1)
	return address, bump, nil
}
