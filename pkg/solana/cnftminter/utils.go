package cnftminter

import (
	"bytes"
	"crypto/ed25519"

	bin "github.com/gagliardetto/binary"
	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
)

func encodeBorsh(fn func(enc *bin.Encoder) error) ([]byte, error) {
	var buf bytes.Buffer
	if err := fn(bin.NewBorshEncoder(&buf)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func putKey(enc *bin.Encoder, v ed25519.PublicKey) error {
	if len(v) != ed25519.PublicKeySize {
		return errors.Errorf("invalid key length: %d", len(v))
	}
	return enc.WriteBytes(v, false)
}

func getKey(dec *bin.Decoder) (ed25519.PublicKey, error) {
	b, err := dec.ReadNBytes(ed25519.PublicKeySize)
	if err != nil {
		return nil, err
	}
	return ed25519.PublicKey(append([]byte{}, b...)), nil
}

func mustBase58Decode(value string) []byte {
	decoded, err := base58.Decode(value)
	if err != nil {
		panic(err)
	}
	return decoded
}
