package tokenmetadata

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

func putOptionalKey(enc *bin.Encoder, v ed25519.PublicKey) error {
	if err := enc.WriteBool(len(v) > 0); err != nil || len(v) == 0 {
		return err
	}
	return putKey(enc, v)
}
func getOptionalKey(dec *bin.Decoder) (ed25519.PublicKey, error) {
	present, err := dec.ReadBool()
	if err != nil || !present {
		return nil, err
	}
	return getKey(dec)
}

func putOptionalUint8(enc *bin.Encoder, v *uint8) error {
	if err := enc.WriteBool(v != nil); err != nil || v == nil {
		return err
	}
	return enc.WriteUint8(*v)
}
func getOptionalUint8(dec *bin.Decoder) (*uint8, error) {
	present, err := dec.ReadBool()
	if err != nil || !present {
		return nil, err
	}
	v, err := dec.ReadUint8()
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func putOptionalUint64(enc *bin.Encoder, v *uint64) error {
	if err := enc.WriteBool(v != nil); err != nil || v == nil {
		return err
	}
	return enc.WriteUint64(*v, bin.LE)
}
func getOptionalUint64(dec *bin.Decoder) (*uint64, error) {
	present, err := dec.ReadBool()
	if err != nil || !present {
		return nil, err
	}
	v, err := dec.ReadUint64(bin.LE)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// putNone writes an absent optional value.
func putNone(enc *bin.Encoder) error {
	return enc.WriteBool(false)
}

// getNone reads an optional value this package never populates, failing if
// one is present.
func getNone(dec *bin.Decoder, field string) error {
	present, err := dec.ReadBool()
	if err != nil {
		return err
	}
	if present {
		return errors.Errorf("unsupported %s", field)
	}
	return nil
}

func mustBase58Decode(value string) []byte {
	decoded, err := base58.Decode(value)
	if err != nil {
		panic(err)
	}
	return decoded
}
