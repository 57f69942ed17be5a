package bubblegum

import (
	"bytes"
	"crypto/ed25519"

	bin "github.com/gagliardetto/binary"
	"github.com/mr-tron/base58"
	"github.com/pkg/errors"

	"github.com/code-payments/cnft-minter/pkg/solana/tokenmetadata"
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

func putOptionalBool(enc *bin.Encoder, v *bool) error {
	if err := enc.WriteBool(v != nil); err != nil || v == nil {
		return err
	}
	return enc.WriteBool(*v)
}
func getOptionalBool(dec *bin.Decoder) (*bool, error) {
	present, err := dec.ReadBool()
	if err != nil || !present {
		return nil, err
	}
	v, err := dec.ReadBool()
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func putOptionalCollection(enc *bin.Encoder, v *tokenmetadata.Collection) error {
	if err := enc.WriteBool(v != nil); err != nil || v == nil {
		return err
	}
	if err := enc.WriteBool(v.Verified); err != nil {
		return err
	}
	return putKey(enc, v.Key)
}
func getOptionalCollection(dec *bin.Decoder) (*tokenmetadata.Collection, error) {
	present, err := dec.ReadBool()
	if err != nil || !present {
		return nil, err
	}

	var v tokenmetadata.Collection
	if v.Verified, err = dec.ReadBool(); err != nil {
		return nil, err
	}
	if v.Key, err = getKey(dec); err != nil {
		return nil, err
	}
	return &v, nil
}

func putCreators(enc *bin.Encoder, creators []tokenmetadata.Creator) error {
	if err := enc.WriteUint32(uint32(len(creators)), bin.LE); err != nil {
		return err
	}
	for _, c := range creators {
		if err := putKey(enc, c.Address); err != nil {
			return err
		}
		if err := enc.WriteBool(c.Verified); err != nil {
			return err
		}
		if err := enc.WriteUint8(c.Share); err != nil {
			return err
		}
	}
	return nil
}
func getCreators(dec *bin.Decoder) ([]tokenmetadata.Creator, error) {
	n, err := dec.ReadUint32(bin.LE)
	if err != nil {
		return nil, err
	}
	if n > tokenmetadata.MaxCreatorLimit {
		return nil, errors.Errorf("too many creators: %d", n)
	}

	creators := make([]tokenmetadata.Creator, n)
	for i := range creators {
		if creators[i].Address, err = getKey(dec); err != nil {
			return nil, err
		}
		if creators[i].Verified, err = dec.ReadBool(); err != nil {
			return nil, err
		}
		if creators[i].Share, err = dec.ReadUint8(); err != nil {
			return nil, err
		}
	}
	return creators, nil
}

func mustBase58Decode(value string) []byte {
	decoded, err := base58.Decode(value)
	if err != nil {
		panic(err)
	}
	return decoded
}
