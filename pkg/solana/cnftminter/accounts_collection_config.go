package cnftminter

import (
	"crypto/ed25519"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

const (
	// CollectionConfigAccountSize is the fixed capacity allocated for a
	// config record. Encoded records are shorter and zero padded.
	CollectionConfigAccountSize = 1400

	MaxSellerFeeBasisPoints = 10000
	MaxCreatorShare         = 100
)

var ErrConfigTooLarge = errors.New("encoded config exceeds account capacity")

// CollectionConfigAccount is the persistent per-collection record stored at
// the config address.
type CollectionConfigAccount struct {
	Name          string
	Symbol        string
	Uri           string
	AuthPda       ed25519.PublicKey
	Sfbp          uint16
	CollectionKey ed25519.PublicKey
	Creator1      ed25519.PublicKey
	Creator1Cut   uint8
	UpdateAuth    ed25519.PublicKey
	MerkleTree    ed25519.PublicKey
}

func (obj *CollectionConfigAccount) Marshal() ([]byte, error) {
	return encodeBorsh(func(enc *bin.Encoder) error {
		if err := enc.WriteString(obj.Name); err != nil {
			return err
		}
		if err := enc.WriteString(obj.Symbol); err != nil {
			return err
		}
		if err := enc.WriteString(obj.Uri); err != nil {
			return err
		}
		if err := putKey(enc, obj.AuthPda); err != nil {
			return err
		}
		if err := enc.WriteUint16(obj.Sfbp, bin.LE); err != nil {
			return err
		}
		if err := putKey(enc, obj.CollectionKey); err != nil {
			return err
		}
		if err := putKey(enc, obj.Creator1); err != nil {
			return err
		}
		if err := enc.WriteUint8(obj.Creator1Cut); err != nil {
			return err
		}
		if err := putKey(enc, obj.UpdateAuth); err != nil {
			return err
		}
		return putKey(enc, obj.MerkleTree)
	})
}

// MarshalInto writes the record at the start of dst, which is the account's
// full data buffer. Bytes past the record are left untouched.
func (obj *CollectionConfigAccount) MarshalInto(dst []byte) error {
	encoded, err := obj.Marshal()
	if err != nil {
		return err
	}
	if len(encoded) > len(dst) {
		return ErrConfigTooLarge
	}
	copy(dst, encoded)
	return nil
}

// Unmarshal decodes a record from the start of data. Trailing bytes, such as
// the unused capacity of the account, are ignored.
func (obj *CollectionConfigAccount) Unmarshal(data []byte) error {
	_, err := obj.unmarshal(data)
	return err
}

// UnmarshalStrict decodes a record that must span all of data.
func (obj *CollectionConfigAccount) UnmarshalStrict(data []byte) error {
	remaining, err := obj.unmarshal(data)
	if err != nil {
		return err
	}
	if remaining != 0 {
		return ErrInvalidInstructionData
	}
	return nil
}

func (obj *CollectionConfigAccount) unmarshal(data []byte) (int, error) {
	dec := bin.NewBorshDecoder(data)

	var err error
	if obj.Name, err = dec.ReadString(); err != nil {
		return 0, ErrInvalidAccountData
	}
	if obj.Symbol, err = dec.ReadString(); err != nil {
		return 0, ErrInvalidAccountData
	}
	if obj.Uri, err = dec.ReadString(); err != nil {
		return 0, ErrInvalidAccountData
	}
	if obj.AuthPda, err = getKey(dec); err != nil {
		return 0, ErrInvalidAccountData
	}
	if obj.Sfbp, err = dec.ReadUint16(bin.LE); err != nil {
		return 0, ErrInvalidAccountData
	}
	if obj.CollectionKey, err = getKey(dec); err != nil {
		return 0, ErrInvalidAccountData
	}
	if obj.Creator1, err = getKey(dec); err != nil {
		return 0, ErrInvalidAccountData
	}
	if obj.Creator1Cut, err = dec.ReadUint8(); err != nil {
		return 0, ErrInvalidAccountData
	}
	if obj.UpdateAuth, err = getKey(dec); err != nil {
		return 0, ErrInvalidAccountData
	}
	if obj.MerkleTree, err = getKey(dec); err != nil {
		return 0, ErrInvalidAccountData
	}

	return dec.Remaining(), nil
}

// Validate checks the record's royalty settings.
func (obj *CollectionConfigAccount) Validate() error {
	if obj.Sfbp >= MaxSellerFeeBasisPoints {
		return ErrorInvalidSfbp
	}
	if obj.Creator1Cut > MaxCreatorShare {
		return ErrorInvalidCreatorShare
	}
	return nil
}

func (obj *CollectionConfigAccount) String() string {
	return fmt.Sprintf(
		"CollectionConfig{name=%s,symbol=%s,uri=%s,auth_pda=%s,royalty=%s%%,collection_key=%s,creator_1=%s,creator_1_cut=%d,update_auth=%s,merkle_tree=%s}",
		obj.Name,
		obj.Symbol,
		obj.Uri,
		base58.Encode(obj.AuthPda),
		RoyaltyPercent(obj.Sfbp).String(),
		base58.Encode(obj.CollectionKey),
		base58.Encode(obj.Creator1),
		obj.Creator1Cut,
		base58.Encode(obj.UpdateAuth),
		base58.Encode(obj.MerkleTree),
	)
}

// RoyaltyPercent converts seller fee basis points into a percentage.
func RoyaltyPercent(sfbp uint16) decimal.Decimal {
	return decimal.New(int64(sfbp), -2)
}
