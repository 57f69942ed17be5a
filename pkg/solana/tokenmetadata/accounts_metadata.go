package tokenmetadata

import (
	"crypto/ed25519"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/mr-tron/base58"
)

// MetadataAccount is the metadata record of a mint. Strings are stored
// unpadded.
type MetadataAccount struct {
	UpdateAuthority ed25519.PublicKey
	Mint            ed25519.PublicKey

	Name                 string
	Symbol               string
	Uri                  string
	SellerFeeBasisPoints uint16
	Creators             []Creator

	PrimarySaleHappened bool
	IsMutable           bool
	EditionNonce        *uint8
	TokenStandard       *TokenStandard
	Collection          *Collection
	CollectionDetails   *CollectionDetails
}

func (obj *MetadataAccount) Marshal() ([]byte, error) {
	return encodeBorsh(func(enc *bin.Encoder) error {
		if err := enc.WriteUint8(uint8(KeyMetadataV1)); err != nil {
			return err
		}
		if err := putKey(enc, obj.UpdateAuthority); err != nil {
			return err
		}
		if err := putKey(enc, obj.Mint); err != nil {
			return err
		}
		if err := enc.WriteString(obj.Name); err != nil {
			return err
		}
		if err := enc.WriteString(obj.Symbol); err != nil {
			return err
		}
		if err := enc.WriteString(obj.Uri); err != nil {
			return err
		}
		if err := enc.WriteUint16(obj.SellerFeeBasisPoints, bin.LE); err != nil {
			return err
		}
		if err := putOptionalCreators(enc, obj.Creators); err != nil {
			return err
		}
		if err := enc.WriteBool(obj.PrimarySaleHappened); err != nil {
			return err
		}
		if err := enc.WriteBool(obj.IsMutable); err != nil {
			return err
		}
		if err := putOptionalUint8(enc, obj.EditionNonce); err != nil {
			return err
		}
		var tokenStandard *uint8
		if obj.TokenStandard != nil {
			v := uint8(*obj.TokenStandard)
			tokenStandard = &v
		}
		if err := putOptionalUint8(enc, tokenStandard); err != nil {
			return err
		}
		if err := putOptionalCollection(enc, obj.Collection); err != nil {
			return err
		}
		// Uses
		if err := putNone(enc); err != nil {
			return err
		}
		return putOptionalCollectionDetails(enc, obj.CollectionDetails)
	})
}

func (obj *MetadataAccount) Unmarshal(data []byte) error {
	dec := bin.NewBorshDecoder(data)

	key, err := dec.ReadUint8()
	if err != nil || Key(key) != KeyMetadataV1 {
		return ErrInvalidAccountData
	}

	if obj.UpdateAuthority, err = getKey(dec); err != nil {
		return ErrInvalidAccountData
	}
	if obj.Mint, err = getKey(dec); err != nil {
		return ErrInvalidAccountData
	}
	if obj.Name, err = dec.ReadString(); err != nil {
		return ErrInvalidAccountData
	}
	if obj.Symbol, err = dec.ReadString(); err != nil {
		return ErrInvalidAccountData
	}
	if obj.Uri, err = dec.ReadString(); err != nil {
		return ErrInvalidAccountData
	}
	if obj.SellerFeeBasisPoints, err = dec.ReadUint16(bin.LE); err != nil {
		return ErrInvalidAccountData
	}
	if obj.Creators, err = getOptionalCreators(dec); err != nil {
		return ErrInvalidAccountData
	}
	if obj.PrimarySaleHappened, err = dec.ReadBool(); err != nil {
		return ErrInvalidAccountData
	}
	if obj.IsMutable, err = dec.ReadBool(); err != nil {
		return ErrInvalidAccountData
	}
	if obj.EditionNonce, err = getOptionalUint8(dec); err != nil {
		return ErrInvalidAccountData
	}
	tokenStandard, err := getOptionalUint8(dec)
	if err != nil {
		return ErrInvalidAccountData
	}
	obj.TokenStandard = nil
	if tokenStandard != nil {
		v := TokenStandard(*tokenStandard)
		obj.TokenStandard = &v
	}
	if obj.Collection, err = getOptionalCollection(dec); err != nil {
		return ErrInvalidAccountData
	}
	if err = getNone(dec, "uses"); err != nil {
		return ErrInvalidAccountData
	}
	if obj.CollectionDetails, err = getOptionalCollectionDetails(dec); err != nil {
		return ErrInvalidAccountData
	}

	return nil
}

func (obj *MetadataAccount) String() string {
	return fmt.Sprintf(
		"MetadataAccount{update_authority=%s,mint=%s,name=%s,symbol=%s,uri=%s,seller_fee_basis_points=%d,creators=%v,is_mutable=%v}",
		base58.Encode(obj.UpdateAuthority),
		base58.Encode(obj.Mint),
		obj.Name,
		obj.Symbol,
		obj.Uri,
		obj.SellerFeeBasisPoints,
		obj.Creators,
		obj.IsMutable,
	)
}

// MasterEditionAccount proves a mint is a one of one that can only be printed
// up to MaxSupply.
type MasterEditionAccount struct {
	Supply    uint64
	MaxSupply *uint64
}

func (obj *MasterEditionAccount) Marshal() ([]byte, error) {
	return encodeBorsh(func(enc *bin.Encoder) error {
		if err := enc.WriteUint8(uint8(KeyMasterEditionV2)); err != nil {
			return err
		}
		if err := enc.WriteUint64(obj.Supply, bin.LE); err != nil {
			return err
		}
		return putOptionalUint64(enc, obj.MaxSupply)
	})
}

func (obj *MasterEditionAccount) Unmarshal(data []byte) error {
	dec := bin.NewBorshDecoder(data)

	key, err := dec.ReadUint8()
	if err != nil || Key(key) != KeyMasterEditionV2 {
		return ErrInvalidAccountData
	}
	if obj.Supply, err = dec.ReadUint64(bin.LE); err != nil {
		return ErrInvalidAccountData
	}
	if obj.MaxSupply, err = getOptionalUint64(dec); err != nil {
		return ErrInvalidAccountData
	}
	return nil
}
