package tokenmetadata

import (
	"crypto/ed25519"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
)

type Key uint8

const (
	KeyUninitialized Key = iota
	KeyEditionV1
	KeyMasterEditionV1
	KeyReservationListV1
	KeyMetadataV1
	KeyReservationListV2
	KeyMasterEditionV2
)

type TokenStandard uint8

const (
	TokenStandardNonFungible TokenStandard = iota
	TokenStandardFungibleAsset
	TokenStandardFungible
	TokenStandardNonFungibleEdition
	TokenStandardProgrammableNonFungible
)

type Creator struct {
	Address  ed25519.PublicKey
	Verified bool
	Share    uint8
}

func (c Creator) String() string {
	return fmt.Sprintf("Creator{address=%s,verified=%v,share=%d}", base58.Encode(c.Address), c.Verified, c.Share)
}

type Collection struct {
	Verified bool
	Key      ed25519.PublicKey
}

// CollectionDetails marks a metadata account as a sized collection parent.
// Only the V1 variant is supported.
type CollectionDetails struct {
	Size uint64
}

type PrintSupplyType uint8

const (
	PrintSupplyZero PrintSupplyType = iota
	PrintSupplyLimited
	PrintSupplyUnlimited
)

type PrintSupply struct {
	Type  PrintSupplyType
	Limit uint64 // Only set for PrintSupplyLimited
}

func putCreators(enc *bin.Encoder, creators []Creator) error {
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
func getCreators(dec *bin.Decoder) ([]Creator, error) {
	n, err := dec.ReadUint32(bin.LE)
	if err != nil {
		return nil, err
	}
	if n > MaxCreatorLimit {
		return nil, errors.Errorf("too many creators: %d", n)
	}

	creators := make([]Creator, n)
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

func putOptionalCreators(enc *bin.Encoder, creators []Creator) error {
	if err := enc.WriteBool(creators != nil); err != nil || creators == nil {
		return err
	}
	return putCreators(enc, creators)
}
func getOptionalCreators(dec *bin.Decoder) ([]Creator, error) {
	present, err := dec.ReadBool()
	if err != nil || !present {
		return nil, err
	}
	return getCreators(dec)
}

func putOptionalCollection(enc *bin.Encoder, v *Collection) error {
	if err := enc.WriteBool(v != nil); err != nil || v == nil {
		return err
	}
	if err := enc.WriteBool(v.Verified); err != nil {
		return err
	}
	return putKey(enc, v.Key)
}
func getOptionalCollection(dec *bin.Decoder) (*Collection, error) {
	present, err := dec.ReadBool()
	if err != nil || !present {
		return nil, err
	}

	var v Collection
	if v.Verified, err = dec.ReadBool(); err != nil {
		return nil, err
	}
	if v.Key, err = getKey(dec); err != nil {
		return nil, err
	}
	return &v, nil
}

func putOptionalCollectionDetails(enc *bin.Encoder, v *CollectionDetails) error {
	if err := enc.WriteBool(v != nil); err != nil || v == nil {
		return err
	}
	// V1 variant
	if err := enc.WriteUint8(0); err != nil {
		return err
	}
	return enc.WriteUint64(v.Size, bin.LE)
}
func getOptionalCollectionDetails(dec *bin.Decoder) (*CollectionDetails, error) {
	present, err := dec.ReadBool()
	if err != nil || !present {
		return nil, err
	}

	variant, err := dec.ReadUint8()
	if err != nil {
		return nil, err
	}
	if variant != 0 {
		return nil, errors.Errorf("unsupported collection details variant: %d", variant)
	}

	var v CollectionDetails
	if v.Size, err = dec.ReadUint64(bin.LE); err != nil {
		return nil, err
	}
	return &v, nil
}

func putOptionalPrintSupply(enc *bin.Encoder, v *PrintSupply) error {
	if err := enc.WriteBool(v != nil); err != nil || v == nil {
		return err
	}
	if err := enc.WriteUint8(uint8(v.Type)); err != nil {
		return err
	}
	if v.Type == PrintSupplyLimited {
		return enc.WriteUint64(v.Limit, bin.LE)
	}
	return nil
}
func getOptionalPrintSupply(dec *bin.Decoder) (*PrintSupply, error) {
	present, err := dec.ReadBool()
	if err != nil || !present {
		return nil, err
	}

	t, err := dec.ReadUint8()
	if err != nil {
		return nil, err
	}

	v := PrintSupply{Type: PrintSupplyType(t)}
	switch v.Type {
	case PrintSupplyZero, PrintSupplyUnlimited:
	case PrintSupplyLimited:
		if v.Limit, err = dec.ReadUint64(bin.LE); err != nil {
			return nil, err
		}
	default:
		return nil, errors.Errorf("invalid print supply: %d", t)
	}
	return &v, nil
}
