package bubblegum

import (
	"crypto/ed25519"

	bin "github.com/gagliardetto/binary"
	"golang.org/x/crypto/sha3"

	"github.com/code-payments/cnft-minter/pkg/solana/tokenmetadata"
)

type TokenProgramVersion uint8

const (
	TokenProgramVersionOriginal TokenProgramVersion = iota
	TokenProgramVersionToken2022
)

// MetadataArgs describes a compressed asset. Uses are never populated.
type MetadataArgs struct {
	Name                 string
	Symbol               string
	Uri                  string
	SellerFeeBasisPoints uint16
	PrimarySaleHappened  bool
	IsMutable            bool
	EditionNonce         *uint8
	TokenStandard        *tokenmetadata.TokenStandard
	Collection           *tokenmetadata.Collection
	TokenProgramVersion  TokenProgramVersion
	Creators             []tokenmetadata.Creator
}

func (obj *MetadataArgs) marshalWithEncoder(enc *bin.Encoder) error {
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
	if err := enc.WriteBool(false); err != nil {
		return err
	}
	if err := enc.WriteUint8(uint8(obj.TokenProgramVersion)); err != nil {
		return err
	}
	return putCreators(enc, obj.Creators)
}

func (obj *MetadataArgs) unmarshalWithDecoder(dec *bin.Decoder) error {
	var err error
	if obj.Name, err = dec.ReadString(); err != nil {
		return err
	}
	if obj.Symbol, err = dec.ReadString(); err != nil {
		return err
	}
	if obj.Uri, err = dec.ReadString(); err != nil {
		return err
	}
	if obj.SellerFeeBasisPoints, err = dec.ReadUint16(bin.LE); err != nil {
		return err
	}
	if obj.PrimarySaleHappened, err = dec.ReadBool(); err != nil {
		return err
	}
	if obj.IsMutable, err = dec.ReadBool(); err != nil {
		return err
	}
	if obj.EditionNonce, err = getOptionalUint8(dec); err != nil {
		return err
	}

	tokenStandard, err := getOptionalUint8(dec)
	if err != nil {
		return err
	}
	if tokenStandard != nil {
		if tokenmetadata.TokenStandard(*tokenStandard) > tokenmetadata.TokenStandardProgrammableNonFungible {
			return ErrInvalidInstructionData
		}
		v := tokenmetadata.TokenStandard(*tokenStandard)
		obj.TokenStandard = &v
	}

	if obj.Collection, err = getOptionalCollection(dec); err != nil {
		return err
	}

	hasUses, err := dec.ReadBool()
	if err != nil {
		return err
	}
	if hasUses {
		return ErrInvalidInstructionData
	}

	tokenProgramVersion, err := dec.ReadUint8()
	if err != nil {
		return err
	}
	if TokenProgramVersion(tokenProgramVersion) > TokenProgramVersionToken2022 {
		return ErrInvalidInstructionData
	}
	obj.TokenProgramVersion = TokenProgramVersion(tokenProgramVersion)

	obj.Creators, err = getCreators(dec)
	return err
}

func (obj *MetadataArgs) Marshal() ([]byte, error) {
	return encodeBorsh(obj.marshalWithEncoder)
}

func (obj *MetadataArgs) Unmarshal(data []byte) error {
	dec := bin.NewBorshDecoder(data)
	if err := obj.unmarshalWithDecoder(dec); err != nil {
		return ErrInvalidInstructionData
	}
	if dec.Remaining() != 0 {
		return ErrInvalidInstructionData
	}
	return nil
}

// DataHash commits to the full metadata and, separately, to the seller fee so
// marketplaces can verify royalties without the rest of the metadata.
func (obj *MetadataArgs) DataHash() ([]byte, error) {
	encoded, err := obj.Marshal()
	if err != nil {
		return nil, err
	}

	metadataHash := keccak256(encoded)

	sfbp := []byte{byte(obj.SellerFeeBasisPoints), byte(obj.SellerFeeBasisPoints >> 8)}
	return keccak256(metadataHash, sfbp), nil
}

// CreatorHash commits to the creator list in order.
func (obj *MetadataArgs) CreatorHash() []byte {
	values := make([][]byte, 0, 3*len(obj.Creators))
	for _, c := range obj.Creators {
		verified := byte(0)
		if c.Verified {
			verified = 1
		}
		values = append(values, c.Address, []byte{verified}, []byte{c.Share})
	}
	return keccak256(values...)
}

// LeafSchema is the V1 leaf stored in the merkle tree for a compressed asset.
type LeafSchema struct {
	Id          ed25519.PublicKey
	Owner       ed25519.PublicKey
	Delegate    ed25519.PublicKey
	Nonce       uint64
	DataHash    []byte
	CreatorHash []byte
}

const leafSchemaVersionV1 uint8 = 1

func (l *LeafSchema) Hash() []byte {
	nonce := make([]byte, 8)
	for i := 0; i < 8; i++ {
		nonce[i] = byte(l.Nonce >> (8 * i))
	}

	return keccak256(
		[]byte{leafSchemaVersionV1},
		l.Id,
		l.Owner,
		l.Delegate,
		nonce,
		l.DataHash,
		l.CreatorHash,
	)
}

func keccak256(values ...[]byte) []byte {
	h := sha3.NewLegacyKeccak256()
	for _, v := range values {
		h.Write(v)
	}
	return h.Sum(nil)
}
