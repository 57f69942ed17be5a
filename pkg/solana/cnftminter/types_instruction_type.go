package cnftminter

type InstructionType uint8

const (
	Unknown InstructionType = iota

	InstructionTypeCreateCollection
	InstructionTypeMint
)

func (t InstructionType) String() string {
	switch t {
	case InstructionTypeCreateCollection:
		return "create_collection"
	case InstructionTypeMint:
		return "mint"
	default:
		return "unknown"
	}
}
