package constants

// BlockType identifies the kind of element the OCR provider recognized.
type BlockType string

// Stable values (match the provider's wire format exactly).
const (
	BlockTypePage           BlockType = "PAGE"
	BlockTypeLine           BlockType = "LINE"
	BlockTypeWord           BlockType = "WORD"
	BlockTypeKeyValueSet    BlockType = "KEY_VALUE_SET"
	BlockTypeTable          BlockType = "TABLE"
	BlockTypeCell           BlockType = "CELL"
	BlockTypeSignature      BlockType = "SIGNATURE"
	BlockTypeSelectionElem  BlockType = "SELECTION_ELEMENT"
)

// EntityType qualifies a KEY_VALUE_SET block as the key side or the value side.
type EntityType = string

const (
	EntityTypeKey   EntityType = "KEY"
	EntityTypeValue EntityType = "VALUE"
)

// RelationshipType labels an edge from one block to others.
type RelationshipType string

const (
	RelationshipChild RelationshipType = "CHILD"
	RelationshipValue RelationshipType = "VALUE"
)

// SignatureStatus is the verdict assigned to a detected signature.
type SignatureStatus string

// Stable values (these exact strings appear in report JSON).
const (
	SignatureValid       SignatureStatus = "valid"
	SignatureNeedsReview SignatureStatus = "needs_review"
	SignatureInvalid     SignatureStatus = "invalid"
)
