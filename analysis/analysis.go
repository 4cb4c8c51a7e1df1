package analysis

// Types describing what the CodeDefender backend found in an uploaded
// binary. The analysis runs entirely server-side; this is a read-only
// snapshot returned by the analyze endpoint and consumed during config
// compilation.

// RejectReadWriteToCode marks functions that were excluded by a conservative
// default but may still be explicitly targeted by the user. Every other
// reject category is unconditionally ineligible.
const RejectReadWriteToCode = "ReadWriteToCode"

type PEEnvironment string

const (
	UserMode   PEEnvironment = "UserMode"
	KernelMode PEEnvironment = "KernelMode"
	UEFI       PEEnvironment = "UEFI"
)

// Function is one function the backend decided is eligible for protection.
type Function struct {
	// RVA is the function's relative virtual address within the image.
	RVA uint64 `json:"rva"`
	// Symbol is the function's name.
	Symbol string `json:"symbol"`
	// RefCount is the number of references to this function.
	RefCount uint `json:"ref_count"`
}

// Reject is one function the backend declined to make eligible.
type Reject struct {
	RVA    uint64 `json:"rva"`
	Symbol string `json:"symbol"`
	// Type is the machine-readable reject category.
	Type string `json:"ty"`
	// Reason is the human-readable explanation.
	Reason string `json:"reason"`
}

// MacroProfile groups functions tagged by source-level macros under a
// profile name the user is expected to have declared in their config.
type MacroProfile struct {
	Name string   `json:"name"`
	RVAs []uint64 `json:"rvas"`
}

// Result is the complete analysis snapshot for one uploaded binary.
type Result struct {
	Environment PEEnvironment  `json:"environment"`
	Functions   []Function     `json:"functions"`
	Rejects     []Reject       `json:"rejects"`
	Macros      []MacroProfile `json:"macros"`
}
