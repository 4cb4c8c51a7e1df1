package config

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// The obfuscation pass variants. Each YAML/JSON representation is tagged
// with a `type` field naming the variant; parameters sit beside the tag.
// Nothing in this client interprets pass parameters: they are decoded,
// validated for shape, and handed to the backend as-is.

// Pass is one obfuscation pass configured on a profile.
type Pass interface {
	Kind() string
}

// Semantics selects the instruction semantics a pass targets.
type Semantics struct {
	Add bool `yaml:"add" json:"add"`
	Sub bool `yaml:"sub" json:"sub"`
	And bool `yaml:"and" json:"and"`
	Xor bool `yaml:"xor" json:"xor"`
	Or  bool `yaml:"or" json:"or"`
	Not bool `yaml:"not" json:"not"`
	Neg bool `yaml:"neg" json:"neg"`
}

// BitWidths selects the operand widths a pass targets.
type BitWidths struct {
	Bit8  bool `yaml:"bit8" json:"bit8"`
	Bit16 bool `yaml:"bit16" json:"bit16"`
	Bit32 bool `yaml:"bit32" json:"bit32"`
	Bit64 bool `yaml:"bit64" json:"bit64"`
}

// MutationEngineExtension is the SIMD extension set a mutation engine may
// emit: "Generic" or "SSE".
type MutationEngineExtension string

const (
	ExtensionGeneric MutationEngineExtension = "Generic"
	ExtensionSSE     MutationEngineExtension = "SSE"
)

type LoopEncodeSemantics struct {
	Iterations uint32 `yaml:"iterations" json:"iterations"`
	// Probability is the percent chance (0-100) of applying the
	// transformation at each opportunity.
	Probability uint32    `yaml:"probability" json:"probability"`
	Semantics   Semantics `yaml:"semantics" json:"semantics"`
	BitWidths   BitWidths `yaml:"bitwidths" json:"bitwidths"`
}

func (LoopEncodeSemantics) Kind() string { return "LoopEncodeSemantics" }

type MixedBooleanArithmetic struct {
	Iterations  uint32    `yaml:"iterations" json:"iterations"`
	Probability uint32    `yaml:"probability" json:"probability"`
	Semantics   Semantics `yaml:"semantics" json:"semantics"`
	BitWidths   BitWidths `yaml:"bitwidths" json:"bitwidths"`
}

func (MixedBooleanArithmetic) Kind() string { return "MixedBooleanArithmetic" }

type MutationEngine struct {
	Iterations  uint32                  `yaml:"iterations" json:"iterations"`
	Probability uint32                  `yaml:"probability" json:"probability"`
	Extension   MutationEngineExtension `yaml:"extension" json:"extension"`
	Semantics   Semantics               `yaml:"semantics" json:"semantics"`
	BitWidths   BitWidths               `yaml:"bitwidths" json:"bitwidths"`
}

func (MutationEngine) Kind() string { return "MutationEngine" }

type IDADecompilerCrasher struct{}

func (IDADecompilerCrasher) Kind() string { return "IDADecompilerCrasher" }

type ObscureConstants struct{}

func (ObscureConstants) Kind() string { return "ObscureConstants" }

type ObscureReferences struct{}

func (ObscureReferences) Kind() string { return "ObscureReferences" }

type ObscureControlFlow struct{}

func (ObscureControlFlow) Kind() string { return "ObscureControlFlow" }

// UnknownPassError indicates a pass `type` tag naming no known variant.
type UnknownPassError struct {
	Kind string
}

func (e *UnknownPassError) Error() string {
	return fmt.Sprintf("unknown obfuscation pass type: %s", e.Kind)
}

// PassList decodes a YAML sequence of tagged passes and encodes back to the
// tagged JSON the backend consumes.
type PassList []Pass

func (l *PassList) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.SequenceNode {
		return fmt.Errorf("passes must be a sequence, got %v", node.Kind)
	}
	out := make(PassList, 0, len(node.Content))
	for _, item := range node.Content {
		var tag struct {
			Type string `yaml:"type"`
		}
		if e := item.Decode(&tag); e != nil {
			return e
		}
		p, e := decodePass(tag.Type, item)
		if e != nil {
			return e
		}
		out = append(out, p)
	}
	*l = out
	return nil
}

func decodePass(kind string, node *yaml.Node) (Pass, error) {
	switch kind {
	case "LoopEncodeSemantics":
		var p LoopEncodeSemantics
		if e := node.Decode(&p); e != nil {
			return nil, e
		}
		return p, nil
	case "MixedBooleanArithmetic":
		var p MixedBooleanArithmetic
		if e := node.Decode(&p); e != nil {
			return nil, e
		}
		return p, nil
	case "MutationEngine":
		var p MutationEngine
		if e := node.Decode(&p); e != nil {
			return nil, e
		}
		return p, nil
	case "IDADecompilerCrasher":
		return IDADecompilerCrasher{}, nil
	case "ObscureConstants":
		return ObscureConstants{}, nil
	case "ObscureReferences":
		return ObscureReferences{}, nil
	case "ObscureControlFlow":
		return ObscureControlFlow{}, nil
	default:
		return nil, &UnknownPassError{Kind: kind}
	}
}

func (l PassList) MarshalJSON() ([]byte, error) {
	out := make([]json.RawMessage, 0, len(l))
	for _, p := range l {
		raw, e := marshalPass(p)
		if e != nil {
			return nil, e
		}
		out = append(out, raw)
	}
	return json.Marshal(out)
}

func marshalPass(p Pass) ([]byte, error) {
	switch v := p.(type) {
	case LoopEncodeSemantics:
		return json.Marshal(struct {
			Type string `json:"type"`
			LoopEncodeSemantics
		}{v.Kind(), v})
	case MixedBooleanArithmetic:
		return json.Marshal(struct {
			Type string `json:"type"`
			MixedBooleanArithmetic
		}{v.Kind(), v})
	case MutationEngine:
		return json.Marshal(struct {
			Type string `json:"type"`
			MutationEngine
		}{v.Kind(), v})
	case IDADecompilerCrasher, ObscureConstants, ObscureReferences, ObscureControlFlow:
		return json.Marshal(struct {
			Type string `json:"type"`
		}{p.Kind()})
	default:
		return nil, &UnknownPassError{Kind: fmt.Sprintf("%T", p)}
	}
}
