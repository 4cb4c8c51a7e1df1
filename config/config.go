package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Version is the supported YAML config file version.
const Version = "1.0.0"

// MinPollInterval is the documented floor for poll_interval. Values below it
// risk being throttled by the backend. The floor is not enforced here.
const MinPollInterval = 500 * time.Millisecond

const defaultPollInterval = 1000 // milliseconds

// FakePDBString emits a decoy PDB path string to confuse debuggers.
type FakePDBString struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Value   string `yaml:"value" json:"value"`
}

// CustomSectionName overrides the name of the protected .text section.
type CustomSectionName struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Value   string `yaml:"value" json:"value"`
}

// ModuleSettings are module-wide obfuscation settings, independent of any
// profile.
type ModuleSettings struct {
	IDACrasher        bool `yaml:"ida_crasher" json:"ida_crasher"`
	ImportProtection  bool `yaml:"import_protection" json:"import_protection"`
	ObscureEntryPoint bool `yaml:"obscure_entry_point" json:"obscure_entry_point"`
	// ClearUnwindInfo makes functions harder to locate, but breaks
	// structured exception handling.
	ClearUnwindInfo   bool              `yaml:"clear_unwind_info" json:"clear_unwind_info"`
	FakePDBString     FakePDBString     `yaml:"fake_pdb_string" json:"fake_pdb_string"`
	CustomSectionName CustomSectionName `yaml:"custom_section_name" json:"custom_section_name"`
}

// AssemblerSettings control final codegen.
type AssemblerSettings struct {
	ShuffleBasicBlocks bool    `yaml:"shuffle_basic_blocks" json:"shuffle_basic_blocks"`
	InstructionPrefix  string  `yaml:"instruction_prefix" json:"instruction_prefix"`
	RandomPrefixChance float64 `yaml:"random_prefix_chance" json:"random_prefix_chance"`
}

// OptimizationSettings control the backend's IR optimizer.
type OptimizationSettings struct {
	ConstantPropagation     bool   `yaml:"constant_propagation" json:"constant_propagation"`
	InstructionCombine      bool   `yaml:"instruction_combine" json:"instruction_combine"`
	DeadCodeElim            bool   `yaml:"dead_code_elim" json:"dead_code_elim"`
	PruneUselessBlockParams bool   `yaml:"prune_useless_block_params" json:"prune_useless_block_params"`
	Iterations              uint32 `yaml:"iterations" json:"iterations"`
}

// LifterSettings control lifting x86 into the backend's IR.
type LifterSettings struct {
	LiftCalls bool `yaml:"lift_calls" json:"lift_calls"`
	// CallingConvention is "WindowsAbi" or "Conservative".
	CallingConvention    string `yaml:"calling_convention" json:"calling_convention"`
	MaxStackCopySize     uint32 `yaml:"max_stack_copy_size" json:"max_stack_copy_size"`
	SplitOnCallsFallback bool   `yaml:"split_on_calls_fallback" json:"split_on_calls_fallback"`
}

// CompilerSettings is the per-profile compiler configuration. It is carried
// through compilation untouched.
type CompilerSettings struct {
	AssemblerSettings    AssemblerSettings    `yaml:"assembler_settings" json:"assembler_settings"`
	OptimizationSettings OptimizationSettings `yaml:"optimization_settings" json:"optimization_settings"`
	LifterSettings       LifterSettings       `yaml:"lifter_settings" json:"lifter_settings"`
}

// Symbol is one entry of a profile's symbol list: either a function name or
// a raw RVA. Exactly one of the two forms is set.
type Symbol struct {
	Name  string
	RVA   uint64
	ByRVA bool
}

var InvalidSymbolError = errors.New("symbol must be a mapping with exactly one of `name` or `rva`")

func (s *Symbol) UnmarshalYAML(node *yaml.Node) error {
	var fields struct {
		Name *string `yaml:"name"`
		RVA  *uint64 `yaml:"rva"`
	}
	if e := node.Decode(&fields); e != nil {
		return e
	}
	switch {
	case fields.Name != nil && fields.RVA == nil:
		s.Name = *fields.Name
	case fields.RVA != nil && fields.Name == nil:
		s.RVA = *fields.RVA
		s.ByRVA = true
	default:
		return InvalidSymbolError
	}
	return nil
}

func (s Symbol) String() string {
	if s.ByRVA {
		return fmt.Sprintf("0x%X", s.RVA)
	}
	return s.Name
}

// Profile is one named transformation group declared by the user.
type Profile struct {
	// Name is referenced by source-level CodeDefender macros.
	Name             string           `yaml:"name"`
	Passes           PassList         `yaml:"passes"`
	CompilerSettings CompilerSettings `yaml:"compiler_settings"`
	Symbols          []Symbol         `yaml:"symbols"`
	// Color is only used by the SaaS UI.
	Color string `yaml:"color"`
}

// Config is the root of the user-facing YAML document.
type Config struct {
	Version   string `yaml:"version"`
	InputFile string `yaml:"input_file"`
	// PDBFile is an optional companion symbol file.
	PDBFile    string `yaml:"pdb_file"`
	OutputFile string `yaml:"output_file"`
	// APIKey may be left empty and supplied via CODEDEFENDER_API_KEY.
	APIKey string `yaml:"api_key"`
	// PollInterval is the delay between download polls, in milliseconds.
	// See MinPollInterval.
	PollInterval   uint64         `yaml:"poll_interval"`
	ModuleSettings ModuleSettings `yaml:"module_settings"`
	Profiles       []Profile      `yaml:"profiles"`
}

// PollIntervalDuration returns the configured poll interval, defaulting to
// one second when unset.
func (c *Config) PollIntervalDuration() time.Duration {
	ms := c.PollInterval
	if ms == 0 {
		ms = defaultPollInterval
	}
	return time.Duration(ms) * time.Millisecond
}

// VersionMismatchError indicates the config document was written for a
// different config format version than this build supports.
type VersionMismatchError struct {
	Found string
}

func (e *VersionMismatchError) Error() string {
	return fmt.Sprintf("invalid config version: %s, expected: %s", e.Found, Version)
}

// Parse unmarshals a YAML config document and gates on the format version.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if e := yaml.Unmarshal(data, &cfg); e != nil {
		return nil, e
	}
	if cfg.Version != Version {
		return nil, &VersionMismatchError{Found: cfg.Version}
	}
	return &cfg, nil
}

// LoadFile reads and parses the YAML config at path.
func LoadFile(path string) (*Config, error) {
	data, e := os.ReadFile(path)
	if e != nil {
		return nil, e
	}
	return Parse(data)
}
