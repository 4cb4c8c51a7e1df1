package compile

import "fmt"

// UnresolvedSymbolError indicates a profile named a symbol the analysis did
// not find among eligible functions or force-resolvable rejects.
type UnresolvedSymbolError struct {
	Name string
}

func (e *UnresolvedSymbolError) Error() string {
	return fmt.Sprintf("symbol `%s` not found in analysis result", e.Name)
}

// UnresolvedRVAError indicates a profile declared an RVA the analysis does
// not consider protectable.
type UnresolvedRVAError struct {
	RVA uint64
}

func (e *UnresolvedRVAError) Error() string {
	return fmt.Sprintf("RVA 0x%X not found in analysis", e.RVA)
}

// UnknownMacroProfileError indicates the binary's source macros reference a
// profile the config never declared.
type UnknownMacroProfileError struct {
	Name string
}

func (e *UnknownMacroProfileError) Error() string {
	return fmt.Sprintf("macro specifies profile `%s` which is not defined in the config", e.Name)
}

// UnprotectableMacroFunctionError indicates the backend macro-tagged a
// function that its own analysis rejected. That inconsistency is surfaced
// rather than silently dropped.
type UnprotectableMacroFunctionError struct {
	Profile string
	RVA     uint64
}

func (e *UnprotectableMacroFunctionError) Error() string {
	return fmt.Sprintf("macro-decorated function 0x%X (profile `%s`) cannot be protected", e.RVA, e.Profile)
}
