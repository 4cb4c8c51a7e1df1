package config

// The backend-ready request, produced from a Config by the compile package.
// Field names match the defend endpoint's wire format.

// CompiledProfile is a Profile whose symbol list has been fully resolved to
// RVAs. Symbols keeps declaration order, with macro-contributed RVAs
// appended after the user-declared ones; duplicates are not removed.
type CompiledProfile struct {
	Name             string           `json:"name"`
	Passes           PassList         `json:"passes"`
	CompilerSettings CompilerSettings `json:"compiler_settings"`
	Symbols          []uint64         `json:"symbols"`
}

// Compiled is the complete request submitted to the defend endpoint. It is
// built in full before submission; no partially-validated request is ever
// sent.
type Compiled struct {
	ModuleSettings ModuleSettings    `json:"module_settings"`
	Profiles       []CompiledProfile `json:"profiles"`
}

// Profile returns the compiled profile with the given name, or nil.
func (c *Compiled) Profile(name string) *CompiledProfile {
	for i := range c.Profiles {
		if c.Profiles[i].Name == name {
			return &c.Profiles[i]
		}
	}
	return nil
}
