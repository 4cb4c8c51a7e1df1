package compile

import (
	"github.com/sirupsen/logrus"

	"github.com/Dan0xE/api/analysis"
	"github.com/Dan0xE/api/config"
)

// CompileProfile resolves a declared profile's symbol list into RVAs.
// Resolution is fail-fast: the first symbol that does not resolve aborts the
// profile, naming exactly that symbol. Passes and compiler settings are
// carried through untouched.
func CompileProfile(p config.Profile, res *analysis.Result) (config.CompiledProfile, error) {
	rvas := make([]uint64, 0, len(p.Symbols))
	for _, sym := range p.Symbols {
		rva, e := ResolveSymbol(sym, res)
		if e != nil {
			logrus.Errorf("profile `%s`: %v", p.Name, e)
			return config.CompiledProfile{}, e
		}
		rvas = append(rvas, rva)
	}
	return config.CompiledProfile{
		Name:             p.Name,
		Passes:           p.Passes,
		CompilerSettings: p.CompilerSettings,
		Symbols:          rvas,
	}, nil
}

// Compile resolves every declared profile against the analysis result,
// producing the backend request skeleton. Macro profiles discovered by the
// analysis are not folded in here; see MergeMacroProfiles.
func Compile(cfg *config.Config, res *analysis.Result) (*config.Compiled, error) {
	compiled := &config.Compiled{
		ModuleSettings: cfg.ModuleSettings,
		Profiles:       make([]config.CompiledProfile, 0, len(cfg.Profiles)),
	}
	for _, p := range cfg.Profiles {
		cp, e := CompileProfile(p, res)
		if e != nil {
			return nil, e
		}
		logrus.Debugf("compiled profile `%s`: %d symbols", cp.Name, len(cp.Symbols))
		compiled.Profiles = append(compiled.Profiles, cp)
	}
	return compiled, nil
}
