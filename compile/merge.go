package compile

import (
	"github.com/sirupsen/logrus"

	"github.com/Dan0xE/api/analysis"
	"github.com/Dan0xE/api/config"
)

// MergeMacroProfiles folds the analysis-discovered macro profiles into an
// already-compiled config, in the order the analysis reported them.
//
// Each group must name a profile the user declared, and every RVA in the
// group must be protectable; either check failing is fatal before anything
// from that group is appended. Valid groups append their RVAs after the
// profile's user-declared ones, preserving group order. No deduplication is
// performed: a function both declared explicitly and macro-tagged appears
// twice, which the backend tolerates.
func MergeMacroProfiles(compiled *config.Compiled, res *analysis.Result) error {
	for _, m := range res.Macros {
		profile := compiled.Profile(m.Name)
		if profile == nil {
			return &UnknownMacroProfileError{Name: m.Name}
		}
		for _, rva := range m.RVAs {
			if !ValidRVA(rva, res) {
				return &UnprotectableMacroFunctionError{Profile: m.Name, RVA: rva}
			}
		}
		profile.Symbols = append(profile.Symbols, m.RVAs...)
		logrus.Debugf("merged macro profile `%s`: %d symbols", m.Name, len(m.RVAs))
	}
	return nil
}
