package compile

import (
	"github.com/Dan0xE/api/analysis"
	"github.com/Dan0xE/api/config"
)

// ResolveSymbol resolves one declared symbol against the analysis result.
//
// A name is searched among the eligible functions first (first match wins,
// in analysis order). If absent there, it may still resolve through a reject
// carrying the ReadWriteToCode category: those were excluded by a
// conservative default, and naming one explicitly forces it back in. Any
// other reject category never resolves.
//
// An RVA is only validated: it must already be known to the analysis under
// the same eligibility rule.
func ResolveSymbol(sym config.Symbol, res *analysis.Result) (uint64, error) {
	if sym.ByRVA {
		if !ValidRVA(sym.RVA, res) {
			return 0, &UnresolvedRVAError{RVA: sym.RVA}
		}
		return sym.RVA, nil
	}

	for _, f := range res.Functions {
		if f.Symbol == sym.Name {
			return f.RVA, nil
		}
	}
	for _, r := range res.Rejects {
		if r.Symbol == sym.Name && r.Type == analysis.RejectReadWriteToCode {
			return r.RVA, nil
		}
	}
	return 0, &UnresolvedSymbolError{Name: sym.Name}
}

// ValidRVA reports whether rva is protectable: discovered as an eligible
// function, or rejected only for ReadWriteToCode.
func ValidRVA(rva uint64, res *analysis.Result) bool {
	for _, f := range res.Functions {
		if f.RVA == rva {
			return true
		}
	}
	for _, r := range res.Rejects {
		if r.RVA == rva && r.Type == analysis.RejectReadWriteToCode {
			return true
		}
	}
	return false
}
