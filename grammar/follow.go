package grammar

import (
	"fmt"

	"github.com/emirpasic/gods/sets/treeset"
	"github.com/nihei9/llkit/grammar/symbol"
)

type followEntry struct {
	symbols *treeset.Set
	eof     bool
}

func newFollowEntry() *followEntry {
	return &followEntry{
		symbols: newSymbolTreeSet(),
		eof:     false,
	}
}

func (e *followEntry) add(sym symbol.Symbol) bool {
	if e.symbols.Contains(sym) {
		return false
	}
	e.symbols.Add(sym)
	return true
}

func (e *followEntry) addEOF() bool {
	if !e.eof {
		e.eof = true
		return true
	}
	return false
}

func (e *followEntry) merge(fst *firstEntry, flw *followEntry) bool {
	changed := false

	if fst != nil {
		for _, sym := range symbolsOf(fst.symbols) {
			added := e.add(sym)
			if added {
				changed = true
			}
		}
	}

	if flw != nil {
		for _, sym := range symbolsOf(flw.symbols) {
			added := e.add(sym)
			if added {
				changed = true
			}
		}
		if flw.eof {
			added := e.addEOF()
			if added {
				changed = true
			}
		}
	}

	return changed
}

func (e *followEntry) clone() *followEntry {
	c := newFollowEntry()
	c.merge(nil, e)
	return c
}

func (e *followEntry) terminals() []symbol.Symbol {
	return symbolsOf(e.symbols)
}

type followSet struct {
	set map[symbol.Symbol]*followEntry
}

func newFollow(prods *productionSet) *followSet {
	flw := &followSet{
		set: map[symbol.Symbol]*followEntry{},
	}
	for _, prod := range prods.getAllProductions() {
		if _, ok := flw.set[prod.lhs]; ok {
			continue
		}
		flw.set[prod.lhs] = newFollowEntry()
	}
	return flw
}

func (flw *followSet) find(sym symbol.Symbol) (*followEntry, error) {
	e, ok := flw.set[sym]
	if !ok {
		return nil, fmt.Errorf("an entry of FOLLOW was not found; symbol: %s", sym)
	}
	return e, nil
}

type followComContext struct {
	prods  *productionSet
	first  *firstSet
	follow *followSet
}

func newFollowComContext(prods *productionSet, first *firstSet) *followComContext {
	return &followComContext{
		prods:  prods,
		first:  first,
		follow: newFollow(prods),
	}
}

// genFollowSet seeds FOLLOW(start) with `$` and then repeats passes over every production until
// no entry grows. Every entry is a subset of the terminals plus `$`, so the loop terminates.
func genFollowSet(prods *productionSet, first *firstSet, start symbol.Symbol) (*followSet, error) {
	cc := newFollowComContext(prods, first)

	e, err := cc.follow.find(start)
	if err != nil {
		return nil, err
	}
	e.addEOF()

	passes := 0
	for {
		passes++
		more := false
		for _, prod := range prods.getAllProductions() {
			changed, err := genFollowEntries(cc, prod)
			if err != nil {
				return nil, err
			}
			if changed {
				more = true
			}
		}
		if !more {
			break
		}
	}
	tracer().Debugf("FOLLOW reached a fixed point after %v passes", passes)

	return cc.follow, nil
}

// genFollowEntries scans the RHS of a production right to left. The trailer holds what can follow
// the symbol being visited.
func genFollowEntries(cc *followComContext, prod *production) (bool, error) {
	lhsFollow, err := cc.follow.find(prod.lhs)
	if err != nil {
		return false, err
	}

	changed := false
	trailer := lhsFollow.clone()
	for i := prod.rhsLen - 1; i >= 0; i-- {
		sym := prod.rhs[i]
		if sym.IsTerminal() {
			trailer = newFollowEntry()
			trailer.add(sym)
			continue
		}

		e, err := cc.follow.find(sym)
		if err != nil {
			return false, err
		}
		if e.merge(nil, trailer) {
			changed = true
		}

		fst := cc.first.findBySymbol(sym)
		if fst == nil {
			return false, fmt.Errorf("an entry of FIRST was not found; symbol: %s", sym)
		}
		if !fst.empty {
			trailer = newFollowEntry()
		}
		trailer.merge(fst, nil)
	}

	return changed, nil
}
