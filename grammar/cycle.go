package grammar

import (
	"github.com/emirpasic/gods/stacks/arraystack"
	"github.com/nihei9/llkit/grammar/symbol"
)

// findLeftRecursion returns the non-terminals that can derive a sentence starting with themselves,
// that is A =>+ A β. Such non-terminals make a backtracking descent parser loop without consuming
// input. An edge A -> B exists when a production of A starts with B after a prefix of nullable
// non-terminals.
func findLeftRecursion(gram *Grammar, first *firstSet) []symbol.Symbol {
	edges := map[symbol.Symbol][]symbol.Symbol{}
	for _, prod := range gram.productionSet.getAllProductions() {
		for _, sym := range prod.rhs {
			if sym.IsTerminal() {
				break
			}
			edges[prod.lhs] = append(edges[prod.lhs], sym)
			e := first.findBySymbol(sym)
			if e == nil || !e.empty {
				break
			}
		}
	}

	var recursive []symbol.Symbol
	for _, nt := range gram.symbolTable.Reader().NonTerminalSymbols() {
		if reachesItself(edges, nt) {
			recursive = append(recursive, nt)
		}
	}
	return recursive
}

func reachesItself(edges map[symbol.Symbol][]symbol.Symbol, start symbol.Symbol) bool {
	visited := newSymbolTreeSet()
	stack := arraystack.New()
	for _, next := range edges[start] {
		stack.Push(next)
	}
	for !stack.Empty() {
		v, _ := stack.Pop()
		sym := v.(symbol.Symbol)
		if sym == start {
			return true
		}
		if visited.Contains(sym) {
			continue
		}
		visited.Add(sym)
		for _, next := range edges[sym] {
			stack.Push(next)
		}
	}
	return false
}
