package driver

import spec "github.com/nihei9/llkit/spec/grammar"

type grammarImpl struct {
	g         *spec.CompiledGrammar
	lhs2Prods [][]int
	text2Term map[string]int
}

func NewGrammar(g *spec.CompiledGrammar) *grammarImpl {
	ptab := g.ParsingTable
	lhs2Prods := make([][]int, ptab.NonTerminalCount)
	for prod := 1; prod < len(ptab.LHSSymbols); prod++ {
		lhs := ptab.LHSSymbols[prod]
		lhs2Prods[lhs] = append(lhs2Prods[lhs], prod)
	}
	text2Term := map[string]int{}
	for term := 1; term < ptab.TerminalCount; term++ {
		if term == ptab.EOFSymbol {
			continue
		}
		text2Term[ptab.Terminals[term]] = term
	}
	return &grammarImpl{
		g:         g,
		lhs2Prods: lhs2Prods,
		text2Term: text2Term,
	}
}

func (g *grammarImpl) Class() string {
	return g.g.Class
}

func (g *grammarImpl) Conflicted() bool {
	return g.g.Class != spec.ClassLL1
}

func (g *grammarImpl) StartSymbol() int {
	return g.g.ParsingTable.StartSymbol
}

// Predict returns the production in the cell (nonTerminal, terminal) or 0 when the cell is empty.
func (g *grammarImpl) Predict(nonTerminal int, terminal int) int {
	p := g.g.ParsingTable.Predict
	if nonTerminal < 0 || nonTerminal >= len(p.RowNums) || terminal < 0 || terminal >= p.OriginalColCount {
		return p.EmptyValue
	}
	row := p.RowNums[nonTerminal]
	d := p.RowDisplacement[row]
	if p.Bounds[d+terminal] != row {
		return p.EmptyValue
	}
	return p.Entries[d+terminal]
}

// Productions returns the productions of a non-terminal in declaration order.
func (g *grammarImpl) Productions(nonTerminal int) []int {
	return g.lhs2Prods[nonTerminal]
}

func (g *grammarImpl) LHS(prod int) int {
	return g.g.ParsingTable.LHSSymbols[prod]
}

// RHS returns the symbols of a production. A positive element is a terminal and a negative element is
// a non-terminal multiplied by -1.
func (g *grammarImpl) RHS(prod int) []int {
	return g.g.ParsingTable.RHS[prod]
}

func (g *grammarImpl) TerminalCount() int {
	return g.g.ParsingTable.TerminalCount
}

func (g *grammarImpl) EOF() int {
	return g.g.ParsingTable.EOFSymbol
}

func (g *grammarImpl) Terminal(terminal int) string {
	return g.g.ParsingTable.Terminals[terminal]
}

func (g *grammarImpl) NonTerminal(nonTerminal int) string {
	return g.g.ParsingTable.NonTerminals[nonTerminal]
}

// ToTerminal returns the number of a terminal or 0 when text is not a terminal. `$` is never a
// terminal of the input.
func (g *grammarImpl) ToTerminal(text string) int {
	return g.text2Term[text]
}

// SymbolText returns the text of an element of RHS.
func (g *grammarImpl) SymbolText(sym int) string {
	if sym < 0 {
		return g.NonTerminal(sym * -1)
	}
	return g.Terminal(sym)
}
