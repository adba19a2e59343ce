package grammar

import "github.com/nihei9/llkit/grammar/symbol"

// predictiveTableBuilder fills a table from FIRST and FOLLOW. Productions are visited in
// declaration order, so the production declared first wins a conflicted cell.
type predictiveTableBuilder struct {
	gram   *Grammar
	first  *firstSet
	follow *followSet
}

func (b *predictiveTableBuilder) build() (*ParsingTable, error) {
	ptab := newParsingTable(b.gram)
	for _, prod := range b.gram.productionSet.getAllProductions() {
		fst, err := b.first.find(prod, 0)
		if err != nil {
			return nil, err
		}
		for _, term := range fst.terminals() {
			b.trace(ptab.writeEntry(prod.lhs, term, prod, false))
		}
		if !fst.empty {
			continue
		}

		flw, err := b.follow.find(prod.lhs)
		if err != nil {
			return nil, err
		}
		for _, term := range flw.terminals() {
			b.trace(ptab.writeEntry(prod.lhs, term, prod, true))
		}
		if flw.eof {
			b.trace(ptab.writeEntry(prod.lhs, symbol.SymbolEOF, prod, true))
		}
	}

	return ptab, nil
}

func (b *predictiveTableBuilder) trace(c *Conflict) {
	if c == nil {
		return
	}
	tracer().Infof("%v", c)
}
