package grammar

import (
	"fmt"

	verr "github.com/nihei9/llkit/error"
	"github.com/nihei9/llkit/grammar/symbol"
)

// Analysis holds FIRST, FOLLOW, and the predictive table of a grammar for one start symbol. It is
// read-only, and every accessor returns values that callers may keep or modify freely.
type Analysis struct {
	gram          *Grammar
	start         symbol.Symbol
	first         *firstSet
	follow        *followSet
	table         *ParsingTable
	leftRecursive []symbol.Symbol
}

// Analyze computes FIRST and FOLLOW and builds the predictive table. Conflicts do not make Analyze
// fail; check Class or Conflicts before trusting the table.
func Analyze(gram *Grammar, start string) (*Analysis, error) {
	startSym, ok := gram.symbolTable.Reader().ToSymbol(start)
	if !ok || !startSym.IsNonTerminal() {
		return nil, verr.SpecErrors{
			&verr.SpecError{
				Cause:      semErrUndefinedStart,
				Detail:     start,
				SourceName: gram.name,
			},
		}
	}

	first, err := genFirstSet(gram.productionSet)
	if err != nil {
		return nil, err
	}
	follow, err := genFollowSet(gram.productionSet, first, startSym)
	if err != nil {
		return nil, err
	}
	b := &predictiveTableBuilder{
		gram:   gram,
		first:  first,
		follow: follow,
	}
	tab, err := b.build()
	if err != nil {
		return nil, err
	}

	a := &Analysis{
		gram:          gram,
		start:         startSym,
		first:         first,
		follow:        follow,
		table:         tab,
		leftRecursive: findLeftRecursion(gram, first),
	}
	tracer().Infof("analyzed a grammar; start: %v, class: %v, conflicts: %v", start, tab.Class(), len(tab.conflicts))
	for _, nt := range a.LeftRecursive() {
		tracer().Infof("%v is left-recursive", nt)
	}

	return a, nil
}

func (a *Analysis) Grammar() *Grammar {
	return a.gram
}

func (a *Analysis) Start() string {
	text, _ := a.gram.symbolTable.Reader().ToText(a.start)
	return text
}

// First returns FIRST of a terminal, of `epsilon`, or of a non-terminal.
func (a *Analysis) First(text string) (SymbolSet, error) {
	r := a.gram.symbolTable.Reader()
	sym, ok := r.ToSymbol(text)
	if !ok {
		return SymbolSet{}, fmt.Errorf("undefined symbol: %v", text)
	}
	switch {
	case sym.IsEmpty():
		return newSymbolSet(r, nil, true, false), nil
	case sym.IsEOF():
		return SymbolSet{}, fmt.Errorf("FIRST of %v is undefined", text)
	case sym.IsTerminal():
		return newSymbolSet(r, []symbol.Symbol{sym}, false, false), nil
	}
	e := a.first.findBySymbol(sym)
	if e == nil {
		return SymbolSet{}, fmt.Errorf("an entry of FIRST was not found; symbol: %v", text)
	}
	return newSymbolSet(r, e.terminals(), e.empty, false), nil
}

// FirstOfSequence returns FIRST of a sequence of symbols. `epsilon` in the sequence is skipped and
// an empty sequence yields {epsilon}.
func (a *Analysis) FirstOfSequence(texts ...string) (SymbolSet, error) {
	r := a.gram.symbolTable.Reader()
	var seq []symbol.Symbol
	for _, text := range texts {
		sym, ok := r.ToSymbol(text)
		if !ok || sym.IsEOF() {
			return SymbolSet{}, fmt.Errorf("undefined symbol: %v", text)
		}
		if sym.IsEmpty() {
			continue
		}
		seq = append(seq, sym)
	}
	e, err := a.first.findSequence(seq)
	if err != nil {
		return SymbolSet{}, err
	}
	return newSymbolSet(r, e.terminals(), e.empty, false), nil
}

// Follow returns FOLLOW of a non-terminal.
func (a *Analysis) Follow(nonTerminal string) (SymbolSet, error) {
	r := a.gram.symbolTable.Reader()
	sym, ok := r.ToSymbol(nonTerminal)
	if !ok || !sym.IsNonTerminal() {
		return SymbolSet{}, fmt.Errorf("not a non-terminal: %v", nonTerminal)
	}
	e, err := a.follow.find(sym)
	if err != nil {
		return SymbolSet{}, err
	}
	return newSymbolSet(r, e.terminals(), false, e.eof), nil
}

func (a *Analysis) Table() *ParsingTable {
	return a.table
}

func (a *Analysis) Class() Class {
	return a.table.Class()
}

func (a *Analysis) Conflicts() []*Conflict {
	return a.table.Conflicts()
}

// LeftRecursive returns the left-recursive non-terminals in declaration order.
func (a *Analysis) LeftRecursive() []string {
	r := a.gram.symbolTable.Reader()
	texts := make([]string, 0, len(a.leftRecursive))
	for _, sym := range a.leftRecursive {
		text, _ := r.ToText(sym)
		texts = append(texts, text)
	}
	return texts
}
