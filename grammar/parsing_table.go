package grammar

import (
	"fmt"
	"strings"

	"github.com/nihei9/llkit/grammar/symbol"
	spec "github.com/nihei9/llkit/spec/grammar"
)

// Class tells whether a parsing table can be trusted by a predictive parser.
type Class string

const (
	ClassLL1       = Class(spec.ClassLL1)
	ClassAmbiguous = Class(spec.ClassAmbiguous)
)

func (c Class) String() string {
	return string(c)
}

type ConflictKind string

const (
	ConflictKindFirstFirst  = ConflictKind("first/first")
	ConflictKindFirstFollow = ConflictKind("first/follow")
)

func (k ConflictKind) String() string {
	return string(k)
}

// EmptyCellText is the text of a cell that has no production.
const EmptyCellText = "-"

// Conflict records a second production written to an occupied cell. The production written first
// stays in the table.
type Conflict struct {
	NonTerminal        string
	Terminal           string
	KeptProduction     int
	RejectedProduction int
	Kept               []string
	Rejected           []string
	Kind               ConflictKind
}

func (c *Conflict) String() string {
	return fmt.Sprintf("%v conflict at (%v, %v): %v -> %v is kept, %v -> %v is rejected",
		c.Kind, c.NonTerminal, c.Terminal,
		c.NonTerminal, strings.Join(c.Kept, " "),
		c.NonTerminal, strings.Join(c.Rejected, " "))
}

type tableEntry struct {
	prod      productionNum
	viaFollow bool
}

func (e tableEntry) isEmpty() bool {
	return e.prod == productionNumNil
}

// ParsingTable maps (non-terminal, terminal or `$`) to a production. Rows follow the declaration
// order of the non-terminals and columns follow the first appearance of the terminals with `$`
// last.
type ParsingTable struct {
	entries          []tableEntry
	terminalCount    int
	nonTerminalCount int
	conflicts        []*Conflict

	gram *Grammar
}

func newParsingTable(gram *Grammar) *ParsingTable {
	r := gram.symbolTable.Reader()
	termCount := len(r.TerminalTexts())
	nonTermCount := len(r.NonTerminalTexts())
	return &ParsingTable{
		entries:          make([]tableEntry, termCount*nonTermCount),
		terminalCount:    termCount,
		nonTerminalCount: nonTermCount,
		gram:             gram,
	}
}

func (t *ParsingTable) readEntry(nonTerm symbol.Symbol, term symbol.Symbol) tableEntry {
	return t.entries[nonTerm.Num().Int()*t.terminalCount+term.Num().Int()]
}

// writeEntry fills a cell. When the cell already holds another production, the cell keeps it and
// a conflict is returned.
func (t *ParsingTable) writeEntry(nonTerm symbol.Symbol, term symbol.Symbol, prod *production, viaFollow bool) *Conflict {
	pos := nonTerm.Num().Int()*t.terminalCount + term.Num().Int()
	e := t.entries[pos]
	if e.isEmpty() {
		t.entries[pos] = tableEntry{
			prod:      prod.num,
			viaFollow: viaFollow,
		}
		return nil
	}
	if e.prod == prod.num {
		return nil
	}

	kept, _ := t.gram.productionSet.findByNum(e.prod)
	kind := ConflictKindFirstFollow
	if !e.viaFollow && !viaFollow {
		kind = ConflictKindFirstFirst
	}
	r := t.gram.symbolTable.Reader()
	ntText, _ := r.ToText(nonTerm)
	termText, _ := r.ToText(term)
	c := &Conflict{
		NonTerminal:        ntText,
		Terminal:           termText,
		KeptProduction:     kept.num.Int(),
		RejectedProduction: prod.num.Int(),
		Kept:               t.gram.rhsTexts(kept),
		Rejected:           t.gram.rhsTexts(prod),
		Kind:               kind,
	}
	t.conflicts = append(t.conflicts, c)
	return c
}

// Rows returns the non-terminals.
func (t *ParsingTable) Rows() []string {
	return t.gram.NonTerminals()
}

// Columns returns the terminals followed by `$`.
func (t *ParsingTable) Columns() []string {
	return append(t.gram.Terminals(), symbol.SymbolNameEOF)
}

// Production returns the RHS stored in a cell. The empty production is returned as an empty
// slice.
func (t *ParsingTable) Production(nonTerminal, terminal string) ([]string, bool) {
	prod, ok := t.lookup(nonTerminal, terminal)
	if !ok {
		return nil, false
	}
	if prod.isEmpty() {
		return []string{}, true
	}
	return t.gram.rhsTexts(prod), true
}

// CellText renders a cell as space-joined symbols, `epsilon`, or EmptyCellText.
func (t *ParsingTable) CellText(nonTerminal, terminal string) string {
	prod, ok := t.lookup(nonTerminal, terminal)
	if !ok {
		return EmptyCellText
	}
	return strings.Join(t.gram.rhsTexts(prod), " ")
}

func (t *ParsingTable) lookup(nonTerminal, terminal string) (*production, bool) {
	r := t.gram.symbolTable.Reader()
	nt, ok := r.ToSymbol(nonTerminal)
	if !ok || !nt.IsNonTerminal() {
		return nil, false
	}
	term, ok := r.ToSymbol(terminal)
	if !ok || !term.IsTerminal() {
		return nil, false
	}
	e := t.readEntry(nt, term)
	if e.isEmpty() {
		return nil, false
	}
	return t.gram.productionSet.findByNum(e.prod)
}

// Conflicts returns a copy of the conflicts in the order they were found.
func (t *ParsingTable) Conflicts() []*Conflict {
	cs := make([]*Conflict, 0, len(t.conflicts))
	for _, c := range t.conflicts {
		dup := *c
		cs = append(cs, &dup)
	}
	return cs
}

func (t *ParsingTable) Class() Class {
	if len(t.conflicts) > 0 {
		return ClassAmbiguous
	}
	return ClassLL1
}

// productionNums returns the cells as production numbers indexed by symbol numbers. Row 0 and
// column 0 are unused.
func (t *ParsingTable) productionNums() []int {
	nums := make([]int, len(t.entries))
	for i, e := range t.entries {
		nums[i] = e.prod.Int()
	}
	return nums
}
