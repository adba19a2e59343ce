package grammar

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/cnf/structhash"
	verr "github.com/nihei9/llkit/error"
	"github.com/nihei9/llkit/grammar/symbol"
	"github.com/nihei9/llkit/spec/grammar/parser"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'llkit.grammar'.
func tracer() tracing.Trace {
	return tracing.Select("llkit.grammar")
}

// Grammar maps each non-terminal to its productions in declaration order. Every symbol that is not
// the head of some rule is a terminal. A Grammar never changes after Build returns it.
type Grammar struct {
	name          string
	symbolTable   *symbol.SymbolTable
	productionSet *productionSet
}

// Name returns the name given by the Name build option or an empty string.
func (g *Grammar) Name() string {
	return g.name
}

// NonTerminals returns the heads in declaration order.
func (g *Grammar) NonTerminals() []string {
	return g.symbolTable.Reader().NonTerminalTexts()[1:]
}

// Terminals returns the terminals in the order they first appear. `$` is not included.
func (g *Grammar) Terminals() []string {
	return g.symbolTable.Reader().TerminalTexts()[2:]
}

// Productions returns the alternatives of a non-terminal. An empty production is returned as the
// single symbol `epsilon`.
func (g *Grammar) Productions(nonTerminal string) [][]string {
	r := g.symbolTable.Reader()
	sym, ok := r.ToSymbol(nonTerminal)
	if !ok || !sym.IsNonTerminal() {
		return nil
	}
	prods, _ := g.productionSet.findByLHS(sym)
	alts := make([][]string, 0, len(prods))
	for _, prod := range prods {
		alts = append(alts, g.rhsTexts(prod))
	}
	return alts
}

func (g *Grammar) IsNonTerminal(text string) bool {
	sym, ok := g.symbolTable.Reader().ToSymbol(text)
	return ok && sym.IsNonTerminal()
}

func (g *Grammar) IsTerminal(text string) bool {
	sym, ok := g.symbolTable.Reader().ToSymbol(text)
	return ok && sym.IsTerminal() && !sym.IsEOF()
}

type fingerprintRule struct {
	Head         string
	Alternatives [][]string
}

// Fingerprint returns a structural hash of the rules. Grammars with the same rules in the same
// order have the same fingerprint regardless of how their text was laid out.
func (g *Grammar) Fingerprint() (string, error) {
	var rules []fingerprintRule
	for _, nt := range g.NonTerminals() {
		rules = append(rules, fingerprintRule{
			Head:         nt,
			Alternatives: g.Productions(nt),
		})
	}
	return structhash.Hash(rules, 1)
}

// String renders the grammar in its text format, one line per non-terminal.
func (g *Grammar) String() string {
	var b strings.Builder
	for _, nt := range g.NonTerminals() {
		var alts []string
		for _, alt := range g.Productions(nt) {
			alts = append(alts, strings.Join(alt, " "))
		}
		fmt.Fprintf(&b, "%v -> %v\n", nt, strings.Join(alts, " | "))
	}
	return b.String()
}

func (g *Grammar) rhsTexts(prod *production) []string {
	if prod.isEmpty() {
		return []string{symbol.SymbolNameEmpty}
	}
	r := g.symbolTable.Reader()
	texts := make([]string, len(prod.rhs))
	for i, sym := range prod.rhs {
		texts[i], _ = r.ToText(sym)
	}
	return texts
}

func (g *Grammar) productionText(prod *production) string {
	lhs, _ := g.symbolTable.Reader().ToText(prod.lhs)
	return fmt.Sprintf("%v -> %v", lhs, strings.Join(g.rhsTexts(prod), " "))
}

type GrammarBuilder struct {
	AST  *parser.RootNode
	Name string

	errs verr.SpecErrors
}

// Build turns the AST into a Grammar. Heads are registered first so that a symbol used before its
// rule is still a non-terminal.
func (b *GrammarBuilder) Build() (*Grammar, error) {
	symTab := symbol.NewSymbolTable()
	w := symTab.Writer()
	for _, prod := range b.AST.Productions {
		if isReservedSymbol(prod.LHS) {
			b.errs = append(b.errs, &verr.SpecError{
				Cause:  semErrReservedSymbol,
				Detail: prod.LHS,
				Row:    prod.Pos.Row,
				Col:    prod.Pos.Col,
			})
			continue
		}
		_, err := w.RegisterNonTerminalSymbol(prod.LHS)
		if err != nil {
			return nil, err
		}
	}
	if len(b.errs) > 0 {
		return nil, b.errs
	}

	r := symTab.Reader()
	prods := newProductionSet()
	for _, prod := range b.AST.Productions {
		lhs, _ := r.ToSymbol(prod.LHS)
		for _, alt := range prod.RHS {
			rhs, ok, err := b.genRHS(symTab, alt)
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}
			p, err := newProduction(lhs, rhs)
			if err != nil {
				return nil, err
			}
			if !prods.append(p) {
				b.errs = append(b.errs, &verr.SpecError{
					Cause:  semErrDuplicateProduction,
					Detail: fmt.Sprintf("%v -> %v", prod.LHS, alternativeText(alt)),
					Row:    alt.Pos.Row,
					Col:    alt.Pos.Col,
				})
			}
		}
	}
	if len(b.errs) > 0 {
		return nil, b.errs
	}

	tracer().Debugf("built a grammar; non-terminals: %v, terminals: %v, productions: %v",
		len(r.NonTerminalSymbols()), len(r.TerminalSymbols()), len(prods.getAllProductions()))

	return &Grammar{
		name:          b.Name,
		symbolTable:   symTab,
		productionSet: prods,
	}, nil
}

func (b *GrammarBuilder) genRHS(symTab *symbol.SymbolTable, alt *parser.AlternativeNode) ([]symbol.Symbol, bool, error) {
	r := symTab.Reader()
	w := symTab.Writer()
	ok := true
	var rhs []symbol.Symbol
	for _, elem := range alt.Elements {
		switch elem.ID {
		case symbol.SymbolNameEmpty:
			if len(alt.Elements) > 1 {
				b.errs = append(b.errs, &verr.SpecError{
					Cause:  semErrMixedEmpty,
					Detail: alternativeText(alt),
					Row:    elem.Pos.Row,
					Col:    elem.Pos.Col,
				})
				return nil, false, nil
			}
			continue
		case symbol.SymbolNameEOF:
			b.errs = append(b.errs, &verr.SpecError{
				Cause:  semErrReservedSymbol,
				Detail: elem.ID,
				Row:    elem.Pos.Row,
				Col:    elem.Pos.Col,
			})
			ok = false
			continue
		}

		sym, found := r.ToSymbol(elem.ID)
		if !found {
			var err error
			sym, err = w.RegisterTerminalSymbol(elem.ID)
			if err != nil {
				return nil, false, err
			}
		}
		rhs = append(rhs, sym)
	}
	if !ok {
		return nil, false, nil
	}
	return rhs, true, nil
}

func isReservedSymbol(text string) bool {
	return text == symbol.SymbolNameEOF || text == symbol.SymbolNameEmpty
}

func alternativeText(alt *parser.AlternativeNode) string {
	ids := make([]string, len(alt.Elements))
	for i, elem := range alt.Elements {
		ids[i] = elem.ID
	}
	return strings.Join(ids, " ")
}

type buildConfig struct {
	name string
}

type BuildOption func(config *buildConfig)

// Name names the grammar. The name is also used as the source name of errors.
func Name(name string) BuildOption {
	return func(config *buildConfig) {
		config.name = name
	}
}

// Parse reads grammar text and builds a Grammar from it. The returned errors quote the offending
// lines of src.
func Parse(src io.Reader, opts ...BuildOption) (*Grammar, error) {
	config := &buildConfig{}
	for _, opt := range opts {
		opt(config)
	}

	text, err := io.ReadAll(src)
	if err != nil {
		return nil, err
	}

	g, err := parseAndBuild(text, config)
	if err != nil {
		attachSource(err, config.name, bytes.NewReader(text))
		return nil, err
	}
	return g, nil
}

func parseAndBuild(text []byte, config *buildConfig) (*Grammar, error) {
	ast, err := parser.Parse(bytes.NewReader(text))
	if err != nil {
		return nil, err
	}
	b := &GrammarBuilder{
		AST:  ast,
		Name: config.name,
	}
	return b.Build()
}

func attachSource(err error, name string, src io.ReaderAt) {
	specErrs, ok := err.(verr.SpecErrors)
	if !ok {
		return
	}
	for _, e := range specErrs {
		e.SourceName = name
		e.Source = src
	}
}
