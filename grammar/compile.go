package grammar

import (
	"fmt"
	"io"
	"strings"

	"github.com/nihei9/llkit/compressor"
	"github.com/nihei9/llkit/grammar/symbol"
	spec "github.com/nihei9/llkit/spec/grammar"
	mlcompiler "github.com/nihei9/maleeni/compiler"
	mlspec "github.com/nihei9/maleeni/spec"
)

const (
	lexKindNameWhiteSpace = "white_space"

	// lexSpecName names every generated lexer. Grammar names come from file names and are not
	// always valid lexer identifiers.
	lexSpecName = "llkit"
)

type compileConfig struct {
	isReportingEnabled bool
}

type CompileOption func(config *compileConfig)

func EnableReporting() CompileOption {
	return func(config *compileConfig) {
		config.isReportingEnabled = true
	}
}

// Compile turns an analysis into a CompiledGrammar. The compiled grammar carries a lexer that
// recognizes each terminal literally, so input does not have to separate tokens with blanks.
func Compile(a *Analysis, opts ...CompileOption) (*spec.CompiledGrammar, *spec.Report, error) {
	config := &compileConfig{}
	for _, opt := range opts {
		opt(config)
	}

	gram := a.gram
	r := gram.symbolTable.Reader()
	terms := r.TerminalTexts()
	nonTerms := r.NonTerminalTexts()

	maleeni, err := genLexicalSpecification(r)
	if err != nil {
		return nil, nil, err
	}

	predict := compressor.NewPredictTable(productionNumNil.Int())
	{
		m, err := compressor.NewMatrix(a.table.productionNums(), a.table.terminalCount)
		if err != nil {
			return nil, nil, err
		}
		err = predict.Compress(m)
		if err != nil {
			return nil, nil, err
		}
	}

	prods := gram.productionSet.getAllProductions()
	lhsSyms := make([]int, len(prods)+1)
	rhs := make([][]int, len(prods)+1)
	for _, p := range prods {
		lhsSyms[p.num] = p.lhs.Num().Int()
		rhs[p.num] = encodeRHS(p.rhs)
	}

	var report *spec.Report
	if config.isReportingEnabled {
		report, err = genReport(a)
		if err != nil {
			return nil, nil, err
		}
	}

	return &spec.CompiledGrammar{
		Name:  gram.name,
		Class: a.Class().String(),
		LexicalSpecification: &spec.LexicalSpecification{
			Lexer:   "maleeni",
			Maleeni: maleeni,
		},
		ParsingTable: &spec.ParsingTable{
			Predict: &spec.PredictTable{
				RowNums:          predict.RowNums,
				OriginalRowCount: predict.Rows.OriginalRowCount,
				OriginalColCount: predict.Rows.OriginalColCount,
				EmptyValue:       predict.Rows.EmptyValue,
				Entries:          predict.Rows.Entries,
				Bounds:           predict.Rows.Bounds,
				RowDisplacement:  predict.Rows.RowDisplacement,
			},
			StartSymbol:      a.start.Num().Int(),
			LHSSymbols:       lhsSyms,
			RHS:              rhs,
			Terminals:        terms,
			TerminalCount:    len(terms),
			NonTerminals:     nonTerms,
			NonTerminalCount: len(nonTerms),
			EOFSymbol:        symbol.SymbolEOF.Num().Int(),
		},
	}, report, nil
}

func encodeRHS(syms []symbol.Symbol) []int {
	enc := make([]int, len(syms))
	for i, sym := range syms {
		if sym.IsTerminal() {
			enc[i] = sym.Num().Int()
		} else {
			enc[i] = sym.Num().Int() * -1
		}
	}
	return enc
}

// genLexicalSpecification compiles one literal pattern per terminal. Longer matches win, and among
// matches of the same length the terminal that appears first in the grammar wins.
func genLexicalSpecification(r *symbol.SymbolTableReader) (*spec.Maleeni, error) {
	termSyms := r.TerminalSymbols()
	entries := make([]*mlspec.LexEntry, 0, len(termSyms)+1)
	kind2Sym := map[mlspec.LexKindName]symbol.Symbol{}
	for _, sym := range termSyms {
		text, _ := r.ToText(sym)
		kind := mlspec.LexKindName(fmt.Sprintf("t_%v", sym.Num()))
		entries = append(entries, &mlspec.LexEntry{
			Kind:    kind,
			Pattern: mlspec.LexPattern(mlspec.EscapePattern(text)),
		})
		kind2Sym[kind] = sym
	}
	entries = append(entries, &mlspec.LexEntry{
		Kind:    lexKindNameWhiteSpace,
		Pattern: `[\u{0009}\u{000A}\u{000D}\u{0020}]+`,
	})

	lexSpec, err, cErrs := mlcompiler.Compile(&mlspec.LexSpec{
		Name:    lexSpecName,
		Entries: entries,
	}, mlcompiler.CompressionLevel(mlcompiler.CompressionLevelMax))
	if err != nil {
		if len(cErrs) > 0 {
			var b strings.Builder
			writeCompileError(&b, cErrs[0])
			for _, cerr := range cErrs[1:] {
				fmt.Fprintf(&b, "\n")
				writeCompileError(&b, cerr)
			}
			return nil, fmt.Errorf("cannot compile a lexical specification: %v", b.String())
		}
		return nil, err
	}

	kind2Term := make([]int, len(lexSpec.KindNames))
	term2Kind := make([]int, len(r.TerminalTexts()))
	skip := make([]int, len(lexSpec.KindNames))
	for i, k := range lexSpec.KindNames {
		if k == mlspec.LexKindNameNil {
			continue
		}
		if k == lexKindNameWhiteSpace {
			skip[i] = 1
			continue
		}
		sym, ok := kind2Sym[k]
		if !ok {
			return nil, fmt.Errorf("terminal symbol '%v' was not found in a symbol table", k)
		}
		kind2Term[i] = sym.Num().Int()
		term2Kind[sym.Num()] = i
	}

	return &spec.Maleeni{
		Spec:           lexSpec,
		KindToTerminal: kind2Term,
		TerminalToKind: term2Kind,
		Skip:           skip,
	}, nil
}

func writeCompileError(w io.Writer, cErr *mlcompiler.CompileError) {
	if cErr.Fragment {
		fmt.Fprintf(w, "fragment ")
	}
	fmt.Fprintf(w, "%v: %v", cErr.Kind, cErr.Cause)
	if cErr.Detail != "" {
		fmt.Fprintf(w, ": %v", cErr.Detail)
	}
}

func genReport(a *Analysis) (*spec.Report, error) {
	gram := a.gram
	r := gram.symbolTable.Reader()

	var terms []*spec.Terminal
	{
		texts := r.TerminalTexts()
		terms = make([]*spec.Terminal, len(texts))
		for num, text := range texts[1:] {
			terms[num+1] = &spec.Terminal{
				Number: num + 1,
				Name:   text,
			}
		}
	}

	var nonTerms []*spec.NonTerminal
	{
		leftRec := map[symbol.Symbol]bool{}
		for _, sym := range a.leftRecursive {
			leftRec[sym] = true
		}

		nonTermSyms := r.NonTerminalSymbols()
		nonTerms = make([]*spec.NonTerminal, len(nonTermSyms)+1)
		for _, sym := range nonTermSyms {
			name, ok := r.ToText(sym)
			if !ok {
				return nil, fmt.Errorf("failed to generate non-terminals: symbol not found: %v", sym)
			}
			fst := a.first.findBySymbol(sym)
			if fst == nil {
				return nil, fmt.Errorf("failed to generate non-terminals: FIRST not found: %v", name)
			}
			flw, err := a.follow.find(sym)
			if err != nil {
				return nil, err
			}

			nonTerms[sym.Num()] = &spec.NonTerminal{
				Number:        sym.Num().Int(),
				Name:          name,
				First:         symbolNums(fst.terminals()),
				FirstEmpty:    fst.empty,
				Follow:        symbolNums(flw.terminals()),
				FollowEOF:     flw.eof,
				LeftRecursive: leftRec[sym],
			}
		}
	}

	var prods []*spec.Production
	{
		ps := gram.productionSet.getAllProductions()
		prods = make([]*spec.Production, len(ps)+1)
		for _, p := range ps {
			prods[p.num.Int()] = &spec.Production{
				Number: p.num.Int(),
				LHS:    p.lhs.Num().Int(),
				RHS:    encodeRHS(p.rhs),
			}
		}
	}

	var cells []*spec.Cell
	{
		cols := append(r.TerminalSymbols(), symbol.SymbolEOF)
		for _, nt := range r.NonTerminalSymbols() {
			for _, t := range cols {
				e := a.table.readEntry(nt, t)
				if e.isEmpty() {
					continue
				}
				cells = append(cells, &spec.Cell{
					NonTerminal: nt.Num().Int(),
					Terminal:    t.Num().Int(),
					Production:  e.prod.Int(),
				})
			}
		}
	}

	conflicts := []*spec.Conflict{}
	for _, c := range a.table.conflicts {
		nt, _ := r.ToSymbol(c.NonTerminal)
		t, _ := r.ToSymbol(c.Terminal)
		conflicts = append(conflicts, &spec.Conflict{
			NonTerminal:        nt.Num().Int(),
			Terminal:           t.Num().Int(),
			KeptProduction:     c.KeptProduction,
			RejectedProduction: c.RejectedProduction,
			Kind:               c.Kind.String(),
		})
	}

	return &spec.Report{
		Name:         gram.name,
		Start:        a.start.Num().Int(),
		Class:        a.Class().String(),
		Terminals:    terms,
		NonTerminals: nonTerms,
		Productions:  prods,
		Cells:        cells,
		Conflicts:    conflicts,
	}, nil
}

func symbolNums(syms []symbol.Symbol) []int {
	nums := make([]int, len(syms))
	for i, sym := range syms {
		nums[i] = sym.Num().Int()
	}
	return nums
}

// Report describes an analysis in the serializable form that `llkit show` renders.
func (a *Analysis) Report() (*spec.Report, error) {
	return genReport(a)
}
