package grammar

import (
	"strings"
	"testing"

	"github.com/nihei9/llkit/compressor"
	spec "github.com/nihei9/llkit/spec/grammar"
)

func TestCompile(t *testing.T) {
	a := analyzeTestGrammar(t, exprGrammar, "E")
	cg, report, err := Compile(a, EnableReporting())
	if err != nil {
		t.Fatal(err)
	}

	if cg.Name != "test" {
		t.Fatalf("unexpected name; got: %v", cg.Name)
	}
	if cg.Class != ClassLL1.String() {
		t.Fatalf("unexpected class; want: %v, got: %v", ClassLL1, cg.Class)
	}

	ptab := cg.ParsingTable
	if ptab.TerminalCount != len(ptab.Terminals) || ptab.NonTerminalCount != len(ptab.NonTerminals) {
		t.Fatalf("counts must match the symbol lists")
	}
	if ptab.Terminals[ptab.EOFSymbol] != "$" {
		t.Fatalf("unexpected EOF symbol: %v", ptab.Terminals[ptab.EOFSymbol])
	}
	if ptab.NonTerminals[ptab.StartSymbol] != "E" {
		t.Fatalf("unexpected start symbol: %v", ptab.NonTerminals[ptab.StartSymbol])
	}

	t.Run("the compressed table agrees with the analysis", func(t *testing.T) {
		predict := &compressor.PredictTable{
			RowNums: cg.ParsingTable.Predict.RowNums,
			Rows: &compressor.RowDisplacementTable{
				OriginalRowCount: ptab.Predict.OriginalRowCount,
				OriginalColCount: ptab.Predict.OriginalColCount,
				EmptyValue:       ptab.Predict.EmptyValue,
				Entries:          ptab.Predict.Entries,
				Bounds:           ptab.Predict.Bounds,
				RowDisplacement:  ptab.Predict.RowDisplacement,
			},
		}
		nums := a.table.productionNums()
		for nt := 1; nt < ptab.NonTerminalCount; nt++ {
			for term := 1; term < ptab.TerminalCount; term++ {
				v, err := predict.Lookup(nt, term)
				if err != nil {
					t.Fatal(err)
				}
				want := nums[nt*ptab.TerminalCount+term]
				if v != want {
					t.Fatalf("unexpected entry at (%v, %v); want: %v, got: %v", ptab.NonTerminals[nt], ptab.Terminals[term], want, v)
				}
			}
		}
	})

	t.Run("productions are encoded by symbol numbers", func(t *testing.T) {
		// F -> ( E ) is production 7.
		lhs := ptab.LHSSymbols[7]
		if ptab.NonTerminals[lhs] != "F" {
			t.Fatalf("unexpected LHS: %v", ptab.NonTerminals[lhs])
		}
		rhs := ptab.RHS[7]
		if len(rhs) != 3 {
			t.Fatalf("unexpected RHS: %v", rhs)
		}
		if ptab.Terminals[rhs[0]] != "(" || ptab.NonTerminals[-rhs[1]] != "E" || ptab.Terminals[rhs[2]] != ")" {
			t.Fatalf("unexpected RHS: %v", rhs)
		}
		// X -> epsilon is production 3.
		if len(ptab.RHS[3]) != 0 {
			t.Fatalf("the empty production must have an empty RHS: %v", ptab.RHS[3])
		}
	})

	t.Run("every terminal has a lexical kind", func(t *testing.T) {
		ml := cg.LexicalSpecification.Maleeni
		for term := 2; term < ptab.TerminalCount; term++ {
			kind := ml.TerminalToKind[term]
			if kind == 0 {
				t.Fatalf("%v has no kind", ptab.Terminals[term])
			}
			if ml.KindToTerminal[kind] != term {
				t.Fatalf("kinds and terminals must map to each other; terminal: %v, kind: %v", ptab.Terminals[term], kind)
			}
			if ml.Skip[kind] != 0 {
				t.Fatalf("%v must not be skipped", ptab.Terminals[term])
			}
		}
		skipped := 0
		for _, s := range ml.Skip {
			skipped += s
		}
		if skipped != 1 {
			t.Fatalf("only blanks must be skipped; got: %v", ml.Skip)
		}
	})

	t.Run("report", func(t *testing.T) {
		if report == nil {
			t.Fatalf("a report must be generated")
		}
		if len(report.Cells) != 13 {
			t.Fatalf("unexpected cell count; want: 13, got: %v", len(report.Cells))
		}
		if len(report.Conflicts) != 0 {
			t.Fatalf("unexpected conflicts: %v", report.Conflicts)
		}
		x := report.NonTerminals[2]
		if x.Name != "X" || !x.FirstEmpty || !x.FollowEOF {
			t.Fatalf("unexpected non-terminal: %+v", x)
		}
		for _, c := range report.Cells {
			p := report.Productions[c.Production]
			if p.LHS != c.NonTerminal {
				t.Fatalf("a cell must hold a production of its row; cell: %+v, production: %+v", c, p)
			}
		}
	})
}

func TestCompile_WithoutReport(t *testing.T) {
	a := analyzeTestGrammar(t, exprGrammar, "E")
	_, report, err := Compile(a)
	if err != nil {
		t.Fatal(err)
	}
	if report != nil {
		t.Fatalf("a report must not be generated without EnableReporting")
	}
}

func TestCompile_Conflicts(t *testing.T) {
	a := analyzeTestGrammar(t, `A -> b | b c`, "A")
	cg, report, err := Compile(a, EnableReporting())
	if err != nil {
		t.Fatal(err)
	}
	if cg.Class != ClassAmbiguous.String() {
		t.Fatalf("unexpected class; want: %v, got: %v", ClassAmbiguous, cg.Class)
	}
	expected := []*spec.Conflict{
		{
			NonTerminal:        1,
			Terminal:           2,
			KeptProduction:     1,
			RejectedProduction: 2,
			Kind:               ConflictKindFirstFirst.String(),
		},
	}
	if len(report.Conflicts) != len(expected) {
		t.Fatalf("unexpected conflicts: %v", report.Conflicts)
	}
	for i, c := range report.Conflicts {
		if *c != *expected[i] {
			t.Fatalf("unexpected conflict; want: %+v, got: %+v", expected[i], c)
		}
	}
}

func TestCompile_GrammarNames(t *testing.T) {
	tests := []struct {
		caption string
		opts    []BuildOption
		name    string
	}{
		{
			caption: "a grammar without a name",
		},
		{
			caption: "a name with a hyphen and a blank",
			opts:    []BuildOption{Name("expr-grammar v2")},
			name:    "expr-grammar v2",
		},
		{
			caption: "a name starting with a digit",
			opts:    []BuildOption{Name("1st")},
			name:    "1st",
		},
	}
	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			g, err := Parse(strings.NewReader(exprGrammar), tt.opts...)
			if err != nil {
				t.Fatal(err)
			}
			a, err := Analyze(g, "E")
			if err != nil {
				t.Fatal(err)
			}
			cg, _, err := Compile(a)
			if err != nil {
				t.Fatal(err)
			}
			if cg.Name != tt.name {
				t.Fatalf("unexpected name; want: %q, got: %q", tt.name, cg.Name)
			}
			if cg.LexicalSpecification.Maleeni.Spec.Name != lexSpecName {
				t.Fatalf("unexpected lexer name; want: %v, got: %v", lexSpecName, cg.LexicalSpecification.Maleeni.Spec.Name)
			}
		})
	}
}
