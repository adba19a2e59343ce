package grammar

import (
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

func TestGenFirst(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "llkit.grammar")
	defer teardown()

	tests := []struct {
		caption string
		src     string
		start   string
		first   map[string][]string
	}{
		{
			caption: "an expression grammar",
			src:     exprGrammar,
			start:   "E",
			first: map[string][]string{
				"E":  {"(", "id"},
				"X":  {"+", "epsilon"},
				"T":  {"(", "id"},
				"Y":  {"*", "epsilon"},
				"F":  {"(", "id"},
				"id": {"id"},
				"+":  {"+"},
			},
		},
		{
			caption: "a grammar whose non-terminals are all nullable",
			src: `
S -> A B
A -> a | epsilon
B -> b | epsilon
`,
			start: "S",
			first: map[string][]string{
				"S": {"a", "b", "epsilon"},
				"A": {"a", "epsilon"},
				"B": {"b", "epsilon"},
			},
		},
		{
			caption: "the scan stops at the first non-nullable symbol",
			src: `
S -> A c B
A -> a | epsilon
B -> b
`,
			start: "S",
			first: map[string][]string{
				"S": {"a", "c"},
			},
		},
		{
			caption: "a non-terminal used before its rule",
			src: `
S -> T s
T -> t
`,
			start: "S",
			first: map[string][]string{
				"S": {"t"},
				"T": {"t"},
			},
		},
		{
			caption: "a nullable cycle terminates",
			src: `
A -> B | a
B -> A | epsilon
`,
			start: "A",
			first: map[string][]string{
				"A": {"a", "epsilon"},
				"B": {"a", "epsilon"},
			},
		},
		{
			caption: "direct left recursion terminates",
			src: `
E -> E + T | T
T -> id
`,
			start: "E",
			first: map[string][]string{
				"E": {"id"},
				"T": {"id"},
			},
		},
		{
			caption: "FIRST of epsilon is epsilon",
			src:     `S -> epsilon | s`,
			start:   "S",
			first: map[string][]string{
				"S":       {"s", "epsilon"},
				"epsilon": {"epsilon"},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			a := analyzeTestGrammar(t, tt.src, tt.start)
			for sym, expected := range tt.first {
				set, err := a.First(sym)
				if err != nil {
					t.Fatal(err)
				}
				testSymbolSet(t, set, expected)
			}
		})
	}
}

func TestGenFirst_IndependentOfOrder(t *testing.T) {
	a := analyzeTestGrammar(t, exprGrammar, "E")
	b := analyzeTestGrammar(t, `
F -> ( E ) | id
Y -> * F Y | epsilon
T -> F Y
X -> + T X | epsilon
E -> T X
`, "E")
	for _, nt := range a.Grammar().NonTerminals() {
		fa, err := a.First(nt)
		if err != nil {
			t.Fatal(err)
		}
		fb, err := b.First(nt)
		if err != nil {
			t.Fatal(err)
		}
		if !fa.Equal(fb) {
			t.Fatalf("FIRST(%v) depends on the order of rules; %v != %v", nt, fa, fb)
		}
	}
}

func TestAnalysis_FirstOfSequence(t *testing.T) {
	a := analyzeTestGrammar(t, exprGrammar, "E")
	tests := []struct {
		caption  string
		seq      []string
		expected []string
	}{
		{
			caption:  "a nullable head adds the next symbol",
			seq:      []string{"Y", "X", ")"},
			expected: []string{"*", "+", ")"},
		},
		{
			caption:  "a nullable sequence contains epsilon",
			seq:      []string{"Y", "X"},
			expected: []string{"*", "+", "epsilon"},
		},
		{
			caption:  "an empty sequence",
			seq:      nil,
			expected: []string{"epsilon"},
		},
		{
			caption:  "epsilon is skipped",
			seq:      []string{"epsilon", "id"},
			expected: []string{"id"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			set, err := a.FirstOfSequence(tt.seq...)
			if err != nil {
				t.Fatal(err)
			}
			testSymbolSet(t, set, tt.expected)
		})
	}

	if _, err := a.FirstOfSequence("undefined"); err == nil {
		t.Fatalf("an undefined symbol must be an error")
	}
	if _, err := a.First("$"); err == nil {
		t.Fatalf("FIRST of $ must be an error")
	}
}

func TestSymbolSet_IsAValue(t *testing.T) {
	a := analyzeTestGrammar(t, exprGrammar, "E")
	set, err := a.First("E")
	if err != nil {
		t.Fatal(err)
	}
	terms := set.Terminals()
	terms[0] = "broken"

	again, err := a.First("E")
	if err != nil {
		t.Fatal(err)
	}
	if again.Contains("broken") || set.Contains("broken") {
		t.Fatalf("a caller must not be able to modify an analysis")
	}
}
