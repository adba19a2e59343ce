package grammar

import (
	"testing"
)

func TestGenFollow(t *testing.T) {
	tests := []struct {
		caption string
		src     string
		start   string
		follow  map[string][]string
	}{
		{
			caption: "an expression grammar",
			src:     exprGrammar,
			start:   "E",
			follow: map[string][]string{
				"E": {")", "$"},
				"X": {")", "$"},
				"T": {"+", ")", "$"},
				"Y": {"+", ")", "$"},
				"F": {"*", "+", ")", "$"},
			},
		},
		{
			caption: "nullable symbols pass the trailer through",
			src: `
S -> A B c
A -> a
B -> b | epsilon
`,
			start: "S",
			follow: map[string][]string{
				"S": {"$"},
				"A": {"b", "c"},
				"B": {"c"},
			},
		},
		{
			caption: "a start symbol that also appears in a body",
			src: `
S -> ( S ) S | epsilon
`,
			start: "S",
			follow: map[string][]string{
				"S": {")", "$"},
			},
		},
		{
			caption: "an unreachable non-terminal has an empty FOLLOW",
			src: `
S -> s
U -> u
`,
			start: "S",
			follow: map[string][]string{
				"S": {"$"},
				"U": {},
			},
		},
		{
			caption: "the start symbol need not be the first rule",
			src: `
A -> a B
B -> b
`,
			start: "B",
			follow: map[string][]string{
				"A": {},
				"B": {"$"},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			a := analyzeTestGrammar(t, tt.src, tt.start)
			for nt, expected := range tt.follow {
				set, err := a.Follow(nt)
				if err != nil {
					t.Fatal(err)
				}
				testSymbolSet(t, set, expected)
			}
		})
	}
}

func TestGenFollow_StartHasEOF(t *testing.T) {
	srcs := []string{
		exprGrammar,
		`S -> S a | b`,
		`S -> epsilon`,
		`
A -> B | a
B -> A | epsilon
`,
	}
	for _, src := range srcs {
		g := parseTestGrammar(t, src)
		for _, start := range g.NonTerminals() {
			a, err := Analyze(g, start)
			if err != nil {
				t.Fatal(err)
			}
			set, err := a.Follow(start)
			if err != nil {
				t.Fatal(err)
			}
			if !set.HasEOF() {
				t.Fatalf("FOLLOW(%v) must contain $; got: %v", start, set)
			}
		}
	}
}
