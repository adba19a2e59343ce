package grammar

import (
	"errors"
	"strings"
	"sync"
	"testing"

	verr "github.com/nihei9/llkit/error"
)

func TestAnalyze_UndefinedStart(t *testing.T) {
	g := parseTestGrammar(t, exprGrammar)
	for _, start := range []string{"S", "id", "$", "epsilon", ""} {
		t.Run(start, func(t *testing.T) {
			_, err := Analyze(g, start)
			if err == nil {
				t.Fatalf("an error must occur")
			}
			if !errors.Is(err, semErrUndefinedStart) {
				t.Fatalf("unexpected error; want: %v, got: %v", semErrUndefinedStart, err)
			}
			specErrs, ok := err.(verr.SpecErrors)
			if !ok {
				t.Fatalf("unexpected error type; got: %T", err)
			}
			if specErrs[0].Detail != start {
				t.Fatalf("unexpected detail; want: %v, got: %v", start, specErrs[0].Detail)
			}
		})
	}
}

func TestAnalysis_LeftRecursive(t *testing.T) {
	tests := []struct {
		caption   string
		src       string
		start     string
		recursive []string
	}{
		{
			caption: "no left recursion",
			src:     exprGrammar,
			start:   "E",
		},
		{
			caption: "direct left recursion",
			src: `
E -> E + T | T
T -> id
`,
			start:     "E",
			recursive: []string{"E"},
		},
		{
			caption: "indirect left recursion",
			src: `
A -> B a | a
B -> A b
`,
			start:     "A",
			recursive: []string{"A", "B"},
		},
		{
			caption: "left recursion hidden behind a nullable prefix",
			src: `
A -> N A a | b
N -> n | epsilon
`,
			start:     "A",
			recursive: []string{"A"},
		},
		{
			caption: "right recursion is not left recursion",
			src: `
L -> a L | epsilon
`,
			start: "L",
		},
	}
	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			a := analyzeTestGrammar(t, tt.src, tt.start)
			got := a.LeftRecursive()
			if len(got) != len(tt.recursive) {
				t.Fatalf("unexpected non-terminals; want: %v, got: %v", tt.recursive, got)
			}
			for i, nt := range tt.recursive {
				if got[i] != nt {
					t.Fatalf("unexpected non-terminals; want: %v, got: %v", tt.recursive, got)
				}
			}
		})
	}
}

func TestAnalysis_Start(t *testing.T) {
	a := analyzeTestGrammar(t, exprGrammar, "T")
	if a.Start() != "T" {
		t.Fatalf("unexpected start symbol; want: T, got: %v", a.Start())
	}
	if a.Grammar().Name() != "test" {
		t.Fatalf("unexpected grammar name; got: %v", a.Grammar().Name())
	}

	// FOLLOW depends on the start symbol.
	flw, err := a.Follow("T")
	if err != nil {
		t.Fatal(err)
	}
	testSymbolSet(t, flw, []string{"+", ")", "$"})
	flw, err = a.Follow("E")
	if err != nil {
		t.Fatal(err)
	}
	testSymbolSet(t, flw, []string{")"})
}

func TestAnalysisCache(t *testing.T) {
	c := NewAnalysisCache()

	g1 := parseTestGrammar(t, exprGrammar)
	// The same rules laid out differently.
	g2 := parseTestGrammar(t, strings.ReplaceAll(exprGrammar, " -> ", "   ->   "))

	a1, err := c.Analyze(g1, "E")
	if err != nil {
		t.Fatal(err)
	}
	a2, err := c.Analyze(g2, "E")
	if err != nil {
		t.Fatal(err)
	}
	if a1 != a2 {
		t.Fatalf("grammars with the same rules must share an analysis")
	}

	a3, err := c.Analyze(g1, "T")
	if err != nil {
		t.Fatal(err)
	}
	if a3 == a1 {
		t.Fatalf("a different start symbol must produce a different analysis")
	}

	if _, err := c.Analyze(g1, "undefined"); err == nil {
		t.Fatalf("an error must occur")
	}

	if c.Len() != 2 {
		t.Fatalf("unexpected cache size; want: 2, got: %v", c.Len())
	}
	hits, misses := c.Stats()
	if hits != 1 || misses != 3 {
		t.Fatalf("unexpected stats; want: 1 hit and 3 misses, got: %v hits and %v misses", hits, misses)
	}
}

func TestAnalysisCache_Concurrent(t *testing.T) {
	c := NewAnalysisCache()
	g := parseTestGrammar(t, exprGrammar)

	var wg sync.WaitGroup
	results := make([]*Analysis, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			a, err := c.Analyze(g, "E")
			if err != nil {
				t.Error(err)
				return
			}
			results[i] = a
		}(i)
	}
	wg.Wait()

	for _, a := range results[1:] {
		if a != results[0] {
			t.Fatalf("concurrent callers must share one analysis")
		}
	}
	if c.Len() != 1 {
		t.Fatalf("unexpected cache size; want: 1, got: %v", c.Len())
	}
}
