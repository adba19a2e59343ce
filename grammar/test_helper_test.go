package grammar

import (
	"sort"
	"strings"
	"testing"

	"github.com/nihei9/llkit/grammar/symbol"
)

const exprGrammar = `
E -> T X
X -> + T X | epsilon
T -> F Y
Y -> * F Y | epsilon
F -> ( E ) | id
`

func parseTestGrammar(t *testing.T, src string) *Grammar {
	t.Helper()

	g, err := Parse(strings.NewReader(src), Name("test"))
	if err != nil {
		t.Fatalf("failed to build a grammar: %v", err)
	}
	return g
}

func analyzeTestGrammar(t *testing.T, src string, start string) *Analysis {
	t.Helper()

	a, err := Analyze(parseTestGrammar(t, src), start)
	if err != nil {
		t.Fatalf("failed to analyze a grammar: %v", err)
	}
	return a
}

type testSymbolGenerator func(text string) symbol.Symbol

func newTestSymbolGenerator(t *testing.T, symTab *symbol.SymbolTableReader) testSymbolGenerator {
	return func(text string) symbol.Symbol {
		t.Helper()

		sym, ok := symTab.ToSymbol(text)
		if !ok {
			t.Fatalf("symbol was not found: %v", text)
		}
		return sym
	}
}

func testSymbolSet(t *testing.T, set SymbolSet, expected []string) {
	t.Helper()

	actual := set.Symbols()
	want := append([]string{}, expected...)
	sort.Strings(actual)
	sort.Strings(want)
	if len(actual) != len(want) {
		t.Fatalf("unexpected symbols; want: %v, got: %v", expected, set)
	}
	for i := range want {
		if actual[i] != want[i] {
			t.Fatalf("unexpected symbols; want: %v, got: %v", expected, set)
		}
	}
}
