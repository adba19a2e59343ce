package driver

import (
	"strings"
	"testing"

	"github.com/nihei9/llkit/grammar"
	spec "github.com/nihei9/llkit/spec/grammar"
	"github.com/stretchr/testify/require"
)

const exprGrammar = `
E -> T X
X -> + T X | epsilon
T -> F Y
Y -> * F Y | epsilon
F -> ( E ) | id
`

func compileTestGrammar(t *testing.T, src string, start string, opts ...grammar.BuildOption) *spec.CompiledGrammar {
	t.Helper()

	g, err := grammar.Parse(strings.NewReader(src), opts...)
	require.NoError(t, err)
	a, err := grammar.Analyze(g, start)
	require.NoError(t, err)
	cg, _, err := grammar.Compile(a)
	require.NoError(t, err)
	return cg
}

func whitespaceTokens(t *testing.T, cg *spec.CompiledGrammar, src string) TokenStream {
	t.Helper()

	ts, err := NewWhitespaceTokenStream(cg, strings.NewReader(src))
	require.NoError(t, err)
	return ts
}

func lexicalTokens(t *testing.T, cg *spec.CompiledGrammar, src string) TokenStream {
	t.Helper()

	ts, err := NewLexicalTokenStream(cg, strings.NewReader(src))
	require.NoError(t, err)
	return ts
}

func predict(t *testing.T, cg *spec.CompiledGrammar, ts TokenStream, opts ...PredictiveOption) *PredictiveResult {
	t.Helper()

	p, err := NewPredictiveParser(cg, opts...)
	require.NoError(t, err)
	res, err := p.Parse(ts)
	require.NoError(t, err)
	return res
}

func descend(t *testing.T, cg *spec.CompiledGrammar, ts TokenStream, opts ...DescentOption) *DescentResult {
	t.Helper()

	p, err := NewDescentParser(cg, opts...)
	require.NoError(t, err)
	res, err := p.Parse(ts)
	require.NoError(t, err)
	return res
}
