package driver

import (
	"errors"
	"strings"
	"testing"

	"github.com/nihei9/llkit/grammar"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescentParser_Parse(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "llkit.driver")
	defer teardown()

	cg := compileTestGrammar(t, exprGrammar, "E")

	tests := []struct {
		caption string
		src     string
		tree    string
		failure *ParseFailure
	}{
		{
			caption: "a sum of a product",
			src:     "id + id * id",
			tree:    "E[T[F[id] Y[epsilon]] X[+ T[F[id] Y[* F[id] Y[epsilon]]] X[epsilon]]]",
		},
		{
			caption: "a parenthesized expression",
			src:     "( id )",
			tree:    "E[T[F[( E[T[F[id] Y[epsilon]] X[epsilon]] )] Y[epsilon]] X[epsilon]]",
		},
		{
			caption: "input ending after an operator",
			src:     "id +",
			failure: &ParseFailure{
				Row:     1,
				Col:     5,
				Token:   "$",
				Message: "unexpected end of input",
			},
		},
		{
			caption: "trailing input",
			src:     "id id",
			failure: &ParseFailure{
				Row:     1,
				Col:     4,
				Token:   "id",
				Message: "unexpected trailing input",
			},
		},
		{
			caption: "a token that is not a terminal",
			src:     "( id - id )",
			failure: &ParseFailure{
				Row:     1,
				Col:     6,
				Token:   "-",
				Message: "no production matches",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			res := descend(t, cg, whitespaceTokens(t, cg, tt.src))
			if tt.failure != nil {
				assert.False(t, res.Valid)
				assert.Nil(t, res.Tree)
				assert.Equal(t, tt.failure, res.Failure)
				return
			}
			require.True(t, res.Valid, "%v", res.Failure)
			assert.Nil(t, res.Failure)
			assert.Equal(t, tt.tree, FormatBracketTree(res.Tree))
		})
	}
}

func TestDescentParser_ParenthesizedFactor(t *testing.T) {
	cg := compileTestGrammar(t, exprGrammar, "E")
	res := descend(t, cg, whitespaceTokens(t, cg, "( id )"))
	require.True(t, res.Valid)

	f := res.Tree.Children[0].Children[0]
	assert.Equal(t, "F[( E[T[F[id] Y[epsilon]] X[epsilon]] )]", FormatBracketTree(f))
	assert.Equal(t, 1, f.Children[0].Row)
	assert.Equal(t, 1, f.Children[0].Col)
	assert.Equal(t, 6, f.Children[2].Col)
}

func TestDescentParser_Backtracking(t *testing.T) {
	tests := []struct {
		caption string
		src     string
		start   string
		input   string
		valid   bool
		tree    string
	}{
		{
			caption: "a failed alternative does not consume input",
			src: `
S -> A c | A d
A -> a
`,
			start: "S",
			input: "a d",
			valid: true,
			tree:  "S[A[a] d]",
		},
		{
			caption: "a longer alternative is tried after a shorter one fails",
			src: `
S -> a b c | a b
`,
			start: "S",
			input: "a b",
			valid: true,
			tree:  "S[a b]",
		},
		{
			caption: "the first successful alternative is final",
			src:     `A -> b | b c`,
			start:   "A",
			input:   "b c",
			valid:   false,
		},
		{
			caption: "an empty production matches nothing",
			src: `
S -> L end
L -> x L | epsilon
`,
			start: "S",
			input: "x x end",
			valid: true,
			tree:  "S[L[x L[x L[epsilon]]] end]",
		},
	}
	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			cg := compileTestGrammar(t, tt.src, tt.start)
			res := descend(t, cg, whitespaceTokens(t, cg, tt.input))
			assert.Equal(t, tt.valid, res.Valid)
			if tt.valid {
				assert.Equal(t, tt.tree, FormatBracketTree(res.Tree))
			}
		})
	}
}

func TestDescentParser_RecursionError(t *testing.T) {
	t.Run("left recursion", func(t *testing.T) {
		cg := compileTestGrammar(t, `E -> E + id | id`, "E")
		p, err := NewDescentParser(cg)
		require.NoError(t, err)
		_, err = p.Parse(whitespaceTokens(t, cg, "id + id"))
		var recErr *RecursionError
		require.True(t, errors.As(err, &recErr), "unexpected error: %v", err)
		assert.True(t, recErr.LeftRecursive)
		assert.Equal(t, "E", recErr.NonTerminal)
	})

	t.Run("indirect left recursion through a nullable prefix", func(t *testing.T) {
		cg := compileTestGrammar(t, `
A -> N A a | b
N -> epsilon
`, "A")
		p, err := NewDescentParser(cg)
		require.NoError(t, err)
		_, err = p.Parse(whitespaceTokens(t, cg, "b a"))
		var recErr *RecursionError
		require.True(t, errors.As(err, &recErr), "unexpected error: %v", err)
		assert.True(t, recErr.LeftRecursive)
	})

	t.Run("maximum depth", func(t *testing.T) {
		cg := compileTestGrammar(t, `L -> a L | epsilon`, "L")
		input := strings.Repeat("a ", 20)

		p, err := NewDescentParser(cg, MaxDepth(5))
		require.NoError(t, err)
		_, err = p.Parse(whitespaceTokens(t, cg, input))
		var recErr *RecursionError
		require.True(t, errors.As(err, &recErr), "unexpected error: %v", err)
		assert.False(t, recErr.LeftRecursive)
		assert.Equal(t, 5, recErr.Depth)

		res := descend(t, cg, whitespaceTokens(t, cg, input))
		assert.True(t, res.Valid)
	})

	t.Run("an invalid depth", func(t *testing.T) {
		cg := compileTestGrammar(t, `L -> a L | epsilon`, "L")
		_, err := NewDescentParser(cg, MaxDepth(0))
		assert.Error(t, err)
	})
}

// Both parsers must reach the same verdict on an LL(1) grammar.
func TestParsers_Agree(t *testing.T) {
	grammars := []struct {
		caption string
		src     string
		start   string
		inputs  []string
	}{
		{
			caption: "expressions",
			src:     exprGrammar,
			start:   "E",
			inputs: []string{
				"id",
				"id + id * id",
				"( id )",
				"( ( id + id ) * id ) + id",
				"id +",
				"",
				"id id",
				"( id",
				"id )",
				"* id",
				"id * * id",
				"( )",
			},
		},
		{
			caption: "balanced parentheses",
			src: `
S -> ( S ) S | epsilon
`,
			start: "S",
			inputs: []string{
				"",
				"( )",
				"( ( ) ) ( )",
				"(",
				")",
				"( ) )",
			},
		},
		{
			caption: "statements",
			src: `
P -> S P | epsilon
S -> if C then S | print id ;
C -> id R
R -> = id | < id
`,
			start: "P",
			inputs: []string{
				"print id ;",
				"if id = id then print id ; print id ;",
				"if id < id then if id = id then print id ;",
				"if id then print id ;",
				"print id",
				"if id = id print id ;",
			},
		},
	}
	for _, g := range grammars {
		t.Run(g.caption, func(t *testing.T) {
			cg := compileTestGrammar(t, g.src, g.start)
			require.Equal(t, grammar.ClassLL1.String(), cg.Class)
			for _, input := range g.inputs {
				pres := predict(t, cg, whitespaceTokens(t, cg, input))
				dres := descend(t, cg, whitespaceTokens(t, cg, input))
				assert.Equal(t, pres.Valid, dres.Valid, "the parsers disagree on %q", input)
			}
		})
	}
}

func TestParsers_GrammarNames(t *testing.T) {
	tests := []struct {
		caption string
		src     string
		start   string
		opts    []grammar.BuildOption
		inputs  []string
	}{
		{
			caption: "a grammar without a name",
			src:     exprGrammar,
			start:   "E",
			inputs:  []string{"id + id * id", "( id )"},
		},
		{
			caption: "a name that is not an identifier",
			src:     exprGrammar,
			start:   "E",
			opts:    []grammar.BuildOption{grammar.Name("expr-grammar v2")},
			inputs:  []string{"id * ( id + id )"},
		},
		{
			caption: "symbols ending with a hyphen",
			src:     "S -> a- b | x-y- S",
			start:   "S",
			inputs:  []string{"a- b", "x-y- a- b"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			cg := compileTestGrammar(t, tt.src, tt.start, tt.opts...)
			for _, input := range tt.inputs {
				pres := predict(t, cg, whitespaceTokens(t, cg, input))
				assert.True(t, pres.Valid, "%q: %v", input, pres.Error)
				dres := descend(t, cg, whitespaceTokens(t, cg, input))
				assert.True(t, dres.Valid, "%q: %v", input, dres.Failure)
				lres := predict(t, cg, lexicalTokens(t, cg, input))
				assert.True(t, lres.Valid, "%q: %v", input, lres.Error)
			}
		})
	}
}

func TestDescentParser_RightRecursionDepth(t *testing.T) {
	cg := compileTestGrammar(t, "S -> a S | epsilon", "S")
	src := strings.Repeat("a ", 1500)

	pres := predict(t, cg, whitespaceTokens(t, cg, src))
	assert.True(t, pres.Valid)

	p, err := NewDescentParser(cg)
	require.NoError(t, err)
	_, err = p.Parse(whitespaceTokens(t, cg, src))
	var recErr *RecursionError
	require.True(t, errors.As(err, &recErr), "unexpected error: %v", err)
	assert.False(t, recErr.LeftRecursive)
	assert.Equal(t, defaultMaxDepth, recErr.Depth)

	dres := descend(t, cg, whitespaceTokens(t, cg, src), MaxDepth(2000))
	assert.True(t, dres.Valid, "%v", dres.Failure)
}
