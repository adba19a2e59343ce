package driver

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPredictiveParser_Parse(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "llkit.driver")
	defer teardown()

	cg := compileTestGrammar(t, exprGrammar, "E")

	tests := []struct {
		caption string
		src     string
		valid   bool
	}{
		{
			caption: "a sum of a product",
			src:     "id + id * id",
			valid:   true,
		},
		{
			caption: "a parenthesized expression",
			src:     "( id )",
			valid:   true,
		},
		{
			caption: "a nested expression spanning lines",
			src:     "( id + id )\n* ( ( id ) )",
			valid:   true,
		},
		{
			caption: "input ending after an operator",
			src:     "id +",
		},
		{
			caption: "empty input",
			src:     "",
		},
		{
			caption: "trailing input",
			src:     "id id",
		},
		{
			caption: "an unbalanced parenthesis",
			src:     "( id",
		},
		{
			caption: "a token that is not a terminal",
			src:     "id - id",
		},
		{
			caption: "the end marker cannot be written in input",
			src:     "id $",
		},
	}
	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			res := predict(t, cg, whitespaceTokens(t, cg, tt.src))
			assert.Equal(t, tt.valid, res.Valid)
			assert.False(t, res.Conflicted)
			require.NotEmpty(t, res.Trace)
			last := res.Trace[len(res.Trace)-1]
			if tt.valid {
				assert.Equal(t, ActionKindAccept, last.Kind)
				assert.Nil(t, res.Error)
			} else {
				assert.Equal(t, ActionKindError, last.Kind)
				assert.NotNil(t, res.Error)
			}
		})
	}
}

func TestPredictiveParser_Trace(t *testing.T) {
	cg := compileTestGrammar(t, exprGrammar, "E")
	res := predict(t, cg, whitespaceTokens(t, cg, "id"))
	require.True(t, res.Valid)

	expected := []*TraceRow{
		{Matched: []string{}, Stack: []string{"E", "$"}, Input: []string{"id", "$"}, Action: "E -> T X", Kind: ActionKindExpand},
		{Matched: []string{}, Stack: []string{"T", "X", "$"}, Input: []string{"id", "$"}, Action: "T -> F Y", Kind: ActionKindExpand},
		{Matched: []string{}, Stack: []string{"F", "Y", "X", "$"}, Input: []string{"id", "$"}, Action: "F -> id", Kind: ActionKindExpand},
		{Matched: []string{}, Stack: []string{"id", "Y", "X", "$"}, Input: []string{"id", "$"}, Action: "match id", Kind: ActionKindMatch},
		{Matched: []string{"id"}, Stack: []string{"Y", "X", "$"}, Input: []string{"$"}, Action: "Y -> epsilon", Kind: ActionKindExpand},
		{Matched: []string{"id"}, Stack: []string{"X", "$"}, Input: []string{"$"}, Action: "X -> epsilon", Kind: ActionKindExpand},
		{Matched: []string{"id"}, Stack: []string{"$"}, Input: []string{"$"}, Action: "accept", Kind: ActionKindAccept},
	}
	assert.Equal(t, expected, res.Trace)
}

func TestPredictiveParser_UnexpectedToken(t *testing.T) {
	cg := compileTestGrammar(t, exprGrammar, "E")

	tests := []struct {
		caption string
		src     string
		err     *UnexpectedTokenError
	}{
		{
			caption: "end of input after an operator",
			src:     "id +",
			err: &UnexpectedTokenError{
				Row:               1,
				Col:               5,
				Token:             "$",
				Top:               "T",
				ExpectedTerminals: []string{"(", "id"},
			},
		},
		{
			caption: "a missing closing parenthesis",
			src:     "( id\n",
			err: &UnexpectedTokenError{
				Row:               1,
				Col:               5,
				Token:             "$",
				Top:               ")",
				ExpectedTerminals: []string{")"},
			},
		},
		{
			caption: "an operand where an operator is expected",
			src:     "id\n  id",
			err: &UnexpectedTokenError{
				Row:               2,
				Col:               3,
				Token:             "id",
				Top:               "Y",
				ExpectedTerminals: []string{"+", "*", ")", "$"},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			res := predict(t, cg, whitespaceTokens(t, cg, tt.src))
			assert.False(t, res.Valid)
			assert.Equal(t, tt.err, res.Error)
		})
	}
}

func TestPredictiveParser_Conflicted(t *testing.T) {
	cg := compileTestGrammar(t, `A -> b | b c`, "A")

	res := predict(t, cg, whitespaceTokens(t, cg, "b"))
	assert.True(t, res.Conflicted)
	assert.True(t, res.Valid)

	// The table keeps A -> b, so the parser cannot accept the second alternative.
	res = predict(t, cg, whitespaceTokens(t, cg, "b c"))
	assert.True(t, res.Conflicted)
	assert.False(t, res.Valid)
}

func TestPredictiveParser_StepLimit(t *testing.T) {
	cg := compileTestGrammar(t, `E -> E + id | id`, "E")

	p, err := NewPredictiveParser(cg, StepLimit(50))
	require.NoError(t, err)
	_, err = p.Parse(whitespaceTokens(t, cg, "id"))
	assert.True(t, errors.Is(err, ErrStepLimitExceeded))

	_, err = NewPredictiveParser(cg, StepLimit(0))
	assert.Error(t, err)
}

func TestWriteTrace(t *testing.T) {
	cg := compileTestGrammar(t, exprGrammar, "E")
	res := predict(t, cg, whitespaceTokens(t, cg, "id"))

	var b bytes.Buffer
	WriteTrace(&b, res.Trace)
	lines := strings.Split(strings.TrimSuffix(b.String(), "\n"), "\n")
	require.Len(t, lines, len(res.Trace)+1)
	assert.True(t, strings.HasPrefix(lines[0], "Matched"))
	assert.True(t, strings.HasSuffix(lines[4], "match id"))
	assert.True(t, strings.HasPrefix(lines[5], "id "))
	assert.True(t, strings.HasSuffix(lines[len(lines)-1], "accept"))
}
