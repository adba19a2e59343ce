package driver

import (
	"errors"
	"fmt"
	"strings"

	"github.com/emirpasic/gods/stacks/arraystack"
	spec "github.com/nihei9/llkit/spec/grammar"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'llkit.driver'.
func tracer() tracing.Trace {
	return tracing.Select("llkit.driver")
}

type ActionKind string

const (
	ActionKindExpand = ActionKind("expand")
	ActionKindMatch  = ActionKind("match")
	ActionKindAccept = ActionKind("accept")
	ActionKindError  = ActionKind("error")
)

// TraceRow describes the configuration of the predictive parser before a step and the action the
// step took. Stack lists the top first, and Input ends with `$`.
type TraceRow struct {
	Matched []string
	Stack   []string
	Input   []string
	Action  string
	Kind    ActionKind
}

// UnexpectedTokenError tells that the top of the stack and the lookahead disagree and no cell of
// the table resolves them.
type UnexpectedTokenError struct {
	Row               int
	Col               int
	Token             string
	Top               string
	ExpectedTerminals []string
}

func (e *UnexpectedTokenError) Error() string {
	var b strings.Builder
	if e.Token == "$" {
		fmt.Fprintf(&b, "%v:%v: unexpected end of input", e.Row, e.Col)
	} else {
		fmt.Fprintf(&b, "%v:%v: unexpected token '%v'", e.Row, e.Col, e.Token)
	}
	if len(e.ExpectedTerminals) > 0 {
		fmt.Fprintf(&b, ": expected: %v", strings.Join(e.ExpectedTerminals, ", "))
	}
	return b.String()
}

// PredictiveResult is the verdict of a predictive parse. Conflicted is true when the table had
// conflicts, and then Valid must not be trusted.
type PredictiveResult struct {
	Valid      bool
	Conflicted bool
	Trace      []*TraceRow
	Error      *UnexpectedTokenError
}

var ErrStepLimitExceeded = errors.New("the predictive parser exceeded the step limit")

const defaultStepLimit = 100000

type PredictiveOption func(p *PredictiveParser) error

// StepLimit bounds the number of steps. Expansion on a conflicted table can repeat forever without
// consuming input.
func StepLimit(limit int) PredictiveOption {
	return func(p *PredictiveParser) error {
		if limit <= 0 {
			return fmt.Errorf("a step limit must be >=1: %v", limit)
		}
		p.stepLimit = limit
		return nil
	}
}

type PredictiveParser struct {
	gram      *grammarImpl
	stepLimit int
}

func NewPredictiveParser(g *spec.CompiledGrammar, opts ...PredictiveOption) (*PredictiveParser, error) {
	p := &PredictiveParser{
		gram:      NewGrammar(g),
		stepLimit: defaultStepLimit,
	}
	for _, opt := range opts {
		err := opt(p)
		if err != nil {
			return nil, err
		}
	}
	return p, nil
}

// Parse runs the pushdown automaton over the tokens. A rejected input is a result with an
// UnexpectedTokenError, not an error. Parse returns an error only when the stream fails or the step
// limit is exceeded.
func (p *PredictiveParser) Parse(ts TokenStream) (*PredictiveResult, error) {
	toks, err := readTokens(ts)
	if err != nil {
		return nil, err
	}

	gram := p.gram
	res := &PredictiveResult{
		Conflicted: gram.Conflicted(),
	}
	if res.Conflicted {
		tracer().Infof("the grammar is %v; the verdict may be wrong", gram.Class())
	}

	stack := arraystack.New()
	stack.Push(gram.EOF())
	stack.Push(gram.StartSymbol() * -1)

	var matched []string
	pos := 0
	for step := 0; ; step++ {
		if step >= p.stepLimit {
			return nil, fmt.Errorf("%w: %v", ErrStepLimitExceeded, p.stepLimit)
		}

		v, _ := stack.Peek()
		top := v.(int)
		tok := toks[pos]
		row := &TraceRow{
			Matched: append([]string{}, matched...),
			Stack:   p.snapshot(stack),
			Input:   tokenTexts(toks[pos:]),
		}
		res.Trace = append(res.Trace, row)

		switch {
		case top == gram.EOF() && tok.EOF():
			row.Action = string(ActionKindAccept)
			row.Kind = ActionKindAccept
			res.Valid = true
			tracer().Debugf("accept")
			return res, nil
		case top > 0 && top != gram.EOF() && !tok.EOF() && tok.TerminalID() == top:
			stack.Pop()
			text := tokenText(tok)
			matched = append(matched, text)
			pos++
			row.Action = fmt.Sprintf("match %v", text)
			row.Kind = ActionKindMatch
		case top < 0:
			prod := gram.Predict(top*-1, tok.TerminalID())
			if prod == 0 {
				p.reject(res, row, top, tok)
				return res, nil
			}
			stack.Pop()
			rhs := gram.RHS(prod)
			for i := len(rhs) - 1; i >= 0; i-- {
				stack.Push(rhs[i])
			}
			row.Action = p.productionText(prod)
			row.Kind = ActionKindExpand
		default:
			p.reject(res, row, top, tok)
			return res, nil
		}
		tracer().Debugf("%v", row.Action)
	}
}

func (p *PredictiveParser) reject(res *PredictiveResult, row *TraceRow, top int, tok VToken) {
	row.Action = string(ActionKindError)
	row.Kind = ActionKindError
	r, c := tok.Position()
	res.Error = &UnexpectedTokenError{
		Row:               r,
		Col:               c,
		Token:             tokenText(tok),
		Top:               p.gram.SymbolText(top),
		ExpectedTerminals: p.expectedTerminals(top),
	}
	tracer().Debugf("%v", res.Error)
}

// expectedTerminals returns the terminals that would let the parser take a step with top on the
// stack. `$` comes last.
func (p *PredictiveParser) expectedTerminals(top int) []string {
	gram := p.gram
	if top > 0 {
		return []string{gram.Terminal(top)}
	}
	var terms []string
	for term := 1; term < gram.TerminalCount(); term++ {
		if term == gram.EOF() {
			continue
		}
		if gram.Predict(top*-1, term) != 0 {
			terms = append(terms, gram.Terminal(term))
		}
	}
	if gram.Predict(top*-1, gram.EOF()) != 0 {
		terms = append(terms, gram.Terminal(gram.EOF()))
	}
	return terms
}

func (p *PredictiveParser) snapshot(stack *arraystack.Stack) []string {
	vs := stack.Values()
	syms := make([]string, len(vs))
	for i, v := range vs {
		syms[i] = p.gram.SymbolText(v.(int))
	}
	return syms
}

func (p *PredictiveParser) productionText(prod int) string {
	gram := p.gram
	rhs := gram.RHS(prod)
	if len(rhs) == 0 {
		return fmt.Sprintf("%v -> epsilon", gram.NonTerminal(gram.LHS(prod)))
	}
	texts := make([]string, len(rhs))
	for i, sym := range rhs {
		texts[i] = gram.SymbolText(sym)
	}
	return fmt.Sprintf("%v -> %v", gram.NonTerminal(gram.LHS(prod)), strings.Join(texts, " "))
}

func tokenTexts(toks []VToken) []string {
	texts := make([]string, len(toks))
	for i, tok := range toks {
		texts[i] = tokenText(tok)
	}
	return texts
}
