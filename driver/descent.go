package driver

import (
	"fmt"

	spec "github.com/nihei9/llkit/spec/grammar"
)

// cursor is an index into the token slice. It is passed and returned by value, so a failed trial
// never moves the cursor of its caller.
type cursor int

// trial is the outcome of trying a symbol. When ok is false, node is nil and next is the cursor the
// trial started from.
type trial struct {
	node *Node
	next cursor
	ok   bool
}

// RecursionError aborts a descent parse that would not terminate or that nests too deeply.
type RecursionError struct {
	NonTerminal   string
	Row           int
	Col           int
	Depth         int
	LeftRecursive bool
}

func (e *RecursionError) Error() string {
	if e.LeftRecursive {
		return fmt.Sprintf("%v:%v: %v re-enters itself without consuming input; the grammar is left-recursive", e.Row, e.Col, e.NonTerminal)
	}
	return fmt.Sprintf("%v:%v: the nesting of %v exceeds the maximum depth (%v)", e.Row, e.Col, e.NonTerminal, e.Depth)
}

// ParseFailure reports the furthest token that no production could match.
type ParseFailure struct {
	Row     int
	Col     int
	Token   string
	Message string
}

func (e *ParseFailure) Error() string {
	if e.Token == "$" {
		return fmt.Sprintf("%v:%v: %v", e.Row, e.Col, e.Message)
	}
	return fmt.Sprintf("%v:%v: %v: '%v'", e.Row, e.Col, e.Message, e.Token)
}

type DescentResult struct {
	Valid   bool
	Tree    *Node
	Failure *ParseFailure
}

const defaultMaxDepth = 1000

type DescentOption func(p *DescentParser) error

// MaxDepth bounds the nesting of non-terminals.
func MaxDepth(depth int) DescentOption {
	return func(p *DescentParser) error {
		if depth <= 0 {
			return fmt.Errorf("a maximum depth must be >=1: %v", depth)
		}
		p.maxDepth = depth
		return nil
	}
}

// DescentParser tries the productions of each non-terminal in declaration order and backtracks when
// one fails. It does not use the predictive table.
type DescentParser struct {
	gram     *grammarImpl
	maxDepth int
}

func NewDescentParser(g *spec.CompiledGrammar, opts ...DescentOption) (*DescentParser, error) {
	p := &DescentParser{
		gram:     NewGrammar(g),
		maxDepth: defaultMaxDepth,
	}
	for _, opt := range opts {
		err := opt(p)
		if err != nil {
			return nil, err
		}
	}
	return p, nil
}

// Parse succeeds when the start symbol derives the whole input. A rejected input is a result with a
// ParseFailure. A RecursionError is returned as an error.
func (p *DescentParser) Parse(ts TokenStream) (*DescentResult, error) {
	toks, err := readTokens(ts)
	if err != nil {
		return nil, err
	}

	d := &descent{
		gram:     p.gram,
		toks:     toks,
		maxDepth: p.maxDepth,
		active:   map[activation]struct{}{},
	}
	t, err := d.parseNonTerminal(p.gram.StartSymbol(), 0, 1)
	if err != nil {
		return nil, err
	}

	end := cursor(len(toks) - 1)
	if t.ok && t.next == end {
		tracer().Debugf("the descent parser accepted %v tokens", len(toks)-1)
		return &DescentResult{
			Valid: true,
			Tree:  t.node,
		}, nil
	}

	at := d.deepest
	msg := "no production matches"
	if t.ok && t.next >= at {
		at = t.next
		msg = "unexpected trailing input"
	}
	tok := toks[at]
	if tok.EOF() {
		msg = "unexpected end of input"
	}
	row, col := tok.Position()
	f := &ParseFailure{
		Row:     row,
		Col:     col,
		Token:   tokenText(tok),
		Message: msg,
	}
	tracer().Debugf("the descent parser rejected the input: %v", f)
	return &DescentResult{
		Failure: f,
	}, nil
}

type activation struct {
	nonTerminal int
	pos         cursor
}

type descent struct {
	gram     *grammarImpl
	toks     []VToken
	maxDepth int

	// active holds the non-terminals being parsed on the current path with their start positions.
	active map[activation]struct{}

	// deepest is the furthest position at which a terminal failed to match.
	deepest cursor
}

func (d *descent) parseNonTerminal(nonTerm int, c cursor, depth int) (trial, error) {
	if depth > d.maxDepth {
		return trial{}, d.recursionError(nonTerm, c, depth, false)
	}
	key := activation{
		nonTerminal: nonTerm,
		pos:         c,
	}
	if _, ok := d.active[key]; ok {
		return trial{}, d.recursionError(nonTerm, c, depth, true)
	}
	d.active[key] = struct{}{}
	defer delete(d.active, key)

	for _, prod := range d.gram.Productions(nonTerm) {
		t, err := d.parseProduction(nonTerm, prod, c, depth)
		if err != nil {
			return trial{}, err
		}
		if t.ok {
			return t, nil
		}
	}
	return trial{
		next: c,
	}, nil
}

func (d *descent) parseProduction(nonTerm int, prod int, c cursor, depth int) (trial, error) {
	node := &Node{
		KindName: d.gram.NonTerminal(nonTerm),
	}
	next := c
	for _, sym := range d.gram.RHS(prod) {
		t, err := d.parseSymbol(sym, next, depth)
		if err != nil {
			return trial{}, err
		}
		if !t.ok {
			return trial{
				next: c,
			}, nil
		}
		node.Children = append(node.Children, t.node)
		next = t.next
	}
	return trial{
		node: node,
		next: next,
		ok:   true,
	}, nil
}

func (d *descent) parseSymbol(sym int, c cursor, depth int) (trial, error) {
	if sym < 0 {
		return d.parseNonTerminal(sym*-1, c, depth+1)
	}

	tok := d.toks[c]
	if !tok.EOF() && tok.TerminalID() == sym {
		row, col := tok.Position()
		return trial{
			node: &Node{
				KindName: d.gram.Terminal(sym),
				Text:     string(tok.Lexeme()),
				Row:      row,
				Col:      col,
			},
			next: c + 1,
			ok:   true,
		}, nil
	}
	if c > d.deepest {
		d.deepest = c
	}
	return trial{
		next: c,
	}, nil
}

func (d *descent) recursionError(nonTerm int, c cursor, depth int, leftRecursive bool) error {
	row, col := d.toks[c].Position()
	return &RecursionError{
		NonTerminal:   d.gram.NonTerminal(nonTerm),
		Row:           row,
		Col:           col,
		Depth:         d.maxDepth,
		LeftRecursive: leftRecursive,
	}
}
