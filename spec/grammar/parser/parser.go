package parser

import (
	"fmt"
	"io"

	verr "github.com/nihei9/llkit/error"
)

type RootNode struct {
	Productions []*ProductionNode
}

type ProductionNode struct {
	LHS string
	RHS []*AlternativeNode
	Pos Position
}

type AlternativeNode struct {
	Elements []*ElementNode
	Pos      Position
}

type ElementNode struct {
	ID  string
	Pos Position
}

func raiseSyntaxErrorWithDetail(pos Position, synErr *SyntaxError, detail string) {
	panic(&verr.SpecError{
		Cause:  synErr,
		Detail: detail,
		Row:    pos.Row,
		Col:    pos.Col,
	})
}

// Parse reads a grammar written one rule per line as `Head -> alt | alt ...`. Blank lines are
// ignored. Several lines may share a head.
func Parse(src io.Reader) (*RootNode, error) {
	p, err := newParser(src)
	if err != nil {
		return nil, err
	}

	return p.parse()
}

type parser struct {
	lex       *lexer
	peekedTok *token
	lastTok   *token
	errs      verr.SpecErrors
}

func newParser(src io.Reader) (*parser, error) {
	lex, err := newLexer(src)
	if err != nil {
		return nil, err
	}
	return &parser{
		lex: lex,
	}, nil
}

func (p *parser) parse() (root *RootNode, retErr error) {
	defer func() {
		err := recover()
		if err == nil {
			return
		}
		e, ok := err.(error)
		if !ok {
			panic(err)
		}
		root = nil
		retErr = e
	}()

	root = p.parseRoot()
	if len(p.errs) > 0 {
		return nil, p.errs
	}

	return root, nil
}

func (p *parser) parseRoot() *RootNode {
	var prods []*ProductionNode
	for {
		p.skipNewlines()
		if p.consume(tokenKindEOF) {
			break
		}

		prod := p.parseProduction()
		if prod != nil {
			prods = append(prods, prod)
		}
	}
	if len(prods) == 0 && len(p.errs) == 0 {
		p.errs = append(p.errs, &verr.SpecError{
			Cause: synErrNoProduction,
		})
	}

	return &RootNode{
		Productions: prods,
	}
}

// parseProduction parses a single line. A syntax error is recorded and the parser resumes at the
// next line so that every broken line is reported.
func (p *parser) parseProduction() (prod *ProductionNode) {
	defer func() {
		err := recover()
		if err == nil {
			return
		}

		specErr, ok := err.(*verr.SpecError)
		if !ok {
			panic(fmt.Errorf("an unexpected error occurred: %v", err))
		}
		p.errs = append(p.errs, specErr)
		prod = nil

		p.skipOverLine()
	}()

	if !p.consume(tokenKindID) {
		tok := p.peek()
		if tok.kind == tokenKindInvalid {
			raiseSyntaxErrorWithDetail(tok.pos, synErrInvalidToken, tok.text)
		}
		raiseSyntaxErrorWithDetail(tok.pos, synErrNoProductionName, describeToken(tok))
	}
	lhs := p.lastTok

	if !p.consume(tokenKindArrow) {
		tok := p.peek()
		raiseSyntaxErrorWithDetail(tok.pos, synErrNoArrow, lhs.text)
	}

	alt := p.parseAlternative()
	rhs := []*AlternativeNode{alt}
	for p.consume(tokenKindOr) {
		alt := p.parseAlternative()
		rhs = append(rhs, alt)
	}

	if !p.consume(tokenKindNewline) {
		tok := p.peek()
		if tok.kind != tokenKindEOF {
			if tok.kind == tokenKindInvalid {
				raiseSyntaxErrorWithDetail(tok.pos, synErrInvalidToken, tok.text)
			}
			raiseSyntaxErrorWithDetail(tok.pos, synErrUnexpectedToken, describeToken(tok))
		}
	}

	return &ProductionNode{
		LHS: lhs.text,
		RHS: rhs,
		Pos: lhs.pos,
	}
}

func (p *parser) parseAlternative() *AlternativeNode {
	var elems []*ElementNode
	for p.consume(tokenKindID) {
		elems = append(elems, &ElementNode{
			ID:  p.lastTok.text,
			Pos: p.lastTok.pos,
		})
	}
	if len(elems) == 0 {
		tok := p.peek()
		if tok.kind == tokenKindInvalid {
			raiseSyntaxErrorWithDetail(tok.pos, synErrInvalidToken, tok.text)
		}
		raiseSyntaxErrorWithDetail(tok.pos, synErrEmptyAlternative, describeToken(tok))
	}

	return &AlternativeNode{
		Elements: elems,
		Pos:      elems[0].Pos,
	}
}

func (p *parser) skipNewlines() {
	for p.consume(tokenKindNewline) {
	}
}

func (p *parser) skipOverLine() {
	for {
		tok := p.peek()
		if tok.kind == tokenKindEOF {
			return
		}
		p.next()
		if tok.kind == tokenKindNewline {
			return
		}
	}
}

func describeToken(tok *token) string {
	switch tok.kind {
	case tokenKindID:
		return fmt.Sprintf("found %q", tok.text)
	case tokenKindNewline:
		return "found the end of the line"
	case tokenKindEOF:
		return "found the end of the input"
	default:
		return fmt.Sprintf("found %q", string(tok.kind))
	}
}

func (p *parser) peek() *token {
	if p.peekedTok == nil {
		p.peekedTok = p.read()
	}
	return p.peekedTok
}

func (p *parser) next() *token {
	tok := p.peek()
	p.peekedTok = nil
	p.lastTok = tok
	return tok
}

func (p *parser) consume(expected tokenKind) bool {
	if p.peek().kind != expected {
		return false
	}
	p.next()
	return true
}

func (p *parser) read() *token {
	tok, err := p.lex.next()
	if err != nil {
		panic(fmt.Errorf("the grammar lexer failed: %w", err))
	}
	return tok
}
