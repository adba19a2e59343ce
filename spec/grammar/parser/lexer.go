package parser

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/timtadh/lexmachine"
	"github.com/timtadh/lexmachine/machines"
)

type tokenKind string

const (
	tokenKindID      = tokenKind("id")
	tokenKindArrow   = tokenKind("->")
	tokenKindOr      = tokenKind("|")
	tokenKindNewline = tokenKind("newline")
	tokenKindEOF     = tokenKind("eof")
	tokenKindInvalid = tokenKind("invalid")
)

// tokenKinds is indexed by the token type lexmachine reports.
var tokenKinds = []tokenKind{
	tokenKindID,
	tokenKindArrow,
	tokenKindOr,
	tokenKindNewline,
}

type Position struct {
	Row int
	Col int
}

func newPosition(row, col int) Position {
	return Position{
		Row: row,
		Col: col,
	}
}

type token struct {
	kind tokenKind
	text string
	pos  Position
}

func newSymbolToken(kind tokenKind, pos Position) *token {
	return &token{
		kind: kind,
		pos:  pos,
	}
}

func newIDToken(text string, pos Position) *token {
	return &token{
		kind: tokenKindID,
		text: text,
		pos:  pos,
	}
}

func newEOFToken(pos Position) *token {
	return &token{
		kind: tokenKindEOF,
		pos:  pos,
	}
}

func newInvalidToken(text string, pos Position) *token {
	return &token{
		kind: tokenKindInvalid,
		text: text,
		pos:  pos,
	}
}

var (
	ruleLexer     *lexmachine.Lexer
	ruleLexerErr  error
	ruleLexerOnce sync.Once
)

// A symbol is any run of characters other than blanks and `|`. A `-` may occur anywhere in a
// symbol unless it starts the separator `->`, and a run of `-` is a symbol of its own.
const symbolPattern = `([^ \t\r\n\|\-]|\-[^> \t\r\n\|])+\-*|\-+`

func compiledRuleLexer() (*lexmachine.Lexer, error) {
	ruleLexerOnce.Do(func() {
		lex := lexmachine.NewLexer()
		lex.Add([]byte(`( |\t|\r)+`), skip)
		lex.Add([]byte(`\n`), makeToken(tokenKindNewline))
		lex.Add([]byte(literalPattern("->")), makeToken(tokenKindArrow))
		lex.Add([]byte(literalPattern("|")), makeToken(tokenKindOr))
		lex.Add([]byte(symbolPattern), symbolToken)
		if err := lex.Compile(); err != nil {
			ruleLexerErr = fmt.Errorf("cannot compile the grammar lexer: %w", err)
			return
		}
		ruleLexer = lex
	})
	return ruleLexer, ruleLexerErr
}

func literalPattern(lit string) string {
	return "\\" + strings.Join(strings.Split(lit, ""), "\\")
}

func skip(*lexmachine.Scanner, *machines.Match) (interface{}, error) {
	return nil, nil
}

func makeToken(kind tokenKind) lexmachine.Action {
	id := -1
	for i, k := range tokenKinds {
		if k == kind {
			id = i
			break
		}
	}
	return func(s *lexmachine.Scanner, m *machines.Match) (interface{}, error) {
		return s.Token(id, string(m.Bytes), m), nil
	}
}

// symbolToken gives the trailing `-` of a symbol back to the scanner when it starts `->`, so that
// `A->b` still splits at the arrow.
func symbolToken(s *lexmachine.Scanner, m *machines.Match) (interface{}, error) {
	n := len(m.Bytes)
	if n > 1 && m.Bytes[n-1] == '-' && m.TC+n < len(s.Text) && s.Text[m.TC+n] == '>' {
		m.Bytes = m.Bytes[:n-1]
		m.EndColumn--
		s.TC = m.TC + n - 1
	}
	return makeToken(tokenKindID)(s, m)
}

type lexer struct {
	s       *lexmachine.Scanner
	lastPos Position
}

func newLexer(src io.Reader) (*lexer, error) {
	text, err := io.ReadAll(src)
	if err != nil {
		return nil, err
	}
	lex, err := compiledRuleLexer()
	if err != nil {
		return nil, err
	}
	s, err := lex.Scanner(text)
	if err != nil {
		return nil, err
	}
	return &lexer{
		s:       s,
		lastPos: newPosition(1, 1),
	}, nil
}

func (l *lexer) next() (*token, error) {
	tok, err, eos := l.s.Next()
	if err != nil {
		if ui, ok := err.(*machines.UnconsumedInput); ok {
			l.s.TC = ui.FailTC
			pos := newPosition(ui.FailLine, ui.FailColumn)
			l.lastPos = pos
			return newInvalidToken(string(ui.Text[ui.StartTC:ui.FailTC]), pos), nil
		}
		return nil, err
	}
	if eos {
		return newEOFToken(l.lastPos), nil
	}

	t := tok.(*lexmachine.Token)
	pos := newPosition(t.StartLine, t.StartColumn)
	l.lastPos = pos
	switch kind := tokenKinds[t.Type]; kind {
	case tokenKindID:
		return newIDToken(string(t.Lexeme), pos), nil
	default:
		return newSymbolToken(kind, pos), nil
	}
}
