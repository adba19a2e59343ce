package driver

import (
	"bufio"
	"io"
	"unicode"

	spec "github.com/nihei9/llkit/spec/grammar"
	mldriver "github.com/nihei9/maleeni/driver"
)

type VToken interface {
	// TerminalID returns the terminal number of the token. It returns 0 when the token is not a terminal of
	// the grammar.
	TerminalID() int

	Lexeme() []byte

	// EOF returns true when the token is the end marker that every stream yields last.
	EOF() bool

	Invalid() bool

	// Position returns the row and column of the token. Both start at 1.
	Position() (int, int)
}

type TokenStream interface {
	Next() (VToken, error)
}

type textToken struct {
	terminalID int
	text       string
	row        int
	col        int
	eof        bool
}

func (t *textToken) TerminalID() int {
	return t.terminalID
}

func (t *textToken) Lexeme() []byte {
	return []byte(t.text)
}

func (t *textToken) EOF() bool {
	return t.eof
}

func (t *textToken) Invalid() bool {
	return !t.eof && t.terminalID == 0
}

func (t *textToken) Position() (int, int) {
	return t.row, t.col
}

type whitespaceTokenStream struct {
	toks []*textToken
	next int
}

// NewWhitespaceTokenStream splits src at blanks. Each field is a token, and a field that is not a
// terminal of the grammar is invalid.
func NewWhitespaceTokenStream(g *spec.CompiledGrammar, src io.Reader) (TokenStream, error) {
	gram := NewGrammar(g)

	var toks []*textToken
	row := 0
	col := 1
	s := bufio.NewScanner(src)
	for s.Scan() {
		row++
		line := []rune(s.Text())
		for i := 0; i < len(line); {
			if unicode.IsSpace(line[i]) {
				i++
				continue
			}
			j := i
			for j < len(line) && !unicode.IsSpace(line[j]) {
				j++
			}
			text := string(line[i:j])
			toks = append(toks, &textToken{
				terminalID: gram.ToTerminal(text),
				text:       text,
				row:        row,
				col:        i + 1,
			})
			i = j
		}
		col = len(line) + 1
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	if row == 0 {
		row = 1
	}
	toks = append(toks, &textToken{
		terminalID: gram.EOF(),
		row:        row,
		col:        col,
		eof:        true,
	})

	return &whitespaceTokenStream{
		toks: toks,
	}, nil
}

func (s *whitespaceTokenStream) Next() (VToken, error) {
	tok := s.toks[s.next]
	if s.next < len(s.toks)-1 {
		s.next++
	}
	return tok, nil
}

type lexicalToken struct {
	terminalID int
	tok        *mldriver.Token
}

func (t *lexicalToken) TerminalID() int {
	return t.terminalID
}

func (t *lexicalToken) Lexeme() []byte {
	return t.tok.Lexeme
}

func (t *lexicalToken) EOF() bool {
	return t.tok.EOF
}

func (t *lexicalToken) Invalid() bool {
	return t.tok.Invalid
}

func (t *lexicalToken) Position() (int, int) {
	return t.tok.Row + 1, t.tok.Col + 1
}

type lexicalTokenStream struct {
	lex            *mldriver.Lexer
	kindToTerminal []int
	skip           []int
	eof            int
}

// NewLexicalTokenStream tokenizes src with the lexer compiled into the grammar, so terminals do not
// have to be separated by blanks.
func NewLexicalTokenStream(g *spec.CompiledGrammar, src io.Reader) (TokenStream, error) {
	lex, err := mldriver.NewLexer(mldriver.NewLexSpec(g.LexicalSpecification.Maleeni.Spec), src)
	if err != nil {
		return nil, err
	}

	return &lexicalTokenStream{
		lex:            lex,
		kindToTerminal: g.LexicalSpecification.Maleeni.KindToTerminal,
		skip:           g.LexicalSpecification.Maleeni.Skip,
		eof:            g.ParsingTable.EOFSymbol,
	}, nil
}

func (l *lexicalTokenStream) Next() (VToken, error) {
	for {
		tok, err := l.lex.Next()
		if err != nil {
			return nil, err
		}
		switch {
		case tok.EOF:
			return &lexicalToken{
				terminalID: l.eof,
				tok:        tok,
			}, nil
		case tok.Invalid:
			return &lexicalToken{
				tok: tok,
			}, nil
		case l.skip[tok.KindID] == 1:
			continue
		}
		return &lexicalToken{
			terminalID: l.kindToTerminal[tok.KindID],
			tok:        tok,
		}, nil
	}
}

// readTokens reads a stream up to and including the end marker.
func readTokens(ts TokenStream) ([]VToken, error) {
	var toks []VToken
	for {
		tok, err := ts.Next()
		if err != nil {
			return nil, err
		}
		toks = append(toks, tok)
		if tok.EOF() {
			return toks, nil
		}
	}
}

func tokenText(tok VToken) string {
	if tok.EOF() {
		return "$"
	}
	return string(tok.Lexeme())
}
