package test

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strings"
	"sync"

	"github.com/timtadh/lexmachine"
	"github.com/timtadh/lexmachine/machines"
)

type TreeDiff struct {
	ExpectedPath string
	ActualPath   string
	Message      string
}

func newTreeDiff(expected, actual *Tree, message string) *TreeDiff {
	return &TreeDiff{
		ExpectedPath: expected.path(),
		ActualPath:   actual.path(),
		Message:      message,
	}
}

// Tree is an expected or actual parse tree. A non-terminal tree without children derived the empty
// production.
type Tree struct {
	Parent   *Tree
	Offset   int
	Kind     string
	Terminal bool
	Children []*Tree
}

func NewNonTerminalTree(kind string, children ...*Tree) *Tree {
	return &Tree{
		Kind:     kind,
		Children: children,
	}
}

func NewTerminalTree(kind string) *Tree {
	return &Tree{
		Kind:     kind,
		Terminal: true,
	}
}

func (t *Tree) Fill() *Tree {
	for i, c := range t.Children {
		c.Parent = t
		c.Offset = i
		c.Fill()
	}
	return t
}

func (t *Tree) path() string {
	if t.Parent == nil {
		return t.Kind
	}
	return fmt.Sprintf("%v.[%v]%v", t.Parent.path(), t.Offset, t.Kind)
}

// Format renders a tree in the bracket notation that test cases use.
func (t *Tree) Format() []byte {
	var b bytes.Buffer
	t.format(&b)
	return b.Bytes()
}

func (t *Tree) format(buf *bytes.Buffer) {
	buf.WriteString(t.Kind)
	if t.Terminal {
		return
	}
	buf.WriteString("[")
	if len(t.Children) == 0 {
		buf.WriteString(emptyText)
	}
	for i, c := range t.Children {
		if i > 0 {
			buf.WriteString(" ")
		}
		c.format(buf)
	}
	buf.WriteString("]")
}

func DiffTree(expected, actual *Tree) []*TreeDiff {
	if expected == nil && actual == nil {
		return nil
	}
	// _ matches any symbols.
	if expected.Kind != "_" && actual.Kind != expected.Kind {
		msg := fmt.Sprintf("unexpected kind: expected '%v' but got '%v'", expected.Kind, actual.Kind)
		return []*TreeDiff{
			newTreeDiff(expected, actual, msg),
		}
	}
	if expected.Terminal != actual.Terminal {
		msg := fmt.Sprintf("unexpected node: expected %v but got %v", nodeType(expected), nodeType(actual))
		return []*TreeDiff{
			newTreeDiff(expected, actual, msg),
		}
	}
	if len(actual.Children) != len(expected.Children) {
		msg := fmt.Sprintf("unexpected node count: expected %v but got %v", len(expected.Children), len(actual.Children))
		return []*TreeDiff{
			newTreeDiff(expected, actual, msg),
		}
	}
	var diffs []*TreeDiff
	for i, exp := range expected.Children {
		if ds := DiffTree(exp, actual.Children[i]); len(ds) > 0 {
			diffs = append(diffs, ds...)
		}
	}
	return diffs
}

func nodeType(t *Tree) string {
	if t.Terminal {
		return "a terminal"
	}
	return "a non-terminal"
}

type Verdict string

const (
	VerdictValid   = Verdict("valid")
	VerdictInvalid = Verdict("invalid")
)

// TestCase is an input with its expected verdict. When the expected part is a tree, Verdict is
// VerdictValid and Output holds the tree.
type TestCase struct {
	Description string
	Source      []byte
	Verdict     Verdict
	Output      *Tree
}

func ParseTestCase(r io.Reader) (*TestCase, error) {
	parts, err := splitIntoParts(r)
	if err != nil {
		return nil, err
	}
	if len(parts) != 3 {
		return nil, fmt.Errorf("too many or too few part delimiters: a test case consists of just tree parts: %v parts found", len(parts))
	}

	c := &TestCase{
		Description: string(parts[0].buf),
		Source:      parts[1].buf,
	}
	switch v := Verdict(strings.TrimSpace(string(parts[2].buf))); v {
	case VerdictValid, VerdictInvalid:
		c.Verdict = v
		return c, nil
	}

	tp := &treeParser{
		lineOffset: parts[0].lineCount + parts[1].lineCount + 2,
	}
	tree, err := tp.parseTree(parts[2].buf)
	if err != nil {
		return nil, err
	}
	c.Verdict = VerdictValid
	c.Output = tree
	return c, nil
}

type testCasePart struct {
	buf       []byte
	lineCount int
}

func splitIntoParts(r io.Reader) ([]*testCasePart, error) {
	var bufs []*testCasePart
	s := bufio.NewScanner(r)
	for {
		buf, lineCount, err := readPart(s)
		if err != nil {
			return nil, err
		}
		if buf == nil {
			break
		}
		bufs = append(bufs, &testCasePart{
			buf:       buf,
			lineCount: lineCount,
		})
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	return bufs, nil
}

var reDelim = regexp.MustCompile(`^\s*---+\s*$`)

func readPart(s *bufio.Scanner) ([]byte, int, error) {
	if !s.Scan() {
		return nil, 0, s.Err()
	}
	buf := &bytes.Buffer{}
	line := s.Bytes()
	if reDelim.Match(line) {
		// Return an empty slice because (*bytes.Buffer).Bytes() returns nil if we have never written data.
		return []byte{}, 0, nil
	}
	_, err := buf.Write(line)
	if err != nil {
		return nil, 0, err
	}
	lineCount := 1
	for s.Scan() {
		line := s.Bytes()
		if reDelim.Match(line) {
			return buf.Bytes(), lineCount, nil
		}
		_, err := buf.Write([]byte("\n"))
		if err != nil {
			return nil, 0, err
		}
		_, err = buf.Write(line)
		if err != nil {
			return nil, 0, err
		}
		lineCount++
	}
	if err := s.Err(); err != nil {
		return nil, 0, err
	}
	return buf.Bytes(), lineCount, nil
}

const emptyText = "epsilon"

const (
	treeTokenName = iota
	treeTokenOpen
	treeTokenClose
	treeTokenEOF
)

type treeToken struct {
	kind int
	text string
	row  int
	col  int
}

var (
	treeLexer     *lexmachine.Lexer
	treeLexerErr  error
	treeLexerOnce sync.Once
)

func compiledTreeLexer() (*lexmachine.Lexer, error) {
	treeLexerOnce.Do(func() {
		lex := lexmachine.NewLexer()
		lex.Add([]byte(`( |\t|\r|\n)+`), func(*lexmachine.Scanner, *machines.Match) (interface{}, error) {
			return nil, nil
		})
		lex.Add([]byte(`\[`), makeTreeToken(treeTokenOpen))
		lex.Add([]byte(`\]`), makeTreeToken(treeTokenClose))
		lex.Add([]byte(`[^ \t\r\n\[\]]+`), makeTreeToken(treeTokenName))
		if err := lex.Compile(); err != nil {
			treeLexerErr = fmt.Errorf("cannot compile the tree lexer: %w", err)
			return
		}
		treeLexer = lex
	})
	return treeLexer, treeLexerErr
}

func makeTreeToken(kind int) lexmachine.Action {
	return func(s *lexmachine.Scanner, m *machines.Match) (interface{}, error) {
		return s.Token(kind, string(m.Bytes), m), nil
	}
}

// treeParser reads the bracket notation:
//
//	tree     := name "[" children "]"
//	children := "epsilon" | { tree | name }
//
// A name that is not followed by "[" is a terminal.
type treeParser struct {
	lineOffset int
	toks       []*treeToken
	pos        int
}

func (tp *treeParser) parseTree(src []byte) (*Tree, error) {
	err := tp.tokenize(src)
	if err != nil {
		return nil, err
	}
	t, err := tp.parseNonTerminal()
	if err != nil {
		return nil, err
	}
	if tok := tp.peek(); tok.kind != treeTokenEOF {
		return nil, tp.errorf(tok, "unexpected '%v' after the root", tok.text)
	}
	return t.Fill(), nil
}

func (tp *treeParser) tokenize(src []byte) error {
	lex, err := compiledTreeLexer()
	if err != nil {
		return err
	}
	s, err := lex.Scanner(src)
	if err != nil {
		return err
	}
	row, col := 1, 1
	for {
		tok, err, eos := s.Next()
		if err != nil {
			if ui, ok := err.(*machines.UnconsumedInput); ok {
				return fmt.Errorf("%v:%v: invalid input: %v", tp.lineOffset+ui.FailLine, ui.FailColumn, string(ui.Text[ui.StartTC:ui.FailTC]))
			}
			return err
		}
		if eos {
			break
		}
		t := tok.(*lexmachine.Token)
		row, col = t.StartLine, t.StartColumn
		tp.toks = append(tp.toks, &treeToken{
			kind: t.Type,
			text: string(t.Lexeme),
			row:  row,
			col:  col,
		})
	}
	tp.toks = append(tp.toks, &treeToken{
		kind: treeTokenEOF,
		row:  row,
		col:  col,
	})
	return nil
}

func (tp *treeParser) parseNonTerminal() (*Tree, error) {
	name := tp.next()
	if name.kind != treeTokenName {
		return nil, tp.errorf(name, "a tree must start with a name")
	}
	if open := tp.next(); open.kind != treeTokenOpen {
		return nil, tp.errorf(open, "'[' must follow %v", name.text)
	}

	t := NewNonTerminalTree(name.text)
	if tok := tp.peek(); tok.kind == treeTokenName && tok.text == emptyText {
		tp.next()
		if end := tp.next(); end.kind != treeTokenClose {
			return nil, tp.errorf(end, "%v cannot be mixed with other children", emptyText)
		}
		return t, nil
	}
	for {
		tok := tp.peek()
		switch tok.kind {
		case treeTokenClose:
			tp.next()
			return t, nil
		case treeTokenName:
			if tp.lookahead(1).kind == treeTokenOpen {
				c, err := tp.parseNonTerminal()
				if err != nil {
					return nil, err
				}
				t.Children = append(t.Children, c)
				continue
			}
			tp.next()
			if tok.text == emptyText {
				return nil, tp.errorf(tok, "%v cannot be mixed with other children", emptyText)
			}
			t.Children = append(t.Children, NewTerminalTree(tok.text))
		case treeTokenEOF:
			return nil, tp.errorf(tok, "']' is missing")
		default:
			return nil, tp.errorf(tok, "unexpected '%v'", tok.text)
		}
	}
}

func (tp *treeParser) peek() *treeToken {
	return tp.lookahead(0)
}

func (tp *treeParser) lookahead(n int) *treeToken {
	if tp.pos+n >= len(tp.toks) {
		return tp.toks[len(tp.toks)-1]
	}
	return tp.toks[tp.pos+n]
}

func (tp *treeParser) next() *treeToken {
	tok := tp.peek()
	if tp.pos < len(tp.toks)-1 {
		tp.pos++
	}
	return tok
}

func (tp *treeParser) errorf(tok *treeToken, format string, a ...interface{}) error {
	return fmt.Errorf("%v:%v: %v", tp.lineOffset+tok.row, tok.col, fmt.Sprintf(format, a...))
}
