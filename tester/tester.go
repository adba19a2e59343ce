package tester

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nihei9/llkit/driver"
	gspec "github.com/nihei9/llkit/spec/grammar"
	tspec "github.com/nihei9/llkit/spec/test"
)

type TestResult struct {
	TestCasePath string
	Error        error
	Diffs        []*tspec.TreeDiff
}

func (r *TestResult) String() string {
	if r.Error != nil {
		const indent1 = "    "
		const indent2 = indent1 + indent1

		msgLines := strings.Split(r.Error.Error(), "\n")
		msg := fmt.Sprintf("Failed %v:\n%v%v", r.TestCasePath, indent1, strings.Join(msgLines, "\n"+indent1))
		if len(r.Diffs) == 0 {
			return msg
		}
		var diffLines []string
		for _, diff := range r.Diffs {
			diffLines = append(diffLines, diff.Message)
			diffLines = append(diffLines, fmt.Sprintf("%vexpected path: %v", indent1, diff.ExpectedPath))
			diffLines = append(diffLines, fmt.Sprintf("%vactual path:   %v", indent1, diff.ActualPath))
		}
		return fmt.Sprintf("%v\n%v%v", msg, indent2, strings.Join(diffLines, "\n"+indent2))
	}
	return fmt.Sprintf("Passed %v", r.TestCasePath)
}

type TestCaseWithMetadata struct {
	TestCase *tspec.TestCase
	FilePath string
	Error    error
}

func ListTestCases(testPath string) []*TestCaseWithMetadata {
	fi, err := os.Stat(testPath)
	if err != nil {
		return []*TestCaseWithMetadata{
			{
				FilePath: testPath,
				Error:    err,
			},
		}
	}
	if !fi.IsDir() {
		c, err := parseTestCase(testPath)
		return []*TestCaseWithMetadata{
			{
				TestCase: c,
				FilePath: testPath,
				Error:    err,
			},
		}
	}

	es, err := os.ReadDir(testPath)
	if err != nil {
		return []*TestCaseWithMetadata{
			{
				FilePath: testPath,
				Error:    err,
			},
		}
	}
	var cases []*TestCaseWithMetadata
	for _, e := range es {
		cs := ListTestCases(filepath.Join(testPath, e.Name()))
		cases = append(cases, cs...)
	}
	return cases
}

func parseTestCase(testCasePath string) (*tspec.TestCase, error) {
	f, err := os.Open(testCasePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return tspec.ParseTestCase(f)
}

// Tester runs test cases with both parsers. The verdict of the predictive parser is checked only
// when the grammar is LL(1).
type Tester struct {
	Grammar *gspec.CompiledGrammar
	Cases   []*TestCaseWithMetadata

	// Lexical tokenizes sources with the lexer compiled into the grammar instead of splitting them at
	// blanks.
	Lexical bool
}

func (t *Tester) Run() []*TestResult {
	var rs []*TestResult
	for _, c := range t.Cases {
		rs = append(rs, t.runTest(c))
	}
	return rs
}

func (t *Tester) newTokenStream(src []byte) (driver.TokenStream, error) {
	if t.Lexical {
		return driver.NewLexicalTokenStream(t.Grammar, bytes.NewReader(src))
	}
	return driver.NewWhitespaceTokenStream(t.Grammar, bytes.NewReader(src))
}

func (t *Tester) runTest(c *TestCaseWithMetadata) *TestResult {
	fail := func(err error) *TestResult {
		return &TestResult{
			TestCasePath: c.FilePath,
			Error:        err,
		}
	}
	if c.Error != nil {
		return fail(c.Error)
	}
	wantValid := c.TestCase.Verdict == tspec.VerdictValid

	var pres *driver.PredictiveResult
	{
		p, err := driver.NewPredictiveParser(t.Grammar)
		if err != nil {
			return fail(err)
		}
		toks, err := t.newTokenStream(c.TestCase.Source)
		if err != nil {
			return fail(err)
		}
		pres, err = p.Parse(toks)
		if err != nil {
			return fail(err)
		}
	}
	if !pres.Conflicted && pres.Valid != wantValid {
		return fail(fmt.Errorf("the predictive parser returned an unexpected verdict: expected %v but got %v%v", c.TestCase.Verdict, verdict(pres.Valid), describe(pres.Error)))
	}

	var dres *driver.DescentResult
	{
		p, err := driver.NewDescentParser(t.Grammar)
		if err != nil {
			return fail(err)
		}
		toks, err := t.newTokenStream(c.TestCase.Source)
		if err != nil {
			return fail(err)
		}
		dres, err = p.Parse(toks)
		if err != nil {
			return fail(err)
		}
	}
	if dres.Valid != wantValid {
		return fail(fmt.Errorf("the descent parser returned an unexpected verdict: expected %v but got %v%v", c.TestCase.Verdict, verdict(dres.Valid), describe(dres.Failure)))
	}

	if c.TestCase.Output == nil {
		return &TestResult{
			TestCasePath: c.FilePath,
		}
	}
	diffs := tspec.DiffTree(c.TestCase.Output, genTree(dres.Tree).Fill())
	if len(diffs) > 0 {
		return &TestResult{
			TestCasePath: c.FilePath,
			Error:        fmt.Errorf("output mismatch"),
			Diffs:        diffs,
		}
	}
	return &TestResult{
		TestCasePath: c.FilePath,
	}
}

func verdict(valid bool) tspec.Verdict {
	if valid {
		return tspec.VerdictValid
	}
	return tspec.VerdictInvalid
}

func describe(err error) string {
	switch e := err.(type) {
	case *driver.UnexpectedTokenError:
		if e != nil {
			return ": " + e.Error()
		}
	case *driver.ParseFailure:
		if e != nil {
			return ": " + e.Error()
		}
	}
	return ""
}

func genTree(dTree *driver.Node) *tspec.Tree {
	if dTree.Text != "" {
		return tspec.NewTerminalTree(dTree.KindName)
	}
	var children []*tspec.Tree
	if len(dTree.Children) > 0 {
		children = make([]*tspec.Tree, len(dTree.Children))
		for i, c := range dTree.Children {
			children[i] = genTree(c)
		}
	}
	return tspec.NewNonTerminalTree(dTree.KindName, children...)
}
