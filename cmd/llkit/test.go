package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/nihei9/llkit/grammar"
	"github.com/nihei9/llkit/tester"
	"github.com/spf13/cobra"
)

var testFlags = struct {
	start   *string
	lexical *bool
}{}

func init() {
	cmd := &cobra.Command{
		Use:     "test <grammar file path> <test file path>|<test directory path>",
		Short:   "Test a grammar",
		Example: `  llkit test expr.ll test`,
		Args:    cobra.ExactArgs(2),
		RunE:    runTest,
	}
	testFlags.start = cmd.Flags().String("start", "", "start symbol (default the head of the first rule)")
	testFlags.lexical = cmd.Flags().Bool("lexical", false, "tokenize sources with the lexer compiled from the terminals")
	rootCmd.AddCommand(cmd)
}

func runTest(cmd *cobra.Command, args []string) error {
	a, err := readAnalysis(args[0], *testFlags.start)
	if err != nil {
		return fmt.Errorf("Cannot read a grammar: %w", err)
	}
	cg, _, err := grammar.Compile(a)
	if err != nil {
		return fmt.Errorf("Cannot compile the grammar: %w", err)
	}

	var cs []*tester.TestCaseWithMetadata
	{
		cs = tester.ListTestCases(args[1])
		errOccurred := false
		for _, c := range cs {
			if c.Error != nil {
				fmt.Fprintf(os.Stderr, "Failed to read a test case or a directory: %v\n%v\n", c.FilePath, c.Error)
				errOccurred = true
			}
		}
		if errOccurred {
			return errors.New("Cannot run test")
		}
	}

	t := &tester.Tester{
		Grammar: cg,
		Cases:   cs,
		Lexical: *testFlags.lexical,
	}
	rs := t.Run()
	testFailed := false
	for _, r := range rs {
		fmt.Fprintln(os.Stdout, r)
		if r.Error != nil {
			testFailed = true
		}
	}
	if testFailed {
		return errors.New("Test failed")
	}
	return nil
}
