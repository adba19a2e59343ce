package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime/debug"

	"github.com/nihei9/llkit/driver"
	spec "github.com/nihei9/llkit/spec/grammar"
	"github.com/spf13/cobra"
)

var parseFlags = struct {
	source   *string
	lexical  *bool
	trace    *bool
	format   *string
	maxDepth *int
}{}

func init() {
	cmd := &cobra.Command{
		Use:     "parse <compiled grammar file path>",
		Short:   "Validate a token stream with the predictive and the descent parser",
		Example: `  echo "id + id * id" | llkit parse expr.json --trace`,
		Args:    cobra.ExactArgs(1),
		RunE:    runParse,
	}
	parseFlags.source = cmd.Flags().StringP("source", "s", "", "source file path (default stdin)")
	parseFlags.lexical = cmd.Flags().Bool("lexical", false, "tokenize the source with the lexer compiled from the terminals")
	parseFlags.trace = cmd.Flags().Bool("trace", false, "print the steps of the predictive parser")
	parseFlags.format = cmd.Flags().String("format", "tree", "parse tree format [tree|indent|bracket]")
	parseFlags.maxDepth = cmd.Flags().Int("max-depth", 1000, maxDepthUsage)
	rootCmd.AddCommand(cmd)
}

func runParse(cmd *cobra.Command, args []string) (retErr error) {
	defer func() {
		v := recover()
		if v == nil {
			return
		}
		err, ok := v.(error)
		if !ok {
			err = fmt.Errorf("an unexpected error occurred: %v", v)
		}
		fmt.Fprintf(os.Stderr, "%v:\n%v", err, string(debug.Stack()))
		retErr = err
	}()

	cgram, err := readCompiledGrammar(args[0])
	if err != nil {
		return fmt.Errorf("Cannot read a compiled grammar: %w", err)
	}

	var src []byte
	{
		var r io.Reader = os.Stdin
		if *parseFlags.source != "" {
			f, err := os.Open(*parseFlags.source)
			if err != nil {
				return fmt.Errorf("Cannot open the source file %s: %w", *parseFlags.source, err)
			}
			defer f.Close()
			r = f
		}
		src, err = io.ReadAll(r)
		if err != nil {
			return err
		}
	}

	v := &validator{
		grammar:  cgram,
		lexical:  *parseFlags.lexical,
		maxDepth: *parseFlags.maxDepth,
	}
	o, err := v.validate(src)
	if err != nil {
		return err
	}

	if o.predictiveErr != nil {
		fmt.Fprintf(os.Stdout, "predictive: error: %v\n", o.predictiveErr)
	} else {
		pRes := o.predictive
		if *parseFlags.trace {
			driver.WriteTrace(os.Stdout, pRes.Trace)
		}
		if pRes.Conflicted {
			fmt.Fprintf(os.Stderr, "warning: the grammar is %v; the verdict of the predictive parser may be wrong\n", cgram.Class)
		}
		if pRes.Valid {
			fmt.Fprintln(os.Stdout, "predictive: valid")
		} else {
			fmt.Fprintf(os.Stdout, "predictive: invalid: %v\n", pRes.Error)
		}
	}

	switch {
	case o.descentErr != nil:
		fmt.Fprintf(os.Stdout, "descent: error: %v\n", o.descentErr)
	case o.descent.Valid:
		fmt.Fprintln(os.Stdout, "descent: valid")
		err := writeTree(os.Stdout, o.descent.Tree, *parseFlags.format)
		if err != nil {
			return err
		}
	default:
		fmt.Fprintf(os.Stdout, "descent: invalid: %v\n", o.descent.Failure)
	}

	if !o.accepted() {
		return errors.New("The input was rejected")
	}
	return nil
}

func writeTree(w io.Writer, tree *driver.Node, format string) error {
	switch format {
	case "tree":
		driver.PrintTree(w, tree)
	case "indent":
		driver.WriteIndentedTree(w, tree)
	case "bracket":
		fmt.Fprintln(w, driver.FormatBracketTree(tree))
	default:
		return fmt.Errorf("unknown tree format: %v", format)
	}
	return nil
}

// A right-recursive rule such as `S -> a S | epsilon` nests once per token, so the default depth
// rejects inputs of more than about a thousand tokens with a recursion error.
const maxDepthUsage = "maximum nesting of non-terminals in the descent parser; right-recursive rules nest once per token, so long inputs need a larger value"

// validator runs both parsers over the same source.
type validator struct {
	grammar  *spec.CompiledGrammar
	lexical  bool
	maxDepth int
}

func (v *validator) tokenStream(src []byte) (driver.TokenStream, error) {
	if v.lexical {
		return driver.NewLexicalTokenStream(v.grammar, bytes.NewReader(src))
	}
	return driver.NewWhitespaceTokenStream(v.grammar, bytes.NewReader(src))
}

// outcome is what each parser made of one source. A parser that failed has a nil result and an
// error, and the result of the other parser is kept.
type outcome struct {
	predictive    *driver.PredictiveResult
	predictiveErr error
	descent       *driver.DescentResult
	descentErr    error
}

func (o *outcome) accepted() bool {
	return o.predictive != nil && o.predictive.Valid && o.descent != nil && o.descent.Valid
}

// validate runs both parsers. It returns an error only when the parsers cannot be set up or the
// source cannot be tokenized.
func (v *validator) validate(src []byte) (*outcome, error) {
	pp, err := driver.NewPredictiveParser(v.grammar)
	if err != nil {
		return nil, err
	}
	var opts []driver.DescentOption
	if v.maxDepth > 0 {
		opts = append(opts, driver.MaxDepth(v.maxDepth))
	}
	dp, err := driver.NewDescentParser(v.grammar, opts...)
	if err != nil {
		return nil, err
	}

	o := &outcome{}
	ts, err := v.tokenStream(src)
	if err != nil {
		return nil, err
	}
	o.predictive, o.predictiveErr = pp.Parse(ts)

	ts, err = v.tokenStream(src)
	if err != nil {
		return nil, err
	}
	o.descent, o.descentErr = dp.Parse(ts)

	tracer().Debugf("predictive: %v, descent: %v", o.predictive != nil && o.predictive.Valid, o.descent != nil && o.descent.Valid)
	return o, nil
}
