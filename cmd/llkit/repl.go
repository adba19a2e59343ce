package main

import (
	"fmt"
	"strings"

	"github.com/chzyer/readline"
	"github.com/nihei9/llkit/grammar"
	spec "github.com/nihei9/llkit/spec/grammar"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var replFlags = struct {
	start    *string
	lexical  *bool
	maxDepth *int
}{}

func init() {
	cmd := &cobra.Command{
		Use:   "repl <grammar file path>",
		Short: "Validate input line by line",
		Long: `repl reads one input per line and validates it with both parsers.
Lines starting with a colon are commands:
  :parse <input>         validate input that itself starts with a colon
  :start <non-terminal>  analyze the grammar from another start symbol
  :load <path>           load another grammar
  :sets                  print FIRST and FOLLOW
  :table                 print the parsing table
  :trace on|off          print the steps of the predictive parser
  :lexical on|off        tokenize with the lexer compiled from the terminals
  :quit                  leave the prompt`,
		Example: `  llkit repl expr.ll`,
		Args:    cobra.ExactArgs(1),
		RunE:    runREPL,
	}
	replFlags.start = cmd.Flags().String("start", "", "start symbol (default the head of the first rule)")
	replFlags.lexical = cmd.Flags().Bool("lexical", false, "tokenize input with the lexer compiled from the terminals")
	replFlags.maxDepth = cmd.Flags().Int("max-depth", 1000, maxDepthUsage)
	rootCmd.AddCommand(cmd)
}

func runREPL(cmd *cobra.Command, args []string) error {
	s := newSession()
	s.lexical = *replFlags.lexical
	s.maxDepth = *replFlags.maxDepth
	err := s.load(args[0], *replFlags.start)
	if err != nil {
		return err
	}

	repl, err := readline.New("llkit> ")
	if err != nil {
		return err
	}
	defer repl.Close()

	pterm.Info.Println(fmt.Sprintf("loaded %v; quit with :quit or <ctrl>D", args[0]))
	for {
		line, err := repl.Readline()
		if err != nil { // io.EOF
			break
		}
		if line = strings.TrimSpace(line); line == "" {
			continue
		}
		quit, err := s.eval(line)
		if err != nil {
			pterm.Error.Println(err.Error())
			continue
		}
		if quit {
			break
		}
	}
	fmt.Println("Good bye!")
	return nil
}

// session is the state of an interactive prompt. Analyses are kept in a cache so that switching
// back to a start symbol or reloading an unchanged grammar does not analyze it again.
type session struct {
	cache    *grammar.AnalysisCache
	gram     *grammar.Grammar
	analysis *grammar.Analysis
	compiled *spec.CompiledGrammar
	lexical  bool
	trace    bool
	maxDepth int

	// last is the outcome of the latest validation.
	last *outcome
}

func newSession() *session {
	return &session{
		cache: grammar.NewAnalysisCache(),
	}
}

func (s *session) load(path string, start string) error {
	gram, err := readGrammar(path)
	if err != nil {
		return err
	}
	if start == "" {
		start = defaultStart(gram)
	}
	return s.use(gram, start)
}

func (s *session) use(gram *grammar.Grammar, start string) error {
	a, err := s.cache.Analyze(gram, start)
	if err != nil {
		return err
	}
	cg, _, err := grammar.Compile(a)
	if err != nil {
		return err
	}
	s.gram = gram
	s.analysis = a
	s.compiled = cg
	hits, misses := s.cache.Stats()
	tracer().Debugf("analysis cache; hits: %v, misses: %v", hits, misses)
	return nil
}

// eval runs a command or validates a line. It reports whether the prompt should end.
func (s *session) eval(line string) (bool, error) {
	if !strings.HasPrefix(line, ":") {
		return false, s.validate(line)
	}

	if rest, ok := cutCommand(line, ":parse"); ok {
		return false, s.validate(rest)
	}

	fields := strings.Fields(line[1:])
	if len(fields) == 0 {
		return false, fmt.Errorf("a command is missing")
	}
	cmd, args := fields[0], fields[1:]
	switch cmd {
	case "quit", "q":
		return true, nil
	case "start":
		if len(args) != 1 {
			return false, fmt.Errorf(":start takes one non-terminal")
		}
		err := s.use(s.gram, args[0])
		if err != nil {
			return false, err
		}
		printConflicts(s.analysis)
	case "load":
		if len(args) != 1 {
			return false, fmt.Errorf(":load takes one path")
		}
		err := s.load(args[0], "")
		if err != nil {
			return false, err
		}
		printConflicts(s.analysis)
	case "sets":
		data, err := setsTableData(s.analysis)
		if err != nil {
			return false, err
		}
		return false, renderTable(data)
	case "table":
		return false, renderTable(parsingTableData(s.analysis.Table()))
	case "trace", "lexical":
		on, err := parseSwitch(args)
		if err != nil {
			return false, err
		}
		if cmd == "trace" {
			s.trace = on
		} else {
			s.lexical = on
		}
	default:
		return false, fmt.Errorf("unknown command: %v", cmd)
	}
	return false, nil
}

// cutCommand returns the text after a command name. The name must be followed by a blank or end
// the line.
func cutCommand(line string, name string) (string, bool) {
	if !strings.HasPrefix(line, name) {
		return "", false
	}
	rest := line[len(name):]
	if rest != "" && rest[0] != ' ' && rest[0] != '\t' {
		return "", false
	}
	return strings.TrimSpace(rest), true
}

func parseSwitch(args []string) (bool, error) {
	if len(args) != 1 {
		return false, fmt.Errorf("expected on or off")
	}
	switch args[0] {
	case "on":
		return true, nil
	case "off":
		return false, nil
	}
	return false, fmt.Errorf("expected on or off: %v", args[0])
}

func (s *session) validate(line string) error {
	v := &validator{
		grammar:  s.compiled,
		lexical:  s.lexical,
		maxDepth: s.maxDepth,
	}
	o, err := v.validate([]byte(line))
	if err != nil {
		return err
	}
	s.last = o

	if o.predictiveErr != nil {
		pterm.Error.Println(fmt.Sprintf("predictive: %v", o.predictiveErr))
	} else {
		pRes := o.predictive
		if s.trace {
			err := renderTable(traceTableData(pRes.Trace))
			if err != nil {
				return err
			}
		}
		if pRes.Conflicted {
			pterm.Warning.Println(fmt.Sprintf("the grammar is %v; the verdict of the predictive parser may be wrong", s.compiled.Class))
		}
		if pRes.Valid {
			pterm.Success.Println("predictive: valid")
		} else {
			pterm.Error.Println(fmt.Sprintf("predictive: invalid: %v", pRes.Error))
		}
	}

	switch {
	case o.descentErr != nil:
		pterm.Error.Println(fmt.Sprintf("descent: %v", o.descentErr))
		return nil
	case !o.descent.Valid:
		pterm.Error.Println(fmt.Sprintf("descent: invalid: %v", o.descent.Failure))
		return nil
	}
	pterm.Success.Println("descent: valid")
	return renderTree(o.descent.Tree)
}
