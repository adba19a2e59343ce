package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/template"

	spec "github.com/nihei9/llkit/spec/grammar"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:     "show <report file path>",
		Short:   "Print a report in a readable format",
		Example: `  llkit show expr-report.json`,
		Args:    cobra.ExactArgs(1),
		RunE:    runShow,
	}
	rootCmd.AddCommand(cmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	report, err := readReport(args[0])
	if err != nil {
		return err
	}

	err = writeReport(os.Stdout, report)
	if err != nil {
		return err
	}

	return nil
}

func readReport(path string) (*spec.Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("Cannot open the report %s: %w", path, err)
	}
	defer f.Close()

	d, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}

	report := &spec.Report{}
	err = json.Unmarshal(d, report)
	if err != nil {
		return nil, err
	}

	return report, nil
}

const reportTemplate = `# Class

{{ .Class }}

# Conflicts

{{ printConflictSummary . }}
{{ range .Conflicts -}}
{{ printConflict . }}
{{ end }}
# Terminals

{{ range slice .Terminals 1 -}}
{{ printTerminal . }}
{{ end }}
# Productions

{{ range slice .Productions 1 -}}
{{ printProduction . }}
{{ end }}
# Non-terminals
{{ range slice .NonTerminals 1 }}
## {{ .Name }}{{ if eq .Number $.Start }} (start){{ end }}{{ if .LeftRecursive }} (left-recursive){{ end }}

FIRST:  {{ printFirst . }}
FOLLOW: {{ printFollow . }}
{{ range cellsOf . -}}
{{ printCell . }}
{{ end -}}
{{ end }}`

func writeReport(w io.Writer, report *spec.Report) error {
	termName := func(sym int) string {
		return report.Terminals[sym].Name
	}

	nonTermName := func(sym int) string {
		return report.NonTerminals[sym].Name
	}

	prodText := func(num int) string {
		prod := report.Productions[num]
		var b strings.Builder
		fmt.Fprintf(&b, "%v ->", nonTermName(prod.LHS))
		if len(prod.RHS) == 0 {
			fmt.Fprintf(&b, " epsilon")
		}
		for _, e := range prod.RHS {
			if e > 0 {
				fmt.Fprintf(&b, " %v", termName(e))
			} else {
				fmt.Fprintf(&b, " %v", nonTermName(e*-1))
			}
		}
		return b.String()
	}

	symbolList := func(terms []int, marker string) string {
		var syms []string
		for _, t := range terms {
			syms = append(syms, termName(t))
		}
		if marker != "" {
			syms = append(syms, marker)
		}
		return "{" + strings.Join(syms, ", ") + "}"
	}

	fns := template.FuncMap{
		"printConflictSummary": func(report *spec.Report) string {
			switch len(report.Conflicts) {
			case 0:
				return "No conflict"
			case 1:
				return "1 conflict occurred. The production declared first was kept."
			default:
				return fmt.Sprintf("%v conflicts occurred. The production declared first was kept in each cell.", len(report.Conflicts))
			}
		},
		"printConflict": func(c *spec.Conflict) string {
			return fmt.Sprintf("%v conflict at (%v, %v): [%v] is kept, [%v] is rejected",
				c.Kind, nonTermName(c.NonTerminal), termName(c.Terminal),
				prodText(c.KeptProduction), prodText(c.RejectedProduction))
		},
		"printTerminal": func(term *spec.Terminal) string {
			return fmt.Sprintf("%4v %v", term.Number, term.Name)
		},
		"printProduction": func(prod *spec.Production) string {
			return fmt.Sprintf("%4v %v", prod.Number, prodText(prod.Number))
		},
		"printFirst": func(nt *spec.NonTerminal) string {
			var marker string
			if nt.FirstEmpty {
				marker = "epsilon"
			}
			return symbolList(nt.First, marker)
		},
		"printFollow": func(nt *spec.NonTerminal) string {
			var marker string
			if nt.FollowEOF {
				marker = "$"
			}
			return symbolList(nt.Follow, marker)
		},
		"cellsOf": func(nt *spec.NonTerminal) []*spec.Cell {
			var cells []*spec.Cell
			for _, c := range report.Cells {
				if c.NonTerminal == nt.Number {
					cells = append(cells, c)
				}
			}
			return cells
		},
		"printCell": func(c *spec.Cell) string {
			return fmt.Sprintf("%4v  %v", termName(c.Terminal), prodText(c.Production))
		},
	}

	tmpl, err := template.New("").Funcs(fns).Parse(reportTemplate)
	if err != nil {
		return err
	}

	err = tmpl.Execute(w, report)
	if err != nil {
		return err
	}

	return nil
}
