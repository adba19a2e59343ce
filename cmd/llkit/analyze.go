package main

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var analyzeFlags = struct {
	start *string
}{}

func init() {
	cmd := &cobra.Command{
		Use:     "analyze [<grammar file path>]",
		Short:   "Print FIRST, FOLLOW, and the predictive parsing table of a grammar",
		Example: `  llkit analyze expr.ll --start E`,
		Args:    cobra.MaximumNArgs(1),
		RunE:    runAnalyze,
	}
	analyzeFlags.start = cmd.Flags().String("start", "", "start symbol (default the head of the first rule)")
	rootCmd.AddCommand(cmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	var grmPath string
	if len(args) > 0 {
		grmPath = args[0]
	}

	a, err := readAnalysis(grmPath, *analyzeFlags.start)
	if err != nil {
		return err
	}

	pterm.DefaultSection.Println("FIRST and FOLLOW")
	sets, err := setsTableData(a)
	if err != nil {
		return err
	}
	err = renderTable(sets)
	if err != nil {
		return err
	}

	pterm.DefaultSection.Println("Parsing table")
	err = renderTable(parsingTableData(a.Table()))
	if err != nil {
		return err
	}

	printConflicts(a)

	return nil
}
