package main

import (
	"fmt"
	"strings"

	"github.com/nihei9/llkit/driver"
	"github.com/nihei9/llkit/grammar"
	"github.com/pterm/pterm"
)

func setsTableData(a *grammar.Analysis) (pterm.TableData, error) {
	leftRec := map[string]bool{}
	for _, nt := range a.LeftRecursive() {
		leftRec[nt] = true
	}

	data := pterm.TableData{
		{"Non-terminal", "FIRST", "FOLLOW", "Left-recursive"},
	}
	for _, nt := range a.Grammar().NonTerminals() {
		fst, err := a.First(nt)
		if err != nil {
			return nil, err
		}
		flw, err := a.Follow(nt)
		if err != nil {
			return nil, err
		}
		var rec string
		if leftRec[nt] {
			rec = "yes"
		}
		data = append(data, []string{nt, fst.String(), flw.String(), rec})
	}
	return data, nil
}

func parsingTableData(tab *grammar.ParsingTable) pterm.TableData {
	cols := tab.Columns()
	header := append([]string{""}, cols...)
	data := pterm.TableData{header}
	for _, nt := range tab.Rows() {
		row := []string{nt}
		for _, t := range cols {
			row = append(row, tab.CellText(nt, t))
		}
		data = append(data, row)
	}
	return data
}

func traceTableData(rows []*driver.TraceRow) pterm.TableData {
	data := pterm.TableData{
		{"Matched", "Stack", "Input", "Action"},
	}
	for _, row := range rows {
		data = append(data, []string{
			strings.Join(row.Matched, " "),
			strings.Join(row.Stack, " "),
			strings.Join(row.Input, " "),
			row.Action,
		})
	}
	return data
}

func renderTable(data pterm.TableData) error {
	return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

// renderTree draws a parse tree with pterm. The leveled list mirrors the depth-first order of the
// nodes.
func renderTree(node *driver.Node) error {
	var ll pterm.LeveledList
	var walk func(n *driver.Node, level int)
	walk = func(n *driver.Node, level int) {
		ll = append(ll, pterm.LeveledListItem{Level: level, Text: nodeLabel(n)})
		if n.Text == "" && len(n.Children) == 0 {
			ll = append(ll, pterm.LeveledListItem{Level: level + 1, Text: "epsilon"})
			return
		}
		for _, c := range n.Children {
			walk(c, level+1)
		}
	}
	walk(node, 0)
	root := pterm.NewTreeFromLeveledList(ll)
	return pterm.DefaultTree.WithRoot(root).Render()
}

func nodeLabel(n *driver.Node) string {
	if n.Text != "" {
		return n.Text
	}
	return n.KindName
}

func printConflicts(a *grammar.Analysis) {
	if a.Class() == grammar.ClassLL1 {
		pterm.Success.Println(fmt.Sprintf("the grammar is %v", a.Class()))
	} else {
		pterm.Warning.Println(fmt.Sprintf("the grammar is %v", a.Class()))
	}
	for _, c := range a.Conflicts() {
		pterm.Warning.Println(c.String())
	}
	for _, nt := range a.LeftRecursive() {
		pterm.Warning.Println(fmt.Sprintf("%v is left-recursive; the descent parser cannot handle it", nt))
	}
}
