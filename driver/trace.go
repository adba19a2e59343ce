package driver

import (
	"fmt"
	"io"
	"strings"
)

// WriteTrace writes the rows of a predictive parse as four left-justified columns: matched input,
// stack, remaining input, and action.
func WriteTrace(w io.Writer, rows []*TraceRow) {
	fmt.Fprintf(w, "%-30s %-40s %-40s %s\n", "Matched", "Stack", "Input", "Action")
	for _, row := range rows {
		fmt.Fprintf(w, "%-30s %-40s %-40s %s\n",
			strings.Join(row.Matched, " "),
			strings.Join(row.Stack, " "),
			strings.Join(row.Input, " "),
			row.Action)
	}
}
