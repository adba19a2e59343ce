package grammar

import mlspec "github.com/nihei9/maleeni/spec"

// Classes of a compiled grammar. Only an LL(1) grammar has a predictive table without conflicts.
const (
	ClassLL1       = "LL(1)"
	ClassAmbiguous = "ambiguous"
)

// CompiledGrammar is the serializable form of an analyzed grammar. Both parsers of the driver
// package run on it.
type CompiledGrammar struct {
	Name                 string                `json:"name"`
	Class                string                `json:"class"`
	LexicalSpecification *LexicalSpecification `json:"lexical_specification"`
	ParsingTable         *ParsingTable         `json:"parsing_table"`
}

type LexicalSpecification struct {
	Lexer   string   `json:"lexer"`
	Maleeni *Maleeni `json:"maleeni"`
}

// Maleeni holds a lexer that recognizes every terminal literally and skips blanks.
type Maleeni struct {
	Spec           *mlspec.CompiledLexSpec `json:"spec"`
	KindToTerminal []int                   `json:"kind_to_terminal"`
	TerminalToKind []int                   `json:"terminal_to_kind"`
	Skip           []int                   `json:"skip"`
}

// PredictTable is a predictive table whose identical rows are shared and whose unique rows are
// overlapped by row displacement. A value is a production number; EmptyValue means no entry.
type PredictTable struct {
	RowNums          []int `json:"row_nums"`
	OriginalRowCount int   `json:"original_row_count"`
	OriginalColCount int   `json:"original_col_count"`
	EmptyValue       int   `json:"empty_value"`
	Entries          []int `json:"entries"`
	Bounds           []int `json:"bounds"`
	RowDisplacement  []int `json:"row_displacement"`
}

// ParsingTable describes symbols and productions by number. Terminal 0 and non-terminal 0 are
// unused, and terminal 1 is `$`. In RHS, a positive element is a terminal number and a negative
// element is a non-terminal number multiplied by -1. An empty RHS is the empty production.
type ParsingTable struct {
	Predict          *PredictTable `json:"predict"`
	StartSymbol      int           `json:"start_symbol"`
	LHSSymbols       []int         `json:"lhs_symbols"`
	RHS              [][]int       `json:"rhs"`
	Terminals        []string      `json:"terminals"`
	TerminalCount    int           `json:"terminal_count"`
	NonTerminals     []string      `json:"non_terminals"`
	NonTerminalCount int           `json:"non_terminal_count"`
	EOFSymbol        int           `json:"eof_symbol"`
}
