package grammar

type Terminal struct {
	Number int    `json:"number"`
	Name   string `json:"name"`
}

type NonTerminal struct {
	Number        int    `json:"number"`
	Name          string `json:"name"`
	First         []int  `json:"first"`
	FirstEmpty    bool   `json:"first_empty"`
	Follow        []int  `json:"follow"`
	FollowEOF     bool   `json:"follow_eof"`
	LeftRecursive bool   `json:"left_recursive"`
}

type Production struct {
	Number int   `json:"number"`
	LHS    int   `json:"lhs"`
	RHS    []int `json:"rhs"`
}

// Cell is a non-empty cell of a predictive table.
type Cell struct {
	NonTerminal int `json:"non_terminal"`
	Terminal    int `json:"terminal"`
	Production  int `json:"production"`
}

type Conflict struct {
	NonTerminal        int    `json:"non_terminal"`
	Terminal           int    `json:"terminal"`
	KeptProduction     int    `json:"kept_production"`
	RejectedProduction int    `json:"rejected_production"`
	Kind               string `json:"kind"`
}

type Report struct {
	Name         string         `json:"name"`
	Start        int            `json:"start"`
	Class        string         `json:"class"`
	Terminals    []*Terminal    `json:"terminals"`
	NonTerminals []*NonTerminal `json:"non_terminals"`
	Productions  []*Production  `json:"productions"`
	Cells        []*Cell        `json:"cells"`
	Conflicts    []*Conflict    `json:"conflicts"`
}
