package grammar

import (
	"strings"

	"github.com/nihei9/llkit/grammar/symbol"
)

// SymbolSet is an immutable set of terminals as returned by FIRST and FOLLOW. FIRST sets may hold
// the empty marker and FOLLOW sets may hold the end-of-input marker. Terminals are kept in the
// order they first appear in the grammar.
type SymbolSet struct {
	terminals []string
	empty     bool
	eof       bool
}

func newSymbolSet(r *symbol.SymbolTableReader, syms []symbol.Symbol, empty, eof bool) SymbolSet {
	terms := make([]string, 0, len(syms))
	for _, sym := range syms {
		text, _ := r.ToText(sym)
		terms = append(terms, text)
	}
	return SymbolSet{
		terminals: terms,
		empty:     empty,
		eof:       eof,
	}
}

// Terminals returns a copy of the terminals. The markers are not included.
func (s SymbolSet) Terminals() []string {
	terms := make([]string, len(s.terminals))
	copy(terms, s.terminals)
	return terms
}

// Symbols returns the terminals followed by `$` and `epsilon` when they are members.
func (s SymbolSet) Symbols() []string {
	syms := s.Terminals()
	if s.eof {
		syms = append(syms, symbol.SymbolNameEOF)
	}
	if s.empty {
		syms = append(syms, symbol.SymbolNameEmpty)
	}
	return syms
}

func (s SymbolSet) HasEmpty() bool {
	return s.empty
}

func (s SymbolSet) HasEOF() bool {
	return s.eof
}

func (s SymbolSet) Len() int {
	n := len(s.terminals)
	if s.empty {
		n++
	}
	if s.eof {
		n++
	}
	return n
}

func (s SymbolSet) Contains(text string) bool {
	switch text {
	case symbol.SymbolNameEmpty:
		return s.empty
	case symbol.SymbolNameEOF:
		return s.eof
	}
	for _, t := range s.terminals {
		if t == text {
			return true
		}
	}
	return false
}

func (s SymbolSet) Equal(t SymbolSet) bool {
	if s.empty != t.empty || s.eof != t.eof || len(s.terminals) != len(t.terminals) {
		return false
	}
	for _, text := range s.terminals {
		if !t.Contains(text) {
			return false
		}
	}
	return true
}

func (s SymbolSet) String() string {
	return "{" + strings.Join(s.Symbols(), ", ") + "}"
}
