package grammar

type SemanticError struct {
	message string
}

func newSemanticError(message string) *SemanticError {
	return &SemanticError{
		message: message,
	}
}

func (e *SemanticError) Error() string {
	return e.message
}

var (
	semErrMixedEmpty          = newSemanticError("epsilon cannot be mixed with other symbols in an alternative")
	semErrDuplicateProduction = newSemanticError("duplicate production")
	semErrReservedSymbol      = newSemanticError("the symbol is reserved")
	semErrUndefinedStart      = newSemanticError("the start symbol must be a non-terminal defined in the grammar")
)
