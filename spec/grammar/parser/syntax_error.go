package parser

type SyntaxError struct {
	message string
}

func newSyntaxError(message string) *SyntaxError {
	return &SyntaxError{
		message: message,
	}
}

func (e *SyntaxError) Error() string {
	return e.message
}

var (
	// lexical errors
	synErrInvalidToken = newSyntaxError("invalid token")

	// syntax errors
	synErrNoProduction     = newSyntaxError("a grammar must have at least one production")
	synErrNoProductionName = newSyntaxError("a production name is missing")
	synErrNoArrow          = newSyntaxError("the separator -> must follow a production name")
	synErrEmptyAlternative = newSyntaxError("an alternative must contain at least one symbol; use epsilon for the empty production")
	synErrUnexpectedToken  = newSyntaxError("unexpected token; an alternative must be followed by | or a newline")
)
