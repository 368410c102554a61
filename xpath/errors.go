package xpath

// SyntaxError is returned by Compile on a malformed XPath expression (spec
// §4.8).
type SyntaxError struct {
	Msg string
	Pos int
}

func (e *SyntaxError) Error() string { return e.Msg }

// EvalError is returned by program evaluation, e.g. for id() (spec §4.11:
// "id() is refused with a fixed error message").
type EvalError struct {
	Msg string
}

func (e *EvalError) Error() string { return e.Msg }

// errIDNotSupported is the fixed message id() always returns (spec §4.11).
var errIDNotSupported = &EvalError{Msg: "id() is not supported by this XPath engine"}
