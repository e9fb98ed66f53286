package interpreter

// breakSignal and continueSignal propagate loop control flow through Go's
// ordinary error channel without being mistaken for a raised exception:
// only for/while bodies ever catch them, and they never reach Run's
// exception-formatting path.
type breakSignal struct{}
type continueSignal struct{}

func (breakSignal) Error() string    { return "break" }
func (continueSignal) Error() string { return "continue" }

var errBreak error = breakSignal{}
var errContinue error = continueSignal{}

func isBreak(err error) bool {
	_, ok := err.(breakSignal)
	return ok
}

func isContinue(err error) bool {
	_, ok := err.(continueSignal)
	return ok
}
