/*
Package calculator implements the keypad state machine.

Transition is a pure reducer: given the current display State and an Action
it returns the next State. It never fails; premature or invalid actions are
no-ops that return the input unchanged. Evaluate reduces a pending binary
expression to its canonical numeric string.

	s := domain.State{}
	s = calculator.Transition(s, domain.AddDigit("3"))
	s = calculator.Transition(s, domain.ChooseOperation(domain.OperatorAdd))
	s = calculator.Transition(s, domain.AddDigit("4"))
	s = calculator.Transition(s, domain.Evaluate())
	// s.Current() == "7", s.Overwrite == true
*/
package calculator
