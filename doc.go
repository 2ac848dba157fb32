/*
Package keypad is a calculator keypad engine: a pure state machine that turns key presses into display state.

The state holds two operands, a pending operator and an overwrite flag. Every key press is an Action, and
every Action maps the current State to a new State without side effects. Invalid or premature keys are no-ops.

# Concept

The core (pkg/calculator) is a reducer. The Engine in this package wraps it with lifecycle hooks, logging and
optional session persistence, so the same logic can be hosted by a CLI, an HTTP server or an MCP agent.

# Usage

Stateless use, where the host keeps the state:

	eng, err := keypad.New()
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	state, _ := eng.DispatchAll(ctx, domain.State{},
		domain.AddDigit("3"),
		domain.ChooseOperation(domain.OperatorAdd),
		domain.AddDigit("4"),
		domain.Evaluate(),
	)
	fmt.Println(state.Current()) // 7

Session use, where the engine persists state in a ports.StateStore:

	eng, _ := keypad.New(keypad.WithStore(file.New(".keypad/sessions")))
	state, err := eng.Apply(ctx, "desk-1", domain.AddDigit("9"))
*/
package keypad
