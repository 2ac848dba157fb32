/*
Package runner implements the input loop and I/O orchestration for keypad engines.

It acts as the bridge between the engine and the outside world: it reads lines of
key presses, turns them into actions with ParseKeys, dispatches them (persisting
through a session when one is bound) and shows the resulting display through a
pluggable IOHandler.

# Key Components

  - Runner: the read, dispatch, display loop.
  - IOHandler: decouples how keys arrive and how the display is shown.
  - TextHandler: interactive or piped plain text.
  - JSONHandler: JSON Lines for programmatic hosts.
  - ParseKeys / FormatKeys: the key notation ("12+3=", "AC", "DEL").

# Usage

	r := runner.NewRunner(
		runner.WithEngine(engine),
		runner.WithSessionID("desk-1"),
		runner.WithInputHandler(runner.NewTextHandler(os.Stdin, os.Stdout)),
		runner.WithSignals(true),
	)

	if _, err := r.Run(ctx); err != nil {
		log.Fatal(err)
	}
*/
package runner
