/*
Package domain contains the core domain models of the keypad engine.

It defines the calculator display State, the Action variants a host can
dispatch, and the Operator symbols. This package is kept pure and free of
external dependencies like I/O or persistence, following Hexagonal
Architecture principles.

# Key Entities

  - State: the display snapshot (current operand, previous operand, operator, overwrite flag).
  - Action: a tagged variant over AddDigit, ChooseOperation, Evaluate, Clear and DeleteDigit.
  - Operator: one of + - * ÷.
  - StateDiff: a partial update between two states, used for streaming to remote displays.
*/
package domain
