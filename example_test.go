package keypad_test

import (
	"context"
	"fmt"
	"log"

	"github.com/aretw0/keypad"
	"github.com/aretw0/keypad/pkg/domain"
)

// ExampleEngine_DispatchAll shows the stateless flow where the caller owns the state.
func ExampleEngine_DispatchAll() {
	eng, err := keypad.New()
	if err != nil {
		log.Fatal(err)
	}

	state, err := eng.DispatchAll(context.Background(), domain.State{},
		domain.AddDigit("0"),
		domain.AddDigit("."),
		domain.AddDigit("1"),
		domain.ChooseOperation(domain.OperatorAdd),
		domain.AddDigit("0"),
		domain.AddDigit("."),
		domain.AddDigit("2"),
		domain.Evaluate(),
	)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(state.Current())
	// Output: 0.30000000000000004
}

// ExampleEngine_Apply shows a persisted session driven across calls.
func ExampleEngine_Apply() {
	eng, _ := keypad.New()
	ctx := context.Background()

	_, _ = eng.Apply(ctx, "desk", domain.AddDigit("9"), domain.ChooseOperation(domain.OperatorMultiply))
	state, _ := eng.Apply(ctx, "desk", domain.AddDigit("9"), domain.Evaluate())

	fmt.Println(state.Current())
	// Output: 81
}
