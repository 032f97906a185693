package chatflow_test

import (
	"context"
	"fmt"
	"log"

	"github.com/aretw0/chatflow"
	"github.com/aretw0/chatflow/pkg/domain"
	"github.com/aretw0/chatflow/pkg/dsl"
)

// This example provisions a bot, publishes a two-node flow and runs one turn.
func Example() {
	eng, err := chatflow.New()
	if err != nil {
		log.Fatal(err)
	}
	ctx := context.Background()

	b := dsl.New("greeter")
	b.Add("start").Input("What is your name?", "name").Go("greet")
	b.Add("greet").Message("Nice to meet you, {{name}}!")

	if _, err := eng.Provision(ctx, "greeter"); err != nil {
		log.Fatal(err)
	}
	if _, _, err := eng.UpdateFlow(ctx, "greeter", b.Update()); err != nil {
		log.Fatal(err)
	}
	if _, err := eng.Activate(ctx, "greeter"); err != nil {
		log.Fatal(err)
	}

	res, err := eng.Converse(ctx, "greeter", "conversation-1", "Sam")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(res.Response)
	// Output: Nice to meet you, Sam!
}

// Execute runs a turn against a flow held in memory, without storage.
func ExampleEngine_Execute() {
	eng, err := chatflow.New()
	if err != nil {
		log.Fatal(err)
	}

	b := dsl.New("")
	b.Add("start").Condition("Checking your plan").
		When("plan", domain.OpEquals, "pro").
		Go("done")
	b.Add("done").Message("Plan: {{plan}}")

	res := eng.Execute(context.Background(), b.Build(), "hi", map[string]any{"plan": "pro"})
	fmt.Println(res.Response)
	fmt.Println(eng.Validate(b.Build().Nodes, b.Build().Connections).Valid)
	// Output:
	// Plan: pro
	// true
}
