/*
Package dsl provides a fluent builder for constructing chatflow flows in Go.

It is an alternative to YAML or JSON flow files, useful for generated flows, tests and
IDE autocompletion. The builder does not validate; pass the result to Engine.Validate
or Engine.UpdateFlow.

Example usage:

	b := dsl.New("support-bot")
	b.Variable("tier", domain.VarString, "free")

	b.Add("start").Input("What is your name?", "name").Go("check")
	b.Add("check").Condition("VIP check").
		When("tier", domain.OpEquals, "gold").
		Branch("true", "vip").
		Branch("false", "greet")
	b.Add("vip").Message("Welcome back, {{name}}!")
	b.Add("greet").Message("Nice to meet you, {{name}}!")

	flow := b.Build()
*/
package dsl
