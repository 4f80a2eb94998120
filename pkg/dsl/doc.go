/*
Package dsl provides a fluent Go API for defining Turing machines without
YAML or JSON files.

It is useful for tests, generated machines and IDE type-checking.

Example usage:

	b := dsl.New()

	b.Add("a_star").
		Input("a").
		Start("q0").Accept("qAccept").Reject("qReject").
		Rules(
			"q0,a,q0,a,R",
			"q0,_,qAccept,_,S",
		)

	// The result is a ports.MachineLoader.
	loader, err := b.Build()
	// ... pass loader to ntmtrace.New("", ntmtrace.WithLoader(loader))
*/
package dsl
