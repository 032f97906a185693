/*
Package chatflow is an engine for versioned chatbot conversation flows.

A flow is a directed graph of typed nodes (message, question, condition, action,
handover, input, api_call) joined by connections. Authors edit flows as drafts;
every edit becomes a new version, and a version can only be activated when the
validator reports no errors. Each incoming message runs one turn: the interpreter
walks the active flow from the "start" node, folds variable writes and requested
actions across the nodes it visits, and answers with the last node's response.

# Usage

	eng, err := chatflow.New()
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	if _, err := eng.Provision(ctx, "support-bot"); err != nil {
		log.Fatal(err)
	}

	// ... author the flow with UpdateFlow, then:
	if _, err := eng.Activate(ctx, "support-bot"); err != nil {
		log.Fatal(err) // *domain.InvalidFlowError lists the blocking errors
	}

	res, err := eng.Converse(ctx, "support-bot", "conversation-1", "Hi, I'm Sam")
	fmt.Println(res.Response)

# Architecture

The engine follows a hexagonal layout. pkg/domain holds the flow model,
internal/validator and internal/runtime hold the validator and interpreter, and
pkg/ports defines the storage, fetch, locking and rate limiting contracts that the
adapters under pkg/adapters (memory, redis, postgres, resty, http, mcp) implement.
Flows can be authored in Go with pkg/dsl or loaded from YAML/JSON with pkg/flowfile.

Execute is pure with respect to storage: failures inside a turn (an unreachable
API, an unknown node type) become response text, never errors.
*/
package chatflow
