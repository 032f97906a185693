/*
Package domain contains the core domain models of the chatflow engine.

It defines the building blocks of a bot conversation flow: typed Nodes, directed
Connections, declared Variables and the versioned Flow aggregate, along with the
results produced by validating a flow and by executing a single conversation turn.
This package is kept pure and free of I/O, following Hexagonal Architecture principles.

# Key Entities

  - Node: One step of a flow (message, question, condition, action, handover, input, api_call).
  - Connection: A directed edge between two nodes. The interpreter follows the first one.
  - Flow: A versioned snapshot of nodes, connections and variables owned by a bot.
  - TurnResult: The response text, updated variables and requested Actions of one turn.
  - Action: A side-effect the engine asks the host to perform (email, webhook, ...).
*/
package domain
