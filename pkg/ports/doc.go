/*
Package ports defines the driven ports (interfaces) for the chatflow engine.

These interfaces decouple the core logic from external implementations, allowing
the engine to work with various storage backends, HTTP clients and lock managers.

# Key Interfaces

  - Fetcher: Performs the outbound HTTP request of an api_call node.
  - FlowStore: Persists append-only flow versions per bot.
  - ConversationStore: Persists the variable context and history of a conversation.
  - DistributedLocker: Provides distributed locking for concurrent turns of one conversation.
  - ActionDispatcher: Lets the host perform the side-effects a turn requested.
*/
package ports
