/*
Package session serializes access to conversations.

Two requests for the same conversation must not interleave their
read-modify-write of the variable context. The Manager guards each conversation
with a ref-counted local mutex and, when configured, a distributed lock so the
guarantee holds across replicas.
*/
package session
