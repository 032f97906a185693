// Package redis provides Redis-backed flow storage, conversation storage and
// distributed locking, so several chatflow replicas can share state.
package redis
