/*
Package observability provides lifecycle hooks for auditing conversation turns.

Hooks are plain domain.LifecycleHooks values, so they compose with the
Prometheus hooks from package metrics through LifecycleHooks.Merge.
*/
package observability
