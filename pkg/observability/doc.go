/*
Package observability provides lifecycle hooks for monitoring Turing runs.

It includes Prometheus metrics (steps, run outcomes, run length) and structured
log hooks. Both are plain domain.LifecycleHooks and compose with domain.MergeHooks.
*/
package observability
