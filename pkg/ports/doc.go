/*
Package ports defines the driven ports (interfaces) for the Turing engine.

These interfaces decouple the core logic from external implementations, allowing
runs to be persisted in various storage backends and machines to be served from
various sources.

# Key Interfaces

  - MachineLoader: Resolves machine descriptions by name (e.g., from Loam or Memory).
  - RunStore: Persists and loads run snapshots so a run can be resumed.
  - DistributedLocker: Provides distributed locking for concurrent access to one run.
*/
package ports
