/*
Package ports defines the driven ports (interfaces) for the keypad engine.

These interfaces decouple the core logic from external implementations, allowing
the engine to work with various storage backends and host adapters.

# Key Interfaces

  - StateStore: Responsible for persisting and loading session State.
  - DistributedLocker: Provides distributed locking for handling concurrent session access.
  - Watchable: Stores that can notify about out-of-band session changes.
  - StatelessEngine / SessionEngine: What host adapters (HTTP, MCP, CLI) drive.
*/
package ports
