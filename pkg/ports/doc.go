/*
Package ports defines the driven ports (interfaces) for the Arbor engine.

These interfaces decouple the traversal logic from the storage backends, allowing
the engine to read the dialogue dataset from SQLite, memory fixtures or a cache.

# Key Interfaces

  - GraphDataSource: read-only access to entries, links, checks and alternates.
  - Catalog: flat actor listing and keyword search.
  - Explorer: the engine surface consumed by HTTP, MCP and CLI adapters.
*/
package ports
