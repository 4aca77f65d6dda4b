// Package domain defines the core business entities for pagewise.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - ContentItem: An ingested web page with its full text
//   - Chunk: A retrievable, embedded unit of a ContentItem
//   - QueryRecord: A historical question and its answer
//   - AppSettings: Provider, retrieval and ingestion configuration
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
