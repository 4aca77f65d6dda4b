// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - ContentStore: ContentItem, chunk and embedding persistence
//   - HistoryStore: Append-only query history
//   - Maintenance: Clear, statistics and health of the store
//   - EmbeddingService: Always present; the offline hash embedder is the floor
//   - ContentExtractor: Turns a URL into a title and text
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - LLMService: Generative answers. Without it, answers use templates.
//   - PromptStore: Customisable prompts. Without it, built-in prompts are used.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
