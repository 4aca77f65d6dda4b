// Package services implements the driving port interfaces.
// Services contain the core business logic (ingestion, retrieval,
// answering, content management, settings) and orchestrate calls to
// driven ports (adapters).
package services
