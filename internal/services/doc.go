// Package services contains the business logic between the HTTP transport
// and the store: session exchange, dataset ingestion, metric computation,
// LLM-backed insight and narrative generation, the founder journal, contact
// management with email delivery, and the dashboard aggregate.
//
// Services depend on small local interfaces (Completer, Sender, Broadcaster)
// rather than concrete clients so handler tests can substitute fakes.
package services
