// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - StorageProvider: Syncs and downloads files from a remote folder
//   - ProviderFactory: Creates providers from engagement configuration
//   - EngagementStore: Engagement persistence
//   - Extractor: Remote document-understanding call
//   - OutreachAgent / AssessmentAgent / ReconciliationAgent: The
//     dispatcher's collaborators
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - Classifier: Document classification. Without it, assessment marks
//     documents UNCLASSIFIED.
//   - Notifier: Client-facing delivery. Without it, outreach only logs.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or connector package
package driven
