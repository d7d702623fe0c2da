// Package domain defines the core business entities for Formly.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has no external dependencies beyond ID generation and defines the
// fundamental types:
//
//   - Engagement: One client's tax-document collection case
//   - Document: A collected file moving through the intake lifecycle
//   - ChecklistItem: One expected document category with priority
//   - Reconciliation: Completion snapshot computed over the checklist
//   - RemoteFile / FolderLocator: What storage providers see
//   - Event: The dispatcher's vocabulary
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. All other packages depend on
// domain, never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library, github.com/google/uuid
//   - Cannot Import: Any other internal/ package, any other external dependency
package domain
