// Package sqlite provides SQLite-backed store implementations.
//
// A single Store owns the database connection and runs embedded
// migrations on open; the individual store interfaces are exposed
// through wrapper accessors. Engagement documents, checklists and
// reconciliation snapshots are serialised as JSON columns with an
// explicit, versioned record shape - legacy rows missing fields load
// with explicit defaults rather than ad hoc inference.
package sqlite
