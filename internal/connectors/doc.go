// Package connectors contains storage provider implementations for
// syncing client folders, plus the factory that builds them from
// engagement configuration.
package connectors
