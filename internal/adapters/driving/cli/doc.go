// Package cli implements the formly command line interface.
package cli
