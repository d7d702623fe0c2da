// Package file provides a TOML-backed configuration store kept under
// the formly config directory.
package file
