// Package template defines the engine contract renderers use. The pongo
// subpackage provides the pongo2 implementation.
package template
