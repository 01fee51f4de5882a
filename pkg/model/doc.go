// Package model defines the field configuration consumed by the codec,
// parser and store packages. A field list is authored once by the caller
// (in Go or through pkg/loader), validated at store construction and never
// mutated afterwards. Label and Tooltip only reach renderers; everything the
// URL carries is derived from ID, Kind, Default, Attrs, Options and Fields.
package model
