// Package openapi imports field configurations from the request bodies of
// OpenAPI 3 operations. The kin-openapi backed implementation lives under
// internal/openapi so consumers only depend on model types.
package openapi
