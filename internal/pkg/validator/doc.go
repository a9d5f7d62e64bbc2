// Package validator provides a small validation abstraction for request and
// configuration structs.
//
// Business code depends on the Validator interface. The go-playground v10
// implementation reports failures in struct field declaration order, using the
// `label` tag as the human-readable field name.
package validator
