// CLAUDE:SUMMARY Sentinel errors for layout: extraction failure, incompatible snapshots, unknown category.
package layout

import "errors"

// ErrExtraction is returned when the input document cannot be parsed.
var ErrExtraction = errors.New("layout: extraction failed")

// ErrIncompatibleSnapshot is returned when two snapshots captured at
// different viewports are compared.
var ErrIncompatibleSnapshot = errors.New("layout: snapshots captured at different viewports")

// ErrUnknownCategory is returned when a weight table names a category
// outside the enumeration or omits one.
var ErrUnknownCategory = errors.New("layout: unknown category")
