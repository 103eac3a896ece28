// Package sanitizer provides input normalization for equipment data.
//
// All normalization functions are idempotent - applying them multiple times produces
// the same result. Functions handle invalid input gracefully, typically by returning
// empty strings or empty slices rather than errors.
//
// Normalization includes:
//   - Strings: Drop invisible runes, collapse whitespace, trim the ends
//   - Names for comparison: Collapse whitespace and lowercase - "Gerador  A" matches "gerador a"
//   - Checklists: Normalize labels, drop empty items and empty groups
package sanitizer
