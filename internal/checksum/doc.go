// Package checksum provides content hashing with normalization support.
//
// The package implements deepwiki's dual checksum strategy for page
// revisions and uploads:
//
//   - Raw checksum: Hash of the exact content (detects all changes)
//   - Normalized checksum: Hash after stripping HTML comments and
//     normalizing whitespace (formatting-independent content identity)
//
// # Normalization Strategy
//
// Normalization makes checksums resilient to formatting changes:
//  1. Convert content to lowercase
//  2. Remove HTML comments (<!-- ... -->), the comment form markdown allows
//  3. Collapse all whitespace sequences to single spaces
//  4. Trim leading/trailing whitespace
//
// A page save whose normalized checksum matches the head revision does not
// create a new revision; the raw checksum still records the exact bytes of
// each stored revision.
//
// # Thread Safety
//
// SHA256 is safe for concurrent use by multiple goroutines.
package checksum
