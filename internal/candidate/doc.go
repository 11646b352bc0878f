// Package candidate defines the article candidate model shared across the
// pipeline, the URL-derived stable identifier scheme, and the ordered
// id-matching strategies used to reconcile model-returned identifiers with
// the candidate pool.
package candidate
