// Package store persists the candidate dedup ledger: permanent processed
// markers and time-bounded failed-URL cooldown records. The whole ledger is
// a single JSON document rewritten atomically after every mutation; there is
// exactly one writer per process and one pipeline run at a time.
package store
