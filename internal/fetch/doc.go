// Package fetch retrieves full body text for priority-ordered candidates
// until a target count of usable articles is reached. Individual failures
// are expected: they are recorded for cooldown and absorbed by the
// selector's over-selection surplus, never aborting the loop.
package fetch
