// Package feed maintains the podcast RSS document. The persisted XML file
// is the source of truth for publication state: on startup the previous
// document is parsed back, so republishing an episode that is already in
// the feed is a no-op rather than a duplicate.
package feed
