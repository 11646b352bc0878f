// Package notifications delivers pipeline events via pluggable notifiers.
//
// The default implementation publishes to ntfy using the topic configured in
// config.toml and gracefully degrades to a no-op when notifications are
// disabled. Per-event toggles let an operator keep failure alerts while
// muting the routine run chatter.
//
// Extend this package if you need alternative transports; pipeline code
// depends only on the Service interface.
package notifications
