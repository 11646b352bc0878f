// Package script turns fetched article bodies into a spoken-word episode
// script. The generated markdown is persisted next to the audio artifacts
// so an episode can always be traced back to the exact text that was
// synthesized.
package script
