// Package llm provides a minimal client for OpenAI-compatible chat
// completion endpoints. Article selection and script generation both talk
// through it; neither depends on a particular provider as long as the
// endpoint speaks the /chat/completions wire format.
package llm
