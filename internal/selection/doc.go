// Package selection ranks a candidate pool and picks the articles worth
// covering in an episode. The production implementation delegates judgment
// to a chat model and resolves its loosely formatted references back to
// pool entries through the candidate matcher chain.
package selection
