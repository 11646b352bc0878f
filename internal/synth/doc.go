// Package synth converts script chunks to speech. Chunks are synthesized
// concurrently in bounded windows while the resulting audio segments keep
// the chunk order, so concatenation never reorders the narration.
package synth
