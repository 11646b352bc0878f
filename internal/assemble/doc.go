// Package assemble merges ordered audio segments into a single episode
// file. Concatenation goes through ffmpeg's concat demuxer because naive
// byte concatenation of compressed frames produces wrong duration
// metadata. Artwork and tag embedding is a best-effort second pass.
package assemble
