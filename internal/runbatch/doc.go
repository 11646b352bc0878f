// Package runbatch runs a worker over a slice in sequential windows of
// bounded size, preserving the input-index-to-output-index mapping. It is
// the single place the pipeline's ordering invariant lives; the fetch loop
// and the synthesizer both build on it.
package runbatch
