// Package pipeline orchestrates one end-to-end episode run: inbox scan,
// ledger filtering, selection, quota fetch, scripting, synthesis, assembly,
// and feed publication. A run always ends in a structured result; expected
// failures (empty inbox, zero usable bodies) are successful no-ops, while
// synthesis and assembly failures abort without publishing anything.
package pipeline
